// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Output writes human readable or JSON results.
type Output struct {
	w    io.Writer
	JSON bool

	green  *color.Color
	yellow *color.Color
	red    *color.Color
	gray   *color.Color
	bold   *color.Color
}

func NewOutput(w io.Writer, asJSON bool, noColor bool) *Output {
	if noColor {
		color.NoColor = true
	}
	return &Output{
		w:      w,
		JSON:   asJSON,
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
		red:    color.New(color.FgRed),
		gray:   color.New(color.FgHiBlack),
		bold:   color.New(color.Bold),
	}
}

func (o *Output) Success(format string, args ...any) {
	if o.JSON {
		return
	}
	o.green.Fprintf(o.w, format+"\n", args...)
}

func (o *Output) Warn(format string, args ...any) {
	if o.JSON {
		return
	}
	o.yellow.Fprintf(o.w, format+"\n", args...)
}

// Error prints even in JSON mode; it is meant for stderr.
func (o *Output) Error(format string, args ...any) {
	o.red.Fprintf(o.w, format+"\n", args...)
}

func (o *Output) Heading(format string, args ...any) {
	if o.JSON {
		return
	}
	o.bold.Fprintf(o.w, format+"\n", args...)
}

// Field prints "label: value" with a dimmed label.
func (o *Output) Field(label string, value any) {
	if o.JSON {
		return
	}
	fmt.Fprintf(o.w, "%s %v\n", o.gray.Sprint(label+":"), value)
}

func (o *Output) Print(s string) {
	if o.JSON {
		return
	}
	fmt.Fprint(o.w, s)
}

func (o *Output) EmitJSON(v any) error {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
