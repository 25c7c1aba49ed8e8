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

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/cor"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/model"
)

// DiagramUploader stores one object and returns its URI. It is implemented
// by cloud.GCSObjectWriter.
type DiagramUploader interface {
	Upload(ctx context.Context, object string, data []byte, contentType string) (string, error)
}

// DiagramObjectName is the object name of a voicing's image. Diagrams do
// not carry the chord name, so songs sharing a voicing share the object.
func DiagramObjectName(prefix string, d *model.RenderedDiagram) string {
	return path.Join(prefix, fmt.Sprintf("%s@%d.png", d.Frets, d.BaseFret))
}

// DiagramUpload checks that every rendered image really is a PNG and writes
// it to the diagram bucket, filling in DiagramURI.
type DiagramUpload struct {
	cor.BaseCommand
	uploader DiagramUploader
	prefix   string
}

func NewDiagramUpload(name string, uploader DiagramUploader, prefix string) *DiagramUpload {
	return &DiagramUpload{BaseCommand: *cor.NewBaseCommand(name), uploader: uploader, prefix: prefix}
}

func (c *DiagramUpload) Execute(context cor.Context) {
	diagrams := context.Get(c.GetInputParam()).([]*model.RenderedDiagram)

	uploaded := make(map[string]string)
	for _, d := range diagrams {
		kind, err := filetype.Match(d.PNG)
		if err != nil || kind != matchers.TypePng {
			c.Fail(context, fmt.Errorf("diagram for %s is not a png (detected %q)", d.Chord, kind.MIME.Value))
			return
		}

		object := DiagramObjectName(c.prefix, d)
		if uri, ok := uploaded[object]; ok {
			d.DiagramURI = uri
			continue
		}
		uri, err := c.uploader.Upload(context.GetContext(), object, d.PNG, kind.MIME.Value)
		if err != nil {
			c.Fail(context, fmt.Errorf("failed to upload diagram for %s: %w", d.Chord, err))
			return
		}
		uploaded[object] = uri
		d.DiagramURI = uri
		slog.DebugContext(context.GetContext(), "uploaded chord diagram", "chord", d.Chord, "uri", uri)
	}

	c.Succeed(context)
	context.Add(c.GetOutputParam(), diagrams)
}
