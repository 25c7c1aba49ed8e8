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
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jaycherian/gcp-go-fivefrets/internal/core/cor"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/model"
)

// ErrEmptyChart is recorded when the model found no chords.
var ErrEmptyChart = errors.New("chord chart has no chords")

// ChordChartJsonToStruct decodes the model answer into a model.ChordChart.
// Blank chord symbols and the model's "N.C." (no chord) markers are dropped.
type ChordChartJsonToStruct struct {
	cor.BaseCommand
}

func NewChordChartJsonToStruct(name string) *ChordChartJsonToStruct {
	return &ChordChartJsonToStruct{BaseCommand: *cor.NewBaseCommand(name)}
}

func (s *ChordChartJsonToStruct) Execute(context cor.Context) {
	in := context.Get(s.GetInputParam()).(string)

	chart := &model.ChordChart{}
	if err := json.Unmarshal([]byte(in), chart); err != nil {
		s.Fail(context, fmt.Errorf("failed to unmarshal chord chart JSON: %w", err))
		return
	}

	events := make([]*model.ChordEvent, 0, len(chart.Chords))
	for _, e := range chart.Chords {
		if e == nil {
			continue
		}
		e.Chord = strings.TrimSpace(e.Chord)
		if e.Chord == "" || strings.EqualFold(e.Chord, "N.C.") || strings.EqualFold(e.Chord, "NC") {
			continue
		}
		events = append(events, e)
	}
	chart.Chords = events
	if len(chart.Chords) == 0 {
		s.Fail(context, ErrEmptyChart)
		return
	}

	s.Succeed(context)
	context.Add(ChordChartParam, chart)
	context.Add(s.GetOutputParam(), chart)
}
