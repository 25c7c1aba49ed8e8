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
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jaycherian/gcp-go-fivefrets/internal/core/chords"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/cor"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ChordDiagramRenderer resolves a voicing for every distinct chord of the
// chart and renders its diagram with a fixed number of workers. Chords
// without a known voicing are logged and left out; they are stored without a
// diagram.
type ChordDiagramRenderer struct {
	cor.BaseCommand
	numberOfWorkers int
}

func NewChordDiagramRenderer(name string, numberOfWorkers int) *ChordDiagramRenderer {
	if numberOfWorkers < 1 {
		numberOfWorkers = 1
	}
	return &ChordDiagramRenderer{BaseCommand: *cor.NewBaseCommand(name), numberOfWorkers: numberOfWorkers}
}

type diagramJob struct {
	index  int
	symbol string
	span   trace.Span
}

type diagramResult struct {
	index   int
	diagram *model.RenderedDiagram
	err     error
}

// DistinctChords returns the chord symbols of a chart in order of first
// appearance.
func DistinctChords(chart *model.ChordChart) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, e := range chart.Chords {
		if !seen[e.Chord] {
			seen[e.Chord] = true
			out = append(out, e.Chord)
		}
	}
	return out
}

// RenderDiagram resolves and draws a single chord.
func RenderDiagram(symbol string) (*model.RenderedDiagram, error) {
	_, voicing, err := chords.LookupSymbol(symbol)
	if err != nil {
		return nil, err
	}
	png, err := chords.RenderPNG(voicing)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", symbol, err)
	}
	return &model.RenderedDiagram{
		Chord:    symbol,
		Frets:    voicing.String(),
		BaseFret: voicing.BaseFret,
		PNG:      png,
	}, nil
}

func diagramWorker(jobs <-chan *diagramJob, results chan<- *diagramResult, wg *sync.WaitGroup) {
	defer wg.Done()
	for j := range jobs {
		d, err := RenderDiagram(j.symbol)
		if err != nil {
			j.span.SetStatus(codes.Error, err.Error())
		} else {
			j.span.SetStatus(codes.Ok, "rendered")
		}
		j.span.End()
		results <- &diagramResult{index: j.index, diagram: d, err: err}
	}
}

func (r *ChordDiagramRenderer) Execute(context cor.Context) {
	chart := context.Get(r.GetInputParam()).(*model.ChordChart)
	symbols := DistinctChords(chart)

	var wg sync.WaitGroup
	jobs := make(chan *diagramJob, len(symbols))
	results := make(chan *diagramResult, len(symbols))

	for w := 0; w < r.numberOfWorkers; w++ {
		wg.Add(1)
		go diagramWorker(jobs, results, &wg)
	}
	for i, symbol := range symbols {
		_, span := r.Tracer.Start(context.GetContext(), fmt.Sprintf("%s_render_%d", r.GetName(), i))
		span.SetAttributes(attribute.String("chord", symbol))
		jobs <- &diagramJob{index: i, symbol: symbol, span: span}
	}
	close(jobs)
	wg.Wait()
	close(results)

	ordered := make([]*model.RenderedDiagram, len(symbols))
	for res := range results {
		switch {
		case errors.Is(res.err, chords.ErrUnknownChord):
			slog.WarnContext(context.GetContext(), "no voicing for chord, storing it without a diagram", "chord", symbols[res.index], "error", res.err)
		case res.err != nil:
			r.Fail(context, res.err)
		default:
			ordered[res.index] = res.diagram
		}
	}
	if context.HasErrors() {
		return
	}

	diagrams := make([]*model.RenderedDiagram, 0, len(ordered))
	for _, d := range ordered {
		if d != nil {
			diagrams = append(diagrams, d)
		}
	}

	r.Succeed(context)
	context.Add(DiagramsParam, diagrams)
	context.Add(r.GetOutputParam(), diagrams)
}
