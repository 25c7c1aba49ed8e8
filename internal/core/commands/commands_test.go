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

package commands_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"text/template"

	"github.com/jaycherian/gcp-go-fivefrets/internal/core/commands"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/cor"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/model"
	test "github.com/jaycherian/gcp-go-fivefrets/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const promptText = `Transcribe the chords of {{.VIDEO_URL}} ({{.YOUTUBE_ID}}). Answer like {{.EXAMPLE_JSON}}`

func newContext(input interface{}) cor.Context {
	return cor.NewBaseContextWithInput(context.Background(), input)
}

func sampleRequest() *model.IngestRequest {
	return &model.IngestRequest{YouTubeId: "dQw4w9WgXcQ"}
}

func TestIngestTriggerReader(t *testing.T) {
	cmd := commands.NewIngestTriggerReader("read-trigger")

	ctx := newContext(test.GetTestIngestMessageText(" dQw4w9WgXcQ "))
	cmd.Execute(ctx)
	require.False(t, ctx.HasErrors())

	req := ctx.Get(commands.IngestRequestParam).(*model.IngestRequest)
	assert.Equal(t, "dQw4w9WgXcQ", req.YouTubeId)
	assert.Equal(t, 2024, req.RequestedAt.Year())
	assert.Same(t, req, ctx.Get(cor.CtxOut))
}

func TestIngestTriggerReaderRejects(t *testing.T) {
	for name, payload := range map[string]interface{}{
		"not json":   "{youtube_id",
		"bad id":     `{"youtube_id": "short"}`,
		"missing id": `{}`,
		"not string": 42,
	} {
		t.Run(name, func(t *testing.T) {
			ctx := newContext(payload)
			commands.NewIngestTriggerReader("read-trigger").Execute(ctx)
			assert.True(t, ctx.HasErrors())
			assert.Nil(t, ctx.Get(cor.CtxOut))
		})
	}
}

func TestSongExistenceCheck(t *testing.T) {
	store, _, _ := test.NewStoreWithSample()
	cmd := commands.NewSongExistenceCheck("check", store)

	t.Run("known song stops the chain", func(t *testing.T) {
		ctx := newContext(sampleRequest())
		cmd.Execute(ctx)
		assert.False(t, ctx.HasErrors())
		assert.NotNil(t, ctx.Get(cor.StopKey))
		assert.Nil(t, ctx.Get(cor.CtxOut))
	})

	t.Run("unknown song passes through", func(t *testing.T) {
		req := &model.IngestRequest{YouTubeId: "aaaaaaaaaaa"}
		ctx := newContext(req)
		cmd.Execute(ctx)
		assert.False(t, ctx.HasErrors())
		assert.Nil(t, ctx.Get(cor.StopKey))
		assert.Same(t, req, ctx.Get(cor.CtxOut))
	})

	t.Run("store failure", func(t *testing.T) {
		broken := test.NewSongStore()
		broken.FindErr = errors.New("bigquery unavailable")
		ctx := newContext(sampleRequest())
		commands.NewSongExistenceCheck("check", broken).Execute(ctx)
		assert.True(t, ctx.HasErrors())
		assert.ErrorContains(t, ctx.GetErrors()["check"], "bigquery unavailable")
	})
}

func TestChordChartCreator(t *testing.T) {
	gen := test.NewChartGenerator()
	tmpl := template.Must(template.New("chords").Parse(promptText))
	cmd := commands.NewChordChartCreator("create-chart", gen, tmpl)

	ctx := newContext(sampleRequest())
	cmd.Execute(ctx)
	require.False(t, ctx.HasErrors())

	out := ctx.Get(cor.CtxOut).(string)
	assert.True(t, strings.HasPrefix(out, "{"), "code fence must be removed")
	require.Equal(t, 1, gen.Calls())

	parts := gen.Contents[0][0].Parts
	require.Len(t, parts, 2)
	assert.Contains(t, parts[0].Text, "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", parts[1].FileData.FileURI)
	assert.Equal(t, commands.VideoMIMEType, parts[1].FileData.MIMEType)
}

func TestChordChartCreatorModelFailure(t *testing.T) {
	gen := &test.Generator{Err: errors.New("quota exceeded")}
	tmpl := template.Must(template.New("chords").Parse(promptText))

	ctx := newContext(sampleRequest())
	commands.NewChordChartCreator("create-chart", gen, tmpl).Execute(ctx)

	assert.True(t, ctx.HasErrors())
	assert.Greater(t, gen.Calls(), 1, "failed calls are retried")
}

func TestChordChartJsonToStruct(t *testing.T) {
	cmd := commands.NewChordChartJsonToStruct("to-struct")

	t.Run("drops no-chord entries", func(t *testing.T) {
		ctx := newContext(`{"title":"T","chords":[{"chord":"G"},{"chord":"N.C."},{"chord":" "},{"chord":"D"}]}`)
		cmd.Execute(ctx)
		require.False(t, ctx.HasErrors())
		chart := ctx.Get(commands.ChordChartParam).(*model.ChordChart)
		require.Len(t, chart.Chords, 2)
		assert.Equal(t, "G", chart.Chords[0].Chord)
		assert.Equal(t, "D", chart.Chords[1].Chord)
	})

	t.Run("empty chart", func(t *testing.T) {
		ctx := newContext(`{"title":"T","chords":[{"chord":"NC"}]}`)
		cmd.Execute(ctx)
		assert.True(t, ctx.HasErrors())
		assert.ErrorIs(t, ctx.GetErrors()["to-struct"], commands.ErrEmptyChart)
	})

	t.Run("invalid json", func(t *testing.T) {
		ctx := newContext(`not json`)
		cmd.Execute(ctx)
		assert.True(t, ctx.HasErrors())
	})
}

func TestChordDiagramRenderer(t *testing.T) {
	chart := &model.ChordChart{Chords: []*model.ChordEvent{
		{Chord: "G"}, {Chord: "Hmaj99"}, {Chord: "D"}, {Chord: "G"}, {Chord: "Am7"},
	}}
	assert.Equal(t, []string{"G", "Hmaj99", "D", "Am7"}, commands.DistinctChords(chart))

	ctx := newContext(chart)
	commands.NewChordDiagramRenderer("render", 3).Execute(ctx)
	require.False(t, ctx.HasErrors(), "unknown chords are skipped, not failed")

	diagrams := ctx.Get(commands.DiagramsParam).([]*model.RenderedDiagram)
	require.Len(t, diagrams, 3)
	assert.Equal(t, "G", diagrams[0].Chord)
	assert.Equal(t, "D", diagrams[1].Chord)
	assert.Equal(t, "Am7", diagrams[2].Chord)
	assert.Equal(t, "320003", diagrams[0].Frets)
	for _, d := range diagrams {
		assert.NotEmpty(t, d.PNG)
	}
}

func TestDiagramUpload(t *testing.T) {
	g, err := commands.RenderDiagram("G")
	require.NoError(t, err)
	g2, err := commands.RenderDiagram("G")
	require.NoError(t, err)
	g2.Chord = "G/B-alias"

	uploader := test.NewUploader()
	ctx := newContext([]*model.RenderedDiagram{g, g2})
	commands.NewDiagramUpload("upload", uploader, "diagrams").Execute(ctx)
	require.False(t, ctx.HasErrors())

	object := commands.DiagramObjectName("diagrams", g)
	assert.Equal(t, "diagrams/320003@1.png", object)
	assert.Len(t, uploader.Objects, 1, "identical voicings share one object")
	assert.Equal(t, "image/png", uploader.Types[object])
	assert.Equal(t, "gs://fivefrets-test-diagrams/diagrams/320003@1.png", g.DiagramURI)
	assert.Equal(t, g.DiagramURI, g2.DiagramURI)
}

func TestDiagramUploadRejectsNonPNG(t *testing.T) {
	uploader := test.NewUploader()
	ctx := newContext([]*model.RenderedDiagram{{Chord: "G", Frets: "320003", BaseFret: 1, PNG: []byte("GIF89a not a png")}})
	commands.NewDiagramUpload("upload", uploader, "diagrams").Execute(ctx)
	assert.True(t, ctx.HasErrors())
	assert.Empty(t, uploader.Objects)
}

func TestDiagramUploadFailure(t *testing.T) {
	g, err := commands.RenderDiagram("G")
	require.NoError(t, err)
	uploader := test.NewUploader()
	uploader.Err = errors.New("permission denied")

	ctx := newContext([]*model.RenderedDiagram{g})
	commands.NewDiagramUpload("upload", uploader, "diagrams").Execute(ctx)
	assert.True(t, ctx.HasErrors())
	assert.Empty(t, g.DiagramURI)
}

func TestAssembleSong(t *testing.T) {
	chart := model.GetExampleChordChart()
	diagrams := []*model.RenderedDiagram{{Chord: chart.Chords[0].Chord, Frets: "320003", BaseFret: 1, DiagramURI: "gs://b/d.png"}}

	song, chords := commands.AssembleSong(sampleRequest(), chart, diagrams)
	assert.Equal(t, model.NewSong("dQw4w9WgXcQ").Id, song.Id)
	assert.Equal(t, chart.Title, song.Title)
	assert.Equal(t, chart.LengthInSeconds, song.LengthInSeconds)
	require.Len(t, chords, len(chart.Chords))
	for i, c := range chords {
		assert.Equal(t, i, c.Sequence)
		assert.Equal(t, song.Id, c.SongId)
		if c.Chord == chart.Chords[0].Chord {
			assert.Equal(t, "gs://b/d.png", c.DiagramURI)
		} else {
			assert.Empty(t, c.DiagramURI)
		}
	}
}

func TestSongAssemblyAndPersist(t *testing.T) {
	store := test.NewSongStore()
	ctx := newContext([]*model.RenderedDiagram{})
	ctx.Add(commands.IngestRequestParam, sampleRequest())
	ctx.Add(commands.ChordChartParam, model.GetExampleChordChart())

	assembly := commands.NewSongAssembly("assemble")
	require.True(t, assembly.IsExecutable(ctx))
	assembly.Execute(ctx)
	require.False(t, ctx.HasErrors())

	song := ctx.Get(cor.CtxOut).(*model.Song)
	ctx.Add(cor.CtxIn, song)
	commands.NewSongPersist("persist", store).Execute(ctx)
	require.False(t, ctx.HasErrors())
	assert.Equal(t, 1, store.Songs())

	stored, err := store.ListSongChords(context.Background(), song.Id)
	require.NoError(t, err)
	assert.Len(t, stored, len(model.GetExampleChordChart().Chords))
}

func TestSongPersistFailure(t *testing.T) {
	store := test.NewSongStore()
	store.PutErr = errors.New("insert failed")
	ctx := newContext(model.NewSong("dQw4w9WgXcQ"))
	commands.NewSongPersist("persist", store).Execute(ctx)
	assert.True(t, ctx.HasErrors())
	assert.ErrorContains(t, ctx.GetErrors()["persist"], "insert failed")
}
