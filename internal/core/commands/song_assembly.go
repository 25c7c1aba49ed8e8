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
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/cor"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/model"
)

// SongAssembly turns the chart and the uploaded diagrams into the rows that
// are persisted: one Song and one SongChord per chord event.
type SongAssembly struct {
	cor.BaseCommand
}

func NewSongAssembly(name string) *SongAssembly {
	return &SongAssembly{BaseCommand: *cor.NewBaseCommand(name)}
}

func (s *SongAssembly) IsExecutable(context cor.Context) bool {
	return s.BaseCommand.IsExecutable(context) &&
		context.Get(IngestRequestParam) != nil &&
		context.Get(ChordChartParam) != nil
}

// AssembleSong builds the persistent rows. Chords missing from diagrams keep
// empty frets and no diagram URI.
func AssembleSong(req *model.IngestRequest, chart *model.ChordChart, diagrams []*model.RenderedDiagram) (*model.Song, []*model.SongChord) {
	song := model.NewSong(req.YouTubeId)
	song.Title = chart.Title
	song.Artist = chart.Artist
	song.Key = chart.Key
	song.TempoBPM = chart.TempoBPM
	song.TimeSignature = chart.TimeSignature
	song.LengthInSeconds = chart.LengthInSeconds

	byChord := make(map[string]*model.RenderedDiagram, len(diagrams))
	for _, d := range diagrams {
		byChord[d.Chord] = d
	}

	songChords := make([]*model.SongChord, 0, len(chart.Chords))
	for i, e := range chart.Chords {
		c := &model.SongChord{
			SongId:   song.Id,
			Sequence: i,
			Chord:    e.Chord,
			Start:    e.Start,
			End:      e.End,
		}
		if d, ok := byChord[e.Chord]; ok {
			c.Frets = d.Frets
			c.BaseFret = d.BaseFret
			c.DiagramURI = d.DiagramURI
		}
		songChords = append(songChords, c)
	}
	return song, songChords
}

func (s *SongAssembly) Execute(context cor.Context) {
	diagrams, _ := context.Get(s.GetInputParam()).([]*model.RenderedDiagram)
	req := context.Get(IngestRequestParam).(*model.IngestRequest)
	chart := context.Get(ChordChartParam).(*model.ChordChart)

	song, songChords := AssembleSong(req, chart, diagrams)

	s.Succeed(context)
	context.Add(SongParam, song)
	context.Add(SongChordsParam, songChords)
	context.Add(s.GetOutputParam(), song)
}
