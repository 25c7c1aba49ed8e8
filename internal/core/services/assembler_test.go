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

package services_test

import (
	"context"
	"testing"

	"github.com/jaycherian/gcp-go-fivefrets/internal/core/model"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/services"
	test "github.com/jaycherian/gcp-go-fivefrets/internal/testutil"
	"github.com/zeebo/assert"
)

func TestGetSongChordList(t *testing.T) {
	store, song, chords := test.NewStoreWithSample()

	chordList, diagrams, err := services.GetSongChordList(context.Background(), store, song.Id)
	assert.NoError(t, err)
	assert.Equal(t, len(chordList), len(chords))
	assert.DeepEqual(t, diagrams, []*model.ChordDiagram{
		{Chord: "G", Frets: "320003", BaseFret: 1, DiagramURI: "gs://fivefrets-test-diagrams/diagrams/G.png"},
		{Chord: "D", Frets: "xx0232", BaseFret: 1, DiagramURI: "gs://fivefrets-test-diagrams/diagrams/D.png"},
		{Chord: "Am7", Frets: "x02010", BaseFret: 1, DiagramURI: "gs://fivefrets-test-diagrams/diagrams/Am7.png"},
	})
}

func TestGetSongChordListUnknownSong(t *testing.T) {
	chordList, diagrams, err := services.GetSongChordList(context.Background(), test.NewSongStore(), "nope")
	assert.NoError(t, err)
	assert.Equal(t, len(chordList), 0)
	assert.Equal(t, len(diagrams), 0)
}

func TestGetSongInfo(t *testing.T) {
	song, chords := test.SampleSong()
	info := services.GetSongInfo(song, chords)

	assert.Equal(t, info.Title, "Knockin' on Heaven's Door")
	assert.Equal(t, info.Artist, "Bob Dylan")
	assert.Equal(t, info.Duration, "2:29")
	assert.Equal(t, info.ChordCount, 4)
	assert.Equal(t, info.DistinctChords, 3)
	assert.Equal(t, info.WatchURL, "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	assert.Equal(t, info.EmbedURL, "https://www.youtube.com/embed/dQw4w9WgXcQ")
}

func TestFormatDuration(t *testing.T) {
	cases := map[int]string{0: "0:00", -5: "0:00", 59: "0:59", 60: "1:00", 149: "2:29", 3600: "1:00:00", 3725: "1:02:05"}
	for in, want := range cases {
		assert.Equal(t, services.FormatDuration(in), want)
	}
}
