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
	"errors"
	"testing"

	"github.com/jaycherian/gcp-go-fivefrets/internal/core/model"
	"github.com/jaycherian/gcp-go-fivefrets/internal/core/services"
	test "github.com/jaycherian/gcp-go-fivefrets/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayFound(t *testing.T) {
	store, song, chords := test.NewStoreWithSample()
	extractor := &test.Extractor{}
	d := services.NewDispatcher(store, extractor)

	view, err := d.Display(context.Background(), song.YouTubeId)
	require.NoError(t, err)

	assert.True(t, view.Found)
	assert.Same(t, song, view.Song)
	assert.Equal(t, song.Title, view.SongLabel())
	assert.Equal(t, chords, view.ChordList)
	require.Len(t, view.ChordDiagram, 3)
	assert.Equal(t, "G", view.ChordDiagram[0].Chord)
	assert.Equal(t, "D", view.ChordDiagram[1].Chord)
	assert.Equal(t, "Am7", view.ChordDiagram[2].Chord)
	assert.Equal(t, 4, view.SongInfo.ChordCount)
	assert.Equal(t, 3, view.SongInfo.DistinctChords)
	assert.Empty(t, extractor.Calls())
}

func TestDisplayNotFoundInvokesExtractorOnce(t *testing.T) {
	store := test.NewSongStore()
	extractor := &test.Extractor{}
	d := services.NewDispatcher(store, extractor)

	view, err := d.Display(context.Background(), "rOjHhS5MtvA")
	require.NoError(t, err)

	assert.False(t, view.Found)
	assert.Equal(t, model.NotFoundSong, view.SongLabel())
	assert.Nil(t, view.Song)
	assert.Nil(t, view.ChordList)
	assert.Nil(t, view.ChordDiagram)
	assert.Equal(t, []string{"rOjHhS5MtvA"}, extractor.Calls())
}

func TestDisplayEmptyIdIsAPlainLookup(t *testing.T) {
	store := test.NewSongStore()
	extractor := &test.Extractor{}
	d := services.NewDispatcher(store, extractor)

	view, err := d.Display(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, view.Found)
	assert.Equal(t, []string{""}, extractor.Calls())
	assert.Equal(t, 1, store.FindCalls)
}

func TestDisplayEmptyIdFindsSongWithEmptyId(t *testing.T) {
	store := test.NewSongStore()
	song := model.NewSong("")
	song.Title = "Untitled"
	require.NoError(t, store.PutSong(context.Background(), song, nil))
	extractor := &test.Extractor{}

	view, err := services.NewDispatcher(store, extractor).Display(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, view.Found)
	assert.Empty(t, view.ChordList)
	assert.Empty(t, view.ChordDiagram)
	assert.Empty(t, extractor.Calls())
}

func TestDisplayExtractorFailureStillReturnsPlaceholder(t *testing.T) {
	store := test.NewSongStore()
	extractor := &test.Extractor{Err: errors.New("pubsub down")}

	view, err := services.NewDispatcher(store, extractor).Display(context.Background(), "rOjHhS5MtvA")
	require.NoError(t, err)
	assert.False(t, view.Found)
	assert.Len(t, extractor.Calls(), 1)
}

func TestDisplayPropagatesStoreErrors(t *testing.T) {
	store := test.NewSongStore()
	store.FindErr = errors.New("bigquery unavailable")
	extractor := &test.Extractor{}

	_, err := services.NewDispatcher(store, extractor).Display(context.Background(), "rOjHhS5MtvA")
	assert.ErrorIs(t, err, store.FindErr)
	assert.Empty(t, extractor.Calls())
}

func TestDisplayPropagatesChordListErrors(t *testing.T) {
	store, song, _ := test.NewStoreWithSample()
	store.ListErr = errors.New("bigquery unavailable")

	_, err := services.NewDispatcher(store, &test.Extractor{}).Display(context.Background(), song.YouTubeId)
	assert.ErrorIs(t, err, store.ListErr)
}

func TestDisplayIsIdempotent(t *testing.T) {
	store, song, _ := test.NewStoreWithSample()
	d := services.NewDispatcher(store, &test.Extractor{})

	first, err := d.Display(context.Background(), song.YouTubeId)
	require.NoError(t, err)
	second, err := d.Display(context.Background(), song.YouTubeId)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	missA, err := d.Display(context.Background(), "rOjHhS5MtvA")
	require.NoError(t, err)
	missB, err := d.Display(context.Background(), "rOjHhS5MtvA")
	require.NoError(t, err)
	assert.Equal(t, missA, missB)
}

func TestDisplayWithoutExtractor(t *testing.T) {
	view, err := services.NewDispatcher(test.NewSongStore(), nil).Display(context.Background(), "rOjHhS5MtvA")
	require.NoError(t, err)
	assert.False(t, view.Found)
}

func TestIndexIsFixed(t *testing.T) {
	d := services.NewDispatcher(test.NewSongStore(), nil)
	assert.Equal(t, &model.IndexView{Test: "test from view"}, d.Index())
	assert.Equal(t, d.Index(), d.Index())
}

func TestLookup(t *testing.T) {
	store, song, _ := test.NewStoreWithSample()

	hit, err := services.Lookup(context.Background(), store, song.YouTubeId)
	require.NoError(t, err)
	assert.Equal(t, services.Found, hit.Outcome)
	assert.Same(t, song, hit.Song)

	miss, err := services.Lookup(context.Background(), store, "missing")
	require.NoError(t, err)
	assert.Equal(t, services.NotFound, miss.Outcome)
	assert.Nil(t, miss.Song)
	assert.Equal(t, "not_found", miss.Outcome.String())
}

func TestDisplayAfterRepeatedWrite(t *testing.T) {
	store, song, chords := test.NewStoreWithSample()
	require.NoError(t, store.PutSong(context.Background(), song, chords))
	require.NoError(t, store.PutSong(context.Background(), song, chords))

	d := services.NewDispatcher(store, &test.Extractor{})
	view, err := d.Display(context.Background(), song.YouTubeId)
	require.NoError(t, err)

	require.Len(t, view.ChordList, len(chords))
	for i, c := range view.ChordList {
		assert.Equal(t, i, c.Sequence)
	}
}
