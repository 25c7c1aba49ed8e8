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

package services

import (
	"context"
	"fmt"

	"github.com/jaycherian/gcp-go-fivefrets/internal/core/model"
)

// GetSongChordList returns the chord sequence of a song and one diagram per
// distinct chord, in order of first appearance.
func GetSongChordList(ctx context.Context, store SongStore, songId string) ([]*model.SongChord, []*model.ChordDiagram, error) {
	chordList, err := store.ListSongChords(ctx, songId)
	if err != nil {
		return nil, nil, err
	}
	return chordList, ChordDiagrams(chordList), nil
}

// ChordDiagrams derives the diagram sequence from a chord list. The voicing
// of the first occurrence of each chord is used.
func ChordDiagrams(chordList []*model.SongChord) []*model.ChordDiagram {
	seen := make(map[string]bool)
	out := make([]*model.ChordDiagram, 0)
	for _, c := range chordList {
		if seen[c.Chord] {
			continue
		}
		seen[c.Chord] = true
		out = append(out, &model.ChordDiagram{
			Chord:      c.Chord,
			Frets:      c.Frets,
			BaseFret:   c.BaseFret,
			DiagramURI: c.DiagramURI,
		})
	}
	return out
}

// GetSongInfo returns the metadata shown above the chart.
func GetSongInfo(song *model.Song, chordList []*model.SongChord) *model.SongInfo {
	distinct := make(map[string]struct{})
	for _, c := range chordList {
		distinct[c.Chord] = struct{}{}
	}
	return &model.SongInfo{
		Title:          song.Title,
		Artist:         song.Artist,
		Key:            song.Key,
		TempoBPM:       song.TempoBPM,
		TimeSignature:  song.TimeSignature,
		Duration:       FormatDuration(song.LengthInSeconds),
		ChordCount:     len(chordList),
		DistinctChords: len(distinct),
		WatchURL:       model.YouTubeWatchURL(song.YouTubeId),
		EmbedURL:       model.YouTubeEmbedURL(song.YouTubeId),
	}
}

// FormatDuration renders seconds as M:SS, or H:MM:SS from one hour up.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
