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

package model

import "encoding/json"

// NotFoundSong is the value bound to the "song" field of a display view when
// no song exists for the requested identifier.
const NotFoundSong = "NOT FOUND"

// IndexPlaceholder is the fixed message carried by every IndexView.
const IndexPlaceholder = "test from view"

// ChordDiagram is the drawing data for one distinct chord of a song.
type ChordDiagram struct {
	Chord      string `json:"chord"`
	Frets      string `json:"frets"`
	BaseFret   int    `json:"base_fret"`
	DiagramURI string `json:"diagram_uri,omitempty"`
}

// SongInfo is the descriptive metadata shown above a chord chart.
type SongInfo struct {
	Title          string `json:"title"`
	Artist         string `json:"artist"`
	Key            string `json:"key"`
	TempoBPM       int    `json:"tempo_bpm"`
	TimeSignature  string `json:"time_signature"`
	Duration       string `json:"duration"` // M:SS
	ChordCount     int    `json:"chord_count"`
	DistinctChords int    `json:"distinct_chords"`
	WatchURL       string `json:"watch_url"`
	EmbedURL       string `json:"embed_url"`
}

// DisplayView is the per-request view model for the display page. Song,
// SongInfo, ChordList and ChordDiagram are set only when Found is true.
type DisplayView struct {
	Found        bool
	YouTubeId    string
	Song         *Song
	SongInfo     *SongInfo
	ChordList    []*SongChord
	ChordDiagram []*ChordDiagram
}

// NewNotFoundView returns the placeholder view for an unknown identifier.
func NewNotFoundView(youTubeId string) *DisplayView {
	return &DisplayView{YouTubeId: youTubeId}
}

// SongLabel returns the title of the song, or NotFoundSong.
func (v *DisplayView) SongLabel() string {
	if !v.Found || v.Song == nil {
		return NotFoundSong
	}
	return v.Song.Title
}

// Queued reports whether a miss was for an id that extraction accepts, so the
// page may promise a chart later.
func (v *DisplayView) Queued() bool {
	return !v.Found && IsValidYouTubeId(v.YouTubeId)
}

type foundView struct {
	Song         *Song           `json:"song"`
	SongInfo     *SongInfo       `json:"song_info"`
	ChordList    []*SongChord    `json:"chord_list"`
	ChordDiagram []*ChordDiagram `json:"chord_diagram"`
}

// MarshalJSON renders the view using the same field names as the HTML
// template context. A miss serialises to {"song":"NOT FOUND"}.
func (v *DisplayView) MarshalJSON() ([]byte, error) {
	if !v.Found {
		return json.Marshal(map[string]string{"song": NotFoundSong})
	}
	return json.Marshal(&foundView{
		Song:         v.Song,
		SongInfo:     v.SongInfo,
		ChordList:    v.ChordList,
		ChordDiagram: v.ChordDiagram,
	})
}

// IndexView is the fixed context of the index page.
type IndexView struct {
	Test string `json:"test"`
}
