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

// Package model defines the core data structures for the application.
// This file, `transient.go`, contains the structs that only live while a
// song is being ingested: the request that starts the workflow and the
// chord chart returned by the generative model before it is turned into
// persistent Song and SongChord rows.
package model

import "time"

// IngestRequest is the Pub/Sub payload asking for a song to be ingested.
type IngestRequest struct {
	YouTubeId   string    `json:"youtube_id"`
	RequestedAt time.Time `json:"requested_at"`
}

// ChordEvent is one chord change reported by the model.
type ChordEvent struct {
	Chord string `json:"chord"` // Chord symbol, e.g. "Am7".
	Start string `json:"start"` // HH:MM:SS
	End   string `json:"end"`   // HH:MM:SS
}

// ChordChart is the structured answer of the chord extraction prompt.
type ChordChart struct {
	Title           string        `json:"title"`
	Artist          string        `json:"artist"`
	Key             string        `json:"key"`
	TempoBPM        int           `json:"tempo_bpm,omitempty"`
	TimeSignature   string        `json:"time_signature,omitempty"`
	LengthInSeconds int           `json:"length_in_seconds"`
	Chords          []*ChordEvent `json:"chords"`
}

// RenderedDiagram is a chord diagram image produced during ingestion,
// before and after it has been uploaded to Cloud Storage.
type RenderedDiagram struct {
	Chord      string
	Frets      string
	BaseFret   int
	PNG        []byte
	DiagramURI string
}
