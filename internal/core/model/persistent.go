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
// This file, `persistent.go`, holds the structs that are written to and read
// from the BigQuery dataset: a Song and the ordered SongChord rows that make
// up its chord chart.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Song is one musical piece keyed by the YouTube video it was extracted from.
// Rows are created by the ingestion workflow and only read by the web tier.
type Song struct {
	Id              string    `json:"id" bigquery:"id"`                               // UUIDv5 derived from the YouTube id.
	YouTubeId       string    `json:"youtube_id" bigquery:"youtube_id"`               // The external lookup key.
	CreateDate      time.Time `json:"create_date" bigquery:"create_date"`             // When the song was ingested.
	Title           string    `json:"title" bigquery:"title"`                         // Song title.
	Artist          string    `json:"artist" bigquery:"artist"`                       // Performing artist or band.
	Key             string    `json:"key" bigquery:"key"`                             // Musical key, e.g. "G" or "Em".
	TempoBPM        int       `json:"tempo_bpm" bigquery:"tempo_bpm"`                 // Tempo in beats per minute, 0 when unknown.
	TimeSignature   string    `json:"time_signature" bigquery:"time_signature"`       // e.g. "4/4".
	LengthInSeconds int       `json:"length_in_seconds" bigquery:"length_in_seconds"` // Duration of the video.
}

// SongChord is a single chord occurrence within a song, together with the
// guitar voicing used to draw its diagram.
type SongChord struct {
	SongId     string `json:"song_id" bigquery:"song_id"`
	Sequence   int    `json:"sequence" bigquery:"sequence"` // 0-based position in the chart.
	Chord      string `json:"chord" bigquery:"chord"`       // Chord symbol as written, e.g. "F#m7".
	Start      string `json:"start" bigquery:"start"`       // HH:MM:SS
	End        string `json:"end" bigquery:"end"`           // HH:MM:SS
	Frets      string `json:"frets" bigquery:"frets"`       // Low E to high E, "x" for muted. Empty when no voicing is known.
	BaseFret   int    `json:"base_fret" bigquery:"base_fret"`
	DiagramURI string `json:"diagram_uri" bigquery:"diagram_uri"` // gs:// URI of the rendered PNG, empty when none.
}

// NewSong creates a Song for a YouTube id. The id is a UUIDv5 of the YouTube
// id, so ingesting the same video twice always yields the same primary key.
func NewSong(youTubeId string) *Song {
	return &Song{
		Id:         uuid.NewSHA1(uuid.NameSpaceURL, []byte(youTubeId)).String(),
		YouTubeId:  youTubeId,
		CreateDate: time.Now(),
	}
}
