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

// Package commands holds the steps of the song ingestion workflow. Each step
// is a cor.Command: it reads its primary input from CtxIn, writes its primary
// output to CtxOut, and leaves values that later steps need under the keys
// below.
package commands

// Context keys shared between ingestion steps.
const (
	IngestRequestParam = "__INGEST_REQUEST__" // *model.IngestRequest
	ChordChartParam    = "__CHORD_CHART__"    // *model.ChordChart
	DiagramsParam      = "__DIAGRAMS__"       // []*model.RenderedDiagram
	SongParam          = "__SONG__"           // *model.Song
	SongChordsParam    = "__SONG_CHORDS__"    // []*model.SongChord
)
