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

// GetExampleChordChart returns a hardcoded chart that is embedded in the
// chord extraction prompt as a few-shot example of the expected JSON.
func GetExampleChordChart() *ChordChart {
	c := &ChordChart{
		Title:           "Knockin' on Heaven's Door",
		Artist:          "Bob Dylan",
		Key:             "G",
		TempoBPM:        69,
		TimeSignature:   "4/4",
		LengthInSeconds: 149,
		Chords:          make([]*ChordEvent, 0),
	}
	c.Chords = append(c.Chords,
		&ChordEvent{Chord: "G", Start: "00:00:00", End: "00:00:03"},
		&ChordEvent{Chord: "D", Start: "00:00:03", End: "00:00:06"},
		&ChordEvent{Chord: "Am7", Start: "00:00:06", End: "00:00:12"},
		&ChordEvent{Chord: "G", Start: "00:00:12", End: "00:00:15"},
		&ChordEvent{Chord: "D", Start: "00:00:15", End: "00:00:18"},
		&ChordEvent{Chord: "C", Start: "00:00:18", End: "00:00:24"},
	)
	return c
}
