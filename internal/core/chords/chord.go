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

// Package chords turns chord symbols such as "F#m7" or "D/F#" into guitar
// voicings and draws them as diagrams. It is used by the ingestion workflow
// to render the images stored alongside a song, and by the web tier and CLI
// to preview a single chord.
//
// Parsing is deliberately forgiving about spelling ("min", "-", "M7", "Δ7",
// unicode accidentals) because the symbols come from a generative model.
package chords

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownChord is returned when a symbol cannot be parsed or has no voicing.
var ErrUnknownChord = errors.New("unknown chord")

// Quality is the normalised chord quality suffix.
type Quality string

const (
	Major      Quality = ""
	Minor      Quality = "m"
	Dominant7  Quality = "7"
	Major7     Quality = "maj7"
	Minor7     Quality = "m7"
	Sus2       Quality = "sus2"
	Sus4       Quality = "sus4"
	Diminished Quality = "dim"
	Augmented  Quality = "aug"
	Sixth      Quality = "6"
	Minor6     Quality = "m6"
	Ninth      Quality = "9"
	Add9       Quality = "add9"
	Power      Quality = "5"
)

// qualityAliases maps every accepted spelling to its Quality.
var qualityAliases = map[string]Quality{
	"":      Major,
	"maj":   Major,
	"M":     Major,
	"m":     Minor,
	"min":   Minor,
	"-":     Minor,
	"7":     Dominant7,
	"dom7":  Dominant7,
	"maj7":  Major7,
	"M7":    Major7,
	"Δ":     Major7,
	"Δ7":    Major7,
	"ma7":   Major7,
	"m7":    Minor7,
	"min7":  Minor7,
	"-7":    Minor7,
	"sus2":  Sus2,
	"sus4":  Sus4,
	"sus":   Sus4,
	"dim":   Diminished,
	"°":     Diminished,
	"o":     Diminished,
	"aug":   Augmented,
	"+":     Augmented,
	"6":     Sixth,
	"m6":    Minor6,
	"min6":  Minor6,
	"9":     Ninth,
	"add9":  Add9,
	"add2":  Add9,
	"5":     Power,
	"(no3)": Power,
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var naturals = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// Chord is a parsed chord symbol.
type Chord struct {
	Symbol  string  // The symbol as given, trimmed.
	Root    int     // Pitch class of the root, C = 0.
	Quality Quality // Normalised quality.
	Bass    int     // Pitch class of the slash bass, or -1.
}

// Name returns the canonical spelling of the chord using sharps.
func (c *Chord) Name() string {
	name := noteNames[c.Root] + string(c.Quality)
	if c.Bass >= 0 {
		name += "/" + noteNames[c.Bass]
	}
	return name
}

// Parse reads a chord symbol.
func Parse(symbol string) (*Chord, error) {
	s := strings.TrimSpace(symbol)
	if s == "" {
		return nil, fmt.Errorf("%w: empty symbol", ErrUnknownChord)
	}

	main, bass, hasBass := strings.Cut(s, "/")
	root, rest, err := parseNote(main)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrUnknownChord, symbol, err)
	}

	quality, ok := qualityAliases[rest]
	if !ok {
		return nil, fmt.Errorf("%w: %q: unsupported quality %q", ErrUnknownChord, symbol, rest)
	}

	out := &Chord{Symbol: s, Root: root, Quality: quality, Bass: -1}
	if hasBass {
		b, tail, err := parseNote(bass)
		if err != nil || tail != "" {
			return nil, fmt.Errorf("%w: %q: bad bass note %q", ErrUnknownChord, symbol, bass)
		}
		if b != root {
			out.Bass = b
		}
	}
	return out, nil
}

func parseNote(in string) (pitch int, rest string, err error) {
	if in == "" {
		return 0, "", errors.New("missing root")
	}
	pitch, ok := naturals[in[0]]
	if !ok {
		return 0, "", fmt.Errorf("bad root %q", in[:1])
	}
	rest = in[1:]
	switch {
	case strings.HasPrefix(rest, "#"):
		pitch, rest = pitch+1, rest[1:]
	case strings.HasPrefix(rest, "♯"):
		pitch, rest = pitch+1, strings.TrimPrefix(rest, "♯")
	case strings.HasPrefix(rest, "♭"):
		pitch, rest = pitch+11, strings.TrimPrefix(rest, "♭")
	case strings.HasPrefix(rest, "b"):
		pitch, rest = pitch+11, rest[1:]
	}
	return pitch % 12, rest, nil
}
