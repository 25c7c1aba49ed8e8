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

package chords

import (
	"fmt"
	"strconv"
	"strings"
)

// Muted marks a string that is not played.
const Muted = -1

// Strings is the number of strings on a standard guitar.
const Strings = 6

// Visible is the number of frets drawn in a diagram.
const Visible = 5

// Voicing is a guitar fingering in standard tuning, low E first. Frets are
// absolute; 0 is an open string and Muted a string that is not played.
type Voicing struct {
	Frets    [Strings]int
	BaseFret int // First fret drawn in the diagram, 1 means the nut is shown.
}

// String formats the voicing as "x32010", or "x-10-12-12-11-x" once any
// fret needs two digits.
func (v Voicing) String() string {
	parts := make([]string, Strings)
	wide := false
	for i, f := range v.Frets {
		if f == Muted {
			parts[i] = "x"
			continue
		}
		if f > 9 {
			wide = true
		}
		parts[i] = strconv.Itoa(f)
	}
	if wide {
		return strings.Join(parts, "-")
	}
	return strings.Join(parts, "")
}

// ParseFrets reads a fret string produced by Voicing.String.
func ParseFrets(in string) (Voicing, error) {
	var parts []string
	if strings.Contains(in, "-") {
		parts = strings.Split(in, "-")
	} else {
		parts = strings.Split(in, "")
	}
	if len(parts) != Strings {
		return Voicing{}, fmt.Errorf("fret string %q must describe %d strings", in, Strings)
	}
	var v Voicing
	for i, p := range parts {
		if p == "x" || p == "X" {
			v.Frets[i] = Muted
			continue
		}
		f, err := strconv.Atoi(p)
		if err != nil || f < 0 {
			return Voicing{}, fmt.Errorf("bad fret %q in %q", p, in)
		}
		v.Frets[i] = f
	}
	v.BaseFret = baseFret(v.Frets)
	return v, nil
}

// x is shorthand for Muted in the shape tables.
const x = Muted

// openShapes are first-position voicings, keyed by canonical chord name.
var openShapes = map[string][Strings]int{
	"C":     {x, 3, 2, 0, 1, 0},
	"C7":    {x, 3, 2, 3, 1, 0},
	"Cmaj7": {x, 3, 2, 0, 0, 0},
	"Cadd9": {x, 3, 2, 0, 3, 0},
	"Csus2": {x, 3, 0, 0, 3, 3},
	"Csus4": {x, 3, 3, 0, 1, 1},
	"C/E":   {0, 3, 2, 0, 1, 0},
	"C/G":   {3, 3, 2, 0, 1, 0},
	"D":     {x, x, 0, 2, 3, 2},
	"Dm":    {x, x, 0, 2, 3, 1},
	"D7":    {x, x, 0, 2, 1, 2},
	"Dmaj7": {x, x, 0, 2, 2, 2},
	"Dm7":   {x, x, 0, 2, 1, 1},
	"Dsus2": {x, x, 0, 2, 3, 0},
	"Dsus4": {x, x, 0, 2, 3, 3},
	"D6":    {x, x, 0, 2, 0, 2},
	"D5":    {x, x, 0, 2, 3, x},
	"D/F#":  {2, 0, 0, 2, 3, 2},
	"E":     {0, 2, 2, 1, 0, 0},
	"Em":    {0, 2, 2, 0, 0, 0},
	"E7":    {0, 2, 0, 1, 0, 0},
	"Emaj7": {0, 2, 1, 1, 0, 0},
	"Em7":   {0, 2, 2, 0, 3, 0},
	"Esus4": {0, 2, 2, 2, 0, 0},
	"Eadd9": {0, 2, 4, 1, 0, 0},
	"E5":    {0, 2, 2, x, x, x},
	"Fmaj7": {x, x, 3, 2, 1, 0},
	"G":     {3, 2, 0, 0, 0, 3},
	"G7":    {3, 2, 0, 0, 0, 1},
	"Gmaj7": {3, 2, 0, 0, 0, 2},
	"G6":    {3, 2, 0, 0, 0, 0},
	"G/B":   {x, 2, 0, 0, 0, 3},
	"A":     {x, 0, 2, 2, 2, 0},
	"Am":    {x, 0, 2, 2, 1, 0},
	"A7":    {x, 0, 2, 0, 2, 0},
	"Amaj7": {x, 0, 2, 1, 2, 0},
	"Am7":   {x, 0, 2, 0, 1, 0},
	"Asus2": {x, 0, 2, 2, 0, 0},
	"Asus4": {x, 0, 2, 2, 3, 0},
	"A6":    {x, 0, 2, 2, 2, 2},
	"Am6":   {x, 0, 2, 2, 1, 2},
	"A5":    {x, 0, 2, 2, x, x},
	"Am/G":  {3, 0, 2, 2, 1, 0},
	"B7":    {x, 2, 1, 2, 0, 2},
}

// mx marks a string left unplayed in the movable shape tables. Offsets
// there are relative to the root fret and may be negative, so Muted cannot
// double as the marker.
const mx = -100

// eShapes have their root on the low E string.
var eShapes = map[Quality][Strings]int{
	Major:     {0, 2, 2, 1, 0, 0},
	Minor:     {0, 2, 2, 0, 0, 0},
	Dominant7: {0, 2, 0, 1, 0, 0},
	Major7:    {0, mx, 1, 1, 0, mx},
	Minor7:    {0, 2, 0, 0, 0, 0},
	Sus4:      {0, 2, 2, 2, 0, 0},
	Power:     {0, 2, 2, mx, mx, mx},
}

// aShapes have their root on the A string.
var aShapes = map[Quality][Strings]int{
	Major:      {mx, 0, 2, 2, 2, 0},
	Minor:      {mx, 0, 2, 2, 1, 0},
	Dominant7:  {mx, 0, 2, 0, 2, 0},
	Major7:     {mx, 0, 2, 1, 2, 0},
	Minor7:     {mx, 0, 2, 0, 1, 0},
	Sus2:       {mx, 0, 2, 2, 0, 0},
	Sus4:       {mx, 0, 2, 2, 3, 0},
	Diminished: {mx, 0, 1, 2, 1, mx},
	Augmented:  {mx, 0, 3, 2, 2, 1},
	Sixth:      {mx, 0, 2, 2, 2, 2},
	Minor6:     {mx, 0, 2, 2, 1, 2},
	Ninth:      {mx, 0, -1, 0, 0, 0},
	Power:      {mx, 0, 2, 2, mx, mx},
}

// Lookup returns a voicing for a parsed chord. Open shapes win over barre
// shapes; between the two barre shapes the one closer to the nut is used.
// Slash chords without an open shape fall back to the plain chord.
func Lookup(c *Chord) (Voicing, error) {
	if frets, ok := openShapes[c.Name()]; ok {
		return newVoicing(frets), nil
	}
	if c.Bass >= 0 {
		plain := *c
		plain.Bass = -1
		return Lookup(&plain)
	}

	candidates := make([]Voicing, 0, 2)
	if offsets, ok := eShapes[c.Quality]; ok {
		candidates = append(candidates, barre(offsets, (c.Root-4+12)%12))
	}
	if offsets, ok := aShapes[c.Quality]; ok {
		candidates = append(candidates, barre(offsets, (c.Root-9+12)%12))
	}
	if len(candidates) == 0 {
		return Voicing{}, fmt.Errorf("%w: no voicing for %q", ErrUnknownChord, c.Symbol)
	}

	best := candidates[0]
	for _, v := range candidates[1:] {
		if v.BaseFret < best.BaseFret {
			best = v
		}
	}
	return best, nil
}

// LookupSymbol parses a symbol and returns its voicing.
func LookupSymbol(symbol string) (*Chord, Voicing, error) {
	c, err := Parse(symbol)
	if err != nil {
		return nil, Voicing{}, err
	}
	v, err := Lookup(c)
	if err != nil {
		return nil, Voicing{}, err
	}
	return c, v, nil
}

func barre(offsets [Strings]int, rootFret int) Voicing {
	var frets [Strings]int
	for {
		valid := true
		for i, o := range offsets {
			if o == mx {
				frets[i] = Muted
				continue
			}
			frets[i] = rootFret + o
			if frets[i] < 0 {
				valid = false
			}
		}
		if valid {
			break
		}
		rootFret += 12
	}
	return newVoicing(frets)
}

func newVoicing(frets [Strings]int) Voicing {
	return Voicing{Frets: frets, BaseFret: baseFret(frets)}
}

// baseFret is 1 when every fretted note fits in the first Visible frets,
// otherwise the lowest fretted position.
func baseFret(frets [Strings]int) int {
	lowest, highest := 0, 0
	for _, f := range frets {
		if f <= 0 {
			continue
		}
		if lowest == 0 || f < lowest {
			lowest = f
		}
		if f > highest {
			highest = f
		}
	}
	if highest <= Visible {
		return 1
	}
	return lowest
}
