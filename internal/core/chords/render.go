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
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"
	"strings"
)

// Diagram geometry, in pixels.
const (
	DiagramWidth  = 110
	DiagramHeight = 140

	gridLeft      = 15
	gridTop       = 30
	stringSpacing = 16
	fretSpacing   = 20
	dotRadius     = 6
	markerRadius  = 4
)

var (
	ink   = color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff}
	paper = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// RenderPNG draws a chord box for the voicing and encodes it as PNG.
func RenderPNG(v Voicing) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, DiagramWidth, DiagramHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: paper}, image.Point{}, draw.Src)

	gridRight := gridLeft + (Strings-1)*stringSpacing
	gridBottom := gridTop + Visible*fretSpacing

	for s := 0; s < Strings; s++ {
		sx := gridLeft + s*stringSpacing
		fillRect(img, sx, gridTop, sx+1, gridBottom+1)
	}
	for f := 0; f <= Visible; f++ {
		fy := gridTop + f*fretSpacing
		fillRect(img, gridLeft, fy, gridRight+1, fy+1)
	}
	if v.BaseFret <= 1 {
		fillRect(img, gridLeft, gridTop-3, gridRight+1, gridTop+1)
	} else {
		drawNumber(img, 1, gridTop+fretSpacing/2-2, v.BaseFret)
	}

	base := v.BaseFret
	if base < 1 {
		base = 1
	}
	for s, f := range v.Frets {
		sx := gridLeft + s*stringSpacing
		switch {
		case f == Muted:
			cross(img, sx, gridTop-12, markerRadius)
		case f == 0:
			ring(img, sx, gridTop-12, markerRadius)
		default:
			row := f - base
			if row < 0 || row >= Visible {
				return nil, fmt.Errorf("fret %d outside the drawn window starting at %d", f, base)
			}
			disc(img, sx, gridTop+row*fretSpacing+fretSpacing/2, dotRadius)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode diagram: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderASCII draws the voicing as text, one line per fret.
//
//	Am7 (x02010)
//	   x o     o
//	   =========
//	 1 | | | | ● |
func RenderASCII(name string, v Voicing) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", name, v.String())

	b.WriteString("   ")
	for _, f := range v.Frets {
		switch f {
		case Muted:
			b.WriteString("x ")
		case 0:
			b.WriteString("o ")
		default:
			b.WriteString("  ")
		}
	}
	b.WriteString("\n")

	base := v.BaseFret
	if base < 1 {
		base = 1
	}
	if base == 1 {
		b.WriteString("   " + strings.Repeat("=", Strings*2-1) + "\n")
	}
	for row := 0; row < Visible; row++ {
		fmt.Fprintf(&b, "%2d ", base+row)
		for s, f := range v.Frets {
			if f > 0 && f-base == row {
				b.WriteString("●")
			} else {
				b.WriteString("|")
			}
			if s < Strings-1 {
				b.WriteString(" ")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int) {
	draw.Draw(img, image.Rect(x0, y0, x1, y1), &image.Uniform{C: ink}, image.Point{}, draw.Src)
}

func disc(img *image.RGBA, cx, cy, r int) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				img.Set(cx+dx, cy+dy, ink)
			}
		}
	}
}

func ring(img *image.RGBA, cx, cy, r int) {
	inner := (r - 1) * (r - 1)
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			d := dx*dx + dy*dy
			if d <= r*r && d >= inner {
				img.Set(cx+dx, cy+dy, ink)
			}
		}
	}
}

func cross(img *image.RGBA, cx, cy, r int) {
	for d := -r; d <= r; d++ {
		img.Set(cx+d, cy+d, ink)
		img.Set(cx+d, cy-d, ink)
	}
}

// digits are 3x5 bitmaps for the base fret label.
var digits = [10][5]string{
	{"###", "#.#", "#.#", "#.#", "###"},
	{".#.", "##.", ".#.", ".#.", "###"},
	{"###", "..#", "###", "#..", "###"},
	{"###", "..#", "###", "..#", "###"},
	{"#.#", "#.#", "###", "..#", "..#"},
	{"###", "#..", "###", "..#", "###"},
	{"###", "#..", "###", "#.#", "###"},
	{"###", "..#", "..#", "..#", "..#"},
	{"###", "#.#", "###", "#.#", "###"},
	{"###", "#.#", "###", "..#", "###"},
}

func drawNumber(img *image.RGBA, left, top, n int) {
	for i, ch := range strconv.Itoa(n) {
		glyph := digits[ch-'0']
		for row, line := range glyph {
			for col, px := range line {
				if px == '#' {
					img.Set(left+i*4+col, top+row, ink)
				}
			}
		}
	}
}
