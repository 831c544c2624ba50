/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

// Deterministic text measurement and line breaking for textboxes. The editor
// uses it to warn when a language variant no longer fits its box, and the
// raster exporter uses the same measurements so editor and export agree.

import (
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// FontSpec describes a requested font.
type FontSpec struct {
	Family string // logical family name
	SizePt float32
	Weight int // 100..900
	Italic bool
}

// Metrics provides font metrics in pixels for the resolved face.
type Metrics struct {
	Ascent, Descent, LineGap float32
}

// Span is a run of text with the same font and spacing.
// Tracking adds pixels per inter-glyph gap; Leading adds pixels per line.
type Span struct {
	Text     string
	Font     FontSpec
	Tracking float32
	Leading  float32
}

// Line is a single laid out line with width and ascent/descent.
type Line struct {
	Spans   []Span
	Width   float32
	Ascent  float32
	Descent float32
}

// TextBox is the result of laying out text into a box width.
type TextBox struct {
	Lines   []Line
	Width   float32
	Height  float32
	Metrics Metrics
}

// Provider maps FontSpec to a concrete font.Face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// Layouter performs line-breaking and measurement.
type Layouter interface {
	Layout(spans []Span, maxWidth float32) (TextBox, error)
}

// BasicProvider uses x/image basicfont Face7x13 for deterministic tests.
type BasicProvider struct{}

func (BasicProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	f := basicfont.Face7x13
	m := f.Metrics()
	return f, Metrics{
		Ascent:  float32(m.Ascent.Round()),
		Descent: float32(m.Descent.Round()),
		LineGap: float32(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
	}
}

// WordWrapLayouter breaks on spaces and newlines; it does not shape or
// hyphenate. Exact enough for fit warnings and raster previews.
type WordWrapLayouter struct{ Provider Provider }

func NewWordWrap(provider Provider) *WordWrapLayouter { return &WordWrapLayouter{Provider: provider} }

func (l *WordWrapLayouter) Layout(spans []Span, maxWidth float32) (TextBox, error) {
	if l.Provider == nil {
		l.Provider = BasicProvider{}
	}
	// A textbox variant carries a single typography, so one face per box.
	face, met := l.Provider.Resolve(firstFont(spans))
	drawer := &font.Drawer{Face: face}
	cur := Line{Ascent: met.Ascent, Descent: met.Descent}
	box := TextBox{Metrics: met}
	lead := firstLeading(spans)
	addLine := func() {
		box.Lines = append(box.Lines, cur)
		if cur.Width > box.Width {
			box.Width = cur.Width
		}
		box.Height += met.Ascent + met.Descent + met.LineGap + lead
		cur = Line{Ascent: met.Ascent, Descent: met.Descent}
	}
	for _, sp := range spans {
		if sp.Text == "" {
			continue
		}
		start := 0
		for i := 0; i <= len(sp.Text); i++ {
			if i == len(sp.Text) || sp.Text[i] == ' ' || sp.Text[i] == '\n' { // word boundary
				word := sp.Text[start:i]
				space := byte(0)
				if i < len(sp.Text) {
					space = sp.Text[i]
				}
				w := advance(drawer, word, sp.Tracking)
				if cur.Width > 0 && cur.Width+w > maxWidth && maxWidth > 0 {
					addLine()
				}
				if word != "" {
					cur.Spans = append(cur.Spans, Span{Text: word, Font: sp.Font, Tracking: sp.Tracking})
					cur.Width += w
				}
				if space == ' ' {
					ws := advance(drawer, " ", sp.Tracking)
					cur.Spans = append(cur.Spans, Span{Text: " ", Font: sp.Font, Tracking: sp.Tracking})
					cur.Width += ws
				} else if space == '\n' {
					addLine()
				}
				start = i + 1
			}
		}
	}
	// flush last line
	if len(cur.Spans) > 0 || len(box.Lines) == 0 {
		addLine()
	}
	return box, nil
}

func advance(d *font.Drawer, s string, tracking float32) float32 {
	w := float32(d.MeasureString(s) >> 6) // fixed.Int26_6 to px
	if n := utf8.RuneCountInString(s); n > 1 && tracking > 0 {
		w += tracking * float32(n-1)
	}
	return w
}

func firstFont(spans []Span) FontSpec {
	for _, sp := range spans {
		if sp.Text != "" {
			return sp.Font
		}
	}
	return FontSpec{}
}

func firstLeading(spans []Span) float32 {
	for _, sp := range spans {
		if sp.Text != "" {
			return sp.Leading
		}
	}
	return 0
}

// Measure returns text width and single-line height without line breaks.
func Measure(provider Provider, spans []Span) (w, h float32) {
	if provider == nil {
		provider = BasicProvider{}
	}
	_, met := provider.Resolve(firstFont(spans))
	var width float32
	var face font.Face
	for _, sp := range spans {
		face, _ = provider.Resolve(sp.Font)
		d := &font.Drawer{Face: face}
		width += advance(d, sp.Text, sp.Tracking)
	}
	lineH := met.Ascent + met.Descent
	return width, lineH
}

// FitResult reports whether a text fits the pixel box it was laid out into.
type FitResult struct {
	Box          TextBox
	BoxW, BoxH   float32
	NeededH      float32
	Overflows    bool
	OverflowRows int // lines that do not fit vertically
}

// CheckFit lays the spans into boxW and reports vertical overflow against
// boxH. The editor shows an overflow badge on the textbox when a translation
// runs longer than the language it was drawn for.
func CheckFit(provider Provider, spans []Span, boxW, boxH float32) (FitResult, error) {
	l := NewWordWrap(provider)
	box, err := l.Layout(spans, boxW)
	if err != nil {
		return FitResult{}, err
	}
	res := FitResult{Box: box, BoxW: boxW, BoxH: boxH, NeededH: box.Height}
	if box.Height > boxH {
		res.Overflows = true
		if n := len(box.Lines); n > 0 {
			perLine := box.Height / float32(n)
			if perLine > 0 {
				fit := int(boxH / perLine)
				if fit < 0 {
					fit = 0
				}
				if fit > n {
					fit = n
				}
				res.OverflowRows = n - fit
			}
		}
	}
	return res, nil
}
