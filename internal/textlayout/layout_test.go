/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import "testing"

func TestWordWrap_Naive(t *testing.T) {
	l := NewWordWrap(BasicProvider{})
	box, err := l.Layout([]Span{{Text: "Hello world from Go", Font: FontSpec{}}}, 50)
	if err != nil {
		t.Fatalf("layout error: %v", err)
	}
	if len(box.Lines) < 2 {
		t.Fatalf("expected wrapping into multiple lines, got %d", len(box.Lines))
	}
	if box.Width <= 0 || box.Height <= 0 {
		t.Fatalf("expected positive box size: %+v", box)
	}
}

func TestWordWrap_NewlineBreaks(t *testing.T) {
	l := NewWordWrap(BasicProvider{})
	box, err := l.Layout([]Span{{Text: "one\ntwo"}}, 0)
	if err != nil {
		t.Fatalf("layout error: %v", err)
	}
	if len(box.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(box.Lines))
	}
}

func TestMeasure_Deterministic(t *testing.T) {
	w1, h1 := Measure(BasicProvider{}, []Span{{Text: "ABC"}})
	w2, h2 := Measure(BasicProvider{}, []Span{{Text: "A"}, {Text: "BC"}})
	if w1 != w2 || h1 != h2 {
		t.Fatalf("expected same measure, got w1=%v h1=%v vs w2=%v h2=%v", w1, h1, w2, h2)
	}
}

func TestTrackingIncreasesWidth(t *testing.T) {
	base := []Span{{Text: "ABCD", Font: FontSpec{}}}
	withTrack := []Span{{Text: "ABCD", Font: FontSpec{}, Tracking: 1}}
	w0, _ := Measure(BasicProvider{}, base)
	w1, _ := Measure(BasicProvider{}, withTrack)
	if !(w1 > w0) {
		t.Fatalf("expected tracking to increase width: w0=%v w1=%v", w0, w1)
	}
}

func TestLeadingIncreasesHeight(t *testing.T) {
	l := NewWordWrap(BasicProvider{})
	spans0 := []Span{{Text: "Hello world from Go", Font: FontSpec{}, Leading: 0}}
	spans1 := []Span{{Text: "Hello world from Go", Font: FontSpec{}, Leading: 4}}
	b0, err := l.Layout(spans0, 50)
	if err != nil {
		t.Fatalf("layout0: %v", err)
	}
	b1, err := l.Layout(spans1, 50)
	if err != nil {
		t.Fatalf("layout1: %v", err)
	}
	if !(b1.Height > b0.Height) {
		t.Fatalf("expected leading to increase height: h0=%v h1=%v", b0.Height, b1.Height)
	}
}

func TestCheckFit_Overflow(t *testing.T) {
	spans := []Span{{Text: "a long sentence that will certainly wrap into several lines"}}
	fit, err := CheckFit(BasicProvider{}, spans, 60, 1000)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if fit.Overflows {
		t.Fatalf("tall box should not overflow: %+v", fit)
	}
	tight, err := CheckFit(BasicProvider{}, spans, 60, 10)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if !tight.Overflows {
		t.Fatalf("short box should overflow, needed %v px", tight.NeededH)
	}
	if tight.OverflowRows < 1 {
		t.Fatalf("expected at least one overflowing row, got %d", tight.OverflowRows)
	}
}

func TestOTProvider_Fallback(t *testing.T) {
	// No fonts loaded; resolve works via the bitmap fallback.
	otp := OTProvider{Lib: NewFontLibrary()}
	w, h := Measure(otp, []Span{{Text: "Hello", Font: FontSpec{Family: "Nonexistent", SizePt: 12}}})
	if w <= 0 || h <= 0 {
		t.Fatalf("expected positive measure with fallback: w=%v h=%v", w, h)
	}
}
