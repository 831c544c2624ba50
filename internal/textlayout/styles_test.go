/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package textlayout

import (
	"testing"

	"gopicturebook/internal/domain"
)

func TestBuiltinStyles(t *testing.T) {
	names := ListStyles()
	if len(names) < 3 {
		t.Fatalf("expected at least 3 builtin styles, got %v", names)
	}
	for _, n := range []string{"Narration", "Dialogue", "Title"} {
		if _, ok := GetStyle(n); !ok {
			t.Fatalf("%s style missing", n)
		}
	}
}

func TestSpecFromTypography(t *testing.T) {
	spec := SpecFromTypography(domain.Typography{Font: "Georgia", Size: 18})
	if spec.Family != "Georgia" || spec.SizePt != 18 {
		t.Fatalf("unexpected spec: %+v", spec)
	}
	// Zero size falls back to a usable default.
	spec = SpecFromTypography(domain.Typography{})
	if spec.SizePt <= 0 {
		t.Fatalf("expected default size, got %v", spec.SizePt)
	}
}

func TestStyleTypographyRoundTrip(t *testing.T) {
	st, ok := GetStyle("Title")
	if !ok {
		t.Fatalf("Title style missing")
	}
	ty := st.Typography()
	if ty.Font != st.Font.Family || ty.Size != float64(st.Font.SizePt) {
		t.Fatalf("typography does not match style: %+v vs %+v", ty, st)
	}
}

func TestStyleSheet_ResolvePrecedence(t *testing.T) {
	ss := NewStyleSheet()
	b, ok := ss.Resolve("Dialogue")
	if !ok {
		t.Fatalf("expected builtin Dialogue")
	}

	bookOver := TextStyle{Name: "Dialogue", Font: b.Font, Tracking: 1.25, Leading: b.Leading}
	spreadOver := TextStyle{Name: "Dialogue", Font: b.Font, Tracking: bookOver.Tracking, Leading: 9}

	ss = ss.WithBook(map[string]TextStyle{"Dialogue": bookOver})
	got, ok := ss.Resolve("Dialogue")
	if !ok {
		t.Fatalf("resolve after book override failed")
	}
	if got.Tracking != 1.25 {
		t.Fatalf("book override not applied: got tracking=%v", got.Tracking)
	}
	if got.Leading != b.Leading {
		t.Fatalf("book override should not change leading: got leading=%v want %v", got.Leading, b.Leading)
	}

	ss = ss.WithSpread(map[string]TextStyle{"Dialogue": spreadOver})
	got2, ok := ss.Resolve("Dialogue")
	if !ok {
		t.Fatalf("resolve after spread override failed")
	}
	if got2.Leading != 9 {
		t.Fatalf("spread override not applied: got leading=%v", got2.Leading)
	}
	if got2.Tracking != 1.25 {
		t.Fatalf("spread should inherit book tracking when not overridden: got tracking=%v", got2.Tracking)
	}
}

func TestStyleSheet_FallbackBuiltin(t *testing.T) {
	ss := &StyleSheet{Global: map[string]TextStyle{}, Book: map[string]TextStyle{}, Spread: map[string]TextStyle{}}
	if _, ok := ss.Resolve("Narration"); !ok {
		t.Fatalf("expected builtin fallback for Narration")
	}
	if _, ok := ss.Resolve("Nonexistent"); ok {
		t.Fatalf("unexpected resolve of unknown style")
	}
}

func TestStyleSheet_NamesDeterministic(t *testing.T) {
	ss := NewStyleSheet()
	ss = ss.WithSpread(map[string]TextStyle{"Whisper": {Name: "Whisper", Font: FontSpec{Family: "Georgia", SizePt: 10, Italic: true}}})
	names := ss.Names()
	if len(names) < 4 {
		t.Fatalf("expected at least 4 names, got %v", names)
	}
	if names[0] != "Narration" || names[1] != "Dialogue" || names[2] != "Title" {
		t.Fatalf("unexpected initial order: %v", names)
	}
}
