package domain

import (
	"encoding/json"
	"testing"
)

func TestBookJSONRoundTrip(t *testing.T) {
	b := Book{
		Title:           "RoundTrip",
		DefaultLanguage: "en",
		Spreads: []Spread{
			{
				ID:    "s1",
				Pages: []Page{{Number: 1, Layout: "full-bleed"}, {Number: 2}},
				Textboxes: []Textbox{{
					ID: "t1",
					Languages: map[string]TextVariant{
						"en": {Text: "Once upon a time", Geometry: Geometry{X: 10, Y: 70, W: 40, H: 15}},
					},
				}},
			},
		},
	}

	raw, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Book
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Title != b.Title || len(got.Spreads) != 1 {
		t.Fatalf("unexpected structure: %+v", got)
	}
	v, ok := got.Spreads[0].Textboxes[0].Variant("en")
	if !ok || v.Text != "Once upon a time" {
		t.Fatalf("variant lost in round trip: %+v", v)
	}
}

func TestPageLayoutLock(t *testing.T) {
	p := Page{Number: 1}
	if p.IsLayoutLocked() {
		t.Fatalf("empty layout must not be locked")
	}
	p.Layout = "two-thirds"
	if !p.IsLayoutLocked() {
		t.Fatalf("assigned layout must be locked")
	}
}

func TestVisibilityDefaultsToVisible(t *testing.T) {
	var im Image
	if !im.InEditor() || !im.InPlayer() {
		t.Fatalf("unset flags must mean visible")
	}
	hidden := false
	im.PlayerVisible = &hidden
	if im.InPlayer() {
		t.Fatalf("explicit false must hide")
	}
	if !im.InEditor() {
		t.Fatalf("editor flag must be independent")
	}
}

func TestEffectiveZOrdering(t *testing.T) {
	bg := Image{Role: RoleBackground}
	ch := Image{Role: RoleCharacter}
	ob := Object{}
	pr := Object{Role: RoleProp}
	fg := Image{Role: RoleForeground}
	tb := Textbox{}
	if !(bg.EffectiveZ() < ch.EffectiveZ() && ch.EffectiveZ() < ob.EffectiveZ() &&
		ob.EffectiveZ() < pr.EffectiveZ() && pr.EffectiveZ() < fg.EffectiveZ() &&
		fg.EffectiveZ() < tb.EffectiveZ()) {
		t.Fatalf("default z bands out of order")
	}
	z := 7
	ob.ZIndex = &z
	if ob.EffectiveZ() != 7 {
		t.Fatalf("explicit zIndex must win, got %d", ob.EffectiveZ())
	}
}

func TestSpreadHasContent(t *testing.T) {
	var s Spread
	if s.HasContent() {
		t.Fatalf("empty spread must report no content")
	}
	s.Objects = append(s.Objects, Object{ID: "o1"})
	if !s.HasContent() {
		t.Fatalf("spread with object must report content")
	}
}
