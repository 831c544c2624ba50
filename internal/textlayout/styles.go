/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import "gopicturebook/internal/domain"

// TextStyle is a reusable preset combining a font spec with spacing commonly
// used in picture book text. Tracking and Leading are measured in pixels.
//
// Kerning is applied by the text engine (font.Drawer / Face.Kern) and is
// always on for deterministic results.

type TextStyle struct {
	Name     string
	Font     FontSpec
	Tracking float32 // px between glyphs (added per inter-glyph gap)
	Leading  float32 // extra px added to line height
}

var builtinStyles = map[string]TextStyle{
	// Sizes are in points. Authors can override per book.
	"Narration": {
		Name:     "Narration",
		Font:     FontSpec{Family: "Georgia", SizePt: 16, Weight: 400, Italic: false},
		Tracking: 0.0,
		Leading:  4.0,
	},
	"Dialogue": {
		Name:     "Dialogue",
		Font:     FontSpec{Family: "Comic Sans MS", SizePt: 14, Weight: 400, Italic: false},
		Tracking: 0.0,
		Leading:  2.0,
	},
	"Title": {
		Name:     "Title",
		Font:     FontSpec{Family: "Georgia", SizePt: 32, Weight: 700, Italic: false},
		Tracking: 0.5,
		Leading:  0.0,
	},
}

// GetStyle returns a builtin style preset by name. The second return value is
// false if the style is not found.
func GetStyle(name string) (TextStyle, bool) { s, ok := builtinStyles[name]; return s, ok }

// ListStyles lists the names of the builtin styles in stable order.
func ListStyles() []string {
	return []string{"Narration", "Dialogue", "Title"}
}

// SpecFromTypography maps a textbox variant's typography to a FontSpec so the
// same settings drive fit checks and raster previews.
func SpecFromTypography(ty domain.Typography) FontSpec {
	spec := FontSpec{Family: ty.Font, SizePt: float32(ty.Size), Weight: 400}
	if spec.SizePt <= 0 {
		spec.SizePt = 14
	}
	return spec
}

// Typography converts a style preset into the manifest typography applied to
// new textboxes created with that preset.
func (s TextStyle) Typography() domain.Typography {
	return domain.Typography{
		Font: s.Font.Family,
		Size: float64(s.Font.SizePt),
	}
}
