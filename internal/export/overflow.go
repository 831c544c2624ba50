/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"

	"gopicturebook/internal/domain"
	"gopicturebook/internal/textlayout"
)

// OverflowWarning flags a textbox whose copy runs longer than its box at the
// checked canvas size. Translations commonly grow past the box that was
// drawn for the original language; exports surface that instead of silently
// clipping.
type OverflowWarning struct {
	SpreadID     string
	TextboxID    string
	Language     string
	BoxH         float32 // px at the checked canvas size
	NeededH      float32
	OverflowRows int
}

func (w OverflowWarning) String() string {
	return fmt.Sprintf("%s/%s [%s]: text needs %.0fpx, box is %.0fpx (%d rows clipped)",
		w.SpreadID, w.TextboxID, w.Language, w.NeededH, w.BoxH, w.OverflowRows)
}

// CheckTextOverflow lays out every player-visible textbox of the book at a
// canvas of w by h pixels and reports the ones that overflow vertically. A
// nil provider falls back to the deterministic builtin face.
func CheckTextOverflow(book *domain.Book, lang string, w, h int, provider textlayout.Provider) ([]OverflowWarning, error) {
	if book == nil {
		return nil, fmt.Errorf("book is nil")
	}
	if w <= 0 {
		w = defaultPNGWidth
	}
	if h <= 0 {
		h = defaultPNGHeight
	}
	if provider == nil {
		provider = textlayout.BasicProvider{}
	}
	var out []OverflowWarning
	for si := range book.Spreads {
		sp := &book.Spreads[si]
		for _, tb := range sp.Textboxes {
			if !tb.InPlayer() {
				continue
			}
			v, ok := variantFor(tb, lang, book.DefaultLanguage)
			if !ok || v.Text == "" {
				continue
			}
			boxW := float32(v.Geometry.W / 100 * float64(w))
			boxH := float32(v.Geometry.H / 100 * float64(h))
			span := textlayout.Span{Text: v.Text, Font: textlayout.SpecFromTypography(v.Typography)}
			if v.Typography.LineHeight > 1 {
				// LineHeight is a multiplier; the layouter takes extra
				// pixels per line.
				span.Leading = float32((v.Typography.LineHeight - 1) * float64(span.Font.SizePt))
			}
			fit, err := textlayout.CheckFit(provider, []textlayout.Span{span}, boxW, boxH)
			if err != nil {
				return nil, fmt.Errorf("fit check %s/%s: %w", sp.ID, tb.ID, err)
			}
			if fit.Overflows {
				out = append(out, OverflowWarning{
					SpreadID:     sp.ID,
					TextboxID:    tb.ID,
					Language:     lang,
					BoxH:         boxH,
					NeededH:      fit.NeededH,
					OverflowRows: fit.OverflowRows,
				})
			}
		}
	}
	return out, nil
}
