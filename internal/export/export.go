/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a book into distributable formats: a multi-page
// PDF, per-spread PNG previews, and a fixed-layout EPUB. All exporters work
// from the manifest's percent geometry; no live editor state is involved.
package export

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopicturebook/internal/domain"
)

// parseHexColor reads "#rgb", "#rrggbb" or "#rrggbbaa". Unparseable input
// yields opaque black, matching the manifest default.
func parseHexColor(s string) color.RGBA {
	c := color.RGBA{A: 255}
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
		fallthrough
	case 6:
		if v, err := strconv.ParseUint(s, 16, 32); err == nil {
			c.R, c.G, c.B = uint8(v>>16), uint8(v>>8), uint8(v)
		}
	case 8:
		if v, err := strconv.ParseUint(s, 16, 64); err == nil {
			c.R, c.G, c.B, c.A = uint8(v>>24), uint8(v>>16), uint8(v>>8), uint8(v)
		}
	}
	return c
}

// variantFor resolves a textbox's variant in lang, falling back to the book
// default and then any language.
func variantFor(tb domain.Textbox, lang, fallback string) (domain.TextVariant, bool) {
	if v, ok := tb.Languages[lang]; ok {
		return v, true
	}
	if v, ok := tb.Languages[fallback]; ok {
		return v, true
	}
	return tb.Variant("")
}

// spreadName names a spread for file names and EPUB page titles.
func spreadName(i int) string {
	return fmt.Sprintf("spread-%03d", i+1)
}
