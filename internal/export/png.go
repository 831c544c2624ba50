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
	"os"
	"path/filepath"
	"sort"

	"github.com/fogleman/gg"

	"gopicturebook/internal/domain"
	"gopicturebook/internal/storage"
)

// PNGOptions controls raster preview export.
type PNGOptions struct {
	Width    int // canvas width in px; default 1600
	Height   int // canvas height in px; default 1000
	Language string
	Spreads  []int  // if empty, export all spreads
	FontPath string // optional TTF for textbox copy; default bitmap face otherwise
	FontSize float64
}

const (
	defaultPNGWidth  = 1600
	defaultPNGHeight = 1000
)

// ExportBookPNGSpreads renders one PNG per spread into outDir, named
// spread-001.png onward. Missing assets degrade to outlined placeholders so
// a preview export never fails on a half-assembled book.
func ExportBookPNGSpreads(bh *storage.BookHandle, outDir string, opt PNGOptions) error {
	if bh == nil {
		return fmt.Errorf("book handle is nil")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	lang := opt.Language
	if lang == "" {
		lang = bh.Book.DefaultLanguage
	}
	for _, idx := range spreadIndexes(len(bh.Book.Spreads), opt.Spreads) {
		out := filepath.Join(outDir, spreadName(idx)+".png")
		if err := renderSpreadPNG(bh.Book.Spreads[idx], bh.Root, lang, out, opt); err != nil {
			return fmt.Errorf("render %s: %w", spreadName(idx), err)
		}
	}
	return nil
}

func renderSpreadPNG(sp domain.Spread, root, lang, outPath string, opt PNGOptions) error {
	w, h := opt.Width, opt.Height
	if w <= 0 {
		w = defaultPNGWidth
	}
	if h <= 0 {
		h = defaultPNGHeight
	}
	dc := gg.NewContext(w, h)

	// Background
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	if len(sp.Pages) > 0 && sp.Pages[0].Background.Color != "" {
		c := parseHexColor(sp.Pages[0].Background.Color)
		dc.SetRGB255(int(c.R), int(c.G), int(c.B))
		dc.Clear()
	}

	if opt.FontPath != "" {
		size := opt.FontSize
		if size <= 0 {
			size = 28
		}
		// Best effort; the default bitmap face still renders the copy.
		_ = dc.LoadFontFace(opt.FontPath, size)
	}

	px := func(g domain.Geometry) (x, y, gw, gh float64) {
		return g.X / 100 * float64(w), g.Y / 100 * float64(h), g.W / 100 * float64(w), g.H / 100 * float64(h)
	}

	type placed struct {
		z   int
		url string
		g   domain.Geometry
	}
	var items []placed
	for _, im := range sp.Images {
		if im.InPlayer() {
			items = append(items, placed{z: im.EffectiveZ(), url: im.URL, g: im.Geometry})
		}
	}
	for _, ob := range sp.Objects {
		if ob.InPlayer() {
			items = append(items, placed{z: ob.EffectiveZ(), url: ob.URL, g: ob.Geometry})
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].z < items[j].z })

	for _, it := range items {
		x, y, gw, gh := px(it.g)
		if path := assetPath(root, it.url); path != "" {
			if img, err := gg.LoadImage(path); err == nil {
				b := img.Bounds()
				if b.Dx() > 0 && b.Dy() > 0 {
					dc.Push()
					dc.Translate(x, y)
					dc.Scale(gw/float64(b.Dx()), gh/float64(b.Dy()))
					dc.DrawImage(img, 0, 0)
					dc.Pop()
					continue
				}
			}
		}
		// Placeholder for missing or remote assets.
		dc.SetRGB255(230, 230, 230)
		dc.DrawRectangle(x, y, gw, gh)
		dc.Fill()
		dc.SetRGB255(150, 150, 150)
		dc.SetLineWidth(2)
		dc.DrawRectangle(x, y, gw, gh)
		dc.Stroke()
	}

	for _, tb := range sp.Textboxes {
		if !tb.InPlayer() {
			continue
		}
		v, ok := variantFor(tb, lang, "")
		if !ok || v.Text == "" {
			continue
		}
		x, y, gw, gh := px(v.Geometry)
		if v.Fill != nil {
			c := parseHexColor(v.Fill.Color)
			dc.SetRGB255(int(c.R), int(c.G), int(c.B))
			dc.DrawRectangle(x, y, gw, gh)
			dc.Fill()
		}
		if v.Outline != nil {
			c := parseHexColor(v.Outline.Color)
			dc.SetRGB255(int(c.R), int(c.G), int(c.B))
			dc.SetLineWidth(v.Outline.Width)
			dc.DrawRectangle(x, y, gw, gh)
			dc.Stroke()
		}
		col := parseHexColor(v.Typography.Color)
		dc.SetRGB255(int(col.R), int(col.G), int(col.B))
		align := gg.AlignLeft
		switch v.Typography.Align {
		case "center":
			align = gg.AlignCenter
		case "right":
			align = gg.AlignRight
		}
		lineSpacing := 1.3
		if v.Typography.LineHeight > 0 {
			lineSpacing = v.Typography.LineHeight
		}
		dc.Push()
		dc.DrawRectangle(x, y, gw, gh)
		dc.Clip()
		dc.DrawStringWrapped(v.Text, x, y, 0, 0, gw, lineSpacing, align)
		dc.ResetClip()
		dc.Pop()
	}

	return dc.SavePNG(outPath)
}
