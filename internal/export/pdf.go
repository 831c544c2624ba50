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

	"github.com/jung-kurt/gofpdf"

	"gopicturebook/internal/domain"
	"gopicturebook/internal/storage"
)

// PDFOptions controls PDF export behavior. Units are points (pt).
//
// Coordinates: page origin is top-left; percent geometry maps linearly onto
// the spread page size. Built-in Helvetica keeps text vector without
// embedding.
type PDFOptions struct {
	PageWidthPt  float64 // one spread per PDF page; default landscape letter
	PageHeightPt float64
	Language     string // textbox language; falls back to book default
	Spreads      []int  // if empty, export all spreads
	DrawBorders  bool   // hairline item borders, useful for proofs
}

const (
	defaultPageWPt = 792 // 11in landscape
	defaultPageHPt = 612 // 8.5in
)

// ExportBookPDF exports the book to a single multi-page PDF placed at outPath.
func ExportBookPDF(bh *storage.BookHandle, outPath string, opt PDFOptions) error {
	if bh == nil {
		return fmt.Errorf("book handle is nil")
	}
	pageW := opt.PageWidthPt
	pageH := opt.PageHeightPt
	if pageW <= 0 {
		pageW = defaultPageWPt
	}
	if pageH <= 0 {
		pageH = defaultPageHPt
	}
	lang := opt.Language
	if lang == "" {
		lang = bh.Book.DefaultLanguage
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: pageW, Ht: pageH},
		OrientationStr: "",
	})
	pdf.SetTitle(bh.Book.Title, true)
	if bh.Book.Metadata.Author != "" {
		pdf.SetAuthor(bh.Book.Metadata.Author, true)
	}
	pdf.SetFont("Helvetica", "", 12)

	for _, idx := range spreadIndexes(len(bh.Book.Spreads), opt.Spreads) {
		sp := bh.Book.Spreads[idx]
		pdf.AddPage()
		drawSpreadPDF(pdf, sp, bh.Root, lang, pageW, pageH, opt.DrawBorders)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func drawSpreadPDF(pdf *gofpdf.Fpdf, sp domain.Spread, root, lang string, pageW, pageH float64, borders bool) {
	// Page background from the first page's fill.
	if len(sp.Pages) > 0 && sp.Pages[0].Background.Color != "" {
		c := parseHexColor(sp.Pages[0].Background.Color)
		pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
		pdf.Rect(0, 0, pageW, pageH, "F")
	}

	toPt := func(g domain.Geometry) (x, y, w, h float64) {
		return g.X / 100 * pageW, g.Y / 100 * pageH, g.W / 100 * pageW, g.H / 100 * pageH
	}

	// Images and objects render z-ascending beneath the textboxes.
	type placed struct {
		z   int
		url string
		g   domain.Geometry
	}
	var items []placed
	for _, im := range sp.Images {
		if !im.InPlayer() {
			continue
		}
		items = append(items, placed{z: im.EffectiveZ(), url: im.URL, g: im.Geometry})
	}
	for _, ob := range sp.Objects {
		if !ob.InPlayer() {
			continue
		}
		items = append(items, placed{z: ob.EffectiveZ(), url: ob.URL, g: ob.Geometry})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].z < items[j].z })

	for _, it := range items {
		x, y, w, h := toPt(it.g)
		path := assetPath(root, it.url)
		if path != "" {
			pdf.ImageOptions(path, x, y, w, h, false, gofpdf.ImageOptions{}, 0, "")
		} else if borders {
			pdf.SetDrawColor(180, 180, 180)
			pdf.Rect(x, y, w, h, "D")
		}
		if borders {
			pdf.SetDrawColor(120, 120, 120)
			pdf.Rect(x, y, w, h, "D")
		}
	}

	for _, tb := range sp.Textboxes {
		if !tb.InPlayer() {
			continue
		}
		v, ok := variantFor(tb, lang, "")
		if !ok || v.Text == "" {
			continue
		}
		x, y, w, h := toPt(v.Geometry)
		if v.Fill != nil {
			c := parseHexColor(v.Fill.Color)
			pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
			pdf.Rect(x, y, w, h, "F")
		}
		if v.Outline != nil {
			c := parseHexColor(v.Outline.Color)
			pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
			pdf.SetLineWidth(v.Outline.Width)
			pdf.Rect(x, y, w, h, "D")
		}
		size := v.Typography.Size
		if size <= 0 {
			size = 14
		}
		col := parseHexColor(v.Typography.Color)
		pdf.SetTextColor(int(col.R), int(col.G), int(col.B))
		pdf.SetFont("Helvetica", "", size)
		align := "L"
		switch v.Typography.Align {
		case "center":
			align = "C"
		case "right":
			align = "R"
		}
		lineH := size * 1.3
		if v.Typography.LineHeight > 0 {
			lineH = size * v.Typography.LineHeight
		}
		pdf.SetXY(x, y)
		pdf.MultiCell(w, lineH, v.Text, "", align, false)
	}
}

// assetPath resolves a relative asset URL inside the book root; remote or
// missing assets yield "".
func assetPath(root, url string) string {
	if url == "" || root == "" {
		return ""
	}
	if filepath.IsAbs(url) {
		return ""
	}
	for _, prefix := range []string{"http://", "https://"} {
		if len(url) > len(prefix) && url[:len(prefix)] == prefix {
			return ""
		}
	}
	p := filepath.Join(root, filepath.FromSlash(url))
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

func spreadIndexes(total int, specific []int) []int {
	if len(specific) == 0 {
		out := make([]int, 0, total)
		for i := 0; i < total; i++ {
			out = append(out, i)
		}
		return out
	}
	var out []int
	for _, i := range specific {
		if i >= 0 && i < total {
			out = append(out, i)
		}
	}
	return out
}
