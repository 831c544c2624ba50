/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"archive/zip"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopicturebook/internal/domain"
	"gopicturebook/internal/storage"
)

// newExportBook initializes a book with one spread, a real PNG asset on
// disk, a textbox in two languages and an object pointing at a missing file.
func newExportBook(t *testing.T) *storage.BookHandle {
	t.Helper()
	root := t.TempDir()
	book := domain.Book{
		Title:           "Goodnight Fox",
		Metadata:        domain.Metadata{Author: "A. Writer"},
		DefaultLanguage: "en",
		Languages:       []string{"en", "de"},
		Spreads: []domain.Spread{{
			ID: "s1",
			Pages: []domain.Page{
				{Number: 1, Background: domain.Background{Color: "#ffeedd"}},
				{Number: 2},
			},
			Images: []domain.Image{{
				ID:       "img1",
				Geometry: domain.Geometry{X: 10, Y: 10, W: 40, H: 40},
				URL:      "assets/fox.png",
			}},
			Objects: []domain.Object{{
				ID:       "obj1",
				Geometry: domain.Geometry{X: 60, Y: 60, W: 20, H: 20},
				URL:      "assets/missing.png",
			}},
			Textboxes: []domain.Textbox{{
				ID: "txt1",
				Languages: map[string]domain.TextVariant{
					"en": {
						Text:       "Goodnight, fox.",
						Geometry:   domain.Geometry{X: 10, Y: 70, W: 40, H: 15},
						Typography: domain.Typography{Size: 18, Color: "#222222", Align: "center"},
						Fill:       &domain.Fill{Color: "#ffffff"},
					},
					"de": {
						Text:     "Gute Nacht, Fuchs.",
						Geometry: domain.Geometry{X: 10, Y: 70, W: 40, H: 15},
					},
				},
			}},
		}},
	}
	bh, err := storage.InitBook(root, book)
	if err != nil {
		t.Fatalf("init book: %v", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	f, err := os.Create(filepath.Join(root, "assets", "fox.png"))
	if err != nil {
		t.Fatalf("create asset: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode asset: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close asset: %v", err)
	}
	return bh
}

func TestExportBookPDF(t *testing.T) {
	bh := newExportBook(t)
	out := filepath.Join(bh.Root, "exports", "book.pdf")
	if err := ExportBookPDF(bh, out, PDFOptions{}); err != nil {
		t.Fatalf("export pdf: %v", err)
	}
	st, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if st.Size() <= 0 {
		t.Fatalf("pdf empty")
	}
	head := make([]byte, 5)
	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = f.Close() }()
	if _, err := io.ReadFull(f, head); err != nil {
		t.Fatalf("read head: %v", err)
	}
	if string(head) != "%PDF-" {
		t.Fatalf("not a pdf: %q", head)
	}
}

func TestExportBookPNGSpreads(t *testing.T) {
	bh := newExportBook(t)
	outDir := filepath.Join(bh.Root, "exports", "png")
	if err := ExportBookPNGSpreads(bh, outDir, PNGOptions{Width: 320, Height: 200}); err != nil {
		t.Fatalf("export png: %v", err)
	}
	out := filepath.Join(outDir, "spread-001.png")
	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = f.Close() }()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != 320 || cfg.Height != 200 {
		t.Fatalf("unexpected dimensions %dx%d", cfg.Width, cfg.Height)
	}
}

func TestExportBookEPUB_Structure(t *testing.T) {
	bh := newExportBook(t)
	out := filepath.Join(bh.Root, "exports", "book.epub")
	if err := ExportBookEPUB(bh, out, EPUBOptions{}); err != nil {
		t.Fatalf("export epub: %v", err)
	}

	rd, err := zip.OpenReader(out)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer func() { _ = rd.Close() }()

	if len(rd.File) == 0 {
		t.Fatalf("zip has no entries")
	}
	if rd.File[0].Name != "mimetype" {
		t.Fatalf("first entry is not mimetype, got %s", rd.File[0].Name)
	}
	if rd.File[0].Method != zip.Store {
		t.Fatalf("mimetype is not stored (uncompressed)")
	}

	want := map[string]bool{
		"META-INF/container.xml": false,
		"OEBPS/content.opf":      false,
		"OEBPS/nav.xhtml":        false,
		"OEBPS/styles/book.css":  false,
		"OEBPS/spread-001.xhtml": false,
		"OEBPS/assets/a001.png":  false,
	}
	for _, f := range rd.File {
		if _, ok := want[f.Name]; ok {
			want[f.Name] = true
		}
	}
	for name, ok := range want {
		if !ok {
			t.Fatalf("missing entry: %s", name)
		}
	}

	opf := readZipEntry(t, rd, "OEBPS/content.opf")
	if !strings.Contains(opf, "rendition:layout\">pre-paginated") {
		t.Fatalf("opf missing fixed-layout metadata: %s", opf)
	}
	if !strings.Contains(opf, "<dc:title>Goodnight Fox</dc:title>") {
		t.Fatalf("opf missing title: %s", opf)
	}
	if !strings.Contains(opf, "<dc:creator>A. Writer</dc:creator>") {
		t.Fatalf("opf missing creator: %s", opf)
	}

	page := readZipEntry(t, rd, "OEBPS/spread-001.xhtml")
	if !strings.Contains(page, "Goodnight, fox.") {
		t.Fatalf("spread page missing text: %s", page)
	}
	if !strings.Contains(page, "left:10.00%") {
		t.Fatalf("spread page missing percent positioning: %s", page)
	}
	// The missing object asset must not produce an element.
	if strings.Contains(page, "missing.png") {
		t.Fatalf("spread page references missing asset: %s", page)
	}
}

func TestExportBookEPUB_LanguageVariant(t *testing.T) {
	bh := newExportBook(t)
	out := filepath.Join(bh.Root, "exports", "book-de.epub")
	if err := ExportBookEPUB(bh, out, EPUBOptions{Language: "de"}); err != nil {
		t.Fatalf("export epub: %v", err)
	}
	rd, err := zip.OpenReader(out)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer func() { _ = rd.Close() }()
	page := readZipEntry(t, rd, "OEBPS/spread-001.xhtml")
	if !strings.Contains(page, "Gute Nacht, Fuchs.") {
		t.Fatalf("spread page missing german text: %s", page)
	}
	if strings.Contains(page, "Goodnight, fox.") {
		t.Fatalf("spread page leaked english text: %s", page)
	}
}

func TestBatchExportPresets(t *testing.T) {
	bh := newExportBook(t)
	if _, err := BatchExport(bh, BatchOptions{Preset: PresetDigital, Languages: []string{"en", "de"}}); err != nil {
		t.Fatalf("batch export: %v", err)
	}
	base := filepath.Join(bh.Root, "exports", "digital")
	for _, p := range []string{
		filepath.Join(base, "book-en.epub"),
		filepath.Join(base, "book-de.epub"),
		filepath.Join(base, "png", "en", "spread-001.png"),
		filepath.Join(base, "png", "de", "spread-001.png"),
	} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("missing output %s: %v", p, err)
		}
	}
}

func TestBatchExportUnknownFormat(t *testing.T) {
	bh := newExportBook(t)
	_, err := BatchExport(bh, BatchOptions{Formats: []string{"docx"}})
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Fatalf("expected unknown format error, got %v", err)
	}
}

func TestCheckTextOverflowFlagsLongTranslation(t *testing.T) {
	bh := newExportBook(t)
	sp := &bh.Book.Spreads[0]
	long := strings.Repeat("der schnelle braune Fuchs springt ", 40)
	sp.Textboxes = append(sp.Textboxes, domain.Textbox{
		ID: "txt2",
		Languages: map[string]domain.TextVariant{
			"en": {Text: "short", Geometry: domain.Geometry{X: 5, Y: 5, W: 30, H: 10}},
			"de": {Text: long, Geometry: domain.Geometry{X: 5, Y: 5, W: 30, H: 2}},
		},
	})

	ws, err := CheckTextOverflow(&bh.Book, "en", 0, 0, nil)
	if err != nil {
		t.Fatalf("overflow check: %v", err)
	}
	if len(ws) != 0 {
		t.Fatalf("english copy fits, got warnings %v", ws)
	}

	ws, err = CheckTextOverflow(&bh.Book, "de", 0, 0, nil)
	if err != nil {
		t.Fatalf("overflow check: %v", err)
	}
	if len(ws) != 1 || ws[0].TextboxID != "txt2" {
		t.Fatalf("want one warning for txt2, got %v", ws)
	}
	if ws[0].NeededH <= ws[0].BoxH || ws[0].OverflowRows == 0 {
		t.Fatalf("warning carries no useful measurements: %+v", ws[0])
	}
	if !strings.Contains(ws[0].String(), "txt2") {
		t.Fatalf("warning string: %s", ws[0].String())
	}
}

func TestBatchExportReportsOverflow(t *testing.T) {
	bh := newExportBook(t)
	sp := &bh.Book.Spreads[0]
	long := strings.Repeat("ein sehr langer Satz ", 60)
	sp.Textboxes = append(sp.Textboxes, domain.Textbox{
		ID: "txt2",
		Languages: map[string]domain.TextVariant{
			"de": {Text: long, Geometry: domain.Geometry{X: 5, Y: 5, W: 20, H: 2}},
		},
	})
	ws, err := BatchExport(bh, BatchOptions{Preset: PresetReview, Languages: []string{"de"}})
	if err != nil {
		t.Fatalf("batch export: %v", err)
	}
	if len(ws) != 1 || ws[0].TextboxID != "txt2" {
		t.Fatalf("want overflow warning for txt2, got %v", ws)
	}
}

func readZipEntry(t *testing.T, rd *zip.ReadCloser, name string) string {
	t.Helper()
	for _, f := range rd.File {
		if f.Name != name {
			continue
		}
		r, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		data, err := io.ReadAll(r)
		_ = r.Close()
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		return string(data)
	}
	t.Fatalf("entry %s not found", name)
	return ""
}
