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
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopicturebook/internal/domain"
	"gopicturebook/internal/storage"
)

// EPUBOptions controls EPUB 3 fixed-layout export.
type EPUBOptions struct {
	Title       string
	Author      string
	Language    string // e.g. "en"
	Publisher   string
	Description string
	Spreads     []int // if empty, export all spreads
	ViewportW   int   // fixed-layout viewport width in px; default 1600
	ViewportH   int   // fixed-layout viewport height in px; default 1000
}

// ExportBookEPUB writes the book as an EPUB 3 fixed-layout package. Each
// spread becomes one pre-paginated XHTML page with percent-positioned
// elements, and referenced local assets are copied into the package.
func ExportBookEPUB(bh *storage.BookHandle, outPath string, opt EPUBOptions) error {
	if bh == nil {
		return fmt.Errorf("book handle is nil")
	}
	book := bh.Book
	if opt.Language == "" {
		opt.Language = book.DefaultLanguage
	}
	if opt.Language == "" {
		opt.Language = "en"
	}
	if opt.Title == "" {
		opt.Title = book.Title
	}
	if opt.Author == "" {
		opt.Author = book.Metadata.Author
	}
	if opt.ViewportW <= 0 {
		opt.ViewportW = defaultPNGWidth
	}
	if opt.ViewportH <= 0 {
		opt.ViewportH = defaultPNGHeight
	}

	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(bh.Root, "exports", outPath)
	}
	if !strings.HasSuffix(strings.ToLower(outPath), ".epub") {
		outPath += ".epub"
	}

	spreads := spreadIndexes(len(book.Spreads), opt.Spreads)
	if len(spreads) == 0 {
		return fmt.Errorf("no spreads to export")
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create epub: %w", err)
	}
	defer func() { _ = f.Close() }()
	zw := zip.NewWriter(f)

	// The mimetype entry must come first and must be stored uncompressed.
	if err := addStoredZipFile(zw, "mimetype", []byte("application/epub+zip")); err != nil {
		_ = zw.Close()
		return fmt.Errorf("write mimetype: %w", err)
	}

	containerXML := "" +
		"<?xml version=\"1.0\" encoding=\"utf-8\"?>\n" +
		"<container version=\"1.0\" xmlns=\"urn:oasis:names:tc:opendocument:xmlns:container\">\n" +
		"  <rootfiles>\n" +
		"    <rootfile full-path=\"OEBPS/content.opf\" media-type=\"application/oebps-package+xml\"/>\n" +
		"  </rootfiles>\n" +
		"</container>\n"
	if err := addZipFile(zw, "META-INF/container.xml", []byte(containerXML)); err != nil {
		_ = zw.Close()
		return fmt.Errorf("write container.xml: %w", err)
	}

	css := "html, body { margin:0; padding:0; width:100%; height:100%; }\n" +
		".spread { position:relative; width:100%; height:100%; overflow:hidden; }\n" +
		".item { position:absolute; }\n" +
		".item img { width:100%; height:100%; }\n" +
		".textbox { position:absolute; overflow:hidden; }\n"
	if err := addZipFile(zw, "OEBPS/styles/book.css", []byte(css)); err != nil {
		_ = zw.Close()
		return fmt.Errorf("write css: %w", err)
	}

	// Copy each referenced asset into the package exactly once.
	assets := map[string]string{} // book-relative url -> package href
	assetMedia := map[string]string{}
	assetHref := func(url string) string {
		if href, ok := assets[url]; ok {
			return href
		}
		path := assetPath(bh.Root, url)
		if path == "" {
			return ""
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return ""
		}
		href := fmt.Sprintf("assets/a%03d%s", len(assets)+1, strings.ToLower(filepath.Ext(url)))
		if err := addZipFile(zw, "OEBPS/"+href, data); err != nil {
			return ""
		}
		assets[url] = href
		assetMedia[href] = mediaTypeFor(url)
		return href
	}

	pageIDs := make([]string, 0, len(spreads))
	navBuf := &bytes.Buffer{}
	navBuf.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	navBuf.WriteString("<html xmlns=\"http://www.w3.org/1999/xhtml\" xmlns:epub=\"http://www.idpf.org/2007/ops\">\n<head><title>Contents</title></head>\n<body>\n")
	navBuf.WriteString("<nav epub:type=\"toc\" id=\"toc\"><ol>\n")

	for i, idx := range spreads {
		sp := book.Spreads[idx]
		name := spreadName(idx)
		body := spreadXHTML(sp, opt, assetHref)
		if err := addZipFile(zw, "OEBPS/"+name+".xhtml", body); err != nil {
			_ = zw.Close()
			return fmt.Errorf("write %s.xhtml: %w", name, err)
		}
		pageIDs = append(pageIDs, name)
		navBuf.WriteString(fmt.Sprintf("<li><a href=\"%s.xhtml\">Spread %d</a></li>\n", name, i+1))
	}
	navBuf.WriteString("</ol></nav>\n</body>\n</html>\n")
	if err := addZipFile(zw, "OEBPS/nav.xhtml", navBuf.Bytes()); err != nil {
		_ = zw.Close()
		return fmt.Errorf("write nav.xhtml: %w", err)
	}

	mod := time.Now().UTC().Format("2006-01-02T15:04:05Z")
	uid := fmt.Sprintf("urn:uuid:%d", time.Now().UnixNano())

	opf := &bytes.Buffer{}
	opf.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	opf.WriteString("<package version=\"3.0\" unique-identifier=\"pub-id\" xmlns=\"http://www.idpf.org/2007/opf\">\n")
	opf.WriteString("  <metadata xmlns:dc=\"http://purl.org/dc/elements/1.1/\">\n")
	opf.WriteString(fmt.Sprintf("    <dc:identifier id=\"pub-id\">%s</dc:identifier>\n", uid))
	opf.WriteString(fmt.Sprintf("    <dc:title>%s</dc:title>\n", xmlEsc(opt.Title)))
	opf.WriteString(fmt.Sprintf("    <dc:language>%s</dc:language>\n", xmlEsc(opt.Language)))
	if strings.TrimSpace(opt.Author) != "" {
		opf.WriteString(fmt.Sprintf("    <dc:creator>%s</dc:creator>\n", xmlEsc(opt.Author)))
	}
	if strings.TrimSpace(opt.Publisher) != "" {
		opf.WriteString(fmt.Sprintf("    <dc:publisher>%s</dc:publisher>\n", xmlEsc(opt.Publisher)))
	}
	if strings.TrimSpace(opt.Description) != "" {
		opf.WriteString(fmt.Sprintf("    <dc:description>%s</dc:description>\n", xmlEsc(opt.Description)))
	}
	opf.WriteString(fmt.Sprintf("    <meta property=\"dcterms:modified\">%s</meta>\n", mod))
	opf.WriteString("    <meta property=\"rendition:layout\">pre-paginated</meta>\n")
	opf.WriteString("    <meta property=\"rendition:orientation\">landscape</meta>\n")
	opf.WriteString("    <meta property=\"rendition:spread\">none</meta>\n")
	opf.WriteString("  </metadata>\n")
	opf.WriteString("  <manifest>\n")
	opf.WriteString("    <item id=\"nav\" href=\"nav.xhtml\" media-type=\"application/xhtml+xml\" properties=\"nav\"/>\n")
	opf.WriteString("    <item id=\"css\" href=\"styles/book.css\" media-type=\"text/css\"/>\n")
	hrefs := make([]string, 0, len(assetMedia))
	for href := range assetMedia {
		hrefs = append(hrefs, href)
	}
	sort.Strings(hrefs)
	for i, href := range hrefs {
		opf.WriteString(fmt.Sprintf("    <item id=\"asset-%03d\" href=\"%s\" media-type=\"%s\"/>\n", i+1, href, assetMedia[href]))
	}
	for _, id := range pageIDs {
		opf.WriteString(fmt.Sprintf("    <item id=\"%s\" href=\"%s.xhtml\" media-type=\"application/xhtml+xml\"/>\n", id, id))
	}
	opf.WriteString("  </manifest>\n")
	opf.WriteString("  <spine page-progression-direction=\"ltr\">\n")
	for _, id := range pageIDs {
		opf.WriteString(fmt.Sprintf("    <itemref idref=\"%s\"/>\n", id))
	}
	opf.WriteString("  </spine>\n")
	opf.WriteString("</package>\n")
	if err := addZipFile(zw, "OEBPS/content.opf", opf.Bytes()); err != nil {
		_ = zw.Close()
		return fmt.Errorf("write content.opf: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zip: %w", err)
	}
	return nil
}

// spreadXHTML renders a single spread as a pre-paginated XHTML page using
// percent-based absolute positioning, so the geometry model carries straight
// through to the reader.
func spreadXHTML(sp domain.Spread, opt EPUBOptions, assetHref func(string) string) []byte {
	b := &bytes.Buffer{}
	b.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	b.WriteString("<html xmlns=\"http://www.w3.org/1999/xhtml\">\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\"/>\n")
	b.WriteString(fmt.Sprintf("<meta name=\"viewport\" content=\"width=%d, height=%d\"/>\n", opt.ViewportW, opt.ViewportH))
	b.WriteString("<title>Spread</title>\n")
	b.WriteString("<link rel=\"stylesheet\" type=\"text/css\" href=\"styles/book.css\"/>\n")
	b.WriteString("</head>\n<body>\n")

	bg := ""
	if len(sp.Pages) > 0 && sp.Pages[0].Background.Color != "" {
		bg = fmt.Sprintf(" style=\"background-color:%s\"", xmlEsc(sp.Pages[0].Background.Color))
	}
	b.WriteString(fmt.Sprintf("<div class=\"spread\"%s>\n", bg))

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
		href := assetHref(it.url)
		if href == "" {
			continue
		}
		b.WriteString(fmt.Sprintf("<div class=\"item\" style=\"left:%.2f%%; top:%.2f%%; width:%.2f%%; height:%.2f%%; z-index:%d\">",
			it.g.X, it.g.Y, it.g.W, it.g.H, it.z))
		b.WriteString(fmt.Sprintf("<img src=\"%s\" alt=\"\"/>", xmlEsc(href)))
		b.WriteString("</div>\n")
	}

	for _, tb := range sp.Textboxes {
		if !tb.InPlayer() {
			continue
		}
		v, ok := variantFor(tb, opt.Language, "")
		if !ok || v.Text == "" {
			continue
		}
		style := fmt.Sprintf("left:%.2f%%; top:%.2f%%; width:%.2f%%; height:%.2f%%; z-index:%d",
			v.Geometry.X, v.Geometry.Y, v.Geometry.W, v.Geometry.H, tb.EffectiveZ())
		if v.Typography.Size > 0 {
			style += fmt.Sprintf("; font-size:%.1fpt", v.Typography.Size)
		}
		if v.Typography.Font != "" {
			style += fmt.Sprintf("; font-family:%s", v.Typography.Font)
		}
		if v.Typography.Color != "" {
			style += fmt.Sprintf("; color:%s", v.Typography.Color)
		}
		if v.Typography.Align != "" {
			style += fmt.Sprintf("; text-align:%s", v.Typography.Align)
		}
		if v.Typography.LineHeight > 0 {
			style += fmt.Sprintf("; line-height:%.2f", v.Typography.LineHeight)
		}
		if v.Fill != nil {
			style += fmt.Sprintf("; background-color:%s", v.Fill.Color)
			if v.Fill.Radius > 0 {
				style += fmt.Sprintf("; border-radius:%.1fpx", v.Fill.Radius)
			}
		}
		if v.Outline != nil {
			style += fmt.Sprintf("; border:%.1fpx solid %s", v.Outline.Width, v.Outline.Color)
		}
		b.WriteString(fmt.Sprintf("<div class=\"textbox\" style=\"%s\">%s</div>\n", xmlEsc(style), xmlEsc(v.Text)))
	}

	b.WriteString("</div>\n</body>\n</html>\n")
	return b.Bytes()
}

func mediaTypeFor(url string) string {
	switch strings.ToLower(filepath.Ext(url)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".svg":
		return "image/svg+xml"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// addZipFile writes a deflate-compressed entry.
func addZipFile(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// addStoredZipFile writes an entry with STORE method (no compression),
// required for the EPUB mimetype entry.
func addStoredZipFile(zw *zip.Writer, name string, data []byte) error {
	hdr := &zip.FileHeader{Name: name, Method: zip.Store}
	hdr.Modified = time.Now()
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func xmlEsc(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\"", "&quot;", "'", "&apos;")
	return r.Replace(s)
}
