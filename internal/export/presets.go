/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0
 */

package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"gopicturebook/internal/storage"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetReview  PresetName = "review"  // fast raster previews for proofreading
	PresetPrint   PresetName = "print"   // PDF for printing
	PresetDigital PresetName = "digital" // EPUB plus previews for store delivery
)

// BatchOptions controls batch export across multiple formats and languages.
//
// Path semantics:
//   - If OutDir is empty or relative, it resolves under <book>/exports/<preset>/.
//   - PDF and EPUB single-file outputs are named book-<lang>.pdf/epub in OutDir.
//   - PNG per-spread outputs go to a png/<lang>/ subfolder inside OutDir.
type BatchOptions struct {
	Preset    PresetName
	Formats   []string // allowed: pdf, png, epub; empty means preset defaults
	Languages []string // empty means the book's default language only
	Spreads   []int    // zero-based indices; empty means all spreads
	OutDir    string
}

// BatchExport runs exports according to the given preset. The returned
// warnings flag textboxes whose copy overflows its box in one of the
// exported languages; the export itself still completes.
func BatchExport(bh *storage.BookHandle, opt BatchOptions) ([]OverflowWarning, error) {
	if bh == nil {
		return nil, fmt.Errorf("book handle is nil")
	}
	if len(bh.Book.Spreads) == 0 {
		return nil, fmt.Errorf("book has no spreads")
	}

	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	for i := range formats {
		formats[i] = strings.ToLower(strings.TrimSpace(formats[i]))
	}

	baseOut := opt.OutDir
	if baseOut == "" {
		baseOut = string(opt.Preset)
	}
	if !filepath.IsAbs(baseOut) {
		baseOut = filepath.Join(bh.Root, "exports", baseOut)
	}

	langs := opt.Languages
	if len(langs) == 0 {
		lang := bh.Book.DefaultLanguage
		if lang == "" {
			lang = "en"
		}
		langs = []string{lang}
	}

	var warnings []OverflowWarning
	for _, lang := range langs {
		for _, f := range formats {
			switch f {
			case "pdf":
				out := filepath.Join(baseOut, fmt.Sprintf("book-%s.pdf", lang))
				po := PDFOptions{Language: lang, Spreads: opt.Spreads}
				if err := ExportBookPDF(bh, out, po); err != nil {
					return warnings, fmt.Errorf("pdf %s: %w", lang, err)
				}
			case "png":
				outDir := filepath.Join(baseOut, "png", lang)
				po := PNGOptions{Language: lang, Spreads: opt.Spreads}
				if err := ExportBookPNGSpreads(bh, outDir, po); err != nil {
					return warnings, fmt.Errorf("png %s: %w", lang, err)
				}
			case "epub":
				out := filepath.Join(baseOut, fmt.Sprintf("book-%s.epub", lang))
				eo := EPUBOptions{Language: lang, Spreads: opt.Spreads}
				if err := ExportBookEPUB(bh, out, eo); err != nil {
					return warnings, fmt.Errorf("epub %s: %w", lang, err)
				}
			default:
				return warnings, fmt.Errorf("unknown format: %s", f)
			}
		}
		ws, err := CheckTextOverflow(&bh.Book, lang, defaultPNGWidth, defaultPNGHeight, nil)
		if err != nil {
			return warnings, fmt.Errorf("overflow check %s: %w", lang, err)
		}
		warnings = append(warnings, ws...)
	}
	return warnings, nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetReview:
		return []string{"png"}
	case PresetPrint:
		return []string{"pdf"}
	case PresetDigital:
		return []string{"epub", "png"}
	default:
		return []string{"pdf"}
	}
}
