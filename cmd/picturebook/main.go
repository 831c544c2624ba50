/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopicturebook/internal/assetpack"
	"gopicturebook/internal/crash"
	"gopicturebook/internal/domain"
	"gopicturebook/internal/export"
	applog "gopicturebook/internal/log"
	"gopicturebook/internal/storage"
	"gopicturebook/internal/version"
)

func usage() {
	fmt.Println("Picture Book Studio command line tools")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  picturebook version|-v|--version             Show version")
	fmt.Println("  picturebook init <dir> <title>               Create a new book at <dir> with title <title>")
	fmt.Println("  picturebook open <dir>                       Open book at <dir> and print summary")
	fmt.Println("  picturebook save <dir>                       Save book at <dir> (creates backup)")
	fmt.Println("  picturebook validate <file>                  Validate a book manifest against the schema")
	fmt.Println("  picturebook export <dir> <preset> [langs]    Batch export (review|print|digital), langs comma separated")
	fmt.Println("  picturebook search <dir> <query> [lang]      Full-text search over textbox text")
	fmt.Println("  picturebook reindex <dir>                    Rebuild the search index from the manifest")
	fmt.Println("  picturebook pack export <dir> <zip>          Zip the book's assets for sharing")
	fmt.Println("  picturebook pack install <dir> <zip>         Install a shared asset pack into the book")
}

func main() {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	var bh *storage.BookHandle
	defer func() { crash.Recover(bh) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) <= 1 {
		usage()
		return
	}

	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println("Picture Book Studio")
		fmt.Println(version.String())

	case "init":
		if len(args) < 4 {
			fmt.Println("init requires <dir> and <title>")
			usage()
			os.Exit(2)
		}
		abs, _ := filepath.Abs(args[2])
		title := args[3]
		l.Info("init book", slog.String("root", abs), slog.String("title", title))
		b := domain.Book{Title: title, DefaultLanguage: "en", Languages: []string{"en"}}
		h, err := storage.InitBook(abs, b)
		if err != nil {
			fail(l, "init failed", err)
		}
		bh = h
		fmt.Println("Created book at", abs)

	case "open":
		if len(args) < 3 {
			fmt.Println("open requires <dir>")
			usage()
			os.Exit(2)
		}
		h := mustOpen(l, args[2])
		bh = h
		fmt.Printf("Opened book: %s\n", h.Book.Title)
		fmt.Printf("Spreads: %d\n", len(h.Book.Spreads))
		fmt.Printf("Languages: %s\n", strings.Join(h.Book.Languages, ", "))
		fmt.Println("Root:", h.Root)

	case "save":
		if len(args) < 3 {
			fmt.Println("save requires <dir>")
			usage()
			os.Exit(2)
		}
		h := mustOpen(l, args[2])
		bh = h
		if err := storage.Save(h); err != nil {
			fail(l, "save failed", err)
		}
		fmt.Println("Saved book and created a backup of the previous manifest (if any).")

	case "validate":
		if len(args) < 3 {
			fmt.Println("validate requires <file>")
			usage()
			os.Exit(2)
		}
		data, err := os.ReadFile(args[2])
		if err != nil {
			fail(l, "read manifest failed", err)
		}
		issues, err := storage.ValidateImport(data)
		if err != nil {
			fail(l, "validate failed", err)
		}
		if len(issues) == 0 {
			fmt.Println("Manifest is valid.")
			return
		}
		for _, is := range issues {
			fmt.Println(" -", is.String())
		}
		os.Exit(1)

	case "export":
		if len(args) < 4 {
			fmt.Println("export requires <dir> and <preset>")
			usage()
			os.Exit(2)
		}
		h := mustOpen(l, args[2])
		bh = h
		opt := export.BatchOptions{Preset: export.PresetName(args[3])}
		if len(args) >= 5 {
			opt.Languages = strings.Split(args[4], ",")
		}
		l.Info("batch export", slog.String("preset", args[3]))
		warnings, err := export.BatchExport(h, opt)
		if err != nil {
			fail(l, "export failed", err)
		}
		for _, w := range warnings {
			fmt.Println("warning: text overflow:", w.String())
		}
		fmt.Println("Export finished under", filepath.Join(h.Root, "exports", args[3]))

	case "search":
		if len(args) < 4 {
			fmt.Println("search requires <dir> and <query>")
			usage()
			os.Exit(2)
		}
		abs, _ := filepath.Abs(args[2])
		q := storage.SearchQuery{Text: args[3]}
		if len(args) >= 5 {
			q.Lang = args[4]
		}
		results, err := storage.Search(context.Background(), abs, q)
		if err != nil {
			fail(l, "search failed", err)
		}
		for _, r := range results {
			fmt.Printf("%s/%s [%s]: %s\n", r.SpreadID, r.TextboxID, r.Lang, r.Snippet)
		}
		fmt.Printf("%d match(es)\n", len(results))

	case "reindex":
		if len(args) < 3 {
			fmt.Println("reindex requires <dir>")
			usage()
			os.Exit(2)
		}
		h := mustOpen(l, args[2])
		bh = h
		if err := storage.RebuildIndex(context.Background(), h.Root, h.Book); err != nil {
			fail(l, "reindex failed", err)
		}
		fmt.Println("Search index rebuilt.")

	case "pack":
		if len(args) < 5 {
			fmt.Println("pack requires export|install, <dir> and <zip>")
			usage()
			os.Exit(2)
		}
		abs, _ := filepath.Abs(args[3])
		switch args[2] {
		case "export":
			if err := assetpack.ExportBookAssets(abs, args[4]); err != nil {
				fail(l, "pack export failed", err)
			}
			fmt.Println("Asset pack written to", args[4])
		case "install":
			n, err := assetpack.InstallPack(abs, args[4])
			if err != nil {
				fail(l, "pack install failed", err)
			}
			fmt.Printf("Installed %d asset(s).\n", n)
		default:
			usage()
			os.Exit(2)
		}

	default:
		usage()
		os.Exit(2)
	}
}

func mustOpen(l *slog.Logger, dir string) *storage.BookHandle {
	abs, _ := filepath.Abs(dir)
	h, err := storage.Open(abs)
	if err != nil {
		fail(l, "open failed", err)
	}
	return h
}

func fail(l *slog.Logger, msg string, err error) {
	l.Error(msg, slog.Any("err", err))
	fmt.Println("Error:", err)
	os.Exit(1)
}
