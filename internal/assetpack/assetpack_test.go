/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package assetpack

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func TestExportAndInstallPack(t *testing.T) {
	bookDir := t.TempDir()
	assetsDir := filepath.Join(bookDir, "assets")
	if err := os.MkdirAll(assetsDir, 0o755); err != nil {
		t.Fatalf("mkdir assets: %v", err)
	}
	if err := os.WriteFile(filepath.Join(assetsDir, "fox.png"), []byte("pngbytes"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	sub := filepath.Join(assetsDir, "backgrounds")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir backgrounds: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sub, "forest.png"), []byte("forest"), 0o644); err != nil {
		t.Fatalf("write background: %v", err)
	}

	zipPath := filepath.Join(bookDir, "out.zip")
	if err := ExportBookAssets(bookDir, zipPath); err != nil {
		t.Fatalf("export: %v", err)
	}

	rd, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	names := map[string]bool{}
	for _, f := range rd.File {
		names[f.Name] = true
	}
	_ = rd.Close()
	for _, want := range []string{"assetpack.manifest.txt", "assets/fox.png", "assets/backgrounds/forest.png"} {
		if !names[want] {
			t.Fatalf("zip missing %s, have %v", want, names)
		}
	}

	// Install into a second book
	otherDir := t.TempDir()
	n, err := InstallPack(otherDir, zipPath)
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	if n != 2 {
		t.Fatalf("installed %d files, want 2", n)
	}
	if _, err := os.Stat(filepath.Join(otherDir, "assets", "backgrounds", "forest.png")); err != nil {
		t.Fatalf("installed file missing: %v", err)
	}

	// Re-install skips existing files
	n, err = InstallPack(otherDir, zipPath)
	if err != nil {
		t.Fatalf("re-install: %v", err)
	}
	if n != 0 {
		t.Fatalf("re-install wrote %d files, want 0", n)
	}
}

func TestInstallPackRejectsEscapingEntries(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "evil.zip")
	zf, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	zw := zip.NewWriter(zf)
	w, err := zw.Create("../outside.txt")
	if err != nil {
		t.Fatalf("add entry: %v", err)
	}
	if _, err := w.Write([]byte("nope")); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := zf.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}

	bookDir := filepath.Join(dir, "book")
	if err := os.MkdirAll(bookDir, 0o755); err != nil {
		t.Fatalf("mkdir book: %v", err)
	}
	n, err := InstallPack(bookDir, zipPath)
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	if n != 0 {
		t.Fatalf("installed %d files, want 0", n)
	}
	if _, err := os.Stat(filepath.Join(dir, "outside.txt")); err == nil {
		t.Fatalf("entry escaped the book root")
	}
}
