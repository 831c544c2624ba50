/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"gopicturebook/internal/domain"
)

func minimalBook() domain.Book {
	return domain.Book{
		Title:           "Test Book",
		DefaultLanguage: "en",
		Spreads: []domain.Spread{
			{
				ID:    "s1",
				Pages: []domain.Page{{Number: 1}, {Number: 2}},
				Textboxes: []domain.Textbox{
					{ID: "txt1", Languages: map[string]domain.TextVariant{
						"en": {Text: "the fox jumps", Geometry: domain.Geometry{X: 10, Y: 10, W: 30, H: 10}},
					}},
				},
			},
		},
	}
}

func TestInitSaveOpenRoundTrip(t *testing.T) {
	root := t.TempDir()
	bh, err := InitBook(root, minimalBook())
	if err != nil {
		t.Fatalf("InitBook error: %v", err)
	}
	for _, d := range standardSubDirs {
		if _, err := os.Stat(filepath.Join(root, d)); err != nil {
			t.Fatalf("missing subdir %s: %v", d, err)
		}
	}
	bh.Book.Title = "Renamed"
	if err := Save(bh); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	got, err := Open(root)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if got.Book.Title != "Renamed" {
		t.Fatalf("Title = %q, want Renamed", got.Book.Title)
	}
	if len(got.Book.Spreads) != 1 || got.Book.Spreads[0].Textboxes[0].ID != "txt1" {
		t.Fatalf("roundtrip lost spread content: %+v", got.Book.Spreads)
	}
}

func TestSaveCreatesBackup(t *testing.T) {
	root := t.TempDir()
	bh, err := InitBook(root, minimalBook())
	if err != nil {
		t.Fatalf("InitBook error: %v", err)
	}
	bh.Book.Title = "v2"
	if err := Save(bh); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	ents, err := os.ReadDir(filepath.Join(root, BackupsDirName))
	if err != nil {
		t.Fatalf("read backups: %v", err)
	}
	if len(ents) == 0 {
		t.Fatalf("expected a timestamped manifest backup")
	}
}

func TestOpenFallsBackToBackupOnCorruptManifest(t *testing.T) {
	root := t.TempDir()
	bh, err := InitBook(root, minimalBook())
	if err != nil {
		t.Fatalf("InitBook error: %v", err)
	}
	// Second save produces a backup of the good manifest.
	if err := Save(bh); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := os.WriteFile(bh.ManifestPath, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("corrupt manifest: %v", err)
	}
	got, err := Open(root)
	if err != nil {
		t.Fatalf("Open should recover from backup, got error: %v", err)
	}
	if got.Book.Title != "Test Book" {
		t.Fatalf("recovered title = %q", got.Book.Title)
	}
}

func TestSaveAsScaffoldsNewRoot(t *testing.T) {
	root := t.TempDir()
	bh, err := InitBook(root, minimalBook())
	if err != nil {
		t.Fatalf("InitBook error: %v", err)
	}
	newRoot := filepath.Join(t.TempDir(), "copy")
	if err := SaveAs(bh, newRoot); err != nil {
		t.Fatalf("SaveAs error: %v", err)
	}
	if bh.Root != newRoot {
		t.Fatalf("handle root not updated")
	}
	if _, err := os.Stat(filepath.Join(newRoot, ManifestFileName)); err != nil {
		t.Fatalf("manifest missing in new root: %v", err)
	}
}

func TestAutosaveCrashSnapshotWritesFile(t *testing.T) {
	root := t.TempDir()
	bh, err := InitBook(root, minimalBook())
	if err != nil {
		t.Fatalf("InitBook error: %v", err)
	}
	bh.Book.Title = "Changed In Memory"

	path, err := AutosaveCrashSnapshot(bh)
	if err != nil {
		t.Fatalf("AutosaveCrashSnapshot error: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var got domain.Book
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if got.Title != "Changed In Memory" {
		t.Fatalf("snapshot content mismatch: got %q", got.Title)
	}
}
