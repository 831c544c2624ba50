/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestViewPrefsRoundTrip(t *testing.T) {
	prefsBaseDir = t.TempDir()
	t.Cleanup(func() { prefsBaseDir = "" })

	p := ViewPrefs{ViewMode: "manuscript", ZoomPercent: 150, RailColumns: 4, Language: "de"}
	if err := SaveViewPrefs("/books/alpha", p); err != nil {
		t.Fatalf("SaveViewPrefs error: %v", err)
	}
	got := LoadViewPrefs("/books/alpha")
	if got != p {
		t.Fatalf("roundtrip = %+v, want %+v", got, p)
	}
	// A different book keeps its own namespace.
	other := LoadViewPrefs("/books/beta")
	if other != DefaultViewPrefs() {
		t.Fatalf("other book must see defaults: %+v", other)
	}
}

func TestViewPrefsBrokenFileFallsBack(t *testing.T) {
	prefsBaseDir = t.TempDir()
	t.Cleanup(func() { prefsBaseDir = "" })

	if err := SaveViewPrefs("/books/alpha", DefaultViewPrefs()); err != nil {
		t.Fatalf("SaveViewPrefs error: %v", err)
	}
	path, err := viewPrefsPath("/books/alpha")
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatalf("corrupt prefs: %v", err)
	}
	got := LoadViewPrefs("/books/alpha")
	if got != DefaultViewPrefs() {
		t.Fatalf("broken prefs must fall back to defaults: %+v", got)
	}
}

func TestViewPrefsPartialFileMergesDefaults(t *testing.T) {
	prefsBaseDir = t.TempDir()
	t.Cleanup(func() { prefsBaseDir = "" })

	path, err := viewPrefsPath("/books/alpha")
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(`{"zoom_percent": 200}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := LoadViewPrefs("/books/alpha")
	if got.ZoomPercent != 200 || got.ViewMode != "canvas" {
		t.Fatalf("partial merge: %+v", got)
	}
}
