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
	"fmt"
	"os"
	"path/filepath"

	"gopicturebook/internal/config"
)

// ViewPrefs are the per-user, per-book editor view settings: restored on
// open, never part of the manifest. Loading problems fall back to defaults
// silently; a broken prefs file must not block opening the book.
type ViewPrefs struct {
	ViewMode    string `json:"view_mode"` // "canvas" | "manuscript"
	ZoomPercent int    `json:"zoom_percent"`
	RailColumns int    `json:"rail_columns"`
	Language    string `json:"language"`
}

// DefaultViewPrefs returns the fresh-editor view state.
func DefaultViewPrefs() ViewPrefs {
	return ViewPrefs{ViewMode: "canvas", ZoomPercent: 100, RailColumns: 2, Language: "en"}
}

const viewPrefsFileName = "viewprefs.json"

// prefsBaseDir overrides the user config dir in tests.
var prefsBaseDir string

// viewPrefsPath namespaces prefs per book under the user config dir, keyed by
// a sanitized book root.
func viewPrefsPath(bookRoot string) (string, error) {
	dir := prefsBaseDir
	if dir == "" {
		var err error
		dir, err = config.Dir()
		if err != nil {
			return "", err
		}
	}
	key := sanitizeKey(bookRoot)
	return filepath.Join(dir, "viewprefs", key, viewPrefsFileName), nil
}

func sanitizeKey(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "default"
	}
	return string(out)
}

// LoadViewPrefs reads the stored prefs for a book. Any read or parse failure
// yields the defaults; view prefs are never worth an error dialog.
func LoadViewPrefs(bookRoot string) ViewPrefs {
	prefs := DefaultViewPrefs()
	path, err := viewPrefsPath(bookRoot)
	if err != nil {
		return prefs
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return prefs
	}
	var stored ViewPrefs
	if err := json.Unmarshal(data, &stored); err != nil {
		return prefs
	}
	if stored.ViewMode != "" {
		prefs.ViewMode = stored.ViewMode
	}
	if stored.ZoomPercent > 0 {
		prefs.ZoomPercent = stored.ZoomPercent
	}
	if stored.RailColumns > 0 {
		prefs.RailColumns = stored.RailColumns
	}
	if stored.Language != "" {
		prefs.Language = stored.Language
	}
	return prefs
}

// SaveViewPrefs persists the prefs for a book.
func SaveViewPrefs(bookRoot string, p ViewPrefs) error {
	path, err := viewPrefsPath(bookRoot)
	if err != nil {
		return fmt.Errorf("resolve prefs path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
