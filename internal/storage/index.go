/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopicturebook/internal/domain"
	applog "gopicturebook/internal/log"
	"gopicturebook/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// IndexDirName stores all per-book ephemeral/index data under the book root.
	IndexDirName  = ".gpb"
	IndexFileName = "index.sqlite"

	// schemaVersion tracks the local SQLite schema for the embedded index.
	// Bump this when you perform breaking schema changes and add migrations.
	// v2: fts_documents switched from contentless to external content so
	// snippet() can return highlighted excerpts.
	schemaVersion = 2
)

// IndexPath returns the full path to the book's embedded index database file.
func IndexPath(bookRoot string) string {
	return filepath.Join(bookRoot, IndexDirName, IndexFileName)
}

// InitOrOpenIndex ensures that the per-book SQLite index exists at
// .gpb/index.sqlite, opens the database, enables WAL mode, and ensures the
// meta/version tables exist. The returned *sql.DB is ready for use.
func InitOrOpenIndex(bookRoot string) (*sql.DB, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "index_init").With(
		slog.String("root", bookRoot),
	)
	if strings.TrimSpace(bookRoot) == "" {
		return nil, errors.New("book root is required")
	}
	if err := os.MkdirAll(filepath.Join(bookRoot, IndexDirName), 0o755); err != nil {
		l.Error("create .gpb dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create .gpb dir: %w", err)
	}

	path := IndexPath(bookRoot)
	uriPath := filepath.ToSlash(path)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", uriPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		l.Warn("enable foreign_keys failed", slog.Any("err", err))
	}

	prevSchema, err := ensureMetaAndVersion(ctx, db)
	if err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	migrating := prevSchema > 0 && prevSchema < schemaVersion
	if migrating {
		l.Info("migrating index schema", slog.Int("from", prevSchema), slog.Int("to", schemaVersion))
		if err := dropFTS(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := ensureIndexSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure index schema failed", slog.Any("err", err))
		return nil, err
	}
	if migrating {
		if _, err := db.ExecContext(ctx, `INSERT INTO fts_documents(fts_documents) VALUES('rebuild');`); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("rebuild fts after migration: %w", err)
		}
	}

	l.Debug("index ready", slog.String("path", path))
	return db, nil
}

// ensureMetaAndVersion creates the meta/version tables and returns the schema
// number found on disk (0 for a fresh database).
func ensureMetaAndVersion(ctx context.Context, db *sql.DB) (int, error) {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return 0, fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return 0, fmt.Errorf("insert version: %w", err)
		}
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET schema=?, app=?, updated_at=? WHERE id=1`, schemaVersion, appv, now); err != nil {
			return 0, fmt.Errorf("update version: %w", err)
		}
		return curSchema, nil
	}
}

// dropFTS removes the FTS table and its feeder triggers ahead of a schema
// migration; ensureIndexSchema recreates them in the current shape.
func dropFTS(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`DROP TRIGGER IF EXISTS documents_ai;`,
		`DROP TRIGGER IF EXISTS documents_ad;`,
		`DROP TRIGGER IF EXISTS documents_au;`,
		`DROP TABLE IF EXISTS fts_documents;`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("drop fts: %w", err)
		}
	}
	return nil
}

// ensureIndexSchema creates core index tables and FTS structures if they do not exist.
func ensureIndexSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		// One row per textbox language variant.
		`CREATE TABLE IF NOT EXISTS documents (
			doc_id     INTEGER PRIMARY KEY,
			spread_id  TEXT NOT NULL,
			textbox_id TEXT NOT NULL,
			lang       TEXT NOT NULL,
			text       TEXT
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_documents_variant ON documents(spread_id, textbox_id, lang);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_spread ON documents(spread_id);`,

		// External-content FTS5 index over documents, fed via triggers.
		// snippet() reads the text back from documents, so hits carry a
		// highlighted excerpt.
		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_documents USING fts5(
			text,
			content='documents',
			content_rowid='doc_id',
			tokenize = 'unicode61'
		);`,

		// Autosave snapshots (crash recovery, per spread).
		`CREATE TABLE IF NOT EXISTS snapshots (
			id         INTEGER PRIMARY KEY,
			spread_id  TEXT NOT NULL,
			ts         TEXT NOT NULL,
			delta_blob BLOB NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_spread_ts ON snapshots(spread_id, ts);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure index schema: %w", err)
		}
	}
	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS documents_ai AFTER INSERT ON documents BEGIN
			INSERT INTO fts_documents(rowid, text) VALUES (new.doc_id, new.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS documents_ad AFTER DELETE ON documents BEGIN
			INSERT INTO fts_documents(fts_documents, rowid, text) VALUES ('delete', old.doc_id, old.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS documents_au AFTER UPDATE OF text ON documents BEGIN
			INSERT INTO fts_documents(fts_documents, rowid, text) VALUES ('delete', old.doc_id, old.text);
			INSERT INTO fts_documents(rowid, text) VALUES (new.doc_id, new.text);
		END;`,
	}
	for _, q := range triggers {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure fts triggers: %w", err)
		}
	}
	return nil
}

// RebuildIndex wipes and refills the documents table from the book manifest.
func RebuildIndex(ctx context.Context, bookRoot string, book domain.Book) error {
	db, err := InitOrOpenIndex(bookRoot)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rebuild: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear documents: %w", err)
	}
	for _, sp := range book.Spreads {
		for _, tb := range sp.Textboxes {
			for lang, v := range tb.Languages {
				if strings.TrimSpace(v.Text) == "" {
					continue
				}
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO documents(spread_id, textbox_id, lang, text) VALUES (?, ?, ?, ?)`,
					sp.ID, tb.ID, lang, v.Text); err != nil {
					_ = tx.Rollback()
					return fmt.Errorf("insert document: %w", err)
				}
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rebuild: %w", err)
	}
	return nil
}

// UpsertTextboxText updates the index for one textbox variant. Empty text
// removes the row.
func UpsertTextboxText(ctx context.Context, db *sql.DB, spreadID, textboxID, lang, text string) error {
	if strings.TrimSpace(text) == "" {
		_, err := db.ExecContext(ctx,
			`DELETE FROM documents WHERE spread_id=? AND textbox_id=? AND lang=?`, spreadID, textboxID, lang)
		return err
	}
	_, err := db.ExecContext(ctx, `INSERT INTO documents(spread_id, textbox_id, lang, text) VALUES (?, ?, ?, ?)
		ON CONFLICT(spread_id, textbox_id, lang) DO UPDATE SET text=excluded.text`,
		spreadID, textboxID, lang, text)
	return err
}

// DeleteSpreadDocuments drops every indexed row belonging to a spread.
func DeleteSpreadDocuments(ctx context.Context, db *sql.DB, spreadID string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM documents WHERE spread_id=?`, spreadID)
	return err
}

// DetectAndRebuildIndex checks for corruption or missing schema and rebuilds
// the index if needed. It returns true when a rebuild was performed.
func DetectAndRebuildIndex(ctx context.Context, bookRoot string, book domain.Book) (bool, error) {
	path := IndexPath(bookRoot)
	db, err := InitOrOpenIndex(bookRoot)
	if err != nil {
		backupIndexFile(path)
		_ = os.Remove(path)
		if rbErr := RebuildIndex(ctx, bookRoot, book); rbErr != nil {
			return false, fmt.Errorf("rebuild after open failure: %w (open err: %v)", rbErr, err)
		}
		return true, nil
	}
	defer db.Close()
	needs := false
	var chk string
	if err := db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk); err != nil || !strings.Contains(strings.ToLower(chk), "ok") {
		needs = true
	}
	if !needs {
		if _, err := db.ExecContext(ctx, `SELECT 1 FROM documents LIMIT 1;`); err != nil {
			needs = true
		}
	}
	if !needs {
		return false, nil
	}
	backupIndexFile(path)
	_ = os.Remove(path)
	if err := RebuildIndex(ctx, bookRoot, book); err != nil {
		return false, err
	}
	return true, nil
}

// backupIndexFile copies the current index file into a timestamped backup in .gpb/backups.
func backupIndexFile(indexPath string) {
	bdir := filepath.Join(filepath.Dir(indexPath), "backups")
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return
	}
	stamp := time.Now().Format("20060102-150405")
	dst := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", IndexFileName, stamp))
	_ = copyFile(indexPath, dst)
}
