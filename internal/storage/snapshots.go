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
	"time"
)

// language=SQL
// dialect=SQLite
const insertSnapshotSQL = `INSERT INTO snapshots(spread_id, ts, delta_blob) VALUES (?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectLatestSnapshotSQL = `SELECT ts, delta_blob FROM snapshots WHERE spread_id = ? ORDER BY ts DESC LIMIT 1`

// language=SQL
// dialect=SQLite
const pruneOldSnapshotsSQL = `DELETE FROM snapshots WHERE spread_id = ? AND id NOT IN (
	SELECT id FROM snapshots WHERE spread_id = ? ORDER BY ts DESC LIMIT ?
)`

// SaveSnapshot persists an autosave snapshot blob for a spread with a
// timestamp. It opens the book's index database if needed and inserts the
// record.
func SaveSnapshot(ctx context.Context, bh *BookHandle, spreadID string, delta []byte, ts time.Time) error {
	if bh == nil {
		return errors.New("nil BookHandle")
	}
	db, err := InitOrOpenIndex(bh.Root)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	_, err = db.ExecContext(ctx, insertSnapshotSQL, spreadID, ts.UTC().Format(time.RFC3339Nano), delta)
	return err
}

// GetLatestSnapshot returns the latest snapshot blob for a spread or nil if none.
func GetLatestSnapshot(ctx context.Context, bh *BookHandle, spreadID string) ([]byte, time.Time, error) {
	if bh == nil {
		return nil, time.Time{}, errors.New("nil BookHandle")
	}
	db, err := InitOrOpenIndex(bh.Root)
	if err != nil {
		return nil, time.Time{}, err
	}
	defer func() { _ = db.Close() }()
	var tsStr string
	var blob []byte
	err = db.QueryRowContext(ctx, selectLatestSnapshotSQL, spreadID).Scan(&tsStr, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, tsStr)
	if err != nil {
		return blob, time.Time{}, nil // return blob even if ts parse fails
	}
	return blob, ts, nil
}

// PruneOldSnapshots keeps at most keepLast snapshots for the spread and deletes older ones.
func PruneOldSnapshots(ctx context.Context, bh *BookHandle, spreadID string, keepLast int) (int64, error) {
	if bh == nil {
		return 0, errors.New("nil BookHandle")
	}
	if keepLast <= 0 {
		return 0, nil
	}
	db, err := InitOrOpenIndex(bh.Root)
	if err != nil {
		return 0, err
	}
	defer func() { _ = db.Close() }()
	res, err := db.ExecContext(ctx, pruneOldSnapshotsSQL, spreadID, spreadID, keepLast)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
