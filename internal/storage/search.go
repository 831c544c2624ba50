/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// SearchQuery describes the in-app search request.
// Text uses SQLite FTS5 syntax (simple terms, phrases in quotes, AND/OR/NOT).
// Lang and SpreadID are optional filters. Limit/Offset implement pagination;
// reasonable defaults applied if zero.
type SearchQuery struct {
	Text     string
	Lang     string
	SpreadID string
	Limit    int
	Offset   int
}

// SearchResult represents a single match row. Snippet is a highlighted
// excerpt using [ ] markers when FTS text is used.
type SearchResult struct {
	DocID     int64
	SpreadID  string
	TextboxID string
	Lang      string
	Snippet   string
}

// Search performs full-text search over the embedded index. When q.Text is
// empty, it falls back to a non-FTS scan over documents with filters applied.
func Search(ctx context.Context, bookRoot string, q SearchQuery) ([]SearchResult, error) {
	if strings.TrimSpace(bookRoot) == "" {
		return nil, errors.New("book root is required")
	}
	db, err := InitOrOpenIndex(bookRoot)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return searchDB(ctx, db, q)
}

func searchDB(ctx context.Context, db *sql.DB, q SearchQuery) ([]SearchResult, error) {
	var args []any
	var sb strings.Builder
	useFTS := strings.TrimSpace(q.Text) != ""
	if useFTS {
		sb.WriteString("SELECT d.doc_id, d.spread_id, d.textbox_id, d.lang, snippet(fts_documents, 0, '[', ']', '…', 10)\n")
		sb.WriteString("FROM fts_documents JOIN documents d ON fts_documents.rowid = d.doc_id\n")
		sb.WriteString("WHERE fts_documents MATCH ?\n")
		args = append(args, q.Text)
	} else {
		sb.WriteString("SELECT d.doc_id, d.spread_id, d.textbox_id, d.lang, ''\n")
		sb.WriteString("FROM documents d\nWHERE 1=1\n")
	}
	if s := strings.TrimSpace(q.Lang); s != "" {
		sb.WriteString(" AND d.lang = ?\n")
		args = append(args, s)
	}
	if s := strings.TrimSpace(q.SpreadID); s != "" {
		sb.WriteString(" AND d.spread_id = ?\n")
		args = append(args, s)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	if useFTS {
		sb.WriteString(" ORDER BY bm25(fts_documents), d.spread_id, d.textbox_id\n")
	} else {
		sb.WriteString(" ORDER BY d.spread_id, d.textbox_id, d.lang\n")
	}
	sb.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, limit, offset)

	rows, err := db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		// The FTS table is contentless, so snippet() can yield NULL.
		var sn sql.NullString
		if err := rows.Scan(&r.DocID, &r.SpreadID, &r.TextboxID, &r.Lang, &sn); err != nil {
			return nil, err
		}
		if sn.Valid {
			r.Snippet = sn.String
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
