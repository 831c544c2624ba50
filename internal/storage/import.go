/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	_ "embed"
	"encoding/json"
	"fmt"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"gopicturebook/internal/domain"
)

//go:embed book.schema.json
var bookSchema []byte

// MaxImportBytes caps imported manifest size. Oversized imports are a user
// mistake, reported inline, never an internal error.
const MaxImportBytes = 16 << 20

// ImportIssue is one user-visible validation message. Field is a JSON
// pointer-ish path into the document.
type ImportIssue struct {
	Field   string
	Message string
}

func (i ImportIssue) String() string {
	if i.Field == "" || i.Field == "(root)" {
		return i.Message
	}
	return fmt.Sprintf("%s: %s", i.Field, i.Message)
}

// ValidateImport checks an uploaded manifest against the embedded book
// schema. A non-empty issue list means the import is rejected with those
// inline messages; an error return means validation itself failed.
func ValidateImport(data []byte) ([]ImportIssue, error) {
	if len(data) > MaxImportBytes {
		return []ImportIssue{{Message: fmt.Sprintf("file is too large (%d bytes, limit %d)", len(data), MaxImportBytes)}}, nil
	}
	if !json.Valid(data) {
		return []ImportIssue{{Message: "file is not valid JSON"}}, nil
	}
	schemaLoader := gojsonschema.NewBytesLoader(bookSchema)
	docLoader := gojsonschema.NewBytesLoader(data)
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return nil, fmt.Errorf("schema validate: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}
	issues := make([]ImportIssue, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		issues = append(issues, ImportIssue{Field: e.Field(), Message: e.Description()})
	}
	return issues, nil
}

// ImportBook validates and decodes an uploaded manifest. Validation issues
// are returned for inline display; only infrastructure problems surface as
// errors.
func ImportBook(data []byte) (*domain.Book, []ImportIssue, error) {
	issues, err := ValidateImport(data)
	if err != nil {
		return nil, nil, err
	}
	if len(issues) > 0 {
		return nil, issues, nil
	}
	var b domain.Book
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &b, nil, nil
}
