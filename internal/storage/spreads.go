/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"fmt"

	"gopicturebook/internal/domain"
)

// EnsureSpread returns a pointer to the spread with the given id, creating
// and appending it (with two blank pages) if it does not exist yet.
func EnsureSpread(bh *BookHandle, id string) (*domain.Spread, error) {
	if bh == nil {
		return nil, fmt.Errorf("book handle is nil")
	}
	if id == "" {
		id = NextSpreadID(bh)
	}
	for i := range bh.Book.Spreads {
		if bh.Book.Spreads[i].ID == id {
			return &bh.Book.Spreads[i], nil
		}
	}
	next := len(bh.Book.Spreads)*2 + 1
	sp := domain.Spread{
		ID:    id,
		Pages: []domain.Page{{Number: next}, {Number: next + 1}},
	}
	bh.Book.Spreads = append(bh.Book.Spreads, sp)
	return &bh.Book.Spreads[len(bh.Book.Spreads)-1], nil
}

// NextSpreadID returns a unique spread id like "s1", "s2", ...
func NextSpreadID(bh *BookHandle) string {
	maxN := 0
	exists := map[string]struct{}{}
	for _, s := range bh.Book.Spreads {
		exists[s.ID] = struct{}{}
		var n int
		if _, err := fmt.Sscanf(s.ID, "s%d", &n); err == nil {
			if n > maxN {
				maxN = n
			}
		}
	}
	for {
		maxN++
		id := fmt.Sprintf("s%d", maxN)
		if _, ok := exists[id]; !ok {
			return id
		}
	}
}

// NextItemID returns a unique item id for the given type within the spread,
// like "img1", "txt1" or "obj1".
func NextItemID(s *domain.Spread, t domain.ItemType) string {
	prefix := "obj"
	switch t {
	case domain.ItemImage:
		prefix = "img"
	case domain.ItemText:
		prefix = "txt"
	}
	exists := map[string]struct{}{}
	maxN := 0
	scan := func(id string) {
		exists[id] = struct{}{}
		var n int
		if _, err := fmt.Sscanf(id, prefix+"%d", &n); err == nil && n > maxN {
			maxN = n
		}
	}
	if s != nil {
		for _, im := range s.Images {
			scan(im.ID)
		}
		for _, tb := range s.Textboxes {
			scan(tb.ID)
		}
		for _, ob := range s.Objects {
			scan(ob.ID)
		}
	}
	for {
		maxN++
		id := fmt.Sprintf("%s%d", prefix, maxN)
		if _, ok := exists[id]; !ok {
			return id
		}
	}
}

// AddImage appends an image to the spread, assigning an id when missing.
func AddImage(s *domain.Spread, im domain.Image) *domain.Image {
	if im.ID == "" {
		im.ID = NextItemID(s, domain.ItemImage)
	}
	s.Images = append(s.Images, im)
	return &s.Images[len(s.Images)-1]
}

// AddTextbox appends a textbox to the spread, assigning an id when missing.
func AddTextbox(s *domain.Spread, tb domain.Textbox) *domain.Textbox {
	if tb.ID == "" {
		tb.ID = NextItemID(s, domain.ItemText)
	}
	if tb.Languages == nil {
		tb.Languages = map[string]domain.TextVariant{}
	}
	s.Textboxes = append(s.Textboxes, tb)
	return &s.Textboxes[len(s.Textboxes)-1]
}

// AddObject appends an object to the spread, assigning an id when missing.
func AddObject(s *domain.Spread, ob domain.Object) *domain.Object {
	if ob.ID == "" {
		ob.ID = NextItemID(s, domain.ItemObject)
	}
	s.Objects = append(s.Objects, ob)
	return &s.Objects[len(s.Objects)-1]
}

// UpdateItemGeometry commits a proposed geometry into the spread. For
// textboxes the geometry lands on the given language's variant.
func UpdateItemGeometry(s *domain.Spread, t domain.ItemType, index int, lang string, g domain.Geometry) error {
	switch t {
	case domain.ItemImage:
		if index < 0 || index >= len(s.Images) {
			return fmt.Errorf("image index %d out of range", index)
		}
		s.Images[index].Geometry = g
	case domain.ItemText:
		if index < 0 || index >= len(s.Textboxes) {
			return fmt.Errorf("textbox index %d out of range", index)
		}
		tb := &s.Textboxes[index]
		v := tb.Languages[lang]
		v.Geometry = g
		if tb.Languages == nil {
			tb.Languages = map[string]domain.TextVariant{}
		}
		tb.Languages[lang] = v
	case domain.ItemObject:
		if index < 0 || index >= len(s.Objects) {
			return fmt.Errorf("object index %d out of range", index)
		}
		s.Objects[index].Geometry = g
	default:
		return fmt.Errorf("unknown item type %q", t)
	}
	return nil
}

// SetTextboxText writes the text of one language variant, by textbox id.
func SetTextboxText(s *domain.Spread, id, lang, text string) error {
	for i := range s.Textboxes {
		if s.Textboxes[i].ID != id {
			continue
		}
		tb := &s.Textboxes[i]
		if tb.Languages == nil {
			tb.Languages = map[string]domain.TextVariant{}
		}
		v := tb.Languages[lang]
		v.Text = text
		tb.Languages[lang] = v
		return nil
	}
	return fmt.Errorf("textbox %q not found", id)
}

// DeleteItem removes one item from the spread by type and index.
func DeleteItem(s *domain.Spread, t domain.ItemType, index int) error {
	switch t {
	case domain.ItemImage:
		if index < 0 || index >= len(s.Images) {
			return fmt.Errorf("image index %d out of range", index)
		}
		s.Images = append(s.Images[:index], s.Images[index+1:]...)
	case domain.ItemText:
		if index < 0 || index >= len(s.Textboxes) {
			return fmt.Errorf("textbox index %d out of range", index)
		}
		s.Textboxes = append(s.Textboxes[:index], s.Textboxes[index+1:]...)
	case domain.ItemObject:
		if index < 0 || index >= len(s.Objects) {
			return fmt.Errorf("object index %d out of range", index)
		}
		s.Objects = append(s.Objects[:index], s.Objects[index+1:]...)
	default:
		return fmt.Errorf("unknown item type %q", t)
	}
	return nil
}

// DeleteSpread removes the spread with the given id and renumbers the
// remaining pages sequentially.
func DeleteSpread(bh *BookHandle, id string) error {
	if bh == nil {
		return fmt.Errorf("book handle is nil")
	}
	idx := -1
	for i := range bh.Book.Spreads {
		if bh.Book.Spreads[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("spread %q not found", id)
	}
	bh.Book.Spreads = append(bh.Book.Spreads[:idx], bh.Book.Spreads[idx+1:]...)
	renumberPages(&bh.Book)
	return nil
}

// ReorderSpreads moves the spread at from to position to, shifting the rest,
// and renumbers pages. Out-of-range positions are clamped.
func ReorderSpreads(bh *BookHandle, from, to int) error {
	if bh == nil {
		return fmt.Errorf("book handle is nil")
	}
	n := len(bh.Book.Spreads)
	if from < 0 || from >= n {
		return fmt.Errorf("from index %d out of range", from)
	}
	if to < 0 {
		to = 0
	}
	if to >= n {
		to = n - 1
	}
	if from == to {
		return nil
	}
	sp := bh.Book.Spreads[from]
	rest := append(bh.Book.Spreads[:from:from], bh.Book.Spreads[from+1:]...)
	out := make([]domain.Spread, 0, n)
	out = append(out, rest[:to]...)
	out = append(out, sp)
	out = append(out, rest[to:]...)
	bh.Book.Spreads = out
	renumberPages(&bh.Book)
	return nil
}

func renumberPages(b *domain.Book) {
	n := 1
	for i := range b.Spreads {
		for j := range b.Spreads[i].Pages {
			b.Spreads[i].Pages[j].Number = n
			n++
		}
	}
}
