/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"encoding/json"
	"fmt"

	"github.com/atotto/clipboard"

	"gopicturebook/internal/domain"
	"gopicturebook/internal/transform"
)

// clipEnvelope wraps a copied item so paste can reject foreign clipboard
// content without guessing.
type clipEnvelope struct {
	App     string          `json:"app"`
	Type    domain.ItemType `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

const clipApp = "gopicturebook/item"

// pasteOffset shifts a pasted copy so it does not land exactly on the
// original, in percent.
const pasteOffset = 2.0

// CopySelected serializes the selected item to the system clipboard.
func (c *Controller) CopySelected() error {
	if c.sel == nil || c.spread == nil {
		return fmt.Errorf("nothing selected")
	}
	var payload any
	switch c.sel.Type {
	case domain.ItemImage:
		payload = c.spread.Images[c.sel.Index]
	case domain.ItemText:
		payload = c.spread.Textboxes[c.sel.Index]
	case domain.ItemObject:
		payload = c.spread.Objects[c.sel.Index]
	default:
		return fmt.Errorf("unknown item type %q", c.sel.Type)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}
	env, err := json.Marshal(clipEnvelope{App: clipApp, Type: c.sel.Type, Payload: raw})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if err := clipboard.WriteAll(string(env)); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}

// PastedItem is a decoded clipboard item ready for the host to append; the
// host assigns a fresh id before committing.
type PastedItem struct {
	Type    domain.ItemType
	Image   *domain.Image
	Textbox *domain.Textbox
	Object  *domain.Object
}

// PasteItem reads an item envelope from the system clipboard. The copy is
// nudged by a small offset so it lands beside the original. Foreign
// clipboard content yields (nil, nil): paste is simply inert.
func PasteItem() (*PastedItem, error) {
	s, err := clipboard.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read clipboard: %w", err)
	}
	var env clipEnvelope
	if err := json.Unmarshal([]byte(s), &env); err != nil || env.App != clipApp {
		return nil, nil
	}
	return decodePasted(env)
}

func decodePasted(env clipEnvelope) (*PastedItem, error) {
	out := &PastedItem{Type: env.Type}
	shift := func(g domain.Geometry) domain.Geometry {
		return transform.ApplyDragDelta(g, pasteOffset, pasteOffset)
	}
	switch env.Type {
	case domain.ItemImage:
		var im domain.Image
		if err := json.Unmarshal(env.Payload, &im); err != nil {
			return nil, fmt.Errorf("decode image: %w", err)
		}
		im.ID = ""
		im.Geometry = shift(im.Geometry)
		out.Image = &im
	case domain.ItemText:
		var tb domain.Textbox
		if err := json.Unmarshal(env.Payload, &tb); err != nil {
			return nil, fmt.Errorf("decode textbox: %w", err)
		}
		tb.ID = ""
		for lang, v := range tb.Languages {
			v.Geometry = shift(v.Geometry)
			tb.Languages[lang] = v
		}
		out.Textbox = &tb
	case domain.ItemObject:
		var ob domain.Object
		if err := json.Unmarshal(env.Payload, &ob); err != nil {
			return nil, fmt.Errorf("decode object: %w", err)
		}
		ob.ID = ""
		ob.Geometry = shift(ob.Geometry)
		out.Object = &ob
	default:
		return nil, fmt.Errorf("unknown item type %q", env.Type)
	}
	return out, nil
}
