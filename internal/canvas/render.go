/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"sort"

	"gopicturebook/internal/domain"
)

// RenderContext is what a host-supplied renderer receives per item: the item
// itself, its position in the spread, the selection flag, and the callbacks
// wired back into the controller. The controller builds these contexts but
// never dictates visual representation.
type RenderContext struct {
	Type       domain.ItemType
	Index      int
	Z          int
	Spread     *domain.Spread
	Language   string
	IsSelected bool

	// Resolved item payloads; exactly one is non-nil per context.
	Image   *domain.Image
	Textbox *domain.Textbox
	Object  *domain.Object

	// Geometry resolved for the active language (textboxes) or the item.
	Geometry domain.Geometry

	OnSelect     func()
	OnUpdate     func(domain.Geometry)
	OnDelete     func()
	OnTextChange func(string)
	OnSwap       func()
}

// ItemRenderer is the per-type render strategy the host supplies.
type ItemRenderer interface {
	Render(ctx RenderContext)
}

// RendererSet maps the three item families to their strategies. A nil entry
// means the host does not render that family (the context is skipped).
type RendererSet struct {
	Image  ItemRenderer
	Text   ItemRenderer
	Object ItemRenderer
}

// BuildContexts assembles render contexts for every editor-visible item of
// the current spread, in ascending z order so hosts can paint in sequence.
func (c *Controller) BuildContexts() []RenderContext {
	if c.spread == nil {
		return nil
	}
	s := c.spread
	out := make([]RenderContext, 0, len(s.Images)+len(s.Textboxes)+len(s.Objects))

	for i := range s.Images {
		im := &s.Images[i]
		if !im.InEditor() {
			continue
		}
		out = append(out, c.newContext(domain.ItemImage, i, im.EffectiveZ(), im.Geometry, im, nil, nil))
	}
	for i := range s.Textboxes {
		tb := &s.Textboxes[i]
		if !tb.InEditor() {
			continue
		}
		v, ok := tb.Variant(c.language)
		if !ok {
			continue
		}
		out = append(out, c.newContext(domain.ItemText, i, tb.EffectiveZ(), v.Geometry, nil, tb, nil))
	}
	for i := range s.Objects {
		ob := &s.Objects[i]
		if !ob.InEditor() {
			continue
		}
		out = append(out, c.newContext(domain.ItemObject, i, ob.EffectiveZ(), ob.Geometry, nil, nil, ob))
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Z < out[j].Z })
	return out
}

// RenderAll dispatches every context to the matching strategy.
func (c *Controller) RenderAll(set RendererSet) {
	for _, ctx := range c.BuildContexts() {
		var r ItemRenderer
		switch ctx.Type {
		case domain.ItemImage:
			r = set.Image
		case domain.ItemText:
			r = set.Text
		case domain.ItemObject:
			r = set.Object
		}
		if r != nil {
			r.Render(ctx)
		}
	}
}

func (c *Controller) newContext(t domain.ItemType, index, z int, g domain.Geometry,
	im *domain.Image, tb *domain.Textbox, ob *domain.Object) RenderContext {

	selected := c.sel != nil && c.sel.Type == t && c.sel.Index == index
	ctx := RenderContext{
		Type:       t,
		Index:      index,
		Z:          z,
		Spread:     c.spread,
		Language:   c.language,
		IsSelected: selected,
		Image:      im,
		Textbox:    tb,
		Object:     ob,
		Geometry:   g,
		OnSelect:   func() { c.Select(t, index) },
		OnUpdate: func(ng domain.Geometry) {
			if c.cb.OnUpdateItem != nil {
				c.cb.OnUpdateItem(t, index, ng)
			}
		},
		OnDelete: func() {
			if c.cb.OnDeleteItem != nil {
				c.cb.OnDeleteItem(t, index)
			}
		},
	}
	if t == domain.ItemText && tb != nil {
		id := tb.ID
		ctx.OnTextChange = func(text string) {
			if c.cb.OnTextChange != nil {
				c.cb.OnTextChange(id, text)
			}
		}
	}
	if c.caps.Swappable {
		ctx.OnSwap = func() { c.RequestSwap() }
	}
	return ctx
}
