/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package toolbar computes where the floating item toolbar goes relative to
// the selected element. Placement is recomputed reactively by the caller on
// every container resize/scroll and whenever the toolbar's own measured size
// changes; nothing here is cached or stored.
package toolbar

import "gopicturebook/internal/geom"

// DefaultGap is the margin kept between the toolbar, the item and the
// viewport edges, in pixels.
const DefaultGap = 8

// Side is the chosen placement relative to the selected element.
type Side string

const (
	SideAbove Side = "above"
	SideLeft  Side = "left"
	SideRight Side = "right"
	SideBelow Side = "below"
)

// Size is a measured width/height pair in pixels.
type Size struct {
	W, H float64
}

// Placement is a resolved toolbar position in viewport coordinates.
type Placement struct {
	Side Side
	X, Y float64
}

// Input collects everything a placement depends on. Item is nil while no
// element is selected; Toolbar is zero until the toolbar has rendered once
// and been measured.
type Input struct {
	Item     *geom.Rect
	Toolbar  Size
	Viewport Size
	Gap      float64
}

// Place chooses a non-overlapping, viewport-clamped toolbar position with
// strict priority above → left → right → below (the final fallback carries
// no fit guarantee). It returns nil when there is no selected geometry or
// the toolbar has not been measured yet; the caller then renders the toolbar
// invisibly for one frame purely to obtain its size.
func Place(in Input) *Placement {
	if in.Item == nil || in.Toolbar.W <= 0 || in.Toolbar.H <= 0 {
		return nil
	}
	gap := in.Gap
	if gap <= 0 {
		gap = DefaultGap
	}
	item := *in.Item
	tb := in.Toolbar
	vw, vh := in.Viewport.W, in.Viewport.H

	// Horizontal center then clamp, for above/below placements.
	centeredX := geom.Clamp(item.CenterX()-tb.W/2, gap, vw-tb.W-gap)
	// Vertical center then clamp, for left/right placements.
	centeredY := geom.Clamp(item.CenterY()-tb.H/2, gap, vh-tb.H-gap)

	switch {
	case item.Y-tb.H-gap >= gap:
		return &Placement{Side: SideAbove, X: centeredX, Y: item.Y - tb.H - gap}
	case item.X-tb.W-gap >= gap:
		return &Placement{Side: SideLeft, X: item.X - tb.W - gap, Y: centeredY}
	case item.Right()+gap+tb.W <= vw-gap:
		return &Placement{Side: SideRight, X: item.Right() + gap, Y: centeredY}
	default:
		return &Placement{Side: SideBelow, X: centeredX, Y: item.Bottom() + gap}
	}
}
