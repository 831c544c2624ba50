/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package transform applies drag, resize and nudge deltas to item geometry
// under the canvas bounds constraints. All functions are pure and total:
// whatever delta comes in, the result satisfies 0 <= x, 0 <= y,
// x+w <= 100, y+h <= 100 and w,h >= domain.MinElementSize.
package transform

import (
	"gopicturebook/internal/domain"
	"gopicturebook/internal/geom"
)

// Handle names one of the eight compass-direction resize grips.
type Handle string

const (
	HandleNW Handle = "nw"
	HandleN  Handle = "n"
	HandleNE Handle = "ne"
	HandleW  Handle = "w"
	HandleE  Handle = "e"
	HandleSW Handle = "sw"
	HandleS  Handle = "s"
	HandleSE Handle = "se"
)

// touchesWest reports whether the handle includes the west edge.
func (h Handle) touchesWest() bool { return h == HandleW || h == HandleNW || h == HandleSW }

// touchesNorth reports whether the handle includes the north edge.
func (h Handle) touchesNorth() bool { return h == HandleN || h == HandleNW || h == HandleNE }

func (h Handle) touchesEast() bool  { return h == HandleE || h == HandleNE || h == HandleSE }
func (h Handle) touchesSouth() bool { return h == HandleS || h == HandleSW || h == HandleSE }

// GrowthDelta converts a raw cumulative pointer delta (percent units) into
// the outward growth delta ApplyResizeDelta expects: on west/north edges the
// pointer moves opposite to the direction of growth, so the sign flips.
func (h Handle) GrowthDelta(dx, dy float64) (gdx, gdy float64) {
	gdx, gdy = dx, dy
	if h.touchesWest() {
		gdx = -dx
	}
	if h.touchesNorth() {
		gdy = -dy
	}
	return gdx, gdy
}

// ApplyDragDelta translates geometry by percent deltas, clamped so the
// element never leaves [0, 100-w] × [0, 100-h]. Idempotent under zero delta.
func ApplyDragDelta(g domain.Geometry, dx, dy float64) domain.Geometry {
	g.X = geom.Clamp(g.X+dx, 0, 100-g.W)
	g.Y = geom.Clamp(g.Y+dy, 0, 100-g.H)
	return g
}

// ApplyResizeDelta grows or shrinks geometry from the given handle. dx and dy
// are outward growth amounts (positive grows the element); see GrowthDelta.
//
// Edges touching the west or north side grow by moving the origin: the size
// increases by exactly the amount the origin moved, which is less than the
// requested delta once the origin hits 0 or the size floor. East/south edges
// only adjust size within [MinElementSize, 100-origin].
func ApplyResizeDelta(g domain.Geometry, h Handle, dx, dy float64) domain.Geometry {
	const min = domain.MinElementSize

	if h.touchesWest() {
		newX := geom.Clamp(g.X-dx, 0, g.X+g.W-min)
		g.W += g.X - newX
		g.X = newX
	} else if h.touchesEast() {
		g.W = geom.Clamp(g.W+dx, min, 100-g.X)
	}

	if h.touchesNorth() {
		newY := geom.Clamp(g.Y-dy, 0, g.Y+g.H-min)
		g.H += g.Y - newY
		g.Y = newY
	} else if h.touchesSouth() {
		g.H = geom.Clamp(g.H+dy, min, 100-g.Y)
	}

	// Inputs that already violated the invariants are pulled back in.
	g.X = geom.Clamp(g.X, 0, 100-min)
	g.Y = geom.Clamp(g.Y, 0, 100-min)
	g.W = geom.Clamp(g.W, min, 100-g.X)
	g.H = geom.Clamp(g.H, min, 100-g.Y)
	return g
}

// NudgeDirection is an arrow-key direction.
type NudgeDirection string

const (
	NudgeLeft  NudgeDirection = "left"
	NudgeRight NudgeDirection = "right"
	NudgeUp    NudgeDirection = "up"
	NudgeDown  NudgeDirection = "down"
)

// ApplyNudge moves geometry one step in the given direction, delegating to
// ApplyDragDelta with a directional unit vector scaled by step.
func ApplyNudge(g domain.Geometry, dir NudgeDirection, step float64) domain.Geometry {
	var dx, dy float64
	switch dir {
	case NudgeLeft:
		dx = -step
	case NudgeRight:
		dx = step
	case NudgeUp:
		dy = -step
	case NudgeDown:
		dy = step
	}
	return ApplyDragDelta(g, dx, dy)
}
