/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package geom holds the percent⇄pixel coordinate math for the spread
// canvas. Item geometry is stored in percent-of-canvas units; every screen
// mapping is recomputed from the container's current bounding box, with no
// caching, so resize and scroll just feed in a fresh rect.
package geom

import "gopicturebook/internal/domain"

// Rect is an axis-aligned rectangle in screen pixels.
type Rect struct {
	X, Y float64
	W, H float64
}

func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

func (r Rect) Right() float64   { return r.X + r.W }
func (r Rect) Bottom() float64  { return r.Y + r.H }
func (r Rect) CenterX() float64 { return r.X + r.W/2 }
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && y >= r.Y && x <= r.X+r.W && y <= r.Y+r.H
}

// ToPixel converts a percent value to pixels against a container dimension.
func ToPixel(percent, dimension float64) float64 { return percent / 100 * dimension }

// ToPercent converts a pixel value to percent against a container dimension.
// A non-positive dimension yields 0 rather than Inf/NaN.
func ToPercent(pixel, dimension float64) float64 {
	if dimension <= 0 {
		return 0
	}
	return pixel / dimension * 100
}

// Clamp limits v into [min, max]. When min > max, min wins.
func Clamp(v, min, max float64) float64 {
	if v > max {
		v = max
	}
	if v < min {
		v = min
	}
	return v
}

// ScreenRect maps a percent geometry to an absolute screen rectangle given
// the container's current bounding box.
func ScreenRect(g domain.Geometry, container Rect) Rect {
	return Rect{
		X: container.X + ToPixel(g.X, container.W),
		Y: container.Y + ToPixel(g.Y, container.H),
		W: ToPixel(g.W, container.W),
		H: ToPixel(g.H, container.H),
	}
}

// PointerPercent converts a pointer position to canvas-percent coordinates.
// canvas holds the unzoomed canvas extents at its on-screen origin, while
// the pointer offsets are measured in the zoom-scaled space, so the zoom
// factor (zoomPercent/100) is divided out before normalizing.
func PointerPercent(px, py float64, canvas Rect, zoomPercent float64) (x, y float64) {
	zoom := zoomPercent / 100
	if zoom <= 0 {
		zoom = 1
	}
	x = ToPercent((px-canvas.X)/zoom, canvas.W)
	y = ToPercent((py-canvas.Y)/zoom, canvas.H)
	return x, y
}
