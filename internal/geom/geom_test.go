/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import (
	"math"
	"testing"

	"gopicturebook/internal/domain"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestPixelPercentConversion(t *testing.T) {
	if v := ToPixel(25, 800); !approx(v, 200) {
		t.Fatalf("ToPixel(25, 800) = %v", v)
	}
	if v := ToPercent(200, 800); !approx(v, 25) {
		t.Fatalf("ToPercent(200, 800) = %v", v)
	}
	if v := ToPercent(100, 0); v != 0 {
		t.Fatalf("zero dimension must yield 0, got %v", v)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(-5, 0, 10) != 0 || Clamp(15, 0, 10) != 10 || Clamp(5, 0, 10) != 5 {
		t.Fatalf("clamp broken")
	}
	// min wins over max when inverted
	if Clamp(5, 8, 2) != 8 {
		t.Fatalf("clamp inverted range: %v", Clamp(5, 8, 2))
	}
}

func TestScreenRect(t *testing.T) {
	g := domain.Geometry{X: 10, Y: 20, W: 50, H: 25}
	got := ScreenRect(g, R(100, 50, 800, 400))
	want := R(180, 130, 400, 100)
	if got != want {
		t.Fatalf("ScreenRect = %+v, want %+v", got, want)
	}
}

func TestPointerPercentDividesOutZoom(t *testing.T) {
	canvas := R(100, 100, 800, 400)
	// At 200% zoom a pointer 400px right of the origin is only 200 logical px in.
	x, y := PointerPercent(500, 300, canvas, 200)
	if !approx(x, 25) || !approx(y, 25) {
		t.Fatalf("zoomed pointer percent = (%v, %v), want (25, 25)", x, y)
	}
	// At 100% the same offsets map directly.
	x, y = PointerPercent(500, 300, canvas, 100)
	if !approx(x, 50) || !approx(y, 50) {
		t.Fatalf("unzoomed pointer percent = (%v, %v), want (50, 50)", x, y)
	}
	// Invalid zoom falls back to 1x instead of dividing by zero.
	x, _ = PointerPercent(500, 300, canvas, 0)
	if !approx(x, 50) {
		t.Fatalf("zero zoom fallback = %v, want 50", x)
	}
}

func TestRectHelpers(t *testing.T) {
	r := R(10, 20, 100, 50)
	if r.Right() != 110 || r.Bottom() != 70 || r.CenterX() != 60 || r.CenterY() != 45 {
		t.Fatalf("rect helpers: %+v", r)
	}
	if !r.Contains(10, 20) || !r.Contains(110, 70) || r.Contains(111, 20) {
		t.Fatalf("contains broken")
	}
}
