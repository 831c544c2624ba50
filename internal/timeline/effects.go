/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package timeline

import (
	"math"

	"gopicturebook/internal/domain"
)

// Category groups effect codes for easing selection and visibility priming.
type Category int

const (
	CategoryNone Category = iota
	CategoryMedia
	CategoryEntrance
	CategoryExit
	CategoryEmphasis
)

// CategoryOf maps an effect code to its category. Unknown codes map to
// CategoryNone.
func CategoryOf(t domain.EffectType) Category {
	switch t {
	case domain.EffectPlay:
		return CategoryMedia
	case domain.EffectAppear, domain.EffectFadeIn, domain.EffectFlyIn, domain.EffectFloatIn, domain.EffectZoom:
		return CategoryEntrance
	case domain.EffectDisappear, domain.EffectFadeOut, domain.EffectFlyOut, domain.EffectFloatOut:
		return CategoryExit
	case domain.EffectSpin, domain.EffectGrowShrink, domain.EffectTeeter, domain.EffectTransparency,
		domain.EffectReadAlong, domain.EffectLines, domain.EffectArcs:
		return CategoryEmphasis
	}
	return CategoryNone
}

// PrimesHidden reports whether an element whose first animation carries this
// effect starts playback hidden. Only tweened entrances prime; Appear is an
// instant visibility set and needs no from-state.
func PrimesHidden(t domain.EffectType) bool {
	switch t {
	case domain.EffectFadeIn, domain.EffectFlyIn, domain.EffectFloatIn, domain.EffectZoom:
		return true
	}
	return false
}

// Ease maps linear progress [0,1] to eased progress.
type Ease func(t float64) float64

func EaseLinear(t float64) float64 { return t }

func EaseOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}

func EaseInCubic(t float64) float64 { return t * t * t }

func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}

func EaseSineInOut(t float64) float64 {
	return -(math.Cos(math.Pi*t) - 1) / 2
}

// easeFor selects the category default: entrance ease-out, exit ease-in,
// teeter sine-in-out, other emphasis ease-in-out.
func easeFor(t domain.EffectType) Ease {
	if t == domain.EffectTeeter {
		return EaseSineInOut
	}
	switch CategoryOf(t) {
	case CategoryEntrance:
		return EaseOutCubic
	case CategoryExit:
		return EaseInCubic
	case CategoryEmphasis:
		return EaseInOutCubic
	}
	return EaseLinear
}

// flyOffset resolves the 100% off-canvas offset for a named direction.
func flyOffset(d domain.Direction) (dx, dy float64) {
	switch d {
	case domain.DirRight:
		return 100, 0
	case domain.DirUp:
		return 0, -100
	case domain.DirDown:
		return 0, 100
	default: // left is the catalog default
		return -100, 0
	}
}
