/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package timeline

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"gopicturebook/internal/domain"
	applog "gopicturebook/internal/log"
)

const (
	// DefaultEmptyDelay is the fixed completion delay for a spread with no
	// animations, so "nothing to play" never becomes a zero-duration edge
	// case.
	DefaultEmptyDelay = 1500 * time.Millisecond

	defaultDurationMs = 1000
	floatOffset       = 20.0 // percent
	teeterAngle       = 5.0  // degrees
	teeterRepeats     = 4
	growDefault       = 1.2
	arcCurviness      = 1.5
)

// Segment is one scheduled tween on the master timeline. apply receives
// eased progress in [0,1] and writes the resulting presentation into the
// handle.
type Segment struct {
	Order    int
	Target   string
	Start    time.Duration
	Duration time.Duration // one iteration
	Repeat   int           // extra iterations, -1 means infinite
	Yoyo     bool
	Ease     Ease

	handle *Handle
	apply  func(h *Handle, p float64)
	media  bool // fires handle.Media.Play() when the clock crosses Start
	fired  bool
}

// End returns the segment's end offset on the master timeline. An infinitely
// looping segment counts a single iteration so it never blocks completion.
func (s *Segment) End() time.Duration {
	iters := 1 + s.Repeat
	if s.Repeat < 0 || iters < 1 {
		iters = 1
	}
	return s.Start + time.Duration(iters)*s.Duration
}

// Timeline is one built, playable spread timeline.
type Timeline struct {
	SpreadID string
	Segments []*Segment
	Length   time.Duration
}

// Options tune timeline construction.
type Options struct {
	// ReducedMotion collapses every tween duration and delay to zero while
	// preserving ordering and trigger semantics.
	ReducedMotion bool
	// EmptyDelay overrides DefaultEmptyDelay when positive.
	EmptyDelay time.Duration
	Log        *slog.Logger
}

// Build converts a spread's animation list into a segment list. Animations
// are sorted by order ascending regardless of input order; trigger placement
// follows the previous segment (with_previous shares its start,
// after_previous and on_click wait for its end). Elements whose first
// animation is a tweened entrance are primed hidden before the timeline
// exists, so the entrance from-state never flashes.
//
// on_click currently plays as after_previous; click-gated playback is an
// unimplemented behavior of the sequencer, not an equivalence.
func Build(spreadID string, anims []domain.Animation, reg *Registry, opts Options) *Timeline {
	logger := opts.Log
	if logger == nil {
		logger = applog.WithComponent("timeline")
	}
	emptyDelay := opts.EmptyDelay
	if emptyDelay <= 0 {
		emptyDelay = DefaultEmptyDelay
	}

	tl := &Timeline{SpreadID: spreadID}
	if len(anims) == 0 {
		tl.Length = emptyDelay
		return tl
	}

	sorted := make([]domain.Animation, len(anims))
	copy(sorted, anims)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	primeEntrances(sorted, reg)

	var prevStart, prevEnd time.Duration
	for _, a := range sorted {
		h, ok := reg.Get(a.Target.ID)
		if !ok {
			logger.Warn("animation target not mounted, skipping",
				slog.String("spread", spreadID), slog.String("target", a.Target.ID), slog.Int("order", a.Order))
			continue
		}

		start := prevEnd
		if a.Trigger == domain.TriggerWithPrevious {
			start = prevStart
		}
		seg := buildSegment(a, h, start, opts.ReducedMotion, logger)
		tl.Segments = append(tl.Segments, seg)
		prevStart, prevEnd = seg.Start, seg.End()
		if end := seg.End(); end > tl.Length {
			tl.Length = end
		}
	}
	return tl
}

// primeEntrances hides every element whose lowest-order animation is a
// tweened entrance.
func primeEntrances(sorted []domain.Animation, reg *Registry) {
	seen := make(map[string]bool, len(sorted))
	for _, a := range sorted {
		if seen[a.Target.ID] {
			continue
		}
		seen[a.Target.ID] = true
		if !PrimesHidden(a.Effect.Type) {
			continue
		}
		if h, ok := reg.Get(a.Target.ID); ok {
			h.State.Visible = false
			h.State.Opacity = 0
		}
	}
}

func buildSegment(a domain.Animation, h *Handle, base time.Duration, reduced bool, logger *slog.Logger) *Segment {
	seg := &Segment{
		Order:  a.Order,
		Target: a.Target.ID,
		Start:  base,
		Ease:   easeFor(a.Effect.Type),
		handle: h,
	}
	if !reduced {
		seg.Start += time.Duration(a.Effect.DelayMs) * time.Millisecond
		seg.Duration = tweenDuration(a.Effect)
	}
	seg.apply = applyFunc(a.Effect, h, logger)

	switch a.Effect.Type {
	case domain.EffectPlay:
		seg.media = true
	case domain.EffectSpin:
		seg.Repeat = a.Effect.Loop
	case domain.EffectTeeter:
		seg.Repeat = teeterRepeats
		seg.Yoyo = true
	}
	if reduced {
		seg.Repeat = 0
	}
	return seg
}

// tweenDuration resolves the effect duration; instant effects have none and
// tweens fall back to a catalog default.
func tweenDuration(e domain.Effect) time.Duration {
	switch e.Type {
	case domain.EffectPlay, domain.EffectAppear, domain.EffectDisappear, domain.EffectReadAlong:
		return 0
	}
	ms := e.DurationMs
	if ms <= 0 {
		ms = defaultDurationMs
	}
	return time.Duration(ms) * time.Millisecond
}

// applyFunc builds the progress writer for one effect. Unknown codes and
// read-along yield a nil writer: the segment still occupies its slot in the
// sequence but changes nothing.
func applyFunc(e domain.Effect, h *Handle, logger *slog.Logger) func(h *Handle, p float64) {
	switch e.Type {
	case domain.EffectPlay, domain.EffectReadAlong:
		return nil
	case domain.EffectAppear:
		return func(h *Handle, p float64) {
			h.State.Visible = true
			h.State.Opacity = 1
		}
	case domain.EffectFadeIn:
		return func(h *Handle, p float64) {
			h.State.Visible = p > 0
			h.State.Opacity = p
		}
	case domain.EffectFlyIn:
		dx, dy := flyOffset(e.Direction)
		return func(h *Handle, p float64) {
			h.State.Visible = p > 0
			h.State.Opacity = p
			h.State.TranslateX = dx * (1 - p)
			h.State.TranslateY = dy * (1 - p)
		}
	case domain.EffectFloatIn:
		return func(h *Handle, p float64) {
			h.State.Visible = p > 0
			h.State.Opacity = p
			h.State.TranslateY = floatOffset * (1 - p)
		}
	case domain.EffectZoom:
		return func(h *Handle, p float64) {
			h.State.Visible = p > 0
			h.State.Opacity = p
			h.State.Scale = p
		}
	case domain.EffectSpin:
		turns := e.Amount
		if turns <= 0 {
			turns = 1
		}
		return func(h *Handle, p float64) {
			h.State.Rotation = 360 * turns * p
		}
	case domain.EffectGrowShrink:
		target := e.Amount
		if target <= 0 {
			target = growDefault
		}
		return func(h *Handle, p float64) {
			h.State.Scale = 1 + (target-1)*p
		}
	case domain.EffectTeeter:
		// Full sine cycle per iteration: the rock starts and ends at the
		// neutral pose, so entry, repeats and the rest state all line up.
		return func(h *Handle, p float64) {
			h.State.Rotation = teeterAngle * math.Sin(2*math.Pi*p)
		}
	case domain.EffectTransparency:
		return func(h *Handle, p float64) {
			h.State.Opacity = 1 - 0.5*p
		}
	case domain.EffectDisappear:
		return func(h *Handle, p float64) {
			h.State.Visible = false
			h.State.Opacity = 0
		}
	case domain.EffectFadeOut:
		return func(h *Handle, p float64) {
			h.State.Opacity = 1 - p
			h.State.Visible = p < 1
		}
	case domain.EffectFlyOut:
		dx, dy := flyOffset(e.Direction)
		return func(h *Handle, p float64) {
			h.State.Opacity = 1 - p
			h.State.Visible = p < 1
			h.State.TranslateX = dx * p
			h.State.TranslateY = dy * p
		}
	case domain.EffectFloatOut:
		return func(h *Handle, p float64) {
			h.State.Opacity = 1 - p
			h.State.Visible = p < 1
			h.State.TranslateY = floatOffset * p
		}
	case domain.EffectLines:
		if e.Geometry == nil {
			logger.Warn("motion path without target geometry, skipping", slog.String("target", h.ID))
			return nil
		}
		dx := e.Geometry.X - h.Geometry.X
		dy := e.Geometry.Y - h.Geometry.Y
		return func(h *Handle, p float64) {
			h.State.PathX = dx * p
			h.State.PathY = dy * p
		}
	case domain.EffectArcs:
		if e.Geometry == nil {
			logger.Warn("motion path without target geometry, skipping", slog.String("target", h.ID))
			return nil
		}
		dx := e.Geometry.X - h.Geometry.X
		dy := e.Geometry.Y - h.Geometry.Y
		// Quadratic curve through a control point pushed perpendicular to
		// the chord, scaled by the arc curviness.
		cx := dx/2 - dy*arcCurviness/4
		cy := dy/2 + dx*arcCurviness/4
		return func(h *Handle, p float64) {
			q := 1 - p
			h.State.PathX = 2*q*p*cx + p*p*dx
			h.State.PathY = 2*q*p*cy + p*p*dy
		}
	}
	logger.Warn("unknown effect type, playing as no-op", slog.Int("type", int(e.Type)), slog.String("target", h.ID))
	return nil
}
