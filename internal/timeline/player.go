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
	"sync"
	"time"

	"gopicturebook/internal/domain"
	applog "gopicturebook/internal/log"
)

// PlayerState is the lifecycle of the one live timeline instance.
type PlayerState int

const (
	PlayerIdle PlayerState = iota
	PlayerBuilding
	PlayerPlaying
	PlayerPaused
	PlayerCompleted
)

func (s PlayerState) String() string {
	switch s {
	case PlayerIdle:
		return "idle"
	case PlayerBuilding:
		return "building"
	case PlayerPlaying:
		return "playing"
	case PlayerPaused:
		return "paused"
	case PlayerCompleted:
		return "completed"
	}
	return "unknown"
}

// tickInterval is the playback clock resolution.
const tickInterval = 16 * time.Millisecond

// Player owns at most one built timeline and drives it from a single clock.
// Loading a new spread always kills the previous timeline synchronously and
// clears its applied visuals before building the next.
type Player struct {
	mu   sync.Mutex
	reg  *Registry
	opts Options
	log  *slog.Logger

	tl      *Timeline
	state   PlayerState
	elapsed time.Duration

	// gen invalidates in-flight ticks and pending completions on teardown.
	gen    int
	stopCh chan struct{}
	doneCh chan struct{}

	volume int
	muted  bool

	// OnComplete fires exactly once per timeline, with the spread id, on
	// natural completion. Never after Stop or Kill.
	OnComplete func(spreadID string)

	// OnTick fires after every applied playing tick, outside the lock, so a
	// host view can repaint the updated element states.
	OnTick func()
}

// NewPlayer builds a player over the element registry.
func NewPlayer(reg *Registry, opts Options) *Player {
	logger := opts.Log
	if logger == nil {
		logger = applog.WithComponent("timeline")
	}
	return &Player{reg: reg, opts: opts, log: logger, state: PlayerIdle, volume: 100}
}

// State returns the current lifecycle state.
func (p *Player) State() PlayerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Load tears down any live timeline and builds one for the given spread.
func (p *Player) Load(spreadID string, anims []domain.Animation) {
	p.Kill()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = PlayerBuilding
	p.tl = Build(spreadID, anims, p.reg, p.opts)
	p.elapsed = 0
	p.applyVolumeLocked()
	p.state = PlayerIdle
	p.log.Debug("timeline built",
		slog.String("spread", spreadID), slog.Int("segments", len(p.tl.Segments)),
		slog.Duration("length", p.tl.Length))
}

// Play starts the clock from the beginning of the loaded timeline.
func (p *Player) Play() {
	p.mu.Lock()
	if p.tl == nil || p.state == PlayerPlaying {
		p.mu.Unlock()
		return
	}
	p.elapsed = 0
	for _, s := range p.tl.Segments {
		s.fired = false
	}
	p.state = PlayerPlaying
	p.gen++
	gen := p.gen
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	stop, done := p.stopCh, p.doneCh
	p.mu.Unlock()

	go p.run(gen, stop, done)
}

func (p *Player) run(gen int, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			if p.step(gen, dt) {
				return
			}
		}
	}
}

// step advances the clock by dt and applies segment state. It reports
// whether the timeline reached its end. Paused players hold their position
// without accumulating time.
func (p *Player) step(gen int, dt time.Duration) bool {
	p.mu.Lock()
	if gen != p.gen || p.tl == nil {
		p.mu.Unlock()
		return true
	}
	if p.state == PlayerPaused {
		p.mu.Unlock()
		return false
	}
	if p.state != PlayerPlaying {
		p.mu.Unlock()
		return true
	}
	p.elapsed += dt
	p.applyAtLocked(p.elapsed)
	finished := p.elapsed >= p.tl.Length
	tick := p.OnTick
	var complete func(string)
	var spread string
	if finished {
		p.state = PlayerCompleted
		complete = p.OnComplete
		spread = p.tl.SpreadID
	}
	p.mu.Unlock()
	if tick != nil {
		tick()
	}
	if complete != nil {
		complete(spread)
	}
	return finished
}

// applyAtLocked writes every segment's state for master-clock offset t.
// Segments are applied in order, so later animations win conflicting writes.
func (p *Player) applyAtLocked(t time.Duration) {
	for _, s := range p.tl.Segments {
		if t < s.Start {
			continue
		}
		if s.media && !s.fired {
			s.fired = true
			if s.handle.Media != nil {
				s.handle.Media.Play()
			} else {
				p.log.Warn("play effect on element without media", slog.String("target", s.Target))
			}
		}
		if s.apply == nil {
			continue
		}
		s.apply(s.handle, s.Ease(s.progress(t)))
	}
}

// progress maps a master-clock offset into this segment's eased input,
// handling repeats and yoyo mirroring. Zero-duration segments are always at
// their end state once reached.
func (s *Segment) progress(t time.Duration) float64 {
	if s.Duration <= 0 {
		return 1
	}
	local := t - s.Start
	iter := int(local / s.Duration)
	maxIter := s.Repeat
	if maxIter >= 0 && iter > maxIter {
		// Past the last iteration: rest at the final pose.
		if s.Yoyo && (maxIter%2 == 1) {
			return 0
		}
		return 1
	}
	p := float64(local%s.Duration) / float64(s.Duration)
	if s.Yoyo && iter%2 == 1 {
		p = 1 - p
	}
	return p
}

// Pause holds the clock; the timeline is not rebuilt.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == PlayerPlaying {
		p.state = PlayerPaused
	}
}

// Resume continues a paused timeline in place.
func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == PlayerPaused {
		p.state = PlayerPlaying
	}
}

// Stop tears the live timeline down and clears applied visuals. No
// completion signal fires.
func (p *Player) Stop() { p.Kill() }

// Kill synchronously stops the clock goroutine, discards the built timeline
// and resets every handle to its base presentation. Safe to call in any
// state; a completion signal can no longer fire.
func (p *Player) Kill() {
	p.mu.Lock()
	p.gen++
	p.tl = nil
	stop, done := p.stopCh, p.doneCh
	p.stopCh, p.doneCh = nil, nil
	p.state = PlayerIdle
	p.mu.Unlock()
	if stop != nil {
		close(stop)
		<-done
	}
	p.reg.ResetStates()
}

// Seek applies the timeline state at offset t directly, firing completion
// when t reaches the end. It drives the same path as the clock and exists
// for hosts that scrub.
func (p *Player) Seek(t time.Duration) {
	p.mu.Lock()
	if p.tl == nil {
		p.mu.Unlock()
		return
	}
	p.elapsed = t
	p.applyAtLocked(t)
	tick := p.OnTick
	var complete func(string)
	var spread string
	if t >= p.tl.Length && p.state != PlayerCompleted {
		p.state = PlayerCompleted
		complete = p.OnComplete
		spread = p.tl.SpreadID
	}
	p.mu.Unlock()
	if tick != nil {
		tick()
	}
	if complete != nil {
		complete(spread)
	}
}

// SetVolume sets the 0..100 volume and applies it to every mounted media
// element immediately, independent of play state.
func (p *Player) SetVolume(v int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	p.volume = v
	p.applyVolumeLocked()
}

// SetMuted toggles mute; muted media plays at volume 0.
func (p *Player) SetMuted(m bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = m
	p.applyVolumeLocked()
}

func (p *Player) applyVolumeLocked() {
	v := float64(p.volume) / 100
	if p.muted {
		v = 0
	}
	p.reg.ForEachMedia(func(h *Handle) { h.Media.SetVolume(v) })
}
