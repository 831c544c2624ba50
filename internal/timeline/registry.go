/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package timeline builds and plays per-spread animation timelines. The
// render layer registers an element handle per mounted item; the builder
// converts a spread's animation list into a segment list driven by a single
// clock. Handles are mutated only through segment application and reset on
// teardown.
package timeline

import "gopicturebook/internal/domain"

// MediaControl is implemented by handles with attached audio/video.
type MediaControl interface {
	// Play starts playback from time 0.
	Play()
	// SetVolume sets the effective volume in [0,1].
	SetVolume(v float64)
}

// VisualState is the tween-applied presentation of one element. Translate
// and path offsets are in canvas percent, rotation in degrees.
type VisualState struct {
	Visible    bool
	Opacity    float64
	TranslateX float64
	TranslateY float64
	Scale      float64
	Rotation   float64
	PathX      float64
	PathY      float64
}

// BaseState is the untouched presentation: visible, fully opaque, unmoved.
func BaseState() VisualState {
	return VisualState{Visible: true, Opacity: 1, Scale: 1}
}

// Handle is one registered element. The render layer upserts it on mount and
// deletes it on unmount; the builder reads it at build time only.
type Handle struct {
	ID       string
	Geometry domain.Geometry // committed geometry at registration time
	State    VisualState
	Media    MediaControl // nil when no media is attached
}

// Registry maps item id to element handle. Mount/unmount and timeline build
// all happen on the UI goroutine, so no locking is needed here.
type Registry struct {
	m map[string]*Handle
}

func NewRegistry() *Registry {
	return &Registry{m: make(map[string]*Handle)}
}

// Upsert registers or replaces the handle for id.
func (r *Registry) Upsert(id string, g domain.Geometry, media MediaControl) *Handle {
	h := &Handle{ID: id, Geometry: g, State: BaseState(), Media: media}
	r.m[id] = h
	return h
}

// Delete removes the handle for id, if present.
func (r *Registry) Delete(id string) { delete(r.m, id) }

// Get resolves a handle by id.
func (r *Registry) Get(id string) (*Handle, bool) {
	h, ok := r.m[id]
	return h, ok
}

// Len reports the number of mounted handles.
func (r *Registry) Len() int { return len(r.m) }

// ResetStates clears every applied visual side effect back to the base
// presentation. Called on timeline teardown.
func (r *Registry) ResetStates() {
	for _, h := range r.m {
		h.State = BaseState()
	}
}

// ForEachMedia visits every handle with attached media.
func (r *Registry) ForEachMedia(fn func(h *Handle)) {
	for _, h := range r.m {
		if h.Media != nil {
			fn(h)
		}
	}
}
