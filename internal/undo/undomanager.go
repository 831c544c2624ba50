/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package undo keeps in-memory undo/redo stacks of geometry snapshots per
// spread, with byte/depth caps and interval coalescing so rapid drags do not
// flood the history.
package undo

import (
	"encoding/json"
	"sync"
	"time"

	"gopicturebook/internal/domain"
)

// Snapshot is a reversible state blob for one spread. Blob content is opaque
// to the manager; size is accounted as len(Blob).
type Snapshot struct {
	SpreadID string
	Blob     []byte
	TS       time.Time
}

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes is a soft cap; oldest entries are pruned when exceeded.
	MaxBytes int
	// MaxPerSpread limits snapshots per spread (0 means unlimited).
	MaxPerSpread int
	// MinInterval coalesces snapshots captured within the interval for the
	// same spread, replacing the previous one instead of pushing.
	MinInterval time.Duration
}

// Manager provides per-spread undo/redo stacks. Safe for concurrent use.
type Manager struct {
	cfg Config
	mu  sync.Mutex

	undo map[string][]Snapshot
	redo map[string][]Snapshot

	totalBytes int
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 8 * 1024 * 1024
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 250 * time.Millisecond
	}
	return &Manager{cfg: cfg, undo: make(map[string][]Snapshot), redo: make(map[string][]Snapshot)}
}

// GeometryChange records one committed transform on one item: where it was,
// where it ended up, and which item it was. Undo plays Before, redo After.
type GeometryChange struct {
	Type   domain.ItemType `json:"type"`
	Index  int             `json:"index"`
	Before domain.Geometry `json:"before"`
	After  domain.Geometry `json:"after"`
}

// EncodeChange serializes a geometry change into an opaque snapshot blob.
func EncodeChange(ch GeometryChange) []byte {
	b, _ := json.Marshal(ch)
	return b
}

// DecodeChange restores a geometry change from a snapshot blob.
func DecodeChange(b []byte) (GeometryChange, error) {
	var ch GeometryChange
	err := json.Unmarshal(b, &ch)
	return ch, err
}

// Push records a snapshot for a spread. Within MinInterval of the previous
// snapshot on the same spread it replaces it instead. Any push clears the
// spread's redo stack.
func (m *Manager) Push(spreadID string, blob []byte) {
	m.PushSnapshot(Snapshot{SpreadID: spreadID, Blob: blob, TS: time.Now()})
}

// PushSnapshot is Push with an explicit timestamp (used by tests).
func (m *Manager) PushSnapshot(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[s.SpreadID]
	if n := len(stack); n > 0 {
		last := stack[n-1]
		if s.TS.Sub(last.TS) < m.cfg.MinInterval {
			m.totalBytes += len(s.Blob) - len(last.Blob)
			stack[n-1] = s
			m.undo[s.SpreadID] = stack
			m.redo[s.SpreadID] = nil
			m.enforceCapsLocked(s.SpreadID)
			return
		}
	}
	m.undo[s.SpreadID] = append(stack, s)
	m.totalBytes += len(s.Blob)
	m.redo[s.SpreadID] = nil
	m.enforceCapsLocked(s.SpreadID)
}

// Undo pops from the spread's undo stack onto its redo stack.
func (m *Manager) Undo(spreadID string) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[spreadID]
	if len(stack) == 0 {
		return Snapshot{}, false
	}
	s := stack[len(stack)-1]
	m.undo[spreadID] = stack[:len(stack)-1]
	m.totalBytes -= len(s.Blob)
	m.redo[spreadID] = append(m.redo[spreadID], s)
	return s, true
}

// Redo pops from redo back onto undo.
func (m *Manager) Redo(spreadID string) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.redo[spreadID]
	if len(r) == 0 {
		return Snapshot{}, false
	}
	s := r[len(r)-1]
	m.redo[spreadID] = r[:len(r)-1]
	m.undo[spreadID] = append(m.undo[spreadID], s)
	m.totalBytes += len(s.Blob)
	m.enforceCapsLocked(spreadID)
	return s, true
}

// ClearSpread drops both stacks for a spread to free memory.
func (m *Manager) ClearSpread(spreadID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.undo[spreadID] {
		m.totalBytes -= len(s.Blob)
	}
	delete(m.undo, spreadID)
	delete(m.redo, spreadID)
	if m.totalBytes < 0 {
		m.totalBytes = 0
	}
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (totalBytes int, spreads int, totalSnapshots int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	spreads = len(m.undo)
	for _, v := range m.undo {
		totalSnapshots += len(v)
	}
	return m.totalBytes, spreads, totalSnapshots
}

func (m *Manager) enforceCapsLocked(spreadID string) {
	if m.cfg.MaxPerSpread > 0 {
		stack := m.undo[spreadID]
		if len(stack) > m.cfg.MaxPerSpread {
			toDrop := len(stack) - m.cfg.MaxPerSpread
			for i := 0; i < toDrop; i++ {
				m.totalBytes -= len(stack[i].Blob)
			}
			m.undo[spreadID] = append([]Snapshot{}, stack[toDrop:]...)
		}
	}
	// Global cap: prune the oldest snapshot across all spreads.
	for m.cfg.MaxBytes > 0 && m.totalBytes > m.cfg.MaxBytes {
		oldestKey := ""
		found := false
		var oldestTS time.Time
		for key, stack := range m.undo {
			if len(stack) == 0 {
				continue
			}
			if !found || stack[0].TS.Before(oldestTS) {
				oldestKey = key
				found = true
				oldestTS = stack[0].TS
			}
		}
		if !found {
			break
		}
		stack := m.undo[oldestKey]
		m.totalBytes -= len(stack[0].Blob)
		m.undo[oldestKey] = stack[1:]
		if len(m.undo[oldestKey]) == 0 {
			delete(m.undo, oldestKey)
		}
	}
}
