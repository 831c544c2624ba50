/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package undo

import (
	"testing"
	"time"

	"gopicturebook/internal/domain"
)

func snap(id string, blob string, ts time.Time) Snapshot {
	return Snapshot{SpreadID: id, Blob: []byte(blob), TS: ts}
}

func TestPushUndoRedo(t *testing.T) {
	m := NewManager(Config{})
	t0 := time.Now()
	m.PushSnapshot(snap("s1", "a", t0))
	m.PushSnapshot(snap("s1", "b", t0.Add(time.Second)))

	s, ok := m.Undo("s1")
	if !ok || string(s.Blob) != "b" {
		t.Fatalf("undo returned %q, %v", s.Blob, ok)
	}
	s, ok = m.Redo("s1")
	if !ok || string(s.Blob) != "b" {
		t.Fatalf("redo returned %q, %v", s.Blob, ok)
	}
	if _, ok := m.Redo("s1"); ok {
		t.Fatalf("redo stack should be drained")
	}
}

func TestCoalescingWithinInterval(t *testing.T) {
	m := NewManager(Config{MinInterval: time.Second})
	t0 := time.Now()
	m.PushSnapshot(snap("s1", "aaaa", t0))
	m.PushSnapshot(snap("s1", "bb", t0.Add(100*time.Millisecond)))

	bytes, _, count := m.Stats()
	if count != 1 {
		t.Fatalf("rapid pushes must coalesce, got %d snapshots", count)
	}
	if bytes != 2 {
		t.Fatalf("byte accounting after coalesce: %d", bytes)
	}
	s, _ := m.Undo("s1")
	if string(s.Blob) != "bb" {
		t.Fatalf("coalesced blob: %q", s.Blob)
	}
}

func TestPushClearsRedo(t *testing.T) {
	m := NewManager(Config{})
	t0 := time.Now()
	m.PushSnapshot(snap("s1", "a", t0))
	m.PushSnapshot(snap("s1", "b", t0.Add(time.Second)))
	m.Undo("s1")
	m.PushSnapshot(snap("s1", "c", t0.Add(2*time.Second)))
	if _, ok := m.Redo("s1"); ok {
		t.Fatalf("push must invalidate redo")
	}
}

func TestPerSpreadDepthCap(t *testing.T) {
	m := NewManager(Config{MaxPerSpread: 2, MinInterval: time.Millisecond})
	t0 := time.Now()
	for i := 0; i < 5; i++ {
		m.PushSnapshot(snap("s1", "x", t0.Add(time.Duration(i)*time.Second)))
	}
	_, _, count := m.Stats()
	if count != 2 {
		t.Fatalf("depth cap not enforced: %d", count)
	}
}

func TestGlobalByteCapPrunesOldest(t *testing.T) {
	m := NewManager(Config{MaxBytes: 8, MinInterval: time.Millisecond})
	t0 := time.Now()
	m.PushSnapshot(snap("s1", "aaaa", t0))
	m.PushSnapshot(snap("s2", "bbbb", t0.Add(time.Second)))
	m.PushSnapshot(snap("s3", "cccc", t0.Add(2*time.Second)))
	bytes, _, _ := m.Stats()
	if bytes > 8 {
		t.Fatalf("byte cap exceeded: %d", bytes)
	}
	if _, ok := m.Undo("s1"); ok {
		t.Fatalf("oldest spread snapshot should have been pruned")
	}
}

func TestChangeBlobRoundTrip(t *testing.T) {
	ch := GeometryChange{
		Type:   domain.ItemImage,
		Index:  2,
		Before: domain.Geometry{X: 10, Y: 20, W: 30, H: 40},
		After:  domain.Geometry{X: 15, Y: 20, W: 30, H: 40},
	}
	got, err := DecodeChange(EncodeChange(ch))
	if err != nil || got != ch {
		t.Fatalf("round trip: %+v, %v", got, err)
	}
}

func TestClearSpread(t *testing.T) {
	m := NewManager(Config{})
	m.Push("s1", []byte("abc"))
	m.ClearSpread("s1")
	bytes, spreads, _ := m.Stats()
	if bytes != 0 || spreads != 0 {
		t.Fatalf("clear left state: %d bytes, %d spreads", bytes, spreads)
	}
}
