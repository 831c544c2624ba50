/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package canvas implements the per-canvas selection and interaction state
// machine. One parametrized Controller serves the editor, manuscript and
// playable spread views; a capability set switches off the interactions a
// view does not offer. The controller never owns canonical state: it reads
// the current spread, proposes geometry through callbacks, and the host
// commits.
package canvas

import (
	"log/slog"

	"gopicturebook/internal/domain"
	applog "gopicturebook/internal/log"
	"gopicturebook/internal/transform"
	"gopicturebook/internal/undo"
)

// State is the interaction state of a canvas instance.
type State int

const (
	StateIdle State = iota
	StateSelected
	StateDragging
	StateResizing
	StateEditingText
)

// Capabilities parametrize the three spread view families.
type Capabilities struct {
	Draggable    bool
	Resizable    bool
	EditableText bool
	Swappable    bool
}

// EditorCapabilities is the full edit surface.
var EditorCapabilities = Capabilities{Draggable: true, Resizable: true, EditableText: true, Swappable: true}

// ViewerCapabilities allows selection only (playable view).
var ViewerCapabilities = Capabilities{}

// SelectedElement points into the owning spread's item arrays. It is
// transient and never persisted.
type SelectedElement struct {
	Type  domain.ItemType
	Index int
}

// Callbacks are the outbound mutation hooks. The controller only proposes;
// hosts commit into their canonical store.
type Callbacks struct {
	OnUpdateItem    func(t domain.ItemType, index int, g domain.Geometry)
	OnDeleteItem    func(t domain.ItemType, index int)
	OnUpdatePage    func(pageIndex int, p domain.Page)
	OnReorderSpread func(from, to int)
	OnTextChange    func(id, text string)
	OnDeleteSpread  func(spreadID string)
	OnSwapRequest   func(t domain.ItemType, index int)
}

// Config tunes interaction steps.
type Config struct {
	NudgeStep      float64 // percent per arrow key
	NudgeStepLarge float64 // percent per shift+arrow
}

// DefaultConfig mirrors the editor defaults.
func DefaultConfig() Config { return Config{NudgeStep: 1, NudgeStepLarge: 5} }

// Controller is the per-canvas interaction state machine.
type Controller struct {
	caps Capabilities
	cfg  Config
	cb   Callbacks
	log  *slog.Logger

	spread   *domain.Spread
	language string

	state State
	sel   *SelectedElement

	// Drag/resize snapshot: cumulative deltas are measured from the start
	// pointer position against the start geometry, never frame to frame.
	startGeom domain.Geometry
	startX    float64
	startY    float64
	handle    transform.Handle
	proposed  domain.Geometry

	// Text edit buffer; a single OnTextChange fires on commit.
	editText string

	// Gated spread deletion.
	pendingDelete string

	// History receives a geometry snapshot on every committed transform.
	History *undo.Manager
}

// NewController builds a controller for one canvas instance.
func NewController(caps Capabilities, cfg Config, cb Callbacks) *Controller {
	if cfg.NudgeStep <= 0 {
		cfg = DefaultConfig()
	}
	return &Controller{
		caps:  caps,
		cfg:   cfg,
		cb:    cb,
		log:   applog.WithComponent("canvas"),
		state: StateIdle,
	}
}

// State returns the current interaction state.
func (c *Controller) State() State { return c.state }

// Selected returns the current selection, nil when idle.
func (c *Controller) Selected() *SelectedElement {
	if c.sel == nil {
		return nil
	}
	s := *c.sel
	return &s
}

// SetLanguage switches the active textbox language.
func (c *Controller) SetLanguage(lang string) { c.language = lang }

// SetSpread points the controller at a new spread. Any selection, transient
// transform or text edit is discarded.
func (c *Controller) SetSpread(s *domain.Spread) {
	c.spread = s
	c.sel = nil
	c.state = StateIdle
	c.pendingDelete = ""
}

// Select picks one element; selecting a new element or empty canvas clears
// any in-progress text edit first. Only one element may be selected per
// canvas at a time.
func (c *Controller) Select(t domain.ItemType, index int) {
	if c.state == StateEditingText {
		c.CancelTextEdit()
	}
	if c.spread == nil || !c.validIndex(t, index) {
		c.ClearSelection()
		return
	}
	c.sel = &SelectedElement{Type: t, Index: index}
	c.state = StateSelected
}

// ClearSelection returns to Idle, discarding transient state. Used for
// escape and outside clicks.
func (c *Controller) ClearSelection() {
	if c.state == StateEditingText {
		c.CancelTextEdit()
	}
	if c.state == StateDragging || c.state == StateResizing {
		c.revertTransient()
	}
	c.sel = nil
	c.state = StateIdle
}

func (c *Controller) validIndex(t domain.ItemType, index int) bool {
	if index < 0 {
		return false
	}
	switch t {
	case domain.ItemImage:
		return index < len(c.spread.Images)
	case domain.ItemText:
		return index < len(c.spread.Textboxes)
	case domain.ItemObject:
		return index < len(c.spread.Objects)
	}
	return false
}

// SelectedGeometry resolves the selection's current geometry. Textboxes use
// the active language's per-language geometry.
func (c *Controller) SelectedGeometry() (domain.Geometry, bool) {
	if c.sel == nil || c.spread == nil || !c.validIndex(c.sel.Type, c.sel.Index) {
		return domain.Geometry{}, false
	}
	switch c.sel.Type {
	case domain.ItemImage:
		return c.spread.Images[c.sel.Index].Geometry, true
	case domain.ItemText:
		v, ok := c.spread.Textboxes[c.sel.Index].Variant(c.language)
		return v.Geometry, ok
	case domain.ItemObject:
		return c.spread.Objects[c.sel.Index].Geometry, true
	}
	return domain.Geometry{}, false
}

// BeginDrag enters Dragging from Selected, capturing a start snapshot.
// px, py are the pointer position in canvas percent.
func (c *Controller) BeginDrag(px, py float64) bool {
	if !c.caps.Draggable || c.state != StateSelected {
		return false
	}
	g, ok := c.SelectedGeometry()
	if !ok {
		return false
	}
	c.startGeom, c.proposed = g, g
	c.startX, c.startY = px, py
	c.state = StateDragging
	return true
}

// DragMove applies the cumulative delta from the drag start and proposes the
// resulting geometry upward.
func (c *Controller) DragMove(px, py float64) {
	if c.state != StateDragging {
		return
	}
	c.proposed = transform.ApplyDragDelta(c.startGeom, px-c.startX, py-c.startY)
	c.propose(c.proposed)
}

// EndDrag commits on pointer-up and returns to Selected.
func (c *Controller) EndDrag() {
	if c.state != StateDragging {
		return
	}
	c.state = StateSelected
	c.recordHistory(c.proposed)
}

// BeginResize enters Resizing from Selected for one of the 8 handles.
func (c *Controller) BeginResize(h transform.Handle, px, py float64) bool {
	if !c.caps.Resizable || c.state != StateSelected {
		return false
	}
	g, ok := c.SelectedGeometry()
	if !ok {
		return false
	}
	c.startGeom, c.proposed = g, g
	c.startX, c.startY = px, py
	c.handle = h
	c.state = StateResizing
	return true
}

// ResizeMove feeds the cumulative pointer delta through the transform
// engine, converting raw deltas into outward growth for west/north edges.
func (c *Controller) ResizeMove(px, py float64) {
	if c.state != StateResizing {
		return
	}
	gdx, gdy := c.handle.GrowthDelta(px-c.startX, py-c.startY)
	c.proposed = transform.ApplyResizeDelta(c.startGeom, c.handle, gdx, gdy)
	c.propose(c.proposed)
}

// EndResize commits on pointer-up and returns to Selected.
func (c *Controller) EndResize() {
	if c.state != StateResizing {
		return
	}
	c.state = StateSelected
	c.recordHistory(c.proposed)
}

// Cancel aborts an in-flight drag/resize (reverting the proposal) or exits
// text edit discarding the buffer; from Selected it clears the selection.
func (c *Controller) Cancel() {
	switch c.state {
	case StateDragging, StateResizing:
		c.revertTransient()
		c.sel = nil
		c.state = StateIdle
	case StateEditingText:
		c.CancelTextEdit()
	case StateSelected:
		c.ClearSelection()
	}
}

func (c *Controller) revertTransient() {
	if c.proposed != c.startGeom {
		c.propose(c.startGeom)
	}
}

func (c *Controller) propose(g domain.Geometry) {
	if c.sel != nil && c.cb.OnUpdateItem != nil {
		c.cb.OnUpdateItem(c.sel.Type, c.sel.Index, g)
	}
}

// Nudge moves the selection one keyboard step and commits immediately.
func (c *Controller) Nudge(dir transform.NudgeDirection, large bool) {
	if !c.caps.Draggable || c.state != StateSelected {
		return
	}
	g, ok := c.SelectedGeometry()
	if !ok {
		return
	}
	step := c.cfg.NudgeStep
	if large {
		step = c.cfg.NudgeStepLarge
	}
	// History must see the committed geometry the nudge started from.
	c.startGeom = g
	nudged := transform.ApplyNudge(g, dir, step)
	c.propose(nudged)
	c.recordHistory(nudged)
}

// BeginTextEdit enters the text-edit sub-state from Selected, via
// double-click or Enter, for text-bearing items only.
func (c *Controller) BeginTextEdit() bool {
	if !c.caps.EditableText || c.state != StateSelected || c.sel == nil || c.sel.Type != domain.ItemText {
		return false
	}
	v, ok := c.spread.Textboxes[c.sel.Index].Variant(c.language)
	if !ok {
		return false
	}
	c.editText = v.Text
	c.state = StateEditingText
	return true
}

// SetPendingText updates the edit buffer. No callback fires per keystroke.
func (c *Controller) SetPendingText(s string) {
	if c.state == StateEditingText {
		c.editText = s
	}
}

// PendingText returns the current edit buffer.
func (c *Controller) PendingText() string { return c.editText }

// CommitTextEdit exits text edit emitting a single text-change callback.
// Used for blur and Enter-without-shift.
func (c *Controller) CommitTextEdit() {
	if c.state != StateEditingText {
		return
	}
	if c.sel != nil && c.cb.OnTextChange != nil {
		c.cb.OnTextChange(c.spread.Textboxes[c.sel.Index].ID, c.editText)
	}
	c.state = StateSelected
}

// CancelTextEdit exits text edit discarding the buffer (Escape).
func (c *Controller) CancelTextEdit() {
	if c.state != StateEditingText {
		return
	}
	c.editText = ""
	c.state = StateSelected
}

// DeleteSelected fires the item delete callback and clears the selection.
func (c *Controller) DeleteSelected() {
	if c.sel == nil || c.state == StateEditingText {
		return
	}
	sel := *c.sel
	c.sel = nil
	c.state = StateIdle
	if c.cb.OnDeleteItem != nil {
		c.cb.OnDeleteItem(sel.Type, sel.Index)
	}
}

// RequestDeleteSpread gates spread deletion: spreads with content require a
// confirmation step before the delete callback fires; content-free spreads
// delete immediately. It reports whether confirmation is still pending.
func (c *Controller) RequestDeleteSpread() bool {
	if c.spread == nil {
		return false
	}
	if !c.spread.HasContent() {
		if c.cb.OnDeleteSpread != nil {
			c.cb.OnDeleteSpread(c.spread.ID)
		}
		return false
	}
	c.pendingDelete = c.spread.ID
	return true
}

// ConfirmDeleteSpread completes a pending gated deletion.
func (c *Controller) ConfirmDeleteSpread() {
	if c.pendingDelete == "" {
		return
	}
	id := c.pendingDelete
	c.pendingDelete = ""
	if c.cb.OnDeleteSpread != nil {
		c.cb.OnDeleteSpread(id)
	}
}

// CancelDeleteSpread drops a pending gated deletion.
func (c *Controller) CancelDeleteSpread() { c.pendingDelete = "" }

// AssignLayout proposes a page layout. Locked layouts are a data anomaly:
// the attempt is logged and skipped, never an error.
func (c *Controller) AssignLayout(pageIndex int, layout string) {
	if c.spread == nil || pageIndex < 0 || pageIndex >= len(c.spread.Pages) {
		return
	}
	p := c.spread.Pages[pageIndex]
	if p.IsLayoutLocked() {
		c.log.Warn("layout is locked, ignoring assignment",
			slog.String("spread", c.spread.ID), slog.Int("page", p.Number), slog.String("layout", layout))
		return
	}
	p.Layout = layout
	if c.cb.OnUpdatePage != nil {
		c.cb.OnUpdatePage(pageIndex, p)
	}
}

// ReorderSpread forwards a thumbnail-rail reorder to the host.
func (c *Controller) ReorderSpread(from, to int) {
	if c.cb.OnReorderSpread != nil && from != to {
		c.cb.OnReorderSpread(from, to)
	}
}

// RequestSwap asks the host to open its asset swap flow for the selection.
func (c *Controller) RequestSwap() {
	if !c.caps.Swappable || c.sel == nil {
		return
	}
	if c.cb.OnSwapRequest != nil {
		c.cb.OnSwapRequest(c.sel.Type, c.sel.Index)
	}
}

func (c *Controller) recordHistory(after domain.Geometry) {
	if c.History == nil || c.spread == nil || c.sel == nil {
		return
	}
	c.History.Push(c.spread.ID, undo.EncodeChange(undo.GeometryChange{
		Type:   c.sel.Type,
		Index:  c.sel.Index,
		Before: c.startGeom,
		After:  after,
	}))
}

// Undo reverts the most recent committed transform on the current spread.
// It reports whether a change was applied.
func (c *Controller) Undo() bool {
	return c.replayHistory(func(spreadID string) (undo.Snapshot, bool) {
		return c.History.Undo(spreadID)
	}, false)
}

// Redo re-applies the most recently undone transform.
func (c *Controller) Redo() bool {
	return c.replayHistory(func(spreadID string) (undo.Snapshot, bool) {
		return c.History.Redo(spreadID)
	}, true)
}

func (c *Controller) replayHistory(pop func(string) (undo.Snapshot, bool), forward bool) bool {
	if c.History == nil || c.spread == nil {
		return false
	}
	// Mid-gesture history jumps would fight the transient transform.
	if c.state != StateIdle && c.state != StateSelected {
		return false
	}
	s, ok := pop(c.spread.ID)
	if !ok {
		return false
	}
	ch, err := undo.DecodeChange(s.Blob)
	if err != nil {
		return false
	}
	g := ch.Before
	if forward {
		g = ch.After
	}
	if c.cb.OnUpdateItem != nil {
		c.cb.OnUpdateItem(ch.Type, ch.Index, g)
	}
	return true
}
