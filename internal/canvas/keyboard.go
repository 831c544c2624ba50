/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import "gopicturebook/internal/transform"

// Key is a normalized keyboard key for the global editor surface.
type Key string

const (
	KeyArrowLeft  Key = "ArrowLeft"
	KeyArrowRight Key = "ArrowRight"
	KeyArrowUp    Key = "ArrowUp"
	KeyArrowDown  Key = "ArrowDown"
	KeyDelete     Key = "Delete"
	KeyEnter      Key = "Enter"
	KeyEscape     Key = "Escape"
	KeyViewToggle Key = "v"
	KeyZoomIn     Key = "+"
	KeyZoomOut    Key = "-"
	KeyColsMore   Key = "]"
	KeyColsFewer  Key = "["

	// Command keys. The shell resolves its platform modifier chords
	// (Ctrl/Cmd+Z and friends) into these before dispatching.
	KeyUndo Key = "Undo"
	KeyRedo Key = "Redo"
	KeyCopy Key = "Copy"
)

// ViewHooks receive the shell-level shortcuts: view toggling, zoom and
// column stepping, and arrow navigation of the spread thumbnail rail when
// nothing is selected on the canvas.
type ViewHooks struct {
	OnToggleView func()
	OnZoomStep   func(delta int)
	OnColumnStep func(delta int)
	OnNavigate   func(delta int)
}

// HandleKey dispatches one global key press. inTextInput gates everything
// off while focus sits inside a text input or content-editable element.
// It reports whether the key was consumed.
func (c *Controller) HandleKey(k Key, shift bool, inTextInput bool, hooks ViewHooks) bool {
	if inTextInput {
		return false
	}
	switch k {
	case KeyEscape:
		c.Cancel()
		return true
	case KeyDelete:
		if c.sel != nil {
			c.DeleteSelected()
			return true
		}
	case KeyEnter:
		return c.BeginTextEdit()
	case KeyUndo:
		return c.Undo()
	case KeyRedo:
		return c.Redo()
	case KeyCopy:
		if c.sel != nil {
			return c.CopySelected() == nil
		}
	case KeyArrowLeft, KeyArrowRight, KeyArrowUp, KeyArrowDown:
		if c.state == StateSelected {
			c.Nudge(nudgeDir(k), shift)
			return true
		}
		// With no selection, arrows walk the thumbnail rail.
		if hooks.OnNavigate != nil {
			switch k {
			case KeyArrowLeft, KeyArrowUp:
				hooks.OnNavigate(-1)
			default:
				hooks.OnNavigate(1)
			}
			return true
		}
	case KeyViewToggle:
		if hooks.OnToggleView != nil {
			hooks.OnToggleView()
			return true
		}
	case KeyZoomIn:
		if hooks.OnZoomStep != nil {
			hooks.OnZoomStep(1)
			return true
		}
	case KeyZoomOut:
		if hooks.OnZoomStep != nil {
			hooks.OnZoomStep(-1)
			return true
		}
	case KeyColsMore:
		if hooks.OnColumnStep != nil {
			hooks.OnColumnStep(1)
			return true
		}
	case KeyColsFewer:
		if hooks.OnColumnStep != nil {
			hooks.OnColumnStep(-1)
			return true
		}
	}
	return false
}

func nudgeDir(k Key) transform.NudgeDirection {
	switch k {
	case KeyArrowLeft:
		return transform.NudgeLeft
	case KeyArrowRight:
		return transform.NudgeRight
	case KeyArrowUp:
		return transform.NudgeUp
	default:
		return transform.NudgeDown
	}
}
