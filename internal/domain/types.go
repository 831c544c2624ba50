/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the core data model for the picture book authoring tool.
// A Book is an ordered list of Spreads; each Spread owns its pages, placed
// items and the animation list played back over them. Everything serializes
// to a human-readable JSON manifest (book.json).

// Book is the root manifest structure.
type Book struct {
	Title           string   `json:"title"`
	Metadata        Metadata `json:"metadata,omitempty"`
	DefaultLanguage string   `json:"defaultLanguage,omitempty"`
	Languages       []string `json:"languages,omitempty"`
	Spreads         []Spread `json:"spreads"`
}

// Metadata contains optional descriptive metadata for a book.
type Metadata struct {
	Author      string `json:"author,omitempty"`
	Illustrator string `json:"illustrator,omitempty"`
	Series      string `json:"series,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// Spread is a page pair (or single page) authored, edited and played as one
// unit. Item lists are owned exclusively by the spread.
type Spread struct {
	ID         string      `json:"id"`
	Pages      []Page      `json:"pages"` // one or two
	Images     []Image     `json:"images,omitempty"`
	Textboxes  []Textbox   `json:"textboxes,omitempty"`
	Objects    []Object    `json:"objects,omitempty"`
	Animations []Animation `json:"animations,omitempty"`
}

// HasContent reports whether any item is placed on the spread. Deleting a
// spread with content requires confirmation in the editor.
func (s Spread) HasContent() bool {
	return len(s.Images) > 0 || len(s.Textboxes) > 0 || len(s.Objects) > 0
}

// Page describes one page of a spread.
type Page struct {
	Number     int        `json:"number"`
	Layout     string     `json:"layout,omitempty"` // empty means unassigned
	Background Background `json:"background,omitempty"`
}

// IsLayoutLocked reports whether the page layout may still be assigned.
// Once set, a layout is locked and can only be cleared externally.
func (p Page) IsLayoutLocked() bool { return p.Layout != "" }

// Background holds the page fill.
type Background struct {
	Color   string  `json:"color,omitempty"`
	Texture Texture `json:"texture,omitempty"`
}

// Texture enumerates the decorative background textures.
type Texture string

const (
	TextureNone      Texture = ""
	TexturePaper     Texture = "paper"
	TextureCanvas    Texture = "canvas"
	TextureWatercol  Texture = "watercolor"
	TextureCardboard Texture = "cardboard"
)

// Geometry is a position/size rectangle in percent-of-canvas units (0–100).
// After any committed transform w,h >= MinElementSize and x+w <= 100,
// y+h <= 100 hold; transient drag states may violate the bounds.
type Geometry struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// MinElementSize is the smallest committed width/height, in percent.
const MinElementSize = 5.0

// ItemType tags the three placeable item families.
type ItemType string

const (
	ItemImage   ItemType = "image"
	ItemText    ItemType = "text"
	ItemObject  ItemType = "object"
	ItemUnknown ItemType = ""
)

// Visibility carries the editor/player visibility flags. Absent flags mean
// visible, so pointers distinguish "unset" from "explicitly hidden".
type Visibility struct {
	EditorVisible *bool `json:"editor_visible,omitempty"`
	PlayerVisible *bool `json:"player_visible,omitempty"`
}

func (v Visibility) InEditor() bool { return v.EditorVisible == nil || *v.EditorVisible }
func (v Visibility) InPlayer() bool { return v.PlayerVisible == nil || *v.PlayerVisible }

// Role places images and objects into the default z-order bands.
type Role string

const (
	RoleBackground Role = "background"
	RoleCharacter  Role = "character"
	RoleProp       Role = "prop"
	RoleForeground Role = "foreground"
	RoleDefault    Role = ""
)

// Default z bands: background < character < object default < prop <
// foreground; textboxes sit above all images, selection UI above everything.
const (
	ZBackground = 0
	ZCharacter  = 10
	ZObjectDef  = 20
	ZProp       = 30
	ZForeground = 40
	ZTextbox    = 100
)

// DefaultZ returns the z band for a role.
func DefaultZ(r Role) int {
	switch r {
	case RoleBackground:
		return ZBackground
	case RoleCharacter:
		return ZCharacter
	case RoleProp:
		return ZProp
	case RoleForeground:
		return ZForeground
	default:
		return ZObjectDef
	}
}

// Image is a placed illustration.
type Image struct {
	ID       string   `json:"id"`
	Geometry Geometry `json:"geometry"`
	URL      string   `json:"url"`
	ThumbURL string   `json:"thumbUrl,omitempty"`
	AltText  string   `json:"altText,omitempty"`
	Role     Role     `json:"role,omitempty"`
	ZIndex   *int     `json:"zIndex,omitempty"`
	Visibility
}

// EffectiveZ resolves the explicit zIndex or the role default.
func (im Image) EffectiveZ() int {
	if im.ZIndex != nil {
		return *im.ZIndex
	}
	return DefaultZ(im.Role)
}

// Object is a decorative element (sticker, shape, attached media).
type Object struct {
	ID       string   `json:"id"`
	Geometry Geometry `json:"geometry"`
	URL      string   `json:"url,omitempty"`
	MediaURL string   `json:"mediaUrl,omitempty"` // optional audio/video attachment
	Role     Role     `json:"role,omitempty"`
	ZIndex   *int     `json:"zIndex,omitempty"`
	Visibility
}

func (o Object) EffectiveZ() int {
	if o.ZIndex != nil {
		return *o.ZIndex
	}
	return DefaultZ(o.Role)
}

// Textbox is a record keyed by language code; geometry and typography are
// per-language, not shared across languages.
type Textbox struct {
	ID        string                 `json:"id"`
	Title     string                 `json:"title,omitempty"`
	Order     int                    `json:"order,omitempty"`
	Languages map[string]TextVariant `json:"languages"`
	ZIndex    *int                   `json:"zIndex,omitempty"`
	Visibility
}

func (tb Textbox) EffectiveZ() int {
	if tb.ZIndex != nil {
		return *tb.ZIndex
	}
	return ZTextbox
}

// Variant returns the entry for lang, falling back to any present language
// when the requested one is missing.
func (tb Textbox) Variant(lang string) (TextVariant, bool) {
	if v, ok := tb.Languages[lang]; ok {
		return v, true
	}
	for _, v := range tb.Languages {
		return v, true
	}
	return TextVariant{}, false
}

// TextVariant holds one language's text and its own layout/styling.
type TextVariant struct {
	Text       string     `json:"text"`
	Geometry   Geometry   `json:"geometry"`
	Typography Typography `json:"typography,omitempty"`
	Fill       *Fill      `json:"fill,omitempty"`
	Outline    *Outline   `json:"outline,omitempty"`
}

// Typography describes textbox type settings.
type Typography struct {
	Font       string  `json:"font,omitempty"`
	Size       float64 `json:"size,omitempty"`
	Color      string  `json:"color,omitempty"`
	Align      string  `json:"align,omitempty"` // left, center, right
	LineHeight float64 `json:"lineHeight,omitempty"`
}

// Fill is a background behind the text.
type Fill struct {
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity,omitempty"`
	Radius  float64 `json:"radius,omitempty"`
}

// Outline strokes the text box border.
type Outline struct {
	Color string  `json:"color"`
	Width float64 `json:"width"`
}

// TriggerType controls when an animation starts relative to its predecessor.
type TriggerType string

const (
	TriggerOnClick       TriggerType = "on_click"
	TriggerWithPrevious  TriggerType = "with_previous"
	TriggerAfterPrevious TriggerType = "after_previous"
)

// EffectType is the numeric effect catalog code (1–17).
type EffectType int

const (
	EffectPlay         EffectType = 1
	EffectAppear       EffectType = 2
	EffectFadeIn       EffectType = 3
	EffectFlyIn        EffectType = 4
	EffectFloatIn      EffectType = 5
	EffectZoom         EffectType = 6
	EffectSpin         EffectType = 7
	EffectGrowShrink   EffectType = 8
	EffectTeeter       EffectType = 9
	EffectTransparency EffectType = 10
	EffectReadAlong    EffectType = 11
	EffectDisappear    EffectType = 12
	EffectFadeOut      EffectType = 13
	EffectFlyOut       EffectType = 14
	EffectFloatOut     EffectType = 15
	EffectLines        EffectType = 16
	EffectArcs         EffectType = 17
)

// Direction names a fly-in/out direction.
type Direction string

const (
	DirLeft  Direction = "left"
	DirRight Direction = "right"
	DirUp    Direction = "up"
	DirDown  Direction = "down"
)

// Animation declares one per-element effect. Order imposes the strict total
// ordering used to build the timeline; the lowest order per target decides
// that element's pre-play visibility.
type Animation struct {
	Order   int             `json:"order"`
	Target  AnimationTarget `json:"target"`
	Trigger TriggerType     `json:"trigger_type"`
	Effect  Effect          `json:"effect"`
}

// AnimationTarget names the animated item.
type AnimationTarget struct {
	ID   string   `json:"id"`
	Type ItemType `json:"type"`
}

// Effect carries the effect code and its parameters.
type Effect struct {
	Type       EffectType `json:"type"`
	DurationMs int        `json:"duration_ms,omitempty"`
	DelayMs    int        `json:"delay_ms,omitempty"`
	Direction  Direction  `json:"direction,omitempty"`
	Amount     float64    `json:"amount,omitempty"`
	Loop       int        `json:"loop,omitempty"` // -1 means infinite
	Geometry   *Geometry  `json:"geometry,omitempty"`
}
