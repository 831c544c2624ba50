//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"
	"image/color"
	"log/slog"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	fcanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	spreadcanvas "gopicturebook/internal/canvas"
	"gopicturebook/internal/config"
	"gopicturebook/internal/crash"
	"gopicturebook/internal/domain"
	"gopicturebook/internal/export"
	"gopicturebook/internal/geom"
	applog "gopicturebook/internal/log"
	"gopicturebook/internal/storage"
	"gopicturebook/internal/telemetry"
	"gopicturebook/internal/timeline"
	"gopicturebook/internal/toolbar"
	"gopicturebook/internal/undo"
	"gopicturebook/internal/version"
)

// Run starts the Fyne-based desktop editor. Pass an optional book directory
// to open immediately.
func Run(bookDir string) error {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("version", version.String()))

	cfg, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
		cfg = config.Defaults()
	}

	var bh *storage.BookHandle
	defer func() { crash.Recover(bh) }()

	fyneApp := app.NewWithID("gopicturebook")
	w := fyneApp.NewWindow("Picture Book Studio")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1200)
	winH := prefs.IntWithFallback("window.height", 800)
	if winW < 800 {
		winW = 800
	}
	if winH < 600 {
		winH = 600
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	sc := NewSpreadCanvas(cfg)
	sc.ctrl.History = undo.NewManager(undo.Config{
		MaxBytes:     32 << 20,
		MaxPerSpread: 20,
		MinInterval:  300 * time.Millisecond,
	})

	currentSpreadIdx := 0

	// Spread rail (left)
	railDisplay := []string{}
	railList := widget.NewList(
		func() int { return len(railDisplay) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			if i >= 0 && int(i) < len(railDisplay) {
				o.(*widget.Label).SetText(railDisplay[i])
			}
		},
	)

	showSpread := func(idx int) {
		if bh == nil || idx < 0 || idx >= len(bh.Book.Spreads) {
			return
		}
		currentSpreadIdx = idx
		sp := &bh.Book.Spreads[idx]
		sc.ShowSpread(sp)
		status.SetText(fmt.Sprintf("Spread %d of %d (%s)", idx+1, len(bh.Book.Spreads), sp.ID))
	}

	refreshRail := func() {
		railDisplay = railDisplay[:0]
		if bh != nil {
			for i, sp := range bh.Book.Spreads {
				label := fmt.Sprintf("Spread %d", i+1)
				if sp.HasContent() {
					label += " *"
				}
				railDisplay = append(railDisplay, label)
			}
		}
		railList.Refresh()
	}
	railList.OnSelected = func(id widget.ListItemID) { showSpread(int(id)) }

	// Playback controls
	playBtn := widget.NewButton("Play", func() {
		if bh == nil {
			return
		}
		sp := bh.Book.Spreads[currentSpreadIdx]
		sc.PlaySpread(sp)
		status.SetText("Playing " + sp.ID)
	})
	pauseBtn := widget.NewButton("Pause", func() { sc.player.Pause() })
	resumeBtn := widget.NewButton("Resume", func() { sc.player.Resume() })
	stopBtn := widget.NewButton("Stop", func() { sc.player.Stop(); sc.Refresh() })
	volume := widget.NewSlider(0, 100)
	volume.Value = float64(cfg.Playback.Volume)
	volume.OnChanged = func(v float64) { sc.player.SetVolume(int(v)) }
	muted := widget.NewCheck("Mute", func(m bool) { sc.player.SetMuted(m) })
	muted.SetChecked(cfg.Playback.Muted)

	// Language switch
	langSelect := widget.NewSelect(nil, func(lang string) {
		sc.SetLanguage(lang)
		showSpread(currentSpreadIdx)
	})

	openBook := func(dir string) {
		h, err := storage.Open(dir)
		if err != nil {
			dialog.ShowError(fmt.Errorf("open book: %w", err), w)
			return
		}
		bh = h
		sc.OnMutate = func() {
			if err := storage.Save(bh); err != nil {
				l.Error("save failed", slog.Any("err", err))
			}
		}
		langs := bh.Book.Languages
		if len(langs) == 0 {
			langs = []string{bh.Book.DefaultLanguage}
		}
		langSelect.Options = langs
		langSelect.SetSelected(bh.Book.DefaultLanguage)
		refreshRail()
		showSpread(0)
		w.SetTitle("Picture Book Studio - " + bh.Book.Title)
		addRecentBook(prefs, dir)
		l.Info("book opened", slog.String("root", dir), slog.Int("spreads", len(bh.Book.Spreads)))
	}

	// Menu
	exportPDF := fyne.NewMenuItem("Export PDF...", func() {
		if bh == nil {
			return
		}
		out := filepath.Join(bh.Root, "exports", "book.pdf")
		if err := export.ExportBookPDF(bh, out, export.PDFOptions{Language: sc.Language()}); err != nil {
			dialog.ShowError(err, w)
			return
		}
		status.SetText("PDF exported to " + out)
	})
	exportEPUB := fyne.NewMenuItem("Export EPUB...", func() {
		if bh == nil {
			return
		}
		out := filepath.Join(bh.Root, "exports", "book.epub")
		if err := export.ExportBookEPUB(bh, out, export.EPUBOptions{Language: sc.Language()}); err != nil {
			dialog.ShowError(err, w)
			return
		}
		status.SetText("EPUB exported to " + out)
	})
	openItem := fyne.NewMenuItem("Open Book...", func() {
		dlg := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
			if err != nil || uri == nil {
				return
			}
			openBook(uri.Path())
		}, w)
		dlg.Show()
	})
	fileMenu := fyne.NewMenu("File", openItem, fyne.NewMenuItemSeparator(), exportPDF, exportEPUB)
	w.SetMainMenu(fyne.NewMainMenu(fileMenu))

	// Autosave ticker
	if cfg.Editor.AutosaveSec > 0 {
		go func() {
			t := time.NewTicker(time.Duration(cfg.Editor.AutosaveSec) * time.Second)
			defer t.Stop()
			for range t.C {
				if bh == nil {
					continue
				}
				if err := storage.Save(bh); err != nil {
					l.Error("autosave failed", slog.Any("err", err))
				}
			}
		}()
	}

	controls := container.NewHBox(playBtn, pauseBtn, resumeBtn, stopBtn, widget.NewLabel("Volume"), volume, muted, langSelect)
	left := container.NewBorder(widget.NewLabel("Spreads"), nil, nil, nil, railList)
	content := container.NewBorder(controls, status, left, nil, sc)
	w.SetContent(content)

	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		sc.player.Kill()
	})

	if bookDir != "" {
		openBook(bookDir)
	}
	w.ShowAndRun()
	return nil
}

// SpreadCanvas is the interactive spread surface. All geometry lives in
// percent coordinates; the widget converts pointer positions on the way in
// and item rectangles on the way out.
type SpreadCanvas struct {
	widget.BaseWidget

	ctrl   *spreadcanvas.Controller
	reg    *timeline.Registry
	player *timeline.Player
	spread *domain.Spread
	lang   string

	toolbarSize toolbar.Size

	// OnMutate is called after any committed model change.
	OnMutate func()
}

func NewSpreadCanvas(cfg config.AppConfig) *SpreadCanvas {
	sc := &SpreadCanvas{
		reg:  timeline.NewRegistry(),
		lang: cfg.General.DefaultLanguage,
		// Toolbar is measured after first render; a fixed estimate keeps
		// the placement math exercised until then.
		toolbarSize: toolbar.Size{W: 180, H: 36},
	}
	sc.player = timeline.NewPlayer(sc.reg, timeline.Options{
		ReducedMotion: cfg.Playback.ReducedMotion,
		EmptyDelay:    time.Duration(cfg.Playback.EmptySpreadDelayMs) * time.Millisecond,
	})
	sc.player.SetVolume(cfg.Playback.Volume)
	sc.player.SetMuted(cfg.Playback.Muted)
	sc.player.OnComplete = func(spreadID string) {
		applog.WithComponent("ui").Info("spread playback complete", slog.String("spread", spreadID))
		telemetry.Event("playback.complete", map[string]any{"spread": spreadID})
	}
	sc.player.OnTick = func() { fyne.Do(sc.Refresh) }

	sc.ctrl = spreadcanvas.NewController(spreadcanvas.EditorCapabilities, spreadcanvas.Config{
		NudgeStep:      cfg.Editor.NudgeStep,
		NudgeStepLarge: cfg.Editor.NudgeStepLarge,
	}, spreadcanvas.Callbacks{
		OnUpdateItem: func(t domain.ItemType, index int, g domain.Geometry) {
			sc.applyGeometry(t, index, g)
		},
		OnDeleteItem: func(t domain.ItemType, index int) {
			sc.deleteItem(t, index)
		},
		OnTextChange: func(id, text string) {
			if sc.spread == nil {
				return
			}
			for i := range sc.spread.Textboxes {
				if sc.spread.Textboxes[i].ID == id {
					v := sc.spread.Textboxes[i].Languages[sc.lang]
					v.Text = text
					sc.spread.Textboxes[i].Languages[sc.lang] = v
				}
			}
			sc.mutated()
		},
	})
	sc.ExtendBaseWidget(sc)
	return sc
}

func (sc *SpreadCanvas) Language() string { return sc.lang }

func (sc *SpreadCanvas) SetLanguage(lang string) {
	sc.lang = lang
	sc.ctrl.SetLanguage(lang)
	sc.Refresh()
}

// ShowSpread binds the widget to a spread for editing.
func (sc *SpreadCanvas) ShowSpread(sp *domain.Spread) {
	sc.player.Kill()
	sc.spread = sp
	sc.ctrl.SetSpread(sp)
	sc.syncRegistry()
	sc.Refresh()
}

// PlaySpread rebuilds the timeline for the spread and starts playback.
func (sc *SpreadCanvas) PlaySpread(sp domain.Spread) {
	sc.syncRegistry()
	sc.player.Load(sp.ID, sp.Animations)
	sc.player.Play()
}

// syncRegistry mirrors the spread's items into the animation registry.
func (sc *SpreadCanvas) syncRegistry() {
	if sc.spread == nil {
		return
	}
	for _, im := range sc.spread.Images {
		sc.reg.Upsert(im.ID, im.Geometry, nil)
	}
	for _, ob := range sc.spread.Objects {
		sc.reg.Upsert(ob.ID, ob.Geometry, nil)
	}
	for _, tb := range sc.spread.Textboxes {
		if v, ok := tb.Variant(sc.lang); ok {
			sc.reg.Upsert(tb.ID, v.Geometry, nil)
		}
	}
}

func (sc *SpreadCanvas) applyGeometry(t domain.ItemType, index int, g domain.Geometry) {
	if sc.spread == nil {
		return
	}
	switch t {
	case domain.ItemImage:
		if index < len(sc.spread.Images) {
			sc.spread.Images[index].Geometry = g
		}
	case domain.ItemObject:
		if index < len(sc.spread.Objects) {
			sc.spread.Objects[index].Geometry = g
		}
	case domain.ItemText:
		if index < len(sc.spread.Textboxes) {
			v := sc.spread.Textboxes[index].Languages[sc.lang]
			v.Geometry = g
			sc.spread.Textboxes[index].Languages[sc.lang] = v
		}
	}
	sc.mutated()
}

func (sc *SpreadCanvas) deleteItem(t domain.ItemType, index int) {
	if sc.spread == nil {
		return
	}
	switch t {
	case domain.ItemImage:
		if index < len(sc.spread.Images) {
			sc.spread.Images = append(sc.spread.Images[:index], sc.spread.Images[index+1:]...)
		}
	case domain.ItemObject:
		if index < len(sc.spread.Objects) {
			sc.spread.Objects = append(sc.spread.Objects[:index], sc.spread.Objects[index+1:]...)
		}
	case domain.ItemText:
		if index < len(sc.spread.Textboxes) {
			sc.spread.Textboxes = append(sc.spread.Textboxes[:index], sc.spread.Textboxes[index+1:]...)
		}
	}
	sc.ctrl.SetSpread(sc.spread)
	sc.mutated()
}

func (sc *SpreadCanvas) mutated() {
	if sc.spread != nil {
		telemetry.Event("editor.commit", map[string]any{"spread": sc.spread.ID})
	}
	if sc.OnMutate != nil {
		sc.OnMutate()
	}
	sc.Refresh()
}

// toPercent converts a widget position to percent coordinates.
func (sc *SpreadCanvas) toPercent(pos fyne.Position) (float64, float64) {
	sz := sc.Size()
	if sz.Width <= 0 || sz.Height <= 0 {
		return 0, 0
	}
	return float64(pos.X) / float64(sz.Width) * 100, float64(pos.Y) / float64(sz.Height) * 100
}

// Tapped selects the topmost item under the pointer, or clears selection.
func (sc *SpreadCanvas) Tapped(e *fyne.PointEvent) {
	px, py := sc.toPercent(e.Position)
	ctxs := sc.ctrl.BuildContexts()
	// Walk back to front so the topmost item wins.
	for i := len(ctxs) - 1; i >= 0; i-- {
		g := ctxs[i].Geometry
		if px >= g.X && px <= g.X+g.W && py >= g.Y && py <= g.Y+g.H {
			ctxs[i].OnSelect()
			sc.Refresh()
			return
		}
	}
	sc.ctrl.ClearSelection()
	sc.Refresh()
}

// Dragged moves the selected item with cumulative percent deltas.
func (sc *SpreadCanvas) Dragged(e *fyne.DragEvent) {
	px, py := sc.toPercent(e.Position)
	switch sc.ctrl.State() {
	case spreadcanvas.StateDragging:
		sc.ctrl.DragMove(px, py)
	case spreadcanvas.StateSelected:
		sc.ctrl.BeginDrag(px, py)
	}
	sc.Refresh()
}

func (sc *SpreadCanvas) DragEnd() {
	if sc.ctrl.State() == spreadcanvas.StateDragging {
		sc.ctrl.EndDrag()
	}
	sc.Refresh()
}

// TypedKey feeds normalized keys into the global shortcut surface.
func (sc *SpreadCanvas) TypedKey(e *fyne.KeyEvent) {
	var k spreadcanvas.Key
	switch e.Name {
	case fyne.KeyLeft:
		k = spreadcanvas.KeyArrowLeft
	case fyne.KeyRight:
		k = spreadcanvas.KeyArrowRight
	case fyne.KeyUp:
		k = spreadcanvas.KeyArrowUp
	case fyne.KeyDown:
		k = spreadcanvas.KeyArrowDown
	case fyne.KeyDelete, fyne.KeyBackspace:
		k = spreadcanvas.KeyDelete
	case fyne.KeyReturn, fyne.KeyEnter:
		k = spreadcanvas.KeyEnter
	case fyne.KeyEscape:
		k = spreadcanvas.KeyEscape
	default:
		return
	}
	sc.ctrl.HandleKey(k, false, false, spreadcanvas.ViewHooks{})
	sc.Refresh()
}

// TypedShortcut resolves the platform edit chords into the controller's
// normalized command keys. Paste stays here: it appends to the model and
// assigns the fresh id, which the controller cannot do.
func (sc *SpreadCanvas) TypedShortcut(s fyne.Shortcut) {
	switch s.(type) {
	case *fyne.ShortcutCopy:
		sc.ctrl.HandleKey(spreadcanvas.KeyCopy, false, false, spreadcanvas.ViewHooks{})
	case *fyne.ShortcutPaste:
		sc.pasteFromClipboard()
	case *fyne.ShortcutUndo:
		sc.ctrl.HandleKey(spreadcanvas.KeyUndo, false, false, spreadcanvas.ViewHooks{})
	case *fyne.ShortcutRedo:
		sc.ctrl.HandleKey(spreadcanvas.KeyRedo, false, false, spreadcanvas.ViewHooks{})
	default:
		return
	}
	sc.Refresh()
}

func (sc *SpreadCanvas) pasteFromClipboard() {
	if sc.spread == nil {
		return
	}
	p, err := spreadcanvas.PasteItem()
	if err != nil {
		applog.WithComponent("ui").Warn("paste failed", slog.Any("err", err))
		return
	}
	if p == nil {
		return
	}
	switch p.Type {
	case domain.ItemImage:
		p.Image.ID = storage.NextItemID(sc.spread, domain.ItemImage)
		sc.spread.Images = append(sc.spread.Images, *p.Image)
	case domain.ItemText:
		p.Textbox.ID = storage.NextItemID(sc.spread, domain.ItemText)
		sc.spread.Textboxes = append(sc.spread.Textboxes, *p.Textbox)
	case domain.ItemObject:
		p.Object.ID = storage.NextItemID(sc.spread, domain.ItemObject)
		sc.spread.Objects = append(sc.spread.Objects, *p.Object)
	}
	sc.ctrl.SetSpread(sc.spread)
	sc.syncRegistry()
	sc.mutated()
}

func (sc *SpreadCanvas) FocusGained() {}
func (sc *SpreadCanvas) FocusLost()   {}
func (sc *SpreadCanvas) TypedRune(r rune) {
	if sc.ctrl.State() == spreadcanvas.StateEditingText {
		sc.ctrl.SetPendingText(sc.ctrl.PendingText() + string(r))
	}
}

func (sc *SpreadCanvas) MinSize() fyne.Size { return fyne.NewSize(800, 500) }

func (sc *SpreadCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := fcanvas.NewRectangle(color.White)
	return &spreadCanvasRenderer{sc: sc, bg: bg}
}

type spreadCanvasRenderer struct {
	sc      *SpreadCanvas
	bg      *fcanvas.Rectangle
	objects []fyne.CanvasObject
}

func (r *spreadCanvasRenderer) Destroy()                     {}
func (r *spreadCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *spreadCanvasRenderer) MinSize() fyne.Size           { return r.sc.MinSize() }
func (r *spreadCanvasRenderer) Refresh() {
	r.Layout(r.sc.Size())
	fcanvas.Refresh(r.sc)
}

func (r *spreadCanvasRenderer) Layout(size fyne.Size) {
	r.objects = r.objects[:0]
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))
	r.objects = append(r.objects, r.bg)

	p := &spreadPainter{sc: r.sc, size: size}
	boxes := boxPainter{p}
	r.sc.ctrl.RenderAll(spreadcanvas.RendererSet{
		Image:  boxes,
		Object: boxes,
		Text:   textPainter{p},
	})
	r.objects = append(r.objects, p.objects...)

	// Floating toolbar follows the selection.
	if pos := toolbar.Place(toolbar.Input{
		Item:     p.selRect,
		Toolbar:  r.sc.toolbarSize,
		Viewport: toolbar.Size{W: float64(size.Width), H: float64(size.Height)},
	}); pos != nil {
		bar := fcanvas.NewRectangle(color.NRGBA{R: 50, G: 50, B: 60, A: 230})
		bar.Resize(fyne.NewSize(float32(r.sc.toolbarSize.W), float32(r.sc.toolbarSize.H)))
		bar.Move(fyne.NewPos(float32(pos.X), float32(pos.Y)))
		r.objects = append(r.objects, bar)
	}
}

// spreadPainter is the per-frame state shared by the item render strategies.
// It projects each element's timeline state onto its committed geometry, so
// playback tweens show up in the same pass that draws the editor view.
type spreadPainter struct {
	sc      *SpreadCanvas
	size    fyne.Size
	objects []fyne.CanvasObject
	selRect *geom.Rect
}

func (p *spreadPainter) toPx(g domain.Geometry) (fyne.Position, fyne.Size) {
	x := float32(g.X / 100 * float64(p.size.Width))
	y := float32(g.Y / 100 * float64(p.size.Height))
	w := float32(g.W / 100 * float64(p.size.Width))
	h := float32(g.H / 100 * float64(p.size.Height))
	return fyne.NewPos(x, y), fyne.NewSize(w, h)
}

// project applies the element's animation state. ok is false while the
// element is hidden by its timeline.
func (p *spreadPainter) project(id string, g domain.Geometry) (domain.Geometry, float64, bool) {
	h, found := p.sc.reg.Get(id)
	if !found {
		return g, 1, true
	}
	st := h.State
	if !st.Visible {
		return g, 0, false
	}
	out := g
	out.X += st.TranslateX + st.PathX
	out.Y += st.TranslateY + st.PathY
	if st.Scale != 1 {
		cx, cy := out.X+out.W/2, out.Y+out.H/2
		out.W *= st.Scale
		out.H *= st.Scale
		out.X, out.Y = cx-out.W/2, cy-out.H/2
	}
	// Rotation has no projection here: fyne canvas primitives cannot
	// rotate.
	return out, st.Opacity, true
}

func (p *spreadPainter) place(ctx spreadcanvas.RenderContext, g domain.Geometry, obj fyne.CanvasObject) {
	pos, sz := p.toPx(g)
	obj.Resize(sz)
	obj.Move(pos)
	p.objects = append(p.objects, obj)

	if ctx.IsSelected {
		border := fcanvas.NewRectangle(color.Transparent)
		border.StrokeColor = color.NRGBA{R: 30, G: 120, B: 255, A: 255}
		border.StrokeWidth = 2
		border.Resize(sz)
		border.Move(pos)
		p.objects = append(p.objects, border)
		rr := geom.Rect{X: float64(pos.X), Y: float64(pos.Y), W: float64(sz.Width), H: float64(sz.Height)}
		p.selRect = &rr
	}
}

func alpha8(opacity float64) uint8 {
	if opacity <= 0 {
		return 0
	}
	if opacity >= 1 {
		return 255
	}
	return uint8(opacity * 255)
}

// boxPainter draws images and objects as placeholder rectangles.
type boxPainter struct{ *spreadPainter }

func (p boxPainter) Render(ctx spreadcanvas.RenderContext) {
	id := ""
	switch {
	case ctx.Image != nil:
		id = ctx.Image.ID
	case ctx.Object != nil:
		id = ctx.Object.ID
	}
	g, opacity, visible := p.project(id, ctx.Geometry)
	if !visible {
		return
	}
	rect := fcanvas.NewRectangle(color.NRGBA{R: 220, G: 220, B: 235, A: alpha8(opacity)})
	p.place(ctx, g, rect)
}

// textPainter draws the active language variant of a textbox.
type textPainter struct{ *spreadPainter }

func (p textPainter) Render(ctx spreadcanvas.RenderContext) {
	v, ok := ctx.Textbox.Variant(ctx.Language)
	if !ok {
		return
	}
	g, opacity, visible := p.project(ctx.Textbox.ID, ctx.Geometry)
	if !visible {
		return
	}
	txt := fcanvas.NewText(v.Text, color.NRGBA{A: alpha8(opacity)})
	txt.TextSize = 14
	p.place(ctx, g, txt)
}

func loadRecentBooks(p fyne.Preferences) []string {
	return p.StringList("recent.books")
}

func addRecentBook(p fyne.Preferences, path string) {
	items := loadRecentBooks(p)
	out := []string{path}
	for _, it := range items {
		if it != path && len(out) < 8 {
			out = append(out, it)
		}
	}
	p.SetStringList("recent.books", out)
}
