// Package gui is a minimal fyne-based previewer for a disassembled ANM
// program: it lists entries and scripts, renders an entry's THTX pixel blob
// as an image, and overlays its sprite table as rectangles. Modelled on the
// teacher's debugger/gui.go (panel layout, toolbar-driven actions, update*
// refresh methods), re-pointed at ir.AnmProgram instead of a running VM.
package gui

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/danmaku-tools/dmktk/ir"
)

// spriteOverlayColor is the sprite-rectangle stroke color, a fixed warm
// yellow rather than a theme lookup so the overlay stays visible against
// both light and dark backgrounds.
var spriteOverlayColor = color.NRGBA{R: 0xff, G: 0xc1, B: 0x07, A: 0xff}

// GUI is the ANM previewer window and its state.
type GUI struct {
	Program *ir.AnmProgram
	Decoder PixelDecoder

	App    fyne.App
	Window fyne.Window

	EntryList   *widget.List
	ScriptList  *widget.List
	InfoView    *widget.TextGrid
	ImageCanvas *canvas.Image
	Overlay     *fyne.Container
	StatusLabel *widget.Label
	Toolbar     *widget.Toolbar

	showSprites bool
	zoom        float32

	entryNames []string
	current    *ir.AnmEntry
}

// RunGUI opens the previewer for program and blocks until the window closes.
// decoder may be nil, in which case NewDefaultPixelDecoder is used.
func RunGUI(program *ir.AnmProgram, decoder PixelDecoder) error {
	g := newGUI(program, decoder)
	g.Window.ShowAndRun()
	return nil
}

func newGUI(program *ir.AnmProgram, decoder PixelDecoder) *GUI {
	if decoder == nil {
		decoder = NewDefaultPixelDecoder()
	}

	myApp := app.New()
	myWindow := myApp.NewWindow("ANM Previewer")

	g := &GUI{
		Program:     program,
		Decoder:     decoder,
		App:         myApp,
		Window:      myWindow,
		showSprites: true,
		zoom:        1,
	}

	g.entryNames = entryDisplayNames(program)
	g.initializeViews()
	g.buildLayout()
	g.setupToolbar()

	if len(program.Entries) > 0 {
		g.selectEntry(0)
	}

	myWindow.Resize(fyne.NewSize(1100, 720))
	return g
}

// entryDisplayNames builds the label list backing EntryList, falling back to
// an index when an entry's Name is empty (shared-data entries often have
// none).
func entryDisplayNames(program *ir.AnmProgram) []string {
	names := make([]string, len(program.Entries))
	for i, e := range program.Entries {
		if e.Name != "" {
			names[i] = fmt.Sprintf("%d: %s", i, e.Name)
		} else {
			names[i] = fmt.Sprintf("%d: <unnamed>", i)
		}
	}
	return names
}

func (g *GUI) initializeViews() {
	g.EntryList = widget.NewList(
		func() int { return len(g.entryNames) },
		func() fyne.CanvasObject { return widget.NewLabel("template") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(g.entryNames[id])
		},
	)
	g.EntryList.OnSelected = func(id widget.ListItemID) {
		g.selectEntry(id)
	}

	g.ScriptList = widget.NewList(
		func() int {
			if g.current == nil {
				return 0
			}
			return len(g.current.Scripts)
		},
		func() fyne.CanvasObject { return widget.NewLabel("template") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(fmt.Sprintf("script %d", g.current.Scripts[id].ID))
		},
	)

	g.InfoView = widget.NewTextGrid()
	g.ImageCanvas = &canvas.Image{FillMode: canvas.ImageFillOriginal}
	g.Overlay = container.NewWithoutLayout()
	g.StatusLabel = widget.NewLabel("Ready")
}

func (g *GUI) buildLayout() {
	entryPanel := container.NewBorder(widget.NewLabel("Entries"), nil, nil, nil, container.NewScroll(g.EntryList))
	scriptPanel := container.NewBorder(widget.NewLabel("Scripts"), nil, nil, nil, container.NewScroll(g.ScriptList))
	infoPanel := container.NewBorder(widget.NewLabel("Info"), nil, nil, nil, container.NewScroll(g.InfoView))

	leftSplit := container.NewVSplit(entryPanel, scriptPanel)
	leftSplit.SetOffset(0.5)

	imageStack := container.NewStack(g.ImageCanvas, g.Overlay)
	viewerSplit := container.NewHSplit(container.NewScroll(imageStack), infoPanel)
	viewerSplit.SetOffset(0.7)

	mainSplit := container.NewHSplit(leftSplit, viewerSplit)
	mainSplit.SetOffset(0.25)

	statusBar := container.NewBorder(nil, nil, nil, nil, g.StatusLabel)
	content := container.NewBorder(g.Toolbar, statusBar, nil, nil, mainSplit)
	g.Window.SetContent(content)
}

func (g *GUI) setupToolbar() {
	g.Toolbar = widget.NewToolbar(
		widget.NewToolbarAction(theme.ZoomInIcon(), func() { g.setZoom(g.zoom * 1.25) }),
		widget.NewToolbarAction(theme.ZoomOutIcon(), func() { g.setZoom(g.zoom / 1.25) }),
		widget.NewToolbarAction(theme.ZoomFitIcon(), func() { g.setZoom(1) }),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.VisibilityIcon(), func() { g.toggleSpriteOverlay() }),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ViewRefreshIcon(), func() { g.refresh() }),
	)
}

// selectEntry loads the entry at index i into the viewer: decodes its pixel
// blob (falling back to the entry before it when HasData is false, since
// shared-data entries carry no pixels of their own), refreshes the script
// list, and redraws the sprite overlay.
func (g *GUI) selectEntry(i int) {
	if i < 0 || i >= len(g.Program.Entries) {
		return
	}
	entry := g.Program.Entries[i]
	g.current = entry
	g.ScriptList.Refresh()
	g.updateInfo(i)

	blob := entry.Pixels
	if blob == nil && !entry.HasData {
		blob = previousPixelBlob(g.Program, i)
	}
	if blob == nil {
		g.ImageCanvas.Image = nil
		g.ImageCanvas.Refresh()
		g.StatusLabel.SetText(fmt.Sprintf("Entry %d has no pixel data", i))
		g.updateSpriteOverlay()
		return
	}

	img, err := g.Decoder.Decode(blob)
	if err != nil {
		g.StatusLabel.SetText(fmt.Sprintf("decode error: %v", err))
		return
	}
	g.ImageCanvas.Image = img
	g.applyZoom()
	g.ImageCanvas.Refresh()
	g.updateSpriteOverlay()
	g.StatusLabel.SetText(fmt.Sprintf("Entry %d: %dx%d, format %d", i, blob.Width, blob.Height, blob.Format))
}

// previousPixelBlob walks backwards from i looking for the nearest entry
// that actually owns pixel data, mirroring thanm's "entries with hasdata==0
// share the preceding entry's texture" convention.
func previousPixelBlob(program *ir.AnmProgram, i int) *ir.PixelBlob {
	for j := i - 1; j >= 0; j-- {
		if program.Entries[j].Pixels != nil {
			return program.Entries[j].Pixels
		}
	}
	return nil
}

func (g *GUI) updateInfo(i int) {
	entry := g.current
	var sb strings.Builder
	fmt.Fprintf(&sb, "Entry #%d\n", i)
	fmt.Fprintf(&sb, "Name: %s\n", entry.Name)
	fmt.Fprintf(&sb, "Size: %dx%d\n", entry.Width, entry.Height)
	fmt.Fprintf(&sb, "Format: %d\n", entry.Format)
	fmt.Fprintf(&sb, "Has data: %v\n", entry.HasData)
	fmt.Fprintf(&sb, "Sprites: %d\n", len(entry.SpriteTable))
	fmt.Fprintf(&sb, "Scripts: %d\n", len(entry.Scripts))

	ids := make([]int32, 0, len(entry.Scripts))
	for _, s := range entry.Scripts {
		ids = append(ids, s.ID)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	for _, id := range ids {
		fmt.Fprintf(&sb, "  script %d\n", id)
	}

	g.InfoView.SetText(sb.String())
}

// updateSpriteOverlay redraws rectangles for every sprite in the current
// entry's table, positioned and scaled by zoom. Rebuilding from scratch on
// every refresh is simpler than diffing against the previous entry's
// rectangles and this view is never large enough for that to matter.
func (g *GUI) updateSpriteOverlay() {
	g.Overlay.Objects = nil
	if g.showSprites && g.current != nil {
		for _, sp := range g.current.SpriteTable {
			rect := canvas.NewRectangle(nil)
			rect.StrokeColor = spriteOverlayColor
			rect.StrokeWidth = 1
			rect.Resize(fyne.NewSize(sp.W*g.zoom, sp.H*g.zoom))
			rect.Move(fyne.NewPos(sp.X*g.zoom, sp.Y*g.zoom))
			g.Overlay.Objects = append(g.Overlay.Objects, rect)
		}
	}
	g.Overlay.Refresh()
}

func (g *GUI) toggleSpriteOverlay() {
	g.showSprites = !g.showSprites
	g.updateSpriteOverlay()
}

func (g *GUI) setZoom(z float32) {
	if z <= 0 {
		return
	}
	g.zoom = z
	g.applyZoom()
	g.ImageCanvas.Refresh()
	g.updateSpriteOverlay()
}

func (g *GUI) applyZoom() {
	if g.ImageCanvas.Image == nil {
		return
	}
	b := g.ImageCanvas.Image.Bounds()
	g.ImageCanvas.Resize(fyne.NewSize(float32(b.Dx())*g.zoom, float32(b.Dy())*g.zoom))
}

func (g *GUI) refresh() {
	for i, e := range g.Program.Entries {
		if e == g.current {
			g.selectEntry(i)
			break
		}
	}
	g.StatusLabel.SetText("Refreshed")
}
