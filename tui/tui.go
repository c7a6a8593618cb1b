// Package tui is an interactive disassembly browser: a tree of
// sub-programs on the left, the printed instruction stream for whichever
// sub is selected on the right, a status line, and a command box for
// navigation. Modelled on the teacher's debugger/tui.go (tview layout,
// key-binding setup, WriteOutput/RefreshAll/Update* shape), re-pointed at a
// disassembled Source instead of a running vm.VM.
package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/danmaku-tools/dmktk/asm"
	"github.com/danmaku-tools/dmktk/ir"
	"github.com/danmaku-tools/dmktk/mnemonic"
)

// Source is one disassembled program ready to browse: a flat list of named
// sub-programs (an ECLProgram's Subs, or the Sub held by each AnmScript,
// labelled by the caller) and an optional mnemonic map for Print.
type Source struct {
	Title     string
	Subs      []*ir.Sub
	Mnemonics *mnemonic.Map
}

// TUI is the disassembly browser and its tview state.
type TUI struct {
	Source *Source
	App    *tview.Application
	Pages  *tview.Pages

	MainLayout *tview.Flex

	TreeView        *tview.TreeView
	DisassemblyView *tview.TextView
	StatusView      *tview.TextView
	OutputView      *tview.TextView
	CommandInput    *tview.InputField

	current *ir.Sub
}

// NewTUI builds a browser over source.
func NewTUI(source *Source) *TUI {
	return newTUI(source, tview.NewApplication())
}

// NewTUIWithScreen builds a browser bound to an explicit tcell.Screen,
// letting tests drive it against a tcell.SimulationScreen instead of a real
// terminal.
func NewTUIWithScreen(source *Source, screen tcell.Screen) *TUI {
	return newTUI(source, tview.NewApplication().SetScreen(screen))
}

func newTUI(source *Source, app *tview.Application) *TUI {
	t := &TUI{
		Source: source,
		App:    app,
	}

	t.initializeViews()
	t.buildLayout()
	t.buildTree()
	t.setupKeyBindings()

	if len(source.Subs) > 0 {
		t.selectSub(source.Subs[0])
	}

	return t
}

func (t *TUI) initializeViews() {
	t.TreeView = tview.NewTreeView()
	t.TreeView.SetBorder(true).SetTitle(" Subs ")

	t.DisassemblyView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.DisassemblyView.SetBorder(true).SetTitle(" Disassembly ")

	t.StatusView = tview.NewTextView().SetDynamicColors(true)
	t.StatusView.SetBorder(true).SetTitle(" Status ")

	t.OutputView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().
		SetLabel("> ").
		SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

func (t *TUI) buildLayout() {
	leftPanel := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.TreeView, 0, 1, true)

	rightPanel := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.DisassemblyView, 0, 4, false).
		AddItem(t.StatusView, 3, 0, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(leftPanel, 0, 1, true).
		AddItem(rightPanel, 0, 3, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, true).
		AddItem(t.OutputView, 6, 0, false).
		AddItem(t.CommandInput, 3, 0, false)

	t.Pages = tview.NewPages().
		AddPage("main", t.MainLayout, true, true)
}

// buildTree populates TreeView with one child node per sub-program, in
// Source.Subs order.
func (t *TUI) buildTree() {
	root := tview.NewTreeNode(t.Source.Title).SetSelectable(false)
	for _, sub := range t.Source.Subs {
		name := sub.Name
		if name == "" {
			name = "<unnamed>"
		}
		node := tview.NewTreeNode(name).SetReference(sub)
		root.AddChild(node)
	}
	t.TreeView.SetRoot(root).SetCurrentNode(root)
	t.TreeView.SetSelectedFunc(func(node *tview.TreeNode) {
		if sub, ok := node.GetReference().(*ir.Sub); ok {
			t.selectSub(sub)
		}
	})
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		}
		return event
	})
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key == tcell.KeyEnter {
		cmd := t.CommandInput.GetText()
		if cmd != "" {
			t.executeCommand(cmd)
			t.CommandInput.SetText("")
		}
	}
}

// executeCommand supports "goto <name>" to jump to a named sub and
// "find <text>" to count matches of text in the current sub's printed
// form; anything else is echoed as an unknown command, matching the
// teacher's pattern of surfacing command errors to the output view rather
// than failing silently.
func (t *TUI) executeCommand(cmd string) {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case "goto":
		if len(fields) != 2 {
			t.WriteOutput("[red]usage: goto <name>[white]\n")
			return
		}
		for _, sub := range t.Source.Subs {
			if sub.Name == fields[1] {
				t.selectSub(sub)
				t.WriteOutput(fmt.Sprintf("jumped to %s\n", sub.Name))
				return
			}
		}
		t.WriteOutput(fmt.Sprintf("[red]no such sub: %s[white]\n", fields[1]))

	case "find":
		if len(fields) < 2 || t.current == nil {
			t.WriteOutput("[red]usage: find <text>[white]\n")
			return
		}
		needle := strings.Join(fields[1:], " ")
		text := asm.Print(t.current, t.Source.Mnemonics)
		count := strings.Count(text, needle)
		t.WriteOutput(fmt.Sprintf("%d match(es) for %q in %s\n", count, needle, t.current.Name))

	case "quit":
		t.App.Stop()

	default:
		t.WriteOutput(fmt.Sprintf("[red]unknown command: %s[white]\n", fields[0]))
	}

	t.RefreshAll()
}

// WriteOutput appends text to the output view.
func (t *TUI) WriteOutput(text string) {
	_, _ = fmt.Fprint(t.OutputView, text)
	t.OutputView.ScrollToEnd()
}

// selectSub makes sub the active disassembly view.
func (t *TUI) selectSub(sub *ir.Sub) {
	t.current = sub
	t.UpdateDisassemblyView()
	t.UpdateStatusView()
}

// UpdateDisassemblyView reprints the current sub through asm.Print.
func (t *TUI) UpdateDisassemblyView() {
	t.DisassemblyView.Clear()
	if t.current == nil {
		t.DisassemblyView.SetText("[yellow]No sub selected[white]")
		return
	}
	t.DisassemblyView.SetText(asm.Print(t.current, t.Source.Mnemonics))
}

// UpdateStatusView summarises the current sub: instruction count, label
// count, and stack size.
func (t *TUI) UpdateStatusView() {
	t.StatusView.Clear()
	if t.current == nil {
		t.StatusView.SetText("")
		return
	}
	t.StatusView.SetText(fmt.Sprintf(
		"sub=%s  instrs=%d  labels=%d  arity=%d  stack=%d",
		t.current.Name, len(t.current.Instructions()), len(t.current.Labels), t.current.Arity, t.current.StackSize,
	))
}

// RefreshAll redraws every view and forces a screen draw.
func (t *TUI) RefreshAll() {
	t.UpdateDisassemblyView()
	t.UpdateStatusView()
	t.App.Draw()
}

// Run starts the TUI's event loop.
func (t *TUI) Run() error {
	t.WriteOutput("[green]dmktk disassembly browser[white]\n")
	t.WriteOutput("Type 'goto <name>' to jump to a sub, 'find <text>' to search it, 'quit' to exit\n\n")
	return t.App.SetRoot(t.Pages, true).SetFocus(t.CommandInput).Run()
}

// Stop stops the TUI's event loop.
func (t *TUI) Stop() {
	t.App.Stop()
}
