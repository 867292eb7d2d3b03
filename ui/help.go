package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// HelpView represents the keyboard shortcuts help interface
type HelpView struct {
	app       *App
	container *tview.Flex
	textView  *tview.TextView
	isActive  bool
}

// NewHelpView creates a new help view
func NewHelpView(app *App) *HelpView {
	hv := &HelpView{
		app: app,
	}

	hv.textView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)

	hv.container = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(hv.textView, 0, 1, true)

	hv.container.SetBorder(true).
		SetTitle(" Help (ESC to close) ").
		SetBorderColor(tcell.ColorYellow)

	return hv
}

// HelpText renders the registered bindings plus the modal-only keys
func HelpText(bindings []KeyHelp) string {
	var b strings.Builder
	b.WriteString("[yellow::b]Keyboard Shortcuts[-:-:-]\n\n[lightgreen]Main screen:[-]\n")
	for _, h := range bindings {
		fmt.Fprintf(&b, "  [white]%-12s[-] %s\n", h.Keys, h.Description)
	}
	b.WriteString(`
[lightgreen]Album detail:[-]
  [white]Enter[-]        Play selected song
  [white]f[-]            Toggle album favorite
  [white]ESC / q[-]      Close

[lightgreen]Up next:[-]
  [white]Enter[-]        Play selected song
  [white]Space[-]        Play/Pause
  [white]ESC / u[-]      Close

[yellow]Press ESC or ? to close this help panel[-]
`)
	return b.String()
}

// Show displays the help view
func (hv *HelpView) Show() {
	hv.isActive = true
	hv.textView.SetText(HelpText(hv.app.keys.Help()))
	hv.app.tviewApp.SetFocus(hv.textView)
}

// Close hides the help view
func (hv *HelpView) Close() {
	hv.isActive = false
	hv.app.closeModal()
}

// IsActive returns whether the help view is active
func (hv *HelpView) IsActive() bool {
	return hv.isActive
}

// GetContainer returns the help view container
func (hv *HelpView) GetContainer() *tview.Flex {
	return hv.container
}
