package ui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
)

// KeyAction represents an action that can be triggered by keybindings
type KeyAction struct {
	Name        string
	Description string
	handler     func()
}

// NewKeyAction creates an action with a help description
func NewKeyAction(name, description string, handler func()) KeyAction {
	return KeyAction{Name: name, Description: description, handler: handler}
}

// KeyHelp is one line of the help panel
type KeyHelp struct {
	Keys        string
	Description string
}

// KeyBindingManager manages all keybindings and dispatches events
type KeyBindingManager struct {
	bindings  map[tcell.Key]KeyAction // special key -> action mapping
	runeMap   map[rune]KeyAction      // rune -> action mapping
	sequences map[string]KeyAction    // multi-rune bindings like "gg"
	pending   string                  // runes typed so far towards a sequence
	help      []KeyHelp
}

// NewKeyBindingManager creates a new key binding manager
func NewKeyBindingManager() *KeyBindingManager {
	return &KeyBindingManager{
		bindings:  make(map[tcell.Key]KeyAction),
		runeMap:   make(map[rune]KeyAction),
		sequences: make(map[string]KeyAction),
	}
}

// RegisterKeyBinding registers an action for special keys and runes
func (km *KeyBindingManager) RegisterKeyBinding(action KeyAction, keys []tcell.Key, runes []rune) {
	labels := make([]string, 0, len(keys)+len(runes))
	for _, key := range keys {
		km.bindings[key] = action
		labels = append(labels, keyLabel(key))
	}
	for _, r := range runes {
		km.runeMap[r] = action
		labels = append(labels, runeLabel(r))
	}
	km.addHelp(labels, action)
}

// RegisterSequence registers an action for a multi-rune sequence
func (km *KeyBindingManager) RegisterSequence(action KeyAction, sequence string) {
	km.sequences[sequence] = action
	km.addHelp([]string{sequence}, action)
}

// Help returns the registered bindings in registration order
func (km *KeyBindingManager) Help() []KeyHelp {
	return km.help
}

// HandleKey handles a keyboard event and returns true if it was consumed
func (km *KeyBindingManager) HandleKey(event *tcell.EventKey) bool {
	if event.Key() != tcell.KeyRune {
		km.pending = ""
		if action, ok := km.bindings[event.Key()]; ok {
			action.handler()
			return true
		}
		return false
	}

	typed := km.pending + string(event.Rune())
	if action, ok := km.sequences[typed]; ok {
		km.pending = ""
		action.handler()
		return true
	}
	if km.isPrefix(typed) {
		km.pending = typed
		return true
	}

	// not a sequence, fall back to the rune on its own
	km.pending = ""
	if action, ok := km.runeMap[event.Rune()]; ok {
		action.handler()
		return true
	}
	return false
}

// ResetPending resets the pending key sequence
func (km *KeyBindingManager) ResetPending() {
	km.pending = ""
}

func (km *KeyBindingManager) isPrefix(typed string) bool {
	for seq := range km.sequences {
		if len(seq) > len(typed) && strings.HasPrefix(seq, typed) {
			return true
		}
	}
	return false
}

func (km *KeyBindingManager) addHelp(labels []string, action KeyAction) {
	if action.Description == "" || len(labels) == 0 {
		return
	}
	km.help = append(km.help, KeyHelp{Keys: strings.Join(labels, " / "), Description: action.Description})
}

func keyLabel(key tcell.Key) string {
	switch key {
	case tcell.KeyLeft:
		return "←"
	case tcell.KeyRight:
		return "→"
	case tcell.KeyTab:
		return "Tab"
	case tcell.KeyEnter:
		return "Enter"
	case tcell.KeyEscape:
		return "ESC"
	}
	if name, ok := tcell.KeyNames[key]; ok {
		return name
	}
	return "?"
}

func runeLabel(r rune) string {
	if r == ' ' {
		return "Space"
	}
	return string(r)
}
