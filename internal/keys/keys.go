// Package keys normalizes bubbletea key messages into a small event shape and
// provides the predicates shared by the navigators (modifier held, arrow, plain rune).
package keys

import (
	tea "github.com/charmbracelet/bubbletea"
)

type Code int

const (
	CodeNone Code = iota
	CodeRune
	CodeUp
	CodeDown
	CodeLeft
	CodeRight
	CodeEnter
	CodeEscape
	CodeTab
	CodeBackspace
	CodeSpace
	CodeOther
)

type Mod uint8

const (
	ModCtrl Mod = 1 << iota
	ModAlt
	ModShift
)

// Event is a normalized key press.
type Event struct {
	Code  Code
	Runes []rune
	Mods  Mod
	// Name is bubbletea's string form ("ctrl+s", "shift+up", "a"), kept for logs.
	Name string
}

func FromTea(msg tea.KeyMsg) Event {
	ev := Event{Name: msg.String()}
	switch msg.Type {
	case tea.KeyRunes:
		ev.Code = CodeRune
		ev.Runes = append([]rune(nil), msg.Runes...)
	case tea.KeySpace:
		ev.Code = CodeSpace
		ev.Runes = []rune{' '}
	case tea.KeyUp:
		ev.Code = CodeUp
	case tea.KeyDown:
		ev.Code = CodeDown
	case tea.KeyLeft:
		ev.Code = CodeLeft
	case tea.KeyRight:
		ev.Code = CodeRight
	case tea.KeyShiftUp:
		ev.Code, ev.Mods = CodeUp, ModShift
	case tea.KeyShiftDown:
		ev.Code, ev.Mods = CodeDown, ModShift
	case tea.KeyShiftLeft:
		ev.Code, ev.Mods = CodeLeft, ModShift
	case tea.KeyShiftRight:
		ev.Code, ev.Mods = CodeRight, ModShift
	case tea.KeyCtrlUp:
		ev.Code, ev.Mods = CodeUp, ModCtrl
	case tea.KeyCtrlDown:
		ev.Code, ev.Mods = CodeDown, ModCtrl
	case tea.KeyCtrlLeft:
		ev.Code, ev.Mods = CodeLeft, ModCtrl
	case tea.KeyCtrlRight:
		ev.Code, ev.Mods = CodeRight, ModCtrl
	case tea.KeyCtrlShiftUp:
		ev.Code, ev.Mods = CodeUp, ModCtrl|ModShift
	case tea.KeyCtrlShiftDown:
		ev.Code, ev.Mods = CodeDown, ModCtrl|ModShift
	case tea.KeyCtrlShiftLeft:
		ev.Code, ev.Mods = CodeLeft, ModCtrl|ModShift
	case tea.KeyCtrlShiftRight:
		ev.Code, ev.Mods = CodeRight, ModCtrl|ModShift
	case tea.KeyEnter:
		ev.Code = CodeEnter
	case tea.KeyEsc:
		ev.Code = CodeEscape
	case tea.KeyTab:
		ev.Code = CodeTab
	case tea.KeyShiftTab:
		ev.Code, ev.Mods = CodeTab, ModShift
	case tea.KeyBackspace:
		ev.Code = CodeBackspace
	default:
		// Control letters (ctrl+a .. ctrl+z). Tab/Enter share codes with ctrl+i/ctrl+m
		// and are matched above.
		if msg.Type >= tea.KeyCtrlA && msg.Type <= tea.KeyCtrlZ {
			ev.Code = CodeRune
			ev.Runes = []rune{rune('a' + int(msg.Type-tea.KeyCtrlA))}
			ev.Mods = ModCtrl
		} else if msg.Type >= 0 && msg.Type < 0x20 {
			ev.Code = CodeOther
			ev.Mods = ModCtrl
		} else {
			ev.Code = CodeOther
		}
	}
	if msg.Alt {
		ev.Mods |= ModAlt
	}
	return ev
}

// HasModifier reports whether a chord modifier is held. Shift only counts on
// non-character keys: terminals deliver shifted letters as plain runes.
func (e Event) HasModifier() bool {
	if e.Mods&(ModCtrl|ModAlt) != 0 {
		return true
	}
	return e.Mods&ModShift != 0 && e.Code != CodeRune && e.Code != CodeSpace
}

func (e Event) IsArrow() bool {
	switch e.Code {
	case CodeUp, CodeDown, CodeLeft, CodeRight:
		return true
	}
	return false
}

func (e Event) IsVertical() bool { return e.Code == CodeUp || e.Code == CodeDown }

// IsRune reports whether e is exactly the unmodified character r.
func (e Event) IsRune(r rune) bool {
	return e.Code == CodeRune && e.Mods&(ModCtrl|ModAlt) == 0 && len(e.Runes) == 1 && e.Runes[0] == r
}

func (e Event) String() string { return e.Name }
