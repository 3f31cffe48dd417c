// Package focus implements the keyboard zone navigator: a pure transition
// function over a fixed vertical stack of zones. It never performs side
// effects; actions come back as intents for the caller to fulfil.
package focus

import (
	"fmt"
	"strconv"

	"lefocus-cli/internal/keys"
)

type ZoneID string

type Kind int

const (
	// KindStrip is a horizontal strip of items (Left/Right move within it).
	KindStrip Kind = iota
	// KindField is a single text field with an edit sub-mode.
	KindField
	// KindList is a vertical list of toggleable items.
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindStrip:
		return "strip"
	case KindField:
		return "field"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Zone describes one navigable region for a single render.
type Zone struct {
	ID        ZoneID
	Kind      Kind
	ItemCount int
	Wrap      bool
	Editable  bool
}

// navigable reports whether focus may land on z. A field is always
// navigable, even when its text is empty.
func (z Zone) navigable() bool {
	if z.Kind == KindField {
		return true
	}
	return z.ItemCount > 0
}

// Layout is the fixed top-to-bottom zone order.
type Layout []Zone

func (l Layout) find(id ZoneID) (int, bool) {
	for i, z := range l {
		if z.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Zone returns the descriptor for id.
func (l Layout) Zone(id ZoneID) (Zone, bool) {
	i, ok := l.find(id)
	if !ok {
		return Zone{}, false
	}
	return l[i], true
}

// First returns the first navigable zone in order.
func (l Layout) First() (Zone, bool) {
	for _, z := range l {
		if z.navigable() {
			return z, true
		}
	}
	return Zone{}, false
}

// NoIndex marks a zone focus without a selected item (fields, emptied zones).
const NoIndex = -1

// State is the single focus state: Idle when Zone is empty.
type State struct {
	Zone    ZoneID
	Index   int
	Editing bool
}

func Idle() State { return State{Index: NoIndex} }

func InZone(zone ZoneID, index int, editing bool) State {
	if index < 0 {
		index = NoIndex
	}
	return State{Zone: zone, Index: index, Editing: editing}
}

func (s State) IsIdle() bool { return s.Zone == "" }

func (s State) HasIndex() bool { return !s.IsIdle() && s.Index >= 0 }

func (s State) String() string {
	if s.IsIdle() {
		return "Idle"
	}
	idx := "null"
	if s.Index >= 0 {
		idx = strconv.Itoa(s.Index)
	}
	return fmt.Sprintf("InZone(%s,%s,%t)", s.Zone, idx, s.Editing)
}

type IntentKind int

const (
	IntentNone IntentKind = iota
	// IntentConfirm activates the selected strip item.
	IntentConfirm
	// IntentToggle flips the selected list item.
	IntentToggle
	// IntentCommitNote persists the field text after leaving edit mode.
	IntentCommitNote
	// IntentForward hands the key to the field being edited.
	IntentForward
	// IntentCloseOverlay asks the overlay registry to close its topmost entry.
	IntentCloseOverlay
	// IntentBeginEdit tells the host the field gained edit focus.
	IntentBeginEdit
)

func (k IntentKind) String() string {
	switch k {
	case IntentNone:
		return "none"
	case IntentConfirm:
		return "confirm"
	case IntentToggle:
		return "toggle"
	case IntentCommitNote:
		return "commit-note"
	case IntentForward:
		return "forward"
	case IntentCloseOverlay:
		return "close-overlay"
	case IntentBeginEdit:
		return "begin-edit"
	default:
		return "unknown"
	}
}

type Intent struct {
	Kind  IntentKind
	Zone  ZoneID
	Index int
}

// Input is one key event plus the environment it arrived in.
type Input struct {
	Key keys.Event
	// OverlayOpen is true while any modal overlay is showing.
	OverlayOpen bool
	// TextFocus is true when a text input outside the zones owns the keyboard.
	TextFocus bool
}

// Result reports what the navigator did with a key. Consumed=false means the
// key should continue to the host's own shortcuts.
type Result struct {
	Intent   Intent
	Consumed bool
}

func passThrough() Result { return Result{} }

func consumed() Result { return Result{Consumed: true} }

func emit(kind IntentKind, zone ZoneID, index int) Result {
	return Result{Intent: Intent{Kind: kind, Zone: zone, Index: index}, Consumed: true}
}

// Navigator holds the static key bindings; transitions are pure.
type Navigator struct {
	// NoteKey forces focus into the editable field from anywhere. Zero disables it.
	NoteKey rune
}

func NewNavigator() Navigator { return Navigator{NoteKey: 'n'} }

// Handle computes the next state for one key.
func (n Navigator) Handle(s State, layout Layout, in Input) (State, Result) {
	ev := in.Key

	// Overlays own the keyboard; only Escape reaches them through us.
	if in.OverlayOpen {
		if ev.Code == keys.CodeEscape && !ev.HasModifier() {
			return s, emit(IntentCloseOverlay, "", NoIndex)
		}
		return s, passThrough()
	}

	s = Clamp(s, layout)

	if s.Editing {
		return n.handleEditing(s, layout, ev)
	}

	if ev.HasModifier() || in.TextFocus {
		return s, passThrough()
	}

	if n.NoteKey != 0 && ev.IsRune(n.NoteKey) {
		if z, ok := firstEditable(layout); ok {
			return InZone(z.ID, NoIndex, true), emit(IntentBeginEdit, z.ID, NoIndex)
		}
		return s, passThrough()
	}

	if s.IsIdle() {
		if !ev.IsArrow() {
			return s, passThrough()
		}
		z, ok := layout.First()
		if !ok {
			return s, consumed()
		}
		return InZone(z.ID, entryIndex(z, +1), false), consumed()
	}

	zi, _ := layout.find(s.Zone)
	z := layout[zi]
	switch z.Kind {
	case KindStrip:
		return handleStrip(s, layout, zi, ev)
	case KindField:
		return handleField(s, layout, zi, ev)
	case KindList:
		return handleList(s, layout, zi, ev)
	}
	return s, passThrough()
}

func (n Navigator) handleEditing(s State, layout Layout, ev keys.Event) (State, Result) {
	// Chords belong to the application, and editing stays on.
	if ev.HasModifier() {
		return s, passThrough()
	}
	switch ev.Code {
	case keys.CodeUp, keys.CodeDown:
		dir := +1
		if ev.Code == keys.CodeUp {
			dir = -1
		}
		zi, _ := layout.find(s.Zone)
		next := InZone(s.Zone, s.Index, false)
		if target, ok := neighbor(layout, zi, dir); ok {
			next = InZone(target.ID, entryIndex(target, dir), false)
		}
		return next, emit(IntentCommitNote, s.Zone, NoIndex)
	case keys.CodeEscape:
		return InZone(s.Zone, s.Index, false), emit(IntentCommitNote, s.Zone, NoIndex)
	}
	return s, emit(IntentForward, s.Zone, s.Index)
}

func handleStrip(s State, layout Layout, zi int, ev keys.Event) (State, Result) {
	z := layout[zi]
	switch ev.Code {
	case keys.CodeLeft, keys.CodeRight:
		if z.ItemCount == 0 {
			return s, consumed()
		}
		delta := 1
		if ev.Code == keys.CodeLeft {
			delta = -1
		}
		i := s.Index
		if i < 0 {
			i = 0
		} else if z.Wrap {
			i = ((i+delta)%z.ItemCount + z.ItemCount) % z.ItemCount
		} else {
			i = clampInt(i+delta, 0, z.ItemCount-1)
		}
		return InZone(z.ID, i, false), consumed()
	case keys.CodeUp, keys.CodeDown:
		return handOff(s, layout, zi, verticalDir(ev))
	case keys.CodeEnter:
		if !s.HasIndex() || s.Index >= z.ItemCount {
			return s, consumed()
		}
		return s, emit(IntentConfirm, z.ID, s.Index)
	}
	return s, passThrough()
}

func handleField(s State, layout Layout, zi int, ev keys.Event) (State, Result) {
	z := layout[zi]
	switch ev.Code {
	case keys.CodeUp, keys.CodeDown:
		return handOff(s, layout, zi, verticalDir(ev))
	case keys.CodeEnter:
		if !z.Editable {
			return s, consumed()
		}
		return InZone(z.ID, s.Index, true), emit(IntentBeginEdit, z.ID, NoIndex)
	}
	return s, passThrough()
}

func handleList(s State, layout Layout, zi int, ev keys.Event) (State, Result) {
	z := layout[zi]
	switch ev.Code {
	case keys.CodeUp:
		if !s.HasIndex() || s.Index == 0 {
			return handOff(s, layout, zi, -1)
		}
		return InZone(z.ID, s.Index-1, false), consumed()
	case keys.CodeDown:
		if !s.HasIndex() {
			return InZone(z.ID, 0, false), consumed()
		}
		if s.Index >= z.ItemCount-1 {
			if z.Wrap {
				return InZone(z.ID, 0, false), consumed()
			}
			return handOff(s, layout, zi, +1)
		}
		return InZone(z.ID, s.Index+1, false), consumed()
	case keys.CodeEnter:
		if !s.HasIndex() || s.Index >= z.ItemCount {
			return s, consumed()
		}
		return s, emit(IntentToggle, z.ID, s.Index)
	}
	return s, passThrough()
}

// handOff moves to the nearest navigable zone in dir. With no such zone the
// key is swallowed and focus stays put.
func handOff(s State, layout Layout, zi, dir int) (State, Result) {
	target, ok := neighbor(layout, zi, dir)
	if !ok {
		return s, consumed()
	}
	return InZone(target.ID, entryIndex(target, dir), false), consumed()
}

func neighbor(layout Layout, zi, dir int) (Zone, bool) {
	for i := zi + dir; i >= 0 && i < len(layout); i += dir {
		if layout[i].navigable() {
			return layout[i], true
		}
	}
	return Zone{}, false
}

// entryIndex is where focus lands when entering z travelling in dir.
func entryIndex(z Zone, dir int) int {
	switch z.Kind {
	case KindField:
		return NoIndex
	case KindList:
		if dir < 0 {
			return z.ItemCount - 1
		}
		return 0
	default:
		return 0
	}
}

func firstEditable(layout Layout) (Zone, bool) {
	for _, z := range layout {
		if z.Kind == KindField && z.Editable {
			return z, true
		}
	}
	return Zone{}, false
}

func verticalDir(ev keys.Event) int {
	if ev.Code == keys.CodeUp {
		return -1
	}
	return +1
}

// Clamp fits s to the current layout: a vanished zone drops to Idle, an
// emptied zone loses its index and a shrunk zone clamps it.
func Clamp(s State, layout Layout) State {
	if s.IsIdle() {
		return Idle()
	}
	z, ok := layout.Zone(s.Zone)
	if !ok {
		return Idle()
	}
	if z.Kind == KindField {
		s.Index = NoIndex
		if !z.Editable {
			s.Editing = false
		}
		return s
	}
	s.Editing = false
	if z.ItemCount == 0 {
		s.Index = NoIndex
		return s
	}
	if s.Index >= z.ItemCount {
		s.Index = z.ItemCount - 1
	}
	return s
}

// Default is the mount-time state: the first navigable zone at its entry
// index, or Idle when nothing can take focus.
func Default(layout Layout) State {
	z, ok := layout.First()
	if !ok {
		return Idle()
	}
	return InZone(z.ID, entryIndex(z, +1), false)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
