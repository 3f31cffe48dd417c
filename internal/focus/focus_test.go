package focus

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"lefocus-cli/internal/keys"
)

const (
	timeline ZoneID = "timeline"
	note     ZoneID = "note"
	list     ZoneID = "list"
)

func resultsLayout(segments, apps int) Layout {
	return Layout{
		{ID: timeline, Kind: KindStrip, ItemCount: segments, Wrap: true},
		{ID: note, Kind: KindField, ItemCount: 1, Editable: true},
		{ID: list, Kind: KindList, ItemCount: apps, Wrap: true},
	}
}

func key(name string) Input {
	var msg tea.KeyMsg
	switch name {
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+s":
		msg = tea.KeyMsg{Type: tea.KeyCtrlS}
	case "shift+down":
		msg = tea.KeyMsg{Type: tea.KeyShiftDown}
	case "alt+left":
		msg = tea.KeyMsg{Type: tea.KeyLeft, Alt: true}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(name)}
	}
	return Input{Key: keys.FromTea(msg)}
}

func press(t *testing.T, n Navigator, s State, l Layout, names ...string) (State, Result) {
	t.Helper()
	var res Result
	for _, name := range names {
		s, res = n.Handle(s, l, key(name))
	}
	return s, res
}

func TestScenario_TimelineNoteListWalk(t *testing.T) {
	n := NewNavigator()
	l := resultsLayout(3, 2)
	s := InZone(timeline, 0, false)

	want := []State{
		InZone(note, NoIndex, false),
		InZone(list, 0, false),
		InZone(list, 1, false),
		InZone(list, 0, false),
	}
	for i, w := range want {
		s, _ = n.Handle(s, l, key("down"))
		if s != w {
			t.Fatalf("step %d: expected %s; got %s", i+1, w, s)
		}
	}
}

func TestTimeline_LeftRightAlwaysWrapsIntoRange(t *testing.T) {
	n := NewNavigator()
	for count := 1; count <= 5; count++ {
		l := resultsLayout(count, 0)
		for start := 0; start < count; start++ {
			s := InZone(timeline, start, false)
			left, _ := n.Handle(s, l, key("left"))
			right, _ := n.Handle(s, l, key("right"))
			wantLeft := (start - 1 + count) % count
			wantRight := (start + 1) % count
			if left.Index != wantLeft || right.Index != wantRight {
				t.Fatalf("n=%d i=%d: expected left=%d right=%d; got left=%d right=%d",
					count, start, wantLeft, wantRight, left.Index, right.Index)
			}
		}
	}
}

func TestTimeline_EnterConfirmsSelectedItem(t *testing.T) {
	n := NewNavigator()
	l := resultsLayout(3, 0)
	s := InZone(timeline, 2, false)
	next, res := n.Handle(s, l, key("enter"))
	if next != s {
		t.Fatalf("expected state unchanged; got %s", next)
	}
	if res.Intent.Kind != IntentConfirm || res.Intent.Zone != timeline || res.Intent.Index != 2 {
		t.Fatalf("expected confirm(timeline,2); got %+v", res.Intent)
	}
}

func TestTimeline_UpFromFirstZoneIsNoop(t *testing.T) {
	n := NewNavigator()
	l := resultsLayout(3, 2)
	s := InZone(timeline, 1, false)
	next, res := n.Handle(s, l, key("up"))
	if next != s || res.Intent.Kind != IntentNone {
		t.Fatalf("expected no-op; got %s %+v", next, res.Intent)
	}
}

func TestList_UpAtZeroHandsOffAndDownAtLastWraps(t *testing.T) {
	n := NewNavigator()
	for count := 1; count <= 4; count++ {
		l := resultsLayout(3, count)
		up, _ := n.Handle(InZone(list, 0, false), l, key("up"))
		if up != InZone(note, NoIndex, false) {
			t.Fatalf("n=%d: expected Up at 0 to hand off to note; got %s", count, up)
		}
		down, _ := n.Handle(InZone(list, count-1, false), l, key("down"))
		if down != InZone(list, 0, false) {
			t.Fatalf("n=%d: expected Down at last to wrap to 0; got %s", count, down)
		}
	}
}

func TestList_UpMovesWithinZone(t *testing.T) {
	n := NewNavigator()
	s, _ := n.Handle(InZone(list, 2, false), resultsLayout(1, 3), key("up"))
	if s != InZone(list, 1, false) {
		t.Fatalf("expected InZone(list,1,false); got %s", s)
	}
}

func TestList_EnterTogglesItem(t *testing.T) {
	n := NewNavigator()
	_, res := n.Handle(InZone(list, 1, false), resultsLayout(1, 2), key("enter"))
	if res.Intent.Kind != IntentToggle || res.Intent.Index != 1 {
		t.Fatalf("expected toggle(list,1); got %+v", res.Intent)
	}
}

func TestNote_EnterStartsEditingAndTypingForwards(t *testing.T) {
	n := NewNavigator()
	l := resultsLayout(1, 1)
	s, res := n.Handle(InZone(note, NoIndex, false), l, key("enter"))
	if !s.Editing || res.Intent.Kind != IntentBeginEdit {
		t.Fatalf("expected edit mode; got %s %+v", s, res.Intent)
	}
	for _, k := range []string{"h", "i", "left", "right", "enter", "n"} {
		next, res := n.Handle(s, l, key(k))
		if next != s {
			t.Fatalf("%s: expected state unchanged while editing; got %s", k, next)
		}
		if res.Intent.Kind != IntentForward || !res.Consumed {
			t.Fatalf("%s: expected key forwarded to the note; got %+v", k, res)
		}
	}
}

func TestNote_ModifierChordPassesThroughWhileEditing(t *testing.T) {
	n := NewNavigator()
	l := resultsLayout(1, 1)
	s := InZone(note, NoIndex, true)
	for _, k := range []string{"ctrl+s", "shift+down", "alt+left"} {
		next, res := n.Handle(s, l, key(k))
		if !next.Editing || next != s {
			t.Fatalf("%s: expected edit mode to stay active; got %s", k, next)
		}
		if res.Consumed || res.Intent.Kind != IntentNone {
			t.Fatalf("%s: expected chord to pass through untouched; got %+v", k, res)
		}
	}
}

func TestNote_ArrowsCommitAndHandOff(t *testing.T) {
	n := NewNavigator()
	l := resultsLayout(2, 2)
	s := InZone(note, NoIndex, true)

	down, res := n.Handle(s, l, key("down"))
	if down != InZone(list, 0, false) || res.Intent.Kind != IntentCommitNote {
		t.Fatalf("expected commit and move to list; got %s %+v", down, res.Intent)
	}
	up, res := n.Handle(s, l, key("up"))
	if up != InZone(timeline, 0, false) || res.Intent.Kind != IntentCommitNote {
		t.Fatalf("expected commit and move to timeline; got %s %+v", up, res.Intent)
	}
}

func TestNote_ArrowWithNoTargetStillCommits(t *testing.T) {
	n := NewNavigator()
	l := resultsLayout(0, 0)
	next, res := n.Handle(InZone(note, NoIndex, true), l, key("down"))
	if next != InZone(note, NoIndex, false) || res.Intent.Kind != IntentCommitNote {
		t.Fatalf("expected edit exit in place with commit; got %s %+v", next, res.Intent)
	}
}

func TestNote_EscapeCommitsAndStays(t *testing.T) {
	n := NewNavigator()
	next, res := n.Handle(InZone(note, NoIndex, true), resultsLayout(1, 1), key("esc"))
	if next != InZone(note, NoIndex, false) || res.Intent.Kind != IntentCommitNote {
		t.Fatalf("expected commit and leave edit; got %s %+v", next, res.Intent)
	}
}

func TestNoteKey_ForcesEditFromAnywhere(t *testing.T) {
	n := NewNavigator()
	l := resultsLayout(3, 2)
	for _, s := range []State{Idle(), InZone(timeline, 2, false), InZone(list, 1, false)} {
		next, _ := n.Handle(s, l, key("n"))
		if next != InZone(note, NoIndex, true) {
			t.Fatalf("from %s: expected InZone(note,null,true); got %s", s, next)
		}
	}
}

func TestNoteKey_IgnoredWithExternalTextFocus(t *testing.T) {
	n := NewNavigator()
	in := key("n")
	in.TextFocus = true
	s := InZone(list, 0, false)
	next, res := n.Handle(s, resultsLayout(1, 1), in)
	if next != s || res.Consumed {
		t.Fatalf("expected pass-through; got %s %+v", next, res)
	}
}

func TestOverlay_SuppressesNavigationExceptEscape(t *testing.T) {
	n := NewNavigator()
	l := resultsLayout(3, 2)
	s := InZone(timeline, 1, false)
	for _, k := range []string{"down", "left", "enter", "n"} {
		in := key(k)
		in.OverlayOpen = true
		next, res := n.Handle(s, l, in)
		if next != s || res.Consumed {
			t.Fatalf("%s: expected suppressed key; got %s %+v", k, next, res)
		}
	}
	in := key("esc")
	in.OverlayOpen = true
	next, res := n.Handle(s, l, in)
	if next != s || res.Intent.Kind != IntentCloseOverlay {
		t.Fatalf("expected escape delegated to overlay; got %s %+v", next, res.Intent)
	}
}

func TestHandOff_SkipsEmptyZones(t *testing.T) {
	n := NewNavigator()
	l := Layout{
		{ID: "a", Kind: KindList, ItemCount: 2},
		{ID: "b", Kind: KindList, ItemCount: 0},
		{ID: "c", Kind: KindList, ItemCount: 3},
	}
	s, _ := n.Handle(InZone("a", 1, false), l, key("down"))
	if s != InZone("c", 0, false) {
		t.Fatalf("expected skip to c; got %s", s)
	}
	s, _ = n.Handle(InZone("c", 0, false), l, key("up"))
	if s != InZone("a", 1, false) {
		t.Fatalf("expected skip back to a at its last index; got %s", s)
	}
}

func TestHandOff_EmptyListBelowNoteIsNoop(t *testing.T) {
	n := NewNavigator()
	s := InZone(note, NoIndex, false)
	next, _ := n.Handle(s, resultsLayout(2, 0), key("down"))
	if next != s {
		t.Fatalf("expected no-op; got %s", next)
	}
}

func TestClamp(t *testing.T) {
	l := resultsLayout(2, 3)
	cases := []struct {
		in, want State
		layout   Layout
	}{
		{InZone(list, 7, false), InZone(list, 2, false), l},
		{InZone(list, 1, false), InZone(list, NoIndex, false), resultsLayout(2, 0)},
		{InZone("gone", 1, false), Idle(), l},
		{InZone(timeline, 0, true), InZone(timeline, 0, false), l},
		{Idle(), Idle(), l},
	}
	for _, tc := range cases {
		if got := Clamp(tc.in, tc.layout); got != tc.want {
			t.Fatalf("Clamp(%s): expected %s; got %s", tc.in, tc.want, got)
		}
	}
}

func TestEnterOnStaleIndexIsNoop(t *testing.T) {
	n := NewNavigator()
	_, res := n.Handle(InZone(list, 4, false), resultsLayout(0, 0), key("enter"))
	if res.Intent.Kind != IntentNone {
		t.Fatalf("expected no toggle on emptied list; got %+v", res.Intent)
	}
}

func TestIdle_ArrowEntersDefaultZone(t *testing.T) {
	n := NewNavigator()
	s, _ := n.Handle(Idle(), resultsLayout(0, 2), key("down"))
	if s != InZone(note, NoIndex, false) {
		t.Fatalf("expected first navigable zone; got %s", s)
	}
	if d := Default(resultsLayout(4, 1)); d != InZone(timeline, 0, false) {
		t.Fatalf("expected default timeline 0; got %s", d)
	}
}

func TestPress_WalkBackUp(t *testing.T) {
	s, _ := press(t, NewNavigator(), InZone(list, 1, false), resultsLayout(3, 2), "up", "up", "up", "right")
	if s != InZone(timeline, 1, false) {
		t.Fatalf("expected InZone(timeline,1,false); got %s", s)
	}
}
