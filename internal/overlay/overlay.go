// Package overlay tracks the modal overlays drawn above a screen and composes
// them onto the background view.
package overlay

// Registry is the view of the overlay stack that key routing needs.
type Registry interface {
	IsAnyOpen() bool
	CloseTopmost()
}

type entry struct {
	name    string
	onClose func()
}

// Stack is a last-in-first-out set of named overlays. The zero value is ready
// to use. It is shared by pointer between a screen and its collaborators.
type Stack struct {
	entries []entry
}

func NewStack() *Stack { return &Stack{} }

// Push opens name on top. Pushing a name that is already open moves it to the
// top and replaces its close hook.
func (s *Stack) Push(name string, onClose func()) {
	s.remove(name)
	s.entries = append(s.entries, entry{name: name, onClose: onClose})
}

func (s *Stack) IsAnyOpen() bool { return s != nil && len(s.entries) > 0 }

func (s *Stack) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Top returns the topmost overlay name, or "" when nothing is open.
func (s *Stack) Top() string {
	if !s.IsAnyOpen() {
		return ""
	}
	return s.entries[len(s.entries)-1].name
}

func (s *Stack) IsOpen(name string) bool {
	if s == nil {
		return false
	}
	for _, e := range s.entries {
		if e.name == name {
			return true
		}
	}
	return false
}

// CloseTopmost pops the top overlay and runs its close hook. No-op when empty.
func (s *Stack) CloseTopmost() {
	if !s.IsAnyOpen() {
		return
	}
	top := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]
	if top.onClose != nil {
		top.onClose()
	}
}

// Close removes name wherever it sits and runs its close hook.
func (s *Stack) Close(name string) {
	if e, ok := s.remove(name); ok && e.onClose != nil {
		e.onClose()
	}
}

func (s *Stack) remove(name string) (entry, bool) {
	for i, e := range s.entries {
		if e.name == name {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return e, true
		}
	}
	return entry{}, false
}
