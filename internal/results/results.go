// Package results drives keyboard focus on the session results screen. It
// maps the timeline, note and app list onto focus zones and turns the
// navigator's intents into collaborator calls.
package results

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"lefocus-cli/internal/focus"
	"lefocus-cli/internal/keys"
	"lefocus-cli/internal/logger"
	"lefocus-cli/internal/model"
	"lefocus-cli/internal/overlay"
)

const (
	ZoneTimeline focus.ZoneID = "timeline"
	ZoneNote     focus.ZoneID = "note"
	ZoneList     focus.ZoneID = "list"
)

const saveTimeout = 5 * time.Second

// DetailOpener shows the detail view for a timeline segment.
type DetailOpener interface {
	Open(seg model.Segment)
}

// Toggler flips the selection of an app in the session.
type Toggler interface {
	Toggle(ctx context.Context, bundleID string) error
}

// NoteSaver persists the session note. Blank text means "no note".
type NoteSaver interface {
	SaveNote(ctx context.Context, text string) error
}

type ErrorReporter interface {
	Report(err error)
}

// LabelPicker opens the label picker overlay.
type LabelPicker interface {
	OpenLabelPicker()
}

type Collaborators struct {
	Detail   DetailOpener
	Toggle   Toggler
	Notes    NoteSaver
	Errors   ErrorReporter
	Overlays overlay.Registry
	Labels   LabelPicker
}

// NoteSavedMsg reports the outcome of an asynchronous note save. It is
// dropped if another session has been mounted since the save started.
type NoteSavedMsg struct {
	SessionID string
	Text      string
	Err       error
}

// ToggledMsg reports the outcome of an asynchronous app toggle.
type ToggledMsg struct {
	SessionID string
	BundleID  string
	Err       error
}

type Controller struct {
	nav     focus.Navigator
	state   focus.State
	mounted bool

	session  model.Session
	label    *model.Label
	segments []model.Segment
	apps     []model.TopApp

	note      textarea.Model
	savedNote string

	c   Collaborators
	log *slog.Logger
}

func New(c Collaborators) Controller {
	ta := textarea.New()
	ta.Placeholder = "Add a note about this session"
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 2000
	ta.SetHeight(3)
	ta.Blur()
	return Controller{
		nav:   focus.NewNavigator(),
		state: focus.Idle(),
		note:  ta,
		c:     c,
		log:   logger.Component("results"),
	}
}

// Layout describes the three zones for the current data.
func (c Controller) Layout() focus.Layout {
	return focus.Layout{
		{ID: ZoneTimeline, Kind: focus.KindStrip, ItemCount: len(c.segments), Wrap: true},
		{ID: ZoneNote, Kind: focus.KindField, ItemCount: 1, Editable: true},
		{ID: ZoneList, Kind: focus.KindList, ItemCount: len(c.apps), Wrap: true},
	}
}

// Mount loads a session and puts focus on its default zone.
func (c Controller) Mount(res model.SessionResults) Controller {
	c.mounted = true
	c.load(res, true)
	c.state = focus.Default(c.Layout())
	c.log.Debug("mounted", "session", res.Session.ID, "focus", c.state.String())
	return c
}

// SetData refreshes the data while mounted. The focus index is clamped to
// the new data and an in-progress note edit is left alone.
func (c Controller) SetData(res model.SessionResults) Controller {
	if !c.mounted {
		return c
	}
	c.load(res, !c.state.Editing)
	c.state = focus.Clamp(c.state, c.Layout())
	return c
}

func (c *Controller) load(res model.SessionResults, replaceNote bool) {
	c.session = res.Session
	c.label = res.Label
	c.segments = res.Segments
	c.apps = append([]model.TopApp(nil), res.TopApps...)
	if replaceNote {
		text := ""
		if res.Session.Note != nil {
			text = *res.Session.Note
		}
		c.note.SetValue(text)
		c.savedNote = strings.TrimSpace(text)
	}
}

// Unmount discards the focus state.
func (c Controller) Unmount() Controller {
	c.mounted = false
	c.state = focus.Idle()
	c.note.Blur()
	return c
}

// OpenLabelPicker clears focus and asks the host to show the label picker.
// A note being edited is committed first.
func (c Controller) OpenLabelPicker() (Controller, tea.Cmd) {
	var cmd tea.Cmd
	if c.state.Editing {
		cmd = c.commitNote()
	}
	c.state = focus.Idle()
	if c.c.Labels != nil {
		c.c.Labels.OpenLabelPicker()
	}
	return c, cmd
}

// HandleKey routes one key press. handled=false means the key is free for the
// host's own shortcuts.
func (c Controller) HandleKey(msg tea.KeyMsg) (Controller, tea.Cmd, bool) {
	if !c.mounted {
		return c, nil, false
	}
	in := focus.Input{
		Key:         keys.FromTea(msg),
		OverlayOpen: c.c.Overlays != nil && c.c.Overlays.IsAnyOpen(),
	}
	prev := c.state
	next, res := c.nav.Handle(c.state, c.Layout(), in)
	c.state = next
	if next != prev {
		c.log.Debug("focus", "from", prev.String(), "to", next.String(), "key", in.Key.String())
	}

	var cmd tea.Cmd
	switch res.Intent.Kind {
	case focus.IntentCloseOverlay:
		c.c.Overlays.CloseTopmost()
	case focus.IntentConfirm:
		if i := res.Intent.Index; i >= 0 && i < len(c.segments) && c.c.Detail != nil {
			c.c.Detail.Open(c.segments[i])
		}
	case focus.IntentToggle:
		cmd = c.toggle(res.Intent.Index)
	case focus.IntentBeginEdit:
		cmd = c.note.Focus()
		c.note.CursorEnd()
	case focus.IntentForward:
		c.note, cmd = c.note.Update(msg)
	case focus.IntentCommitNote:
		cmd = c.commitNote()
	}
	return c, cmd, res.Consumed
}

// Update applies async results and forwards non-key messages to the note.
func (c Controller) Update(msg tea.Msg) (Controller, tea.Cmd) {
	switch msg := msg.(type) {
	case NoteSavedMsg:
		if msg.SessionID != c.session.ID {
			c.log.Debug("stale note save dropped", "session", msg.SessionID)
			return c, nil
		}
		if msg.Err != nil {
			c.report(fmt.Errorf("save note: %w", msg.Err))
			return c, nil
		}
		c.savedNote = strings.TrimSpace(msg.Text)
		if c.savedNote == "" {
			c.session.Note = nil
		} else {
			v := c.savedNote
			c.session.Note = &v
		}
		return c, nil
	case ToggledMsg:
		if msg.SessionID != c.session.ID {
			c.log.Debug("stale toggle dropped", "session", msg.SessionID)
			return c, nil
		}
		if msg.Err != nil {
			// Undo the optimistic flip; focus stays where it is.
			for i := range c.apps {
				if c.apps[i].BundleID == msg.BundleID {
					c.apps[i].Selected = !c.apps[i].Selected
				}
			}
			c.report(fmt.Errorf("toggle %s: %w", msg.BundleID, msg.Err))
		}
		return c, nil
	}
	if c.state.Editing {
		var cmd tea.Cmd
		c.note, cmd = c.note.Update(msg)
		return c, cmd
	}
	return c, nil
}

func (c *Controller) toggle(i int) tea.Cmd {
	if i < 0 || i >= len(c.apps) {
		return nil
	}
	c.apps[i].Selected = !c.apps[i].Selected
	bundleID := c.apps[i].BundleID
	if c.c.Toggle == nil {
		return nil
	}
	t := c.c.Toggle
	sessionID := c.session.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		return ToggledMsg{SessionID: sessionID, BundleID: bundleID, Err: t.Toggle(ctx, bundleID)}
	}
}

func (c *Controller) commitNote() tea.Cmd {
	c.note.Blur()
	text := strings.TrimSpace(c.note.Value())
	c.state.Editing = false
	if c.c.Notes == nil {
		return nil
	}
	saver := c.c.Notes
	sessionID := c.session.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		return NoteSavedMsg{SessionID: sessionID, Text: text, Err: saver.SaveNote(ctx, text)}
	}
}

func (c Controller) report(err error) {
	c.log.Warn("results action failed", "err", err)
	if c.c.Errors != nil {
		c.c.Errors.Report(err)
	}
}

func (c Controller) State() focus.State { return c.state }
func (c Controller) Mounted() bool { return c.mounted }
func (c Controller) Session() model.Session { return c.session }
func (c Controller) Label() *model.Label { return c.label }
func (c Controller) Segments() []model.Segment { return c.segments }
func (c Controller) Apps() []model.TopApp { return c.apps }
func (c Controller) NoteText() string { return c.note.Value() }
func (c Controller) HasNote() bool { return c.savedNote != "" }
func (c Controller) Editing() bool { return c.state.Editing }
func (c Controller) NoteView() string { return c.note.View() }
func (c Controller) Focused(z focus.ZoneID) bool { return c.state.Zone == z }

// SetNoteWidth sizes the note field to the available width.
func (c Controller) SetNoteWidth(w int) Controller {
	if w < 10 {
		w = 10
	}
	c.note.SetWidth(w)
	return c
}

// SelectedSegment returns the segment under the timeline cursor, if any.
func (c Controller) SelectedSegment() (model.Segment, bool) {
	if c.state.Zone != ZoneTimeline || !c.state.HasIndex() || c.state.Index >= len(c.segments) {
		return model.Segment{}, false
	}
	return c.segments[c.state.Index], true
}
