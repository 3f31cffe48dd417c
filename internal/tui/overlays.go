package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lefocus-cli/internal/model"
	"lefocus-cli/internal/overlay"
)

const (
	overlayDetail      = "detail"
	overlayLabelPicker = "labels"
	overlayLabelEditor = "label-editor"
)

// overlayHost owns the modal overlays. It is shared by pointer between the
// app model and the results controller, which sees it as overlay.Registry.
type overlayHost struct {
	*overlay.Stack

	detail *model.Segment

	labels []model.Label
	// sessionLabel is the label of the session on the results screen.
	sessionLabel *int64

	picker        list.Model
	pickerSession string

	editor      textinput.Model
	editorLabel *model.Label
}

func newOverlayHost() *overlayHost {
	ti := textinput.New()
	ti.Placeholder = "Label name"
	ti.CharLimit = 64
	ti.Prompt = glyphCursor() + " "
	return &overlayHost{
		Stack:  overlay.NewStack(),
		picker: newList("Labels", false, nil),
		editor: ti,
	}
}

// Open shows the detail overlay for a timeline segment.
func (h *overlayHost) Open(seg model.Segment) {
	s := seg
	h.detail = &s
	h.Push(overlayDetail, func() { h.detail = nil })
}

// openLabelPicker shows the labels. sessionID is the session the choice
// applies to; empty means the next timer session.
func (h *overlayHost) openLabelPicker(sessionID string, current *int64) {
	h.pickerSession = sessionID
	h.setPickerLabels(current)
	h.Push(overlayLabelPicker, func() { h.pickerSession = "" })
}

func (h *overlayHost) setPickerLabels(current *int64) {
	items := make([]list.Item, 0, len(h.labels)+1)
	items = append(items, labelItem{})
	selected := 0
	for i := range h.labels {
		lb := h.labels[i]
		items = append(items, labelItem{label: &lb, current: current != nil && *current == lb.ID})
		if current != nil && *current == lb.ID {
			selected = i + 1
		}
	}
	h.picker.SetItems(items)
	h.picker.Select(selected)
}

func (h *overlayHost) openLabelEditor(existing *model.Label) tea.Cmd {
	h.editorLabel = existing
	h.editor.SetValue("")
	if existing != nil {
		h.editor.SetValue(existing.Name)
	}
	h.editor.CursorEnd()
	h.Push(overlayLabelEditor, func() {
		h.editorLabel = nil
		h.editor.Blur()
	})
	return h.editor.Focus()
}

func (h *overlayHost) setSize(width, height int) {
	w := min(48, width-8)
	hh := min(14, height-8)
	h.picker.SetSize(max(w, 10), max(hh, 3))
	h.editor.Width = max(w-4, 10)
}

// handleKey feeds a non-Escape key to the topmost overlay.
func (h *overlayHost) handleKey(msg tea.KeyMsg, km keyMap) tea.Cmd {
	switch h.Top() {
	case overlayLabelPicker:
		return h.pickerKey(msg, km)
	case overlayLabelEditor:
		return h.editorKey(msg)
	}
	return nil
}

func (h *overlayHost) pickerKey(msg tea.KeyMsg, km keyMap) tea.Cmd {
	if h.picker.FilterState() == list.Filtering {
		var cmd tea.Cmd
		h.picker, cmd = h.picker.Update(msg)
		return cmd
	}
	it, _ := h.picker.SelectedItem().(labelItem)
	switch {
	case msg.Type == tea.KeyEnter:
		sessionID := h.pickerSession
		h.Close(overlayLabelPicker)
		return func() tea.Msg { return labelChosenMsg{sessionID: sessionID, label: it.label} }
	case key.Matches(msg, km.NewLabel):
		return h.openLabelEditor(nil)
	case key.Matches(msg, km.RenameLabel):
		if it.label == nil {
			return nil
		}
		return h.openLabelEditor(it.label)
	case key.Matches(msg, km.DeleteLabel):
		if it.label == nil {
			return nil
		}
		id := it.label.ID
		return func() tea.Msg { return deleteLabelRequest{id: id} }
	}
	var cmd tea.Cmd
	h.picker, cmd = h.picker.Update(msg)
	return cmd
}

func (h *overlayHost) editorKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyEnter {
		name := strings.TrimSpace(h.editor.Value())
		if name == "" {
			return nil
		}
		var id *int64
		if h.editorLabel != nil {
			v := h.editorLabel.ID
			id = &v
		}
		h.Close(overlayLabelEditor)
		return func() tea.Msg { return saveLabelRequest{id: id, name: name} }
	}
	var cmd tea.Cmd
	h.editor, cmd = h.editor.Update(msg)
	return cmd
}

// pickerFiltering reports whether the picker's filter input has the keys.
func (h *overlayHost) pickerFiltering() bool {
	return h.Top() == overlayLabelPicker && h.picker.FilterState() == list.Filtering
}

func (h *overlayHost) view(width int, km keyMap) string {
	switch h.Top() {
	case overlayDetail:
		if h.detail == nil {
			return ""
		}
		w := min(64, width-6)
		body := renderMarkdown(segmentMarkdown(*h.detail), max(w-4, 10))
		return styleModal().Width(w).Render(body + "\n\n" + styleMuted().Render("esc close"))
	case overlayLabelPicker:
		title := styleHeader().Render("Choose a label")
		footer := styleMuted().Render(helpLine(km.pickerHelp()))
		return styleModal().Render(lipgloss.JoinVertical(lipgloss.Left, title, "", h.picker.View(), "", footer))
	case overlayLabelEditor:
		title := "New label"
		if h.editorLabel != nil {
			title = "Rename " + h.editorLabel.Name
		}
		footer := styleMuted().Render("enter save" + "  " + "esc cancel")
		return styleModal().Render(lipgloss.JoinVertical(lipgloss.Left, styleHeader().Render(title), "", h.editor.View(), "", footer))
	}
	return ""
}

func segmentMarkdown(seg model.Segment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", seg.DisplayName())
	if seg.WindowTitle != nil && strings.TrimSpace(*seg.WindowTitle) != "" {
		fmt.Fprintf(&b, "- **Window:** %s\n", strings.TrimSpace(*seg.WindowTitle))
	}
	fmt.Fprintf(&b, "- **Time:** %s %s %s (%s)\n",
		seg.StartTime.Local().Format("15:04:05"), glyphArrow(), seg.EndTime.Local().Format("15:04:05"), fmtDuration(seg.Duration()))
	fmt.Fprintf(&b, "- **App:** `%s`\n", seg.BundleID)
	fmt.Fprintf(&b, "- **Confidence:** %.0f%%\n", seg.Confidence*100)
	if seg.Summary != nil && strings.TrimSpace(*seg.Summary) != "" {
		fmt.Fprintf(&b, "\n%s\n", strings.TrimSpace(*seg.Summary))
	}
	return b.String()
}

type labelItem struct {
	label   *model.Label
	current bool
}

func (i labelItem) FilterValue() string {
	if i.label == nil {
		return ""
	}
	return i.label.Name
}

func (i labelItem) Title() string {
	if i.label == nil {
		return "(no label)"
	}
	t := labelSwatch(i.label.Color) + " " + i.label.Name
	if i.current {
		t += " " + styleMuted().Render("(current)")
	}
	return t
}

func (i labelItem) Description() string { return "" }

// sessionLabelPicker opens the picker for one session's label.
type sessionLabelPicker struct {
	h  *overlayHost
	id string
}

func (p sessionLabelPicker) OpenLabelPicker() {
	p.h.openLabelPicker(p.id, p.h.sessionLabel)
}

type saveLabelRequest struct {
	id   *int64
	name string
}

type deleteLabelRequest struct{ id int64 }
