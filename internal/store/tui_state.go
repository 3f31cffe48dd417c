package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const tuiStateFileName = "tui_state.json"

// TUIState remembers the last timer setup across launches. Best effort:
// callers tolerate missing or invalid data.
type TUIState struct {
	Version int `json:"version"`

	// LastTargetMinutes is the countdown length used most recently.
	LastTargetMinutes int `json:"lastTargetMinutes,omitempty"`
	// LastDirection is "down" or "up".
	LastDirection string `json:"lastDirection,omitempty"`
	// LastLabelID is the label chosen on the timer screen.
	LastLabelID *int64 `json:"lastLabelId,omitempty"`
}

func (s Store) tuiStatePath() string {
	return filepath.Join(s.Dir, tuiStateFileName)
}

func (s Store) LoadTUIState() (*TUIState, error) {
	if strings.TrimSpace(s.Dir) == "" {
		return &TUIState{Version: 1}, nil
	}
	b, err := os.ReadFile(s.tuiStatePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &TUIState{Version: 1}, nil
		}
		return nil, err
	}
	var st TUIState
	if err := json.Unmarshal(b, &st); err != nil {
		// Corrupt state is treated as missing.
		return &TUIState{Version: 1}, nil
	}
	if st.Version == 0 {
		st.Version = 1
	}
	return &st, nil
}

func (s Store) SaveTUIState(st *TUIState) error {
	if st == nil || strings.TrimSpace(s.Dir) == "" {
		return nil
	}
	if err := s.Ensure(); err != nil {
		return err
	}
	if st.Version == 0 {
		st.Version = 1
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteFile(s.Dir, tuiStateFileName+".*.tmp", s.tuiStatePath(), b, 0o644)
}
