package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_SaveLoad(t *testing.T) {
	cfgDir := t.TempDir()
	t.Setenv("LEFOCUS_CONFIG_DIR", cfgDir)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig(missing): %v", err)
	}
	if cfg.DefaultTarget() != 25*time.Minute || !cfg.NotifyEnabled() {
		t.Fatalf("expected defaults; got %+v", cfg)
	}

	off := false
	cfg.DefaultTargetMinutes = 50
	cfg.Direction = "up"
	cfg.Notify = &off
	cfg.TUI = &TUIConfig{Theme: "dark", Glyphs: "ascii"}
	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	got, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.DefaultTarget() != 50*time.Minute || got.Direction != "up" || got.NotifyEnabled() {
		t.Fatalf("unexpected config: %+v", got)
	}
	if got.TUI == nil || got.TUI.Glyphs != "ascii" {
		t.Fatalf("expected tui config; got %+v", got.TUI)
	}

	ents, err := os.ReadDir(cfgDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range ents {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Fatalf("unexpected temp file left behind: %s", e.Name())
		}
	}
}

func TestTUIState_SaveLoad(t *testing.T) {
	t.Parallel()
	s := Store{Dir: t.TempDir()}

	st, err := s.LoadTUIState()
	if err != nil || st.Version != 1 {
		t.Fatalf("expected default state; got %+v %v", st, err)
	}
	id := int64(3)
	if err := s.SaveTUIState(&TUIState{LastTargetMinutes: 45, LastDirection: "up", LastLabelID: &id}); err != nil {
		t.Fatalf("SaveTUIState: %v", err)
	}
	got, err := s.LoadTUIState()
	if err != nil {
		t.Fatalf("LoadTUIState: %v", err)
	}
	if got.LastTargetMinutes != 45 || got.LastDirection != "up" || got.LastLabelID == nil || *got.LastLabelID != 3 {
		t.Fatalf("unexpected state: %+v", got)
	}

	if err := os.WriteFile(filepath.Join(s.Dir, tuiStateFileName), []byte("{"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err = s.LoadTUIState()
	if err != nil || got.Version != 1 || got.LastTargetMinutes != 0 {
		t.Fatalf("expected corrupt state to load as default; got %+v %v", got, err)
	}
}
