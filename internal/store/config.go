package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultTargetMinutes = 25

type GlobalConfig struct {
	// DefaultTargetMinutes is the countdown length offered by the timer screen.
	DefaultTargetMinutes int `json:"defaultTargetMinutes,omitempty"`

	// Direction is "down" (countdown) or "up" (stopwatch).
	Direction string `json:"direction,omitempty"`

	// Notify sends a desktop notification when a countdown completes. Nil means on.
	Notify *bool `json:"notify,omitempty"`

	// TUI holds optional user preferences for the interactive TUI.
	TUI *TUIConfig `json:"tui,omitempty"`
}

type TUIConfig struct {
	// Theme is "auto", "dark" or "light".
	Theme string `json:"theme,omitempty"`
	// Glyphs selects the glyph set ("unicode" or "ascii").
	Glyphs string `json:"glyphs,omitempty"`
}

// DefaultTarget returns the configured countdown length.
func (c *GlobalConfig) DefaultTarget() time.Duration {
	if c == nil || c.DefaultTargetMinutes <= 0 {
		return defaultTargetMinutes * time.Minute
	}
	return time.Duration(c.DefaultTargetMinutes) * time.Minute
}

func (c *GlobalConfig) NotifyEnabled() bool {
	return c == nil || c.Notify == nil || *c.Notify
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.lefocus).
	if v := strings.TrimSpace(os.Getenv("LEFOCUS_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".lefocus"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func LoadConfig() (*GlobalConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &GlobalConfig{}, nil
		}
		return nil, err
	}
	var cfg GlobalConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func SaveConfig(cfg *GlobalConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	// The CLI and a running TUI may both write; the temp file keeps each write whole.
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}
