package tui

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// The TUI must stay readable on both light and dark terminal backgrounds, so
// colors are adaptive and "faint" is only used on dark backgrounds.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted        = ac("240", "243")
	colorChromeMuted  = ac("240", "245")
	colorSelectedBg   = ac("#e9e9e9", "#262626")
	colorSelectedFg   = ac("235", "255")
	colorBorder       = ac("250", "243")
	colorFocusBorder  = ac("232", "255")
	colorSurfaceBg    = ac("255", "235")
	colorSurfaceFg    = ac("235", "252")
	colorControlBg    = ac("252", "235")
	colorAccent       = ac("27", "62")
	colorAccentFg     = ac("255", "235")
	colorFlashErrorBg = ac("196", "160")
	colorSuccess      = ac("28", "78")
	colorWarning      = ac("130", "214")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleHeader() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg)
}

func styleSelected() lipgloss.Style {
	return lipgloss.NewStyle().Background(colorSelectedBg).Foreground(colorSelectedFg).Bold(true)
}

func styleAccent() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
}

func styleZone(focused bool) lipgloss.Style {
	st := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	if focused {
		return st.BorderForeground(colorFocusBorder)
	}
	return st.BorderForeground(colorBorder)
}

func styleModal() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorFocusBorder).
		Background(colorSurfaceBg).
		Foreground(colorSurfaceFg).
		Padding(0, 1)
}

func styleFlashError() lipgloss.Style {
	return lipgloss.NewStyle().Background(colorFlashErrorBg).Foreground(colorAccentFg).Padding(0, 1)
}

// labelSwatch renders a small block in the label's color.
func labelSwatch(color string) string {
	color = strings.TrimSpace(color)
	if color == "" {
		return glyphBullet()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(glyphBullet())
}

// applyColorProfilePreference sets Lip Gloss's color profile for the TUI.
//
// termenv.EnvColorProfile respects CLICOLOR/CLICOLOR_FORCE, which can disable
// colors in a TUI by accident, so only NO_COLOR is honored here.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()

	// Trust TERM/COLORTERM when they claim more than the detector reports.
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") {
		if profile == termenv.Ascii || profile == termenv.ANSI {
			profile = termenv.ANSI256
		}
	}

	lipgloss.SetColorProfile(profile)
}

// applyThemePreference configures Lip Gloss's background detection.
//
// Priority:
// 1) the theme from config.json, when set
// 2) LEFOCUS_TUI_THEME=light|dark|auto
// 3) LEFOCUS_TUI_DARKBG=true|false
// 4) COLORFGBG heuristic ("15;0" = fg;bg)
func applyThemePreference(configured string) {
	if setThemeFromName(configured) {
		return
	}
	if setThemeFromName(os.Getenv("LEFOCUS_TUI_THEME")) {
		return
	}

	if v := strings.TrimSpace(os.Getenv("LEFOCUS_TUI_DARKBG")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			lipgloss.SetHasDarkBackground(b)
			return
		}
	}

	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			lipgloss.SetHasDarkBackground(bg < 7)
			return
		}
	}

	if runtime.GOOS == "darwin" {
		if dark, ok := macOSHasDarkAppearance(); ok {
			lipgloss.SetHasDarkBackground(dark)
		}
	}
}

func setThemeFromName(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return true
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return true
	}
	return false
}

func macOSHasDarkAppearance() (dark bool, ok bool) {
	// `defaults read -g AppleInterfaceStyle` prints "Dark" in dark mode and
	// exits 1 in light mode (key missing).
	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()

	out, err := exec.CommandContext(ctx, "defaults", "read", "-g", "AppleInterfaceStyle").CombinedOutput()
	if ctx.Err() != nil {
		return false, false
	}
	if err == nil {
		return strings.Contains(strings.ToLower(string(out)), "dark"), true
	}
	if ee, ok := err.(*exec.ExitError); ok && ee.ExitCode() == 1 {
		return false, true
	}
	return false, false
}
