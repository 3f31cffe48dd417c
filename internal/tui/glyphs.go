package tui

import (
	"os"
	"strings"
	"sync"
)

// Terminals can't change the user's font, so the UI picks between Unicode and
// ASCII affordances instead.

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = glyphSetUnicode
)

// applyGlyphPreference reads the configured glyph set, falling back to
// LEFOCUS_TUI_GLYPHS. Unknown values are ignored.
func applyGlyphPreference(configured string) {
	v := strings.ToLower(strings.TrimSpace(configured))
	if v == "" {
		v = strings.ToLower(strings.TrimSpace(os.Getenv("LEFOCUS_TUI_GLYPHS")))
	}
	switch v {
	case "", "unicode", "utf8":
		setGlyphs(glyphSetUnicode)
	case "ascii":
		setGlyphs(glyphSetASCII)
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	gs := currentGlyphs
	glyphsMu.RUnlock()
	return gs
}

func glyphBullet() string {
	if glyphs() == glyphSetASCII {
		return "*"
	}
	return "●"
}

func glyphArrow() string {
	if glyphs() == glyphSetASCII {
		return "->"
	}
	return "→"
}

func glyphCheck(on bool) string {
	if glyphs() == glyphSetASCII {
		if on {
			return "[x]"
		}
		return "[ ]"
	}
	if on {
		return "☑"
	}
	return "☐"
}

func glyphCursor() string {
	if glyphs() == glyphSetASCII {
		return ">"
	}
	return "▸"
}

func glyphBar() string {
	if glyphs() == glyphSetASCII {
		return "#"
	}
	return "█"
}

func glyphBarEmpty() string {
	if glyphs() == glyphSetASCII {
		return "."
	}
	return "░"
}

func glyphEllipsis() string {
	if glyphs() == glyphSetASCII {
		return "..."
	}
	return "…"
}
