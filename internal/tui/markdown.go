package tui

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

var (
	mdRendererMu sync.Mutex
	// Renderers are cached by style and wrap width. WithAutoStyle can block on
	// terminal background queries, so a fixed style is chosen up front.
	mdRenderers = map[string]*glamour.TermRenderer{}
)

func renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}

	mdRendererMu.Lock()
	style := markdownStyle()
	key := style + ":" + strconv.Itoa(width)
	r := mdRenderers[key]
	mdRendererMu.Unlock()

	if r == nil {
		cfg := markdownStyleConfig(style)
		zero := uint(0)
		cfg.Document.Margin = &zero
		rr, err := glamour.NewTermRenderer(
			glamour.WithStyles(cfg),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		mdRendererMu.Lock()
		if existing := mdRenderers[key]; existing != nil {
			r = existing
		} else {
			mdRenderers[key] = rr
			r = rr
		}
		mdRendererMu.Unlock()
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func markdownStyleConfig(styleName string) ansi.StyleConfig {
	switch strings.ToLower(strings.TrimSpace(styleName)) {
	case "light":
		cfg := styles.LightStyleConfig
		applyMarkdownPalette(&cfg, "light")
		return cfg
	default:
		cfg := styles.DarkStyleConfig
		applyMarkdownPalette(&cfg, "dark")
		return cfg
	}
}

// markdownStyle keeps glamour in step with the TUI theme so detail text stays
// readable when the theme is forced.
func markdownStyle() string {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LEFOCUS_TUI_THEME"))) {
	case "light":
		return "light"
	case "dark":
		return "dark"
	}
	if v := strings.TrimSpace(os.Getenv("LEFOCUS_TUI_DARKBG")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			if b {
				return "dark"
			}
			return "light"
		}
	}
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil && bg >= 0 {
			if bg >= 7 {
				return "light"
			}
			return "dark"
		}
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

func applyMarkdownPalette(cfg *ansi.StyleConfig, styleName string) {
	if cfg == nil {
		return
	}
	heading := mdColor(colorSurfaceFg, styleName)
	cfg.Heading.Color = heading
	cfg.H1.Color = heading
	cfg.H2.Color = heading
	cfg.H3.Color = heading

	cfg.Code.Color = mdColor(colorSurfaceFg, styleName)
	cfg.CodeBlock.Color = mdColor(colorSurfaceFg, styleName)
	if cfg.CodeBlock.BackgroundColor == nil {
		cfg.CodeBlock.BackgroundColor = mdColor(colorControlBg, styleName)
	}
	cfg.Text.Color = mdColor(colorSurfaceFg, styleName)
	cfg.Strong.Color = nil
	cfg.Emph.Color = nil
	cfg.BlockQuote.Faint = mdBoolPtr(false)
}

func mdColor(c lipgloss.AdaptiveColor, styleName string) *string {
	if styleName == "light" {
		return mdStrPtr(c.Light)
	}
	return mdStrPtr(c.Dark)
}

func mdStrPtr(s string) *string { return &s }
func mdBoolPtr(b bool) *bool    { return &b }
