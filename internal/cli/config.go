package cli

import (
	"strings"

	"lefocus-cli/internal/clocksync"
	"lefocus-cli/internal/store"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Global configuration (~/.lefocus/config.json)",
	}
	cmd.AddCommand(newConfigShowCmd(app))
	cmd.AddCommand(newConfigSetCmd(app))
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			path, err := store.ConfigPath()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": cfg,
				"meta": map[string]any{"path": path},
			})
		},
	}
}

func newConfigSetCmd(app *App) *cobra.Command {
	var (
		targetMinutes int
		direction     string
		notify        bool
		theme         string
		glyphs        string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update configuration values",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			flags := cmd.Flags()
			changed := false

			if flags.Changed("target-minutes") {
				if targetMinutes <= 0 {
					return writeErr(cmd, errUsage("--target-minutes must be positive"))
				}
				cfg.DefaultTargetMinutes = targetMinutes
				changed = true
			}
			if flags.Changed("direction") {
				d, err := clocksync.ParseDirection(strings.TrimSpace(direction))
				if err != nil {
					return writeErr(cmd, errUsage("%v", err))
				}
				cfg.Direction = d.String()
				changed = true
			}
			if flags.Changed("notify") {
				cfg.Notify = &notify
				changed = true
			}
			if flags.Changed("theme") || flags.Changed("glyphs") {
				if cfg.TUI == nil {
					cfg.TUI = &store.TUIConfig{}
				}
			}
			if flags.Changed("theme") {
				switch theme = strings.ToLower(strings.TrimSpace(theme)); theme {
				case "auto", "dark", "light":
					cfg.TUI.Theme = theme
				default:
					return writeErr(cmd, errUsage("unknown theme: %s (want auto|dark|light)", theme))
				}
				changed = true
			}
			if flags.Changed("glyphs") {
				switch glyphs = strings.ToLower(strings.TrimSpace(glyphs)); glyphs {
				case "unicode", "ascii":
					cfg.TUI.Glyphs = glyphs
				default:
					return writeErr(cmd, errUsage("unknown glyphs: %s (want unicode|ascii)", glyphs))
				}
				changed = true
			}
			if !changed {
				return writeErr(cmd, errUsage("nothing to set"))
			}
			if err := store.SaveConfig(cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": cfg})
		},
	}

	cmd.Flags().IntVar(&targetMinutes, "target-minutes", 0, "Default countdown length in minutes")
	cmd.Flags().StringVar(&direction, "direction", "", "Default direction (down|up)")
	cmd.Flags().BoolVar(&notify, "notify", true, "Desktop notification when a countdown completes")
	cmd.Flags().StringVar(&theme, "theme", "", "TUI theme (auto|dark|light)")
	cmd.Flags().StringVar(&glyphs, "glyphs", "", "TUI glyph set (unicode|ascii)")
	return cmd
}
