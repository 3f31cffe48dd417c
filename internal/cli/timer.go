package cli

import (
	"time"

	"lefocus-cli/internal/clocksync"
	"lefocus-cli/internal/tui"

	"github.com/spf13/cobra"
)

func newTimerCmd(app *App) *cobra.Command {
	var minutes int
	var up bool

	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Open the focus timer",
		Long: `Open the focus timer in the TUI.

Without flags the timer remembers the last target and direction. Quitting while
a session is active records it as Interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if minutes < 0 {
				return writeErr(cmd, errUsage("--minutes must be positive"))
			}
			opts := tui.Options{
				Screen: tui.ScreenTimer,
				Target: time.Duration(minutes) * time.Minute,
			}
			if up {
				opts.Direction = clocksync.Up.String()
			} else if cmd.Flags().Changed("minutes") {
				opts.Direction = clocksync.Down.String()
			}
			return runTUI(cmd, app, opts)
		},
	}

	cmd.Flags().IntVar(&minutes, "minutes", 0, "Countdown length in minutes")
	cmd.Flags().BoolVar(&up, "up", false, "Count up (stopwatch) instead of down")
	return cmd
}
