package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"lefocus-cli/internal/clock"
	"lefocus-cli/internal/format"
	"lefocus-cli/internal/logger"
	"lefocus-cli/internal/store"
	"lefocus-cli/internal/timer"
	"lefocus-cli/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	PrettyJSON bool
	Format     string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "lefocus",
		Short:        "LeFocus focus timer (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Browse finished sessions
  lefocus

  # Start focusing (countdown from 50 minutes)
  lefocus timer --minutes 50

  # Review a session (shortcut for: lefocus sessions show <session-id>)
  lefocus session-1f0c
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app, tui.Options{Screen: tui.ScreenHistory})
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("LEFOCUS_DIR", ""), "Path to the data dir (default: ~/.lefocus/data)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("LEFOCUS_FORMAT", "json"), "Output format (json|yaml)")

	cmd.AddCommand(newTimerCmd(app))
	cmd.AddCommand(newSessionsCmd(app))
	cmd.AddCommand(newLabelsCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func openStore(app *App) (store.Store, error) {
	dir := app.Dir
	if dir == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return store.Store{}, err
		}
		dir = d
		app.Dir = dir
	}
	s := store.Store{Dir: dir}
	if err := s.Ensure(); err != nil {
		return s, err
	}
	return s, nil
}

// runTUI owns the timer for the lifetime of the UI. A session still active
// when the UI exits is recorded as Interrupted.
func runTUI(cmd *cobra.Command, app *App, opts tui.Options) error {
	log := logger.Component("cli")
	st, err := openStore(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	cfg, err := store.LoadConfig()
	if err != nil {
		return writeErr(cmd, fmt.Errorf("load config: %w", err))
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if n, err := st.MarkRunningInterrupted(ctx, time.Now()); err != nil {
		return writeErr(cmd, err)
	} else if n > 0 {
		log.Info("recovered sessions left running", "count", n)
	}

	t := timer.NewLocal(clock.NewSystem(), st)
	defer t.Close()
	go func() { _ = t.Run(ctx) }()

	opts.Store = st
	opts.Config = cfg
	opts.Timer = t
	runErr := tui.Run(opts)

	if err := t.Interrupt(context.Background()); err != nil {
		log.Warn("interrupt session on exit", "err", err)
	}
	if runErr != nil {
		return writeErr(cmd, runErr)
	}
	return nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
