package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"lefocus-cli/internal/model"
	"lefocus-cli/internal/publish"
	"lefocus-cli/internal/store"
	"lefocus-cli/internal/tui"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newSessionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"session"},
		Short:   "Session commands",
	}
	cmd.AddCommand(newSessionsListCmd(app))
	cmd.AddCommand(newSessionsShowCmd(app))
	cmd.AddCommand(newSessionsOpenCmd(app))
	cmd.AddCommand(newSessionsRunningCmd(app))
	cmd.AddCommand(newSessionsNoteCmd(app))
	cmd.AddCommand(newSessionsLabelCmd(app))
	cmd.AddCommand(newSessionsToggleCmd(app))
	cmd.AddCommand(newSessionsImportCmd(app))
	cmd.AddCommand(newSessionsExportCmd(app))
	cmd.AddCommand(newSessionsDeleteCmd(app))
	return cmd
}

func newSessionsListCmd(app *App) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List finished sessions (newest first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if limit < 0 || offset < 0 {
				return writeErr(cmd, errUsage("--limit and --offset must not be negative"))
			}
			sessions, err := st.ListSessions(cmd.Context(), limit, offset)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": sessions,
				"meta": map[string]any{"limit": limit, "offset": offset, "count": len(sessions)},
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Max sessions to return (0 = all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Sessions to skip")
	return cmd
}

func newSessionsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show a session with its segments and top apps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, err := st.ResolveSessionID(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := st.SessionResults(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}
}

func newSessionsOpenCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "open <session-id>",
		Short: "Open a session's results in the TUI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, err := st.ResolveSessionID(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return runTUI(cmd, app, tui.Options{Screen: tui.ScreenResults, SessionID: id})
		},
	}
}

func newSessionsRunningCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "running",
		Short: "Show the session currently marked running (null if none)",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			sess, err := st.RunningSession(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": sess})
		},
	}
}

func newSessionsNoteCmd(app *App) *cobra.Command {
	var text string
	var unset bool

	cmd := &cobra.Command{
		Use:   "note <session-id>",
		Short: "Set or clear a session's note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if unset == cmd.Flags().Changed("text") {
				return writeErr(cmd, errUsage("pass exactly one of --text or --clear"))
			}
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, err := st.ResolveSessionID(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if unset {
				text = ""
			}
			if err := st.SetSessionNote(cmd.Context(), id, text); err != nil {
				return writeErr(cmd, err)
			}
			sess, err := st.GetSession(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": sess})
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Note text (markdown)")
	cmd.Flags().BoolVar(&unset, "clear", false, "Remove the note")
	return cmd
}

func newSessionsLabelCmd(app *App) *cobra.Command {
	var labelArg string
	var unset bool

	cmd := &cobra.Command{
		Use:   "label <session-id>",
		Short: "Set or clear a session's label",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if unset == cmd.Flags().Changed("label") {
				return writeErr(cmd, errUsage("pass exactly one of --label or --clear"))
			}
			var labelID *int64
			if !unset {
				n, err := parseLabelID(labelArg)
				if err != nil {
					return writeErr(cmd, err)
				}
				labelID = &n
			}
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, err := st.ResolveSessionID(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := st.SetSessionLabel(cmd.Context(), id, labelID); err != nil {
				return writeErr(cmd, err)
			}
			sess, err := st.GetSession(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": sess})
		},
	}

	cmd.Flags().StringVar(&labelArg, "label", "", "Label id")
	cmd.Flags().BoolVar(&unset, "clear", false, "Remove the label")
	return cmd
}

func newSessionsToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <session-id> <bundle-id>",
		Short: "Flip whether an app counts as on-task for a session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, err := st.ResolveSessionID(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			selected, err := st.ToggleAppSelection(cmd.Context(), id, args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"sessionId": id,
				"bundleId":  args[1],
				"selected":  selected,
			}})
		},
	}
}

func newSessionsImportCmd(app *App) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import <session-id>",
		Short: "Append context segments to a session from a YAML or JSON list",
		Long: `Append context segments to a session.

The input is a list of segments, one per app stretch:

  - startTime: 2026-10-15T09:00:00Z
    endTime: 2026-10-15T09:12:30Z
    bundleId: com.apple.dt.Xcode
    appName: Xcode
    summary: Wired the timer into the TUI

JSON input works too. Use --file - to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := readInput(cmd, file)
			if err != nil {
				return writeErr(cmd, err)
			}
			var segs []store.SegmentInput
			if err := yaml.Unmarshal(b, &segs); err != nil {
				return writeErr(cmd, errUsage("parse segments: %v", err))
			}
			if len(segs) == 0 {
				return writeErr(cmd, errUsage("no segments in input"))
			}
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, err := st.ResolveSessionID(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			added, err := st.AddSegments(cmd.Context(), id, segs)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": added})
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Segments file (- for stdin)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newSessionsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a session and its segments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, err := st.ResolveSessionID(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := st.DeleteSession(cmd.Context(), id); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": id, "deleted": true}})
		},
	}
}

func newSessionsExportCmd(app *App) *cobra.Command {
	var to string
	var all, overwrite bool

	cmd := &cobra.Command{
		Use:   "export [session-id...]",
		Short: "Export sessions as Markdown",
		Long: `Export sessions as Markdown.

With --to, one page per session is written to <dir>/sessions. Without it, a
single session's page is printed to stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return writeErr(cmd, errUsage("pass session ids or --all"))
			}
			if strings.TrimSpace(to) == "" && (all || len(args) != 1) {
				return writeErr(cmd, errUsage("--to is required when exporting more than one session"))
			}
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ids := make([]string, 0, len(args))
			if all {
				sessions, err := st.ListSessions(cmd.Context(), 0, 0)
				if err != nil {
					return writeErr(cmd, err)
				}
				for _, s := range sessions {
					ids = append(ids, s.ID)
				}
			} else {
				for _, a := range args {
					id, err := st.ResolveSessionID(cmd.Context(), a)
					if err != nil {
						return writeErr(cmd, err)
					}
					ids = append(ids, id)
				}
			}
			results := make([]model.SessionResults, 0, len(ids))
			for _, id := range ids {
				res, err := st.SessionResults(cmd.Context(), id)
				if err != nil {
					return writeErr(cmd, err)
				}
				results = append(results, res)
			}

			if strings.TrimSpace(to) == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), publish.RenderSessionMarkdown(results[0]))
				return err
			}
			written, err := publish.WriteSessions(results, to, publish.WriteOptions{Overwrite: overwrite})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": written})
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Output directory")
	cmd.Flags().BoolVar(&all, "all", false, "Export every finished session")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing files")
	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if strings.TrimSpace(path) == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
