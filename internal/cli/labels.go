package cli

import (
	"github.com/spf13/cobra"
)

func newLabelsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "labels",
		Aliases: []string{"label"},
		Short:   "Label commands",
	}
	cmd.AddCommand(newLabelsListCmd(app))
	cmd.AddCommand(newLabelsCreateCmd(app))
	cmd.AddCommand(newLabelsUpdateCmd(app))
	cmd.AddCommand(newLabelsDeleteCmd(app))
	return cmd
}

func newLabelsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List labels in display order",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			labels, err := st.ListLabels(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": labels})
		},
	}
}

func newLabelsCreateCmd(app *App) *cobra.Command {
	var name, color string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a label",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			lb, err := st.CreateLabel(cmd.Context(), name, color)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": lb})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Label name")
	cmd.Flags().StringVar(&color, "color", "", "Hex color (default: next palette color)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newLabelsUpdateCmd(app *App) *cobra.Command {
	var name, color string

	cmd := &cobra.Command{
		Use:     "update <label-id>",
		Aliases: []string{"rename"},
		Short:   "Rename or recolor a label",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseLabelID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			var namePtr, colorPtr *string
			if cmd.Flags().Changed("name") {
				namePtr = &name
			}
			if cmd.Flags().Changed("color") {
				colorPtr = &color
			}
			if namePtr == nil && colorPtr == nil {
				return writeErr(cmd, errUsage("nothing to update: pass --name and/or --color"))
			}
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			lb, err := st.UpdateLabel(cmd.Context(), id, namePtr, colorPtr)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": lb})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&color, "color", "", "New hex color")
	return cmd
}

func newLabelsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <label-id>",
		Short: "Delete a label (sessions keep their history, unlabelled)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseLabelID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := st.DeleteLabel(cmd.Context(), id); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": id, "deleted": true}})
		},
	}
}
