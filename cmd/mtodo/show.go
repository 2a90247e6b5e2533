package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mtodo/mtodo/internal/ui"
)

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a todo with its description rendered as markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.openStore(); err != nil {
				return err
			}
			todo, err := a.store.GetTodo(a.ctx, id)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return outputJSON(cmd.OutOrStdout(), todo)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.FormatTodo(todo, ui.ShouldUseColor()))
			if todo.Description != "" {
				fmt.Fprintln(out)
				fmt.Fprintln(out, ui.RenderMarkdown(todo.Description))
			}
			return nil
		},
	}
}
