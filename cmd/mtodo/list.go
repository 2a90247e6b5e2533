package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mtodo/mtodo/internal/types"
	"github.com/mtodo/mtodo/internal/ui"
)

func newListCmd(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List open todos (--all includes done ones)",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.openStore(); err != nil {
				return err
			}
			if cmd.Flags().Changed("all") {
				a.actions.SetShowAll(all)
			}
			snap, err := a.actions.Snapshot(a.ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.jsonOutput {
				items := snap.Items
				if items == nil {
					items = []*types.Todo{}
				}
				return outputJSON(out, items)
			}

			if len(snap.Items) == 0 {
				fmt.Fprintln(out, "No Todo Found.")
			}
			color := ui.ShouldUseColor()
			open := 0
			for _, todo := range snap.Items {
				if !todo.IsDone {
					open++
				}
				fmt.Fprintln(out, ui.FormatTodo(todo, color))
			}
			a.printNormal(cmd, "\n%s\n", ui.FormatSummary(open, snap.DoneCount))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include done todos")
	return cmd
}
