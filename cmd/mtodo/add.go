package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mtodo/mtodo/internal/types"
)

func newAddCmd(a *app) *cobra.Command {
	var d types.Draft

	cmd := &cobra.Command{
		Use:     "add <title...>",
		Aliases: []string{"new", "create"},
		Short:   "Add a todo",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.openStore(); err != nil {
				return err
			}
			d.Title = strings.Join(args, " ")
			todo, err := a.actions.AddItem(a.ctx, d)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return outputJSON(cmd.OutOrStdout(), todo)
			}
			a.printNormal(cmd, "Created #%d: %s\n", todo.ID, todo.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&d.Description, "description", "d", "", "Description (markdown)")
	cmd.Flags().BoolVar(&d.IsImportant, "important", false, "Mark as important")
	cmd.Flags().BoolVar(&d.IsDone, "done", false, "Mark as done")
	return cmd
}
