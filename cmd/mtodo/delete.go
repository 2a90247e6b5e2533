package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func newDeleteCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a todo",
		Args:    cobra.ExactArgs(1),
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

			if !force {
				if !isTerminal() {
					return errors.New("refusing to delete without --force when not attached to a terminal")
				}
				confirmed := false
				err := huh.NewConfirm().
					Title(fmt.Sprintf("Delete %q?", todo.Title)).
					Affirmative("Delete").
					Negative("Cancel").
					Value(&confirmed).
					Run()
				if err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						a.printNormal(cmd, "Delete canceled.\n")
						return nil
					}
					return err
				}
				if !confirmed {
					a.printNormal(cmd, "Delete canceled.\n")
					return nil
				}
			}

			if err := a.actions.DeleteItem(a.ctx, id); err != nil {
				return err
			}
			if a.jsonOutput {
				return outputJSON(cmd.OutOrStdout(), map[string]interface{}{"id": id, "deleted": true})
			}
			a.printNormal(cmd, "Deleted #%d: %s\n", id, todo.Title)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete without asking")
	return cmd
}
