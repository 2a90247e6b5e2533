package main

import (
	"github.com/spf13/cobra"
)

func newDoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a todo between done and open",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.openStore(); err != nil {
				return err
			}
			done, err := a.actions.ToggleDone(a.ctx, id)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return outputJSON(cmd.OutOrStdout(), map[string]interface{}{"id": id, "is_done": done})
			}
			if done {
				a.printNormal(cmd, "Marked #%d done\n", id)
			} else {
				a.printNormal(cmd, "Marked #%d open\n", id)
			}
			return nil
		},
	}
}

func newImportantCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "important <id>",
		Short: "Toggle a todo's important flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.openStore(); err != nil {
				return err
			}
			important, err := a.actions.ToggleImportant(a.ctx, id)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return outputJSON(cmd.OutOrStdout(), map[string]interface{}{"id": id, "is_important": important})
			}
			if important {
				a.printNormal(cmd, "Marked #%d important\n", id)
			} else {
				a.printNormal(cmd, "Marked #%d not important\n", id)
			}
			return nil
		},
	}
}
