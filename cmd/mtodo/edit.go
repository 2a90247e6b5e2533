package main

import (
	"errors"

	"github.com/spf13/cobra"
)

func newEditCmd(a *app) *cobra.Command {
	var (
		title, description string
		important, done    bool
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a todo's fields",
		Long: `Change a todo's fields. Only the flags given are changed:

  mtodo edit 3 --title "Buy oat milk" --important=false`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if !flags.Changed("title") && !flags.Changed("description") && !flags.Changed("important") && !flags.Changed("done") {
				return errors.New("nothing to change: pass --title, --description, --important or --done")
			}
			if err := a.openStore(); err != nil {
				return err
			}

			todo, err := a.store.GetTodo(a.ctx, id)
			if err != nil {
				return err
			}
			d := todo.Draft()
			if flags.Changed("title") {
				d.Title = title
			}
			if flags.Changed("description") {
				d.Description = description
			}
			if flags.Changed("important") {
				d.IsImportant = important
			}
			if flags.Changed("done") {
				d.IsDone = done
			}
			if err := a.actions.EditItem(a.ctx, id, d); err != nil {
				return err
			}

			if a.jsonOutput {
				updated, err := a.store.GetTodo(a.ctx, id)
				if err != nil {
					return err
				}
				return outputJSON(cmd.OutOrStdout(), updated)
			}
			a.printNormal(cmd, "Updated #%d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().BoolVar(&important, "important", false, "Set the important flag")
	cmd.Flags().BoolVar(&done, "done", false, "Set the done flag")
	return cmd
}
