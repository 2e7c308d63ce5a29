package cmd

import (
	"fmt"

	"github.com/iksnae/ideasurge/internal"
	"github.com/spf13/cobra"
)

var pickCmd = &cobra.Command{
	Use:   "pick <idea-id|number>",
	Short: "Pick an idea from the current batch",
	Long: `Mark an idea of the current batch as picked.

The pick is recorded in the session immediately and saved to the idea
repository in the background. A picked idea is never recycled, even if the
same idea comes up again in a later search.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		idea, err := resolveIdea(a.store, args[0])
		if err != nil {
			return err
		}
		if a.store.IsPicked(idea.ID) {
			internal.PrintInfo(fmt.Sprintf("%q is already picked", idea.Title))
			return nil
		}
		if _, err := a.lifecycle.Pick(cmd.Context(), idea.ID); err != nil {
			return err
		}
		internal.PrintSuccess(fmt.Sprintf("Picked %q", idea.Title))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pickCmd)
}
