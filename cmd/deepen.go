package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/iksnae/ideasurge/internal"
	"github.com/spf13/cobra"
)

var (
	deepenFocus  string
	deepenMode   string
	deepenPrompt string
	deepenInput  string
	deepenJSON   bool
)

var deepenCmd = &cobra.Command{
	Use:   "deepen <idea-id|number>",
	Short: "Research one idea in depth",
	Long: `Run a deep dive on an idea of the current batch.

A deep dive picks the idea if it is not picked yet. The report is stored in
the session with any earlier reports for the same idea, newest first.

Focus areas: market, mvp, risks, pricing. Pass --prompt for a custom brief.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		a, err := openApp(ctx, false)
		if err != nil {
			return err
		}
		defer a.Close()

		idea, err := resolveIdea(a.store, args[0])
		if err != nil {
			return err
		}

		req := internal.DeepDiveRequest{
			IdeaID: idea.ID,
			Mode:   internal.DeepDiveMode(deepenMode),
			Focus:  internal.DeepDiveFocus(deepenFocus),
			Prompt: deepenPrompt,
		}
		if deepenPrompt != "" && !cmd.Flags().Changed("mode") {
			req.Mode = internal.ModeCustom
			if !cmd.Flags().Changed("focus") {
				req.Focus = internal.FocusCustom
			}
		}
		if err := req.Validate(); err != nil {
			return err
		}

		if !a.store.IsPicked(idea.ID) {
			if _, err := a.lifecycle.Pick(ctx, idea.ID); err != nil {
				return err
			}
			internal.LogInfo("Picked %q", idea.Title)
		}

		var body io.ReadCloser
		if deepenInput != "" {
			body, err = openReplay(deepenInput)
		} else {
			body, err = streamClient().OpenDeepDive(ctx, idea, req)
		}
		if internal.IsAbort(err) {
			internal.PrintWarning("Deep dive cancelled")
			return nil
		}
		if err != nil {
			return err
		}
		defer func() { _ = body.Close() }()

		text, err := runDeepDive(ctx, body, cmd.ErrOrStderr())
		if internal.IsAbort(err) {
			return nil
		}
		if err != nil {
			return err
		}

		result, err := a.lifecycle.CompleteDeepDive(idea.ID, text)
		if errors.Is(err, internal.ErrDeepDiveContract) {
			return fmt.Errorf("%w; try again or narrow the brief with --focus or --prompt", err)
		}
		if err != nil {
			return err
		}
		if deepenJSON {
			return writeJSON(cmd.OutOrStdout(), result)
		}
		printDeepDive(cmd.OutOrStdout(), result)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deepenCmd)
	deepenCmd.Flags().StringVar(&deepenFocus, "focus", string(internal.FocusMarket), "Focus area (market, mvp, risks, pricing, custom)")
	deepenCmd.Flags().StringVar(&deepenMode, "mode", string(internal.ModePreset), "Deep dive mode (preset, custom)")
	deepenCmd.Flags().StringVar(&deepenPrompt, "prompt", "", "Custom research brief (implies --mode custom)")
	deepenCmd.Flags().StringVar(&deepenInput, "input", "", "Replay a captured frame stream from a file (- for stdin)")
	deepenCmd.Flags().BoolVar(&deepenJSON, "json", false, "Print the report as JSON")
}
