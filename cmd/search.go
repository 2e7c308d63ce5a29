package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/iksnae/ideasurge/internal"
	"github.com/spf13/cobra"
)

var (
	searchInput string
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search for SaaS ideas",
	Long: `Stream a research run from the backend and extract ideas as they arrive.

The unpicked ideas of the previous search are recycled into the library
before the new search starts. Press Ctrl-C to cancel; a cancelled search
leaves the previous batch untouched.

Use --input to replay a captured frame stream instead of calling the backend.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && searchInput == "" {
			return fmt.Errorf("a search query is required (or --input to replay a stream)")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		a, err := openApp(ctx, false)
		if err != nil {
			return err
		}
		defer a.Close()

		if n := a.lifecycle.BeginSearch(ctx); n > 0 {
			internal.LogInfo("Recycling %d idea(s) from the previous search", n)
		}

		query := strings.Join(args, " ")
		var body io.ReadCloser
		if searchInput != "" {
			body, err = openReplay(searchInput)
		} else {
			body, err = streamClient().OpenSearch(ctx, query)
		}
		if internal.IsAbort(err) {
			internal.PrintWarning("Search cancelled")
			return nil
		}
		if err != nil {
			return err
		}
		defer func() { _ = body.Close() }()

		ideas, err := runSearch(ctx, body, cmd.ErrOrStderr(), internal.NewBatchTimestamp(time.Now()))
		if internal.IsAbort(err) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := a.lifecycle.CompleteSearch(ideas); err != nil {
			return err
		}
		if searchJSON {
			return writeJSON(cmd.OutOrStdout(), ideas)
		}
		printIdeas(cmd.OutOrStdout(), ideas, nil)
		if len(ideas) > 0 {
			internal.PrintInfo("Pick one with 'ideasurge pick <number>'")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVar(&searchInput, "input", "", "Replay a captured frame stream from a file (- for stdin)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Print the ideas as JSON")
}
