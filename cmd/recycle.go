package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/ideasurge/internal"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

var recycleFile string

var recycleCmd = &cobra.Command{
	Use:   "recycle",
	Short: "Recycle unpicked ideas into the library now",
	Long: `Save the unpicked ideas of the current batch to the library without
waiting for the next search.

With --file, recycle the ideas in a JSON file instead: either an array of
ideas or an object with an "ideas" array. Picked ideas are always skipped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.Close()

		var ideas []internal.Idea
		if recycleFile != "" {
			ideas, err = readIdeasFile(recycleFile)
			if err != nil {
				return err
			}
		} else {
			for _, idea := range a.store.Ideas() {
				if !a.store.IsPicked(idea.ID) {
					ideas = append(ideas, idea)
				}
			}
		}
		if len(ideas) == 0 {
			internal.PrintInfo("Nothing to recycle")
			return nil
		}

		report, err := a.lifecycle.RecycleIdeas(cmd.Context(), ideas)
		if err != nil {
			return err
		}
		internal.PrintSuccess(fmt.Sprintf("Recycled %d idea(s), skipped %d already picked", report.Recycled, report.SkippedPicked))
		return nil
	},
}

// readIdeasFile reads and validates every idea in path
func readIdeasFile(path string) ([]internal.Idea, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &internal.StorageError{Path: path, Op: "read", Err: err}
	}
	if !gjson.ValidBytes(data) {
		return nil, &internal.ParseError{Source: "ideas-file", Key: path, Err: fmt.Errorf("invalid JSON")}
	}
	root := gjson.ParseBytes(data)
	if root.IsObject() {
		root = root.Get("ideas")
	}
	if !root.IsArray() {
		return nil, &internal.SchemaError{Path: "ideas", Reason: "expected array"}
	}

	ideas := make([]internal.Idea, 0, len(root.Array()))
	for i, raw := range root.Array() {
		idea, err := internal.ValidateIdea(raw)
		if err != nil {
			return nil, fmt.Errorf("idea %d: %w", i+1, err)
		}
		ideas = append(ideas, idea)
	}
	return ideas, nil
}

func init() {
	rootCmd.AddCommand(recycleCmd)
	recycleCmd.Flags().StringVar(&recycleFile, "file", "", "Recycle the ideas in a JSON file instead of the current batch")
}
