package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iksnae/ideasurge/internal"
	"github.com/iksnae/ideasurge/internal/export"
	"github.com/spf13/cobra"
)

var (
	format      string
	outputDir   string
	pickedOnly  bool
	exportStdio bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the current batch to a file",
	Long: `Export the ideas of the current batch, with their picked state and deep
dives, to jsonl, md, yaml or json.

The markdown export uses the same layout the idea extractor reads, so it can
be replayed into a session later.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		store := internal.NewFileSessionStore(cfg.StoreDir)
		state, err := store.Load()
		if err != nil {
			return err
		}
		if pickedOnly {
			state = pickedState(state)
		}
		if len(state.Ideas) == 0 {
			internal.PrintWarning("No ideas to export")
			return nil
		}

		if exportStdio {
			return exporter.Export(state, cmd.OutOrStdout())
		}

		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		path := filepath.Join(outputDir, "ideas."+exporter.Extension())

		err = internal.ShowProgress(context.Background(), fmt.Sprintf("Exporting %d idea(s) to %s", len(state.Ideas), path), func() error {
			file, err := os.Create(path)
			if err != nil {
				return &internal.ExportError{Format: format, Path: path, Err: err}
			}
			if err := exporter.Export(state, file); err != nil {
				_ = file.Close()
				return &internal.ExportError{Format: format, Path: path, Err: err}
			}
			return file.Close()
		})
		if err != nil {
			return err
		}

		internal.PrintSuccess(fmt.Sprintf("Export complete: %d idea(s) exported to %s", len(state.Ideas), path))
		return nil
	},
}

// pickedState narrows state to its picked ideas
func pickedState(state *internal.IdeaStoreState) *internal.IdeaStoreState {
	picked := make(map[string]bool, len(state.Picked))
	for _, id := range state.Picked {
		picked[id] = true
	}
	out := *state
	out.Ideas = make([]internal.Idea, 0, len(state.Picked))
	for _, idea := range state.Ideas {
		if picked[idea.ID] {
			out.Ideas = append(out.Ideas, idea)
		}
	}
	return &out
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "md", "Export format ("+strings.Join(export.Formats, ", ")+")")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory")
	exportCmd.Flags().BoolVar(&pickedOnly, "picked", false, "Export only picked ideas")
	exportCmd.Flags().BoolVar(&exportStdio, "stdout", false, "Write to stdout instead of a file")
}
