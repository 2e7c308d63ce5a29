package cmd

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/ideasurge/internal"
	"github.com/spf13/cobra"
)

var libraryJSON bool

var (
	categoryStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("135"))

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

var libraryCmd = &cobra.Command{
	Use:   "library [record-id]",
	Short: "Browse recycled ideas",
	Long: `List the recycled ideas in the library, grouped by category and most
recently recycled first. With a record id, show that idea.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.Close()
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			rec, err := a.repo.GetByID(cmd.Context(), args[0])
			if errors.Is(err, internal.ErrRecordNotFound) {
				return fmt.Errorf("idea not found in library: %s", args[0])
			}
			if err != nil {
				return err
			}
			if libraryJSON {
				return writeJSON(out, rec)
			}
			fmt.Fprint(out, internal.RenderIdeaCard(rec.ToIdea(), rec.Status == internal.StatusPicked, internal.IsTerminal(out)))
			return nil
		}

		records, err := internal.ListRecycled(cmd.Context(), a.repo)
		if err != nil {
			return err
		}
		groups := internal.GroupByCategory(records)
		if libraryJSON {
			return writeJSON(out, groups)
		}
		displayLibrary(out, len(records), groups)
		return nil
	},
}

func displayLibrary(out io.Writer, total int, groups []internal.CategoryGroup) {
	if total == 0 {
		fmt.Fprintln(out, headerStyle.Render("📚 The library is empty"))
		return
	}
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📚 %d recycled idea(s)", total)))

	for _, group := range groups {
		fmt.Fprintln(out)
		fmt.Fprintln(out, categoryStyle.Render(fmt.Sprintf("%s (%d)", group.Category, len(group.Ideas))))

		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		for _, rec := range group.Ideas {
			title := rec.Title
			if len(title) > 50 {
				title = title[:47] + "..."
			}
			_, _ = fmt.Fprintf(w, "  %s\t%s\t%s\n", title, dateStyle.Render(recycledLabel(rec.RecycledAt, time.Now())), idStyle.Render(rec.ID))
		}
		_ = w.Flush()
	}
}

// recycledLabel formats t relative to now
func recycledLabel(t *time.Time, now time.Time) string {
	if t == nil {
		return "-"
	}
	local := t.Local()
	diff := now.Sub(local)
	switch {
	case diff < 24*time.Hour:
		return local.Format("Today 15:04")
	case diff < 7*24*time.Hour:
		return local.Format("Mon 15:04")
	case diff < 365*24*time.Hour:
		return local.Format("Jan 02 15:04")
	default:
		return local.Format("2006-01-02")
	}
}

func init() {
	rootCmd.AddCommand(libraryCmd)
	libraryCmd.Flags().BoolVar(&libraryJSON, "json", false, "Print as JSON")
}
