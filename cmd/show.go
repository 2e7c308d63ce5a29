package cmd

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/ideasurge/internal"
	"github.com/spf13/cobra"
)

var (
	showLimit int
	showJSON  bool
)

var (
	pickedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)
)

// ideaDetail is the JSON form of show <id>
type ideaDetail struct {
	Idea      internal.Idea             `json:"idea"`
	Picked    bool                      `json:"picked"`
	DeepDives []internal.DeepDiveResult `json:"deepDives"`
}

var showCmd = &cobra.Command{
	Use:   "show [idea-id|number]",
	Short: "Show the current batch or one idea",
	Long: `Without arguments, list the ideas of the current batch.
With an idea id or number, show the idea and its deep dives, newest first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := internal.NewFileSessionStore(cfg.StoreDir)
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			ideas := store.Ideas()
			if showJSON {
				return writeJSON(out, ideas)
			}
			displayBatch(out, ideas, store)
			return nil
		}

		idea, err := resolveIdea(store, args[0])
		if err != nil {
			return err
		}
		dives := store.DeepDivesByIdeaID(idea.ID)
		if showLimit > 0 && showLimit < len(dives) {
			dives = dives[:showLimit]
		}
		if showJSON {
			return writeJSON(out, ideaDetail{Idea: idea, Picked: store.IsPicked(idea.ID), DeepDives: dives})
		}

		fmt.Fprint(out, internal.RenderIdeaCard(idea, store.IsPicked(idea.ID), internal.IsTerminal(out)))
		for _, dd := range dives {
			fmt.Fprintln(out)
			printDeepDive(out, dd)
		}
		if total := len(store.DeepDivesByIdeaID(idea.ID)); total > len(dives) {
			fmt.Fprintln(out)
			fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("... (%d older deep dive(s))", total-len(dives))))
		}
		return nil
	},
}

func displayBatch(out io.Writer, ideas []internal.Idea, store internal.SessionStore) {
	if len(ideas) == 0 {
		fmt.Fprintln(out, headerStyle.Render("💡 No ideas in the current batch"))
		fmt.Fprintln(out, dimStyle.Render("Run 'ideasurge search <query>' to start one"))
		return
	}

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("💡 %d idea(s) in the current batch", len(ideas))))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tTitle\tPicked\tDeep dives\tID")
	for i, idea := range ideas {
		title := idea.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		picked := ""
		if store.IsPicked(idea.ID) {
			picked = pickedStyle.Render("✓")
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i+1, title, picked,
			strconv.Itoa(len(store.DeepDivesByIdeaID(idea.ID))), idStyle.Render(idea.ID))
	}
	_ = w.Flush()
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVarP(&showLimit, "limit", "n", 0, "Limit number of deep dives to show")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Print as JSON")
}
