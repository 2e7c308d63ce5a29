package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/ideasurge/internal"
)

// MarkdownExporter exports ideas in the same Markdown layout the idea
// parser reads, followed by each idea's deep dives
type MarkdownExporter struct{}

// Export exports the batch to Markdown format
func (e *MarkdownExporter) Export(state *internal.IdeaStoreState, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# Ideas\n\n")
	_, _ = fmt.Fprintf(w, "**Ideas:** %d  \n", len(state.Ideas))
	_, _ = fmt.Fprintf(w, "**Picked:** %d\n\n", len(state.Picked))

	picked := make(map[string]bool, len(state.Picked))
	for _, id := range state.Picked {
		picked[id] = true
	}

	for _, idea := range state.Ideas {
		_, _ = fmt.Fprintf(w, "---\n\n")
		_, _ = fmt.Fprintf(w, "## 💡 %s\n\n", oneLine(idea.Title))

		writeField(w, "One-liner", idea.OneLiner)
		writeField(w, "Problem", idea.Problem)
		writeField(w, "Target market", idea.TargetMarket)
		writeField(w, "Market signal", idea.MarketSignal)
		writeField(w, "Revenue model", idea.RevenueModel)
		writeField(w, "Source", strings.Join(idea.Source, ", "))
		if idea.Category != "" {
			writeField(w, "Category", idea.Category)
		}
		if picked[idea.ID] {
			_, _ = fmt.Fprintf(w, "_Picked_\n")
		}
		_, _ = fmt.Fprintf(w, "\n")

		for _, dive := range state.DeepDives[idea.ID] {
			_, _ = fmt.Fprintf(w, "### Deep dive (%s)\n\n", dive.GeneratedAt)
			_, _ = fmt.Fprintf(w, "%s\n\n", escapeMarkdown(dive.Summary))
			for _, section := range dive.Sections {
				_, _ = fmt.Fprintf(w, "#### %s\n\n%s\n\n", oneLine(section.Title), escapeMarkdown(section.Content))
			}
			if len(dive.Sources) > 0 {
				_, _ = fmt.Fprintf(w, "Sources:\n\n")
				for _, src := range dive.Sources {
					_, _ = fmt.Fprintf(w, "- %s\n", src)
				}
				_, _ = fmt.Fprintf(w, "\n")
			}
		}
	}

	return nil
}

func writeField(w io.Writer, label, value string) {
	_, _ = fmt.Fprintf(w, "**%s:** %s\n", label, escapeMarkdown(oneLine(value)))
}

// oneLine folds line breaks so a value stays on its label's line
func oneLine(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// escapeMarkdown escapes markdown special characters
func escapeMarkdown(text string) string {
	// Basic escaping - preserve code blocks
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			// Escape markdown syntax outside code blocks
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			if strings.TrimSpace(line) == "---" {
				line = "\\-\\-\\-"
			}
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
