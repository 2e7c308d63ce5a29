package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/ideasurge/internal"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	sectionTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)
)

// writeJSON writes v as indented JSON
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// printIdeas renders a numbered batch; isPicked may be nil
func printIdeas(w io.Writer, ideas []internal.Idea, isPicked func(string) bool) {
	styled := internal.IsTerminal(w)
	if len(ideas) == 0 {
		fmt.Fprintln(w, "No ideas found.")
		return
	}
	for i, idea := range ideas {
		picked := isPicked != nil && isPicked(idea.ID)
		if styled {
			fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("#%d", i+1)))
		} else {
			fmt.Fprintf(w, "#%d ", i+1)
		}
		fmt.Fprint(w, internal.RenderIdeaCard(idea, picked, styled))
		fmt.Fprintln(w)
	}
}

// printDeepDive renders one deep-dive report
func printDeepDive(w io.Writer, dd internal.DeepDiveResult) {
	styled := internal.IsTerminal(w)
	title := func(s string) string {
		if styled {
			return sectionTitleStyle.Render(s)
		}
		return s
	}

	fmt.Fprintln(w, title("Deep dive")+" "+dimStyle.Render(dd.GeneratedAt))
	fmt.Fprintln(w, wrapText(strings.TrimSpace(dd.Summary), 80))
	for _, section := range dd.Sections {
		fmt.Fprintln(w)
		fmt.Fprintln(w, title(section.Title))
		fmt.Fprintln(w, wrapText(strings.TrimSpace(section.Content), 80))
	}
	if len(dd.Sources) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, title("Sources"))
		for _, src := range dd.Sources {
			fmt.Fprintf(w, "  - %s\n", src)
		}
	}
}

// wrapText wraps lines longer than width at word boundaries
func wrapText(text string, width int) string {
	lines := strings.Split(text, "\n")
	var wrapped []string

	for _, line := range lines {
		if len(line) <= width {
			wrapped = append(wrapped, line)
			continue
		}

		words := strings.Fields(line)
		currentLine := ""
		for _, word := range words {
			switch {
			case currentLine == "":
				currentLine = word
			case len(currentLine)+len(word)+1 > width:
				wrapped = append(wrapped, currentLine)
				currentLine = word
			default:
				currentLine += " " + word
			}
		}
		if currentLine != "" {
			wrapped = append(wrapped, currentLine)
		}
	}

	return strings.Join(wrapped, "\n")
}
