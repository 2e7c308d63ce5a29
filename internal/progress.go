package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	pickedCardStyle = cardStyle.
			BorderForeground(lipgloss.Color("42"))
)

var spinnerChars = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// ShowProgress runs fn behind a spinner when stderr is a terminal
func ShowProgress(ctx context.Context, message string, fn func() error) error {
	if !isTerminal(os.Stderr) {
		LogInfo(message)
		return fn()
	}

	status := NewStatusLine(os.Stderr)
	status.Update(message)
	err := runWithContext(ctx, fn)
	status.Done(err == nil, message)
	return err
}

func runWithContext(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StatusLine is a single rewritable status line with a spinner. On a
// non-terminal writer updates are logged at debug level instead.
type StatusLine struct {
	w      io.Writer
	tty    bool
	mu     sync.Mutex
	msg    string
	stop   chan struct{}
	closed chan struct{}
}

// NewStatusLine starts a status line on w
func NewStatusLine(w io.Writer) *StatusLine {
	s := &StatusLine{w: w, tty: isTerminal(w)}
	if s.tty {
		s.stop = make(chan struct{})
		s.closed = make(chan struct{})
		go s.spin()
	}
	return s
}

func (s *StatusLine) spin() {
	defer close(s.closed)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	i := 0
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			char := spinnerChars[i%len(spinnerChars)]
			_, _ = fmt.Fprintf(s.w, "\r\033[K%s %s", progressStyle.Render(char), s.msg)
			s.mu.Unlock()
			i++
		}
	}
}

// Update replaces the status message
func (s *StatusLine) Update(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg == s.msg {
		return
	}
	s.msg = msg
	if !s.tty {
		LogDebug("%s", msg)
	}
}

// Done stops the spinner and prints a final mark with msg. Calling Done
// more than once has no further effect.
func (s *StatusLine) Done(ok bool, msg string) {
	if s.tty {
		select {
		case <-s.stop:
			return
		default:
			close(s.stop)
			<-s.closed
		}
		mark := successStyle.Render("✓")
		if !ok {
			mark = errorStyle.Render("✗")
		}
		_, _ = fmt.Fprintf(s.w, "\r\033[K%s %s\n", mark, msg)
	}
}

// RenderIdeaCard renders idea as a bordered card for terminal output, or as
// plain labelled lines when styled is false
func RenderIdeaCard(idea Idea, picked, styled bool) string {
	var b strings.Builder
	title := idea.Title
	if picked {
		title += " (picked)"
	}
	rows := []struct{ label, value string }{
		{"ID", idea.ID},
		{"One-liner", idea.OneLiner},
		{"Problem", idea.Problem},
		{"Target market", idea.TargetMarket},
		{"Market signal", idea.MarketSignal},
		{"Revenue model", idea.RevenueModel},
		{"Source", strings.Join(idea.Source, ", ")},
	}

	if !styled {
		b.WriteString(title + "\n")
		for _, row := range rows {
			if row.value != "" {
				fmt.Fprintf(&b, "  %s: %s\n", row.label, row.value)
			}
		}
		return b.String()
	}

	b.WriteString(titleStyle.Render(title) + "\n")
	for _, row := range rows {
		if row.value != "" {
			fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(row.label+":"), row.value)
		}
	}
	style := cardStyle
	if picked {
		style = pickedCardStyle
	}
	return style.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}

// isTerminal checks if the writer is a terminal
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	return isTerminal(w)
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	if isTerminal(os.Stdout) {
		fmt.Printf("%s %s\n", successStyle.Render("✓"), message)
	} else {
		fmt.Println(message)
	}
}

// PrintError prints an error message
func PrintError(message string) {
	if isTerminal(os.Stderr) {
		fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("✗"), message)
	} else {
		fmt.Fprintf(os.Stderr, "%s\n", message)
	}
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	if isTerminal(os.Stdout) {
		fmt.Printf("%s %s\n", progressStyle.Render("ℹ"), message)
	} else {
		fmt.Println(message)
	}
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	if isTerminal(os.Stderr) {
		fmt.Fprintf(os.Stderr, "%s %s\n", warningStyle.Render("⚠"), message)
	} else {
		fmt.Fprintf(os.Stderr, "WARNING: %s\n", message)
	}
}
