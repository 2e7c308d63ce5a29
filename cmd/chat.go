package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/iksnae/ideasurge/internal"
	"github.com/spf13/cobra"
)

var chatJSON bool

var chatCmd = &cobra.Command{
	Use:   "chat <idea-id|number> [message...]",
	Short: "Brainstorm an idea with the assistant",
	Long: `Continue the brainstorm conversation about one idea.

The idea is looked up in the current batch first, then in the library of
saved ideas. Its latest deep dive, if any, is sent along as context.

With a message, the message and the assistant's reply are appended to the
conversation. Without one, the conversation so far is printed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		a, err := openApp(ctx, false)
		if err != nil {
			return err
		}
		defer a.Close()

		idea, err := resolveChatIdea(ctx, a, args[0])
		if err != nil {
			return err
		}

		prompt := strings.TrimSpace(strings.Join(args[1:], " "))
		if prompt == "" {
			history := a.store.ChatByIdeaID(idea.ID)
			if chatJSON {
				return writeJSON(cmd.OutOrStdout(), history)
			}
			printChat(cmd.OutOrStdout(), idea, history)
			return nil
		}

		userMsg := internal.NewChatMessage(internal.ChatRoleUser, prompt, time.Now())
		if err := a.store.AddChatMessage(idea.ID, userMsg); err != nil {
			return err
		}

		var deepDive *internal.DeepDiveResult
		if dives := a.store.DeepDivesByIdeaID(idea.ID); len(dives) > 0 {
			deepDive = &dives[0]
		}

		var reply string
		err = internal.ShowProgress(ctx, fmt.Sprintf("Brainstorming %q", idea.Title), func() error {
			var chatErr error
			reply, chatErr = streamClient().Chat(ctx, idea, deepDive, a.store.ChatByIdeaID(idea.ID))
			return chatErr
		})
		if internal.IsAbort(err) || ctx.Err() != nil {
			internal.PrintWarning("Brainstorm cancelled")
			return nil
		}
		if err != nil {
			return err
		}

		assistantMsg := internal.NewChatMessage(internal.ChatRoleAssistant, reply, time.Now())
		if err := a.store.AddChatMessage(idea.ID, assistantMsg); err != nil {
			return err
		}
		if chatJSON {
			return writeJSON(cmd.OutOrStdout(), assistantMsg)
		}
		fmt.Fprintln(cmd.OutOrStdout(), wrapText(reply, 80))
		return nil
	},
}

// resolveChatIdea finds ref in the current batch, falling back to the
// library by record id
func resolveChatIdea(ctx context.Context, a *app, ref string) (internal.Idea, error) {
	idea, err := resolveIdea(a.store, ref)
	if err == nil {
		return idea, nil
	}
	rec, repoErr := a.repo.GetByID(ctx, strings.TrimSpace(ref))
	if repoErr != nil {
		if !errors.Is(repoErr, internal.ErrRecordNotFound) {
			internal.LogDebug("Library lookup for %s failed: %v", ref, repoErr)
		}
		return internal.Idea{}, err
	}
	return rec.ToIdea(), nil
}

// printChat writes the conversation about idea, oldest message first
func printChat(w io.Writer, idea internal.Idea, history []internal.ChatMessage) {
	fmt.Fprintf(w, "Brainstorm: %s\n", idea.Title)
	if len(history) == 0 {
		fmt.Fprintln(w, "No messages yet. Add one with: ideasurge chat <idea> <message>")
		return
	}
	for _, msg := range history {
		fmt.Fprintln(w)
		label := "You"
		if msg.Role == internal.ChatRoleAssistant {
			label = "Assistant"
		}
		fmt.Fprintf(w, "%s %s\n", label, dimStyle.Render(msg.CreatedAt))
		fmt.Fprintln(w, wrapText(msg.Content, 80))
	}
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().BoolVar(&chatJSON, "json", false, "Print messages as JSON")
}
