package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/ideasurge/internal"
)

// runSearch consumes a search stream, re-extracting the idea list from the
// transcript after every text delta so the status line tracks progress
func runSearch(ctx context.Context, body io.Reader, statusOut io.Writer, batch string) ([]internal.Idea, error) {
	status := internal.NewStatusLine(statusOut)
	status.Update("Researching...")

	found := 0
	dec, err := internal.ConsumeStream(ctx, body, func(ev internal.Event, dec *internal.StreamDecoder) {
		switch ev.Kind {
		case internal.EventToolCall:
			status.Update("Searching: " + ev.ToolCall.Label())
		case internal.EventTextDelta:
			if n := len(internal.ExtractIdeas(dec.Text(), batch).Ideas); n != found {
				found = n
				status.Update(fmt.Sprintf("Drafted %d idea(s)...", n))
			}
		case internal.EventError:
			internal.LogWarn("Backend error: %s", ev.Text)
		}
	})
	if internal.IsAbort(err) {
		status.Done(false, "Search cancelled")
		return nil, err
	}
	if err != nil {
		status.Done(false, "Search failed")
		return nil, err
	}

	extraction := internal.ExtractIdeas(dec.Text(), batch)
	if len(extraction.Ideas) == 0 {
		status.Done(false, "No ideas found")
		if msgs := dec.Errors(); len(msgs) > 0 {
			return nil, fmt.Errorf("backend reported: %s", strings.Join(msgs, "; "))
		}
	} else {
		status.Done(true, fmt.Sprintf("Found %d idea(s)", len(extraction.Ideas)))
	}
	internal.GetMetrics().IdeasExtractedTotal.WithLabelValues(extraction.Dialect.String()).Add(float64(len(extraction.Ideas)))
	internal.LogDebug("Extracted %d idea(s) using the %s dialect", len(extraction.Ideas), extraction.Dialect)
	return extraction.Ideas, nil
}

// runDeepDive consumes a deep-dive stream and returns its transcript
func runDeepDive(ctx context.Context, body io.Reader, statusOut io.Writer) (string, error) {
	status := internal.NewStatusLine(statusOut)
	status.Update("Researching...")

	dec, err := internal.ConsumeStream(ctx, body, func(ev internal.Event, dec *internal.StreamDecoder) {
		switch ev.Kind {
		case internal.EventToolCall:
			status.Update("Searching: " + ev.ToolCall.Label())
		case internal.EventTextDelta:
			status.Update("Writing report...")
		case internal.EventError:
			internal.LogWarn("Backend error: %s", ev.Text)
		}
	})
	if internal.IsAbort(err) {
		status.Done(false, "Deep dive cancelled")
		return "", err
	}
	if err != nil {
		status.Done(false, "Deep dive failed")
		return "", err
	}
	status.Done(true, "Deep dive received")
	return dec.Text(), nil
}
