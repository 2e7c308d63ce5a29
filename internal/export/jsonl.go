package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/ideasurge/internal"
)

// JSONLExporter exports ideas in JSONL format (one idea per line)
type JSONLExporter struct{}

type jsonlLine struct {
	internal.Idea
	Picked    bool `json:"picked"`
	DeepDives int  `json:"deepDives"`
}

// Export writes every idea of the batch on its own line
func (e *JSONLExporter) Export(state *internal.IdeaStoreState, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	picked := make(map[string]bool, len(state.Picked))
	for _, id := range state.Picked {
		picked[id] = true
	}

	for _, idea := range state.Ideas {
		line := jsonlLine{
			Idea:      idea,
			Picked:    picked[idea.ID],
			DeepDives: len(state.DeepDives[idea.ID]),
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("failed to encode idea %s: %w", idea.ID, err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
