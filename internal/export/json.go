package export

import (
	"encoding/json"
	"io"

	"github.com/iksnae/ideasurge/internal"
)

// JSONExporter exports the idea store in JSON format (pretty-printed)
type JSONExporter struct{}

// Export writes the whole state as one JSON document
func (e *JSONExporter) Export(state *internal.IdeaStoreState, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	return enc.Encode(state)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
