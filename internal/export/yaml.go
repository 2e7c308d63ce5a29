package export

import (
	"io"

	"github.com/iksnae/ideasurge/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter exports the idea store in YAML format
type YAMLExporter struct{}

// Export writes the whole state as one YAML document
func (e *YAMLExporter) Export(state *internal.IdeaStoreState, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()

	return enc.Encode(state)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
