package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/ideasurge/internal"
)

// ErrUnsupportedFormat is returned by NewExporter for unknown formats
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Formats lists the canonical format names accepted by NewExporter
var Formats = []string{"jsonl", "md", "yaml", "json"}

// Exporter writes a session's ideas, picks and deep dives in one format
type Exporter interface {
	Export(state *internal.IdeaStoreState, w io.Writer) error
	Extension() string
}

// NewExporter returns the exporter for format; names are case-insensitive
// and "markdown" and "yml" are accepted as aliases
func NewExporter(format string) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, format, strings.Join(Formats, ", "))
	}
}
