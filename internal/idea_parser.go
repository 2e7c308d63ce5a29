package internal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"
)

// Dialect identifies which textual format produced an extraction
type Dialect int

const (
	DialectNone Dialect = iota
	DialectJSON
	DialectMarkdown
)

func (d Dialect) String() string {
	switch d {
	case DialectJSON:
		return "json"
	case DialectMarkdown:
		return "markdown"
	default:
		return "none"
	}
}

// Extraction is the result of parsing a transcript for ideas, tagged with the
// dialect that produced it
type Extraction struct {
	Dialect Dialect
	Ideas   []Idea
}

// ideaDialect parses a think-stripped transcript into unfiltered ideas
type ideaDialect interface {
	Dialect() Dialect
	Parse(text, createdAt string) []Idea
}

// ideaDialects lists the supported formats in priority order
var ideaDialects = []ideaDialect{jsonIdeaDialect{}, markdownIdeaDialect{}}

// ExtractIdeas recomputes the current idea list from the full transcript.
// The first dialect yielding at least one valid idea wins.
func ExtractIdeas(text, createdAt string) Extraction {
	clean := StripThinkTags(text)
	if clean == "" {
		return Extraction{Dialect: DialectNone, Ideas: []Idea{}}
	}
	for _, dialect := range ideaDialects {
		if ideas := validIdeas(dialect.Parse(clean, createdAt)); len(ideas) > 0 {
			return Extraction{Dialect: dialect.Dialect(), Ideas: ideas}
		}
	}
	return Extraction{Dialect: DialectNone, Ideas: []Idea{}}
}

// ParseIdeasFromText returns the valid ideas in text, or an empty list
func ParseIdeasFromText(text, createdAt string) []Idea {
	return ExtractIdeas(text, createdAt).Ideas
}

// NewBatchTimestamp formats the creation stamp shared by one batch of ideas
func NewBatchTimestamp(t time.Time) string {
	return FormatTimestamp(t)
}

func validIdeas(ideas []Idea) []Idea {
	valid := make([]Idea, 0, len(ideas))
	for _, idea := range ideas {
		if idea.IsValid() {
			valid = append(valid, idea)
		}
	}
	return valid
}

var fencedBlock = regexp.MustCompile("(?is)```(?:json)?\\s*(.*?)\\s*```")

// extractJSONPayload returns the text between the first '{' and the last '}'
// of the first fenced block, or of the whole text when there is none
func extractJSONPayload(text string) (string, bool) {
	candidate := strings.TrimSpace(text)
	if m := fencedBlock.FindStringSubmatch(candidate); m != nil {
		candidate = m[1]
	}
	start := strings.Index(candidate, "{")
	end := strings.LastIndex(candidate, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return candidate[start : end+1], true
}

type jsonIdeaDialect struct{}

func (jsonIdeaDialect) Dialect() Dialect { return DialectJSON }

func (jsonIdeaDialect) Parse(text, createdAt string) []Idea {
	payload, ok := extractJSONPayload(text)
	if !ok {
		return nil
	}
	env, err := ValidateIdeaEnvelope(payload)
	if err != nil {
		LogDebug("JSON idea dialect rejected payload: %v", err)
		return nil
	}

	batchMillis := batchMillis(createdAt)
	ideas := make([]Idea, 0, len(env.Drafts))
	for _, draft := range env.Drafts {
		idea := draft.Idea
		if idea.Title == "" {
			idea.Title = fmt.Sprintf("SaaS Idea %d", draft.Index+1)
		}
		idea.CreatedAt = createdAt
		idea.ID = ideaID(createdAt, batchMillis, draft.Index, idea.Title, idea.Problem)
		ideas = append(ideas, idea)
	}
	return ideas
}

var (
	markdownRule    = regexp.MustCompile(`(?m)^[ \t]*---[ \t]*$`)
	markdownHeading = regexp.MustCompile(`(?m)^[ \t]*#{2,}[ \t]+(?:💡[ \t]*)?(.*?)[ \t]*$`)
	markdownLabels  = map[string]*regexp.Regexp{
		"oneLiner":     markdownLabel("One-liner"),
		"problem":      markdownLabel("Problem"),
		"targetMarket": markdownLabel("Target market"),
		"marketSignal": markdownLabel("Market signal"),
		"revenueModel": markdownLabel("Revenue model"),
		"source":       markdownLabel("Source"),
	}
)

func markdownLabel(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)\*\*` + regexp.QuoteMeta(label) + `:\*\*[ \t]*(.*?)[ \t]*$`)
}

type markdownIdeaDialect struct{}

func (markdownIdeaDialect) Dialect() Dialect { return DialectMarkdown }

func (markdownIdeaDialect) Parse(text, createdAt string) []Idea {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	batchMillis := batchMillis(createdAt)

	var ideas []Idea
	index := 0
	for _, section := range markdownRule.Split(text, -1) {
		if !strings.Contains(section, "##") {
			continue
		}
		title := "SaaS Idea"
		if m := markdownHeading.FindStringSubmatch(section); m != nil && m[1] != "" {
			title = m[1]
		}
		idea := Idea{
			Title:        title,
			OneLiner:     markdownField(section, "oneLiner"),
			Problem:      markdownField(section, "problem"),
			TargetMarket: markdownField(section, "targetMarket"),
			MarketSignal: markdownField(section, "marketSignal"),
			RevenueModel: markdownField(section, "revenueModel"),
			Source:       NormalizeSourceString(markdownField(section, "source")),
			CreatedAt:    createdAt,
		}
		idea.ID = ideaID(createdAt, batchMillis, index, idea.Title, idea.Problem)
		ideas = append(ideas, idea)
		index++
	}
	return ideas
}

func markdownField(section, field string) string {
	if m := markdownLabels[field].FindStringSubmatch(section); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// batchMillis returns createdAt as Unix milliseconds, or the current time
// when createdAt does not parse
func batchMillis(createdAt string) int64 {
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		return t.UnixMilli()
	}
	return time.Now().UnixMilli()
}

// ideaID combines the batch time, the position in the batch and a short hash
// of the identifying text
func ideaID(createdAt string, batchMillis int64, index int, title, problem string) string {
	seed := fmt.Sprintf("%s-%d-%s-%s", createdAt, index, title, problem)
	return fmt.Sprintf("%d-%d-%s", batchMillis, index, shortHash(seed))
}

// shortHash is a 31-multiplier rolling hash over UTF-16 code units, rendered
// in base 36 and cut to seven characters
func shortHash(input string) string {
	var h int32
	for _, unit := range utf16.Encode([]rune(input)) {
		h = h*31 + int32(unit)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	s := strconv.FormatInt(v, 36)
	if len(s) > 7 {
		s = s[:7]
	}
	return s
}
