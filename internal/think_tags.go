package internal

import (
	"regexp"
	"strings"
)

// reasoningTags are the markup names models use for internal reasoning
var reasoningTags = []string{"think", "thinking", "reasoning", "reflection"}

var (
	reasoningOpenTag  = regexp.MustCompile(`(?i)<(` + strings.Join(reasoningTags, "|") + `)>`)
	reasoningCloseTag = regexp.MustCompile(`(?i)</(?:` + strings.Join(reasoningTags, "|") + `)>`)
	reasoningCloseFor = buildCloseTagPatterns()
)

func buildCloseTagPatterns() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(reasoningTags))
	for _, tag := range reasoningTags {
		patterns[tag] = regexp.MustCompile(`(?i)</` + tag + `>`)
	}
	return patterns
}

// StripThinkTags removes reasoning blocks from model output. Complete blocks
// are dropped, text after an unterminated opening tag is cut, and stray
// closing tags are removed. The result is stable under repeated application.
func StripThinkTags(text string) string {
	for {
		next := stripReasoningOnce(text)
		if next == text {
			return next
		}
		text = next
	}
}

func stripReasoningOnce(text string) string {
	stripped := removeReasoningBlocks(text)
	if loc := reasoningOpenTag.FindStringIndex(stripped); loc != nil {
		stripped = stripped[:loc[0]]
	}
	stripped = reasoningCloseTag.ReplaceAllString(stripped, "")
	return strings.TrimSpace(stripped)
}

// removeReasoningBlocks drops every <tag>...</tag> pair, matching the closing
// tag to the name of the opening one. Unpaired opening tags are kept.
func removeReasoningBlocks(text string) string {
	var b strings.Builder
	rest := text
	for {
		loc := reasoningOpenTag.FindStringSubmatchIndex(rest)
		if loc == nil {
			b.WriteString(rest)
			return b.String()
		}
		name := strings.ToLower(rest[loc[2]:loc[3]])
		end := reasoningCloseFor[name].FindStringIndex(rest[loc[1]:])
		if end == nil {
			b.WriteString(rest[:loc[1]])
			rest = rest[loc[1]:]
			continue
		}
		b.WriteString(rest[:loc[0]])
		rest = rest[loc[1]+end[1]:]
	}
}
