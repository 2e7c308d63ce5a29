package internal

import (
	"regexp"
	"strings"
)

var sourceDelimiter = regexp.MustCompile(`,|\n`)

// normalizeFingerprintField case-folds s and collapses runs of Unicode white
// space (NBSP, ideographic space, vertical tab and the rest) to one space
func normalizeFingerprintField(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// NormalizeSourceList trims every entry and drops empty ones, keeping order
// and duplicates
func NormalizeSourceList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// NormalizeSourceString splits a comma or newline delimited source field
func NormalizeSourceString(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	return NormalizeSourceList(sourceDelimiter.Split(raw, -1))
}

// normalizeIdea trims every text field of idea in place
func normalizeIdea(idea *Idea) {
	idea.Title = strings.TrimSpace(idea.Title)
	idea.OneLiner = strings.TrimSpace(idea.OneLiner)
	idea.Problem = strings.TrimSpace(idea.Problem)
	idea.TargetMarket = strings.TrimSpace(idea.TargetMarket)
	idea.MarketSignal = strings.TrimSpace(idea.MarketSignal)
	idea.RevenueModel = strings.TrimSpace(idea.RevenueModel)
	idea.Category = strings.TrimSpace(idea.Category)
	idea.Source = NormalizeSourceList(idea.Source)
}
