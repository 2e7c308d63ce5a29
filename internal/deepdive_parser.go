package internal

import "time"

// deepDiveClock stamps generatedAt on parsed reports
var deepDiveClock = time.Now

// ParseDeepDiveFromText extracts a deep-dive report for ideaID from a
// completed response. It returns nil when the response has no JSON payload or
// the payload lacks a summary or a usable section.
func ParseDeepDiveFromText(text, ideaID string) *DeepDiveResult {
	payload, ok := extractJSONPayload(StripThinkTags(text))
	if !ok {
		return nil
	}
	env, err := ValidateDeepDiveEnvelope(payload)
	if err != nil {
		LogDebug("Deep dive payload rejected for %s: %v", ideaID, err)
		return nil
	}
	return &DeepDiveResult{
		IdeaID:      ideaID,
		Summary:     env.Summary,
		Sections:    env.Sections,
		Sources:     env.Sources,
		GeneratedAt: FormatTimestamp(deepDiveClock()),
	}
}
