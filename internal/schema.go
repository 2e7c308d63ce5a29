package internal

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ideaTextFields maps JSON keys of an idea to their struct setters
var ideaTextFields = []struct {
	key string
	set func(*Idea, string)
}{
	{"title", func(i *Idea, v string) { i.Title = v }},
	{"oneLiner", func(i *Idea, v string) { i.OneLiner = v }},
	{"problem", func(i *Idea, v string) { i.Problem = v }},
	{"targetMarket", func(i *Idea, v string) { i.TargetMarket = v }},
	{"marketSignal", func(i *Idea, v string) { i.MarketSignal = v }},
	{"revenueModel", func(i *Idea, v string) { i.RevenueModel = v }},
}

// IdeaDraft is one element of a model-produced idea envelope. Index is the
// element's position in the envelope array.
type IdeaDraft struct {
	Index int
	Idea  Idea
}

// IdeaEnvelope is the validated form of {"ideas": [...]}
type IdeaEnvelope struct {
	Drafts []IdeaDraft
}

// DeepDiveEnvelope is the validated form of a deep-dive response
type DeepDiveEnvelope struct {
	Summary  string
	Sections []DeepDiveSection
	Sources  []string
}

// ValidateIdeaEnvelope checks a model-produced idea envelope. Every field of
// an element is optional but must be a string when present; source may be a
// string or an array of strings. Elements that break those rules are skipped.
func ValidateIdeaEnvelope(payload string) (*IdeaEnvelope, error) {
	root, err := parseJSONObject("idea-envelope", payload)
	if err != nil {
		return nil, err
	}
	items := root.Get("ideas")
	if !items.IsArray() {
		return nil, &SchemaError{Path: "ideas", Reason: "expected array"}
	}

	env := &IdeaEnvelope{}
	for index, item := range items.Array() {
		idea, err := validateIdeaDraft(item, fmt.Sprintf("ideas.%d", index))
		if err != nil {
			LogDebug("Skipping idea element: %v", err)
			continue
		}
		env.Drafts = append(env.Drafts, IdeaDraft{Index: index, Idea: idea})
	}
	return env, nil
}

func validateIdeaDraft(item gjson.Result, path string) (Idea, error) {
	var idea Idea
	if !item.IsObject() {
		return idea, &SchemaError{Path: path, Reason: "expected object"}
	}
	for _, field := range ideaTextFields {
		v := item.Get(field.key)
		if !v.Exists() || v.Type == gjson.Null {
			continue
		}
		if v.Type != gjson.String {
			return idea, &SchemaError{Path: path + "." + field.key, Reason: "expected string"}
		}
		field.set(&idea, strings.TrimSpace(v.String()))
	}

	source := item.Get("source")
	switch {
	case !source.Exists() || source.Type == gjson.Null:
		idea.Source = []string{}
	case source.Type == gjson.String:
		idea.Source = NormalizeSourceString(source.String())
	case source.IsArray():
		list, err := stringArray(source, path+".source")
		if err != nil {
			return idea, err
		}
		idea.Source = NormalizeSourceList(list)
	default:
		return idea, &SchemaError{Path: path + ".source", Reason: "expected string or array of strings"}
	}
	return idea, nil
}

// ValidateDeepDiveEnvelope checks a model-produced deep-dive report. The
// summary must be a non-empty string and at least one section must carry a
// string title and content; malformed sections are dropped before keys are
// synthesized.
func ValidateDeepDiveEnvelope(payload string) (*DeepDiveEnvelope, error) {
	root, err := parseJSONObject("deep-dive-envelope", payload)
	if err != nil {
		return nil, err
	}

	summary := root.Get("summary")
	if summary.Type != gjson.String || strings.TrimSpace(summary.String()) == "" {
		return nil, &SchemaError{Path: "summary", Reason: "expected non-empty string"}
	}

	rawSections := root.Get("sections")
	if !rawSections.IsArray() {
		return nil, &SchemaError{Path: "sections", Reason: "expected array"}
	}
	sections := make([]DeepDiveSection, 0)
	for _, s := range rawSections.Array() {
		title, content := s.Get("title"), s.Get("content")
		if !s.IsObject() || title.Type != gjson.String || content.Type != gjson.String {
			continue
		}
		key := ""
		if k := s.Get("key"); k.Type == gjson.String {
			key = strings.TrimSpace(k.String())
		}
		if key == "" {
			key = fmt.Sprintf("section-%d", len(sections)+1)
		}
		sections = append(sections, DeepDiveSection{
			Key:     key,
			Title:   strings.TrimSpace(title.String()),
			Content: strings.TrimSpace(content.String()),
		})
	}
	if len(sections) == 0 {
		return nil, &SchemaError{Path: "sections", Reason: "expected at least one section with title and content"}
	}

	sources := []string{}
	if raw := root.Get("sources"); raw.IsArray() {
		for _, s := range raw.Array() {
			if v := strings.TrimSpace(s.String()); v != "" {
				sources = append(sources, v)
			}
		}
	}

	return &DeepDiveEnvelope{
		Summary:  strings.TrimSpace(summary.String()),
		Sections: sections,
		Sources:  sources,
	}, nil
}

// ValidateIdea checks the transport form of an idea: every text field,
// id and createdAt must be present strings and source an array of strings.
// category is optional.
func ValidateIdea(raw gjson.Result) (Idea, error) {
	var idea Idea
	if !raw.IsObject() {
		return idea, &SchemaError{Path: "idea", Reason: "expected object"}
	}
	required := append([]struct {
		key string
		set func(*Idea, string)
	}{
		{"id", func(i *Idea, v string) { i.ID = v }},
		{"createdAt", func(i *Idea, v string) { i.CreatedAt = v }},
	}, ideaTextFields...)
	for _, field := range required {
		v := raw.Get(field.key)
		if v.Type != gjson.String {
			return idea, &SchemaError{Path: "idea." + field.key, Reason: "expected string"}
		}
		field.set(&idea, v.String())
	}

	source := raw.Get("source")
	if !source.IsArray() {
		return idea, &SchemaError{Path: "idea.source", Reason: "expected array of strings"}
	}
	list, err := stringArray(source, "idea.source")
	if err != nil {
		return idea, err
	}
	idea.Source = list

	if c := raw.Get("category"); c.Exists() && c.Type != gjson.Null {
		if c.Type != gjson.String {
			return idea, &SchemaError{Path: "idea.category", Reason: "expected string"}
		}
		idea.Category = c.String()
	}
	return idea, nil
}

// ValidateDeepDive checks the stored form of a deep-dive result
func ValidateDeepDive(raw gjson.Result) (DeepDiveResult, error) {
	var result DeepDiveResult
	if !raw.IsObject() {
		return result, &SchemaError{Path: "deepDive", Reason: "expected object"}
	}
	for key, dst := range map[string]*string{
		"ideaId":      &result.IdeaID,
		"summary":     &result.Summary,
		"generatedAt": &result.GeneratedAt,
	} {
		v := raw.Get(key)
		if v.Type != gjson.String {
			return result, &SchemaError{Path: "deepDive." + key, Reason: "expected string"}
		}
		*dst = v.String()
	}

	sections := raw.Get("sections")
	if !sections.IsArray() {
		return result, &SchemaError{Path: "deepDive.sections", Reason: "expected array"}
	}
	for i, s := range sections.Array() {
		key, title, content := s.Get("key"), s.Get("title"), s.Get("content")
		if key.Type != gjson.String || title.Type != gjson.String || content.Type != gjson.String {
			return result, &SchemaError{Path: fmt.Sprintf("deepDive.sections.%d", i), Reason: "expected key, title and content strings"}
		}
		result.Sections = append(result.Sections, DeepDiveSection{Key: key.String(), Title: title.String(), Content: content.String()})
	}

	sources := raw.Get("sources")
	if !sources.IsArray() {
		return result, &SchemaError{Path: "deepDive.sources", Reason: "expected array of strings"}
	}
	list, err := stringArray(sources, "deepDive.sources")
	if err != nil {
		return result, err
	}
	result.Sources = list

	if !result.IsValid() {
		return result, &SchemaError{Path: "deepDive", Reason: "summary and at least one section are required"}
	}
	return result, nil
}

func parseJSONObject(source, payload string) (gjson.Result, error) {
	if !gjson.Valid(payload) {
		return gjson.Result{}, &ParseError{Source: source, Key: "payload", Err: fmt.Errorf("invalid JSON")}
	}
	root := gjson.Parse(payload)
	if !root.IsObject() {
		return gjson.Result{}, &SchemaError{Path: "$", Reason: "expected object"}
	}
	return root, nil
}

func stringArray(raw gjson.Result, path string) ([]string, error) {
	items := raw.Array()
	out := make([]string, 0, len(items))
	for i, item := range items {
		if item.Type != gjson.String {
			return nil, &SchemaError{Path: fmt.Sprintf("%s.%d", path, i), Reason: "expected string"}
		}
		out = append(out, item.String())
	}
	return out, nil
}
