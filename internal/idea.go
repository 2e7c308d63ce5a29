package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultCategory is stored for ideas persisted without a category
const DefaultCategory = "Uncategorized"

// Idea represents a candidate SaaS concept extracted from model output
type Idea struct {
	ID           string   `json:"id" yaml:"id"`
	Title        string   `json:"title" yaml:"title"`
	OneLiner     string   `json:"oneLiner" yaml:"one_liner"`
	Problem      string   `json:"problem" yaml:"problem"`
	TargetMarket string   `json:"targetMarket" yaml:"target_market"`
	MarketSignal string   `json:"marketSignal" yaml:"market_signal"`
	RevenueModel string   `json:"revenueModel" yaml:"revenue_model"`
	Source       []string `json:"source" yaml:"source"`
	Category     string   `json:"category,omitempty" yaml:"category,omitempty"`
	CreatedAt    string   `json:"createdAt" yaml:"created_at"`
}

// IsValid reports whether the idea carries a title and a problem
func (i Idea) IsValid() bool {
	return strings.TrimSpace(i.Title) != "" && strings.TrimSpace(i.Problem) != ""
}

// CategoryOrDefault returns the trimmed category or DefaultCategory
func (i Idea) CategoryOrDefault() string {
	if c := strings.TrimSpace(i.Category); c != "" {
		return c
	}
	return DefaultCategory
}

// DeepDiveSection is one named part of a deep-dive report
type DeepDiveSection struct {
	Key     string `json:"key" yaml:"key"`
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
}

// DeepDiveResult is a research expansion of a single idea
type DeepDiveResult struct {
	IdeaID      string            `json:"ideaId" yaml:"idea_id"`
	Summary     string            `json:"summary" yaml:"summary"`
	Sections    []DeepDiveSection `json:"sections" yaml:"sections"`
	Sources     []string          `json:"sources" yaml:"sources"`
	GeneratedAt string            `json:"generatedAt" yaml:"generated_at"`
}

// IsValid reports whether the report has a summary and at least one section
func (d DeepDiveResult) IsValid() bool {
	return strings.TrimSpace(d.Summary) != "" && len(d.Sections) > 0
}

// DeepDiveFocus selects the area a deep dive prioritizes
type DeepDiveFocus string

const (
	FocusMarket  DeepDiveFocus = "market"
	FocusMVP     DeepDiveFocus = "mvp"
	FocusRisks   DeepDiveFocus = "risks"
	FocusPricing DeepDiveFocus = "pricing"
	FocusCustom  DeepDiveFocus = "custom"
)

// DeepDiveMode is either a preset focus or a free-form prompt
type DeepDiveMode string

const (
	ModePreset DeepDiveMode = "preset"
	ModeCustom DeepDiveMode = "custom"
)

// DeepDiveRequest describes what the backend should research about an idea
type DeepDiveRequest struct {
	IdeaID string        `json:"ideaId"`
	Mode   DeepDiveMode  `json:"mode"`
	Focus  DeepDiveFocus `json:"focus"`
	Prompt string        `json:"prompt,omitempty"`
}

// Validate checks mode, focus and prompt combinations
func (r DeepDiveRequest) Validate() error {
	switch r.Focus {
	case FocusMarket, FocusMVP, FocusRisks, FocusPricing, FocusCustom:
	default:
		return fmt.Errorf("unsupported focus: %q (supported: market, mvp, risks, pricing, custom)", r.Focus)
	}
	switch r.Mode {
	case ModePreset:
	case ModeCustom:
		if strings.TrimSpace(r.Prompt) == "" {
			return fmt.Errorf("custom deep dive requires a prompt")
		}
	default:
		return fmt.Errorf("unsupported mode: %q (supported: preset, custom)", r.Mode)
	}
	return nil
}

// IdeaStatus is the durable lifecycle state of a persisted idea
type IdeaStatus string

const (
	StatusPicked   IdeaStatus = "PICKED"
	StatusRecycled IdeaStatus = "RECYCLED"
)

// IdeaRecord is an idea row in the durable store, keyed by fingerprint
type IdeaRecord struct {
	ID           string     `json:"id" yaml:"id"`
	Fingerprint  string     `json:"fingerprint" yaml:"fingerprint"`
	Title        string     `json:"title" yaml:"title"`
	OneLiner     string     `json:"oneLiner" yaml:"one_liner"`
	Problem      string     `json:"problem" yaml:"problem"`
	TargetMarket string     `json:"targetMarket" yaml:"target_market"`
	MarketSignal string     `json:"marketSignal" yaml:"market_signal"`
	RevenueModel string     `json:"revenueModel" yaml:"revenue_model"`
	Source       []string   `json:"source" yaml:"source"`
	Category     string     `json:"category" yaml:"category"`
	Status       IdeaStatus `json:"status" yaml:"status"`
	PickedAt     *time.Time `json:"pickedAt,omitempty" yaml:"picked_at,omitempty"`
	RecycledAt   *time.Time `json:"recycledAt,omitempty" yaml:"recycled_at,omitempty"`
	CreatedAt    time.Time  `json:"createdAt" yaml:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" yaml:"updated_at"`
}

// NewIdeaRecord builds a record for a trimmed copy of idea in the given status
func NewIdeaRecord(idea Idea, status IdeaStatus, now time.Time) *IdeaRecord {
	normalizeIdea(&idea)
	source := idea.Source
	rec := &IdeaRecord{
		ID:           uuid.New().String(),
		Fingerprint:  Fingerprint(idea),
		Title:        idea.Title,
		OneLiner:     idea.OneLiner,
		Problem:      idea.Problem,
		TargetMarket: idea.TargetMarket,
		MarketSignal: idea.MarketSignal,
		RevenueModel: idea.RevenueModel,
		Source:       source,
		Category:     idea.CategoryOrDefault(),
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	switch status {
	case StatusPicked:
		rec.PickedAt = &now
	case StatusRecycled:
		rec.RecycledAt = &now
	}
	return rec
}

// ToIdea converts a stored record back to its idea form
func (r *IdeaRecord) ToIdea() Idea {
	source := make([]string, len(r.Source))
	copy(source, r.Source)
	return Idea{
		ID:           r.ID,
		Title:        r.Title,
		OneLiner:     r.OneLiner,
		Problem:      r.Problem,
		TargetMarket: r.TargetMarket,
		MarketSignal: r.MarketSignal,
		RevenueModel: r.RevenueModel,
		Source:       source,
		Category:     r.Category,
		CreatedAt:    FormatTimestamp(r.CreatedAt),
	}
}

// FormatTimestamp renders t as a UTC ISO-8601 timestamp with milliseconds
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
