package internal

import (
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFingerprint(t *testing.T) {
	base := Idea{
		Title:        "PantryPal",
		Problem:      "Households waste food",
		TargetMarket: "Busy families",
		RevenueModel: "Freemium",
	}

	tests := []struct {
		name     string
		mutate   func(i Idea) Idea
		wantSame bool
	}{
		{
			name:     "identical",
			mutate:   func(i Idea) Idea { return i },
			wantSame: true,
		},
		{
			name: "case and whitespace differences",
			mutate: func(i Idea) Idea {
				i.Title = "  pantrypal "
				i.Problem = "Households\n\twaste   FOOD"
				return i
			},
			wantSame: true,
		},
		{
			name: "no-break space",
			mutate: func(i Idea) Idea {
				i.Problem = "Households\u00a0waste food"
				return i
			},
			wantSame: true,
		},
		{
			name: "vertical tab",
			mutate: func(i Idea) Idea {
				i.Problem = "Households\vwaste food"
				return i
			},
			wantSame: true,
		},
		{
			name: "ideographic space and line separator",
			mutate: func(i Idea) Idea {
				i.Problem = "Households\u3000waste\u2028food"
				return i
			},
			wantSame: true,
		},
		{
			name: "non-identity fields ignored",
			mutate: func(i Idea) Idea {
				i.ID = "123-0-abc"
				i.OneLiner = "different"
				i.MarketSignal = "different"
				i.Source = []string{"https://x"}
				i.Category = "Food"
				i.CreatedAt = "2024-01-01T00:00:00.000Z"
				return i
			},
			wantSame: true,
		},
		{
			name: "target market changes identity",
			mutate: func(i Idea) Idea {
				i.TargetMarket = "Students"
				return i
			},
			wantSame: false,
		},
		{
			name: "revenue model changes identity",
			mutate: func(i Idea) Idea {
				i.RevenueModel = "Ads"
				return i
			},
			wantSame: false,
		},
	}

	want := Fingerprint(base)
	if !regexp.MustCompile(`^[0-9a-f]{64}$`).MatchString(want) {
		t.Fatalf("Fingerprint() = %q, want 64 hex characters", want)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fingerprint(tt.mutate(base))
			if (got == want) != tt.wantSame {
				t.Errorf("Fingerprint() same = %v, want %v", got == want, tt.wantSame)
			}
		})
	}
}

func TestFingerprint_FieldBoundaries(t *testing.T) {
	a := Idea{Title: "a b", Problem: "c"}
	b := Idea{Title: "a", Problem: "b c"}
	if Fingerprint(a) == Fingerprint(b) {
		t.Error("Fingerprint() should not merge fields split on white space")
	}

	// Fields are joined with "|" unescaped, so a pipe moved across a field
	// boundary yields the same digest.
	c := Idea{Title: "a|b", Problem: "c"}
	d := Idea{Title: "a", Problem: "b|c"}
	if Fingerprint(c) != Fingerprint(d) {
		t.Error("Fingerprint() changed its field separator; stored fingerprints would no longer match")
	}
}

func TestDeduplicator_Deduplicate(t *testing.T) {
	first := CreateTestIdea(1)
	dup := first
	dup.ID = "other-id"
	dup.Title = "TEST IDEA 1"
	second := CreateTestIdea(2)

	got := NewDeduplicator().Deduplicate([]Idea{first, dup, second, first})
	want := []Idea{first, second}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Deduplicate() mismatch (-want +got):\n%s", diff)
	}

	if got := NewDeduplicator().Deduplicate(nil); len(got) != 0 {
		t.Errorf("Deduplicate(nil) = %v, want empty", got)
	}
}

func TestNormalizeSourceString(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "empty", raw: "   ", want: []string{}},
		{name: "comma separated", raw: "a, b ,c", want: []string{"a", "b", "c"}},
		{name: "newline separated", raw: "a\n\nb\n", want: []string{"a", "b"}},
		{name: "duplicates kept", raw: "a,a", want: []string{"a", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, NormalizeSourceString(tt.raw)); diff != "" {
				t.Errorf("NormalizeSourceString(%q) mismatch (-want +got):\n%s", tt.raw, diff)
			}
		})
	}
}

func TestNewIdeaRecord(t *testing.T) {
	idea := CreateTestIdea(3)
	idea.Title = "  " + idea.Title + "  "
	idea.Category = "   "
	idea.Source = nil

	now := mustTime(t, "2024-05-02T10:00:00Z")
	rec := NewIdeaRecord(idea, StatusPicked, now)

	if rec.Title != "Test Idea 3" {
		t.Errorf("Title = %q, want trimmed", rec.Title)
	}
	if rec.Category != DefaultCategory {
		t.Errorf("Category = %q, want %q", rec.Category, DefaultCategory)
	}
	if rec.Source == nil || len(rec.Source) != 0 {
		t.Errorf("Source = %#v, want empty non-nil", rec.Source)
	}
	if rec.PickedAt == nil || !rec.PickedAt.Equal(now) || rec.RecycledAt != nil {
		t.Errorf("PickedAt = %v RecycledAt = %v, want picked at %v only", rec.PickedAt, rec.RecycledAt, now)
	}
	if rec.Fingerprint != Fingerprint(idea) {
		t.Error("Fingerprint should match the idea's fingerprint")
	}

	recycled := NewIdeaRecord(idea, StatusRecycled, now)
	if recycled.RecycledAt == nil || recycled.PickedAt != nil {
		t.Errorf("recycled record timestamps = %v/%v, want recycledAt only", recycled.PickedAt, recycled.RecycledAt)
	}
	if recycled.ID == rec.ID {
		t.Error("records should get distinct ids")
	}

	back := rec.ToIdea()
	if back.CreatedAt != "2024-05-02T10:00:00.000Z" {
		t.Errorf("ToIdea().CreatedAt = %q", back.CreatedAt)
	}
}
