package testutil

import (
	"database/sql"
	"testing"
	"time"
)

// PantryPalEnvelope is a model reply carrying one idea in the JSON envelope
const PantryPalEnvelope = "<think>Looking at grocery waste threads first.</think>\n" +
	"Here are the ideas:\n" +
	"```json\n" +
	`{"ideas":[{"title":"PantryPal","oneLiner":"Tracks pantry expiry dates",` +
	`"problem":"Households waste food they forgot they bought",` +
	`"targetMarket":"Busy families","marketSignal":"r/MealPrepSunday threads",` +
	`"revenueModel":"Freemium, $4/month","source":["https://reddit.com/r/MealPrepSunday"]}]}` +
	"\n```\n"

// MarkdownIdeas is a model reply with two ideas in the bullet dialect
const MarkdownIdeas = `## 💡 InvoiceNudge
**One-liner:** Polite automatic payment reminders
**Problem:** Freelancers chase late invoices by hand
**Target market:** Freelance designers
**Market signal:** Upwork forum complaints
**Revenue model:** $9/month
**Source:** https://community.upwork.com/late, https://news.ycombinator.com/item?id=1

---

## ShiftSwap
**One-liner:** Self-serve shift trading
**Problem:** Managers spend evenings rebuilding rosters
**Target market:** Independent cafes
**Market signal:** Owner surveys
**Revenue model:** Per-location subscription
**Source:** https://example.com/survey
`

// IdeaRow is a raw idea_records row for seeding a migrated SQLite database
type IdeaRow struct {
	ID          string
	Fingerprint string
	Title       string
	Problem     string
	Source      string
	Category    string
	Status      string
	RecycledAt  time.Time
	CreatedAt   time.Time
}

// InsertIdeaRow inserts row without going through a repository, so tests can
// seed rows a repository would refuse to write
func InsertIdeaRow(t *testing.T, db *sql.DB, row IdeaRow) {
	t.Helper()
	if row.Source == "" {
		row.Source = "[]"
	}
	if row.Category == "" {
		row.Category = "Uncategorized"
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	var recycledAt interface{}
	if !row.RecycledAt.IsZero() {
		recycledAt = row.RecycledAt.UnixMilli()
	}

	insertSQL := `INSERT INTO idea_records (id, fingerprint, title, one_liner, problem, target_market,
		market_signal, revenue_model, source, category, status, picked_at, recycled_at, created_at, updated_at)
		VALUES (?, ?, ?, '', ?, '', '', '', ?, ?, ?, NULL, ?, ?, ?)`
	if _, err := db.Exec(insertSQL,
		row.ID, row.Fingerprint, row.Title, row.Problem, row.Source, row.Category, row.Status,
		recycledAt, row.CreatedAt.UnixMilli(), row.CreatedAt.UnixMilli(),
	); err != nil {
		t.Fatalf("Failed to insert idea row %s: %v", row.ID, err)
	}
}
