package internal

import (
	"fmt"
)

const testBatchTimestamp = "2024-05-01T12:00:00.000Z"

// CreateTestIdea creates a valid idea with sample data, distinct per n
func CreateTestIdea(n int) Idea {
	title := fmt.Sprintf("Test Idea %d", n)
	problem := fmt.Sprintf("Teams lose hours on manual task %d", n)
	return Idea{
		ID:           ideaID(testBatchTimestamp, batchMillis(testBatchTimestamp), n, title, problem),
		Title:        title,
		OneLiner:     fmt.Sprintf("Automates task %d for small teams", n),
		Problem:      problem,
		TargetMarket: "Small agencies",
		MarketSignal: "Forum threads asking for a fix",
		RevenueModel: "Subscription, $19/month",
		Source:       []string{fmt.Sprintf("https://example.com/thread/%d", n)},
		CreatedAt:    testBatchTimestamp,
	}
}

// CreateTestIdeas creates count distinct test ideas
func CreateTestIdeas(count int) []Idea {
	ideas := make([]Idea, 0, count)
	for i := 0; i < count; i++ {
		ideas = append(ideas, CreateTestIdea(i))
	}
	return ideas
}

// CreateTestDeepDive creates a valid deep dive for the idea with id
func CreateTestDeepDive(id string) DeepDiveResult {
	return DeepDiveResult{
		IdeaID:  id,
		Summary: "Viable niche with paying customers",
		Sections: []DeepDiveSection{
			{Key: "market", Title: "Market", Content: "Roughly 40k agencies in the segment."},
			{Key: "mvp", Title: "MVP", Content: "Browser extension plus a dashboard."},
		},
		Sources:     []string{"https://example.com/report"},
		GeneratedAt: "2024-05-01T12:05:00.000Z",
	}
}

// CreateTestIdeaStoreState creates a state holding count ideas; the first
// idea is picked and has one deep dive
func CreateTestIdeaStoreState(count int) *IdeaStoreState {
	state := newIdeaStoreState()
	state.Ideas = CreateTestIdeas(count)
	if count > 0 {
		first := state.Ideas[0].ID
		state.Picked = []string{first}
		state.DeepDives[first] = []DeepDiveResult{CreateTestDeepDive(first)}
	}
	return state
}
