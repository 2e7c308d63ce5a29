package internal

import "context"

// CategoryGroup is one category of the recycled idea library
type CategoryGroup struct {
	Category string        `json:"category" yaml:"category"`
	Ideas    []*IdeaRecord `json:"ideas" yaml:"ideas"`
}

// ListRecycled returns the recycled ideas, most recently recycled first
func ListRecycled(ctx context.Context, repo IdeaRepository) ([]*IdeaRecord, error) {
	return repo.ListByStatus(ctx, StatusRecycled)
}

// GroupByCategory groups records by category. Groups appear in the order of
// their first record and keep the record order within each group.
func GroupByCategory(records []*IdeaRecord) []CategoryGroup {
	groups := make([]CategoryGroup, 0)
	index := make(map[string]int)
	for _, rec := range records {
		category := rec.Category
		if category == "" {
			category = DefaultCategory
		}
		i, ok := index[category]
		if !ok {
			i = len(groups)
			index[category] = i
			groups = append(groups, CategoryGroup{Category: category})
		}
		groups[i].Ideas = append(groups[i].Ideas, rec)
	}
	return groups
}
