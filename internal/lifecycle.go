package internal

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	opPick    = "pick"
	opRecycle = "recycle"
)

// RecycleReport counts the outcome of a recycle batch
type RecycleReport struct {
	Recycled      int `json:"recycled"`
	SkippedPicked int `json:"skippedPicked"`
}

// Lifecycle moves ideas between the session batch and the durable store.
// Picked ideas never return to RECYCLED.
type Lifecycle struct {
	store         SessionStore
	repo          IdeaRepository
	tasks         *Dispatcher
	recycleOnPick bool
	now           func() time.Time
}

// LifecycleOption configures a Lifecycle
type LifecycleOption func(*Lifecycle)

// WithRecycleOnPick recycles the unpicked companions of a batch as soon as
// one idea is picked, instead of waiting for the next search
func WithRecycleOnPick(enabled bool) LifecycleOption {
	return func(l *Lifecycle) { l.recycleOnPick = enabled }
}

// WithClock overrides the time source used for pickedAt and recycledAt
func WithClock(now func() time.Time) LifecycleOption {
	return func(l *Lifecycle) { l.now = now }
}

// NewLifecycle wires a lifecycle over its collaborators
func NewLifecycle(store SessionStore, repo IdeaRepository, tasks *Dispatcher, opts ...LifecycleOption) *Lifecycle {
	l := &Lifecycle{
		store: store,
		repo:  repo,
		tasks: tasks,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// BeginSearch submits the unpicked ideas of the current batch for recycling
// and returns how many were submitted. It does not wait for the writes.
func (l *Lifecycle) BeginSearch(ctx context.Context) int {
	pending := l.unpicked("")
	if len(pending) == 0 {
		return 0
	}
	l.submitRecycle(ctx, pending)
	return len(pending)
}

// CompleteSearch replaces the session batch with ideas
func (l *Lifecycle) CompleteSearch(ideas []Idea) error {
	if ideas == nil {
		ideas = []Idea{}
	}
	return l.store.SaveIdeas(ideas)
}

// Pick marks id as picked in the session and persists it in the background
func (l *Lifecycle) Pick(ctx context.Context, id string) (Idea, error) {
	idea, ok := l.store.IdeaByID(id)
	if !ok {
		return Idea{}, fmt.Errorf("%w: %s", ErrIdeaNotFound, id)
	}
	if err := l.store.MarkPicked(id); err != nil {
		return Idea{}, err
	}

	l.tasks.Submit(ctx, opPick, func(ctx context.Context) error {
		return l.MarkPicked(ctx, idea)
	})

	if l.recycleOnPick {
		if companions := l.unpicked(id); len(companions) > 0 {
			l.submitRecycle(ctx, companions)
		}
	}
	return idea, nil
}

// MarkPicked upserts idea as PICKED
func (l *Lifecycle) MarkPicked(ctx context.Context, idea Idea) error {
	rec := NewIdeaRecord(idea, StatusPicked, l.now())
	if _, err := l.repo.UpsertByFingerprint(ctx, rec); err != nil {
		return &PersistenceError{Op: opPick, Fingerprint: rec.Fingerprint, Err: err}
	}
	LogDebug("Marked idea %q picked", idea.Title)
	return nil
}

// RecycleIdeas upserts every idea as RECYCLED unless its fingerprint is
// already PICKED. Failures for one idea do not stop the rest; they are
// joined into the returned error.
func (l *Lifecycle) RecycleIdeas(ctx context.Context, ideas []Idea) (RecycleReport, error) {
	var (
		report RecycleReport
		errs   []error
	)
	now := l.now()
	for _, idea := range NewDeduplicator().Deduplicate(ideas) {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		fingerprint := Fingerprint(idea)
		existing, err := l.repo.FindByFingerprint(ctx, fingerprint)
		switch {
		case err == nil && existing.Status == StatusPicked:
			report.SkippedPicked++
			continue
		case err != nil && !errors.Is(err, ErrRecordNotFound):
			errs = append(errs, &PersistenceError{Op: opRecycle, Fingerprint: fingerprint, Err: err})
			continue
		}

		applied, err := l.repo.UpsertByFingerprint(ctx, NewIdeaRecord(idea, StatusRecycled, now))
		if err != nil {
			errs = append(errs, &PersistenceError{Op: opRecycle, Fingerprint: fingerprint, Err: err})
			continue
		}
		if applied {
			report.Recycled++
		} else {
			report.SkippedPicked++
		}
	}
	return report, errors.Join(errs...)
}

// CompleteDeepDive parses a finished deep-dive transcript for ideaID and
// stores the report in the session
func (l *Lifecycle) CompleteDeepDive(ideaID, text string) (DeepDiveResult, error) {
	counter := GetMetrics().DeepDivesTotal
	result := ParseDeepDiveFromText(text, ideaID)
	if result == nil {
		counter.WithLabelValues("invalid").Inc()
		return DeepDiveResult{}, ErrDeepDiveContract
	}
	if err := l.store.AddDeepDive(*result); err != nil {
		counter.WithLabelValues("error").Inc()
		return DeepDiveResult{}, err
	}
	counter.WithLabelValues("ok").Inc()
	return *result, nil
}

func (l *Lifecycle) submitRecycle(ctx context.Context, ideas []Idea) {
	l.tasks.Submit(ctx, opRecycle, func(ctx context.Context) error {
		report, err := l.RecycleIdeas(ctx, ideas)
		LogDebug("Recycled %d ideas, %d already picked", report.Recycled, report.SkippedPicked)
		return err
	})
}

// unpicked returns the batch minus picked ids and except, deduplicated
func (l *Lifecycle) unpicked(except string) []Idea {
	picked := make(map[string]bool)
	for _, id := range l.store.PickedIDs() {
		picked[id] = true
	}
	var out []Idea
	for _, idea := range l.store.Ideas() {
		if picked[idea.ID] || idea.ID == except {
			continue
		}
		out = append(out, idea)
	}
	return NewDeduplicator().Deduplicate(out)
}
