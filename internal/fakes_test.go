package internal

import (
	"context"
	"sync"
)

// memoryRepository is an in-memory IdeaRepository with the same sticky
// PICKED rule as the SQL implementations
type memoryRepository struct {
	mu        sync.Mutex
	byFP      map[string]*IdeaRecord
	upserts   int
	upsertErr error
	findErr   error
	pingErr   error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{byFP: make(map[string]*IdeaRecord)}
}

func (m *memoryRepository) FindByFingerprint(_ context.Context, fingerprint string) (*IdeaRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	rec, ok := m.byFP[fingerprint]
	if !ok {
		return nil, ErrRecordNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *memoryRepository) UpsertByFingerprint(_ context.Context, rec *IdeaRecord) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	if m.upsertErr != nil {
		return false, m.upsertErr
	}
	existing, ok := m.byFP[rec.Fingerprint]
	if !ok {
		cp := *rec
		m.byFP[rec.Fingerprint] = &cp
		return true, nil
	}
	switch rec.Status {
	case StatusPicked:
		existing.Status = StatusPicked
		existing.PickedAt = rec.PickedAt
		existing.RecycledAt = nil
		existing.UpdatedAt = rec.UpdatedAt
	case StatusRecycled:
		if existing.Status == StatusPicked {
			return false, nil
		}
		id, created := existing.ID, existing.CreatedAt
		*existing = *rec
		existing.ID, existing.CreatedAt = id, created
	}
	return true, nil
}

func (m *memoryRepository) GetByID(_ context.Context, id string) (*IdeaRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.byFP {
		if rec.ID == id {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, ErrRecordNotFound
}

func (m *memoryRepository) ListByStatus(_ context.Context, status IdeaStatus) ([]*IdeaRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*IdeaRecord, 0)
	for _, rec := range m.byFP {
		if rec.Status == status {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memoryRepository) Ping(context.Context) error { return m.pingErr }

func (m *memoryRepository) Close() error { return nil }

func (m *memoryRepository) status(fingerprint string) IdeaStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.byFP[fingerprint]; ok {
		return rec.Status
	}
	return ""
}

func (m *memoryRepository) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byFP)
}
