package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/CCA-SociedadeAdvogados/legalhub-backend/model"
)

// MemoryStore is a mutex-guarded in-memory Store. Used by tests and as
// the database.driver=memory configuration for local development.
type MemoryStore struct {
	mu          sync.RWMutex
	contracts   map[string]*model.Contract
	events      map[string][]*model.LifecycleEvent // by contract ID, insertion order
	jobs        map[string]*model.ExtractionJob
	extractions map[string]*model.Extraction
	diffs       map[string][]*model.Diff // by job ID
	seq         int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		contracts:   make(map[string]*model.Contract),
		events:      make(map[string][]*model.LifecycleEvent),
		jobs:        make(map[string]*model.ExtractionJob),
		extractions: make(map[string]*model.Extraction),
		diffs:       make(map[string][]*model.Diff),
	}
}

func (s *MemoryStore) CreateContract(_ context.Context, c *model.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.contracts[c.ID]; exists {
		return fmt.Errorf("contract %s already exists", c.ID)
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	cp := *c
	s.contracts[c.ID] = &cp
	return nil
}

func (s *MemoryStore) GetContract(_ context.Context, id string) (*model.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contracts[id]
	if !ok {
		return nil, fmt.Errorf("contract %s: %w", id, model.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) ListContracts(_ context.Context, tenant string) ([]*model.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Contract
	for _, c := range s.contracts {
		if c.Tenant == tenant {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) AppendEvent(_ context.Context, event *model.LifecycleEvent, newState model.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contracts[event.ContractID]
	if !ok {
		return fmt.Errorf("contract %s: %w", event.ContractID, model.ErrNotFound)
	}

	s.seq++
	event.Seq = s.seq
	event.CreatedAt = time.Now()
	cp := *event
	s.events[event.ContractID] = append(s.events[event.ContractID], &cp)

	c.State = newState
	c.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) ListEvents(_ context.Context, contractID string) ([]*model.LifecycleEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.events[contractID]
	out := make([]*model.LifecycleEvent, len(events))
	for i, e := range events {
		cp := *e
		out[i] = &cp
	}
	// Presentation order: occurred_at descending, ties broken by
	// insertion order (newest first).
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.After(out[j].OccurredAt)
		}
		return out[i].Seq > out[j].Seq
	})
	return out, nil
}

func (s *MemoryStore) CountEvents(_ context.Context, contractID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.events[contractID])), nil
}

func (s *MemoryStore) CreateJob(_ context.Context, job *model.ExtractionJob, draft *model.Extraction, status model.ValidationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contracts[job.ContractID]
	if !ok {
		return fmt.Errorf("contract %s: %w", job.ContractID, model.ErrNotFound)
	}

	// Check-and-set under the store lock: the in-flight check and the
	// insert are one critical section.
	for _, existing := range s.jobs {
		if existing.ContractID == job.ContractID && !existing.Status.IsTerminal() {
			return fmt.Errorf("contract %s: %w", job.ContractID, model.ErrJobAlreadyInFlight)
		}
	}

	draft.CreatedAt = time.Now()
	dcp := *draft
	s.extractions[draft.ID] = &dcp

	jcp := *job
	s.jobs[job.ID] = &jcp

	c.ValidationStatus = status
	c.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) GetJob(_ context.Context, id string) (*model.ExtractionJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", id, model.ErrNotFound)
	}
	cp := *j
	return &cp, nil
}

func (s *MemoryStore) LatestJob(_ context.Context, contractID string) (*model.ExtractionJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *model.ExtractionJob
	for _, j := range s.jobs {
		if j.ContractID != contractID {
			continue
		}
		if latest == nil || j.StartedAt.After(latest.StartedAt) {
			latest = j
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("no job for contract %s: %w", contractID, model.ErrNotFound)
	}
	cp := *latest
	return &cp, nil
}

func (s *MemoryStore) UpdateJob(_ context.Context, job *model.ExtractionJob, status model.ValidationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.ID]; !ok {
		return fmt.Errorf("job %s: %w", job.ID, model.ErrNotFound)
	}
	cp := *job
	s.jobs[job.ID] = &cp

	if c, ok := s.contracts[job.ContractID]; ok {
		c.ValidationStatus = status
		c.UpdatedAt = time.Now()
	}
	return nil
}

func (s *MemoryStore) SetValidationStatus(_ context.Context, contractID string, status model.ValidationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contracts[contractID]
	if !ok {
		return fmt.Errorf("contract %s: %w", contractID, model.ErrNotFound)
	}
	c.ValidationStatus = status
	c.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) SaveExtraction(_ context.Context, e *model.Extraction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.CreatedAt = time.Now()
	cp := *e
	s.extractions[e.ID] = &cp
	return nil
}

func (s *MemoryStore) GetExtraction(_ context.Context, id string) (*model.Extraction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.extractions[id]
	if !ok {
		return nil, fmt.Errorf("extraction %s: %w", id, model.ErrNotFound)
	}
	cp := *e
	return &cp, nil
}

func (s *MemoryStore) ReplaceDiffs(_ context.Context, jobID string, diffs []*model.Diff) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.Diff, len(diffs))
	for i, d := range diffs {
		cp := *d
		out[i] = &cp
	}
	s.diffs[jobID] = out
	return nil
}

func (s *MemoryStore) ListDiffs(_ context.Context, jobID string) ([]*model.Diff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	diffs := s.diffs[jobID]
	out := make([]*model.Diff, len(diffs))
	for i, d := range diffs {
		cp := *d
		out[i] = &cp
	}
	return out, nil
}
