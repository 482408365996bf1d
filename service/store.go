package service

import (
	"context"

	"github.com/CCA-SociedadeAdvogados/legalhub-backend/model"
)

// Store is the persistence collaborator for the lifecycle and validation
// core. Two implementations exist: GORM/SQLite for production wiring and
// an in-memory store used in tests and as a config fallback.
//
// The two multi-step operations below are atomic: either every write in
// them lands or none does. That is where the core's invariants live —
// no event without its state effect, at most one non-terminal job per
// contract.
type Store interface {
	CreateContract(ctx context.Context, c *model.Contract) error
	GetContract(ctx context.Context, id string) (*model.Contract, error)
	ListContracts(ctx context.Context, tenant string) ([]*model.Contract, error)

	// AppendEvent appends the event and applies newState to the contract
	// as one atomic unit. Events are never updated or deleted.
	AppendEvent(ctx context.Context, event *model.LifecycleEvent, newState model.State) error
	ListEvents(ctx context.Context, contractID string) ([]*model.LifecycleEvent, error)
	CountEvents(ctx context.Context, contractID string) (int64, error)

	// CreateJob stores the draft extraction, creates the job and sets the
	// contract's validation status, all atomically. It fails with
	// model.ErrJobAlreadyInFlight when a non-terminal job already exists
	// for the contract: a check-and-set keyed by contract identity, so
	// two concurrent calls cannot both succeed.
	CreateJob(ctx context.Context, job *model.ExtractionJob, draft *model.Extraction, status model.ValidationStatus) error
	GetJob(ctx context.Context, id string) (*model.ExtractionJob, error)
	LatestJob(ctx context.Context, contractID string) (*model.ExtractionJob, error)

	// UpdateJob persists the job's mutated fields together with the
	// contract's validation status, atomically.
	UpdateJob(ctx context.Context, job *model.ExtractionJob, status model.ValidationStatus) error
	SetValidationStatus(ctx context.Context, contractID string, status model.ValidationStatus) error

	SaveExtraction(ctx context.Context, e *model.Extraction) error
	GetExtraction(ctx context.Context, id string) (*model.Extraction, error)

	// ReplaceDiffs swaps the job's diff set for the given one. Diffs are
	// recomputed wholesale whenever a canonical extraction is attached.
	ReplaceDiffs(ctx context.Context, jobID string, diffs []*model.Diff) error
	ListDiffs(ctx context.Context, jobID string) ([]*model.Diff, error)
}
