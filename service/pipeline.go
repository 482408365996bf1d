package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/CCA-SociedadeAdvogados/legalhub-backend/config"
	"github.com/CCA-SociedadeAdvogados/legalhub-backend/diffengine"
	"github.com/CCA-SociedadeAdvogados/legalhub-backend/model"
	"github.com/CCA-SociedadeAdvogados/legalhub-backend/pkg/logger"
)

// Pipeline owns the extraction job state machine and is the only writer
// of Contract.ValidationStatus. Jobs run pending → running → succeeded
// or failed; at most one non-terminal job exists per contract.
type Pipeline struct {
	store  Store
	policy *config.ValidationConfig
}

// NewPipeline creates a validation pipeline with the org-level policy.
func NewPipeline(store Store, policy *config.ValidationConfig) *Pipeline {
	return &Pipeline{store: store, policy: policy}
}

// StartValidation stores the draft extraction and opens a running job
// for it. Fails with model.ErrJobAlreadyInFlight when a non-terminal job
// exists; in-flight work is never silently cancelled — the caller waits
// or supersedes it explicitly via FailJob.
func (p *Pipeline) StartValidation(ctx context.Context, contractID string, draft *model.Extraction) (string, error) {
	ctx = logger.WithContract(ctx, contractID)

	if draft.Error != "" {
		// A draft that already failed leaves nothing to validate. The
		// contract surfaces the failure instead of reverting to none.
		if err := p.store.SetValidationStatus(ctx, contractID, model.ValidationFailed); err != nil {
			return "", err
		}
		logger.Warn(ctx, "draft extraction failed", "error", draft.Error)
		return "", fmt.Errorf("draft extraction: %s: %w", draft.Error, model.ErrExtractionFailure)
	}

	if draft.ID == "" {
		draft.ID = uuid.New().String()
	}
	draft.ContractID = contractID
	draft.Kind = model.KindDraft

	job := &model.ExtractionJob{
		ID:                uuid.New().String(),
		ContractID:        contractID,
		Status:            model.JobRunning,
		StartedAt:         time.Now(),
		DraftExtractionID: draft.ID,
	}

	if err := p.store.CreateJob(ctx, job, draft, model.ValidationDraftOnly); err != nil {
		return "", err
	}

	logger.Info(ctx, "validation started",
		"job_id", job.ID,
		"draft_extraction_id", draft.ID,
		"confidence", draft.Confidence,
	)
	return job.ID, nil
}

// AttachCanonical reconciles the job's draft against the canonical
// (CCA-verified) extraction: computes the field diffs, derives the
// terminal validation status and closes the job, freeing the contract
// for a future StartValidation.
func (p *Pipeline) AttachCanonical(ctx context.Context, jobID string, canonical *model.Extraction) error {
	job, err := p.store.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status.IsTerminal() {
		return fmt.Errorf("job %s is already %s", jobID, job.Status)
	}
	ctx = logger.WithContract(ctx, job.ContractID)

	// Diffing is about to run; readers see the contract as validating
	// until the terminal status lands.
	if err := p.store.SetValidationStatus(ctx, job.ContractID, model.ValidationValidating); err != nil {
		return err
	}

	if canonical.Error != "" {
		return p.closeFailed(ctx, job, fmt.Sprintf("canonical extraction: %s", canonical.Error))
	}

	if canonical.ID == "" {
		canonical.ID = uuid.New().String()
	}
	canonical.ContractID = job.ContractID
	canonical.Kind = model.KindCanonical
	if err := p.store.SaveExtraction(ctx, canonical); err != nil {
		return err
	}

	draft, err := p.store.GetExtraction(ctx, job.DraftExtractionID)
	if err != nil {
		return err
	}

	draftPayload, err := diffengine.ParsePayload(draft.Payload)
	if err != nil {
		if ferr := p.closeFailed(ctx, job, err.Error()); ferr != nil {
			return ferr
		}
		return err
	}
	canonicalPayload, err := diffengine.ParsePayload(canonical.Payload)
	if err != nil {
		if ferr := p.closeFailed(ctx, job, err.Error()); ferr != nil {
			return ferr
		}
		return err
	}

	fieldDiffs := diffengine.Compute(draftPayload, canonicalPayload)

	diffs := make([]*model.Diff, len(fieldDiffs))
	for i, fd := range fieldDiffs {
		diffs[i] = &model.Diff{
			ID:             uuid.New().String(),
			JobID:          job.ID,
			FieldPath:      fd.FieldPath,
			DraftValue:     fd.DraftValue,
			CanonicalValue: fd.CanonicalValue,
		}
	}
	if err := p.store.ReplaceDiffs(ctx, job.ID, diffs); err != nil {
		return err
	}

	contract, err := p.store.GetContract(ctx, job.ContractID)
	if err != nil {
		return err
	}
	status := p.deriveStatus(contract, draft, fieldDiffs)

	now := time.Now()
	job.Status = model.JobSucceeded
	job.FinishedAt = &now
	job.CanonicalExtractionID = &canonical.ID
	if err := p.store.UpdateJob(ctx, job, status); err != nil {
		return err
	}

	logger.Info(ctx, "validation completed",
		"job_id", job.ID,
		"diff_count", len(fieldDiffs),
		"validation_status", status,
	)
	return nil
}

// FailJob marks the job failed and surfaces the cause. The draft
// extraction stays visible to users as unverified. This is also the hook
// the external timeout supervisor uses for stuck jobs.
func (p *Pipeline) FailJob(ctx context.Context, jobID string, cause string) error {
	job, err := p.store.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status.IsTerminal() {
		return fmt.Errorf("job %s is already %s", jobID, job.Status)
	}
	return p.closeFailed(logger.WithContract(ctx, job.ContractID), job, cause)
}

func (p *Pipeline) closeFailed(ctx context.Context, job *model.ExtractionJob, cause string) error {
	now := time.Now()
	job.Status = model.JobFailed
	job.FinishedAt = &now
	job.Error = cause

	if err := p.store.UpdateJob(ctx, job, model.ValidationFailed); err != nil {
		return err
	}
	logger.Warn(ctx, "validation failed", "job_id", job.ID, "cause", cause)
	return nil
}

// deriveStatus applies the materiality policy: a non-empty diff set that
// touches a material field forces review, and a draft confidence below
// the contract's threshold promotes every diff to material. No diffs
// means validated.
func (p *Pipeline) deriveStatus(contract *model.Contract, draft *model.Extraction, diffs []diffengine.FieldDiff) model.ValidationStatus {
	if len(diffs) == 0 {
		return model.ValidationValidated
	}

	threshold := contract.ConfidenceThreshold
	if threshold == 0 {
		threshold = p.policy.ConfidenceThreshold
	}
	if draft.Confidence < threshold {
		return model.ValidationNeedsReview
	}

	// Without an explicit material-field list every field is material:
	// any disagreement with the verified reading goes to review.
	if len(p.policy.MaterialFields) == 0 {
		return model.ValidationNeedsReview
	}
	for _, d := range diffs {
		if p.policy.IsMaterialField(d.FieldPath) {
			return model.ValidationNeedsReview
		}
	}
	return model.ValidationValidated
}

// ValidationState is the read model for a contract's validation surface.
type ValidationState struct {
	Status model.ValidationStatus `json:"validation_status"`
	Job    *model.ExtractionJob   `json:"job,omitempty"`
	Diffs  []*model.Diff          `json:"diffs,omitempty"`
}

// Validation returns the contract's current validation status, its most
// recent job and that job's diffs.
func (p *Pipeline) Validation(ctx context.Context, contractID string) (*ValidationState, error) {
	contract, err := p.store.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	state := &ValidationState{Status: contract.ValidationStatus}

	job, err := p.store.LatestJob(ctx, contractID)
	if err != nil {
		// No job yet is a normal read, not a failure.
		return state, nil
	}
	state.Job = job

	diffs, err := p.store.ListDiffs(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	state.Diffs = diffs
	return state, nil
}
