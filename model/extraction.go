package model

import (
	"encoding/json"
	"time"
)

// JobStatus is the state of an extraction job: pending and running are
// non-terminal, succeeded and failed are terminal.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// IsTerminal reports whether the job can no longer change.
func (s JobStatus) IsTerminal() bool {
	return s == JobSucceeded || s == JobFailed
}

// ExtractionKind distinguishes the unverified AI reading of a contract
// from the CCA-verified one.
type ExtractionKind string

const (
	KindDraft     ExtractionKind = "draft"
	KindCanonical ExtractionKind = "canonical"
)

// ExtractionJob is one validation attempt for a contract. At most one
// non-terminal job may exist per contract at any time.
type ExtractionJob struct {
	ID                    string     `gorm:"primaryKey" json:"id"`
	ContractID            string     `gorm:"index" json:"contract_id"`
	Status                JobStatus  `json:"status"`
	StartedAt             time.Time  `json:"started_at"`
	FinishedAt            *time.Time `json:"finished_at,omitempty"`
	DraftExtractionID     string     `json:"draft_extraction_id"`
	CanonicalExtractionID *string    `json:"canonical_extraction_id,omitempty"`
	Error                 string     `json:"error,omitempty"`
}

func (ExtractionJob) TableName() string { return "extraction_jobs" }

// Extraction is a structured reading of a contract document produced by
// the external extraction service. Immutable once stored; Payload holds
// the raw field-path → value JSON object.
type Extraction struct {
	ID         string          `gorm:"primaryKey" json:"id"`
	ContractID string          `gorm:"index" json:"contract_id"`
	Kind       ExtractionKind  `json:"kind"`
	Payload    json.RawMessage `gorm:"type:text" json:"payload"`
	Confidence float64         `json:"confidence"`
	Error      string          `json:"error,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (Extraction) TableName() string { return "extractions" }

// Diff records one field path where the draft and canonical extractions
// of a job disagree. Computed, never hand-edited; replaced wholesale when
// a canonical extraction is attached.
type Diff struct {
	ID             string `gorm:"primaryKey" json:"id"`
	JobID          string `gorm:"index" json:"job_id"`
	FieldPath      string `json:"field_path"`
	DraftValue     string `json:"draft_value"`
	CanonicalValue string `json:"canonical_value"`
}

func (Diff) TableName() string { return "diffs" }
