package model

import (
	"time"
)

// State is the legal life-cycle state of a contract. It changes only
// through a recorded lifecycle event (see the lifecycle package).
type State string

const (
	StateDraft            State = "draft"
	StateUnderReview      State = "under_review"
	StateUnderApproval    State = "under_approval"
	StateSentForSignature State = "sent_for_signature"
	StateActive           State = "active"
	StateExpired          State = "expired"
	StateDenounced        State = "denounced"
	StateTerminated       State = "terminated"
)

// ValidationStatus is derived from the contract's most recent extraction
// job. The validation pipeline is its only writer.
type ValidationStatus string

const (
	ValidationNone        ValidationStatus = "none"
	ValidationDraftOnly   ValidationStatus = "draft_only"
	ValidationValidating  ValidationStatus = "validating"
	ValidationValidated   ValidationStatus = "validated"
	ValidationNeedsReview ValidationStatus = "needs_review"
	ValidationFailed      ValidationStatus = "failed"
)

// RenewalType describes how the contract renews at term.
type RenewalType string

const (
	RenewalAutomatic RenewalType = "automatic"
	RenewalManual    RenewalType = "manual"
	RenewalNone      RenewalType = "none"
)

// Contract is the aggregate root. State is owned by the event ledger,
// ValidationStatus by the validation pipeline; nothing else writes them.
type Contract struct {
	ID               string           `gorm:"primaryKey" json:"id"`
	Tenant           string           `gorm:"index" json:"tenant"`
	Title            string           `json:"title"`
	Filename         string           `json:"filename,omitempty"`
	DocumentURL      string           `json:"document_url,omitempty"`
	State            State            `json:"state"`
	ValidationStatus ValidationStatus `json:"validation_status"`

	StartOfEffect           *time.Time  `json:"start_of_effect,omitempty"`
	TermDate                *time.Time  `json:"term_date,omitempty"`
	RenewalDecisionDeadline *time.Time  `json:"renewal_decision_deadline,omitempty"`
	NoticePeriodDays        int         `json:"notice_period_days,omitempty"`
	RenewalType             RenewalType `json:"renewal_type,omitempty"`

	// ConfidenceThreshold is the organization-level floor below which an
	// extraction is considered unreliable during validation.
	ConfidenceThreshold float64 `json:"confidence_threshold"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Contract) TableName() string { return "contracts" }
