package model

import (
	"errors"
)

// Core error taxonomy. Callers test with errors.Is; services wrap these
// with context. No partial state is ever committed alongside one of
// these: a rejected operation leaves the contract exactly as it was.
var (
	// ErrInvalidEventKind rejects an unrecognized event type before any
	// write happens.
	ErrInvalidEventKind = errors.New("invalid event kind")

	// ErrIllegalTransition rejects an event that is not permitted in the
	// contract's current state.
	ErrIllegalTransition = errors.New("illegal transition")

	// ErrJobAlreadyInFlight signals that a non-terminal extraction job
	// already exists for the contract; the caller retries later or
	// supersedes the job explicitly.
	ErrJobAlreadyInFlight = errors.New("extraction job already in flight")

	// ErrExtractionFailure carries an error reported by the extraction
	// service.
	ErrExtractionFailure = errors.New("extraction failure")

	// ErrMalformedPayload means an extraction payload could not be
	// interpreted as a field-path mapping.
	ErrMalformedPayload = errors.New("malformed extraction payload")

	// ErrNotFound is returned when a referenced aggregate does not exist
	// or belongs to another tenant.
	ErrNotFound = errors.New("not found")
)
