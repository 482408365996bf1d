package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/CCA-SociedadeAdvogados/legalhub-backend/lifecycle"
	"github.com/CCA-SociedadeAdvogados/legalhub-backend/model"
	"github.com/CCA-SociedadeAdvogados/legalhub-backend/pkg/logger"
)

// Ledger records life-cycle events and applies their state effect. It is
// the only writer of Contract.State.
type Ledger struct {
	store Store
}

// NewLedger creates a ledger over the given store.
func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// RecordEvent validates the event against the contract's current state
// and appends it together with the resulting state change as one atomic
// unit. A rejected event leaves the contract exactly as it was.
func (l *Ledger) RecordEvent(ctx context.Context, contractID string, eventType model.EventType, occurredAt time.Time, note string) (*model.LifecycleEvent, error) {
	if !model.IsKnownEventType(eventType) {
		return nil, fmt.Errorf("event type %q: %w", eventType, model.ErrInvalidEventKind)
	}

	contract, err := l.store.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	if !lifecycle.IsAllowed(contract.State, eventType) {
		return nil, fmt.Errorf("event %s in state %s: %w", eventType, contract.State, model.ErrIllegalTransition)
	}

	newState, changed := lifecycle.ResultingState(contract.State, eventType)

	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	event := &model.LifecycleEvent{
		ID:         uuid.New().String(),
		ContractID: contractID,
		EventType:  eventType,
		OccurredAt: occurredAt,
		Note:       note,
	}

	if err := l.store.AppendEvent(ctx, event, newState); err != nil {
		return nil, err
	}

	ctx = logger.WithContract(ctx, contractID)
	if changed {
		logger.Info(ctx, "lifecycle event recorded",
			"event_type", eventType,
			"from_state", contract.State,
			"to_state", newState,
		)
	} else {
		logger.Info(ctx, "lifecycle event recorded",
			"event_type", eventType,
			"state", contract.State,
		)
	}

	return event, nil
}

// AllowedEvents returns the event types that may currently be recorded
// for the contract.
func (l *Ledger) AllowedEvents(ctx context.Context, contractID string) ([]model.EventType, error) {
	contract, err := l.store.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	return lifecycle.AllowedEvents(contract.State), nil
}

// ListEvents returns the contract's events in presentation order
// (occurred_at descending).
func (l *Ledger) ListEvents(ctx context.Context, contractID string) ([]*model.LifecycleEvent, error) {
	return l.store.ListEvents(ctx, contractID)
}
