package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/CCA-SociedadeAdvogados/legalhub-backend/model"
)

func newLedgerFixture(t *testing.T, state model.State) (*Ledger, *MemoryStore, string) {
	t.Helper()
	store := NewMemoryStore()
	contract := newContract("c1", "cca")
	contract.State = state
	if err := store.CreateContract(context.Background(), contract); err != nil {
		t.Fatalf("CreateContract failed: %v", err)
	}
	return NewLedger(store), store, "c1"
}

func TestRecordEventCriacaoNoOp(t *testing.T) {
	ctx := context.Background()
	ledger, store, id := newLedgerFixture(t, model.StateDraft)

	event, err := ledger.RecordEvent(ctx, id, model.EventCriacao, time.Now(), "")
	if err != nil {
		t.Fatalf("RecordEvent failed: %v", err)
	}
	if event.ID == "" || event.Seq == 0 {
		t.Errorf("Expected stored event with ID and seq, got %+v", event)
	}

	c, _ := store.GetContract(ctx, id)
	if c.State != model.StateDraft {
		t.Errorf("Expected state to remain draft, got %s", c.State)
	}
	if n, _ := store.CountEvents(ctx, id); n != 1 {
		t.Errorf("Expected 1 event, got %d", n)
	}
}

func TestRecordEventIllegalTransition(t *testing.T) {
	ctx := context.Background()
	ledger, store, id := newLedgerFixture(t, model.StateDraft)

	// Signature cannot be recorded while still in draft.
	_, err := ledger.RecordEvent(ctx, id, model.EventAssinatura, time.Now(), "")
	if !errors.Is(err, model.ErrIllegalTransition) {
		t.Fatalf("Expected ErrIllegalTransition, got %v", err)
	}

	// Contract untouched: same state, no events.
	c, _ := store.GetContract(ctx, id)
	if c.State != model.StateDraft {
		t.Errorf("Expected state draft after rejection, got %s", c.State)
	}
	if n, _ := store.CountEvents(ctx, id); n != 0 {
		t.Errorf("Expected 0 events after rejection, got %d", n)
	}
}

func TestRecordEventInvalidKind(t *testing.T) {
	ctx := context.Background()
	ledger, store, id := newLedgerFixture(t, model.StateDraft)

	_, err := ledger.RecordEvent(ctx, id, "cancelamento", time.Now(), "")
	if !errors.Is(err, model.ErrInvalidEventKind) {
		t.Fatalf("Expected ErrInvalidEventKind, got %v", err)
	}
	if n, _ := store.CountEvents(ctx, id); n != 0 {
		t.Errorf("Expected 0 events, got %d", n)
	}
}

func TestRecordEventFullLifecycle(t *testing.T) {
	ctx := context.Background()
	ledger, store, id := newLedgerFixture(t, model.StateDraft)

	steps := []struct {
		event model.EventType
		state model.State
	}{
		{model.EventEnvioRevisao, model.StateUnderReview},
		{model.EventAprovacao, model.StateUnderApproval},
		{model.EventEnvioAssinatura, model.StateSentForSignature},
		{model.EventAssinatura, model.StateActive},
		{model.EventRenovacao, model.StateActive},
		{model.EventDenuncia, model.StateDenounced},
	}

	for _, step := range steps {
		if _, err := ledger.RecordEvent(ctx, id, step.event, time.Now(), ""); err != nil {
			t.Fatalf("RecordEvent(%s) failed: %v", step.event, err)
		}
		c, _ := store.GetContract(ctx, id)
		if c.State != step.state {
			t.Fatalf("After %s expected state %s, got %s", step.event, step.state, c.State)
		}
	}

	if n, _ := store.CountEvents(ctx, id); n != int64(len(steps)) {
		t.Errorf("Expected %d events, got %d", len(steps), n)
	}
}

func TestRecordEventNotaInternaEverywhere(t *testing.T) {
	ctx := context.Background()

	for _, state := range []model.State{model.StateDraft, model.StateActive, model.StateTerminated} {
		ledger, store, id := newLedgerFixture(t, state)
		if _, err := ledger.RecordEvent(ctx, id, model.EventNotaInterna, time.Now(), "nota"); err != nil {
			t.Errorf("nota_interna in %s failed: %v", state, err)
		}
		c, _ := store.GetContract(ctx, id)
		if c.State != state {
			t.Errorf("nota_interna changed state from %s to %s", state, c.State)
		}
	}
}

func TestRecordEventUnknownContract(t *testing.T) {
	ledger := NewLedger(NewMemoryStore())
	_, err := ledger.RecordEvent(context.Background(), "ghost", model.EventCriacao, time.Now(), "")
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestAllowedEventsForContract(t *testing.T) {
	ctx := context.Background()
	ledger, _, id := newLedgerFixture(t, model.StateActive)

	events, err := ledger.AllowedEvents(ctx, id)
	if err != nil {
		t.Fatalf("AllowedEvents failed: %v", err)
	}

	want := map[model.EventType]bool{
		model.EventNotaInterna: true,
		model.EventAlteracao:   true,
		model.EventRenovacao:   true,
		model.EventRescisao:    true,
		model.EventDenuncia:    true,
		model.EventExpiracao:   true,
	}
	if len(events) != len(want) {
		t.Fatalf("Expected %d allowed events, got %v", len(want), events)
	}
	for _, e := range events {
		if !want[e] {
			t.Errorf("Unexpected allowed event %s", e)
		}
	}
}
