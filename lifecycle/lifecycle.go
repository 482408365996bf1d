// Package lifecycle is the contract state machine: which life-cycle
// events may be recorded in a given state, and what state results. Both
// operations are pure; persistence and the ledger live in service.
package lifecycle

import (
	"github.com/CCA-SociedadeAdvogados/legalhub-backend/model"
)

// universalEvents may be recorded in every state and never change it.
var universalEvents = []model.EventType{
	model.EventNotaInterna,
	model.EventAlteracao,
}

// stateEvents maps each state to the events that are legally meaningful
// there, beyond the universal ones.
var stateEvents = map[model.State][]model.EventType{
	model.StateDraft:            {model.EventCriacao, model.EventEnvioRevisao},
	model.StateUnderReview:      {model.EventAprovacao},
	model.StateUnderApproval:    {model.EventEnvioAssinatura},
	model.StateSentForSignature: {model.EventAssinatura, model.EventInicioVigencia},
	model.StateActive:           {model.EventRenovacao, model.EventRescisao, model.EventDenuncia, model.EventExpiracao},
	model.StateExpired:          {},
	model.StateDenounced:        {},
	model.StateTerminated:       {},
}

// transitions maps an event type to the state it produces. Events absent
// here never change state. The mapping depends on nothing but the event
// type: same event, same target, regardless of other contract data.
var transitions = map[model.EventType]model.State{
	model.EventCriacao:         model.StateDraft,
	model.EventEnvioRevisao:    model.StateUnderReview,
	model.EventAprovacao:       model.StateUnderApproval,
	model.EventEnvioAssinatura: model.StateSentForSignature,
	model.EventAssinatura:      model.StateActive,
	model.EventInicioVigencia:  model.StateActive,
	model.EventRenovacao:       model.StateActive,
	model.EventDenuncia:        model.StateDenounced,
	model.EventRescisao:        model.StateTerminated,
	model.EventExpiracao:       model.StateExpired,
}

// AllowedEvents returns the closed set of event types that may be
// recorded while the contract is in state. The slice is freshly
// allocated; callers may modify it.
func AllowedEvents(state model.State) []model.EventType {
	events := make([]model.EventType, 0, len(universalEvents)+4)
	events = append(events, universalEvents...)
	events = append(events, stateEvents[state]...)
	return events
}

// IsAllowed reports whether event may be recorded in state.
func IsAllowed(state model.State, event model.EventType) bool {
	for _, e := range AllowedEvents(state) {
		if e == event {
			return true
		}
	}
	return false
}

// ResultingState returns the state produced by recording event while in
// current, and whether the state changes at all. Recording criacao in
// draft, or renovacao while already active, is a recorded event with no
// state effect.
func ResultingState(current model.State, event model.EventType) (model.State, bool) {
	target, ok := transitions[event]
	if !ok || target == current {
		return current, false
	}
	return target, true
}
