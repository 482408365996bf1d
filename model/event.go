package model

import (
	"time"
)

// EventType identifies a life-cycle event. The values match the legal
// vocabulary used across the product.
type EventType string

const (
	EventCriacao         EventType = "criacao"
	EventEnvioRevisao    EventType = "envio_revisao"
	EventAprovacao       EventType = "aprovacao"
	EventEnvioAssinatura EventType = "envio_assinatura"
	EventAssinatura      EventType = "assinatura"
	EventInicioVigencia  EventType = "inicio_vigencia"
	EventRenovacao       EventType = "renovacao"
	EventAlteracao       EventType = "alteracao"
	EventNotaInterna     EventType = "nota_interna"
	EventRescisao        EventType = "rescisao"
	EventDenuncia        EventType = "denuncia"
	EventExpiracao       EventType = "expiracao"
)

// KnownEventTypes lists every recognized event type.
var KnownEventTypes = []EventType{
	EventCriacao,
	EventEnvioRevisao,
	EventAprovacao,
	EventEnvioAssinatura,
	EventAssinatura,
	EventInicioVigencia,
	EventRenovacao,
	EventAlteracao,
	EventNotaInterna,
	EventRescisao,
	EventDenuncia,
	EventExpiracao,
}

// IsKnownEventType reports whether t is a recognized event type.
func IsKnownEventType(t EventType) bool {
	for _, k := range KnownEventTypes {
		if k == t {
			return true
		}
	}
	return false
}

// LifecycleEvent is one append-only ledger entry. Events are never
// updated or deleted (audit requirement). Seq is the insertion order and
// the causal order for the state machine; OccurredAt orders presentation.
type LifecycleEvent struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	ContractID string    `gorm:"index" json:"contract_id"`
	EventType  EventType `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	Note       string    `json:"note,omitempty"`
	Seq        int64     `gorm:"autoIncrement:false" json:"seq"`
	CreatedAt  time.Time `json:"created_at"`
}

func (LifecycleEvent) TableName() string { return "lifecycle_events" }
