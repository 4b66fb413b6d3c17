package domain

import (
	"context"
	"time"
)

// RegistrationEvent é emitido depois de um registro bem-sucedido.
type RegistrationEvent struct {
	SlotID          string
	Tier            Tier
	RegisteredAt    int64
	SettlementEpoch int64
	ActiveCount     int

	At time.Time
}

// EventSink é a estratégia de publicação de eventos de registro.
//
// Implementações podem gravar em Redis, memória, etc.
// A camada application trata erro como best-effort (não falha o registro).
type EventSink interface {
	Record(ctx context.Context, ev RegistrationEvent) error
}
