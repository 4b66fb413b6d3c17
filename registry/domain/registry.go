package domain

import "time"

// SlotRegistry é o contrato do registro em memória usado pela camada application.
type SlotRegistry interface {
	Register(id string, tier Tier, registeredAt int64) (Slot, error)
	Slot(id string) (Slot, bool)
	SettlementEpoch(id string) int64
	SlotIDs() []string
	ActiveCount() int
	Capacity() int
	IsCoolingComplete(id string, now int64) bool
	Fingerprint() string
	CreatedAt() time.Time
}

type RegisterCommand struct {
	ID           string
	Tier         Tier
	RegisteredAt int64
}

// CoolingStatus descreve o resfriamento de um slot em um instante `At`.
// Para ids desconhecidos, Known=false e o resfriamento é considerado completo
// para qualquer At >= 0.
type CoolingStatus struct {
	ID              string
	Known           bool
	SettlementEpoch int64
	At              int64
	Complete        bool
	RemainingNanos  int64
}

type RegistrySummary struct {
	Symbol      string
	ActiveCount int
	Capacity    int
	Fingerprint string
	CreatedAt   time.Time
}

// Outcome classifica o resultado de um registro para métricas.
type Outcome string

const (
	OutcomeOK               Outcome = "ok"
	OutcomeAlreadyExists    Outcome = "already_exists"
	OutcomeCapacityExceeded Outcome = "capacity_exceeded"
	OutcomeInvalidArgument  Outcome = "invalid_argument"
	OutcomeError            Outcome = "error"
)

// RegistryMetrics recebe os resultados de registro.
// Implementações não devem bloquear.
type RegistryMetrics interface {
	ObserveRegistration(tier Tier, outcome Outcome)
	SetActiveSlots(n int)
}
