package domain

import (
	"strconv"
	"time"
)

// Configuração estática do registro.
const (
	Symbol = "CNBN"

	// MaxActiveSlots é o limite de slots ativos em um registro.
	MaxActiveSlots = 131072

	// CoolingOffsetNanos é somado ao instante de registro para obter o
	// instante de liquidação (settlement).
	CoolingOffsetNanos int64 = 284719384291
	CoolingOffset            = time.Duration(CoolingOffsetNanos)

	MatineeWindowMillis int64 = 10_800_000
	PremiereWindowNanos int64 = 14_400_000_000_000

	FingerprintSalt = "0x5cb7a1e3"
	CrumbOracleID   = "0x7a3f9c21e84b06d5f1c2a98e3b47d60c15f8e2a9"
	GuildTreasuryID = "0x4e1d8b27c93a05f6e72b1d84c0a39f657e2c18b3"

	// FingerprintIDLength é o prefixo de CrumbOracleID usado no fingerprint.
	FingerprintIDLength = 12

	// MaxBatchPerSlot não é usado por nenhuma operação.
	MaxBatchPerSlot = 64
)

// Tier é a classificação de cobertura de um slot.
// Apenas os três valores abaixo são aceitos.
type Tier int

const (
	TierGlaze       Tier = 2
	TierButtercream Tier = 5
	TierFondant     Tier = 11
)

// Tiers lista os tiers aceitos em ordem crescente.
func Tiers() []Tier {
	return []Tier{TierGlaze, TierButtercream, TierFondant}
}

func (t Tier) Valid() bool {
	switch t {
	case TierGlaze, TierButtercream, TierFondant:
		return true
	default:
		return false
	}
}

func (t Tier) String() string {
	switch t {
	case TierGlaze:
		return "glaze"
	case TierButtercream:
		return "buttercream"
	case TierFondant:
		return "fondant"
	default:
		return "tier(" + strconv.Itoa(int(t)) + ")"
	}
}

// Slot é imutável depois de registrado.
// RegisteredAt é em nanossegundos desde uma época arbitrária escolhida pelo chamador.
type Slot struct {
	ID           string
	Tier         Tier
	RegisteredAt int64
}

// SettlementEpoch devolve o instante em que o resfriamento do slot termina.
func (s Slot) SettlementEpoch() int64 {
	return s.RegisteredAt + CoolingOffsetNanos
}
