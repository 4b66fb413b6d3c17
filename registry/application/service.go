package application

import (
	"context"
	"errors"
	"time"

	"cinebun/registry/domain"

	"github.com/rs/zerolog"
)

// Service concentra as regras de aplicação do registro.
//
// Events e Metrics são opcionais. Falha ao publicar evento é best-effort:
// vira log de warn e não desfaz o registro.
type Service struct {
	Registry domain.SlotRegistry
	Events   domain.EventSink
	Metrics  domain.RegistryMetrics
	Logger   zerolog.Logger
	Now      func() time.Time
}

func (s Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s Service) Register(ctx context.Context, cmd domain.RegisterCommand) (domain.Slot, error) {
	slot, err := s.Registry.Register(cmd.ID, cmd.Tier, cmd.RegisteredAt)
	outcome := outcomeOf(err)
	if s.Metrics != nil {
		s.Metrics.ObserveRegistration(cmd.Tier, outcome)
	}
	if err != nil {
		s.Logger.Debug().Err(err).
			Str("slot", cmd.ID).
			Int("tier", int(cmd.Tier)).
			Str("outcome", string(outcome)).
			Msg("slot registration rejected")
		return domain.Slot{}, err
	}

	active := s.Registry.ActiveCount()
	if s.Metrics != nil {
		s.Metrics.SetActiveSlots(active)
	}

	s.Logger.Info().
		Str("slot", slot.ID).
		Stringer("tier", slot.Tier).
		Int64("settlement", slot.SettlementEpoch()).
		Int("active", active).
		Msg("slot registered")

	if s.Events != nil {
		ev := domain.RegistrationEvent{
			SlotID:          slot.ID,
			Tier:            slot.Tier,
			RegisteredAt:    slot.RegisteredAt,
			SettlementEpoch: slot.SettlementEpoch(),
			ActiveCount:     active,
			At:              s.now(),
		}
		if err := s.Events.Record(ctx, ev); err != nil {
			s.Logger.Warn().Err(err).Str("slot", slot.ID).Msg("registration event not recorded")
		}
	}
	return slot, nil
}

// Cooling calcula o status de resfriamento de `id` no instante `at` (ns).
// Known, SettlementEpoch e Complete saem da mesma leitura do registro.
func (s Service) Cooling(id string, at int64) domain.CoolingStatus {
	slot, known := s.Registry.Slot(id)
	var settlement int64
	if known {
		settlement = slot.SettlementEpoch()
	}
	st := domain.CoolingStatus{
		ID:              id,
		Known:           known,
		SettlementEpoch: settlement,
		At:              at,
		Complete:        settlement <= at,
	}
	if !st.Complete {
		st.RemainingNanos = settlement - at
	}
	return st
}

func (s Service) Summary() domain.RegistrySummary {
	return domain.RegistrySummary{
		Symbol:      domain.Symbol,
		ActiveCount: s.Registry.ActiveCount(),
		Capacity:    s.Registry.Capacity(),
		Fingerprint: s.Registry.Fingerprint(),
		CreatedAt:   s.Registry.CreatedAt(),
	}
}

func outcomeOf(err error) domain.Outcome {
	switch {
	case err == nil:
		return domain.OutcomeOK
	case errors.Is(err, domain.ErrAlreadyExists):
		return domain.OutcomeAlreadyExists
	case errors.Is(err, domain.ErrCapacityExceeded):
		return domain.OutcomeCapacityExceeded
	case domain.IsInvalidArgument(err):
		return domain.OutcomeInvalidArgument
	default:
		return domain.OutcomeError
	}
}
