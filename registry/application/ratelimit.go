package application

import (
	"time"

	"cinebun/registry/domain"

	"github.com/rs/zerolog"
)

// RateService decide se um cliente pode chamar uma rota agora.
//
// Recorder recebe toda decisão; bloqueios também vão para o log com a
// chave do cliente, que nunca vira rótulo de métrica.
type RateService struct {
	Store      domain.LimiterStore
	RetryAfter time.Duration
	Recorder   domain.RateRecorder
	Logger     zerolog.Logger
}

func (s RateService) Decide(key domain.ClientKey, route string) domain.Decision {
	dec := domain.Decision{Key: key, Route: route, Allowed: true}
	if s.Store != nil {
		if lim := s.Store.Get(key); lim != nil && !lim.Allow() {
			dec.Allowed = false
			dec.RetryAfter = s.RetryAfter
			if dec.RetryAfter <= 0 {
				dec.RetryAfter = 1 * time.Second
			}
		}
	}

	if s.Recorder != nil {
		s.Recorder.RecordRateDecision(route, dec.Allowed)
	}
	if !dec.Allowed {
		s.Logger.Warn().
			Str("client", string(key)).
			Str("route", route).
			Dur("retry_after", dec.RetryAfter).
			Msg("rate limited")
	}
	return dec
}
