package infra

import (
	"context"
	"sync"

	"cinebun/registry/domain"
)

// MemoryEventSink conta eventos de registro em memória.
// Útil para testes e desenvolvimento.
type MemoryEventSink struct {
	mu     sync.Mutex
	total  int64
	byTier map[domain.Tier]int64
	last   domain.RegistrationEvent
}

func NewMemoryEventSink() *MemoryEventSink {
	return &MemoryEventSink{byTier: make(map[domain.Tier]int64)}
}

func (s *MemoryEventSink) Record(_ context.Context, ev domain.RegistrationEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total++
	s.byTier[ev.Tier]++
	s.last = ev
	return nil
}

func (s *MemoryEventSink) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryEventSink) ByTier() map[domain.Tier]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[domain.Tier]int64, len(s.byTier))
	for k, v := range s.byTier {
		out[k] = v
	}
	return out
}

// Last devolve o último evento gravado e false se nenhum foi gravado.
func (s *MemoryEventSink) Last() (domain.RegistrationEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.total > 0
}
