package infra

import (
	"context"
	"sync/atomic"

	"cinebun/registry/domain"
)

// Gate é um semáforo de channel que também conta as vagas ocupadas,
// para que a admissão publique o gauge de requisições em andamento.
type Gate struct {
	sem      chan struct{}
	inFlight atomic.Int64
}

// NewGate cria um gate com capacidade `max`.
func NewGate(max int) *Gate {
	return &Gate{sem: make(chan struct{}, max)}
}

func (g *Gate) Capacity() int { return cap(g.sem) }
func (g *Gate) InFlight() int { return int(g.inFlight.Load()) }

// Acquire implementa domain.Gate. O release devolvido é idempotente.
func (g *Gate) Acquire(ctx context.Context) (func(), bool) {
	select {
	case g.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, false
	}
	g.inFlight.Add(1)

	var released atomic.Bool
	return func() {
		if released.Swap(true) {
			return
		}
		g.inFlight.Add(-1)
		<-g.sem
	}, true
}

var _ domain.Gate = (*Gate)(nil)
