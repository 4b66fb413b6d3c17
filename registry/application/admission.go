package application

import (
	"context"
	"time"

	"cinebun/registry/domain"
)

// Admission controla quantas requisições de um escopo podem estar em
// andamento, com timeout opcional para conseguir uma vaga.
//
// Com Recorder, cada tentativa é medida (admitida ou não, tempo de espera)
// e o gauge de requisições em andamento acompanha acquire e release.
type Admission struct {
	Gate           domain.Gate
	AcquireTimeout time.Duration
	Scope          string
	Recorder       domain.AdmissionRecorder
	Now            func() time.Time
}

func (a Admission) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// Acquire tenta adquirir uma vaga.
// - Se `AcquireTimeout <= 0`, espera até ctx cancelar.
// - Se `AcquireTimeout > 0`, espera até o timeout.
// Se ok=false, nenhuma vaga foi adquirida.
func (a Admission) Acquire(ctx context.Context) (func(), bool) {
	if a.Gate == nil {
		return func() {}, true
	}

	start := a.now()
	acqCtx := ctx
	if a.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		acqCtx, cancel = context.WithTimeout(ctx, a.AcquireTimeout)
		defer cancel()
	}
	release, ok := a.Gate.Acquire(acqCtx)

	if a.Recorder == nil {
		return release, ok
	}
	a.Recorder.ObserveAdmission(a.Scope, ok, a.now().Sub(start))
	if !ok {
		return nil, false
	}
	a.Recorder.SetInFlight(a.Scope, a.Gate.InFlight())
	return func() {
		release()
		a.Recorder.SetInFlight(a.Scope, a.Gate.InFlight())
	}, true
}
