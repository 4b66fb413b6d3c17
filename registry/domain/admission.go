package domain

import (
	"context"
	"time"
)

// Gate representa uma capacidade finita de requisições em andamento.
//
// Acquire bloqueia até conseguir uma vaga ou até o ctx encerrar.
// Ao adquirir, retorna uma função de release que deve ser chamada exatamente uma vez.
type Gate interface {
	Acquire(ctx context.Context) (release func(), ok bool)
	InFlight() int
	Capacity() int
}

// AdmissionRecorder recebe o resultado de cada tentativa de admissão.
// `scope` identifica o grupo de rotas protegido pelo gate (ex.: "v1").
type AdmissionRecorder interface {
	ObserveAdmission(scope string, admitted bool, waited time.Duration)
	SetInFlight(scope string, n int)
}
