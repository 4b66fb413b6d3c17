package domain

import "time"

// ClientKey identifica quem está chamando a API (IP, API key, etc.).
type ClientKey string

// Limiter decide se uma ação é permitida agora.
type Limiter interface {
	Allow() bool
}

// LimiterStore obtém um limiter por chave de cliente.
type LimiterStore interface {
	Get(ClientKey) Limiter
}

// Decision é o resultado do rate limit para um cliente em uma rota.
type Decision struct {
	Key     ClientKey
	Route   string
	Allowed bool
	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	RetryAfter time.Duration
}

// RateRecorder recebe cada decisão do rate limit.
// A chave do cliente não vira rótulo; só a rota.
type RateRecorder interface {
	RecordRateDecision(route string, allowed bool)
}
