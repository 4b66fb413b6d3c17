package registry

import (
	"net/http"
	"time"

	"cinebun/registry/application"
	"cinebun/registry/domain"
	"cinebun/registry/infra"

	"github.com/rs/zerolog"
)

type AdmissionOptions struct {
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration
	// Scope rotula as métricas do gate (padrão "v1").
	Scope    string
	Recorder domain.AdmissionRecorder
	Logger   zerolog.Logger
}

// AdmissionMiddleware limita requisições em andamento. Max <= 0 desliga o limite.
//
// Rejeições respondem RejectStatus (503) com Retry-After e vão para o log;
// com Recorder, admitidas e rejeitadas também viram métricas.
func AdmissionMiddleware(opts AdmissionOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}
	if opts.Scope == "" {
		opts.Scope = "v1"
	}

	adm := application.Admission{
		Gate:           infra.NewGate(opts.Max),
		AcquireTimeout: opts.AcquireTimeout,
		Scope:          opts.Scope,
		Recorder:       opts.Recorder,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, ok := adm.Acquire(r.Context())
			if !ok {
				opts.Logger.Warn().
					Str("scope", opts.Scope).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("max", opts.Max).
					Dur("acquire_timeout", opts.AcquireTimeout).
					Msg("admission rejected")
				w.Header().Set("Retry-After", "1")
				writeError(w, opts.RejectStatus, "registry busy")
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
