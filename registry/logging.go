package registry

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// UnmatchedRoute é o rótulo de rota para requisições que o chi não casou.
// O path bruto fica só no log: como rótulo de métrica ele teria
// cardinalidade controlada pelo cliente.
const UnmatchedRoute = "unmatched"

// HTTPRecorder recebe a duração e o status de cada requisição.
type HTTPRecorder interface {
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
}

// routeLabel devolve o padrão chi da rota (ex.: /v1/slots/{id}).
// Só é completo depois que o roteamento aconteceu.
func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return UnmatchedRoute
}

// RequestLogger loga cada requisição e, se recorder != nil, mede-a por rota.
func RequestLogger(logger zerolog.Logger, recorder HTTPRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routeLabel(r)
			elapsed := time.Since(start)

			event := logger.Info()
			if status >= 500 {
				event = logger.Error()
			} else if status >= 400 {
				event = logger.Warn()
			}
			event.
				Str("method", r.Method).
				Str("route", route).
				Str("path", r.URL.Path).
				Int("status", status).
				Dur("duration", elapsed).
				Str("remote", r.RemoteAddr).
				Int("bytes", ww.BytesWritten()).
				Msg("http_request")

			if recorder != nil {
				recorder.RecordHTTPRequest(r.Method, route, status, elapsed)
			}
		})
	}
}
