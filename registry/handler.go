package registry

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"cinebun/registry/application"
	"cinebun/registry/domain"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// RouterOptions agrupa o que o roteador HTTP precisa.
// Campos nil desligam a funcionalidade correspondente.
type RouterOptions struct {
	Service        application.Service
	Logger         zerolog.Logger
	HTTPRecorder   HTTPRecorder
	MetricsHandler http.Handler
	RateLimit      *RateLimitOptions
	Admission      AdmissionOptions
	// Now é o relógio usado quando GET .../cooling não recebe `now`.
	Now func() time.Time
}

type handler struct {
	svc application.Service
	now func() time.Time
}

func NewRouter(opts RouterOptions) http.Handler {
	h := &handler{svc: opts.Service, now: opts.Now}
	if h.now == nil {
		h.now = time.Now
	}

	r := chi.NewRouter()
	r.Use(RequestLogger(opts.Logger, opts.HTTPRecorder))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(AdmissionMiddleware(opts.Admission))

		r.Get("/registry", h.summary)
		r.Route("/slots", func(r chi.Router) {
			r.Get("/", h.listSlots)
			r.With(rateLimit(opts.RateLimit)).Post("/", h.registerSlot)
			r.Get("/{id}", h.getSlot)
			r.Get("/{id}/settlement", h.settlement)
			r.Get("/{id}/cooling", h.cooling)
		})
	})
	return r
}

func rateLimit(opts *RateLimitOptions) func(http.Handler) http.Handler {
	if opts == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return RateLimitMiddleware(*opts)
}

type registerRequest struct {
	ID           string `json:"id"`
	Tier         int    `json:"tier"`
	RegisteredAt int64  `json:"registered_at"`
}

type slotResponse struct {
	ID              string `json:"id"`
	Tier            int    `json:"tier"`
	TierName        string `json:"tier_name"`
	RegisteredAt    int64  `json:"registered_at"`
	SettlementEpoch int64  `json:"settlement_epoch"`
}

type settlementResponse struct {
	ID              string `json:"id"`
	SettlementEpoch int64  `json:"settlement_epoch"`
}

type coolingResponse struct {
	ID              string `json:"id"`
	Known           bool   `json:"known"`
	SettlementEpoch int64  `json:"settlement_epoch"`
	Now             int64  `json:"now"`
	Complete        bool   `json:"complete"`
	RemainingNanos  int64  `json:"remaining_nanos"`
}

type summaryResponse struct {
	Symbol      string `json:"symbol"`
	ActiveCount int    `json:"active_count"`
	Capacity    int    `json:"capacity"`
	Fingerprint string `json:"fingerprint"`
	CreatedAtMs int64  `json:"created_at_ms"`
}

type slotIDsResponse struct {
	IDs []string `json:"ids"`
}

func toSlotResponse(s domain.Slot) slotResponse {
	return slotResponse{
		ID:              s.ID,
		Tier:            int(s.Tier),
		TierName:        s.Tier.String(),
		RegisteredAt:    s.RegisteredAt,
		SettlementEpoch: s.SettlementEpoch(),
	}
}

func (h *handler) registerSlot(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	slot, err := h.svc.Register(r.Context(), domain.RegisterCommand{
		ID:           req.ID,
		Tier:         domain.Tier(req.Tier),
		RegisteredAt: req.RegisteredAt,
	})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.Header().Set("Location", "/v1/slots/"+url.PathEscape(slot.ID))
	writeJSON(w, http.StatusCreated, toSlotResponse(slot))
}

func (h *handler) listSlots(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, slotIDsResponse{IDs: h.svc.Registry.SlotIDs()})
}

// slotID lê o {id} da rota. O chi casa sobre RawPath quando ele existe
// (ids com "/" chegam como %2F), e aí o parâmetro ainda está escapado.
func slotID(r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if r.URL.RawPath == "" {
		return id, true
	}
	unescaped, err := url.PathUnescape(id)
	if err != nil {
		return "", false
	}
	return unescaped, true
}

func (h *handler) getSlot(w http.ResponseWriter, r *http.Request) {
	id, ok := slotID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid slot id")
		return
	}
	slot, known := h.svc.Registry.Slot(id)
	if !known {
		writeError(w, http.StatusNotFound, "slot not found")
		return
	}
	writeJSON(w, http.StatusOK, toSlotResponse(slot))
}

// settlement devolve 0 para ids desconhecidos, sem erro.
func (h *handler) settlement(w http.ResponseWriter, r *http.Request) {
	id, ok := slotID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid slot id")
		return
	}
	writeJSON(w, http.StatusOK, settlementResponse{ID: id, SettlementEpoch: h.svc.Registry.SettlementEpoch(id)})
}

func (h *handler) cooling(w http.ResponseWriter, r *http.Request) {
	id, ok := slotID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid slot id")
		return
	}

	now := h.now().UnixNano()
	if raw := r.URL.Query().Get("now"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid now")
			return
		}
		now = v
	}

	st := h.svc.Cooling(id, now)
	writeJSON(w, http.StatusOK, coolingResponse{
		ID:              st.ID,
		Known:           st.Known,
		SettlementEpoch: st.SettlementEpoch,
		Now:             st.At,
		Complete:        st.Complete,
		RemainingNanos:  st.RemainingNanos,
	})
}

func (h *handler) summary(w http.ResponseWriter, _ *http.Request) {
	sum := h.svc.Summary()
	writeJSON(w, http.StatusOK, summaryResponse{
		Symbol:      sum.Symbol,
		ActiveCount: sum.ActiveCount,
		Capacity:    sum.Capacity,
		Fingerprint: sum.Fingerprint,
		CreatedAtMs: sum.CreatedAt.UnixMilli(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrCapacityExceeded):
		return http.StatusInsufficientStorage
	case domain.IsInvalidArgument(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
