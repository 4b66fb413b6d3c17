package infra

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"cinebun/registry/domain"
)

// Registry é o registro de slots em memória.
//
// Toda a sequência de Register (existência, capacidade, tier, inserção e
// incremento) acontece dentro de um único lock, então o contador nunca
// diverge do número de slots, mesmo com chamadas concorrentes.
type Registry struct {
	mu          sync.RWMutex
	slots       map[string]domain.Slot
	settlements map[string]int64
	active      int

	capacity  int
	createdAt time.Time
	now       func() time.Time
}

type RegistryOption func(*Registry)

// WithClock troca o relógio usado para registrar o instante de criação.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithCapacity sobrescreve domain.MaxActiveSlots. Valores <= 0 são ignorados.
func WithCapacity(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.capacity = n
		}
	}
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		slots:       make(map[string]domain.Slot),
		settlements: make(map[string]int64),
		capacity:    domain.MaxActiveSlots,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.createdAt = r.now()
	return r
}

func (r *Registry) Capacity() int        { return r.capacity }
func (r *Registry) CreatedAt() time.Time { return r.createdAt }

// Register implementa domain.SlotRegistry.
func (r *Registry) Register(id string, tier domain.Tier, registeredAt int64) (domain.Slot, error) {
	if id == "" {
		return domain.Slot{}, fmt.Errorf("%w: empty id", domain.ErrInvalidSlotID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.slots[id]; exists {
		return domain.Slot{}, fmt.Errorf("%w: %q", domain.ErrAlreadyExists, id)
	}
	if r.active >= r.capacity {
		return domain.Slot{}, fmt.Errorf("%w: %d active", domain.ErrCapacityExceeded, r.active)
	}
	if !tier.Valid() {
		return domain.Slot{}, fmt.Errorf("%w: %d", domain.ErrInvalidTier, int(tier))
	}

	slot := domain.Slot{ID: id, Tier: tier, RegisteredAt: registeredAt}
	r.slots[id] = slot
	r.settlements[id] = slot.SettlementEpoch()
	r.active++
	return slot, nil
}

// SettlementEpoch devolve 0 para ids desconhecidos.
func (r *Registry) SettlementEpoch(id string) int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settlements[id]
}

func (r *Registry) Slot(id string) (domain.Slot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.slots[id]
	return s, ok
}

// SlotIDs devolve uma cópia ordenada dos ids registrados.
func (r *Registry) SlotIDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.slots))
	for id := range r.slots {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// IsCoolingComplete compara o settlement com `now`. Ids desconhecidos têm
// settlement 0, então retornam true para qualquer now >= 0.
func (r *Registry) IsCoolingComplete(id string, now int64) bool {
	return r.SettlementEpoch(id) <= now
}

// Fingerprint não é um compromisso criptográfico: é derivado apenas da
// configuração estática, do contador e do instante de criação.
func (r *Registry) Fingerprint() string {
	raw := fmt.Sprintf("%s-%d-%d-%s",
		domain.FingerprintSalt,
		r.ActiveCount(),
		r.createdAt.UnixMilli(),
		domain.CrumbOracleID[:domain.FingerprintIDLength],
	)
	return strings.ReplaceAll(raw, "0x", "")
}

var _ domain.SlotRegistry = (*Registry)(nil)
