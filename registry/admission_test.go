package registry

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type admissionEvents struct {
	mu       sync.Mutex
	admitted int
	rejected int
	inFlight int
}

func (a *admissionEvents) ObserveAdmission(scope string, admitted bool, _ time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if admitted {
		a.admitted++
		return
	}
	a.rejected++
}

func (a *admissionEvents) SetInFlight(_ string, n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inFlight = n
}

func (a *admissionEvents) snapshot() (admitted, rejected, inFlight int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.admitted, a.rejected, a.inFlight
}

func TestAdmissionMiddleware_RegisterWaitsBehindHeldSlotAndIsRejected(t *testing.T) {
	events := &admissionEvents{}
	holding := make(chan struct{})
	unblock := make(chan struct{})

	var once sync.Once
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(holding) })
		<-unblock
		w.WriteHeader(http.StatusCreated)
	})
	h := AdmissionMiddleware(AdmissionOptions{
		Max:            1,
		AcquireTimeout: 20 * time.Millisecond,
		Recorder:       events,
	})(next)

	first := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "http://example/v1/slots", nil))
	}()
	select {
	case <-holding:
	case <-time.After(time.Second):
		close(unblock)
		t.Fatal("first registration never reached the handler")
	}

	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "http://example/v1/slots", nil))
	assert.Equal(t, http.StatusServiceUnavailable, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))
	assert.Contains(t, second.Body.String(), "registry busy")

	admitted, rejected, inFlight := events.snapshot()
	assert.Equal(t, 1, admitted)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, 1, inFlight)

	close(unblock)
	<-done
	require.Equal(t, http.StatusCreated, first.Code)
	_, _, inFlight = events.snapshot()
	assert.Zero(t, inFlight)
}

func TestAdmissionMiddleware_DisabledWhenMaxZero(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusAccepted) })
	h := AdmissionMiddleware(AdmissionOptions{Recorder: &admissionEvents{}})(next)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example/", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)
}
