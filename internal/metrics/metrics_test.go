package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_ObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.ObserveRequest("list records", OutcomeOK, 20*time.Millisecond)
	r.ObserveRequest("list records", OutcomeOK, 30*time.Millisecond)
	r.ObserveRequest("list records", OutcomeMalformed, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.Requests.WithLabelValues("list records", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Requests.WithLabelValues("list records", OutcomeMalformed)))
	assert.Equal(t, 1, testutil.CollectAndCount(r.RequestDuration))
}

func TestRecorder_ObserveRefresh(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.ObserveRefresh(OutcomeOK)
	r.ObserveRefresh(OutcomeAPI)
	r.ObserveRefresh(OutcomeAPI)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.Refreshes.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.Refreshes.WithLabelValues(OutcomeAPI)))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	require.NotPanics(t, func() {
		r.ObserveRequest("get record", OutcomeOK, time.Second)
		r.ObserveRefresh(OutcomeOK)
	})
}

func TestNew_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	require.Panics(t, func() { New(reg) }, "duplicate registration must be rejected by the registry")
}

func TestNew_NilRegistererSkipsRegistration(t *testing.T) {
	require.NotPanics(t, func() {
		New(nil)
		New(nil)
	})
}

func TestHandler_ServesRecorderMetrics(t *testing.T) {
	reg := NewRegistry()
	r := New(reg)
	r.ObserveRequest("get record", OutcomeNotFound, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `fmdata_requests_total{operation="get record",outcome="not_found"} 1`)
	assert.Contains(t, body, "go_goroutines")
}
