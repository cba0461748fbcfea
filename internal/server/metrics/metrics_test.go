package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve_IncrementsCounter(t *testing.T) {
	m := New()

	m.Observe("login", "OK")
	m.Observe("login", "OK")
	m.Observe("login", "InvalidCredentials")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("login", "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("login", "InvalidCredentials")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.operations))
}

func TestObserveRequest(t *testing.T) {
	m := New()

	m.ObserveRequest(http.MethodPost, "/authentication/login", 200, 15*time.Millisecond)

	assert.Equal(t, 1, testutil.CollectAndCount(m.requests))
}

func TestHandler_ExposesRegistry(t *testing.T) {
	m := New()
	m.Observe("refresh", StatusError)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `gophersocial_auth_operations_total{operation="refresh",status="error"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNew_IsolatedRegistries(t *testing.T) {
	a, b := New(), New()
	a.Observe("login", "OK")

	assert.Equal(t, 0.0, testutil.ToFloat64(b.operations.WithLabelValues("login", "OK")))
}
