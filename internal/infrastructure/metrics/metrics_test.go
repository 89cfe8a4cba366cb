package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"recipe-suggester/internal/pkg/common"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveTier(t *testing.T) {
	m := New()

	m.ObserveTier(common.TierDocument, "", 20*time.Millisecond)
	m.ObserveTier(common.TierGenerative, common.FailureQuotaExceeded, time.Second)
	m.ObserveTier(common.TierGenerative, common.FailureQuotaExceeded, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.tierOutcomes.WithLabelValues("document", "success", "")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.tierOutcomes.WithLabelValues("generative", "failure", "QUOTA_EXCEEDED")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.tierDuration))
}

func TestObserveSuggestion(t *testing.T) {
	m := New()
	m.ObserveSuggestion(true, "")
	m.ObserveSuggestion(false, common.FailureEmptyResult)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.suggestions.WithLabelValues("true", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.suggestions.WithLabelValues("false", "EMPTY_RESULT")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveTier(common.TierDataset, "", time.Millisecond)
		m.ObserveSuggestion(false, common.FailureEmptyResult)
		m.ObserveRequest("GET", "/health", http.StatusOK)
	})
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	m.ObserveRequest("POST", "/api/v1/recipe/suggest", http.StatusOK)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "recipe_suggester_http_requests_total")
}
