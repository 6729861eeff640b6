package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := New()

	done := m.RequestStarted(http.MethodGet)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpInFlight))
	done("/api/questions/:id", http.StatusNotFound)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.httpInFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues(http.MethodGet, "/api/questions/:id", "404")))

	m.Event(EventQuestionAsked)
	m.Event(EventQuestionAsked)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.events.WithLabelValues(EventQuestionAsked)))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `learnscope_domain_events_total{event="question_asked"} 2`))
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}
