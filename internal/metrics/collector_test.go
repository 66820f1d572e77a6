package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Records(t *testing.T) {
	c := NewCollector("deren_test")

	c.RecordMission(StatusCompleted, 2*time.Second)
	c.RecordMission(StatusRejected, 0)
	c.ObserveTool("search_web", true, time.Millisecond)
	c.ObserveTool("search_web", false, time.Millisecond)
	c.SetGraphSize(13, 15)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Missions.WithLabelValues(StatusCompleted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Missions.WithLabelValues(StatusRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ToolCalls.WithLabelValues("search_web", "error")))
	assert.Equal(t, 13.0, testutil.ToFloat64(c.GraphNodes))
	assert.Equal(t, 15.0, testutil.ToFloat64(c.GraphConnections))
}

func TestCollector_IndependentRegistries(t *testing.T) {
	a := NewCollector("deren_test")
	b := NewCollector("deren_test")

	a.SetGraphSize(1, 0)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.GraphNodes))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("deren_test")
	c.RecordHTTP(http.MethodGet, "/graph", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "deren_test_http_requests_total")
	assert.Contains(t, rec.Body.String(), "deren_test_graph_nodes")
}
