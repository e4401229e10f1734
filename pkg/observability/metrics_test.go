package observability_test

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/complog/pkg/observability"
	"github.com/aretw0/complog/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *observability.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics_ObservesRegistry(t *testing.T) {
	m := observability.NewMetrics()
	reg := registry.New(registry.WithObserver(m.Observe))
	m.TrackSessions(reg.Len)

	require.NoError(t, reg.Create("a"))
	require.NoError(t, reg.Create("b"))
	require.NoError(t, reg.AddLog("a", "one"))
	require.NoError(t, reg.AddLog("a", "two"))
	_, err := reg.End("b")
	require.NoError(t, err)

	body := scrape(t, m)
	assert.Contains(t, body, `complog_events_total{type="session_created"} 2`)
	assert.Contains(t, body, `complog_events_total{type="log_added"} 2`)
	assert.Contains(t, body, `complog_events_total{type="session_ended"} 1`)
	assert.Contains(t, body, "complog_active_sessions 1")
}

func TestMetrics_Record(t *testing.T) {
	m := observability.NewMetrics()
	m.RecordPoll(3)
	m.RecordPoll(0)
	m.RecordHTTPRequest("POST", "/sessions", "201", 5*time.Millisecond)
	m.RecordMCPToolCall("add_log", nil)
	m.RecordMCPToolCall("add_log", errors.New("boom"))

	body := scrape(t, m)
	assert.Contains(t, body, "complog_polled_items_total 3")
	assert.Contains(t, body, `complog_http_requests_total{method="POST",route="/sessions",status="201"} 1`)
	assert.Contains(t, body, `complog_mcp_tool_calls_total{status="ok",tool="add_log"} 1`)
	assert.Contains(t, body, `complog_mcp_tool_calls_total{status="error",tool="add_log"} 1`)
}

func TestMetrics_IsolatedRegistries(t *testing.T) {
	a := observability.NewMetrics()
	b := observability.NewMetrics()
	a.RecordPoll(7)

	assert.Contains(t, scrape(t, a), "complog_polled_items_total 7")
	assert.Contains(t, scrape(t, b), "complog_polled_items_total 0")
}
