package http

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/complog/pkg/adapters/memory"
	"github.com/aretw0/complog/pkg/archive"
	"github.com/aretw0/complog/pkg/domain"
	"github.com/aretw0/complog/pkg/observability"
	"github.com/aretw0/complog/pkg/registry"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	reg     *registry.Registry
	streams *StreamManager
	archive *archive.Manager
	metrics *observability.Metrics
	handler http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		streams: NewStreamManager(16, nil),
		archive: archive.NewManager(memory.NewStore()),
		metrics: observability.NewMetrics(),
	}
	f.reg = registry.New(
		registry.WithObserver(f.streams.Observe),
		registry.WithObserver(f.metrics.Observe),
	)
	f.handler = NewHandler(f.reg,
		WithStreams(f.streams),
		WithArchive(f.archive),
		WithMetrics(f.metrics),
	)
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func TestServer_LoginScenario(t *testing.T) {
	f := newFixture(t)

	steps := []struct {
		method, path, body string
		status             int
	}{
		{"POST", "/sessions", `{"id":"s1"}`, http.StatusCreated},
		{"POST", "/sessions/s1/tests", `{"name":"login"}`, http.StatusNoContent},
		{"POST", "/sessions/s1/logs", `{"parts":["clicked","button"]}`, http.StatusNoContent},
		{"POST", "/sessions/s1/steps", `{"name":"fill form"}`, http.StatusNoContent},
		{"POST", "/sessions/s1/logs", `{"parts":["typed username"]}`, http.StatusNoContent},
		{"POST", "/sessions/s1/steps/end", `{"result":"ok"}`, http.StatusNoContent},
		{"POST", "/sessions/s1/tests/end", `{"result":"passed"}`, http.StatusNoContent},
	}
	for _, st := range steps {
		w := f.do(t, st.method, st.path, st.body)
		require.Equal(t, st.status, w.Code, "%s %s: %s", st.method, st.path, w.Body.String())
	}

	w := f.do(t, "GET", "/sessions/s1/poll", "")
	require.Equal(t, http.StatusOK, w.Code)
	var events []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))
	assert.Equal(t, []string{
		"Test Started login",
		"clicked button",
		"Step Started fill form",
		"typed username",
		"Step Ended ok",
		"Test Ended passed",
	}, events)

	w = f.do(t, "DELETE", "/sessions/s1", "")
	require.Equal(t, http.StatusOK, w.Code)
	ended := w.Body.String()
	doc, err := domain.ParseDocument([]byte(ended))
	require.NoError(t, err)
	require.Len(t, doc.Logs, 1)
	assert.Equal(t, "login", doc.Logs[0].Name)

	assert.Equal(t, http.StatusNotFound, f.do(t, "GET", "/sessions/s1", "").Code)

	w = f.do(t, "GET", "/archive/s1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ended, w.Body.String())

	w = f.do(t, "GET", "/archive", "")
	assert.JSONEq(t, `{"sessions":["s1"]}`, w.Body.String())
}

func TestServer_SanitizesInput(t *testing.T) {
	reg := registry.New()
	handler := NewHandler(reg, WithInputLimit(16))
	do := func(method, path, body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(method, path, strings.NewReader(body)))
		return w
	}

	require.Equal(t, http.StatusCreated, do("POST", "/sessions", `{"id":"s"}`).Code)
	require.Equal(t, http.StatusNoContent, do("POST", "/sessions/s/tests", `{"name":"\u001b[1mbold"}`).Code)
	require.Equal(t, http.StatusNoContent, do("POST", "/sessions/s/logs", `{"parts":["a\u0000b","c"]}`).Code)

	w := do("POST", "/sessions/s/logs", `{"parts":["ok","this part is far too long"]}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	w = do("POST", "/sessions/s/steps", `{"name":"this name is far too long"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	events, err := reg.Drain("s")
	require.NoError(t, err)
	assert.Equal(t, []string{"Test Started [1mbold", "ab c"}, events)
}

func TestServer_ErrorMapping(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.do(t, "POST", "/sessions", `{"id":"s"}`).Code)
	require.Equal(t, http.StatusNoContent, f.do(t, "POST", "/sessions/s/tests", `{"name":"t"}`).Code)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"duplicate create", "POST", "/sessions", `{"id":"s"}`, http.StatusConflict},
		{"end step with test open", "POST", "/sessions/s/steps/end", "", http.StatusConflict},
		{"unknown session", "POST", "/sessions/ghost/logs", `{"parts":["x"]}`, http.StatusNotFound},
		{"unknown dump", "GET", "/sessions/ghost", "", http.StatusNotFound},
		{"unknown end", "DELETE", "/sessions/ghost", "", http.StatusNotFound},
		{"unknown poll", "GET", "/sessions/ghost/poll", "", http.StatusNotFound},
		{"bad body", "POST", "/sessions/s/logs", `{"parts":`, http.StatusBadRequest},
		{"bad limit", "GET", "/sessions/s/poll?limit=-2", "", http.StatusBadRequest},
		{"non-numeric limit", "GET", "/sessions/s/poll?limit=abc", "", http.StatusBadRequest},
		{"unknown archive", "GET", "/archive/ghost", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.status != http.StatusNoContent {
				assert.Contains(t, w.Body.String(), `"error"`)
			}
		})
	}

	// Failed operations leave the tree untouched.
	w := f.do(t, "GET", "/sessions/s", "")
	assert.JSONEq(t, `{"type":"Session","logs":[{"type":"Test","name":"t","logs":[],"in_process":true,"result":null}]}`, w.Body.String())
}

func TestServer_CreateGeneratesID(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, "POST", "/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.ID, 36)
	assert.True(t, f.reg.Has(resp.ID))

	w = f.do(t, "GET", "/sessions", "")
	assert.JSONEq(t, `{"sessions":["`+resp.ID+`"]}`, w.Body.String())
}

func TestServer_PollLimit(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.reg.Create("s"))
	for _, text := range []string{"a", "b", "c"} {
		require.NoError(t, f.reg.AddLog("s", text))
	}

	w := f.do(t, "GET", "/sessions/s/poll?limit=2", "")
	assert.JSONEq(t, `["a","b"]`, w.Body.String())
	w = f.do(t, "GET", "/sessions/s/poll?limit=0", "")
	assert.JSONEq(t, `[]`, w.Body.String())
	w = f.do(t, "GET", "/sessions/s/poll", "")
	assert.JSONEq(t, `["c"]`, w.Body.String())
	w = f.do(t, "GET", "/sessions/s/poll", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestServer_Snapshot(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.reg.Create("s"))
	require.NoError(t, f.reg.StartStep("s", "open"))

	require.Equal(t, http.StatusNoContent, f.do(t, "POST", "/sessions/s/snapshot", "").Code)

	events, err := f.reg.Drain("s")
	require.NoError(t, err)
	require.Len(t, events, 2)
	dump := f.do(t, "GET", "/sessions/s", "")
	assert.Equal(t, dump.Body.String(), events[1])
}

func TestServer_HealthAndMetrics(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.reg.Create("s"))

	w := f.do(t, "GET", "/health", "")
	assert.JSONEq(t, `{"status":"ok","sessions":1}`, w.Body.String())

	f.do(t, "GET", "/sessions/s", "")
	w = f.do(t, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `complog_events_total{type="session_created"} 1`)
	assert.Contains(t, body, `complog_http_requests_total{method="GET",route="/sessions/{id}`)
}

func TestServer_OpenAPISpec(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, "GET", "/openapi.yaml", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/yaml", w.Header().Get("Content-Type"))

	doc, err := openapi3.NewLoader().LoadFromData(w.Body.Bytes())
	require.NoError(t, err)
	require.NoError(t, doc.Validate(context.Background()))
	assert.Equal(t, "complog API", doc.Info.Title)

	embedded, err := GetSwagger()
	require.NoError(t, err)
	assert.Equal(t, len(embedded.Paths.Map()), len(doc.Paths.Map()))

	w = f.do(t, "GET", "/swagger", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/openapi.yaml")
}

func TestServer_RoutesMatchSpec(t *testing.T) {
	f := newFixture(t)
	swagger, err := GetSwagger()
	require.NoError(t, err)

	for path, item := range swagger.Paths.Map() {
		for method := range item.Operations() {
			target := strings.ReplaceAll(path, "{id}", "ghost")
			t.Run(method+" "+path, func(t *testing.T) {
				w := f.do(t, method, target, "")
				assert.NotEqual(t, http.StatusMethodNotAllowed, w.Code)
				if w.Code == http.StatusNotFound {
					assert.Contains(t, w.Body.String(), `"error"`, "route is not served")
				}
			})
		}
	}
}

func TestServer_WithoutOptionalRoutes(t *testing.T) {
	handler := NewHandler(registry.New())
	for _, path := range []string{"/metrics", "/archive", "/sessions/s/events", "/sessions/s/ws"} {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/archive/s", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"archive not enabled"}`, w.Body.String())
}

func TestServer_EndWithoutArchive(t *testing.T) {
	reg := registry.New()
	handler := NewHandler(reg)
	require.NoError(t, reg.Create("s"))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("DELETE", "/sessions/s", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"type":"Session","logs":[]}`, w.Body.String())
	assert.False(t, reg.Has("s"))
}

func TestSubscribeEvents_Session(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.reg.Create("sess-1"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/sessions/sess-1/events", nil)
	done := make(chan struct{})
	go func() {
		defer close(done)
		f.handler.ServeHTTP(w, req)
	}()

	require.Eventually(t, func() bool { return f.streams.Subscribers("sess-1") == 1 },
		time.Second, 5*time.Millisecond)

	require.NoError(t, f.reg.StartTest("sess-1", "login"))
	require.NoError(t, f.reg.AddLog("sess-1", "hello"))
	_, err := f.reg.End("sess-1")
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("SSE stream did not end after session_ended")
	}

	output := w.Body.String()
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Contains(t, output, "event: ping\ndata: connected")
	assert.Contains(t, output, "event: test_started\n")
	assert.Contains(t, output, `"name":"login"`)
	assert.Contains(t, output, `"text":"hello"`)
	assert.Contains(t, output, "event: session_ended\n")
	assert.Equal(t, 0, f.streams.Subscribers("sess-1"))
}

func TestSubscribeEvents_UnknownSession(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, "GET", "/sessions/ghost/events", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 0, f.streams.Subscribers("ghost"))
}

func TestSubscribeEvents_ClientDisconnect(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.reg.Create("s"))
	srv := httptest.NewServer(f.handler)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/sessions/s/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: ping\n", line)

	cancel()
	require.Eventually(t, func() bool { return f.streams.Subscribers("s") == 0 },
		2*time.Second, 10*time.Millisecond)
}

func TestSubscribeWebSocket(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.reg.Create("s"))
	srv := httptest.NewServer(f.handler)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/sessions/s/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return f.streams.Subscribers("s") == 1 },
		time.Second, 5*time.Millisecond)

	require.NoError(t, f.reg.StartStep("s", "deploy"))
	require.NoError(t, f.reg.EndStep("s", "ok"))
	_, err = f.reg.End("s")
	require.NoError(t, err)

	var got []domain.Event
	for {
		var ev domain.Event
		if err := conn.ReadJSON(&ev); err != nil {
			assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected error: %v", err)
			break
		}
		got = append(got, ev)
	}

	require.Len(t, got, 3)
	assert.Equal(t, domain.EventStepStarted, got[0].Type)
	assert.Equal(t, "deploy", got[0].Name)
	assert.Equal(t, 1, got[0].Depth)
	assert.Equal(t, domain.EventStepEnded, got[1].Type)
	assert.Equal(t, "ok", got[1].Result)
	assert.Equal(t, domain.EventSessionEnded, got[2].Type)
}

func TestStreamManager_DropsWhenFull(t *testing.T) {
	sm := NewStreamManager(1, nil)
	ch, cancel := sm.Subscribe("s")

	sm.Observe(domain.Event{Type: domain.EventLogAdded, SessionID: "s", Text: "first"})
	sm.Observe(domain.Event{Type: domain.EventLogAdded, SessionID: "s", Text: "second"})
	sm.Observe(domain.Event{Type: domain.EventLogAdded, SessionID: "other", Text: "elsewhere"})

	ev := <-ch
	assert.Equal(t, "first", ev.Text)
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %+v", ev)
	default:
	}

	cancel()
	cancel()
	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, sm.Subscribers("s"))
}
