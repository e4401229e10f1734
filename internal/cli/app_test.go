package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/complog/internal/config"
	"github.com/aretw0/complog/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApp_ServeAndShutdown(t *testing.T) {
	cfg := config.Default()
	cfg.Server.ShutdownTimeout = time.Second
	app, err := NewApp(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	defer app.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := "http://" + ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.ServeListener(ctx, ln) }()

	resp, err := http.Post(base+"/sessions", "application/json", strings.NewReader(`{"id":"s"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// An open SSE stream must not hold the shutdown.
	resp, err = http.Post(base+"/sessions", "application/json", strings.NewReader(`{"id":"watched"}`))
	require.NoError(t, err)
	resp.Body.Close()
	stream, err := http.Get(base + "/sessions/watched/events")
	require.NoError(t, err)
	defer stream.Body.Close()

	resp, err = http.Post(base+"/sessions/s/logs", "application/json", strings.NewReader(`{"parts":["hi"]}`))
	require.NoError(t, err)
	resp.Body.Close()

	req, err := http.NewRequest(http.MethodDelete, base+"/sessions/s", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	archived, err := app.Archive.Load(context.Background(), "s")
	require.NoError(t, err)
	assert.Contains(t, string(archived), `"hi"`)

	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	var body bytes.Buffer
	_, _ = body.ReadFrom(resp.Body)
	resp.Body.Close()
	assert.Contains(t, body.String(), "complog_active_sessions 1")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestNewApp_DuplicatePolicy(t *testing.T) {
	cfg := config.Default()
	cfg.Registry.OnDuplicate = "replace"
	app, err := NewApp(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)

	require.NoError(t, app.Registry.Create("s"))
	require.NoError(t, app.Registry.Create("s"))

	cfg.Registry.OnDuplicate = "merge"
	_, err = NewApp(context.Background(), cfg, logging.NewNop())
	assert.Error(t, err)
}

func TestApp_MCPServer(t *testing.T) {
	app, err := NewApp(context.Background(), config.Default(), logging.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, app.MCPServer())

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	var health map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["status"])
}

func TestNewApp_Runner(t *testing.T) {
	cfg := config.Default()
	cfg.Exec.Commands = writeFile(t, "commands.yaml", "commands:\n  - name: lint\n    command: go\n    args: [vet, ./...]\n")
	app, err := NewApp(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"lint"}, app.Runner.Commands())

	cfg.Exec.Commands = writeFile(t, "broken.yaml", "commands: {\n")
	_, err = NewApp(context.Background(), cfg, logging.NewNop())
	assert.Error(t, err)
}
