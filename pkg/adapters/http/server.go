package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/aretw0/complog/internal/logging"
	"github.com/aretw0/complog/internal/sanitizer"
	"github.com/aretw0/complog/pkg/archive"
	"github.com/aretw0/complog/pkg/domain"
	"github.com/aretw0/complog/pkg/observability"
	"github.com/aretw0/complog/pkg/registry"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

//go:generate go tool oapi-codegen -package http -generate types,chi-server,spec -o api.gen.go ../../../api/openapi.yaml

// Server implements the generated ServerInterface on top of a Registry.
type Server struct {
	Registry *registry.Registry
	Archive  *archive.Manager
	Streams  *StreamManager
	Metrics  *observability.Metrics

	logger    *slog.Logger
	sanitizer *sanitizer.Sanitizer
	upgrader  websocket.Upgrader
}

// Ensure Server implements ServerInterface
var _ ServerInterface = (*Server)(nil)

// Option configures the Server.
type Option func(*Server)

// WithArchive archives the final document of every session ended over HTTP
// and enables the /archive routes.
func WithArchive(m *archive.Manager) Option {
	return func(s *Server) {
		s.Archive = m
	}
}

// WithStreams enables the SSE and WebSocket routes. The manager must also be
// registered as an observer of the registry.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithMetrics records request metrics and serves them on /metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.Metrics = m
	}
}

// WithInputLimit bounds the size of each test name, step name and log part
// (default sanitizer.DefaultMaxInputSize).
func WithInputLimit(n int) Option {
	return func(s *Server) {
		s.sanitizer = sanitizer.New(n)
	}
}

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates a new HTTP handler for the registry.
func NewHandler(reg *registry.Registry, opts ...Option) http.Handler {
	s := &Server{
		Registry:  reg,
		logger:    logging.NewNop(),
		sanitizer: sanitizer.New(0),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if s.Metrics != nil {
		r.Use(s.instrument)
		r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())
	}

	// Swagger UI
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		spec, err := rawSpec()
		if err != nil {
			s.logger.Error("Failed to load OpenAPI spec", "err", err)
			http.Error(w, "Failed to load spec", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(spec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})

	handler := HandlerWithOptions(s, ChiServerOptions{
		BaseRouter:       r,
		ErrorHandlerFunc: s.invalidParam,
	})
	return enableCORS(handler)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.Metrics.RecordHTTPRequest(r.Method, route, strconv.Itoa(status), time.Since(start))
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>complog API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, Health{Status: "ok", Sessions: s.Registry.Len()})
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, SessionList{Sessions: s.Registry.List()})
}

// CreateSession handles the POST /sessions request.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body CreateSessionJSONRequestBody
	if !s.decode(w, r, &body) {
		return
	}
	id := uuid.NewString()
	if body.Id != nil && *body.Id != "" {
		id = *body.Id
	}
	if err := s.Registry.Create(id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, SessionCreated{Id: id})
}

// DumpSession handles the GET /sessions/{id} request.
func (s *Server) DumpSession(w http.ResponseWriter, r *http.Request, id SessionID) {
	doc, err := s.Registry.Dump(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeDocument(w, doc)
}

// EndSession handles the DELETE /sessions/{id} request.
func (s *Server) EndSession(w http.ResponseWriter, r *http.Request, id SessionID) {
	var doc []byte
	var err error
	if s.Archive != nil {
		doc, err = s.Archive.Finalize(r.Context(), s.Registry, id)
		if err != nil && doc != nil {
			// The session is gone already; the caller still gets its document.
			s.logger.Error("Failed to archive ended session", "session_id", id, "err", err)
			err = nil
		}
	} else {
		doc, err = s.Registry.End(id)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeDocument(w, doc)
}

// StartTest handles the POST /sessions/{id}/tests request.
func (s *Server) StartTest(w http.ResponseWriter, r *http.Request, id SessionID) {
	var body StartTestJSONRequestBody
	if !s.decode(w, r, &body) {
		return
	}
	name, err := s.sanitizer.Clean(body.Name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.reply(w, r, s.Registry.StartTest(id, name))
}

// EndTest handles the POST /sessions/{id}/tests/end request.
func (s *Server) EndTest(w http.ResponseWriter, r *http.Request, id SessionID) {
	var body EndTestJSONRequestBody
	if !s.decode(w, r, &body) {
		return
	}
	s.reply(w, r, s.Registry.EndTest(id, resultOf(body)))
}

// StartStep handles the POST /sessions/{id}/steps request.
func (s *Server) StartStep(w http.ResponseWriter, r *http.Request, id SessionID) {
	var body StartStepJSONRequestBody
	if !s.decode(w, r, &body) {
		return
	}
	name, err := s.sanitizer.Clean(body.Name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.reply(w, r, s.Registry.StartStep(id, name))
}

// EndStep handles the POST /sessions/{id}/steps/end request.
func (s *Server) EndStep(w http.ResponseWriter, r *http.Request, id SessionID) {
	var body EndStepJSONRequestBody
	if !s.decode(w, r, &body) {
		return
	}
	s.reply(w, r, s.Registry.EndStep(id, resultOf(body)))
}

// AddLog handles the POST /sessions/{id}/logs request.
func (s *Server) AddLog(w http.ResponseWriter, r *http.Request, id SessionID) {
	var body AddLogJSONRequestBody
	if !s.decode(w, r, &body) {
		return
	}
	parts, err := s.sanitizer.CleanAll(body.Parts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.reply(w, r, s.Registry.AddLog(id, parts...))
}

// Snapshot handles the POST /sessions/{id}/snapshot request.
func (s *Server) Snapshot(w http.ResponseWriter, r *http.Request, id SessionID) {
	s.reply(w, r, s.Registry.Snapshot(id))
}

// PollSession handles the GET /sessions/{id}/poll request.
// An optional limit query parameter leaves the rest of the queue for the next poll.
func (s *Server) PollSession(w http.ResponseWriter, r *http.Request, id SessionID, params PollSessionParams) {
	limit := -1
	if params.Limit != nil {
		if *params.Limit < 0 {
			s.badRequest(w, fmt.Errorf("invalid limit %d", *params.Limit))
			return
		}
		limit = *params.Limit
	}

	seq, err := s.Registry.Poll(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	items := []string{}
	if limit != 0 {
		for item := range seq {
			items = append(items, item)
			if limit > 0 && len(items) == limit {
				break
			}
		}
	}
	if s.Metrics != nil {
		s.Metrics.RecordPoll(len(items))
	}
	s.writeJSON(w, http.StatusOK, items)
}

// SubscribeEvents handles the GET /sessions/{id}/events request (SSE).
// The stream ends after the session_ended event.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request, id SessionID) {
	if s.Streams == nil {
		s.disabled(w, r, "streams")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	// Subscribe before the existence check so no event slips between them.
	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()
	if !s.Registry.Has(id) {
		s.fail(w, r, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.logger.Info("SSE: Subscribing to session events", "session_id", id)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: Client disconnected", "session_id", id)
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				s.logger.Warn("SSE: Failed to encode event", "session_id", id, "err", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
			flusher.Flush()
			if ev.Type == domain.EventSessionEnded {
				return
			}
		}
	}
}

// SubscribeWebSocket handles the GET /sessions/{id}/ws request.
// Each event is sent as one JSON text message; the server closes the
// connection after the session_ended event.
func (s *Server) SubscribeWebSocket(w http.ResponseWriter, r *http.Request, id SessionID) {
	if s.Streams == nil {
		s.disabled(w, r, "streams")
		return
	}
	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()
	if !s.Registry.Has(id) {
		s.fail(w, r, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id))
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket: upgrade failed", "session_id", id, "err", err)
		return
	}
	defer conn.Close()
	s.logger.Info("WebSocket: client connected", "session_id", id, "remote", r.RemoteAddr)

	// Reads only detect the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			s.logger.Info("WebSocket: client disconnected", "session_id", id)
			return
		case <-r.Context().Done():
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				s.logger.Warn("WebSocket: write failed", "session_id", id, "err", err)
				return
			}
			if ev.Type == domain.EventSessionEnded {
				msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended")
				_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
				return
			}
		}
	}
}

// ListArchive handles the GET /archive request.
func (s *Server) ListArchive(w http.ResponseWriter, r *http.Request) {
	if s.Archive == nil {
		s.disabled(w, r, "archive")
		return
	}
	ids, err := s.Archive.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, SessionList{Sessions: ids})
}

// GetArchive handles the GET /archive/{id} request.
func (s *Server) GetArchive(w http.ResponseWriter, r *http.Request, id SessionID) {
	if s.Archive == nil {
		s.disabled(w, r, "archive")
		return
	}
	doc, err := s.Archive.Load(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeDocument(w, doc)
}

// -- Helpers --

// decode reads an optional JSON body; an empty body leaves v untouched.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	s.badRequest(w, fmt.Errorf("invalid request body: %w", err))
	return false
}

// resultOf maps an absent result to nil.
func resultOf(body ResultRequest) any {
	if body.Result == nil {
		return nil
	}
	return *body.Result
}

func (s *Server) reply(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) badRequest(w http.ResponseWriter, err error) {
	s.logger.Warn("Rejected request", "err", err)
	s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
}

// invalidParam reports path and query parameters the generated wrapper could not bind.
func (s *Server) invalidParam(w http.ResponseWriter, r *http.Request, err error) {
	s.badRequest(w, err)
}

func (s *Server) disabled(w http.ResponseWriter, r *http.Request, feature string) {
	s.logger.Debug("Route for disabled feature", "feature", feature, "path", r.URL.Path)
	s.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: feature + " not enabled"})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		s.logger.Warn("Request rejected", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrArchiveNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSessionExists), errors.Is(err, domain.ErrNothingOpenToClose):
		return http.StatusConflict
	case errors.Is(err, sanitizer.ErrInputTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, sanitizer.ErrInvalidUTF8), errors.Is(err, domain.ErrInvalidResult):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}

// writeDocument sends an already serialized session document verbatim.
func (s *Server) writeDocument(w http.ResponseWriter, doc []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		s.logger.Error("Response write failed", "err", err)
	}
}
