package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/complog"
	"github.com/aretw0/complog/internal/logging"
	"github.com/aretw0/complog/internal/sanitizer"
	"github.com/aretw0/complog/pkg/adapters/process"
	"github.com/aretw0/complog/pkg/archive"
	"github.com/aretw0/complog/pkg/observability"
	"github.com/aretw0/complog/pkg/registry"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SessionsURI is the resource listing live session IDs.
const SessionsURI = "complog://sessions"

// CreateResponse is the structured result of create_session.
type CreateResponse struct {
	ID string `json:"id" jsonschema_description:"The ID of the created session"`
}

// PollResponse is the structured result of poll_session.
type PollResponse struct {
	Events []string `json:"events" jsonschema_description:"Unread queue descriptions in arrival order"`
}

// Server exposes a Registry as MCP tools, so an agent can log its own work.
type Server struct {
	reg       *registry.Registry
	archive   *archive.Manager
	metrics   *observability.Metrics
	logger    *slog.Logger
	sanitizer *sanitizer.Sanitizer
	runner    *process.Runner
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithArchive archives sessions ended through end_session.
func WithArchive(m *archive.Manager) Option {
	return func(s *Server) {
		s.archive = m
	}
}

// WithMetrics counts tool calls.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithInputLimit bounds the size of each name and log part an agent sends.
func WithInputLimit(n int) Option {
	return func(s *Server) {
		s.sanitizer = sanitizer.New(n)
	}
}

// WithRunner offers the runner's allow-listed commands through run_command.
func WithRunner(r *process.Runner) Option {
	return func(s *Server) {
		s.runner = r
	}
}

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(reg *registry.Registry, opts ...Option) *Server {
	s := &Server{
		reg:       reg,
		logger:    logging.NewNop(),
		sanitizer: sanitizer.New(0),
		mcpServer: server.NewMCPServer("complog-mcp", strings.TrimSpace(complog.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func sessionArg() mcp.ToolOption {
	return mcp.WithString("session_id", mcp.Required(), mcp.Description("ID of the target session"))
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("create_session",
		mcp.WithDescription("Create a new logging session. A random ID is generated when none is given."),
		mcp.WithString("session_id", mcp.Description("ID for the new session (optional)")),
		mcp.WithOutputSchema[CreateResponse](),
	), s.counted("create_session", mcp.NewStructuredToolHandler(s.handleCreate)))

	s.mcpServer.AddTool(mcp.NewTool("start_test",
		mcp.WithDescription("Open a Test at the current insertion point of the session."),
		sessionArg(),
		mcp.WithString("name", mcp.Required(), mcp.Description("Test name")),
	), s.counted("start_test", s.handleStart(s.reg.StartTest)))

	s.mcpServer.AddTool(mcp.NewTool("end_test",
		mcp.WithDescription("Close the innermost open unit, which must be a Test."),
		sessionArg(),
		mcp.WithAny("result", mcp.Description("Result to record, any JSON value (optional)")),
	), s.counted("end_test", s.handleEnd(s.reg.EndTest)))

	s.mcpServer.AddTool(mcp.NewTool("start_step",
		mcp.WithDescription("Open a Step at the current insertion point of the session."),
		sessionArg(),
		mcp.WithString("name", mcp.Required(), mcp.Description("Step name")),
	), s.counted("start_step", s.handleStart(s.reg.StartStep)))

	s.mcpServer.AddTool(mcp.NewTool("end_step",
		mcp.WithDescription("Close the innermost open unit, which must be a Step."),
		sessionArg(),
		mcp.WithAny("result", mcp.Description("Result to record, any JSON value (optional)")),
	), s.counted("end_step", s.handleEnd(s.reg.EndStep)))

	s.mcpServer.AddTool(mcp.NewTool("add_log",
		mcp.WithDescription("Append a log line at the current insertion point. Parts are joined with a space."),
		sessionArg(),
		mcp.WithArray("parts", mcp.Required(), mcp.Description("Text fragments"), mcp.Items(map[string]any{"type": "string"})),
	), s.counted("add_log", s.handleAddLog))

	s.mcpServer.AddTool(mcp.NewTool("poll_session",
		mcp.WithDescription("Consume queue descriptions that were not returned by an earlier poll."),
		sessionArg(),
		mcp.WithNumber("limit", mcp.Description("Maximum number of items to consume (optional)")),
		mcp.WithOutputSchema[PollResponse](),
	), s.counted("poll_session", mcp.NewStructuredToolHandler(s.handlePoll)))

	s.mcpServer.AddTool(mcp.NewTool("dump_session",
		mcp.WithDescription("Return the JSON document of the session tree."),
		sessionArg(),
	), s.counted("dump_session", s.handleDump))

	s.mcpServer.AddTool(mcp.NewTool("end_session",
		mcp.WithDescription("End the session and return its final JSON document."),
		sessionArg(),
	), s.counted("end_session", s.handleEndSession))

	if s.runner == nil || len(s.runner.Commands()) == 0 {
		return
	}
	s.mcpServer.AddTool(mcp.NewTool("run_command",
		mcp.WithDescription("Run an allow-listed command as a Test at the current insertion point. Output lines become Logs and the exit code becomes the result."),
		sessionArg(),
		mcp.WithString("name", mcp.Required(), mcp.Description("Registered command name"), mcp.Enum(s.runner.Commands()...)),
	), s.counted("run_command", s.handleRunCommand))
}

// counted wraps a handler with the tool call counter.
func (s *Server) counted(tool string, h server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := h(ctx, request)
		if s.metrics != nil {
			if err == nil && res != nil && res.IsError {
				err = errors.New(tool)
			}
			s.metrics.RecordMCPToolCall(tool, err)
		}
		return res, err
	}
}

func (s *Server) handleCreate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (CreateResponse, error) {
	id, _ := args["session_id"].(string)
	if id == "" {
		id = uuid.NewString()
	}
	if err := s.reg.Create(id); err != nil {
		return CreateResponse{}, err
	}
	return CreateResponse{ID: id}, nil
}

func (s *Server) handleStart(start func(id, name string) error) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("session_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		name, err := request.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if name, err = s.sanitizer.Clean(name); err != nil {
			return s.result(err)
		}
		return s.result(start(id, name))
	}
}

func (s *Server) handleEnd(end func(id string, result any) error) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("session_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		// Keep whatever JSON value the client sent; absent means null.
		result := request.GetArguments()["result"]
		return s.result(end(id, result))
	}
}

func (s *Server) handleAddLog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	parts, err := request.RequireStringSlice("parts")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if parts, err = s.sanitizer.CleanAll(parts); err != nil {
		return s.result(err)
	}
	return s.result(s.reg.AddLog(id, parts...))
}

func (s *Server) handlePoll(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (PollResponse, error) {
	id, _ := args["session_id"].(string)
	limit := -1
	if n, ok := args["limit"].(float64); ok {
		if n < 0 {
			return PollResponse{}, fmt.Errorf("invalid limit %v", n)
		}
		limit = int(n)
	}

	seq, err := s.reg.Poll(id)
	if err != nil {
		return PollResponse{}, err
	}
	resp := PollResponse{Events: []string{}}
	if limit != 0 {
		for item := range seq {
			resp.Events = append(resp.Events, item)
			if limit > 0 && len(resp.Events) == limit {
				break
			}
		}
	}
	if s.metrics != nil {
		s.metrics.RecordPoll(len(resp.Events))
	}
	return resp, nil
}

func (s *Server) handleRunCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.runner.RunRegistered(ctx, complog.Attach(s.reg, id), name)
	if err != nil {
		return s.result(err)
	}
	return mcp.NewToolResultText(res.String()), nil
}

func (s *Server) handleDump(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.reg.Dump(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(doc)), nil
}

func (s *Server) handleEndSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var doc []byte
	if s.archive != nil {
		doc, err = s.archive.Finalize(ctx, s.reg, id)
		if err != nil && doc != nil {
			s.logger.Error("MCP: Failed to archive ended session", "session_id", id, "err", err)
			err = nil
		}
	} else {
		doc, err = s.reg.End(id)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(doc)), nil
}

// result maps a registry error to a tool error the model can read.
func (s *Server) result(err error) (*mcp.CallToolResult, error) {
	if err != nil {
		s.logger.Warn("MCP: Tool call rejected", "err", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("ok"), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(SessionsURI, "Live Sessions",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.reg.List())
		if err != nil {
			return nil, fmt.Errorf("failed to list sessions: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      SessionsURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
