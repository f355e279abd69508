package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/rewind"
	"github.com/aretw0/rewind/internal/logging"
	"github.com/aretw0/rewind/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
)

// Sessions is the part of session.Manager the MCP server depends on.
type Sessions interface {
	Config() *domain.Config
	LoadOrStart(ctx context.Context, sessionID string) (*rewind.Machine, error)
	Apply(ctx context.Context, sessionID string, fn func(*rewind.Machine) error) (*rewind.Machine, error)
}

// SessionView is the structured result of every session tool.
type SessionView struct {
	SessionID string   `json:"session_id" jsonschema_description:"The session the operation ran on"`
	State     string   `json:"state" jsonschema_description:"The active state"`
	History   []string `json:"history" jsonschema_description:"Visited states, oldest first"`
	Redo      []string `json:"redo" jsonschema_description:"States available to redo, most recent last"`
	CanUndo   bool     `json:"can_undo"`
	CanRedo   bool     `json:"can_redo"`
	OK        *bool    `json:"ok,omitempty" jsonschema_description:"Set by undo and redo; false when there was nothing to do"`
}

// StatesResult lists state names.
type StatesResult struct {
	States []string `json:"states"`
}

type sessionArgs struct {
	SessionID string `mapstructure:"session_id"`
	Event     string `mapstructure:"event"`
	State     string `mapstructure:"state"`
}

// Server exposes rewind sessions as MCP tools.
type Server struct {
	sessions  Sessions
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger. MCP stdio owns Stdout, so keep it on Stderr.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions Sessions, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("rewind-mcp", strings.TrimSpace(rewind.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func sessionParam() mcp.ToolOption {
	return mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier; unknown sessions start at the initial state"))
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Return the active state, history and redo stack of a session."),
		sessionParam(),
		mcp.WithOutputSchema[SessionView](),
	), mcp.NewStructuredToolHandler(s.handleGetState))

	s.mcpServer.AddTool(mcp.NewTool("trigger",
		mcp.WithDescription("Fire an event; the machine follows the active state's transition for it."),
		sessionParam(),
		mcp.WithString("event", mcp.Required(), mcp.Description("Event name")),
		mcp.WithOutputSchema[SessionView](),
	), mcp.NewStructuredToolHandler(s.handleTrigger))

	s.mcpServer.AddTool(mcp.NewTool("change_state",
		mcp.WithDescription("Move directly to a configured state."),
		sessionParam(),
		mcp.WithString("state", mcp.Required(), mcp.Description("Target state")),
		mcp.WithOutputSchema[SessionView](),
	), mcp.NewStructuredToolHandler(s.handleChangeState))

	s.mcpServer.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Step back to the previous state in the history."),
		sessionParam(),
		mcp.WithOutputSchema[SessionView](),
	), mcp.NewStructuredToolHandler(s.handleUndo))

	s.mcpServer.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Re-apply the last undone state. Only valid right after an undo."),
		sessionParam(),
		mcp.WithOutputSchema[SessionView](),
	), mcp.NewStructuredToolHandler(s.handleRedo))

	s.mcpServer.AddTool(mcp.NewTool("reset",
		mcp.WithDescription("Return to the initial state and truncate the history."),
		sessionParam(),
		mcp.WithOutputSchema[SessionView](),
	), mcp.NewStructuredToolHandler(s.handleReset))

	s.mcpServer.AddTool(mcp.NewTool("list_states",
		mcp.WithDescription("List configured states, or only those that handle the given event."),
		mcp.WithString("event", mcp.Description("Optional event filter")),
		mcp.WithOutputSchema[StatesResult](),
	), mcp.NewStructuredToolHandler(s.handleListStates))
}

func decodeArgs(args map[string]interface{}) (sessionArgs, error) {
	var out sessionArgs
	if err := mapstructure.Decode(args, &out); err != nil {
		return out, fmt.Errorf("invalid arguments: %w", err)
	}
	return out, nil
}

func (s *Server) run(ctx context.Context, raw map[string]interface{}, fn func(*rewind.Machine, sessionArgs) error) (SessionView, error) {
	args, err := decodeArgs(raw)
	if err != nil {
		return SessionView{}, err
	}
	if args.SessionID == "" {
		return SessionView{}, errors.New("session_id is required")
	}
	m, err := s.sessions.Apply(ctx, args.SessionID, func(m *rewind.Machine) error {
		return fn(m, args)
	})
	if err != nil {
		s.logger.Warn("MCP tool failed", "session_id", args.SessionID, "err", err)
		return SessionView{}, err
	}
	return viewOf(args.SessionID, m), nil
}

func (s *Server) handleGetState(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionView, error) {
	a, err := decodeArgs(args)
	if err != nil {
		return SessionView{}, err
	}
	if a.SessionID == "" {
		return SessionView{}, errors.New("session_id is required")
	}
	m, err := s.sessions.LoadOrStart(ctx, a.SessionID)
	if err != nil {
		return SessionView{}, err
	}
	return viewOf(a.SessionID, m), nil
}

func (s *Server) handleTrigger(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionView, error) {
	return s.run(ctx, args, func(m *rewind.Machine, a sessionArgs) error {
		return m.Trigger(a.Event)
	})
}

func (s *Server) handleChangeState(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionView, error) {
	return s.run(ctx, args, func(m *rewind.Machine, a sessionArgs) error {
		return m.ChangeState(a.State)
	})
}

func (s *Server) handleUndo(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionView, error) {
	var ok bool
	view, err := s.run(ctx, args, func(m *rewind.Machine, _ sessionArgs) error {
		ok = m.Undo()
		return nil
	})
	if err == nil {
		view.OK = &ok
	}
	return view, err
}

func (s *Server) handleRedo(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionView, error) {
	var ok bool
	view, err := s.run(ctx, args, func(m *rewind.Machine, _ sessionArgs) error {
		ok = m.Redo()
		return nil
	})
	if err == nil {
		view.OK = &ok
	}
	return view, err
}

func (s *Server) handleReset(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionView, error) {
	return s.run(ctx, args, func(m *rewind.Machine, _ sessionArgs) error {
		m.Reset()
		return nil
	})
}

func (s *Server) handleListStates(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StatesResult, error) {
	a, err := decodeArgs(args)
	if err != nil {
		return StatesResult{}, err
	}
	m, err := rewind.New(s.sessions.Config())
	if err != nil {
		return StatesResult{}, err
	}
	if a.Event == "" {
		return StatesResult{States: m.StatesForEvent()}, nil
	}
	return StatesResult{States: m.StatesForEvent(a.Event)}, nil
}

func viewOf(id string, m *rewind.Machine) SessionView {
	return SessionView{
		SessionID: id,
		State:     m.State(),
		History:   m.History(),
		Redo:      m.RedoStack(),
		CanUndo:   m.CanUndo(),
		CanRedo:   m.CanRedo(),
	}
}
