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

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/internal/logging"
	"github.com/aretw0/abacus/pkg/display"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/keymap"
	"github.com/aretw0/abacus/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// KeymapURI identifies the key binding resource.
const KeymapURI = "abacus://keymap"

// PressKeysArgs are the arguments of the press_keys tool.
type PressKeysArgs struct {
	Keys     string `json:"keys"`
	KeyNames string `json:"key_names,omitempty"`
	State    string `json:"state,omitempty"`
}

// PressKeysResponse mirrors the HTTP adapter's calculator response.
type PressKeysResponse struct {
	State        domain.State   `json:"state" jsonschema_description:"Calculator state to pass back on the next call"`
	Display      display.Lines  `json:"display" jsonschema_description:"The two display lines"`
	Outcome      domain.Outcome `json:"outcome,omitempty" jsonschema_description:"computed or division_by_zero when the keys triggered one"`
	Notification string         `json:"notification,omitempty" jsonschema_description:"Message to show the user, if any"`
}

// Server exposes the calculator engine as an MCP server. It is stateless:
// clients carry the state between calls.
type Server struct {
	engine    ports.Engine
	keymap    *keymap.Keymap
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithKeymap replaces the default key bindings.
func WithKeymap(k *keymap.Keymap) Option {
	return func(s *Server) {
		s.keymap = k
	}
}

// WithLogger sets the logger. It must not write to stdout when serving stdio.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine ports.Engine, opts ...Option) *Server {
	s := &Server{
		engine: engine,
		keymap: keymap.Default(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcpServer = server.NewMCPServer("abacus-mcp", strings.TrimSpace(abacus.Version))
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, mainly for tests and embedding.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://localhost" + addr
	if !strings.HasPrefix(addr, ":") {
		baseURL = "http://" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: press_keys
	pressTool := mcp.NewTool("press_keys",
		mcp.WithDescription("Press calculator keys. Every character of 'keys' is one key press "+
			"(digits, '.', + - * / m, n for ±, %, = and c to clear). Pass the returned state back to continue."),
		mcp.WithString("keys", mcp.Required(), mcp.Description("Keys to press, e.g. \"12+30=\"")),
		mcp.WithString("key_names", mcp.Description("JSON array of named keys pressed before 'keys', e.g. [\"Backspace\"]")),
		mcp.WithString("state", mcp.Description("JSON calculator state from a previous call (optional)")),
		mcp.WithOutputSchema[PressKeysResponse](),
	)
	s.mcpServer.AddTool(pressTool, mcp.NewStructuredToolHandler(s.handlePressKeys))

	// TOOL: format_result
	s.mcpServer.AddTool(mcp.NewTool("format_result",
		mcp.WithDescription("Format a number the way the calculator display would show it."),
		mcp.WithNumber("value", mcp.Required(), mcp.Description("The value to format")),
	), s.handleFormatResult)
}

func (s *Server) handlePressKeys(ctx context.Context, request mcp.CallToolRequest, args PressKeysArgs) (PressKeysResponse, error) {
	var state *domain.State
	if args.State != "" {
		state = &domain.State{}
		if err := json.Unmarshal([]byte(args.State), state); err != nil {
			return PressKeysResponse{}, fmt.Errorf("%w: state: %v", domain.ErrInvalidInput, err)
		}
		if err := abacus.ValidateState(*state); err != nil {
			return PressKeysResponse{}, err
		}
	}

	var inputs []domain.Input
	if args.KeyNames != "" {
		var names []string
		if err := json.Unmarshal([]byte(args.KeyNames), &names); err != nil {
			return PressKeysResponse{}, fmt.Errorf("%w: key_names: %v", domain.ErrInvalidInput, err)
		}
		named, err := s.keymap.Decode(names)
		if err != nil {
			return PressKeysResponse{}, err
		}
		inputs = append(inputs, named...)
	}
	typed, err := s.keymap.DecodeString(args.Keys)
	if err != nil {
		return PressKeysResponse{}, err
	}
	inputs = append(inputs, typed...)

	next, outcome, err := s.engine.ApplyAll(ctx, state, inputs)
	if err != nil {
		s.logger.Warn("MCP press_keys rejected", "err", err)
		return PressKeysResponse{}, err
	}

	return PressKeysResponse{
		State:        *next,
		Display:      display.Compose(*next),
		Outcome:      outcome,
		Notification: outcome.Notification(),
	}, nil
}

func (s *Server) handleFormatResult(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	value, err := request.RequireFloat("value")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(abacus.FormatResult(value)), nil
}

type bindingView struct {
	Key      string          `json:"key"`
	Command  domain.Command  `json:"command"`
	Digit    string          `json:"digit,omitempty"`
	Operator domain.Operator `json:"operator,omitempty"`
}

func (s *Server) registerResources() {
	// EXPOSE: abacus://keymap
	s.mcpServer.AddResource(mcp.NewResource(KeymapURI, "Calculator key bindings",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.bindings())
		if err != nil {
			return nil, fmt.Errorf("failed to encode keymap: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      KeymapURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

func (s *Server) bindings() []bindingView {
	all := s.keymap.Bindings()
	out := make([]bindingView, 0, len(all))
	for _, b := range all {
		v := bindingView{Key: b.Key, Command: b.Input.Command, Operator: b.Input.Operator}
		if b.Input.Command == domain.CmdDigit {
			v.Digit = string(b.Input.Digit)
		}
		out = append(out, v)
	}
	return out
}
