package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/pkg/compare"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/learn"
	"github.com/aretw0/stepwise/pkg/registry"
	"github.com/aretw0/stepwise/pkg/runner"
	"github.com/aretw0/stepwise/pkg/session"
	"github.com/aretw0/stepwise/pkg/viz"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

// CatalogURI is the resource listing every algorithm.
const CatalogURI = "stepwise://catalog"

// MaxRunSize bounds generated inputs for run_algorithm.
const MaxRunSize = 2000

// RunArgs are the arguments of run_algorithm.
type RunArgs struct {
	Kind   string         `json:"kind"`
	Values []int          `json:"values,omitempty"`
	Size   int            `json:"size,omitempty"`
	Seed   uint64         `json:"seed,omitempty"`
	Params map[string]any `json:"params,omitempty"`
}

// RunResult is the structured output of run_algorithm.
type RunResult struct {
	Kind    domain.Kind    `json:"kind" jsonschema_description:"The algorithm that ran"`
	Steps   int64          `json:"steps" jsonschema_description:"Visible steps taken"`
	Outcome domain.Outcome `json:"outcome" jsonschema_description:"What the run found or computed"`
	Stats   domain.Stats   `json:"stats" jsonschema_description:"Operation counters and elapsed time"`
	Params  map[string]any `json:"params,omitempty" jsonschema_description:"Effective parameters"`
	Frame   *domain.Frame  `json:"frame" jsonschema_description:"Final state of the container"`
}

// CompareArgs are the arguments of compare_algorithms.
type CompareArgs struct {
	Kinds []string `json:"kinds"`
	Sizes []int    `json:"sizes,omitempty"`
	Seed  uint64   `json:"seed,omitempty"`
}

// KindArgs names one algorithm.
type KindArgs struct {
	Kind string `json:"kind"`
}

// WorkspaceArgs are the arguments of create_workspace and start_workspace.
type WorkspaceArgs struct {
	Workspace string         `json:"workspace,omitempty"`
	Kind      string         `json:"kind"`
	Size      int            `json:"size,omitempty"`
	Params    map[string]any `json:"params,omitempty"`
}

// EditArgs are the arguments of edit_workspace.
type EditArgs struct {
	Workspace string `json:"workspace"`
	session.Edit
}

// WorkspaceView is the structured output of the workspace tools.
type WorkspaceView struct {
	Workspace string          `json:"workspace"`
	State     domain.RunState `json:"state"`
	Stats     domain.Stats    `json:"stats"`
	Params    map[string]any  `json:"params,omitempty"`
	Frame     *domain.Frame   `json:"frame,omitempty"`
}

// Server exposes the algorithm catalog as an MCP server.
type Server struct {
	reg       *registry.Registry
	comparer  *compare.Comparer
	deck      *learn.Deck
	sessions  *session.Manager
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRegistry sets the catalog served.
func WithRegistry(reg *registry.Registry) Option {
	return func(s *Server) {
		s.reg = reg
	}
}

// WithSessions sets the workspace manager behind the workspace tools.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) {
		s.sessions = m
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(opts ...Option) *Server {
	s := &Server{
		reg:    registry.Default(),
		deck:   learn.Default(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.comparer = compare.New(compare.WithRegistry(s.reg), compare.WithLogger(s.logger))
	if s.sessions == nil {
		s.sessions = session.NewManager(session.WithRegistry(s.reg), session.WithLogger(s.logger))
	}
	s.mcpServer = server.NewMCPServer("stepwise-mcp", strings.TrimSpace(stepwise.Version),
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))
	httpServer := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_algorithms",
		mcp.WithDescription("List the available algorithms with their family, complexity and required parameters."),
		mcp.WithString("family", mcp.Description("Only list algorithms that run on this container family"),
			mcp.Enum("array", "grid", "graph", "tree", "table", "board", "population")),
	), s.handleList)

	s.mcpServer.AddTool(mcp.NewTool("run_algorithm",
		mcp.WithDescription("Run an algorithm to completion on given values or a generated input and report the outcome and operation counts."),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Algorithm kind, e.g. quick-sort or dijkstra")),
		mcp.WithArray("values", mcp.Description("Array input; omit to generate one"), mcp.WithNumberItems()),
		mcp.WithNumber("size", mcp.Description("Size of the generated input"), mcp.Min(1), mcp.Max(MaxRunSize)),
		mcp.WithNumber("seed", mcp.Description("Seed for the generated input")),
		mcp.WithObject("params", mcp.Description("Algorithm parameters such as target or start")),
		mcp.WithOutputSchema[RunResult](),
	), mcp.NewStructuredToolHandler(s.handleRun))

	s.mcpServer.AddTool(mcp.NewTool("compare_algorithms",
		mcp.WithDescription("Compare two or more algorithms of the same family over several input sizes."),
		mcp.WithArray("kinds", mcp.Required(), mcp.Description("Algorithm kinds"), mcp.MinItems(2), mcp.WithStringItems()),
		mcp.WithArray("sizes", mcp.Description("Input sizes (default 10, 50, 100, 500, 1000)"), mcp.WithNumberItems()),
		mcp.WithNumber("seed", mcp.Description("Seed for the generated inputs")),
	), mcp.NewTypedToolHandler(s.handleCompare))

	s.mcpServer.AddTool(mcp.NewTool("explain_algorithm",
		mcp.WithDescription("Explain how an algorithm works, as markdown."),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Algorithm kind")),
	), mcp.NewTypedToolHandler(s.handleExplain))

	s.mcpServer.AddTool(mcp.NewTool("create_workspace",
		mcp.WithDescription("Create a workspace holding a generated input for an algorithm. Edit it, then start a paced run on it."),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Algorithm kind the input is generated for")),
		mcp.WithNumber("size", mcp.Description("Size of the generated input"), mcp.Min(1), mcp.Max(MaxRunSize)),
		mcp.WithObject("params", mcp.Description("Algorithm parameters")),
	), mcp.NewTypedToolHandler(s.handleCreateWorkspace))

	s.mcpServer.AddTool(mcp.NewTool("edit_workspace",
		mcp.WithDescription("Edit the workspace container between runs: toggle walls, set weights, move start or target, add nodes or edges, insert, delete or update array elements."),
		mcp.WithString("workspace", mcp.Required(), mcp.Description("Workspace id")),
		mcp.WithString("op", mcp.Required(), mcp.Description("Edit operation"),
			mcp.Enum(session.EditToggleWall, session.EditSetWeight, session.EditSetStart, session.EditSetTarget,
				session.EditAddNode, session.EditAddEdge, session.EditInsert, session.EditDelete, session.EditUpdate)),
		mcp.WithNumber("row", mcp.Description("Grid row"), mcp.Min(0)),
		mcp.WithNumber("col", mcp.Description("Grid column"), mcp.Min(0)),
		mcp.WithString("node", mcp.Description("Graph node id (edge origin for add-edge)")),
		mcp.WithString("to", mcp.Description("Edge destination")),
		mcp.WithNumber("x", mcp.Description("Node x coordinate")),
		mcp.WithNumber("y", mcp.Description("Node y coordinate")),
		mcp.WithNumber("weight", mcp.Description("Edge weight or cell cost"), mcp.Min(0)),
		mcp.WithNumber("index", mcp.Description("Array index; random when omitted"), mcp.Min(0)),
		mcp.WithNumber("value", mcp.Description("Array value; random when omitted")),
	), mcp.NewTypedToolHandler(s.handleEditWorkspace))

	s.mcpServer.AddTool(mcp.NewTool("start_workspace",
		mcp.WithDescription("Start a paced run on the workspace container."),
		mcp.WithString("workspace", mcp.Required(), mcp.Description("Workspace id")),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Algorithm kind")),
		mcp.WithObject("params", mcp.Description("Algorithm parameters")),
	), mcp.NewTypedToolHandler(s.handleStartWorkspace))
}

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	family := domain.Family(request.GetString("family", ""))
	var out []registry.Entry
	for _, e := range s.reg.List() {
		if family == "" || e.Supports(family) {
			out = append(out, e)
		}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleRun(ctx context.Context, request mcp.CallToolRequest, args RunArgs) (RunResult, error) {
	kind := domain.Kind(args.Kind)
	var (
		c      viz.Container
		params = args.Params
		err    error
	)
	if len(args.Values) > 0 {
		c = viz.NewArray(args.Values)
	} else {
		size := args.Size
		if size <= 0 {
			size = 12
		}
		if size > MaxRunSize {
			return RunResult{}, fmt.Errorf("%w: size %d exceeds %d", domain.ErrInvalidParams, size, MaxRunSize)
		}
		c, params, err = s.reg.Input(kind, params, viz.NewRand(args.Seed), size)
		if err != nil {
			return RunResult{}, err
		}
	}
	proc, err := s.reg.Prepare(kind, c, params)
	if err != nil {
		return RunResult{}, err
	}
	res, err := runner.Execute(ctx, proc)
	if err != nil {
		return RunResult{}, err
	}
	s.logger.Info("mcp run", "kind", kind, "steps", res.Steps, "operations", res.Stats.Operations)
	return RunResult{
		Kind:    kind,
		Steps:   res.Steps,
		Outcome: res.Outcome,
		Stats:   res.Stats,
		Params:  params,
		Frame:   c.Frame(),
	}, nil
}

func (s *Server) handleCompare(ctx context.Context, request mcp.CallToolRequest, args CompareArgs) (*mcp.CallToolResult, error) {
	req := compare.Request{Sizes: args.Sizes, Seed: args.Seed}
	for _, k := range args.Kinds {
		req.Kinds = append(req.Kinds, domain.Kind(k))
	}
	rep, err := s.comparer.Run(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultStructured(rep, rep.Table()), nil
}

func (s *Server) handleExplain(ctx context.Context, request mcp.CallToolRequest, args KindArgs) (*mcp.CallToolResult, error) {
	card, err := s.deck.Card(s.reg, domain.Kind(args.Kind))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(card.Markdown()), nil
}

func (s *Server) handleCreateWorkspace(ctx context.Context, request mcp.CallToolRequest, args WorkspaceArgs) (*mcp.CallToolResult, error) {
	if args.Size > MaxRunSize {
		return mcp.NewToolResultError(fmt.Sprintf("size %d exceeds %d", args.Size, MaxRunSize)), nil
	}
	ws, err := s.sessions.Create(ctx)
	if err != nil {
		return nil, err
	}
	c, params, err := s.sessions.Generate(ctx, ws.ID, domain.Kind(args.Kind), args.Params, args.Size)
	if err != nil {
		_ = s.sessions.Delete(ctx, ws.ID)
		return mcp.NewToolResultError(err.Error()), nil
	}
	view := s.view(ws)
	view.Params, view.Frame = params, c.Frame()
	return mcp.NewToolResultStructured(view, "workspace "+ws.ID), nil
}

func (s *Server) handleEditWorkspace(ctx context.Context, request mcp.CallToolRequest, args EditArgs) (*mcp.CallToolResult, error) {
	ws, err := s.sessions.Get(args.Workspace)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	frame, err := s.sessions.Edit(ctx, ws.ID, args.Edit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	view := s.view(ws)
	view.Frame = frame
	return mcp.NewToolResultStructured(view, args.Op+" applied"), nil
}

func (s *Server) handleStartWorkspace(ctx context.Context, request mcp.CallToolRequest, args WorkspaceArgs) (*mcp.CallToolResult, error) {
	ws, err := s.sessions.Get(args.Workspace)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.sessions.Start(ctx, ws.ID, domain.Kind(args.Kind), args.Params); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	view := s.view(ws)
	return mcp.NewToolResultStructured(view, string(view.State.Status)), nil
}

func (s *Server) view(ws *session.Workspace) WorkspaceView {
	u := ws.Runner().View()
	if c := ws.Container(); c != nil {
		u.Frame = c.Frame()
	}
	_, params := ws.Selection()
	return WorkspaceView{Workspace: ws.ID, State: u.State, Stats: u.Stats, Params: params, Frame: u.Frame}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(CatalogURI, "Algorithm Catalog",
		mcp.WithResourceDescription("Every algorithm with its family, complexity and defaults."),
		mcp.WithMIMEType("application/json"),
	), s.readCatalog)
}

func (s *Server) readCatalog(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(s.reg.List())
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      CatalogURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
