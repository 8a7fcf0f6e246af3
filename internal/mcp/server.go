// ABOUTME: MCP server implementation for socrata-mcp
// ABOUTME: Exposes Socrata datasets to AI assistants as tools, resources, and prompts
package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/Thomas-TyTech/Socrata-MCP/internal/analysis"
	"github.com/Thomas-TyTech/Socrata-MCP/internal/config"
	"github.com/Thomas-TyTech/Socrata-MCP/internal/logging"
	"github.com/Thomas-TyTech/Socrata-MCP/internal/socrata"
)

const instructions = `Tools for exploring Socrata open data portals such as data.cityofchicago.org.
Start with search_datasets to find a dataset id, then get_dataset_info for its columns.
SoQL queries must not include FROM clauses; the dataset is implied by dataset_id.`

// Datasets is the slice of the Socrata client the server needs.
type Datasets interface {
	Query(ctx context.Context, domain, datasetID, query string, limit int, format string) (*socrata.QueryResult, error)
	SearchDatasets(ctx context.Context, domain, query string, limit int) ([]socrata.DatasetSummary, error)
	GetDatasetInfo(ctx context.Context, domain, datasetID string) (*socrata.DatasetInfo, error)
	NaturalLanguageQuery(ctx context.Context, domain, datasetID, question string, execute bool) (*socrata.NLQueryResult, error)
	AnalyzeData(ctx context.Context, domain, datasetID, query string, kind analysis.Kind) (*analysis.Report, error)
}

// Options tunes the server. Zero values fall back to config.Default.
type Options struct {
	MaxResponseBytes int
	TruncateItems    int
	SearchTimeout    time.Duration
	Logger           *log.Logger
}

// Server wraps the MCP server with socrata-specific functionality.
type Server struct {
	mcpServer *mcp.Server
	datasets  Datasets
	logger    *log.Logger
	guard     guard

	searchTimeout time.Duration
}

// NewServer creates a new socrata MCP server backed by datasets.
func NewServer(datasets Datasets, opts Options) *Server {
	def := config.Default()
	if opts.MaxResponseBytes <= 0 {
		opts.MaxResponseBytes = def.MaxResponseBytes
	}
	if opts.TruncateItems <= 0 {
		opts.TruncateItems = def.TruncateItems
	}
	if opts.SearchTimeout <= 0 {
		opts.SearchTimeout = def.SearchTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	impl := &mcp.Implementation{
		Name:    config.AppName,
		Version: config.Version,
	}

	server := &Server{
		mcpServer:     mcp.NewServer(impl, &mcp.ServerOptions{Instructions: instructions}),
		datasets:      datasets,
		logger:        opts.Logger,
		guard:         guard{maxBytes: opts.MaxResponseBytes, keep: opts.TruncateItems},
		searchTimeout: opts.SearchTimeout,
	}

	// Register components
	server.registerPrompts()
	server.registerTools()
	server.registerResources()

	return server
}

// Run starts the MCP server with stdio transport.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server", "transport", "stdio")
	transport := &mcp.StdioTransport{}
	return s.mcpServer.Run(ctx, transport)
}

// Handler returns a streamable HTTP handler serving this server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)
}

// RunHTTP listens on addr and serves the streamable HTTP transport until
// ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("starting MCP server", "transport", "http", "addr", ln.Addr().String())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down MCP server")
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
