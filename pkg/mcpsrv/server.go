package mcpsrv

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/formjson-mcp/internal/config"
	"github.com/usestring/formjson-mcp/internal/dispatch"
	"github.com/usestring/formjson-mcp/internal/jsonpath"
	"github.com/usestring/formjson-mcp/internal/logging"
	"github.com/usestring/formjson-mcp/internal/mcp"
	"github.com/usestring/formjson-mcp/internal/mcp/tools"
	"github.com/usestring/formjson-mcp/internal/pipeline"
	"github.com/usestring/formjson-mcp/internal/widgets"
)

// Server is the form widget MCP server.
// It wraps the internal implementation and provides extension points.
type Server struct {
	internal   *mcp.Server
	deps       *Deps
	logCleanup func() error
}

// NewServer creates a new MCP server with the builtin widget tools.
//
// Configuration is loaded from the environment; use functional options to
// override it, add custom tools, etc.
func NewServer(opts ...Option) (*Server, error) {
	// Build configuration from options
	cfg := &serverConfig{
		config: config.Load(), // Load defaults from environment
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.pageURL != "" {
		cfg.config.PageURL = cfg.pageURL
	}

	// Setup logging
	logCfg := logging.Config{
		Level:      cfg.config.LogLevel,
		Format:     cfg.config.LogFormat,
		FilePath:   cfg.config.LogFile,
		MaxSizeMB:  cfg.config.LogMaxSizeMB,
		MaxBackups: cfg.config.LogMaxBackups,
		MaxAgeDays: cfg.config.LogMaxAgeDays,
		Compress:   cfg.config.LogCompress,
	}
	if cfg.logLevel != "" {
		logCfg.Level = cfg.logLevel
	}
	if cfg.logFile != "" {
		logCfg.FilePath = cfg.logFile
	}
	logCleanup, err := logging.Setup(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}

	// Create infrastructure
	registry, err := NewRegistry(cfg.config, cfg.httpClient, cfg.proxy)
	if err != nil {
		return nil, err
	}

	// Create deps for internal tools and custom tools
	toolDeps := &tools.Deps{
		Config:  cfg.config,
		Widgets: registry,
		Paths:   registry.Extractor(),
	}

	// Create public deps (same values, different type for public API)
	deps := &Deps{
		Config:  cfg.config,
		Widgets: registry,
		Paths:   registry.Extractor(),
	}

	// Build internal server options
	var internalOpts []mcp.ServerOption
	if !cfg.disableBuiltinTools {
		internalOpts = append(internalOpts, mcp.WithBuiltinTools())
	}
	if !cfg.disableBuiltinPrompts {
		internalOpts = append(internalOpts, mcp.WithBuiltinPrompts())
	}

	// Add custom extension registration callbacks
	for _, fn := range cfg.toolRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}
	for _, fn := range cfg.promptRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}
	for _, fn := range cfg.resourceRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}

	// Add deferred tool registrations (tools that need Deps access)
	for _, fn := range cfg.deferredToolRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(func(srv *sdkmcp.Server) {
			fn(srv, deps)
		}))
	}

	// Create internal server
	internal, err := mcp.NewServer(toolDeps, internalOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	return &Server{
		internal:   internal,
		deps:       deps,
		logCleanup: logCleanup,
	}, nil
}

// NewRegistry builds the widget registry described by cfg. A nil client
// gets one with cfg's timeout; a nil proxy gets an HTTPProxyExecutor whose
// client honours cfg.ProxyInsecureTLS.
func NewRegistry(cfg *config.Config, client *http.Client, proxy dispatch.ProxyExecutor) (*widgets.Registry, error) {
	engine, err := jsonpath.NewEngine(cfg.PathCacheMaxItems)
	if err != nil {
		return nil, fmt.Errorf("failed to create path engine: %w", err)
	}

	if client == nil {
		client = &http.Client{Timeout: cfg.HTTPClientTimeout}
	}
	if proxy == nil {
		proxyClient := client
		if cfg.ProxyInsecureTLS {
			transport := http.DefaultTransport.(*http.Transport).Clone()
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
			proxyClient = &http.Client{Timeout: cfg.HTTPClientTimeout, Transport: transport}
		}
		proxy = &dispatch.HTTPProxyExecutor{Client: proxyClient, MaxResponseBytes: cfg.MaxResponseBytes}
	}

	registry, err := widgets.New(cfg.WidgetCacheItems,
		widgets.WithDefaultPageURL(cfg.PageURL),
		widgets.WithExtractor(jsonpath.NewExtractor(engine)),
		widgets.WithDispatchOptions(
			dispatch.WithHTTPClient(client),
			dispatch.WithProxyExecutor(proxy),
			dispatch.WithMaxResponseBytes(cfg.MaxResponseBytes),
		),
		widgets.WithListener(pipeline.EmitterFunc(logChange)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create widget registry: %w", err)
	}
	return registry, nil
}

func logChange(ev pipeline.ChangeEvent) {
	slog.Debug("widget value changed",
		slog.String("event_id", ev.ID),
		slog.String("trigger", string(ev.Trigger)),
	)
}

// Run starts the MCP server with stdio transport.
// The server runs until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.internal.Run(ctx)
}

// Close cleans up server resources.
func (s *Server) Close() error {
	if s.logCleanup != nil {
		return s.logCleanup()
	}
	return nil
}

// Deps returns the dependencies for building custom tools.
func (s *Server) Deps() *Deps {
	return s.deps
}

// MCPServer returns the underlying MCP server, e.g. to connect an in-memory
// transport in tests.
func (s *Server) MCPServer() *sdkmcp.Server {
	return s.internal.MCPServer()
}
