// Command domsnap captures actionable page snapshots for browser agents.
//
// Usage:
//
//	domsnap -url https://example.com            # one-shot capture to stdout
//	domsnap -config domsnap.yaml                # serve HTTP API per config
//	domsnap -config domsnap.yaml -mcp           # serve MCP tools on stdio
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/domsnap"
)

func main() {
	configPath := flag.String("config", "", "path to domsnap.yaml config file")
	singleURL := flag.String("url", "", "capture a single URL and exit")
	expansion := flag.Int("expansion", 0, "viewport expansion in pixels (-1 disables occlusion checks)")
	focus := flag.Int("focus", -1, "highlight only this index (-1 highlights all)")
	noHighlight := flag.Bool("no-highlight", false, "skip drawing the overlay")
	markdown := flag.Bool("markdown", false, "include a markdown digest")
	storePath := flag.String("store", "", "SQLite snapshot history path (overrides config)")
	mcpStdio := flag.Bool("mcp", false, "serve MCP tools on stdio")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, options{
		configPath:  *configPath,
		singleURL:   *singleURL,
		expansion:   *expansion,
		focus:       *focus,
		noHighlight: *noHighlight,
		markdown:    *markdown,
		storePath:   *storePath,
		mcpStdio:    *mcpStdio,
	}); err != nil {
		logger.Error("domsnap: fatal", "error", err)
		os.Exit(1)
	}
}

type options struct {
	configPath  string
	singleURL   string
	expansion   int
	focus       int
	noHighlight bool
	markdown    bool
	storePath   string
	mcpStdio    bool
}

func run(ctx context.Context, logger *slog.Logger, opts options) error {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}

	sinks := domsnap.BuildSinks(cfg.Sinks, logger)

	s, err := domsnap.New(cfg, logger, sinks...)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer s.Close()

	if err := s.Start(); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	// One-shot: capture and print.
	if opts.singleURL != "" {
		return runSingle(ctx, s, opts)
	}

	if opts.mcpStdio {
		srv := mcp.NewServer(&mcp.Implementation{
			Name:    "domsnap",
			Version: "1.0.0",
		}, nil)
		s.RegisterMCP(srv)
		logger.Info("domsnap: MCP serving on stdio")
		return srv.Run(ctx, &mcp.StdioTransport{})
	}

	if cfg.HTTP.Addr == "" {
		fmt.Fprintln(os.Stderr, "usage: domsnap -url <url> | -config <file> [-mcp]")
		os.Exit(1)
	}

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: s.HTTPRouter(),
	}
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpSrv.Shutdown(shutCtx)
	}()

	logger.Info("domsnap: HTTP serving", "addr", cfg.HTTP.Addr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http: %w", err)
	}
	return nil
}

func runSingle(ctx context.Context, s *domsnap.Snapshotter, opts options) error {
	highlight := !opts.noHighlight
	snap, err := s.Capture(ctx, domsnap.CaptureRequest{
		URL:               opts.singleURL,
		HighlightElements: &highlight,
		FocusIndex:        &opts.focus,
		ViewportExpansion: &opts.expansion,
		Markdown:          &opts.markdown,
	})
	if err != nil {
		return fmt.Errorf("capture: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

func resolveConfig(opts options) (*domsnap.Config, error) {
	var cfg *domsnap.Config
	if opts.configPath != "" {
		loaded, err := domsnap.LoadConfigFile(opts.configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	} else {
		cfg = domsnap.DefaultConfig()
	}

	if opts.storePath != "" {
		cfg.Store.Path = opts.storePath
	}
	return cfg, nil
}
