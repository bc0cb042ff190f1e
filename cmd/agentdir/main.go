// Command agentdir runs the agent card registry: an HTTP CRUD API plus an
// optional MCP tool surface over a shared storage backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jllopis/agentdir/pkg/config"
	"github.com/jllopis/agentdir/pkg/httpapi"
	agentdirmcp "github.com/jllopis/agentdir/pkg/mcp"
	"github.com/jllopis/agentdir/pkg/registry"
	"github.com/jllopis/agentdir/pkg/store"
	"github.com/jllopis/agentdir/pkg/telemetry"
)

const version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(err)
	}
	telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	var metrics *telemetry.RegistryMetrics
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitWithConfig("agentdir", version, telemetry.Config{
			Exporter:     cfg.Telemetry.Exporter,
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
			OTLPInsecure: cfg.Telemetry.OTLPInsecure,
		})
		if err != nil {
			fatal(err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				slog.Warn("telemetry shutdown", "error", err)
			}
		}()
		if metrics, err = telemetry.NewRegistryMetrics(); err != nil {
			fatal(err)
		}
	}

	backend, closeStore, err := openStore(cfg.Store)
	if err != nil {
		fatal(err)
	}
	defer closeStore()

	fetchTimeout := cfg.Fetch.Timeout
	if fetchTimeout <= 0 {
		fetchTimeout = 30 * time.Second
	}
	reg := registry.New(backend,
		registry.WithHTTPClient(&http.Client{Timeout: fetchTimeout}),
		registry.WithMetrics(metrics),
	)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           httpapi.New(reg).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		slog.Info("http api listening", "addr", cfg.Server.Addr, "backend", cfg.Store.Backend)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	if cfg.MCP.Enabled {
		mcpServer := agentdirmcp.NewServer("agentdir", version)
		agentdirmcp.RegisterTools(mcpServer, reg)
		go func() {
			var err error
			switch cfg.MCP.Transport {
			case "http":
				slog.Info("mcp server listening", "transport", "http", "addr", cfg.MCP.Addr)
				err = mcpServer.ServeStreamableHTTP(cfg.MCP.Addr)
			default:
				slog.Info("mcp server on stdio")
				err = mcpServer.ServeStdio()
			}
			if err != nil {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-errCh:
		slog.Error("server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown", "error", err)
	}
}

func openStore(cfg config.StoreConfig) (store.Store, func(), error) {
	switch cfg.Backend {
	case "", "file":
		var opts []store.FileOption
		if cfg.StrictLoad {
			opts = append(opts, store.WithStrictLoad())
		}
		return store.NewFileStore(cfg.Path, opts...), func() {}, nil
	case "sqlite":
		s, err := store.OpenSQLiteStore(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "agentdir:", err)
	os.Exit(1)
}
