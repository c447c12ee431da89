package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mlorentedev/correcteur/internal/config"
	"github.com/mlorentedev/correcteur/internal/metrics"
	"github.com/mlorentedev/correcteur/internal/server"
	"github.com/mlorentedev/correcteur/internal/upstream"
)

const (
	shutdownTimeout = 10 * time.Second

	// the server-side request deadline leaves this much room after the
	// upstream client gives up, so upstream timeouts still answer as JSON 500s
	requestTimeoutMargin = 5 * time.Second
)

type serveOptions struct {
	configPath string
	useMock    bool
	port       int
}

func (o *serveOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.configPath, "config", "", "path to config.yaml")
	cmd.Flags().BoolVar(&o.useMock, "mock", false, "use mock upstream instead of the Anthropic API")
	cmd.Flags().IntVar(&o.port, "port", 0, "override listen port")
}

func runServe(ctx context.Context, opts *serveOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.port > 0 {
		cfg.Port = opts.port
	}

	logger, err := newLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	completer := buildCompleter(cfg, opts.useMock)
	if completer.Available() {
		metrics.UpstreamAvailable.Set(1)
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           server.SetupMux(completer, cfg.MaxTextLength, requestTimeout(cfg)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("correcteur listening", "addr", srv.Addr, "upstream", completer.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		slog.Info("server stopped")
		return nil
	})

	return g.Wait()
}

func requestTimeout(cfg config.Config) time.Duration {
	if cfg.UpstreamTimeout <= 0 {
		return 0
	}
	return cfg.UpstreamTimeout + requestTimeoutMargin
}

func buildCompleter(cfg config.Config, useMock bool) upstream.Completer {
	if useMock {
		slog.Info("mode: mock upstream enabled")
		return &upstream.Mock{Delay: 500 * time.Millisecond}
	}

	if cfg.AnthropicAPIKey == "" {
		slog.Warn("no Anthropic API key configured; requests will fail upstream (set ANTHROPIC_API_KEY)")
	}
	slog.Info("mode: anthropic", "model", cfg.Model, "timeout", cfg.UpstreamTimeout)
	return &upstream.Anthropic{
		BaseURL:   cfg.AnthropicURL,
		APIKey:    cfg.AnthropicAPIKey,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		Client:    &http.Client{Timeout: cfg.UpstreamTimeout},
	}
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("log format: unknown %q (want text or json)", format)
	}
}
