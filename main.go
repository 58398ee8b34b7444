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
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/s1natex/taskboard-GO/internal/board"
	"github.com/s1natex/taskboard-GO/internal/config"
	"github.com/s1natex/taskboard-GO/internal/middleware"
	"github.com/s1natex/taskboard-GO/internal/mirror"
	"github.com/s1natex/taskboard-GO/internal/tasks"
	"github.com/s1natex/taskboard-GO/internal/telemetry"
	"github.com/s1natex/taskboard-GO/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := newLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger) // for third-party packages that use slog

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server_error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		ServiceName:  "taskboard",
	})
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	kv, closeKV, err := openKV(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeKV()

	ctrl := newController(cfg, kv, logger)
	if _, err := ctrl.Load(ctx); err != nil {
		// the board already shows a warning; keep serving local data
		logger.Warn("initial_load_degraded", slog.String("error", err.Error()))
	}

	r := web.NewRouter(web.Deps{
		Board:   ctrl,
		Logger:  logger,
		Limiter: middleware.NewLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	})
	srv := newServer(cfg.Addr, r)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_listen", slog.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("server_shutdown")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}

// openKV opens the configured backing store for the task collection.
func openKV(ctx context.Context, cfg config.Config) (tasks.KV, func(), error) {
	if cfg.StoreDriver == config.StoreMemory {
		return tasks.NewMemoryKV(), func() {}, nil
	}

	if dir := filepath.Dir(cfg.StorePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("store dir: %w", err)
		}
	}
	dsn, err := tasks.SQLiteFileDSN(cfg.StorePath)
	if err != nil {
		return nil, nil, err
	}
	db, err := tasks.NewSQLiteKV(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.ApplyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return db, func() { _ = db.Close() }, nil
}

func newController(cfg config.Config, kv tasks.KV, logger *slog.Logger) *board.Controller {
	opts := board.Options{
		Store:     tasks.NewLocalStore(kv, cfg.StorageKey, cfg.OwnerID, logger),
		Validator: tasks.Validator{Location: cfg.Location},
		Source:    cfg.LoadSource,
		Logger:    logger,
	}
	if cfg.RemoteBaseURL != "" {
		opts.Mirror = mirror.NewClient(cfg.RemoteBaseURL, cfg.OwnerID, mirror.WithAPIKey(cfg.RemoteAPIKey))
	}
	return board.NewController(opts)
}

func newServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		l = slog.LevelDebug
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: l,
	})
	return slog.New(handler)
}
