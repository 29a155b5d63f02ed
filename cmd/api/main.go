package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/healthdash/internal/config"
	"github.com/hamed0406/healthdash/internal/dashboard"
	"github.com/hamed0406/healthdash/internal/domain"
	"github.com/hamed0406/healthdash/internal/httpapi"
	"github.com/hamed0406/healthdash/internal/logging"
	"github.com/hamed0406/healthdash/internal/probe"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("api_exit", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	var checker probe.Checker = probe.NewHTTPChecker()
	if cfg.DNSDiagnostics {
		checker = probe.NewDiagnosingChecker(checker)
	}

	targets := domain.DefaultTargets(cfg.BackendURL)
	board := dashboard.New(logger, checker, targets)
	for _, t := range targets {
		logger.Info("target_configured", zap.String("service", t.Name), zap.String("endpoint", t.Endpoint))
	}

	// Probes started from here or from requests are cancelled on shutdown.
	bg, cancelBg := context.WithCancel(context.Background())
	defer cancelBg()

	board.StartAll(bg)

	api := httpapi.NewServer(bg, logger, board)
	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: api.Router(httpapi.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			CheckRPM:       cfg.CheckRPM,
			CheckBurst:     cfg.CheckBurst,
			TrustProxy:     cfg.TrustProxy,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		// ?wait=true can hold a response for a full probe timeout.
		WriteTimeout: probe.Timeout + 5*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api_listen", zap.String("addr", cfg.Addr), zap.String("backend_url", cfg.BackendURL))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("api_shutdown")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	cancelBg()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return multierr.Append(srv.Shutdown(shutdownCtx), ignoreSyncErr(logger.Sync()))
}

// ignoreSyncErr drops the error Sync reports for stderr on terminals.
func ignoreSyncErr(err error) error {
	if err == nil || errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EINVAL) {
		return nil
	}
	return err
}
