package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"grant-intake/internal/api"
	"grant-intake/internal/common/config"
	"grant-intake/internal/common/logger"
	"grant-intake/internal/common/observability"
	"grant-intake/internal/notifier"
	"grant-intake/internal/store"
	"grant-intake/internal/validator"
)

// retryWithBackoff retries operation with exponential backoff. Used only for
// connecting to the store at boot. It stops early when ctx is done or when
// permanent reports the error cannot be fixed by waiting.
func retryWithBackoff(ctx context.Context, operation func() error, permanent func(error) bool, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}
		if permanent != nil && permanent(err) {
			return fmt.Errorf("%s failed: %w", operationName, err)
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("%s aborted: %w", operationName, ctx.Err())
			case <-timer.C:
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func isConfigError(err error) bool {
	return errors.Is(err, store.ErrUnknownBackend)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})

	zapLog.Info("Starting grant intake service...",
		zap.String("environment", cfg.App.Environment),
		zap.String("address", cfg.Server.Address),
		zap.String("storeBackend", cfg.Store.Backend),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs := observability.New(cfg.App.Name, log)

	// --- Store ---
	var st store.Store
	err = retryWithBackoff(ctx, func() error {
		var err error
		st, err = store.New(ctx, cfg, log)
		return err
	}, isConfigError, 10, 2*time.Second, zapLog, "Store connection")
	if err != nil {
		zapLog.Fatal("store init failed", zap.Error(err))
	}
	defer st.Close()

	// --- Validation ---
	v, err := validator.New()
	if err != nil {
		zapLog.Fatal("validator init failed", zap.Error(err))
	}

	// --- Notifications ---
	multi, err := notifier.FromConfig(ctx, cfg.Notifications, log)
	if err != nil {
		zapLog.Fatal("notifier init failed", zap.Error(err))
	}
	dispatcher := notifier.NewDispatcher(multi, config.GetDuration(cfg.Notifications.Timeout), log)

	// --- HTTP ---
	router := api.NewRouter(api.Deps{
		Store:          st,
		Validator:      v,
		Dispatcher:     dispatcher,
		Notifier:       multi,
		Logger:         log,
		Observability:  obs,
		AdminToken:     cfg.Admin.Token,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		RequestTimeout: config.GetDuration(cfg.Server.RequestTimeout),
	})
	if cfg.Admin.Token == "" {
		zapLog.Warn("ADMIN_TOKEN not set; admin endpoints are disabled")
	}

	srv := api.NewServer(cfg.Server, router)
	serveErr := make(chan error, 1)
	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// --- Graceful Shutdown ---
	select {
	case <-ctx.Done():
		zapLog.Info("Shutdown signal received, draining requests...")
	case err := <-serveErr:
		if err != nil {
			zapLog.Error("HTTP server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP shutdown incomplete", zap.Error(err))
	}
	if err := dispatcher.Wait(shutdownCtx); err != nil {
		zapLog.Warn("Abandoning in-flight notifications", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Warn("Metrics provider shutdown failed", zap.Error(err))
	}

	zapLog.Info("Grant intake service stopped")
}
