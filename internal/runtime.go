package internal

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// runtimeConfig is what App.Run hands to the server loop.
type runtimeConfig struct {
	handler         http.Handler
	address         string
	logger          *slog.Logger
	shutdownTimeout time.Duration
	startupHooks    []func(context.Context) error
	shutdownHooks   []func(context.Context) error
	baseCtx         context.Context
}

func (cfg runtimeConfig) withDefaults() runtimeConfig {
	if cfg.address == "" {
		cfg.address = ":8080"
	}
	if cfg.shutdownTimeout == 0 {
		cfg.shutdownTimeout = defaultShutdownTimeout
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.baseCtx == nil {
		cfg.baseCtx = context.Background()
	}
	return cfg
}

// runServer starts background work (the session sweeper), serves requests
// until SIGINT, SIGTERM or cancellation of the base context, then drains.
func runServer(cfg runtimeConfig) error {
	cfg = cfg.withDefaults()
	log := cfg.logger

	ctx, stop := signal.NotifyContext(cfg.baseCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	for i, hook := range cfg.startupHooks {
		if err := hook(ctx); err != nil {
			log.Error("startup hook failed", slog.Int("hook", i), slog.String("error", err.Error()))
			return errors.Join(err, closeResources(cfg))
		}
	}

	ln, err := net.Listen("tcp", cfg.address)
	if err != nil {
		return errors.Join(err, closeResources(cfg))
	}

	server := &http.Server{
		Handler:           cfg.handler,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
	}

	served := make(chan error, 1)
	go func() {
		log.Info("listening", slog.String("address", ln.Addr().String()))
		err := server.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		served <- err
	}()

	select {
	case err := <-served:
		if err != nil {
			return errors.Join(err, closeResources(cfg))
		}
		return closeResources(cfg)
	case <-ctx.Done():
	}

	log.Info("draining requests", slog.Duration("timeout", cfg.shutdownTimeout))
	drainCtx, cancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
	defer cancel()

	// In-flight requests finish their teardown (deferred writes, request log)
	// before the databases they write to are closed.
	var errs []error
	if err := server.Shutdown(drainCtx); err != nil {
		errs = append(errs, err)
	}
	if err := <-served; err != nil {
		errs = append(errs, err)
	}
	if err := closeResources(cfg); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		log.Error("stopped with errors", slog.String("error", err.Error()))
		return err
	}
	log.Info("stopped")
	return nil
}

// closeResources runs the shutdown hooks in registration order: the sweeper
// first, then caches, redis and databases. Every hook runs even when an
// earlier one fails.
func closeResources(cfg runtimeConfig) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
	defer cancel()

	var errs []error
	for i, hook := range cfg.shutdownHooks {
		if err := hook(ctx); err != nil {
			cfg.logger.Error("shutdown hook failed", slog.Int("hook", i), slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
