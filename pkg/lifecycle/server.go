package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carverauto/pemfcradar/pkg/logger"
)

const ShutdownTimeout = 10 * time.Second

var errNoServices = errors.New("no services to run")

// Service defines the interface that all services must implement.
type Service interface {
	Start(context.Context) error
	Stop(context.Context) error
}

// ServerOptions holds configuration for running a set of services.
type ServerOptions struct {
	ServiceName     string
	Services        []Service
	ShutdownTimeout time.Duration
	Logger          logger.Logger
	// Signals overrides the default SIGINT/SIGTERM channel, for tests.
	Signals <-chan os.Signal
}

// RunServer starts every service and blocks until a signal arrives, a
// service fails or ctx is canceled. Services are then stopped in reverse
// order under the shutdown timeout.
func RunServer(ctx context.Context, opts *ServerOptions) error {
	if len(opts.Services) == 0 {
		return errNoServices
	}

	log := logger.OrNop(opts.Logger).With("component", "lifecycle")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Infof("*** Starting service %s", opts.ServiceName)

	// Create error channel for service errors
	errChan := make(chan error, len(opts.Services))

	for _, svc := range opts.Services {
		go func(svc Service) {
			if err := svc.Start(ctx); err != nil {
				errChan <- err
			}
		}(svc)
	}

	sigChan := opts.Signals
	if sigChan == nil {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

		defer signal.Stop(ch)

		sigChan = ch
	}

	return handleShutdown(ctx, cancel, opts, sigChan, errChan, log)
}

func handleShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	opts *ServerOptions,
	sigChan <-chan os.Signal,
	errChan <-chan error,
	log logger.Logger) error {
	var cause error

	// Wait for shutdown signal or error
	select {
	case sig := <-sigChan:
		log.Infof("Received signal %v, initiating shutdown", sig)
	case err := <-errChan:
		log.Errorf("Received error: %v, initiating shutdown", err)

		cause = fmt.Errorf("service error: %w", err)
	case <-ctx.Done():
		log.Infof("Context canceled, initiating shutdown")
	}

	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = ShutdownTimeout
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	// Cancel main context
	cancel()

	var stopErrs []error

	for i := len(opts.Services) - 1; i >= 0; i-- {
		if err := opts.Services[i].Stop(shutdownCtx); err != nil {
			log.Errorf("Error during service shutdown: %v", err)

			stopErrs = append(stopErrs, err)
		}
	}

	if len(stopErrs) > 0 {
		return errors.Join(cause, fmt.Errorf("shutdown error: %w", errors.Join(stopErrs...)))
	}

	return cause
}
