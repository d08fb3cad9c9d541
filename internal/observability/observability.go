package observability

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/fantasy-settlement/internal/config"
	"github.com/riskibarqy/fantasy-settlement/internal/platform/logging"
)

// ShutdownFunc flushes and stops one telemetry component.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// Setup starts tracing, continuous profiling and the pprof listener as
// configured. The returned func stops them in reverse order. On error the
// components already started are stopped before returning.
func Setup(ctx context.Context, cfg config.Config, logger *logging.Logger) (ShutdownFunc, error) {
	if logger == nil {
		logger = logging.Default()
	}

	starters := []struct {
		name  string
		start func(config.Config, *logging.Logger) (ShutdownFunc, error)
	}{
		{name: "uptrace", start: initUptrace},
		{name: "pyroscope", start: initPyroscope},
		{name: "pprof", start: startPprof},
	}

	var stops []ShutdownFunc
	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(stops) - 1; i >= 0; i-- {
			errs = append(errs, stops[i](ctx))
		}
		return errors.Join(errs...)
	}

	for _, s := range starters {
		stop, err := s.start(cfg, logger)
		if err != nil {
			_ = shutdown(ctx)
			return nil, fmt.Errorf("start %s: %w", s.name, err)
		}
		stops = append(stops, stop)
	}
	return shutdown, nil
}

func disabled(logger *logging.Logger, component, reason string) (ShutdownFunc, error) {
	logger.Info(component+" disabled", "reason", reason)
	return noopShutdown, nil
}
