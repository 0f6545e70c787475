package observability

import (
	"context"
	"syscall"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/box-league/internal/config"
	"github.com/riskibarqy/box-league/internal/platform/logging"
)

func noopShutdown(context.Context) error { return nil }

// Telemetry owns the process-wide log shipping, tracing and profiling hooks.
type Telemetry struct {
	Logger *logging.Logger

	stops []func(context.Context) error
}

// Start brings up every enabled telemetry backend. On error, backends started
// so far are stopped before returning.
func Start(ctx context.Context, cfg config.Config, base *logging.Logger) (*Telemetry, error) {
	if base == nil {
		base = logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	}

	logger, stopShipper, err := WithBetterStack(cfg, base)
	if err != nil {
		return nil, crerr.Wrap(err, "init betterstack")
	}
	t := &Telemetry{Logger: logger, stops: []func(context.Context) error{stopShipper}}

	t.stops = append(t.stops, StartUptrace(cfg, logger))

	stopProfiler, err := StartPyroscope(cfg, logger)
	if err != nil {
		_ = t.Shutdown(ctx)
		return nil, crerr.Wrap(err, "init pyroscope")
	}
	t.stops = append(t.stops, stopProfiler, StartPprof(cfg, logger))

	return t, nil
}

// Shutdown stops backends in reverse start order and flushes the logger.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var combined error
	for i := len(t.stops) - 1; i >= 0; i-- {
		combined = crerr.CombineErrors(combined, t.stops[i](ctx))
	}
	if err := t.Logger.Sync(); err != nil && !isIgnorableSyncError(err) {
		combined = crerr.CombineErrors(combined, err)
	}
	return combined
}

// stdout/stderr sync fails on terminals and pipes.
func isIgnorableSyncError(err error) bool {
	return crerr.Is(err, syscall.EINVAL) || crerr.Is(err, syscall.ENOTTY) || crerr.Is(err, syscall.EBADF)
}
