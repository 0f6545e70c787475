package observability

import (
	"context"
	"strings"

	"github.com/riskibarqy/box-league/internal/config"
	"github.com/riskibarqy/box-league/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
	"go.opentelemetry.io/otel/attribute"
)

// uptraceSkipReason names the setting that keeps export off, or "" when it is on.
func uptraceSkipReason(cfg config.Config) string {
	switch {
	case !cfg.UptraceEnabled:
		return "UPTRACE_ENABLED=false"
	case strings.TrimSpace(cfg.UptraceDSN) == "":
		return "UPTRACE_DSN empty"
	}
	return ""
}

func uptraceOptions(cfg config.Config) []uptrace.Option {
	return []uptrace.Option{
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithLoggingEnabled(cfg.UptraceLogsEnabled),
		uptrace.WithResourceAttributes(
			attribute.String("app.storage_driver", cfg.StorageDriver),
		),
	}
}

// StartUptrace installs the global OpenTelemetry providers. With log export on,
// application records are mirrored into the OTel log pipeline until shutdown.
func StartUptrace(cfg config.Config, logger *logging.Logger) func(context.Context) error {
	logging.SetMirror(nil)
	if reason := uptraceSkipReason(cfg); reason != "" {
		logger.Info("uptrace disabled", "reason", reason)
		return noopShutdown
	}

	uptrace.ConfigureOpentelemetry(uptraceOptions(cfg)...)
	if cfg.UptraceLogsEnabled {
		logging.SetMirror(newLogMirror(cfg.ServiceVersion))
	}
	logger.Info("uptrace enabled",
		"service_name", cfg.ServiceName,
		"environment", cfg.AppEnv,
		"logs_enabled", cfg.UptraceLogsEnabled,
	)

	return func(ctx context.Context) error {
		logging.SetMirror(nil)
		if err := uptrace.ForceFlush(ctx); err != nil {
			logger.Warn("uptrace flush", "error", err)
		}
		return uptrace.Shutdown(ctx)
	}
}
