package observability

import (
	"strings"

	"github.com/uptrace/uptrace-go/uptrace"

	"github.com/riskibarqy/fantasy-settlement/internal/config"
	"github.com/riskibarqy/fantasy-settlement/internal/platform/logging"
)

// initUptrace installs the global OpenTelemetry providers, which the HTTP,
// settlement and database spans all export through.
func initUptrace(cfg config.Config, logger *logging.Logger) (ShutdownFunc, error) {
	switch {
	case !cfg.UptraceEnabled:
		return disabled(logger, "uptrace", "UPTRACE_ENABLED=false")
	case strings.TrimSpace(cfg.UptraceDSN) == "":
		return disabled(logger, "uptrace", "UPTRACE_DSN empty")
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
	)
	logger.Info("uptrace enabled", "service", cfg.ServiceName, "env", cfg.AppEnv)
	return uptrace.Shutdown, nil
}
