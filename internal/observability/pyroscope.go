package observability

import (
	"context"

	"github.com/grafana/pyroscope-go"

	"github.com/riskibarqy/fantasy-settlement/internal/config"
	"github.com/riskibarqy/fantasy-settlement/internal/platform/logging"
)

var profileTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileInuseSpace,
	pyroscope.ProfileGoroutines,
}

func pyroscopeAppName(cfg config.Config) string {
	if cfg.PyroscopeAppName != "" {
		return cfg.PyroscopeAppName
	}
	return cfg.ServiceName
}

func initPyroscope(cfg config.Config, logger *logging.Logger) (ShutdownFunc, error) {
	if !cfg.PyroscopeEnabled {
		return disabled(logger, "pyroscope", "PYROSCOPE_ENABLED=false")
	}

	name := pyroscopeAppName(cfg)
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: name,
		ServerAddress:   cfg.PyroscopeServerAddress,
		AuthToken:       cfg.PyroscopeAuthToken,
		UploadRate:      cfg.PyroscopeUploadRate,
		ProfileTypes:    profileTypes,
		Tags: map[string]string{
			"env":     cfg.AppEnv,
			"version": cfg.ServiceVersion,
		},
	})
	if err != nil {
		return nil, err
	}
	logger.Info("pyroscope enabled", "application", name, "server", cfg.PyroscopeServerAddress)
	return func(context.Context) error { return profiler.Stop() }, nil
}
