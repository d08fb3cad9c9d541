package httpapi

import (
	"net/http"

	"github.com/riskibarqy/fantasy-settlement/internal/platform/logging"
	"github.com/riskibarqy/fantasy-settlement/internal/platform/ratelimit"
)

type RouterConfig struct {
	AdminToken string
	Limiter    *ratelimit.KeyedLimiter
	Logger     *logging.Logger
}

func NewRouter(handler *Handler, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerAdminRoutes(mux, handler, cfg)

	return RequestTracing(RequestLogging(logger, recoverPanic(logger, mux)))
}
