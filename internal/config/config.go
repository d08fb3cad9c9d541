package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/fantasy-settlement/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the service. The env tag names the
// variable each field is read from and is used in validation errors.
type Config struct {
	AppEnv         string        `env:"APP_ENV" validate:"oneof=dev stage prod"`
	ServiceName    string        `env:"APP_SERVICE_NAME" validate:"required"`
	ServiceVersion string        `env:"APP_SERVICE_VERSION"`
	HTTPAddr       string        `env:"APP_HTTP_ADDR" validate:"required"`
	ReadTimeout    time.Duration `env:"APP_READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout   time.Duration `env:"APP_WRITE_TIMEOUT" validate:"gt=0"`
	LogLevel       logging.Level `env:"APP_LOG_LEVEL"`

	// An empty DBURL runs on the in-memory store.
	DBURL                   string `env:"DB_URL"`
	DBDisablePreparedBinary bool   `env:"DB_DISABLE_PREPARED_BINARY_RESULT"`
	DBMaxOpenConns          int    `env:"DB_MAX_OPEN_CONNS" validate:"gte=1"`
	SeedDemoData            bool   `env:"SEED_DEMO_DATA"`

	AdminToken        string        `env:"ADMIN_TOKEN" validate:"required_if=AppEnv prod"`
	RateLimitRequests int           `env:"RATE_LIMIT_REQUESTS" validate:"gte=1"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW" validate:"gt=0"`

	SchedulerEnabled   bool          `env:"SCHEDULER_ENABLED"`
	SchedulerInterval  time.Duration `env:"SCHEDULER_INTERVAL" validate:"gt=0"`
	SettlementSeasonID int64         `env:"SETTLEMENT_SEASON_ID" validate:"gte=0"`
	PriceMin           float64       `env:"PRICE_MIN" validate:"gt=0"`
	PriceMax           float64       `env:"PRICE_MAX" validate:"gtefield=PriceMin"`
	TransferFee        float64       `env:"TRANSFER_FEE" validate:"gte=0"`
	RecoveryMaxWorkers int           `env:"RECOVERY_MAX_WORKERS" validate:"gte=1"`

	NotifyEnabled         bool          `env:"NOTIFY_ENABLED"`
	NotifyWebhookURL      string        `env:"NOTIFY_WEBHOOK_URL" validate:"required_if=NotifyEnabled true,omitempty,url"`
	NotifyTimeout         time.Duration `env:"NOTIFY_TIMEOUT" validate:"gt=0"`
	NotifyBatchSize       int           `env:"NOTIFY_BATCH_SIZE" validate:"gte=1"`
	NotifyMaxAttempts     int           `env:"NOTIFY_MAX_ATTEMPTS" validate:"gte=1"`
	NotifyCircuitEnabled  bool          `env:"NOTIFY_CIRCUIT_ENABLED"`
	NotifyCircuitFailures int           `env:"NOTIFY_CIRCUIT_FAILURE_COUNT" validate:"gte=1"`
	NotifyCircuitOpenFor  time.Duration `env:"NOTIFY_CIRCUIT_OPEN_TIMEOUT" validate:"gt=0"`
	NotifyCircuitHalfOpen int           `env:"NOTIFY_CIRCUIT_HALF_OPEN_MAX_REQ" validate:"gte=1"`

	UptraceEnabled         bool          `env:"UPTRACE_ENABLED"`
	UptraceDSN             string        `env:"UPTRACE_DSN" validate:"required_if=UptraceEnabled true"`
	PyroscopeEnabled       bool          `env:"PYROSCOPE_ENABLED"`
	PyroscopeServerAddress string        `env:"PYROSCOPE_SERVER_ADDRESS" validate:"required_if=PyroscopeEnabled true"`
	PyroscopeAppName       string        `env:"PYROSCOPE_APP_NAME"`
	PyroscopeAuthToken     string        `env:"PYROSCOPE_AUTH_TOKEN"`
	PyroscopeUploadRate    time.Duration `env:"PYROSCOPE_UPLOAD_RATE" validate:"gt=0"`
	PprofEnabled           bool          `env:"PPROF_ENABLED"`
	PprofAddr              string        `env:"PPROF_ADDR" validate:"required_if=PprofEnabled true"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if name := field.Tag.Get("env"); name != "" {
			return name
		}
		return field.Name
	})
	return v
}

// Load reads the environment, applies defaults and validates the result.
// Parse and validation failures are reported together.
func Load() (Config, error) {
	env := &envReader{}

	cfg := Config{
		AppEnv:         strings.ToLower(env.str("APP_ENV", EnvDev)),
		ServiceName:    env.str("APP_SERVICE_NAME", "fantasy-settlement"),
		ServiceVersion: env.str("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:       env.str("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:    env.duration("APP_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:   env.duration("APP_WRITE_TIMEOUT", 30*time.Second),
		LogLevel:       parseLogLevel(env.str("APP_LOG_LEVEL", "info")),

		DBURL:                   env.str("DB_URL", ""),
		DBDisablePreparedBinary: env.boolean("DB_DISABLE_PREPARED_BINARY_RESULT", true),
		DBMaxOpenConns:          env.integer("DB_MAX_OPEN_CONNS", 10),

		AdminToken:        env.str("ADMIN_TOKEN", ""),
		RateLimitRequests: env.integer("RATE_LIMIT_REQUESTS", 30),
		RateLimitWindow:   env.duration("RATE_LIMIT_WINDOW", time.Minute),

		SchedulerEnabled:   env.boolean("SCHEDULER_ENABLED", true),
		SchedulerInterval:  env.duration("SCHEDULER_INTERVAL", 5*time.Minute),
		SettlementSeasonID: env.integer64("SETTLEMENT_SEASON_ID", 0),
		PriceMin:           env.float("PRICE_MIN", 4.0),
		PriceMax:           env.float("PRICE_MAX", 12.0),
		TransferFee:        env.float("TRANSFER_FEE", 0.5),
		RecoveryMaxWorkers: env.integer("RECOVERY_MAX_WORKERS", 4),

		NotifyEnabled:         env.boolean("NOTIFY_ENABLED", false),
		NotifyWebhookURL:      env.str("NOTIFY_WEBHOOK_URL", ""),
		NotifyTimeout:         env.duration("NOTIFY_TIMEOUT", 5*time.Second),
		NotifyBatchSize:       env.integer("NOTIFY_BATCH_SIZE", 50),
		NotifyMaxAttempts:     env.integer("NOTIFY_MAX_ATTEMPTS", 5),
		NotifyCircuitEnabled:  env.boolean("NOTIFY_CIRCUIT_ENABLED", true),
		NotifyCircuitFailures: env.integer("NOTIFY_CIRCUIT_FAILURE_COUNT", 5),
		NotifyCircuitOpenFor:  env.duration("NOTIFY_CIRCUIT_OPEN_TIMEOUT", 30*time.Second),
		NotifyCircuitHalfOpen: env.integer("NOTIFY_CIRCUIT_HALF_OPEN_MAX_REQ", 1),

		UptraceEnabled:         env.boolean("UPTRACE_ENABLED", false),
		UptraceDSN:             env.str("UPTRACE_DSN", ""),
		PyroscopeEnabled:       env.boolean("PYROSCOPE_ENABLED", false),
		PyroscopeServerAddress: env.str("PYROSCOPE_SERVER_ADDRESS", ""),
		PyroscopeAuthToken:     env.str("PYROSCOPE_AUTH_TOKEN", ""),
		PyroscopeUploadRate:    env.duration("PYROSCOPE_UPLOAD_RATE", 15*time.Second),
		PprofEnabled:           env.boolean("PPROF_ENABLED", false),
		PprofAddr:              env.str("PPROF_ADDR", ":6060"),
	}
	// Demo data is opt-out in dev and opt-in elsewhere.
	cfg.SeedDemoData = env.boolean("SEED_DEMO_DATA", cfg.AppEnv == EnvDev)
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = uptraceDSNFromOTLPHeaders(env.str("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	cfg.PyroscopeAppName = env.str("PYROSCOPE_APP_NAME", cfg.ServiceName)

	if err := env.err(); err != nil {
		return Config{}, err
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, describeValidation(err)
	}
	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(v) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

// uptraceDSNFromOTLPHeaders picks uptrace-dsn out of a comma separated
// OTEL_EXPORTER_OTLP_HEADERS value.
func uptraceDSNFromOTLPHeaders(raw string) string {
	for _, item := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(item), "=")
		if ok && strings.EqualFold(strings.TrimSpace(key), "uptrace-dsn") {
			return strings.Trim(strings.TrimSpace(value), "\"'")
		}
	}
	return ""
}

// envReader reads trimmed variables, falling back on blank values, and
// collects every parse failure.
type envReader struct {
	errs []error
}

func (r *envReader) str(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func readEnv[T any](r *envReader, key string, fallback T, parse func(string) (T, error)) T {
	raw := r.str(key, "")
	if raw == "" {
		return fallback
	}
	value, err := parse(raw)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("parse %s: %w", key, err))
		return fallback
	}
	return value
}

func (r *envReader) boolean(key string, fallback bool) bool {
	return readEnv(r, key, fallback, strconv.ParseBool)
}

func (r *envReader) integer(key string, fallback int) int {
	return readEnv(r, key, fallback, strconv.Atoi)
}

func (r *envReader) integer64(key string, fallback int64) int64 {
	return readEnv(r, key, fallback, func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) })
}

func (r *envReader) float(key string, fallback float64) float64 {
	return readEnv(r, key, fallback, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

func (r *envReader) duration(key string, fallback time.Duration) time.Duration {
	return readEnv(r, key, fallback, time.ParseDuration)
}

func (r *envReader) err() error {
	return errors.Join(r.errs...)
}

// describeValidation rewrites validator errors in terms of env variables.
func describeValidation(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, fmt.Errorf("%s %s", fe.Field(), constraint(fe)))
	}
	return errors.Join(out...)
}

func constraint(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_if":
		field, value, _ := strings.Cut(fe.Param(), " ")
		return fmt.Sprintf("is required when %s=%s", envName(field), value)
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gt":
		return "must be > " + fe.Param()
	case "gte":
		return "must be >= " + fe.Param()
	case "gtefield":
		return "must be >= " + envName(fe.Param())
	case "url":
		return "must be a valid URL"
	default:
		return "failed " + fe.Tag()
	}
}

func envName(field string) string {
	if f, ok := reflect.TypeOf(Config{}).FieldByName(field); ok {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
	}
	return field
}
