package resilience

import "time"

const (
	defaultFailureThreshold = 5
	defaultOpenTimeout      = 30 * time.Second
	defaultHalfOpenProbes   = 1
)

// CircuitBreakerConfig tunes a CircuitBreaker. Zero values fall back to the
// defaults. Enabled is read by callers that wrap a dependency.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenProbes   int
}

// Normalize fills unset values from the defaults.
func (c CircuitBreakerConfig) Normalize() CircuitBreakerConfig {
	c.FailureThreshold = atLeastOne(c.FailureThreshold, defaultFailureThreshold)
	c.HalfOpenProbes = atLeastOne(c.HalfOpenProbes, defaultHalfOpenProbes)
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = defaultOpenTimeout
	}
	return c
}

func atLeastOne(v, fallback int) int {
	if v < 1 {
		return fallback
	}
	return v
}
