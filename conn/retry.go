package conn

import (
	"math"
	"time"
)

// NextRetryDelay returns the wait before dial attempt N+1 after attempt N (1-based) failed.
func NextRetryDelay(cfg RetryConfig, attempt int) time.Duration {
	if cfg.Delay <= 0 {
		return 0
	}
	if attempt <= 1 || cfg.Multiplier <= 1 {
		return capDelay(cfg, float64(cfg.Delay))
	}
	return capDelay(cfg, float64(cfg.Delay)*math.Pow(cfg.Multiplier, float64(attempt-1)))
}

func capDelay(cfg RetryConfig, delay float64) time.Duration {
	if cfg.MaxDelay > 0 && delay > float64(cfg.MaxDelay) {
		return cfg.MaxDelay
	}
	return time.Duration(delay)
}
