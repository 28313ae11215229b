package engine

import (
	"math/rand"
	"time"

	"github.com/openobserve/swisspipe/pkg/models"
)

// RetryPolicy mirrors pkg/engine/retry_policy.go's InternalRetryPolicy shape
// (MaxAttempts/InitialDelay/MaxDelay/exponential backoff), extended with
// full jitter (rand.Float64()*delay — the standard "Full Jitter" formula)
// since the teacher's GetDelay has none, per spec §4.6.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultRetryPolicy is used when a node's RetryConfig is nil.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, InitialDelay: 500 * time.Millisecond, MaxDelay: 30 * time.Second}
}

// RetryPolicyFromConfig converts a node's RetryConfig wire struct into a
// RetryPolicy, falling back to the default for any unset field.
func RetryPolicyFromConfig(cfg *models.RetryConfig) RetryPolicy {
	if cfg == nil {
		return DefaultRetryPolicy()
	}
	p := DefaultRetryPolicy()
	if cfg.MaxAttempts > 0 {
		p.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.InitialDelayMs > 0 {
		p.InitialDelay = time.Duration(cfg.InitialDelayMs) * time.Millisecond
	}
	if cfg.MaxDelayMs > 0 {
		p.MaxDelay = time.Duration(cfg.MaxDelayMs) * time.Millisecond
	}
	return p
}

// ShouldRetry reports whether attempt (1-indexed, the attempt that just
// failed) leaves attempts remaining.
func (p RetryPolicy) ShouldRetry(attempt int) bool {
	return attempt < p.MaxAttempts
}

// GetDelay returns the full-jitter exponential backoff delay before the
// next attempt: a uniformly random duration in [0, min(MaxDelay,
// InitialDelay*2^(attempt-1))].
func (p RetryPolicy) GetDelay(attempt int) time.Duration {
	backoff := p.InitialDelay
	for i := 1; i < attempt; i++ {
		backoff *= 2
		if backoff > p.MaxDelay {
			backoff = p.MaxDelay
			break
		}
	}
	return time.Duration(rand.Float64() * float64(backoff))
}
