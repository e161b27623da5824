package dispatch

import (
	"github.com/rs/zerolog"

	"github.com/mrz1836/trickle/internal/chain"
	"github.com/mrz1836/trickle/internal/metrics"
)

// retryFor returns base with a hook that logs each retried attempt of step.
func retryFor(base chain.RetryConfig, log zerolog.Logger, m *metrics.Metrics, step string) chain.RetryConfig {
	return base.WithOnRetry(func(attempt, maxAttempts int, err error) {
		m.RecordRetry()
		log.Warn().
			Err(err).
			Str("step", step).
			Msgf("retrying (%d/%d)", attempt, maxAttempts)
	})
}
