package analyze

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/inodb/vibe-risk/internal/variant"
)

// BreakerConfig configures the circuit breaker around the external analyzer.
type BreakerConfig struct {
	Failures uint32        // consecutive failures that open the breaker
	Cooldown time.Duration // time spent open before a trial call
}

// BreakerAnalyzer skips the wrapped analyzer while it keeps failing, so a
// missing or hung analyzer does not cost every request its full timeout.
// It never retries.
type BreakerAnalyzer struct {
	next   Analyzer
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
}

// NewBreakerAnalyzer wraps next with a circuit breaker.
func NewBreakerAnalyzer(next Analyzer, cfg BreakerConfig, logger *zap.Logger) *BreakerAnalyzer {
	if cfg.Failures == 0 {
		cfg.Failures = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	b := &BreakerAnalyzer{next: next, logger: logger}
	b.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "external-analyzer",
		MaxRequests: 1,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Failures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			b.logger.Info("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return b
}

// State returns the breaker state.
func (b *BreakerAnalyzer) State() gobreaker.State {
	return b.cb.State()
}

// Analyze calls the wrapped analyzer unless the breaker is open.
func (b *BreakerAnalyzer) Analyze(ctx context.Context, in *Input) (*variant.Result, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Analyze(ctx, in)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &ExternalError{Kind: KindRejected, Err: err}
	}
	if err != nil {
		return nil, err
	}
	return out.(*variant.Result), nil
}
