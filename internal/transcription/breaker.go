package transcription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerProvider stops calling a failing provider until it recovers
type BreakerProvider struct {
	provider Provider
	breaker  *gobreaker.CircuitBreaker
}

// NewBreakerProvider wraps provider with a circuit breaker that opens after
// failures consecutive service errors and probes again after timeout
func NewBreakerProvider(provider Provider, failures uint32, timeout time.Duration, logger *slog.Logger) *BreakerProvider {
	if logger == nil {
		logger = slog.Default()
	}
	if failures == 0 {
		failures = 1
	}

	settings := gobreaker.Settings{
		Name:        provider.Name(),
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// Silence says nothing about service health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNoSpeech) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("transcription circuit breaker changed state",
				slog.String("provider", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}

	return &BreakerProvider{
		provider: provider,
		breaker:  gobreaker.NewCircuitBreaker(settings),
	}
}

// Transcribe forwards to the wrapped provider unless the breaker is open
func (b *BreakerProvider) Transcribe(ctx context.Context, audioFile string) (string, error) {
	result, err := b.breaker.Execute(func() (interface{}, error) {
		return b.provider.Transcribe(ctx, audioFile)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %s: %v", ErrUnavailable, b.provider.Name(), err)
		}
		return "", err
	}
	return result.(string), nil
}

// State reports the breaker state ("closed", "open" or "half-open")
func (b *BreakerProvider) State() string {
	return b.breaker.State().String()
}

// Name returns the wrapped provider name
func (b *BreakerProvider) Name() string {
	return b.provider.Name()
}

// IsAvailable fails while the breaker is open
func (b *BreakerProvider) IsAvailable() error {
	if b.breaker.State() == gobreaker.StateOpen {
		return fmt.Errorf("%w: %s circuit open", ErrUnavailable, b.provider.Name())
	}
	return b.provider.IsAvailable()
}
