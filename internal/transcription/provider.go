package transcription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var (
	// ErrNoSpeech is returned when the service recognized no words
	ErrNoSpeech = errors.New("no speech recognized")
	// ErrUnavailable is returned when a provider refuses requests
	ErrUnavailable = errors.New("transcription service unavailable")
)

// Provider defines the interface for speech-to-text providers
type Provider interface {
	// Transcribe submits the whole audio file and returns the recognized text
	Transcribe(ctx context.Context, audioFile string) (string, error)

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured and available
	IsAvailable() error
}

// Config holds common configuration for transcription providers
type Config struct {
	Provider string // Provider name: "openai" or "gemini"
	Fallback string // Optional secondary provider name
	Language string // ISO-639-1 hint, empty for auto-detect

	// OpenAI-specific settings
	OpenAIKey     string
	OpenAIModel   string // "whisper-1", "gpt-4o-transcribe", ...
	OpenAIBaseURL string // Override for compatible servers

	// Gemini-specific settings
	GeminiKey     string
	GeminiModel   string
	GeminiBaseURL string

	// Circuit breaker: trip after this many consecutive failures
	BreakerFailures uint32
	BreakerTimeout  time.Duration

	Logger *slog.Logger
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:        "openai",
		Language:        "en",
		OpenAIModel:     "whisper-1",
		GeminiModel:     "gemini-2.0-flash",
		BreakerFailures: 3,
		BreakerTimeout:  30 * time.Second,
	}
}

// NewProvider creates the configured provider chain: the primary provider,
// an optional fallback, wrapped in a circuit breaker
func NewProvider(config *Config) (Provider, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}

	primary, err := newNamedProvider(config.Provider, config)
	if err != nil {
		return nil, err
	}

	var provider Provider = primary
	if config.Fallback != "" && config.Fallback != config.Provider {
		fallback, err := newNamedProvider(config.Fallback, config)
		if err != nil {
			return nil, fmt.Errorf("fallback provider: %w", err)
		}
		provider = NewProviderWithFallback(primary, fallback, config.Logger)
	}

	if config.BreakerFailures > 0 {
		provider = NewBreakerProvider(provider, config.BreakerFailures, config.BreakerTimeout, config.Logger)
	}
	return provider, nil
}

func newNamedProvider(name string, config *Config) (Provider, error) {
	switch name {
	case "openai":
		if config.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		return NewOpenAIProvider(config)

	case "gemini":
		if config.GeminiKey == "" {
			return nil, fmt.Errorf("Gemini API key is required")
		}
		return NewGeminiProvider(config)

	default:
		return nil, fmt.Errorf("unknown transcription provider: %s", name)
	}
}

// ProviderWithFallback wraps a primary provider with a fallback option
type ProviderWithFallback struct {
	primary  Provider
	fallback Provider
	logger   *slog.Logger
}

// NewProviderWithFallback creates a provider that falls back to secondary if primary fails
func NewProviderWithFallback(primary, fallback Provider, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProviderWithFallback{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Transcribe tries the primary provider first and falls back on service
// errors. Silence and cancellation are returned as-is.
func (p *ProviderWithFallback) Transcribe(ctx context.Context, audioFile string) (string, error) {
	text, err := p.primary.Transcribe(ctx, audioFile)
	if err == nil || errors.Is(err, ErrNoSpeech) || ctx.Err() != nil {
		return text, err
	}

	p.logger.Warn("primary transcription provider failed, falling back",
		slog.String("primary", p.primary.Name()),
		slog.String("fallback", p.fallback.Name()),
		slog.String("error", err.Error()))

	return p.fallback.Transcribe(ctx, audioFile)
}

// Name returns the provider name
func (p *ProviderWithFallback) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", p.primary.Name(), p.fallback.Name())
}

// IsAvailable checks if at least one provider is available
func (p *ProviderWithFallback) IsAvailable() error {
	primaryErr := p.primary.IsAvailable()
	if primaryErr == nil {
		return nil
	}

	fallbackErr := p.fallback.IsAvailable()
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("both providers unavailable: primary=%v, fallback=%v",
		primaryErr, fallbackErr)
}
