package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"codeberg.org/snonux/signspeak/internal/animation"
	"codeberg.org/snonux/signspeak/internal/audio"
	"codeberg.org/snonux/signspeak/internal/events"
	"codeberg.org/snonux/signspeak/internal/history"
	"codeberg.org/snonux/signspeak/internal/processor"
	"codeberg.org/snonux/signspeak/internal/signs"
	"codeberg.org/snonux/signspeak/internal/speech"
	"codeberg.org/snonux/signspeak/internal/telemetry"
	"codeberg.org/snonux/signspeak/internal/transcription"
	"codeberg.org/snonux/signspeak/internal/translation"
	"codeberg.org/snonux/signspeak/internal/vocabulary"
)

// Capture selects whether an App sets up the microphone and transcription
type Capture int

const (
	// CaptureNone skips audio capture entirely
	CaptureNone Capture = iota
	// CaptureOptional sets up capture and logs a warning if that fails
	CaptureOptional
	// CaptureRequired fails when capture cannot be set up
	CaptureRequired
)

// App holds the wired pipeline components
type App struct {
	Config     *Config
	Logger     *slog.Logger
	Vocabulary *vocabulary.Registry
	Signs      *signs.Locator
	Assembler  *animation.Assembler
	Metrics    *telemetry.Metrics
	History    *history.Store
	Events     *events.Publisher
	Processor  *processor.Processor
}

// NewApp wires all components described by cfg. Logs go to logOut.
func NewApp(cfg *Config, capture Capture, logOut io.Writer) (*App, error) {
	logger, err := telemetry.NewLogger(logOut, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	registry, err := loadVocabulary(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:     cfg,
		Logger:     logger,
		Vocabulary: registry,
		Signs: signs.NewLocator(signs.Config{
			BaseDir:        cfg.AssetsDir,
			SequenceLength: cfg.SequenceLength,
			CacheTTL:       cfg.AssetCacheTTL,
		}),
		Assembler: animation.NewAssembler(animation.Config{
			OutputDir:  cfg.OutputDir,
			PublicURL:  cfg.PublicURL,
			FrameSize:  cfg.FrameSize,
			FrameDelay: cfg.FrameDelay,
		}),
	}

	app.Metrics, err = telemetry.NewMetrics("signspeak")
	if err != nil {
		return nil, err
	}

	opts := processor.Options{
		Vocabulary: app.Vocabulary,
		Signs:      app.Signs,
		Animator:   app.Assembler,
		Metrics:    app.Metrics,
		Logger:     logger,
	}

	if capture != CaptureNone {
		listener, err := newListener(cfg, logger)
		switch {
		case err == nil:
			opts.Listener = listener
		case capture == CaptureRequired:
			app.Close()
			return nil, err
		default:
			logger.Warn("speech capture disabled, only typed input works", slog.Any("error", err))
		}
	}

	if cfg.TranslationEnabled {
		opts.Translator = translation.NewTranslator(translation.Config{
			APIKey: GetOpenAIKey(),
			Target: cfg.TranslationTarget,
			Model:  cfg.TranslationModel,
		})
	}

	if cfg.HistoryPath != "" {
		app.History, err = history.Open(cfg.HistoryPath)
		if err != nil {
			app.Close()
			return nil, err
		}
		opts.History = app.History
	}

	if cfg.NATSURL != "" {
		app.Events, err = events.Connect(cfg.NATSURL, cfg.NATSSubject, logger)
		if err != nil {
			// Outcome events are optional, the pipeline works without them
			logger.Warn("event publishing disabled", slog.Any("error", err))
		} else {
			opts.Events = app.Events
		}
	}

	app.Processor = processor.NewProcessor(opts)
	return app, nil
}

// Close releases the optional components and stops the meter provider
func (a *App) Close() {
	if a.History != nil {
		a.History.Close()
	}
	a.Events.Close()
	if err := a.Metrics.Shutdown(context.Background()); err != nil {
		a.Logger.Warn("failed to stop metrics", slog.Any("error", err))
	}
}

func loadVocabulary(cfg *Config) (*vocabulary.Registry, error) {
	if cfg.VocabularyFile == "" {
		return vocabulary.Default(), nil
	}
	registry, err := vocabulary.LoadFile(cfg.VocabularyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load vocabulary: %w", err)
	}
	return registry, nil
}

// checkTranscription reports a provider that cannot serve requests, such
// as one without credentials or behind an open breaker
func checkTranscription(provider transcription.Provider) error {
	if err := provider.IsAvailable(); err != nil {
		return fmt.Errorf("transcription provider %s unavailable: %w", provider.Name(), err)
	}
	return nil
}

// newListener sets up the recorder and transcription chain
func newListener(cfg *Config, logger *slog.Logger) (*speech.Adapter, error) {
	recorderCfg := audio.DefaultRecorderConfig()
	if cfg.RecorderCommand != "" {
		recorderCfg.Command = cfg.RecorderCommand
	}
	if cfg.SampleRate > 0 {
		recorderCfg.SampleRate = cfg.SampleRate
	}

	recorder, err := audio.NewRecorder(recorderCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up recorder: %w", err)
	}
	if checker, ok := recorder.(interface{ CheckInstalled() error }); ok {
		if err := checker.CheckInstalled(); err != nil {
			return nil, err
		}
	}

	providerCfg := transcription.DefaultProviderConfig()
	providerCfg.Provider = cfg.Provider
	providerCfg.Fallback = cfg.Fallback
	providerCfg.Language = cfg.Language
	providerCfg.OpenAIKey = GetOpenAIKey()
	providerCfg.GeminiKey = GetGeminiKey()
	if cfg.OpenAIModel != "" {
		providerCfg.OpenAIModel = cfg.OpenAIModel
	}
	if cfg.GeminiModel != "" {
		providerCfg.GeminiModel = cfg.GeminiModel
	}
	if cfg.BreakerFailures >= 0 {
		providerCfg.BreakerFailures = uint32(cfg.BreakerFailures)
	}
	providerCfg.Logger = logger

	provider, err := transcription.NewProvider(providerCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up transcription: %w", err)
	}
	if err := checkTranscription(provider); err != nil {
		return nil, err
	}

	timeout := cfg.SpeechTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return speech.NewAdapter(recorder, provider, speech.Config{
		Duration:         cfg.SpeechDuration,
		SilenceThreshold: cfg.SilenceThreshold,
		Timeout:          timeout,
	}, logger), nil
}
