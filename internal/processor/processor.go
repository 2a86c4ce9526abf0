package processor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"codeberg.org/snonux/signspeak/internal"
	"codeberg.org/snonux/signspeak/internal/animation"
	"codeberg.org/snonux/signspeak/internal/events"
	"codeberg.org/snonux/signspeak/internal/history"
	"codeberg.org/snonux/signspeak/internal/signs"
	"codeberg.org/snonux/signspeak/internal/speech"
	"codeberg.org/snonux/signspeak/internal/telemetry"
	"codeberg.org/snonux/signspeak/internal/translation"
)

// Listener captures one utterance and returns its transcript
type Listener interface {
	CaptureAndTranscribe(ctx context.Context) (speech.Transcript, error)
}

// Vocabulary maps normalized words to labels
type Vocabulary interface {
	Lookup(word string) (int, error)
}

// SignResolver returns the frame sequence of a word
type SignResolver interface {
	Resolve(word string) (signs.Sequence, error)
}

// Animator turns frame files into an animation
type Animator interface {
	AssembleFiles(ctx context.Context, paths []string) (*animation.Artifact, error)
}

// HistoryRecorder stores pipeline outcomes
type HistoryRecorder interface {
	Record(ctx context.Context, r history.Record) (int64, error)
}

// EventPublisher announces pipeline outcomes
type EventPublisher interface {
	Publish(ctx context.Context, o events.Outcome) error
}

// Options wires the pipeline components. Listener, Translator, Metrics,
// History and Events are optional.
type Options struct {
	Listener   Listener
	Vocabulary Vocabulary
	Signs      SignResolver
	Animator   Animator
	Translator translation.Service
	Metrics    *telemetry.Metrics
	History    HistoryRecorder
	Events     EventPublisher
	Logger     *slog.Logger
}

// Processor handles the speech-to-sign pipeline
type Processor struct {
	opts   Options
	logger *slog.Logger
}

// NewProcessor creates a new pipeline processor
func NewProcessor(opts Options) *Processor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{opts: opts, logger: logger}
}

// Listen captures speech from the input device and renders the recognized
// word as a sign animation
func (p *Processor) Listen(ctx context.Context) Response {
	started := time.Now()

	if p.opts.Listener == nil {
		return p.finish(ctx, started, failure(StageCapture, MsgTranscriptionFailed+": "+speech.ReasonCaptureFailure))
	}

	transcript, err := p.opts.Listener.CaptureAndTranscribe(ctx)
	if err != nil {
		p.logger.Warn("capture failed", slog.Any("error", err))
		return p.finish(ctx, started, failure(StageCapture, MsgTranscriptionFailed+": "+transcriptionDetail(err)))
	}

	p.logger.Info("speech recognized",
		slog.String("text", transcript.Raw),
		slog.String("provider", transcript.Provider))

	return p.finish(ctx, started, p.render(ctx, transcript.Raw))
}

// Render runs the pipeline on typed text, skipping audio capture
func (p *Processor) Render(ctx context.Context, text string) Response {
	started := time.Now()
	return p.finish(ctx, started, p.render(ctx, text))
}

// render runs the stages after capture
func (p *Processor) render(ctx context.Context, spoken string) Response {
	word := internal.NormalizeText(spoken)

	label, err := p.opts.Vocabulary.Lookup(word)
	if err != nil && p.opts.Translator != nil && word != "" {
		word, label, err = p.translateAndLookup(ctx, word, err)
	}
	if err != nil {
		p.logger.Info("word not in vocabulary", slog.String("word", word))
		resp := failure(StageValidate, MsgWordNotRecognized)
		resp.SpokenText = spoken
		return resp
	}

	seq, err := p.opts.Signs.Resolve(word)
	if err != nil {
		p.logger.Warn("sign assets missing", slog.String("word", word), slog.Any("error", err))
		resp := failure(StageResolve, MsgInsufficientAssets)
		resp.SpokenText = spoken
		return resp
	}
	if seq.Padded() {
		p.logger.Debug("padded sign sequence",
			slog.String("word", word),
			slog.Int("available", seq.Available),
			slog.Int("frames", len(seq.Frames)))
	}

	artifact, err := p.opts.Animator.AssembleFiles(ctx, seq.Frames)
	if err != nil {
		p.logger.Error("animation failed", slog.String("word", word), slog.Any("error", err))
		resp := failure(StageAssemble, MsgGIFFailed)
		resp.SpokenText = spoken
		return resp
	}
	p.opts.Metrics.RecordFrames(ctx, artifact.Frames)

	return Response{
		Success:        true,
		SpokenText:     spoken,
		TranslatedText: word,
		PredictedLabel: label,
		PredictedSign:  word,
		GIFURL:         artifact.URL,
		Stage:          StageDone,
	}
}

// translateAndLookup retries the lookup with a translation of word. On a
// translation error the original word and lookup error are kept.
func (p *Processor) translateAndLookup(ctx context.Context, word string, lookupErr error) (string, int, error) {
	translated, err := p.opts.Translator.Translate(ctx, word)
	if err != nil {
		p.logger.Warn("translation failed, using untranslated text", slog.String("text", word), slog.Any("error", err))
		return word, -1, lookupErr
	}

	translated = internal.NormalizeText(translated)
	p.logger.Debug("translated", slog.String("from", word), slog.String("to", translated))

	label, err := p.opts.Vocabulary.Lookup(translated)
	return translated, label, err
}

// finish reports the outcome to all hooks. Hook failures are logged and
// never change the response.
func (p *Processor) finish(ctx context.Context, started time.Time, resp Response) Response {
	elapsed := time.Since(started)
	hookCtx := context.WithoutCancel(ctx)

	if resp.Success {
		p.logger.Info("sign animation ready",
			slog.String("sign", resp.PredictedSign),
			slog.Int("label", resp.PredictedLabel),
			slog.String("gif_url", resp.GIFURL),
			slog.Duration("elapsed", elapsed))
	} else {
		p.logger.Info("pipeline failed",
			slog.String("stage", resp.Stage),
			slog.String("error", resp.Error),
			slog.Duration("elapsed", elapsed))
	}

	p.opts.Metrics.RecordOutcome(hookCtx, resp.Stage, resp.Success, elapsed)

	now := time.Now()
	if p.opts.History != nil {
		_, err := p.opts.History.Record(hookCtx, history.Record{
			CreatedAt:  now,
			Success:    resp.Success,
			SpokenText: resp.SpokenText,
			Sign:       resp.PredictedSign,
			Label:      resp.PredictedLabel,
			GIFURL:     resp.GIFURL,
			Error:      resp.Error,
			Stage:      resp.Stage,
			DurationMS: elapsed.Milliseconds(),
		})
		if err != nil {
			p.logger.Warn("failed to record history", slog.Any("error", err))
		}
	}

	if p.opts.Events != nil {
		err := p.opts.Events.Publish(hookCtx, events.Outcome{
			Timestamp:  now,
			Success:    resp.Success,
			Stage:      resp.Stage,
			SpokenText: resp.SpokenText,
			Sign:       resp.PredictedSign,
			Label:      resp.PredictedLabel,
			GIFURL:     resp.GIFURL,
			Error:      resp.Error,
			DurationMS: elapsed.Milliseconds(),
		})
		if err != nil {
			p.logger.Warn("failed to publish outcome", slog.Any("error", err))
		}
	}

	return resp
}

// transcriptionDetail extracts the user facing reason of a capture error
func transcriptionDetail(err error) string {
	var te *speech.TranscriptionError
	if errors.As(err, &te) {
		return te.Reason
	}
	return speech.ReasonServiceFailure
}
