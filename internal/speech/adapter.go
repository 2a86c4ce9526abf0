package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"codeberg.org/snonux/signspeak/internal"
	"codeberg.org/snonux/signspeak/internal/audio"
	"codeberg.org/snonux/signspeak/internal/transcription"
)

// Failure reasons reported in TranscriptionError
const (
	ReasonNoSpeech       = "no speech"
	ReasonServiceFailure = "service failure"
	ReasonDeviceBusy     = "input device busy"
	ReasonCaptureFailure = "capture failure"
)

// ErrDeviceBusy is wrapped when another capture holds the input device
var ErrDeviceBusy = errors.New("input device is already recording")

// TranscriptionError reports why no text could be produced
type TranscriptionError struct {
	Reason string
	Err    error
}

func (e *TranscriptionError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return e.Reason + ": " + e.Err.Error()
}

func (e *TranscriptionError) Unwrap() error {
	return e.Err
}

// Transcript is the text recognized from one capture
type Transcript struct {
	Raw        string
	Normalized string
	Provider   string
	Audio      time.Duration
}

// Config holds capture and transcription settings
type Config struct {
	Duration         time.Duration // Length of each recording (default 3s)
	SilenceThreshold float64       // RMS level below which a clip counts as silent, 0 disables
	Timeout          time.Duration // Upper bound for the transcription call (default 30s)
	TempDir          string        // Where temporary WAV files go, empty for os.TempDir
}

// Adapter captures audio and transcribes it
type Adapter struct {
	recorder audio.Recorder
	provider transcription.Provider
	cfg      Config
	logger   *slog.Logger

	device sync.Mutex
}

// NewAdapter creates an adapter from a recorder and a transcription provider
func NewAdapter(recorder audio.Recorder, provider transcription.Provider, cfg Config, logger *slog.Logger) *Adapter {
	if cfg.Duration <= 0 {
		cfg.Duration = audio.DefaultDuration
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		recorder: recorder,
		provider: provider,
		cfg:      cfg,
		logger:   logger,
	}
}

// CaptureAndTranscribe records one clip from the input device and returns
// its transcript. Overlapping captures are rejected rather than queued.
func (a *Adapter) CaptureAndTranscribe(ctx context.Context) (Transcript, error) {
	clip, err := a.capture(ctx)
	if err != nil {
		return Transcript{}, err
	}
	return a.Transcribe(ctx, clip)
}

// Transcribe writes clip to a temporary WAV file, submits it and removes
// the file again on every path
func (a *Adapter) Transcribe(ctx context.Context, clip *audio.Clip) (Transcript, error) {
	if err := audio.ValidateClip(clip); err != nil {
		return Transcript{}, &TranscriptionError{Reason: ReasonCaptureFailure, Err: err}
	}
	if audio.IsSilent(clip, a.cfg.SilenceThreshold) {
		a.logger.Info("clip below silence threshold", slog.Float64("rms", audio.RMS(clip)))
		return Transcript{}, &TranscriptionError{Reason: ReasonNoSpeech}
	}

	wavPath, err := a.writeTemp(clip)
	if err != nil {
		return Transcript{}, &TranscriptionError{Reason: ReasonCaptureFailure, Err: err}
	}
	defer os.Remove(wavPath)

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	started := time.Now()
	text, err := a.provider.Transcribe(ctx, wavPath)
	if err != nil {
		if errors.Is(err, transcription.ErrNoSpeech) {
			return Transcript{}, &TranscriptionError{Reason: ReasonNoSpeech, Err: err}
		}
		return Transcript{}, &TranscriptionError{Reason: ReasonServiceFailure, Err: err}
	}

	a.logger.Debug("transcription finished",
		slog.String("provider", a.provider.Name()),
		slog.Duration("elapsed", time.Since(started)),
		slog.String("text", text))

	normalized := internal.NormalizeText(text)
	if normalized == "" {
		return Transcript{}, &TranscriptionError{Reason: ReasonNoSpeech}
	}

	return Transcript{
		Raw:        text,
		Normalized: normalized,
		Provider:   a.provider.Name(),
		Audio:      clip.Duration(),
	}, nil
}

// capture claims the device for the length of one recording
func (a *Adapter) capture(ctx context.Context) (*audio.Clip, error) {
	if !a.device.TryLock() {
		return nil, &TranscriptionError{Reason: ReasonDeviceBusy, Err: ErrDeviceBusy}
	}
	defer a.device.Unlock()

	a.logger.Debug("recording", slog.String("recorder", a.recorder.Name()), slog.Duration("duration", a.cfg.Duration))

	clip, err := a.recorder.Record(ctx, a.cfg.Duration)
	if err != nil {
		return nil, &TranscriptionError{Reason: ReasonCaptureFailure, Err: err}
	}
	return clip, nil
}

// writeTemp stores clip as a WAV file in the temp directory
func (a *Adapter) writeTemp(clip *audio.Clip) (string, error) {
	f, err := os.CreateTemp(a.cfg.TempDir, "signspeak_*.wav")
	if err != nil {
		return "", fmt.Errorf("temp file: %w", err)
	}

	if err := audio.WriteWAV(f, clip); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return f.Name(), nil
}
