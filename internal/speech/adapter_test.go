package speech

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"codeberg.org/snonux/signspeak/internal/testutil"
	"codeberg.org/snonux/signspeak/internal/transcription"
)

func newTestAdapter(t *testing.T, rec *testutil.MockRecorder, tr *testutil.MockTranscriber, cfg Config) *Adapter {
	t.Helper()
	if cfg.TempDir == "" {
		cfg.TempDir = t.TempDir()
	}
	if cfg.Duration == 0 {
		cfg.Duration = 100 * time.Millisecond
	}
	return NewAdapter(rec, tr, cfg, nil)
}

func assertReason(t *testing.T, err error, reason string) {
	t.Helper()

	var te *TranscriptionError
	if !errors.As(err, &te) {
		t.Fatalf("Expected TranscriptionError, got %T: %v", err, err)
	}
	if te.Reason != reason {
		t.Errorf("Reason = %q, want %q", te.Reason, reason)
	}
}

func TestCaptureAndTranscribe(t *testing.T) {
	tmp := t.TempDir()
	rec := &testutil.MockRecorder{}
	tr := &testutil.MockTranscriber{Text: " Hii "}
	a := newTestAdapter(t, rec, tr, Config{TempDir: tmp})

	got, err := a.CaptureAndTranscribe(context.Background())
	if err != nil {
		t.Fatalf("CaptureAndTranscribe() error = %v", err)
	}

	if got.Raw != " Hii " {
		t.Errorf("Raw = %q, want %q", got.Raw, " Hii ")
	}
	if got.Normalized != "hii" {
		t.Errorf("Normalized = %q, want hii", got.Normalized)
	}
	if got.Provider != "mock" {
		t.Errorf("Provider = %q, want mock", got.Provider)
	}
	if got.Audio != 100*time.Millisecond {
		t.Errorf("Audio = %v, want 100ms", got.Audio)
	}

	if rec.Calls() != 1 || tr.Calls() != 1 {
		t.Fatalf("Expected one capture and one transcription, got %d and %d", rec.Calls(), tr.Calls())
	}
	if !tr.FileExisted[0] {
		t.Error("Audio file should exist while it is being transcribed")
	}
	testutil.AssertFileNotExists(t, tr.Files[0])
	testutil.AssertDirEmpty(t, tmp)
}

func TestCaptureAndTranscribeFailures(t *testing.T) {
	tests := []struct {
		name      string
		rec       *testutil.MockRecorder
		tr        *testutil.MockTranscriber
		cfg       Config
		reason    string
		wantCalls int
	}{
		{
			name:      "service failure",
			rec:       &testutil.MockRecorder{},
			tr:        &testutil.MockTranscriber{Err: errors.New("connection refused")},
			reason:    ReasonServiceFailure,
			wantCalls: 1,
		},
		{
			name:      "service hears nothing",
			rec:       &testutil.MockRecorder{},
			tr:        &testutil.MockTranscriber{Err: transcription.ErrNoSpeech},
			reason:    ReasonNoSpeech,
			wantCalls: 1,
		},
		{
			name:      "blank transcript",
			rec:       &testutil.MockRecorder{},
			tr:        &testutil.MockTranscriber{Text: "  \n"},
			reason:    ReasonNoSpeech,
			wantCalls: 1,
		},
		{
			name:      "silence gate",
			rec:       &testutil.MockRecorder{Clip: testutil.SilentClip(100 * time.Millisecond)},
			tr:        &testutil.MockTranscriber{Text: "hii"},
			cfg:       Config{SilenceThreshold: 0.01},
			reason:    ReasonNoSpeech,
			wantCalls: 0,
		},
		{
			name:      "recorder failure",
			rec:       &testutil.MockRecorder{Err: errors.New("no such device")},
			tr:        &testutil.MockTranscriber{Text: "hii"},
			reason:    ReasonCaptureFailure,
			wantCalls: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmp := t.TempDir()
			tt.cfg.TempDir = tmp
			a := newTestAdapter(t, tt.rec, tt.tr, tt.cfg)

			_, err := a.CaptureAndTranscribe(context.Background())
			assertReason(t, err, tt.reason)

			if tt.tr.Calls() != tt.wantCalls {
				t.Errorf("Transcriber called %d times, want %d", tt.tr.Calls(), tt.wantCalls)
			}
			testutil.AssertDirEmpty(t, tmp)
		})
	}
}

func TestCaptureRejectsConcurrentDeviceUse(t *testing.T) {
	hold := make(chan struct{})
	started := make(chan struct{}, 1)
	rec := &testutil.MockRecorder{Hold: hold, Started: started}
	tr := &testutil.MockTranscriber{Text: "bye"}
	a := newTestAdapter(t, rec, tr, Config{})

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = a.CaptureAndTranscribe(context.Background())
	}()

	<-started
	_, err := a.CaptureAndTranscribe(context.Background())
	assertReason(t, err, ReasonDeviceBusy)
	if !errors.Is(err, ErrDeviceBusy) {
		t.Errorf("Expected ErrDeviceBusy, got %v", err)
	}

	close(hold)
	wg.Wait()
	if firstErr != nil {
		t.Errorf("First capture error = %v", firstErr)
	}

	// The device is free again afterwards
	if _, err := a.CaptureAndTranscribe(context.Background()); err != nil {
		t.Errorf("Capture after release error = %v", err)
	}
}

// slowTranscriber blocks until its context is cancelled
type slowTranscriber struct{}

func (slowTranscriber) Transcribe(ctx context.Context, audioFile string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (slowTranscriber) Name() string { return "slow" }

func (slowTranscriber) IsAvailable() error { return nil }

func TestTranscribeTimeout(t *testing.T) {
	tmp := t.TempDir()
	a := NewAdapter(&testutil.MockRecorder{}, slowTranscriber{}, Config{
		Duration: 50 * time.Millisecond,
		Timeout:  20 * time.Millisecond,
		TempDir:  tmp,
	}, nil)

	_, err := a.CaptureAndTranscribe(context.Background())
	assertReason(t, err, ReasonServiceFailure)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
	testutil.AssertDirEmpty(t, tmp)
}

func TestTranscribeInvalidClip(t *testing.T) {
	tr := &testutil.MockTranscriber{Text: "hii"}
	a := newTestAdapter(t, &testutil.MockRecorder{}, tr, Config{})

	_, err := a.Transcribe(context.Background(), nil)
	assertReason(t, err, ReasonCaptureFailure)
	if tr.Calls() != 0 {
		t.Error("Invalid clips must not reach the transcription service")
	}
}

func TestTranscriptionErrorMessage(t *testing.T) {
	err := &TranscriptionError{Reason: ReasonNoSpeech}
	if err.Error() != "no speech" {
		t.Errorf("Error() = %q, want %q", err.Error(), "no speech")
	}

	wrapped := &TranscriptionError{Reason: ReasonServiceFailure, Err: os.ErrDeadlineExceeded}
	if wrapped.Error() != "service failure: "+os.ErrDeadlineExceeded.Error() {
		t.Errorf("Error() = %q", wrapped.Error())
	}
	if !errors.Is(wrapped, os.ErrDeadlineExceeded) {
		t.Error("Expected Unwrap to expose the cause")
	}
}
