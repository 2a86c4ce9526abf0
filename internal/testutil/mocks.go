package testutil

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"sync"
	"time"

	"codeberg.org/snonux/signspeak/internal/audio"
)

// MockRecorder returns a canned clip instead of opening a device
type MockRecorder struct {
	Clip *audio.Clip
	Err  error
	// Hold, when set, blocks Record until it is closed or ctx is done
	Hold chan struct{}
	// Started is signalled once Record has begun
	Started chan struct{}

	mu    sync.Mutex
	calls int
}

// Record mocks capturing audio
func (m *MockRecorder) Record(ctx context.Context, d time.Duration) (*audio.Clip, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.Started != nil {
		select {
		case m.Started <- struct{}{}:
		default:
		}
	}
	if m.Hold != nil {
		select {
		case <-m.Hold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.Err != nil {
		return nil, m.Err
	}
	if m.Clip != nil {
		return m.Clip, nil
	}
	return SpeechClip(d), nil
}

// Name returns the recorder name
func (m *MockRecorder) Name() string {
	return "mock"
}

// Calls returns how often Record was invoked
func (m *MockRecorder) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockTranscriber mocks a transcription provider
type MockTranscriber struct {
	Text string
	Err  error

	mu    sync.Mutex
	Files []string
	// FileExisted records whether each submitted file was present on disk
	FileExisted []bool
}

// Transcribe mocks submitting an audio file
func (m *MockTranscriber) Transcribe(ctx context.Context, audioFile string) (string, error) {
	_, statErr := os.Stat(audioFile)

	m.mu.Lock()
	m.Files = append(m.Files, audioFile)
	m.FileExisted = append(m.FileExisted, statErr == nil)
	m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}
	return m.Text, nil
}

// Name returns the provider name
func (m *MockTranscriber) Name() string {
	return "mock"
}

// IsAvailable always succeeds unless Err is set
func (m *MockTranscriber) IsAvailable() error {
	return m.Err
}

// Calls returns the number of Transcribe invocations
func (m *MockTranscriber) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Files)
}

// MockTranslator mocks the translation service
type MockTranslator struct {
	Translations map[string]string
	Errors       map[string]error
	Calls        []string
}

// Translate mocks translating text
func (m *MockTranslator) Translate(ctx context.Context, text string) (string, error) {
	m.Calls = append(m.Calls, fmt.Sprintf("Translate: %s", text))

	if err, ok := m.Errors[text]; ok {
		return "", err
	}

	if translation, ok := m.Translations[text]; ok {
		return translation, nil
	}

	return text, nil
}

// SpeechClip generates a mono 16 kHz clip of d with an audible square wave
func SpeechClip(d time.Duration) *audio.Clip {
	n := audio.ExpectedBytes(d, audio.DefaultSampleRate, audio.DefaultChannels) / 2
	pcm := make([]byte, n*2)
	for i := 0; i < n; i++ {
		v := int16(8000)
		if (i/20)%2 == 1 {
			v = -8000
		}
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(v))
	}
	return audio.NewClip(pcm, audio.DefaultSampleRate, audio.DefaultChannels)
}

// SilentClip generates a clip of d containing only zero samples
func SilentClip(d time.Duration) *audio.Clip {
	n := audio.ExpectedBytes(d, audio.DefaultSampleRate, audio.DefaultChannels)
	return audio.NewClip(make([]byte, n), audio.DefaultSampleRate, audio.DefaultChannels)
}
