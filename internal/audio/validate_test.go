package audio

import (
	"encoding/binary"
	"strings"
	"testing"
)

// toneClip builds a mono clip where every sample has the given amplitude
func toneClip(n int, amplitude int16) *Clip {
	pcm := make([]byte, n*2)
	for i := 0; i < n; i++ {
		v := amplitude
		if i%2 == 1 {
			v = -amplitude
		}
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(v))
	}
	return NewClip(pcm, DefaultSampleRate, DefaultChannels)
}

func TestValidateClip(t *testing.T) {
	tests := []struct {
		name    string
		clip    *Clip
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid clip",
			clip: toneClip(160, 1000),
		},
		{
			name:    "nil clip",
			clip:    nil,
			wantErr: true,
			errMsg:  "audio clip is empty",
		},
		{
			name:    "empty pcm",
			clip:    NewClip(nil, DefaultSampleRate, 1),
			wantErr: true,
			errMsg:  "audio clip is empty",
		},
		{
			name:    "odd byte count",
			clip:    NewClip([]byte{1, 2, 3}, DefaultSampleRate, 1),
			wantErr: true,
			errMsg:  "not aligned",
		},
		{
			name:    "stereo frame misaligned",
			clip:    NewClip([]byte{1, 2, 3, 4, 5, 6}, DefaultSampleRate, 2),
			wantErr: true,
			errMsg:  "not aligned",
		},
		{
			name:    "zero sample rate",
			clip:    NewClip([]byte{1, 2}, 0, 1),
			wantErr: true,
			errMsg:  "invalid clip format",
		},
		{
			name:    "wrong bit depth",
			clip:    &Clip{PCM: []byte{1, 2}, SampleRate: 8000, Channels: 1, BitDepth: 8},
			wantErr: true,
			errMsg:  "unsupported bit depth",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateClip(tt.clip)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateClip() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("ValidateClip() error = %v, want containing %q", err, tt.errMsg)
			}
		})
	}
}

func TestRMSAndSilence(t *testing.T) {
	silent := toneClip(1600, 0)
	quiet := toneClip(1600, 100)
	loud := toneClip(1600, 16000)

	if RMS(silent) != 0 {
		t.Errorf("RMS(silent) = %f, want 0", RMS(silent))
	}
	if rms := RMS(loud); rms < 0.48 || rms > 0.5 {
		t.Errorf("RMS(loud) = %f, want about 0.49", rms)
	}
	if RMS(NewClip(nil, DefaultSampleRate, 1)) != 0 {
		t.Error("RMS of empty clip should be 0")
	}

	if !IsSilent(silent, 0.01) {
		t.Error("Expected silent clip to be detected")
	}
	if !IsSilent(quiet, 0.01) {
		t.Error("Expected quiet clip below threshold to be silent")
	}
	if IsSilent(loud, 0.01) {
		t.Error("Expected loud clip not to be silent")
	}
	if IsSilent(silent, 0) {
		t.Error("A zero threshold must disable the silence gate")
	}
}

func TestClipDuration(t *testing.T) {
	clip := toneClip(DefaultSampleRate*3, 10)
	if d := clip.Duration(); d != DefaultDuration {
		t.Errorf("Duration() = %v, want %v", d, DefaultDuration)
	}

	if n := ExpectedBytes(DefaultDuration, DefaultSampleRate, DefaultChannels); n != 96000 {
		t.Errorf("ExpectedBytes() = %d, want 96000", n)
	}

	if d := (&Clip{PCM: []byte{1, 2}}).Duration(); d != 0 {
		t.Errorf("Duration() without format = %v, want 0", d)
	}
}

func TestSamples(t *testing.T) {
	clip := NewClip([]byte{0x01, 0x00, 0xFF, 0xFF, 0x00, 0x80}, DefaultSampleRate, 1)
	samples := clip.Samples()

	expected := []int16{1, -1, -32768}
	for i, s := range expected {
		if samples[i] != s {
			t.Errorf("Samples()[%d] = %d, want %d", i, samples[i], s)
		}
	}
}
