package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"
)

const (
	DefaultSampleRate = 16000
	DefaultChannels   = 1
	DefaultBitDepth   = 16
	DefaultDuration   = 3 * time.Second

	// DefaultCommand records raw PCM from the default ALSA input device
	DefaultCommand = "arecord -q -t raw -f S16_LE -c {channels} -r {rate} -d {seconds}"
)

// Recorder captures a fixed-length audio clip from an input device
type Recorder interface {
	// Record blocks for d and returns the captured audio
	Record(ctx context.Context, d time.Duration) (*Clip, error)

	// Name returns the recorder name
	Name() string
}

// Config holds capture settings
type Config struct {
	Command    string // Recorder command line with {rate}, {channels}, {seconds} placeholders
	SampleRate int
	Channels   int
}

// DefaultRecorderConfig returns the default capture configuration
func DefaultRecorderConfig() *Config {
	return &Config{
		Command:    DefaultCommand,
		SampleRate: DefaultSampleRate,
		Channels:   DefaultChannels,
	}
}

// Clip is a block of 16-bit little-endian PCM audio
type Clip struct {
	PCM        []byte
	SampleRate int
	Channels   int
	BitDepth   int
}

// NewClip wraps PCM bytes captured with the given format
func NewClip(pcm []byte, sampleRate, channels int) *Clip {
	return &Clip{
		PCM:        pcm,
		SampleRate: sampleRate,
		Channels:   channels,
		BitDepth:   DefaultBitDepth,
	}
}

// Samples decodes the PCM payload into signed 16-bit samples
func (c *Clip) Samples() []int16 {
	samples := make([]int16, len(c.PCM)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(c.PCM[i*2:]))
	}
	return samples
}

// Duration returns the playback length of the clip
func (c *Clip) Duration() time.Duration {
	if c.SampleRate <= 0 || c.Channels <= 0 {
		return 0
	}
	frames := len(c.PCM) / 2 / c.Channels
	return time.Duration(frames) * time.Second / time.Duration(c.SampleRate)
}

// ExpectedBytes returns the PCM size of d seconds of audio in this format
func ExpectedBytes(d time.Duration, sampleRate, channels int) int {
	frames := int(d * time.Duration(sampleRate) / time.Second)
	return frames * channels * 2
}

// NewRecorder creates the recorder described by config
func NewRecorder(config *Config) (Recorder, error) {
	if config == nil {
		config = DefaultRecorderConfig()
	}
	if config.SampleRate <= 0 || config.Channels <= 0 {
		return nil, fmt.Errorf("invalid capture format: %d Hz, %d channels", config.SampleRate, config.Channels)
	}
	return NewExecRecorder(config)
}
