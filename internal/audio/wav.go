package audio

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV encodes clip as a PCM WAV stream
func WriteWAV(w io.WriteSeeker, clip *Clip) error {
	if err := ValidateClip(clip); err != nil {
		return err
	}

	samples := clip.Samples()
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}

	buffer := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: clip.Channels, SampleRate: clip.SampleRate},
		Data:           data,
		SourceBitDepth: clip.BitDepth,
	}

	enc := wav.NewEncoder(w, clip.SampleRate, clip.BitDepth, clip.Channels, 1)
	if err := enc.Write(buffer); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close wav encoder: %w", err)
	}
	return nil
}

// ReadWAV decodes a 16-bit PCM WAV file back into a clip
func ReadWAV(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid wav file: %s", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	if dec.BitDepth != DefaultBitDepth {
		return nil, fmt.Errorf("unsupported wav bit depth %d", dec.BitDepth)
	}

	pcm := make([]byte, len(buf.Data)*2)
	for i, s := range buf.Data {
		v := uint16(int16(s))
		pcm[i*2] = byte(v)
		pcm[i*2+1] = byte(v >> 8)
	}

	return NewClip(pcm, int(dec.SampleRate), int(dec.NumChans)), nil
}
