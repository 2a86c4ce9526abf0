package audio

import (
	"fmt"
	"math"
)

// ValidateClip checks that a clip holds well-formed 16-bit PCM
func ValidateClip(clip *Clip) error {
	if clip == nil || len(clip.PCM) == 0 {
		return fmt.Errorf("audio clip is empty")
	}

	if clip.BitDepth != DefaultBitDepth {
		return fmt.Errorf("unsupported bit depth %d", clip.BitDepth)
	}

	if len(clip.PCM)%(2*max(clip.Channels, 1)) != 0 {
		return fmt.Errorf("pcm payload not aligned")
	}

	if clip.SampleRate <= 0 || clip.Channels <= 0 {
		return fmt.Errorf("invalid clip format: %d Hz, %d channels", clip.SampleRate, clip.Channels)
	}

	return nil
}

// RMS returns the root-mean-square level of the clip scaled to 0..1
func RMS(clip *Clip) float64 {
	samples := clip.Samples()
	if len(samples) == 0 {
		return 0
	}

	var sum float64
	for _, s := range samples {
		v := float64(s) / math.MaxInt16
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// IsSilent reports whether the clip level is below threshold. A threshold
// of zero or less disables the check.
func IsSilent(clip *Clip, threshold float64) bool {
	if threshold <= 0 {
		return false
	}
	return RMS(clip) < threshold
}
