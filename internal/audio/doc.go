// Package audio captures short microphone clips and stores them as WAV
// files. Capture runs an external recorder command (arecord by default)
// that writes raw 16-bit little-endian PCM to stdout.
package audio
