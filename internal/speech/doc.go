// Package speech records a short utterance and turns it into text. It owns
// the microphone claim and the temporary WAV file for one capture and
// reports every failure as a TranscriptionError with a short reason.
package speech
