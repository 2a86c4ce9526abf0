// Package transcription turns recorded WAV clips into text using hosted
// speech-to-text services. Providers share one interface so they can be
// chained with a fallback and guarded by a circuit breaker.
package transcription
