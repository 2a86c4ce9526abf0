// Package processor runs the speech-to-sign pipeline. It captures a short
// utterance, validates the recognized word against the vocabulary, resolves
// its sign frames and assembles them into a looping animation, converting
// every failure into a flat response for the caller.
package processor
