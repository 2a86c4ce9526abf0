// Package models provides functionality for listing and categorizing
// available OpenAI models. It helps users discover which transcription
// and translation models are available with their API key.
package models
