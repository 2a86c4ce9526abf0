package transcription

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider using the OpenAI transcription API
type OpenAIProvider struct {
	client *openai.Client
	config *Config
}

// NewOpenAIProvider creates a new OpenAI transcription provider
func NewOpenAIProvider(config *Config) (Provider, error) {
	if config.OpenAIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.OpenAIKey)
	if config.OpenAIBaseURL != "" {
		clientConfig.BaseURL = config.OpenAIBaseURL
	}

	if config.OpenAIModel == "" {
		config.OpenAIModel = openai.Whisper1
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Transcribe uploads the audio file and returns the recognized text
func (p *OpenAIProvider) Transcribe(ctx context.Context, audioFile string) (string, error) {
	if _, err := os.Stat(audioFile); err != nil {
		return "", fmt.Errorf("audio file unavailable: %w", err)
	}

	req := openai.AudioRequest{
		Model:    p.config.OpenAIModel,
		FilePath: audioFile,
		Language: p.config.Language,
		Format:   openai.AudioResponseFormatJSON,
	}

	resp, err := p.client.CreateTranscription(ctx, req)
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "does not have access to model") {
			return "", fmt.Errorf("OpenAI transcription API error: %w\nNote: try --transcription-model whisper-1 instead", err)
		}
		return "", fmt.Errorf("OpenAI transcription API error: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrNoSpeech
	}
	return text, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the OpenAI API is configured
func (p *OpenAIProvider) IsAvailable() error {
	if p.config.OpenAIKey == "" {
		return fmt.Errorf("OpenAI API key not configured")
	}

	// A test call would cost credits; having a key is good enough here
	return nil
}
