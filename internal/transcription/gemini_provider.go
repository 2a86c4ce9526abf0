package transcription

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

// geminiInstruction asks the model for a bare transcript
const geminiInstruction = "Transcribe the spoken words in this audio clip. " +
	"Respond with only the words that were said, without punctuation or commentary. " +
	"If nothing intelligible was said, respond with an empty message."

// GeminiProvider implements Provider using Gemini audio understanding
type GeminiProvider struct {
	client *genai.Client
	config *Config
}

// NewGeminiProvider creates a new Gemini transcription provider
func NewGeminiProvider(config *Config) (Provider, error) {
	if config.GeminiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if config.GeminiModel == "" {
		config.GeminiModel = DefaultProviderConfig().GeminiModel
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  config.GeminiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.GeminiBaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.GeminiBaseURL}
	}

	client, err := genai.NewClient(context.Background(), clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{client: client, config: config}, nil
}

// Transcribe sends the clip inline and returns the model's transcript
func (p *GeminiProvider) Transcribe(ctx context.Context, audioFile string) (string, error) {
	data, err := os.ReadFile(audioFile)
	if err != nil {
		return "", fmt.Errorf("audio file unavailable: %w", err)
	}

	instruction := geminiInstruction
	if p.config.Language != "" {
		instruction += fmt.Sprintf(" The speaker uses language code %q.", p.config.Language)
	}

	parts := []*genai.Part{
		genai.NewPartFromText(instruction),
		genai.NewPartFromBytes(data, "audio/wav"),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	genConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.config.GeminiModel, contents, genConfig)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrNoSpeech
	}
	return text, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// IsAvailable checks if the Gemini API is configured
func (p *GeminiProvider) IsAvailable() error {
	if p.config.GeminiKey == "" {
		return fmt.Errorf("Gemini API key not configured")
	}
	return nil
}
