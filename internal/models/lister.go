package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Lister handles listing available OpenAI models
type Lister struct {
	apiKey string
	client *openai.Client
}

// Catalog holds model IDs grouped by what the pipeline uses them for
type Catalog struct {
	Transcription []string
	Chat          []string
}

// NewLister creates a new model lister. An optional baseURL overrides the
// API endpoint.
func NewLister(apiKey string, baseURL ...string) *Lister {
	config := openai.DefaultConfig(apiKey)
	if len(baseURL) > 0 && baseURL[0] != "" {
		config.BaseURL = baseURL[0]
	}
	return &Lister{
		apiKey: apiKey,
		client: openai.NewClientWithConfig(config),
	}
}

// Fetch retrieves and categorizes the models available to the key
func (l *Lister) Fetch(ctx context.Context) (*Catalog, error) {
	if l.apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key not found. Set OPENAI_API_KEY environment variable or configure in .signspeak.yaml")
	}

	models, err := l.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	catalog := &Catalog{}
	for _, model := range models.Models {
		modelID := model.ID
		switch {
		case strings.Contains(modelID, "whisper") || strings.Contains(modelID, "transcribe"):
			catalog.Transcription = append(catalog.Transcription, modelID)
		case strings.Contains(modelID, "gpt") || strings.Contains(modelID, "chat"):
			// Audio and realtime chat variants are not used for translation
			if strings.Contains(modelID, "audio") || strings.Contains(modelID, "realtime") {
				continue
			}
			catalog.Chat = append(catalog.Chat, modelID)
		}
	}

	sort.Strings(catalog.Transcription)
	sort.Strings(catalog.Chat)

	return catalog, nil
}

// ListAvailableModels prints the categorized models to w
func (l *Lister) ListAvailableModels(ctx context.Context, w io.Writer) error {
	catalog, err := l.Fetch(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Available OpenAI Models:")
	fmt.Fprintln(w, "\nSpeech-to-Text Models (transcription.openai_model):")
	if len(catalog.Transcription) == 0 {
		fmt.Fprintln(w, "  No transcription models found")
	} else {
		for _, model := range catalog.Transcription {
			fmt.Fprintf(w, "  %s\n", model)
		}
	}

	fmt.Fprintln(w, "\nChat Models (for translation):")
	if len(catalog.Chat) > 10 {
		// Show only relevant models
		relevantModels := []string{}
		for _, model := range catalog.Chat {
			if strings.Contains(model, "gpt-4o") || strings.Contains(model, "gpt-4.1") {
				relevantModels = append(relevantModels, model)
			}
		}
		for _, model := range relevantModels {
			fmt.Fprintf(w, "  %s\n", model)
		}
		fmt.Fprintf(w, "  ... and %d more models\n", len(catalog.Chat)-len(relevantModels))
	} else if len(catalog.Chat) == 0 {
		fmt.Fprintln(w, "  No chat models found")
	} else {
		for _, model := range catalog.Chat {
			fmt.Fprintf(w, "  %s\n", model)
		}
	}

	return nil
}
