package translation

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sashabaranov/go-openai"
)

// DefaultTarget is the language the vocabulary is written in
const DefaultTarget = "English"

// Service translates a phrase into the target language
type Service interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Config holds translator settings
type Config struct {
	APIKey  string
	Target  string // Target language name, e.g. "English"
	Model   string // Chat model (default gpt-4o-mini)
	BaseURL string // Optional API endpoint override
}

// Translator translates short phrases with the OpenAI chat API
type Translator struct {
	config Config
	client *openai.Client
	cache  *TranslationCache
}

// NewTranslator creates a new translator instance
func NewTranslator(config Config) *Translator {
	if config.Target == "" {
		config.Target = DefaultTarget
	}
	if config.Model == "" {
		config.Model = openai.GPT4oMini
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &Translator{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
		cache:  NewTranslationCache(),
	}
}

// Translate translates text into the target language. The reply is
// lowercased so it can be looked up in the vocabulary directly.
func (t *Translator) Translate(ctx context.Context, text string) (string, error) {
	if t.config.APIKey == "" {
		return "", fmt.Errorf("OpenAI API key not found")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("nothing to translate")
	}

	if cached, ok := t.cache.Get(text); ok {
		return cached, nil
	}

	req := openai.ChatCompletionRequest{
		Model: t.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Translate '%s' to %s. Respond with only the translation in lowercase, nothing else.",
					text, t.config.Target),
			},
		},
		MaxTokens:   50,
		Temperature: 0.3,
	}

	resp, err := t.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no translation returned")
	}

	translation := strings.ToLower(strings.TrimSpace(resp.Choices[0].Message.Content))
	translation = strings.Trim(translation, "'\".")
	if translation == "" {
		return "", fmt.Errorf("empty translation returned")
	}

	t.cache.Add(text, translation)
	return translation, nil
}

// TranslationCache stores translations in memory
type TranslationCache struct {
	mu           sync.RWMutex
	translations map[string]string
}

// NewTranslationCache creates a new translation cache
func NewTranslationCache() *TranslationCache {
	return &TranslationCache{
		translations: make(map[string]string),
	}
}

// Add adds a translation to the cache
func (tc *TranslationCache) Add(text, translation string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.translations[text] = translation
}

// Get retrieves a translation from the cache
func (tc *TranslationCache) Get(text string) (string, bool) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	translation, ok := tc.translations[text]
	return translation, ok
}

