// Package llm provides a unified interface for LLM providers using CloudWeGo Eino.
package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"
)

// Provider identifies the LLM provider to use.
type Provider string

// Config holds configuration for creating an LLM client.
type Config struct {
	Provider    Provider
	Model       string
	APIKey      string // Required for OpenAI, Anthropic and Gemini
	BaseURL     string // Ollama server (default: http://localhost:11434) or an OpenAI-compatible endpoint
	Temperature float32
	MaxTokens   int
}

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = DefaultModelForProvider(c.Provider)
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	return c
}

// NewChatModel creates a ChatModel instance based on the provider configuration.
// It returns an Eino BaseChatModel that can be used for Generate() or Stream() calls.
func NewChatModel(ctx context.Context, cfg Config) (model.BaseChatModel, error) {
	cfg = cfg.withDefaults()
	temperature := cfg.Temperature
	maxTokens := cfg.MaxTokens

	switch cfg.Provider {
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			Model:       cfg.Model,
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Temperature: &temperature,
			MaxTokens:   &maxTokens,
		})

	case ProviderOllama:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = DefaultOllamaURL
		}
		return ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
			BaseURL: baseURL,
			Model:   cfg.Model,
		})

	case ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic API key is required")
		}
		return claude.NewChatModel(ctx, &claude.Config{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			MaxTokens:   maxTokens,
			Temperature: &temperature,
		})

	case ProviderGemini:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini API key is required")
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		return gemini.NewChatModel(ctx, &gemini.Config{
			Client:      client,
			Model:       cfg.Model,
			Temperature: &temperature,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s (supported: openai, ollama, anthropic, gemini)", cfg.Provider)
	}
}

// ValidateProvider checks if the given provider string is supported.
func ValidateProvider(p string) (Provider, error) {
	switch Provider(p) {
	case ProviderOpenAI, ProviderOllama, ProviderAnthropic, ProviderGemini:
		return Provider(p), nil
	default:
		return "", fmt.Errorf("unsupported provider: %s", p)
	}
}
