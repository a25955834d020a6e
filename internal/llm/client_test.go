package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		want     Provider
		wantErr  bool
	}{
		{name: "openai", provider: "openai", want: ProviderOpenAI},
		{name: "ollama", provider: "ollama", want: ProviderOllama},
		{name: "anthropic", provider: "anthropic", want: ProviderAnthropic},
		{name: "gemini", provider: "gemini", want: ProviderGemini},
		{name: "unknown provider", provider: "unknown", wantErr: true},
		{name: "empty provider", provider: "", wantErr: true},
		{name: "case sensitive - OPENAI fails", provider: "OPENAI", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateProvider(tt.provider)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultModelForProvider(t *testing.T) {
	assert.Equal(t, "gpt-4o-mini", DefaultModelForProvider(ProviderOpenAI))
	assert.NotEmpty(t, DefaultModelForProvider(ProviderOllama))
	assert.NotEmpty(t, DefaultModelForProvider(ProviderAnthropic))
	assert.NotEmpty(t, DefaultModelForProvider(ProviderGemini))
	assert.Empty(t, DefaultModelForProvider("unknown"))
}

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{Provider: ProviderOpenAI}.withDefaults()
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.InDelta(t, 0.1, cfg.Temperature, 1e-6)
	assert.Equal(t, DefaultMaxTokens, cfg.MaxTokens)

	cfg = Config{Provider: ProviderOpenAI, Model: "gpt-4o", Temperature: 0.5, MaxTokens: 50}.withDefaults()
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.InDelta(t, 0.5, cfg.Temperature, 1e-6)
	assert.Equal(t, 50, cfg.MaxTokens)
}

func TestNewChatModel_Validation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "openai requires API key",
			cfg:     Config{Provider: ProviderOpenAI},
			wantErr: "OpenAI API key is required",
		},
		{
			name:    "anthropic requires API key",
			cfg:     Config{Provider: ProviderAnthropic},
			wantErr: "anthropic API key is required",
		},
		{
			name:    "gemini requires API key",
			cfg:     Config{Provider: ProviderGemini},
			wantErr: "gemini API key is required",
		},
		{
			name:    "unsupported provider",
			cfg:     Config{Provider: "unknown", APIKey: "key"},
			wantErr: "unsupported LLM provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChatModel(ctx, tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewChatModel_OpenAI(t *testing.T) {
	m, err := NewChatModel(context.Background(), Config{Provider: ProviderOpenAI, APIKey: "sk-test"})
	require.NoError(t, err)
	assert.NotNil(t, m)
}
