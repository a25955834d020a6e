package llm

// Provider constants
const (
	// DefaultProvider is the default LLM provider
	DefaultProvider = ProviderOpenAI

	// ProviderOpenAI represents the OpenAI provider
	ProviderOpenAI Provider = "openai"

	// ProviderOllama represents the Ollama provider
	ProviderOllama Provider = "ollama"

	// ProviderAnthropic represents the Anthropic provider
	ProviderAnthropic Provider = "anthropic"

	// ProviderGemini represents the Google Gemini provider
	ProviderGemini Provider = "gemini"
)

// DefaultOllamaURL is the default URL for Ollama server
const DefaultOllamaURL = "http://localhost:11434"

// Intent classification is a short, low-variance call.
const (
	DefaultTemperature = 0.1
	DefaultMaxTokens   = 200
)

var defaultModels = map[Provider]string{
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderOllama:    "llama3.1",
	ProviderAnthropic: "claude-3-5-haiku-latest",
	ProviderGemini:    "gemini-2.0-flash",
}

// DefaultModelForProvider returns the model used when none is configured.
func DefaultModelForProvider(p Provider) string {
	return defaultModels[p]
}
