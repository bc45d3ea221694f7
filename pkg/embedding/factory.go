package embedding

import "fmt"

func NewProvider(providerType, apiKey, baseURL, model string) (EmbeddingProvider, error) {
	switch providerType {
	case "openai", "":
		return NewOpenAIProvider(apiKey, baseURL, model), nil
	case "ollama":
		return NewOllamaProvider(baseURL, model), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", providerType)
	}
}

var (
	_ EmbeddingProvider = &OpenAIProvider{}
	_ EmbeddingProvider = &OllamaProvider{}
)
