package factory

import (
	"fmt"

	"rag-chatbot-be/pkg/llm"
	"rag-chatbot-be/pkg/llm/ollama"
	"rag-chatbot-be/pkg/llm/openai"
)

type Params struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
}

func NewLLMProvider(p Params) (llm.LLMProvider, error) {
	switch p.Provider {
	case "openai", "":
		if p.APIKey == "" && p.BaseURL == "" {
			return nil, fmt.Errorf("openai provider requires OPENAI_API_KEY")
		}
		return openai.NewProvider(p.APIKey, p.BaseURL, p.Model), nil
	case "ollama":
		baseURL := p.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, p.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", p.Provider)
	}
}
