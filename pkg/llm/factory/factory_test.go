package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-chatbot-be/pkg/llm/ollama"
	"rag-chatbot-be/pkg/llm/openai"
)

func TestNewLLMProvider(t *testing.T) {
	p, err := NewLLMProvider(Params{Provider: "openai", Model: "gpt-4o-mini", APIKey: "sk"})
	require.NoError(t, err)
	assert.IsType(t, &openai.Provider{}, p)

	p, err = NewLLMProvider(Params{Provider: "ollama", Model: "llama3"})
	require.NoError(t, err)
	require.IsType(t, &ollama.OllamaProvider{}, p)
	assert.Equal(t, "http://localhost:11434", p.(*ollama.OllamaProvider).BaseURL)

	_, err = NewLLMProvider(Params{Provider: "openai"})
	assert.Error(t, err)

	_, err = NewLLMProvider(Params{Provider: "gemini"})
	assert.EqualError(t, err, "unsupported LLM provider: gemini")
}
