package factory

import (
	"fmt"

	"chatbot-be/pkg/llm"
	"chatbot-be/pkg/llm/huggingface"
	"chatbot-be/pkg/llm/ollama"
)

func NewProvider(providerType, modelName, baseURL, apiKey string) (llm.Provider, error) {
	switch providerType {
	case "huggingface":
		if modelName == "" {
			modelName = "google/flan-t5-base"
		}
		return huggingface.NewHuggingFaceProvider(apiKey, baseURL, modelName), nil
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
