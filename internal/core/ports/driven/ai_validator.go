package driven

import "github.com/UceeCode/waec-ai/internal/core/domain"

// AIConfigValidator checks provider settings against the live provider
// before they are relied on. A disabled provider is never an error.
type AIConfigValidator interface {
	ValidateEmbedding(config *domain.EmbeddingSettings) error
	ValidateLLM(config *domain.LLMSettings) error
}
