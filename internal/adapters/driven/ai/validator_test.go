package ai

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/UceeCode/waec-ai/internal/core/domain"
)

func TestConfigValidator_ValidateEmbedding(t *testing.T) {
	validator := NewConfigValidator()
	down := ollamaServer(t, http.StatusBadGateway)

	assert.NoError(t, validator.ValidateEmbedding(nil))
	assert.NoError(t, validator.ValidateEmbedding(&domain.EmbeddingSettings{Model: "test-model"}))
	assert.NoError(t, validator.ValidateEmbedding(&domain.EmbeddingSettings{Provider: domain.AIProviderHashing}))
	assert.Error(t, validator.ValidateEmbedding(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  down.URL,
	}))
}

func TestConfigValidator_ValidateLLM(t *testing.T) {
	validator := NewConfigValidator()
	up := ollamaServer(t, http.StatusOK)

	assert.NoError(t, validator.ValidateLLM(nil))
	assert.NoError(t, validator.ValidateLLM(&domain.LLMSettings{Provider: domain.AIProviderNone}))
	assert.NoError(t, validator.ValidateLLM(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: up.URL}))
	assert.Error(t, validator.ValidateLLM(&domain.LLMSettings{Provider: domain.AIProviderOpenAI}))
}
