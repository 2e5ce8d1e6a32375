package ai

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UceeCode/waec-ai/internal/core/domain"
)

// ollamaServer answers /api/tags with status.
func ollamaServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name      string
		settings  *domain.EmbeddingSettings
		wantNil   bool
		wantErr   string
		wantModel string
		wantDims  int
	}{
		{
			name:    "nil settings",
			wantNil: true,
		},
		{
			name:     "provider none",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderNone},
			wantNil:  true,
		},
		{
			name:     "openai without key is not configured",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI},
			wantNil:  true,
		},
		{
			name:     "unknown provider is not configured",
			settings: &domain.EmbeddingSettings{Provider: "cohere"},
			wantNil:  true,
		},
		{
			name:      "hashing default dimensions",
			settings:  &domain.EmbeddingSettings{Provider: domain.AIProviderHashing},
			wantModel: "hashing-snowball-v1",
			wantDims:  512,
		},
		{
			name:      "hashing custom dimensions",
			settings:  &domain.EmbeddingSettings{Provider: domain.AIProviderHashing, Dimensions: 64},
			wantModel: "hashing-snowball-v1",
			wantDims:  64,
		},
		{
			name:      "ollama defaults",
			settings:  &domain.EmbeddingSettings{Provider: domain.AIProviderOllama},
			wantModel: "nomic-embed-text",
			wantDims:  768,
		},
		{
			name: "ollama custom model",
			settings: &domain.EmbeddingSettings{
				Provider:   domain.AIProviderOllama,
				Model:      "all-minilm",
				Dimensions: 384,
			},
			wantModel: "all-minilm",
			wantDims:  384,
		},
		{
			name: "openai model dimensions",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "text-embedding-3-large",
			},
			wantModel: "text-embedding-3-large",
			wantDims:  3072,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)

			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			defer svc.Close()
			assert.Equal(t, tt.wantModel, svc.ModelName())
			assert.Equal(t, tt.wantDims, svc.Dimensions())
		})
	}
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name      string
		settings  *domain.LLMSettings
		wantNil   bool
		wantErr   bool
		wantModel string
	}{
		{name: "nil settings", wantNil: true},
		{name: "empty provider", settings: &domain.LLMSettings{}, wantNil: true},
		{name: "provider none", settings: &domain.LLMSettings{Provider: domain.AIProviderNone}, wantNil: true},
		{
			name:      "ollama",
			settings:  &domain.LLMSettings{Provider: domain.AIProviderOllama, Model: "mistral"},
			wantModel: "mistral",
		},
		{
			name:      "ollama default model",
			settings:  &domain.LLMSettings{Provider: domain.AIProviderOllama},
			wantModel: "llama3.2",
		},
		{name: "openai is not an answer provider", settings: &domain.LLMSettings{Provider: domain.AIProviderOpenAI}, wantErr: true},
		{name: "hashing is not an answer provider", settings: &domain.LLMSettings{Provider: domain.AIProviderHashing}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings)

			if tt.wantErr {
				assert.ErrorContains(t, err, "unsupported LLM provider")
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			assert.Equal(t, tt.wantModel, svc.ModelName())
		})
	}
}

func TestNewServices(t *testing.T) {
	settings := domain.DefaultAppSettings()

	services, err := NewServices(settings)

	require.NoError(t, err)
	defer services.Close()
	require.NotNil(t, services.Embedding)
	assert.Equal(t, 512, services.Embedding.Dimensions())
	assert.Nil(t, services.LLM)
}

func TestNewServices_BadLLMProvider(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.LLM.Provider = domain.AIProviderOpenAI

	_, err := NewServices(settings)

	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestServices_Close_NilServices(t *testing.T) {
	services := &Services{}

	assert.NotPanics(t, services.Close)
}

func TestCreateAndValidateEmbeddingService(t *testing.T) {
	up := ollamaServer(t, http.StatusOK)
	down := ollamaServer(t, http.StatusInternalServerError)

	tests := []struct {
		name     string
		settings *domain.EmbeddingSettings
		wantNil  bool
		wantErr  bool
	}{
		{name: "not configured", settings: &domain.EmbeddingSettings{}, wantNil: true},
		{name: "hashing never fails", settings: &domain.EmbeddingSettings{Provider: domain.AIProviderHashing}},
		{name: "ollama reachable", settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: up.URL}},
		{
			name:     "ollama unhealthy",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: down.URL},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateAndValidateEmbeddingService(tt.settings)

			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, svc)
				return
			}
			assert.NotNil(t, svc)
		})
	}
}

func TestCreateAndValidateLLMService(t *testing.T) {
	up := ollamaServer(t, http.StatusOK)
	down := ollamaServer(t, http.StatusServiceUnavailable)

	svc, err := CreateAndValidateLLMService(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: up.URL})
	require.NoError(t, err)
	assert.NotNil(t, svc)

	svc, err = CreateAndValidateLLMService(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: down.URL})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Nil(t, svc)

	svc, err = CreateAndValidateLLMService(nil)
	assert.NoError(t, err)
	assert.Nil(t, svc)
}

func TestValidateConfig(t *testing.T) {
	up := ollamaServer(t, http.StatusOK)
	down := ollamaServer(t, http.StatusNotFound)

	assert.NoError(t, ValidateEmbeddingConfig(nil))
	assert.NoError(t, ValidateEmbeddingConfig(&domain.EmbeddingSettings{Provider: domain.AIProviderHashing}))
	assert.NoError(t, ValidateEmbeddingConfig(&domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: up.URL}))
	assert.Error(t, ValidateEmbeddingConfig(&domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: down.URL}))

	assert.NoError(t, ValidateLLMConfig(nil))
	assert.NoError(t, ValidateLLMConfig(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: up.URL}))
	assert.Error(t, ValidateLLMConfig(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: down.URL}))
}
