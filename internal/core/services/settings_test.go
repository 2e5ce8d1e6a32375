package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UceeCode/waec-ai/internal/core/domain"
)

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(newMockConfigStore(), nil)

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Storage.Backend, settings.Storage.Backend)
	assert.Equal(t, domain.AIProviderHashing, settings.Embedding.Provider)
	assert.Equal(t, "hashing-snowball-v1", settings.Embedding.Model)
	assert.Equal(t, 512, settings.Embedding.Dimensions)
	assert.Equal(t, domain.AIProviderNone, settings.LLM.Provider)
	assert.Empty(t, settings.LLM.Model)
	assert.Equal(t, defaults.Index, settings.Index)
	assert.Equal(t, domain.DefaultRetrievalK, settings.Retrieval.DefaultK)
	assert.Equal(t, ":8080", settings.Server.Addr)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := newMockConfigStore()
	_ = store.Set("storage.backend", "postgres")
	_ = store.Set("storage.postgres_dsn", "postgres://localhost/waec")
	_ = store.Set("embedding.provider", "ollama")
	_ = store.Set("embedding.requests_per_second", 2.5)
	_ = store.Set("llm.provider", "ollama")
	_ = store.Set("index.workers", int64(8))
	_ = store.Set("retrieval.default_k", int64(10))

	settings, err := NewSettingsService(store, nil).Get()

	require.NoError(t, err)
	assert.Equal(t, domain.StoragePostgres, settings.Storage.Backend)
	assert.Equal(t, "postgres://localhost/waec", settings.Storage.PostgresDSN)
	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
	assert.Zero(t, settings.Embedding.Dimensions)
	assert.InDelta(t, 2.5, settings.Embedding.RequestsPerSecond, 1e-9)
	assert.Equal(t, "llama3.2", settings.LLM.Model)
	assert.Equal(t, 8, settings.Index.Workers)
	assert.Equal(t, 32, settings.Index.BatchSize)
	assert.Equal(t, 10, settings.Retrieval.DefaultK)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := newMockConfigStore()
	_ = store.Set("storage.backend", "mongodb")
	_ = store.Set("embedding.provider", "invalid_provider")

	settings, err := NewSettingsService(store, nil).Get()

	require.NoError(t, err)
	assert.Equal(t, domain.StorageSQLite, settings.Storage.Backend)
	assert.Equal(t, domain.AIProviderHashing, settings.Embedding.Provider)
}

func TestSettingsService_Get_EnvironmentOverrides(t *testing.T) {
	store := newMockConfigStore()
	_ = store.Set("storage.postgres_dsn", "from-file")
	_ = store.Set("embedding.api_key", "file-key")
	env := map[string]string{"WAEC_POSTGRES_DSN": "from-env", "OPENAI_API_KEY": "env-key"}

	settings, err := NewSettingsService(store, nil).WithEnv(func(k string) string { return env[k] }).Get()

	require.NoError(t, err)
	assert.Equal(t, "from-env", settings.Storage.PostgresDSN)
	assert.Equal(t, "env-key", settings.Embedding.APIKey)
}

func TestSettingsService_Set(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		value  string
		stored any
	}{
		{"string", "embedding.model", "all-minilm", "all-minilm"},
		{"trims", "server.addr", " :9090 ", ":9090"},
		{"int", "index.batch_size", "64", int64(64)},
		{"float", "embedding.requests_per_second", "1.5", 1.5},
		{"backend", "storage.backend", "memory", "memory"},
		{"embedding provider", "embedding.provider", "openai", "openai"},
		{"llm provider", "llm.provider", "none", "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockConfigStore()

			err := NewSettingsService(store, nil).Set(tt.key, tt.value)

			require.NoError(t, err)
			assert.Equal(t, tt.stored, store.data[tt.key])
		})
	}
}

func TestSettingsService_Set_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown key", "search.mode", "hybrid"},
		{"bad int", "index.workers", "many"},
		{"negative int", "retrieval.default_k", "-1"},
		{"bad float", "embedding.requests_per_second", "fast"},
		{"bad backend", "storage.backend", "mongodb"},
		{"bad embedding provider", "embedding.provider", "cohere"},
		{"llm provider without generation support", "llm.provider", "hashing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockConfigStore()

			err := NewSettingsService(store, nil).Set(tt.key, tt.value)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, store.data)
		})
	}
}

func TestSettingsService_Set_StoreError(t *testing.T) {
	store := newMockConfigStore()
	store.setErr = assertErr

	err := NewSettingsService(store, nil).Set("server.addr", ":1")

	assert.ErrorIs(t, err, assertErr)
}

func TestSettingsService_Validate(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		wantErr string
	}{
		{"defaults are valid", nil, ""},
		{"postgres without dsn", map[string]any{"storage.backend": "postgres"}, "storage.postgres_dsn"},
		{"openai without key", map[string]any{"embedding.provider": "openai"}, "embedding.api_key"},
		{"openai with key", map[string]any{"embedding.provider": "openai", "embedding.api_key": "sk-test"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockConfigStore()
			for k, v := range tt.values {
				_ = store.Set(k, v)
			}

			err := NewSettingsService(store, nil).Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := NewSettingsService(newMockConfigStore(), nil)

	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}

func TestSettingsService_ValidateAIConfig(t *testing.T) {
	tests := []struct {
		name      string
		validator *mockAIValidator
		embedErr  bool
		llmErr    bool
	}{
		{"nil validator", nil, false, false},
		{"valid", &mockAIValidator{}, false, false},
		{"embedding fails", &mockAIValidator{embedErr: assertErr}, true, false},
		{"llm fails", &mockAIValidator{llmErr: assertErr}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(newMockConfigStore(), nil)
			if tt.validator != nil {
				service = NewSettingsService(newMockConfigStore(), tt.validator)
			}

			assert.Equal(t, tt.embedErr, service.ValidateEmbeddingConfig() != nil)
			assert.Equal(t, tt.llmErr, service.ValidateLLMConfig() != nil)
		})
	}
}

func TestSettingKeys_Sorted(t *testing.T) {
	keys := SettingKeys()

	assert.Contains(t, keys, "embedding.provider")
	assert.Contains(t, keys, "server.addr")
	assert.IsIncreasing(t, keys)
}
