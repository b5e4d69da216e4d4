package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "https://api.cloudinary.com/v1_1", cfg.StorageBaseURL)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://localhost/vtube")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORAGE_CLOUD_NAME", "vtube")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "postgres://localhost/vtube", cfg.DatabaseURL)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, "vtube", cfg.StorageCloudName)
}

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "single origin",
			input:    "https://vtube.example.com",
			expected: []string{"https://vtube.example.com"},
		},
		{
			name:     "multiple origins with spaces",
			input:    "https://a.example.com, https://b.example.com",
			expected: []string{"https://a.example.com", "https://b.example.com"},
		},
		{
			name:     "empty string",
			input:    "",
			expected: []string{},
		},
		{
			name:     "trailing comma",
			input:    "https://a.example.com,",
			expected: []string{"https://a.example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseOrigins(tt.input))
		})
	}
}
