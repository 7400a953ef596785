package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "openai", cfg.LLM.DefaultProvider)
	assert.Equal(t, "text-embedding-3-small", cfg.LLM.EmbeddingModel)
	assert.Equal(t, 3, cfg.LLM.MaxRetries)
	assert.Equal(t, 5, cfg.Retrieval.MaxResults)
	assert.Equal(t, 5, cfg.Retrieval.KeywordFallbackBelow)
	assert.InDelta(t, 0.15, cfg.Retrieval.KeywordMinScore, 1e-9)
	assert.Equal(t, 2800, cfg.Retrieval.CharsPerPage)
	assert.InDelta(t, 5.0, cfg.Drive.RequestsPerSec, 1e-9)
	assert.Equal(t, "documents", cfg.Storage.Bucket)
	assert.Equal(t, "migrations", cfg.Database.MigrationsPath)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("RETRIEVAL_MAX_RESULTS", "10")
	t.Setenv("ANSWER_CHARS_PER_PAGE", "3000")
	t.Setenv("DRIVE_REQUESTS_PER_SEC", "2.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Retrieval.MaxResults)
	assert.Equal(t, 3000, cfg.Retrieval.CharsPerPage)
	assert.InDelta(t, 2.5, cfg.Drive.RequestsPerSec, 1e-9)
}

func TestLoadInvalidInt(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_PORT")
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "JWT_SECRET")

	cfg.Database.URL = "postgres://localhost/app"
	cfg.Auth.JWTSecret = "secret"
	assert.NoError(t, cfg.Validate())
}

func TestAddr(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Host: "127.0.0.1", Port: 8081}}
	assert.Equal(t, "127.0.0.1:8081", cfg.Addr())
}
