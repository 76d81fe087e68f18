package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromPath(t *testing.T) {
	t.Run("creates default config on first run", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")

		cfg, err := LoadFromPath(path)
		require.NoError(t, err)

		assert.FileExists(t, path)
		assert.Equal(t, "ollama", cfg.LLM.DefaultProvider)
		assert.Contains(t, cfg.LLM.Providers, "openai")
		assert.Equal(t, "info", cfg.Logging.Level)
	})

	t.Run("reads existing config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		content := `
survey:
  file: /tmp/questions.txt
llm:
  default_provider: openai
  providers:
    openai:
      model: gpt-4o
      temperature: 0.5
logging:
  level: debug
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		cfg, err := LoadFromPath(path)
		require.NoError(t, err)

		assert.Equal(t, "/tmp/questions.txt", cfg.Survey.File)
		assert.Equal(t, "openai", cfg.LLM.DefaultProvider)
		assert.Equal(t, "gpt-4o", cfg.LLM.Providers["openai"].Model)
		assert.Equal(t, 0.5, cfg.LLM.Providers["openai"].Temperature)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("llm: [not: valid"), 0644))

		_, err := LoadFromPath(path)
		assert.Error(t, err)
	})
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)
	assert.NotEmpty(t, cfg.Survey.File)
	assert.NotEmpty(t, cfg.Results.DataDir)
	assert.False(t, cfg.Speech.Enabled)
}
