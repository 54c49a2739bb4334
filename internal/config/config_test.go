package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	config, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "sqlite3", config.Database.Dialect)
	assert.Equal(t, 0.1, config.RL.Alpha)
	assert.Equal(t, 0.1, config.RL.Epsilon)
	assert.Equal(t, "rl_state.json", config.RL.StatePath)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9000
database:
  dialect: postgres
  dsn: "host=localhost dbname=tiffin sslmode=disable"
rl:
  epsilon: 0.2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, config.Server.Port)
	assert.Equal(t, "postgres", config.Database.Dialect)
	assert.Equal(t, 0.2, config.RL.Epsilon)

	// Untouched sections keep their defaults.
	assert.Equal(t, 0.1, config.RL.Alpha)
	assert.Equal(t, 9090, config.Metrics.Port)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestAPIKeyFromEnvironment(t *testing.T) {
	t.Setenv("LLM_API_KEY", "sk-test")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  provider: openai\n"), 0o644))

	config, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", config.LLM.APIKey)
}
