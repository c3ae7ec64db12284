package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
url = "cloud.example.com"
username = "alice"
password = "secret"
default_list = "/cal/inbox/"
target_lists = ["Work", "Home"]
read_only = true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "cloud.example.com", cfg.URL)
	assert.Equal(t, "alice", cfg.Username)
	assert.Equal(t, "/cal/inbox/", cfg.DefaultListUID)
	assert.Equal(t, []string{"Work", "Home"}, cfg.TargetLists)
	assert.True(t, cfg.ReadOnly)
	assert.True(t, cfg.Nextcloud, "nextcloud mode stays on by default")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
url = "from-file.example.com"
username = "alice"
password = "secret"
`)
	t.Setenv("CALDAV_URL", "from-env.example.com")
	t.Setenv("TASKSDAV_DEFAULT_LIST", "/cal/env/")
	t.Setenv("TASKSDAV_TARGET_LISTS", "A, B,")
	t.Setenv("TASKSDAV_DEBUG", "1")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env.example.com", cfg.URL)
	assert.Equal(t, "/cal/env/", cfg.DefaultListUID)
	assert.Equal(t, []string{"A", "B"}, cfg.TargetLists)
	assert.True(t, cfg.Debug)
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Config{URL: "u", Username: "n", Password: "p"}
	assert.NoError(t, cfg.Validate())

	cfg.Password = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password")
}
