package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tasksync/pkg/constants"
	"github.com/agentstation/tasksync/pkg/errors"
)

// TestLoadConfig verifies basic config loading.
func TestLoadConfig(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)
	require.NotNil(t, config)

	assert.Equal(t, constants.DefaultAPIURL, config.APIURL)
	assert.Equal(t, constants.DefaultServerAddr, config.ServerAddr)
	assert.Equal(t, constants.DefaultCredentialsPath, config.CredentialsFile)
	assert.Equal(t, "auto", config.LogFormat)
	assert.Equal(t, "stderr", config.LogOutput)
}

// TestConfig_EnvironmentVariables verifies TASKSYNC_* loading.
func TestConfig_EnvironmentVariables(t *testing.T) {
	t.Setenv("TASKSYNC_API_URL", "https://tasks.example.com/api")
	t.Setenv("TASKSYNC_TOKEN", "secret")
	t.Setenv("TASKSYNC_USER_ID", "u-1")
	t.Setenv("TASKSYNC_PROJECT", "p-1")
	t.Setenv("TASKSYNC_VERBOSE", "true")
	t.Setenv("TASKSYNC_FORMAT", "json")
	t.Setenv("TASKSYNC_LOG_LEVEL", "debug")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "https://tasks.example.com/api", config.APIURL)
	assert.Equal(t, "secret", config.Token)
	assert.Equal(t, "u-1", config.UserID)
	assert.Equal(t, "p-1", config.Project)
	assert.True(t, config.Verbose)
	assert.Equal(t, "json", config.Format)
	assert.Equal(t, "debug", config.LogLevel)
}

// TestConfig_File verifies an explicit config file is read.
func TestConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasksync.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: http://10.0.0.1:8080/api\nproject: inbox\nserver_addr: 0.0.0.0:9000\n"), 0o600))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.1:8080/api", config.APIURL)
	assert.Equal(t, "inbox", config.Project)
	assert.Equal(t, "0.0.0.0:9000", config.ServerAddr)
	assert.Equal(t, path, config.ConfigFile)

	t.Run("env beats file", func(t *testing.T) {
		t.Setenv("TASKSYNC_PROJECT", "work")
		config, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "work", config.Project)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		var cerr *errors.ConfigError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "config file", cerr.Component)
	})
}

// TestConfig_UpdateFromFlags verifies flag values take precedence.
func TestConfig_UpdateFromFlags(t *testing.T) {
	config := &Config{APIURL: "http://a/api", Format: "table", Token: "file-token"}

	config.UpdateFromFlags(Flags{Verbose: true, Format: "yaml", APIURL: "http://b/api"})
	assert.True(t, config.Verbose)
	assert.Equal(t, "yaml", config.Format)
	assert.Equal(t, "http://b/api", config.APIURL)
	assert.Equal(t, "file-token", config.Token, "empty flag keeps loaded value")

	config.UpdateFromFlags(Flags{Token: "flag-token", LogLevel: "error"})
	assert.Equal(t, "flag-token", config.Token)
	assert.Equal(t, "error", config.LogLevel)
	assert.True(t, config.Verbose, "unset bool flag keeps loaded value")
}
