package client

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withConfigDir points the global config at dir for the duration of the test.
func withConfigDir(t *testing.T, dir string) string {
	t.Helper()
	configPath := filepath.Join(dir, "config.json")

	oldGetConfigDir := getConfigDirFunc
	oldGetConfigPath := getConfigPathFunc
	getConfigDirFunc = func() (string, error) { return dir, nil }
	getConfigPathFunc = func() (string, error) { return configPath, nil }
	t.Cleanup(func() {
		getConfigDirFunc = oldGetConfigDir
		getConfigPathFunc = oldGetConfigPath
	})
	return configPath
}

func TestGetConfigDir(t *testing.T) {
	dir, err := GetConfigDir()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(dir))
	assert.True(t, strings.HasSuffix(dir, "draftwise"))
}

func TestGetConfigPath(t *testing.T) {
	path, err := GetConfigPath()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))
	assert.True(t, strings.HasSuffix(path, "config.json"))
}

func TestLoadGlobalConfig_FileNotExists(t *testing.T) {
	withConfigDir(t, t.TempDir())

	config, err := LoadGlobalConfig()
	require.NoError(t, err)
	assert.Nil(t, config)
}

func TestLoadGlobalConfig_InvalidJSON(t *testing.T) {
	configPath := withConfigDir(t, t.TempDir())
	require.NoError(t, os.WriteFile(configPath, []byte("{invalid json}"), 0600))

	config, err := LoadGlobalConfig()
	assert.Nil(t, config)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestSaveGlobalConfig_CreatesDirectoryWithPermissions(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "draftwise")
	configPath := withConfigDir(t, configDir)

	require.NoError(t, SaveGlobalConfig(&GlobalConfig{APIURL: "http://localhost:8080"}))

	assert.DirExists(t, configDir)
	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestSaveGlobalConfig_NilConfig(t *testing.T) {
	err := SaveGlobalConfig(nil)
	assert.ErrorContains(t, err, "config cannot be nil")
}

func TestDeleteGlobalConfig(t *testing.T) {
	configPath := withConfigDir(t, t.TempDir())
	require.NoError(t, SaveGlobalConfig(&GlobalConfig{ClientID: 3}))

	require.NoError(t, DeleteGlobalConfig())
	assert.NoFileExists(t, configPath)

	// Deleting again is not an error.
	assert.NoError(t, DeleteGlobalConfig())
}

func TestRoundTrip_SaveAndLoad(t *testing.T) {
	withConfigDir(t, t.TempDir())

	original := &GlobalConfig{APIURL: "http://kb.internal:8080", ClientID: 42}
	require.NoError(t, SaveGlobalConfig(original))

	loaded, err := LoadGlobalConfig()
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestResolveClientID(t *testing.T) {
	withConfigDir(t, t.TempDir())

	newCmd := func() *cobra.Command {
		cmd := &cobra.Command{Use: "test"}
		cmd.Flags().Int64("client", 0, "")
		return cmd
	}

	t.Run("no flag and no config", func(t *testing.T) {
		id, err := resolveClientID(newCmd())
		require.NoError(t, err)
		assert.Zero(t, id)
	})

	require.NoError(t, SaveGlobalConfig(&GlobalConfig{ClientID: 7}))

	t.Run("config default", func(t *testing.T) {
		id, err := resolveClientID(newCmd())
		require.NoError(t, err)
		assert.Equal(t, int64(7), id)
	})

	t.Run("flag wins", func(t *testing.T) {
		cmd := newCmd()
		require.NoError(t, cmd.Flags().Set("client", "9"))
		id, err := resolveClientID(cmd)
		require.NoError(t, err)
		assert.Equal(t, int64(9), id)
	})
}

func TestConfigCmd_SetURLAndClient(t *testing.T) {
	withConfigDir(t, t.TempDir())

	cmd := ConfigCmd()
	cmd.SetArgs([]string{"set-url", "http://kb.example:9000"})
	require.NoError(t, cmd.Execute())

	cmd = ConfigCmd()
	cmd.SetArgs([]string{"set-client", "5"})
	require.NoError(t, cmd.Execute())

	loaded, err := LoadGlobalConfig()
	require.NoError(t, err)
	assert.Equal(t, &GlobalConfig{APIURL: "http://kb.example:9000", ClientID: 5}, loaded)

	cmd = ConfigCmd()
	cmd.SetArgs([]string{"set-client", "abc"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	assert.Error(t, cmd.Execute())
}
