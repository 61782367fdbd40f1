package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	// Collect subcommand names.
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	// Verify expected subcommands are registered.
	expected := []string{"towers", "tower", "refresh", "cache", "parse", "serve", "config"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "towerdash", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestTowersCommand_Flags(t *testing.T) {
	flag := towersCmd.Flags().Lookup("skip-cache")
	require.NotNil(t, flag, "towers command should have --skip-cache flag")
	assert.Equal(t, "false", flag.DefValue)

	require.NotNil(t, towersCmd.Flags().Lookup("json"))
}

func TestTowerCommand_RequiresID(t *testing.T) {
	assert.Error(t, towerCmd.Args(towerCmd, nil))
	assert.NoError(t, towerCmd.Args(towerCmd, []string{"tower-1"}))
}

func TestCacheCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range cacheCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["clear"])
	assert.True(t, names["show"])
}

func TestParseCommand_Flags(t *testing.T) {
	require.NotNil(t, parseCmd.Flags().Lookup("file"))
	require.NotNil(t, parseCmd.Flags().Lookup("sheet"))
}

func TestParseCommand_RequiresFile(t *testing.T) {
	require.NoError(t, parseCmd.Flags().Set("file", ""))
	err := parseCmd.PreRunE(parseCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--file is required")
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestConfigCommand_HasShow(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"config", "show"})
	require.NoError(t, err)
	assert.Equal(t, "show", cmd.Name())
}
