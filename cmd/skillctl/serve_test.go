package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServeConfig(t *testing.T) {
	config := NewServeConfig()
	assert.Equal(t, "localhost", config.Host)
	assert.Equal(t, 8080, config.Port)
	assert.False(t, config.Watch)
}

func TestGetServeConfigFromFlags(t *testing.T) {
	cmd := serveCmd
	require.NoError(t, cmd.Flags().Set("host", "0.0.0.0"))
	require.NoError(t, cmd.Flags().Set("port", "9090"))
	require.NoError(t, cmd.Flags().Set("watch", "true"))
	defer func() {
		cmd.Flags().Set("host", "localhost")
		cmd.Flags().Set("port", "8080")
		cmd.Flags().Set("watch", "false")
	}()

	config := getServeConfigFromFlags(cmd)
	assert.Equal(t, "0.0.0.0", config.Host)
	assert.Equal(t, 9090, config.Port)
	assert.True(t, config.Watch)
}

func TestGetAddConfigFromFlags(t *testing.T) {
	cmd := addCmd
	require.NoError(t, cmd.Flags().Set("global", "true"))
	require.NoError(t, cmd.Flags().Set("force", "true"))
	defer func() {
		cmd.Flags().Set("global", "false")
		cmd.Flags().Set("force", "false")
	}()

	config := getAddConfigFromFlags(cmd)
	assert.True(t, config.Global)
	assert.True(t, config.Force)
	assert.False(t, config.Local)
}
