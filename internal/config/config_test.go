package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "42.IRC", cfg.ServerName)
	assert.Equal(t, 64*1024, cfg.SendQueueBound)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "ircd-*.yaml")
	require.NoError(t, err)
	_, err = f.WriteString("server_name: test.irc\nmotd: hello\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	cfg, err := Load(f.Name())
	require.NoError(t, err)
	assert.Equal(t, "test.irc", cfg.ServerName)
	assert.Equal(t, "hello", cfg.MOTD)
	assert.Equal(t, "42NET", cfg.Network, "unset fields keep their default")
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("IRCD_SERVER_NAME", "env.irc")
	t.Setenv("IRCD_SEND_QUEUE_BOUND", "2048")

	f, err := os.CreateTemp(t.TempDir(), "ircd-*.yaml")
	require.NoError(t, err)
	_, err = f.WriteString("server_name: file.irc\nsend_queue_bound: 1024\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	cfg, err := Load(f.Name())
	require.NoError(t, err)
	assert.Equal(t, "env.irc", cfg.ServerName)
	assert.Equal(t, 2048, cfg.SendQueueBound)
}

func TestEnvIgnoresInvalidSendQueueBound(t *testing.T) {
	t.Setenv("IRCD_SEND_QUEUE_BOUND", "not-a-number")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 64*1024, cfg.SendQueueBound)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/to/config.yaml")
	assert.Error(t, err)
}
