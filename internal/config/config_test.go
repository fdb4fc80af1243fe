package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const validConfig = `
ipc_addr: /var/run/noaa-watcher.sock
mock: true
users:
  stormchaser: "123456789"
watchers:
  - webhooks:
      - https://discord.example/api/webhooks/1/a
      - https://discord.example/api/webhooks/2/b
    formatter: atcf
    parser: atcf
    files:
      - 'aal\d{6}\.dat$'
  - webhooks:
      - https://discord.example/api/webhooks/1/a
    formatter: two
    files:
      - 'two\.xml$'
`

func TestLoadFile_Valid(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "/var/run/noaa-watcher.sock", cfg.IPCAddr)
	assert.True(t, cfg.Mock)
	assert.Equal(t, map[string]string{"stormchaser": "123456789"}, cfg.Users)

	require.Len(t, cfg.Watchers, 2)
	assert.Equal(t, "atcf", cfg.Watchers[0].Formatter)
	assert.Equal(t, "atcf", cfg.Watchers[0].Parser)
	assert.Empty(t, cfg.Watchers[1].Parser, "parser filter is optional")
	require.Len(t, cfg.Watchers[0].FilePatterns, 1)
	assert.True(t, cfg.Watchers[0].FilePatterns[0].MatchString("https://ftp.nhc.noaa.gov/atcf/gen/aal952024.dat"))

	// Defaults.
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 30*time.Second, cfg.ReconnectDelay)
	assert.Equal(t, 10*time.Second, cfg.WebhookTimeout)
}

func TestLoadFile_MissingIPCAddr(t *testing.T) {
	_, err := LoadFile(writeConfig(t, `
mock: false
watchers: []
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ipc_addr")
}

func TestLoadFile_UnknownFormatterRejected(t *testing.T) {
	_, err := LoadFile(writeConfig(t, `
ipc_addr: /tmp/w.sock
watchers:
  - webhooks: [https://discord.example/h]
    formatter: nope
    files: ['.*']
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown formatter "nope"`)
}

func TestLoadFile_InvalidPatternRejected(t *testing.T) {
	_, err := LoadFile(writeConfig(t, `
ipc_addr: /tmp/w.sock
watchers:
  - webhooks: [https://discord.example/h]
    formatter: atcf
    files: ['[']
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid file pattern")
}

func TestLoadFile_WatcherWithoutWebhooksRejected(t *testing.T) {
	_, err := LoadFile(writeConfig(t, `
ipc_addr: /tmp/w.sock
watchers:
  - formatter: atcf
    files: ['.*']
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhook")
}

func TestLoadFile_WatcherWithoutFilesRejected(t *testing.T) {
	_, err := LoadFile(writeConfig(t, `
ipc_addr: /tmp/w.sock
watchers:
  - webhooks: [https://discord.example/h]
    formatter: atcf
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file pattern")
}

func TestAllWebhooks_DeduplicatesAcrossWatchers(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://discord.example/api/webhooks/1/a",
		"https://discord.example/api/webhooks/2/b",
	}, cfg.AllWebhooks())
}

func TestEnvDuration_Invalid(t *testing.T) {
	t.Setenv("RECONNECT_DELAY", "soon")
	_, err := LoadFile(writeConfig(t, validConfig))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RECONNECT_DELAY")
}

func TestEnvDuration_Override(t *testing.T) {
	t.Setenv("RECONNECT_DELAY", "5s")
	cfg, err := LoadFile(writeConfig(t, validConfig))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.ReconnectDelay)
}
