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
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFileDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":7654", cfg.ListenAddr)
	assert.Equal(t, "memory", cfg.Library.Backend)
	assert.Equal(t, uint32(100), cfg.Volume.Limit)
	assert.Equal(t, time.Second, cfg.Bridge.MinBackoff)
	assert.Equal(t, 10*time.Second, cfg.Bridge.Timeout)
	require.Len(t, cfg.Devices, 2)
	assert.Equal(t, DeviceKindMediaServer, cfg.Devices[1].Kind)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
listen_addr: ":9000"
library:
  backend: sqlite
  db_path: /tmp/library.db
bridge:
  url: http://bridge.local:8000
  max_backoff: 5s
  timeout: 2s
volume:
  limit: 60
devices:
  - udn: remote-1
    kind: ds
    remote: true
`)
	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "sqlite", cfg.Library.Backend)
	assert.Equal(t, uint32(60), cfg.Volume.Limit)
	assert.Equal(t, uint32(100), cfg.Volume.Max)
	assert.Equal(t, 5*time.Second, cfg.Bridge.MaxBackoff)
	assert.Equal(t, 2*time.Second, cfg.Bridge.Timeout)
	assert.Equal(t, []DeviceConfig{{Udn: "remote-1", Kind: DeviceKindDs, Remote: true}}, cfg.Devices)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("AVTOPOLOGY_LISTEN_ADDR", ":8123")
	t.Setenv("AVTOPOLOGY_VOLUME_LIMIT", "42")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8123", cfg.ListenAddr)
	assert.Equal(t, uint32(42), cfg.Volume.Limit)
}

func TestValidate(t *testing.T) {
	for name, body := range map[string]string{
		"unknown backend":  "library:\n  backend: tape\n",
		"sqlite no path":   "library:\n  backend: sqlite\n",
		"limit over max":   "volume:\n  max: 50\n  limit: 60\n",
		"duplicate udn":    "devices:\n  - {udn: a, kind: ds}\n  - {udn: a, kind: ds}\n",
		"bad kind":         "devices:\n  - {udn: a, kind: toaster}\n",
		"remote no bridge": "devices:\n  - {udn: a, kind: ds, remote: true}\n",
		"missing udn":      "devices:\n  - {kind: ds}\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMalformed(t *testing.T) {
	_, err := LoadFile(writeConfig(t, "listen_addr: [unclosed\n"))
	assert.Error(t, err)
}
