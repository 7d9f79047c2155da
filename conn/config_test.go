package conn

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oy3o/serial"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
	assert.Zero(t, cfg.ReadTimeout)
	assert.Equal(t, serial.DefaultBufferSize, cfg.BufferSize)
	assert.Equal(t, serial.DefaultLimits(), cfg.Limits)
	assert.Equal(t, 5*time.Second, NextRetryDelay(cfg.Retry, 7))

	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig, "addr is required")
	cfg.Addr = "rc01:9090"
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conn.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr = " daq01:9020 "
read_timeout = "30s"
retry_delay = "500ms"
retry_multiplier = 2.0
max_retry_delay = "1m"
max_string_len = 1024
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "daq01:9020", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.WriteTimeout, "unset keys keep defaults")
	assert.Equal(t, 500*time.Millisecond, cfg.Retry.Delay)
	assert.Equal(t, 2.0, cfg.Retry.Multiplier)
	assert.Equal(t, time.Minute, cfg.Retry.MaxDelay)
	assert.Equal(t, 1024, cfg.Limits.MaxStringLen)
	assert.Equal(t, serial.DefaultLimits().MaxSeqLen, cfg.Limits.MaxSeqLen)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	cases := map[string]string{
		"BadDuration": "addr = \"x:1\"\ndial_timeout = \"soon\"",
		"Negative":    "addr = \"x:1\"\nread_timeout = \"-1s\"",
		"NoAddr":      "retry_delay = \"1s\"",
		"BadTOML":     "addr = ",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeConfig(data)
			assert.Error(t, err)
		})
	}

	_, err = DecodeConfig("addr = \"x:1\"\nbuffer_size = -4")
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = DecodeConfig("addr = \"x:1\"\nbuffer_size = 8")
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg, err := DecodeConfig("addr = \"x:1\"\nbuffer_size = 16\nmax_depth = 8")
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.BufferSize)
	assert.Equal(t, 8, cfg.Limits.MaxDepth)
}
