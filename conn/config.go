package conn

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/oy3o/serial"
)

var ErrInvalidConfig = errors.New("conn: invalid configuration")

// RetryConfig defines reconnect pacing. With Multiplier <= 1 the delay is fixed.
type RetryConfig struct {
	Delay       time.Duration
	Multiplier  float64
	MaxDelay    time.Duration
	MaxAttempts int // 0 retries forever
}

// Config defines transport defaults for one peer.
type Config struct {
	Addr         string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration // 0 blocks until data or close
	WriteTimeout time.Duration
	BufferSize   int           // 0 means serial.DefaultBufferSize
	Limits       serial.Limits // applied as given; zero fields are unbounded
	Retry        RetryConfig
}

// DefaultConfig returns the control-room defaults: no read timeout, since a
// log or state stream may stay idle for hours, and a fixed 5s reconnect delay.
func DefaultConfig() Config {
	return Config{
		DialTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		BufferSize:   serial.DefaultBufferSize,
		Limits:       serial.DefaultLimits(),
		Retry: RetryConfig{
			Delay:      5 * time.Second,
			Multiplier: 1,
		},
	}
}

func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr is required", ErrInvalidConfig)
	case c.DialTimeout < 0, c.ReadTimeout < 0, c.WriteTimeout < 0:
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidConfig)
	case c.BufferSize < 0:
		return fmt.Errorf("%w: buffer_size must not be negative", ErrInvalidConfig)
	case c.BufferSize > 0 && c.BufferSize < serial.MinBufferSize:
		return fmt.Errorf("%w: buffer_size must be 0 or at least %d", ErrInvalidConfig, serial.MinBufferSize)
	case c.Retry.Delay < 0, c.Retry.MaxDelay < 0:
		return fmt.Errorf("%w: retry delays must not be negative", ErrInvalidConfig)
	case c.Retry.MaxAttempts < 0:
		return fmt.Errorf("%w: max_attempts must not be negative", ErrInvalidConfig)
	}
	return nil
}

type fileConfig struct {
	Addr          string  `toml:"addr"`
	DialTimeout   string  `toml:"dial_timeout"`
	ReadTimeout   string  `toml:"read_timeout"`
	WriteTimeout  string  `toml:"write_timeout"`
	BufferSize    int     `toml:"buffer_size"`
	MaxStringLen  int     `toml:"max_string_len"`
	MaxSeqLen     int     `toml:"max_seq_len"`
	MaxDepth      int     `toml:"max_depth"`
	RetryDelay    string  `toml:"retry_delay"`
	RetryFactor   float64 `toml:"retry_multiplier"`
	MaxRetryDelay string  `toml:"max_retry_delay"`
	MaxAttempts   int     `toml:"max_attempts"`
}

// LoadConfig reads a TOML file on top of DefaultConfig. Keys left out of the
// file keep their defaults.
func LoadConfig(path string) (Config, error) {
	return LoadConfigOver(path, DefaultConfig())
}

// LoadConfigOver is LoadConfig with base in place of DefaultConfig, for tools
// whose own defaults differ.
func LoadConfigOver(path string, base Config) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load conn config: %w", err)
	}
	cfg, err := raw.apply(meta, base)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DecodeConfig is LoadConfig for TOML held in memory.
func DecodeConfig(data string) (Config, error) {
	var raw fileConfig
	meta, err := toml.Decode(data, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("decode conn config: %w", err)
	}
	cfg, err := raw.apply(meta, DefaultConfig())
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (raw fileConfig) apply(meta toml.MetaData, cfg Config) (Config, error) {
	if meta.IsDefined("addr") {
		cfg.Addr = strings.TrimSpace(raw.Addr)
	}
	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"dial_timeout", raw.DialTimeout, &cfg.DialTimeout},
		{"read_timeout", raw.ReadTimeout, &cfg.ReadTimeout},
		{"write_timeout", raw.WriteTimeout, &cfg.WriteTimeout},
		{"retry_delay", raw.RetryDelay, &cfg.Retry.Delay},
		{"max_retry_delay", raw.MaxRetryDelay, &cfg.Retry.MaxDelay},
	}
	for _, d := range durations {
		if !meta.IsDefined(d.key) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}
	if meta.IsDefined("buffer_size") {
		cfg.BufferSize = raw.BufferSize
	}
	if meta.IsDefined("max_string_len") {
		cfg.Limits.MaxStringLen = raw.MaxStringLen
	}
	if meta.IsDefined("max_seq_len") {
		cfg.Limits.MaxSeqLen = raw.MaxSeqLen
	}
	if meta.IsDefined("max_depth") {
		cfg.Limits.MaxDepth = raw.MaxDepth
	}
	if meta.IsDefined("retry_multiplier") {
		cfg.Retry.Multiplier = raw.RetryFactor
	}
	if meta.IsDefined("max_attempts") {
		cfg.Retry.MaxAttempts = raw.MaxAttempts
	}
	return cfg, nil
}
