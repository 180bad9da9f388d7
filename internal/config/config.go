// Package config loads host configuration from config/config.<env>.yaml,
// with AVTOPOLOGY_ environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	DeviceKindDs          = "ds"
	DeviceKindMediaServer = "mediaserver"
)

type Config struct {
	ListenAddr string         `mapstructure:"listen_addr"`
	LogLevel   string         `mapstructure:"log_level"`
	CORSOrigin string         `mapstructure:"cors_origin"`
	PublicURL  string         `mapstructure:"public_url"`
	ScriptPath string         `mapstructure:"script_path"`
	Library    LibraryConfig  `mapstructure:"library"`
	Bridge     BridgeConfig   `mapstructure:"bridge"`
	Volume     VolumeConfig   `mapstructure:"volume"`
	Devices    []DeviceConfig `mapstructure:"devices"`
}

type LibraryConfig struct {
	Backend string `mapstructure:"backend"`
	DBPath  string `mapstructure:"db_path"`
	Fixture string `mapstructure:"fixture"`
}

type BridgeConfig struct {
	URL        string        `mapstructure:"url"`
	RateLimit  float64       `mapstructure:"rate_limit"`
	Burst      int           `mapstructure:"burst"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MinBackoff time.Duration `mapstructure:"min_backoff"`
	MaxBackoff time.Duration `mapstructure:"max_backoff"`
}

type VolumeConfig struct {
	Max            uint32 `mapstructure:"max"`
	Limit          uint32 `mapstructure:"limit"`
	Unity          uint32 `mapstructure:"unity"`
	Steps          uint32 `mapstructure:"steps"`
	MilliDbPerStep uint32 `mapstructure:"milli_db_per_step"`
}

// DeviceConfig declares one device. Remote devices are reached through the
// bridge; the others are mocks.
type DeviceConfig struct {
	Udn    string `mapstructure:"udn"`
	Room   string `mapstructure:"room"`
	Name   string `mapstructure:"name"`
	Kind   string `mapstructure:"kind"`
	Remote bool   `mapstructure:"remote"`
}

// Load reads the file selected by CONFIG_ENV (default "dev"). A missing
// file leaves the defaults in place.
func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)

	v.SetEnvPrefix("AVTOPOLOGY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", fileName, err)
		}
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen_addr", ":7654")
	v.SetDefault("log_level", "info")
	v.SetDefault("cors_origin", "")
	v.SetDefault("public_url", "http://localhost:7654")
	v.SetDefault("script_path", "")
	v.SetDefault("library.backend", "memory")
	v.SetDefault("library.db_path", "")
	v.SetDefault("library.fixture", "")
	v.SetDefault("bridge.url", "")
	v.SetDefault("bridge.rate_limit", 20)
	v.SetDefault("bridge.burst", 5)
	v.SetDefault("bridge.timeout", "10s")
	v.SetDefault("bridge.min_backoff", "1s")
	v.SetDefault("bridge.max_backoff", "30s")
	v.SetDefault("volume.max", 100)
	v.SetDefault("volume.limit", 100)
	v.SetDefault("volume.unity", 80)
	v.SetDefault("volume.steps", 100)
	v.SetDefault("volume.milli_db_per_step", 1024)
	v.SetDefault("devices", []map[string]any{
		{"udn": "mock-ds-1", "room": "Main Room", "name": "Mock DS", "kind": DeviceKindDs},
		{"udn": "mock-ms-1", "room": "Main Room", "name": "Mock Media Server", "kind": DeviceKindMediaServer},
	})
}

func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr is required")
	}
	switch c.Library.Backend {
	case "memory":
	case "sqlite":
		if c.Library.DBPath == "" {
			return fmt.Errorf("library.db_path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("library.backend %q: want memory or sqlite", c.Library.Backend)
	}
	if c.Volume.Limit > c.Volume.Max {
		return fmt.Errorf("volume.limit %d exceeds volume.max %d", c.Volume.Limit, c.Volume.Max)
	}

	seen := make(map[string]bool, len(c.Devices))
	for i, d := range c.Devices {
		if d.Udn == "" {
			return fmt.Errorf("devices[%d]: udn is required", i)
		}
		if seen[d.Udn] {
			return fmt.Errorf("devices[%d]: duplicate udn %q", i, d.Udn)
		}
		seen[d.Udn] = true
		if d.Kind != DeviceKindDs && d.Kind != DeviceKindMediaServer {
			return fmt.Errorf("devices[%d]: kind %q: want %s or %s", i, d.Kind, DeviceKindDs, DeviceKindMediaServer)
		}
		if d.Remote && c.Bridge.URL == "" {
			return fmt.Errorf("devices[%d]: remote device %q needs bridge.url", i, d.Udn)
		}
	}
	return nil
}
