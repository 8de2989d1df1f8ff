package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

const (
	// Section is the top-level key read from configuration files.
	Section = "redisCacheClient"
	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "CLUSTERCACHE_"
	// FileEnv names a configuration file for Load to read instead of the
	// environment.
	FileEnv = EnvPrefix + "CONFIG"
)

// Load reads the file named by $CLUSTERCACHE_CONFIG when set, otherwise the
// CLUSTERCACHE_* environment variables.
func Load() (Config, error) {
	if path := os.Getenv(FileEnv); path != "" {
		return FromFile(path)
	}
	return FromEnv(EnvPrefix)
}

// FromFile reads the Section of a yaml/json/toml file. The format follows
// the file extension.
func FromFile(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if errors.As(err, &nf) || errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: %s", ErrMissingConfiguration, path)
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	sub := v.Sub(Section)
	if sub == nil {
		return Config{}, fmt.Errorf("%w: no %q section in %s", ErrMissingConfiguration, Section, path)
	}
	var cfg Config
	if err := sub.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return finish(cfg)
}

// envConfig is the flat environment form of Config. Hosts stay strings
// here and are parsed by Host.UnmarshalText.
type envConfig struct {
	Hosts              []string    `env:"HOSTS" envSeparator:","`
	Database           int         `env:"DATABASE"`
	KeyPrefix          string      `env:"KEY_PREFIX"`
	SSL                bool        `env:"SSL"`
	AllowAdmin         bool        `env:"ALLOW_ADMIN"`
	AbortOnConnectFail bool        `env:"ABORT_ON_CONNECT_FAIL"`
	ConnectTimeoutMs   int         `env:"CONNECT_TIMEOUT_MS" envDefault:"5000"`
	Password           string      `env:"PASSWORD"`
	SerializerName     string      `env:"SERIALIZER" envDefault:"json"`
	Enumeration        Enumeration `envPrefix:"ENUMERATION_"`
	NearCache          NearCache   `envPrefix:"NEAR_CACHE_"`
}

// FromEnv reads prefixed environment variables, e.g. with prefix "CACHE_":
// CACHE_HOSTS=10.0.0.1:6379,10.0.0.2:6379 CACHE_ENUMERATION_MODE=Single.
func FromEnv(prefix string) (Config, error) {
	var ec envConfig
	if err := env.ParseWithOptions(&ec, env.Options{Prefix: prefix}); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	cfg := Config{
		Database:           ec.Database,
		KeyPrefix:          ec.KeyPrefix,
		SSL:                ec.SSL,
		AllowAdmin:         ec.AllowAdmin,
		AbortOnConnectFail: ec.AbortOnConnectFail,
		ConnectTimeoutMs:   ec.ConnectTimeoutMs,
		Password:           ec.Password,
		SerializerName:     ec.SerializerName,
		Enumeration:        ec.Enumeration,
		NearCache:          ec.NearCache,
	}
	for _, raw := range ec.Hosts {
		if raw == "" {
			continue
		}
		var h Host
		if err := h.UnmarshalText([]byte(raw)); err != nil {
			return Config{}, err
		}
		cfg.Hosts = append(cfg.Hosts, h)
	}
	return finish(cfg)
}

func finish(cfg Config) (Config, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
