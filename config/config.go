// Package config holds the plain settings value clustercache is built from,
// plus loaders that fill it from a file (viper) or the environment
// (caarlos0/env). The client never reads files or the environment itself.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/unkn0wn-root/clustercache/codec"
	"github.com/unkn0wn-root/clustercache/topology"
)

// ErrMissingConfiguration means no settings could be located at all.
var ErrMissingConfiguration = errors.New("config: missing clustercache configuration")

const (
	DefaultConnectTimeoutMs = 5000
	DefaultSerializer       = "json"
	DefaultNearCacheTTL     = 30 * time.Second
)

type Host struct {
	Host string `mapstructure:"host" validate:"required"`
	Port int    `mapstructure:"cachePort" validate:"min=1,max=65535"`
}

// UnmarshalText parses "host:port".
func (h *Host) UnmarshalText(b []byte) error {
	host, port, err := net.SplitHostPort(strings.TrimSpace(string(b)))
	if err != nil {
		return fmt.Errorf("config: host %q: %w", b, err)
	}
	p, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("config: host %q: port must be a number", b)
	}
	h.Host, h.Port = host, p
	return nil
}

func (h Host) String() string { return net.JoinHostPort(h.Host, strconv.Itoa(h.Port)) }

// Enumeration is the fan-out topology policy in its configured string form.
type Enumeration struct {
	Mode              string `mapstructure:"mode" env:"MODE"`
	TargetRole        string `mapstructure:"targetRole" env:"TARGET_ROLE"`
	UnreachableAction string `mapstructure:"unreachableServerAction" env:"UNREACHABLE_ACTION"`
}

func (e Enumeration) Policy() (topology.Policy, error) {
	return topology.Parse(e.Mode, e.TargetRole, e.UnreachableAction)
}

// NearCache configures the optional local cache in front of Get.
// An empty Kind disables it.
type NearCache struct {
	Kind     string        `mapstructure:"kind" env:"KIND" validate:"omitempty,oneof=ristretto bigcache"`
	TTL      time.Duration `mapstructure:"ttl" env:"TTL"`
	MaxBytes int64         `mapstructure:"maxBytes" env:"MAX_BYTES" validate:"min=0"`
}

type Config struct {
	Hosts              []Host      `mapstructure:"hosts" validate:"required,min=1,dive"`
	Database           int         `mapstructure:"database" validate:"min=0"`
	KeyPrefix          string      `mapstructure:"keyPrefix"`
	SSL                bool        `mapstructure:"ssl"`
	AllowAdmin         bool        `mapstructure:"allowAdmin"`
	AbortOnConnectFail bool        `mapstructure:"abortOnConnectFail"`
	ConnectTimeoutMs   int         `mapstructure:"connectTimeout" validate:"min=0"`
	Password           string      `mapstructure:"password"`
	SerializerName     string      `mapstructure:"serializer"`
	Enumeration        Enumeration `mapstructure:"serverEnumerationStrategy"`
	NearCache          NearCache   `mapstructure:"nearCache"`
}

// Defaults returns a Config with every optional field at its default.
func Defaults() Config {
	var c Config
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills zero-valued optional fields.
func (c *Config) ApplyDefaults() {
	c.ConnectTimeoutMs = coalesce(c.ConnectTimeoutMs, DefaultConnectTimeoutMs)
	c.SerializerName = coalesce(c.SerializerName, DefaultSerializer)
	c.Enumeration.Mode = coalesce(c.Enumeration.Mode, topology.ModeAll.String())
	c.Enumeration.TargetRole = coalesce(c.Enumeration.TargetRole, topology.RoleAny.String())
	c.Enumeration.UnreachableAction = coalesce(c.Enumeration.UnreachableAction, topology.UnreachableThrow.String())
	if c.NearCache.Kind != "" {
		c.NearCache.TTL = coalesce(c.NearCache.TTL, DefaultNearCacheTTL)
		c.NearCache.MaxBytes = coalesce(c.NearCache.MaxBytes, 64<<20)
	}
}

var validate = validator.New()

// Validate checks field constraints, the topology names and the serializer
// name. A Config with no hosts is reported as ErrMissingConfiguration.
func (c Config) Validate() error {
	if len(c.Hosts) == 0 {
		return ErrMissingConfiguration
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := c.Enumeration.Policy(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := codec.Lookup(c.SerializerName); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (c Config) Addrs() []string {
	out := make([]string, len(c.Hosts))
	for i, h := range c.Hosts {
		out[i] = h.String()
	}
	return out
}

func (c Config) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutMs) * time.Millisecond
}

func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
