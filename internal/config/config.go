// Package config loads tasklist settings from defaults, an optional YAML
// file, TASKLIST_* environment variables and command-line flags.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable key.
const EnvPrefix = "TASKLIST"

// Config is the complete application configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Store  StoreConfig  `mapstructure:"store" yaml:"store"`
	Client ClientConfig `mapstructure:"client" yaml:"client"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
	// Prefixes lists every path the task routes are mounted under.
	Prefixes       []string `mapstructure:"prefixes" yaml:"prefixes"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// StoreConfig selects and configures the task store backend.
type StoreConfig struct {
	Driver          string `mapstructure:"driver" yaml:"driver"` // "memory", "sqlite" or "mongo"
	IDScheme        string `mapstructure:"id_scheme" yaml:"id_scheme"`
	SQLitePath      string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	MongoURI        string `mapstructure:"mongo_uri" yaml:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database" yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`
}

// ClientConfig configures the command-line front-end.
type ClientConfig struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			Prefixes:       []string{"/api/tasks", "/tasks"},
			AllowedOrigins: []string{"*"},
		},
		Store: StoreConfig{
			Driver:          "sqlite",
			IDScheme:        "sequence",
			SQLitePath:      "./data/tasklist.db",
			MongoDatabase:   "tasklist",
			MongoCollection: "tasks",
		},
		Client: ClientConfig{
			BaseURL: "http://localhost:8080/api/tasks",
			Timeout: 10 * time.Second,
		},
	}
}

// keys lists every setting so that environment variables are honoured
// even when no config file mentions them.
var keys = []string{
	"server.addr",
	"server.prefixes",
	"server.allowed_origins",
	"store.driver",
	"store.id_scheme",
	"store.sqlite_path",
	"store.mongo_uri",
	"store.mongo_database",
	"store.mongo_collection",
	"client.base_url",
	"client.timeout",
}

// New returns a viper instance seeded with defaults and environment
// bindings. Callers may bind flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	def := DefaultConfig()
	v.SetDefault("server.addr", def.Server.Addr)
	v.SetDefault("server.prefixes", def.Server.Prefixes)
	v.SetDefault("server.allowed_origins", def.Server.AllowedOrigins)
	v.SetDefault("store.driver", def.Store.Driver)
	v.SetDefault("store.id_scheme", def.Store.IDScheme)
	v.SetDefault("store.sqlite_path", def.Store.SQLitePath)
	v.SetDefault("store.mongo_uri", def.Store.MongoURI)
	v.SetDefault("store.mongo_database", def.Store.MongoDatabase)
	v.SetDefault("store.mongo_collection", def.Store.MongoCollection)
	v.SetDefault("client.base_url", def.Client.BaseURL)
	v.SetDefault("client.timeout", def.Client.Timeout)

	for _, key := range keys {
		// BindEnv only fails when given no key
		_ = v.BindEnv(key)
	}
	return v
}

// Load reads the optional config file at path (skipped when empty) and
// unmarshals the merged settings.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	// PORT is what most hosting platforms inject
	if port := os.Getenv("PORT"); port != "" && os.Getenv(EnvPrefix+"_SERVER_ADDR") == "" && !v.InConfig("server.addr") {
		cfg.Server.Addr = ":" + port
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "memory", "sqlite", "mongo":
	default:
		return fmt.Errorf("store.driver must be memory, sqlite or mongo, got %q", c.Store.Driver)
	}
	if len(c.Server.Prefixes) == 0 {
		return fmt.Errorf("server.prefixes must name at least one path")
	}
	seen := make(map[string]bool, len(c.Server.Prefixes))
	for _, p := range c.Server.Prefixes {
		if !strings.HasPrefix(p, "/") || (len(p) > 1 && strings.HasSuffix(p, "/")) {
			return fmt.Errorf("server.prefixes entry %q must start with / and not end with /", p)
		}
		if seen[p] {
			return fmt.Errorf("server.prefixes entry %q is listed twice", p)
		}
		seen[p] = true
	}
	return nil
}

// WriteDefault writes the default configuration as YAML to path.
func WriteDefault(path string) error {
	content, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}
	header := "# tasklist configuration\n# Every key can be overridden with TASKLIST_<SECTION>_<KEY>.\n"
	return os.WriteFile(path, append([]byte(header), content...), 0644)
}
