// Package config loads the daemon configuration from YAML with environment
// overrides. Every field has a default so an empty file, or no file at all,
// yields a runnable in-memory deployment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings such as
// "5m" or "1h30m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std converts to the standard library type.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Database drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Config is the full daemon configuration.
type Config struct {
	Server   Server   `yaml:"server"`
	Database Database `yaml:"database"`
	Redis    Redis    `yaml:"redis"`
	Chain    Chain    `yaml:"chain"`
	Market   Market   `yaml:"market"`
}

// Server configures the HTTP listener.
type Server struct {
	ListenAddr string    `yaml:"listen_addr"`
	RateLimit  RateLimit `yaml:"rate_limit"`
}

// RateLimit is the per-client request budget.
type RateLimit struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

// Database selects the persistence backend.
type Database struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Redis configures the optional quote cache. An empty Addr disables it.
type Redis struct {
	Addr     string   `yaml:"addr"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
	TTL      Duration `yaml:"ttl"`
}

// Chain configures the on-chain client. An empty RPCURL selects the
// simulator.
type Chain struct {
	RPCURL string `yaml:"rpc_url"`
}

// Market configures the external quote source. An empty RateURL keeps the
// built-in default.
type Market struct {
	RateURL string `yaml:"rate_url"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: Server{
			ListenAddr: ":8080",
			RateLimit:  RateLimit{PerSecond: 50, Burst: 100},
		},
		Database: Database{Driver: DriverMemory},
		Redis:    Redis{TTL: Duration(5 * time.Minute)},
	}
}

// Load reads the configuration file at path, fills in defaults and applies
// environment overrides. A missing file is not an error; the defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Fall through to defaults.
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Database.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database driver %q requires a dsn", DriverPostgres)
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server listen_addr is required")
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.ListenAddr, "FINAGENT_LISTEN_ADDR")
	setString(&cfg.Database.Driver, "FINAGENT_DB_DRIVER")
	setString(&cfg.Database.DSN, "FINAGENT_DB_DSN")
	setString(&cfg.Redis.Addr, "FINAGENT_REDIS_ADDR")
	setString(&cfg.Redis.Password, "FINAGENT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "FINAGENT_REDIS_DB")
	setString(&cfg.Chain.RPCURL, "FINAGENT_CHAIN_RPC_URL")
	setString(&cfg.Market.RateURL, "FINAGENT_MARKET_RATE_URL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}
