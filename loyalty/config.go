package loyalty

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
	"github.com/disgoorg/loyalty-engine/loyalty/config"
	"github.com/disgoorg/loyalty-engine/loyalty/database"
	"github.com/pelletier/go-toml/v2"
)

const EnvPrefix = "LOYALTY_"

// LoadConfig reads the TOML file at path over the defaults and then applies
// LOYALTY_* environment overrides. An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open config: %w", err)
		}
		defer file.Close()

		if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log     LogConfig         `toml:"log" envPrefix:"LOG_"`
	DB      database.DBConfig `toml:"db" envPrefix:"DB_"`
	HTTP    HTTPConfig        `toml:"http" envPrefix:"HTTP_"`
	Engine  EngineConfig      `toml:"engine" envPrefix:"ENGINE_"`
	Webhook WebhookConfig     `toml:"webhook" envPrefix:"WEBHOOK_"`
	Catalog CatalogConfig     `toml:"catalog" envPrefix:"CATALOG_"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level" env:"LEVEL"`
	Format    string     `toml:"format" env:"FORMAT"`
	AddSource bool       `toml:"add_source" env:"ADD_SOURCE"`
	Color     bool       `toml:"color" env:"COLOR"`
}

type HTTPConfig struct {
	Addr           string   `toml:"addr" env:"ADDR"`
	AllowOrigins   string   `toml:"allow_origins" env:"ALLOW_ORIGINS"`
	BodyLimit      int      `toml:"body_limit" env:"BODY_LIMIT"`
	RateLimit      int      `toml:"rate_limit" env:"RATE_LIMIT"`
	ReadTimeout    Duration `toml:"read_timeout" env:"READ_TIMEOUT"`
	TrustedProxies []string `toml:"trusted_proxies" env:"TRUSTED_PROXIES" envSeparator:","`
}

type EngineConfig struct {
	Timezone        string   `toml:"timezone" env:"TIMEZONE"`
	MaxBoosterBonus float64  `toml:"max_booster_bonus" env:"MAX_BOOSTER_BONUS"`
	MaxAttempts     int      `toml:"max_attempts" env:"MAX_ATTEMPTS"`
	RetryInitial    Duration `toml:"retry_initial" env:"RETRY_INITIAL"`
	RetryMax        Duration `toml:"retry_max" env:"RETRY_MAX"`
	EventBuffer     int      `toml:"event_buffer" env:"EVENT_BUFFER"`
	SweepEnabled    bool     `toml:"sweep_enabled" env:"SWEEP_ENABLED"`
	SweepInterval   Duration `toml:"sweep_interval" env:"SWEEP_INTERVAL"`
	SweepRetention  Duration `toml:"sweep_retention" env:"SWEEP_RETENTION"`
}

// Location resolves the configured time zone used by time-window quests.
func (c EngineConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid engine timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

type WebhookConfig struct {
	URL        string   `toml:"url" env:"URL"`
	Secret     string   `toml:"secret" env:"SECRET"`
	MaxRetries int      `toml:"max_retries" env:"MAX_RETRIES"`
	RetryDelay Duration `toml:"retry_delay" env:"RETRY_DELAY"`
	Timeout    Duration `toml:"timeout" env:"TIMEOUT"`
}

type CatalogConfig struct {
	// Path to a YAML catalog. Empty uses the built-in catalog.
	Path string `toml:"path" env:"PATH"`
	Seed bool   `toml:"seed" env:"SEED"`
}

// Duration decodes "90s" style strings from TOML and the environment.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:  slog.LevelInfo,
			Format: "text",
			Color:  true,
		},
		DB: database.DBConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Database: "loyalty",
			PoolSize: 10,
		},
		HTTP: HTTPConfig{
			Addr:        config.DefaultListenAddr,
			BodyLimit:   config.MaxRequestSize,
			RateLimit:   config.DefaultRateLimit,
			ReadTimeout: Duration{config.RequestTimeout},
		},
		Engine: EngineConfig{
			Timezone:        config.DefaultTimezone,
			MaxBoosterBonus: config.DefaultMaxBoosterBonus,
			MaxAttempts:     config.DefaultMaxAttempts,
			RetryInitial:    Duration{config.DefaultRetryInitial},
			RetryMax:        Duration{config.DefaultRetryMax},
			EventBuffer:     256,
			SweepEnabled:    true,
			SweepInterval:   Duration{config.DefaultSweepInterval},
			SweepRetention:  Duration{config.DefaultSweepRetention},
		},
		Webhook: WebhookConfig{
			MaxRetries: config.WebhookMaxRetries,
			RetryDelay: Duration{config.WebhookRetryDelay},
			Timeout:    Duration{config.WebhookClientTimeout},
		},
	}
}

func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Engine.Location(); err != nil {
		errs = append(errs, err)
	}
	if c.Engine.MaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf("engine.max_attempts must be positive, got %d", c.Engine.MaxAttempts))
	}
	if c.Engine.EventBuffer <= 0 {
		errs = append(errs, fmt.Errorf("engine.event_buffer must be positive, got %d", c.Engine.EventBuffer))
	}
	if c.Engine.SweepEnabled && c.Engine.SweepInterval.Duration <= 0 {
		errs = append(errs, errors.New("engine.sweep_interval must be positive when sweeping is enabled"))
	}
	if c.Engine.SweepRetention.Duration < 0 {
		errs = append(errs, errors.New("engine.sweep_retention must not be negative"))
	}
	if c.Webhook.URL == "" && c.Webhook.Secret != "" {
		errs = append(errs, errors.New("webhook.secret is set without webhook.url"))
	}
	return errors.Join(errs...)
}
