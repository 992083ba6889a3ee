package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"MarketTerminal/internal/model"
)

// Config holds all application configuration.
type Config struct {
	DataSource DataSource `yaml:"data_source"`
	Macro      Macro      `yaml:"macro"`
	Database   Database   `yaml:"database"`
	Schedule   Schedule   `yaml:"schedule"`
	Telegram   Telegram   `yaml:"telegram"`
	Metrics    Metrics    `yaml:"metrics"`
	Log        Log        `yaml:"log"`
	Proxy      string     `yaml:"proxy"`

	// Symbols is the ingestion registry; empty means the built-in list.
	Symbols []model.Symbol `yaml:"symbols" validate:"dive"`
	// Markets drives the live price board; empty means the built-in list.
	Markets []model.Symbol `yaml:"markets" validate:"dive"`
}

type DataSource struct {
	Provider   string        `yaml:"provider" default:"yahoo" validate:"oneof=yahoo mock"`
	BaseURL    string        `yaml:"base_url" default:"https://query1.finance.yahoo.com" validate:"url"`
	UserAgent  string        `yaml:"user_agent" default:"Mozilla/5.0"`
	Timeout    time.Duration `yaml:"timeout" default:"30s" validate:"gt=0"`
	MaxRetries int           `yaml:"max_retries" default:"3" validate:"gte=0,lte=10"`
	MockPrice  float64       `yaml:"mock_price" default:"100" validate:"gt=0"`
}

type Macro struct {
	BaseURL string        `yaml:"base_url" default:"https://api.stlouisfed.org/fred/series/observations" validate:"url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout" default:"30s" validate:"gt=0"`
}

type Database struct {
	Driver string `yaml:"driver" default:"sqlite" validate:"oneof=sqlite postgres"`
	DSN    string `yaml:"dsn" default:"db/market_data.db" validate:"required"`
}

type Schedule struct {
	IngestCron   string `yaml:"ingest_cron" default:"0 30 22 * * 1-5"`
	SnapshotCron string `yaml:"snapshot_cron" default:"0 0 8 * * 1-5"`
}

type Telegram struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

// Enabled reports whether both bot credentials are present.
func (t Telegram) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr" default:":9090"`
}

type Log struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" default:"console" validate:"oneof=console json"`
	Output string `yaml:"output" default:"stderr"`
}

var validate = validator.New()

// Load reads config from a YAML file, then applies .env, environment
// variable overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Variables already in the environment win over .env.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg.applyEnv()

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrides := []struct {
		env string
		dst *string
	}{
		{"FRED_API_KEY", &c.Macro.APIKey},
		{"DATABASE_DRIVER", &c.Database.Driver},
		{"SQLITE_PATH", &c.Database.DSN},
		{"DATABASE_DSN", &c.Database.DSN},
		{"TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken},
		{"TELEGRAM_CHAT_ID", &c.Telegram.ChatID},
		{"HTTPS_PROXY", &c.Proxy},
		{"CRON_INGEST", &c.Schedule.IngestCron},
		{"CRON_SNAPSHOT", &c.Schedule.SnapshotCron},
		{"LOG_LEVEL", &c.Log.Level},
		{"METRICS_ADDR", &c.Metrics.Addr},
	}
	for _, o := range overrides {
		if v := strings.TrimSpace(os.Getenv(o.env)); v != "" {
			*o.dst = v
		}
	}
}

// Validate checks field constraints, cron expressions and the registries.
// A missing FRED key is allowed; the macro panel then shows N/A.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fieldMessage(fe))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	for name, spec := range map[string]string{
		"schedule.ingest_cron":   c.Schedule.IngestCron,
		"schedule.snapshot_cron": c.Schedule.SnapshotCron,
	} {
		if _, err := parser.Parse(spec); err != nil {
			return fmt.Errorf("invalid config: %s: %w", name, err)
		}
	}

	if _, err := c.IngestRegistry(); err != nil {
		return fmt.Errorf("invalid config: symbols: %w", err)
	}
	if _, err := c.MarketsRegistry(); err != nil {
		return fmt.Errorf("invalid config: markets: %w", err)
	}
	return nil
}

// IngestRegistry returns the configured symbols or the built-in list.
func (c *Config) IngestRegistry() (model.Registry, error) {
	if len(c.Symbols) == 0 {
		return model.NewRegistry(model.IngestSymbols()...)
	}
	return model.NewRegistry(c.Symbols...)
}

// MarketsRegistry returns the configured market board or the built-in list.
func (c *Config) MarketsRegistry() (model.Registry, error) {
	if len(c.Markets) == 0 {
		return model.NewRegistry(model.MarketsSymbols()...)
	}
	return model.NewRegistry(c.Markets...)
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "gt", "gte", "lte":
		return fmt.Sprintf("%s must be %s %s", field, fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
