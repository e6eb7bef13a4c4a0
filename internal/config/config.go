package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "TRANSFERS"

type Config struct {
	Env      string `mapstructure:"env"`
	HTTPAddr string `mapstructure:"http_addr"`
	Producer string `mapstructure:"producer"`

	AccountsBaseURL string `mapstructure:"accounts_base_url"`
	RatesBaseURL    string `mapstructure:"rates_base_url"`

	DBDriver string `mapstructure:"db_driver"`
	DBDSN    string `mapstructure:"db_dsn"`

	CallTimeout          time.Duration `mapstructure:"call_timeout"`
	ReplayWait           time.Duration `mapstructure:"replay_wait"`
	ReplayPollInterval   time.Duration `mapstructure:"replay_poll_interval"`
	CompensationAttempts int           `mapstructure:"compensation_attempts"`
	LedgerWriteAttempts  int           `mapstructure:"ledger_write_attempts"`
	RetryBackoff         time.Duration `mapstructure:"retry_backoff"`

	KafkaBrokers       []string      `mapstructure:"kafka_brokers"`
	KafkaTopic         string        `mapstructure:"kafka_topic"`
	OutboxBatchSize    int           `mapstructure:"outbox_batch_size"`
	OutboxPollInterval time.Duration `mapstructure:"outbox_poll_interval"`
}

var defaults = map[string]any{
	"env":       "development",
	"http_addr": ":8080",
	"producer":  "fx-transfers",

	"accounts_base_url": "http://localhost:8081",
	"rates_base_url":    "http://localhost:8082",

	"db_driver": "sqlite",
	"db_dsn":    "file:transfers.db?_busy_timeout=5000",

	"call_timeout":          3 * time.Second,
	"replay_wait":           5 * time.Second,
	"replay_poll_interval":  100 * time.Millisecond,
	"compensation_attempts": 3,
	"ledger_write_attempts": 3,
	"retry_backoff":         50 * time.Millisecond,

	"kafka_brokers":        []string{},
	"kafka_topic":          "transfers.events",
	"outbox_batch_size":    100,
	"outbox_poll_interval": time.Second,
}

// Load reads TRANSFERS_* environment variables on top of an optional config
// file. configFile may be empty.
func Load(configFile string) (Config, error) {
	v := viper.New()

	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	// Lists given in a config file may still carry comma separated entries.
	cfg.KafkaBrokers = splitList(cfg.KafkaBrokers)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("db_driver must be postgres or sqlite, got %q", c.DBDriver))
	}
	if c.DBDSN == "" {
		errs = append(errs, errors.New("db_dsn is required"))
	}
	if c.AccountsBaseURL == "" {
		errs = append(errs, errors.New("accounts_base_url is required"))
	}
	if c.RatesBaseURL == "" {
		errs = append(errs, errors.New("rates_base_url is required"))
	}
	if c.CallTimeout <= 0 {
		errs = append(errs, errors.New("call_timeout must be positive"))
	}
	if c.CompensationAttempts < 1 {
		errs = append(errs, errors.New("compensation_attempts must be at least 1"))
	}
	if c.LedgerWriteAttempts < 1 {
		errs = append(errs, errors.New("ledger_write_attempts must be at least 1"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func (c Config) IsProduction() bool { return c.Env == "production" }

func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
