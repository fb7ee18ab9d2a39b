package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/peteywee/fresh-schedules/internal/shared/apperror"
)

const (
	defaultGraceMinutes = 25
	defaultInterval     = 5 * time.Minute
	defaultPageSize     = 100
	defaultBatchMaxOps  = 500
	defaultHTTPPort     = "8081"
)

type DBConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
}

type Config struct {
	GraceMinutes int
	Interval     time.Duration
	PageSize     int
	BatchMaxOps  int

	// OrganizationID scopes the reconciliation query when set. Empty
	// means all organizations.
	OrganizationID string

	HTTPPort    string
	KafkaBroker string
	RedisAddr   string

	// SaltSSMParam names an SSM parameter holding the ledger salt. The
	// LEDGER_HASH_SALT env var takes precedence when both are set.
	SaltSSMParam string

	DB DBConfig
}

// Load reads the worker configuration from the environment. Invalid numeric
// values are a configuration error; absent values fall back to defaults.
func Load() (Config, error) {
	cfg := Config{
		GraceMinutes:   defaultGraceMinutes,
		Interval:       defaultInterval,
		PageSize:       defaultPageSize,
		BatchMaxOps:    defaultBatchMaxOps,
		OrganizationID: os.Getenv("RECONCILE_ORG_ID"),
		HTTPPort:       defaultHTTPPort,
		KafkaBroker:    os.Getenv("KAFKA_BROKER"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		SaltSSMParam:   os.Getenv("LEDGER_HASH_SALT_SSM_PARAM"),
		DB: DBConfig{
			Host:     os.Getenv("DB_HOST"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			Port:     os.Getenv("DB_PORT"),
			SSLMode:  os.Getenv("DB_SSLMODE"),
		},
	}

	if port := os.Getenv("HTTP_PORT"); port != "" {
		cfg.HTTPPort = port
	}

	var err error
	if cfg.GraceMinutes, err = intFromEnv("AUTO_CLOCKOUT_GRACE_MINUTES", cfg.GraceMinutes); err != nil {
		return Config{}, err
	}
	if cfg.GraceMinutes < 0 {
		return Config{}, apperror.New(apperror.CodeConfiguration, "AUTO_CLOCKOUT_GRACE_MINUTES must not be negative", 500)
	}
	if cfg.PageSize, err = intFromEnv("RECONCILE_PAGE_SIZE", cfg.PageSize); err != nil {
		return Config{}, err
	}
	if cfg.PageSize <= 0 {
		return Config{}, apperror.New(apperror.CodeConfiguration, "RECONCILE_PAGE_SIZE must be positive", 500)
	}
	if cfg.BatchMaxOps, err = intFromEnv("BATCH_MAX_OPS", cfg.BatchMaxOps); err != nil {
		return Config{}, err
	}
	if cfg.BatchMaxOps <= 0 {
		return Config{}, apperror.New(apperror.CodeConfiguration, "BATCH_MAX_OPS must be positive", 500)
	}

	if raw := os.Getenv("RECONCILE_INTERVAL"); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil || interval <= 0 {
			return Config{}, apperror.Wrap(err, apperror.CodeConfiguration,
				fmt.Sprintf("RECONCILE_INTERVAL %q is not a valid duration", raw), 500)
		}
		cfg.Interval = interval
	}

	return cfg, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.CodeConfiguration,
			fmt.Sprintf("%s %q is not an integer", key, raw), 500)
	}
	return v, nil
}
