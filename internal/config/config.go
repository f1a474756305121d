// Package config загружает конфигурацию воркеров.
//
// Порядок слоёв: значения по умолчанию → YAML-файл (если указан) →
// переменные окружения. Флаги командной строки применяются поверх
// в cmd/nebula-worker.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shaiso/Nebula/internal/compute"
	"github.com/shaiso/Nebula/internal/domain"
	"github.com/shaiso/Nebula/internal/fleet"
	"github.com/shaiso/Nebula/internal/matrix"
	"github.com/shaiso/Nebula/internal/taskapi"
	"github.com/shaiso/Nebula/internal/worker"
)

// ErrInvalidConfig — конфигурация не прошла проверку.
var ErrInvalidConfig = errors.New("invalid config")

// Config — конфигурация процесса.
type Config struct {
	// Endpoint — URL сервиса задач.
	Endpoint string `yaml:"endpoint"`

	// TokensFile — файл со списком токенов.
	TokensFile string `yaml:"tokens_file"`

	// ExpiredFile — журнал просроченных токенов.
	ExpiredFile string `yaml:"expired_file"`

	// RequestTimeout — таймаут одного запроса к сервису.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// RateLimitBackoff — пауза после 429.
	RateLimitBackoff time.Duration `yaml:"rate_limit_backoff"`

	// PacingDelay — пауза между циклами.
	PacingDelay time.Duration `yaml:"pacing_delay"`

	// Modulus — модуль fingerprint.
	Modulus int64 `yaml:"modulus"`

	// PoolSize — размер пула генерации матриц (1..16).
	PoolSize int `yaml:"pool_size"`

	// RewardPerSuccess — очки за принятую задачу.
	RewardPerSuccess float64 `yaml:"reward_per_success"`

	// MetricsAddr — адрес /metrics и /healthz. Пусто — выключено.
	MetricsAddr string `yaml:"metrics_addr"`

	// AMQPURL — RabbitMQ для публикации сводок. Пусто — выключено.
	AMQPURL string `yaml:"amqp_url"`

	// ProgressSchedule — cron-расписание отчёта о прогрессе. Пусто — выключено.
	ProgressSchedule string `yaml:"progress_schedule"`
}

// Default возвращает конфигурацию по умолчанию.
func Default() Config {
	return Config{
		Endpoint:         taskapi.DefaultEndpoint,
		TokensFile:       "tokens.txt",
		ExpiredFile:      "expired_tokens.txt",
		RequestTimeout:   taskapi.DefaultTimeout,
		RateLimitBackoff: worker.DefaultRateLimitBackoff,
		PacingDelay:      worker.DefaultPacingDelay,
		Modulus:          matrix.DefaultModulus,
		PoolSize:         compute.DefaultPoolSize,
		RewardPerSuccess: domain.DefaultRewardPerSuccess,
	}
}

// Load загружает конфигурацию. path может быть пустым.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// loadFile накладывает значения из YAML-файла.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
	}
	return nil
}

// loadEnv накладывает значения из переменных окружения.
func (c *Config) loadEnv() error {
	setString(&c.Endpoint, "NEBULA_ENDPOINT")
	setString(&c.TokensFile, "NEBULA_TOKENS_FILE")
	setString(&c.ExpiredFile, "NEBULA_EXPIRED_FILE")
	setString(&c.MetricsAddr, "NEBULA_METRICS_ADDR")
	setString(&c.AMQPURL, "RABBITMQ_URL")
	setString(&c.ProgressSchedule, "NEBULA_PROGRESS_SCHEDULE")

	durations := []struct {
		dst *time.Duration
		key string
	}{
		{&c.RequestTimeout, "NEBULA_REQUEST_TIMEOUT"},
		{&c.RateLimitBackoff, "NEBULA_RATE_LIMIT_BACKOFF"},
		{&c.PacingDelay, "NEBULA_PACING_DELAY"},
	}
	for _, d := range durations {
		v := os.Getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, d.key, err)
		}
		*d.dst = parsed
	}

	if v := os.Getenv("NEBULA_POOL_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: NEBULA_POOL_SIZE: %v", ErrInvalidConfig, err)
		}
		c.PoolSize = n
	}

	return nil
}

// Validate проверяет конфигурацию.
func (c *Config) Validate() error {
	switch {
	case c.Endpoint == "":
		return fmt.Errorf("%w: endpoint is required", ErrInvalidConfig)
	case c.TokensFile == "":
		return fmt.Errorf("%w: tokens_file is required", ErrInvalidConfig)
	case c.ExpiredFile == "":
		return fmt.Errorf("%w: expired_file is required", ErrInvalidConfig)
	case c.RequestTimeout <= 0:
		return fmt.Errorf("%w: request_timeout must be positive", ErrInvalidConfig)
	case c.RateLimitBackoff <= 0:
		return fmt.Errorf("%w: rate_limit_backoff must be positive", ErrInvalidConfig)
	case c.PacingDelay <= 0:
		return fmt.Errorf("%w: pacing_delay must be positive", ErrInvalidConfig)
	case c.Modulus <= 0:
		return fmt.Errorf("%w: modulus must be positive", ErrInvalidConfig)
	case c.PoolSize < 1 || c.PoolSize > compute.MaxPoolSize:
		return fmt.Errorf("%w: pool_size must be in [1, %d]", ErrInvalidConfig, compute.MaxPoolSize)
	case c.RewardPerSuccess < 0:
		return fmt.Errorf("%w: reward_per_success must not be negative", ErrInvalidConfig)
	}

	if err := fleet.ValidateSchedule(c.ProgressSchedule); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
