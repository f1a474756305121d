// Nebula Worker — пул воркеров сервиса вычислений.
//
// Worker:
//   - Читает токены из файла (по одному на строку)
//   - Запускает по циклу на каждый токен
//   - Получает задачи, считает матрицы, отправляет результаты
//   - Пишет просроченные токены в expired_tokens.txt
//
// Использование:
//
//	nebula-worker [--config nebula.yaml] [--tokens tokens.txt] [flags]
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/shaiso/Nebula/internal/compute"
	"github.com/shaiso/Nebula/internal/config"
	"github.com/shaiso/Nebula/internal/fleet"
	"github.com/shaiso/Nebula/internal/mq"
	"github.com/shaiso/Nebula/internal/taskapi"
	"github.com/shaiso/Nebula/internal/telemetry"
	"github.com/shaiso/Nebula/internal/tokens"
	"github.com/shaiso/Nebula/internal/worker"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	overrides := config.Config{}

	cmd := &cobra.Command{
		Use:           "nebula-worker",
		Short:         "Run one compute worker per token",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			applyFlags(cmd, &cfg, overrides)
			if err := cfg.Validate(); err != nil {
				return err
			}

			// graceful shutdown
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return run(ctx, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "YAML config file")
	flags.StringVar(&overrides.TokensFile, "tokens", "", "Tokens file, one token per line")
	flags.StringVar(&overrides.ExpiredFile, "expired", "", "Expired tokens file (append-only)")
	flags.StringVar(&overrides.Endpoint, "endpoint", "", "Task service endpoint")
	flags.IntVar(&overrides.PoolSize, "pool-size", 0, "Matrix generation pool size (1-16)")
	flags.StringVar(&overrides.MetricsAddr, "metrics-addr", "", "Address for /metrics and /healthz, e.g. :9102")
	flags.StringVar(&overrides.AMQPURL, "amqp-url", "", "RabbitMQ URL for worker summaries")
	flags.StringVar(&overrides.ProgressSchedule, "progress", "", "Progress report schedule, e.g. \"@every 30s\"")

	return cmd
}

// applyFlags накладывает явно заданные флаги поверх конфигурации.
func applyFlags(cmd *cobra.Command, cfg *config.Config, o config.Config) {
	changed := cmd.Flags().Changed

	if changed("tokens") {
		cfg.TokensFile = o.TokensFile
	}
	if changed("expired") {
		cfg.ExpiredFile = o.ExpiredFile
	}
	if changed("endpoint") {
		cfg.Endpoint = o.Endpoint
	}
	if changed("pool-size") {
		cfg.PoolSize = o.PoolSize
	}
	if changed("metrics-addr") {
		cfg.MetricsAddr = o.MetricsAddr
	}
	if changed("amqp-url") {
		cfg.AMQPURL = o.AMQPURL
	}
	if changed("progress") {
		cfg.ProgressSchedule = o.ProgressSchedule
	}
}

func run(ctx context.Context, cfg config.Config) error {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting nebula-worker", "version", version, "endpoint", cfg.Endpoint)

	tokenList, err := tokens.Load(cfg.TokensFile)
	if err != nil {
		logger.Error("failed to load tokens", "file", cfg.TokensFile, "error", err)
		return err
	}
	logger.Info("tokens loaded", "count", len(tokenList))

	expired, err := tokens.OpenExpiredLog(cfg.ExpiredFile)
	if err != nil {
		return err
	}
	defer expired.Close()

	base := worker.Config{
		Client: taskapi.NewClient(taskapi.Config{
			Endpoint: cfg.Endpoint,
			Timeout:  cfg.RequestTimeout,
		}),
		Computer: compute.New(compute.Config{
			PoolSize: cfg.PoolSize,
			Modulus:  cfg.Modulus,
		}),
		ExpiredSink:      expired,
		RateLimitBackoff: cfg.RateLimitBackoff,
		PacingDelay:      cfg.PacingDelay,
		RewardPerSuccess: cfg.RewardPerSuccess,
		Logger:           logger,
	}

	// RabbitMQ (опционально)
	if cfg.AMQPURL != "" {
		mqConn, err := mq.NewConnection(cfg.AMQPURL, logger)
		if err != nil {
			logger.Warn("RabbitMQ not available, summaries go to log only", "error", err)
		} else {
			defer mqConn.Close()
			if err := mq.SetupTopology(ctx, mqConn); err != nil {
				logger.Warn("failed to setup topology", "error", err)
			}
			base.Reporter = mq.NewPublisher(mqConn, logger)
		}
	}

	if cfg.MetricsAddr != "" {
		srv := startMetricsServer(cfg.MetricsAddr, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	f := fleet.New(fleet.Config{
		Factory:          fleet.LoopFactory(base),
		ProgressSchedule: cfg.ProgressSchedule,
		Logger:           logger,
	})

	if _, err := f.Run(ctx, tokenList); err != nil {
		logger.Error("fleet failed", "error", err)
		return err
	}

	if ctx.Err() != nil {
		logger.Info("stopped by operator")
	}
	logger.Info("nebula-worker stopped")
	return nil
}

// startMetricsServer поднимает /healthz + /metrics.
func startMetricsServer(addr string, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", "error", err)
		}
	}()

	return srv
}
