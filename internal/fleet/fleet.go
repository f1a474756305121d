// Package fleet запускает по одному циклу воркера на токен.
//
// Циклы ничего не разделяют между собой, кроме ограниченного пула
// вычислений и журнала просроченных токенов. Остановка или паника
// одного цикла не влияет на остальные.
package fleet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shaiso/Nebula/internal/domain"
	"github.com/shaiso/Nebula/internal/telemetry"
	"github.com/shaiso/Nebula/internal/tokens"
	"github.com/shaiso/Nebula/internal/worker"
)

// ErrNoTokens — запускать нечего.
var ErrNoTokens = tokens.ErrNoTokens

// Runner — цикл одного токена. Реализация: *worker.Loop.
type Runner interface {
	Run(ctx context.Context) domain.WorkerStats
	Snapshot() domain.WorkerStats
}

// Factory создаёт цикл для токена.
type Factory func(token string) (Runner, error)

// Fleet — набор независимых циклов.
type Fleet struct {
	factory          Factory
	progressSchedule string
	logger           *slog.Logger

	mu      sync.Mutex
	runners []Runner
}

// Config — конфигурация Fleet.
type Config struct {
	// Factory — создание цикла для токена (обязательно).
	Factory Factory

	// ProgressSchedule — cron-выражение периодического отчёта,
	// например "@every 30s". Пусто — отчёт выключен.
	ProgressSchedule string

	// Logger
	Logger *slog.Logger
}

// New создаёт Fleet.
func New(cfg Config) *Fleet {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Fleet{
		factory:          cfg.Factory,
		progressSchedule: cfg.ProgressSchedule,
		logger:           logger,
	}
}

// LoopFactory возвращает Factory, создающую worker.Loop из общего шаблона конфигурации.
func LoopFactory(base worker.Config) Factory {
	return func(token string) (Runner, error) {
		cfg := base
		cfg.Token = token
		return worker.New(cfg)
	}
}

// Run запускает цикл на каждый токен и ждёт завершения всех.
//
// Статистика возвращается в порядке токенов. Ошибка возвращается
// только если токенов нет или цикл не удалось создать.
func (f *Fleet) Run(ctx context.Context, tokenList []string) ([]domain.WorkerStats, error) {
	if len(tokenList) == 0 {
		return nil, ErrNoTokens
	}
	if f.factory == nil {
		return nil, errors.New("fleet: factory is required")
	}

	runners := make([]Runner, len(tokenList))
	for i, token := range tokenList {
		r, err := f.factory(token)
		if err != nil {
			return nil, fmt.Errorf("create worker %s: %w", domain.ShortToken(token), err)
		}
		runners[i] = r
	}

	f.mu.Lock()
	f.runners = runners
	f.mu.Unlock()

	stopProgress, err := f.startProgress()
	if err != nil {
		return nil, err
	}
	defer stopProgress()

	f.logger.Info("starting fleet", "workers", len(runners))
	start := time.Now()

	results := make([]domain.WorkerStats, len(runners))
	var wg sync.WaitGroup
	for i, r := range runners {
		wg.Add(1)
		go func(i int, r Runner) {
			defer wg.Done()
			results[i] = f.runOne(ctx, r, tokenList[i])
		}(i, r)
	}
	wg.Wait()

	f.logger.Info("fleet finished",
		"workers", len(runners),
		"runtime_sec", fmt.Sprintf("%.1f", time.Since(start).Seconds()),
	)

	return results, nil
}

// runOne запускает один цикл. Паника цикла не выходит за его пределы.
func (f *Fleet) runOne(ctx context.Context, r Runner, token string) (stats domain.WorkerStats) {
	telemetry.WorkersActive.Inc()
	defer telemetry.WorkersActive.Dec()

	defer func() {
		if rec := recover(); rec != nil {
			f.logger.Error("worker crashed",
				"token", domain.ShortToken(token),
				"panic", rec,
			)
			stats = r.Snapshot()
			stats.State = domain.WorkerStateStopped
			stats.StopReason = domain.StopReasonCrashed
		}
	}()

	return r.Run(ctx)
}

// Progress суммирует текущую статистику всех циклов.
func (f *Fleet) Progress() Progress {
	f.mu.Lock()
	runners := f.runners
	f.mu.Unlock()

	var p Progress
	for _, r := range runners {
		s := r.Snapshot()
		p.Workers++
		if s.State.IsTerminal() {
			p.Stopped++
		}
		p.Successes += s.Successes
		p.Failures += s.Failures
		p.Attempted += s.Attempted
	}
	return p
}
