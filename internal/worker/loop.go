package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Nebula/internal/compute"
	"github.com/shaiso/Nebula/internal/domain"
	"github.com/shaiso/Nebula/internal/taskapi"
	"github.com/shaiso/Nebula/internal/telemetry"
)

// Default configuration values.
const (
	DefaultRateLimitBackoff = 3 * time.Second
	DefaultPacingDelay      = 50 * time.Millisecond

	reportTimeout = 5 * time.Second
)

// TaskClient — сервис задач. Реализация: *taskapi.Client.
type TaskClient interface {
	FetchTask(ctx context.Context, token string) taskapi.Outcome
	SubmitResult(ctx context.Context, token string, sub taskapi.Submission) taskapi.Outcome
}

// Computer — вычислитель задач. Реализация: *compute.Pipeline.
type Computer interface {
	Run(ctx context.Context, seed1, seed2 int64, size int) (compute.Result, error)
}

// ExpiredSink — получатель просроченных токенов. Реализация: *tokens.ExpiredLog.
type ExpiredSink interface {
	Record(token string) error
}

// Reporter — получатель итоговой статистики. Реализация: *mq.Publisher.
type Reporter interface {
	ReportSummary(ctx context.Context, stats domain.WorkerStats) error
}

// Loop — цикл обработки задач одного токена.
type Loop struct {
	token     string
	sessionID string

	client   TaskClient
	computer Computer
	sink     ExpiredSink
	reporter Reporter
	sleep    SleepFunc

	backoff time.Duration
	pacing  time.Duration
	reward  float64

	logger *slog.Logger

	// Текущая задача и её результат. Живут один цикл.
	task   *domain.Task
	result compute.Result

	mu    sync.Mutex
	stats domain.WorkerStats
}

// Config — конфигурация Loop.
type Config struct {
	// Token — учётные данные воркера (обязательно).
	Token string

	// Client — сервис задач (обязательно).
	Client TaskClient

	// Computer — вычислитель (обязательно).
	Computer Computer

	// ExpiredSink — журнал просроченных токенов (опционально).
	ExpiredSink ExpiredSink

	// Reporter — публикация итоговой статистики (опционально).
	Reporter Reporter

	// Sleep — функция ожидания (default: Sleep).
	Sleep SleepFunc

	// RateLimitBackoff — пауза после 429 (default: 3s).
	RateLimitBackoff time.Duration

	// PacingDelay — пауза между циклами (default: 50ms).
	PacingDelay time.Duration

	// RewardPerSuccess — очки за принятую задачу (default: 0.003).
	RewardPerSuccess float64

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Loop.
func New(cfg Config) (*Loop, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("%w: token", ErrMissingDependency)
	}
	if cfg.Client == nil {
		return nil, fmt.Errorf("%w: task client", ErrMissingDependency)
	}
	if cfg.Computer == nil {
		return nil, fmt.Errorf("%w: computer", ErrMissingDependency)
	}

	backoff := cfg.RateLimitBackoff
	if backoff <= 0 {
		backoff = DefaultRateLimitBackoff
	}

	pacing := cfg.PacingDelay
	if pacing <= 0 {
		pacing = DefaultPacingDelay
	}

	reward := cfg.RewardPerSuccess
	if reward <= 0 {
		reward = domain.DefaultRewardPerSuccess
	}

	sleep := cfg.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sessionID := uuid.New().String()
	short := domain.ShortToken(cfg.Token)

	return &Loop{
		token:     cfg.Token,
		sessionID: sessionID,
		client:    cfg.Client,
		computer:  cfg.Computer,
		sink:      cfg.ExpiredSink,
		reporter:  cfg.Reporter,
		sleep:     sleep,
		backoff:   backoff,
		pacing:    pacing,
		reward:    reward,
		logger:    telemetry.WithSessionID(telemetry.WithToken(logger, short), sessionID),
		stats: domain.WorkerStats{
			Token:     short,
			SessionID: sessionID,
			State:     domain.WorkerStateFetching,
		},
	}, nil
}

// Snapshot возвращает копию текущей статистики.
func (l *Loop) Snapshot() domain.WorkerStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

// Run крутит цикл до терминального состояния и возвращает итоговую статистику.
func (l *Loop) Run(ctx context.Context) domain.WorkerStats {
	start := time.Now()
	ctx = telemetry.WithLogger(ctx, l.logger)

	l.logger.Info("worker started")

	state := domain.WorkerStateFetching
	for !state.IsTerminal() {
		var next domain.WorkerState
		if ctx.Err() != nil {
			next = l.interrupt()
		} else {
			next = l.step(ctx, state)
		}

		if !state.CanTransitionTo(next) {
			l.logger.Error("invalid state transition",
				"from", state,
				"to", next,
				"error", ErrInvalidTransition,
			)
			l.setStopReason(domain.StopReasonCrashed)
			next = domain.WorkerStateStopped
		}

		l.logger.Debug("state transition", "from", state, "to", next)
		state = next
		l.update(func(s *domain.WorkerStats) { s.State = state })
	}

	return l.finish(ctx, time.Since(start))
}

// step выполняет обработчик состояния и возвращает следующее состояние.
func (l *Loop) step(ctx context.Context, state domain.WorkerState) domain.WorkerState {
	switch state {
	case domain.WorkerStateFetching:
		return l.handleFetching(ctx)
	case domain.WorkerStateComputing:
		return l.handleComputing(ctx)
	case domain.WorkerStateSubmitting:
		return l.handleSubmitting(ctx)
	case domain.WorkerStatePacing:
		return l.handlePacing(ctx)
	default:
		// Неизвестное состояние не пройдёт проверку перехода.
		return state
	}
}

// finish фиксирует итоговую статистику, пишет сводку и публикует её.
func (l *Loop) finish(ctx context.Context, runtime time.Duration) domain.WorkerStats {
	l.update(func(s *domain.WorkerStats) {
		s.Runtime = runtime
		s.EarnedPoints = s.Earned(l.reward)
		if s.StopReason == domain.StopReasonNone {
			s.StopReason = domain.StopReasonNoMoreWork
		}
	})

	stats := l.Snapshot()

	l.logger.Info("worker finished",
		"successes", stats.Successes,
		"failures", stats.Failures,
		"attempted", stats.Attempted,
		"dropped", stats.Dropped,
		"rate_limited", stats.RateLimited,
		"runtime_sec", fmt.Sprintf("%.1f", stats.Runtime.Seconds()),
		"compute_sec", fmt.Sprintf("%.3f", stats.ComputeTime.Seconds()),
		"earned_points", fmt.Sprintf("%.3f", stats.EarnedPoints),
		"state", stats.State,
		"stop_reason", stats.StopReason,
	)

	if l.reporter != nil {
		// Сводку публикуем и после Ctrl+C, поэтому отвязываемся от отмены.
		reportCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reportTimeout)
		defer cancel()

		if err := l.reporter.ReportSummary(reportCtx, stats); err != nil {
			l.logger.Warn("failed to report worker summary", "error", err)
		}
	}

	return stats
}

// interrupt переводит цикл в STOPPED по отмене контекста.
func (l *Loop) interrupt() domain.WorkerState {
	l.setStopReason(domain.StopReasonInterrupted)
	l.logger.Info("worker interrupted")
	return domain.WorkerStateStopped
}

// update изменяет статистику под мьютексом.
func (l *Loop) update(fn func(s *domain.WorkerStats)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(&l.stats)
}

func (l *Loop) setStopReason(reason domain.StopReason) {
	l.update(func(s *domain.WorkerStats) {
		if s.StopReason == domain.StopReasonNone {
			s.StopReason = reason
		}
	})
}
