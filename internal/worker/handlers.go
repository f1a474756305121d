package worker

import (
	"context"
	"errors"

	"github.com/shaiso/Nebula/internal/domain"
	"github.com/shaiso/Nebula/internal/taskapi"
	"github.com/shaiso/Nebula/internal/telemetry"
)

// handleFetching запрашивает задачу.
func (l *Loop) handleFetching(ctx context.Context) domain.WorkerState {
	l.task = nil

	out := l.client.FetchTask(ctx, l.token)
	telemetry.FetchTotal.WithLabelValues(string(out.Kind)).Inc()

	switch out.Kind {
	case taskapi.KindRateLimited:
		l.logger.Warn("rate limited", "op", taskapi.OpFetch, "backoff", l.backoff)
		return l.backoffAfterRateLimit(ctx, taskapi.OpFetch)

	case taskapi.KindAuthExpired:
		l.logger.Warn("token expired")
		l.recordExpired()
		l.setStopReason(domain.StopReasonAuthExpired)
		return domain.WorkerStateAuthExpired

	case taskapi.KindSuccess:
		l.task = out.Task
		l.logger.Info("task fetched",
			"task_id", out.Task.ID,
			"matrix_size", out.Task.MatrixSize,
		)
		return domain.WorkerStateComputing

	default:
		if ctx.Err() != nil {
			return l.interrupt()
		}
		if out.Transport() {
			l.logger.Error("fetch failed, stopping worker", "error", out.Err)
			l.setStopReason(domain.StopReasonFetchFailed)
		} else {
			l.logger.Info("no task available, stopping worker", "code", codeValue(out.Code))
			l.setStopReason(domain.StopReasonNoMoreWork)
		}
		return domain.WorkerStateStopped
	}
}

// handleComputing вычисляет результат текущей задачи.
func (l *Loop) handleComputing(ctx context.Context) domain.WorkerState {
	task := l.task
	logger := telemetry.WithTaskID(l.logger, task.ID)

	res, err := l.computer.Run(ctx, task.Seed1, task.Seed2, task.MatrixSize)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return l.interrupt()
		}

		telemetry.ComputeErrorsTotal.Inc()
		logger.Warn("compute failed", "error", err)
		l.update(func(s *domain.WorkerStats) { s.Failures++ })
		l.task = nil
		return domain.WorkerStateFetching
	}

	l.result = res
	l.update(func(s *domain.WorkerStats) {
		s.Attempted++
		s.ComputeTime += res.Duration()
	})

	logger.Debug("task computed",
		"fingerprint", res.Fingerprint,
		"elapsed_sec", res.Elapsed,
	)

	return domain.WorkerStateSubmitting
}

// handleSubmitting отправляет результат текущей задачи.
func (l *Loop) handleSubmitting(ctx context.Context) domain.WorkerState {
	task := l.task
	logger := telemetry.WithTaskID(l.logger, task.ID)

	// Задача потребляется ровно одной отправкой, что бы ни ответил сервис.
	l.task = nil

	out := l.client.SubmitResult(ctx, l.token, taskapi.Submission{
		TaskID:  task.ID,
		Result1: l.result.Result1,
		Result2: l.result.Result2,
	})
	telemetry.SubmitTotal.WithLabelValues(string(out.Kind)).Inc()

	switch out.Kind {
	case taskapi.KindRateLimited:
		// Результат не переотправляется.
		logger.Warn("rate limited, result dropped", "op", taskapi.OpSubmit, "backoff", l.backoff)
		l.update(func(s *domain.WorkerStats) { s.Dropped++ })
		return l.backoffAfterRateLimit(ctx, taskapi.OpSubmit)

	case taskapi.KindAccepted:
		logger.Info("result accepted", "loops", out.Loops)
		l.update(func(s *domain.WorkerStats) { s.Successes++ })
		return domain.WorkerStatePacing

	default:
		if out.Transport() && ctx.Err() != nil {
			return l.interrupt()
		}
		logger.Warn("result rejected",
			"outcome", out.Kind,
			"code", codeValue(out.Code),
			"error", out.Err,
		)
		l.update(func(s *domain.WorkerStats) { s.Failures++ })
		return domain.WorkerStatePacing
	}
}

// handlePacing делает короткую паузу между циклами.
func (l *Loop) handlePacing(ctx context.Context) domain.WorkerState {
	if err := l.sleep(ctx, l.pacing); err != nil {
		return l.interrupt()
	}
	return domain.WorkerStateFetching
}

// backoffAfterRateLimit ждёт фиксированную паузу и возвращает цикл в FETCHING.
func (l *Loop) backoffAfterRateLimit(ctx context.Context, op taskapi.Op) domain.WorkerState {
	telemetry.RateLimitedTotal.WithLabelValues(string(op)).Inc()
	l.update(func(s *domain.WorkerStats) { s.RateLimited++ })

	if err := l.sleep(ctx, l.backoff); err != nil {
		return l.interrupt()
	}
	return domain.WorkerStateFetching
}

// recordExpired пишет токен в журнал просроченных токенов.
func (l *Loop) recordExpired() {
	telemetry.ExpiredTokensTotal.Inc()

	if l.sink == nil {
		return
	}
	if err := l.sink.Record(l.token); err != nil {
		l.logger.Error("failed to record expired token", "error", err)
	}
}

// codeValue разыменовывает code для логов.
func codeValue(code *int) any {
	if code == nil {
		return nil
	}
	return *code
}
