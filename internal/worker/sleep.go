package worker

import (
	"context"
	"time"
)

// SleepFunc — ожидание с учётом контекста.
// Возвращает ctx.Err(), если контекст отменён раньше.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep — ожидание через таймер.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
