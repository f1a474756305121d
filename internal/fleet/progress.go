package fleet

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// cronParser — парсер расписания отчёта. Поддерживает дескрипторы (@every 30s).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Progress — сводка по всем циклам.
type Progress struct {
	Workers   int
	Stopped   int
	Successes int
	Failures  int
	Attempted int
}

// ValidateSchedule проверяет cron-выражение отчёта.
func ValidateSchedule(expr string) error {
	if expr == "" {
		return nil
	}
	if _, err := cronParser.Parse(expr); err != nil {
		return fmt.Errorf("invalid progress schedule %q: %w", expr, err)
	}
	return nil
}

// startProgress запускает периодический отчёт. Возвращает функцию остановки.
func (f *Fleet) startProgress() (func(), error) {
	if f.progressSchedule == "" {
		return func() {}, nil
	}

	c := cron.New(cron.WithParser(cronParser))
	if _, err := c.AddFunc(f.progressSchedule, f.logProgress); err != nil {
		return nil, fmt.Errorf("invalid progress schedule %q: %w", f.progressSchedule, err)
	}
	c.Start()

	return func() {
		// Ждём завершения запущенного отчёта.
		<-c.Stop().Done()
	}, nil
}

func (f *Fleet) logProgress() {
	p := f.Progress()
	f.logger.Info("fleet progress",
		"workers", p.Workers,
		"active", p.Workers-p.Stopped,
		"successes", p.Successes,
		"failures", p.Failures,
		"attempted", p.Attempted,
	)
}
