package domain

import "time"

// DefaultRewardPerSuccess — начисление за одну принятую задачу.
const DefaultRewardPerSuccess = 0.003

// WorkerStats — статистика одного токена.
//
// Изменяется только циклом своего воркера. Снимки для отчётов
// берутся через worker.Loop.Snapshot().
type WorkerStats struct {
	// Token — короткий префикс токена (полный токен не сериализуется).
	Token string `json:"token"`

	// SessionID — идентификатор запуска цикла.
	SessionID string `json:"session_id"`

	// Successes — принятые сервисом результаты.
	Successes int `json:"successes"`

	// Failures — ошибки вычисления и отклонённые результаты.
	Failures int `json:"failures"`

	// Attempted — задачи, для которых вычисление завершилось успешно.
	Attempted int `json:"attempted"`

	// Dropped — результаты, отброшенные из-за 429 на submit.
	Dropped int `json:"dropped"`

	// RateLimited — количество полученных 429 (fetch и submit).
	RateLimited int `json:"rate_limited"`

	// ComputeTime — суммарное время вычислений.
	ComputeTime time.Duration `json:"compute_time"`

	// Runtime — время работы цикла.
	Runtime time.Duration `json:"runtime"`

	// EarnedPoints — Successes × награда за задачу.
	EarnedPoints float64 `json:"earned_points"`

	// State — последнее состояние цикла.
	State WorkerState `json:"state"`

	// StopReason — причина остановки (пусто, пока цикл работает).
	StopReason StopReason `json:"stop_reason,omitempty"`
}

// Earned вычисляет начисленные очки.
func (s *WorkerStats) Earned(reward float64) float64 {
	return float64(s.Successes) * reward
}
