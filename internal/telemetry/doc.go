// Package telemetry обеспечивает наблюдаемость системы.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики
//
// Воркеры пишут события в едином формате и экспортируют
// метрики на /metrics endpoint (если он включён).
package telemetry
