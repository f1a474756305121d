// Package mq публикует итоговую статистику воркеров в RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchange, queue, binding
//   - publisher.go  — публикация сводок
//
// Типы сообщений:
//   - worker.finished — цикл токена завершён, payload — domain.WorkerStats
//
// Exchanges:
//   - nebula.workers (direct) → workers.finished [routing: finished]
//
// Публикация опциональна: без RABBITMQ_URL воркеры только пишут сводку в лог.
package mq
