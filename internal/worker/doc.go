// Package worker выполняет задачи одного токена.
//
// # Обзор
//
// Loop — конечный автомат, привязанный к одному токену. Он получает
// задачу от сервиса, вычисляет результат и отправляет его обратно,
// пока сервис выдаёт работу. Каждый Loop работает независимо:
// ошибки и паузы одного токена не влияют на другие.
//
// # Состояния
//
//	FETCHING ──429──▶ sleep(backoff) ──▶ FETCHING
//	FETCHING ──jwt auth err──▶ AUTH_EXPIRED (токен пишется в ExpiredSink)
//	FETCHING ──другой ответ──▶ STOPPED
//	FETCHING ──задача──▶ COMPUTING
//	COMPUTING ──ошибка──▶ FETCHING (задача отбрасывается)
//	COMPUTING ──ok──▶ SUBMITTING
//	SUBMITTING ──429──▶ sleep(backoff) ──▶ FETCHING (результат отбрасывается)
//	SUBMITTING ──accepted/rejected──▶ PACING
//	PACING ──sleep(pacing)──▶ FETCHING
//
// Переходы проверяются по таблице domain.WorkerState.CanTransitionTo.
// Отмена контекста из любого состояния переводит цикл в STOPPED
// с причиной interrupted.
//
// # Остановка по ошибке fetch
//
// Любой ответ fetch, кроме задачи, 429 и jwt auth err, завершает цикл —
// сервис так сообщает об окончании работы. Сетевая ошибка fetch
// завершает цикл так же, но с причиной fetch_failed, чтобы в итоговой
// статистике её можно было отличить от настоящего конца работы.
//
// # Статистика
//
// По завершении цикл пишет одну итоговую строку (successes, failures,
// attempted, runtime_sec, earned_points) и, если задан Reporter,
// публикует domain.WorkerStats.
package worker
