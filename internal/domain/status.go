package domain

// WorkerState — состояние цикла воркера.
//
// Жизненный цикл:
//
//	FETCHING → COMPUTING → SUBMITTING → PACING → FETCHING ...
//	    ↘ STOPPED            ↘ FETCHING (compute error, 429 на submit)
//	    ↘ AUTH_EXPIRED
//
// Из любого нетерминального состояния возможен переход в STOPPED
// (отмена контекста).
type WorkerState string

const (
	// WorkerStateFetching — запрос новой задачи.
	WorkerStateFetching WorkerState = "FETCHING"

	// WorkerStateComputing — вычисление результата.
	WorkerStateComputing WorkerState = "COMPUTING"

	// WorkerStateSubmitting — отправка результата.
	WorkerStateSubmitting WorkerState = "SUBMITTING"

	// WorkerStatePacing — короткая пауза между циклами.
	WorkerStatePacing WorkerState = "PACING"

	// WorkerStateStopped — цикл завершён (работы нет, ошибка fetch или отмена).
	WorkerStateStopped WorkerState = "STOPPED"

	// WorkerStateAuthExpired — токен больше не валиден.
	WorkerStateAuthExpired WorkerState = "AUTH_EXPIRED"
)

// workerTransitions — таблица допустимых переходов.
var workerTransitions = map[WorkerState][]WorkerState{
	WorkerStateFetching: {
		WorkerStateFetching,
		WorkerStateComputing,
		WorkerStateStopped,
		WorkerStateAuthExpired,
	},
	WorkerStateComputing: {
		WorkerStateFetching,
		WorkerStateSubmitting,
		WorkerStateStopped,
	},
	WorkerStateSubmitting: {
		WorkerStateFetching,
		WorkerStatePacing,
		WorkerStateStopped,
	},
	WorkerStatePacing: {
		WorkerStateFetching,
		WorkerStateStopped,
	},
}

// IsTerminal возвращает true, если состояние финальное.
func (s WorkerState) IsTerminal() bool {
	switch s {
	case WorkerStateStopped, WorkerStateAuthExpired:
		return true
	default:
		return false
	}
}

// CanTransitionTo проверяет, допустим ли переход в next.
func (s WorkerState) CanTransitionTo(next WorkerState) bool {
	for _, allowed := range workerTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// StopReason — причина остановки воркера.
type StopReason string

const (
	// StopReasonNone — воркер ещё работает.
	StopReasonNone StopReason = ""

	// StopReasonNoMoreWork — сервис ответил, но задачи не выдал.
	StopReasonNoMoreWork StopReason = "no_more_work"

	// StopReasonFetchFailed — fetch не удался на уровне сети или протокола.
	// Цикл завершается так же, как при no_more_work.
	StopReasonFetchFailed StopReason = "fetch_failed"

	// StopReasonAuthExpired — токен просрочен.
	StopReasonAuthExpired StopReason = "auth_expired"

	// StopReasonInterrupted — остановлен оператором (отмена контекста).
	StopReasonInterrupted StopReason = "interrupted"

	// StopReasonCrashed — цикл упал с паникой.
	StopReasonCrashed StopReason = "crashed"
)
