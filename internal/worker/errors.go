package worker

import "errors"

// Ошибки воркера.
var (
	// ErrInvalidTransition — переход не разрешён таблицей состояний.
	ErrInvalidTransition = errors.New("invalid worker state transition")

	// ErrMissingDependency — не задан обязательный компонент.
	ErrMissingDependency = errors.New("missing worker dependency")
)
