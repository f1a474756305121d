package taskapi

import "errors"

// Ошибки клиента. Обе классифицируются как GenericFailure и
// возвращаются в Outcome.Err, а не через error.
var (
	// ErrNetwork — запрос не выполнен: таймаут, соединение, отмена.
	ErrNetwork = errors.New("task service request failed")

	// ErrMalformedResponse — ответ не является ожидаемым JSON.
	ErrMalformedResponse = errors.New("malformed task service response")
)
