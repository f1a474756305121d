package compute

import "errors"

// Ошибки вычисления. Все они — ComputeError: задача считается
// неудачной, воркер продолжает работу со следующей задачей.
var (
	// ErrZeroFingerprint — fingerprint равен нулю, result_1 = t0/0 не определён.
	ErrZeroFingerprint = errors.New("fingerprint is zero")

	// ErrInvalidSize — размер матрицы не положительный.
	ErrInvalidSize = errors.New("invalid matrix size")

	// ErrComputeFailed — генерация, умножение или хеширование завершились ошибкой.
	ErrComputeFailed = errors.New("compute failed")
)
