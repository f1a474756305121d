package matrix

import "errors"

// Ошибки матричных операций.
var (
	// ErrDimensionMismatch — размеры матриц несовместимы для умножения.
	ErrDimensionMismatch = errors.New("matrix dimension mismatch")

	// ErrInvalidModulus — модуль fingerprint должен быть положительным.
	ErrInvalidModulus = errors.New("invalid fingerprint modulus")
)
