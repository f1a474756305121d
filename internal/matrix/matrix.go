package matrix

import (
	"crypto/sha256"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Параметры рекурренты генератора.
const (
	lcgA      int64 = 0x4b72e682d
	lcgB      int64 = 0x2675dcd22
	lcgModulo int64 = 1000
)

// DefaultModulus — модуль fingerprint по умолчанию.
const DefaultModulus int64 = 10_000_000

// Matrix — квадратная матрица, хранится построчно.
type Matrix [][]float64

// New создаёт нулевую матрицу rows × cols.
func New(rows, cols int) Matrix {
	m := make(Matrix, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}

// Size возвращает количество строк.
func (m Matrix) Size() int {
	return len(m)
}

// Generate строит матрицу size × size из seed.
//
// Каждая ячейка: next = (a*current + b) mod 1000, где current — значение
// предыдущей ячейки (для первой — seed). Цепочка идёт через всю матрицу
// в порядке row-major, а не заново для каждой строки.
//
// Рекуррента считается по модулю на каждом шаге, поэтому большие seed
// не переполняют int64. Результат совпадает с вычислением в длинной
// арифметике, включая отрицательные seed (остаток всегда неотрицательный).
func Generate(seed int64, size int) Matrix {
	if size <= 0 {
		return Matrix{}
	}

	m := New(size, size)
	current := floorMod(seed, lcgModulo)
	a := lcgA % lcgModulo
	b := lcgB % lcgModulo

	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			value := (a*current + b) % lcgModulo
			m[i][j] = float64(value)
			current = value
		}
	}

	return m
}

// Multiply возвращает произведение a·b.
func Multiply(a, b Matrix) (Matrix, error) {
	rows := len(a)
	if rows == 0 || len(b) == 0 {
		return nil, fmt.Errorf("%w: empty matrix", ErrDimensionMismatch)
	}

	inner := len(a[0])
	cols := len(b[0])
	if inner != len(b) {
		return nil, fmt.Errorf("%w: %dx%d · %dx%d", ErrDimensionMismatch, rows, inner, len(b), cols)
	}
	for i := range a {
		if len(a[i]) != inner {
			return nil, fmt.Errorf("%w: ragged row %d in left operand", ErrDimensionMismatch, i)
		}
	}
	for i := range b {
		if len(b[i]) != cols {
			return nil, fmt.Errorf("%w: ragged row %d in right operand", ErrDimensionMismatch, i)
		}
	}

	result := New(rows, cols)
	for i := 0; i < rows; i++ {
		row := result[i]
		for k := 0; k < inner; k++ {
			aik := a[i][k]
			bk := b[k]
			for j := 0; j < cols; j++ {
				row[j] += aik * bk[j]
			}
		}
	}

	return result, nil
}

// Flatten сериализует матрицу: каждое значение округляется до целого
// (как %.0f, половины к чётному) и склеивается без разделителей.
func Flatten(m Matrix) string {
	var sb strings.Builder
	for _, row := range m {
		for _, v := range row {
			sb.WriteString(strconv.FormatFloat(v, 'f', 0, 64))
		}
	}
	return sb.String()
}

// Fingerprint возвращает SHA-256(Flatten(m)) как big-endian число по модулю modulus.
func Fingerprint(m Matrix, modulus int64) (int64, error) {
	if modulus <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidModulus, modulus)
	}

	sum := sha256.Sum256([]byte(Flatten(m)))

	n := new(big.Int).SetBytes(sum[:])
	n.Mod(n, big.NewInt(modulus))

	return n.Int64(), nil
}

// floorMod — остаток от деления, всегда в [0, m).
func floorMod(x, m int64) int64 {
	r := x % m
	if r < 0 {
		r += m
	}
	return r
}
