package domain

// Task — единица работы, выданная сервисом задач.
//
// Task создаётся успешным ответом на fetch и потребляется ровно одним
// циклом compute+submit. После этого task отбрасывается — повторно
// не выполняется и обратно в очередь не возвращается.
type Task struct {
	// ID — идентификатор задачи на стороне сервиса.
	ID string `json:"task_id"`

	// Seed1 — seed для матрицы A.
	Seed1 int64 `json:"seed1"`

	// Seed2 — seed для матрицы B.
	Seed2 int64 `json:"seed2"`

	// MatrixSize — размер квадратных матриц.
	MatrixSize int `json:"matrix_size"`
}

// IsValid проверяет, что task пригоден для вычисления.
func (t *Task) IsValid() bool {
	return t != nil && t.MatrixSize > 0
}

// ShortToken возвращает первые 8 символов токена для логов.
// Полный токен никогда не пишется в лог.
func ShortToken(token string) string {
	if len(token) <= 8 {
		return token
	}
	return token[:8]
}
