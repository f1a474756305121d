// Package matrix реализует детерминированные матричные операции.
//
// Включает:
//   - Generate — генерация матрицы из seed (линейная конгруэнтная рекуррента)
//   - Multiply — стандартное матричное произведение
//   - Fingerprint — SHA-256 от канонической сериализации, приведённый по модулю
//
// Все функции чистые: одинаковые входы дают одинаковый результат,
// скрытого состояния нет. Сериализация (Flatten) и порядок обхода
// (row-major) совпадают с эталонной реализацией сервиса — от этого
// зависит совместимость отправляемых результатов.
package matrix
