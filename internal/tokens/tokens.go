// Package tokens читает список токенов и ведёт журнал просроченных токенов.
package tokens

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// ErrNoTokens — файл токенов пуст.
var ErrNoTokens = errors.New("no tokens")

// Load читает токены из файла: каждая непустая строка (после trim) — токен.
// Отсутствие файла возвращает ошибку, оборачивающую os.ErrNotExist.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tokens file: %w", err)
	}
	defer f.Close()

	var tokens []string
	scanner := bufio.NewScanner(f)
	// Длинные JWT не помещаются в буфер по умолчанию.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			tokens = append(tokens, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read tokens file: %w", err)
	}

	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoTokens, path)
	}

	return tokens, nil
}

// ExpiredLog — append-only журнал просроченных токенов.
//
// Каждая строка пишется одним Write под мьютексом, поэтому строки
// разных воркеров не перемешиваются.
type ExpiredLog struct {
	mu   sync.Mutex
	file *os.File
}

// OpenExpiredLog открывает (или создаёт) журнал для дозаписи.
func OpenExpiredLog(path string) (*ExpiredLog, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open expired log: %w", err)
	}
	return &ExpiredLog{file: f}, nil
}

// Record дописывает токен отдельной строкой.
func (l *ExpiredLog) Record(token string) error {
	line := []byte(token + "\n")

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return fmt.Errorf("record expired token: %w", os.ErrClosed)
	}
	if _, err := l.file.Write(line); err != nil {
		return fmt.Errorf("record expired token: %w", err)
	}
	return nil
}

// Close закрывает журнал. Повторный вызов безопасен.
func (l *ExpiredLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
