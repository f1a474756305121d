// Package compute выполняет вычислительную часть задачи.
//
// Pipeline генерирует две матрицы параллельно, перемножает их,
// считает fingerprint и переводит его вместе с замером времени
// в два значения для отправки.
//
// Генерации выполняются в общем ограниченном пуле (semaphore),
// одном на процесс. Пул переиспользуется всеми воркерами.
package compute

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/shaiso/Nebula/internal/matrix"
	"github.com/shaiso/Nebula/internal/telemetry"
)

// Значения по умолчанию.
const (
	DefaultPoolSize = 16
	MaxPoolSize     = 16
)

// Result — значения для отправки.
type Result struct {
	// Result1 = t0 / fingerprint.
	Result1 float64

	// Result2 = fingerprint / (t1 - t0), либо 0, если t1 == t0.
	Result2 float64

	// Elapsed — (t1 - t0) в секундах.
	Elapsed float64

	// Fingerprint — fingerprint произведения матриц.
	Fingerprint int64
}

// Duration возвращает Elapsed как time.Duration.
func (r Result) Duration() time.Duration {
	return time.Duration(r.Elapsed * float64(time.Second))
}

// Pipeline — вычислитель задач.
type Pipeline struct {
	pool    *semaphore.Weighted
	modulus int64
	now     func() time.Time
}

// Config — конфигурация Pipeline.
type Config struct {
	// PoolSize — размер пула генераций (default: 16, максимум 16).
	PoolSize int

	// Modulus — модуль fingerprint (default: 10 000 000).
	Modulus int64

	// Now — источник времени (опционально, для тестов).
	Now func() time.Time
}

// New создаёт новый Pipeline.
func New(cfg Config) *Pipeline {
	poolSize := cfg.PoolSize
	if poolSize <= 0 || poolSize > MaxPoolSize {
		poolSize = DefaultPoolSize
	}

	modulus := cfg.Modulus
	if modulus <= 0 {
		modulus = matrix.DefaultModulus
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Pipeline{
		pool:    semaphore.NewWeighted(int64(poolSize)),
		modulus: modulus,
		now:     now,
	}
}

// Run вычисляет результат для пары seed.
//
//  1. t0 — текущее время в миллисекундах
//  2. A и B генерируются параллельно в пуле
//  3. C = A·B, f = Fingerprint(C)
//  4. t1 — текущее время
//  5. result_1 = t0/f, result_2 = f/(t1-t0)
//
// f == 0 возвращает ErrZeroFingerprint вместо Inf.
func (p *Pipeline) Run(ctx context.Context, seed1, seed2 int64, size int) (res Result, err error) {
	if size <= 0 {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	defer func() {
		if r := recover(); r != nil {
			res = Result{}
			err = fmt.Errorf("%w: panic: %v", ErrComputeFailed, r)
		}
	}()

	t0 := millis(p.now())

	a, b, err := p.generatePair(ctx, seed1, seed2, size)
	if err != nil {
		return Result{}, err
	}

	c, err := matrix.Multiply(a, b)
	if err != nil {
		return Result{}, fmt.Errorf("%w: multiply: %v", ErrComputeFailed, err)
	}

	f, err := matrix.Fingerprint(c, p.modulus)
	if err != nil {
		return Result{}, fmt.Errorf("%w: fingerprint: %v", ErrComputeFailed, err)
	}

	t1 := millis(p.now())

	res, err = Values(t0, t1, f)
	if err != nil {
		return Result{}, err
	}

	telemetry.ComputeDuration.Observe(res.Elapsed)
	return res, nil
}

// Values переводит fingerprint и замеры времени (мс) в значения для отправки.
func Values(t0, t1 float64, f int64) (Result, error) {
	if f == 0 {
		return Result{}, ErrZeroFingerprint
	}

	fp := float64(f)
	res := Result{
		Result1:     t0 / fp,
		Elapsed:     (t1 - t0) / 1000,
		Fingerprint: f,
	}
	if t1 != t0 {
		res.Result2 = fp / (t1 - t0)
	}

	return res, nil
}

// generatePair генерирует две матрицы параллельно.
func (p *Pipeline) generatePair(ctx context.Context, seed1, seed2 int64, size int) (matrix.Matrix, matrix.Matrix, error) {
	var a, b matrix.Matrix

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := p.generate(gctx, seed1, size)
		a = m
		return err
	})
	g.Go(func() error {
		m, err := p.generate(gctx, seed2, size)
		b = m
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

// generate занимает слот пула на время одной генерации.
func (p *Pipeline) generate(ctx context.Context, seed int64, size int) (m matrix.Matrix, err error) {
	if err := p.pool.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer p.pool.Release(1)

	// Паника в горутине пула не перехватывается recover в Run.
	defer func() {
		if r := recover(); r != nil {
			m = nil
			err = fmt.Errorf("%w: generate: panic: %v", ErrComputeFailed, r)
		}
	}()

	return matrix.Generate(seed, size), nil
}

// millis возвращает время в миллисекундах с дробной частью.
func millis(t time.Time) float64 {
	return float64(t.UnixMicro()) / 1000
}
