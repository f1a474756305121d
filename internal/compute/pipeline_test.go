package compute

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeClock отдаёт заданные моменты времени по очереди.
type fakeClock struct {
	mu    sync.Mutex
	times []time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.times) == 0 {
		panic("fakeClock exhausted")
	}
	t := c.times[0]
	if len(c.times) > 1 {
		c.times = c.times[1:]
	}
	return t
}

func TestRun_EndToEnd(t *testing.T) {
	t0 := time.UnixMilli(1_700_000_000_000)
	t1 := t0.Add(250 * time.Millisecond)
	clock := &fakeClock{times: []time.Time{t0, t1}}

	p := New(Config{Now: clock.Now})

	res, err := p.Run(context.Background(), 1, 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	const f = 9527532
	if res.Fingerprint != f {
		t.Fatalf("expected fingerprint %d, got %d", f, res.Fingerprint)
	}

	wantR1 := 1_700_000_000_000.0 / f
	wantR2 := f / 250.0
	if math.Abs(res.Result1-wantR1) > 1e-9 {
		t.Errorf("result_1: expected %v, got %v", wantR1, res.Result1)
	}
	if math.Abs(res.Result2-wantR2) > 1e-9 {
		t.Errorf("result_2: expected %v, got %v", wantR2, res.Result2)
	}
	if math.Abs(res.Elapsed-0.25) > 1e-9 {
		t.Errorf("elapsed: expected 0.25, got %v", res.Elapsed)
	}
	if res.Duration() != 250*time.Millisecond {
		t.Errorf("expected duration 250ms, got %v", res.Duration())
	}
}

func TestRun_Deterministic(t *testing.T) {
	p := New(Config{})

	first, err := p.Run(context.Background(), 12345, 67890, 24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := p.Run(context.Background(), 12345, 67890, 24)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again.Fingerprint != first.Fingerprint {
			t.Fatalf("fingerprint changed between runs: %d != %d", first.Fingerprint, again.Fingerprint)
		}
	}
}

func TestRun_ZeroFingerprint(t *testing.T) {
	// С модулем 1 любой fingerprint равен нулю.
	p := New(Config{Modulus: 1})

	res, err := p.Run(context.Background(), 1, 2, 2)
	if !errors.Is(err, ErrZeroFingerprint) {
		t.Fatalf("expected ErrZeroFingerprint, got %v", err)
	}
	if math.IsInf(res.Result1, 0) || math.IsNaN(res.Result1) {
		t.Errorf("result must not carry Inf/NaN, got %v", res.Result1)
	}
}

func TestRun_InvalidSize(t *testing.T) {
	p := New(Config{})

	for _, size := range []int{0, -3} {
		if _, err := p.Run(context.Background(), 1, 2, size); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("size %d: expected ErrInvalidSize, got %v", size, err)
		}
	}
}

func TestRun_PoolExhaustedRespectsContext(t *testing.T) {
	p := New(Config{PoolSize: 2})

	// Занимаем весь пул.
	if err := p.pool.Acquire(context.Background(), 2); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer p.pool.Release(2)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.Run(ctx, 1, 2, 2)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestRun_ConcurrentCallersShareOnePool(t *testing.T) {
	p := New(Config{PoolSize: 2})

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			if _, err := p.Run(context.Background(), seed, seed+1, 8); err != nil && !errors.Is(err, ErrZeroFingerprint) {
				errs <- err
			}
		}(int64(i))
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValues(t *testing.T) {
	tests := []struct {
		name    string
		t0, t1  float64
		f       int64
		want    Result
		wantErr error
	}{
		{
			name: "regular",
			t0:   1000, t1: 1500, f: 250,
			want: Result{Result1: 4, Result2: 0.5, Elapsed: 0.5, Fingerprint: 250},
		},
		{
			name: "zero elapsed gives zero result_2",
			t0:   2000, t1: 2000, f: 10,
			want: Result{Result1: 200, Result2: 0, Elapsed: 0, Fingerprint: 10},
		},
		{
			name: "zero fingerprint",
			t0:   2000, t1: 2100, f: 0,
			wantErr: ErrZeroFingerprint,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Values(tt.t0, tt.t1, tt.f)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestNew_ClampsPoolSize(t *testing.T) {
	p := New(Config{PoolSize: 64})

	// Пул не больше MaxPoolSize: 17-й слот не выдаётся.
	if !p.pool.TryAcquire(MaxPoolSize) {
		t.Fatal("expected to acquire MaxPoolSize slots")
	}
	defer p.pool.Release(MaxPoolSize)
	if p.pool.TryAcquire(1) {
		p.pool.Release(1)
		t.Error("pool must be bounded by MaxPoolSize")
	}
}
