package domain

import "testing"

func TestWorkerState_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to WorkerState
		want     bool
	}{
		{WorkerStateFetching, WorkerStateComputing, true},
		{WorkerStateFetching, WorkerStateFetching, true},
		{WorkerStateFetching, WorkerStateAuthExpired, true},
		{WorkerStateFetching, WorkerStateSubmitting, false},
		{WorkerStateComputing, WorkerStateSubmitting, true},
		{WorkerStateComputing, WorkerStateFetching, true},
		{WorkerStateComputing, WorkerStatePacing, false},
		{WorkerStateSubmitting, WorkerStatePacing, true},
		{WorkerStateSubmitting, WorkerStateFetching, true},
		{WorkerStateSubmitting, WorkerStateAuthExpired, false},
		{WorkerStatePacing, WorkerStateFetching, true},
		{WorkerStatePacing, WorkerStateComputing, false},
		{WorkerStateStopped, WorkerStateFetching, false},
		{WorkerStateAuthExpired, WorkerStateFetching, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestWorkerState_StopAllowedFromActiveStates(t *testing.T) {
	for _, s := range []WorkerState{
		WorkerStateFetching,
		WorkerStateComputing,
		WorkerStateSubmitting,
		WorkerStatePacing,
	} {
		if s.IsTerminal() {
			t.Errorf("%s: must not be terminal", s)
		}
		if !s.CanTransitionTo(WorkerStateStopped) {
			t.Errorf("%s: must allow STOPPED", s)
		}
	}
}

func TestWorkerState_IsTerminal(t *testing.T) {
	if !WorkerStateStopped.IsTerminal() {
		t.Error("STOPPED must be terminal")
	}
	if !WorkerStateAuthExpired.IsTerminal() {
		t.Error("AUTH_EXPIRED must be terminal")
	}
}

func TestWorkerStats_Earned(t *testing.T) {
	s := WorkerStats{Successes: 4}
	if got := s.Earned(0.5); got != 2 {
		t.Errorf("Earned(0.5) = %v, want 2", got)
	}

	var zero WorkerStats
	if got := zero.Earned(DefaultRewardPerSuccess); got != 0 {
		t.Errorf("Earned on empty stats = %v, want 0", got)
	}
}

func TestTask_IsValid(t *testing.T) {
	var nilTask *Task
	if nilTask.IsValid() {
		t.Error("nil task must be invalid")
	}
	if (&Task{ID: "t", MatrixSize: 0}).IsValid() {
		t.Error("zero size must be invalid")
	}
	if !(&Task{ID: "t", Seed1: -5, Seed2: 7, MatrixSize: 2}).IsValid() {
		t.Error("negative seeds are allowed")
	}
}

func TestShortToken(t *testing.T) {
	tests := map[string]string{
		"":                    "",
		"abc":                 "abc",
		"12345678":            "12345678",
		"1234567890abcdefxyz": "12345678",
	}
	for in, want := range tests {
		if got := ShortToken(in); got != want {
			t.Errorf("ShortToken(%q) = %q, want %q", in, got, want)
		}
	}
}
