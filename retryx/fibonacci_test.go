package retryx

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFibonacciSequence(t *testing.T) {
	f := NewFibonacci(100 * time.Millisecond)
	want := []time.Duration{
		100 * time.Millisecond,
		100 * time.Millisecond,
		200 * time.Millisecond,
		300 * time.Millisecond,
		500 * time.Millisecond,
	}
	for i, w := range want {
		if got := f.Next(); got != w {
			t.Errorf("Next() #%d = %v, want %v", i, got, w)
		}
	}
}

func TestDoSucceedsEventually(t *testing.T) {
	attempts := 0
	got, err := Do(context.Background(), time.Millisecond, 3, func(attempt int) (int, error) {
		attempts++
		if attempt < 2 {
			return 0, errors.New("not yet")
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got != 42 {
		t.Errorf("Do() = %d, want 42", got)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestDoExhaustsRetries(t *testing.T) {
	attempts := 0
	_, err := Do(context.Background(), time.Millisecond, 3, func(attempt int) (int, error) {
		attempts++
		return 0, errors.New("always fails")
	})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}
