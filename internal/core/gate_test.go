package core

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestBusyGate_AcquireRelease(t *testing.T) {
	gate := NewBusyGate()

	if got := gate.ActiveCount(); got != 0 {
		t.Errorf("initial ActiveCount = %d, want 0", got)
	}

	if !gate.TryAcquire("a") {
		t.Fatal("first TryAcquire(a) failed")
	}
	if gate.TryAcquire("a") {
		t.Error("second TryAcquire(a) should fail while busy")
	}
	if !gate.TryAcquire("b") {
		t.Error("TryAcquire(b) should not be blocked by a")
	}
	if !gate.Busy("a") {
		t.Error("Busy(a) = false, want true")
	}
	if got := gate.ActiveCount(); got != 2 {
		t.Errorf("ActiveCount = %d, want 2", got)
	}

	gate.Release("a")

	if gate.Busy("a") {
		t.Error("Busy(a) after Release = true")
	}
	if !gate.TryAcquire("a") {
		t.Error("TryAcquire(a) after Release failed")
	}
}

func TestBusyGate_ConcurrentAcquire(t *testing.T) {
	gate := NewBusyGate()

	var wg sync.WaitGroup
	var wins atomic.Int32
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if gate.TryAcquire("same") {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := wins.Load(); got != 1 {
		t.Errorf("%d goroutines acquired the same key, want 1", got)
	}
}

func TestBusyGate_WaitForDrain(t *testing.T) {
	gate := NewBusyGate()
	gate.TryAcquire("x")

	go func() {
		time.Sleep(60 * time.Millisecond)
		gate.Release("x")
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := gate.WaitForDrain(ctx); err != nil {
		t.Errorf("WaitForDrain() error = %v", err)
	}
}

func TestBusyGate_WaitForDrainTimeout(t *testing.T) {
	gate := NewBusyGate()
	gate.TryAcquire("stuck")

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()

	if err := gate.WaitForDrain(ctx); err != context.DeadlineExceeded {
		t.Errorf("WaitForDrain() error = %v, want DeadlineExceeded", err)
	}
}

func TestGateKey_ScopedByClient(t *testing.T) {
	ctx := context.Background()
	if got := gateKey(ctx, ControlSchemaSave); got != "schema.save" {
		t.Errorf("gateKey without client = %q", got)
	}

	ctx = ContextWithClient(ctx, "10.0.0.1")
	if got := gateKey(ctx, ControlSchemaSave); got != "schema.save@10.0.0.1" {
		t.Errorf("gateKey with client = %q", got)
	}
}
