package ratelimit

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func newSimBucket(capacity, perSecond float64) (*Bucket, *time.Time) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	b := NewBucket(Config{
		Capacity:        capacity,
		RefillPerSecond: perSecond,
		Now:             func() time.Time { return now },
	})
	return b, &now
}

func TestBurstThenDenied(t *testing.T) {
	b, _ := newSimBucket(5, 5.0/1800.0)

	for i := 0; i < 5; i++ {
		if !b.TryAcquire() {
			t.Fatalf("call %d denied, want allowed", i+1)
		}
	}
	if b.TryAcquire() {
		t.Fatal("6th call allowed, want denied")
	}
}

func TestRefillGrantsExactlyOne(t *testing.T) {
	b, now := newSimBucket(5, 5.0/1800.0)

	for i := 0; i < 5; i++ {
		b.TryAcquire()
	}
	if b.TryAcquire() {
		t.Fatal("bucket should be empty")
	}

	// 360 simulated seconds is one token's worth of refill at 5/1800.
	*now = now.Add(360 * time.Second)

	if !b.TryAcquire() {
		t.Fatal("call after refill denied, want allowed")
	}
	if b.TryAcquire() {
		t.Fatal("second call after single-token refill allowed, want denied")
	}
}

func TestRefillClampsAtCapacity(t *testing.T) {
	b, now := newSimBucket(5, 5.0/1800.0)

	*now = now.Add(24 * time.Hour)

	for i := 0; i < 5; i++ {
		if !b.TryAcquire() {
			t.Fatalf("call %d denied after long idle, want allowed", i+1)
		}
	}
	if b.TryAcquire() {
		t.Fatal("6th call allowed, refill must clamp at capacity")
	}
}

func TestConcurrentAcquireNeverOversells(t *testing.T) {
	b, _ := newSimBucket(5, 0)

	var wg sync.WaitGroup
	granted := make(chan struct{}, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if b.TryAcquire() {
				granted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(granted)

	var n int
	for range granted {
		n++
	}
	if n != 5 {
		t.Fatalf("granted %d tokens, want exactly 5", n)
	}
}

func TestRegistryUnknownRouteIsUnguarded(t *testing.T) {
	r := NewRegistry(map[string]Config{
		"/auth/register": {Capacity: 1, RefillPerSecond: 0},
	})

	if err := r.Acquire("/auth/login"); err != nil {
		t.Fatalf("unguarded route: %v", err)
	}

	if err := r.Acquire("/auth/register"); err != nil {
		t.Fatalf("first guarded call: %v", err)
	}
	if err := r.Acquire("/auth/register"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("drained bucket err = %v, want ErrRateLimited", err)
	}
}
