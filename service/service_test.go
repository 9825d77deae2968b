package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yourusername/floodgate/core"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Now()}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type countingRecorder struct {
	mu      sync.Mutex
	allowed int
	denied  int
	updates int
}

func (r *countingRecorder) RecordAdmission(allowed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if allowed {
		r.allowed++
	} else {
		r.denied++
	}
}

func (r *countingRecorder) RecordConfigUpdate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
}

func newTestService(t *testing.T, cfg core.Config, clock *fakeClock, rec Recorder) *RateLimiterService {
	t.Helper()
	svc, err := New(cfg, nil, rec, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return svc
}

func TestCheckAdmission_BurstThenRefill(t *testing.T) {
	clock := newFakeClock()
	svc := newTestService(t, core.Config{Capacity: 5, RefillRate: 0.5}, clock, nil)

	// Full burst admitted
	for i := 0; i < 5; i++ {
		if d := svc.CheckAdmission(); !d.Allowed {
			t.Errorf("request %d should be admitted", i+1)
		}
	}

	// Sixth denied
	if d := svc.CheckAdmission(); d.Allowed {
		t.Error("request 6 should be denied")
	}

	// 2 seconds at 0.5 tokens/sec buys exactly one admission
	clock.Advance(2 * time.Second)
	if d := svc.CheckAdmission(); !d.Allowed {
		t.Error("request should be admitted after refill")
	}
	if d := svc.CheckAdmission(); d.Allowed {
		t.Error("immediate follow-up should be denied")
	}
}

func TestCheckAdmission_DenialIsIdempotent(t *testing.T) {
	clock := newFakeClock()
	svc := newTestService(t, core.Config{Capacity: 1, RefillRate: 0.1}, clock, nil)

	svc.CheckAdmission()

	for i := 0; i < 5; i++ {
		d := svc.CheckAdmission()
		if d.Allowed {
			t.Fatalf("check %d should be denied", i+1)
		}
		if d.Remaining != 0 {
			t.Errorf("check %d mutated tokens: remaining = %.4f", i+1, d.Remaining)
		}
	}
}

func TestUpdateConfig_PreservesTokens(t *testing.T) {
	clock := newFakeClock()
	svc := newTestService(t, core.Config{Capacity: 5, RefillRate: 0.5}, clock, nil)

	// Drain, then raise capacity while the bucket is empty
	for i := 0; i < 5; i++ {
		svc.CheckAdmission()
	}

	applied, err := svc.UpdateConfig(10, 0.5)
	if err != nil {
		t.Fatalf("UpdateConfig() failed: %v", err)
	}
	if applied.Capacity != 10 || applied.RefillRate != 0.5 {
		t.Errorf("applied config = %+v, want {10 0.5}", applied)
	}

	status := svc.Snapshot()
	if status.Tokens != 0 {
		t.Errorf("tokens = %.2f, want 0 (clamped, not reset)", status.Tokens)
	}
	if d := svc.CheckAdmission(); d.Allowed {
		t.Error("check right after capacity raise should still be denied")
	}
}

func TestUpdateConfig_RejectsInvalidAndKeepsState(t *testing.T) {
	clock := newFakeClock()
	svc := newTestService(t, core.Config{Capacity: 5, RefillRate: 0.5}, clock, nil)
	svc.CheckAdmission()
	before := svc.Snapshot()

	if _, err := svc.UpdateConfig(-1, 0.5); !errors.Is(err, core.ErrNonPositiveCapacity) {
		t.Errorf("UpdateConfig(-1, 0.5) error = %v, want %v", err, core.ErrNonPositiveCapacity)
	}
	if _, err := svc.UpdateConfig(5, -0.5); !errors.Is(err, core.ErrNegativeRefillRate) {
		t.Errorf("UpdateConfig(5, -0.5) error = %v, want %v", err, core.ErrNegativeRefillRate)
	}

	if after := svc.Snapshot(); after != before {
		t.Errorf("bucket state changed on rejected update: %+v -> %+v", before, after)
	}
}

func TestCheckAdmission_ConcurrentCallersNeverOversell(t *testing.T) {
	clock := newFakeClock()
	// Zero refill: the number of admissions is exactly the capacity,
	// regardless of interleaving.
	svc := newTestService(t, core.Config{Capacity: 50, RefillRate: 0}, clock, nil)

	const goroutines = 10
	const checksPerGoroutine = 20

	var wg sync.WaitGroup
	results := make(chan bool, goroutines*checksPerGoroutine)
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < checksPerGoroutine; i++ {
				results <- svc.CheckAdmission().Allowed
			}
		}()
	}
	wg.Wait()
	close(results)

	admitted := 0
	for allowed := range results {
		if allowed {
			admitted++
		}
	}
	if admitted != 50 {
		t.Errorf("admitted = %d, want exactly 50", admitted)
	}
	if status := svc.Snapshot(); status.Tokens < 0 {
		t.Errorf("tokens went negative: %.4f", status.Tokens)
	}
}

func TestUpdateConfig_AtomicUnderConcurrentChecks(t *testing.T) {
	clock := newFakeClock()
	svc := newTestService(t, core.Config{Capacity: 20, RefillRate: 100}, clock, nil)

	stop := make(chan struct{})
	var wg sync.WaitGroup

	// Flip between two valid policies while checks are in flight.
	wg.Add(1)
	go func() {
		defer wg.Done()
		configs := []core.Config{
			{Capacity: 20, RefillRate: 100},
			{Capacity: 5, RefillRate: 10},
		}
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			cfg := configs[i%2]
			if _, err := svc.UpdateConfig(cfg.Capacity, cfg.RefillRate); err != nil {
				t.Errorf("UpdateConfig() failed: %v", err)
				return
			}
		}
	}()

	// Every decision must be internally consistent: never a remaining count
	// outside [0, limit], and limit always one of the two capacities.
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				d := svc.CheckAdmission()
				if d.Remaining < 0 || d.Remaining > d.Limit {
					t.Errorf("inconsistent decision: remaining %.4f, limit %.4f", d.Remaining, d.Limit)
					return
				}
				if d.Limit != 20 && d.Limit != 5 {
					t.Errorf("observed partially applied config: limit %.4f", d.Limit)
					return
				}
			}
		}()
	}

	// Let the checkers finish first, then stop the updater.
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	time.Sleep(50 * time.Millisecond)
	close(stop)
	<-done
}

func TestService_RecordsMetrics(t *testing.T) {
	clock := newFakeClock()
	rec := &countingRecorder{}
	svc := newTestService(t, core.Config{Capacity: 2, RefillRate: 0}, clock, rec)

	for i := 0; i < 5; i++ {
		svc.CheckAdmission()
	}
	if _, err := svc.UpdateConfig(4, 1); err != nil {
		t.Fatalf("UpdateConfig() failed: %v", err)
	}
	svc.UpdateConfig(-1, 1) // rejected, must not count

	if rec.allowed != 2 {
		t.Errorf("allowed = %d, want 2", rec.allowed)
	}
	if rec.denied != 3 {
		t.Errorf("denied = %d, want 3", rec.denied)
	}
	if rec.updates != 1 {
		t.Errorf("updates = %d, want 1", rec.updates)
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	_, err := New(core.Config{Capacity: 0, RefillRate: 1}, nil, nil)
	if !errors.Is(err, core.ErrNonPositiveCapacity) {
		t.Errorf("New() error = %v, want %v", err, core.ErrNonPositiveCapacity)
	}
}
