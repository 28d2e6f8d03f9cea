package worker

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestProgress_FinalTickAlwaysReported(t *testing.T) {
	var last atomic.Int64

	// One report per hour: only the completion tick can get through
	p := NewProgress(1000, 1.0/3600, func(done, total int) {
		last.Store(int64(done))
	})
	// Consume the limiter's initial burst
	p.limiter.Allow()

	for i := 0; i < 1000; i++ {
		p.Tick()
	}

	if p.Done() != 1000 {
		t.Errorf("expected 1000 ticks recorded, got %d", p.Done())
	}
	if last.Load() != 1000 {
		t.Errorf("expected the final tick to report, last report was %d", last.Load())
	}
}

func TestProgress_Throttles(t *testing.T) {
	var reports atomic.Int64
	p := NewProgress(10000, 1, func(done, total int) {
		reports.Add(1)
	})

	for i := 0; i < 10000; i++ {
		p.Tick()
	}

	// Burst 1 plus the guaranteed completion report; a tight loop cannot
	// accumulate meaningful extra allowance at 1/s
	if n := reports.Load(); n > 5 {
		t.Errorf("expected heavy throttling, got %d reports", n)
	}
}

func TestProgress_ConcurrentTicks(t *testing.T) {
	var wg sync.WaitGroup
	p := NewProgress(4000, 1000, func(done, total int) {})

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				p.Tick()
			}
		}()
	}
	wg.Wait()

	if p.Done() != 4000 {
		t.Errorf("expected 4000 ticks, got %d", p.Done())
	}
}
