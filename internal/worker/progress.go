package worker

import (
	"sync/atomic"

	"golang.org/x/time/rate"
)

// Progress aggregates sweep counts across concurrently running chains and
// reports through a rate-limited callback, so long runs can show status
// without flooding the terminal. Safe for use from multiple goroutines.
type Progress struct {
	total   int64
	done    int64
	limiter *rate.Limiter
	report  func(done, total int)
}

// NewProgress creates a progress aggregator over total ticks that invokes
// report at most perSecond times per second. The final tick is always
// reported.
func NewProgress(total int, perSecond float64, report func(done, total int)) *Progress {
	if perSecond <= 0 {
		perSecond = 1
	}
	return &Progress{
		total:   int64(total),
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
		report:  report,
	}
}

// Tick records one completed sweep and reports if the limiter allows it.
// Completion always reports, limiter or not.
func (p *Progress) Tick() {
	done := atomic.AddInt64(&p.done, 1)
	if done == p.total || p.limiter.Allow() {
		p.report(int(done), int(p.total))
	}
}

// Done returns the number of ticks recorded so far
func (p *Progress) Done() int {
	return int(atomic.LoadInt64(&p.done))
}
