package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64

	leaveAtomic    uint64
	leaveFallback  uint64
	leaveFailures  uint64
	policyReloads  uint64
	policyFailures uint64

	mu        sync.RWMutex
	leaveMode string
	byOp      map[string]uint64
}

func New() *Collector {
	return &Collector{byOp: make(map[string]uint64)}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// RecordLeaveMutation counts one leave balance mutation by store mode.
func (c *Collector) RecordLeaveMutation(mode, operation string, err error) {
	if mode == "fallback" {
		atomic.AddUint64(&c.leaveFallback, 1)
	} else {
		atomic.AddUint64(&c.leaveAtomic, 1)
	}
	if err != nil {
		atomic.AddUint64(&c.leaveFailures, 1)
	}
	c.mu.Lock()
	c.byOp[mode+"."+operation]++
	c.mu.Unlock()
}

func (c *Collector) SetLeaveMode(mode string) {
	c.mu.Lock()
	c.leaveMode = mode
	c.mu.Unlock()
}

func (c *Collector) LeaveMode() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.leaveMode
}

func (c *Collector) RecordPolicyReload(err error) {
	atomic.AddUint64(&c.policyReloads, 1)
	if err != nil {
		atomic.AddUint64(&c.policyFailures, 1)
	}
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}

	c.mu.RLock()
	ops := make(map[string]uint64, len(c.byOp))
	for k, v := range c.byOp {
		ops[k] = v
	}
	mode := c.leaveMode
	c.mu.RUnlock()

	return map[string]any{
		"requestsTotal":          total,
		"errorsTotal":            errs,
		"rateLimitedTotal":       limited,
		"avgDurationMs":          avg,
		"totalDurationMs":        totalMs,
		"leaveMode":              mode,
		"leaveMutationsAtomic":   atomic.LoadUint64(&c.leaveAtomic),
		"leaveMutationsFallback": atomic.LoadUint64(&c.leaveFallback),
		"leaveMutationFailures":  atomic.LoadUint64(&c.leaveFailures),
		"leaveMutationsByOp":     ops,
		"policyReloadsTotal":     atomic.LoadUint64(&c.policyReloads),
		"policyReloadFailures":   atomic.LoadUint64(&c.policyFailures),
	}
}
