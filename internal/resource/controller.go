package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits. A zero field disables that limit.
type Config struct {
	// MaxConcurrentQueries is the maximum number of queries scored at once.
	MaxConcurrentQueries int64

	// RequestsPerSecond is the sustained admission rate for Allow.
	RequestsPerSecond float64

	// Burst is the token bucket size for Allow.
	// If 0, defaults to max(1, ceil(RequestsPerSecond)).
	Burst int

	// IOLimitBytesPerSec is the maximum snapshot read/write throughput.
	IOLimitBytesPerSec int64
}

// Controller enforces the limits of a Config. A nil *Controller enforces nothing.
type Controller struct {
	cfg Config

	querySem *semaphore.Weighted // nil if unlimited
	inFlight atomic.Int64

	reqLimiter *rate.Limiter // nil if unlimited
	ioLimiter  *rate.Limiter // nil if unlimited
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MaxConcurrentQueries > 0 {
		c.querySem = semaphore.NewWeighted(cfg.MaxConcurrentQueries)
	}

	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = int(cfg.RequestsPerSecond)
			if float64(burst) < cfg.RequestsPerSecond {
				burst++
			}
			burst = max(burst, 1)
		}
		c.reqLimiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// Config returns the limits the controller was created with.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// AcquireQuery reserves a query slot, blocking until one is free or ctx is
// canceled.
func (c *Controller) AcquireQuery(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if c.querySem != nil {
		if err := c.querySem.Acquire(ctx, 1); err != nil {
			return err
		}
	}
	c.inFlight.Add(1)
	return nil
}

// TryAcquireQuery reserves a query slot without blocking.
func (c *Controller) TryAcquireQuery() bool {
	if c == nil {
		return true
	}
	if c.querySem != nil && !c.querySem.TryAcquire(1) {
		return false
	}
	c.inFlight.Add(1)
	return true
}

// ReleaseQuery releases a slot taken by AcquireQuery or TryAcquireQuery.
func (c *Controller) ReleaseQuery() {
	if c == nil {
		return
	}
	if c.querySem != nil {
		c.querySem.Release(1)
	}
	c.inFlight.Add(-1)
}

// InFlightQueries returns the number of queries currently holding a slot.
func (c *Controller) InFlightQueries() int64 {
	if c == nil {
		return 0
	}
	return c.inFlight.Load()
}

// Allow reports whether one more request may be admitted now.
func (c *Controller) Allow() bool {
	if c == nil || c.reqLimiter == nil {
		return true
	}
	return c.reqLimiter.Allow()
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
// Requests larger than the bucket are split.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}
