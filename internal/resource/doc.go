// Package resource bounds the work a process accepts.
//
// A Controller enforces up to three independent limits. A zero Config field
// disables the corresponding limit, and every method of a nil *Controller is
// a no-op.
//
// # Query slots
//
// A weighted semaphore caps how many queries are scored at once. Waiting for
// a slot honors the context:
//
//	rc := resource.NewController(resource.Config{MaxConcurrentQueries: 8})
//
//	if err := rc.AcquireQuery(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseQuery()
//
// # Request rate
//
// Allow admits requests through a token bucket and never blocks. The HTTP
// API answers 429 when it returns false.
//
// # Snapshot I/O
//
// AcquireIO and the RateLimitedReader and RateLimitedWriter wrappers throttle
// export and import to IOLimitBytesPerSec:
//
//	w := resource.NewRateLimitedWriter(ctx, file, rc)
package resource
