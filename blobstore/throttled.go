package blobstore

import (
	"context"

	"golang.org/x/time/rate"
)

// Throttled wraps a Store and limits its byte throughput. Every read and
// write consumes limiter budget proportional to the blob size, so a table
// rewriting large blobs in a loop cannot starve other users of a shared
// backend.
type Throttled struct {
	inner   Store
	limiter *rate.Limiter
}

// NewThrottled creates a Throttled store allowing roughly bytesPerSec of
// combined read and write traffic. A non-positive limit means unlimited.
func NewThrottled(inner Store, bytesPerSec int64) *Throttled {
	var limiter *rate.Limiter
	if bytesPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(bytesPerSec), int(bytesPerSec))
	}
	return &Throttled{
		inner:   inner,
		limiter: limiter,
	}
}

// wait blocks until the limiter allows n more bytes or ctx is canceled.
// Blobs larger than the limiter's burst are charged at the burst size; they
// still pass, just after draining the full budget.
func (s *Throttled) wait(ctx context.Context, n int) error {
	if s.limiter == nil || n <= 0 {
		return nil
	}
	if burst := s.limiter.Burst(); n > burst {
		n = burst
	}
	return s.limiter.WaitN(ctx, n)
}

// Exists passes through without consuming budget; it moves no blob bytes.
func (s *Throttled) Exists(ctx context.Context, name string) (bool, error) {
	return s.inner.Exists(ctx, name)
}

// Read fetches the blob, then charges its size. The size is unknown before
// the fetch, so the charge is late; sustained readers still converge on the
// configured rate.
func (s *Throttled) Read(ctx context.Context, name string) ([]byte, error) {
	data, err := s.inner.Read(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.wait(ctx, len(data)); err != nil {
		return nil, err
	}
	return data, nil
}

// Write charges the blob size before handing it to the inner store.
func (s *Throttled) Write(ctx context.Context, name string, data []byte) error {
	if err := s.wait(ctx, len(data)); err != nil {
		return err
	}
	return s.inner.Write(ctx, name, data)
}

// Delete passes through without consuming budget.
func (s *Throttled) Delete(ctx context.Context, name string) error {
	return s.inner.Delete(ctx, name)
}
