package assist

import (
	"fmt"
	"sync"
)

// Limiter counts model calls against an upper bound.
type Limiter struct {
	max   int
	count int
	mu    sync.Mutex
}

// NewLimiter creates a limiter allowing max calls. Zero means unlimited.
func NewLimiter(max int) *Limiter {
	return &Limiter{max: max}
}

// Increment counts one call and fails once the bound is exceeded.
func (l *Limiter) Increment() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.max > 0 && l.count >= l.max {
		return fmt.Errorf("%w: %d calls", ErrLimitExceeded, l.max)
	}
	l.count++

	return nil
}

// Count returns the number of calls made.
func (l *Limiter) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.count
}

// Remaining returns how many calls are left, or -1 when unlimited.
func (l *Limiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.max == 0 {
		return -1
	}
	return max(0, l.max-l.count)
}
