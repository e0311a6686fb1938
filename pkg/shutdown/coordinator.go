// Package shutdown provides the process-wide stop signal shared by every loop.
package shutdown

import (
	"sync"
	"time"

	customlog "github.com/open-teleop/rover/pkg/log"
)

// Coordinator is a write-once stop signal. Once requested it is never cleared.
type Coordinator struct {
	logger customlog.Logger
	once   sync.Once
	done   chan struct{}

	mu     sync.Mutex
	reason string
}

// NewCoordinator creates a Coordinator with no stop requested.
func NewCoordinator(logger customlog.Logger) *Coordinator {
	return &Coordinator{
		logger: logger,
		done:   make(chan struct{}),
	}
}

// RequestStop sets the stop signal. Only the first call has any effect;
// it is safe to call from any goroutine, including a signal handler.
// It returns true for the call that actually set the signal.
func (c *Coordinator) RequestStop(reason string) bool {
	first := false
	c.once.Do(func() {
		c.mu.Lock()
		c.reason = reason
		c.mu.Unlock()
		close(c.done)
		first = true
	})
	if first {
		c.logger.Infof("Stop requested: %s", reason)
	}
	return first
}

// IsStopRequested reports whether RequestStop has been called.
func (c *Coordinator) IsStopRequested() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Done is closed when stop has been requested.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Reason returns the reason given to the first RequestStop, or "".
func (c *Coordinator) Reason() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reason
}

// Wait sleeps for d or until stop is requested, whichever comes first.
// It returns false if stop was requested.
func (c *Coordinator) Wait(d time.Duration) bool {
	if d <= 0 {
		return !c.IsStopRequested()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-c.done:
		return false
	case <-timer.C:
		return true
	}
}
