// Package lifecycle runs startup and shutdown hooks for the long-lived
// subsystems and aggregates their readiness.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// ErrShutdownTimeout is returned when shutdown hooks outlive the drain
// window.
var ErrShutdownTimeout = errors.New("shutdown timed out")

// ReadinessChecker is consulted by Readiness.
type ReadinessChecker interface {
	Ready() bool
}

// CheckFunc adapts a plain function to ReadinessChecker.
type CheckFunc func() bool

func (f CheckFunc) Ready() bool { return f() }

// Coordinator owns the process context. Startup hooks run as soon as they
// are registered; shutdown hooks are expected to block on Context().Done()
// before releasing their resources.
type Coordinator struct {
	ctx    context.Context
	cancel context.CancelFunc

	starting sync.WaitGroup
	stopping sync.WaitGroup
	pending  atomic.Int32
	started  atomic.Bool

	mu     sync.RWMutex
	checks map[string]ReadinessChecker
}

func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{ctx: ctx, cancel: cancel, checks: map[string]ReadinessChecker{}}
}

// Context is cancelled when Shutdown begins.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

func (c *Coordinator) OnStartup(fn func()) {
	c.starting.Go(fn)
}

func (c *Coordinator) OnShutdown(fn func()) {
	c.pending.Add(1)
	c.stopping.Go(func() {
		defer c.pending.Add(-1)
		fn()
	})
}

// Check registers or replaces a named readiness check.
func (c *Coordinator) Check(name string, checker ReadinessChecker) {
	c.mu.Lock()
	c.checks[name] = checker
	c.mu.Unlock()
}

// Ready reports whether every startup hook has returned.
func (c *Coordinator) Ready() bool {
	return c.started.Load()
}

// Readiness combines Ready with every registered check and reports each
// check by name.
func (c *Coordinator) Readiness() (bool, map[string]bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ready := c.Ready()
	status := make(map[string]bool, len(c.checks))
	for name, check := range c.checks {
		status[name] = check.Ready()
		ready = ready && status[name]
	}
	return ready, status
}

// WaitForStartup blocks until the startup hooks registered so far return.
func (c *Coordinator) WaitForStartup() {
	c.starting.Wait()
	c.started.Store(true)
}

// Shutdown cancels the context and waits up to timeout for the shutdown
// hooks. On timeout the error names how many hooks were still running.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.stopping.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		return fmt.Errorf("%w after %s: %d hooks still running", ErrShutdownTimeout, timeout, c.pending.Load())
	}
}
