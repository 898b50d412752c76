package httpapi

import (
	"context"
	"sync"
	"sync/atomic"
)

// SessionRegistry tracks live journal sessions and supports graceful
// draining. When draining, new sessions are rejected while open ones get a
// grace period to save before they are cancelled.
//
// The mu mutex makes the draining check and wg.Add atomic in Add(), so no
// session can slip in between StartDraining and Wait.
type SessionRegistry struct {
	mu       sync.Mutex
	draining bool
	wg       sync.WaitGroup
	count    atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
}

// NewSessionRegistry creates a new SessionRegistry.
func NewSessionRegistry() *SessionRegistry {
	ctx, cancel := context.WithCancel(context.Background())
	return &SessionRegistry{ctx: ctx, cancel: cancel}
}

// Add registers a new session. It returns a context that ends when the
// registry cancels its sessions, and false if the registry is draining.
func (sr *SessionRegistry) Add() (context.Context, bool) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	if sr.draining {
		return nil, false
	}
	sr.wg.Add(1)
	sr.count.Add(1)
	return sr.ctx, true
}

// Done marks a session as ended. Must be called exactly once per successful Add.
func (sr *SessionRegistry) Done() {
	sr.count.Add(-1)
	sr.wg.Done()
}

// StartDraining makes future Add calls fail.
func (sr *SessionRegistry) StartDraining() {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	sr.draining = true
}

// IsDraining reports whether the registry is in draining mode.
func (sr *SessionRegistry) IsDraining() bool {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	return sr.draining
}

// ActiveCount returns the number of live sessions.
func (sr *SessionRegistry) ActiveCount() int64 {
	return sr.count.Load()
}

// Wait blocks until every session has ended.
func (sr *SessionRegistry) Wait() {
	sr.wg.Wait()
}

// Shutdown drains the registry, waits for sessions to end on their own
// until ctx is done, then cancels the rest and waits for them to unwind.
func (sr *SessionRegistry) Shutdown(ctx context.Context) {
	sr.StartDraining()

	done := make(chan struct{})
	go func() {
		sr.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		sr.cancel()
		<-done
	}
	sr.cancel()
}
