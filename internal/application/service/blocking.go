package service

import (
	"context"
	"sync"

	"behat-locator/internal/application/port/output"

	"github.com/google/uuid"
)

var _ output.BusyTracker = (*Blocking)(nil)

// Blocking counts pending waits. Each Delay hands out a guard that is
// released once; the tracker is idle when no guard is held.
type Blocking struct {
	mu      sync.Mutex
	pending map[string]string
	idle    chan struct{}
	logger  output.LoggerPort
}

func NewBlocking(logger output.LoggerPort) *Blocking {
	idle := make(chan struct{})
	close(idle)
	return &Blocking{
		pending: make(map[string]string),
		idle:    idle,
		logger:  logger,
	}
}

type guard struct {
	b    *Blocking
	id   string
	once sync.Once
}

func (g *guard) Release() {
	g.once.Do(func() {
		g.b.release(g.id)
	})
}

func (b *Blocking) Delay(reason string) output.BusyGuard {
	id := uuid.NewString()

	b.mu.Lock()
	if len(b.pending) == 0 {
		b.idle = make(chan struct{})
	}
	b.pending[id] = reason
	n := len(b.pending)
	b.mu.Unlock()

	b.logger.Debug("busy", "id", id, "reason", reason, "pending", n)
	return &guard{b: b, id: id}
}

func (b *Blocking) release(id string) {
	b.mu.Lock()
	reason, ok := b.pending[id]
	if !ok {
		b.mu.Unlock()
		return
	}
	delete(b.pending, id)
	n := len(b.pending)
	if n == 0 {
		close(b.idle)
	}
	b.mu.Unlock()

	b.logger.Debug("released", "id", id, "reason", reason, "pending", n)
}

func (b *Blocking) Busy() bool {
	return b.Pending() > 0
}

func (b *Blocking) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// WaitIdle blocks until nothing is pending or ctx is done.
func (b *Blocking) WaitIdle(ctx context.Context) error {
	b.mu.Lock()
	idle := b.idle
	b.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
