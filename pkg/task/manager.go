// Package task runs named background tasks that outlive the request that
// started them.
package task

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var (
	// ErrNotFound is returned when a task is not found.
	ErrNotFound = errors.New("task not found")

	// ErrAlreadyStarted is returned when a task is already started.
	ErrAlreadyStarted = errors.New("task already started")
)

// Task is a task that can be started and stopped.
type Task struct {
	id      string
	fn      func(context.Context) error
	started atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	err     error
}

// Manager manages tasks. Tasks run with the manager's context, so they keep
// running after the caller's context is done.
type Manager struct {
	m   sync.Map
	ctx context.Context
	wg  sync.WaitGroup
}

// NewManager returns a new task manager.
func NewManager(ctx context.Context) *Manager {
	return &Manager{
		m:   sync.Map{},
		ctx: ctx,
	}
}

// Add adds a task to the manager.
// If the task already exists, it is a no-op.
func (m *Manager) Add(id string, fn func(context.Context) error) {
	ctx, cancel := context.WithCancel(m.ctx)
	if _, loaded := m.m.LoadOrStore(id, &Task{
		id:     id,
		fn:     fn,
		ctx:    ctx,
		cancel: cancel,
	}); loaded {
		cancel()
	}
}

// Stop stops the task and removes it from the manager.
func (m *Manager) Stop(id string) error {
	v, ok := m.m.Load(id)
	if !ok {
		return ErrNotFound
	}

	p := v.(*Task)
	p.cancel()

	m.m.Delete(id)
	return nil
}

// Exists checks if a task exists.
func (m *Manager) Exists(id string) bool {
	_, ok := m.m.Load(id)
	return ok
}

// Run starts the task if it exists and sends its result to done.
// If the task is already running, it waits for it to finish instead.
func (m *Manager) Run(id string, done chan<- error) {
	v, ok := m.m.Load(id)
	if !ok {
		done <- ErrNotFound
		return
	}

	p := v.(*Task)
	if !p.started.CompareAndSwap(false, true) {
		<-p.ctx.Done()
		if p.err != nil {
			done <- p.err
			return
		}

		done <- p.ctx.Err()
		return
	}

	defer m.m.Delete(id)

	errc := make(chan error, 1)
	go func(ctx context.Context) {
		errc <- p.fn(ctx)
	}(p.ctx)

	select {
	case <-m.ctx.Done():
		p.cancel()
		done <- m.ctx.Err()
	case err := <-errc:
		p.err = err
		p.cancel()
		done <- err
	}
}

// Go adds the task and runs it in the background. The returned channel
// receives the task result.
func (m *Manager) Go(id string, fn func(context.Context) error) <-chan error {
	done := make(chan error, 1)
	m.Add(id, fn)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.Run(id, done)
	}()
	return done
}

// Wait blocks until every running task has returned.
func (m *Manager) Wait() {
	m.wg.Wait()
}
