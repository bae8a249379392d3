// Package loop serializes every state change of a booth onto one goroutine.
//
// Handlers posted to a Loop run one at a time in posting order, so gesture
// handlers, controller actions and render ticks never overlap and need no
// locks between them. A Repeater schedules a task at a fixed refresh rate on
// top of a Loop.
package loop

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Do once the loop has stopped.
var ErrClosed = errors.New("loop closed")

// Loop is a FIFO of closures drained by Run.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool

	wake chan struct{}
	done chan struct{}
}

func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Run executes posted handlers until ctx is done. Handlers still queued at
// that point are dropped. Run must be called once.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	defer func() {
		l.mu.Lock()
		l.closed = true
		l.queue = nil
		l.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}

		for {
			f := l.next()
			if f == nil {
				break
			}
			f()
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
	}
}

func (l *Loop) next() func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil
	}
	f := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return f
}

// Post queues f without blocking. It reports false once the loop has stopped.
func (l *Loop) Post(f func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, f)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Do runs f on the loop and waits for it to return. Calling Do from inside a
// handler deadlocks.
func (l *Loop) Do(ctx context.Context, f func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		f()
	}) {
		return ErrClosed
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		// f may have been the last handler before shutdown
		select {
		case <-finished:
			return nil
		default:
			return ErrClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
