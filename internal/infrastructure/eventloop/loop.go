// Package eventloop is a single-threaded cooperative task queue standing in
// for a page's main thread.
package eventloop

import (
	"sync"

	"critical-images-beacon/internal/application/port/output"
)

var (
	_ output.EventTarget = (*Loop)(nil)
	_ output.Scheduler   = (*Loop)(nil)
)

type Loop struct {
	mu       sync.Mutex
	queue    []func()
	handlers map[string][]func()
}

func New() *Loop {
	return &Loop{
		handlers: make(map[string][]func()),
	}
}

// AddHandler registers fn for event. Handlers run in registration order and
// stay registered for the lifetime of the loop.
func (l *Loop) AddHandler(event string, fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers[event] = append(l.handlers[event], fn)
}

// Post appends fn to the queue. It runs after everything queued before it,
// including the task that is currently executing.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.queue = append(l.queue, fn)
}

// Dispatch queues one task that invokes the handlers of event.
func (l *Loop) Dispatch(event string) {
	l.mu.Lock()
	handlers := append([]func(){}, l.handlers[event]...)
	l.mu.Unlock()

	l.Post(func() {
		for _, h := range handlers {
			h()
		}
	})
}

// RunUntilIdle executes queued tasks on the calling goroutine until the queue
// is empty and returns the number of tasks run.
func (l *Loop) RunUntilIdle() int {
	n := 0
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return n
		}
		task := l.queue[0]
		l.queue = l.queue[1:]
		l.mu.Unlock()

		task()
		n++
	}
}

func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}
