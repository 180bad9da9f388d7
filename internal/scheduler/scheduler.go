package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// Scheduler serializes units of work onto a single logical execution context.
// All watchable state is read and mutated only from inside scheduled units.
type Scheduler interface {
	// Schedule enqueues fn and returns immediately. Units run strictly in
	// the order they were scheduled, across all callers.
	Schedule(fn func())

	// Execute schedules fn and blocks until it has run. A panic raised by fn
	// is re-raised on the calling goroutine.
	//
	// Calling Execute from inside a running unit deadlocks. Callers already in
	// the scheduler context must call fn directly or use Schedule.
	Execute(fn func())

	// Assert panics unless a unit is currently running.
	Assert()
}

const defaultName = "scheduler"

// Thread is the goroutine-backed Scheduler.
type Thread struct {
	name string

	mu      sync.Mutex
	queue   []func()
	stopped bool
	wake    chan struct{}

	running atomic.Bool

	startOnce sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

type Option func(*Thread)

func WithName(name string) Option {
	return func(t *Thread) {
		t.name = name
	}
}

func New(opts ...Option) *Thread {
	t := &Thread{
		name: defaultName,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start runs the thread until ctx is cancelled or Stop is called. Units
// scheduled before Start are kept and run first.
func (t *Thread) Start(ctx context.Context) {
	t.startOnce.Do(func() {
		ctx, t.cancel = context.WithCancel(ctx)
		go t.run(ctx)
	})
}

// Stop halts the thread after the currently running unit. Units still queued
// are dropped; later Schedule calls are dropped as well.
func (t *Thread) Stop() {
	t.mu.Lock()
	t.stopped = true
	dropped := len(t.queue)
	t.queue = nil
	t.mu.Unlock()

	// never started: nothing runs, but Execute callers must not hang
	t.startOnce.Do(func() {
		close(t.done)
	})
	if t.cancel != nil {
		t.cancel()
		<-t.done
	}
	if dropped > 0 {
		log.Debug().Str("module", "scheduler").Str("name", t.name).Int("dropped", dropped).Msg("stopped with pending units")
	}
}

func (t *Thread) Schedule(fn func()) {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		log.Warn().Str("module", "scheduler").Str("name", t.name).Msg("schedule after stop, unit dropped")
		return
	}
	t.queue = append(t.queue, fn)
	t.mu.Unlock()

	select {
	case t.wake <- struct{}{}:
	default:
	}
}

func (t *Thread) Execute(fn func()) {
	var recovered any
	ran := make(chan struct{})

	t.mu.Lock()
	stopped := t.stopped
	t.mu.Unlock()
	if stopped {
		panic(fmt.Sprintf("%s: Execute after stop", t.name))
	}

	t.Schedule(func() {
		defer close(ran)
		defer func() {
			recovered = recover()
		}()
		fn()
	})

	select {
	case <-ran:
	case <-t.done:
		select {
		case <-ran:
		default:
			panic(fmt.Sprintf("%s: stopped before Execute unit ran", t.name))
		}
	}

	if recovered != nil {
		panic(recovered)
	}
}

func (t *Thread) Assert() {
	if !t.running.Load() {
		panic(fmt.Sprintf("%s: called outside the scheduler context", t.name))
	}
}

func (t *Thread) next() (func(), bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.queue) == 0 {
		return nil, false
	}
	fn := t.queue[0]
	t.queue[0] = nil
	t.queue = t.queue[1:]
	return fn, true
}

func (t *Thread) run(ctx context.Context) {
	defer close(t.done)

	for {
		if ctx.Err() != nil {
			return
		}
		fn, ok := t.next()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-t.wake:
			}
			continue
		}
		t.exec(fn)
	}
}

func (t *Thread) exec(fn func()) {
	t.running.Store(true)
	defer t.running.Store(false)
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("module", "scheduler").Str("name", t.name).Interface("panic", r).Msg("unit panicked")
			panic(r)
		}
	}()
	fn()
}
