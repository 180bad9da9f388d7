// Package watch provides observable values bound to a scheduler.
//
// A Value is owned by exactly one component, which is the only caller of
// Update and Dispose. Everyone else sees it through the read-only Watchable
// interface. Every method must be called from inside the scheduler context;
// contract violations panic.
package watch

import (
	"fmt"

	"avtopology/internal/scheduler"
)

// Watcher receives the lifecycle of one registration on a Watchable.
// ItemOpen and ItemClose are paired exactly once per registration.
type Watcher[T any] interface {
	ItemOpen(id string, value T)
	ItemUpdate(id string, value, previous T)
	ItemClose(id string, value T)
}

// Watchable is the read side of an observable value.
type Watchable[T any] interface {
	ID() string
	Value() T
	AddWatcher(w Watcher[T])
	RemoveWatcher(w Watcher[T])
}

// Value holds the current value and the watchers registered against it.
type Value[T any] struct {
	sched    scheduler.Scheduler
	id       string
	value    T
	equal    func(a, b T) bool
	watchers []Watcher[T]
	disposed bool
}

// New creates a Value compared with ==.
func New[T comparable](s scheduler.Scheduler, id string, value T) *Value[T] {
	return NewFunc(s, id, value, func(a, b T) bool { return a == b })
}

// NewFunc creates a Value using equal to detect no-op updates.
func NewFunc[T any](s scheduler.Scheduler, id string, value T, equal func(a, b T) bool) *Value[T] {
	return &Value[T]{
		sched: s,
		id:    id,
		value: value,
		equal: equal,
	}
}

func (v *Value[T]) ID() string {
	return v.id
}

func (v *Value[T]) Value() T {
	v.check("Value")
	return v.value
}

// AddWatcher registers w and immediately opens it with the current value.
func (v *Value[T]) AddWatcher(w Watcher[T]) {
	v.check("AddWatcher")
	if v.indexOf(w) >= 0 {
		panic(fmt.Sprintf("watch: AddWatcher: watcher already registered (%s)", v.id))
	}
	v.watchers = append(v.watchers, w)
	w.ItemOpen(v.id, v.value)
}

// RemoveWatcher unregisters w and closes it.
func (v *Value[T]) RemoveWatcher(w Watcher[T]) {
	v.check("RemoveWatcher")
	i := v.indexOf(w)
	if i < 0 {
		panic(fmt.Sprintf("watch: RemoveWatcher: watcher not registered (%s)", v.id))
	}
	v.watchers = append(v.watchers[:i], v.watchers[i+1:]...)
	w.ItemClose(v.id, v.value)
}

// Update replaces the value and notifies watchers in registration order.
// Updating with an equal value is a no-op.
func (v *Value[T]) Update(value T) {
	v.check("Update")
	if v.equal(v.value, value) {
		return
	}
	previous := v.value
	v.value = value

	// a watcher may remove itself while being notified
	watchers := make([]Watcher[T], len(v.watchers))
	copy(watchers, v.watchers)
	for _, w := range watchers {
		w.ItemUpdate(v.id, value, previous)
	}
}

// Dispose drops all watchers without closing them. Any later use panics.
func (v *Value[T]) Dispose() {
	v.check("Dispose")
	v.watchers = nil
	v.disposed = true
}

// Watchers reports the number of registered watchers.
func (v *Value[T]) Watchers() int {
	v.check("Watchers")
	return len(v.watchers)
}

func (v *Value[T]) check(op string) {
	if v.disposed {
		panic(fmt.Sprintf("watch: %s: use after dispose (%s)", op, v.id))
	}
	v.sched.Assert()
}

func (v *Value[T]) indexOf(w Watcher[T]) int {
	for i, existing := range v.watchers {
		if existing == w {
			return i
		}
	}
	return -1
}
