package watch

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avtopology/internal/scheduler"
)

type event struct {
	kind     string
	value    int
	previous int
}

type recorder struct {
	events []event
}

func (r *recorder) ItemOpen(id string, value int) {
	r.events = append(r.events, event{kind: "open", value: value})
}

func (r *recorder) ItemUpdate(id string, value, previous int) {
	r.events = append(r.events, event{kind: "update", value: value, previous: previous})
}

func (r *recorder) ItemClose(id string, value int) {
	r.events = append(r.events, event{kind: "close", value: value})
}

func newThread(t *testing.T) *scheduler.Thread {
	t.Helper()
	th := scheduler.New()
	th.Start(context.Background())
	t.Cleanup(th.Stop)
	return th
}

func TestOpenUpdateClose(t *testing.T) {
	th := newThread(t)
	v := New(th, "Value(test)", 1)
	r := &recorder{}

	th.Execute(func() {
		v.AddWatcher(r)
		v.Update(2)
		v.Update(2) // no-op
		v.Update(3)
		v.RemoveWatcher(r)
		v.Update(4) // not observed
	})

	assert.Equal(t, []event{
		{kind: "open", value: 1},
		{kind: "update", value: 2, previous: 1},
		{kind: "update", value: 3, previous: 2},
		{kind: "close", value: 3},
	}, r.events)
}

func TestUpdateCountMatchesChanges(t *testing.T) {
	th := newThread(t)
	v := New(th, "Value(test)", 0)
	first, second := &recorder{}, &recorder{}

	sequence := []int{0, 1, 1, 2, 2, 2, 0, 5, 5}
	th.Execute(func() {
		v.AddWatcher(first)
		v.AddWatcher(second)
		for _, n := range sequence {
			v.Update(n)
		}
	})

	for _, r := range []*recorder{first, second} {
		require.NotEmpty(t, r.events)
		assert.Equal(t, "open", r.events[0].kind)
		assert.Len(t, r.events[1:], 4)
	}
}

func TestWatchersNotifiedInRegistrationOrder(t *testing.T) {
	th := newThread(t)
	v := New(th, "Value(order)", "a")

	var order []string
	th.Execute(func() {
		v.AddWatcher(&Funcs[string]{Update: func(string, string) { order = append(order, "first") }})
		v.AddWatcher(&Funcs[string]{Update: func(string, string) { order = append(order, "second") }})
		v.AddWatcher(&Funcs[string]{Update: func(string, string) { order = append(order, "third") }})
		v.Update("b")
	})

	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestWatcherMayRemoveItselfDuringUpdate(t *testing.T) {
	th := newThread(t)
	v := New(th, "Value(self)", 0)

	updates := 0
	w := &Funcs[int]{}
	w.Update = func(int, int) {
		updates++
		v.RemoveWatcher(w)
	}

	th.Execute(func() {
		v.AddWatcher(w)
		v.Update(1)
		v.Update(2)
		assert.Equal(t, 0, v.Watchers())
	})
	assert.Equal(t, 1, updates)
}

func TestNewFuncSliceEquality(t *testing.T) {
	th := newThread(t)
	v := NewFunc(th, "IdArray(test)", []uint32{1, 2}, slices.Equal[[]uint32])

	updates := 0
	th.Execute(func() {
		v.AddWatcher(&Funcs[[]uint32]{Update: func(_, _ []uint32) { updates++ }})
		v.Update([]uint32{1, 2})
		v.Update([]uint32{1, 2, 3})
	})
	assert.Equal(t, 1, updates)
}

func TestContractViolationsPanic(t *testing.T) {
	th := newThread(t)
	v := New(th, "Value(contract)", 0)
	r := &recorder{}

	t.Run("outside scheduler", func(t *testing.T) {
		assert.Panics(t, func() { v.AddWatcher(r) })
		assert.Panics(t, func() { v.Update(1) })
	})

	t.Run("double registration", func(t *testing.T) {
		th.Execute(func() { v.AddWatcher(r) })
		assert.Panics(t, func() {
			th.Execute(func() { v.AddWatcher(r) })
		})
		th.Execute(func() { v.RemoveWatcher(r) })
	})

	t.Run("remove unknown", func(t *testing.T) {
		assert.Panics(t, func() {
			th.Execute(func() { v.RemoveWatcher(&recorder{}) })
		})
	})

	t.Run("use after dispose", func(t *testing.T) {
		closed := &recorder{}
		th.Execute(func() {
			v.AddWatcher(closed)
			v.Dispose()
		})
		// dispose does not close watchers
		assert.Equal(t, []event{{kind: "open", value: 0}}, closed.events)
		assert.Panics(t, func() {
			th.Execute(func() { v.Update(9) })
		})
		assert.Panics(t, func() {
			th.Execute(func() { v.Dispose() })
		})
	})
}

func TestOnChange(t *testing.T) {
	th := newThread(t)
	v := New(th, "Value(onchange)", true)

	var seen []bool
	th.Execute(func() {
		v.AddWatcher(OnChange(func(b bool) { seen = append(seen, b) }))
		v.Update(false)
	})
	assert.Equal(t, []bool{true, false}, seen)
}
