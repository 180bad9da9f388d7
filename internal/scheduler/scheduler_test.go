package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestThread(t *testing.T) *Thread {
	t.Helper()
	th := New(WithName("test"))
	th.Start(context.Background())
	t.Cleanup(th.Stop)
	return th
}

func TestScheduleRunsInOrder(t *testing.T) {
	th := newTestThread(t)

	var got []int
	for i := 0; i < 100; i++ {
		th.Schedule(func() {
			got = append(got, i)
		})
	}

	var snapshot []int
	th.Execute(func() {
		snapshot = append(snapshot, got...)
	})

	require.Len(t, snapshot, 100)
	for i, v := range snapshot {
		assert.Equal(t, i, v)
	}
}

func TestScheduleFromManyGoroutinesIsSerialized(t *testing.T) {
	th := newTestThread(t)

	counter := 0
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 250; i++ {
				th.Schedule(func() { counter++ })
			}
		}()
	}
	wg.Wait()

	var total int
	th.Execute(func() { total = counter })
	assert.Equal(t, 2000, total)
}

func TestScheduleBeforeStart(t *testing.T) {
	th := New()
	ran := make(chan struct{})
	th.Schedule(func() { close(ran) })

	select {
	case <-ran:
		t.Fatal("unit ran before Start")
	case <-time.After(20 * time.Millisecond):
	}

	th.Start(context.Background())
	defer th.Stop()

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for unit")
	}
}

func TestExecuteReraisesPanic(t *testing.T) {
	th := newTestThread(t)

	assert.PanicsWithValue(t, "boom", func() {
		th.Execute(func() { panic("boom") })
	})

	// thread survives a panic delivered through Execute
	ok := false
	th.Execute(func() { ok = true })
	assert.True(t, ok)
}

func TestAssert(t *testing.T) {
	th := newTestThread(t)

	assert.Panics(t, th.Assert)
	assert.NotPanics(t, func() {
		th.Execute(th.Assert)
	})
}

func TestExecuteAfterStopPanics(t *testing.T) {
	th := New()
	th.Start(context.Background())
	th.Stop()

	assert.Panics(t, func() {
		th.Execute(func() {})
	})
}

func TestStopWithoutStart(t *testing.T) {
	th := New()
	th.Stop()
	// a second Stop and a late Schedule are both harmless
	th.Stop()
	th.Schedule(func() {})
}
