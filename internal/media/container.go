package media

import (
	"avtopology/internal/scheduler"
	"avtopology/internal/watch"
)

// Container publishes the current snapshot of a browse.
type Container struct {
	snapshot *watch.Value[*Snapshot]
}

func NewContainer(s scheduler.Scheduler, id string, snapshot *Snapshot) *Container {
	return &Container{snapshot: watch.New(s, id, snapshot)}
}

func (c *Container) Snapshot() watch.Watchable[*Snapshot] {
	return c.snapshot
}

func (c *Container) Update(snapshot *Snapshot) {
	c.snapshot.Update(snapshot)
}

func (c *Container) Dispose() {
	c.snapshot.Dispose()
}
