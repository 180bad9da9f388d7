package watch

// Funcs adapts plain functions to a Watcher. Register it by pointer; nil
// fields are skipped.
type Funcs[T any] struct {
	Open   func(value T)
	Update func(value, previous T)
	Close  func(value T)
}

func (f *Funcs[T]) ItemOpen(id string, value T) {
	if f.Open != nil {
		f.Open(value)
	}
}

func (f *Funcs[T]) ItemUpdate(id string, value, previous T) {
	if f.Update != nil {
		f.Update(value, previous)
	}
}

func (f *Funcs[T]) ItemClose(id string, value T) {
	if f.Close != nil {
		f.Close(value)
	}
}

// OnChange returns a watcher calling fn with the value on open and on every
// update.
func OnChange[T any](fn func(value T)) *Funcs[T] {
	return &Funcs[T]{
		Open:   fn,
		Update: func(value, _ T) { fn(value) },
	}
}
