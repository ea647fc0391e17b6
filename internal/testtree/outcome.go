package testtree

import (
	"fmt"
	"runtime/debug"
)

// Scratch carries the placeholder values handed to every case: an empty
// object, an empty array, zero, an empty string and a trivial constructor.
// Cases may mutate them freely; each invocation gets a fresh set.
type Scratch struct {
	Obj  map[string]any
	Arr  []any
	N    int
	Str  string
	Ctor func(arg any) *Box
}

// Box is what Scratch.Ctor builds.
type Box struct {
	Arg any
}

func newScratch() *Scratch {
	return &Scratch{
		Obj:  map[string]any{},
		Arr:  []any{},
		Ctor: func(arg any) *Box { return &Box{Arg: arg} },
	}
}

// Outcome is what a case returns: either settled now, or pending on a
// channel that delivers the eventual error (nil for success).
type Outcome struct {
	err     error
	pending <-chan error
}

// Done is a settled outcome.
func Done(err error) Outcome {
	return Outcome{err: err}
}

// Pending is an outcome that settles when ch delivers a value or is closed.
// A closed channel counts as success. A nil channel settles immediately.
func Pending(ch <-chan error) Outcome {
	if ch == nil {
		return Done(nil)
	}
	return Outcome{pending: ch}
}

// Go runs fn on its own goroutine and returns its pending outcome. A panic
// inside fn becomes a *PanicError.
func Go(fn func() error) Outcome {
	ch := make(chan error, 1)
	go func() {
		var err error
		defer func() {
			if rec := recover(); rec != nil {
				err = &PanicError{Value: rec, Stack: debug.Stack()}
			}
			ch <- err
		}()
		err = fn()
	}()
	return Pending(ch)
}

// IsPending reports whether the outcome settles later.
func (o Outcome) IsPending() bool {
	return o.pending != nil
}

// PanicError wraps a value recovered from a panicking case.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes a panicked error value to errors.Is and errors.As.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
