// Package testtree is a small nested test harness. Cases run as soon as the
// node that holds them is built; results are tallied on an explicit Run.
package testtree

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/yiyuanh/tscaffold/pkg/model"
)

var (
	// ErrDuplicateLabel is recorded when a node gets two children with the
	// same label. The first child keeps the label.
	ErrDuplicateLabel = errors.New("duplicate child label")
	// ErrAlreadyAttached is recorded when a node is attached to a second
	// parent, or to itself.
	ErrAlreadyAttached = errors.New("node already attached")
	// ErrForeignRun is recorded when a node built on another Run is attached.
	ErrForeignRun = errors.New("node belongs to another run")
)

// Failure describes one failed case.
type Failure struct {
	Label string // label of the node the case was declared on
	Err   error
}

// Stack returns the panic stack for failures caused by a panic.
func (f Failure) Stack() []byte {
	var pe *PanicError
	if errors.As(f.Err, &pe) {
		return pe.Stack
	}
	return nil
}

// Option configures a Run.
type Option func(*Run)

// WithFailureHandler calls fn for every failure as it is recorded. Calls are
// serialised.
func WithFailureHandler(fn func(Failure)) Option {
	return func(r *Run) {
		r.onFailure = fn
	}
}

// WithLogger sets the logger used for per-case debug output.
func WithLogger(l *zap.Logger) Option {
	return func(r *Run) {
		r.logger = l
	}
}

// Run holds the counters and pending cases of one test run. Runs are
// independent of each other.
type Run struct {
	total     atomic.Int64
	completed atomic.Int64
	pass      atomic.Int64
	fail      atomic.Int64

	pending     sync.WaitGroup
	settledOnce sync.Once
	settled     chan struct{}

	mu        sync.Mutex
	failures  []Failure
	buildErrs []error
	nodes     []*Node

	handlerMu sync.Mutex
	onFailure func(Failure)
	logger    *zap.Logger
}

// NewRun creates an empty run.
func NewRun(opts ...Option) *Run {
	r := &Run{logger: zap.NewNop()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Summary returns a snapshot of the counters. Completed never exceeds Total
// in a snapshot.
func (r *Run) Summary() model.Summary {
	completed := r.completed.Load()
	pass := r.pass.Load()
	fail := r.fail.Load()
	total := r.total.Load()
	return model.Summary{
		Total:     int(total),
		Completed: int(completed),
		Pass:      int(pass),
		Fail:      int(fail),
	}
}

// Settled reports whether every case run so far has finished.
func (r *Run) Settled() bool {
	return r.Summary().Settled()
}

// Wait blocks until every pending case has settled or ctx is done. Build
// the whole tree before calling Wait. All calls share one watcher, which
// exits once the pending cases settle.
func (r *Run) Wait(ctx context.Context) error {
	select {
	case <-r.done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Run) done() <-chan struct{} {
	r.settledOnce.Do(func() {
		r.settled = make(chan struct{})
		go func() {
			r.pending.Wait()
			close(r.settled)
		}()
	})
	return r.settled
}

// Failures returns the failures recorded so far.
func (r *Run) Failures() []Failure {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Failure(nil), r.failures...)
}

// Err returns the tree construction errors, joined, or nil.
func (r *Run) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return errors.Join(r.buildErrs...)
}

// Roots returns the nodes that were never attached to a parent, in
// construction order.
func (r *Run) Roots() []*Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	var roots []*Node
	for _, n := range r.nodes {
		if n.root {
			roots = append(roots, n)
		}
	}
	return roots
}

func (r *Run) invoke(label string, fn CaseFunc) {
	r.total.Add(1)

	out, err := call(fn)
	if err != nil || !out.IsPending() {
		if err == nil {
			err = out.err
		}
		r.settle(label, err)
		return
	}

	r.logger.Debug("case pending", zap.String("label", label))
	r.pending.Add(1)
	go func() {
		defer r.pending.Done()
		r.settle(label, <-out.pending)
	}()
}

func call(fn CaseFunc) (out Outcome, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &PanicError{Value: rec, Stack: debug.Stack()}
		}
	}()
	return fn(newScratch()), nil
}

// settle records exactly one result for a case.
func (r *Run) settle(label string, err error) {
	if err == nil {
		r.pass.Add(1)
		r.completed.Add(1)
		r.logger.Debug("case passed", zap.String("label", label))
		return
	}

	f := Failure{Label: label, Err: err}
	r.mu.Lock()
	r.failures = append(r.failures, f)
	r.mu.Unlock()
	r.fail.Add(1)

	r.logger.Debug("case failed", zap.String("label", label), zap.Error(err))
	if r.onFailure != nil {
		r.handlerMu.Lock()
		r.onFailure(f)
		r.handlerMu.Unlock()
	}
	r.completed.Add(1)
}

func (r *Run) buildErr(err error) {
	r.mu.Lock()
	r.buildErrs = append(r.buildErrs, err)
	r.mu.Unlock()
}
