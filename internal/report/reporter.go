// Package report prints the outcome of a test run once it has settled.
package report

import (
	"context"
	"fmt"
	"io"

	"github.com/yiyuanh/tscaffold/internal/color"
	"github.com/yiyuanh/tscaffold/internal/testtree"
	"github.com/yiyuanh/tscaffold/pkg/model"
)

// Reporter prints run summaries.
type Reporter struct {
	w       io.Writer
	verbose bool
}

// New creates a Reporter writing to w. Verbose reporters also print the
// tree of groups.
func New(w io.Writer, verbose bool) *Reporter {
	return &Reporter{w: w, verbose: verbose}
}

// Report waits for run to settle, then prints the pass count and, if any
// case failed, the fail count.
func (r *Reporter) Report(ctx context.Context, run *testtree.Run) (model.Summary, error) {
	if err := run.Wait(ctx); err != nil {
		s := run.Summary()
		fmt.Fprintln(r.w, color.Apply(color.BoldYellow, fmt.Sprintf("UNSETTLED: %d of %d cases still pending", s.Total-s.Completed, s.Total)))
		return s, fmt.Errorf("waiting for pending cases: %w", err)
	}

	if r.verbose {
		for _, root := range run.Roots() {
			r.printTree(root)
		}
	}

	if err := run.Err(); err != nil {
		fmt.Fprintln(r.w, color.Apply(color.Yellow, "WARN: "+err.Error()))
	}

	s := run.Summary()
	fmt.Fprintln(r.w, color.Apply(color.BoldGreen, fmt.Sprintf("PASS: %d", s.Pass)))
	if s.Fail > 0 {
		fmt.Fprintln(r.w, color.Apply(color.BoldRed, fmt.Sprintf("FAIL: %d", s.Fail)))
	}
	return s, nil
}

func (r *Reporter) printTree(root *testtree.Node) {
	root.Walk(func(n *testtree.Node) {
		line := n.Indent() + n.Label
		if c := n.Cases(); c > 0 {
			line += color.Apply(color.Gray, fmt.Sprintf(" (%d)", c))
		}
		fmt.Fprintln(r.w, line)
	})
}
