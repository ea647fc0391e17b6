// Package runner loads a test file into a fresh run and reports it.
package runner

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/yiyuanh/tscaffold/internal/lang"
	"github.com/yiyuanh/tscaffold/internal/report"
	"github.com/yiyuanh/tscaffold/internal/testtree"
	"github.com/yiyuanh/tscaffold/internal/trace"
	"github.com/yiyuanh/tscaffold/pkg/model"
)

// Executor runs test files. Failures are printed with their stack as they
// happen; the summary is printed once every case has settled.
type Executor struct {
	lang    lang.Language
	out     io.Writer
	timeout time.Duration
	verbose bool
	logger  *zap.Logger
}

// NewExecutor creates a new executor. A zero timeout waits indefinitely for
// pending cases.
func NewExecutor(language lang.Language, out io.Writer, timeout time.Duration, verbose bool, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		lang:    language,
		out:     out,
		timeout: timeout,
		verbose: verbose,
		logger:  logger,
	}
}

// Execute loads testFile, runs its cases and reports the result.
func (e *Executor) Execute(ctx context.Context, testFile string) (model.Summary, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	printer := trace.NewPrinter(e.out)
	run := testtree.NewRun(
		testtree.WithFailureHandler(printer.Print),
		testtree.WithLogger(e.logger),
	)

	start := time.Now()
	roots, err := e.lang.Load(ctx, testFile, run)
	if err != nil {
		return run.Summary(), fmt.Errorf("loading %s: %w", testFile, err)
	}
	e.logger.Debug("test file loaded",
		zap.String("file", testFile),
		zap.Int("groups", len(roots)),
		zap.Int("cases", run.Summary().Total))

	summary, err := report.New(e.out, e.verbose).Report(ctx, run)
	e.logger.Debug("run settled",
		zap.Int("pass", summary.Pass),
		zap.Int("fail", summary.Fail),
		zap.Duration("elapsed", time.Since(start)))
	return summary, err
}
