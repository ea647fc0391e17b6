package report

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yiyuanh/tscaffold/internal/color"
	"github.com/yiyuanh/tscaffold/internal/testtree"
	"github.com/yiyuanh/tscaffold/pkg/model"
)

func ok(*testtree.Scratch) error { return nil }

func TestReport_PassOnly(t *testing.T) {
	color.SetEnabled(false)

	r := testtree.NewRun()
	r.T("R", testtree.Case(ok), testtree.Case(ok))

	var buf bytes.Buffer
	s, err := New(&buf, false).Report(context.Background(), r)
	require.NoError(t, err)

	assert.Equal(t, model.Summary{Total: 2, Completed: 2, Pass: 2}, s)
	assert.Equal(t, "PASS: 2\n", buf.String())
}

func TestReport_WaitsForPendingAndPrintsFail(t *testing.T) {
	color.SetEnabled(false)

	r := testtree.NewRun()
	r.T("R",
		testtree.Case(ok),
		testtree.Await(func(*testtree.Scratch) testtree.Outcome {
			return testtree.Go(func() error {
				time.Sleep(20 * time.Millisecond)
				return errors.New("late failure")
			})
		}),
	)

	var buf bytes.Buffer
	s, err := New(&buf, false).Report(context.Background(), r)
	require.NoError(t, err)

	assert.True(t, s.Settled())
	assert.Equal(t, "PASS: 1\nFAIL: 1\n", buf.String())
}

func TestReport_Verbose(t *testing.T) {
	color.SetEnabled(false)

	r := testtree.NewRun()
	r.T("lib", r.T("default export", testtree.Case(ok)), r.T("named exports"))

	var buf bytes.Buffer
	_, err := New(&buf, true).Report(context.Background(), r)
	require.NoError(t, err)

	assert.Equal(t, "lib\n   default export (1)\n   named exports\nPASS: 1\n", buf.String())
}

func TestReport_Timeout(t *testing.T) {
	color.SetEnabled(false)

	release := make(chan error)
	defer close(release)

	r := testtree.NewRun()
	r.T("R", testtree.Await(func(*testtree.Scratch) testtree.Outcome { return testtree.Pending(release) }))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	var buf bytes.Buffer
	s, err := New(&buf, false).Report(ctx, r)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, s.Settled())
	assert.Contains(t, buf.String(), "UNSETTLED: 1 of 1")
}

func TestReport_BuildErrorsWarn(t *testing.T) {
	color.SetEnabled(false)

	r := testtree.NewRun()
	r.T("R", r.T("dup"), r.T("dup"))

	var buf bytes.Buffer
	_, err := New(&buf, false).Report(context.Background(), r)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "WARN: ")
	assert.Contains(t, buf.String(), "duplicate child label")
}
