package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
)

// Exit codes.
const (
	ExitOK     = 0
	ExitFailed = 1
	ExitSignal = 2
	ExitPanic  = 99
)

// ExitOnSignal terminates the process with ExitSignal when an interrupt or
// termination signal arrives. The returned func stops watching.
func ExitOnSignal(stderr io.Writer) (stop func()) {
	sigs := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigs, terminationSignals...)
	go func() {
		select {
		case sig := <-sigs:
			fmt.Fprintf(stderr, "\nterminated by %s\n", sig)
			os.Exit(ExitSignal)
		case <-done:
		}
	}()
	return func() {
		signal.Stop(sigs)
		close(done)
	}
}

// ExitCode maps the result of Execute to a process exit code. Errors other
// than failing cases are printed to stderr.
func ExitCode(err error, stderr io.Writer) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrCasesFailed):
		return ExitFailed
	default:
		fmt.Fprintln(stderr, "Error:", err)
		return ExitFailed
	}
}

// RecoverExit turns a panic into ExitPanic. Use it deferred, with a pointer
// to the exit code.
func RecoverExit(code *int, stderr io.Writer) {
	if r := recover(); r != nil {
		fmt.Fprintf(stderr, "panic: %v\n%s", r, debug.Stack())
		*code = ExitPanic
	}
}
