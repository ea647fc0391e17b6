package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yiyuanh/tscaffold/internal/color"
)

func TestMain(m *testing.M) {
	color.SetEnabled(false)
	os.Exit(m.Run())
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		flagInit, flagForce, flagDryRun, flagVerbose = false, false, false, false
		flagDir, flagTest, flagTimeout = ".", "", 0
	})
	err := Execute(context.Background())
	return out.String(), err
}

func project(t *testing.T, module string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"),
		[]byte(`{"name": "lib", "module": "index.js"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.js"), []byte(module), 0o644))
	return dir
}

func TestRoot_Passing(t *testing.T) {
	dir := project(t, "export const a = 1\n")

	out, err := execute(t, "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "PASS: 1\n")
	assert.FileExists(t, filepath.Join(dir, "test.js"))
}

func TestRoot_FailingCases(t *testing.T) {
	dir := project(t, "export const a = 1\n")
	_, err := execute(t, "--dir", dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.js"), []byte("export const b = 1\n"), 0o644))
	out, err := execute(t, "--dir", dir)
	assert.ErrorIs(t, err, ErrCasesFailed)
	assert.Contains(t, out, "FAIL: 1\n")
	assert.Equal(t, ExitFailed, ExitCode(err, &bytes.Buffer{}))
}

func TestRoot_RejectsArguments(t *testing.T) {
	_, err := execute(t, "extra")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "tscaffold version dev\n", out)
}

func TestExitCode(t *testing.T) {
	var stderr bytes.Buffer
	assert.Equal(t, ExitOK, ExitCode(nil, &stderr))
	assert.Equal(t, ExitFailed, ExitCode(ErrCasesFailed, &stderr))
	assert.Empty(t, stderr.String())

	assert.Equal(t, ExitFailed, ExitCode(errors.New("boom"), &stderr))
	assert.Equal(t, "Error: boom\n", stderr.String())
}

func TestRecoverExit(t *testing.T) {
	var stderr bytes.Buffer
	code := func() (code int) {
		defer RecoverExit(&code, &stderr)
		panic("kaboom")
	}()

	assert.Equal(t, ExitPanic, code)
	assert.Contains(t, stderr.String(), "panic: kaboom")
}

func TestExitOnSignal_Stop(t *testing.T) {
	stop := ExitOnSignal(&bytes.Buffer{})
	stop()
}

func TestPatterns(t *testing.T) {
	out, err := execute(t, "patterns")
	require.NoError(t, err)
	assert.Contains(t, out, "parseRegexGroupNames")
	assert.Contains(t, out, "parseEsmSourceCodeExports")
}
