// Package trace renders test failures, with source context for each stack
// frame when the failure carries a stack.
package trace

import (
	"bufio"
	"bytes"
	"path/filepath"
	"strconv"
	"strings"
)

// Frame is one call site parsed from a goroutine stack dump.
type Frame struct {
	Func string
	File string
	Line int
}

// ShortFunc is the function name without its package path or receiver.
func (f Frame) ShortFunc() string {
	name := f.Func
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// Dir and Base split File.
func (f Frame) Dir() string  { return filepath.ToSlash(filepath.Dir(f.File)) }
func (f Frame) Base() string { return filepath.Base(f.File) }

var skipPrefixes = []string{
	"runtime.",
	"runtime/debug.",
	"created by ",
	"github.com/yiyuanh/tscaffold/internal/testtree.",
}

// ParseStack extracts frames from the output of runtime/debug.Stack,
// innermost first. Runtime and harness frames are dropped.
func ParseStack(stack []byte) []Frame {
	var frames []Frame
	sc := bufio.NewScanner(bytes.NewReader(stack))
	var fn string
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "goroutine "):
			fn = ""
		case strings.HasPrefix(line, "\t"):
			if fn == "" {
				continue
			}
			f, ok := parseLocation(strings.TrimSpace(line))
			fn, f.Func = "", fn
			if !ok || skipped(f.Func) {
				continue
			}
			frames = append(frames, f)
		default:
			fn = trimArgs(line)
		}
	}
	return frames
}

// parseLocation parses "/path/file.go:12 +0x1d".
func parseLocation(s string) (Frame, bool) {
	if i := strings.LastIndex(s, " +0x"); i >= 0 {
		s = s[:i]
	}
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return Frame{}, false
	}
	n, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return Frame{}, false
	}
	return Frame{File: s[:i], Line: n}, true
}

func trimArgs(s string) string {
	if i := strings.LastIndex(s, "("); i > 0 && strings.HasSuffix(s, ")") {
		return s[:i]
	}
	return s
}

func skipped(fn string) bool {
	if fn == "panic" {
		return true
	}
	for _, p := range skipPrefixes {
		if strings.HasPrefix(fn, p) {
			return true
		}
	}
	return false
}
