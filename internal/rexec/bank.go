package rexec

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
)

// ErrNameInUse is returned when a pattern is saved under a taken name.
var ErrNameInUse = errors.New("name in use")

var groupNamePattern = regexp.MustCompile(`\(\?P?<(?P<groupName>\w+)>`)

// GroupNames returns the named capture groups of re in source order,
// scanning the pattern text itself.
func GroupNames(re *regexp.Regexp) []string {
	return AccumulateString(groupNamePattern, re.String())["groupName"]
}

// Entry is a pattern stored in a Bank.
type Entry struct {
	Name    string
	Info    string
	Groups  []string
	Pattern *regexp.Regexp
}

// Bank is a registry of named patterns.
type Bank struct {
	mu      sync.RWMutex
	entries map[string]Entry
	order   []string
}

// NewBank creates an empty Bank.
func NewBank() *Bank {
	return &Bank{entries: make(map[string]Entry)}
}

// Default is the process-wide bank the scaffold's own patterns live in.
var Default = NewBank()

func init() {
	Default.MustSave("parseRegexGroupNames", "parse a regular expression for its group names", groupNamePattern)
}

// Save stores re under name. Names are unique for the lifetime of the bank.
func (b *Bank) Save(name, info string, re *regexp.Regexp) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.entries[name]; ok {
		return fmt.Errorf("saving pattern %q: %w", name, ErrNameInUse)
	}
	b.entries[name] = Entry{
		Name:    name,
		Info:    info,
		Groups:  GroupNames(re),
		Pattern: re,
	}
	b.order = append(b.order, name)
	return nil
}

// MustSave is Save for package initialisation; it panics on error.
func (b *Bank) MustSave(name, info string, re *regexp.Regexp) *Bank {
	if err := b.Save(name, info, re); err != nil {
		panic(err)
	}
	return b
}

// Get looks up a pattern by name.
func (b *Bank) Get(name string) (Entry, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.entries[name]
	return e, ok
}

// Entries returns all stored patterns in insertion order.
func (b *Bank) Entries() []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Entry, 0, len(b.order))
	for _, name := range b.order {
		out = append(out, b.entries[name])
	}
	return out
}

// Print writes a listing of the bank to w.
func (b *Bank) Print(w io.Writer) {
	for _, e := range b.Entries() {
		fmt.Fprintf(w, "%s: %s\n", e.Name, e.Info)
		fmt.Fprintf(w, "  pattern: %s\n", e.Pattern.String())
		if len(e.Groups) > 0 {
			fmt.Fprintf(w, "  groups:  %s\n", strings.Join(e.Groups, ", "))
		}
	}
}
