package rexec

import (
	"iter"
	"regexp"
	"sort"
)

// Accumulation maps a group name to every non-empty capture of that group,
// in scan order.
type Accumulation map[string][]string

// Accumulate folds matches by group name. The key set is taken from the
// first match; group names that only appear in later matches are ignored.
// No matches yields an Accumulation with no keys.
func Accumulate(matches iter.Seq[Match]) Accumulation {
	acc := make(Accumulation)
	var names []string
	first := true

	for m := range matches {
		if first {
			for name := range m.Groups {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				acc[name] = []string{}
			}
			first = false
		}

		for _, name := range names {
			c, ok := m.Groups[name]
			if !ok || !c.Matched || c.Value == "" {
				continue
			}
			acc[name] = append(acc[name], c.Value)
		}
	}
	return acc
}

// AccumulateString scans subject with re and accumulates the result.
func AccumulateString(re *regexp.Regexp, subject string) Accumulation {
	return Accumulate(Exec(re, subject).All())
}
