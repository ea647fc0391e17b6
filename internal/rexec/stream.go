// Package rexec turns iterative regexp matching into structured match
// records and folds those records by capture group name.
package rexec

import (
	"iter"
	"regexp"
	"unicode/utf8"
)

// Capture is the value of one named group in a match. Matched is false when
// the group did not participate in the match.
type Capture struct {
	Value   string
	Matched bool
}

// Match is one successful match of a pattern against a subject.
type Match struct {
	Index     int // byte offset of the match in the subject
	Text      string
	Groups    map[string]Capture
	LastIndex int // offset the next scan resumes from
}

// Stream is a lazy, single-use sequence of matches. Each Stream owns its
// scan cursor, so the same *regexp.Regexp may back any number of streams.
//
// Every step matches against subject[cursor:], so `^` and `\b` treat the
// cursor as the start of text.
type Stream struct {
	re      *regexp.Regexp
	names   []string
	subject string
	cursor  int
	done    bool
}

// Exec starts a scan of subject with re.
func Exec(re *regexp.Regexp, subject string) *Stream {
	return &Stream{
		re:      re,
		names:   re.SubexpNames(),
		subject: subject,
	}
}

// Next returns the next match, or false once the subject is exhausted.
func (s *Stream) Next() (Match, bool) {
	if s.done || s.cursor > len(s.subject) {
		s.done = true
		return Match{}, false
	}

	base := s.cursor
	loc := s.re.FindStringSubmatchIndex(s.subject[base:])
	if loc == nil {
		s.done = true
		return Match{}, false
	}

	start, end := loc[0]+base, loc[1]+base
	next := end
	if start == end {
		// Empty match: step over one rune so the scan terminates.
		if end < len(s.subject) {
			_, w := utf8.DecodeRuneInString(s.subject[end:])
			next = end + w
		} else {
			next = end + 1
		}
	}
	s.cursor = next

	m := Match{
		Index:     start,
		Text:      s.subject[start:end],
		Groups:    make(map[string]Capture),
		LastIndex: min(next, len(s.subject)),
	}
	for i, name := range s.names {
		if name == "" {
			continue
		}
		gs, ge := loc[2*i], loc[2*i+1]
		if gs < 0 {
			m.Groups[name] = Capture{}
			continue
		}
		m.Groups[name] = Capture{Value: s.subject[gs+base : ge+base], Matched: true}
	}
	return m, true
}

// All drains the remaining matches.
func (s *Stream) All() iter.Seq[Match] {
	return func(yield func(Match) bool) {
		for {
			m, ok := s.Next()
			if !ok || !yield(m) {
				return
			}
		}
	}
}
