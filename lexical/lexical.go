// Package lexical implements the fast translation path: whole-token
// substitution over raw text with no parsing.
//
// Substitute makes a single left-to-right pass. At every position the
// longest source token that starts there and sits between word boundaries
// wins, and its replacement is emitted without being scanned again, so a
// shorter token can never corrupt a longer one and a qualified replacement
// such as "statistics.mean" is never substituted a second time.
package lexical

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rubiojr/pys/mapping"
)

type candidate struct {
	source string
	target string
	// word edges require a boundary on that side
	wordStart bool
	wordEnd   bool
}

// Substituter rewrites lines by dictionary lookup. It is immutable and
// safe for concurrent use.
type Substituter struct {
	buckets map[rune][]candidate
}

// New builds a Substituter over every entry of table. Qualified targets
// are registered as identity candidates so already translated text is
// left alone.
func New(table *mapping.Table) *Substituter {
	s := &Substituter{buckets: make(map[rune][]candidate)}
	seen := make(map[string]bool)
	var all []mapping.Entry
	for _, e := range table.Entries() {
		all = append(all, e)
		if mapping.IsQualified(e.Target) && !seen[e.Target] {
			seen[e.Target] = true
			if _, ok := table.Lookup(e.Target); !ok {
				all = append(all, mapping.Entry{Source: e.Target, Target: e.Target})
			}
		}
	}
	for _, e := range all {
		if e.Source == "" {
			continue
		}
		first, _ := utf8.DecodeRuneInString(e.Source)
		last, _ := utf8.DecodeLastRuneInString(e.Source)
		s.buckets[first] = append(s.buckets[first], candidate{
			source:    e.Source,
			target:    e.Target,
			wordStart: IsWordRune(first),
			wordEnd:   IsWordRune(last),
		})
	}
	for r, cs := range s.buckets {
		sortLongestFirst(cs)
		s.buckets[r] = cs
	}
	return s
}

// Substitute translates one line. Blank lines and comment lines come back
// unchanged. String literal contents are not protected.
func (s *Substituter) Substitute(line string) string {
	if Skippable(line) {
		return line
	}

	var b strings.Builder
	b.Grow(len(line) + len(line)/4)

	prev := rune(-1)
	for i := 0; i < len(line); {
		r, size := utf8.DecodeRuneInString(line[i:])
		if c, ok := s.match(line, i, r, prev); ok {
			b.WriteString(c.target)
			i += len(c.source)
			prev, _ = utf8.DecodeLastRuneInString(c.source)
			continue
		}
		b.WriteString(line[i : i+size])
		i += size
		prev = r
	}
	return b.String()
}

func (s *Substituter) match(line string, i int, r, prev rune) (candidate, bool) {
	cs := s.buckets[r]
	if len(cs) == 0 {
		return candidate{}, false
	}
	prevWord := prev >= 0 && IsWordRune(prev)
	for _, c := range cs {
		if c.wordStart && prevWord {
			continue
		}
		if !strings.HasPrefix(line[i:], c.source) {
			continue
		}
		if c.wordEnd {
			if next, _ := utf8.DecodeRuneInString(line[i+len(c.source):]); next != utf8.RuneError && IsWordRune(next) {
				continue
			}
		}
		return c, true
	}
	return candidate{}, false
}

// Skippable reports whether a line is empty, whitespace, or a comment.
func Skippable(line string) bool {
	trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
	return trimmed == "" || trimmed[0] == '#'
}

// IsWordRune reports whether r is a word character for boundary purposes:
// a letter, digit, combining mark or underscore.
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

func sortLongestFirst(cs []candidate) {
	// insertion sort; buckets are small and mostly ordered already
	for i := 1; i < len(cs); i++ {
		for j := i; j > 0 && less(cs[j], cs[j-1]); j-- {
			cs[j], cs[j-1] = cs[j-1], cs[j]
		}
	}
}

func less(a, b candidate) bool {
	la, lb := utf8.RuneCountInString(a.source), utf8.RuneCountInString(b.source)
	if la != lb {
		return la > lb
	}
	return a.source < b.source
}
