// Package mapping holds the dictionary that maps localized source tokens
// (keywords, builtins, operators) to their target-language spelling.
//
// A Table is built once through a Builder and is immutable afterwards, so a
// single *Table can be shared by every translation strategy without locking.
package mapping

import (
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
)

// Separator splits a qualified target token into namespace and member.
const Separator = "."

// Entry is a single source → target pair.
type Entry struct {
	Source string
	Target string
}

// Group is a set of localized spellings that all map to one target.
type Group struct {
	Target  string   `yaml:"target"`
	Sources []string `yaml:"sources"`
}

// Conflict records a source token registered more than once with
// different targets. The later registration is kept.
type Conflict struct {
	Source  string
	Kept    string
	Dropped string
}

// Table is an immutable source → target dictionary.
type Table struct {
	locale    language.Tag
	targets   map[string]string
	ordered   []Entry // longest source first
	qualified map[string]bool
	conflicts []Conflict
}

// Builder accumulates synonym groups. The zero value is not usable, call
// NewBuilder.
type Builder struct {
	locale    language.Tag
	targets   map[string]string
	conflicts []Conflict
}

// NewBuilder returns a Builder for a dictionary in the given locale.
func NewBuilder(locale language.Tag) *Builder {
	return &Builder{locale: locale, targets: make(map[string]string)}
}

// Add registers sources as spellings of target. Registering a source that
// already exists overwrites the previous target.
func (b *Builder) Add(target string, sources ...string) *Builder {
	for _, src := range sources {
		if prev, ok := b.targets[src]; ok && prev != target {
			b.conflicts = append(b.conflicts, Conflict{Source: src, Kept: target, Dropped: prev})
		}
		b.targets[src] = target
	}
	return b
}

// AddGroups registers every group in order.
func (b *Builder) AddGroups(groups []Group) *Builder {
	for _, g := range groups {
		b.Add(g.Target, g.Sources...)
	}
	return b
}

// AddDictionary registers the groups of a loaded dictionary file.
func (b *Builder) AddDictionary(d *Dictionary) *Builder {
	return b.AddGroups(d.Groups)
}

// Build freezes the builder contents into a Table. The builder may keep
// being used; later additions do not affect the returned Table.
func (b *Builder) Build() *Table {
	t := &Table{
		locale:    b.locale,
		targets:   make(map[string]string, len(b.targets)),
		ordered:   make([]Entry, 0, len(b.targets)),
		qualified: make(map[string]bool),
		conflicts: append([]Conflict(nil), b.conflicts...),
	}
	for src, dst := range b.targets {
		t.targets[src] = dst
		t.ordered = append(t.ordered, Entry{Source: src, Target: dst})
		if IsQualified(dst) {
			t.qualified[dst] = true
		}
	}
	sort.Slice(t.ordered, func(i, j int) bool {
		li := utf8.RuneCountInString(t.ordered[i].Source)
		lj := utf8.RuneCountInString(t.ordered[j].Source)
		if li != lj {
			return li > lj
		}
		return t.ordered[i].Source < t.ordered[j].Source
	})
	return t
}

// Lookup returns the target for source, if any.
func (t *Table) Lookup(source string) (string, bool) {
	dst, ok := t.targets[source]
	return dst, ok
}

// Entries returns all entries, longest source first. The slice is a copy.
func (t *Table) Entries() []Entry {
	return append([]Entry(nil), t.ordered...)
}

// Len returns the number of source tokens.
func (t *Table) Len() int { return len(t.targets) }

// Locale returns the dictionary language.
func (t *Table) Locale() language.Tag { return t.locale }

// Conflicts returns the collisions resolved while building the table.
func (t *Table) Conflicts() []Conflict {
	return append([]Conflict(nil), t.conflicts...)
}

// IsQualifiedTarget reports whether s is the qualified target of some entry.
func (t *Table) IsQualifiedTarget(s string) bool { return t.qualified[s] }

// Groups returns the table contents grouped by target, targets sorted
// alphabetically and sources sorted within each group.
func (t *Table) Groups() []Group {
	byTarget := make(map[string][]string)
	for src, dst := range t.targets {
		byTarget[dst] = append(byTarget[dst], src)
	}
	groups := make([]Group, 0, len(byTarget))
	for dst, srcs := range byTarget {
		sort.Strings(srcs)
		groups = append(groups, Group{Target: dst, Sources: srcs})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Target < groups[j].Target })
	return groups
}

// IsQualified reports whether a target token names a namespace member.
func IsQualified(target string) bool {
	return strings.Contains(target, Separator)
}

// Namespace returns the leading namespace of a qualified target
// ("os.path.join" → "os"). It returns false for unqualified tokens.
func Namespace(target string) (string, bool) {
	ns, _, ok := strings.Cut(target, Separator)
	if !ok || ns == "" {
		return "", false
	}
	return ns, true
}

// ImportFor returns the import statement a qualified target requires.
func ImportFor(target string) (string, bool) {
	ns, ok := Namespace(target)
	if !ok {
		return "", false
	}
	return "import " + ns, true
}
