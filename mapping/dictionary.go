package mapping

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"go.trai.ch/zerr"
	"golang.org/x/text/language"
)

var (
	// ErrDictionaryRead is returned when a dictionary file cannot be read.
	ErrDictionaryRead = zerr.New("failed to read dictionary")

	// ErrDictionaryParse is returned when a dictionary file is not valid YAML.
	ErrDictionaryParse = zerr.New("failed to parse dictionary")

	// ErrInvalidEntry is returned for empty or padded tokens.
	ErrInvalidEntry = zerr.New("invalid dictionary entry")

	// ErrInvalidLocale is returned when the locale is not a BCP 47 tag.
	ErrInvalidLocale = zerr.New("invalid dictionary locale")
)

// Dictionary is an extension file layered on top of the built-in table.
//
//	locale: id
//	description: Extra spellings for printing
//	groups:
//	  - target: print
//	    sources: [cetak, tampilkan]
type Dictionary struct {
	Locale      string  `yaml:"locale"`
	Description string  `yaml:"description,omitempty"`
	Groups      []Group `yaml:"groups"`

	// Path is the file the dictionary was loaded from, if any.
	Path string `yaml:"-"`
}

// Tag returns the parsed locale, or language.Und when none is set.
func (d *Dictionary) Tag() language.Tag {
	if d.Locale == "" {
		return language.Und
	}
	tag, err := language.Parse(d.Locale)
	if err != nil {
		return language.Und
	}
	return tag
}

// LoadFile reads and validates a dictionary file.
func LoadFile(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user supplied dictionary
	if err != nil {
		return nil, zerr.With(fmt.Errorf("%w: %w", ErrDictionaryRead, err), "path", path)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	d.Path = path
	return d, nil
}

// Parse decodes and validates dictionary YAML.
func Parse(data []byte) (*Dictionary, error) {
	var d Dictionary
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDictionaryParse, err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks the locale and every group.
func (d *Dictionary) Validate() error {
	if d.Locale != "" {
		if _, err := language.Parse(d.Locale); err != nil {
			return zerr.With(fmt.Errorf("%w: %q", ErrInvalidLocale, d.Locale), "locale", d.Locale)
		}
	}
	for i, g := range d.Groups {
		if !validToken(g.Target) {
			return zerr.With(fmt.Errorf("%w: group %d: bad target %q", ErrInvalidEntry, i, g.Target), "group", i)
		}
		if len(g.Sources) == 0 {
			return zerr.With(fmt.Errorf("%w: group %d (%s): no sources", ErrInvalidEntry, i, g.Target), "group", i)
		}
		for _, src := range g.Sources {
			if !validToken(src) {
				return zerr.With(fmt.Errorf("%w: group %d (%s): bad source %q", ErrInvalidEntry, i, g.Target, src), "group", i)
			}
		}
	}
	return nil
}

func validToken(s string) bool {
	return s != "" && strings.TrimSpace(s) == s
}
