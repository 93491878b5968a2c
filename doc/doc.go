// Package doc extracts documentation from localized source files and
// renders it, together with the translation dictionary, for the terminal.
//
// Extraction works on raw source, before translation. Consecutive # lines
// immediately before a def or class line (no blank line gap) are attached
// as the doc comment for that declaration. An undocumented declaration
// falls back to its docstring.
package doc

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rubiojr/pys/mapping"
)

// FileDoc holds all extracted documentation for a single source file.
type FileDoc struct {
	Path    string
	Doc     string // file-level doc (first # block before any code)
	Funcs   []FuncDoc
	Classes []ClassDoc
}

// FuncDoc describes a function or method.
type FuncDoc struct {
	Name   string   // e.g. "hitung" or "Anjing.gonggong"
	Params []string // parameters as written, defaults included
	Doc    string
	Line   int // 1-based line number of the def
}

// ClassDoc describes a class.
type ClassDoc struct {
	Name  string
	Bases []string
	Doc   string
	Line  int
}

// ExtractFile reads a source file and extracts all documentation. Localized
// spellings of def and class are resolved through table, which may be nil.
func ExtractFile(path string, table *mapping.Table) (*FileDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Extract(string(data), path, table), nil
}

// ExtractDir aggregates the documentation of every .py file in dir
// (non-recursive). The entry file's doc becomes the top-level doc.
func ExtractDir(dir, entryFile string, table *mapping.Table) (*FileDoc, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	result := &FileDoc{Path: dir}
	entryBase := ""
	if entryFile != "" {
		entryBase = filepath.Base(entryFile)
		if fd, err := ExtractFile(entryFile, table); err == nil {
			result.Doc = fd.Doc
			result.Funcs = append(result.Funcs, fd.Funcs...)
			result.Classes = append(result.Classes, fd.Classes...)
		}
	}

	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".py" || e.Name() == entryBase {
			continue
		}
		fd, err := ExtractFile(filepath.Join(dir, e.Name()), table)
		if err != nil {
			continue
		}
		result.Funcs = append(result.Funcs, fd.Funcs...)
		result.Classes = append(result.Classes, fd.Classes...)
	}
	return result, nil
}

type openClass struct {
	name   string
	indent int
}

// Extract parses raw source and returns structured documentation.
func Extract(src, path string, table *mapping.Table) *FileDoc {
	fd := &FileDoc{Path: path}

	var commentBlock []string
	seenCode := false
	quote := ""             // delimiter of the open triple-quoted string
	var docLines []string   // docstring being collected
	var setDoc func(string) // declaration waiting for its docstring
	var classes []openClass

	keyword := func(word string) string {
		if table != nil {
			if dst, ok := table.Lookup(word); ok {
				return dst
			}
		}
		return word
	}

	for i, line := range strings.Split(src, "\n") {
		lineNum := i + 1
		trimmed := strings.TrimSpace(line)

		// Inside a triple-quoted string # lines are not comments
		if quote != "" {
			end := strings.Index(trimmed, quote)
			if setDoc != nil {
				if end >= 0 {
					docLines = append(docLines, trimmed[:end])
					setDoc(strings.TrimSpace(strings.Join(docLines, "\n")))
					setDoc = nil
				} else {
					docLines = append(docLines, trimmed)
				}
			}
			if end >= 0 {
				quote = ""
			}
			continue
		}

		if strings.HasPrefix(trimmed, "#") {
			commentBlock = append(commentBlock, strings.TrimPrefix(trimmed[1:], " "))
			continue
		}

		if trimmed == "" {
			if len(commentBlock) > 0 && !seenCode {
				fd.Doc = strings.Join(commentBlock, "\n")
				seenCode = true
			}
			commentBlock = nil
			continue
		}

		if !seenCode && len(commentBlock) > 0 {
			fd.Doc = strings.Join(commentBlock, "\n")
		}
		seenCode = true

		if setDoc != nil {
			q, body, ok := docstringStart(trimmed)
			if ok {
				if end := strings.Index(body, q); end >= 0 {
					setDoc(strings.TrimSpace(body[:end]))
					setDoc = nil
				} else {
					quote = q
					docLines = []string{body}
				}
				commentBlock = nil
				continue
			}
			setDoc = nil
		}

		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		for len(classes) > 0 && classes[len(classes)-1].indent >= indent {
			classes = classes[:len(classes)-1]
		}

		word, rest := firstWord(trimmed)
		if word == "async" {
			word, rest = firstWord(rest)
		}
		doc := strings.Join(commentBlock, "\n")
		commentBlock = nil

		switch keyword(word) {
		case "def":
			name, params := parseDecl(rest)
			if name == "" {
				break
			}
			if len(classes) > 0 {
				name = classes[len(classes)-1].name + "." + name
			}
			fd.Funcs = append(fd.Funcs, FuncDoc{Name: name, Params: params, Doc: doc, Line: lineNum})
			if doc == "" {
				idx := len(fd.Funcs) - 1
				setDoc = func(s string) { fd.Funcs[idx].Doc = s }
			}
			continue
		case "class":
			name, bases := parseDecl(rest)
			if name == "" {
				break
			}
			fd.Classes = append(fd.Classes, ClassDoc{Name: name, Bases: bases, Doc: doc, Line: lineNum})
			classes = append(classes, openClass{name: name, indent: indent})
			if doc == "" {
				idx := len(fd.Classes) - 1
				setDoc = func(s string) { fd.Classes[idx].Doc = s }
			}
			continue
		}

		quote = openTripleQuote(trimmed)
	}

	return fd
}

func firstWord(s string) (string, string) {
	end := strings.IndexFunc(s, func(r rune) bool { return r == ' ' || r == '\t' || r == '(' || r == ':' })
	if end < 0 {
		return s, ""
	}
	return s[:end], strings.TrimSpace(s[end:])
}

// parseDecl splits "name(a, b=(1, 2)) -> int:" into the name and its
// top-level parenthesized items.
func parseDecl(rest string) (string, []string) {
	rest = strings.TrimSpace(rest)
	open := strings.Index(rest, "(")
	if open < 0 {
		return strings.TrimSuffix(strings.TrimSpace(rest), ":"), nil
	}
	name := strings.TrimSpace(rest[:open])

	var items []string
	depth, start := 0, open+1
	for i := open; i < len(rest); i++ {
		switch rest[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				items = appendItem(items, rest[start:i])
				return name, items
			}
		case ',':
			if depth == 1 {
				items = appendItem(items, rest[start:i])
				start = i + 1
			}
		}
	}
	return name, items
}

func appendItem(items []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		items = append(items, s)
	}
	return items
}

func docstringStart(s string) (quote, body string, ok bool) {
	for _, q := range []string{`"""`, `'''`} {
		if strings.HasPrefix(s, q) {
			return q, s[len(q):], true
		}
	}
	return "", "", false
}

// openTripleQuote returns the delimiter of a triple-quoted string left open
// at the end of line.
func openTripleQuote(line string) string {
	for _, q := range []string{`"""`, `'''`} {
		if strings.Count(line, q)%2 == 1 {
			return q
		}
	}
	return ""
}

// LookupSymbol finds a function or class by name in a FileDoc.
func LookupSymbol(fd *FileDoc, name string) (doc string, signature string, found bool) {
	for _, f := range fd.Funcs {
		if f.Name == name {
			return f.Doc, "def " + f.Name + "(" + strings.Join(f.Params, ", ") + ")", true
		}
	}
	for _, c := range fd.Classes {
		if c.Name == name {
			sig := "class " + c.Name
			if len(c.Bases) > 0 {
				sig += "(" + strings.Join(c.Bases, ", ") + ")"
			}
			return c.Doc, sig, true
		}
	}
	return "", "", false
}
