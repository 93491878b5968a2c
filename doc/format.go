package doc

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/rubiojr/pys/mapping"
)

// FormatFile formats a FileDoc for terminal display.
func FormatFile(fd *FileDoc) string {
	var sb strings.Builder

	if fd.Doc != "" {
		sb.WriteString(fd.Doc)
		sb.WriteString("\n\n")
	}

	for _, c := range fd.Classes {
		if c.Doc == "" {
			continue
		}
		_, sig, _ := LookupSymbol(&FileDoc{Classes: []ClassDoc{c}}, c.Name)
		sb.WriteString(FormatSymbol(c.Doc, sig))
		sb.WriteString("\n")
	}

	for _, f := range fd.Funcs {
		if f.Doc == "" {
			continue
		}
		_, sig, _ := LookupSymbol(&FileDoc{Funcs: []FuncDoc{f}}, f.Name)
		sb.WriteString(FormatSymbol(f.Doc, sig))
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// FormatSymbol formats a single symbol lookup result.
func FormatSymbol(docStr, signature string) string {
	var sb strings.Builder
	sb.WriteString(signature)
	sb.WriteString("\n")
	if docStr != "" {
		sb.WriteString("    ")
		sb.WriteString(strings.ReplaceAll(docStr, "\n", "\n    "))
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatDictionary renders every target of table with the localized
// spellings that translate to it.
func FormatDictionary(w io.Writer, table *mapping.Table) error {
	tw := tablewriter.NewWriter(w)
	tw.Header("Target", "Sources")
	for _, g := range table.Groups() {
		if err := tw.Append([]string{g.Target, strings.Join(g.Sources, ", ")}); err != nil {
			return err
		}
	}
	return tw.Render()
}

// FormatToken describes token, either a localized spelling or a target.
func FormatToken(table *mapping.Table, token string) (string, bool) {
	var sb strings.Builder
	found := false

	if dst, ok := table.Lookup(token); ok {
		found = true
		fmt.Fprintf(&sb, "%s → %s\n", token, dst)
		if imp, ok := mapping.ImportFor(dst); ok {
			fmt.Fprintf(&sb, "    requires %s\n", imp)
		}
		if others := synonyms(table, dst, token); len(others) > 0 {
			fmt.Fprintf(&sb, "    also: %s\n", strings.Join(others, ", "))
		}
	}

	if srcs := synonyms(table, token, ""); len(srcs) > 0 {
		found = true
		fmt.Fprintf(&sb, "%s ← %s\n", token, strings.Join(srcs, ", "))
	}

	for _, c := range table.Conflicts() {
		if c.Source == token {
			fmt.Fprintf(&sb, "    note: %s was also listed for %s\n", c.Source, c.Dropped)
		}
	}
	return sb.String(), found
}

// FormatConflicts lists the spellings claimed by more than one target.
func FormatConflicts(table *mapping.Table) string {
	var sb strings.Builder
	for _, c := range table.Conflicts() {
		fmt.Fprintf(&sb, "%-14s %s (not %s)\n", c.Source, c.Kept, c.Dropped)
	}
	return sb.String()
}

func synonyms(table *mapping.Table, target, except string) []string {
	for _, g := range table.Groups() {
		if g.Target == target {
			return slices.DeleteFunc(slices.Clone(g.Sources), func(s string) bool { return s == except })
		}
	}
	return nil
}
