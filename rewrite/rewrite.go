// Package rewrite implements the tree translation path. Source text is
// parsed, identifier nodes are renamed through the mapping table, and the
// imports implied by qualified replacements are collected on the way.
package rewrite

import (
	"sort"

	"github.com/rubiojr/pys/ast"
	"github.com/rubiojr/pys/mapping"
	"github.com/rubiojr/pys/parser"
	"github.com/rubiojr/pys/scanner"
)

// Result is the outcome of a successful rewrite.
type Result struct {
	Text    string
	Imports []string // sorted "import <namespace>" statements
	Renamed int      // number of tokens respelled
}

// Rewriter renames identifiers in parsed source. It holds no mutable state
// and is safe for concurrent use.
type Rewriter struct {
	table *mapping.Table
}

// New returns a Rewriter over table.
func New(table *mapping.Table) *Rewriter {
	return &Rewriter{table: table}
}

// Rewrite parses src and renames every mapped identifier. Input that does
// not parse as a self-contained unit returns the parse error; callers fall
// back to lexical substitution.
func (r *Rewriter) Rewrite(name, src string) (*Result, error) {
	f, err := parser.Parse(name, src)
	if err != nil {
		return nil, err
	}
	imports := make(importSet)
	out := r.Transform(imports).Transform(f)
	text, err := ast.Print(out)
	if err != nil {
		return nil, err
	}
	return &Result{Text: text, Imports: imports.sorted(), Renamed: len(out.Edits)}, nil
}

// Transform returns the rename passes as one chained transform. Imports
// required by the renamed file are added to imports.
func (r *Rewriter) Transform(imports map[string]bool) ast.Transform {
	return ast.Chain(
		ast.TransformFunc{N: "rename-names", F: func(f *ast.File) *ast.File {
			return r.renameNames(f, importSet(imports))
		}},
		ast.TransformFunc{N: "rename-methods", F: r.renameMethods},
		ast.TransformFunc{N: "qualified-calls", F: func(f *ast.File) *ast.File {
			r.qualifiedCalls(f, importSet(imports))
			return f
		}},
	)
}

// renameNames respells every mapped Name node, which covers identifier
// uses and plain call targets. A qualified replacement requires an import.
func (r *Rewriter) renameNames(f *ast.File, imports importSet) *ast.File {
	var edits []ast.Edit
	ast.Inspect(f, func(n ast.Node) bool {
		name, ok := n.(*ast.Name)
		if !ok {
			return true
		}
		target, ok := r.table.Lookup(name.ID)
		if !ok || target == name.ID {
			return true
		}
		edits = append(edits, ast.Rename(name, target))
		imports.add(target)
		return true
	})
	return ast.WithEdits(f, edits...)
}

// renameMethods respells the member of a method call, x.member(...), when
// the member maps to a plain identifier. Qualified or reserved targets
// would not be valid member names and are left alone.
func (r *Rewriter) renameMethods(f *ast.File) *ast.File {
	var edits []ast.Edit
	ast.Inspect(f, func(n ast.Node) bool {
		call, ok := n.(*ast.Call)
		if !ok {
			return true
		}
		attr, ok := call.Func.(*ast.Attribute)
		if !ok {
			return true
		}
		target, ok := r.table.Lookup(attr.Attr.Name)
		if !ok || target == attr.Attr.Name || !scanner.IsIdentifier(target) {
			return true
		}
		edits = append(edits, ast.RenameIdent(attr.Attr, target))
		return true
	})
	return ast.WithEdits(f, edits...)
}

// qualifiedCalls records the import of call targets that already spell a
// qualified dictionary target, as in text translated line by line.
func (r *Rewriter) qualifiedCalls(f *ast.File, imports importSet) {
	ast.Inspect(f, func(n ast.Node) bool {
		call, ok := n.(*ast.Call)
		if !ok {
			return true
		}
		if _, isAttr := call.Func.(*ast.Attribute); !isAttr {
			return true
		}
		if dotted, ok := ast.DottedName(call.Func); ok && r.table.IsQualifiedTarget(dotted) {
			imports.add(dotted)
		}
		return true
	})
}

type importSet map[string]bool

// add records the import a target requires, if any.
func (s importSet) add(target string) {
	if imp, ok := mapping.ImportFor(target); ok {
		s[imp] = true
	}
}

func (s importSet) sorted() []string {
	out := make([]string, 0, len(s))
	for imp := range s {
		out = append(out, imp)
	}
	sort.Strings(out)
	return out
}
