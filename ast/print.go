package ast

import (
	"fmt"
	"sort"
	"strings"
)

// Edit replaces Len bytes at Offset of the source with Text.
type Edit struct {
	Offset int
	Len    int
	Text   string
}

// Rename returns the edit that respells a Name.
func Rename(n *Name, text string) Edit {
	return Edit{Offset: n.Offset, Len: len(n.ID), Text: text}
}

// RenameIdent returns the edit that respells an Ident.
func RenameIdent(id *Ident, text string) Edit {
	return Edit{Offset: id.Offset, Len: len(id.Name), Text: text}
}

// Print renders f as source text: the original source with every edit
// spliced in, so formatting, quoting and comments survive untouched.
// When two edits start at the same offset the later one wins; overlapping
// edits are an error.
func Print(f *File) (string, error) {
	if len(f.Edits) == 0 {
		return f.Source, nil
	}
	edits := make([]Edit, 0, len(f.Edits))
	byOffset := make(map[int]int, len(f.Edits))
	for _, e := range f.Edits {
		if i, ok := byOffset[e.Offset]; ok {
			edits[i] = e
			continue
		}
		byOffset[e.Offset] = len(edits)
		edits = append(edits, e)
	}
	sort.SliceStable(edits, func(i, j int) bool { return edits[i].Offset < edits[j].Offset })

	var sb strings.Builder
	sb.Grow(len(f.Source) + len(edits)*8)
	last := 0
	for _, e := range edits {
		if e.Offset < last || e.Offset+e.Len > len(f.Source) {
			return "", fmt.Errorf("%s: edit at offset %d overlaps or exceeds source", f.Name, e.Offset)
		}
		sb.WriteString(f.Source[last:e.Offset])
		sb.WriteString(e.Text)
		last = e.Offset + e.Len
	}
	sb.WriteString(f.Source[last:])
	return sb.String(), nil
}

// Dump renders the tree as a compact s-expression, one top-level statement
// per line. It is meant for debugging and tests.
func Dump(n Node) string {
	d := &dumper{}
	if f, ok := n.(*File); ok {
		for i, s := range f.Body {
			if i > 0 {
				d.sb.WriteByte('\n')
			}
			d.node(s)
		}
		return d.sb.String()
	}
	d.node(n)
	return d.sb.String()
}

type dumper struct {
	sb strings.Builder
}

func (d *dumper) open(tag string) { d.sb.WriteString("(" + tag) }
func (d *dumper) close()          { d.sb.WriteByte(')') }

func (d *dumper) atom(s string) {
	d.sb.WriteByte(' ')
	d.sb.WriteString(s)
}

func (d *dumper) child(n Node) {
	d.sb.WriteByte(' ')
	if isNil(n) {
		d.sb.WriteString("_")
		return
	}
	d.node(n)
}

func (d *dumper) exprs(tag string, list []Expr) {
	d.sb.WriteString(" (" + tag)
	for _, e := range list {
		d.child(e)
	}
	d.close()
}

func (d *dumper) stmts(tag string, list []Stmt) {
	if len(list) == 0 {
		return
	}
	d.sb.WriteString(" (" + tag)
	for _, s := range list {
		d.child(s)
	}
	d.close()
}

func (d *dumper) node(n Node) {
	switch x := n.(type) {
	case *ExprStmt:
		d.open("expr")
		d.child(x.Value)
	case *AssignStmt:
		d.open("assign")
		for _, t := range x.Targets {
			d.child(t)
		}
		d.child(x.Value)
	case *AugAssignStmt:
		d.open("augassign")
		d.atom(x.Op)
		d.child(x.Target)
		d.child(x.Value)
	case *AnnAssignStmt:
		d.open("annassign")
		d.child(x.Target)
		d.child(x.Annotation)
		d.child(x.Value)
	case *KeywordStmt:
		d.open(x.Keyword)
	case *ReturnStmt:
		d.open("return")
		if x.Value != nil {
			d.child(x.Value)
		}
	case *RaiseStmt:
		d.open("raise")
		d.child(x.Exc)
		if x.Cause != nil {
			d.child(x.Cause)
		}
	case *DelStmt:
		d.open("del")
		for _, t := range x.Targets {
			d.child(t)
		}
	case *AssertStmt:
		d.open("assert")
		d.child(x.Test)
		if x.Msg != nil {
			d.child(x.Msg)
		}
	case *GlobalStmt:
		if x.Nonlocal {
			d.open("nonlocal")
		} else {
			d.open("global")
		}
		for _, id := range x.Names {
			d.atom(id.Name)
		}
	case *ImportStmt:
		d.open("import")
		for _, a := range x.Names {
			d.child(a)
		}
	case *ImportFromStmt:
		d.open("from")
		d.atom(strings.Repeat(".", x.Level) + x.Module)
		for _, a := range x.Names {
			d.child(a)
		}
	case *Alias:
		d.open("alias")
		d.atom(x.Name)
		if x.AsName != nil {
			d.atom(x.AsName.Name)
		}
	case *IfStmt:
		if x.Elif {
			d.open("elif")
		} else {
			d.open("if")
		}
		d.child(x.Test)
		d.stmts("body", x.Body)
		d.stmts("else", x.Else)
	case *WhileStmt:
		d.open("while")
		d.child(x.Test)
		d.stmts("body", x.Body)
		d.stmts("else", x.Else)
	case *ForStmt:
		if x.Async {
			d.open("async-for")
		} else {
			d.open("for")
		}
		d.child(x.Target)
		d.child(x.Iter)
		d.stmts("body", x.Body)
		d.stmts("else", x.Else)
	case *TryStmt:
		d.open("try")
		d.stmts("body", x.Body)
		for _, h := range x.Handlers {
			d.child(h)
		}
		d.stmts("else", x.Else)
		d.stmts("finally", x.Finally)
	case *ExceptHandler:
		if x.Star {
			d.open("except*")
		} else {
			d.open("except")
		}
		d.child(x.Type)
		if x.Name != nil {
			d.atom(x.Name.Name)
		}
		d.stmts("body", x.Body)
	case *WithStmt:
		if x.Async {
			d.open("async-with")
		} else {
			d.open("with")
		}
		for _, it := range x.Items {
			d.child(it)
		}
		d.stmts("body", x.Body)
	case *WithItem:
		d.open("item")
		d.child(x.Context)
		if x.Vars != nil {
			d.child(x.Vars)
		}
	case *MatchStmt:
		d.open("match")
		d.child(x.Subject)
		for _, c := range x.Cases {
			d.child(c)
		}
	case *MatchCase:
		d.open("case")
		d.child(x.Pattern)
		if x.Guard != nil {
			d.sb.WriteString(" (if")
			d.child(x.Guard)
			d.close()
		}
		d.stmts("body", x.Body)
	case *MatchValue:
		d.node(x.Value)
		return
	case *MatchAs:
		switch {
		case x.Pattern != nil:
			d.open("as")
			d.child(x.Pattern)
			d.atom(x.Name.Name)
		case x.Name != nil:
			d.sb.WriteString(x.Name.Name)
			return
		default:
			d.sb.WriteString("_")
			return
		}
	case *MatchStar:
		if x.Name == nil {
			d.sb.WriteString("*_")
		} else {
			d.sb.WriteString("*" + x.Name.Name)
		}
		return
	case *MatchSequence:
		d.open("seq")
		for _, p := range x.Patterns {
			d.child(p)
		}
	case *MatchMapping:
		d.open("mapping")
		for i := range x.Patterns {
			d.child(x.Keys[i])
			d.sb.WriteByte(':')
			d.node(x.Patterns[i])
		}
		if x.Rest != nil {
			d.sb.WriteString(" **" + x.Rest.Name)
		}
	case *MatchClass:
		d.open("cls")
		d.child(x.Cls)
		for _, p := range x.Patterns {
			d.child(p)
		}
		for i, kw := range x.KwdNames {
			d.sb.WriteString(" " + kw.Name + "=")
			d.node(x.KwdPatterns[i])
		}
	case *MatchOr:
		d.open("|")
		for _, p := range x.Patterns {
			d.child(p)
		}
	case *FuncDef:
		if x.Async {
			d.open("async-def")
		} else {
			d.open("def")
		}
		d.atom(x.Name.Name)
		if len(x.Decorators) > 0 {
			d.exprs("decorators", x.Decorators)
		}
		d.sb.WriteString(" (params")
		for _, p := range x.Params {
			d.child(p)
		}
		d.close()
		if x.Returns != nil {
			d.sb.WriteString(" (returns")
			d.child(x.Returns)
			d.close()
		}
		d.stmts("body", x.Body)
	case *ClassDef:
		d.open("class")
		d.atom(x.Name.Name)
		if len(x.Decorators) > 0 {
			d.exprs("decorators", x.Decorators)
		}
		for _, a := range x.Bases {
			d.child(a)
		}
		d.stmts("body", x.Body)
	case *Param:
		switch x.Kind {
		case ParamSlash:
			d.sb.WriteString("/")
			return
		case ParamStar:
			d.sb.WriteString("*")
			return
		case ParamVarArgs:
			d.sb.WriteString("*" + x.Name.Name)
		case ParamKwArgs:
			d.sb.WriteString("**" + x.Name.Name)
		default:
			d.sb.WriteString(x.Name.Name)
		}
		if x.Annotation != nil {
			d.sb.WriteByte(':')
			d.node(x.Annotation)
		}
		if x.Default != nil {
			d.sb.WriteByte('=')
			d.node(x.Default)
		}
		return

	case *Name:
		d.sb.WriteString(x.ID)
		return
	case *Ident:
		d.sb.WriteString(x.Name)
		return
	case *Constant:
		if len(x.Values) == 0 {
			d.sb.WriteString(x.Text)
			return
		}
		d.open("fstring")
		d.atom(x.Text)
		for _, v := range x.Values {
			d.child(v)
		}
	case *Attribute:
		d.open("attr")
		d.child(x.Value)
		d.atom(x.Attr.Name)
	case *Call:
		d.open("call")
		d.child(x.Func)
		for _, a := range x.Args {
			d.child(a)
		}
	case *Arg:
		switch {
		case x.Keyword != nil:
			d.sb.WriteString(x.Keyword.Name + "=")
		case x.Star == 1:
			d.sb.WriteString("*")
		case x.Star == 2:
			d.sb.WriteString("**")
		}
		d.node(x.Value)
		return
	case *Subscript:
		d.open("index")
		d.child(x.Value)
		d.child(x.Index)
	case *Slice:
		d.open("slice")
		d.child(x.Lower)
		d.child(x.Upper)
		d.child(x.Step)
	case *BinOp:
		d.open(x.Op)
		d.child(x.Left)
		d.child(x.Right)
	case *UnaryOp:
		d.open(x.Op)
		d.child(x.Operand)
	case *Compare:
		d.open("cmp")
		d.child(x.Left)
		for i, op := range x.Ops {
			d.atom(op)
			d.child(x.Comparators[i])
		}
	case *IfExp:
		d.open("ifexp")
		d.child(x.Test)
		d.child(x.Body)
		d.child(x.Else)
	case *Lambda:
		d.open("lambda")
		d.sb.WriteString(" (params")
		for _, p := range x.Params {
			d.child(p)
		}
		d.close()
		d.child(x.Body)
	case *NamedExpr:
		d.open(":=")
		d.child(x.Target)
		d.child(x.Value)
	case *Await:
		d.open("await")
		d.child(x.Value)
	case *Yield:
		if x.From {
			d.open("yield-from")
		} else {
			d.open("yield")
		}
		if x.Value != nil {
			d.child(x.Value)
		}
	case *Starred:
		d.sb.WriteString("*")
		d.node(x.Value)
		return
	case *Tuple:
		d.open("tuple")
		for _, e := range x.Elts {
			d.child(e)
		}
	case *List:
		d.open("list")
		for _, e := range x.Elts {
			d.child(e)
		}
	case *Set:
		d.open("set")
		for _, e := range x.Elts {
			d.child(e)
		}
	case *Dict:
		d.open("dict")
		for i := range x.Values {
			if x.Keys[i] == nil {
				d.sb.WriteString(" **")
				d.node(x.Values[i])
				continue
			}
			d.child(x.Keys[i])
			d.sb.WriteByte(':')
			d.node(x.Values[i])
		}
	case *Comp:
		d.open([...]string{"listcomp", "setcomp", "genexp"}[x.Kind])
		d.child(x.Elt)
		for _, g := range x.Generators {
			d.child(g)
		}
	case *DictComp:
		d.open("dictcomp")
		d.child(x.Key)
		d.child(x.Value)
		for _, g := range x.Generators {
			d.child(g)
		}
	case *Comprehension:
		if x.Async {
			d.open("async-for")
		} else {
			d.open("for")
		}
		d.child(x.Target)
		d.child(x.Iter)
		for _, e := range x.Ifs {
			d.sb.WriteString(" (if")
			d.child(e)
			d.close()
		}
	default:
		d.sb.WriteString(fmt.Sprintf("<%T>", n))
		return
	}
	d.close()
}
