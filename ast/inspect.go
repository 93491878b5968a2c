package ast

// Inspect traverses the tree rooted at n in source order. It calls fn for
// every node; when fn returns false the node's children are skipped.
// Nil children are never passed to fn.
func Inspect(n Node, fn func(Node) bool) {
	if isNil(n) || !fn(n) {
		return
	}
	switch x := n.(type) {
	case *File:
		inspectStmts(x.Body, fn)

	// statements
	case *ExprStmt:
		Inspect(x.Value, fn)
	case *AssignStmt:
		inspectExprs(x.Targets, fn)
		Inspect(x.Value, fn)
	case *AugAssignStmt:
		Inspect(x.Target, fn)
		Inspect(x.Value, fn)
	case *AnnAssignStmt:
		Inspect(x.Target, fn)
		Inspect(x.Annotation, fn)
		Inspect(x.Value, fn)
	case *ReturnStmt:
		Inspect(x.Value, fn)
	case *RaiseStmt:
		Inspect(x.Exc, fn)
		Inspect(x.Cause, fn)
	case *DelStmt:
		inspectExprs(x.Targets, fn)
	case *AssertStmt:
		Inspect(x.Test, fn)
		Inspect(x.Msg, fn)
	case *GlobalStmt:
		for _, id := range x.Names {
			Inspect(id, fn)
		}
	case *ImportStmt:
		for _, a := range x.Names {
			Inspect(a, fn)
		}
	case *ImportFromStmt:
		for _, a := range x.Names {
			Inspect(a, fn)
		}
	case *Alias:
		if x.AsName != nil {
			Inspect(x.AsName, fn)
		}
	case *IfStmt:
		Inspect(x.Test, fn)
		inspectStmts(x.Body, fn)
		inspectStmts(x.Else, fn)
	case *WhileStmt:
		Inspect(x.Test, fn)
		inspectStmts(x.Body, fn)
		inspectStmts(x.Else, fn)
	case *ForStmt:
		Inspect(x.Target, fn)
		Inspect(x.Iter, fn)
		inspectStmts(x.Body, fn)
		inspectStmts(x.Else, fn)
	case *TryStmt:
		inspectStmts(x.Body, fn)
		for _, h := range x.Handlers {
			Inspect(h, fn)
		}
		inspectStmts(x.Else, fn)
		inspectStmts(x.Finally, fn)
	case *ExceptHandler:
		Inspect(x.Type, fn)
		if x.Name != nil {
			Inspect(x.Name, fn)
		}
		inspectStmts(x.Body, fn)
	case *WithStmt:
		for _, it := range x.Items {
			Inspect(it, fn)
		}
		inspectStmts(x.Body, fn)
	case *WithItem:
		Inspect(x.Context, fn)
		Inspect(x.Vars, fn)
	case *MatchStmt:
		Inspect(x.Subject, fn)
		for _, c := range x.Cases {
			Inspect(c, fn)
		}
	case *MatchCase:
		Inspect(x.Pattern, fn)
		Inspect(x.Guard, fn)
		inspectStmts(x.Body, fn)
	case *FuncDef:
		inspectExprs(x.Decorators, fn)
		Inspect(x.Name, fn)
		for _, p := range x.Params {
			Inspect(p, fn)
		}
		Inspect(x.Returns, fn)
		inspectStmts(x.Body, fn)
	case *ClassDef:
		inspectExprs(x.Decorators, fn)
		Inspect(x.Name, fn)
		for _, a := range x.Bases {
			Inspect(a, fn)
		}
		inspectStmts(x.Body, fn)
	case *Param:
		if x.Name != nil {
			Inspect(x.Name, fn)
		}
		Inspect(x.Annotation, fn)
		Inspect(x.Default, fn)

	// patterns
	case *MatchValue:
		Inspect(x.Value, fn)
	case *MatchAs:
		Inspect(x.Pattern, fn)
		Inspect(x.Name, fn)
	case *MatchStar:
		Inspect(x.Name, fn)
	case *MatchSequence:
		inspectPatterns(x.Patterns, fn)
	case *MatchMapping:
		for i := range x.Patterns {
			Inspect(x.Keys[i], fn)
			Inspect(x.Patterns[i], fn)
		}
		Inspect(x.Rest, fn)
	case *MatchClass:
		Inspect(x.Cls, fn)
		inspectPatterns(x.Patterns, fn)
		for i := range x.KwdPatterns {
			Inspect(x.KwdNames[i], fn)
			Inspect(x.KwdPatterns[i], fn)
		}
	case *MatchOr:
		inspectPatterns(x.Patterns, fn)

	// expressions
	case *Constant:
		inspectExprs(x.Values, fn)
	case *Attribute:
		Inspect(x.Value, fn)
		Inspect(x.Attr, fn)
	case *Call:
		Inspect(x.Func, fn)
		for _, a := range x.Args {
			Inspect(a, fn)
		}
	case *Arg:
		if x.Keyword != nil {
			Inspect(x.Keyword, fn)
		}
		Inspect(x.Value, fn)
	case *Subscript:
		Inspect(x.Value, fn)
		Inspect(x.Index, fn)
	case *Slice:
		Inspect(x.Lower, fn)
		Inspect(x.Upper, fn)
		Inspect(x.Step, fn)
	case *BinOp:
		Inspect(x.Left, fn)
		Inspect(x.Right, fn)
	case *UnaryOp:
		Inspect(x.Operand, fn)
	case *Compare:
		Inspect(x.Left, fn)
		inspectExprs(x.Comparators, fn)
	case *IfExp:
		Inspect(x.Body, fn)
		Inspect(x.Test, fn)
		Inspect(x.Else, fn)
	case *Lambda:
		for _, p := range x.Params {
			Inspect(p, fn)
		}
		Inspect(x.Body, fn)
	case *NamedExpr:
		Inspect(x.Target, fn)
		Inspect(x.Value, fn)
	case *Await:
		Inspect(x.Value, fn)
	case *Yield:
		Inspect(x.Value, fn)
	case *Starred:
		Inspect(x.Value, fn)
	case *Tuple:
		inspectExprs(x.Elts, fn)
	case *List:
		inspectExprs(x.Elts, fn)
	case *Set:
		inspectExprs(x.Elts, fn)
	case *Dict:
		for i := range x.Values {
			Inspect(x.Keys[i], fn)
			Inspect(x.Values[i], fn)
		}
	case *Comp:
		// generators are evaluated before the element, but source order
		// puts the element first
		Inspect(x.Elt, fn)
		for _, g := range x.Generators {
			Inspect(g, fn)
		}
	case *DictComp:
		Inspect(x.Key, fn)
		Inspect(x.Value, fn)
		for _, g := range x.Generators {
			Inspect(g, fn)
		}
	case *Comprehension:
		Inspect(x.Target, fn)
		Inspect(x.Iter, fn)
		inspectExprs(x.Ifs, fn)
	}
}

func inspectStmts(list []Stmt, fn func(Node) bool) {
	for _, s := range list {
		Inspect(s, fn)
	}
}

func inspectExprs(list []Expr, fn func(Node) bool) {
	for _, e := range list {
		Inspect(e, fn)
	}
}

func inspectPatterns(list []Pattern, fn func(Node) bool) {
	for _, p := range list {
		Inspect(p, fn)
	}
}

// isNil reports whether n is nil, including a nil *Ident, *Name or
// *MatchAs stored in the interface.
func isNil(n Node) bool {
	switch x := n.(type) {
	case nil:
		return true
	case *Ident:
		return x == nil
	case *Name:
		return x == nil
	case *MatchAs:
		return x == nil
	}
	return false
}
