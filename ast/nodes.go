package ast

import "modernc.org/token"

// Node is the interface for all AST nodes.
type Node interface {
	node()
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmt()
	StmtPos() token.Pos
}

// BaseStmt provides the position shared by all statements.
type BaseStmt struct {
	StartPos token.Pos // position of the first token
}

func (b BaseStmt) StmtPos() token.Pos { return b.StartPos }

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	expr()
}

// Ident is a name that is not an identifier use: a function, class or
// parameter name, a keyword-argument name, an import alias, an attribute
// member. It carries its offset so it can still be edited explicitly.
type Ident struct {
	Name   string
	Offset int
	Pos    token.Pos
}

func (i *Ident) node() {}

// File is the root node.
type File struct {
	Name   string // display path of the source
	Source string // text the tree was parsed from
	Body   []Stmt
	Edits  []Edit // replacements applied by Print
}

func (f *File) node() {}

// --- Statements ---

// ExprStmt is a statement that is just an expression.
type ExprStmt struct {
	BaseStmt
	Value Expr
}

// AssignStmt represents t1 = t2 = ... = value.
type AssignStmt struct {
	BaseStmt
	Targets []Expr
	Value   Expr
}

// AugAssignStmt represents target op= value.
type AugAssignStmt struct {
	BaseStmt
	Target Expr
	Op     string
	Value  Expr
}

// AnnAssignStmt represents target: annotation [= value].
type AnnAssignStmt struct {
	BaseStmt
	Target     Expr
	Annotation Expr
	Value      Expr // nil if absent
}

// KeywordStmt represents pass, break and continue.
type KeywordStmt struct {
	BaseStmt
	Keyword string
}

// ReturnStmt represents return [value].
type ReturnStmt struct {
	BaseStmt
	Value Expr // nil if bare return
}

// RaiseStmt represents raise [exc [from cause]].
type RaiseStmt struct {
	BaseStmt
	Exc   Expr
	Cause Expr
}

// DelStmt represents del targets.
type DelStmt struct {
	BaseStmt
	Targets []Expr
}

// AssertStmt represents assert test [, msg].
type AssertStmt struct {
	BaseStmt
	Test Expr
	Msg  Expr
}

// GlobalStmt represents global and nonlocal declarations.
type GlobalStmt struct {
	BaseStmt
	Nonlocal bool
	Names    []*Ident
}

// Alias is one name of an import statement: name [as asname].
type Alias struct {
	Name   string // dotted module or member name
	AsName *Ident // nil without "as"
}

// ImportStmt represents import a.b [as c], ...
type ImportStmt struct {
	BaseStmt
	Names []*Alias
}

// ImportFromStmt represents from [.]module import names.
type ImportFromStmt struct {
	BaseStmt
	Module string
	Level  int      // number of leading dots
	Names  []*Alias // a single "*" alias for star imports
}

// IfStmt represents if/elif/else. An elif is an IfStmt alone in Else
// with Elif set.
type IfStmt struct {
	BaseStmt
	Test Expr
	Body []Stmt
	Else []Stmt
	Elif bool
}

// WhileStmt represents while test: body [else: body].
type WhileStmt struct {
	BaseStmt
	Test Expr
	Body []Stmt
	Else []Stmt
}

// ForStmt represents [async] for target in iter: body [else: body].
type ForStmt struct {
	BaseStmt
	Async  bool
	Target Expr
	Iter   Expr
	Body   []Stmt
	Else   []Stmt
}

// ExceptHandler is one except clause.
type ExceptHandler struct {
	Star bool   // except*
	Type Expr   // nil for a bare except
	Name *Ident // nil without "as"
	Body []Stmt
}

func (h *ExceptHandler) node() {}

// TryStmt represents try/except/else/finally.
type TryStmt struct {
	BaseStmt
	Body     []Stmt
	Handlers []*ExceptHandler
	Else     []Stmt
	Finally  []Stmt
}

// WithItem is context [as vars].
type WithItem struct {
	Context Expr
	Vars    Expr
}

func (w *WithItem) node() {}

// WithStmt represents [async] with items: body.
type WithStmt struct {
	BaseStmt
	Async bool
	Items []*WithItem
	Body  []Stmt
}

// MatchCase is one case clause: case pattern [if guard]: body.
type MatchCase struct {
	Pattern Pattern
	Guard   Expr // nil without "if"
	Body    []Stmt
}

func (c *MatchCase) node() {}

// MatchStmt represents match subject: cases.
type MatchStmt struct {
	BaseStmt
	Subject Expr
	Cases   []*MatchCase
}

// ParamKind distinguishes the parameter forms of a signature.
type ParamKind uint8

const (
	ParamNormal ParamKind = iota
	ParamVarArgs          // *args
	ParamKwArgs           // **kwargs
	ParamSlash            // bare / marker
	ParamStar             // bare * marker
)

// Param is one formal parameter.
type Param struct {
	Kind       ParamKind
	Name       *Ident // nil for the / and * markers
	Annotation Expr
	Default    Expr
}

func (p *Param) node() {}

// FuncDef represents [async] def name(params) [-> returns]: body.
type FuncDef struct {
	BaseStmt
	Async      bool
	Decorators []Expr
	Name       *Ident
	Params     []*Param
	Returns    Expr
	Body       []Stmt
}

// ClassDef represents class name[(bases)]: body.
type ClassDef struct {
	BaseStmt
	Decorators []Expr
	Name       *Ident
	Bases      []*Arg
	Body       []Stmt
}

func (*ExprStmt) node()       {}
func (*AssignStmt) node()     {}
func (*AugAssignStmt) node()  {}
func (*AnnAssignStmt) node()  {}
func (*KeywordStmt) node()    {}
func (*ReturnStmt) node()     {}
func (*RaiseStmt) node()      {}
func (*DelStmt) node()        {}
func (*AssertStmt) node()     {}
func (*GlobalStmt) node()     {}
func (*Alias) node()          {}
func (*ImportStmt) node()     {}
func (*ImportFromStmt) node() {}
func (*IfStmt) node()         {}
func (*WhileStmt) node()      {}
func (*ForStmt) node()        {}
func (*TryStmt) node()        {}
func (*WithStmt) node()       {}
func (*MatchStmt) node()      {}
func (*FuncDef) node()        {}
func (*ClassDef) node()       {}

func (*ExprStmt) stmt()       {}
func (*AssignStmt) stmt()     {}
func (*AugAssignStmt) stmt()  {}
func (*AnnAssignStmt) stmt()  {}
func (*KeywordStmt) stmt()    {}
func (*ReturnStmt) stmt()     {}
func (*RaiseStmt) stmt()      {}
func (*DelStmt) stmt()        {}
func (*AssertStmt) stmt()     {}
func (*GlobalStmt) stmt()     {}
func (*ImportStmt) stmt()     {}
func (*ImportFromStmt) stmt() {}
func (*IfStmt) stmt()         {}
func (*WhileStmt) stmt()      {}
func (*ForStmt) stmt()        {}
func (*TryStmt) stmt()        {}
func (*WithStmt) stmt()       {}
func (*MatchStmt) stmt()      {}
func (*FuncDef) stmt()        {}
func (*ClassDef) stmt()       {}

// --- Patterns ---

// Pattern is the interface for the patterns of a case clause. Capture
// names are Idents; value and class references are expressions.
type Pattern interface {
	Node
	pattern()
}

// MatchValue matches a literal or a dotted value reference.
type MatchValue struct {
	Value Expr
}

// MatchAs is a capture (Pattern nil), the wildcard _ (both nil) or
// pattern as name.
type MatchAs struct {
	Pattern Pattern
	Name    *Ident
}

// MatchStar is *name or *_ inside a sequence pattern.
type MatchStar struct {
	Name *Ident // nil for *_
}

// MatchSequence is [p, ...] or (p, ...).
type MatchSequence struct {
	Patterns []Pattern
}

// MatchMapping is {key: p, ..., **rest}.
type MatchMapping struct {
	Keys     []Expr
	Patterns []Pattern
	Rest     *Ident
}

// MatchClass is cls(p, ..., kw=p, ...).
type MatchClass struct {
	Cls         Expr
	Patterns    []Pattern
	KwdNames    []*Ident
	KwdPatterns []Pattern
}

// MatchOr is p | p | ....
type MatchOr struct {
	Patterns []Pattern
}

func (*MatchValue) node()    {}
func (*MatchAs) node()       {}
func (*MatchStar) node()     {}
func (*MatchSequence) node() {}
func (*MatchMapping) node()  {}
func (*MatchClass) node()    {}
func (*MatchOr) node()       {}

func (*MatchValue) pattern()    {}
func (*MatchAs) pattern()       {}
func (*MatchStar) pattern()     {}
func (*MatchSequence) pattern() {}
func (*MatchMapping) pattern()  {}
func (*MatchClass) pattern()    {}
func (*MatchOr) pattern()       {}

// --- Expressions ---

// Name is an identifier use: a variable read or write, or a call target.
// These are the nodes the rewriter renames.
type Name struct {
	ID     string
	Offset int
	Pos    token.Pos
}

// ConstKind classifies a Constant.
type ConstKind uint8

const (
	ConstNumber ConstKind = iota
	ConstString
	ConstTrue
	ConstFalse
	ConstNone
	ConstEllipsis
)

// Constant is a literal. Adjacent string literals are one Constant.
type Constant struct {
	Kind ConstKind
	Text string // source spelling
	Pos  token.Pos

	// Values holds the replacement field expressions of f-string parts,
	// including fields nested in format specs, in source order.
	Values []Expr
}

// Attribute represents value.attr.
type Attribute struct {
	Value Expr
	Attr  *Ident
}

// Arg is a call argument: value, *value, **value or keyword=value.
type Arg struct {
	Keyword *Ident // nil for positional arguments
	Star    int    // 1 for *value, 2 for **value
	Value   Expr
}

func (a *Arg) node() {}

// Call represents func(args...).
type Call struct {
	Func Expr
	Args []*Arg
}

// Subscript represents value[index].
type Subscript struct {
	Value Expr
	Index Expr
}

// Slice represents lower:upper:step inside a subscript.
type Slice struct {
	Lower Expr
	Upper Expr
	Step  Expr
}

// BinOp represents left op right, including the and/or boolean operators.
type BinOp struct {
	Left  Expr
	Op    string
	Right Expr
}

// UnaryOp represents op operand (not, -, +, ~).
type UnaryOp struct {
	Op      string
	Operand Expr
}

// Compare represents a chained comparison.
type Compare struct {
	Left        Expr
	Ops         []string
	Comparators []Expr
}

// IfExp represents body if test else orelse.
type IfExp struct {
	Body Expr
	Test Expr
	Else Expr
}

// Lambda represents lambda params: body.
type Lambda struct {
	Params []*Param
	Body   Expr
}

// NamedExpr represents target := value.
type NamedExpr struct {
	Target *Name
	Value  Expr
}

// Await represents await value.
type Await struct {
	Value Expr
}

// Yield represents yield [value] and yield from value.
type Yield struct {
	From  bool
	Value Expr
}

// Starred represents *value in assignments, displays and subscripts.
type Starred struct {
	Value Expr
}

// Tuple, List and Set are displays; Paren records explicit parentheses.
type Tuple struct {
	Elts  []Expr
	Paren bool
}

type List struct {
	Elts []Expr
}

type Set struct {
	Elts []Expr
}

// Dict is a dict display. A nil key marks a **mapping unpacking.
type Dict struct {
	Keys   []Expr
	Values []Expr
}

// Comprehension is one for/if clause group of a comprehension.
type Comprehension struct {
	Async  bool
	Target Expr
	Iter   Expr
	Ifs    []Expr
}

func (c *Comprehension) node() {}

// CompKind tells list, set and generator comprehensions apart.
type CompKind uint8

const (
	CompList CompKind = iota
	CompSet
	CompGenerator
)

// Comp is a list, set or generator comprehension.
type Comp struct {
	Kind       CompKind
	Elt        Expr
	Generators []*Comprehension
}

// DictComp is {key: value for ...}.
type DictComp struct {
	Key        Expr
	Value      Expr
	Generators []*Comprehension
}

func (*Name) node()      {}
func (*Constant) node()  {}
func (*Attribute) node() {}
func (*Call) node()      {}
func (*Subscript) node() {}
func (*Slice) node()     {}
func (*BinOp) node()     {}
func (*UnaryOp) node()   {}
func (*Compare) node()   {}
func (*IfExp) node()     {}
func (*Lambda) node()    {}
func (*NamedExpr) node() {}
func (*Await) node()     {}
func (*Yield) node()     {}
func (*Starred) node()   {}
func (*Tuple) node()     {}
func (*List) node()      {}
func (*Set) node()       {}
func (*Dict) node()      {}
func (*Comp) node()      {}
func (*DictComp) node()  {}

func (*Name) expr()      {}
func (*Constant) expr()  {}
func (*Attribute) expr() {}
func (*Call) expr()      {}
func (*Subscript) expr() {}
func (*Slice) expr()     {}
func (*BinOp) expr()     {}
func (*UnaryOp) expr()   {}
func (*Compare) expr()   {}
func (*IfExp) expr()     {}
func (*Lambda) expr()    {}
func (*NamedExpr) expr() {}
func (*Await) expr()     {}
func (*Yield) expr()     {}
func (*Starred) expr()   {}
func (*Tuple) expr()     {}
func (*List) expr()      {}
func (*Set) expr()       {}
func (*Dict) expr()      {}
func (*Comp) expr()      {}
func (*DictComp) expr()  {}

// DottedName returns the "a.b.c" spelling of a chain of attribute accesses
// rooted at a Name, or false for any other expression.
func DottedName(e Expr) (string, bool) {
	switch x := e.(type) {
	case *Name:
		return x.ID, true
	case *Attribute:
		base, ok := DottedName(x.Value)
		if !ok {
			return "", false
		}
		return base + "." + x.Attr.Name, true
	}
	return "", false
}
