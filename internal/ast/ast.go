// Package ast defines the typed tree of Grace declarations, statements
// and expressions, per section 3 of the specification. Nodes carry
// mutable annotation fields that are nil ("unresolved") until semantic
// analysis fills them in ("resolved"); codegen reads them, and itself
// fills only the two codegen-owned fields FuncDef.QualName and
// StringLit.Label. This is the tagged-variant approach spec.md's design
// notes (section 9) recommend in place of a process-wide mutable
// symbol graph.
package ast

import "github.com/smasonuk/gracec/internal/diag"

// Pos is re-exported from diag so AST nodes and diagnostics share one
// position type.
type Pos = diag.Pos

// ScalarKind is one of the three scalar kinds a Grace value can have.
// Nothing may only appear as a function return type.
type ScalarKind int

const (
	Int ScalarKind = iota
	Char
	Nothing
)

func (k ScalarKind) String() string {
	switch k {
	case Int:
		return "int"
	case Char:
		return "char"
	case Nothing:
		return "nothing"
	default:
		return "?"
	}
}

// Dim is one array dimension. Unspecified is only legal for the
// leading dimension of an array-typed parameter.
type Dim struct {
	Bound       int
	Unspecified bool
}

// Type is a Grace data type: either a bare scalar, or an array of a
// scalar with a non-empty ordered list of dimensions.
type Type struct {
	Elem  ScalarKind
	Array bool
	Dims  []Dim // len(Dims) == 0 when !Array
}

func ScalarType(k ScalarKind) Type { return Type{Elem: k} }

func (t Type) IsScalar() bool { return !t.Array }

// Equal compares two types structurally; used by the assignment type
// check and by declaration/definition header matching. Array dimensions
// are compared by Bound only, so an unspecified dimension (Bound 0)
// equals another unspecified one. Call argument compatibility uses
// compatibleArrayDims in the semantic package instead, which lets an
// unspecified leading parameter dimension accept any bound.
func (t Type) Equal(o Type) bool {
	if t.Elem != o.Elem || t.Array != o.Array {
		return false
	}
	if !t.Array {
		return true
	}
	if len(t.Dims) != len(o.Dims) {
		return false
	}
	for i := range t.Dims {
		if t.Dims[i].Bound != o.Dims[i].Bound {
			return false
		}
	}
	return true
}

func (t Type) String() string {
	s := t.Elem.String()
	for _, d := range t.Dims {
		if d.Unspecified {
			s += "[]"
		} else {
			s += "[N]"
		}
	}
	return s
}

// ParamMode is by-value or by-reference. Arrays must be by-reference.
type ParamMode int

const (
	ByValue ParamMode = iota
	ByRef
)

func (m ParamMode) String() string {
	if m == ByRef {
		return "ref"
	}
	return "value"
}

// FuncStatus tracks whether a function entity currently has only a
// declaration, or a matching definition, in scope.
type FuncStatus int

const (
	Declared FuncStatus = iota
	Defined
)

func (s FuncStatus) String() string {
	if s == Defined {
		return "defined"
	}
	return "declared"
}

// ResolvedRef is the annotation written onto every l-value reference by
// semantic analysis: which entity it resolves to, and how codegen
// should reach it (number of static-link hops, and the already-
// computed frame offset of the target slot).
type ResolvedRef struct {
	Type        Type
	FrameOffset int
	Hops        int      // static-link hops from the use site to the defining function's frame
	DefPath     []string // defining function's parent path, innermost-first
	ByRef       bool      // true if the slot holds a pointer that must be loaded once to reach the value
	IsParam     bool
}

// ResolvedCall is the annotation written onto call expressions/
// statements by semantic analysis.
type ResolvedCall struct {
	CalleeName string
	CalleePath []string // callee's parent path, innermost-first
	CallerPath []string // caller's parent path, innermost-first
	ParamModes []ParamMode
	ParamTypes []Type
	ReturnType Type

	// Builtin is true for a call to the fixed runtime catalog (section
	// 6): these have no Grace-level frame or static link, so codegen
	// calls the backend's declared runtime function directly instead of
	// resolving CalleePath/CallerPath against a lowered function.
	Builtin bool
}

// ---- Expressions ----

type Expr interface {
	Position() Pos
}

type IntLit struct {
	Value int
	Pos   Pos
}

func (n *IntLit) Position() Pos { return n.Pos }

type CharLit struct {
	Value rune
	Pos   Pos
}

func (n *CharLit) Position() Pos { return n.Pos }

// LValueExpr wraps an LValue so it can appear wherever Expr is expected.
type LValueExpr struct {
	LValue LValue
}

func (n *LValueExpr) Position() Pos { return n.LValue.Position() }

type CallExpr struct {
	Name string
	Args []Expr
	Pos  Pos

	Resolved *ResolvedCall
}

func (n *CallExpr) Position() Pos { return n.Pos }

type UnaryExpr struct {
	Op Oper
	X  Expr
	Pos Pos
}

func (n *UnaryExpr) Position() Pos { return n.Pos }

type BinaryExpr struct {
	Op   Oper
	X, Y Expr
	Pos  Pos
}

func (n *BinaryExpr) Position() Pos { return n.Pos }

// Oper is a shared arithmetic/comparison operator enumeration.
type Oper int

const (
	OpAdd Oper = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

// ---- L-values ----

type LValue interface {
	Position() Pos
}

type Ident struct {
	Name string
	Pos  Pos

	Resolved *ResolvedRef
}

func (n *Ident) Position() Pos { return n.Pos }

type StringLit struct {
	Value string // decoded value, without the trailing NUL
	Pos   Pos

	Label string // backend global symbol name, set by codegen on the literal that first creates the pooled global; empty on later literals with the same text
}

func (n *StringLit) Position() Pos { return n.Pos }

// IndexAccess represents Base[i1][i2]... applied as one bracket list,
// Base[i1, i2, ...] at the syntax level. Only ever applied to a simple
// l-value, per section 3.
type IndexAccess struct {
	Base    LValue
	Indices []Expr
	Pos     Pos

	Resolved *ResolvedRef // type/frame info of Base's defining entity
}

func (n *IndexAccess) Position() Pos { return n.Pos }

// ---- Conditions ----

type Cond interface {
	Position() Pos
}

type Compare struct {
	Op   Oper // one of OpEq, OpNe, OpLt, OpLe, OpGt, OpGe
	X, Y Expr
	Pos  Pos
}

func (n *Compare) Position() Pos { return n.Pos }

type LogicalOp int

const (
	LogicalAnd LogicalOp = iota
	LogicalOr
)

type LogicalBinary struct {
	Op   LogicalOp
	X, Y Cond
	Pos  Pos
}

func (n *LogicalBinary) Position() Pos { return n.Pos }

type LogicalNot struct {
	X   Cond
	Pos Pos
}

func (n *LogicalNot) Position() Pos { return n.Pos }

// ---- Statements ----

type Stmt interface {
	Position() Pos
}

type EmptyStmt struct{ Pos Pos }

func (n *EmptyStmt) Position() Pos { return n.Pos }

type Assignment struct {
	Target LValue
	Value  Expr
	Pos    Pos
}

func (n *Assignment) Position() Pos { return n.Pos }

type Block struct {
	Stmts []Stmt
	Pos   Pos
}

func (n *Block) Position() Pos { return n.Pos }

type CallStmt struct {
	Call *CallExpr
	Pos  Pos
}

func (n *CallStmt) Position() Pos { return n.Pos }

type IfStmt struct {
	Cond Cond
	Then Stmt
	Else Stmt // nil when no else clause
	Pos  Pos
}

func (n *IfStmt) Position() Pos { return n.Pos }

type WhileStmt struct {
	Cond Cond
	Body Stmt
	Pos  Pos
}

func (n *WhileStmt) Position() Pos { return n.Pos }

type ReturnStmt struct {
	Value Expr // nil for a bare return
	Pos   Pos
}

func (n *ReturnStmt) Position() Pos { return n.Pos }

// ---- Declarations ----

// VarDecl is  var id, id, ... : type ;  — one syntax node can introduce
// several VarDef entities, one per name, sharing Type.
type VarDecl struct {
	Names []string
	Type  Type
	Pos   Pos

	// Offsets[i] is the frame offset assigned to Names[i], filled in by
	// semantic analysis as each name is inserted into the symbol table.
	Offsets []int
}

func (n *VarDecl) Position() Pos { return n.Pos }

type Param struct {
	Name string
	Mode ParamMode
	Type Type
	Pos  Pos

	Offset int
}

// FuncHeader is the header shared by a declaration and a definition:
// name, parameters, and scalar return type.
type FuncHeader struct {
	Name       string
	Params     []Param
	ReturnType ScalarKind
	Pos        Pos
}

// FuncDecl is a function declaration with no body (a forward
// declaration), terminated by ';'.
type FuncDecl struct {
	Header FuncHeader
	Pos    Pos

	ParentPath []string
}

func (n *FuncDecl) Position() Pos { return n.Pos }

// FuncDef is a function definition: header, local declarations, body.
type FuncDef struct {
	Header FuncHeader
	Locals []Decl // VarDecl, *FuncDecl, or *FuncDef, in textual order
	Body   *Block
	Pos    Pos

	ParentPath []string // this function's own parent path, innermost-first
	QualName   string   // flattened name, filled in by codegen name-flattening
}

func (n *FuncDef) Position() Pos { return n.Pos }

// Decl is any local-definition-level declaration inside a function
// body: a variable group, a nested declaration, or a nested
// definition.
type Decl interface {
	Position() Pos
}

// Program is the whole compilation unit: exactly one top-level function
// definition, the "main" (section 3).
type Program struct {
	Main *FuncDef
}
