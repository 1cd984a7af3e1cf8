// Package semantic implements the checking+annotating rules of section
// 4.2 of the specification: one function per syntactic category that
// both validates a node against the shared symbol table and writes
// resolved type/offset/path information back into it.
//
// The analyzer is deliberately a plain struct of methods over a shared
// *symtab.Table, grounded on the teacher's CodeGen struct
// (smasonuk-sicpu/pkg/compiler/codegen.go), which is likewise a single
// struct carrying the symbol table plus per-compilation state and
// exposing one method per construct it has to understand. Here the
// methods check and annotate instead of emit.
package semantic

import (
	"github.com/smasonuk/gracec/internal/ast"
	"github.com/smasonuk/gracec/internal/diag"
	"github.com/smasonuk/gracec/internal/symtab"
)

// Analyzer holds the state shared by every checking+annotating method:
// the symbol table, the file name for diagnostics, a warning sink, and
// a stack of enclosing-function return types (needed because nested
// functions can each declare a different return type).
type Analyzer struct {
	File string
	Syms *symtab.Table
	Diag *diag.Sink

	retStack []ast.ScalarKind
}

func New(file string, syms *symtab.Table) *Analyzer {
	return &Analyzer{File: file, Syms: syms, Diag: &diag.Sink{}}
}

func (a *Analyzer) currentReturn() ast.ScalarKind {
	if len(a.retStack) == 0 {
		return ast.Nothing
	}
	return a.retStack[len(a.retStack)-1]
}

// EnterGlobal opens the program's outermost scope, which holds nothing
// but the single "main" entity once parsing completes (section 4.1).
// It is not itself a function frame, so it carries no static link and
// pushes nothing onto the return-type stack.
func (a *Analyzer) EnterGlobal() {
	a.Syms.OpenScope("global", false)
}

// EnterFunction opens a scope for a function header and pushes its
// return type. hasStaticLink must be false only for the top-level main.
func (a *Analyzer) EnterFunction(id string, hasStaticLink bool, ret ast.ScalarKind) {
	a.Syms.OpenScope(id, hasStaticLink)
	a.retStack = append(a.retStack, ret)
}

// ExitFunction closes the function's scope (checking invariant 3) and
// pops its return type.
func (a *Analyzer) ExitFunction(pos diag.Pos) *diag.Error {
	a.retStack = a.retStack[:len(a.retStack)-1]
	return a.Syms.CloseScope(pos)
}

// --- declarations ---

// checkArrayDims validates an array type's dimension list.
// allowLeadingUnspecified is true only for parameters.
func checkArrayDims(pos diag.Pos, t ast.Type, allowLeadingUnspecified bool) *diag.Error {
	if !t.Array {
		return nil
	}
	if len(t.Dims) == 0 {
		return diag.Semantic(pos, "array type must have at least one dimension")
	}
	for i, d := range t.Dims {
		if d.Unspecified {
			if !(allowLeadingUnspecified && i == 0) {
				return diag.Semantic(pos, "unspecified dimension only allowed as the leading dimension of a parameter")
			}
			continue
		}
		if d.Bound <= 0 {
			return diag.Semantic(pos, "array dimension must be a positive integer, got %d", d.Bound)
		}
	}
	return nil
}

// DeclareParam validates and inserts one parameter into the just-opened
// function scope, assigning its frame offset.
func (a *Analyzer) DeclareParam(p *ast.Param) *diag.Error {
	if p.Type.Array && p.Mode != ast.ByRef {
		return diag.Semantic(p.Pos, "array parameter %q must be passed by reference", p.Name)
	}
	if err := checkArrayDims(p.Pos, p.Type, true); err != nil {
		return err
	}
	if _, exists := a.Syms.Lookup(p.Name); exists {
		return diag.Semantic(p.Pos, "redefinition of parameter %q", p.Name)
	}
	offset := a.Syms.AllocOffset()
	e := &symtab.Entity{
		Kind: symtab.ParamKind, Name: p.Name, Pos: p.Pos,
		Type: p.Type, Mode: p.Mode, FrameOffset: offset, ParentPath: a.Syms.ParentPath(),
	}
	if err := a.Syms.Insert(p.Pos, p.Name, e); err != nil {
		return err
	}
	p.Offset = offset
	return nil
}

// DeclareVars validates and inserts every name in a var-declaration
// group, assigning each its own frame offset.
func (a *Analyzer) DeclareVars(v *ast.VarDecl) *diag.Error {
	if err := checkArrayDims(v.Pos, v.Type, false); err != nil {
		return err
	}
	v.Offsets = make([]int, len(v.Names))
	for i, name := range v.Names {
		if _, exists := a.Syms.Lookup(name); exists {
			return diag.Semantic(v.Pos, "redefinition of %q", name)
		}
		offset := a.Syms.AllocOffset()
		e := &symtab.Entity{
			Kind: symtab.VarKind, Name: name, Pos: v.Pos,
			Type: v.Type, FrameOffset: offset, ParentPath: a.Syms.ParentPath(),
		}
		if err := a.Syms.Insert(v.Pos, name, e); err != nil {
			return err
		}
		v.Offsets[i] = offset
	}
	return nil
}

// headerMatches implements "header match" from the glossary: equality
// of return type, parameter count, each parameter's type and mode.
func headerMatches(a, b ast.FuncHeader) bool {
	if a.ReturnType != b.ReturnType || len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if a.Params[i].Mode != b.Params[i].Mode || !a.Params[i].Type.Equal(b.Params[i].Type) {
			return false
		}
	}
	return true
}

// DeclareFuncDecl inserts a forward declaration (no body) in the
// current scope.
func (a *Analyzer) DeclareFuncDecl(d *ast.FuncDecl) *diag.Error {
	if _, exists := a.Syms.Lookup(d.Header.Name); exists {
		return diag.Semantic(d.Pos, "redefinition of %q", d.Header.Name)
	}
	d.ParentPath = a.Syms.ParentPath()
	e := &symtab.Entity{
		Kind: symtab.FuncKind, Name: d.Header.Name, Pos: d.Pos,
		FuncReturn: d.Header.ReturnType, FuncStatus: ast.Declared, FuncParentPath: d.ParentPath,
		FuncParams: paramEntities(d.Header.Params),
	}
	return a.Syms.Insert(d.Pos, d.Header.Name, e)
}

func paramEntities(params []ast.Param) []*symtab.Entity {
	out := make([]*symtab.Entity, len(params))
	for i, p := range params {
		out[i] = &symtab.Entity{Kind: symtab.ParamKind, Name: p.Name, Type: p.Type, Mode: p.Mode}
	}
	return out
}

// DeclareFuncDef inserts a function definition's header into the
// *enclosing* scope (the scope that was current before the function's
// own scope is opened by EnterFunction), resolving it against a prior
// declaration of the same name if one exists (invariant 3).
func (a *Analyzer) DeclareFuncDef(def *ast.FuncDef) *diag.Error {
	def.ParentPath = a.Syms.ParentPath()
	if prior, exists := a.Syms.Lookup(def.Header.Name); exists {
		if prior.Kind != symtab.FuncKind {
			return diag.Semantic(def.Pos, "redefinition of %q", def.Header.Name)
		}
		if prior.FuncStatus == ast.Defined {
			return diag.Semantic(def.Pos, "redefinition of function %q", def.Header.Name)
		}
		priorHeader := ast.FuncHeader{ReturnType: prior.FuncReturn}
		for _, pe := range prior.FuncParams {
			priorHeader.Params = append(priorHeader.Params, ast.Param{Type: pe.Type, Mode: pe.Mode})
		}
		if !headerMatches(priorHeader, def.Header) {
			return diag.Semantic(def.Pos, "definition of %q does not match its declaration", def.Header.Name)
		}
		prior.FuncStatus = ast.Defined
		return nil
	}
	e := &symtab.Entity{
		Kind: symtab.FuncKind, Name: def.Header.Name, Pos: def.Pos,
		FuncReturn: def.Header.ReturnType, FuncStatus: ast.Defined, FuncParentPath: def.ParentPath,
		FuncParams: paramEntities(def.Header.Params),
	}
	return a.Syms.Insert(def.Pos, def.Header.Name, e)
}

// CheckMain validates the program's single top-level function per
// invariant: no parameters, return type nothing.
func CheckMain(def *ast.FuncDef) *diag.Error {
	if len(def.Header.Params) != 0 {
		return diag.Semantic(def.Pos, "main function %q must take no parameters", def.Header.Name)
	}
	if def.Header.ReturnType != ast.Nothing {
		return diag.Semantic(def.Pos, "main function %q must return nothing", def.Header.Name)
	}
	return nil
}

// --- expressions, l-values, conditions ---

// ResolveLValue resolves a use of an l-value, annotating Ident and
// IndexAccess nodes with a ResolvedRef (invariant 1).
func (a *Analyzer) ResolveLValue(lv ast.LValue) (ast.Type, *diag.Error) {
	switch n := lv.(type) {
	case *ast.Ident:
		e, hops, ok := a.Syms.LookupAll(n.Name)
		if !ok {
			return ast.Type{}, diag.Semantic(n.Pos, "undefined name %q", n.Name)
		}
		if e.Kind == symtab.FuncKind {
			return ast.Type{}, diag.Semantic(n.Pos, "%q is a function, not a variable", n.Name)
		}
		n.Resolved = &ast.ResolvedRef{
			Type: e.Type, FrameOffset: e.FrameOffset, Hops: hops,
			DefPath: e.ParentPath, ByRef: e.Kind == symtab.ParamKind && e.Mode == ast.ByRef,
			IsParam: e.Kind == symtab.ParamKind,
		}
		return e.Type, nil

	case *ast.StringLit:
		return ast.Type{Elem: ast.Char, Array: true, Dims: []ast.Dim{{Bound: len(n.Value) + 1}}}, nil

	case *ast.IndexAccess:
		return a.checkIndexAccess(n)

	default:
		return ast.Type{}, diag.Internal("unknown l-value node %T", lv)
	}
}

func (a *Analyzer) checkIndexAccess(n *ast.IndexAccess) (ast.Type, *diag.Error) {
	baseType, err := a.ResolveLValue(n.Base)
	if err != nil {
		return ast.Type{}, err
	}
	if baseIdent, ok := n.Base.(*ast.Ident); ok {
		n.Resolved = baseIdent.Resolved
	}
	if !baseType.Array {
		return ast.Type{}, diag.Semantic(n.Pos, "cannot index a non-array value")
	}
	if len(n.Indices) > len(baseType.Dims) {
		return ast.Type{}, diag.Semantic(n.Pos, "too many indices: array has %d dimension(s)", len(baseType.Dims))
	}
	for _, idx := range n.Indices {
		it, err := a.CheckExpr(idx)
		if err != nil {
			return ast.Type{}, err
		}
		if it.Elem != ast.Int || it.Array {
			return ast.Type{}, diag.Semantic(idx.Position(), "array index must have type int")
		}
	}
	remaining := baseType.Dims[len(n.Indices):]
	if len(remaining) == 0 {
		return ast.Type{Elem: baseType.Elem}, nil
	}
	return ast.Type{Elem: baseType.Elem, Array: true, Dims: remaining}, nil
}

// CheckExpr type-checks an expression and annotates any l-values or
// calls it contains.
func (a *Analyzer) CheckExpr(e ast.Expr) (ast.Type, *diag.Error) {
	switch n := e.(type) {
	case *ast.IntLit:
		return ast.ScalarType(ast.Int), nil
	case *ast.CharLit:
		return ast.ScalarType(ast.Char), nil
	case *ast.LValueExpr:
		return a.ResolveLValue(n.LValue)
	case *ast.CallExpr:
		return a.CheckCall(n)
	case *ast.UnaryExpr:
		xt, err := a.CheckExpr(n.X)
		if err != nil {
			return ast.Type{}, err
		}
		if xt.Elem != ast.Int || xt.Array {
			return ast.Type{}, diag.Semantic(n.Pos, "unary arithmetic requires an int operand")
		}
		return ast.ScalarType(ast.Int), nil
	case *ast.BinaryExpr:
		xt, err := a.CheckExpr(n.X)
		if err != nil {
			return ast.Type{}, err
		}
		yt, err := a.CheckExpr(n.Y)
		if err != nil {
			return ast.Type{}, err
		}
		if xt.Elem != ast.Int || xt.Array || yt.Elem != ast.Int || yt.Array {
			return ast.Type{}, diag.Semantic(n.Pos, "binary arithmetic requires int operands")
		}
		return ast.ScalarType(ast.Int), nil
	default:
		return ast.Type{}, diag.Internal("unknown expression node %T", e)
	}
}

// CheckCond type-checks a condition, per the comparison/logical rules
// of section 3.
func (a *Analyzer) CheckCond(c ast.Cond) *diag.Error {
	switch n := c.(type) {
	case *ast.Compare:
		xt, err := a.CheckExpr(n.X)
		if err != nil {
			return err
		}
		yt, err := a.CheckExpr(n.Y)
		if err != nil {
			return err
		}
		if xt.Array || yt.Array || xt.Elem != yt.Elem {
			return diag.Semantic(n.Pos, "comparison operands must both be int or both be char")
		}
		return nil
	case *ast.LogicalBinary:
		if err := a.CheckCond(n.X); err != nil {
			return err
		}
		return a.CheckCond(n.Y)
	case *ast.LogicalNot:
		return a.CheckCond(n.X)
	default:
		return diag.Internal("unknown condition node %T", c)
	}
}

// compatibleArrayDims implements the call-site array compatibility
// rule: either every dimension matches, or the parameter's leading
// dimension is unspecified and only the trailing dimensions must match.
func compatibleArrayDims(paramDims, argDims []ast.Dim) bool {
	if len(paramDims) != len(argDims) {
		return false
	}
	start := 0
	if len(paramDims) > 0 && paramDims[0].Unspecified {
		start = 1
	}
	for i := start; i < len(paramDims); i++ {
		if paramDims[i].Bound != argDims[i].Bound {
			return false
		}
	}
	return true
}

func typeCompatibleForParam(paramType, argType ast.Type) bool {
	if paramType.Elem != argType.Elem || paramType.Array != argType.Array {
		return false
	}
	if !paramType.Array {
		return true
	}
	return compatibleArrayDims(paramType.Dims, argType.Dims)
}

// checkCallArgs type-checks call's arguments against parallel parameter
// mode/type slices, shared by ordinary calls (whose parameters come
// from a symbol-table entity) and builtin calls (whose parameters come
// from the fixed runtime catalog below).
func (a *Analyzer) checkCallArgs(call *ast.CallExpr, modes []ast.ParamMode, ptypes []ast.Type) *diag.Error {
	if len(call.Args) != len(modes) {
		return diag.Semantic(call.Pos, "%q expects %d argument(s), got %d", call.Name, len(modes), len(call.Args))
	}
	for i, arg := range call.Args {
		argType, err := a.CheckExpr(arg)
		if err != nil {
			return err
		}
		if modes[i] == ast.ByRef {
			if !isLValueExpr(arg) {
				return diag.Semantic(arg.Position(), "argument %d of %q must be an l-value (passed by reference)", i+1, call.Name)
			}
		}
		if !typeCompatibleForParam(ptypes[i], argType) {
			return diag.Semantic(arg.Position(), "argument %d of %q has incompatible type", i+1, call.Name)
		}
	}
	return nil
}

// CheckCall resolves a call's callee, checks argument count/mode/type
// compatibility, and annotates the node with both paths needed to
// compute the static-link depth at the call site. A name in the fixed
// runtime catalog (section 6) is checked against builtinCatalog
// instead of the symbol table: the catalog is the program's entire I/O
// surface and is reachable regardless of what the program declares.
func (a *Analyzer) CheckCall(call *ast.CallExpr) (ast.Type, *diag.Error) {
	if sig, ok := builtinCatalog[call.Name]; ok {
		modes := make([]ast.ParamMode, len(sig.params))
		ptypes := make([]ast.Type, len(sig.params))
		for i, p := range sig.params {
			modes[i] = p.mode
			ptypes[i] = p.typ
		}
		if err := a.checkCallArgs(call, modes, ptypes); err != nil {
			return ast.Type{}, err
		}
		call.Resolved = &ast.ResolvedCall{
			CalleeName: call.Name,
			ParamModes: modes,
			ParamTypes: ptypes,
			ReturnType: ast.ScalarType(sig.ret),
			Builtin:    true,
		}
		return ast.ScalarType(sig.ret), nil
	}

	e, _, ok := a.Syms.LookupAll(call.Name)
	if !ok {
		return ast.Type{}, diag.Semantic(call.Pos, "call to undefined function %q", call.Name)
	}
	if e.Kind != symtab.FuncKind {
		return ast.Type{}, diag.Semantic(call.Pos, "%q is not a function", call.Name)
	}

	modes := make([]ast.ParamMode, len(e.FuncParams))
	ptypes := make([]ast.Type, len(e.FuncParams))
	for i, param := range e.FuncParams {
		modes[i] = param.Mode
		ptypes[i] = param.Type
	}
	if err := a.checkCallArgs(call, modes, ptypes); err != nil {
		return ast.Type{}, err
	}

	call.Resolved = &ast.ResolvedCall{
		CalleeName: call.Name,
		CalleePath: e.FuncParentPath,
		CallerPath: a.Syms.ParentPath(),
		ParamModes: modes,
		ParamTypes: ptypes,
		ReturnType: ast.ScalarType(e.FuncReturn),
	}
	return ast.ScalarType(e.FuncReturn), nil
}

// ---- fixed runtime catalog (section 6) ----

type builtinParam struct {
	mode ast.ParamMode
	typ  ast.Type
}

type builtinSig struct {
	params []builtinParam
	ret    ast.ScalarKind
}

// charPtr is the Grace-level type of a `*char` runtime parameter: an
// array of char with an unspecified leading dimension, passed by
// reference. physicalFieldType (internal/codegen) maps this exact
// shape to a bare char pointer, matching the catalog's declared
// signatures without any special-casing in codegen's argument lowering.
var charPtr = ast.Type{Elem: ast.Char, Array: true, Dims: []ast.Dim{{Unspecified: true}}}

func val(k ast.ScalarKind) builtinParam { return builtinParam{mode: ast.ByValue, typ: ast.ScalarType(k)} }
func ref() builtinParam                 { return builtinParam{mode: ast.ByRef, typ: charPtr} }

// builtinCatalog is the fixed, closed set of runtime functions of
// section 6 — the compiler's entire I/O surface. Every Grace program
// can call these without declaring them.
var builtinCatalog = map[string]builtinSig{
	"writeInteger": {params: []builtinParam{val(ast.Int)}, ret: ast.Nothing},
	"writeChar":    {params: []builtinParam{val(ast.Char)}, ret: ast.Nothing},
	"writeString":  {params: []builtinParam{ref()}, ret: ast.Nothing},
	"readInteger":  {ret: ast.Int},
	"readChar":     {ret: ast.Char},
	"readString":   {params: []builtinParam{val(ast.Int), ref()}, ret: ast.Nothing},
	"ascii":        {params: []builtinParam{val(ast.Char)}, ret: ast.Int},
	"chr":          {params: []builtinParam{val(ast.Int)}, ret: ast.Char},
	"strlen":       {params: []builtinParam{ref()}, ret: ast.Int},
	"strcmp":       {params: []builtinParam{ref(), ref()}, ret: ast.Int},
	"strcpy":       {params: []builtinParam{ref(), ref()}, ret: ast.Nothing},
	"strcat":       {params: []builtinParam{ref(), ref()}, ret: ast.Nothing},
}

func isLValueExpr(e ast.Expr) bool {
	lve, ok := e.(*ast.LValueExpr)
	return ok && lve != nil
}

// CheckAssignment validates an assignment statement per invariants 4-5:
// type match, not a string literal, not a whole array.
func (a *Analyzer) CheckAssignment(asg *ast.Assignment) *diag.Error {
	if _, ok := asg.Target.(*ast.StringLit); ok {
		return diag.Semantic(asg.Pos, "cannot assign to a string literal")
	}
	targetType, err := a.ResolveLValue(asg.Target)
	if err != nil {
		return err
	}
	if targetType.Array {
		return diag.Semantic(asg.Pos, "cannot assign to an array as a whole")
	}
	valueType, err := a.CheckExpr(asg.Value)
	if err != nil {
		return err
	}
	if !targetType.Equal(valueType) {
		return diag.Semantic(asg.Pos, "cannot assign %s to %s", valueType, targetType)
	}
	return nil
}

// isNothingCall reports whether e is a call expression whose callee
// returns nothing — the sole payload a bare return inside a
// nothing-returning function may carry (section 3, invariant 6).
func isNothingCall(e ast.Expr) (*ast.CallExpr, bool) {
	call, ok := e.(*ast.CallExpr)
	if !ok || call.Resolved == nil {
		return nil, false
	}
	return call, call.Resolved.ReturnType.Elem == ast.Nothing && !call.Resolved.ReturnType.Array
}

// CheckReturn validates a return statement against the enclosing
// function's declared return type (invariant 6).
func (a *Analyzer) CheckReturn(r *ast.ReturnStmt) *diag.Error {
	want := a.currentReturn()
	if r.Value == nil {
		if want != ast.Nothing {
			return diag.Semantic(r.Pos, "function must return a value of type %s", want)
		}
		return nil
	}
	vt, err := a.CheckExpr(r.Value)
	if err != nil {
		return err
	}
	if want == ast.Nothing {
		if _, ok := isNothingCall(r.Value); !ok {
			return diag.Semantic(r.Pos, "function returning nothing cannot return a value")
		}
		return nil
	}
	if vt.Array || vt.Elem != want {
		return diag.Semantic(r.Pos, "return type mismatch: expected %s, got %s", want, vt)
	}
	return nil
}
