package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/smasonuk/gracec/internal/ast"
	"github.com/smasonuk/gracec/internal/backend"
	"github.com/smasonuk/gracec/internal/diag"
)

// LowerBodies is the function-body pass: it lowers every function's
// statements into the backend, using the frame records the first pass
// already declared. Must run after BuildFrames.
func (s *Session) LowerBodies(prog *ast.Program) *diag.Error {
	return s.lowerFuncBody(prog.Main)
}

func (s *Session) lowerFuncBody(def *ast.FuncDef) *diag.Error {
	info := s.funcsByDef[def]
	entry := info.Func.NewBlock("entry")
	frameAddr := entry.NewAlloca(info.FrameType)

	idx := 0
	if info.HasStaticLink {
		slotAddr := entry.NewGetElementPtr(info.FrameType, frameAddr, backend.IntConst(0), backend.IntConst(0))
		entry.NewStore(info.Func.Params[0], slotAddr)
		idx = 1
	}
	for _, p := range def.Header.Params {
		slotAddr := entry.NewGetElementPtr(info.FrameType, frameAddr, backend.IntConst(0), backend.IntConst(int64(p.Offset)))
		entry.NewStore(info.Func.Params[idx], slotAddr)
		idx++
	}

	fl := &funcLowerer{s: s, info: info, frame: frameAddr, cur: entry}
	if err := fl.lowerBlock(def.Body); err != nil {
		return err
	}
	if fl.cur.Term == nil {
		if def.Header.ReturnType == ast.Nothing {
			fl.cur.NewRet(nil)
		} else {
			return diag.Codegen(def.Pos, "function %q may fall through without returning a value", def.Header.Name)
		}
	}

	for _, d := range def.Locals {
		if nd, ok := d.(*ast.FuncDef); ok {
			if err := s.lowerFuncBody(nd); err != nil {
				return err
			}
		}
	}
	return nil
}

// funcLowerer lowers one function's body. cur tracks the basic block
// currently being appended to; it changes as control-flow constructs
// open new blocks.
type funcLowerer struct {
	s     *Session
	info  *funcInfo
	frame value.Value
	cur   *ir.Block
}

// ---- statements ----

func (fl *funcLowerer) lowerBlock(b *ast.Block) *diag.Error {
	for _, stmt := range b.Stmts {
		if fl.cur.Term != nil {
			fl.s.diagSink.Warn(stmt.Position(), "unreachable code")
			break
		}
		if err := fl.lowerStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (fl *funcLowerer) lowerStmt(stmt ast.Stmt) *diag.Error {
	switch n := stmt.(type) {
	case *ast.EmptyStmt:
		return nil
	case *ast.Block:
		return fl.lowerBlock(n)
	case *ast.Assignment:
		return fl.lowerAssignment(n)
	case *ast.CallStmt:
		_, err := fl.lowerCall(n.Call)
		return err
	case *ast.IfStmt:
		return fl.lowerIf(n)
	case *ast.WhileStmt:
		return fl.lowerWhile(n)
	case *ast.ReturnStmt:
		return fl.lowerReturn(n)
	default:
		return diag.Internal("codegen: unknown statement node %T", stmt)
	}
}

func (fl *funcLowerer) lowerAssignment(asg *ast.Assignment) *diag.Error {
	addr, _, err := fl.addressOf(asg.Target)
	if err != nil {
		return err
	}
	val, err := fl.lowerExpr(asg.Value)
	if err != nil {
		return err
	}
	fl.cur.NewStore(val, addr)
	return nil
}

func (fl *funcLowerer) lowerIf(n *ast.IfStmt) *diag.Error {
	cond, err := fl.lowerCond(n.Cond)
	if err != nil {
		return err
	}
	thenBlock := fl.info.Func.NewBlock(fl.s.newLabel("if.then"))
	elseBlock := fl.info.Func.NewBlock(fl.s.newLabel("if.else"))
	mergeBlock := fl.info.Func.NewBlock(fl.s.newLabel("if.end"))
	fl.cur.NewCondBr(cond, thenBlock, elseBlock)

	fl.cur = thenBlock
	if err := fl.lowerStmt(n.Then); err != nil {
		return err
	}
	mergeReached := false
	if fl.cur.Term == nil {
		fl.cur.NewBr(mergeBlock)
		mergeReached = true
	}

	fl.cur = elseBlock
	if n.Else != nil {
		if err := fl.lowerStmt(n.Else); err != nil {
			return err
		}
	}
	if fl.cur.Term == nil {
		fl.cur.NewBr(mergeBlock)
		mergeReached = true
	}

	fl.cur = mergeBlock
	if !mergeReached {
		// Both arms terminated (e.g. returned): merge is unreachable but
		// LLVM still requires every block to carry a terminator.
		mergeBlock.NewUnreachable()
	}
	return nil
}

func (fl *funcLowerer) lowerWhile(n *ast.WhileStmt) *diag.Error {
	condBlock := fl.info.Func.NewBlock(fl.s.newLabel("while.cond"))
	bodyBlock := fl.info.Func.NewBlock(fl.s.newLabel("while.body"))
	afterBlock := fl.info.Func.NewBlock(fl.s.newLabel("while.end"))

	fl.cur.NewBr(condBlock)

	fl.cur = condBlock
	cond, err := fl.lowerCond(n.Cond)
	if err != nil {
		return err
	}
	fl.cur.NewCondBr(cond, bodyBlock, afterBlock)

	fl.cur = bodyBlock
	if err := fl.lowerStmt(n.Body); err != nil {
		return err
	}
	if fl.cur.Term == nil {
		fl.cur.NewBr(condBlock)
	}

	fl.cur = afterBlock
	return nil
}

func (fl *funcLowerer) lowerReturn(r *ast.ReturnStmt) *diag.Error {
	if r.Value == nil {
		fl.cur.NewRet(nil)
		return nil
	}
	if call, ok := r.Value.(*ast.CallExpr); ok && call.Resolved != nil &&
		call.Resolved.ReturnType.Elem == ast.Nothing {
		if _, err := fl.lowerCall(call); err != nil {
			return err
		}
		fl.cur.NewRet(nil)
		return nil
	}
	val, err := fl.lowerExpr(r.Value)
	if err != nil {
		return err
	}
	fl.cur.NewRet(val)
	return nil
}

// ---- addressing: l-values and static links ----

// resolveFrame walks hops static-link pointers from the current
// function's own frame, returning the ancestor frame pointer and its
// funcInfo.
func (fl *funcLowerer) resolveFrame(hops int) (value.Value, *funcInfo) {
	ptr := fl.frame
	info := fl.info
	for i := 0; i < hops; i++ {
		slotAddr := fl.cur.NewGetElementPtr(info.FrameType, ptr, backend.IntConst(0), backend.IntConst(0))
		ptr = fl.cur.NewLoad(types.NewPointer(info.Parent.FrameType), slotAddr)
		info = info.Parent
	}
	return ptr, info
}

// addressOf computes the physical address of an l-value and the Grace
// type that address ultimately holds. addressOfDecay returns the same
// two values plus decayed, which reports whether addr already points past an erased leading array dimension (i.e. whether
// a trailing-dims GEP should be applied without a leading zero index).
func (fl *funcLowerer) addressOf(lv ast.LValue) (value.Value, ast.Type, *diag.Error) {
	addr, typ, _, err := fl.addressOfDecay(lv)
	return addr, typ, err
}

func (fl *funcLowerer) addressOfDecay(lv ast.LValue) (value.Value, ast.Type, bool, *diag.Error) {
	switch n := lv.(type) {
	case *ast.Ident:
		return fl.addressOfIdent(n)
	case *ast.IndexAccess:
		return fl.addressOfIndex(n)
	case *ast.StringLit:
		// A string literal's backend storage is already the decayed
		// constant pointer to its first char (session.stringPointer),
		// so it needs no further GEP at the call site.
		litType := ast.Type{Elem: ast.Char, Array: true, Dims: []ast.Dim{{Bound: len(n.Value) + 1}}}
		return fl.s.stringPointer(n), litType, true, nil
	default:
		return nil, ast.Type{}, false, diag.Internal("codegen: unknown l-value node %T", lv)
	}
}

func (fl *funcLowerer) addressOfIdent(n *ast.Ident) (value.Value, ast.Type, bool, *diag.Error) {
	r := n.Resolved
	framePtr, defInfo := fl.resolveFrame(r.Hops)
	slotAddr := fl.cur.NewGetElementPtr(defInfo.FrameType, framePtr, backend.IntConst(0), backend.IntConst(int64(r.FrameOffset)))
	if r.ByRef {
		ptrType := physicalFieldType(ast.ByRef, r.Type)
		ptr := fl.cur.NewLoad(ptrType, slotAddr)
		// Only an unspecified leading dimension decays the parameter's
		// pointer by one level (physicalFieldType strips that dimension
		// from the pointee type). A fully-specified array parameter
		// holds a pointer to the whole array and must still be indexed
		// with the leading zero GEP index, like a local array.
		decayed := r.Type.Array && len(r.Type.Dims) > 0 && r.Type.Dims[0].Unspecified
		return ptr, r.Type, decayed, nil
	}
	return slotAddr, r.Type, false, nil
}

func (fl *funcLowerer) addressOfIndex(n *ast.IndexAccess) (value.Value, ast.Type, bool, *diag.Error) {
	baseIdent, ok := n.Base.(*ast.Ident)
	if !ok {
		return nil, ast.Type{}, false, diag.Internal("codegen: index base is not a simple identifier")
	}
	baseAddr, baseType, baseDecayed, err := fl.addressOfIdent(baseIdent)
	if err != nil {
		return nil, ast.Type{}, false, err
	}
	elemLL := scalarLLType(baseType.Elem)
	idxVals := make([]value.Value, len(n.Indices))
	for i, e := range n.Indices {
		v, err := fl.lowerExpr(e)
		if err != nil {
			return nil, ast.Type{}, false, err
		}
		idxVals[i] = v
	}

	var cur value.Value
	dims := baseType.Dims
	if baseDecayed {
		trailing := dims[1:]
		subType := nestedArrayType(elemLL, trailing)
		cur = fl.cur.NewGetElementPtr(subType, baseAddr, idxVals[0])
		if len(idxVals) > 1 {
			gepIdx := append([]value.Value{backend.IntConst(0)}, idxVals[1:]...)
			cur = fl.cur.NewGetElementPtr(subType, cur, gepIdx...)
		}
	} else {
		fullType := nestedArrayType(elemLL, dims)
		gepIdx := append([]value.Value{backend.IntConst(0)}, idxVals...)
		cur = fl.cur.NewGetElementPtr(fullType, baseAddr, gepIdx...)
	}

	remaining := dims[len(n.Indices):]
	resultType := ast.Type{Elem: baseType.Elem}
	if len(remaining) > 0 {
		resultType.Array = true
		resultType.Dims = remaining
	}
	return cur, resultType, false, nil
}

// ---- expressions ----

func (fl *funcLowerer) lowerExpr(e ast.Expr) (value.Value, *diag.Error) {
	switch n := e.(type) {
	case *ast.IntLit:
		return backend.IntConst(int64(n.Value)), nil
	case *ast.CharLit:
		return backend.CharConst(int64(n.Value)), nil
	case *ast.LValueExpr:
		if str, ok := n.LValue.(*ast.StringLit); ok {
			return fl.s.stringPointer(str), nil
		}
		addr, typ, _, err := fl.addressOfDecay(n.LValue)
		if err != nil {
			return nil, err
		}
		if typ.Array {
			return nil, diag.Internal("codegen: array value used where a scalar was expected")
		}
		return fl.cur.NewLoad(scalarLLType(typ.Elem), addr), nil
	case *ast.CallExpr:
		return fl.lowerCall(n)
	case *ast.UnaryExpr:
		x, err := fl.lowerExpr(n.X)
		if err != nil {
			return nil, err
		}
		return fl.cur.NewSub(backend.IntConst(0), x), nil
	case *ast.BinaryExpr:
		x, err := fl.lowerExpr(n.X)
		if err != nil {
			return nil, err
		}
		y, err := fl.lowerExpr(n.Y)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case ast.OpAdd:
			return fl.cur.NewAdd(x, y), nil
		case ast.OpSub:
			return fl.cur.NewSub(x, y), nil
		case ast.OpMul:
			return fl.cur.NewMul(x, y), nil
		case ast.OpDiv:
			return fl.cur.NewSDiv(x, y), nil
		default:
			return fl.cur.NewSRem(x, y), nil
		}
	default:
		return nil, diag.Internal("codegen: unknown expression node %T", e)
	}
}

// lowerCall lowers a call expression: resolves the static link to pass
// (if the callee needs one), lowers each argument per its declared
// pass mode, and emits the call instruction.
func (fl *funcLowerer) lowerCall(call *ast.CallExpr) (value.Value, *diag.Error) {
	r := call.Resolved

	// A builtin has no Grace-level frame or static link: it calls
	// straight into the function the backend declared for the fixed
	// runtime catalog (section 6), by name.
	var calleeFn value.Value
	var hasStaticLink bool
	if r.Builtin {
		calleeFn = fl.s.Backend.Runtime(r.CalleeName)
	} else {
		qual := qualify(r.CalleePath, r.CalleeName)
		callee, ok := fl.s.funcsByQual[qual]
		if !ok {
			return nil, diag.Internal("codegen: unresolved callee %q", qual)
		}
		calleeFn = callee.Func
		hasStaticLink = callee.HasStaticLink
	}

	var args []value.Value
	if hasStaticLink {
		hops := len(r.CallerPath) - len(r.CalleePath)
		slPtr, _ := fl.resolveFrame(hops)
		args = append(args, slPtr)
	}
	for i, argExpr := range call.Args {
		mode := r.ParamModes[i]
		paramType := r.ParamTypes[i]
		if mode == ast.ByRef {
			lve, ok := argExpr.(*ast.LValueExpr)
			if !ok {
				return nil, diag.Internal("codegen: by-reference argument is not an l-value")
			}
			addr, argType, decayed, err := fl.addressOfDecay(lve.LValue)
			if err != nil {
				return nil, err
			}
			if paramType.Array && len(paramType.Dims) > 0 && paramType.Dims[0].Unspecified && !decayed {
				fullType := nestedArrayType(scalarLLType(argType.Elem), argType.Dims)
				addr = fl.cur.NewGetElementPtr(fullType, addr, backend.IntConst(0), backend.IntConst(0))
			}
			args = append(args, addr)
		} else {
			val, err := fl.lowerExpr(argExpr)
			if err != nil {
				return nil, err
			}
			args = append(args, val)
		}
	}
	return fl.cur.NewCall(calleeFn, args...), nil
}

// ---- conditions ----

func (fl *funcLowerer) lowerCond(c ast.Cond) (value.Value, *diag.Error) {
	switch n := c.(type) {
	case *ast.Compare:
		return fl.lowerCompare(n)
	case *ast.LogicalNot:
		x, err := fl.lowerCond(n.X)
		if err != nil {
			return nil, err
		}
		return fl.cur.NewXor(x, backend.BoolConst(true)), nil
	case *ast.LogicalBinary:
		return fl.lowerLogicalBinary(n)
	default:
		return nil, diag.Internal("codegen: unknown condition node %T", c)
	}
}

func (fl *funcLowerer) lowerCompare(n *ast.Compare) (value.Value, *diag.Error) {
	x, err := fl.lowerExpr(n.X)
	if err != nil {
		return nil, err
	}
	y, err := fl.lowerExpr(n.Y)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case ast.OpEq:
		return fl.cur.NewICmp(backend.CmpEQ, x, y), nil
	case ast.OpNe:
		return fl.cur.NewICmp(backend.CmpNE, x, y), nil
	case ast.OpLt:
		return fl.cur.NewICmp(backend.CmpSLT, x, y), nil
	case ast.OpLe:
		return fl.cur.NewICmp(backend.CmpSLE, x, y), nil
	case ast.OpGt:
		return fl.cur.NewICmp(backend.CmpSGT, x, y), nil
	default:
		return fl.cur.NewICmp(backend.CmpSGE, x, y), nil
	}
}

// lowerLogicalBinary realizes and/or as the control-flow diamond plus
// phi the design notes call for (section 4.4), short-circuiting the
// right operand's evaluation.
func (fl *funcLowerer) lowerLogicalBinary(n *ast.LogicalBinary) (value.Value, *diag.Error) {
	xVal, err := fl.lowerCond(n.X)
	if err != nil {
		return nil, err
	}
	entryBlock := fl.cur // the block X's evaluation actually finished in

	rhsBlock := fl.info.Func.NewBlock(fl.s.newLabel("logic.rhs"))
	mergeBlock := fl.info.Func.NewBlock(fl.s.newLabel("logic.end"))
	if n.Op == ast.LogicalAnd {
		entryBlock.NewCondBr(xVal, rhsBlock, mergeBlock)
	} else {
		entryBlock.NewCondBr(xVal, mergeBlock, rhsBlock)
	}

	fl.cur = rhsBlock
	yVal, err := fl.lowerCond(n.Y)
	if err != nil {
		return nil, err
	}
	rhsEnd := fl.cur // the block Y's evaluation actually finished in
	rhsEnd.NewBr(mergeBlock)

	fl.cur = mergeBlock
	shortCircuit := backend.BoolConst(n.Op == ast.LogicalOr)
	phi := mergeBlock.NewPhi(
		ir.NewIncoming(shortCircuit, entryBlock),
		ir.NewIncoming(yVal, rhsEnd),
	)
	return phi, nil
}
