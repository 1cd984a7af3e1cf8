// Package codegen implements the two-pass code generator of section
// 4.4: a frame-type pass that declares one named record per function
// (main first, then nested), followed by a function-body pass that
// lowers every construct into the backend, per the explicit "codegen
// session" object the design notes of section 9 recommend in place of
// process-wide globals.
//
// Grounded in shape on the teacher's CodeGen struct
// (smasonuk-sicpu/pkg/compiler/codegen.go): one struct holding
// per-compilation state (here, the backend session and the
// func-by-name table) plus label/name counters, with one method per
// construct it lowers.
package codegen

import (
	"fmt"
	"strings"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/smasonuk/gracec/internal/ast"
	"github.com/smasonuk/gracec/internal/backend"
	"github.com/smasonuk/gracec/internal/diag"
)

// funcInfo is the per-function bookkeeping the body-lowering pass
// needs: its frame type, its lowered ir.Func, and a link to its
// lexically enclosing function's info (nil for main) so that static-
// link hops can be walked one frame at a time.
type funcInfo struct {
	Def           *ast.FuncDef
	QualName      string
	FrameType     *types.StructType
	Func          *ir.Func
	Parent        *funcInfo
	HasStaticLink bool
}

// Session is the explicit per-compilation object that owns the backend
// session plus the tables built by the frame-type pass. A fresh
// Session must be created per compilation (section 5).
type Session struct {
	Backend     *backend.Session
	funcsByDef  map[*ast.FuncDef]*funcInfo
	funcsByQual map[string]*funcInfo
	strings     map[string]value.Value
	diagSink    *diag.Sink
	labelSeq    int
}

func NewSession(bs *backend.Session, sink *diag.Sink) *Session {
	return &Session{
		Backend:     bs,
		funcsByDef:  make(map[*ast.FuncDef]*funcInfo),
		funcsByQual: make(map[string]*funcInfo),
		strings:     make(map[string]value.Value),
		diagSink:    sink,
	}
}

// qualify flattens an innermost-first parent path plus a function's own
// name into the dotted name codegen uses for both the frame-record
// type and the lowered function symbol, per section 4.4's name-
// flattening rule.
// qualify joins an innermost-first parent path and a name into a
// flattened dot-separated symbol name, outermost component first. The
// synthetic "global" scope (semantic.Analyzer.EnterGlobal) is not an
// enclosing function and never contributes to a flattened name: main's
// own parent path is exactly ["global"], and it must flatten to "main",
// not "global.main".
func qualify(parentPath []string, name string) string {
	pp := parentPath
	if n := len(pp); n > 0 && pp[n-1] == "global" {
		pp = pp[:n-1]
	}
	parts := make([]string, len(pp)+1)
	for i, p := range pp {
		parts[len(pp)-1-i] = p
	}
	parts[len(pp)] = name
	return strings.Join(parts, ".")
}

func (s *Session) newLabel(prefix string) string {
	s.labelSeq++
	return fmt.Sprintf("%s.%d", prefix, s.labelSeq)
}

// scalarLLType maps a Grace scalar kind to its physical backend type.
func scalarLLType(k ast.ScalarKind) types.Type {
	switch k {
	case ast.Int:
		return backend.IntType
	case ast.Char:
		return backend.CharType
	default:
		return types.Void
	}
}

// nestedArrayType builds the fully-nested array type for a sequence of
// fully-specified dimensions, outermost dimension first.
func nestedArrayType(elem types.Type, dims []ast.Dim) types.Type {
	t := elem
	for i := len(dims) - 1; i >= 0; i-- {
		t = types.NewArray(uint64(dims[i].Bound), t)
	}
	return t
}

// physicalFieldType maps a parameter's pass mode and Grace type to its
// physical frame-slot type, per section 4.4's mode-to-type table.
func physicalFieldType(mode ast.ParamMode, t ast.Type) types.Type {
	elemLL := scalarLLType(t.Elem)
	if !t.Array {
		if mode == ast.ByRef {
			return types.NewPointer(elemLL)
		}
		return elemLL
	}
	if len(t.Dims) > 0 && t.Dims[0].Unspecified {
		return types.NewPointer(nestedArrayType(elemLL, t.Dims[1:]))
	}
	return types.NewPointer(nestedArrayType(elemLL, t.Dims))
}

// physicalLocalType maps a local variable's Grace type to the type of
// the value stored directly (not behind a pointer) in its frame slot.
func physicalLocalType(t ast.Type) types.Type {
	elemLL := scalarLLType(t.Elem)
	if !t.Array {
		return elemLL
	}
	return nestedArrayType(elemLL, t.Dims)
}

// stringPointer returns the decayed char-pointer value for a string
// literal's backend storage, creating the global on first use. Two
// literals with identical text share one global, per the teacher's
// convention of pooling string constants by value. The decay itself is
// a constant GEP (index 0, 0), since the global address is already a
// compile-time constant — no instruction needs to be emitted for it.
func (s *Session) stringPointer(lit *ast.StringLit) value.Value {
	ptr, ok := s.strings[lit.Value]
	if !ok {
		g := s.Backend.NewStringGlobal(s.Backend.NextStringLabel(), lit.Value)
		ptr = constant.NewGetElementPtr(g.ContentType, g, backend.IntConst(0), backend.IntConst(0))
		s.strings[lit.Value] = ptr
		lit.Label = g.Name()
	}
	return ptr
}

// BuildFrames is the frame-type pass: it walks the program depth-first,
// main first, declaring each function's frame record and flat lowered
// signature before recursing into its nested definitions.
func (s *Session) BuildFrames(prog *ast.Program) {
	s.declareFunc(prog.Main, nil)
}

func (s *Session) declareFunc(def *ast.FuncDef, parent *funcInfo) {
	qual := qualify(def.ParentPath, def.Header.Name)
	def.QualName = qual

	var fields []types.Type
	hasStaticLink := parent != nil
	if hasStaticLink {
		fields = append(fields, types.NewPointer(parent.FrameType))
	}
	for _, p := range def.Header.Params {
		fields = append(fields, physicalFieldType(p.Mode, p.Type))
	}
	for _, d := range def.Locals {
		if v, ok := d.(*ast.VarDecl); ok {
			for range v.Names {
				fields = append(fields, physicalLocalType(v.Type))
			}
		}
	}
	frameType := s.Backend.NewRecordType(qual+".frame", fields)

	var llParams []*ir.Param
	if hasStaticLink {
		llParams = append(llParams, ir.NewParam("sl", types.NewPointer(parent.FrameType)))
	}
	for _, p := range def.Header.Params {
		llParams = append(llParams, ir.NewParam(p.Name, physicalFieldType(p.Mode, p.Type)))
	}
	fn := s.Backend.NewFunc(qual, scalarLLType(def.Header.ReturnType), llParams...)

	info := &funcInfo{Def: def, QualName: qual, FrameType: frameType, Func: fn, Parent: parent, HasStaticLink: hasStaticLink}
	s.funcsByDef[def] = info
	s.funcsByQual[qual] = info

	for _, d := range def.Locals {
		if nd, ok := d.(*ast.FuncDef); ok {
			s.declareFunc(nd, info)
		}
	}
}
