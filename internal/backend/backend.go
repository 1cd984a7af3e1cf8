// Package backend wraps the external low-level compiler library the
// design notes of section 9 call for: github.com/llir/llvm's IR
// builder. It owns the module/session/runtime-declaration plumbing and
// a handful of construction helpers (IntConst, CharConst, BoolConst,
// the ICmp predicate constants); internal/codegen still builds blocks
// and instructions directly against the library's own ir/constant/
// types/value types, the same way the teacher's codegen layer calls
// straight into its backend's concrete types. A Session owns exactly
// one module and is created and disposed once per compilation, per the
// resource-discipline rule of section 5.
//
// Grounded in shape (not API) on the teacher's CodeGen struct
// (smasonuk-sicpu/pkg/compiler/codegen.go): a single object carrying
// per-compilation state plus label counters, with one method per thing
// the rest of the compiler needs to ask the backend to do.
package backend

import (
	"fmt"
	"io"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
)

// Runtime library element types, per section 6's fixed catalog.
var (
	IntType  = types.I32
	CharType = types.I8
	CharPtr  = types.NewPointer(CharType)
)

// Session owns one backend module for the duration of one compilation.
type Session struct {
	Module *ir.Module

	stringCounter int
	runtime       map[string]*ir.Func
}

// NewSession creates a fresh module, configured with a target triple
// and data layout, per the backend driver's responsibilities (4.5).
func NewSession(targetTriple, dataLayout string) *Session {
	m := ir.NewModule()
	m.TargetTriple = targetTriple
	m.DataLayout = dataLayout
	return &Session{Module: m, runtime: make(map[string]*ir.Func)}
}

// runtimeSig is one entry of the fixed runtime catalog declared to the
// backend (section 6).
type runtimeSig struct {
	name   string
	ret    types.Type
	params []types.Type
}

var runtimeCatalog = []runtimeSig{
	{"writeInteger", types.Void, []types.Type{IntType}},
	{"writeChar", types.Void, []types.Type{CharType}},
	{"writeString", types.Void, []types.Type{CharPtr}},
	{"readInteger", IntType, nil},
	{"readChar", CharType, nil},
	{"readString", types.Void, []types.Type{IntType, CharPtr}},
	{"ascii", IntType, []types.Type{CharType}},
	{"chr", CharType, []types.Type{IntType}},
	{"strlen", IntType, []types.Type{CharPtr}},
	{"strcmp", IntType, []types.Type{CharPtr, CharPtr}},
	{"strcpy", types.Void, []types.Type{CharPtr, CharPtr}},
	{"strcat", types.Void, []types.Type{CharPtr, CharPtr}},
}

// DeclareRuntime declares every function of the fixed runtime catalog
// as an external symbol the linked runtime library must provide.
func (s *Session) DeclareRuntime() {
	for _, sig := range runtimeCatalog {
		params := make([]*ir.Param, len(sig.params))
		for i, t := range sig.params {
			params[i] = ir.NewParam("", t)
		}
		s.runtime[sig.name] = s.Module.NewFunc(sig.name, sig.ret, params...)
	}
}

// Runtime looks up a declared runtime function by its catalog name.
func (s *Session) Runtime(name string) *ir.Func {
	f, ok := s.runtime[name]
	if !ok {
		panic(fmt.Sprintf("backend: unknown runtime function %q", name))
	}
	return f
}

// NewRecordType defines a named struct type: one frame record per
// function, per section 4.4's frame-record layout.
func (s *Session) NewRecordType(name string, fields []types.Type) *types.StructType {
	st := types.NewStruct(fields...)
	s.Module.NewTypeDef(name, st)
	return st
}

// NewFunc declares one lowered function, flat per section 4.4.
func (s *Session) NewFunc(name string, ret types.Type, params ...*ir.Param) *ir.Func {
	return s.Module.NewFunc(name, ret, params...)
}

// NewStringGlobal emits a NUL-terminated char array global for a string
// literal and returns the global itself, whose value is a pointer to the
// whole array; the pointer to its first element is built by the caller
// (codegen's stringPointer).
func (s *Session) NewStringGlobal(label string, value string) *ir.Global {
	data := append([]byte(value), 0)
	arrType := types.NewArray(uint64(len(data)), CharType)
	init := constant.NewCharArrayFromString(string(data))
	g := s.Module.NewGlobalDef(label, init)
	g.Typ = types.NewPointer(arrType)
	g.ContentType = arrType
	return g
}

// NextStringLabel returns a fresh, unique global symbol name for a
// string literal, in the order literals are lowered.
func (s *Session) NextStringLabel() string {
	s.stringCounter++
	return fmt.Sprintf(".str.%d", s.stringCounter)
}

// IntConst and CharConst build literal constants for the two scalar
// kinds Grace has. BoolConst builds the i1 constants used by
// short-circuit condition lowering.
func IntConst(v int64) *constant.Int  { return constant.NewInt(IntType, v) }
func CharConst(v int64) *constant.Int { return constant.NewInt(CharType, v) }
func BoolConst(v bool) *constant.Int {
	if v {
		return constant.NewInt(types.I1, 1)
	}
	return constant.NewInt(types.I1, 0)
}

var BoolType = types.I1

// ICmp predicates, re-exported so codegen never imports llir/llvm/ir/enum.
const (
	CmpEQ  = enum.IPredEQ
	CmpNE  = enum.IPredNE
	CmpSLT = enum.IPredSLT
	CmpSLE = enum.IPredSLE
	CmpSGT = enum.IPredSGT
	CmpSGE = enum.IPredSGE
)

// Verify runs a lightweight structural check in place of a full LLVM
// verifier (this pure-Go library does not ship one): every basic block
// of every defined function must end in exactly one terminator
// instruction. This is the "integrity verification step" of 4.4/4.5.
func (s *Session) Verify() error {
	for _, f := range s.Module.Funcs {
		if len(f.Blocks) == 0 {
			continue // declaration only
		}
		for _, b := range f.Blocks {
			if b.Term == nil {
				return fmt.Errorf("function %q: block %q has no terminator", f.Name(), b.Name())
			}
		}
	}
	return nil
}

// WriteIR writes the module's textual intermediate listing (the .imm
// sink of section 4.5/6) to w.
func (s *Session) WriteIR(w io.Writer) error {
	_, err := fmt.Fprint(w, s.Module.String())
	return err
}
