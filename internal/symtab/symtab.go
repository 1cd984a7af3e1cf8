// Package symtab implements the lexically-scoped symbol table of
// section 4.1 of the specification: a stack of scopes, each with
// insertion-order entries and a fast lookup index, a parent_path trail,
// and a per-function frame-offset counter.
//
// Grounded on the teacher's own symbol table
// (smasonuk-sicpu/pkg/compiler/symtable.go): a stack of scope maps, a
// deterministic String() dump, Lookup walking the stack top-down. The
// teacher's table has no lexical nesting (its source language has no
// nested functions), so the scope-close function-completeness check
// and the parent-path bookkeeping below are this package's own
// addition, built in the same direct style; misuse such as closing an
// empty table returns an error (or a zero value) rather than panicking.
package symtab

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/maps"

	"github.com/smasonuk/gracec/internal/ast"
	"github.com/smasonuk/gracec/internal/diag"
)

// Kind distinguishes the three entity flavors a scope can hold.
type Kind int

const (
	VarKind Kind = iota
	ParamKind
	FuncKind
)

// Entity is one symbol-table entry. Fields are mutated in place by
// later passes (frame offsets by the frontend wrapper layer as it
// inserts parameters/locals; Status by semantic analysis as a
// definition is seen for a prior declaration) — see section 3's
// "identity-stable references" note.
type Entity struct {
	Kind Kind
	Name string
	Pos  diag.Pos

	// Variable/parameter fields.
	Type        ast.Type
	Mode        ast.ParamMode // meaningful only for ParamKind
	FrameOffset int
	ParentPath  []string

	// Function fields.
	FuncParams     []*Entity // ParamKind entities, in declaration order
	FuncReturn     ast.ScalarKind
	FuncStatus     ast.FuncStatus
	FuncParentPath []string // the function's OWN parent path (its nesting), not its scope's
}

func (e *Entity) String() string {
	switch e.Kind {
	case FuncKind:
		return fmt.Sprintf("func %s(%d params) -> %s [%s]", e.Name, len(e.FuncParams), e.FuncReturn, e.FuncStatus)
	case ParamKind:
		return fmt.Sprintf("param %s %s (%s) @%d", e.Name, e.Type, e.Mode, e.FrameOffset)
	default:
		return fmt.Sprintf("var %s %s @%d", e.Name, e.Type, e.FrameOffset)
	}
}

// scope holds one lexical level: insertion order plus a lookup index.
type scope struct {
	order   []string
	entries map[string]*Entity
	funcID  string
}

func newScope(funcID string) *scope {
	return &scope{entries: make(map[string]*Entity), funcID: funcID}
}

// Table is the stack of lexical scopes described in section 4.1.
type Table struct {
	scopes     []*scope
	parentPath []string // innermost-first, i.e. parentPath[0] is the current function
	nextOffset []int     // nextOffset[i] tracks the frame-offset counter for scopes[i]'s function
}

// New returns an empty table, ready for the global scope to be opened.
func New() *Table {
	return &Table{}
}

// OpenScope pushes a new scope for funcID. hasStaticLink must be true
// for every function except the top-level main, so that the very first
// frame_offset handed out (to the first parameter, or to the first
// local if there are no parameters) already accounts for the static
// link occupying record index 0 — this keeps frame_offset equal to the
// entity's final index within the frame record, per section 8's
// testable property, without a second renumbering pass in codegen.
func (t *Table) OpenScope(funcID string, hasStaticLink bool) {
	t.scopes = append(t.scopes, newScope(funcID))
	t.parentPath = append([]string{funcID}, t.parentPath...)
	start := 0
	if hasStaticLink {
		start = 1
	}
	t.nextOffset = append(t.nextOffset, start)
}

// CloseScope pops the top scope, after checking that every function
// declared in it also has a matching definition (invariant 3). Per the
// open question in section 9, any symbol-table inconsistency detected
// here — including the stray-declaration case — is reported uniformly
// as a symbol-table error.
func (t *Table) CloseScope(pos diag.Pos) *diag.Error {
	if len(t.scopes) == 0 {
		return diag.Symbol(pos, "close_scope called on an empty table")
	}
	top := t.scopes[len(t.scopes)-1]
	for _, name := range top.order {
		e := top.entries[name]
		if e.Kind == FuncKind && e.FuncStatus == ast.Declared {
			return diag.Symbol(pos, "function %q declared but not defined", name)
		}
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
	t.nextOffset = t.nextOffset[:len(t.nextOffset)-1]
	if len(t.parentPath) > 0 {
		t.parentPath = t.parentPath[1:]
	}
	return nil
}

// ParentPath returns the current parent path, innermost-first.
func (t *Table) ParentPath() []string {
	out := make([]string, len(t.parentPath))
	copy(out, t.parentPath)
	return out
}

// Depth returns the current nesting depth (the length of ParentPath).
func (t *Table) Depth() int { return len(t.parentPath) }

// Insert adds id to the current (top) scope. It fails if id already
// exists in that scope (invariant 2).
func (t *Table) Insert(pos diag.Pos, id string, e *Entity) *diag.Error {
	if len(t.scopes) == 0 {
		return diag.Symbol(pos, "insert called on an empty table")
	}
	top := t.scopes[len(t.scopes)-1]
	if _, exists := top.entries[id]; exists {
		return diag.Semantic(pos, "redefinition of %q in this scope", id)
	}
	top.entries[id] = e
	top.order = append(top.order, id)
	return nil
}

// NextOffset returns the current function's frame-offset counter
// without consuming it.
func (t *Table) NextOffset() int {
	if len(t.nextOffset) == 0 {
		return 0
	}
	return t.nextOffset[len(t.nextOffset)-1]
}

// AllocOffset consumes and returns the next frame offset for the
// current function, advancing the counter by one.
func (t *Table) AllocOffset() int {
	i := len(t.nextOffset) - 1
	if i < 0 {
		return 0
	}
	off := t.nextOffset[i]
	t.nextOffset[i] = off + 1
	return off
}

// Lookup searches only the top scope; used to detect redefinition
// before Insert is attempted.
func (t *Table) Lookup(id string) (*Entity, bool) {
	if len(t.scopes) == 0 {
		return nil, false
	}
	e, ok := t.scopes[len(t.scopes)-1].entries[id]
	return e, ok
}

// LookupAll walks scopes from innermost to outermost to resolve a use
// site, per invariant 1. It also returns the hop count: the number of
// enclosing-function boundaries crossed to reach the scope that holds
// id (0 if id is defined in the current function's own scope).
func (t *Table) LookupAll(id string) (*Entity, int, bool) {
	top := len(t.scopes) - 1
	for i := top; i >= 0; i-- {
		if e, ok := t.scopes[i].entries[id]; ok {
			return e, top - i, true
		}
	}
	return nil, 0, false
}

// IsEmpty reports whether the table has no open scopes.
func (t *Table) IsEmpty() bool { return len(t.scopes) == 0 }

// FinalCheck validates the invariant of section 4.1: at program
// termination the global table holds nothing but the defined main
// function. Any variable/parameter, or any function whose status is
// not "defined", left over is a symbol-table error.
func (t *Table) FinalCheck(pos diag.Pos) *diag.Error {
	if len(t.scopes) != 1 {
		return diag.Internal("final check expects exactly the global scope open, found %d", len(t.scopes))
	}
	top := t.scopes[0]
	mainCount := 0
	for _, name := range top.order {
		e := top.entries[name]
		switch e.Kind {
		case FuncKind:
			if e.FuncStatus != ast.Defined {
				return diag.Symbol(pos, "function %q declared but never defined at program end", name)
			}
			mainCount++
		default:
			return diag.Symbol(pos, "stray top-level symbol %q left in global scope", name)
		}
	}
	if mainCount != 1 {
		return diag.Symbol(pos, "expected exactly one top-level function, found %d", mainCount)
	}
	return nil
}

// String renders a deterministic dump of the whole stack, innermost
// scope last — grounded on the teacher's deterministic String() on
// SymbolTable (smasonuk-sicpu/pkg/compiler/symtable.go), sorting map
// keys before printing so output is reproducible across runs.
func (t *Table) String() string {
	var sb strings.Builder
	for i, s := range t.scopes {
		fmt.Fprintf(&sb, "scope %d (func=%s):\n", i, s.funcID)
		names := maps.Keys(s.entries)
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&sb, "  %s\n", s.entries[name])
		}
	}
	return sb.String()
}
