// Package driver wires the whole pipeline together: lex, parse (with
// semantic analysis interleaved), code generation, and backend
// emission. It is the one place spec.md §5's resource-discipline rule
// applies directly: Compile creates every per-compilation object fresh
// and returns a disposable Result, never reusing state across calls.
//
// Grounded on the teacher's own top-level pipeline function
// (smasonuk-sicpu/pkg/compiler/compile.go's Compile): a short,
// sequential chain of stage calls, each checked for error before the
// next runs, assembling a single result value.
package driver

import (
	"github.com/smasonuk/gracec/internal/ast"
	"github.com/smasonuk/gracec/internal/backend"
	"github.com/smasonuk/gracec/internal/codegen"
	"github.com/smasonuk/gracec/internal/diag"
	"github.com/smasonuk/gracec/internal/frontend"
	"github.com/smasonuk/gracec/internal/lexer"
	"github.com/smasonuk/gracec/internal/semantic"
	"github.com/smasonuk/gracec/internal/symtab"
)

// TargetTriple and DataLayout are handed to the backend for every
// compilation; this driver targets the host's usual x86-64 Linux
// layout, matching spec.md §6's external-linker framing (-no-pie, ELF
// object output).
const (
	TargetTriple = "x86_64-unknown-linux-gnu"
	DataLayout   = "e-m:e-i64:64-f80:128-n8:16:32:64-S128"
)

// Result is everything one successful compilation produces: the
// annotated program, the backend session holding the module (whose
// WriteIR writes the intermediate listing that EmitAssembly/EmitObject
// consume), and the collected warnings.
type Result struct {
	Program  *ast.Program
	Backend  *backend.Session
	Warnings []diag.Warning
}

// Driver runs one compilation at a time. It holds no state between
// calls to Compile; callers that need many compilations in one process
// (such as a test harness) can use CompileMany, which
// creates a fresh Driver-backed pipeline per source.
type Driver struct{}

func New() *Driver { return &Driver{} }

// Compile runs the full pipeline over src, named file for diagnostics.
func (d *Driver) Compile(file, src string) (*Result, *diag.Error) {
	toks, err := lexer.Lex(file, src)
	if err != nil {
		return nil, err
	}

	sem := semantic.New(file, symtab.New())
	p := frontend.New(file, toks, sem, false)
	prog, err := p.ParseProgram()
	if err != nil {
		return nil, err
	}

	bs := backend.NewSession(TargetTriple, DataLayout)
	bs.DeclareRuntime()

	cs := codegen.NewSession(bs, sem.Diag)
	cs.BuildFrames(prog)
	if err := cs.LowerBodies(prog); err != nil {
		return nil, err
	}
	if verr := bs.Verify(); verr != nil {
		return nil, diag.Internal("backend produced invalid IR: %v", verr)
	}

	return &Result{Program: prog, Backend: bs, Warnings: sem.Diag.Warnings}, nil
}

// NamedSource is one compilation unit for CompileMany.
type NamedSource struct {
	File string
	Src  string
}

// CompileMany compiles every source in order, each through its own
// fresh Driver and Result, stopping at the first error. It exists for
// sequential multi-compile test harnesses (section 5) and is never
// used to share state between compilations.
func CompileMany(sources []NamedSource) ([]*Result, *diag.Error) {
	results := make([]*Result, 0, len(sources))
	for _, s := range sources {
		res, err := New().Compile(s.File, s.Src)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}
