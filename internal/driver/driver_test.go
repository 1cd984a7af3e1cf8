package driver

import (
	"strings"
	"testing"
)

func TestCompileEmptyMainProducesIR(t *testing.T) {
	res, err := New().Compile("t.grc", `fun main(): nothing { }`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	ir := res.Backend.Module.String()
	if !strings.Contains(ir, "define") {
		t.Error("expected the module to define at least one function")
	}
}

func TestCompileReportsLexError(t *testing.T) {
	_, err := New().Compile("t.grc", `fun main(): nothing { var c : char; c <- 'ab'; }`)
	if err == nil {
		t.Fatal("expected a lexing error for a malformed character literal")
	}
}

func TestCompileReportsParseError(t *testing.T) {
	_, err := New().Compile("t.grc", `fun main(): nothing { var x int; }`)
	if err == nil {
		t.Fatal("expected a parse error for a missing colon")
	}
}

func TestCompileReportsSemanticError(t *testing.T) {
	_, err := New().Compile("t.grc", `fun main(): nothing { x <- 1; }`)
	if err == nil {
		t.Fatal("expected a semantic error for an undefined name")
	}
}

func TestCompileIsFreshEachCall(t *testing.T) {
	d := New()
	if _, err := d.Compile("a.grc", `fun main(): nothing { var x : int; return; }`); err != nil {
		t.Fatalf("first Compile: %v", err)
	}
	res2, err := d.Compile("b.grc", `fun main(): nothing { var x : int; x <- 1; return; }`)
	if err != nil {
		t.Fatalf("second Compile: %v", err)
	}
	if !strings.Contains(res2.Backend.Module.String(), "define") {
		t.Error("second compilation should produce its own independent module")
	}
}

func TestCompileManyStopsAtFirstError(t *testing.T) {
	results, err := CompileMany([]NamedSource{
		{File: "a.grc", Src: `fun main(): nothing { return; }`},
		{File: "b.grc", Src: `fun main(): nothing { x <- 1; }`},
		{File: "c.grc", Src: `fun main(): nothing { return; }`},
	})
	if err == nil {
		t.Fatal("expected an error from the second source")
	}
	if len(results) != 1 {
		t.Fatalf("expected exactly 1 successful result before the failure, got %d", len(results))
	}
}

func TestCompileManyRunsEachSourceIndependently(t *testing.T) {
	results, err := CompileMany([]NamedSource{
		{File: "a.grc", Src: `fun main(): nothing { var x : int; return; }`},
		{File: "b.grc", Src: `fun main(): nothing { var y : int; return; }`},
	})
	if err != nil {
		t.Fatalf("CompileMany: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
}
