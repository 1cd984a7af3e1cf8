package backend

import (
	"strings"
	"testing"

	"github.com/llir/llvm/ir/types"
)

func TestDeclareRuntimeRegistersTheFixedCatalog(t *testing.T) {
	s := NewSession("", "")
	s.DeclareRuntime()

	for _, name := range []string{
		"writeInteger", "writeChar", "writeString",
		"readInteger", "readChar", "readString",
		"ascii", "chr", "strlen", "strcmp", "strcpy", "strcat",
	} {
		if f := s.Runtime(name); f == nil {
			t.Errorf("expected runtime function %q to be declared", name)
		}
	}
}

func TestRuntimePanicsOnUnknownName(t *testing.T) {
	s := NewSession("", "")
	s.DeclareRuntime()
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for an unknown runtime function")
		}
	}()
	s.Runtime("doesNotExist")
}

func TestNewRecordTypeBuildsAStructWithTheGivenFields(t *testing.T) {
	s := NewSession("", "")
	st := s.NewRecordType("main.f.frame", []types.Type{IntType, CharType})
	if len(st.Fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(st.Fields))
	}
}

func TestNewStringGlobalNulTerminates(t *testing.T) {
	s := NewSession("", "")
	g := s.NewStringGlobal(s.NextStringLabel(), "hi")
	arr, ok := g.ContentType.(*types.ArrayType)
	if !ok {
		t.Fatalf("expected global content type to be an array, got %T", g.ContentType)
	}
	if arr.Len != 3 {
		t.Errorf("got array length %d, want 3 (2 chars + NUL)", arr.Len)
	}
}

func TestNextStringLabelIsUniqueAndOrdered(t *testing.T) {
	s := NewSession("", "")
	a := s.NextStringLabel()
	b := s.NextStringLabel()
	if a == b {
		t.Errorf("expected distinct labels, got %q twice", a)
	}
	if a != ".str.1" || b != ".str.2" {
		t.Errorf("expected labels in lowering order .str.1, .str.2; got %q, %q", a, b)
	}
}

func TestVerifyRejectsABlockWithNoTerminator(t *testing.T) {
	s := NewSession("", "")
	fn := s.NewFunc("bad", types.Void)
	fn.NewBlock("entry") // no terminator added

	if err := s.Verify(); err == nil {
		t.Fatal("expected Verify to reject an unterminated block")
	}
}

func TestVerifyAcceptsAFullyTerminatedFunction(t *testing.T) {
	s := NewSession("", "")
	fn := s.NewFunc("good", types.Void)
	b := fn.NewBlock("entry")
	b.NewRet(nil)

	if err := s.Verify(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWriteIRContainsModuleText(t *testing.T) {
	s := NewSession("", "")
	fn := s.NewFunc("f", types.Void)
	b := fn.NewBlock("entry")
	b.NewRet(nil)

	var buf strings.Builder
	if err := s.WriteIR(&buf); err != nil {
		t.Fatalf("WriteIR: %v", err)
	}
	if !strings.Contains(buf.String(), "define") {
		t.Error("expected the IR text to contain a function definition")
	}
}
