package frontend

import (
	"testing"

	"github.com/smasonuk/gracec/internal/lexer"
	"github.com/smasonuk/gracec/internal/semantic"
	"github.com/smasonuk/gracec/internal/symtab"
)

func parseSource(t *testing.T, src string) (*Parser, error) {
	t.Helper()
	toks, lexErr := lexer.Lex("t.grc", src)
	if lexErr != nil {
		return nil, lexErr
	}
	sem := semantic.New("t.grc", symtab.New())
	p := New("t.grc", toks, sem, false)
	_, err := p.ParseProgram()
	if err != nil {
		return p, err
	}
	return p, nil
}

func mustParse(t *testing.T, src string) {
	t.Helper()
	if _, err := parseSource(t, src); err != nil {
		t.Fatalf("unexpected error parsing:\n%s\n%v", src, err)
	}
}

func mustFail(t *testing.T, src string) {
	t.Helper()
	if _, err := parseSource(t, src); err == nil {
		t.Fatalf("expected an error parsing:\n%s", src)
	}
}

func TestParseEmptyMain(t *testing.T) {
	mustParse(t, `fun main(): nothing { }`)
}

func TestParseLocalsAndAssignment(t *testing.T) {
	mustParse(t, `
		fun main(): nothing {
			var x : int;
			x <- 1 + 2 * 3;
			return;
		}
	`)
}

func TestParseArrayDeclarationAndIndexing(t *testing.T) {
	mustParse(t, `
		fun main(): nothing {
			var a : int[10];
			a[0] <- 1;
			a[1] <- a[0] + 1;
			return;
		}
	`)
}

func TestParseRejectsUnspecifiedDimensionOnLocal(t *testing.T) {
	mustFail(t, `
		fun main(): nothing {
			var a : int[];
			return;
		}
	`)
}

func TestParseNestedFunctionCallAndStaticLink(t *testing.T) {
	mustParse(t, `
		fun main(): nothing {
			var total : int;
			fun add(x : int): int {
				return total + x;
			}
			total <- add(5);
			return;
		}
	`)
}

func TestParseByRefArrayParameterWithUnspecifiedLeadingDimension(t *testing.T) {
	mustParse(t, `
		fun main(): nothing {
			var xs : int[3];
			fun sum(ref a : int[]; n : int): int {
				return n;
			}
			xs[0] <- sum(xs, 3);
			return;
		}
	`)
}

func TestParseRejectsByValueArrayParameter(t *testing.T) {
	mustFail(t, `
		fun main(): nothing {
			fun f(a : int[3]): nothing {
				return;
			}
			return;
		}
	`)
}

func TestParseForwardDeclarationMustMatchDefinition(t *testing.T) {
	mustParse(t, `
		fun main(): nothing {
			fun f(x : int): int;
			fun f(x : int): int {
				return x;
			}
			return;
		}
	`)
}

func TestParseForwardDeclarationMismatchIsRejected(t *testing.T) {
	mustFail(t, `
		fun main(): nothing {
			fun f(x : int): int;
			fun f(x : char): int {
				return x;
			}
			return;
		}
	`)
}

func TestParseDanglingDeclarationIsRejected(t *testing.T) {
	mustFail(t, `
		fun main(): nothing {
			fun f(): int;
			return;
		}
	`)
}

func TestParseIfThenElse(t *testing.T) {
	mustParse(t, `
		fun main(): nothing {
			var x : int;
			if (x = 0) then {
				x <- 1;
			} else {
				x <- 2;
			}
			return;
		}
	`)
}

func TestParseWhileDo(t *testing.T) {
	mustParse(t, `
		fun main(): nothing
			var x : int;
		{
			x <- 0;
			while (x < 10) do {
				x <- x + 1;
			}
			return;
		}
	`)
}

func TestParseLogicalConnectives(t *testing.T) {
	mustParse(t, `
		fun main(): nothing
			var x, y : int;
		{
			if (x < y and not x = y or y < x) then {
				return;
			}
			return;
		}
	`)
}

func TestParseRejectsReturnValueFromNothingFunction(t *testing.T) {
	mustFail(t, `
		fun main(): nothing {
			return 1;
		}
	`)
}

func TestParseRejectsTypeMismatchInReturn(t *testing.T) {
	mustFail(t, `
		fun main(): nothing {
			fun f(): int {
				var c : char;
				return c;
			}
			return;
		}
	`)
}

func TestParseRejectsAssignmentToArray(t *testing.T) {
	mustFail(t, `
		fun main(): nothing
			var a, b : int[3];
		{
			a <- b;
			return;
		}
	`)
}

func TestParseRejectsUndefinedName(t *testing.T) {
	mustFail(t, `
		fun main(): nothing {
			x <- 1;
			return;
		}
	`)
}

func TestParseRejectsRedefinitionInSameScope(t *testing.T) {
	mustFail(t, `
		fun main(): nothing {
			var x : int;
			var x : int;
			return;
		}
	`)
}

func TestParseRejectsCallWithWrongArgumentCount(t *testing.T) {
	mustFail(t, `
		fun main(): nothing {
			fun f(x : int): nothing {
				return;
			}
			f();
			return;
		}
	`)
}

func TestParseRejectsLiteralArgumentForByRefParameter(t *testing.T) {
	mustFail(t, `
		fun main(): nothing
			fun f(ref x : int): nothing {
				return;
			}
		{
			f(1);
			return;
		}
	`)
}

func TestParseRejectsMainWithParameters(t *testing.T) {
	mustFail(t, `fun main(x : int): nothing { return; }`)
}

func TestAstOnlyModeSkipsSemanticChecks(t *testing.T) {
	toks, lexErr := lexer.Lex("t.grc", `
		fun main(): nothing {
			x <- 1;
			return;
		}
	`)
	if lexErr != nil {
		t.Fatalf("lex: %v", lexErr)
	}
	p := New("t.grc", toks, nil, true)
	if _, err := p.ParseProgram(); err != nil {
		t.Fatalf("unexpected error in AstOnly mode: %v", err)
	}
}
