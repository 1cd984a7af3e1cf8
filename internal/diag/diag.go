// Package diag holds the compiler's closed error taxonomy and diagnostic
// formatting, per the error model in section 7 of the specification.
package diag

import "fmt"

// Pos is a source position: a file name plus a line/column start.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("file: %s, line: %d, column: %d", p.File, p.Line, p.Column)
}

// Kind identifies which of the closed set of error categories a
// diagnostic belongs to.
type Kind int

const (
	LexKind Kind = iota
	ParseKind
	SemanticKind
	SymbolKind
	CodegenKind
	InternalKind
)

func (k Kind) String() string {
	switch k {
	case LexKind:
		return "lexing error"
	case ParseKind:
		return "parser error"
	case SemanticKind:
		return "semantic error"
	case SymbolKind:
		return "symbol-table error"
	case CodegenKind:
		return "codegen error"
	case InternalKind:
		return "internal compiler error"
	default:
		return "error"
	}
}

// Error is the single error type the whole pipeline raises. Internal
// compiler errors carry a zero Pos and are formatted without a location.
type Error struct {
	Kind    Kind
	Pos     Pos
	Message string
}

func (e *Error) Error() string {
	if e.Kind == InternalKind {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Pos, e.Message)
}

func Lex(pos Pos, format string, args ...any) *Error {
	return &Error{Kind: LexKind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func Parse(pos Pos, format string, args ...any) *Error {
	return &Error{Kind: ParseKind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func Semantic(pos Pos, format string, args ...any) *Error {
	return &Error{Kind: SemanticKind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func Symbol(pos Pos, format string, args ...any) *Error {
	return &Error{Kind: SymbolKind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func Codegen(pos Pos, format string, args ...any) *Error {
	return &Error{Kind: CodegenKind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func Internal(format string, args ...any) *Error {
	return &Error{Kind: InternalKind, Message: fmt.Sprintf(format, args...)}
}

// Warning is a non-aborting diagnostic. The only warning the pipeline
// currently produces is "unreachable code" (section 4.4).
type Warning struct {
	Pos     Pos
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("warning at %s: %s", w.Pos, w.Message)
}

// Sink collects warnings emitted during one compilation without
// aborting the pipeline. It has no output stream and writes nothing
// itself; driver.Result.Warnings hands its contents to the caller.
type Sink struct {
	Warnings []Warning
}

func (s *Sink) Warn(pos Pos, format string, args ...any) {
	s.Warnings = append(s.Warnings, Warning{Pos: pos, Message: fmt.Sprintf(format, args...)})
}
