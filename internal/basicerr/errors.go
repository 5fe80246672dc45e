// Package basicerr holds the error taxonomy shared by the lexer, parser
// and execution engine.
package basicerr

import (
	"errors"
	"fmt"
	"strings"
)

//
// Manifest constants for the interpreter error messages.  Callers
// pass these as the message (optionally followed by detail) so that
// tests and users see the same text for the same failure
//

const (
	EBADCHAR          = "Unrecognized character"
	EUNTERMSTRING     = "Unterminated string"
	EMISSINGLINENO    = "Missing line number"
	ELINEORDER        = "Line numbers must be strictly increasing"
	EILLEGALNUMBER    = "Illegal number"
	ESYNTAX           = "Syntax error"
	EMISSINGSTMT      = "Missing statement"
	EUNDEFINEDLINE    = "Undefined line number"
	EDIVISIONBYZERO   = "Division by 0"
	ETYPEMISMATCH     = "Type mismatch"
	EOUTOFDATA        = "Out of data"
	ERETURNNOGOSUB    = "RETURN without GOSUB"
	ENEXTNOFOR        = "NEXT without FOR"
	EENDWHILENOWHILE  = "ENDWHILE without WHILE"
	EUNTILNOREPEAT    = "UNTIL without REPEAT"
	EFORNONEXT        = "FOR without NEXT"
	EWHILENOENDWHILE  = "WHILE without ENDWHILE"
	EZEROSTEP         = "STEP expression must be non-zero"
	EUNDEFINEDFUNC    = "Undefined function"
	EFUNCARGS         = "Wrong number of arguments"
	EFNRECURSION      = "Function nesting exceeded"
	ESTACKOVERFLOW    = "Stack overflow"
	ESUBSCRIPTERROR   = "Subscript out of range"
	EDUPLICATEDIM     = "Duplicate DIM statement"
	EDIMENSIONS       = "Wrong number of dimensions"
	EONERROR          = "ON statement out of range"
	EILLEGALFUNCCALL  = "Illegal function call"
	EOVERFLOW         = "Overflow"
	EINPUTEOF         = "Input past end"
	EDUPLICATEDEF     = "Duplicate DEF statement"
	EDUPLICATELINENO  = "Duplicate line number"
	EUNSUPPORTEDPRAGM = "Unsupported OPTION"
)

type Kind int

const (
	Syntax Kind = iota
	Runtime
	DivideByZero
	EmptyStack
	OutOfData
	UndefinedFunction
	TypeMismatch
)

var kindNames = [...]string{
	Syntax:            "SyntaxError",
	Runtime:           "RuntimeError",
	DivideByZero:      "DivideByZeroError",
	EmptyStack:        "EmptyStackError",
	OutOfData:         "OutOfDataError",
	UndefinedFunction: "UndefinedFunctionError",
	TypeMismatch:      "TypeMismatchError",
}

func (k Kind) String() string {

	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

//
// Location information is optional.  Zero means 'unknown', except for
// Token and Statement where -1 is used, since 0 is a valid position
//

type Error struct {
	Kind      Kind
	Msg       string
	Line      int // BASIC line number
	Source    int // physical source line
	Token     int // token position
	Statement int // statement index
}

func (e *Error) Error() string {

	var sb strings.Builder

	sb.WriteString(e.Kind.String())
	sb.WriteString(": ")
	sb.WriteString(e.Msg)

	if e.Line > 0 {
		fmt.Fprintf(&sb, " at line %d", e.Line)
	} else if e.Source > 0 {
		fmt.Fprintf(&sb, " at source line %d", e.Source)
	}

	if e.Token >= 0 {
		fmt.Fprintf(&sb, " (token %d", e.Token)
		if e.Statement >= 0 {
			fmt.Fprintf(&sb, ", statement %d", e.Statement)
		}
		sb.WriteString(")")
	} else if e.Statement >= 0 {
		fmt.Fprintf(&sb, " (statement %d)", e.Statement)
	}

	return sb.String()
}

func New(kind Kind, msg string) *Error {

	return &Error{Kind: kind, Msg: msg, Token: -1, Statement: -1}
}

func Newf(kind Kind, f string, args ...any) *Error {

	return New(kind, fmt.Sprintf(f, args...))
}

//
// Handy wrappers for the kinds that show up all over the place
//

func SyntaxAt(source int, f string, args ...any) *Error {

	e := Newf(Syntax, f, args...)
	e.Source = source

	return e
}

func Runtimef(f string, args ...any) *Error {

	return Newf(Runtime, f, args...)
}

func Mismatch(f string, args ...any) *Error {

	return New(TypeMismatch, ETYPEMISMATCH+": "+fmt.Sprintf(f, args...))
}

// Position is where in the program an error was raised.
type Position struct {
	Line      int
	Source    int
	Token     int
	Statement int
}

//
// At attaches location information to err, unless it already carries
// some.  Errors which are not ours are wrapped as Runtime errors, so the
// fetch-execute loop never has to care where a failure came from
//

func At(err error, pos Position) error {

	if err == nil {
		return nil
	}

	var be *Error

	if !errors.As(err, &be) {
		be = New(Runtime, err.Error())
	}

	if be.Line == 0 && be.Source == 0 && be.Token < 0 && be.Statement < 0 {
		be.Line = pos.Line
		be.Source = pos.Source
		be.Token = pos.Token
		be.Statement = pos.Statement
	}

	return be
}

func IsKind(err error, kind Kind) bool {

	var be *Error

	return errors.As(err, &be) && be.Kind == kind
}

func KindOf(err error) (Kind, bool) {

	var be *Error

	if errors.As(err, &be) {
		return be.Kind, true
	}

	return 0, false
}
