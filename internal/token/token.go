// Package token defines the lexical tokens of the BASIC dialect.
package token

import (
	"fmt"
	"sort"
	"strings"
)

type Kind int

const (
	ILLEGAL Kind = iota
	EOF
	EOL

	//
	// Literals and names
	//

	LINENUM
	INTEGER
	REAL
	STRING
	IDENT

	//
	// Punctuation
	//

	LPAREN
	RPAREN
	COMMA
	SEMI
	COLON

	//
	// Operators
	//

	PLUS
	MINUS
	STAR
	SLASH
	CARET
	EQ
	NE
	LT
	LE
	GT
	GE
	BANG

	//
	// Keywords
	//

	keywordFirst
	AND
	BASE
	DATA
	DEF
	DIM
	DO
	ELSE
	END
	ENDWHILE
	FALSE
	FOR
	GO
	GOSUB
	GOTO
	IF
	INPUT
	LET
	MOD
	NEXT
	NOT
	ON
	OPTION
	OR
	PRINT
	RANDOMIZE
	READ
	REM
	REPEAT
	RESTORE
	RETURN
	STEP
	STOP
	THEN
	TO
	TRUE
	UNTIL
	WEND
	WHILE
	keywordLast

	//
	// Builtin functions
	//

	builtinFirst
	ABS
	ASC
	ATN
	CDBL
	CHRS
	CINT
	CLNG
	COS
	EXP
	INSTR
	INT
	LCASES
	LEFTS
	LEN
	LOG
	MIDS
	RIGHTS
	RND
	SGN
	SIN
	SQR
	STRS
	TAN
	UCASES
	VAL
	builtinLast
)

var kindNames = map[Kind]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",
	EOL:     "EOL",
	LINENUM: "LINENUM",
	INTEGER: "INTEGER",
	REAL:    "REAL",
	STRING:  "STRING",
	IDENT:   "IDENT",
	LPAREN:  "(",
	RPAREN:  ")",
	COMMA:   ",",
	SEMI:    ";",
	COLON:   ":",
	PLUS:    "+",
	MINUS:   "-",
	STAR:    "*",
	SLASH:   "/",
	CARET:   "^",
	EQ:      "=",
	NE:      "<>",
	LT:      "<",
	LE:      "<=",
	GT:      ">",
	GE:      ">=",
	BANG:    "!",

	AND:       "AND",
	BASE:      "BASE",
	DATA:      "DATA",
	DEF:       "DEF",
	DIM:       "DIM",
	DO:        "DO",
	ELSE:      "ELSE",
	END:       "END",
	ENDWHILE:  "ENDWHILE",
	FALSE:     "FALSE",
	FOR:       "FOR",
	GO:        "GO",
	GOSUB:     "GOSUB",
	GOTO:      "GOTO",
	IF:        "IF",
	INPUT:     "INPUT",
	LET:       "LET",
	MOD:       "MOD",
	NEXT:      "NEXT",
	NOT:       "NOT",
	ON:        "ON",
	OPTION:    "OPTION",
	OR:        "OR",
	PRINT:     "PRINT",
	RANDOMIZE: "RANDOMIZE",
	READ:      "READ",
	REM:       "REM",
	REPEAT:    "REPEAT",
	RESTORE:   "RESTORE",
	RETURN:    "RETURN",
	STEP:      "STEP",
	STOP:      "STOP",
	THEN:      "THEN",
	TO:        "TO",
	TRUE:      "TRUE",
	UNTIL:     "UNTIL",
	WEND:      "WEND",
	WHILE:     "WHILE",

	ABS:    "ABS",
	ASC:    "ASC",
	ATN:    "ATN",
	CDBL:   "CDBL",
	CHRS:   "CHR$",
	CINT:   "CINT",
	CLNG:   "CLNG",
	COS:    "COS",
	EXP:    "EXP",
	INSTR:  "INSTR",
	INT:    "INT",
	LCASES: "LCASE$",
	LEFTS:  "LEFT$",
	LEN:    "LEN",
	LOG:    "LOG",
	MIDS:   "MID$",
	RIGHTS: "RIGHT$",
	RND:    "RND",
	SGN:    "SGN",
	SIN:    "SIN",
	SQR:    "SQR",
	STRS:   "STR$",
	TAN:    "TAN",
	UCASES: "UCASE$",
	VAL:    "VAL",
}

func (k Kind) String() string {

	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) IsKeyword() bool {

	return k > keywordFirst && k < keywordLast
}

func (k Kind) IsBuiltin() bool {

	return k > builtinFirst && k < builtinLast
}

// Token is one lexeme together with the physical source line it came from.
type Token struct {
	Text string
	Kind Kind
	Line int
}

func (t Token) String() string {

	switch t.Kind {
	default:
		return t.Kind.String()

	case EOL:
		return "end of line"

	case EOF:
		return "end of input"

	case LINENUM, INTEGER, REAL, IDENT:
		return t.Text

	case STRING:
		return fmt.Sprintf("%q", t.Text)
	}
}

//
// The reserved word table.  Entries are ordered longest first, so that
// a scan which tries each pattern in turn will never match a shorter
// prefix (e.g. GOSUB before GO, ENDWHILE before END, >= before >)
//

type Entry struct {
	Pattern string
	Kind    Kind
}

var words []Entry
var operators []Entry

func init() {

	for k, name := range kindNames {
		switch {
		default:
			// literals, specials

		case k.IsKeyword() || k.IsBuiltin():
			words = append(words, Entry{name, k})

		case k >= LPAREN && k <= BANG:
			operators = append(operators, Entry{name, k})
		}
	}

	sortLongestFirst(words)
	sortLongestFirst(operators)
}

func sortLongestFirst(table []Entry) {

	sort.Slice(table, func(i, j int) bool {
		if len(table[i].Pattern) != len(table[j].Pattern) {
			return len(table[i].Pattern) > len(table[j].Pattern)
		}

		return table[i].Pattern < table[j].Pattern
	})
}

// Words returns the reserved word table, longest pattern first.
func Words() []Entry {

	return words
}

// Operators returns the operator/punctuation table, longest pattern first.
func Operators() []Entry {

	return operators
}

// Lookup maps an upper-cased word to its keyword or builtin kind.
func Lookup(word string) (Kind, bool) {

	word = strings.ToUpper(word)

	for _, e := range words {
		if e.Pattern == word {
			return e.Kind, true
		}
	}

	return IDENT, false
}
