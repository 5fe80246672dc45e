// Package lexer turns BASIC source text into a flat token stream.
package lexer

import (
	"strconv"
	"strings"

	"linebasic/internal/basicerr"
	"linebasic/internal/token"
)

type Options struct {
	// Dartmouth accepts crunched source: blanks outside strings are
	// insignificant, keywords are recognised by prefix and variables are
	// a single letter with an optional digit
	Dartmouth bool
}

type state int

const (
	stateDefault state = iota
	stateWord
	stateNumber
	stateString
	stateComment
)

type lexer struct {
	opts   Options
	text   string // current physical line
	pos    int
	source int // physical line, 1 based
	lineNo int // BASIC line number of the current line
	tokens []token.Token
}

//
// Tokenize scans src from left to right.  Every non-blank line must
// open with a line number larger than the previous one.  Each line is
// terminated by an EOL token and the stream by a single EOF token
//

func Tokenize(src string, opts Options) ([]token.Token, error) {

	if !strings.HasSuffix(src, "\n") {
		src += "\n"
	}

	src = strings.ReplaceAll(src, "\r\n", "\n")

	l := &lexer{opts: opts}

	lastLineNo := -1
	lines := strings.Split(src, "\n")

	for i, text := range lines {
		l.source = i + 1
		l.text = text
		l.pos = 0

		l.skipBlanks()
		if l.pos >= len(l.text) {
			continue
		}

		lineNo, err := l.lineNumber()
		if err != nil {
			return nil, err
		}

		if lineNo <= lastLineNo {
			return nil, l.errorf("%s: %d follows %d", basicerr.ELINEORDER,
				lineNo, lastLineNo)
		}

		lastLineNo = lineNo

		if err := l.scanLine(); err != nil {
			return nil, err
		}

		l.emit(token.EOL, "")
	}

	l.emit(token.EOF, "")

	return l.tokens, nil
}

func (l *lexer) errorf(f string, args ...any) error {

	e := basicerr.SyntaxAt(l.source, f, args...)
	e.Line = l.lineNo

	return e
}

func (l *lexer) emit(kind token.Kind, text string) {

	l.tokens = append(l.tokens, token.Token{Text: text, Kind: kind, Line: l.source})
}

func (l *lexer) peek(offset int) byte {

	if l.pos+offset < len(l.text) {
		return l.text[l.pos+offset]
	}

	return 0
}

func (l *lexer) skipBlanks() {

	for l.pos < len(l.text) && isBlank(l.text[l.pos]) {
		l.pos++
	}
}

func (l *lexer) lineNumber() (int, error) {

	start := l.pos
	for l.pos < len(l.text) && isDigit(l.text[l.pos]) {
		l.pos++
	}

	if start == l.pos {
		l.lineNo = 0
		return 0, l.errorf("%s: %q", basicerr.EMISSINGLINENO,
			strings.TrimSpace(l.text))
	}

	digits := l.text[start:l.pos]

	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, l.errorf("%s: %s", basicerr.EILLEGALNUMBER, digits)
	}

	l.lineNo = n
	l.emit(token.LINENUM, digits)

	return n, nil
}

//
// scanLine runs the state machine over the rest of the current line.
// Each state consumes its lexeme and hands control back to the default
// state, except for comments which swallow the rest of the line
//

func (l *lexer) scanLine() error {

	st := stateDefault

	for l.pos < len(l.text) {
		var err error

		switch st {
		default:
			st, err = l.scanDefault()

		case stateWord:
			st, err = l.scanWord()

		case stateNumber:
			st, err = l.scanNumber()

		case stateString:
			st, err = l.scanString()

		case stateComment:
			l.emit(token.REM, strings.TrimSpace(l.text[l.pos:]))
			l.pos = len(l.text)
			return nil
		}

		if err != nil {
			return err
		}
	}

	//
	// A REM at the very end of a line still needs its token
	//

	if st == stateComment {
		l.emit(token.REM, "")
	}

	return nil
}

func (l *lexer) scanDefault() (state, error) {

	c := l.text[l.pos]

	switch {
	case isBlank(c):
		l.pos++
		return stateDefault, nil

	case isDigit(c) || (c == '.' && isDigit(l.peek(1))):
		return stateNumber, nil

	case c == '"':
		l.pos++
		return stateString, nil

	case c == '\'':
		l.pos++
		return stateComment, nil

	case isLetter(c):
		return stateWord, nil

	case c == '?':
		l.pos++
		l.emit(token.PRINT, "PRINT")
		return stateDefault, nil
	}

	for _, e := range token.Operators() {
		if strings.HasPrefix(l.text[l.pos:], e.Pattern) {
			l.pos += len(e.Pattern)
			l.emit(e.Kind, e.Pattern)
			return stateDefault, nil
		}
	}

	return stateDefault, l.errorf("%s %q", basicerr.EBADCHAR, string(c))
}

func (l *lexer) scanWord() (state, error) {

	if l.opts.Dartmouth {
		return l.scanCrunchedWord()
	}

	start := l.pos
	for l.pos < len(l.text) && isWordChar(l.text[l.pos]) {
		l.pos++
	}

	word := strings.ToUpper(l.text[start:l.pos])

	//
	// Keywords like LEFT$ carry a dollar sign, so they get first claim
	// on it before it is taken as a String suffix
	//

	if l.peek(0) == '$' {
		if kind, ok := token.Lookup(word + "$"); ok {
			l.pos++
			l.emit(kind, word+"$")
			return stateDefault, nil
		}
	}

	if kind, ok := token.Lookup(word); ok {
		if kind == token.REM {
			return stateComment, nil
		}

		l.emit(kind, word)
		return stateDefault, nil
	}

	if isSuffix(l.peek(0)) {
		word += string(l.peek(0))
		l.pos++
	}

	l.emit(token.IDENT, word)

	return stateDefault, nil
}

//
// In crunched source 'FORI=1TO9' has no word boundaries, so keywords
// are tried as prefixes of the remaining text, longest first.  FNx
// names a user function.  Anything else is a one letter variable,
// optionally followed by a digit
//

func (l *lexer) scanCrunchedWord() (state, error) {

	for _, e := range token.Words() {
		if end, ok := l.matchFold(e.Pattern); ok {
			l.pos = end
			if e.Kind == token.REM {
				return stateComment, nil
			}

			l.emit(e.Kind, e.Pattern)
			return stateDefault, nil
		}
	}

	if end, ok := l.matchFold("FN"); ok {
		l.pos = end
		l.skipBlanks()
		if l.pos < len(l.text) && isLetter(l.text[l.pos]) {
			l.emit(token.IDENT, "FN"+strings.ToUpper(string(l.text[l.pos])))
			l.pos++
			return stateDefault, nil
		}

		return stateDefault, l.errorf("%s: FN needs a letter", basicerr.ESYNTAX)
	}

	name := strings.ToUpper(string(l.text[l.pos]))
	l.pos++

	save := l.pos
	l.skipBlanks()
	if l.pos < len(l.text) && isDigit(l.text[l.pos]) {
		name += string(l.text[l.pos])
		l.pos++
	} else {
		l.pos = save
	}

	l.emit(token.IDENT, name)

	return stateDefault, nil
}

// matchFold matches pattern case insensitively, skipping blanks in the source.
func (l *lexer) matchFold(pattern string) (int, bool) {

	i := l.pos

	for j := 0; j < len(pattern); j++ {
		for i < len(l.text) && isBlank(l.text[i]) {
			i++
		}

		if i >= len(l.text) || upper(l.text[i]) != pattern[j] {
			return 0, false
		}

		i++
	}

	return i, true
}

//
// Numbers are digits with an optional fraction and exponent.  The
// exponent is only taken when a digit follows, so '10E' stays a number
// followed by a word
//

func (l *lexer) scanNumber() (state, error) {

	start := l.pos
	isReal := false

	for l.pos < len(l.text) && isDigit(l.text[l.pos]) {
		l.pos++
	}

	if l.peek(0) == '.' {
		isReal = true
		l.pos++
		for l.pos < len(l.text) && isDigit(l.text[l.pos]) {
			l.pos++
		}
	}

	if c := l.peek(0); c == 'E' || c == 'e' {
		n := 1
		if s := l.peek(1); s == '+' || s == '-' {
			n = 2
		}

		if isDigit(l.peek(n)) {
			isReal = true
			l.pos += n
			for l.pos < len(l.text) && isDigit(l.text[l.pos]) {
				l.pos++
			}
		}
	}

	text := l.text[start:l.pos]

	if isReal {
		if _, err := strconv.ParseFloat(text, 64); err != nil {
			return stateDefault, l.errorf("%s: %s", basicerr.EILLEGALNUMBER, text)
		}

		l.emit(token.REAL, text)
		return stateDefault, nil
	}

	if _, err := strconv.ParseInt(text, 10, 64); err != nil {
		return stateDefault, l.errorf("%s: %s", basicerr.EILLEGALNUMBER, text)
	}

	l.emit(token.INTEGER, text)

	return stateDefault, nil
}

func (l *lexer) scanString() (state, error) {

	var sb strings.Builder

	for l.pos < len(l.text) {
		c := l.text[l.pos]
		l.pos++

		if c != '"' {
			sb.WriteByte(c)
			continue
		}

		if l.peek(0) == '"' {
			sb.WriteByte('"')
			l.pos++
			continue
		}

		l.emit(token.STRING, sb.String())
		return stateDefault, nil
	}

	return stateDefault, l.errorf("%s", basicerr.EUNTERMSTRING)
}

func isBlank(c byte) bool  { return c == ' ' || c == '\t' || c == '\r' }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') }

func isWordChar(c byte) bool {

	return isLetter(c) || isDigit(c) || c == '_'
}

func isSuffix(c byte) bool {

	switch c {
	case '%', '&', '#', '$', '?':
		return true
	}

	return false
}

func upper(c byte) byte {

	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}

	return c
}
