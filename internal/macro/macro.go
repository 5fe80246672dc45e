// Package macro expands text macros before the source reaches the lexer.
//
// A macro is declared on its own line as
//
//	100 DEF NAME(P1, P2) = "body"
//
// where the name does not start with FN (those are user functions) and
// the body is a quoted string, with "" standing for a quote.  Every
// call site NAME(a, b) elsewhere in the program is replaced by the body
// with the parameters substituted.  The declaration itself becomes a
// REM so line numbers stay put.
package macro

import (
	"regexp"
	"sort"
	"strings"

	"linebasic/internal/basicerr"
	"linebasic/internal/token"
)

const DefaultMaxDepth = 16

type Macro struct {
	Name   string
	Params []string
	Body   string
	Source int // physical line of the declaration
}

type Preprocessor struct {
	macros   map[string]*Macro
	maxDepth int
}

var declaration = regexp.MustCompile(
	`^\s*(\d+)\s*(?i:DEF)\s+([A-Za-z][A-Za-z0-9]*[%&#$?]?)\s*\(([^)]*)\)\s*=\s*"((?:[^"]|"")*)"\s*$`)

func New() *Preprocessor {

	return &Preprocessor{macros: make(map[string]*Macro), maxDepth: DefaultMaxDepth}
}

// Macros returns the declarations found by the last Expand, by name.
func (p *Preprocessor) Macros() []*Macro {

	list := make([]*Macro, 0, len(p.macros))
	for _, m := range p.macros {
		list = append(list, m)
	}

	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })

	return list
}

//
// Expand works in two passes.  The first collects every declaration so
// a macro may be used on a line before the one declaring it; the second
// rewrites call sites, rescanning expanded text for nested calls
//

func (p *Preprocessor) Expand(src string) (string, error) {

	p.macros = make(map[string]*Macro)

	lines := strings.Split(src, "\n")
	isDecl := make([]bool, len(lines))

	for i, line := range lines {
		m, err := p.declare(line, i+1)
		if err != nil {
			return "", err
		}

		if m != nil {
			isDecl[i] = true
		}
	}

	if len(p.macros) == 0 {
		return src, nil
	}

	for i, line := range lines {
		if isDecl[i] {
			lines[i] = declaration.FindStringSubmatch(line)[1] + " REM"
			continue
		}

		out, err := p.expandLine(line, i+1, 0)
		if err != nil {
			return "", err
		}

		lines[i] = out
	}

	return strings.Join(lines, "\n"), nil
}

func (p *Preprocessor) declare(line string, source int) (*Macro, error) {

	match := declaration.FindStringSubmatch(line)
	if match == nil {
		return nil, nil
	}

	name := strings.ToUpper(match[2])
	if strings.HasPrefix(name, "FN") {
		return nil, nil
	}

	if _, ok := token.Lookup(name); ok {
		return nil, basicerr.SyntaxAt(source, "%s: macro name %s is reserved", basicerr.ESYNTAX, name)
	}

	if prev, ok := p.macros[name]; ok {
		return nil, basicerr.SyntaxAt(source, "%s: macro %s already declared at line %d",
			basicerr.EDUPLICATEDEF, name, prev.Source)
	}

	m := &Macro{
		Name:   name,
		Body:   strings.ReplaceAll(match[4], `""`, `"`),
		Source: source,
	}

	if params := strings.TrimSpace(match[3]); params != "" {
		for _, param := range strings.Split(params, ",") {
			param = strings.ToUpper(strings.TrimSpace(param))
			if !isName(param) {
				return nil, basicerr.SyntaxAt(source, "%s: bad macro parameter %q", basicerr.ESYNTAX, param)
			}

			m.Params = append(m.Params, param)
		}
	}

	p.macros[name] = m

	return m, nil
}

func isName(s string) bool {

	if s == "" || !isLetter(s[0]) {
		return false
	}

	n := scanName(s, 0)

	return n == len(s)
}

func isLetter(c byte) bool {

	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isDigit(c byte) bool {

	return c >= '0' && c <= '9'
}

// scanName returns the end of the name starting at i, suffix included.
func scanName(s string, i int) int {

	for i < len(s) && (isLetter(s[i]) || isDigit(s[i])) {
		i++
	}

	if i < len(s) && strings.IndexByte("%&#$?", s[i]) >= 0 {
		i++
	}

	return i
}

//
// expandLine copies line, replacing macro calls.  String literals and
// comments are copied untouched
//

func (p *Preprocessor) expandLine(line string, source, depth int) (string, error) {

	if depth > p.maxDepth {
		return "", basicerr.SyntaxAt(source, "%s: macro expansion nested too deeply", basicerr.ESYNTAX)
	}

	var sb strings.Builder

	changed := false

	for i := 0; i < len(line); {
		c := line[i]

		switch {
		default:
			sb.WriteByte(c)
			i++

		case c == '"':
			end := strings.IndexByte(line[i+1:], '"')
			if end < 0 {
				sb.WriteString(line[i:])
				i = len(line)
			} else {
				sb.WriteString(line[i : i+end+2])
				i += end + 2
			}

		case c == '\'':
			sb.WriteString(line[i:])
			i = len(line)

		case isLetter(c):
			end := scanName(line, i)
			word := strings.ToUpper(line[i:end])

			if word == "REM" {
				sb.WriteString(line[i:])
				i = len(line)
				break
			}

			m, ok := p.macros[word]
			if !ok {
				sb.WriteString(line[i:end])
				i = end
				break
			}

			args, next, err := splitArgs(line, end, source)
			if err != nil {
				return "", err
			}

			if len(args) != len(m.Params) {
				return "", basicerr.SyntaxAt(source, "%s: macro %s takes %d, got %d",
					basicerr.EFUNCARGS, m.Name, len(m.Params), len(args))
			}

			sb.WriteString(substitute(m, args))
			i = next
			changed = true
		}
	}

	if !changed {
		return sb.String(), nil
	}

	return p.expandLine(sb.String(), source, depth+1)
}

//
// splitArgs reads the parenthesised argument list starting at i,
// splitting on top level commas.  A macro named without parentheses is
// a call with no arguments
//

func splitArgs(line string, i, source int) ([]string, int, error) {

	j := i
	for j < len(line) && line[j] == ' ' {
		j++
	}

	if j >= len(line) || line[j] != '(' {
		return nil, i, nil
	}

	var args []string

	depth := 0
	start := j + 1

	for k := j + 1; k < len(line); k++ {
		switch line[k] {
		case '"':
			end := strings.IndexByte(line[k+1:], '"')
			if end < 0 {
				return nil, 0, basicerr.SyntaxAt(source, "%s", basicerr.EUNTERMSTRING)
			}

			k += end + 1

		case '(':
			depth++

		case ')':
			if depth > 0 {
				depth--
				break
			}

			if arg := strings.TrimSpace(line[start:k]); arg != "" || len(args) > 0 {
				args = append(args, arg)
			}

			return args, k + 1, nil

		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(line[start:k]))
				start = k + 1
			}
		}
	}

	return nil, 0, basicerr.SyntaxAt(source, "%s: unclosed macro call", basicerr.ESYNTAX)
}

// substitute replaces whole-word parameter names outside string literals.
func substitute(m *Macro, args []string) string {

	if len(m.Params) == 0 {
		return m.Body
	}

	bind := make(map[string]string, len(m.Params))
	for i, param := range m.Params {
		bind[param] = args[i]
	}

	var sb strings.Builder

	body := m.Body

	for i := 0; i < len(body); {
		c := body[i]

		switch {
		default:
			sb.WriteByte(c)
			i++

		case c == '"':
			end := strings.IndexByte(body[i+1:], '"')
			if end < 0 {
				sb.WriteString(body[i:])
				i = len(body)
			} else {
				sb.WriteString(body[i : i+end+2])
				i += end + 2
			}

		case isLetter(c):
			end := scanName(body, i)
			if arg, ok := bind[strings.ToUpper(body[i:end])]; ok {
				sb.WriteString(arg)
			} else {
				sb.WriteString(body[i:end])
			}

			i = end
		}
	}

	return sb.String()
}
