// Package parser builds the statement lists of a program from its token
// stream by recursive descent, and fills in the cross reference table.
package parser

import (
	"strconv"
	"strings"

	"linebasic/internal/ast"
	"linebasic/internal/basicerr"
	"linebasic/internal/token"
	"linebasic/internal/value"
	"linebasic/internal/xref"
)

type Precedence int

const (
	// LeftToRight applies binary operators strictly in source order.
	LeftToRight Precedence = iota

	// Standard is the usual algebraic precedence, opt in only.
	Standard
)

type Options struct {
	Precedence Precedence
}

type parser struct {
	tokens []token.Token
	pos    int
	table  *xref.Table
	opts   Options
	prog   *ast.Program
	lineNo int

	//
	// Loop partners are matched by nesting as the statements go by.
	// IFs and ELSEs wait for the end of their line to learn where the
	// next line starts
	//

	fors      []*ast.For
	whiles    []*ast.While
	lineIfs   []*ast.IfThen
	lineElses []*ast.Else
}

func Parse(tokens []token.Token, table *xref.Table, opts Options) (*ast.Program, error) {

	p := &parser{
		tokens: tokens,
		table:  table,
		opts:   opts,
		prog:   &ast.Program{},
	}

	if err := p.parseProgram(); err != nil {
		return nil, err
	}

	if err := table.Check(); err != nil {
		return nil, err
	}

	return p.prog, nil
}

func (p *parser) cur() token.Token {

	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}

	return token.Token{Kind: token.EOF}
}

func (p *parser) at(kinds ...token.Kind) bool {

	k := p.cur().Kind

	for _, want := range kinds {
		if k == want {
			return true
		}
	}

	return false
}

func (p *parser) next() token.Token {

	t := p.cur()
	if p.pos < len(p.tokens) {
		p.pos++
	}

	return t
}

func (p *parser) accept(kind token.Kind) bool {

	if p.at(kind) {
		p.pos++
		return true
	}

	return false
}

func (p *parser) expect(kind token.Kind) (token.Token, error) {

	if !p.at(kind) {
		return token.Token{}, p.errorf("%s: expected %s, found %s", basicerr.ESYNTAX,
			kind, p.cur())
	}

	return p.next(), nil
}

func (p *parser) errorf(f string, args ...any) error {

	e := basicerr.SyntaxAt(p.cur().Line, f, args...)
	e.Line = p.lineNo
	e.Token = p.pos

	return e
}

func (p *parser) atStatementEnd() bool {

	return p.at(token.EOL, token.COLON, token.ELSE, token.EOF)
}

func (p *parser) parseProgram() error {

	for !p.at(token.EOF) {
		tok, err := p.expect(token.LINENUM)
		if err != nil {
			return err
		}

		p.lineNo, _ = strconv.Atoi(tok.Text)

		if err := p.table.AddLine(p.lineNo, p.pos-1); err != nil {
			return err
		}

		p.table.AddStatement(p.pos-1, len(p.prog.Main))

		if p.at(token.EOL) {
			return p.errorf("%s after line number %d", basicerr.EMISSINGSTMT, p.lineNo)
		}

		if err := p.parseStatements(); err != nil {
			return err
		}

		if _, err := p.expect(token.EOL); err != nil {
			return err
		}

		for _, s := range p.lineIfs {
			s.Next = len(p.prog.Main)
		}

		for _, s := range p.lineElses {
			s.Next = len(p.prog.Main)
		}

		p.lineIfs = p.lineIfs[:0]
		p.lineElses = p.lineElses[:0]
	}

	return nil
}

// parseStatements parses a colon separated run, stopping at EOL or ELSE.
func (p *parser) parseStatements() error {

	for {
		if err := p.parseStatement(); err != nil {
			return err
		}

		if !p.accept(token.COLON) {
			return nil
		}

		if p.at(token.EOL) {
			return nil
		}
	}
}

//
// Positions: main statements take the next main index, pre-run
// statements are registered against the index the next main statement
// will receive so a jump to their line lands on something executable
//

func (p *parser) mainPos(start int) ast.Pos {

	idx := len(p.prog.Main)
	p.table.AddStatement(start, idx)

	return ast.Pos{Line: p.lineNo, Source: p.tokens[start].Line, Token: start, Index: idx}
}

func (p *parser) preRunPos(start int) ast.Pos {

	p.table.AddStatement(start, len(p.prog.Main))

	return ast.Pos{Line: p.lineNo, Source: p.tokens[start].Line, Token: start,
		Index: len(p.prog.PreRun)}
}

func (p *parser) reference(target int, pos ast.Pos) {

	p.table.AddReference(xref.Reference{
		Target:    target,
		Line:      pos.Line,
		Source:    pos.Source,
		Token:     pos.Token,
		Statement: pos.Index,
	})
}

func (p *parser) parseStatement() error {

	start := p.pos
	tok := p.cur()

	switch tok.Kind {
	default:
		return p.errorf("%s: unexpected %s", basicerr.ESYNTAX, tok)

	case token.LET:
		p.next()
		return p.parseAssign(start)

	case token.IDENT:
		return p.parseAssign(start)

	case token.PRINT:
		return p.parsePrint(start)

	case token.IF:
		return p.parseIf(start)

	case token.GOTO, token.GO:
		return p.parseGoto(start)

	case token.GOSUB:
		p.next()
		target, err := p.lineTarget()
		if err != nil {
			return err
		}

		s := &ast.Gosub{Pos: p.mainPos(start), Target: target}
		p.reference(target, s.Pos)
		p.prog.Main = append(p.prog.Main, s)

	case token.RETURN:
		p.next()
		p.prog.Main = append(p.prog.Main, &ast.Return{Pos: p.mainPos(start)})

	case token.ON:
		return p.parseOn(start)

	case token.FOR:
		return p.parseFor(start)

	case token.NEXT:
		return p.parseNext(start)

	case token.WHILE:
		p.next()
		cond, err := p.parseExpr()
		if err != nil {
			return err
		}

		s := &ast.While{Pos: p.mainPos(start), Cond: cond, Exit: -1}
		p.whiles = append(p.whiles, s)
		p.prog.Main = append(p.prog.Main, s)

	case token.ENDWHILE, token.WEND:
		p.next()
		s := &ast.EndWhile{Pos: p.mainPos(start), Keyword: tok.Text}
		if n := len(p.whiles); n > 0 {
			p.whiles[n-1].Exit = s.Index + 1
			p.whiles = p.whiles[:n-1]
		}

		p.prog.Main = append(p.prog.Main, s)

	case token.REPEAT, token.DO:
		p.next()
		p.prog.Main = append(p.prog.Main, &ast.Repeat{Pos: p.mainPos(start), Keyword: tok.Text})

	case token.UNTIL:
		p.next()
		cond, err := p.parseExpr()
		if err != nil {
			return err
		}

		p.prog.Main = append(p.prog.Main, &ast.Until{Pos: p.mainPos(start), Cond: cond})

	case token.READ:
		p.next()
		targets, err := p.parseVariableList()
		if err != nil {
			return err
		}

		p.prog.Main = append(p.prog.Main, &ast.Read{Pos: p.mainPos(start), Targets: targets})

	case token.DATA:
		return p.parseData(start)

	case token.RESTORE:
		p.next()
		s := &ast.Restore{Pos: p.mainPos(start)}
		if !p.atStatementEnd() {
			target, err := p.lineTarget()
			if err != nil {
				return err
			}

			s.Target = target
			p.reference(target, s.Pos)
		}

		p.prog.Main = append(p.prog.Main, s)

	case token.DIM:
		p.next()
		arrays, err := p.parseVariableList()
		if err != nil {
			return err
		}

		for _, a := range arrays {
			if len(a.Subscripts) == 0 {
				return p.errorf("%s: DIM %s needs bounds", basicerr.ESYNTAX, a.Name)
			}
		}

		p.prog.Main = append(p.prog.Main, &ast.Dim{Pos: p.mainPos(start), Arrays: arrays})

	case token.INPUT:
		return p.parseInput(start)

	case token.REM:
		p.next()
		p.prog.Main = append(p.prog.Main, &ast.Rem{Pos: p.mainPos(start), Text: tok.Text})

	case token.END:
		p.next()
		p.prog.Main = append(p.prog.Main, &ast.End{Pos: p.mainPos(start)})

	case token.STOP:
		p.next()
		p.prog.Main = append(p.prog.Main, &ast.Stop{Pos: p.mainPos(start)})

	case token.RANDOMIZE:
		p.next()
		s := &ast.Randomize{Pos: p.mainPos(start)}
		if !p.atStatementEnd() {
			seed, err := p.parseExpr()
			if err != nil {
				return err
			}

			s.Seed = seed
		}

		p.prog.Main = append(p.prog.Main, s)

	case token.DEF:
		return p.parseDef(start)

	case token.OPTION:
		return p.parseOption(start)
	}

	return nil
}

func (p *parser) parseAssign(start int) error {

	target, err := p.parseVariable()
	if err != nil {
		return err
	}

	if _, err := p.expect(token.EQ); err != nil {
		return err
	}

	expr, err := p.parseExpr()
	if err != nil {
		return err
	}

	p.prog.Main = append(p.prog.Main, &ast.Assign{Pos: p.mainPos(start), Target: target, Value: expr})

	return nil
}

func (p *parser) parsePrint(start int) error {

	p.next()

	s := &ast.Print{Pos: p.mainPos(start)}

	for !p.atStatementEnd() {
		var item ast.PrintItem

		if !p.at(token.SEMI, token.COMMA) {
			expr, err := p.parseExpr()
			if err != nil {
				return err
			}

			item.Expr = expr
		}

		if p.at(token.SEMI, token.COMMA) {
			item.Sep = p.next().Text
		} else if !p.atStatementEnd() {
			return p.errorf("%s: unexpected %s in PRINT", basicerr.ESYNTAX, p.cur())
		}

		s.Items = append(s.Items, item)
	}

	p.prog.Main = append(p.prog.Main, s)

	return nil
}

//
// IF c THEN n | statements [ELSE n | statements]
//
// The branch statements follow the IF in the main list.  When there is
// an ELSE, an Else marker separates the two branches so that a THEN
// branch which runs to completion skips over the ELSE branch
//

func (p *parser) parseIf(start int) error {

	p.next()

	cond, err := p.parseExpr()
	if err != nil {
		return err
	}

	if !p.accept(token.THEN) && !p.at(token.GOTO) {
		return p.errorf("%s: expected THEN, found %s", basicerr.ESYNTAX, p.cur())
	}

	s := &ast.IfThen{Pos: p.mainPos(start), Cond: cond, ThenLine: -1, ElseLine: -1, ElseIndex: -1, Next: -1}
	p.prog.Main = append(p.prog.Main, s)
	p.lineIfs = append(p.lineIfs, s)

	// IF c GOTO n is accepted as a spelling of IF c THEN n
	p.accept(token.GOTO)

	if p.at(token.INTEGER) {
		if s.ThenLine, err = p.lineTarget(); err != nil {
			return err
		}

		p.reference(s.ThenLine, s.Pos)
	} else if err := p.parseStatements(); err != nil {
		return err
	}

	if !p.at(token.ELSE) {
		return nil
	}

	elseStart := p.pos
	p.next()

	marker := &ast.Else{Pos: p.mainPos(elseStart), Next: -1}
	p.prog.Main = append(p.prog.Main, marker)
	p.lineElses = append(p.lineElses, marker)

	if p.at(token.INTEGER) {
		if s.ElseLine, err = p.lineTarget(); err != nil {
			return err
		}

		p.reference(s.ElseLine, marker.Pos)

		return nil
	}

	s.ElseIndex = len(p.prog.Main)

	return p.parseStatements()
}

func (p *parser) parseGoto(start int) error {

	if p.next().Kind == token.GO {
		if _, err := p.expect(token.TO); err != nil {
			return err
		}
	}

	target, err := p.lineTarget()
	if err != nil {
		return err
	}

	s := &ast.Goto{Pos: p.mainPos(start), Target: target}
	p.reference(target, s.Pos)
	p.prog.Main = append(p.prog.Main, s)

	return nil
}

// lineTarget reads a jump target: a line number, or one in quotes.
func (p *parser) lineTarget() (int, error) {

	tok := p.cur()

	if tok.Kind != token.INTEGER && tok.Kind != token.STRING {
		return 0, p.errorf("%s: expected line number, found %s", basicerr.ESYNTAX, tok)
	}

	n, err := strconv.Atoi(strings.TrimSpace(tok.Text))
	if err != nil || n < 0 {
		return 0, p.errorf("%s: %q is not a line number", basicerr.ESYNTAX, tok.Text)
	}

	p.next()

	return n, nil
}

func (p *parser) parseOn(start int) error {

	p.next()

	sel, err := p.parseExpr()
	if err != nil {
		return err
	}

	s := &ast.OnJump{Pos: p.mainPos(start), Selector: sel}

	switch {
	default:
		return p.errorf("%s: expected GOTO or GOSUB, found %s", basicerr.ESYNTAX, p.cur())

	case p.accept(token.GOTO):
		// NOP

	case p.accept(token.GOSUB):
		s.Gosub = true
	}

	for {
		target, err := p.lineTarget()
		if err != nil {
			return err
		}

		s.Targets = append(s.Targets, target)
		p.reference(target, s.Pos)

		if !p.accept(token.COMMA) {
			break
		}
	}

	p.prog.Main = append(p.prog.Main, s)

	return nil
}

func (p *parser) parseFor(start int) error {

	p.next()

	v, err := p.expect(token.IDENT)
	if err != nil {
		return err
	}

	if _, err := p.expect(token.EQ); err != nil {
		return err
	}

	s := &ast.For{Var: v.Text, Exit: -1}

	if s.Start, err = p.parseExpr(); err != nil {
		return err
	}

	if _, err := p.expect(token.TO); err != nil {
		return err
	}

	if s.Limit, err = p.parseExpr(); err != nil {
		return err
	}

	if p.accept(token.STEP) {
		if s.Step, err = p.parseExpr(); err != nil {
			return err
		}
	}

	s.Pos = p.mainPos(start)
	p.fors = append(p.fors, s)
	p.prog.Main = append(p.prog.Main, s)

	return nil
}

//
// NEXT closes the innermost open FOR, or with names, the FOR of each
// name in turn.  FORs skipped over on the way are closed by the same
// NEXT, as they will be at run time
//

func (p *parser) parseNext(start int) error {

	p.next()

	s := &ast.Next{}

	if !p.atStatementEnd() {
		for {
			v, err := p.expect(token.IDENT)
			if err != nil {
				return err
			}

			s.Vars = append(s.Vars, v.Text)

			if !p.accept(token.COMMA) {
				break
			}
		}
	}

	s.Pos = p.mainPos(start)
	p.prog.Main = append(p.prog.Main, s)

	exit := s.Index + 1

	if len(s.Vars) == 0 {
		if n := len(p.fors); n > 0 {
			p.fors[n-1].Exit = exit
			p.fors = p.fors[:n-1]
		}

		return nil
	}

	for _, name := range s.Vars {
		for n := len(p.fors); n > 0; n-- {
			f := p.fors[n-1]
			f.Exit = exit
			p.fors = p.fors[:n-1]

			if f.Var == name {
				break
			}
		}
	}

	return nil
}

func (p *parser) parseData(start int) error {

	p.next()

	s := &ast.Data{Pos: p.preRunPos(start)}

	for {
		v, err := p.parseConstant()
		if err != nil {
			return err
		}

		s.Values = append(s.Values, v)

		if !p.accept(token.COMMA) {
			break
		}
	}

	p.prog.PreRun = append(p.prog.PreRun, s)

	return nil
}

// parseConstant reads one DATA item; bare words are taken as strings.
func (p *parser) parseConstant() (value.Value, error) {

	negative := false
	if p.accept(token.MINUS) {
		negative = true
	} else {
		p.accept(token.PLUS)
	}

	tok := p.next()

	var v value.Value

	switch tok.Kind {
	default:
		return nil, p.errorf("%s: %s is not a DATA constant", basicerr.ESYNTAX, tok)

	case token.INTEGER, token.REAL:
		lit, err := p.number(tok)
		if err != nil {
			return nil, err
		}

		v = lit.Value
		if negative {
			return value.Negate(v)
		}

		return v, nil

	case token.STRING, token.IDENT:
		v = value.String(tok.Text)

	case token.TRUE:
		v = value.Boolean(true)

	case token.FALSE:
		v = value.Boolean(false)
	}

	if negative {
		return nil, p.errorf("%s: cannot negate %s", basicerr.ESYNTAX, tok)
	}

	return v, nil
}

func (p *parser) parseInput(start int) error {

	p.next()

	s := &ast.Input{}

	if p.at(token.STRING) {
		s.Prompt = p.next().Text
		if !p.accept(token.SEMI) && !p.accept(token.COMMA) {
			return p.errorf("%s: expected ; after INPUT prompt", basicerr.ESYNTAX)
		}
	}

	targets, err := p.parseVariableList()
	if err != nil {
		return err
	}

	s.Targets = targets
	s.Pos = p.mainPos(start)
	p.prog.Main = append(p.prog.Main, s)

	return nil
}

func (p *parser) parseDef(start int) error {

	p.next()

	name, err := p.expect(token.IDENT)
	if err != nil {
		return err
	}

	if !strings.HasPrefix(name.Text, "FN") || len(name.Text) < 3 {
		return p.errorf("%s: function name %s must start with FN", basicerr.ESYNTAX, name.Text)
	}

	s := &ast.Def{Name: name.Text}

	if p.accept(token.LPAREN) {
		for !p.at(token.RPAREN) {
			param, err := p.expect(token.IDENT)
			if err != nil {
				return err
			}

			s.Params = append(s.Params, param.Text)

			if !p.accept(token.COMMA) {
				break
			}
		}

		if _, err := p.expect(token.RPAREN); err != nil {
			return err
		}
	}

	if _, err := p.expect(token.EQ); err != nil {
		return err
	}

	if s.Body, err = p.parseExpr(); err != nil {
		return err
	}

	s.Pos = p.preRunPos(start)
	p.prog.PreRun = append(p.prog.PreRun, s)

	return nil
}

func (p *parser) parseOption(start int) error {

	p.next()

	if _, err := p.expect(token.BASE); err != nil {
		return err
	}

	tok, err := p.expect(token.INTEGER)
	if err != nil {
		return err
	}

	n, _ := strconv.Atoi(tok.Text)
	if n != 0 && n != 1 {
		return p.errorf("%s BASE %d", basicerr.EUNSUPPORTEDPRAGM, n)
	}

	p.prog.PreRun = append(p.prog.PreRun, &ast.Option{Pos: p.preRunPos(start), Name: "BASE", Value: n})

	return nil
}

func (p *parser) parseVariableList() ([]*ast.Variable, error) {

	var out []*ast.Variable

	for {
		v, err := p.parseVariable()
		if err != nil {
			return nil, err
		}

		out = append(out, v)

		if !p.accept(token.COMMA) {
			return out, nil
		}
	}
}

func (p *parser) parseVariable() (*ast.Variable, error) {

	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}

	v := &ast.Variable{Name: name.Text}

	if p.accept(token.LPAREN) {
		if v.Subscripts, err = p.parseArgs(); err != nil {
			return nil, err
		}
	}

	return v, nil
}
