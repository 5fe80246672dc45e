// Package xref links BASIC line numbers, token positions and statement
// indices.  The parser fills the table; the engine only reads it.
package xref

import (
	"github.com/danswartzendruber/avl"

	"linebasic/internal/basicerr"
)

type lineNode struct {
	avl    avl.AvlNode
	lineNo int
	token  int
}

func cmpLineKey(key any, node any) int {

	return cmpInts(key.(int), node.(*lineNode).lineNo)
}

func cmpLineNode(node1, node2 any) int {

	return cmpInts(node1.(*lineNode).lineNo, node2.(*lineNode).lineNo)
}

func cmpInts(item1, item2 int) int {

	if item1 < item2 {
		return -1
	} else if item1 > item2 {
		return 1
	} else {
		return 0
	}
}

// Reference is a jump target seen by the parser, checked once parsing ends.
type Reference struct {
	Target    int
	Line      int
	Source    int
	Token     int
	Statement int
}

type Table struct {
	lines     *avl.AvlNode
	count     int
	tokenStmt map[int]int
	tokenLine map[int]int
	stmtToken map[int]int
	refs      []Reference
}

func New() *Table {

	t := &Table{}
	t.Reset()

	return t
}

func (t *Table) Reset() {

	t.lines = nil
	t.count = 0
	t.tokenStmt = make(map[int]int)
	t.tokenLine = make(map[int]int)
	t.stmtToken = make(map[int]int)
	t.refs = nil
}

// AddLine records the token position of the line number token of lineNo.
func (t *Table) AddLine(lineNo, tokenPos int) error {

	node := &lineNode{lineNo: lineNo, token: tokenPos}

	if p := avl.AvlTreeInsert(&t.lines, &node.avl, node, cmpLineNode); p != nil {
		return basicerr.Newf(basicerr.Syntax, "%s: %d", basicerr.EDUPLICATELINENO, lineNo)
	}

	t.count++
	t.tokenLine[tokenPos] = lineNo

	return nil
}

//
// AddStatement maps a token position to a statement index.  Several
// token positions may share an index: the line number token and the
// first statement on that line, or a DATA line and the statement that
// follows it
//

func (t *Table) AddStatement(tokenPos, stmtIdx int) {

	t.tokenStmt[tokenPos] = stmtIdx
	t.stmtToken[stmtIdx] = tokenPos
}

// AddReference queues a jump target for Check.
func (t *Table) AddReference(ref Reference) {

	t.refs = append(t.refs, ref)
}

func (t *Table) lookup(lineNo int) *lineNode {

	p := avl.AvlTreeLookup(t.lines, lineNo, cmpLineKey)
	if p != nil {
		return p.(*lineNode)
	} else {
		return nil
	}
}

// Resolve returns the statement index that execution of lineNo starts at.
func (t *Table) Resolve(lineNo int) (int, error) {

	node := t.lookup(lineNo)
	if node == nil {
		return 0, basicerr.Runtimef("%s %d", basicerr.EUNDEFINEDLINE, lineNo)
	}

	idx, ok := t.tokenStmt[node.token]
	if !ok {
		return 0, basicerr.Runtimef("%s %d", basicerr.EUNDEFINEDLINE, lineNo)
	}

	return idx, nil
}

func (t *Table) HasLine(lineNo int) bool {

	return t.lookup(lineNo) != nil
}

func (t *Table) TokenOfLine(lineNo int) (int, bool) {

	if node := t.lookup(lineNo); node != nil {
		return node.token, true
	}

	return 0, false
}

func (t *Table) LineOfToken(tokenPos int) (int, bool) {

	n, ok := t.tokenLine[tokenPos]

	return n, ok
}

func (t *Table) StatementOfToken(tokenPos int) (int, bool) {

	n, ok := t.tokenStmt[tokenPos]

	return n, ok
}

func (t *Table) TokenOfStatement(stmtIdx int) (int, bool) {

	n, ok := t.stmtToken[stmtIdx]

	return n, ok
}

// Len is the number of distinct line numbers.
func (t *Table) Len() int {

	return t.count
}

// Lines walks the line numbers in ascending order until fn returns false.
func (t *Table) Lines(fn func(lineNo, tokenPos int) bool) {

	p := avl.AvlTreeFirstInOrder(t.lines)

	for p != nil {
		node := p.(*lineNode)
		if !fn(node.lineNo, node.token) {
			return
		}

		p = avl.AvlTreeNextInOrder(&node.avl)
	}
}

//
// Check verifies that every queued reference names an existing line.
// The first dangling one is reported with the location of the statement
// that made it
//

func (t *Table) Check() error {

	for _, ref := range t.refs {
		if t.HasLine(ref.Target) {
			continue
		}

		e := basicerr.Runtimef("%s %d", basicerr.EUNDEFINEDLINE, ref.Target)
		e.Line = ref.Line
		e.Source = ref.Source
		e.Token = ref.Token
		e.Statement = ref.Statement

		return e
	}

	return nil
}
