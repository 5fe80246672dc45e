// Package runtime holds the run-scoped state of one program execution:
// the program pointer, the frame stack, the DATA queue, variables and
// user functions.  Nothing here is shared between two Contexts.
package runtime

import (
	"io"
	"sort"

	"linebasic/internal/ast"
	"linebasic/internal/basicerr"
	"linebasic/internal/value"
	"linebasic/internal/xref"
)

type Phase int

const (
	Loading Phase = iota
	Running
	Halted
)

func (p Phase) String() string {

	switch p {
	default:
		return "Halted"

	case Loading:
		return "Loading"

	case Running:
		return "Running"
	}
}

// Pointer is the index of the next statement in the list of the phase.
type Pointer struct {
	Index int
	Phase Phase
}

func (p *Pointer) Reset() {

	p.Index = 0
	p.Phase = Loading
}

func (p *Pointer) Jump(index int) {

	p.Index = index
}

func (p *Pointer) Halt() {

	p.Phase = Halted
}

type FrameKind int

const (
	GosubFrame FrameKind = iota
	ForFrame
	WhileFrame
	RepeatFrame
)

func (k FrameKind) String() string {

	switch k {
	default:
		return "GOSUB"

	case ForFrame:
		return "FOR"

	case WhileFrame:
		return "WHILE"

	case RepeatFrame:
		return "REPEAT"
	}
}

//
// Frame is one entry of the engine stack.  Resume is the return index
// for GOSUB, the first body statement for FOR, and the index of the
// WHILE or REPEAT statement itself for the other two
//

type Frame struct {
	Kind   FrameKind
	Resume int
	Var    string
	Limit  value.Value
	Step   value.Value
}

// LineReader supplies INPUT lines.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

type DataItem struct {
	Line  int
	Value value.Value
}

type Options struct {
	Out      io.Writer
	In       LineReader
	StackMax int // 0 is unlimited
}

type Context struct {
	XRef      *xref.Table
	Vars      *Variables
	Stack     *Stack[Frame]
	Data      *Queue[value.Value]
	Pointer   Pointer
	Functions map[string]*ast.Def
	Out       io.Writer
	In        LineReader

	dataItems []DataItem
}

func New(opts Options) *Context {

	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	ctx := &Context{
		XRef:      xref.New(),
		Vars:      NewVariables(),
		Stack:     NewStack[Frame](opts.StackMax),
		Data:      NewQueue[value.Value](),
		Functions: make(map[string]*ast.Def),
		Out:       out,
		In:        opts.In,
	}

	ctx.Pointer.Reset()

	return ctx
}

//
// Reset returns the context to its freshly created state.  The XRef
// table is cleared too, so the context can take another program
//

func (c *Context) Reset() {

	c.XRef.Reset()
	c.ResetRun()
}

// ResetRun clears everything execution changes but keeps the XRef table.
func (c *Context) ResetRun() {

	c.Vars.Reset()
	c.Stack.Reset()
	c.Data.Reset()
	c.Pointer.Reset()
	c.Functions = make(map[string]*ast.Def)
	c.dataItems = nil
}

// AddData appends the items of one DATA statement to the queue.
func (c *Context) AddData(line int, values []value.Value) {

	for _, v := range values {
		c.dataItems = append(c.dataItems, DataItem{Line: line, Value: v})
	}

	c.Data.Push(values...)
}

// ReadData pops the next DATA item.
func (c *Context) ReadData() (value.Value, error) {

	v, ok := c.Data.Pop()
	if !ok {
		return nil, basicerr.New(basicerr.OutOfData, basicerr.EOUTOFDATA)
	}

	return v, nil
}

// Restore refills the queue with the DATA items at or after line.
func (c *Context) Restore(line int) {

	c.Data.Reset()

	start := sort.Search(len(c.dataItems), func(i int) bool {
		return c.dataItems[i].Line >= line
	})

	for _, item := range c.dataItems[start:] {
		c.Data.Push(item.Value)
	}
}

func (c *Context) Define(def *ast.Def) error {

	if _, ok := c.Functions[def.Name]; ok {
		return basicerr.Runtimef("%s: %s", basicerr.EDUPLICATEDEF, def.Name)
	}

	c.Functions[def.Name] = def

	return nil
}

func (c *Context) Function(name string) (*ast.Def, error) {

	def, ok := c.Functions[name]
	if !ok {
		return nil, basicerr.Newf(basicerr.UndefinedFunction, "%s %s",
			basicerr.EUNDEFINEDFUNC, name)
	}

	return def, nil
}
