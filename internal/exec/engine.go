// Package exec walks a parsed program: it loads the pre-run statements,
// then fetches and executes main statements until the program halts.
package exec

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/goforj/godump"

	"linebasic/internal/ast"
	"linebasic/internal/basicerr"
	"linebasic/internal/runtime"
	"linebasic/internal/value"
)

const (
	DefaultZoneWidth      = 14
	DefaultFnRecursionMax = 1000
)

type Options struct {
	TraceExec bool      // print [line] before each statement
	TraceVars bool      // print every variable store
	TraceDump bool      // godump the program before running it
	Trace     io.Writer // defaults to os.Stderr

	ZoneWidth      int // PRINT zone width
	Zones          int // zones per output line, 0 for no wrapping
	FnRecursionMax int
	Seed           int64 // RND seed, 0 seeds from the clock
}

type Engine struct {
	ctx  *runtime.Context
	opts Options
	prog *ast.Program

	params   []map[string]value.Value // active DEF FN parameter bindings
	column   int                      // output column for PRINT zones
	rng      *rand.Rand
	executed int
}

func New(ctx *runtime.Context, opts Options) *Engine {

	if opts.Trace == nil {
		opts.Trace = os.Stderr
	}

	if opts.ZoneWidth <= 0 {
		opts.ZoneWidth = DefaultZoneWidth
	}

	if opts.FnRecursionMax <= 0 {
		opts.FnRecursionMax = DefaultFnRecursionMax
	}

	e := &Engine{ctx: ctx, opts: opts}
	e.seed(opts.Seed)

	if opts.TraceVars {
		ctx.Vars.SetTrace(e.traceVar)
	}

	return e
}

// Executed is the number of main statements run so far.
func (e *Engine) Executed() int {

	return e.executed
}

func (e *Engine) seed(seed int64) {

	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e.rng = rand.New(rand.NewSource(seed))
}

func position(s ast.Statement) basicerr.Position {

	p := s.Position()

	return basicerr.Position{Line: p.Line, Source: p.Source, Token: p.Token, Statement: p.Index}
}

//
// Run executes prog from scratch.  The pointer starts in the Loading
// phase over the pre-run list, moves to Running over the main list, and
// ends Halted.  The pointer is always advanced before a statement runs,
// so a statement that jumps simply overwrites it
//

func (e *Engine) Run(prog *ast.Program) error {

	e.prog = prog
	e.ctx.ResetRun()
	e.params = nil

	ptr := &e.ctx.Pointer

	if e.opts.TraceDump {
		godump.Fdump(e.opts.Trace, prog)
	}

	for ptr.Phase == runtime.Loading {
		if ptr.Index >= len(prog.PreRun) {
			ptr.Phase = runtime.Running
			ptr.Index = 0
			break
		}

		stmt := prog.PreRun[ptr.Index]
		ptr.Index++

		if err := e.load(stmt); err != nil {
			ptr.Halt()
			return basicerr.At(err, position(stmt))
		}
	}

	for ptr.Phase == runtime.Running {
		if ptr.Index < 0 || ptr.Index >= len(prog.Main) {
			ptr.Halt()
			break
		}

		stmt := prog.Main[ptr.Index]
		ptr.Index++
		e.executed++

		if e.opts.TraceExec {
			fmt.Fprintf(e.opts.Trace, "[%d] %s\n", stmt.Position().Line, stmt)
		}

		if err := e.execute(stmt); err != nil {
			ptr.Halt()
			e.endLine()
			return basicerr.At(err, position(stmt))
		}
	}

	e.endLine()

	return nil
}

func (e *Engine) load(stmt ast.Statement) error {

	switch s := stmt.(type) {
	default:
		return basicerr.Runtimef("%T cannot run before the program", stmt)

	case *ast.Data:
		e.ctx.AddData(s.Line, s.Values)

	case *ast.Def:
		return e.ctx.Define(s)

	case *ast.Option:
		return e.ctx.Vars.SetBase(s.Value)
	}

	return nil
}

func (e *Engine) jumpLine(lineNo int) error {

	idx, err := e.ctx.XRef.Resolve(lineNo)
	if err != nil {
		return err
	}

	e.ctx.Pointer.Jump(idx)

	return nil
}

func (e *Engine) execute(stmt ast.Statement) error {

	ptr := &e.ctx.Pointer

	switch s := stmt.(type) {
	default:
		return basicerr.Runtimef("unexpected statement %T", stmt)

	case *ast.Rem, *ast.Data, *ast.Def, *ast.Option:
		// nothing to do

	case *ast.Assign:
		v, err := e.eval(s.Value)
		if err != nil {
			return err
		}

		return e.store(s.Target, v)

	case *ast.Print:
		return e.executePrint(s)

	case *ast.IfThen:
		return e.executeIf(s)

	case *ast.Else:
		ptr.Jump(s.Next)

	case *ast.Goto:
		return e.jumpLine(s.Target)

	case *ast.Gosub:
		if err := e.ctx.Stack.Push(runtime.Frame{Kind: runtime.GosubFrame, Resume: ptr.Index}); err != nil {
			return err
		}

		return e.jumpLine(s.Target)

	case *ast.Return:
		return e.executeReturn()

	case *ast.OnJump:
		return e.executeOn(s)

	case *ast.For:
		return e.executeFor(s)

	case *ast.Next:
		return e.executeNext(s)

	case *ast.While:
		return e.executeWhile(s)

	case *ast.EndWhile:
		frame, err := e.ctx.Stack.Pop()
		if err != nil {
			return err
		}

		if frame.Kind != runtime.WhileFrame {
			return basicerr.Runtimef("%s", basicerr.EENDWHILENOWHILE)
		}

		ptr.Jump(frame.Resume)

	case *ast.Repeat:
		return e.ctx.Stack.Push(runtime.Frame{Kind: runtime.RepeatFrame, Resume: s.Index})

	case *ast.Until:
		return e.executeUntil(s)

	case *ast.Read:
		for _, target := range s.Targets {
			v, err := e.ctx.ReadData()
			if err != nil {
				return err
			}

			if err := e.store(target, v); err != nil {
				return err
			}
		}

	case *ast.Restore:
		e.ctx.Restore(s.Target)

	case *ast.Dim:
		return e.executeDim(s)

	case *ast.Input:
		return e.executeInput(s)

	case *ast.End:
		ptr.Halt()

	case *ast.Stop:
		e.endLine()
		fmt.Fprintf(e.ctx.Out, "Stop at line %d\n", s.Line)
		ptr.Halt()

	case *ast.Randomize:
		if s.Seed == nil {
			e.seed(0)
			return nil
		}

		v, err := e.eval(s.Seed)
		if err != nil {
			return err
		}

		n, err := value.ToInt(v)
		if err != nil {
			return err
		}

		e.seed(int64(n))
	}

	return nil
}

func (e *Engine) executeIf(s *ast.IfThen) error {

	v, err := e.eval(s.Cond)
	if err != nil {
		return err
	}

	ok, err := value.Truth(v)
	if err != nil {
		return err
	}

	switch {
	case ok && s.ThenLine >= 0:
		return e.jumpLine(s.ThenLine)

	case ok:
		// fall into the THEN statements

	case s.ElseLine >= 0:
		return e.jumpLine(s.ElseLine)

	case s.ElseIndex >= 0:
		e.ctx.Pointer.Jump(s.ElseIndex)

	default:
		e.ctx.Pointer.Jump(s.Next)
	}

	return nil
}

//
// RETURN discards whatever loops were left open inside the subroutine
// and resumes after the GOSUB that pushed the nearest return frame
//

func (e *Engine) executeReturn() error {

	for {
		frame, err := e.ctx.Stack.Pop()
		if err != nil {
			return basicerr.New(basicerr.EmptyStack, basicerr.ERETURNNOGOSUB)
		}

		if frame.Kind == runtime.GosubFrame {
			e.ctx.Pointer.Jump(frame.Resume)
			return nil
		}
	}
}

// ON n GOTO/GOSUB picks the n-th target; out of range falls through.
func (e *Engine) executeOn(s *ast.OnJump) error {

	v, err := e.eval(s.Selector)
	if err != nil {
		return err
	}

	n, err := value.ToInt(v)
	if err != nil {
		return err
	}

	if n < 0 {
		return basicerr.Runtimef("%s: %d", basicerr.EONERROR, n)
	}

	if n == 0 || n > len(s.Targets) {
		return nil
	}

	if s.Gosub {
		frame := runtime.Frame{Kind: runtime.GosubFrame, Resume: e.ctx.Pointer.Index}
		if err := e.ctx.Stack.Push(frame); err != nil {
			return err
		}
	}

	return e.jumpLine(s.Targets[n-1])
}

//
// FOR assigns the start value and decides right away whether the body
// runs at all.  A loop that runs zero times continues after its NEXT
//

func (e *Engine) executeFor(s *ast.For) error {

	kind := value.KindOfName(s.Var)
	if !kind.IsNumeric() {
		return basicerr.Mismatch("FOR variable %s is not numeric", s.Var)
	}

	start, err := e.evalAs(s.Start, kind)
	if err != nil {
		return err
	}

	limit, err := e.evalAs(s.Limit, kind)
	if err != nil {
		return err
	}

	step := value.Value(value.Integer(1))
	if s.Step != nil {
		step, err = e.eval(s.Step)
		if err != nil {
			return err
		}
	}

	if step, err = value.Coerce(step, kind); err != nil {
		return err
	}

	if ok, _ := value.Truth(step); !ok {
		return basicerr.Runtimef("%s", basicerr.EZEROSTEP)
	}

	if err := e.ctx.Vars.Set(s.Var, start); err != nil {
		return err
	}

	//
	// Coming back to a FOR whose frame is still on top (a GOTO to the
	// FOR line from inside the body) restarts that loop
	//

	if top, err := e.ctx.Stack.Peek(); err == nil && top.Kind == runtime.ForFrame && top.Var == s.Var {
		_, _ = e.ctx.Stack.Pop()
	}

	more, err := continues(start, limit, step)
	if err != nil {
		return err
	}

	if !more {
		if s.Exit < 0 {
			return basicerr.Runtimef("%s", basicerr.EFORNONEXT)
		}

		e.ctx.Pointer.Jump(s.Exit)
		return nil
	}

	return e.ctx.Stack.Push(runtime.Frame{
		Kind:   runtime.ForFrame,
		Resume: e.ctx.Pointer.Index,
		Var:    s.Var,
		Limit:  limit,
		Step:   step,
	})
}

func continues(current, limit, step value.Value) (bool, error) {

	up, err := step.LargerThan(value.Zero(step.Kind()))
	if err != nil {
		return false, err
	}

	var cmp value.Value

	if up.(value.Boolean) {
		cmp, err = current.SmallerEqualThan(limit)
	} else {
		cmp, err = current.LargerEqualThan(limit)
	}

	if err != nil {
		return false, err
	}

	return bool(cmp.(value.Boolean)), nil
}

//
// NEXT pops frames down to the FOR it closes, dropping loops abandoned
// inside the body.  'NEXT J, I' is NEXT J followed by NEXT I
//

func (e *Engine) executeNext(s *ast.Next) error {

	names := s.Vars
	if len(names) == 0 {
		names = []string{""}
	}

	for _, name := range names {
		frame, err := e.popFor(name)
		if err != nil {
			return err
		}

		cur := e.ctx.Vars.Get(frame.Var)

		next, err := cur.Plus(frame.Step)
		if err != nil {
			return err
		}

		if err := e.ctx.Vars.Set(frame.Var, next); err != nil {
			return err
		}

		more, err := continues(e.ctx.Vars.Get(frame.Var), frame.Limit, frame.Step)
		if err != nil {
			return err
		}

		if more {
			if err := e.ctx.Stack.Push(frame); err != nil {
				return err
			}

			e.ctx.Pointer.Jump(frame.Resume)
			return nil
		}
	}

	return nil
}

func (e *Engine) popFor(name string) (runtime.Frame, error) {

	for {
		frame, err := e.ctx.Stack.Pop()
		if err != nil {
			return frame, basicerr.New(basicerr.EmptyStack, basicerr.ENEXTNOFOR)
		}

		switch frame.Kind {
		case runtime.GosubFrame:
			_ = e.ctx.Stack.Push(frame)
			return frame, basicerr.Runtimef("%s", basicerr.ENEXTNOFOR)

		case runtime.ForFrame:
			if name == "" || frame.Var == name {
				return frame, nil
			}
		}
	}
}

func (e *Engine) executeWhile(s *ast.While) error {

	v, err := e.eval(s.Cond)
	if err != nil {
		return err
	}

	ok, err := value.Truth(v)
	if err != nil {
		return err
	}

	// a GOTO back to the WHILE from inside its body reuses the frame
	if top, err := e.ctx.Stack.Peek(); err == nil && top.Kind == runtime.WhileFrame && top.Resume == s.Index {
		_, _ = e.ctx.Stack.Pop()
	}

	if ok {
		return e.ctx.Stack.Push(runtime.Frame{Kind: runtime.WhileFrame, Resume: s.Index})
	}

	if s.Exit < 0 {
		return basicerr.Runtimef("%s", basicerr.EWHILENOENDWHILE)
	}

	e.ctx.Pointer.Jump(s.Exit)

	return nil
}

func (e *Engine) executeUntil(s *ast.Until) error {

	frame, err := e.ctx.Stack.Pop()
	if err != nil {
		return basicerr.New(basicerr.EmptyStack, basicerr.EUNTILNOREPEAT)
	}

	if frame.Kind != runtime.RepeatFrame {
		return basicerr.Runtimef("%s", basicerr.EUNTILNOREPEAT)
	}

	v, err := e.eval(s.Cond)
	if err != nil {
		return err
	}

	done, err := value.Truth(v)
	if err != nil {
		return err
	}

	if !done {
		e.ctx.Pointer.Jump(frame.Resume)
	}

	return nil
}

func (e *Engine) executeDim(s *ast.Dim) error {

	for _, a := range s.Arrays {
		bounds, err := e.subscripts(a.Subscripts)
		if err != nil {
			return err
		}

		if err := e.ctx.Vars.Dim(a.Name, bounds); err != nil {
			return err
		}
	}

	return nil
}

func (e *Engine) traceVar(name string, subs []int, old, cur value.Value) {

	fmt.Fprintf(e.opts.Trace, "Variable %s", name)

	for i, s := range subs {
		if i == 0 {
			fmt.Fprintf(e.opts.Trace, "(%d", s)
		} else {
			fmt.Fprintf(e.opts.Trace, ",%d", s)
		}
	}

	if len(subs) > 0 {
		fmt.Fprint(e.opts.Trace, ")")
	}

	if cur.Kind() == value.StringKind {
		fmt.Fprintf(e.opts.Trace, " changed from %q to %q\n", old.String(), cur.String())
	} else {
		fmt.Fprintf(e.opts.Trace, " changed from %s to %s\n", old, cur)
	}
}
