package exec

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linebasic/internal/basicerr"
	"linebasic/internal/lexer"
	"linebasic/internal/parser"
	"linebasic/internal/runtime"
)

type scriptedInput struct {
	lines   []string
	prompts []string
}

func (s *scriptedInput) ReadLine(prompt string) (string, error) {

	s.prompts = append(s.prompts, prompt)

	if len(s.lines) == 0 {
		return "", io.EOF
	}

	line := s.lines[0]
	s.lines = s.lines[1:]

	return line, nil
}

type harness struct {
	out    bytes.Buffer
	trace  bytes.Buffer
	in     *scriptedInput
	engine *Engine
}

func newHarness(opts Options, stackMax int, lines ...string) *harness {

	h := &harness{in: &scriptedInput{lines: lines}}

	ctx := runtime.New(runtime.Options{Out: &h.out, In: h.in, StackMax: stackMax})

	opts.Trace = &h.trace
	if opts.Seed == 0 {
		opts.Seed = 1
	}

	h.engine = New(ctx, opts)

	return h
}

func (h *harness) run(t *testing.T, src string) error {

	t.Helper()

	tokens, err := lexer.Tokenize(src, lexer.Options{})
	require.NoError(t, err)

	prog, err := parser.Parse(tokens, h.engine.ctx.XRef, parser.Options{})
	require.NoError(t, err)

	return h.engine.Run(prog)
}

func run(t *testing.T, src string, lines ...string) (string, error) {

	t.Helper()

	h := newHarness(Options{}, 0, lines...)
	err := h.run(t, src)

	return h.out.String(), err
}

func output(t *testing.T, src string, lines ...string) string {

	t.Helper()

	out, err := run(t, src, lines...)
	require.NoError(t, err)

	return out
}

func errorAt(t *testing.T, err error, kind basicerr.Kind, line int) *basicerr.Error {

	t.Helper()

	var be *basicerr.Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, kind, be.Kind, be.Error())
	assert.Equal(t, line, be.Line)

	return be
}

func TestLeftToRightEvaluation(t *testing.T) {

	assert.Equal(t, "1\n", output(t, "10 PRINT 1 + 2 * 3 - 4 / 5\n"))
	assert.Equal(t, "1\n", output(t, "10 X% = 1 + 2 * 3 - 4 / 5\n20 PRINT X%\n"))
}

func TestForRealCounter(t *testing.T) {

	src := "10 FOR X# = 0 TO 2 STEP 1\n" +
		"20 PRINT X#\n" +
		"30 NEXT X#\n"

	assert.Equal(t, "0.0\n1.0\n2.0\n", output(t, src))
}

func TestForZeroTrip(t *testing.T) {

	src := "10 FOR I% = 5 TO 1\n" +
		"20 PRINT I%\n" +
		"30 NEXT\n" +
		"40 PRINT \"x\"\n"

	assert.Equal(t, "x\n", output(t, src))
}

func TestForNegativeStep(t *testing.T) {

	src := "10 FOR I% = 3 TO 1 STEP -1 : PRINT I%; : NEXT I%\n"

	assert.Equal(t, "321\n", output(t, src))
}

func TestZeroStep(t *testing.T) {

	_, err := run(t, "10 FOR I = 1 TO 2 STEP 0\n20 NEXT\n")
	be := errorAt(t, err, basicerr.Runtime, 10)
	assert.Contains(t, be.Msg, basicerr.EZEROSTEP)
}

func TestNestedFor(t *testing.T) {

	src := "10 FOR I% = 1 TO 2\n" +
		"20 FOR J% = 1 TO 3\n" +
		"30 S% = S% + (I% * J%)\n" +
		"40 NEXT J%\n" +
		"50 NEXT I%\n" +
		"60 PRINT S%\n" +
		"70 PRINT I%\n" +
		"80 PRINT J%\n"

	assert.Equal(t, "18\n3\n4\n", output(t, src))

	src = "10 FOR I% = 1 TO 2 : FOR J% = 1 TO 2\n" +
		"20 N% = N% + 1\n" +
		"30 NEXT J%, I%\n" +
		"40 PRINT N%\n"

	assert.Equal(t, "4\n", output(t, src))
}

func TestNextWithoutFor(t *testing.T) {

	_, err := run(t, "10 NEXT\n")
	errorAt(t, err, basicerr.EmptyStack, 10)

	_, err = run(t, "10 GOSUB 100\n20 END\n100 NEXT I\n")
	be := errorAt(t, err, basicerr.Runtime, 100)
	assert.Contains(t, be.Msg, basicerr.ENEXTNOFOR)
}

func TestNestedGosub(t *testing.T) {

	src := "10 GOSUB 100\n" +
		"20 PRINT \"done\"\n" +
		"30 END\n" +
		"100 GOSUB 200\n" +
		"110 PRINT \"b\"\n" +
		"120 RETURN\n" +
		"200 PRINT \"a\"\n" +
		"210 RETURN\n"

	assert.Equal(t, "a\nb\ndone\n", output(t, src))
}

func TestReturnWithoutGosub(t *testing.T) {

	_, err := run(t, "10 GOSUB 100\n20 RETURN\n100 RETURN\n")
	be := errorAt(t, err, basicerr.EmptyStack, 20)
	assert.Contains(t, be.Msg, basicerr.ERETURNNOGOSUB)
}

func TestStackLimit(t *testing.T) {

	h := newHarness(Options{}, 5)
	err := h.run(t, "10 GOSUB 10\n")

	be := errorAt(t, err, basicerr.Runtime, 10)
	assert.Contains(t, be.Msg, basicerr.ESTACKOVERFLOW)
}

func TestDivideByZero(t *testing.T) {

	_, err := run(t, "10 X = 1\n20 PRINT X / 0\n")
	errorAt(t, err, basicerr.DivideByZero, 20)

	_, err = run(t, "10 PRINT 7 MOD 0\n")
	errorAt(t, err, basicerr.DivideByZero, 10)
}

func TestOnGoto(t *testing.T) {

	src := "10 ON N% GOTO 100, 200\n" +
		"20 PRINT \"none\" : END\n" +
		"100 PRINT \"one\" : END\n" +
		"200 PRINT \"two\" : END\n"

	assert.Equal(t, "two\n", output(t, "5 N% = 2\n"+src))
	assert.Equal(t, "none\n", output(t, "5 N% = 3\n"+src))
	assert.Equal(t, "none\n", output(t, "5 N% = 0\n"+src))

	_, err := run(t, "5 N% = -1\n"+src)
	errorAt(t, err, basicerr.Runtime, 10)
}

func TestOnGosub(t *testing.T) {

	src := "10 FOR I% = 1 TO 2\n" +
		"20 ON I% GOSUB 100, 200\n" +
		"30 NEXT I%\n" +
		"40 END\n" +
		"100 PRINT \"a\"; : RETURN\n" +
		"200 PRINT \"b\"; : RETURN\n"

	assert.Equal(t, "ab\n", output(t, src))
}

func TestReadRestore(t *testing.T) {

	src := "10 READ A%, B%\n" +
		"20 RESTORE 60\n" +
		"30 READ C%\n" +
		"40 RESTORE\n" +
		"45 READ D%\n" +
		"50 PRINT A%; B%; C%; D%\n" +
		"55 DATA 1, 2\n" +
		"60 DATA 3\n"

	assert.Equal(t, "1231\n", output(t, src))
}

func TestOutOfData(t *testing.T) {

	_, err := run(t, "10 READ A\n20 DATA 1\n30 READ B\n")
	errorAt(t, err, basicerr.OutOfData, 30)
}

func TestReadMismatch(t *testing.T) {

	_, err := run(t, "10 READ A%\n20 DATA \"x\"\n")
	errorAt(t, err, basicerr.TypeMismatch, 10)
}

func TestUserFunctions(t *testing.T) {

	src := "10 X = 5\n" +
		"20 DEF FNA(X) = X * 2\n" +
		"30 PRINT FNA(3)\n" +
		"40 PRINT X\n"

	assert.Equal(t, "6.0\n5.0\n", output(t, src))

	src = "10 DEF FNS$(A$, B$) = A$ + \"-\" + B$\n" +
		"20 DEF FNT%(N) = N * 3\n" +
		"30 PRINT FNS$(\"a\", \"b\"); FNT%(1.5)\n"

	assert.Equal(t, "a-b4\n", output(t, src))
}

func TestUndefinedFunction(t *testing.T) {

	_, err := run(t, "10 PRINT FNZ(1)\n")
	errorAt(t, err, basicerr.UndefinedFunction, 10)
}

func TestFunctionWithoutParameters(t *testing.T) {

	src := "10 DEF FNA = 5\n" +
		"20 PRINT FNA; FNA()\n" +
		"30 PRINT FNA + 1\n"

	assert.Equal(t, "55\n6\n", output(t, src))

	_, err := run(t, "10 PRINT FNB\n")
	errorAt(t, err, basicerr.UndefinedFunction, 10)
}

func TestFunctionArgumentCount(t *testing.T) {

	_, err := run(t, "10 DEF FNA(X, Y) = X + Y\n20 PRINT FNA(1)\n")
	be := errorAt(t, err, basicerr.Runtime, 20)
	assert.Contains(t, be.Msg, basicerr.EFUNCARGS)
}

func TestFunctionRecursionLimit(t *testing.T) {

	h := newHarness(Options{FnRecursionMax: 50}, 0)
	err := h.run(t, "10 DEF FNR(X) = FNR(X + 1)\n20 PRINT FNR(1)\n")

	be := errorAt(t, err, basicerr.Runtime, 20)
	assert.Contains(t, be.Msg, basicerr.EFNRECURSION)
	assert.Empty(t, h.engine.params)
}

func TestDuplicateDef(t *testing.T) {

	_, err := run(t, "10 DEF FNA(X) = X\n20 DEF FNA(Y) = Y\n")
	errorAt(t, err, basicerr.Runtime, 20)
}

func TestWhileAndRepeat(t *testing.T) {

	assert.Equal(t, "3\n", output(t, "10 WHILE I% < 3 : I% = I% + 1 : WEND\n20 PRINT I%\n"))
	assert.Equal(t, "6\n", output(t, "10 REPEAT : I% = I% + 2 : UNTIL I% >= 5\n20 PRINT I%\n"))

	_, err := run(t, "10 UNTIL TRUE\n")
	errorAt(t, err, basicerr.EmptyStack, 10)

	_, err = run(t, "10 WHILE FALSE\n20 PRINT 1\n")
	be := errorAt(t, err, basicerr.Runtime, 10)
	assert.Contains(t, be.Msg, basicerr.EWHILENOENDWHILE)
}

func TestWhileReenteredByGoto(t *testing.T) {

	src := "10 WHILE I% < 3\n" +
		"20 I% = I% + 1\n" +
		"30 IF I% < 3 THEN 10\n" +
		"40 WEND\n" +
		"50 PRINT I%\n"

	h := newHarness(Options{}, 0)
	require.NoError(t, h.run(t, src))
	assert.Equal(t, "3\n", h.out.String())
	assert.Equal(t, 0, h.engine.ctx.Stack.Len())
}

func TestIfJumpsToLineZero(t *testing.T) {

	src := "0 IF X% THEN PRINT \"zero\" : END\n" +
		"10 X% = 1\n" +
		"20 IF X% THEN 0\n" +
		"30 PRINT \"fell\"\n"

	assert.Equal(t, "zero\n", output(t, src))

	src = "0 IF X% THEN PRINT \"zero\" : END\n" +
		"10 X% = 1\n" +
		"20 IF FALSE THEN 30 ELSE 0\n" +
		"30 PRINT \"fell\"\n"

	assert.Equal(t, "zero\n", output(t, src))
}

func TestIfElse(t *testing.T) {

	src := "10 X% = 2\n" +
		"20 IF X% > 1 THEN PRINT \"big\" ELSE PRINT \"small\"\n" +
		"30 IF X% > 5 THEN PRINT \"huge\" ELSE PRINT \"no\"\n" +
		"40 IF X% THEN 60\n" +
		"50 PRINT \"skipped\"\n" +
		"60 IF X% = 0 THEN PRINT \"zero\"\n" +
		"70 PRINT \"end\"\n"

	assert.Equal(t, "big\nno\nend\n", output(t, src))

	_, err := run(t, "10 IF \"a\" THEN END\n")
	errorAt(t, err, basicerr.TypeMismatch, 10)
}

func TestPrintZones(t *testing.T) {

	assert.Equal(t, "1             2\n", output(t, "10 PRINT 1, 2\n"))
	assert.Equal(t, "ab\n", output(t, "10 PRINT \"a\";\n20 PRINT \"b\"\n"))
	assert.Equal(t, "\n", output(t, "10 PRINT\n"))

	h := newHarness(Options{ZoneWidth: 4, Zones: 2}, 0)
	require.NoError(t, h.run(t, "10 PRINT 1, 2, 3\n"))
	assert.Equal(t, "1   2   \n3\n", h.out.String())
}

func TestBuiltins(t *testing.T) {

	src := "10 PRINT LEFT$(\"hello\", 2); MID$(\"hello\", 2, 3); RIGHT$(\"hello\", 1)\n" +
		"20 PRINT LEN(\"abc\"); INSTR(\"hello\", \"l\"); INSTR(4, \"hello\", \"l\"); CHR$(65); ASC(\"A\")\n" +
		"30 PRINT UCASE$(\"x\"); LCASE$(\"Y\"); STR$(12); VAL(\" 42 \") + 1\n" +
		"40 PRINT ABS(-3); SGN(-2); INT(2.7); SQR(4); CINT(2.5); CDBL(1)\n"

	assert.Equal(t, "heello\n334A65\nXy1243\n3-12.02.031.0\n", output(t, src))
}

func TestMidClampsLength(t *testing.T) {

	src := "10 PRINT MID$(\"abc\", 2, 9223372036854775807); MID$(\"abc\", 3, 2147483647)\n"

	assert.Equal(t, "bcc\n", output(t, src))
}

func TestIllegalFunctionCall(t *testing.T) {

	_, err := run(t, "10 PRINT SQR(-1)\n")
	be := errorAt(t, err, basicerr.Runtime, 10)
	assert.Contains(t, be.Msg, basicerr.EILLEGALFUNCCALL)

	_, err = run(t, "10 PRINT LEN(1)\n")
	errorAt(t, err, basicerr.TypeMismatch, 10)
}

func TestRandomIsSeeded(t *testing.T) {

	src := "10 RANDOMIZE 7\n20 PRINT RND; RND(1)\n"

	a := output(t, src)
	b := output(t, src)
	assert.Equal(t, a, b)
	assert.NotEqual(t, "\n", a)
}

func TestBooleans(t *testing.T) {

	src := "10 B? = 1 < 2\n" +
		"20 PRINT B?; NOT B?; B? AND FALSE; B? OR FALSE\n"

	assert.Equal(t, "TRUEFALSEFALSETRUE\n", output(t, src))
}

func TestTypeMismatch(t *testing.T) {

	_, err := run(t, "10 A$ = 1\n")
	errorAt(t, err, basicerr.TypeMismatch, 10)

	_, err = run(t, "10 PRINT \"a\" - \"b\"\n")
	errorAt(t, err, basicerr.TypeMismatch, 10)
}

func TestArrays(t *testing.T) {

	src := "10 OPTION BASE 1\n" +
		"20 DIM A%(3)\n" +
		"30 A%(1) = 4 : A%(3) = A%(1) * 2\n" +
		"40 PRINT A%(1); A%(3)\n" +
		"50 A%(0) = 1\n"

	out, err := run(t, src)
	assert.Equal(t, "48\n", out)
	errorAt(t, err, basicerr.Runtime, 50)
}

func TestInput(t *testing.T) {

	src := "10 INPUT \"Name\"; N$, A%\n20 PRINT N$; A%\n"

	assert.Equal(t, "Bob42\n", output(t, src, "Bob, 42"))

	h := newHarness(Options{}, 0, "Bob", "x", "\"Ann, Lee\", 7")
	require.NoError(t, h.run(t, src))
	assert.Equal(t, "?Redo from start\nAnn, Lee7\n", h.out.String())
	assert.Equal(t, []string{"Name? ", "?? ", "Name? "}, h.in.prompts)

	_, err := run(t, src)
	be := errorAt(t, err, basicerr.Runtime, 10)
	assert.Contains(t, be.Msg, basicerr.EINPUTEOF)
}

func TestEndAndStop(t *testing.T) {

	assert.Equal(t, "1\n", output(t, "10 PRINT 1 : END : PRINT 2\n"))
	assert.Equal(t, "a\nStop at line 20\n", output(t, "10 PRINT \"a\";\n20 STOP\n30 PRINT \"b\"\n"))
}

func TestTracing(t *testing.T) {

	h := newHarness(Options{TraceExec: true, TraceVars: true}, 0)
	require.NoError(t, h.run(t, "10 X% = 1\n20 PRINT X%\n"))

	assert.Equal(t, "1\n", h.out.String())
	assert.Equal(t,
		"[10] LET X% = 1\nVariable X% changed from 0 to 1\n[20] PRINT X%\n",
		h.trace.String())
	assert.Equal(t, 2, h.engine.Executed())
}

func TestErrorCarriesPosition(t *testing.T) {

	_, err := run(t, "10 PRINT 1\n20 X = 2 : Y = X / 0\n")

	be := errorAt(t, err, basicerr.DivideByZero, 20)
	assert.Equal(t, 2, be.Statement)
	assert.Equal(t, 2, be.Source)
}

func TestRunIsRepeatable(t *testing.T) {

	h := newHarness(Options{}, 0)

	tokens, err := lexer.Tokenize("10 X% = X% + 1\n20 PRINT X%\n30 DATA 1\n", lexer.Options{})
	require.NoError(t, err)

	prog, err := parser.Parse(tokens, h.engine.ctx.XRef, parser.Options{})
	require.NoError(t, err)

	require.NoError(t, h.engine.Run(prog))
	require.NoError(t, h.engine.Run(prog))
	assert.Equal(t, "1\n1\n", h.out.String())
}
