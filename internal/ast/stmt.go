package ast

import (
	"strings"

	"linebasic/internal/value"
)

// Pos locates a statement in the source and in its statement list.
type Pos struct {
	Line   int // BASIC line number
	Source int // physical source line
	Token  int // position of the first token
	Index  int // statement index within its list
}

func (p Pos) Position() Pos { return p }

type Statement interface {
	Position() Pos
	String() string
}

// Program is the parsed form of a source file.
type Program struct {
	PreRun []Statement // DATA, DEF and OPTION, executed while loading
	Main   []Statement
}

//
// Jump fields hold BASIC line numbers; the engine maps them to
// statement indices through the cross reference table.  Index fields
// (Exit, Next, ElseIndex) are resolved by the parser directly and are
// -1 when there is nowhere to go
//

type Assign struct {
	Pos
	Target *Variable
	Value  Expr
}

type PrintItem struct {
	Expr Expr   // nil for a bare separator
	Sep  string // ";", "," or "" after the item
}

type Print struct {
	Pos
	Items []PrintItem
}

type IfThen struct {
	Pos
	Cond      Expr
	ThenLine  int // -1 when THEN is followed by statements
	ElseLine  int // -1 when there is no ELSE line number
	ElseIndex int // first statement of the ELSE branch, -1 if none
	Next      int // first statement of the following line
}

// Else ends the THEN branch of an IF; falling onto it skips the ELSE branch.
type Else struct {
	Pos
	Next int
}

type Goto struct {
	Pos
	Target int
}

type Gosub struct {
	Pos
	Target int
}

type Return struct {
	Pos
}

type OnJump struct {
	Pos
	Selector Expr
	Gosub    bool
	Targets  []int
}

type For struct {
	Pos
	Var   string
	Start Expr
	Limit Expr
	Step  Expr // nil means 1
	Exit  int  // statement after the matching NEXT
}

type Next struct {
	Pos
	Vars []string
}

type While struct {
	Pos
	Cond Expr
	Exit int // statement after the matching ENDWHILE
}

type EndWhile struct {
	Pos
	Keyword string
}

type Repeat struct {
	Pos
	Keyword string
}

type Until struct {
	Pos
	Cond Expr
}

type Read struct {
	Pos
	Targets []*Variable
}

type Data struct {
	Pos
	Values []value.Value
}

type Restore struct {
	Pos
	Target int // 0 restores from the first DATA item
}

type Dim struct {
	Pos
	Arrays []*Variable
}

type Input struct {
	Pos
	Prompt  string
	Targets []*Variable
}

type Rem struct {
	Pos
	Text string
}

type End struct {
	Pos
}

type Stop struct {
	Pos
}

type Randomize struct {
	Pos
	Seed Expr // nil seeds from the clock
}

type Def struct {
	Pos
	Name   string
	Params []string
	Body   Expr
}

type Option struct {
	Pos
	Name  string
	Value int
}

func (s *Assign) String() string {

	return "LET " + s.Target.String() + " = " + s.Value.String()
}

func (s *Print) String() string {

	var sb strings.Builder

	sb.WriteString("PRINT")
	for _, it := range s.Items {
		if it.Expr != nil {
			sb.WriteString(" ")
			sb.WriteString(it.Expr.String())
		}
		sb.WriteString(it.Sep)
	}

	return sb.String()
}

func (s *IfThen) String() string {

	out := "IF " + s.Cond.String() + " THEN"
	if s.ThenLine >= 0 {
		out += " " + itoa(s.ThenLine)
	}

	if s.ElseLine >= 0 {
		out += " ELSE " + itoa(s.ElseLine)
	}

	return out
}

func (s *Else) String() string { return "ELSE" }

func (s *Goto) String() string  { return "GOTO " + itoa(s.Target) }
func (s *Gosub) String() string { return "GOSUB " + itoa(s.Target) }
func (s *Return) String() string { return "RETURN" }

func (s *OnJump) String() string {

	verb := " GOTO "
	if s.Gosub {
		verb = " GOSUB "
	}

	targets := make([]string, len(s.Targets))
	for i, t := range s.Targets {
		targets[i] = itoa(t)
	}

	return "ON " + s.Selector.String() + verb + strings.Join(targets, ", ")
}

func (s *For) String() string {

	out := "FOR " + s.Var + " = " + s.Start.String() + " TO " + s.Limit.String()
	if s.Step != nil {
		out += " STEP " + s.Step.String()
	}

	return out
}

func (s *Next) String() string {

	if len(s.Vars) == 0 {
		return "NEXT"
	}

	return "NEXT " + strings.Join(s.Vars, ", ")
}

func (s *While) String() string    { return "WHILE " + s.Cond.String() }
func (s *EndWhile) String() string { return s.Keyword }
func (s *Repeat) String() string   { return s.Keyword }
func (s *Until) String() string    { return "UNTIL " + s.Cond.String() }

func (s *Read) String() string {

	return "READ " + joinVars(s.Targets)
}

func (s *Data) String() string {

	parts := make([]string, len(s.Values))
	for i, v := range s.Values {
		parts[i] = (&Literal{Value: v}).String()
	}

	return "DATA " + strings.Join(parts, ", ")
}

func (s *Restore) String() string {

	if s.Target == 0 {
		return "RESTORE"
	}

	return "RESTORE " + itoa(s.Target)
}

func (s *Dim) String() string {

	return "DIM " + joinVars(s.Arrays)
}

func (s *Input) String() string {

	out := "INPUT "
	if s.Prompt != "" {
		out += quote(s.Prompt) + "; "
	}

	return out + joinVars(s.Targets)
}

func (s *Rem) String() string {

	if s.Text == "" {
		return "REM"
	}

	return "REM " + s.Text
}

func (s *End) String() string  { return "END" }
func (s *Stop) String() string { return "STOP" }

func (s *Randomize) String() string {

	if s.Seed == nil {
		return "RANDOMIZE"
	}

	return "RANDOMIZE " + s.Seed.String()
}

func (s *Def) String() string {

	return "DEF " + s.Name + "(" + strings.Join(s.Params, ", ") + ") = " + s.Body.String()
}

func (s *Option) String() string {

	return "OPTION " + s.Name + " " + itoa(s.Value)
}

func joinVars(list []*Variable) string {

	parts := make([]string, len(list))
	for i, v := range list {
		parts[i] = v.String()
	}

	return strings.Join(parts, ", ")
}
