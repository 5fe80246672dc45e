package exec

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"linebasic/internal/ast"
	"linebasic/internal/basicerr"
	"linebasic/internal/value"
)

const inputPrompt = "? "

func (e *Engine) write(s string) {

	fmt.Fprint(e.ctx.Out, s)

	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		e.column = len(s) - i - 1
	} else {
		e.column += len(s)
	}
}

// endLine finishes a line left open by a trailing ';' or ','.
func (e *Engine) endLine() {

	if e.column > 0 {
		e.write("\n")
	}
}

//
// A comma moves the cursor to the start of the next print zone.  Zones
// are ZoneWidth columns wide; with Zones set, running past the last
// zone starts a new line
//

func (e *Engine) nextZone() {

	width := e.opts.ZoneWidth

	resid := width - e.column%width
	e.write(strings.Repeat(" ", resid))

	if e.opts.Zones > 0 && e.column >= e.opts.Zones*width {
		e.write("\n")
	}
}

func (e *Engine) executePrint(s *ast.Print) error {

	for _, item := range s.Items {
		if item.Expr != nil {
			v, err := e.eval(item.Expr)
			if err != nil {
				return err
			}

			e.write(v.String())
		}

		if item.Sep == "," {
			e.nextZone()
		}
	}

	if n := len(s.Items); n == 0 || s.Items[n-1].Sep == "" {
		e.write("\n")
	}

	return nil
}

//
// INPUT reads comma separated items for its targets, prompting with
// '??' when a line comes up short.  An item that does not convert to
// its target's type discards everything read so far and starts over
//

func (e *Engine) executeInput(s *ast.Input) error {

	if e.ctx.In == nil {
		return basicerr.Runtimef("%s", basicerr.EINPUTEOF)
	}

	prompt := s.Prompt + inputPrompt

	for {
		values, err := e.readItems(prompt, s.Targets)
		if err != nil {
			return err
		}

		if values == nil {
			e.write("?Redo from start\n")
			continue
		}

		for i, target := range s.Targets {
			if err := e.store(target, values[i]); err != nil {
				return err
			}
		}

		return nil
	}
}

// readItems returns nil values when an item fails to convert.
func (e *Engine) readItems(prompt string, targets []*ast.Variable) ([]value.Value, error) {

	var values []value.Value
	var fields []string

	for len(values) < len(targets) {
		if len(fields) == 0 {
			line, err := e.ctx.In.ReadLine(prompt)
			if err != nil {
				if errors.Is(err, io.EOF) {
					return nil, basicerr.Runtimef("%s", basicerr.EINPUTEOF)
				}

				return nil, basicerr.Runtimef("%s: %v", basicerr.EINPUTEOF, err)
			}

			e.column = 0
			fields = splitInput(line)
			prompt = "?" + inputPrompt
		}

		v, ok := convertInput(fields[0], value.KindOfName(targets[len(values)].Name))
		if !ok {
			return nil, nil
		}

		values = append(values, v)
		fields = fields[1:]
	}

	return values, nil
}

// splitInput breaks a line on commas outside double quotes.
func splitInput(line string) []string {

	var fields []string
	var sb strings.Builder

	quoted := false

	for _, c := range line {
		switch {
		case c == '"':
			quoted = !quoted
			sb.WriteRune(c)

		case c == ',' && !quoted:
			fields = append(fields, sb.String())
			sb.Reset()

		default:
			sb.WriteRune(c)
		}
	}

	return append(fields, sb.String())
}

func convertInput(field string, kind value.Kind) (value.Value, bool) {

	field = strings.TrimSpace(field)

	switch kind {
	default:
		f, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, false
		}

		return value.Real(f), true

	case value.StringKind:
		if len(field) >= 2 && field[0] == '"' && field[len(field)-1] == '"' {
			field = strings.ReplaceAll(field[1:len(field)-1], `""`, `"`)
		}

		return value.String(field), true

	case value.BooleanKind:
		switch strings.ToUpper(field) {
		case "TRUE":
			return value.Boolean(true), true

		case "FALSE":
			return value.Boolean(false), true
		}

		return nil, false

	case value.IntegerKind, value.LongKind:
		n, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, false
		}

		v, err := value.Coerce(value.Long(n), kind)
		if err != nil {
			return nil, false
		}

		return v, true
	}
}
