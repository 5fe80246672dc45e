// Package console supplies INPUT lines to a running program.  On a
// terminal it uses liner for line editing; otherwise it reads plain
// lines, so scripts can be fed from a pipe.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danswartzendruber/liner"
	"golang.org/x/term"
)

var ErrInterrupted = errors.New("interrupted")

type Console struct {
	line *liner.State
	in   *bufio.Reader
	out  io.Writer
}

func isTerminal(v any) bool {

	f, ok := v.(*os.File)

	return ok && term.IsTerminal(int(f.Fd()))
}

//
// Open picks the line editor only when both ends are terminals: liner
// puts the terminal in raw mode and writes prompts itself
//

func Open(in io.Reader, out io.Writer) *Console {

	c := &Console{out: out}

	if isTerminal(in) && isTerminal(out) {
		c.line = liner.NewLiner()
		c.line.SetCtrlCAborts(true)
	} else {
		c.in = bufio.NewReader(in)
	}

	return c
}

func (c *Console) Interactive() bool {

	return c.line != nil
}

// ReadLine implements runtime.LineReader.
func (c *Console) ReadLine(prompt string) (string, error) {

	if c.line != nil {
		s, err := c.line.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", ErrInterrupted
		}

		return s, err
	}

	fmt.Fprint(c.out, prompt)

	s, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || s == "") {
		return "", err
	}

	return strings.TrimRight(s, "\r\n"), nil
}

// Close restores the terminal state.
func (c *Console) Close() error {

	if c.line == nil {
		return nil
	}

	err := c.line.Close()
	c.line = nil

	return err
}

//
// Zones is how many print zones of zoneWidth fit across the terminal
// behind out, or 0 when out is not a terminal
//

func Zones(out io.Writer, zoneWidth int) int {

	f, ok := out.(*os.File)
	if !ok || zoneWidth < 1 || !term.IsTerminal(int(f.Fd())) {
		return 0
	}

	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width < zoneWidth {
		return 0
	}

	return width / zoneWidth
}
