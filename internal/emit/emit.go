// Package emit writes a parsed program as intermediate JSON instead of
// running it.
package emit

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"linebasic/internal/ast"
)

// Target names accepted by Write.
const JSON = "json"

type Entry struct {
	Index int    `json:"index"`
	Line  int    `json:"line"`
	Kind  string `json:"kind"`
	Text  string `json:"text"`
}

type Document struct {
	Settings []Entry `json:"SETTINGS"`
	Program  []Entry `json:"PROGRAM"`
}

// Kind is the statement's type name without the package, e.g. "Gosub".
func Kind(s ast.Statement) string {

	name := fmt.Sprintf("%T", s)

	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}

	return name
}

func entries(list []ast.Statement) []Entry {

	out := make([]Entry, len(list))

	for i, s := range list {
		out[i] = Entry{Index: i, Line: s.Position().Line, Kind: Kind(s), Text: s.String()}
	}

	return out
}

func Build(prog *ast.Program) *Document {

	return &Document{Settings: entries(prog.PreRun), Program: entries(prog.Main)}
}

//
// Write encodes prog for target.  Beautified output is indented two
// spaces; otherwise the document is a single line
//

func Write(w io.Writer, prog *ast.Program, target string, beautify bool) error {

	if target != JSON {
		return fmt.Errorf("unsupported target %q (only %q)", target, JSON)
	}

	var data []byte
	var err error

	doc := Build(prog)

	if beautify {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}

	if err != nil {
		return err
	}

	data = append(data, '\n')

	_, err = w.Write(data)

	return err
}
