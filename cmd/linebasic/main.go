package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/goforj/godump"

	"linebasic/internal/config"
	"linebasic/internal/console"
	"linebasic/internal/emit"
	"linebasic/internal/exec"
	"linebasic/internal/lexer"
	"linebasic/internal/macro"
	"linebasic/internal/parser"
	"linebasic/internal/runtime"
	"linebasic/internal/stats"
)

const VERSION = "1.0.0"

const usage = `usage: linebasic [flags] file.bas

  -v            trace execution; twice adds variable trace and dumps
  -q            no banner, no statistics
  -c            write intermediate JSON instead of running
  -b            indent the JSON
  -d            Dartmouth mode
  -t target     output target for -c (json)
  -p            standard operator precedence
  -config path  YAML settings file
  -dump-config  print the effective settings and exit
  -stats        print run statistics
`

// verbosity counts repeated -v flags.
type verbosity int

func (v *verbosity) String() string { return strconv.Itoa(int(*v)) }

func (v *verbosity) Set(s string) error {

	on, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}

	if on {
		*v++
	}

	return nil
}

func (v *verbosity) IsBoolFlag() bool { return true }

type options struct {
	verbose    verbosity
	quiet      bool
	compile    bool
	beautify   bool
	dartmouth  bool
	target     string
	standard   bool
	configPath string
	dumpConfig bool
	stats      bool
}

func main() {

	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (*options, []string, error) {

	var o options

	fs := flag.NewFlagSet("linebasic", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }

	fs.Var(&o.verbose, "v", "verbosity, repeatable")
	fs.BoolVar(&o.quiet, "q", false, "quiet")
	fs.BoolVar(&o.compile, "c", false, "compile to intermediate output")
	fs.BoolVar(&o.beautify, "b", false, "beautified output")
	fs.BoolVar(&o.dartmouth, "d", false, "Dartmouth mode")
	fs.StringVar(&o.target, "t", emit.JSON, "compile target")
	fs.BoolVar(&o.standard, "p", false, "standard precedence")
	fs.StringVar(&o.configPath, "config", "", "YAML settings file")
	fs.BoolVar(&o.dumpConfig, "dump-config", false, "print settings and exit")
	fs.BoolVar(&o.stats, "stats", false, "print statistics")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return &o, fs.Args(), nil
}

//
// settings starts from the defaults or the config file and lets the
// command line switch things on
//

func settings(o *options) (*config.Config, error) {

	cfg := config.Default()

	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, err
		}
	}

	if o.dartmouth {
		cfg.Dartmouth = true
	}

	if o.standard {
		cfg.Precedence = config.Standard
	}

	if o.verbose >= 1 {
		cfg.Trace.Exec = true
	}

	if o.verbose >= 2 {
		cfg.Trace.Vars = true
		cfg.Trace.Dump = true
	}

	return cfg, nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {

	o, rest, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}

	if err != nil {
		return 1
	}

	cfg, err := settings(o)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if o.dumpConfig {
		if err := cfg.Encode(stdout); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}

		return 0
	}

	if len(rest) != 1 {
		fmt.Fprint(stderr, usage)
		return 1
	}

	if o.target != emit.JSON {
		fmt.Fprintf(stderr, "unsupported target %q\n", o.target)
		return 1
	}

	if err := execute(rest[0], o, cfg, stdin, stdout, stderr); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	return 0
}

func execute(path string, o *options, cfg *config.Config, stdin io.Reader, stdout, stderr io.Writer) error {

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	src := string(data)
	if !strings.HasSuffix(src, "\n") {
		src += "\n"
	}

	pre := macro.New()

	if src, err = pre.Expand(src); err != nil {
		return err
	}

	if cfg.Trace.Dump && len(pre.Macros()) > 0 {
		godump.Fdump(stderr, pre.Macros())
	}

	tokens, err := lexer.Tokenize(src, lexer.Options{Dartmouth: cfg.Dartmouth})
	if err != nil {
		return err
	}

	popts := parser.Options{Precedence: parser.LeftToRight}
	if cfg.Precedence == config.Standard {
		popts.Precedence = parser.Standard
	}

	con := console.Open(stdin, stdout)
	defer con.Close()

	ctx := runtime.New(runtime.Options{Out: stdout, In: con, StackMax: cfg.StackMax})

	prog, err := parser.Parse(tokens, ctx.XRef, popts)
	if err != nil {
		return err
	}

	if o.compile {
		return emit.Write(stdout, prog, o.target, o.beautify)
	}

	zones := cfg.Zones
	if zones == 0 {
		zones = console.Zones(stdout, cfg.ZoneWidth)
	}

	engine := exec.New(ctx, exec.Options{
		TraceExec:      cfg.Trace.Exec,
		TraceVars:      cfg.Trace.Vars,
		TraceDump:      cfg.Trace.Dump,
		Trace:          stderr,
		ZoneWidth:      cfg.ZoneWidth,
		Zones:          zones,
		FnRecursionMax: cfg.FnRecursionMax,
		Seed:           cfg.Seed,
	})

	if !o.quiet {
		fmt.Fprintf(stderr, "linebasic %s\n", VERSION)
	}

	st := stats.Start()
	err = engine.Run(prog)

	if cfg.Trace.Dump {
		godump.Fdump(stderr, ctx.Vars.Snapshot())
	}

	if o.stats && !o.quiet {
		st.Report(stderr, engine.Executed())
	}

	return err
}
