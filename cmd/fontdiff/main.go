/*
Command fontdiff compares two versions of a font.

Usage:

	fontdiff build <xml_corpus> <output> [--glyphs CHARS] [--uax29] [--strip-markup] [--xpath EXPR]
	fontdiff diff <font_a> <font_b> [--json FILE] [--html FILE] [--images DIR] [--workers N] [--wordlists DIR] [--hash gid+pos|gid|pos]
	fontdiff words <font_a> <font_b> <wordlist> [--workers N] [--hash gid+pos|gid|pos]

Fonts are given as file path, URL, name of a packaged Go font (e.g.
"goregular"), Google font ("gf:Roboto" or "gf:Roboto:700") or name of a
font installed on the system.

Exit status is 0 on success, 1 on errors and 2 for usage errors.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/npillmayer/fontdiff/core"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
	"golang.org/x/term"
)

// tracer traces with key 'fontdiff.cli'
func tracer() tracing.Trace {
	return tracing.Select("fontdiff.cli")
}

// tracingKeys are the tracers of all fontdiff packages.
var tracingKeys = []string{
	"fontdiff.cli", "fontdiff.corpus", "fontdiff.diff", "fontdiff.fonts",
	"fontdiff.render", "fontdiff.report", "fontdiff.resources", "fontdiff.shaping",
}

func main() {
	initDisplay()
	os.Exit(run(os.Args[1:], os.Stdout, setupTracing))
}

// We use pterm for moderately fancy output.
func initDisplay() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		pterm.DisableStyling()
		return
	}
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// setupTracing routes the tracers of all packages to the Go logger.
func setupTracing(level string) error {
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter": "go",
	}
	for _, key := range tracingKeys {
		conf["trace."+key] = level
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		return core.WrapError(err, core.EINVALID, "cannot configure tracing")
	}
	tracing.SetTraceSelector(trace2go.Selector())
	return nil
}

const usage = `usage:
  fontdiff build <xml_corpus> <output> [--glyphs CHARS] [--uax29] [--strip-markup] [--xpath EXPR]
  fontdiff diff <font_a> <font_b> [--json FILE] [--html FILE] [--images DIR] [--workers N] [--wordlists DIR] [--hash NAME]
  fontdiff words <font_a> <font_b> <wordlist> [--workers N] [--hash NAME]
`

// run executes a sub-command and returns the exit status.
func run(args []string, stdout io.Writer, tracingSetup func(level string) error) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	var cmd command
	switch args[0] {
	case "build":
		cmd = &buildCmd{}
	case "diff":
		cmd = &diffCmd{}
	case "words":
		cmd = &wordsCmd{}
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		pterm.Error.Printfln("unknown sub-command %q", args[0])
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	fs := cmd.flags()
	fs.SetOutput(io.Discard)
	positional, err := parseInterleaved(fs, args[1:])
	if err != nil || len(positional) != cmd.arity() {
		if err == nil {
			err = fmt.Errorf("%s expects %d arguments, have %d", args[0], cmd.arity(), len(positional))
		}
		pterm.Error.Println(err.Error())
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	if tracingSetup != nil {
		if err := tracingSetup(cmd.traceLevel()); err != nil {
			core.UserError(err)
			return 1
		}
	}
	if err := cmd.execute(positional, stdout); err != nil {
		core.UserError(err)
		return 1
	}
	return 0
}
