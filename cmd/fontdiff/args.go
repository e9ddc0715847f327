package main

import (
	"flag"
	"io"

	"github.com/npillmayer/schuko/schukonf/testconfig"
)

// command is a sub-command of fontdiff.
type command interface {
	flags() *flag.FlagSet
	arity() int // number of positional arguments
	traceLevel() string
	execute(args []string, out io.Writer) error
}

// parseInterleaved parses flags which may appear before, between or after
// positional arguments. Positional arguments are returned in order.
func parseInterleaved(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

// config collects settings from flags, for packages reading a
// schuko configuration. Empty values are left out.
func config(kv ...string) testconfig.Conf {
	conf := testconfig.Conf{}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			conf[kv[i]] = kv[i+1]
		}
	}
	return conf
}
