package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/berquerant/splititer/pkg/config"
	"github.com/berquerant/splititer/pkg/run"
	"github.com/berquerant/splititer/pkg/slicex"
	"github.com/berquerant/splititer/version"
	"github.com/spf13/pflag"
)

const usage = `splititer -- split lines into two outputs by a predicate

# Usage

splititer [flags] [-- PREDICATE_CMD [ARGS...]]

Lines for which the predicate holds are written to --true (default: stdout),
the others to --false (default: discarded).
Both outputs keep the order of the input.

The predicate is one of:
- a regular expression given by -e
- shell commands given by -c; a line is piped into them and
  exit status 0 means true, 1 means false, others are errors
- a command after '--', invoked like -c but without shell

# Examples

// grep 3 input
splititer -e 3 -i input

// grep -v 3 input
splititer -v -e 3 -i input

// grep '^#' input > comments
// grep -v '^#' input > rest
splititer -e '^#' -t comments -f rest -i input

// keep lines containing a valid json, sorted
splititer -c 'jq -e . > /dev/null 2>&1' -x sort -i input

// split by a command; the false side goes to stdout
splititer -t /dev/null -f - -- grep -q ERROR < app.log

# Flags

`

func main() {
	fs := pflag.NewFlagSet("main", pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}

	var (
		displayVersion = fs.Bool("version", false, "display version")
		debug          = fs.Bool("debug", false, "enable debug logs")
		workDir        = fs.StringP("work_dir", "w", "", "working directory; keep temporary files")
		shell          = fs.StringP("shell", "s", "bash", "shell command to be executed")
		invert         = fs.BoolP("invert", "v", false, "invert the predicate")
		input          = fs.StringP("input", "i", "", "input file; read stdin if empty or '-'")
		trueOut        = fs.StringP("true", "t", config.Stdio, "output file for the lines matching the predicate; '-' means stdout, empty means discard")
		falseOut       = fs.StringP("false", "f", "", "output file for the other lines; '-' means stdout, empty means discard")
		pattern        = fs.StringP("regexp", "e", "", "predicate; regular expression")
		cmd            []string
		filter         []string
	)
	// workaround: https://github.com/spf13/pflag/issues/370
	fs.StringArrayVarP(&cmd, "cmd", "c", nil,
		"predicate; piped shell commands; invoked like 'echo LINE | cmd'",
	)
	fs.StringArrayVarP(&filter, "filter", "x", nil,
		"process each output; invoked like 'filter < OUTPUT'; should output result to stdout",
	)

	before, after := slicex.Split(os.Args[1:], "--")
	err := fs.Parse(before)
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	fail(err)
	if *displayVersion {
		version.Write(os.Stdout)
		return
	}

	c := config.NewConfig(os.Stdin, os.Stdout, *pattern, cmd, filter, *shell)
	c.Debug = *debug
	c.Invert = *invert
	c.WorkDir = *workDir
	c.Input = *input
	c.TrueOut = *trueOut
	c.FalseOut = *falseOut
	c.SetupLogger(os.Stderr)
	slog.Debug("parse args", slog.Any("args", before))
	slog.Debug("predicate args", slog.Any("args", after))
	fail(c.Init(after))

	cj, _ := json.Marshal(c)
	slog.Debug("config", slog.String("json", string(cj)))
	fail(run.Main(c))
}

func fail(err error) {
	if err != nil {
		slog.Error("exit", slog.Any("err", err))
		os.Exit(1)
	}
}
