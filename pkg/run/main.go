package run

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/berquerant/splititer/pkg/config"
	"github.com/berquerant/splititer/pkg/execx"
	"github.com/berquerant/splititer/pkg/splititer"
	"github.com/go-softwarelab/common/pkg/seq"
	"golang.org/x/sync/errgroup"
)

func Main(c *config.Config) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGPIPE,
	)
	defer stop()
	return run(ctx, c)
}

// maxRecordSize is the maximum size of an input line.
const maxRecordSize = 16 * 1024 * 1024

func scanLines(r io.Reader, errp *error) iter.Seq[string] {
	return func(yield func(string) bool) {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), maxRecordSize)
		for sc.Scan() {
			if !yield(sc.Text()) {
				return
			}
		}
		*errp = sc.Err()
	}
}

// newPredicate returns the predicate to split records by.
// errp receives the first predicate failure; the predicate reports false afterwards.
func newPredicate(ctx context.Context, c *config.Config, errp *error) func(string) bool {
	var test func(string) (bool, error)
	switch {
	case c.Pattern != nil:
		test = func(s string) (bool, error) {
			return c.Pattern.MatchString(s), nil
		}
	default:
		cmd := execx.NewCmd(c.PredicateArgs...)
		if len(c.Cmd) > 0 {
			// The exit status of the shell is the one of the last command.
			cmd = execx.NewShellCmd(c.Shell, strings.Join(c.Cmd, " | "))
		}
		p := execx.NewPredicate(cmd)
		test = func(s string) (bool, error) {
			return p.Test(ctx, []byte(s+"\n"))
		}
	}

	return func(s string) bool {
		if *errp != nil {
			return false
		}
		ok, err := test(s)
		if err != nil {
			*errp = fmt.Errorf("%w: record %q", err, s)
			return false
		}
		return ok != c.Invert
	}
}

type output struct {
	side splititer.Side
	path string // destination
	file string // temporary file when filters are set
	w    *bufio.Writer
	c    io.Closer
	n    int
}

func (o *output) open(c *config.Config) error {
	if len(c.Filter) == 0 {
		w, err := c.OpenOutput(o.path)
		if err != nil {
			return fmt.Errorf("%w: open %s output", err, o.side)
		}
		o.w = bufio.NewWriter(w)
		o.c = w
		return nil
	}

	t := execx.NewTmpFile(c.TempDir)
	f, err := t.Open()
	if err != nil {
		return fmt.Errorf("%w: open %s output", err, o.side)
	}
	o.file = t.Path()
	o.w = bufio.NewWriter(f)
	o.c = f
	return nil
}

func (o *output) write(s string) error {
	o.n++
	if _, err := o.w.WriteString(s); err != nil {
		return err
	}
	return o.w.WriteByte('\n')
}

func (o *output) close() error {
	return errors.Join(o.w.Flush(), o.c.Close())
}

func run(ctx context.Context, c *config.Config) error {
	defer c.Close()

	in, err := c.OpenInput()
	if err != nil {
		return fmt.Errorf("%w: open input", err)
	}
	defer in.Close()

	var scanErr, predicateErr error
	lines := seq.Tap(scanLines(in, &scanErr), func(s string) {
		slog.Debug("record", slog.String("line", s))
	})
	src := splititer.FromSeq(lines)
	defer src.Stop()
	falses, trues := src.Split(newPredicate(ctx, c, &predicateErr))

	outputs := []*output{
		{side: splititer.True, path: c.TrueOut},
		{side: splititer.False, path: c.FalseOut},
	}
	for _, o := range outputs {
		if err := o.open(c); err != nil {
			return err
		}
	}

	slog.Debug("start split")
	if err := drain(ctx, &predicateErr, outputs, trues, falses); err != nil {
		return errors.Join(err, closeOutputs(outputs))
	}
	if err := closeOutputs(outputs); err != nil {
		return err
	}
	if scanErr != nil {
		return fmt.Errorf("%w: read input", scanErr)
	}
	slog.Debug("end split",
		slog.Int("true", outputs[0].n),
		slog.Int("false", outputs[1].n),
	)

	if len(c.Filter) == 0 {
		return nil
	}
	return filter(ctx, c, outputs)
}

func closeOutputs(outputs []*output) error {
	var errs []error
	for _, o := range outputs {
		if err := o.close(); err != nil {
			errs = append(errs, fmt.Errorf("%w: close %s output", err, o.side))
		}
	}
	return errors.Join(errs...)
}

// drain pulls from the branches alternately until both are exhausted.
// Before a branch pulls again, every branch first takes the records already waiting for it,
// so the buffer never holds more than one run of consecutive records of a side.
func drain(ctx context.Context, predicateErr *error, outputs []*output, branches ...*splititer.Branch[string]) error {
	write := func(i int, v string) error {
		if err := outputs[i].write(v); err != nil {
			return fmt.Errorf("%w: write %s output", err, outputs[i].side)
		}
		return nil
	}

	done := make([]bool, len(branches))
	for rest := len(branches); rest > 0; {
		for i, b := range branches {
			for b.Pending() > 0 {
				v, _ := b.Next()
				if err := write(i, v); err != nil {
					return err
				}
			}
			if done[i] {
				continue
			}
			v, ok := b.Next()
			if err := *predicateErr; err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if !ok {
				done[i] = true
				rest--
				continue
			}
			if err := write(i, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func filter(ctx context.Context, c *config.Config, outputs []*output) error {
	newCmds := func() []*execx.Cmd {
		cmds := make([]*execx.Cmd, len(c.Filter))
		for i, x := range c.Filter {
			cmds[i] = execx.NewShellCmd(c.Shell, x)
		}
		return cmds
	}
	runFilter := func(o *output) (string, error) {
		slog.Debug(fmt.Sprintf("start %s filter", o.side), slog.String("in", o.file))
		stdin, err := os.Open(o.file)
		if err != nil {
			return "", fmt.Errorf("%w: run %s filter", err, o.side)
		}
		defer stdin.Close()
		p := execx.NewPipedCmd(c.TempDir, stdin, newCmds()...)
		if err := p.Run(ctx); err != nil {
			return "", fmt.Errorf("%w: run %s filter", err, o.side)
		}
		slog.Debug(fmt.Sprintf("end %s filter", o.side), slog.String("out", p.Path()))
		return p.Path(), nil
	}

	results := make([]string, len(outputs))
	eg, _ := errgroup.WithContext(ctx)
	for i, o := range outputs {
		eg.Go(func() error {
			out, err := runFilter(o)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for i, o := range outputs {
		if err := copyFile(c, results[i], o.path); err != nil {
			return fmt.Errorf("%w: write %s output", err, o.side)
		}
	}
	return nil
}

func copyFile(c *config.Config, src, dst string) error {
	r, err := os.Open(src)
	if err != nil {
		return err
	}
	defer r.Close()
	w, err := c.OpenOutput(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
