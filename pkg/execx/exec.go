package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	ex "github.com/berquerant/execx"
)

type Cmd struct {
	args []string
}

func NewCmd(arg ...string) *Cmd {
	return &Cmd{
		args: arg,
	}
}

// NewShellCmd returns a command that runs script by shell.
func NewShellCmd(shell, script string) *Cmd {
	return NewCmd(shell, "-c", script)
}

var (
	ErrRun       = errors.New("Run")
	ErrPredicate = errors.New("Predicate")
)

func (c *Cmd) intoExecCmd(ctx context.Context) (*exec.Cmd, error) {
	if len(c.args) == 0 {
		return nil, fmt.Errorf("%w: no args", ErrRun)
	}

	cmd := exec.CommandContext(ctx, c.args[0], c.args[1:]...)
	cmd.Env = os.Environ()
	return cmd, nil
}

type TmpFile struct {
	dir  string
	path string
}

func NewTmpFile(dir string) *TmpFile {
	return &TmpFile{
		dir: dir,
	}
}

func (f TmpFile) Path() string {
	return f.path
}

func (f *TmpFile) Open() (*os.File, error) {
	d, err := os.MkdirTemp(f.dir, "splititer")
	if err != nil {
		return nil, err
	}
	f.path = filepath.Join(d, "out")
	return os.Create(f.path)
}

func intoExecCmds(ctx context.Context, cmds []*Cmd) ([]*exec.Cmd, error) {
	if len(cmds) == 0 {
		return nil, fmt.Errorf("%w: no cmds", ErrRun)
	}
	xs := make([]*exec.Cmd, len(cmds))
	for i, c := range cmds {
		x, err := c.intoExecCmd(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to convert cmds[%d] to exec.Cmd", err, i)
		}
		xs[i] = x
	}
	return xs, nil
}

// run runs cmds as a pipeline.
func run(ctx context.Context, stdin io.Reader, stdout io.Writer, cmds []*Cmd) error {
	xs, err := intoExecCmds(ctx, cmds)
	if err != nil {
		return err
	}
	if len(xs) == 1 {
		x := xs[0]
		x.Stdin = stdin
		x.Stdout = stdout
		x.Stderr = os.Stderr
		return x.Run()
	}

	cmd, err := ex.NewPipedCmd(xs...)
	if err != nil {
		return err
	}
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(ctx); err != nil {
		return err
	}
	return cmd.Wait()
}

type Pipeline struct {
	cmds  []*Cmd
	stdin io.Reader
	dir   string
	path  string
}

func NewPipedCmd(dir string, stdin io.Reader, cmd ...*Cmd) *Pipeline {
	return &Pipeline{
		cmds:  cmd,
		dir:   dir,
		stdin: stdin,
	}
}

// Path returns the file where the output of the last Run was written.
func (p Pipeline) Path() string {
	return p.path
}

func (p *Pipeline) Run(ctx context.Context) error {
	stdoutFile := NewTmpFile(p.dir)
	stdout, err := stdoutFile.Open()
	if err != nil {
		return err
	}
	defer stdout.Close()

	p.path = stdoutFile.Path()
	slog.Debug("exec pipeline", slog.Int("len", len(p.cmds)), slog.String("out", p.path))
	return run(ctx, p.stdin, stdout, p.cmds)
}

// Predicate tests a record by piping it through commands.
// The record matches if the pipeline exits with status 0
// and does not match if it exits with status 1.
type Predicate struct {
	cmds []*Cmd
}

func NewPredicate(cmd ...*Cmd) *Predicate {
	return &Predicate{
		cmds: cmd,
	}
}

func (p *Predicate) Test(ctx context.Context, record []byte) (bool, error) {
	err := run(ctx, bytes.NewReader(record), io.Discard, p.cmds)
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return false, nil
	}
	return false, errors.Join(ErrPredicate, err)
}
