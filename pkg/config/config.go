package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
)

var (
	ErrConfig = errors.New("Config")
)

// Stdio is the output path that means the config Writer.
const Stdio = "-"

func NewConfig(
	r io.Reader,
	w io.Writer,
	pattern string,
	cmd, filter []string,
	shell string,
) *Config {
	return &Config{
		Regexp:  pattern,
		Cmd:     cmd,
		Filter:  filter,
		Shell:   shell,
		TrueOut: Stdio,
		Reader:  r,
		Writer:  w,
	}
}

type Config struct {
	Debug   bool
	Invert  bool
	Shell   string
	WorkDir string

	// Predicate, exactly one of them.
	Regexp        string
	Cmd           []string
	PredicateArgs []string

	Filter   []string
	Input    string
	TrueOut  string
	FalseOut string

	Reader  io.Reader      `json:"-"`
	Writer  io.Writer      `json:"-"`
	Pattern *regexp.Regexp `json:"-"`
	TempDir string
}

func (c *Config) Init(args []string) error {
	if err := c.setPredicate(args); err != nil {
		return err
	}
	return c.setTempDir()
}

func (c *Config) Close() error {
	if c.WorkDir == "" {
		return os.RemoveAll(c.TempDir)
	}
	return nil
}

func (c *Config) setTempDir() error {
	if d := c.WorkDir; d != "" {
		c.TempDir = d
		return nil
	}
	d, err := os.MkdirTemp(os.TempDir(), "splititer")
	if err != nil {
		return err
	}
	c.TempDir = d
	return nil
}

func (c *Config) setPredicate(args []string) error {
	c.PredicateArgs = args

	var n int
	if c.Regexp != "" {
		n++
	}
	if len(c.Cmd) > 0 {
		n++
	}
	if len(c.PredicateArgs) > 0 {
		n++
	}
	switch n {
	case 0:
		return fmt.Errorf("%w: no predicate", ErrConfig)
	case 1:
	default:
		return fmt.Errorf("%w: too many predicates", ErrConfig)
	}

	if c.Regexp != "" {
		p, err := regexp.Compile(c.Regexp)
		if err != nil {
			return fmt.Errorf("%w: invalid regexp: %w", ErrConfig, err)
		}
		c.Pattern = p
	}
	return nil
}

// OpenInput opens the input file, or returns Reader if no input file is set.
func (c Config) OpenInput() (io.ReadCloser, error) {
	if c.Input == "" || c.Input == Stdio {
		return io.NopCloser(c.Reader), nil
	}
	return os.Open(c.Input)
}

// OpenOutput opens path for writing.
// Stdio means Writer and an empty path discards the output.
func (c Config) OpenOutput(path string) (io.WriteCloser, error) {
	switch path {
	case "":
		return nopWriteCloser{Writer: io.Discard}, nil
	case Stdio:
		return nopWriteCloser{Writer: c.Writer}, nil
	default:
		return os.Create(path)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func (c Config) SetupLogger(w io.Writer) {
	level := slog.LevelInfo
	if c.Debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})
	slog.SetDefault(slog.New(handler))
}
