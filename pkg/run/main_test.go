package run_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/berquerant/splititer/pkg/config"
	"github.com/berquerant/splititer/pkg/run"
	"github.com/stretchr/testify/assert"
)

const numbers = "1\n2\n3\n4\n5\n6\n7\n8\n9\n"

func TestRun(t *testing.T) {
	t.Run("false output", func(t *testing.T) {
		falseOut := filepath.Join(t.TempDir(), "false")
		var stdout bytes.Buffer
		c := config.NewConfig(strings.NewReader(numbers), &stdout, "[2468]", nil, nil, "bash")
		c.FalseOut = falseOut
		c.WorkDir = t.TempDir()
		c.Debug = true
		c.SetupLogger(os.Stderr)
		if !assert.Nil(t, c.Init(nil)) {
			return
		}
		assert.Nil(t, run.Main(c))
		assert.Equal(t, "2\n4\n6\n8\n", stdout.String())
		got, err := os.ReadFile(falseOut)
		assert.Nil(t, err)
		assert.Equal(t, "1\n3\n5\n7\n9\n", string(got))
	})

	t.Run("input file", func(t *testing.T) {
		input := filepath.Join(t.TempDir(), "input")
		assert.Nil(t, os.WriteFile(input, []byte("a\nb\n"), 0o600))
		var stdout bytes.Buffer
		c := config.NewConfig(nil, &stdout, "a", nil, nil, "bash")
		c.Input = input
		c.WorkDir = t.TempDir()
		if !assert.Nil(t, c.Init(nil)) {
			return
		}
		assert.Nil(t, run.Main(c))
		assert.Equal(t, "a\n", stdout.String())
	})

	for _, tc := range []struct {
		title  string
		c      *config.Config
		args   []string
		invert bool
		input  string
		want   string
		errMsg string
	}{
		{
			title: "empty input",
			c:     config.NewConfig(nil, nil, "a", nil, nil, "bash"),
			input: "",
			want:  "",
		},
		{
			title: "regexp",
			c:     config.NewConfig(nil, nil, "[2468]", nil, nil, "bash"),
			input: numbers,
			want:  "2\n4\n6\n8\n",
		},
		{
			title:  "invert",
			c:      config.NewConfig(nil, nil, "[2468]", nil, nil, "bash"),
			invert: true,
			input:  numbers,
			want:   "1\n3\n5\n7\n9\n",
		},
		{
			title: "no match",
			c:     config.NewConfig(nil, nil, "x", nil, nil, "bash"),
			input: numbers,
			want:  "",
		},
		{
			title: "cmd",
			c:     config.NewConfig(nil, nil, "", []string{`grep -q "[13]"`}, nil, "bash"),
			input: numbers,
			want:  "1\n3\n",
		},
		{
			title: "cmd pipeline",
			c: config.NewConfig(nil, nil, "", []string{
				`tr 1 x`,
				`grep -q x`,
			}, nil, "bash"),
			input: numbers,
			want:  "1\n",
		},
		{
			title: "args",
			c:     config.NewConfig(nil, nil, "", nil, nil, "bash"),
			args:  []string{"grep", "-q", "9"},
			input: numbers,
			want:  "9\n",
		},
		{
			title: "filter",
			c: config.NewConfig(nil, nil, "[2468]", nil, []string{
				`sort -r`,
			}, "bash"),
			input: numbers,
			want:  "8\n6\n4\n2\n",
		},
		{
			title: "filter2",
			c: config.NewConfig(nil, nil, "[2468]", nil, []string{
				`sort -r`,
				`head -n 2`,
			}, "bash"),
			input: numbers,
			want:  "8\n6\n",
		},
		{
			title:  "cmd fail",
			c:      config.NewConfig(nil, nil, "", []string{"exit 2"}, nil, "bash"),
			input:  numbers,
			errMsg: `exit status 2: record "1"`,
		},
		{
			title: "filter fail",
			c: config.NewConfig(nil, nil, "[2468]", nil, []string{
				`exit 3`,
			}, "bash"),
			input:  numbers,
			errMsg: "exit status 3",
		},
	} {
		t.Run(tc.title, func(t *testing.T) {
			var out bytes.Buffer
			tc.c.Reader = strings.NewReader(tc.input)
			tc.c.Writer = &out
			tc.c.Invert = tc.invert
			tc.c.WorkDir = t.TempDir()
			tc.c.Debug = true
			tc.c.SetupLogger(os.Stderr)
			if !assert.Nil(t, tc.c.Init(tc.args)) {
				return
			}
			err := run.Main(tc.c)
			if x := tc.errMsg; x != "" {
				assert.ErrorContains(t, err, x, "%v", err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tc.want, out.String())
		})
	}
}
