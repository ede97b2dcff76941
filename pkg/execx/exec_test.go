package execx_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/berquerant/splititer/pkg/execx"
	"github.com/stretchr/testify/assert"
)

func TestPredicate(t *testing.T) {
	for _, tc := range []struct {
		title  string
		cmds   []*execx.Cmd
		record string
		want   bool
		err    error
	}{
		{
			title:  "match",
			cmds:   []*execx.Cmd{execx.NewShellCmd("bash", "grep -q a")},
			record: "abc\n",
			want:   true,
		},
		{
			title:  "not match",
			cmds:   []*execx.Cmd{execx.NewShellCmd("bash", "grep -q z")},
			record: "abc\n",
		},
		{
			title:  "args",
			cmds:   []*execx.Cmd{execx.NewCmd("grep", "-q", "b")},
			record: "abc\n",
			want:   true,
		},
		{
			title: "pipeline match",
			cmds: []*execx.Cmd{
				execx.NewShellCmd("bash", "tr a-z A-Z"),
				execx.NewShellCmd("bash", "grep -q ABC"),
			},
			record: "abc\n",
			want:   true,
		},
		{
			title:  "failure",
			cmds:   []*execx.Cmd{execx.NewShellCmd("bash", "exit 2")},
			record: "abc\n",
			err:    execx.ErrPredicate,
		},
		{
			title: "no cmds",
			err:   execx.ErrRun,
		},
	} {
		t.Run(tc.title, func(t *testing.T) {
			got, err := execx.NewPredicate(tc.cmds...).Test(context.TODO(), []byte(tc.record))
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPipeline(t *testing.T) {
	p := execx.NewPipedCmd(
		t.TempDir(),
		strings.NewReader("a\nb\nc\n"),
		execx.NewShellCmd("bash", "grep -v b"),
		execx.NewShellCmd("bash", "tr a-z A-Z"),
	)
	if !assert.Nil(t, p.Run(context.TODO())) {
		return
	}
	got, err := os.ReadFile(p.Path())
	assert.Nil(t, err)
	assert.Equal(t, "A\nC\n", string(got))
}
