package flagx

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
)

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.StringP("config", "c", "", "config file")
	fs.StringP("http-address", "a", "", "address")
	fs.BoolP("verbose", "v", false, "verbose")
	return fs
}

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "short flag with separate value",
			args: []string{"-c", "conf.yaml", "-x", "localhost"},
			want: []string{"-c", "conf.yaml"},
		},
		{
			name: "long flag with equals",
			args: []string{"--config=alt.yaml", "-x", "1"},
			want: []string{"--config=alt.yaml"},
		},
		{
			name: "long flag with separate value",
			args: []string{"--http-address", ":8080"},
			want: []string{"--http-address", ":8080"},
		},
		{
			name: "unknown flags ignored",
			args: []string{"-x", "1", "--y=2", "positional", "-test.v"},
			want: []string{},
		},
		{
			name: "flag without value at end is kept as-is",
			args: []string{"-c"},
			want: []string{"-c"},
		},
		{
			name: "flag followed by another flag (no value)",
			args: []string{"-c", "-a", ":9000"},
			want: []string{"-c", "-a", ":9000"},
		},
		{
			name: "bool flag does not swallow positional",
			args: []string{"-v", "positional", "-a", ":1"},
			want: []string{"-v", "-a", ":1"},
		},
		{
			name: "repeated flag is preserved in order",
			args: []string{"-c", "one.yaml", "--config", "two.yaml"},
			want: []string{"-c", "one.yaml", "--config", "two.yaml"},
		},
		{
			name: "empty args",
			args: []string{},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, newFlagSet())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterArgs_ResultParses(t *testing.T) {
	fs := newFlagSet()
	args := FilterArgs([]string{"-test.run", "X", "-a", ":7000", "--config=c.yaml"}, fs)

	assert.NoError(t, fs.Parse(args))

	addr, _ := fs.GetString("http-address")
	cfg, _ := fs.GetString("config")
	assert.Equal(t, ":7000", addr)
	assert.Equal(t, "c.yaml", cfg)
}
