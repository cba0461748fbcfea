package flagx

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestProvider_OnlyVisitedFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.StringP("address", "a", ":8080", "")
	fs.Int("ttl", 15, "")
	fs.String("unmapped", "", "")
	fs.String("level", "info", "")

	require.NoError(t, fs.Parse([]string{"-a", ":9090", "--ttl=30", "--unmapped", "x"}))

	got, err := Provider(fs, map[string]string{
		"address": "http_address",
		"ttl":     "jwt.access_ttl",
		"level":   "log.level",
	}).Read()
	require.NoError(t, err)

	// unmapped has no key and level was never set
	want := map[string]any{
		"http_address": ":9090",
		"jwt":          map[string]any{"access_ttl": "30"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("provider mismatch (-want +got):\n%s", diff)
	}
}

func TestProvider_ReadBytesUnsupported(t *testing.T) {
	_, err := FlagProvider{}.ReadBytes()
	require.Error(t, err)
}
