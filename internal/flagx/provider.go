package flagx

import (
	"errors"

	"github.com/knadh/koanf/maps"
	"github.com/spf13/pflag"
)

var errReadBytesNotSupported = errors.New("flagx: ReadBytes not supported by flag provider")

// FlagProvider feeds explicitly set flags into koanf. It satisfies
// koanf.Provider.
type FlagProvider map[string]any

func (p FlagProvider) ReadBytes() ([]byte, error) { return nil, errReadBytesNotSupported }

func (p FlagProvider) Read() (map[string]any, error) { return p, nil }

// Provider collects the flags set on fs whose names appear in keys and
// nests their values under the mapped, dot-separated configuration keys.
// Flags left at their default are skipped so they do not mask values from
// earlier sources.
func Provider(fs *pflag.FlagSet, keys map[string]string) FlagProvider {
	flat := map[string]any{}
	fs.Visit(func(f *pflag.Flag) {
		if key, ok := keys[f.Name]; ok {
			flat[key] = f.Value.String()
		}
	})
	return FlagProvider(maps.Unflatten(flat, "."))
}
