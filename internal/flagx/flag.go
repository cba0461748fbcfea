// Package flagx contains helpers for sharing the process command line
// between several flag consumers.
package flagx

import (
	"strings"

	"github.com/spf13/pflag"
)

// FilterArgs returns only those arguments that belong to flags defined on fs,
// together with their values. Anything else (foreign flags, positionals) is
// dropped, so fs can be parsed with ContinueOnError without tripping over
// flags owned by another component (for example the go test runner).
//
// Both the shorthand (-a) and the long form (--http-address) are recognised,
// either as a separate value ("-a :8080") or combined ("--http-address=:8080").
// Boolean flags never consume the following argument.
func FilterArgs(args []string, fs *pflag.FlagSet) []string {
	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		name, _, hasValue := strings.Cut(arg, "=")
		f := lookup(fs, name)
		if f == nil {
			continue
		}

		filtered = append(filtered, arg)
		if hasValue || f.Value.Type() == "bool" {
			continue
		}

		// value follows as a separate argument unless it looks like a flag
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

func lookup(fs *pflag.FlagSet, name string) *pflag.Flag {
	switch {
	case strings.HasPrefix(name, "--"):
		return fs.Lookup(strings.TrimPrefix(name, "--"))
	case len(name) == 2:
		return fs.ShorthandLookup(name[1:])
	}
	return nil
}
