// Package flagx helps several independent flag sets share one os.Args.
//
// Each config layer parses only the flags it owns; everything else on the
// command line is dropped before flag.FlagSet.Parse sees it, so unknown
// flags never abort the program.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// ConfigFileFlags are the flags that select a config file.
var ConfigFileFlags = []string{"-c", "-config", "--config"}

// FilterArgs keeps only the flags listed in allowed, together with their
// values. Both "-f value" and "-f=value" spellings are recognised. A token
// after an allowed flag is taken as its value unless it starts with "-".
//
// The result is never nil.
func FilterArgs(args []string, allowed []string) []string {
	set := make(map[string]bool, len(allowed))
	for _, name := range allowed {
		set[name] = true
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		name, inline := splitFlag(args[i])
		if !set[name] {
			continue
		}
		out = append(out, args[i])
		if inline {
			continue
		}
		if next := i + 1; next < len(args) && !strings.HasPrefix(args[next], "-") {
			out = append(out, args[next])
			i = next
		}
	}
	return out
}

// splitFlag returns the flag name of arg and whether the value is attached
// with '='. Non-flag tokens return an empty name.
func splitFlag(arg string) (string, bool) {
	if !strings.HasPrefix(arg, "-") {
		return "", false
	}
	if name, _, ok := strings.Cut(arg, "="); ok {
		return name, true
	}
	return arg, false
}

// ConfigFile extracts the config file path given with -c, -config or
// --config. The last occurrence wins; "" means no file was requested.
func ConfigFile(args []string) string {
	var path string

	fs := flag.NewFlagSet("config-file", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, ConfigFileFlags))

	return path
}
