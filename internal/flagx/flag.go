// Package flagx lets several components share one command line: each one
// picks out only the flags it owns and parses them with its own FlagSet.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// FilterArgs keeps the allowed flags from args together with their values.
//
// Both "-name value" and "-name=value" (or "--name=value") are recognised.
// A token following an allowed flag is treated as its value unless it
// starts with "-". The result is never nil.
func FilterArgs(args []string, allowed ...string) []string {
	known := make(map[string]bool, len(allowed))
	for _, name := range allowed {
		known[name] = true
	}

	out := []string{}
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, found := strings.Cut(arg, "="); found && strings.HasPrefix(arg, "-") {
			if known[name] {
				out = append(out, arg)
			}
			continue
		}

		if !known[arg] {
			continue
		}
		out = append(out, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}

	return out
}

// StringValue returns the value of the last occurrence of any of the given
// flag names in args, or "" when none is present. Names are given without
// the leading dash, e.g. StringValue(args, "c", "config").
func StringValue(args []string, names ...string) string {
	dashed := make([]string, 0, len(names)*2)
	for _, n := range names {
		dashed = append(dashed, "-"+n, "--"+n)
	}

	var value string
	fs := flag.NewFlagSet("flagx", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	for _, n := range names {
		fs.StringVar(&value, n, "", "")
	}
	_ = fs.Parse(FilterArgs(args, dashed...))

	return value
}

// ConfigFile returns the JSON configuration path given with -c or -config.
func ConfigFile(args []string) string {
	return StringValue(args, "c", "config")
}

// EnvFile returns the dotenv path given with -env-file.
func EnvFile(args []string) string {
	return StringValue(args, "env-file")
}
