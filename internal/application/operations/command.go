package operations

import (
	domain "github.com/bryanwahyu/bearer-mcp/internal/domain/bearer"
)

// scanFixedFlags are appended to every scan: SAST + secrets, no ANSI colour,
// and test files included.
var scanFixedFlags = []string{"--scanner", "sast,secrets", "--no-color", "--skip-test=false"}

type flagMapping struct {
	param   string
	flag    string
	boolean bool
	path    bool
}

// scanOptionFlags is the canonical order of optional scan flags.
var scanOptionFlags = []flagMapping{
	{param: "format", flag: "--format"},
	{param: "severity", flag: "--severity"},
	{param: "rules", flag: "--only-rule"},
	{param: "skip_rules", flag: "--skip-rule"},
	{param: "output_file", flag: "--output", path: true},
	{param: "quiet", flag: "--quiet", boolean: true},
}

// BuildScan maps a validated argument set to `bearer scan` tokens. The order of
// the result never depends on map iteration order.
func BuildScan(target string, args domain.ArgumentSet, paths domain.PathResolver) (domain.CommandInvocation, error) {
	tokens := []string{"scan", target}
	tokens = append(tokens, scanFixedFlags...)

	for _, m := range scanOptionFlags {
		if m.boolean {
			if args.Bool(m.param) {
				tokens = append(tokens, m.flag)
			}
			continue
		}
		v := args.String(m.param)
		if v == "" {
			continue
		}
		if m.path {
			p, err := paths.Validate(v, false)
			if err != nil {
				return domain.CommandInvocation{}, err
			}
			v = p
		}
		tokens = append(tokens, m.flag, v)
	}

	return domain.CommandInvocation{Args: tokens, WorkDir: paths.WorkDir()}, nil
}

// BuildVersion returns the `bearer version` invocation.
func BuildVersion(workDir string) domain.CommandInvocation {
	return domain.CommandInvocation{Args: []string{"version"}, WorkDir: workDir}
}

// BuildInit runs `bearer init` inside dir instead of passing dir as an argument.
func BuildInit(dir string) domain.CommandInvocation {
	return domain.CommandInvocation{Args: []string{"init"}, WorkDir: dir}
}
