package problems

import (
	"regexp"
	"strings"
)

// lineMatcher turns one matching output line into a Problem.
type lineMatcher struct {
	re    *regexp.Regexp
	build func(m []string) Problem
}

var lineMatchers = []lineMatcher{
	{
		re: regexp.MustCompile(`^(?:.+: )?([^ :]+): (?:command |C)?not found$`),
		build: func(m []string) Problem {
			if strings.HasPrefix(m[1], "./configure") || m[1] == "configure" {
				return MissingConfigure{}
			}
			return MissingCommand{Command: m[1]}
		},
	},
	{
		re: regexp.MustCompile(`^make(?:\[\d+\])?: ([^ :]+): Command not found$`),
		build: func(m []string) Problem {
			return MissingCommand{Command: m[1]}
		},
	},
	{
		re: regexp.MustCompile(`fatal error: ([^:]+\.h): No such file or directory$`),
		build: func(m []string) Problem {
			return MissingCHeader{Header: m[1]}
		},
	},
	{
		re: regexp.MustCompile(`^(?:configure: error: )?(?:No package '([^']+)' found|Package '([^']+)'.* not found)`),
		build: func(m []string) Problem {
			module := m[1]
			if module == "" {
				module = m[2]
			}
			return MissingPkgConfig{Module: module}
		},
	},
	{
		re: regexp.MustCompile(`Package requirements \(([^ )]+) >= ([^)]+)\) were not met`),
		build: func(m []string) Problem {
			return MissingPkgConfig{Module: m[1], MinVersion: m[2]}
		},
	},
	{
		re: regexp.MustCompile(`ld: cannot find -l([^ :]+)`),
		build: func(m []string) Problem {
			return MissingCLibrary{Library: m[1]}
		},
	},
	{
		re: regexp.MustCompile(`ModuleNotFoundError: No module named '([^']+)'`),
		build: func(m []string) Problem {
			return MissingPythonModule{Module: m[1]}
		},
	},
	{
		re: regexp.MustCompile(`Can't locate ([^ ]+)\.pm in @INC`),
		build: func(m []string) Problem {
			return MissingPerlModule{Module: strings.ReplaceAll(m[1], "/", "::")}
		},
	},
	{
		re: regexp.MustCompile(`Error: Cannot find module '([^']+)'`),
		build: func(m []string) Problem {
			return MissingNodePackage{Name: m[1]}
		},
	},
	{
		re: regexp.MustCompile(`(?:cannot find package "([^"]+)" in any of|no required module provides package ([^ ;:]+))`),
		build: func(m []string) Problem {
			path := m[1]
			if path == "" {
				path = m[2]
			}
			return MissingGoPackage{ImportPath: path}
		},
	},
	{
		re: regexp.MustCompile(`cannot find input file: '?([^' ]+)'?$`),
		build: func(m []string) Problem {
			return MissingAutomakeInput{Path: m[1]}
		},
	},
	{
		re: regexp.MustCompile(`configure: error: (?:\*\*\* )?([A-Za-z0-9_.+-]+)(?: version ([0-9][^ ]*))?(?: or (?:higher|newer|later))? (?:is required|not found|was not found|could not be found)`),
		build: func(m []string) Problem {
			return MissingVagueDependency{Name: m[1], MinVersion: m[2]}
		},
	},
	{
		re: regexp.MustCompile(`No such file or directory: '([^']+)'`),
		build: func(m []string) Problem {
			return MissingFile{Path: m[1]}
		},
	},
}

// AnalyzeLines scans captured output for a recognizable failure, most
// recent line first, and returns the structured problem or nil. Only the
// trailing window of the output is inspected; failures virtually always
// sit at the end of a build log.
func AnalyzeLines(lines []string) Problem {
	const window = 200

	start := 0
	if len(lines) > window {
		start = len(lines) - window
	}

	for i := len(lines) - 1; i >= start; i-- {
		line := strings.TrimRight(lines[i], "\r")
		for _, matcher := range lineMatchers {
			if m := matcher.re.FindStringSubmatch(line); m != nil {
				return matcher.build(m)
			}
		}
	}
	return nil
}
