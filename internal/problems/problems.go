// Package problems defines the structured build failures the retry engine
// acts on. Problems are immutable values; Key() gives structural identity
// so the engine can detect recurrence and cycles.
package problems

import "fmt"

// Problem is a diagnosed build failure.
type Problem interface {
	// Kind returns the closed-set tag for this problem class.
	Kind() string

	// Key returns a stable identifier combining the kind and the
	// distinguishing fields. Two problems with equal keys are the same
	// failure.
	Key() string

	// String is a human-readable description.
	String() string
}

// MissingCommand means a required executable was not found on PATH.
type MissingCommand struct {
	Command string
}

func (p MissingCommand) Kind() string   { return "missing-command" }
func (p MissingCommand) Key() string    { return "missing-command:" + p.Command }
func (p MissingCommand) String() string { return fmt.Sprintf("missing command: %s", p.Command) }

// MissingFile means a required file, often a header, was not found.
type MissingFile struct {
	Path string
}

func (p MissingFile) Kind() string   { return "missing-file" }
func (p MissingFile) Key() string    { return "missing-file:" + p.Path }
func (p MissingFile) String() string { return fmt.Sprintf("missing file: %s", p.Path) }

// MissingCHeader means a #include could not be satisfied.
type MissingCHeader struct {
	Header string
}

func (p MissingCHeader) Kind() string   { return "missing-c-header" }
func (p MissingCHeader) Key() string    { return "missing-c-header:" + p.Header }
func (p MissingCHeader) String() string { return fmt.Sprintf("missing C header: %s", p.Header) }

// MissingPkgConfig means pkg-config could not find a module.
type MissingPkgConfig struct {
	Module     string
	MinVersion string
}

func (p MissingPkgConfig) Kind() string { return "missing-pkg-config" }

func (p MissingPkgConfig) Key() string {
	if p.MinVersion == "" {
		return "missing-pkg-config:" + p.Module
	}
	return fmt.Sprintf("missing-pkg-config:%s>=%s", p.Module, p.MinVersion)
}

func (p MissingPkgConfig) String() string {
	if p.MinVersion == "" {
		return fmt.Sprintf("missing pkg-config module: %s", p.Module)
	}
	return fmt.Sprintf("missing pkg-config module: %s (>= %s)", p.Module, p.MinVersion)
}

// MissingCLibrary means the linker could not find -l<Library>.
type MissingCLibrary struct {
	Library string
}

func (p MissingCLibrary) Kind() string   { return "missing-c-library" }
func (p MissingCLibrary) Key() string    { return "missing-c-library:" + p.Library }
func (p MissingCLibrary) String() string { return fmt.Sprintf("missing C library: %s", p.Library) }

// MissingPythonModule means a Python import failed.
type MissingPythonModule struct {
	Module string
	Python string
}

func (p MissingPythonModule) Kind() string { return "missing-python-module" }

func (p MissingPythonModule) Key() string {
	python := p.Python
	if python == "" {
		python = "python3"
	}
	return fmt.Sprintf("missing-python-module:%s:%s", python, p.Module)
}

func (p MissingPythonModule) String() string {
	return fmt.Sprintf("missing Python module: %s", p.Module)
}

// MissingPerlModule means a Perl use/require failed.
type MissingPerlModule struct {
	Module string
}

func (p MissingPerlModule) Kind() string { return "missing-perl-module" }
func (p MissingPerlModule) Key() string  { return "missing-perl-module:" + p.Module }
func (p MissingPerlModule) String() string {
	return fmt.Sprintf("missing Perl module: %s", p.Module)
}

// MissingNodePackage means a node require/import failed.
type MissingNodePackage struct {
	Name string
}

func (p MissingNodePackage) Kind() string { return "missing-node-package" }
func (p MissingNodePackage) Key() string  { return "missing-node-package:" + p.Name }
func (p MissingNodePackage) String() string {
	return fmt.Sprintf("missing node package: %s", p.Name)
}

// MissingGoPackage means a Go import could not be resolved.
type MissingGoPackage struct {
	ImportPath string
}

func (p MissingGoPackage) Kind() string { return "missing-go-package" }
func (p MissingGoPackage) Key() string  { return "missing-go-package:" + p.ImportPath }
func (p MissingGoPackage) String() string {
	return fmt.Sprintf("missing Go package: %s", p.ImportPath)
}

// MissingVagueDependency is a loosely worded "X not found" from configure
// scripts and similar tooling.
type MissingVagueDependency struct {
	Name       string
	MinVersion string
}

func (p MissingVagueDependency) Kind() string { return "missing-vague-dependency" }

func (p MissingVagueDependency) Key() string {
	if p.MinVersion == "" {
		return "missing-vague-dependency:" + p.Name
	}
	return fmt.Sprintf("missing-vague-dependency:%s>=%s", p.Name, p.MinVersion)
}

func (p MissingVagueDependency) String() string {
	return fmt.Sprintf("missing dependency: %s", p.Name)
}

// MissingConfigure means an autotools project is missing its generated
// configure script and needs autoreconf.
type MissingConfigure struct{}

func (p MissingConfigure) Kind() string   { return "missing-configure" }
func (p MissingConfigure) Key() string    { return "missing-configure" }
func (p MissingConfigure) String() string { return "missing ./configure script" }

// MissingAutomakeInput means automake could not find an input file such as
// Makefile.in; regenerating the autotools output usually repairs it.
type MissingAutomakeInput struct {
	Path string
}

func (p MissingAutomakeInput) Kind() string { return "missing-automake-input" }
func (p MissingAutomakeInput) Key() string  { return "missing-automake-input:" + p.Path }
func (p MissingAutomakeInput) String() string {
	return fmt.Sprintf("missing automake input: %s", p.Path)
}
