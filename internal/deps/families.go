package deps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Binary is an executable that must be found on PATH.
type Binary struct {
	Name string
}

func (d Binary) Family() Family { return FamilyBinary }
func (d Binary) Key() string    { return fmt.Sprintf("binary:%s", d.Name) }

func (d Binary) PresentOnSystem(ctx context.Context, session *Session) (bool, error) {
	return session.Runner.CommandExists(d.Name), nil
}

func (d Binary) PresentInProject(ctx context.Context, session *Session) (bool, error) {
	if session.ProjectDir == "" {
		return false, nil
	}
	// Vendored helper scripts commonly live under bin/ or node_modules/.bin/.
	for _, dir := range []string{"bin", filepath.Join("node_modules", ".bin")} {
		if _, err := os.Stat(filepath.Join(session.ProjectDir, dir, d.Name)); err == nil {
			return true, nil
		}
	}
	return false, nil
}

// PkgConfig is a pkg-config module, optionally with a minimum version.
type PkgConfig struct {
	Module     string
	MinVersion string
}

func (d PkgConfig) Family() Family { return FamilyPkgConfig }

func (d PkgConfig) Key() string {
	if d.MinVersion == "" {
		return fmt.Sprintf("pkg-config:%s", d.Module)
	}
	return fmt.Sprintf("pkg-config:%s>=%s", d.Module, d.MinVersion)
}

func (d PkgConfig) PresentOnSystem(ctx context.Context, session *Session) (bool, error) {
	if !session.Runner.CommandExists("pkg-config") {
		return false, nil
	}
	expr := d.Module
	if d.MinVersion != "" {
		expr = fmt.Sprintf("%s >= %s", d.Module, d.MinVersion)
	}
	_, err := session.Runner.RunCommand(ctx, "pkg-config", "--exists", expr)
	return err == nil, nil
}

func (d PkgConfig) PresentInProject(ctx context.Context, session *Session) (bool, error) {
	return false, nil
}

// Path is a file that must exist, typically a header or data file with a
// well-known absolute location.
type Path struct {
	Path string
}

func (d Path) Family() Family { return FamilyPath }
func (d Path) Key() string    { return fmt.Sprintf("path:%s", d.Path) }

func (d Path) PresentOnSystem(ctx context.Context, session *Session) (bool, error) {
	if filepath.IsAbs(d.Path) {
		_, err := os.Stat(d.Path)
		return err == nil, nil
	}
	for _, dir := range []string{"/usr/include", "/usr/local/include"} {
		if _, err := os.Stat(filepath.Join(dir, d.Path)); err == nil {
			return true, nil
		}
	}
	return false, nil
}

func (d Path) PresentInProject(ctx context.Context, session *Session) (bool, error) {
	if session.ProjectDir == "" || filepath.IsAbs(d.Path) {
		return false, nil
	}
	_, err := os.Stat(filepath.Join(session.ProjectDir, d.Path))
	return err == nil, nil
}

// CLibrary is a C shared or static library, named without the lib prefix.
type CLibrary struct {
	Name string
}

func (d CLibrary) Family() Family { return FamilyCLibrary }
func (d CLibrary) Key() string    { return fmt.Sprintf("clib:%s", d.Name) }

func (d CLibrary) PresentOnSystem(ctx context.Context, session *Session) (bool, error) {
	for _, dir := range []string{"/usr/lib", "/usr/lib/x86_64-linux-gnu", "/usr/local/lib", "/lib"} {
		for _, suffix := range []string{".so", ".a"} {
			if _, err := os.Stat(filepath.Join(dir, "lib"+d.Name+suffix)); err == nil {
				return true, nil
			}
		}
	}
	return false, nil
}

func (d CLibrary) PresentInProject(ctx context.Context, session *Session) (bool, error) {
	return false, nil
}

// PythonModule is an importable Python module.
type PythonModule struct {
	Module string
	// Python is the interpreter to check with; defaults to python3.
	Python string
}

func (d PythonModule) Family() Family { return FamilyPython }

func (d PythonModule) interpreter() string {
	if d.Python != "" {
		return d.Python
	}
	return "python3"
}

func (d PythonModule) Key() string {
	return fmt.Sprintf("python-module:%s:%s", d.interpreter(), d.Module)
}

func (d PythonModule) PresentOnSystem(ctx context.Context, session *Session) (bool, error) {
	if !session.Runner.CommandExists(d.interpreter()) {
		return false, nil
	}
	_, err := session.Runner.RunCommand(ctx, d.interpreter(), "-c", fmt.Sprintf("import %s", d.Module))
	return err == nil, nil
}

func (d PythonModule) PresentInProject(ctx context.Context, session *Session) (bool, error) {
	if session.ProjectDir == "" {
		return false, nil
	}
	python := filepath.Join(session.ProjectDir, ".venv", "bin", d.interpreter())
	if _, err := os.Stat(python); err != nil {
		return false, nil
	}
	_, err := session.Runner.RunCommand(ctx, python, "-c", fmt.Sprintf("import %s", d.Module))
	return err == nil, nil
}

// PerlModule is a loadable Perl module, e.g. "ExtUtils::MakeMaker".
type PerlModule struct {
	Module string
}

func (d PerlModule) Family() Family { return FamilyPerl }
func (d PerlModule) Key() string    { return fmt.Sprintf("perl-module:%s", d.Module) }

func (d PerlModule) PresentOnSystem(ctx context.Context, session *Session) (bool, error) {
	if !session.Runner.CommandExists("perl") {
		return false, nil
	}
	_, err := session.Runner.RunCommand(ctx, "perl", "-M"+d.Module, "-e", "1")
	return err == nil, nil
}

func (d PerlModule) PresentInProject(ctx context.Context, session *Session) (bool, error) {
	return false, nil
}

// NodePackage is an npm package.
type NodePackage struct {
	Name string
}

func (d NodePackage) Family() Family { return FamilyNode }
func (d NodePackage) Key() string    { return fmt.Sprintf("node-package:%s", d.Name) }

func (d NodePackage) PresentOnSystem(ctx context.Context, session *Session) (bool, error) {
	if !session.Runner.CommandExists("npm") {
		return false, nil
	}
	_, err := session.Runner.RunCommand(ctx, "npm", "ls", "-g", "--depth=0", d.Name)
	return err == nil, nil
}

func (d NodePackage) PresentInProject(ctx context.Context, session *Session) (bool, error) {
	if session.ProjectDir == "" {
		return false, nil
	}
	_, err := os.Stat(filepath.Join(session.ProjectDir, "node_modules", d.Name))
	return err == nil, nil
}

// GoPackage is a Go module/package import path.
type GoPackage struct {
	ImportPath string
}

func (d GoPackage) Family() Family { return FamilyGo }
func (d GoPackage) Key() string    { return fmt.Sprintf("go-package:%s", d.ImportPath) }

func (d GoPackage) PresentOnSystem(ctx context.Context, session *Session) (bool, error) {
	if !session.Runner.CommandExists("go") {
		return false, nil
	}
	_, err := session.Runner.RunCommand(ctx, "go", "list", d.ImportPath)
	return err == nil, nil
}

func (d GoPackage) PresentInProject(ctx context.Context, session *Session) (bool, error) {
	if session.ProjectDir == "" {
		return false, nil
	}
	_, err := session.Runner.RunCommandInDir(ctx, session.ProjectDir, "go", "list", "-m", d.ImportPath)
	return err == nil, nil
}

// Vague is a dependency known only by a loose upstream name, e.g. from a
// "configure: error: foo not found" message. Resolvers expand it into
// several concrete guesses.
type Vague struct {
	Name       string
	MinVersion string
}

func (d Vague) Family() Family { return FamilyVague }

func (d Vague) Key() string {
	if d.MinVersion == "" {
		return fmt.Sprintf("vague:%s", d.Name)
	}
	return fmt.Sprintf("vague:%s>=%s", d.Name, d.MinVersion)
}

// PresentOnSystem treats a matching binary or pkg-config module as
// evidence the vaguely named capability exists.
func (d Vague) PresentOnSystem(ctx context.Context, session *Session) (bool, error) {
	if session.Runner.CommandExists(d.Name) {
		return true, nil
	}
	return PkgConfig{Module: d.Name, MinVersion: d.MinVersion}.PresentOnSystem(ctx, session)
}

func (d Vague) PresentInProject(ctx context.Context, session *Session) (bool, error) {
	return false, nil
}
