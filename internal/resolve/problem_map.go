package resolve

import (
	"github.com/jelmer/ognibuild-sub000/internal/deps"
	"github.com/jelmer/ognibuild-sub000/internal/problems"
)

// DependencyForProblem maps a structured build failure onto the
// capability requirement whose installation would address it. Problems
// that do not imply a missing dependency (for instance a missing
// generated configure script) return ok=false.
func DependencyForProblem(p problems.Problem) (deps.Dependency, bool) {
	switch prob := p.(type) {
	case problems.MissingCommand:
		return deps.Binary{Name: prob.Command}, true
	case problems.MissingFile:
		return deps.Path{Path: prob.Path}, true
	case problems.MissingCHeader:
		return deps.Path{Path: prob.Header}, true
	case problems.MissingPkgConfig:
		return deps.PkgConfig{Module: prob.Module, MinVersion: prob.MinVersion}, true
	case problems.MissingCLibrary:
		return deps.CLibrary{Name: prob.Library}, true
	case problems.MissingPythonModule:
		return deps.PythonModule{Module: prob.Module, Python: prob.Python}, true
	case problems.MissingPerlModule:
		return deps.PerlModule{Module: prob.Module}, true
	case problems.MissingNodePackage:
		return deps.NodePackage{Name: prob.Name}, true
	case problems.MissingGoPackage:
		return deps.GoPackage{ImportPath: prob.ImportPath}, true
	case problems.MissingVagueDependency:
		return deps.Vague{Name: prob.Name, MinVersion: prob.MinVersion}, true
	default:
		return nil, false
	}
}
