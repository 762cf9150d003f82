package cmd

import (
	"fmt"
	"strings"

	"github.com/jelmer/ognibuild-sub000/internal/deps"
)

// ParseDependency parses a command-line dependency spec of the form
// family:name, optionally suffixed with >=version for the families that
// support a minimum version. A bare name is taken as a binary.
//
//	make
//	binary:ninja
//	pkg-config:zlib>=1.2
//	perl-module:YAML::XS
//	path:/usr/include/zlib.h
func ParseDependency(spec string) (deps.Dependency, error) {
	family, rest, found := strings.Cut(spec, ":")
	if !found {
		if spec == "" {
			return nil, fmt.Errorf("empty dependency spec")
		}
		return deps.Binary{Name: spec}, nil
	}
	if rest == "" {
		return nil, fmt.Errorf("dependency spec %q has no name", spec)
	}

	name, minVersion, _ := strings.Cut(rest, ">=")

	switch deps.Family(family) {
	case deps.FamilyBinary:
		return deps.Binary{Name: rest}, nil
	case deps.FamilyPkgConfig:
		return deps.PkgConfig{Module: name, MinVersion: minVersion}, nil
	case deps.FamilyPath:
		return deps.Path{Path: rest}, nil
	case deps.FamilyCLibrary:
		return deps.CLibrary{Name: rest}, nil
	case deps.FamilyPython:
		return deps.PythonModule{Module: rest}, nil
	case deps.FamilyPerl:
		return deps.PerlModule{Module: rest}, nil
	case deps.FamilyNode:
		return deps.NodePackage{Name: rest}, nil
	case deps.FamilyGo:
		return deps.GoPackage{ImportPath: rest}, nil
	case deps.FamilyVague:
		return deps.Vague{Name: name, MinVersion: minVersion}, nil
	default:
		return nil, fmt.Errorf("unknown dependency family %q in %q", family, spec)
	}
}

// ParseScope parses an installation scope name.
func ParseScope(name string) (deps.Scope, error) {
	switch name {
	case "global":
		return deps.ScopeGlobal, nil
	case "user":
		return deps.ScopeUser, nil
	case "vendor":
		return deps.ScopeVendor, nil
	default:
		return deps.ScopeGlobal, fmt.Errorf("unknown scope %q (want global, user or vendor)", name)
	}
}
