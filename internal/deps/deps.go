// Package deps defines the abstract capability requirements a build can
// have (a binary on PATH, a header, a pkg-config module, a language
// package) and how to check whether they are already satisfied, either
// system-wide or inside the current project.
package deps

import (
	"context"
	"errors"
	"fmt"

	"github.com/jelmer/ognibuild-sub000/internal/helpers"
)

// ErrUnknownDependencyFamily is returned when a resolver or installer
// does not recognize the family of a requirement. Callers treat it as
// "ask someone else", never as a hard failure by itself.
var ErrUnknownDependencyFamily = errors.New("unknown dependency family")

// ErrUnsupportedScope is returned when a requirement's family is
// recognized but the requested installation scope is not available.
var ErrUnsupportedScope = errors.New("unsupported installation scope")

// Family identifies the kind of a dependency. The set is closed: every
// concrete Dependency type reports exactly one of these tags and
// resolvers dispatch on them.
type Family string

const (
	FamilyBinary    Family = "binary"
	FamilyPkgConfig Family = "pkg-config"
	FamilyPath      Family = "path"
	FamilyCLibrary  Family = "clib"
	FamilyPython    Family = "python-module"
	FamilyPerl      Family = "perl-module"
	FamilyNode      Family = "node-package"
	FamilyGo        Family = "go-package"
	FamilyVague     Family = "vague"
)

// Scope says where an installation should land.
type Scope int

const (
	// ScopeGlobal installs system-wide.
	ScopeGlobal Scope = iota
	// ScopeUser installs into the invoking user's home directory.
	ScopeUser
	// ScopeVendor installs into the project tree itself.
	ScopeVendor
)

func (s Scope) String() string {
	switch s {
	case ScopeGlobal:
		return "global"
	case ScopeUser:
		return "user"
	case ScopeVendor:
		return "vendor"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// Session carries the execution context presence checks and resolvers
// need: how to run commands and where the project lives. It is a plain
// value owned by one engine invocation; nothing in it is global.
type Session struct {
	Runner     helpers.CommandRunner
	ProjectDir string
}

// NewSession creates a session for the given project directory using the
// default command runner.
func NewSession(projectDir string) *Session {
	return &Session{
		Runner:     helpers.NewOSCommandRunner(),
		ProjectDir: projectDir,
	}
}

// Dependency is an abstract capability requirement. Implementations are
// immutable value types; equality is structural via Key().
type Dependency interface {
	// Family returns the closed-set tag for this dependency kind.
	Family() Family

	// Key returns a stable identifier usable for map keys and logs.
	Key() string

	// PresentOnSystem reports whether the requirement is already
	// satisfied system-wide. Absence is a normal outcome, not an error.
	PresentOnSystem(ctx context.Context, session *Session) (bool, error)

	// PresentInProject reports whether the requirement is satisfied by
	// the project's own local environment (vendored modules, a local
	// virtualenv and so on).
	PresentInProject(ctx context.Context, session *Session) (bool, error)
}
