// Package installer turns abstract capability requirements into installed
// packages. Installers compose into a stack: each member either handles a
// requirement, declines it as an unknown family, or fails hard.
package installer

import (
	"context"
	"strings"

	"github.com/jelmer/ognibuild-sub000/internal/deps"
)

// ErrUnknownDependencyFamily is returned when an installer does not
// recognize the family of a requirement. A stack treats it as "try the
// next installer"; every other error is final.
var ErrUnknownDependencyFamily = deps.ErrUnknownDependencyFamily

// ErrUnsupportedScope is returned when an installer recognizes the
// requirement but cannot install into the requested scope.
var ErrUnsupportedScope = deps.ErrUnsupportedScope

// Explanation describes, without side effects, what installing a
// requirement would entail.
type Explanation struct {
	Message string
	// Command is the literal command line that would perform the
	// installation, if one exists.
	Command []string
}

func (e Explanation) String() string {
	if len(e.Command) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Command, " ")
}

// Installer installs requirements into a scope, or explains how to.
type Installer interface {
	// Name identifies the installer in logs and explanations.
	Name() string

	// Install makes the requirement present in the given scope.
	Install(ctx context.Context, dep deps.Dependency, scope deps.Scope) error

	// Explain reports what Install would do, without doing it.
	Explain(ctx context.Context, dep deps.Dependency, scope deps.Scope) (Explanation, error)
}

// InstallMissing installs only the requirements that are not already
// present, checking system presence and, for the vendor scope, project
// presence first. Already-satisfied requirements are skipped, which keeps
// repeated invocations idempotent.
func InstallMissing(ctx context.Context, inst Installer, session *deps.Session, reqs []deps.Dependency, scope deps.Scope) error {
	for _, dep := range reqs {
		present, err := dep.PresentOnSystem(ctx, session)
		if err != nil {
			return err
		}
		if !present && scope == deps.ScopeVendor {
			present, err = dep.PresentInProject(ctx, session)
			if err != nil {
				return err
			}
		}
		if present {
			continue
		}
		if err := inst.Install(ctx, dep, scope); err != nil {
			return err
		}
	}
	return nil
}
