package installer

import (
	"context"
	"fmt"
	"os"

	"github.com/jelmer/ognibuild-sub000/internal/debian"
	"github.com/jelmer/ognibuild-sub000/internal/deps"
	"github.com/jelmer/ognibuild-sub000/internal/helpers"
	"github.com/rs/zerolog"
)

// RelationResolver maps an abstract requirement onto a concrete Debian
// package relation. internal/resolve provides the real implementation.
type RelationResolver interface {
	ResolveRelation(ctx context.Context, dep deps.Dependency) (debian.Relation, error)
}

// Apt installs requirements as Debian packages via apt-get. It only
// supports the global scope; apt has no notion of per-user installs.
type Apt struct {
	runner   helpers.CommandRunner
	resolver RelationResolver
	logger   *zerolog.Logger
}

// NewApt creates an apt-backed installer.
func NewApt(runner helpers.CommandRunner, resolver RelationResolver, log *zerolog.Logger) *Apt {
	return &Apt{runner: runner, resolver: resolver, logger: log}
}

// Name implements Installer.
func (a *Apt) Name() string { return "apt" }

func (a *Apt) commandFor(rel debian.Relation) []string {
	// Installing the first alternative satisfies the relation.
	argv := []string{"apt-get", "install", "-y", rel.Alternatives[0].Name}
	if os.Geteuid() != 0 {
		argv = append([]string{"sudo"}, argv...)
	}
	return argv
}

// Install implements Installer.
func (a *Apt) Install(ctx context.Context, dep deps.Dependency, scope deps.Scope) error {
	if scope != deps.ScopeGlobal {
		return fmt.Errorf("apt cannot install into %s scope: %w", scope, ErrUnsupportedScope)
	}

	rel, err := a.resolver.ResolveRelation(ctx, dep)
	if err != nil {
		return err
	}

	argv := a.commandFor(rel)
	a.logger.Info().
		Str("dependency", dep.Key()).
		Str("package", rel.String()).
		Msg("installing via apt")

	if _, err := a.runner.RunCommand(ctx, argv[0], argv[1:]...); err != nil {
		return fmt.Errorf("apt install %s: %w", rel.String(), err)
	}
	return nil
}

// Explain implements Installer.
func (a *Apt) Explain(ctx context.Context, dep deps.Dependency, scope deps.Scope) (Explanation, error) {
	if scope != deps.ScopeGlobal {
		return Explanation{}, fmt.Errorf("apt cannot install into %s scope: %w", scope, ErrUnsupportedScope)
	}

	rel, err := a.resolver.ResolveRelation(ctx, dep)
	if err != nil {
		return Explanation{}, err
	}

	return Explanation{
		Message: fmt.Sprintf("install Debian package %s", rel.String()),
		Command: a.commandFor(rel),
	}, nil
}
