package installer

import (
	"context"
	"fmt"

	"github.com/jelmer/ognibuild-sub000/internal/deps"
	"github.com/jelmer/ognibuild-sub000/internal/helpers"
	"github.com/rs/zerolog"
)

// Cpan installs Perl modules with the cpan client. Only the global scope
// is supported; local::lib setups vary too much to automate safely.
type Cpan struct {
	runner helpers.CommandRunner
	logger *zerolog.Logger
}

// NewCpan creates a cpan-backed installer.
func NewCpan(runner helpers.CommandRunner, log *zerolog.Logger) *Cpan {
	return &Cpan{runner: runner, logger: log}
}

// Name implements Installer.
func (c *Cpan) Name() string { return "cpan" }

// Install implements Installer.
func (c *Cpan) Install(ctx context.Context, dep deps.Dependency, scope deps.Scope) error {
	perldep, ok := dep.(deps.PerlModule)
	if !ok {
		return ErrUnknownDependencyFamily
	}
	if scope != deps.ScopeGlobal {
		return fmt.Errorf("cpan cannot install into %s scope: %w", scope, ErrUnsupportedScope)
	}

	c.logger.Info().Str("module", perldep.Module).Msg("installing via cpan")

	if _, err := c.runner.RunCommand(ctx, "cpan", "-i", perldep.Module); err != nil {
		return fmt.Errorf("cpan install %s: %w", perldep.Module, err)
	}
	return nil
}

// Explain implements Installer.
func (c *Cpan) Explain(ctx context.Context, dep deps.Dependency, scope deps.Scope) (Explanation, error) {
	perldep, ok := dep.(deps.PerlModule)
	if !ok {
		return Explanation{}, ErrUnknownDependencyFamily
	}
	if scope != deps.ScopeGlobal {
		return Explanation{}, fmt.Errorf("cpan cannot install into %s scope: %w", scope, ErrUnsupportedScope)
	}

	return Explanation{
		Message: fmt.Sprintf("install Perl module %s with cpan", perldep.Module),
		Command: []string{"cpan", "-i", perldep.Module},
	}, nil
}
