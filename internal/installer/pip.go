package installer

import (
	"context"
	"fmt"

	"github.com/jelmer/ognibuild-sub000/internal/deps"
	"github.com/jelmer/ognibuild-sub000/internal/helpers"
	"github.com/rs/zerolog"
)

// Pip installs Python modules with pip. All three scopes are supported:
// global installs system-wide, user passes --user, vendor targets the
// project's .venv.
type Pip struct {
	runner     helpers.CommandRunner
	projectDir string
	logger     *zerolog.Logger
}

// NewPip creates a pip-backed installer rooted at projectDir.
func NewPip(runner helpers.CommandRunner, projectDir string, log *zerolog.Logger) *Pip {
	return &Pip{runner: runner, projectDir: projectDir, logger: log}
}

// Name implements Installer.
func (p *Pip) Name() string { return "pip" }

func (p *Pip) commandFor(dep deps.PythonModule, scope deps.Scope) []string {
	python := dep.Python
	if python == "" {
		python = "python3"
	}
	switch scope {
	case deps.ScopeGlobal:
		return []string{python, "-m", "pip", "install", dep.Module}
	case deps.ScopeUser:
		return []string{python, "-m", "pip", "install", "--user", dep.Module}
	case deps.ScopeVendor:
		return []string{".venv/bin/python", "-m", "pip", "install", dep.Module}
	default:
		return nil
	}
}

// Install implements Installer.
func (p *Pip) Install(ctx context.Context, dep deps.Dependency, scope deps.Scope) error {
	pydep, ok := dep.(deps.PythonModule)
	if !ok {
		return ErrUnknownDependencyFamily
	}

	argv := p.commandFor(pydep, scope)
	if argv == nil {
		return fmt.Errorf("pip cannot install into %s scope: %w", scope, ErrUnsupportedScope)
	}

	p.logger.Info().
		Str("module", pydep.Module).
		Str("scope", scope.String()).
		Msg("installing via pip")

	var err error
	if scope == deps.ScopeVendor {
		_, err = p.runner.RunCommandInDir(ctx, p.projectDir, argv[0], argv[1:]...)
	} else {
		_, err = p.runner.RunCommand(ctx, argv[0], argv[1:]...)
	}
	if err != nil {
		return fmt.Errorf("pip install %s: %w", pydep.Module, err)
	}
	return nil
}

// Explain implements Installer.
func (p *Pip) Explain(ctx context.Context, dep deps.Dependency, scope deps.Scope) (Explanation, error) {
	pydep, ok := dep.(deps.PythonModule)
	if !ok {
		return Explanation{}, ErrUnknownDependencyFamily
	}

	argv := p.commandFor(pydep, scope)
	if argv == nil {
		return Explanation{}, fmt.Errorf("pip cannot install into %s scope: %w", scope, ErrUnsupportedScope)
	}

	return Explanation{
		Message: fmt.Sprintf("install Python module %s with pip", pydep.Module),
		Command: argv,
	}, nil
}
