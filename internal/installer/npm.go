package installer

import (
	"context"
	"fmt"

	"github.com/jelmer/ognibuild-sub000/internal/deps"
	"github.com/jelmer/ognibuild-sub000/internal/helpers"
	"github.com/rs/zerolog"
)

// Npm installs node packages. Global scope maps to npm install -g,
// vendor installs into the project's node_modules. npm has no
// per-user install mode.
type Npm struct {
	runner     helpers.CommandRunner
	projectDir string
	logger     *zerolog.Logger
}

// NewNpm creates an npm-backed installer rooted at projectDir.
func NewNpm(runner helpers.CommandRunner, projectDir string, log *zerolog.Logger) *Npm {
	return &Npm{runner: runner, projectDir: projectDir, logger: log}
}

// Name implements Installer.
func (n *Npm) Name() string { return "npm" }

func (n *Npm) commandFor(dep deps.NodePackage, scope deps.Scope) []string {
	switch scope {
	case deps.ScopeGlobal:
		return []string{"npm", "install", "-g", dep.Name}
	case deps.ScopeVendor:
		return []string{"npm", "install", dep.Name}
	default:
		return nil
	}
}

// Install implements Installer.
func (n *Npm) Install(ctx context.Context, dep deps.Dependency, scope deps.Scope) error {
	nodedep, ok := dep.(deps.NodePackage)
	if !ok {
		return ErrUnknownDependencyFamily
	}

	argv := n.commandFor(nodedep, scope)
	if argv == nil {
		return fmt.Errorf("npm cannot install into %s scope: %w", scope, ErrUnsupportedScope)
	}

	n.logger.Info().
		Str("package", nodedep.Name).
		Str("scope", scope.String()).
		Msg("installing via npm")

	var err error
	if scope == deps.ScopeVendor {
		_, err = n.runner.RunCommandInDir(ctx, n.projectDir, argv[0], argv[1:]...)
	} else {
		_, err = n.runner.RunCommand(ctx, argv[0], argv[1:]...)
	}
	if err != nil {
		return fmt.Errorf("npm install %s: %w", nodedep.Name, err)
	}
	return nil
}

// Explain implements Installer.
func (n *Npm) Explain(ctx context.Context, dep deps.Dependency, scope deps.Scope) (Explanation, error) {
	nodedep, ok := dep.(deps.NodePackage)
	if !ok {
		return Explanation{}, ErrUnknownDependencyFamily
	}

	argv := n.commandFor(nodedep, scope)
	if argv == nil {
		return Explanation{}, fmt.Errorf("npm cannot install into %s scope: %w", scope, ErrUnsupportedScope)
	}

	return Explanation{
		Message: fmt.Sprintf("install node package %s with npm", nodedep.Name),
		Command: argv,
	}, nil
}
