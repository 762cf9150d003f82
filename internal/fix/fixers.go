package fix

import (
	"context"
	"errors"

	"github.com/jelmer/ognibuild-sub000/internal/deps"
	"github.com/jelmer/ognibuild-sub000/internal/helpers"
	"github.com/jelmer/ognibuild-sub000/internal/installer"
	"github.com/jelmer/ognibuild-sub000/internal/problems"
	"github.com/jelmer/ognibuild-sub000/internal/resolve"
	"github.com/rs/zerolog"
)

// CommandBuildRunner runs a fixed command line in a working directory
// and diagnoses failures from its combined output.
type CommandBuildRunner struct {
	runner helpers.CommandRunner
	dir    string
	argv   []string
	logger *zerolog.Logger
}

// NewCommandBuildRunner creates a Runner for the given command line.
// argv must be non-empty.
func NewCommandBuildRunner(runner helpers.CommandRunner, dir string, argv []string, log *zerolog.Logger) *CommandBuildRunner {
	return &CommandBuildRunner{runner: runner, dir: dir, argv: argv, logger: log}
}

// Run implements Runner. A missing executable is reported as a
// missing-command problem rather than an error, so the fixer chain gets
// a chance to install it. Any other failure to spawn is fatal.
func (r *CommandBuildRunner) Run(ctx context.Context) (Outcome, error) {
	r.logger.Debug().Strs("argv", r.argv).Str("dir", r.dir).Msg("running command")

	stdout, stderr, err := r.runner.RunCommandInDirWithOutput(ctx, r.dir, r.argv[0], r.argv[1:]...)
	lines := append(helpers.SplitLines(stdout), helpers.SplitLines(stderr)...)

	if err == nil {
		return Outcome{Success: true, Lines: lines}, nil
	}
	if helpers.IsNotFound(err) {
		return Outcome{Problem: problems.MissingCommand{Command: r.argv[0]}, Lines: lines}, nil
	}
	if r.runner.GetExitCode(err) < 0 {
		// Not an exit status: the process could not be run at all.
		return Outcome{}, err
	}
	return Outcome{Problem: problems.AnalyzeLines(lines), Lines: lines}, nil
}

// InstallFixer is the generic repair: map the problem to the capability
// requirement it implies and install it through the installer stack.
type InstallFixer struct {
	installer installer.Installer
	session   *deps.Session
	scope     deps.Scope
	logger    *zerolog.Logger
}

// NewInstallFixer creates the dependency-installing fixer.
func NewInstallFixer(inst installer.Installer, session *deps.Session, scope deps.Scope, log *zerolog.Logger) *InstallFixer {
	return &InstallFixer{installer: inst, session: session, scope: scope, logger: log}
}

// Name implements Fixer.
func (f *InstallFixer) Name() string { return "install-deps" }

// CanFix implements Fixer.
func (f *InstallFixer) CanFix(p problems.Problem) bool {
	_, ok := resolve.DependencyForProblem(p)
	return ok
}

// Fix implements Fixer. Presence is checked first: installing a
// requirement that is already satisfied would report a change that
// changed nothing, which the engine treats as flapping.
func (f *InstallFixer) Fix(ctx context.Context, p problems.Problem) (bool, error) {
	dep, ok := resolve.DependencyForProblem(p)
	if !ok {
		return false, nil
	}

	present, err := dep.PresentOnSystem(ctx, f.session)
	if err != nil {
		return false, err
	}
	if !present && f.scope == deps.ScopeVendor {
		present, err = dep.PresentInProject(ctx, f.session)
		if err != nil {
			return false, err
		}
	}
	if present {
		return false, nil
	}

	if err := f.installer.Install(ctx, dep, f.scope); err != nil {
		if errors.Is(err, deps.ErrUnknownDependencyFamily) || errors.Is(err, deps.ErrUnsupportedScope) {
			f.logger.Debug().Str("dependency", dep.Key()).Err(err).Msg("declining to install")
			return false, nil
		}
		return false, err
	}
	f.logger.Info().Str("dependency", dep.Key()).Msg("installed missing dependency")
	return true, nil
}

// AutoconfFixer regenerates the autoconf toolchain output when a build
// is missing its configure script or an automake input file.
type AutoconfFixer struct {
	session *deps.Session
	logger  *zerolog.Logger
}

// NewAutoconfFixer creates the toolchain-regenerating fixer.
func NewAutoconfFixer(session *deps.Session, log *zerolog.Logger) *AutoconfFixer {
	return &AutoconfFixer{session: session, logger: log}
}

// Name implements Fixer.
func (f *AutoconfFixer) Name() string { return "autoconf" }

// CanFix implements Fixer.
func (f *AutoconfFixer) CanFix(p problems.Problem) bool {
	switch p.(type) {
	case problems.MissingConfigure, problems.MissingAutomakeInput:
		return true
	default:
		return false
	}
}

// Fix implements Fixer. A missing autoreconf binary is surfaced as a
// nested problem so the engine can install it and come back.
func (f *AutoconfFixer) Fix(ctx context.Context, p problems.Problem) (bool, error) {
	if !f.CanFix(p) {
		return false, nil
	}
	if !f.session.Runner.CommandExists("autoreconf") {
		return false, &ProblemError{Problem: problems.MissingCommand{Command: "autoreconf"}}
	}

	f.logger.Info().Str("dir", f.session.ProjectDir).Msg("regenerating autoconf output")
	stdout, stderr, err := f.session.Runner.RunCommandInDirWithOutput(ctx, f.session.ProjectDir, "autoreconf", "-fi")
	if err != nil {
		lines := append(helpers.SplitLines(stdout), helpers.SplitLines(stderr)...)
		if nested := problems.AnalyzeLines(lines); nested != nil && nested.Key() != p.Key() {
			return false, &ProblemError{Problem: nested}
		}
		return false, err
	}
	return true, nil
}
