package installer

import (
	"context"
	"errors"

	"github.com/jelmer/ognibuild-sub000/internal/deps"
	"github.com/rs/zerolog"
)

// Stack composes installers in priority order. An installer that does not
// recognize a requirement's family is skipped; the first one that does
// recognize it decides the outcome.
type Stack struct {
	installers []Installer
	logger     *zerolog.Logger
}

// NewStack creates a stack trying the given installers in order.
func NewStack(log *zerolog.Logger, installers ...Installer) *Stack {
	return &Stack{installers: installers, logger: log}
}

// Name implements Installer.
func (s *Stack) Name() string { return "stack" }

// Install implements Installer by delegating to the first member that
// recognizes the requirement and supports the scope. Members declining
// with either sentinel are skipped; when every member declines, the
// scope sentinel wins if any member recognized the family at all.
func (s *Stack) Install(ctx context.Context, dep deps.Dependency, scope deps.Scope) error {
	scopeRefused := false
	for _, inst := range s.installers {
		err := inst.Install(ctx, dep, scope)
		if errors.Is(err, ErrUnknownDependencyFamily) {
			s.logger.Debug().
				Str("installer", inst.Name()).
				Str("dependency", dep.Key()).
				Msg("installer does not recognize dependency, trying next")
			continue
		}
		if errors.Is(err, ErrUnsupportedScope) {
			s.logger.Debug().
				Str("installer", inst.Name()).
				Str("dependency", dep.Key()).
				Str("scope", scope.String()).
				Msg("installer does not support scope, trying next")
			scopeRefused = true
			continue
		}
		return err
	}
	if scopeRefused {
		return ErrUnsupportedScope
	}
	return ErrUnknownDependencyFamily
}

// Explain implements Installer.
func (s *Stack) Explain(ctx context.Context, dep deps.Dependency, scope deps.Scope) (Explanation, error) {
	scopeRefused := false
	for _, inst := range s.installers {
		expl, err := inst.Explain(ctx, dep, scope)
		if errors.Is(err, ErrUnknownDependencyFamily) {
			continue
		}
		if errors.Is(err, ErrUnsupportedScope) {
			scopeRefused = true
			continue
		}
		return expl, err
	}
	if scopeRefused {
		return Explanation{}, ErrUnsupportedScope
	}
	return Explanation{}, ErrUnknownDependencyFamily
}

// InstallSome installs every requirement some member recognizes and
// returns the rest. Unlike Install, an unknown family never fails the
// batch; any other error aborts immediately.
func (s *Stack) InstallSome(ctx context.Context, reqs []deps.Dependency, scope deps.Scope) (handled, unhandled []deps.Dependency, err error) {
	for _, dep := range reqs {
		installErr := s.Install(ctx, dep, scope)
		if errors.Is(installErr, ErrUnknownDependencyFamily) {
			unhandled = append(unhandled, dep)
			continue
		}
		if installErr != nil {
			return handled, unhandled, installErr
		}
		handled = append(handled, dep)
	}
	return handled, unhandled, nil
}

// ExplainSome partitions the requirements into those the stack can
// explain, with their explanations, and those it cannot.
func (s *Stack) ExplainSome(ctx context.Context, reqs []deps.Dependency, scope deps.Scope) (explained []Explanation, unhandled []deps.Dependency, err error) {
	for _, dep := range reqs {
		expl, explainErr := s.Explain(ctx, dep, scope)
		if errors.Is(explainErr, ErrUnknownDependencyFamily) {
			unhandled = append(unhandled, dep)
			continue
		}
		if explainErr != nil {
			return explained, unhandled, explainErr
		}
		explained = append(explained, expl)
	}
	return explained, unhandled, nil
}
