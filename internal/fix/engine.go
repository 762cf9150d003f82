// Package fix implements the problem-driven retry loop: run an
// operation, diagnose its failure as a structured problem, repair the
// problem, run again. The loop is bounded by an attempt limit and by
// recurrence and cycle detection, so a fix that claims success without
// changing anything cannot spin forever.
package fix

import (
	"context"
	"errors"
	"fmt"

	"github.com/jelmer/ognibuild-sub000/internal/problems"
	"github.com/rs/zerolog"
)

// Outcome is the result of one invocation of the target operation.
type Outcome struct {
	// Success is true when the operation completed cleanly.
	Success bool
	// Problem is the diagnosed failure, nil when the output was not
	// recognizable.
	Problem problems.Problem
	// Lines is the captured output, kept for diagnostics.
	Lines []string
}

// Runner invokes the target operation once. A returned error means an
// I/O-class failure (the operation could not even be attempted) and
// aborts the engine immediately.
type Runner interface {
	Run(ctx context.Context) (Outcome, error)
}

// Fixer attempts to repair one class of structured problem. Fix reports
// whether it changed anything; a fix that made no change lets the next
// fixer in line have a go.
type Fixer interface {
	Name() string
	CanFix(p problems.Problem) bool
	Fix(ctx context.Context, p problems.Problem) (madeChange bool, err error)
}

// ProblemError wraps a distinct structured problem surfaced while a
// fixer was itself at work, e.g. the tool a fixer shells out to is
// missing. The engine resolves the nested problem first, then retries
// the original fix.
type ProblemError struct {
	Problem problems.Problem
}

func (e *ProblemError) Error() string {
	return fmt.Sprintf("encountered while fixing: %s", e.Problem)
}

// Status is the terminal state of an engine run.
type Status int

const (
	// StatusDone means the operation eventually succeeded.
	StatusDone Status = iota
	// StatusUnidentified means the operation failed and no structured
	// problem could be extracted from its output.
	StatusUnidentified
	// StatusPersistentFailure means a problem is diagnosed but not
	// automatically resolvable: no fixer handled it, or a fixer claimed
	// success and the identical problem came straight back.
	StatusPersistentFailure
	// StatusFixerLimitReached means the configured attempt budget ran
	// out before the operation succeeded.
	StatusFixerLimitReached
)

func (s Status) String() string {
	switch s {
	case StatusDone:
		return "done"
	case StatusUnidentified:
		return "unidentified"
	case StatusPersistentFailure:
		return "persistent-failure"
	case StatusFixerLimitReached:
		return "fixer-limit-reached"
	default:
		return "unknown"
	}
}

// Result describes how an engine run ended.
type Result struct {
	Status Status
	// Problem is the last diagnosed problem for the failure statuses.
	Problem problems.Problem
	// Lines carries the raw output for StatusUnidentified.
	Lines []string
	// Attempts is the number of fix attempts made.
	Attempts int
}

// Engine drives the run-diagnose-fix loop. State is per Run invocation;
// an Engine may be reused.
type Engine struct {
	runner      Runner
	fixers      []Fixer
	maxAttempts int
	logger      *zerolog.Logger

	fixed    map[string]bool
	stack    []string
	attempts int
}

// NewEngine creates an engine over the given operation and fixer chain.
// maxAttempts bounds the total number of fix attempts across the whole
// run, nested fixes included.
func NewEngine(runner Runner, fixers []Fixer, maxAttempts int, log *zerolog.Logger) *Engine {
	return &Engine{
		runner:      runner,
		fixers:      fixers,
		maxAttempts: maxAttempts,
		logger:      log,
	}
}

// Run loops until the operation succeeds or a terminal state is hit.
// Only I/O-class failures are returned as errors; diagnosable outcomes
// are reported through the Result.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	e.fixed = make(map[string]bool)
	e.stack = nil
	e.attempts = 0

	for {
		out, err := e.runner.Run(ctx)
		if err != nil {
			return Result{}, err
		}
		if out.Success {
			e.logger.Debug().Int("attempts", e.attempts).Msg("operation succeeded")
			return Result{Status: StatusDone, Attempts: e.attempts}, nil
		}
		if out.Problem == nil {
			return Result{Status: StatusUnidentified, Lines: out.Lines, Attempts: e.attempts}, nil
		}

		e.logger.Info().Str("problem", out.Problem.String()).Msg("diagnosed failure")
		terminal, err := e.resolveProblem(ctx, out.Problem)
		if err != nil {
			return Result{}, err
		}
		if terminal != nil {
			return *terminal, nil
		}
	}
}

// resolveProblem repairs one problem, depth-first through any problems
// the repair itself surfaces. A nil, nil return means the problem was
// fixed and the operation should run again; a non-nil Result is
// terminal.
func (e *Engine) resolveProblem(ctx context.Context, p problems.Problem) (*Result, error) {
	key := p.Key()

	if e.fixed[key] {
		e.logger.Warn().Str("problem", p.String()).Msg("problem recurred after a claimed fix")
		return &Result{Status: StatusPersistentFailure, Problem: p, Attempts: e.attempts}, nil
	}
	for _, onStack := range e.stack {
		if onStack == key {
			e.logger.Warn().Str("problem", p.String()).Msg("fix cycle detected")
			return &Result{Status: StatusPersistentFailure, Problem: p, Attempts: e.attempts}, nil
		}
	}
	if e.attempts >= e.maxAttempts {
		return &Result{Status: StatusFixerLimitReached, Problem: p, Attempts: e.attempts}, nil
	}

	e.stack = append(e.stack, key)
	defer func() { e.stack = e.stack[:len(e.stack)-1] }()

	for _, fixer := range e.fixers {
		if !fixer.CanFix(p) {
			continue
		}

		for {
			if e.attempts >= e.maxAttempts {
				return &Result{Status: StatusFixerLimitReached, Problem: p, Attempts: e.attempts}, nil
			}
			e.attempts++
			e.logger.Debug().
				Str("fixer", fixer.Name()).
				Str("problem", p.String()).
				Int("attempt", e.attempts).
				Msg("attempting fix")

			madeChange, err := fixer.Fix(ctx, p)
			var nested *ProblemError
			if errors.As(err, &nested) {
				terminal, err := e.resolveProblem(ctx, nested.Problem)
				if err != nil || terminal != nil {
					return terminal, err
				}
				// Nested problem fixed; retry the original fix.
				continue
			}
			if err != nil {
				return nil, err
			}
			if !madeChange {
				break
			}
			e.fixed[key] = true
			return nil, nil
		}
	}

	e.logger.Warn().Str("problem", p.String()).Msg("no fixer could address problem")
	return &Result{Status: StatusPersistentFailure, Problem: p, Attempts: e.attempts}, nil
}
