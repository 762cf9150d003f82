package installer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/jelmer/ognibuild-sub000/internal/deps"
	"github.com/jelmer/ognibuild-sub000/internal/helpers"
	"github.com/jelmer/ognibuild-sub000/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeInstaller handles a fixed family and records calls.
type fakeInstaller struct {
	name       string
	family     deps.Family
	globalOnly bool
	installed  []string
	err        error
}

func (f *fakeInstaller) Name() string { return f.name }

func (f *fakeInstaller) Install(ctx context.Context, dep deps.Dependency, scope deps.Scope) error {
	if dep.Family() != f.family {
		return ErrUnknownDependencyFamily
	}
	if f.globalOnly && scope != deps.ScopeGlobal {
		return ErrUnsupportedScope
	}
	if f.err != nil {
		return f.err
	}
	f.installed = append(f.installed, dep.Key())
	return nil
}

func (f *fakeInstaller) Explain(ctx context.Context, dep deps.Dependency, scope deps.Scope) (Explanation, error) {
	if dep.Family() != f.family {
		return Explanation{}, ErrUnknownDependencyFamily
	}
	if f.globalOnly && scope != deps.ScopeGlobal {
		return Explanation{}, ErrUnsupportedScope
	}
	if f.err != nil {
		return Explanation{}, f.err
	}
	return Explanation{Message: "install " + dep.Key(), Command: []string{f.name, dep.Key()}}, nil
}

func testLogger() *bytes.Buffer {
	return &bytes.Buffer{}
}

func TestStackShortCircuit(t *testing.T) {
	buf := testLogger()
	log := logging.NewTestLogger(buf)

	a := &fakeInstaller{name: "a", family: deps.FamilyPerl}
	b := &fakeInstaller{name: "b", family: deps.FamilyPython}
	stack := NewStack(log, a, b)

	err := stack.Install(context.Background(), deps.PythonModule{Module: "six"}, deps.ScopeGlobal)
	require.NoError(t, err)

	// a declined, b handled; the effect is the same as calling b directly.
	assert.Empty(t, a.installed)
	assert.Equal(t, []string{"python-module:python3:six"}, b.installed)
}

func TestStackAllDecline(t *testing.T) {
	log := logging.NewTestLogger(testLogger())
	stack := NewStack(log,
		&fakeInstaller{name: "a", family: deps.FamilyPerl},
		&fakeInstaller{name: "b", family: deps.FamilyPython},
	)

	err := stack.Install(context.Background(), deps.Binary{Name: "make"}, deps.ScopeGlobal)
	assert.ErrorIs(t, err, ErrUnknownDependencyFamily)
}

func TestStackScopeFallsThrough(t *testing.T) {
	log := logging.NewTestLogger(testLogger())

	// The system installer wins for global scope but cannot touch a
	// user environment; the language installer picks that up.
	system := &fakeInstaller{name: "apt", family: deps.FamilyPython, globalOnly: true}
	user := &fakeInstaller{name: "pip", family: deps.FamilyPython}
	stack := NewStack(log, system, user)

	err := stack.Install(context.Background(), deps.PythonModule{Module: "six"}, deps.ScopeUser)
	require.NoError(t, err)
	assert.Empty(t, system.installed)
	assert.Equal(t, []string{"python-module:python3:six"}, user.installed)
}

func TestStackScopeRefusedEverywhere(t *testing.T) {
	log := logging.NewTestLogger(testLogger())
	stack := NewStack(log,
		&fakeInstaller{name: "apt", family: deps.FamilyPython, globalOnly: true},
	)

	err := stack.Install(context.Background(), deps.PythonModule{Module: "six"}, deps.ScopeUser)
	assert.ErrorIs(t, err, ErrUnsupportedScope)
	assert.NotErrorIs(t, err, ErrUnknownDependencyFamily)
}

func TestStackRealErrorIsFinal(t *testing.T) {
	log := logging.NewTestLogger(testLogger())
	boom := errors.New("network down")
	failing := &fakeInstaller{name: "a", family: deps.FamilyPython, err: boom}
	fallback := &fakeInstaller{name: "b", family: deps.FamilyPython}
	stack := NewStack(log, failing, fallback)

	err := stack.Install(context.Background(), deps.PythonModule{Module: "six"}, deps.ScopeGlobal)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, fallback.installed)
}

func TestStackExplain(t *testing.T) {
	log := logging.NewTestLogger(testLogger())
	stack := NewStack(log,
		&fakeInstaller{name: "cpan", family: deps.FamilyPerl},
	)

	expl, err := stack.Explain(context.Background(), deps.PerlModule{Module: "YAML"}, deps.ScopeGlobal)
	require.NoError(t, err)
	assert.Contains(t, expl.Message, "perl-module:YAML")
	assert.Equal(t, []string{"cpan", "perl-module:YAML"}, expl.Command)

	_, err = stack.Explain(context.Background(), deps.Binary{Name: "make"}, deps.ScopeGlobal)
	assert.ErrorIs(t, err, ErrUnknownDependencyFamily)
}

func TestInstallSomePartitions(t *testing.T) {
	log := logging.NewTestLogger(testLogger())
	stack := NewStack(log,
		&fakeInstaller{name: "pip", family: deps.FamilyPython},
	)

	reqs := []deps.Dependency{
		deps.PythonModule{Module: "six"},
		deps.Binary{Name: "make"},
		deps.PythonModule{Module: "attrs"},
	}

	handled, unhandled, err := stack.InstallSome(context.Background(), reqs, deps.ScopeGlobal)
	require.NoError(t, err)
	require.Len(t, handled, 2)
	require.Len(t, unhandled, 1)
	assert.Equal(t, "binary:make", unhandled[0].Key())
}

func TestExplainSomePartitions(t *testing.T) {
	log := logging.NewTestLogger(testLogger())
	stack := NewStack(log,
		&fakeInstaller{name: "pip", family: deps.FamilyPython},
	)

	explained, unhandled, err := stack.ExplainSome(context.Background(), []deps.Dependency{
		deps.PythonModule{Module: "six"},
		deps.PerlModule{Module: "YAML"},
	}, deps.ScopeGlobal)
	require.NoError(t, err)
	require.Len(t, explained, 1)
	require.Len(t, unhandled, 1)
	assert.Equal(t, "perl-module:YAML", unhandled[0].Key())
}

func TestInstallMissingSkipsPresent(t *testing.T) {
	inst := &fakeInstaller{name: "pip", family: deps.FamilyPython}
	session := &deps.Session{
		Runner: &helpers.MockCommandRunner{
			CommandExistsFunc: func(name string) bool { return name == "python3" },
			RunCommandFunc: func(ctx context.Context, name string, args ...string) (string, error) {
				if args[len(args)-1] == "import six" {
					return "", nil
				}
				return "", errors.New("no module")
			},
		},
	}

	reqs := []deps.Dependency{
		deps.PythonModule{Module: "six"},   // already present
		deps.PythonModule{Module: "attrs"}, // missing
	}

	err := InstallMissing(context.Background(), inst, session, reqs, deps.ScopeGlobal)
	require.NoError(t, err)
	assert.Equal(t, []string{"python-module:python3:attrs"}, inst.installed)
}

func TestExplanationString(t *testing.T) {
	assert.Equal(t, "do the thing", Explanation{Message: "do the thing"}.String())
	assert.Equal(t, "run: apt-get install -y zlib1g-dev",
		Explanation{Message: "run", Command: []string{"apt-get", "install", "-y", "zlib1g-dev"}}.String())
}
