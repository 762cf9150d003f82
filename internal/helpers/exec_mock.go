package helpers

import "context"

// MockCommandRunner is a mock implementation of CommandRunner for testing
type MockCommandRunner struct {
	CommandExistsFunc             func(name string) bool
	RequireCommandFunc            func(name string) error
	RunCommandFunc                func(ctx context.Context, name string, args ...string) (string, error)
	RunCommandInDirFunc           func(ctx context.Context, dir, name string, args ...string) (string, error)
	RunCommandWithOutputFunc      func(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)
	RunCommandInDirWithOutputFunc func(ctx context.Context, dir, name string, args ...string) (stdout, stderr string, err error)
	GetExitCodeFunc               func(err error) int

	// Calls records every command invocation for assertions.
	Calls [][]string
}

func (m *MockCommandRunner) record(name string, args []string) {
	call := append([]string{name}, args...)
	m.Calls = append(m.Calls, call)
}

// CommandExists implements CommandRunner.CommandExists
func (m *MockCommandRunner) CommandExists(name string) bool {
	if m.CommandExistsFunc != nil {
		return m.CommandExistsFunc(name)
	}
	return false
}

// RequireCommand implements CommandRunner.RequireCommand
func (m *MockCommandRunner) RequireCommand(name string) error {
	if m.RequireCommandFunc != nil {
		return m.RequireCommandFunc(name)
	}
	return nil
}

// RunCommand implements CommandRunner.RunCommand
func (m *MockCommandRunner) RunCommand(ctx context.Context, name string, args ...string) (string, error) {
	m.record(name, args)
	if m.RunCommandFunc != nil {
		return m.RunCommandFunc(ctx, name, args...)
	}
	return "", nil
}

// RunCommandInDir implements CommandRunner.RunCommandInDir
func (m *MockCommandRunner) RunCommandInDir(ctx context.Context, dir, name string, args ...string) (string, error) {
	m.record(name, args)
	if m.RunCommandInDirFunc != nil {
		return m.RunCommandInDirFunc(ctx, dir, name, args...)
	}
	return "", nil
}

// RunCommandWithOutput implements CommandRunner.RunCommandWithOutput
func (m *MockCommandRunner) RunCommandWithOutput(ctx context.Context, name string, args ...string) (stdout, stderr string, err error) {
	m.record(name, args)
	if m.RunCommandWithOutputFunc != nil {
		return m.RunCommandWithOutputFunc(ctx, name, args...)
	}
	return "", "", nil
}

// RunCommandInDirWithOutput implements CommandRunner.RunCommandInDirWithOutput
func (m *MockCommandRunner) RunCommandInDirWithOutput(ctx context.Context, dir, name string, args ...string) (stdout, stderr string, err error) {
	m.record(name, args)
	if m.RunCommandInDirWithOutputFunc != nil {
		return m.RunCommandInDirWithOutputFunc(ctx, dir, name, args...)
	}
	return "", "", nil
}

// GetExitCode implements CommandRunner.GetExitCode
func (m *MockCommandRunner) GetExitCode(err error) int {
	if m.GetExitCodeFunc != nil {
		return m.GetExitCodeFunc(err)
	}
	return 0
}
