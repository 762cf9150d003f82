package deps

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jelmer/ognibuild-sub000/internal/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeString(t *testing.T) {
	assert.Equal(t, "global", ScopeGlobal.String())
	assert.Equal(t, "user", ScopeUser.String())
	assert.Equal(t, "vendor", ScopeVendor.String())
	assert.Equal(t, "scope(42)", Scope(42).String())
}

func TestKeysAreStable(t *testing.T) {
	tests := []struct {
		dep  Dependency
		want string
	}{
		{Binary{Name: "make"}, "binary:make"},
		{PkgConfig{Module: "zlib"}, "pkg-config:zlib"},
		{PkgConfig{Module: "zlib", MinVersion: "1.2"}, "pkg-config:zlib>=1.2"},
		{Path{Path: "/usr/include/zlib.h"}, "path:/usr/include/zlib.h"},
		{CLibrary{Name: "ssl"}, "clib:ssl"},
		{PythonModule{Module: "setuptools"}, "python-module:python3:setuptools"},
		{PythonModule{Module: "six", Python: "python3.12"}, "python-module:python3.12:six"},
		{PerlModule{Module: "ExtUtils::MakeMaker"}, "perl-module:ExtUtils::MakeMaker"},
		{NodePackage{Name: "typescript"}, "node-package:typescript"},
		{GoPackage{ImportPath: "golang.org/x/sys"}, "go-package:golang.org/x/sys"},
		{Vague{Name: "openssl"}, "vague:openssl"},
		{Vague{Name: "openssl", MinVersion: "3.0"}, "vague:openssl>=3.0"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dep.Key())
		})
	}
}

func TestBinaryPresentOnSystem(t *testing.T) {
	session := &Session{
		Runner: &helpers.MockCommandRunner{
			CommandExistsFunc: func(name string) bool { return name == "make" },
		},
	}
	ctx := context.Background()

	present, err := Binary{Name: "make"}.PresentOnSystem(ctx, session)
	require.NoError(t, err)
	assert.True(t, present)

	present, err = Binary{Name: "ninja"}.PresentOnSystem(ctx, session)
	require.NoError(t, err)
	assert.False(t, present)
}

func TestBinaryPresenceIsIdempotent(t *testing.T) {
	session := &Session{
		Runner: &helpers.MockCommandRunner{
			CommandExistsFunc: func(name string) bool { return name == "cmake" },
		},
	}
	ctx := context.Background()
	dep := Binary{Name: "cmake"}

	first, err := dep.PresentOnSystem(ctx, session)
	require.NoError(t, err)
	second, err := dep.PresentOnSystem(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBinaryPresentInProject(t *testing.T) {
	projectDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(projectDir, "bin"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, "bin", "lint"), []byte("#!/bin/sh\n"), 0755))

	session := &Session{Runner: &helpers.MockCommandRunner{}, ProjectDir: projectDir}
	ctx := context.Background()

	present, err := Binary{Name: "lint"}.PresentInProject(ctx, session)
	require.NoError(t, err)
	assert.True(t, present)

	present, err = Binary{Name: "fmt"}.PresentInProject(ctx, session)
	require.NoError(t, err)
	assert.False(t, present)
}

func TestPkgConfigPresentOnSystem(t *testing.T) {
	var gotArgs []string
	session := &Session{
		Runner: &helpers.MockCommandRunner{
			CommandExistsFunc: func(name string) bool { return name == "pkg-config" },
			RunCommandFunc: func(ctx context.Context, name string, args ...string) (string, error) {
				gotArgs = args
				if args[len(args)-1] == "zlib >= 1.2" {
					return "", nil
				}
				return "", errors.New("not found")
			},
		},
	}
	ctx := context.Background()

	present, err := PkgConfig{Module: "zlib", MinVersion: "1.2"}.PresentOnSystem(ctx, session)
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, []string{"--exists", "zlib >= 1.2"}, gotArgs)

	present, err = PkgConfig{Module: "missing"}.PresentOnSystem(ctx, session)
	require.NoError(t, err)
	assert.False(t, present)
}

func TestPkgConfigAbsentWithoutTool(t *testing.T) {
	session := &Session{
		Runner: &helpers.MockCommandRunner{
			CommandExistsFunc: func(name string) bool { return false },
		},
	}

	present, err := PkgConfig{Module: "zlib"}.PresentOnSystem(context.Background(), session)
	require.NoError(t, err)
	assert.False(t, present)
}

func TestPathPresence(t *testing.T) {
	dir := t.TempDir()
	header := filepath.Join(dir, "zlib.h")
	require.NoError(t, os.WriteFile(header, []byte("#pragma once\n"), 0644))

	session := &Session{Runner: &helpers.MockCommandRunner{}, ProjectDir: dir}
	ctx := context.Background()

	present, err := Path{Path: header}.PresentOnSystem(ctx, session)
	require.NoError(t, err)
	assert.True(t, present)

	present, err = Path{Path: filepath.Join(dir, "missing.h")}.PresentOnSystem(ctx, session)
	require.NoError(t, err)
	assert.False(t, present)

	present, err = Path{Path: "zlib.h"}.PresentInProject(ctx, session)
	require.NoError(t, err)
	assert.True(t, present)
}

func TestPythonModulePresence(t *testing.T) {
	session := &Session{
		Runner: &helpers.MockCommandRunner{
			CommandExistsFunc: func(name string) bool { return name == "python3" },
			RunCommandFunc: func(ctx context.Context, name string, args ...string) (string, error) {
				if args[len(args)-1] == "import setuptools" {
					return "", nil
				}
				return "", errors.New("ModuleNotFoundError")
			},
		},
	}
	ctx := context.Background()

	present, err := PythonModule{Module: "setuptools"}.PresentOnSystem(ctx, session)
	require.NoError(t, err)
	assert.True(t, present)

	present, err = PythonModule{Module: "nonexistent"}.PresentOnSystem(ctx, session)
	require.NoError(t, err)
	assert.False(t, present)
}

func TestNodePackagePresentInProject(t *testing.T) {
	projectDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(projectDir, "node_modules", "typescript"), 0755))

	session := &Session{Runner: &helpers.MockCommandRunner{}, ProjectDir: projectDir}
	ctx := context.Background()

	present, err := NodePackage{Name: "typescript"}.PresentInProject(ctx, session)
	require.NoError(t, err)
	assert.True(t, present)

	present, err = NodePackage{Name: "left-pad"}.PresentInProject(ctx, session)
	require.NoError(t, err)
	assert.False(t, present)
}

func TestVaguePresentViaBinary(t *testing.T) {
	session := &Session{
		Runner: &helpers.MockCommandRunner{
			CommandExistsFunc: func(name string) bool { return name == "openssl" },
		},
	}

	present, err := Vague{Name: "openssl"}.PresentOnSystem(context.Background(), session)
	require.NoError(t, err)
	assert.True(t, present)
}
