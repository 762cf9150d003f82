package contents

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

func populatedCacheDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	name := "deb.debian.org_debian_dists_sid_main_Contents-amd64.lz4"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte{}, 0644))
	return dir
}

func TestNewAptFileRequiresTool(t *testing.T) {
	runner := &helpers.MockCommandRunner{
		RequireCommandFunc: func(name string) error { return errors.New("apt-file not installed") },
	}

	_, err := newAptFileWithCacheDir(runner, t.TempDir())
	assert.Error(t, err)
}

func TestNewAptFileEmptyCache(t *testing.T) {
	runner := &helpers.MockCommandRunner{}

	_, err := newAptFileWithCacheDir(runner, t.TempDir())
	assert.ErrorIs(t, err, ErrEmptyAptFileCache)

	// A missing directory counts as empty too.
	_, err = newAptFileWithCacheDir(runner, filepath.Join(t.TempDir(), "nonexistent"))
	assert.ErrorIs(t, err, ErrEmptyAptFileCache)
}

func TestAptFileSearch(t *testing.T) {
	var gotArgs []string
	runner := &helpers.MockCommandRunner{
		RunCommandFunc: func(ctx context.Context, name string, args ...string) (string, error) {
			gotArgs = args
			return "git: /usr/bin/git\ngit-daemon-run: /usr/bin/git-daemon\ngit: /usr/share/git/something\n", nil
		},
	}

	searcher, err := newAptFileWithCacheDir(runner, populatedCacheDir(t))
	require.NoError(t, err)

	pkgs, err := searcher.Search(context.Background(), "/usr/bin/git", SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"git", "git-daemon-run"}, pkgs)
	assert.Equal(t, []string{"search", "-F", "/usr/bin/git"}, gotArgs)
}

func TestAptFileSearchRegexCaseInsensitive(t *testing.T) {
	var gotArgs []string
	runner := &helpers.MockCommandRunner{
		RunCommandFunc: func(ctx context.Context, name string, args ...string) (string, error) {
			gotArgs = args
			return "", nil
		},
	}

	searcher, err := newAptFileWithCacheDir(runner, populatedCacheDir(t))
	require.NoError(t, err)

	_, err = searcher.Search(context.Background(), "^/usr/bin/GIT$", SearchOptions{Regex: true, CaseInsensitive: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"search", "--regexp", "-i", "^/usr/bin/GIT$"}, gotArgs)
}

func TestAptFileSearchNoMatches(t *testing.T) {
	runner := &helpers.MockCommandRunner{
		RunCommandFunc: func(ctx context.Context, name string, args ...string) (string, error) {
			return "", errors.New("exit status 1")
		},
		GetExitCodeFunc: func(err error) int { return 1 },
	}

	searcher, err := newAptFileWithCacheDir(runner, populatedCacheDir(t))
	require.NoError(t, err)

	pkgs, err := searcher.Search(context.Background(), "/no/such/path", SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, pkgs)
}

func TestAptFileSearchHardFailure(t *testing.T) {
	runner := &helpers.MockCommandRunner{
		RunCommandFunc: func(ctx context.Context, name string, args ...string) (string, error) {
			return "", errors.New("cache corrupt")
		},
		GetExitCodeFunc: func(err error) int { return 2 },
	}

	searcher, err := newAptFileWithCacheDir(runner, populatedCacheDir(t))
	require.NoError(t, err)

	_, err = searcher.Search(context.Background(), "/usr/bin/git", SearchOptions{})
	assert.Error(t, err)
}
