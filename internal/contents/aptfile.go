package contents

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jelmer/ognibuild-sub000/internal/helpers"
)

// ErrEmptyAptFileCache means apt-file is installed but its cache has
// never been populated; the caller should run apt-file update or fall
// back to the in-memory index.
var ErrEmptyAptFileCache = errors.New("apt-file cache is empty")

// aptFileCacheDir is where apt-file keeps its downloaded indices.
const aptFileCacheDir = "/var/lib/apt/lists"

// AptFile shells out to the apt-file utility for every query, reusing
// the cache apt-file itself maintains.
type AptFile struct {
	runner   helpers.CommandRunner
	cacheDir string
}

// NewAptFile creates an apt-file backed searcher. It fails with
// ErrEmptyAptFileCache when the apt-file cache holds no Contents data.
func NewAptFile(runner helpers.CommandRunner) (*AptFile, error) {
	return newAptFileWithCacheDir(runner, aptFileCacheDir)
}

func newAptFileWithCacheDir(runner helpers.CommandRunner, cacheDir string) (*AptFile, error) {
	if err := runner.RequireCommand("apt-file"); err != nil {
		return nil, err
	}
	populated, err := cacheHasContents(cacheDir)
	if err != nil {
		return nil, err
	}
	if !populated {
		return nil, ErrEmptyAptFileCache
	}
	return &AptFile{runner: runner, cacheDir: cacheDir}, nil
}

func cacheHasContents(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read apt-file cache: %w", err)
	}
	for _, entry := range entries {
		if strings.Contains(entry.Name(), "Contents-") {
			return true, nil
		}
	}
	return false, nil
}

// Search implements FileSearcher. Each query is one apt-file
// invocation.
func (a *AptFile) Search(ctx context.Context, query string, opts SearchOptions) ([]string, error) {
	args := []string{"search"}
	if opts.Regex {
		args = append(args, "--regexp")
	} else {
		args = append(args, "-F")
	}
	if opts.CaseInsensitive {
		args = append(args, "-i")
	}
	args = append(args, query)

	out, err := a.runner.RunCommand(ctx, "apt-file", args...)
	if err != nil {
		// apt-file exits 1 when nothing matches.
		if a.runner.GetExitCode(err) == 1 {
			return nil, nil
		}
		return nil, fmt.Errorf("apt-file search %q: %w", query, err)
	}

	var pkgs []string
	seen := make(map[string]bool)
	for _, line := range helpers.SplitLines(out) {
		// Output lines look like "git: /usr/bin/git".
		pkg, _, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		pkg = strings.TrimSpace(pkg)
		if pkg == "" || seen[pkg] {
			continue
		}
		seen[pkg] = true
		pkgs = append(pkgs, pkg)
	}
	return pkgs, nil
}
