package contents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySearcherExact(t *testing.T) {
	index := NewMemorySearcher()
	index.Add("/usr/bin/git", "git")

	ctx := context.Background()

	pkgs, err := index.Search(ctx, "/usr/bin/git", SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"git"}, pkgs)

	pkgs, err = index.Search(ctx, "/usr/bin/hg", SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, pkgs)
}

func TestExactAndPatternAgreeOnLiteralInput(t *testing.T) {
	index := NewMemorySearcher()
	index.Add("/usr/bin/git", "git")

	ctx := context.Background()

	exact, err := index.Search(ctx, "/usr/bin/git", SearchOptions{})
	require.NoError(t, err)

	pattern, err := index.Search(ctx, "^/usr/bin/git$", SearchOptions{Regex: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"git"}, exact)
	assert.Equal(t, []string{"git"}, pattern)
}

func TestCaseInsensitiveSearch(t *testing.T) {
	index := NewMemorySearcher()
	index.Add("/usr/bin/git", "git")

	ctx := context.Background()

	pkgs, err := index.Search(ctx, "/USR/BIN/GIT", SearchOptions{CaseInsensitive: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"git"}, pkgs)

	pkgs, err = index.Search(ctx, "/USR/BIN/GIT", SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, pkgs)

	pkgs, err = index.Search(ctx, "^/usr/bin/GIT$", SearchOptions{Regex: true, CaseInsensitive: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"git"}, pkgs)
}

func TestPatternScan(t *testing.T) {
	index := NewMemorySearcher()
	index.Add("/usr/include/zlib.h", "zlib1g-dev")
	index.Add("/usr/include/zconf.h", "zlib1g-dev")
	index.Add("/usr/include/png.h", "libpng-dev")

	pkgs, err := index.Search(context.Background(), `^/usr/include/z.*\.h$`, SearchOptions{Regex: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"zlib1g-dev"}, pkgs)
}

func TestPatternCompileError(t *testing.T) {
	index := NewMemorySearcher()
	_, err := index.Search(context.Background(), "([", SearchOptions{Regex: true})
	assert.Error(t, err)
}

func TestReplaceIsLastWriteWins(t *testing.T) {
	index := NewMemorySearcher()
	index.Replace("/usr/bin/ninja", []string{"ninja-build"})
	index.Replace("/usr/bin/ninja", []string{"samurai"})

	pkgs, err := index.Search(context.Background(), "/usr/bin/ninja", SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"samurai"}, pkgs)
}

func TestAddDeduplicates(t *testing.T) {
	index := NewMemorySearcher()
	index.Add("/usr/bin/git", "git")
	index.Add("/usr/bin/git", "git")
	index.Add("/usr/bin/git", "git-core")

	pkgs, err := index.Search(context.Background(), "/usr/bin/git", SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"git", "git-core"}, pkgs)
}

func TestCombinedDeduplicates(t *testing.T) {
	a := NewMemorySearcher()
	a.Add("/usr/bin/locale-gen", "pkgA")
	b := NewMemorySearcher()
	b.Add("/usr/bin/locale-gen", "pkgA")
	b.Add("/usr/bin/locale-gen", "pkgB")

	combined := NewCombined(a, b)
	pkgs, err := combined.Search(context.Background(), "/usr/bin/locale-gen", SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"pkgA", "pkgB"}, pkgs)
}

func TestOverrideSearcher(t *testing.T) {
	override := NewOverride()
	ctx := context.Background()

	pkgs, err := override.Search(ctx, "/usr/sbin/locale-gen", SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"locales"}, pkgs)

	pkgs, err = override.Search(ctx, "/USR/SBIN/LOCALE-GEN", SearchOptions{CaseInsensitive: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"locales"}, pkgs)

	pkgs, err = override.Search(ctx, `locale-gen$`, SearchOptions{Regex: true})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"locales"}, pkgs)

	pkgs, err = override.Search(ctx, "/usr/bin/unknown", SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, pkgs)
}
