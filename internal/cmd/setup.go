package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jelmer/ognibuild-sub000/internal/config"
	"github.com/jelmer/ognibuild-sub000/internal/contents"
	"github.com/jelmer/ognibuild-sub000/internal/db"
	"github.com/jelmer/ognibuild-sub000/internal/deps"
	"github.com/jelmer/ognibuild-sub000/internal/fsops"
	"github.com/jelmer/ognibuild-sub000/internal/installer"
	"github.com/jelmer/ognibuild-sub000/internal/resolve"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// resolveProjectDir validates a --directory argument before a session is
// built around it.
func resolveProjectDir(dir string) (string, error) {
	fs := afero.NewOsFs()
	if !fsops.Exists(fs, dir) {
		return "", fmt.Errorf("project directory %s does not exist", dir)
	}
	if !fsops.IsDir(fs, dir) {
		return "", fmt.Errorf("project path %s is not a directory", dir)
	}
	return dir, nil
}

// newSearcher builds the file-to-package search backend from the
// configured apt sources, with overrides layered on top.
func newSearcher(ctx context.Context, cfg *config.Config, session *deps.Session, log *zerolog.Logger) (contents.FileSearcher, error) {
	fs := afero.NewOsFs()
	if err := fsops.EnsureDir(fs, cfg.Paths.CacheDir, 0o755); err != nil {
		return nil, err
	}
	if err := fsops.CheckWritable(fs, cfg.Paths.CacheDir); err != nil {
		return nil, fmt.Errorf("cache directory %s: %w", cfg.Paths.CacheDir, err)
	}

	opts := contents.LoaderOptions{
		CacheDir:     cfg.Paths.CacheDir,
		Fs:           fs,
		ShowProgress: true,
	}
	searcher, err := contents.NewSearcher(ctx, session.Runner, log, opts, sourcesFromConfig(cfg))
	if err != nil {
		return nil, err
	}
	return contents.NewCombined(contents.NewOverride(), searcher), nil
}

func sourcesFromConfig(cfg *config.Config) []contents.Source {
	sources := make([]contents.Source, 0, len(cfg.Apt.Sources))
	for _, s := range cfg.Apt.Sources {
		sources = append(sources, contents.Source{
			MirrorURL:    s.MirrorURL,
			Distribution: s.Distribution,
			Components:   s.Components,
		})
	}
	return sources
}

// openCache opens the resolution cache, or returns nil when caching is
// disabled. A cache that fails to open is reported but not fatal.
func openCache(ctx context.Context, cfg *config.Config, log *zerolog.Logger) *db.DB {
	if cfg.Resolve.NoCache {
		return nil
	}
	if err := fsops.EnsureDir(afero.NewOsFs(), filepath.Dir(cfg.Paths.DBFile), 0o755); err != nil {
		log.Warn().Err(err).Msg("cannot create cache directory, continuing without cache")
		return nil
	}
	cache, err := db.New(ctx, cfg.Paths.DBFile)
	if err != nil {
		log.Warn().Err(err).Msg("cannot open resolution cache, continuing without it")
		return nil
	}
	return cache
}

// newTieBreakers assembles the tie-breaker chain in priority order.
func newTieBreakers(cfg *config.Config, projectDir string, log *zerolog.Logger) []resolve.TieBreaker {
	tieBreakers := []resolve.TieBreaker{
		resolve.NewBuildDeps(projectDir),
		resolve.NewPythonRuntime("python3"),
	}

	if cfg.Resolve.UsePopcon {
		path := filepath.Join(cfg.Paths.CacheDir, "popcon-by-inst")
		f, err := os.Open(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("popcon enabled but scores unavailable")
			return tieBreakers
		}
		defer f.Close()
		scores, err := resolve.ParsePopconScores(f)
		if err != nil {
			log.Warn().Err(err).Msg("cannot parse popcon scores")
			return tieBreakers
		}
		tieBreakers = append(tieBreakers, resolve.NewPopcon(scores))
	}

	return tieBreakers
}

// newResolver wires the full resolver for a project directory.
func newResolver(ctx context.Context, cfg *config.Config, session *deps.Session, log *zerolog.Logger) (*resolve.Resolver, func(), error) {
	searcher, err := newSearcher(ctx, cfg, session, log)
	if err != nil {
		return nil, nil, err
	}

	cache := openCache(ctx, cfg, log)
	cleanup := func() {
		if cache != nil {
			cache.Close()
		}
	}

	tieBreakers := newTieBreakers(cfg, session.ProjectDir, log)
	return resolve.NewResolver(searcher, session, cache, tieBreakers, log), cleanup, nil
}

// newInstallerStack builds the full installer stack: apt for system
// packages, then the language ecosystem installers.
func newInstallerStack(session *deps.Session, resolver installer.RelationResolver, log *zerolog.Logger) *installer.Stack {
	return installer.NewStack(log,
		installer.NewApt(session.Runner, resolver, log),
		installer.NewPip(session.Runner, session.ProjectDir, log),
		installer.NewNpm(session.Runner, session.ProjectDir, log),
		installer.NewCpan(session.Runner, log),
	)
}
