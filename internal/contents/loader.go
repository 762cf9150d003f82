package contents

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/jelmer/ognibuild-sub000/internal/helpers"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// Source identifies one apt archive to load Contents indices from.
type Source struct {
	MirrorURL    string
	Distribution string
	Components   []string
}

// LoaderOptions configure index loading.
type LoaderOptions struct {
	// CacheDir is where fetched index files are kept between runs.
	CacheDir string

	// Fs is the filesystem the cache lives on; afero.NewOsFs() outside
	// tests.
	Fs afero.Fs

	// Client performs network fetches; http.DefaultClient when nil.
	Client *http.Client

	// Architecture overrides build-architecture detection.
	Architecture string

	// ShowProgress draws a progress bar while downloading.
	ShowProgress bool
}

// Loader builds an in-memory file-to-package index from configured
// sources.
type Loader struct {
	opts   LoaderOptions
	runner helpers.CommandRunner
	logger *zerolog.Logger
}

// NewLoader creates a loader.
func NewLoader(runner helpers.CommandRunner, log *zerolog.Logger, opts LoaderOptions) *Loader {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	return &Loader{opts: opts, runner: runner, logger: log}
}

// Load fetches and merges the Contents indices of all sources, in
// declaration order. When two sources list the same path the later
// source wins.
func (l *Loader) Load(ctx context.Context, sources []Source) (*MemorySearcher, error) {
	arch := l.opts.Architecture
	if arch == "" {
		arch = DetectArchitecture(ctx, l.runner)
	}

	index := NewMemorySearcher()
	loaded := 0
	for _, source := range sources {
		n, err := l.loadSource(ctx, source, arch, index)
		if err != nil {
			return nil, err
		}
		loaded += n
	}
	if loaded == 0 {
		return nil, fmt.Errorf("no Contents indices could be loaded from %d source(s)", len(sources))
	}

	l.logger.Info().
		Int("paths", index.Len()).
		Int("indices", loaded).
		Msg("contents index loaded")
	return index, nil
}

func (l *Loader) loadSource(ctx context.Context, source Source, arch string, index *MemorySearcher) (int, error) {
	known := l.fetchReleaseList(ctx, source)

	loaded := 0
	for _, component := range source.Components {
		for _, indexArch := range []string{arch, "all"} {
			base := fmt.Sprintf("%s/Contents-%s", component, indexArch)
			variants := indexVariants(base, known)
			if len(variants) == 0 {
				l.logger.Debug().
					Str("distribution", source.Distribution).
					Str("index", base).
					Msg("index not listed in release descriptor, skipping")
				continue
			}

			for _, relPath := range variants {
				url := fmt.Sprintf("%s/dists/%s/%s", strings.TrimRight(source.MirrorURL, "/"), source.Distribution, relPath)
				reader, err := l.fetch(ctx, url)
				if err != nil {
					l.logger.Debug().Err(err).Str("url", url).Msg("contents index variant unavailable")
					continue
				}

				err = func() error {
					defer reader.Close()
					plain, err := decompressor(path.Base(relPath), reader)
					if err != nil {
						return err
					}
					return parseContents(plain, index)
				}()
				if err != nil {
					return loaded, fmt.Errorf("parse %s: %w", url, err)
				}
				loaded++
				break
			}
		}
	}
	return loaded, nil
}

// indexVariants lists the compression variants of base worth fetching.
// With a release descriptor only the first variant it lists is used;
// without one every variant is tried in extension order until a fetch
// succeeds.
func indexVariants(base string, known map[string]bool) []string {
	if known == nil {
		variants := make([]string, len(compressionExtensions))
		for i, ext := range compressionExtensions {
			variants[i] = base + ext
		}
		return variants
	}
	for _, ext := range compressionExtensions {
		if known[base+ext] {
			return []string{base + ext}
		}
	}
	return nil
}

// fetchReleaseList downloads the InRelease (preferred) or Release
// descriptor and returns the file paths it lists, or nil when neither
// could be retrieved.
func (l *Loader) fetchReleaseList(ctx context.Context, source Source) map[string]bool {
	for _, name := range []string{"InRelease", "Release"} {
		url := fmt.Sprintf("%s/dists/%s/%s", strings.TrimRight(source.MirrorURL, "/"), source.Distribution, name)
		reader, err := l.fetch(ctx, url)
		if err != nil {
			l.logger.Debug().Err(err).Str("url", url).Msg("release descriptor unavailable")
			continue
		}
		files, err := ParseReleaseFileList(reader)
		reader.Close()
		if err != nil {
			l.logger.Warn().Err(err).Str("url", url).Msg("failed to parse release descriptor")
			continue
		}
		return files
	}
	return nil
}

// fetch returns the contents of url, serving from the cache directory
// when possible and caching the download otherwise.
func (l *Loader) fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	cachePath := path.Join(l.opts.CacheDir, CacheFileName(url))

	if ok, _ := afero.Exists(l.opts.Fs, cachePath); ok {
		f, err := l.opts.Fs.Open(cachePath)
		if err == nil {
			l.logger.Debug().Str("url", url).Str("cache", cachePath).Msg("serving index from cache")
			return f, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.opts.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	if err := l.opts.Fs.MkdirAll(l.opts.CacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	tmpPath := cachePath + ".part"
	f, err := l.opts.Fs.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("create cache file: %w", err)
	}

	var dest io.Writer = f
	if l.opts.ShowProgress {
		bar := progressbar.DefaultBytes(resp.ContentLength, "downloading "+path.Base(url))
		dest = io.MultiWriter(f, bar)
	}

	if _, err := io.Copy(dest, resp.Body); err != nil {
		f.Close()
		_ = l.opts.Fs.Remove(tmpPath)
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	if err := l.opts.Fs.Rename(tmpPath, cachePath); err != nil {
		return nil, fmt.Errorf("store cache file: %w", err)
	}

	return l.opts.Fs.Open(cachePath)
}

// parseContents reads a Contents index: one "<path> <owners>" pair per
// line, fields separated by whitespace, split on the last space run so
// paths containing spaces survive. Owner references are
// "section/package" and may be comma-separated.
func parseContents(r io.Reader, index *MemorySearcher) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		cut := strings.LastIndexByte(line, ' ')
		if cut <= 0 {
			// Header or malformed line.
			continue
		}
		filePath := strings.TrimRight(line[:cut], " ")
		owners := line[cut+1:]
		if filePath == "" || owners == "" || filePath == "FILE" {
			continue
		}
		if !strings.HasPrefix(filePath, "/") {
			filePath = "/" + filePath
		}

		var pkgs []string
		for _, owner := range strings.Split(owners, ",") {
			if idx := strings.LastIndexByte(owner, '/'); idx >= 0 {
				owner = owner[idx+1:]
			}
			if owner != "" {
				pkgs = append(pkgs, owner)
			}
		}
		if len(pkgs) > 0 {
			index.Replace(filePath, pkgs)
		}
	}
	return scanner.Err()
}

// DetectArchitecture returns the dpkg architecture of the running
// system, falling back to uname translation when dpkg is unavailable.
func DetectArchitecture(ctx context.Context, runner helpers.CommandRunner) string {
	if runner.CommandExists("dpkg") {
		if out, err := runner.RunCommand(ctx, "dpkg", "--print-architecture"); err == nil {
			if arch := strings.TrimSpace(out); arch != "" {
				return arch
			}
		}
	}

	var uts unix.Utsname
	if err := unix.Uname(&uts); err == nil {
		machine := unix.ByteSliceToString(uts.Machine[:])
		switch machine {
		case "x86_64":
			return "amd64"
		case "aarch64":
			return "arm64"
		case "i686", "i386":
			return "i386"
		default:
			return machine
		}
	}
	return "amd64"
}
