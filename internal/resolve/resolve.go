// Package resolve maps abstract capability requirements onto concrete
// Debian package relations. Each dependency family has a candidate
// generation rule; when several candidates survive, prioritized
// tie-breakers choose among them.
package resolve

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jelmer/ognibuild-sub000/internal/contents"
	"github.com/jelmer/ognibuild-sub000/internal/db"
	"github.com/jelmer/ognibuild-sub000/internal/debian"
	"github.com/jelmer/ognibuild-sub000/internal/deps"
	"github.com/rs/zerolog"
)

// Candidate is one concrete package relation that may satisfy an
// abstract requirement, tagged with the family rule that proposed it.
type Candidate struct {
	Relation debian.Relation
	Family   deps.Family
}

// Resolver turns dependencies into package relations using the contents
// index and an optional persistent resolution cache.
type Resolver struct {
	searcher    contents.FileSearcher
	session     *deps.Session
	cache       *db.DB
	tieBreakers []TieBreaker
	logger      *zerolog.Logger
}

// NewResolver creates a resolver. cache may be nil to disable resolution
// caching.
func NewResolver(searcher contents.FileSearcher, session *deps.Session, cache *db.DB, tieBreakers []TieBreaker, log *zerolog.Logger) *Resolver {
	return &Resolver{
		searcher:    searcher,
		session:     session,
		cache:       cache,
		tieBreakers: tieBreakers,
		logger:      log,
	}
}

// Candidates proposes zero or more concrete packages for the
// requirement. Families without a generation rule yield
// deps.ErrUnknownDependencyFamily.
func (r *Resolver) Candidates(ctx context.Context, dep deps.Dependency) ([]Candidate, error) {
	switch d := dep.(type) {
	case deps.Binary:
		return r.binaryCandidates(ctx, d.Name)
	case deps.PkgConfig:
		return r.pkgConfigCandidates(ctx, d)
	case deps.Path:
		return r.pathCandidates(ctx, d.Path)
	case deps.CLibrary:
		return r.cLibraryCandidates(ctx, d.Name)
	case deps.PythonModule:
		return r.pythonCandidates(ctx, d)
	case deps.PerlModule:
		return r.perlCandidates(ctx, d)
	case deps.NodePackage:
		return r.nodeCandidates(ctx, d)
	case deps.GoPackage:
		return r.goCandidates(ctx, d)
	case deps.Vague:
		return r.vagueCandidates(ctx, d)
	default:
		return nil, fmt.Errorf("no candidate rule for %s: %w", dep.Key(), deps.ErrUnknownDependencyFamily)
	}
}

// ResolveRelation picks the single best relation for the requirement,
// consulting and updating the resolution cache.
func (r *Resolver) ResolveRelation(ctx context.Context, dep deps.Dependency) (debian.Relation, error) {
	if r.cache != nil {
		if text, ok, err := r.cache.Get(ctx, dep.Key()); err != nil {
			r.logger.Warn().Err(err).Msg("resolution cache read failed")
		} else if ok {
			rel, err := debian.ParseRelation(text)
			if err == nil {
				r.logger.Debug().
					Str("dependency", dep.Key()).
					Str("package", rel.String()).
					Msg("resolved from cache")
				return rel, nil
			}
			// A malformed cache entry is dropped, not fatal.
			_ = r.cache.Delete(ctx, dep.Key())
		}
	}

	candidates, err := r.Candidates(ctx, dep)
	if err != nil {
		return debian.Relation{}, err
	}
	if len(candidates) == 0 {
		return debian.Relation{}, fmt.Errorf("no package provides %s: %w", dep.Key(), deps.ErrUnknownDependencyFamily)
	}

	best, err := PickBest(candidates, r.tieBreakers, r.logger)
	if err != nil {
		return debian.Relation{}, err
	}

	if r.cache != nil {
		if err := r.cache.Put(ctx, dep.Key(), best.Relation.String()); err != nil {
			r.logger.Warn().Err(err).Msg("resolution cache write failed")
		}
	}
	return best.Relation, nil
}

func (r *Resolver) searchToCandidates(ctx context.Context, family deps.Family, query string, opts contents.SearchOptions, constrain func(string) (debian.Relation, error)) ([]Candidate, error) {
	pkgs, err := r.searcher.Search(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var out []Candidate
	for _, pkg := range pkgs {
		rel, err := constrain(pkg)
		if err != nil {
			return nil, err
		}
		out = append(out, Candidate{Relation: rel, Family: family})
	}
	return out, nil
}

func plainRelation(pkg string) (debian.Relation, error) {
	return debian.ParseRelation(pkg)
}

func minVersionRelation(minVersion string) func(string) (debian.Relation, error) {
	if minVersion == "" {
		return plainRelation
	}
	return func(pkg string) (debian.Relation, error) {
		return debian.ParseRelation(fmt.Sprintf("%s (>= %s)", pkg, minVersion))
	}
}

func (r *Resolver) binaryCandidates(ctx context.Context, name string) ([]Candidate, error) {
	var out []Candidate
	for _, dir := range []string{"/usr/bin", "/bin", "/usr/sbin", "/sbin"} {
		cands, err := r.searchToCandidates(ctx, deps.FamilyBinary, dir+"/"+name, contents.SearchOptions{}, plainRelation)
		if err != nil {
			return nil, err
		}
		out = append(out, cands...)
	}
	return dedupeCandidates(out), nil
}

func (r *Resolver) pkgConfigCandidates(ctx context.Context, d deps.PkgConfig) ([]Candidate, error) {
	pattern := fmt.Sprintf(`^/usr/(lib(/[^/]+)?|share)/pkgconfig/%s\.pc$`, regexp.QuoteMeta(d.Module))
	cands, err := r.searchToCandidates(ctx, deps.FamilyPkgConfig, pattern,
		contents.SearchOptions{Regex: true}, minVersionRelation(d.MinVersion))
	if err != nil {
		return nil, err
	}
	return dedupeCandidates(cands), nil
}

func (r *Resolver) pathCandidates(ctx context.Context, path string) ([]Candidate, error) {
	if strings.HasPrefix(path, "/") {
		return r.searchToCandidates(ctx, deps.FamilyPath, path, contents.SearchOptions{}, plainRelation)
	}
	pattern := fmt.Sprintf(`^/usr(/local)?/include/%s$`, regexp.QuoteMeta(path))
	return r.searchToCandidates(ctx, deps.FamilyPath, pattern, contents.SearchOptions{Regex: true}, plainRelation)
}

func (r *Resolver) cLibraryCandidates(ctx context.Context, name string) ([]Candidate, error) {
	pattern := fmt.Sprintf(`^/usr/lib(/[^/]+)?/lib%s\.(so|a)$`, regexp.QuoteMeta(name))
	cands, err := r.searchToCandidates(ctx, deps.FamilyCLibrary, pattern,
		contents.SearchOptions{Regex: true}, plainRelation)
	if err != nil {
		return nil, err
	}
	return dedupeCandidates(cands), nil
}

func (r *Resolver) pythonCandidates(ctx context.Context, d deps.PythonModule) ([]Candidate, error) {
	modPath := strings.ReplaceAll(d.Module, ".", "/")
	pattern := fmt.Sprintf(`^/usr/lib/python3(\.\d+)?/(dist|site)-packages/%s(\.py|/__init__\.py)$`,
		regexp.QuoteMeta(modPath))
	cands, err := r.searchToCandidates(ctx, deps.FamilyPython, pattern,
		contents.SearchOptions{Regex: true}, plainRelation)
	if err != nil {
		return nil, err
	}
	return dedupeCandidates(cands), nil
}

func (r *Resolver) perlCandidates(ctx context.Context, d deps.PerlModule) ([]Candidate, error) {
	modPath := strings.ReplaceAll(d.Module, "::", "/") + ".pm"
	pattern := fmt.Sprintf(`^/usr/(share|lib(/[^/]+)?)/perl5?(/\d[\d.]*)?/%s$`, regexp.QuoteMeta(modPath))
	cands, err := r.searchToCandidates(ctx, deps.FamilyPerl, pattern,
		contents.SearchOptions{Regex: true}, plainRelation)
	if err != nil {
		return nil, err
	}
	return dedupeCandidates(cands), nil
}

func (r *Resolver) nodeCandidates(ctx context.Context, d deps.NodePackage) ([]Candidate, error) {
	pattern := fmt.Sprintf(`^/usr/(share|lib)/nodejs/%s/package\.json$`, regexp.QuoteMeta(d.Name))
	cands, err := r.searchToCandidates(ctx, deps.FamilyNode, pattern,
		contents.SearchOptions{Regex: true}, plainRelation)
	if err != nil {
		return nil, err
	}
	return dedupeCandidates(cands), nil
}

func (r *Resolver) goCandidates(ctx context.Context, d deps.GoPackage) ([]Candidate, error) {
	pattern := fmt.Sprintf(`^/usr/share/gocode/src/%s(/[^/]+)?$`, regexp.QuoteMeta(d.ImportPath))
	cands, err := r.searchToCandidates(ctx, deps.FamilyGo, pattern,
		contents.SearchOptions{Regex: true}, plainRelation)
	if err != nil {
		return nil, err
	}
	return dedupeCandidates(cands), nil
}

// vagueCandidates concatenates several guesses for a loosely named
// requirement: the binary rule, the pkg-config rule and plain
// package-name guesses with and without dev decoration.
func (r *Resolver) vagueCandidates(ctx context.Context, d deps.Vague) ([]Candidate, error) {
	name := strings.ToLower(d.Name)

	var out []Candidate

	binCands, err := r.binaryCandidates(ctx, name)
	if err != nil {
		return nil, err
	}
	out = append(out, retag(binCands, deps.FamilyVague)...)

	pcCands, err := r.pkgConfigCandidates(ctx, deps.PkgConfig{Module: name, MinVersion: d.MinVersion})
	if err != nil {
		return nil, err
	}
	out = append(out, retag(pcCands, deps.FamilyVague)...)

	constrain := minVersionRelation(d.MinVersion)
	for _, guess := range []string{name, name + "-dev", "lib" + name + "-dev"} {
		rel, err := constrain(guess)
		if err != nil {
			// A guess that does not form a valid package name is skipped.
			continue
		}
		// Name guesses are only candidates when the archive knows them.
		pkgs, err := r.searcher.Search(ctx, "/usr/share/doc/"+guess+"/copyright", contents.SearchOptions{})
		if err != nil {
			return nil, err
		}
		if len(pkgs) > 0 {
			out = append(out, Candidate{Relation: rel, Family: deps.FamilyVague})
		}
	}

	return dedupeCandidates(out), nil
}

func retag(cands []Candidate, family deps.Family) []Candidate {
	out := make([]Candidate, len(cands))
	for i, c := range cands {
		out[i] = Candidate{Relation: c.Relation, Family: family}
	}
	return out
}

// dedupeCandidates drops structurally equal relations, preserving
// first-seen order.
func dedupeCandidates(cands []Candidate) []Candidate {
	seen := make(map[string]bool)
	var out []Candidate
	for _, c := range cands {
		key := c.Relation.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
