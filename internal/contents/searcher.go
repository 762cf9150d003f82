// Package contents answers "which package owns this file path" from
// Debian-style Contents indices. Several interchangeable backends
// implement FileSearcher; a combined searcher unions their results.
package contents

import "context"

// SearchOptions control how a query is interpreted.
type SearchOptions struct {
	// Regex treats the query as a regular expression matched against
	// every indexed path instead of an exact path lookup.
	Regex bool

	// CaseInsensitive ignores case when matching paths.
	CaseInsensitive bool
}

// FileSearcher maps file paths to owning package names.
type FileSearcher interface {
	// Search returns the packages owning the given path or pattern, in
	// backend-defined order. A path nobody owns yields an empty result,
	// not an error.
	Search(ctx context.Context, query string, opts SearchOptions) ([]string, error)
}

// Combined unions the results of several searchers, preserving
// first-seen order and dropping exact duplicates.
type Combined struct {
	searchers []FileSearcher
}

// NewCombined creates a searcher querying the given backends in order.
func NewCombined(searchers ...FileSearcher) *Combined {
	return &Combined{searchers: searchers}
}

// Search implements FileSearcher.
func (c *Combined) Search(ctx context.Context, query string, opts SearchOptions) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, s := range c.searchers {
		pkgs, err := s.Search(ctx, query, opts)
		if err != nil {
			return nil, err
		}
		for _, pkg := range pkgs {
			if seen[pkg] {
				continue
			}
			seen[pkg] = true
			out = append(out, pkg)
		}
	}
	return out, nil
}
