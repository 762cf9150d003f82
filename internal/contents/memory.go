package contents

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// MemorySearcher holds a flat path-to-packages index in memory. It is
// built once by the loader and read-only afterwards, so concurrent reads
// are safe.
type MemorySearcher struct {
	entries map[string][]string
	lower   map[string][]string
}

// NewMemorySearcher creates an empty in-memory index.
func NewMemorySearcher() *MemorySearcher {
	return &MemorySearcher{
		entries: make(map[string][]string),
		lower:   make(map[string][]string),
	}
}

// Add records that pkg owns path. Re-adding an existing path/package
// pair is a no-op; a new package for a known path is appended.
func (m *MemorySearcher) Add(path, pkg string) {
	addOwner(m.entries, path, pkg)
	addOwner(m.lower, strings.ToLower(path), pkg)
}

func addOwner(index map[string][]string, path, pkg string) {
	for _, existing := range index[path] {
		if existing == pkg {
			return
		}
	}
	index[path] = append(index[path], pkg)
}

// Replace overwrites the owners of path; used by the loader for its
// last-write-wins merge across sources.
func (m *MemorySearcher) Replace(path string, pkgs []string) {
	m.entries[path] = append([]string(nil), pkgs...)
	m.lower[strings.ToLower(path)] = append([]string(nil), pkgs...)
}

// Len returns the number of indexed paths.
func (m *MemorySearcher) Len() int {
	return len(m.entries)
}

// Search implements FileSearcher. Exact queries are an O(1) map lookup;
// regex queries compile the pattern once and scan every entry, which is
// deliberately linear in index size.
func (m *MemorySearcher) Search(ctx context.Context, query string, opts SearchOptions) ([]string, error) {
	if !opts.Regex {
		if opts.CaseInsensitive {
			return append([]string(nil), m.lower[strings.ToLower(query)]...), nil
		}
		return append([]string(nil), m.entries[query]...), nil
	}

	pattern := query
	if opts.CaseInsensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile search pattern %q: %w", query, err)
	}

	var out []string
	seen := make(map[string]bool)
	for path, pkgs := range m.entries {
		if !re.MatchString(path) {
			continue
		}
		for _, pkg := range pkgs {
			if !seen[pkg] {
				seen[pkg] = true
				out = append(out, pkg)
			}
		}
	}
	return out, nil
}
