package contents

import (
	"context"
	"regexp"
	"strings"
)

// overrideEntries maps paths that the bulk Contents indices cover badly
// to the packages that actually provide them. Generated files, locale
// tooling and interpreter-internal paths mostly.
var overrideEntries = map[string][]string{
	"/usr/bin/locale-gen":               {"locales"},
	"/usr/sbin/locale-gen":              {"locales"},
	"/usr/share/i18n/SUPPORTED":         {"locales"},
	"/usr/bin/update-mime-database":     {"shared-mime-info"},
	"/usr/bin/gdk-pixbuf-query-loaders": {"libgdk-pixbuf2.0-bin"},
	"/usr/bin/rst2html":                 {"python3-docutils"},
	"/usr/bin/sphinx-build":             {"python3-sphinx"},
}

// Override is a small static searcher layered over the bulk index for
// paths the Contents files do not reliably list.
type Override struct {
	entries map[string][]string
}

// NewOverride creates the static override table searcher.
func NewOverride() *Override {
	return &Override{entries: overrideEntries}
}

// Search implements FileSearcher with the same match semantics as the
// in-memory index: exact lookup or a full scan for regex queries.
func (o *Override) Search(ctx context.Context, query string, opts SearchOptions) ([]string, error) {
	if !opts.Regex {
		if opts.CaseInsensitive {
			lowered := strings.ToLower(query)
			for path, pkgs := range o.entries {
				if strings.ToLower(path) == lowered {
					return append([]string(nil), pkgs...), nil
				}
			}
			return nil, nil
		}
		return append([]string(nil), o.entries[query]...), nil
	}

	pattern := query
	if opts.CaseInsensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	var out []string
	seen := make(map[string]bool)
	for path, pkgs := range o.entries {
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
