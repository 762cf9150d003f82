// Package debian implements the small boolean-free package expression
// grammar used for resolved build dependencies: a comma-separated list
// of alternatives, each optionally constrained by a single version
// comparison. Any one alternative satisfies the relation; a resolution
// always produces exactly one relation.
package debian

import (
	"fmt"
	"regexp"
	"strings"
)

// VersionOp is a version comparison operator in a package constraint.
type VersionOp string

const (
	OpEqual        VersionOp = "="
	OpGreaterEqual VersionOp = ">="
	OpGreater      VersionOp = ">"
	OpLessEqual    VersionOp = "<="
	OpLess         VersionOp = "<"
)

var validOps = map[VersionOp]bool{
	OpEqual:        true,
	OpGreaterEqual: true,
	OpGreater:      true,
	OpLessEqual:    true,
	OpLess:         true,
}

// Package names: lowercase alphanumerics plus the usual punctuation,
// at least two characters, starting with an alphanumeric.
var packageNameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9+.-]+$`)

var versionRe = regexp.MustCompile(`^[A-Za-z0-9.+:~-]+$`)

// PackageRef is one alternative in a relation: a package name with an
// optional version constraint.
type PackageRef struct {
	Name    string
	Op      VersionOp
	Version string
}

// String renders the canonical textual form of the reference.
func (p PackageRef) String() string {
	if p.Op == "" {
		return p.Name
	}
	return fmt.Sprintf("%s (%s %s)", p.Name, p.Op, p.Version)
}

// Relation is a non-empty list of alternative package references. Any one
// of the alternatives satisfies the relation.
type Relation struct {
	Alternatives []PackageRef
}

// NewRelation builds a relation from a single unversioned package name.
func NewRelation(name string) (Relation, error) {
	return ParseRelation(name)
}

// MustRelation is NewRelation for statically known names; it panics on
// malformed input, which is a programming error.
func MustRelation(text string) Relation {
	rel, err := ParseRelation(text)
	if err != nil {
		panic(err)
	}
	return rel
}

var relRefRe = regexp.MustCompile(`^([^ (]+)(?:\s*\(\s*(>=|<=|=|>|<)\s*([^)]+?)\s*\))?$`)

// ParseRelation parses the canonical textual form, e.g.
// "libssl-dev (>= 1.1), libssl3". Malformed input is rejected loudly.
func ParseRelation(text string) (Relation, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Relation{}, fmt.Errorf("parse relation: empty expression")
	}

	parts := strings.Split(trimmed, ",")
	refs := make([]PackageRef, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return Relation{}, fmt.Errorf("parse relation %q: empty alternative", text)
		}

		m := relRefRe.FindStringSubmatch(part)
		if m == nil {
			return Relation{}, fmt.Errorf("parse relation %q: malformed alternative %q", text, part)
		}

		ref := PackageRef{Name: m[1]}
		if !packageNameRe.MatchString(ref.Name) {
			return Relation{}, fmt.Errorf("parse relation %q: invalid package name %q", text, ref.Name)
		}
		if m[2] != "" {
			op := VersionOp(m[2])
			if !validOps[op] {
				return Relation{}, fmt.Errorf("parse relation %q: unknown operator %q", text, m[2])
			}
			version := strings.TrimSpace(m[3])
			if !versionRe.MatchString(version) {
				return Relation{}, fmt.Errorf("parse relation %q: invalid version %q", text, version)
			}
			ref.Op = op
			ref.Version = version
		}
		refs = append(refs, ref)
	}

	return Relation{Alternatives: refs}, nil
}

// String renders the canonical comma-separated form. Parsing the result
// yields a structurally equal relation.
func (r Relation) String() string {
	parts := make([]string, len(r.Alternatives))
	for i, ref := range r.Alternatives {
		parts[i] = ref.String()
	}
	return strings.Join(parts, ", ")
}

// Equal reports structural equality, defined over the canonical form.
func (r Relation) Equal(other Relation) bool {
	return r.String() == other.String()
}

// Key returns a string usable as a map key; identical to the canonical
// textual form.
func (r Relation) Key() string {
	return r.String()
}

// PackageNames returns the names of all alternatives, in order.
func (r Relation) PackageNames() []string {
	names := make([]string, len(r.Alternatives))
	for i, ref := range r.Alternatives {
		names[i] = ref.Name
	}
	return names
}
