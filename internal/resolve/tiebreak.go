package resolve

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/jelmer/ognibuild-sub000/internal/deps"
	"github.com/rs/zerolog"
)

// TieBreaker chooses among several plausible candidates, or abstains by
// returning nil. Implementations must not mutate the candidate slice.
type TieBreaker interface {
	Name() string
	Pick(candidates []Candidate) *Candidate
}

// PickBest applies the tie-breakers in priority order. With a single
// candidate no tie-breaker runs; when every tie-breaker abstains the
// first candidate in generation order wins, which is logged because the
// choice is then arbitrary.
func PickBest(candidates []Candidate, tieBreakers []TieBreaker, log *zerolog.Logger) (Candidate, error) {
	switch len(candidates) {
	case 0:
		return Candidate{}, deps.ErrUnknownDependencyFamily
	case 1:
		return candidates[0], nil
	}

	for _, tb := range tieBreakers {
		if winner := tb.Pick(candidates); winner != nil {
			log.Debug().
				Str("tie_breaker", tb.Name()).
				Str("package", winner.Relation.String()).
				Msg("tie-breaker picked candidate")
			return *winner, nil
		}
	}

	log.Debug().
		Str("package", candidates[0].Relation.String()).
		Int("candidates", len(candidates)).
		Msg("all tie-breakers abstained, falling back to first candidate")
	return candidates[0], nil
}

// BuildDeps prefers the candidate whose package name already appears
// most often among the project's declared build dependencies. The corpus
// is scanned lazily, once per session.
type BuildDeps struct {
	projectDir string
	once       sync.Once
	counts     map[string]int
}

// NewBuildDeps creates the build-dependency popularity tie-breaker for a
// project directory.
func NewBuildDeps(projectDir string) *BuildDeps {
	return &BuildDeps{projectDir: projectDir}
}

// Name implements TieBreaker.
func (b *BuildDeps) Name() string { return "build-deps" }

var depFieldRe = regexp.MustCompile(`^(Build-Depends|Build-Depends-Indep|Build-Depends-Arch|Depends):`)
var depNameRe = regexp.MustCompile(`[a-z0-9][a-z0-9+.-]+`)

// Pick implements TieBreaker.
func (b *BuildDeps) Pick(candidates []Candidate) *Candidate {
	b.once.Do(b.scan)
	if len(b.counts) == 0 {
		return nil
	}

	bestIdx := -1
	bestCount := 0
	tied := false
	for i, c := range candidates {
		count := 0
		for _, name := range c.Relation.PackageNames() {
			count += b.counts[name]
		}
		if count > bestCount {
			bestIdx, bestCount, tied = i, count, false
		} else if count == bestCount && count > 0 {
			tied = true
		}
	}
	if bestIdx < 0 || tied {
		return nil
	}
	return &candidates[bestIdx]
}

// scan reads debian/control and counts every package name mentioned in
// a dependency field, continuation lines included.
func (b *BuildDeps) scan() {
	b.counts = make(map[string]int)
	if b.projectDir == "" {
		return
	}

	f, err := os.Open(filepath.Join(b.projectDir, "debian", "control"))
	if err != nil {
		return
	}
	defer f.Close()

	inDepField := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case depFieldRe.MatchString(line):
			inDepField = true
			_, rest, _ := strings.Cut(line, ":")
			b.countNames(rest)
		case inDepField && strings.HasPrefix(line, " "):
			b.countNames(line)
		default:
			inDepField = false
		}
	}
}

func (b *BuildDeps) countNames(text string) {
	for _, clause := range strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == '|' }) {
		if name := depNameRe.FindString(strings.TrimSpace(clause)); name != "" {
			b.counts[name]++
		}
	}
}

// PythonRuntime prefers the candidate matching the Python runtime the
// project already targets, e.g. python3- prefixed packages when python3
// is in use.
type PythonRuntime struct {
	prefix string
}

// NewPythonRuntime creates the runtime-variant tie-breaker; runtime is
// the interpreter name, e.g. "python3".
func NewPythonRuntime(runtime string) *PythonRuntime {
	return &PythonRuntime{prefix: runtime + "-"}
}

// Name implements TieBreaker.
func (p *PythonRuntime) Name() string { return "python-runtime" }

// Pick implements TieBreaker.
func (p *PythonRuntime) Pick(candidates []Candidate) *Candidate {
	var match *Candidate
	for i := range candidates {
		for _, name := range candidates[i].Relation.PackageNames() {
			if strings.HasPrefix(name, p.prefix) {
				if match != nil {
					// Several candidates fit the runtime; abstain.
					return nil
				}
				match = &candidates[i]
				break
			}
		}
	}
	return match
}

// Popcon prefers the candidate with the highest external popularity
// score. Scores come from popularity-contest telemetry supplied at
// construction; the tie-breaker is off by default and only wired in
// when configured.
type Popcon struct {
	scores map[string]int
}

// NewPopcon creates the telemetry tie-breaker from a package-to-score
// table.
func NewPopcon(scores map[string]int) *Popcon {
	return &Popcon{scores: scores}
}

// Name implements TieBreaker.
func (p *Popcon) Name() string { return "popcon" }

// Pick implements TieBreaker.
func (p *Popcon) Pick(candidates []Candidate) *Candidate {
	bestIdx := -1
	bestScore := 0
	tied := false
	for i, c := range candidates {
		score := 0
		for _, name := range c.Relation.PackageNames() {
			if s := p.scores[name]; s > score {
				score = s
			}
		}
		if score > bestScore {
			bestIdx, bestScore, tied = i, score, false
		} else if score == bestScore && score > 0 {
			tied = true
		}
	}
	if bestIdx < 0 || tied {
		return nil
	}
	return &candidates[bestIdx]
}
