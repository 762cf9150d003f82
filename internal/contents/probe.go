package contents

import (
	"context"

	"github.com/jelmer/ognibuild-sub000/internal/helpers"
	"github.com/rs/zerolog"
)

// NewSearcher picks the best available backend: apt-file with a
// populated cache when present, otherwise an in-memory index built from
// the configured sources.
func NewSearcher(ctx context.Context, runner helpers.CommandRunner, log *zerolog.Logger, opts LoaderOptions, sources []Source) (FileSearcher, error) {
	aptFile, err := NewAptFile(runner)
	if err == nil {
		log.Debug().Msg("using apt-file for contents searches")
		return aptFile, nil
	}
	log.Debug().Err(err).Msg("apt-file unavailable, building in-memory contents index")

	loader := NewLoader(runner, log, opts)
	return loader.Load(ctx, sources)
}
