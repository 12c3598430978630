package probe

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/bugale/Buganime/internal/util"
)

// Prober wraps Probe with a per-path cache, so re-probing the same file
// within one run (e.g. a retry after a transient transcode failure) does
// not re-invoke ffprobe.
type Prober struct {
	ffprobePath string
	logger      *zerolog.Logger
	cache       *util.Cache[string, []Stream]
}

// NewProber builds a Prober that invokes ffprobePath and caches results by
// input path.
func NewProber(ffprobePath string, logger *zerolog.Logger) *Prober {
	return &Prober{ffprobePath: ffprobePath, logger: logger, cache: util.NewCache[string, []Stream]()}
}

// Probe returns the stream list for inputPath, probing it with ffprobe on
// first request and serving the cached result on subsequent requests.
func (p *Prober) Probe(ctx context.Context, inputPath string) ([]Stream, error) {
	return p.cache.GetOrCompute(inputPath, func() ([]Stream, error) {
		return Probe(ctx, p.ffprobePath, inputPath, p.logger)
	})
}
