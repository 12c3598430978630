package probe

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/davecgh/go-spew/spew"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Probe spawns `ffprobe -show_format -show_streams -of json <inputPath>`
// and returns the decoded stream list.
func Probe(ctx context.Context, ffprobePath, inputPath string, logger *zerolog.Logger) ([]Stream, error) {
	cmd := exec.CommandContext(ctx, ffprobePath, "-show_format", "-show_streams", "-of", "json", inputPath)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		logger.Error().Err(err).Str("stderr", stderr.String()).Msg("probe: ffprobe failed")
		return nil, fmt.Errorf("probe: ffprobe failed: %w", err)
	}
	logger.Trace().Str("path", inputPath).Msg("probe: ffprobe succeeded")

	var out probeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("probe: failed to decode ffprobe output: %w", err)
	}
	logger.Trace().Msg("probe: decoded streams:\n" + spew.Sdump(out.Streams))
	return out.Streams, nil
}
