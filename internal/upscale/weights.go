package upscale

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// EnsureWeights downloads the model weights file from url into cachePath
// if it is not already present, using a one-shot cancellable download.
// It downloads into a temporary sibling file first and renames into place
// so a cancelled or failed download never leaves a partial file at
// cachePath.
func EnsureWeights(ctx context.Context, cachePath, url string, logger *zerolog.Logger) error {
	if _, err := os.Stat(cachePath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("upscale: failed to stat weights cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
		return fmt.Errorf("upscale: failed to create weights cache dir: %w", err)
	}

	logger.Info().Str("url", url).Str("path", cachePath).Msg("upscale: downloading model weights")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("upscale: failed to build weights request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("upscale: failed to download weights: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upscale: weights download returned status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(cachePath), "weights-*.tmp")
	if err != nil {
		return fmt.Errorf("upscale: failed to create temp weights file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("upscale: failed to write weights: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("upscale: failed to close temp weights file: %w", err)
	}

	if err := os.Rename(tmpPath, cachePath); err != nil {
		return fmt.Errorf("upscale: failed to place downloaded weights: %w", err)
	}
	logger.Info().Str("path", cachePath).Msg("upscale: model weights ready")
	return nil
}
