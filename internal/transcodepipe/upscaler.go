package transcodepipe

import (
	"context"
	"sync"

	"github.com/bugale/Buganime/internal/upscale"
)

// FrameUpscaler turns one decoded FrameBuffer into an upscaled
// FrameBuffer sized exactly upscaleWidth x upscaleHeight. Source frames
// that already match the target canvas dimensions pass through
// unchanged; all others run the model's 4x forward pass under gpuLock,
// then a Lanczos-4 resample (off the lock, so it may overlap another
// frame's GPU step) to the aspect-preserving rectangle.
type FrameUpscaler struct {
	runner        *upscale.ModelRunner
	gpuLock       *sync.Mutex
	upscaleWidth  int
	upscaleHeight int
	targetWidth   int
	targetHeight  int
}

// NewFrameUpscaler builds a FrameUpscaler targeting upscaleWidth x
// upscaleHeight (the aspect-preserving rectangle computed from the source
// and target dimensions, used as the Lanczos resample target) and
// targetWidth x targetHeight (the literal output canvas, used for the
// fast-path check: only a frame already filling the whole canvas can
// skip processing).
func NewFrameUpscaler(runner *upscale.ModelRunner, gpuLock *sync.Mutex, upscaleWidth, upscaleHeight, targetWidth, targetHeight int) *FrameUpscaler {
	return &FrameUpscaler{
		runner: runner, gpuLock: gpuLock,
		upscaleWidth: upscaleWidth, upscaleHeight: upscaleHeight,
		targetWidth: targetWidth, targetHeight: targetHeight,
	}
}

// Upscale runs the three-step upscale described above on one frame.
func (u *FrameUpscaler) Upscale(ctx context.Context, frame FrameBuffer) (FrameBuffer, error) {
	if frame.Width == u.targetWidth && frame.Height == u.targetHeight {
		return frame, nil
	}

	tensor := upscale.Tensor{Width: frame.Width, Height: frame.Height, Pix: frame.Pix}

	u.gpuLock.Lock()
	quadrupled, err := u.runner.UpscaleTile(ctx, tensor)
	u.gpuLock.Unlock()
	if err != nil {
		return FrameBuffer{}, err
	}

	resampled := upscale.ResizeLanczos4(quadrupled, u.upscaleWidth, u.upscaleHeight)
	return FrameBuffer{Width: resampled.Width, Height: resampled.Height, Pix: resampled.Pix}, nil
}

// UpscaleDimensions computes the aspect-preserving rectangle that fits
// inside targetWidth x targetHeight for a source of srcWidth x
// srcHeight.
func UpscaleDimensions(srcWidth, srcHeight, targetWidth, targetHeight int) (int, int) {
	if float64(srcWidth)/float64(srcHeight) > float64(targetWidth)/float64(targetHeight) {
		upscaleWidth := targetWidth
		upscaleHeight := roundDiv(srcHeight*targetWidth, srcWidth)
		return upscaleWidth, upscaleHeight
	}
	upscaleHeight := targetHeight
	upscaleWidth := roundDiv(srcWidth*targetHeight, srcHeight)
	return upscaleWidth, upscaleHeight
}

// roundDiv computes round(a/b) using integer arithmetic.
func roundDiv(a, b int) int {
	if (a < 0) != (b < 0) {
		return -roundDiv(-a, b)
	}
	return (a + b/2) / b
}
