package transcodepipe

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/bugale/Buganime/internal/upscale"
)

func TestUpscaleDimensions_NarrowerThanTargetFitsHeightAndPillarboxes(t *testing.T) {
	// 1900x1080 into 3840x2160: src ratio 1.7593 < target ratio 1.7778, so
	// height fills the target and width falls short, leaving ~20px
	// pillarbox bars on each side.
	w, h := UpscaleDimensions(1900, 1080, 3840, 2160)
	assert.Equal(t, 3800, w)
	assert.Equal(t, 2160, h)
}

func TestUpscaleDimensions_WiderThanTargetFitsWidthAndLetterboxes(t *testing.T) {
	// 1940x1080 into 3840x2160: src ratio 1.7963 > target ratio 1.7778, so
	// width fills the target and height falls short, leaving ~11px
	// letterbox bars top and bottom.
	w, h := UpscaleDimensions(1940, 1080, 3840, 2160)
	assert.Equal(t, 3840, w)
	assert.Equal(t, 2138, h)
}

func TestUpscaleDimensions_MatchingAspectFillsExactly(t *testing.T) {
	w, h := UpscaleDimensions(1920, 1080, 3840, 2160)
	assert.Equal(t, 3840, w)
	assert.Equal(t, 2160, h)
}

// TestFrameUpscaler_Upscale_DoesNotFastPathAnAspectRectangleShortOfTarget
// guards against comparing the fast path to the aspect-preserving
// upscale rectangle instead of the literal target canvas. A 4x2 source
// into a 4x6 target produces an upscale rectangle of exactly 4x2
// (width-filling, letterboxed), which must still be run through the
// model and resample since its height falls short of the target canvas.
func TestFrameUpscaler_Upscale_DoesNotFastPathAnAspectRectangleShortOfTarget(t *testing.T) {
	logger := zerolog.Nop()
	forwardCalled := false
	forward := func(chw []float32, height, width int) ([]float32, error) {
		forwardCalled = true
		return make([]float32, len(chw)*16), nil
	}
	runner := upscale.NewModelRunner(forward, &logger)

	upscaleWidth, upscaleHeight := UpscaleDimensions(4, 2, 4, 6)
	assert.Equal(t, 4, upscaleWidth)
	assert.Equal(t, 2, upscaleHeight)

	u := NewFrameUpscaler(runner, &sync.Mutex{}, upscaleWidth, upscaleHeight, 4, 6)
	frame := FrameBuffer{Width: 4, Height: 2, Pix: make([]byte, 4*2*3)}

	_, err := u.Upscale(context.Background(), frame)

	assert.NoError(t, err)
	assert.True(t, forwardCalled, "frame matching the upscale rectangle but not the target canvas must not be fast-pathed")
}

// TestFrameUpscaler_Upscale_FastPathsOnlyWhenFrameFillsTargetCanvas
// confirms the fast path still applies once a frame is genuinely at the
// target canvas size.
func TestFrameUpscaler_Upscale_FastPathsOnlyWhenFrameFillsTargetCanvas(t *testing.T) {
	forwardCalled := false
	forward := func(chw []float32, height, width int) ([]float32, error) {
		forwardCalled = true
		return nil, nil
	}
	logger := zerolog.Nop()
	runner := upscale.NewModelRunner(forward, &logger)

	u := NewFrameUpscaler(runner, &sync.Mutex{}, 4, 6, 4, 6)
	frame := FrameBuffer{Width: 4, Height: 6, Pix: []byte{1, 2, 3}}

	out, err := u.Upscale(context.Background(), frame)

	assert.NoError(t, err)
	assert.Equal(t, frame, out)
	assert.False(t, forwardCalled)
}
