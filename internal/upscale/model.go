// Package upscale runs the neural super-resolution model that upscales a
// single RGB24 frame by a fixed factor of four, and resamples the result
// down to the aspect-preserving rectangle the writer stage needs.
package upscale

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
)

// ErrGpuTransient is returned by a ForwardFunc when the failure is
// believed to be transient (e.g. a momentary allocation failure) and
// worth retrying.
var ErrGpuTransient = errors.New("upscale: transient GPU failure")

const (
	maxForwardAttempts = 10
	forwardRetryDelay  = time.Second
)

// Tensor is an owned HxWx3 uint8 image buffer, row-major, channel-last
// (HWC), matching the layout ffmpeg hands over on its raw RGB24 pipe.
type Tensor struct {
	Width, Height int
	Pix           []byte
}

// ForwardFunc is the model's forward pass: it consumes a normalized CHW
// float32 tensor (values in [0, 1]) of the given height/width and returns
// the super-resolved CHW float32 tensor at 4x height and width. The
// weight layout and network architecture that implement this are outside
// this repository's scope; ForwardFunc is the seam where real weights are
// plugged in.
type ForwardFunc func(chw []float32, height, width int) (outCHW []float32, err error)

// ModelRunner wraps the model's forward pass (whose weights the caller
// fetches beforehand with EnsureWeights, see weights.go) and exposes the
// synchronous UpscaleTile operation, guarded by a bounded retry on
// transient GPU failures.
type ModelRunner struct {
	forward ForwardFunc
	logger  *zerolog.Logger
}

// NewModelRunner builds a ModelRunner around forward, the model's forward
// pass. Weights must already be resident (see EnsureWeights) before
// forward is usable.
func NewModelRunner(forward ForwardFunc, logger *zerolog.Logger) *ModelRunner {
	return &ModelRunner{forward: forward, logger: logger}
}

// UpscaleTile runs the model's forward pass on tensor and returns a new
// tensor exactly 4x its width and height. It converts to float, permutes
// HWC->CHW, divides by 255, runs the forward pass (up to 10 attempts,
// 1s apart, retrying on ErrGpuTransient), clamps the output to [0, 1],
// scales back to byte range, and permutes CHW->HWC.
func (m *ModelRunner) UpscaleTile(ctx context.Context, tensor Tensor) (Tensor, error) {
	chw := toCHWNormalized(tensor)

	var outCHW []float32
	var err error
	for attempt := 1; attempt <= maxForwardAttempts; attempt++ {
		outCHW, err = m.forward(chw, tensor.Height, tensor.Width)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrGpuTransient) {
			return Tensor{}, err
		}
		m.logger.Warn().Err(err).Int("attempt", attempt).Msg("upscale: transient GPU failure, retrying")
		if attempt == maxForwardAttempts {
			return Tensor{}, err
		}
		select {
		case <-ctx.Done():
			return Tensor{}, ctx.Err()
		case <-time.After(forwardRetryDelay):
		}
	}

	outWidth, outHeight := tensor.Width*4, tensor.Height*4
	clampToUnitRange(outCHW)
	return fromCHWDenormalized(outCHW, outWidth, outHeight), nil
}

// toCHWNormalized permutes an HWC uint8 tensor to CHW float32 in [0, 1].
func toCHWNormalized(t Tensor) []float32 {
	const channels = 3
	chw := make([]float32, channels*t.Height*t.Width)
	plane := t.Height * t.Width
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			pixOff := (y*t.Width + x) * channels
			for c := 0; c < channels; c++ {
				chw[c*plane+y*t.Width+x] = float32(t.Pix[pixOff+c])
			}
		}
	}
	scaled := make([]float64, len(chw))
	for i, v := range chw {
		scaled[i] = float64(v)
	}
	floats.Scale(1.0/255.0, scaled)
	for i, v := range scaled {
		chw[i] = float32(v)
	}
	return chw
}

// clampToUnitRange clamps every value of chw into [0, 1] in place.
func clampToUnitRange(chw []float32) {
	for i, v := range chw {
		switch {
		case v < 0:
			chw[i] = 0
		case v > 1:
			chw[i] = 1
		}
	}
}

// fromCHWDenormalized scales a [0,1] CHW float32 tensor back to byte
// range, rounds, and permutes CHW->HWC.
func fromCHWDenormalized(chw []float32, width, height int) Tensor {
	const channels = 3
	scaled := make([]float64, len(chw))
	for i, v := range chw {
		scaled[i] = float64(v)
	}
	floats.Scale(255.0, scaled)

	pix := make([]byte, width*height*channels)
	plane := height * width
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pixOff := (y*width + x) * channels
			for c := 0; c < channels; c++ {
				pix[pixOff+c] = byte(roundClampByte(scaled[c*plane+y*width+x]))
			}
		}
	}
	return Tensor{Width: width, Height: height, Pix: pix}
}

func roundClampByte(v float64) float64 {
	r := float64(int(v + 0.5))
	switch {
	case r < 0:
		return 0
	case r > 255:
		return 255
	default:
		return r
	}
}
