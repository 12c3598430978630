package upscale

import "math"

// lanczosA is the support radius (a) of the Lanczos kernel; a=4 matches
// OpenCV's INTER_LANCZOS4, used for the target-rectangle resample step.
const lanczosA = 4

// sinc is the normalized sinc function used by the Lanczos kernel.
func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

// lanczosKernel evaluates the Lanczos-4 windowed sinc kernel at x.
func lanczosKernel(x float64) float64 {
	if x <= -lanczosA || x >= lanczosA {
		return 0
	}
	return sinc(x) * sinc(x/lanczosA)
}

// ResizeLanczos4 resamples src to exactly outWidth x outHeight using a
// separable Lanczos-4 filter, matching the non-GPU resample step between
// the model's fixed 4x output and the writer's target rectangle. There is
// no ecosystem library offering this exact kernel over a raw RGB24 byte
// tensor, so it is implemented directly.
func ResizeLanczos4(src Tensor, outWidth, outHeight int) Tensor {
	if src.Width == outWidth && src.Height == outHeight {
		return src
	}

	// Horizontal pass: src.Width x src.Height -> outWidth x src.Height.
	horizontal := resizeAxis(src, outWidth, src.Height, true)
	// Vertical pass: outWidth x src.Height -> outWidth x outHeight.
	return resizeAxis(horizontal, outWidth, outHeight, false)
}

// resizeAxis resamples along one axis (horizontal when horiz is true,
// vertical otherwise), holding the other axis's dimension fixed.
func resizeAxis(src Tensor, outWidth, outHeight int, horiz bool) Tensor {
	const channels = 3
	dst := Tensor{Width: outWidth, Height: outHeight, Pix: make([]byte, outWidth*outHeight*channels)}

	var srcLen, dstLen int
	if horiz {
		srcLen, dstLen = src.Width, outWidth
	} else {
		srcLen, dstLen = src.Height, outHeight
	}
	scale := float64(srcLen) / float64(dstLen)

	for dstPos := 0; dstPos < dstLen; dstPos++ {
		srcCenter := (float64(dstPos)+0.5)*scale - 0.5
		lo := int(math.Floor(srcCenter)) - lanczosA + 1
		hi := int(math.Floor(srcCenter)) + lanczosA

		weights := make([]float64, hi-lo+1)
		var weightSum float64
		for i := lo; i <= hi; i++ {
			w := lanczosKernel(srcCenter - float64(i))
			weights[i-lo] = w
			weightSum += w
		}
		if weightSum == 0 {
			weightSum = 1
		}

		if horiz {
			for y := 0; y < src.Height; y++ {
				for c := 0; c < channels; c++ {
					var acc float64
					for i := lo; i <= hi; i++ {
						sx := clampIndex(i, src.Width)
						acc += weights[i-lo] * float64(src.Pix[(y*src.Width+sx)*channels+c])
					}
					dst.Pix[(y*outWidth+dstPos)*channels+c] = byte(roundClampByte(acc / weightSum))
				}
			}
		} else {
			for x := 0; x < outWidth; x++ {
				for c := 0; c < channels; c++ {
					var acc float64
					for i := lo; i <= hi; i++ {
						sy := clampIndex(i, src.Height)
						acc += weights[i-lo] * float64(src.Pix[(sy*outWidth+x)*channels+c])
					}
					dst.Pix[(dstPos*outWidth+x)*channels+c] = byte(roundClampByte(acc / weightSum))
				}
			}
		}
	}
	return dst
}

// clampIndex clamps an out-of-range source index into [0, n-1],
// matching the border-replication behavior of OpenCV's default border
// mode for resize.
func clampIndex(i, n int) int {
	switch {
	case i < 0:
		return 0
	case i >= n:
		return n - 1
	default:
		return i
	}
}
