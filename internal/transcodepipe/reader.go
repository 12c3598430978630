// Package transcodepipe composes the frame reader, frame upscaler, pipeline
// coordinator, and frame writer/muxer into the end-to-end streaming upscale
// pipeline: decode → upscale → encode, three stages connected by a bounded
// queue of in-flight upscale tasks.
package transcodepipe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/rs/zerolog"
)

// ErrDecodeFailure is returned when the decode subprocess exits non-zero
// or its pipe closes in a way that is not a clean end-of-stream.
var ErrDecodeFailure = errors.New("transcodepipe: decode failure")

// FrameBuffer is an owned byte sequence of exactly width*height*3 bytes,
// RGB24 top-to-bottom, row-major, no padding.
type FrameBuffer struct {
	Width, Height int
	Pix           []byte
}

// FrameReader spawns ffmpeg to decode a matroska input to a raw RGB24
// pipe and yields fixed-size FrameBuffers in decode order.
type FrameReader struct {
	ffmpegPath    string
	inputPath     string
	width, height int
	logger        *zerolog.Logger

	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr bytes.Buffer
}

// NewFrameReader builds a FrameReader for inputPath, which is expected to
// carry frames of exactly width x height pixels.
func NewFrameReader(ffmpegPath, inputPath string, width, height int, logger *zerolog.Logger) *FrameReader {
	return &FrameReader{ffmpegPath: ffmpegPath, inputPath: inputPath, width: width, height: height, logger: logger}
}

// Start spawns the decode subprocess. Call Close (directly, or via Run's
// cleanup) on every exit path to terminate and reap the child.
func (r *FrameReader) Start(ctx context.Context) error {
	r.cmd = exec.CommandContext(ctx, r.ffmpegPath,
		"-i", r.inputPath,
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:",
		"-loglevel", "warning",
	)
	r.cmd.Stderr = &r.stderr

	stdout, err := r.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: failed to open decode stdout: %v", ErrDecodeFailure, err)
	}
	r.stdout = stdout

	if err := r.cmd.Start(); err != nil {
		return fmt.Errorf("%w: failed to start ffmpeg decode: %v", ErrDecodeFailure, err)
	}
	return nil
}

// ReadFrame reads the next frame. It returns ok=false with a nil error
// when the decode stream ends cleanly — an incomplete read at EOF is
// treated as end of stream, not an error, since ffmpeg's rawvideo muxer
// has no way to signal a clean stop short of closing the pipe. If the
// decode subprocess exited non-zero, the end of stream is reported as
// ErrDecodeFailure instead.
func (r *FrameReader) ReadFrame() (FrameBuffer, bool, error) {
	frameLen := r.width * r.height * 3
	buf := make([]byte, frameLen)
	n, err := io.ReadFull(r.stdout, buf)
	switch {
	case err == nil:
		return FrameBuffer{Width: r.width, Height: r.height, Pix: buf}, true, nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		if n > 0 {
			r.logger.Debug().Int("partial_bytes", n).Msg("transcodepipe: reader saw a short final frame, treating as end of stream")
		}
		if r.cmd != nil && r.cmd.Process != nil && r.cmd.ProcessState == nil {
			if waitErr := r.cmd.Wait(); waitErr != nil {
				return FrameBuffer{}, false, fmt.Errorf("%w: ffmpeg decode exited: %v", ErrDecodeFailure, waitErr)
			}
		}
		return FrameBuffer{}, false, nil
	default:
		return FrameBuffer{}, false, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}
}

// Close terminates the decode subprocess if it is still running, drains
// its stderr to the log, and reaps it. It is safe to call multiple times.
func (r *FrameReader) Close() error {
	if r.cmd == nil || r.cmd.Process == nil {
		return nil
	}
	if r.cmd.ProcessState == nil {
		_ = r.cmd.Process.Kill()
	}
	err := r.cmd.Wait()
	if r.stderr.Len() > 0 {
		r.logger.Debug().Str("stderr", r.stderr.String()).Msg("transcodepipe: ffmpeg decode stderr")
	}
	if err != nil && r.cmd.ProcessState != nil && !r.cmd.ProcessState.Success() {
		r.logger.Error().Err(err).Msg("transcodepipe: ffmpeg decode exited non-zero")
	}
	return nil
}
