package transcodepipe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/samber/mo"
)

// ErrEncodeFailure is returned when the encode subprocess exits non-zero
// or its stdin pipe breaks before the stream is complete.
var ErrEncodeFailure = errors.New("transcodepipe: encode failure")

// ErrIoFailure is returned when staging the original container into the
// temp directory (link or copy) fails; fatal for the file.
var ErrIoFailure = errors.New("transcodepipe: io failure")

// WriterConfig describes one writer run: the fixed upscaled-frame
// rectangle arriving on stdin, the target letterbox/pillarbox rectangle,
// and the original container's selected audio/subtitle streams.
type WriterConfig struct {
	FFmpegPath                string
	UpscaleWidth, UpscaleHeight int
	TargetWidth, TargetHeight   int
	FPS                         string
	AudioIndex                  int
	SubtitleIndex               mo.Option[int]
	OriginalPath                string
	OutputPath                  string
	TempDir                     string
}

// FrameWriter spawns ffmpeg with two inputs — the raw upscaled frame
// stream on stdin, and the original container linked or copied into the
// temp directory — and muxes audio, burns subtitles, pads to the target
// rectangle, and encodes HEVC.
type FrameWriter struct {
	cfg    WriterConfig
	logger *zerolog.Logger

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout bytes.Buffer
	stderr bytes.Buffer
}

const linkedInputName = "input.mkv"

// NewFrameWriter builds a FrameWriter for cfg.
func NewFrameWriter(cfg WriterConfig, logger *zerolog.Logger) *FrameWriter {
	return &FrameWriter{cfg: cfg, logger: logger}
}

// Start places the original container into the temp directory (hard
// link, falling back to a copy across filesystems) and spawns the encode
// subprocess.
func (w *FrameWriter) Start(ctx context.Context) error {
	linkedPath := filepath.Join(w.cfg.TempDir, linkedInputName)
	if err := linkOrCopy(w.cfg.OriginalPath, linkedPath); err != nil {
		return fmt.Errorf("%w: failed to stage original container: %v", ErrIoFailure, err)
	}

	args := []string{
		"-f", "rawvideo",
		"-framerate", w.cfg.FPS,
		"-pix_fmt", "rgb24",
		"-s", fmt.Sprintf("%dx%d", w.cfg.UpscaleWidth, w.cfg.UpscaleHeight),
		"-i", "pipe:",
		"-i", linkedPath,
		"-map", "0",
		"-map", fmt.Sprintf("1:%d", w.cfg.AudioIndex),
		"-vf", w.filterChain(),
		"-vcodec", "libx265",
		"-pix_fmt", "yuv420p",
		w.cfg.OutputPath,
		"-loglevel", "warning",
		"-y",
	}
	w.cmd = exec.CommandContext(ctx, w.cfg.FFmpegPath, args...)
	w.cmd.Stdout = &w.stdout
	w.cmd.Stderr = &w.stderr

	stdin, err := w.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("%w: failed to open encode stdin: %v", ErrEncodeFailure, err)
	}
	w.stdin = stdin

	if err := w.cmd.Start(); err != nil {
		return fmt.Errorf("%w: failed to start ffmpeg encode: %v", ErrEncodeFailure, err)
	}
	return nil
}

// filterChain builds the -vf argument: subtitles burned from the linked
// original (subtitle-relative indexing, not the global stream index),
// then padded to the target rectangle with black bars.
func (w *FrameWriter) filterChain() string {
	pad := fmt.Sprintf("pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black", w.cfg.TargetWidth, w.cfg.TargetHeight)
	if idx, ok := w.cfg.SubtitleIndex.Get(); ok {
		return fmt.Sprintf("subtitles=%s:si=%s, %s", linkedInputName, strconv.Itoa(idx), pad)
	}
	return pad
}

// WriteFrame writes one upscaled frame to the encoder's stdin and waits
// for the write to complete, which exerts backpressure up the pipeline.
func (w *FrameWriter) WriteFrame(frame FrameBuffer) error {
	if _, err := w.stdin.Write(frame.Pix); err != nil {
		return fmt.Errorf("%w: %v", ErrEncodeFailure, err)
	}
	return nil
}

// Close ends the frame stream, reaps the encode subprocess, and logs its
// output. It returns ErrEncodeFailure if the encoder exited non-zero.
func (w *FrameWriter) Close() error {
	if w.stdin != nil {
		_ = w.stdin.Close()
	}
	if w.cmd == nil {
		return nil
	}
	err := w.cmd.Wait()
	if w.stdout.Len() > 0 {
		w.logger.Debug().Str("stdout", w.stdout.String()).Msg("transcodepipe: ffmpeg encode stdout")
	}
	if w.stderr.Len() > 0 {
		w.logger.Debug().Str("stderr", w.stderr.String()).Msg("transcodepipe: ffmpeg encode stderr")
	}
	if err != nil {
		w.logger.Error().Err(err).Msg("transcodepipe: ffmpeg encode exited non-zero")
		return fmt.Errorf("%w: %v", ErrEncodeFailure, err)
	}
	return nil
}

// Abort kills the encode subprocess, reaps it, and drains its
// stdout/stderr to the log the same way Close does, used on
// pipeline-wide cancellation so a failed run never leaves a zombie
// ffmpeg process or discards its diagnostic output.
func (w *FrameWriter) Abort() {
	if w.stdin != nil {
		_ = w.stdin.Close()
	}
	if w.cmd == nil || w.cmd.Process == nil {
		return
	}
	_ = w.cmd.Process.Kill()
	_ = w.cmd.Wait()
	if w.stdout.Len() > 0 {
		w.logger.Debug().Str("stdout", w.stdout.String()).Msg("transcodepipe: ffmpeg encode stdout")
	}
	if w.stderr.Len() > 0 {
		w.logger.Debug().Str("stderr", w.stderr.String()).Msg("transcodepipe: ffmpeg encode stderr")
	}
}

// linkOrCopy hard-links src at dst, falling back to a byte copy when src
// and dst are not on the same filesystem (or linking is otherwise
// unsupported).
func linkOrCopy(src, dst string) error {
	if err := os.Link(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}
