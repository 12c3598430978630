package transcodepipe

import (
	"context"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/bugale/Buganime/internal/probe"
	"github.com/bugale/Buganime/internal/upscale"
)

// Config describes one end-to-end pipeline run.
type Config struct {
	FFmpegPath   string
	InputPath    string
	OutputPath   string
	TempDir      string
	TargetWidth  int
	TargetHeight int
	Video        probe.VideoInfo
}

// Pipeline composes the frame reader, frame upscaler, pipeline
// coordinator, and frame writer/muxer into one streaming run, sharing one
// model runner and GPU lock across every frame.
type Pipeline struct {
	cfg     Config
	runner  *upscale.ModelRunner
	gpuLock *sync.Mutex
	logger  *zerolog.Logger
}

// NewPipeline builds a Pipeline. runner and gpuLock are owned by the
// caller and shared across every file processed in one run, matching the
// model weights and GPU lock being loaded once and shared for the whole
// process's lifetime.
func NewPipeline(cfg Config, runner *upscale.ModelRunner, gpuLock *sync.Mutex, logger *zerolog.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, runner: runner, gpuLock: gpuLock, logger: logger}
}

// Run executes the pipeline to completion. On any failure it cancels the
// outstanding work, terminates the child processes, and deletes the
// partial output file before returning the error.
func (p *Pipeline) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer func() {
		if err != nil {
			p.removePartialOutput()
		}
	}()

	upscaleWidth, upscaleHeight := UpscaleDimensions(p.cfg.Video.Width, p.cfg.Video.Height, p.cfg.TargetWidth, p.cfg.TargetHeight)

	reader := NewFrameReader(p.cfg.FFmpegPath, p.cfg.InputPath, p.cfg.Video.Width, p.cfg.Video.Height, p.logger)
	if err := reader.Start(ctx); err != nil {
		return err
	}
	defer reader.Close()

	writer := NewFrameWriter(WriterConfig{
		FFmpegPath:    p.cfg.FFmpegPath,
		UpscaleWidth:  upscaleWidth,
		UpscaleHeight: upscaleHeight,
		TargetWidth:   p.cfg.TargetWidth,
		TargetHeight:  p.cfg.TargetHeight,
		FPS:           p.cfg.Video.FPS,
		AudioIndex:    p.cfg.Video.AudioIndex,
		SubtitleIndex: p.cfg.Video.SubtitleIndex,
		OriginalPath:  p.cfg.InputPath,
		OutputPath:    p.cfg.OutputPath,
		TempDir:       p.cfg.TempDir,
	}, p.logger)
	if err := writer.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			writer.Abort()
		}
	}()

	upscaler := NewFrameUpscaler(p.runner, p.gpuLock, upscaleWidth, upscaleHeight, p.cfg.TargetWidth, p.cfg.TargetHeight)
	coordinator := NewCoordinator(reader, upscaler)

	written := 0
	runPool := pool.New().WithErrors().WithContext(ctx).WithCancelOnError()
	runPool.Go(func(ctx context.Context) error { return coordinator.produce(ctx) })
	runPool.Go(func(ctx context.Context) error {
		return coordinator.consume(ctx, p.writeAndReportProgress(writer, &written))
	})

	if err := runPool.Wait(); err != nil {
		return err
	}
	p.logger.Info().Int("frames", written).Str("path", p.cfg.InputPath).Msg("transcodepipe: transcode complete")
	return writer.Close()
}

// progressLogInterval is how often, in frames, the pipeline logs a
// decimated progress update instead of one line per frame.
const progressLogInterval = 100

// writeAndReportProgress wraps writer.WriteFrame with a frame counter,
// logging progress every progressLogInterval frames against the frame
// count ffprobe reported, since this is a batch/log-oriented tool rather
// than an interactive one with a terminal progress bar.
func (p *Pipeline) writeAndReportProgress(writer *FrameWriter, written *int) func(FrameBuffer) error {
	return func(frame FrameBuffer) error {
		if err := writer.WriteFrame(frame); err != nil {
			return err
		}
		*written++
		if *written%progressLogInterval == 0 {
			p.logger.Info().Int("frames", *written).Int("total", p.cfg.Video.Frames).
				Str("path", p.cfg.InputPath).Msg("transcodepipe: progress")
		}
		return nil
	}
}

func (p *Pipeline) removePartialOutput() {
	if removeErr := os.Remove(p.cfg.OutputPath); removeErr != nil && !os.IsNotExist(removeErr) {
		p.logger.Warn().Err(removeErr).Str("path", p.cfg.OutputPath).Msg("transcodepipe: failed to delete partial output")
	}
}
