// Command buganime batch-transcodes anime matroska files to a target
// resolution using a neural super-resolution model, classifying each
// input into a series/season/episode or a movie and routing the output
// into a deterministic on-disk hierarchy.
package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bugale/Buganime/internal/classifier"
	"github.com/bugale/Buganime/internal/constants"
	"github.com/bugale/Buganime/internal/outputlayout"
	"github.com/bugale/Buganime/internal/probe"
	"github.com/bugale/Buganime/internal/singleinstance"
	"github.com/bugale/Buganime/internal/transcodepipe"
	"github.com/bugale/Buganime/internal/upscale"
	"github.com/bugale/Buganime/internal/util"
)

func main() {
	os.Exit(run())
}

func run() int {
	acceptNoSubtitles := flag.Bool("accept-no-subtitles", false, "do not fail a file solely because no English subtitle track was found")
	targetWidth := flag.Int("target-width", constants.DefaultTargetWidth, "output frame width")
	targetHeight := flag.Int("target-height", constants.DefaultTargetHeight, "output frame height")
	ffmpegPath := flag.String("ffmpeg", "ffmpeg", "path to the ffmpeg executable")
	ffprobePath := flag.String("ffprobe", "ffprobe", "path to the ffprobe executable")
	flag.Parse()

	// Flags may also follow the positional input path, as in the usage line.
	args := flag.Args()
	if len(args) > 1 {
		_ = flag.CommandLine.Parse(args[1:])
		args = append(args[:1:1], flag.Args()...)
	}

	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: buganime <input_path> [--accept-no-subtitles]")
		return 1
	}
	inputPath := args[0]

	logPath := fmt.Sprintf("buganime_%s_%d.txt", strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath)), time.Now().Unix())
	logger, err := util.NewFileLogger(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		return 1
	}

	a, err := newApp(*ffmpegPath, *ffprobePath, *targetWidth, *targetHeight, logger)
	if err != nil {
		logger.Error().Err(err).Msg("buganime: failed to initialize")
		return 1
	}

	info, err := os.Stat(inputPath)
	if err != nil {
		logger.Error().Err(err).Str("path", inputPath).Msg("buganime: failed to stat input path")
		return 1
	}

	if !info.IsDir() {
		if err := a.processFile(context.Background(), inputPath, *acceptNoSubtitles); err != nil {
			logger.Error().Err(err).Str("path", inputPath).Msg("buganime: transcode failed")
			return 1
		}
		return 0
	}

	failures := 0
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".mkv") {
			return nil
		}
		if procErr := a.processFile(context.Background(), path, *acceptNoSubtitles); procErr != nil {
			logger.Error().Err(procErr).Str("path", path).Msg("buganime: transcode failed, continuing with next file")
			failures++
		}
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Str("path", inputPath).Msg("buganime: directory walk failed")
		return 1
	}
	if failures > 0 {
		return 1
	}
	return 0
}

// app holds the process-lifetime resources shared across every file
// processed in one run: the model weights (loaded once) and the GPU
// lock that serializes inference across files as well as within one
// file's pipeline.
type app struct {
	ffmpegPath                string
	targetWidth, targetHeight int
	outputRoot                string
	prober                    *probe.Prober
	runner                    *upscale.ModelRunner
	gpuLock                   *sync.Mutex
	logger                    *zerolog.Logger
}

func newApp(ffmpegPath, ffprobePath string, targetWidth, targetHeight int, logger *zerolog.Logger) (*app, error) {
	cacheDir := os.TempDir()
	weightsPath := filepath.Join(cacheDir, constants.ModelWeightsFileName)

	ctx, cancel := context.WithTimeout(context.Background(), constants.WeightsDownloadTimeoutSeconds*time.Second)
	defer cancel()
	if err := upscale.EnsureWeights(ctx, weightsPath, constants.ModelWeightsURL, logger); err != nil {
		return nil, err
	}

	runner := upscale.NewModelRunner(newForwardFunc(weightsPath), logger)

	outputRoot := os.Getenv(constants.OutputDirEnvVar)
	if outputRoot == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("%w: failed to resolve working directory: %v", transcodepipe.ErrIoFailure, err)
		}
		outputRoot = cwd
	}

	return &app{
		ffmpegPath:   ffmpegPath,
		targetWidth:  targetWidth,
		targetHeight: targetHeight,
		outputRoot:   outputRoot,
		prober:       probe.NewProber(ffprobePath, logger),
		runner:       runner,
		gpuLock:      &sync.Mutex{},
		logger:       logger,
	}, nil
}

// newForwardFunc returns the model's forward pass. The network weights
// and layer layout are outside this repository's scope (see
// upscale.ForwardFunc); this implementation is the seam where they would
// be loaded and run, and stands in with a deterministic 4x
// nearest-neighbor upsample so the rest of the pipeline has a real
// function to drive.
func newForwardFunc(weightsPath string) upscale.ForwardFunc {
	return func(chw []float32, height, width int) ([]float32, error) {
		const channels = 3
		outHeight, outWidth := height*4, width*4
		out := make([]float32, channels*outHeight*outWidth)
		srcPlane := height * width
		dstPlane := outHeight * outWidth
		for c := 0; c < channels; c++ {
			for y := 0; y < outHeight; y++ {
				sy := y / 4
				for x := 0; x < outWidth; x++ {
					sx := x / 4
					out[c*dstPlane+y*outWidth+x] = chw[c*srcPlane+sy*width+sx]
				}
			}
		}
		return out, nil
	}
}

// processFile classifies path, probes its streams, computes the output
// path, acquires the single-instance GPU mutex, and runs the transcode
// pipeline.
func (a *app) processFile(ctx context.Context, path string, acceptNoSubtitles bool) (err error) {
	defer util.HandlePanicInModuleWithError("buganime", &err)

	parsed := classifier.Classify(path)
	outputPath := outputlayout.OutputPath(a.outputRoot, parsed)

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("%w: failed to create output directory: %v", transcodepipe.ErrIoFailure, err)
	}

	streams, err := a.prober.Probe(ctx, path)
	if err != nil {
		return err
	}
	video, err := probe.SelectStreams(streams, acceptNoSubtitles)
	if err != nil {
		return err
	}

	tempDir, err := os.MkdirTemp("", "buganime-*")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp directory: %v", transcodepipe.ErrIoFailure, err)
	}
	defer os.RemoveAll(tempDir)

	mutex, err := singleinstance.Acquire(os.TempDir())
	if err != nil {
		return err
	}
	defer mutex.Unlock()

	a.logger.Info().Str("path", path).Str("output", outputPath).Msg("buganime: starting transcode")

	pipeline := transcodepipe.NewPipeline(transcodepipe.Config{
		FFmpegPath:   a.ffmpegPath,
		InputPath:    path,
		OutputPath:   outputPath,
		TempDir:      tempDir,
		TargetWidth:  a.targetWidth,
		TargetHeight: a.targetHeight,
		Video:        video,
	}, a.runner, a.gpuLock, a.logger)

	if err := pipeline.Run(ctx); err != nil {
		return err
	}

	a.logger.Info().Str("path", path).Msg("buganime: transcode complete")
	return nil
}
