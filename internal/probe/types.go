// Package probe invokes ffprobe against a matroska input and selects the
// default video stream, the Japanese audio stream, and the best English
// subtitle stream out of its JSON stream description.
package probe

import "github.com/samber/mo"

type (
	// Disposition mirrors ffprobe's per-stream disposition flags.
	Disposition struct {
		Default int `json:"default"`
	}

	// Tags mirrors the subset of ffprobe per-stream tags this package
	// reads.
	Tags struct {
		Language          string `json:"language"`
		Title             string `json:"title"`
		NumberOfFrames    string `json:"NUMBER_OF_FRAMES"`
		NumberOfFramesEng string `json:"NUMBER_OF_FRAMES-eng"`
		NumberOfBytesEng  string `json:"NUMBER_OF_BYTES-eng"`
	}

	// Stream is one entry of ffprobe's `streams` array.
	Stream struct {
		Index       int         `json:"index"`
		CodecType   string      `json:"codec_type"`
		CodecName   string      `json:"codec_name"`
		Width       int         `json:"width"`
		Height      int         `json:"height"`
		RFrameRate  string      `json:"r_frame_rate"`
		Disposition Disposition `json:"disposition"`
		Tags        Tags        `json:"tags"`
	}

	probeOutput struct {
		Streams []Stream `json:"streams"`
	}

	// VideoInfo is the immutable record produced once per input by
	// SelectStreams.
	VideoInfo struct {
		AudioIndex    int
		SubtitleIndex mo.Option[int]
		Width         int
		Height        int
		FPS           string
		Frames        int
	}
)
