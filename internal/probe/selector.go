package probe

import (
	"errors"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/samber/mo"
)

var (
	// ErrNoDefaultVideo is returned when there is not exactly one video
	// stream and none is flagged as the default.
	ErrNoDefaultVideo = errors.New("probe: no default video stream found")
	// ErrNoJapaneseAudio is returned when no audio stream is tagged jpn
	// and there is not exactly one audio stream to fall back on.
	ErrNoJapaneseAudio = errors.New("probe: no Japanese audio stream found")
	// ErrNoEnglishSubtitle is returned when no subtitle stream satisfies
	// the English-dialog heuristic and there is not exactly one subtitle
	// stream to fall back on.
	ErrNoEnglishSubtitle = errors.New("probe: no English subtitle stream found")
)

var supportedSubtitleCodecs = map[string]bool{"ass": true, "subrip": true}

// SelectStreams applies the selection policy described in the stream
// selector design: the default video stream, the Japanese audio stream,
// and the best English subtitle stream (by subtitle-relative index).
//
// When acceptNoSubtitles is true, a failure to find an English subtitle
// stream is demoted: SubtitleIndex is left absent rather than failing the
// whole selection. A subtitle stream found via the single-stream fallback
// is still returned (and will still be burned in by the writer stage)
// even when acceptNoSubtitles is set — this flag only suppresses the
// failure, not the burn-in.
func SelectStreams(streams []Stream, acceptNoSubtitles bool) (VideoInfo, error) {
	video, err := selectVideoStream(streams)
	if err != nil {
		return VideoInfo{}, err
	}

	audioIndex, err := selectAudioStream(streams)
	if err != nil {
		return VideoInfo{}, err
	}

	subtitleIndex, err := selectSubtitleStream(streams)
	if err != nil {
		if !acceptNoSubtitles {
			return VideoInfo{}, err
		}
		subtitleIndex = mo.None[int]()
	}

	return VideoInfo{
		AudioIndex:    audioIndex,
		SubtitleIndex: subtitleIndex,
		Width:         video.Width,
		Height:        video.Height,
		FPS:           video.RFrameRate,
		Frames:        frameCount(video),
	}, nil
}

func selectVideoStream(streams []Stream) (Stream, error) {
	videoStreams := lo.Filter(streams, func(s Stream, _ int) bool { return s.CodecType == "video" })
	if len(videoStreams) == 1 {
		return videoStreams[0], nil
	}
	for _, s := range videoStreams {
		if s.Disposition.Default == 1 {
			return s, nil
		}
	}
	return Stream{}, ErrNoDefaultVideo
}

func selectAudioStream(streams []Stream) (int, error) {
	audioStreams := lo.Filter(streams, func(s Stream, _ int) bool { return s.CodecType == "audio" })
	for _, s := range audioStreams {
		if s.Tags.Language == "jpn" {
			return s.Index, nil
		}
	}
	if len(audioStreams) == 1 {
		return audioStreams[0].Index, nil
	}
	return 0, ErrNoJapaneseAudio
}

// selectSubtitleStream returns the subtitle-relative index (its position
// among subtitle streams, not its global ffprobe index) of the chosen
// subtitle stream.
func selectSubtitleStream(streams []Stream) (mo.Option[int], error) {
	subtitleStreams := lo.Filter(streams, func(s Stream, _ int) bool { return s.CodecType == "subtitle" })

	type candidate struct {
		relativeIndex int
		bytes         int
	}
	var candidates []candidate
	for i, s := range subtitleStreams {
		lang := s.Tags.Language
		if lang != "en" && lang != "eng" {
			continue
		}
		if !supportedSubtitleCodecs[strings.ToLower(s.CodecName)] {
			continue
		}
		title := strings.ToUpper(s.Tags.Title)
		if strings.Contains(title, "S&S") || strings.Contains(title, "SIGNS") || strings.Contains(title, "FORCED") {
			continue
		}
		bytesVal, _ := strconv.Atoi(s.Tags.NumberOfBytesEng)
		candidates = append(candidates, candidate{relativeIndex: i, bytes: bytesVal})
	}

	if len(candidates) == 0 {
		if len(subtitleStreams) == 1 {
			return mo.Some(0), nil
		}
		return mo.None[int](), ErrNoEnglishSubtitle
	}
	if len(candidates) == 1 {
		return mo.Some(candidates[0].relativeIndex), nil
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.bytes > best.bytes {
			best = c
		}
	}
	return mo.Some(best.relativeIndex), nil
}

func frameCount(video Stream) int {
	if n, err := strconv.Atoi(video.Tags.NumberOfFrames); err == nil {
		return n
	}
	if n, err := strconv.Atoi(video.Tags.NumberOfFramesEng); err == nil {
		return n
	}
	return 0
}
