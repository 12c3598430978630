package transcodepipe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
)

func TestFrameWriter_FilterChain_WithSubtitleBurnsInThenPads(t *testing.T) {
	w := &FrameWriter{cfg: WriterConfig{
		TargetWidth: 3840, TargetHeight: 2160, SubtitleIndex: mo.Some(2),
	}}
	assert.Equal(t, "subtitles=input.mkv:si=2, pad=3840:2160:(ow-iw)/2:(oh-ih)/2:black", w.filterChain())
}

func TestFrameWriter_FilterChain_WithoutSubtitleIsJustPad(t *testing.T) {
	w := &FrameWriter{cfg: WriterConfig{
		TargetWidth: 3840, TargetHeight: 2160, SubtitleIndex: mo.None[int](),
	}}
	assert.Equal(t, "pad=3840:2160:(ow-iw)/2:(oh-ih)/2:black", w.filterChain())
}

func TestLinkOrCopy_HardLinksWithinSameFilesystem(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.mkv")
	assert.NoError(t, os.WriteFile(src, []byte("container bytes"), 0o644))

	dst := filepath.Join(dir, "input.mkv")
	assert.NoError(t, linkOrCopy(src, dst))

	content, err := os.ReadFile(dst)
	assert.NoError(t, err)
	assert.Equal(t, "container bytes", string(content))

	srcInfo, err := os.Stat(src)
	assert.NoError(t, err)
	dstInfo, err := os.Stat(dst)
	assert.NoError(t, err)
	assert.True(t, os.SameFile(srcInfo, dstInfo), "dst must be a hard link to src, not a copy")
}
