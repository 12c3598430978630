package transcodepipe

import (
	"bytes"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func newTestReader(data []byte, width, height int) *FrameReader {
	logger := zerolog.Nop()
	return &FrameReader{
		width:  width,
		height: height,
		logger: &logger,
		stdout: io.NopCloser(bytes.NewReader(data)),
	}
}

func TestFrameReader_ReadFrame_YieldsFramesInOrder(t *testing.T) {
	frameLen := 2 * 2 * 3
	data := make([]byte, frameLen*2)
	for i := range data {
		data[i] = byte(i)
	}
	r := newTestReader(data, 2, 2)

	first, ok, err := r.ReadFrame()
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, data[:frameLen], first.Pix)

	second, ok, err := r.ReadFrame()
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, data[frameLen:], second.Pix)

	_, ok, err = r.ReadFrame()
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestFrameReader_ReadFrame_ShortFinalReadIsEndOfStreamNotError(t *testing.T) {
	frameLen := 2 * 2 * 3
	data := make([]byte, frameLen+3) // one full frame plus a partial trailing chunk
	r := newTestReader(data, 2, 2)

	_, ok, err := r.ReadFrame()
	assert.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = r.ReadFrame()
	assert.NoError(t, err)
	assert.False(t, ok)
}
