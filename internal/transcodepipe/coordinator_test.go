package transcodepipe

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestCoordinator_PreservesDecodeOrderUnderConcurrentUpscaling(t *testing.T) {
	const frameCount = 20
	frameLen := 1 * 1 * 3
	data := make([]byte, frameLen*frameCount)
	for i := 0; i < frameCount; i++ {
		data[i*frameLen] = byte(i) // tag each frame with its decode index
	}
	reader := newTestReader(data, 1, 1)

	// targetWidth/Height equal to the source dimensions triggers the
	// upscaler's fast path, so no model runner is needed here; the point
	// of this test is ordering through the bounded queue, not upscaling.
	upscaler := NewFrameUpscaler(nil, &sync.Mutex{}, 1, 1, 1, 1)
	coordinator := NewCoordinator(reader, upscaler)

	var got []byte
	var mu sync.Mutex
	onFrame := func(f FrameBuffer) error {
		mu.Lock()
		got = append(got, f.Pix[0])
		mu.Unlock()
		return nil
	}

	ctx := context.Background()
	var wg sync.WaitGroup
	var produceErr, consumeErr error
	wg.Add(2)
	go func() { defer wg.Done(); produceErr = coordinator.produce(ctx) }()
	go func() { defer wg.Done(); consumeErr = coordinator.consume(ctx, onFrame) }()
	wg.Wait()

	assert.NoError(t, produceErr)
	assert.NoError(t, consumeErr)

	want := make([]byte, frameCount)
	for i := range want {
		want[i] = byte(i)
	}
	assert.Equal(t, want, got)
}

func TestCoordinator_StopsOnReaderError(t *testing.T) {
	logger := zerolog.Nop()
	reader := &FrameReader{
		width: 1, height: 1, logger: &logger,
		stdout: io.NopCloser(errReader{}),
	}

	upscaler := NewFrameUpscaler(nil, &sync.Mutex{}, 1, 1, 1, 1)
	coordinator := NewCoordinator(reader, upscaler)

	err := coordinator.produce(context.Background())
	assert.ErrorIs(t, err, ErrDecodeFailure)
}

type errReader struct{}

func (errReader) Read(p []byte) (int, error) { return 0, assert.AnError }
