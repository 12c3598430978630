package transcodepipe

import (
	"context"

	"github.com/bugale/Buganime/internal/util"
)

// queueDepth is the bounded queue capacity: at most this many task
// handles wait in the queue. Counting the task the consumer is awaiting
// and the one the producer has started and is blocked enqueueing, up to
// queueDepth+2 frames may be in flight (read but not yet written) at once.
const queueDepth = 10

// frameTask is a pending upscale, resolved by a goroutine spawned at
// enqueue time. Awaiting each task in enqueue order — rather than
// completion order — is what keeps output frames in decode order even
// though GPU work may finish out of order.
type frameTask struct {
	done   chan struct{}
	result FrameBuffer
	err    error
}

func (t *frameTask) await() (FrameBuffer, error) {
	<-t.done
	return t.result, t.err
}

// Coordinator runs the reader loop as a producer and feeds a bounded
// channel of frameTasks to a consumer, preserving strict frame ordering.
type Coordinator struct {
	reader   *FrameReader
	upscaler *FrameUpscaler
	tasks    chan *frameTask
}

// NewCoordinator builds a Coordinator wiring reader to upscaler through a
// bounded queue of capacity 10.
func NewCoordinator(reader *FrameReader, upscaler *FrameUpscaler) *Coordinator {
	return &Coordinator{reader: reader, upscaler: upscaler, tasks: make(chan *frameTask, queueDepth)}
}

// produce reads frames until the decode stream ends (or ctx is
// cancelled), spawning one goroutine per frame to run the upscale and
// enqueueing its task handle. It closes the task channel when done, and
// is meant to run in its own goroutine alongside consume.
func (c *Coordinator) produce(ctx context.Context) error {
	defer close(c.tasks)
	for {
		frame, ok, err := c.reader.ReadFrame()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		task := &frameTask{done: make(chan struct{})}
		go func(frame FrameBuffer) {
			defer close(task.done)
			defer util.HandlePanicInModuleThen("transcodepipe", func(err error) { task.err = err })
			task.result, task.err = c.upscaler.Upscale(ctx, frame)
		}(frame)

		select {
		case c.tasks <- task:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// consume dequeues tasks in order and invokes onFrame with each resulting
// FrameBuffer, stopping at the first error (its own or onFrame's) or when
// the producer closes the channel.
func (c *Coordinator) consume(ctx context.Context, onFrame func(FrameBuffer) error) error {
	for {
		select {
		case task, ok := <-c.tasks:
			if !ok {
				return nil
			}
			frame, err := task.await()
			if err != nil {
				return err
			}
			if err := onFrame(frame); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
