package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAsyncDispatcherRunsJobs(t *testing.T) {
	d := NewAsyncDispatcher(2, 16, time.Second)

	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		d.Enqueue("count", func(ctx context.Context) error {
			ran.Add(1)
			return nil
		})
	}

	d.Stop()
	assert.Equal(t, int32(10), ran.Load())
}

func TestAsyncDispatcherSurvivesFailures(t *testing.T) {
	d := NewAsyncDispatcher(1, 16, time.Second)

	var ran atomic.Int32
	d.Enqueue("fail", func(ctx context.Context) error {
		return errors.New("boom")
	})
	d.Enqueue("panic", func(ctx context.Context) error {
		panic("boom")
	})
	d.Enqueue("after", func(ctx context.Context) error {
		ran.Add(1)
		return nil
	})

	d.Stop()
	assert.Equal(t, int32(1), ran.Load())
}

func TestAsyncDispatcherDropsAfterStop(t *testing.T) {
	d := NewAsyncDispatcher(1, 16, time.Second)
	d.Stop()

	// Must not panic on a closed queue.
	d.Enqueue("late", func(ctx context.Context) error { return nil })
}
