package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPoolSubmitAndWaitForAll(t *testing.T) {
	var p = NewPool(context.Background(), 4)
	defer p.Stop()

	var sum int64
	for i := 0; i < 50; i++ {
		var n = int64(i)
		p.Submit(func(ctx context.Context) (interface{}, error) {
			atomic.AddInt64(&sum, n)
			return n, nil
		}, nil)
	}
	p.WaitForAll()

	require.EqualValues(t, 1225, atomic.LoadInt64(&sum))
}

func TestPoolSubmitResolvesFuture(t *testing.T) {
	var p = NewPool(context.Background(), 2)
	defer p.Stop()

	var resultCh = make(chan int, 1)
	var errCh = make(chan error, 1)

	p.Submit(func(ctx context.Context) (interface{}, error) {
		return 99, nil
	}, func(v interface{}, err error) {
		resultCh <- v.(int)
		errCh <- err
	})

	require.Equal(t, 99, <-resultCh)
	require.NoError(t, <-errCh)
}

func TestPoolRecoversPanic(t *testing.T) {
	var p = NewPool(context.Background(), 1)
	defer p.Stop()

	var errCh = make(chan error, 1)
	p.Submit(func(ctx context.Context) (interface{}, error) {
		panic("boom")
	}, func(v interface{}, err error) {
		errCh <- err
	})

	var err = <-errCh
	require.Error(t, err)
}

func TestPoolPauseResume(t *testing.T) {
	var p = NewPool(context.Background(), 1)
	defer p.Stop()

	p.Pause()

	var ran int32
	p.Submit(func(ctx context.Context) (interface{}, error) {
		atomic.StoreInt32(&ran, 1)
		return nil, nil
	}, nil)

	time.Sleep(20 * time.Millisecond)
	require.EqualValues(t, 0, atomic.LoadInt32(&ran))

	p.Resume()
	p.WaitForAll()
	require.EqualValues(t, 1, atomic.LoadInt32(&ran))
}

func TestPoolStopDiscardsQueuedTasks(t *testing.T) {
	var p = NewPool(context.Background(), 1)
	p.Pause()

	var errCh = make(chan error, 1)
	p.Submit(func(ctx context.Context) (interface{}, error) {
		return nil, nil
	}, func(v interface{}, err error) {
		errCh <- err
	})

	p.Stop()
	require.Error(t, <-errCh)
}
