package queue_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gsarma/mailqueue/internal/queue"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newStore(t *testing.T) (*queue.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s := queue.New(&redis.Options{Addr: mr.Addr()}, discardLogger())
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestConnect_Success(t *testing.T) {
	s, _ := newStore(t)
	assert.Equal(t, queue.StateDisconnected, s.State())

	require.NoError(t, s.Connect(context.Background()))
	assert.Equal(t, queue.StateConnected, s.State())

	// A second call is a no-op.
	require.NoError(t, s.Connect(context.Background()))
	assert.Equal(t, queue.StateConnected, s.State())
}

func TestConnect_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	s := queue.New(&redis.Options{Addr: addr, MaxRetries: -1, DialTimeout: 200 * time.Millisecond}, discardLogger())
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := s.Connect(ctx)
	require.Error(t, err)

	var cerr *queue.ConnectionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, addr, cerr.Addr)
	assert.Equal(t, queue.StateDisconnected, s.State())
}

func TestAppend_PushesToTail(t *testing.T) {
	s, mr := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Connect(ctx))

	require.NoError(t, s.Append(ctx, queue.DefaultName, []byte("first")))
	require.NoError(t, s.Append(ctx, queue.DefaultName, []byte("second")))

	items, err := mr.List(queue.DefaultName)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, items)

	// The head is the oldest entry, which is what a BLPOP consumer takes.
	head, err := mr.Lpop(queue.DefaultName)
	require.NoError(t, err)
	assert.Equal(t, "first", head)
}

func TestAppend_StoreDown(t *testing.T) {
	mr := miniredis.RunT(t)
	s := queue.New(&redis.Options{Addr: mr.Addr(), MaxRetries: -1, DialTimeout: 200 * time.Millisecond}, discardLogger())
	defer s.Close()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := s.Append(ctx, queue.DefaultName, []byte("x"))
	require.Error(t, err)

	var aerr *queue.AppendError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, queue.DefaultName, aerr.Queue)
}

func TestAppend_RecoversAfterFailedConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	s := queue.New(&redis.Options{Addr: addr, MaxRetries: -1, DialTimeout: 200 * time.Millisecond}, discardLogger())
	defer s.Close()
	ctx := context.Background()
	require.Error(t, s.Connect(ctx))

	require.NoError(t, mr.Restart())

	require.NoError(t, s.Append(ctx, queue.DefaultName, []byte("late")))
	assert.Equal(t, queue.StateConnected, s.State())

	n, err := s.Len(ctx, queue.DefaultName)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestAppend_AfterClose(t *testing.T) {
	s, mr := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Connect(ctx))
	require.NoError(t, s.Close())

	err := s.Append(ctx, queue.DefaultName, []byte("x"))
	assert.True(t, errors.Is(err, queue.ErrClosed))
	assert.False(t, mr.Exists(queue.DefaultName))
	assert.ErrorIs(t, s.Ping(ctx), queue.ErrClosed)
}

func TestClose_OnceUnderConcurrency(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.Connect(context.Background()))

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Close()
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, queue.StateClosed, s.State())
}

func TestAppend_Concurrent(t *testing.T) {
	s, mr := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Connect(ctx))

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.Append(ctx, queue.DefaultName, []byte(fmt.Sprintf("job-%d", i))))
		}(i)
	}
	wg.Wait()

	items, err := mr.List(queue.DefaultName)
	require.NoError(t, err)
	assert.Len(t, items, n)
	seen := make(map[string]bool, n)
	for _, it := range items {
		assert.False(t, seen[it], "duplicate entry %s", it)
		seen[it] = true
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "connecting", queue.StateConnecting.String())
	assert.Equal(t, "closing", queue.StateClosing.String())
	assert.Equal(t, "State(9)", queue.State(9).String())
}
