package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls atomic.Int32
	err   error
	delay time.Duration
}

func (s *countingSource) FetchTable(_ context.Context, name string) (*RowSet, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return nil, s.err
	}
	return &RowSet{Table: name, Columns: []string{"id"}, Rows: [][]any{{int64(1)}}}, nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestCache(src Source, ttl time.Duration) (*CachedSource, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := NewCachedSource(src, ttl, slog.New(slog.DiscardHandler))
	c.now = clock.Now
	return c, clock
}

func TestCachedSource_ServesWithinTTL(t *testing.T) {
	src := &countingSource{}
	c, clock := newTestCache(src, 600*time.Second)
	ctx := context.Background()

	first, err := c.FetchTable(ctx, "book")
	require.NoError(t, err)

	clock.Advance(599 * time.Second)
	second, err := c.FetchTable(ctx, "book")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.EqualValues(t, 1, src.calls.Load())
}

func TestCachedSource_RefetchesAfterTTL(t *testing.T) {
	src := &countingSource{}
	c, clock := newTestCache(src, 600*time.Second)
	ctx := context.Background()

	_, err := c.FetchTable(ctx, "book")
	require.NoError(t, err)

	clock.Advance(600 * time.Second)
	_, err = c.FetchTable(ctx, "book")
	require.NoError(t, err)

	assert.EqualValues(t, 2, src.calls.Load())
}

func TestCachedSource_TablesAreIndependent(t *testing.T) {
	src := &countingSource{}
	c, _ := newTestCache(src, time.Minute)
	ctx := context.Background()

	_, err := c.FetchTable(ctx, "book")
	require.NoError(t, err)
	_, err = c.FetchTable(ctx, "series")
	require.NoError(t, err)
	_, err = c.FetchTable(ctx, "book")
	require.NoError(t, err)

	assert.EqualValues(t, 2, src.calls.Load())
}

func TestCachedSource_Invalidate(t *testing.T) {
	src := &countingSource{}
	c, _ := newTestCache(src, time.Hour)
	ctx := context.Background()

	_, err := c.FetchTable(ctx, "book")
	require.NoError(t, err)
	_, ok := c.FetchedAt("book")
	require.True(t, ok)

	c.Invalidate()
	_, ok = c.FetchedAt("book")
	assert.False(t, ok)

	_, err = c.FetchTable(ctx, "book")
	require.NoError(t, err)
	assert.EqualValues(t, 2, src.calls.Load())
}

func TestCachedSource_ErrorsAreNotCached(t *testing.T) {
	src := &countingSource{err: errors.New("connection refused")}
	c, _ := newTestCache(src, time.Hour)
	ctx := context.Background()

	_, err := c.FetchTable(ctx, "book")
	require.Error(t, err)

	src.err = nil
	rows, err := c.FetchTable(ctx, "book")
	require.NoError(t, err)
	assert.Equal(t, 1, rows.Len())
	assert.EqualValues(t, 2, src.calls.Load())
}

func TestCachedSource_CoalescesConcurrentMisses(t *testing.T) {
	src := &countingSource{delay: 50 * time.Millisecond}
	c, _ := newTestCache(src, time.Hour)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.FetchTable(ctx, "book")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, src.calls.Load())
}

func TestNewCachedSource_DefaultTTL(t *testing.T) {
	c := NewCachedSource(&countingSource{}, 0, slog.New(slog.DiscardHandler))
	assert.Equal(t, DefaultTTL, c.TTL())
}

// gatedSource blocks each fetch until release is closed or its context ends.
type gatedSource struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	ctxErr  atomic.Value
}

func newGatedSource() *gatedSource {
	return &gatedSource{started: make(chan struct{}, 1), release: make(chan struct{})}
}

func (s *gatedSource) FetchTable(ctx context.Context, name string) (*RowSet, error) {
	s.calls.Add(1)
	s.started <- struct{}{}
	select {
	case <-s.release:
	case <-ctx.Done():
		s.ctxErr.Store(ctx.Err())
		return nil, ctx.Err()
	}
	return &RowSet{Table: name, Columns: []string{"id"}, Rows: [][]any{{int64(1)}}}, nil
}

func TestCachedSource_CallerCancelDoesNotFailSharedFetch(t *testing.T) {
	src := newGatedSource()
	c, _ := newTestCache(src, time.Hour)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.FetchTable(firstCtx, "book")
		firstErr <- err
	}()
	<-src.started

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	secondDone := make(chan struct{})
	var (
		rows      *RowSet
		secondErr error
	)
	go func() {
		defer close(secondDone)
		rows, secondErr = c.FetchTable(context.Background(), "book")
	}()

	close(src.release)
	<-secondDone

	require.NoError(t, secondErr)
	assert.Equal(t, 1, rows.Len())
	assert.Nil(t, src.ctxErr.Load())
	assert.EqualValues(t, 1, src.calls.Load())

	_, ok := c.FetchedAt("book")
	assert.True(t, ok)
}

func TestCachedSource_FetchTimeout(t *testing.T) {
	src := newGatedSource()
	c, _ := newTestCache(src, time.Hour)
	c.fetchTimeout = 20 * time.Millisecond

	_, err := c.FetchTable(context.Background(), "book")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	<-src.started

	_, ok := c.FetchedAt("book")
	assert.False(t, ok)
}
