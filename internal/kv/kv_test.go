package kv

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "cart:1", []byte(`[]`), 0))
	v, err := s.Get(ctx, "cart:1")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(v))

	require.NoError(t, s.Delete(ctx, "cart:1"))
	_, err = s.Get(ctx, "cart:1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStore(time.Minute)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Second))
	now = now.Add(2 * time.Second)

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreSetNXAndIncr(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	ok, err := s.SetNX(ctx, "seq", []byte("4"), 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.SetNX(ctx, "seq", []byte("9"), 0)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := s.Incr(ctx, "seq")
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	n, err = s.Incr(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.IncrBy(ctx, "seq", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(15), n)

	n, err = s.IncrBy(ctx, "other", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestMemoryStoreIncrIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	var wg sync.WaitGroup
	seen := make(chan int64, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := s.Incr(ctx, "seq")
			if err == nil {
				seen <- n
			}
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[int64]struct{})
	for n := range seen {
		unique[n] = struct{}{}
	}
	assert.Len(t, unique, 100)
}
