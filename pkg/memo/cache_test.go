package memo

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheHitAndMiss(t *testing.T) {
	c := New[int]("test", 10)
	calls := 0
	compute := func() (int, error) {
		calls++
		return 42, nil
	}

	v, err := c.Get("k", compute)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = c.Get("k", compute)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, c.Len())
}

func TestCacheErrorsAreNotCached(t *testing.T) {
	c := New[string]("test", 10)
	boom := errors.New("boom")

	_, err := c.Get("k", func() (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	v, err := c.Get("k", func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestCacheEvictsOldest(t *testing.T) {
	c := New[int]("test", 2)
	for i, key := range []string{"a", "b", "c"} {
		i := i
		_, err := c.Get(key, func() (int, error) { return i, nil })
		require.NoError(t, err)
	}
	assert.Equal(t, 2, c.Len())

	recomputed := false
	_, err := c.Get("a", func() (int, error) {
		recomputed = true
		return 0, nil
	})
	require.NoError(t, err)
	assert.True(t, recomputed, "oldest entry should have been evicted")
}

func TestCacheCollapsesConcurrentMisses(t *testing.T) {
	c := New[int]("test", 10)
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.Get("same", func() (int, error) {
				calls.Add(1)
				<-release
				return 7, nil
			})
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	// give the goroutines time to pile up on the in-flight call
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Equal(t, 7, v)
	}
	assert.Equal(t, 1, c.Len())
}

func TestCachePurge(t *testing.T) {
	c := New[int]("test", 0)
	_, _ = c.Get("a", func() (int, error) { return 1, nil })
	_, _ = c.Get("b", func() (int, error) { return 2, nil })
	require.Equal(t, 2, c.Len())

	c.Purge()
	assert.Equal(t, 0, c.Len())
}
