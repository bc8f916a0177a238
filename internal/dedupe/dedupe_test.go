package dedupe

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SingleCaller(t *testing.T) {
	c := New(time.Second, clockwork.NewRealClock())

	val, shared, err := c.Do("galleries|list", func() (any, error) {
		return "result", nil
	})
	require.NoError(t, err)
	assert.False(t, shared)
	assert.Equal(t, "result", val)
}

func TestDo_ConcurrentCallersShareOneFetch(t *testing.T) {
	c := New(time.Second, clockwork.NewRealClock())

	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func() (any, error) {
		calls.Add(1)
		<-release
		return "galleries", nil
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]any, callers)
	started := make(chan struct{}, callers)

	for i := 0; i < callers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			started <- struct{}{}
			val, _, err := c.Do("galleries|list", fetch)
			assert.NoError(t, err)
			results[i] = val
		}()
	}

	for j := 0; j < callers; j++ {
		<-started
	}
	// Give all goroutines a moment to reach the singleflight barrier
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load(), "expected exactly one network call")
	for _, r := range results {
		assert.Equal(t, "galleries", r)
	}
}

func TestDo_ResultCachedWithinTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(time.Second, clock)

	var calls int
	fetch := func() (any, error) {
		calls++
		return calls, nil
	}

	val1, _, err := c.Do("k", fetch)
	require.NoError(t, err)

	val2, shared, err := c.Do("k", fetch)
	require.NoError(t, err)
	assert.True(t, shared)
	assert.Equal(t, val1, val2)
	assert.Equal(t, 1, calls)
}

func TestDo_CacheExpiresAfterTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(time.Second, clock)

	var calls int
	fetch := func() (any, error) {
		calls++
		return calls, nil
	}

	_, _, err := c.Do("k", fetch)
	require.NoError(t, err)

	clock.Advance(1100 * time.Millisecond)

	_, shared, err := c.Do("k", fetch)
	require.NoError(t, err)
	assert.False(t, shared)
	assert.Equal(t, 2, calls)
}

func TestDo_ErrorsAreNotCached(t *testing.T) {
	c := New(time.Second, clockwork.NewRealClock())

	var calls int
	fetch := func() (any, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("upstream down")
		}
		return "ok", nil
	}

	_, _, err := c.Do("k", fetch)
	require.Error(t, err)

	val, _, err := c.Do("k", fetch)
	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Equal(t, 2, calls)
}

func TestDo_DifferentKeysDoNotBlockEachOther(t *testing.T) {
	c := New(time.Second, clockwork.NewRealClock())

	_, _, err := c.Do("galleries|list|skip=0", func() (any, error) { return "a", nil })
	require.NoError(t, err)

	var calls int
	val, shared, err := c.Do("galleries|list|skip=20", func() (any, error) {
		calls++
		return "b", nil
	})
	require.NoError(t, err)
	assert.False(t, shared)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "b", val)
}

func TestForget(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(time.Second, clock)

	var calls int
	fetch := func() (any, error) {
		calls++
		return calls, nil
	}

	_, _, err := c.Do("k", fetch)
	require.NoError(t, err)

	c.Forget("k")

	_, shared, err := c.Do("k", fetch)
	require.NoError(t, err)
	assert.False(t, shared)
	assert.Equal(t, 2, calls)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "galleries|list|skip=0", Key("galleries", "list", "skip=0"))
}
