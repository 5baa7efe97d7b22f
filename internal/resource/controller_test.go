package resource

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Queries(t *testing.T) {
	c := NewController(Config{MaxConcurrentQueries: 2})

	require.NoError(t, c.AcquireQuery(context.Background()))
	require.NoError(t, c.AcquireQuery(context.Background()))
	assert.Equal(t, int64(2), c.InFlightQueries())

	// Third should block until timeout.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireQuery(ctx), context.DeadlineExceeded)
	assert.False(t, c.TryAcquireQuery())

	c.ReleaseQuery()
	assert.Equal(t, int64(1), c.InFlightQueries())
	assert.True(t, c.TryAcquireQuery())
}

func TestController_Unlimited(t *testing.T) {
	c := NewController(Config{})

	for range 100 {
		require.NoError(t, c.AcquireQuery(context.Background()))
		assert.True(t, c.Allow())
	}
	assert.Equal(t, int64(100), c.InFlightQueries())
	require.NoError(t, c.AcquireIO(context.Background(), 1<<30))
}

func TestController_Nil(t *testing.T) {
	var c *Controller

	require.NoError(t, c.AcquireQuery(context.Background()))
	assert.True(t, c.TryAcquireQuery())
	c.ReleaseQuery()
	assert.True(t, c.Allow())
	assert.Equal(t, int64(0), c.InFlightQueries())
	assert.Equal(t, Config{}, c.Config())
}

func TestController_Allow(t *testing.T) {
	c := NewController(Config{RequestsPerSecond: 0.001, Burst: 3})

	assert.True(t, c.Allow())
	assert.True(t, c.Allow())
	assert.True(t, c.Allow())
	assert.False(t, c.Allow(), "bucket exhausted")
}

func TestController_AllowDefaultBurst(t *testing.T) {
	c := NewController(Config{RequestsPerSecond: 0.5})

	assert.True(t, c.Allow())
	assert.False(t, c.Allow())
}

func TestController_AcquireIOCanceled(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 10})

	require.NoError(t, c.AcquireIO(context.Background(), 10))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, c.AcquireIO(ctx, 10))
}

func TestRateLimitedIO(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	payload := bytes.Repeat([]byte("x"), 4096)

	var buf bytes.Buffer
	w := NewRateLimitedWriter(context.Background(), &buf, c)
	n, err := w.Write(payload)
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)

	r := NewRateLimitedReader(context.Background(), &buf, c)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}
