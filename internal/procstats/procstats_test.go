package procstats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollect(t *testing.T) {
	c, err := NewCollector(time.Hour)
	require.NoError(t, err)

	snap := c.Collect()
	assert.Positive(t, snap.Goroutines)
	assert.NotEmpty(t, snap.OS)
	assert.Contains(t, snap.RSS(), "MiB")

	// Cached within maxAge.
	assert.Same(t, snap, c.Collect())
}

func TestCollectRefreshes(t *testing.T) {
	c, err := NewCollector(0)
	require.NoError(t, err)
	first := c.Collect()
	second := c.Collect()
	assert.NotSame(t, first, second)
}
