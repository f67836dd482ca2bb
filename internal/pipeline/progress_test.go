package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateRemaining(t *testing.T) {
	// avg(1000, 2000) = 1500, ceil(65/50) = 2 batches
	assert.Equal(t, int64(3000), estimateRemaining(1000, 2000, 65, 50))

	// exactly one batch left
	assert.Equal(t, int64(1500), estimateRemaining(1000, 2000, 50, 50))
}

func TestFormatETA(t *testing.T) {
	assert.Equal(t, "1 minute 50 seconds", formatETA(110_000))
	assert.Equal(t, "45 seconds", formatETA(45_000))
	assert.Equal(t, "1 second", formatETA(1_000))
	assert.Equal(t, "2 minutes 1 second", formatETA(121_000))
	assert.Equal(t, "0 seconds", formatETA(0))
}

func TestPercentComplete(t *testing.T) {
	assert.Equal(t, 0, percentComplete(0, 150))
	assert.Equal(t, 33, percentComplete(50, 150))
	assert.Equal(t, 100, percentComplete(150, 150))
	assert.Equal(t, 100, percentComplete(0, 0))
}
