package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNowIsUTC(t *testing.T) {
	t.Parallel()

	c := New()
	now := c.Now()
	assert.Equal(t, time.UTC, now.Location())
	assert.WithinDuration(t, time.Now().UTC(), now, time.Second)
}

func TestNowNonDecreasing(t *testing.T) {
	t.Parallel()

	c := New()
	first := c.Now()
	second := c.Now()
	assert.False(t, second.Before(first))
}
