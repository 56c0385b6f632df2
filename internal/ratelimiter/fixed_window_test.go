package ratelimiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedWindowLimiter(t *testing.T) {
	rl := NewFixedWindowLimiter(2, 100*time.Millisecond)

	allowed, _ := rl.Allow("10.0.0.1")
	assert.True(t, allowed)
	allowed, _ = rl.Allow("10.0.0.1")
	assert.True(t, allowed)

	allowed, retryAfter := rl.Allow("10.0.0.1")
	assert.False(t, allowed)
	assert.Equal(t, 100*time.Millisecond, retryAfter)

	// a different client has its own window
	allowed, _ = rl.Allow("10.0.0.2")
	assert.True(t, allowed)

	// the window resets
	time.Sleep(150 * time.Millisecond)
	allowed, _ = rl.Allow("10.0.0.1")
	assert.True(t, allowed)
}
