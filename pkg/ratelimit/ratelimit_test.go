package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAttemptLimiterWindow(t *testing.T) {
	rl := NewAttemptLimiter(2, time.Minute)
	defer rl.Close()

	now := time.Date(2025, 10, 24, 19, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.False(t, rl.Blocked("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Blocked("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"), "keys are independent")
	assert.Equal(t, 61, rl.RetryAfterSeconds("1.2.3.4"))

	now = now.Add(61 * time.Second)
	assert.False(t, rl.Blocked("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))

	rl.Reset("1.2.3.4")
	assert.Equal(t, 0, rl.RetryAfterSeconds("1.2.3.4"))
}

func TestExtractIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/gateway", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", ExtractIP(r))

	r.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", ExtractIP(r))

	r.Header.Set("X-Forwarded-For", "10.0.0.3, 10.0.0.4")
	assert.Equal(t, "10.0.0.3", ExtractIP(r))
}

func TestFormatRetryMessage(t *testing.T) {
	assert.Equal(t, "30 second(s)", FormatRetryMessage(30))
	assert.Equal(t, "2 minute(s)", FormatRetryMessage(150))
}
