package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowUnderLimit(t *testing.T) {
	l := NewLimiter(time.Hour, 10)

	r := l.Allow("ip1")
	assert.True(t, r.Allowed)
	assert.Equal(t, 9, r.Remaining)
	assert.Equal(t, 10, r.Limit)
}

func TestBlocksAtLimit(t *testing.T) {
	l := NewLimiter(time.Hour, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("ip1").Allowed)
	}

	r := l.Allow("ip1")
	assert.False(t, r.Allowed)
	assert.Equal(t, 0, r.Remaining)
	assert.Greater(t, r.ResetAfter, time.Duration(0))
}

func TestSeparateKeysIndependent(t *testing.T) {
	l := NewLimiter(time.Hour, 3)

	for i := 0; i < 3; i++ {
		l.Allow("ip1")
	}
	assert.False(t, l.Allow("ip1").Allowed)
	assert.True(t, l.Allow("ip2").Allowed)
}

func TestWindowReset(t *testing.T) {
	l := NewLimiter(20*time.Millisecond, 1)

	assert.True(t, l.Allow("ip1").Allowed)
	assert.False(t, l.Allow("ip1").Allowed)

	time.Sleep(30 * time.Millisecond)
	assert.True(t, l.Allow("ip1").Allowed)
}

func TestSweepDropsExpiredBuckets(t *testing.T) {
	l := NewLimiter(10*time.Millisecond, 1)

	l.Allow("ip1")
	time.Sleep(20 * time.Millisecond)
	l.sweep()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Empty(t, l.buckets)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{name: "forwarded first entry", header: map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"}, remote: "10.0.0.2:1234", want: "203.0.113.9"},
		{name: "real ip", header: map[string]string{"X-Real-IP": "203.0.113.7"}, remote: "10.0.0.2:1234", want: "203.0.113.7"},
		{name: "forwarded wins over real ip", header: map[string]string{"X-Forwarded-For": "203.0.113.9", "X-Real-IP": "203.0.113.7"}, remote: "10.0.0.2:1234", want: "203.0.113.9"},
		{name: "peer address", remote: "192.0.2.4:5678", want: "192.0.2.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/v1/workspaces", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(req))
		})
	}
}
