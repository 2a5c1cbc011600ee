package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(t *testing.T, cfg *Config) (*Limiter, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	l := NewLimiterWithClock(cfg, clock.Now)
	t.Cleanup(l.Stop)
	return l, clock
}

func TestBucket_Take(t *testing.T) {
	now := time.Now()
	b := newBucket(3, 1.0, now)

	for i := 0; i < 3; i++ {
		allowed, remaining, _ := b.take(now)
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 2-i, remaining)
	}

	allowed, remaining, reset := b.take(now)
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)
	assert.Equal(t, now.Add(3*time.Second), reset)

	allowed, _, _ = b.take(now.Add(1100 * time.Millisecond))
	assert.True(t, allowed, "one token refilled after a second")
}

func TestBucket_RefillCappedAtCapacity(t *testing.T) {
	now := time.Now()
	b := newBucket(2, 10.0, now)

	_, remaining, reset := b.take(now.Add(time.Hour))

	assert.Equal(t, 1, remaining)
	assert.True(t, reset.After(now.Add(time.Hour)))
}

func TestLimiter_Allow(t *testing.T) {
	limiter, _ := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
	})

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/comparisons", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	allowed, info := limiter.Allow("127.0.0.1", "/comparisons", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.InDelta(t, 6.0, info.RetryAfter.Seconds(), 0.01)
}

func TestLimiter_RefillOverTime(t *testing.T) {
	limiter, clock := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  2,
		DefaultWindow: time.Minute,
	})

	limiter.Allow("c", "/x", "GET")
	limiter.Allow("c", "/x", "GET")
	allowed, _ := limiter.Allow("c", "/x", "GET")
	require.False(t, allowed)

	clock.Advance(31 * time.Second)
	allowed, _ = limiter.Allow("c", "/x", "GET")
	assert.True(t, allowed)
}

func TestLimiter_WhitelistAndBlacklist(t *testing.T) {
	limiter, _ := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"10.0.0.1": true},
		Blacklist:     map[string]bool{"10.0.0.2": true},
	})

	for i := 0; i < 50; i++ {
		allowed, _ := limiter.Allow("10.0.0.1", "/comparisons", "POST")
		require.True(t, allowed)
	}
	allowed, _ := limiter.Allow("10.0.0.2", "/health", "GET")
	assert.False(t, allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	limiter, _ := newTestLimiter(t, &Config{Enabled: false, DefaultLimit: 1, DefaultWindow: time.Minute})

	for i := 0; i < 20; i++ {
		allowed, info := limiter.Allow("c", "/comparisons", "POST")
		require.True(t, allowed)
		assert.Equal(t, 0, info.Limit)
	}
}

func TestLimiter_EndpointRuleSharedAcrossIDs(t *testing.T) {
	limiter, _ := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/comparisons/*/contacts/", Method: "POST", Limit: 2, Window: time.Minute, Burst: 2},
		},
	})

	a, _ := limiter.Allow("c", "/comparisons/1/contacts/111", "POST")
	b, _ := limiter.Allow("c", "/comparisons/2/contacts/222", "POST")
	c, info := limiter.Allow("c", "/comparisons/3/contacts/333", "POST")

	assert.True(t, a)
	assert.True(t, b)
	assert.False(t, c)
	assert.Equal(t, 2, info.Limit)

	// Other clients have their own bucket.
	other, _ := limiter.Allow("d", "/comparisons/1/contacts/111", "POST")
	assert.True(t, other)
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	limiter, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute})

	for i := 0; i < 20; i++ {
		allowed, _ := limiter.Allow("c", "/health", "GET")
		require.True(t, allowed)
	}
	assert.Equal(t, 0, limiter.Len())
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Minute})

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := limiter.Allow("c", "/comparisons", "GET"); ok {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, allowedCount)
}

func TestLimiter_Sweep(t *testing.T) {
	limiter, clock := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
		IdleTimeout:   time.Minute,
	})

	for i := 0; i < 5; i++ {
		limiter.Allow(fmt.Sprintf("client-%d", i), "/comparisons", "GET")
	}
	require.Equal(t, 5, limiter.Len())

	clock.Advance(30 * time.Second)
	limiter.Allow("client-0", "/comparisons", "GET")
	clock.Advance(45 * time.Second)
	limiter.Sweep()

	assert.Equal(t, 1, limiter.Len())
}

func TestLimiter_StopTwice(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute, CleanupInterval: time.Millisecond})
	limiter.Stop()
	limiter.Stop()
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()

	allowed, info := limiter.Allow("c", "/comparisons", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs(30)

	tests := []struct {
		name   string
		path   string
		method string
		want   string
	}{
		{"Upload exact", "/comparisons", "POST", "/comparisons"},
		{"Streamed upload", "/comparisons/stream", "POST", "/comparisons/stream"},
		{"Contact toggle", "/comparisons/abc/contacts/123", "POST", "/comparisons/*/contacts/"},
		{"XLSX export", "/comparisons/abc/export.xlsx", "GET", "/comparisons/*/export.xlsx"},
		{"CSV export", "/comparisons/abc/export.csv", "GET", "/comparisons/*/export.csv"},
		{"Listing uses default", "/comparisons", "GET", ""},
		{"Prefix needs a tail", "/comparisons/abc/contacts", "POST", ""},
		{"Extra segment on exact pattern", "/comparisons/abc/export.csv/x", "GET", ""},
		{"Health", "/health", "GET", "/health"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Path)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "42")
	t.Setenv("RATE_LIMIT_UPLOADS_PER_HOUR", "7")
	t.Setenv("RATE_LIMIT_WHITELIST", " 10.0.0.1, ,10.0.0.2")
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "not-a-duration")

	cfg := LoadConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 42, cfg.DefaultLimit)
	assert.Equal(t, time.Minute, cfg.DefaultWindow)
	assert.Equal(t, map[string]bool{"10.0.0.1": true, "10.0.0.2": true}, cfg.Whitelist)
	require.NotEmpty(t, cfg.EndpointConfigs)
	assert.Equal(t, 7, cfg.EndpointConfigs[0].Limit)
	assert.Equal(t, 7, cfg.EndpointConfigs[1].Limit)
	assert.Empty(t, cfg.Blacklist)
}

func TestLoadConfig_Disabled(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	assert.False(t, LoadConfig().Enabled)
}
