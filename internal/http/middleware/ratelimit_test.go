package middleware

import (
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xbpneus/authgate/internal/config"
)

func throttledRouter(t *testing.T, cfg config.RateLimitConfig, now func() time.Time) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r := gin.New()
	r.POST("/token", rateLimit(cfg, client, now), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/register", rateLimit(cfg, client, now), func(c *gin.Context) { c.Status(http.StatusCreated) })
	return r, mr
}

func testLimitConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:        true,
		Capacity:       3,
		RefillTokens:   1,
		RefillInterval: 10 * time.Second,
		TTL:            time.Minute,
		Prefix:         "rl",
	}
}

func TestRateLimit_BlocksWhenBucketEmpty(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r, _ := throttledRouter(t, testLimitConfig(), func() time.Time { return clock })

	for i := 0; i < 3; i++ {
		w := doRequest(r, http.MethodPost, "/token", nil)
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
		assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
	}

	w := doRequest(r, http.MethodPost, "/token", nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "10", w.Header().Get("Retry-After"))
	assert.Contains(t, decode(t, w)["detail"], "10 segundos")

	// Routes have separate buckets.
	w = doRequest(r, http.MethodPost, "/register", nil)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRateLimit_Refills(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r, _ := throttledRouter(t, testLimitConfig(), func() time.Time { return clock })

	for i := 0; i < 3; i++ {
		doRequest(r, http.MethodPost, "/token", nil)
	}
	require.Equal(t, http.StatusTooManyRequests, doRequest(r, http.MethodPost, "/token", nil).Code)

	clock = clock.Add(4 * time.Second)
	w := doRequest(r, http.MethodPost, "/token", nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "6", w.Header().Get("Retry-After"))

	clock = clock.Add(6 * time.Second)
	w = doRequest(r, http.MethodPost, "/token", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimit_FailsOpen(t *testing.T) {
	r, mr := throttledRouter(t, testLimitConfig(), time.Now)
	mr.Close()

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doRequest(r, http.MethodPost, "/token", nil).Code)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	cfg := testLimitConfig()
	cfg.Enabled = false
	r, _ := throttledRouter(t, cfg, time.Now)

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, doRequest(r, http.MethodPost, "/token", nil).Code)
	}
}

func TestRateLimit_NilClient(t *testing.T) {
	r := gin.New()
	r.POST("/token", RateLimit(testLimitConfig(), nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodPost, "/token", nil).Code)
}
