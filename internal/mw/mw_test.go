package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"

	"huts4u-backend/internal/ttlcache"
)

type stepClock struct{ now time.Time }

func (s *stepClock) Now() time.Time { return s.now }

func TestCache_ServesRepeatedGETFromStore(t *testing.T) {
	gin.SetMode(gin.TestMode)

	clock := &stepClock{now: time.Unix(0, 0)}
	store := ttlcache.New(time.Minute, clock)

	calls := 0
	router := gin.New()
	router.Use(Cache(store))
	router.GET("/api/hotels", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})
	router.POST("/api/hotels", func(c *gin.Context) {
		calls++
		c.Status(http.StatusNoContent)
	})

	get := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/hotels?city=Bhubaneswar", nil))
		return w
	}

	first := get()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get(CacheStatusHeader))

	second := get()
	assert.Equal(t, "HIT", second.Header().Get(CacheStatusHeader))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", second.Header().Get("Content-Type"))
	assert.Equal(t, 1, calls)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/hotels", nil))
	assert.Equal(t, 2, calls)

	clock.now = clock.now.Add(time.Minute)
	assert.Equal(t, "MISS", get().Header().Get(CacheStatusHeader))
	assert.Equal(t, 3, calls)
}

func TestCache_SkipsErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := ttlcache.New(time.Minute, nil)

	router := gin.New()
	router.Use(Cache(store))
	router.GET("/missing", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Hotel not found"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, store.ItemCount())
}

func TestRateLimiter_PerClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RateLimiter(rate.Every(time.Hour), 2, "X-Forwarded-For"))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("203.0.113.5"))
	assert.Equal(t, http.StatusOK, do("203.0.113.5"))
	assert.Equal(t, http.StatusTooManyRequests, do("203.0.113.5"))
	assert.Equal(t, http.StatusOK, do("198.51.100.7"))
}

func TestClientIP_FallsBackOnGarbage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "192.0.2.1:5555"
	c.Request.Header.Set("X-Real-IP", "not-an-ip")

	assert.Equal(t, "192.0.2.1", ClientIP(c, "X-Real-IP"))
	assert.Equal(t, "192.0.2.1", ClientIP(c, ""))
}

func TestIPRateLimiter_DropsIdleBuckets(t *testing.T) {
	clock := &stepClock{now: time.Unix(0, 0)}
	limiter := NewIPRateLimiter(rate.Every(time.Hour), 1, time.Minute, clock)

	first := limiter.GetLimiter("203.0.113.5")
	assert.True(t, first.Allow())
	assert.False(t, limiter.GetLimiter("203.0.113.5").Allow())
	assert.Same(t, first, limiter.GetLimiter("203.0.113.5"))

	// Each lookup extends the idle deadline.
	clock.now = clock.now.Add(50 * time.Second)
	assert.Same(t, first, limiter.GetLimiter("203.0.113.5"))
	clock.now = clock.now.Add(50 * time.Second)
	assert.Same(t, first, limiter.GetLimiter("203.0.113.5"))

	clock.now = clock.now.Add(time.Minute)
	fresh := limiter.GetLimiter("203.0.113.5")
	assert.NotSame(t, first, fresh)
	assert.True(t, fresh.Allow())
	assert.Equal(t, 1, limiter.Len())
}
