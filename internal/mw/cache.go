package mw

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"huts4u-backend/internal/ttlcache"
)

// CacheStatusHeader reports whether a GET response was served from cache.
const CacheStatusHeader = "X-Cache"

type cachedResponse struct {
	status  int
	headers http.Header
	body    []byte
}

type bodyCacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyCacheWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w bodyCacheWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Cache is a middleware for in-memory caching of GET requests. Entries live
// for the store's TTL and are dropped when the syncer flushes the store.
func Cache(store *ttlcache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.RequestURI
		if resp, found := store.Get(key); found {
			cached := resp.(cachedResponse)
			for k, v := range cached.headers {
				c.Writer.Header()[k] = v
			}
			c.Writer.Header().Set(CacheStatusHeader, "HIT")
			c.Writer.WriteHeader(cached.status)
			c.Writer.Write(cached.body)
			c.Abort()
			return
		}

		c.Writer.Header().Set(CacheStatusHeader, "MISS")
		blw := &bodyCacheWriter{body: bytes.NewBuffer(nil), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		// Only cache successful responses
		if blw.Status() >= 200 && blw.Status() < 300 {
			headers := blw.Header().Clone()
			headers.Del(CacheStatusHeader)
			store.Set(key, cachedResponse{
				status:  blw.Status(),
				headers: headers,
				body:    blw.body.Bytes(),
			})
		}
	}
}
