package mw

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// memoEntry is one cached GET response, replayed verbatim on a hit.
type memoEntry struct {
	status  int
	headers http.Header
	body    []byte
}

// recordingWriter tees the response body so a successful reply can be memoized
// after the handler runs.
type recordingWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w recordingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Cache memoizes successful GET responses by request URI for ttl. Dashboard
// and sync reads are polled aggressively by the UI and are cheap to serve a
// few seconds stale; a client can force a fresh read with Cache-Control:
// no-cache.
func Cache(store *cache.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		if c.GetHeader("Cache-Control") == "no-cache" {
			c.Next()
			return
		}

		key := c.Request.RequestURI
		if hit, ok := store.Get(key); ok {
			entry := hit.(memoEntry)
			for k, v := range entry.headers {
				c.Writer.Header()[k] = v
			}
			c.Writer.Header().Set("X-Cache", "HIT")
			c.Writer.WriteHeader(entry.status)
			c.Writer.Write(entry.body)
			c.Abort()
			return
		}

		rec := &recordingWriter{body: bytes.NewBuffer(nil), ResponseWriter: c.Writer}
		c.Writer = rec

		c.Next()

		if rec.Status() >= 200 && rec.Status() < 300 {
			store.Set(key, memoEntry{
				status:  rec.Status(),
				headers: rec.Header().Clone(),
				body:    rec.body.Bytes(),
			}, ttl)
		}
	}
}
