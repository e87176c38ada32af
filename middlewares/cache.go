package middlewares

import (
	"bytes"
	"crypto/sha1"
	"encoding/gob"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"eventapi/utils"
)

// cachedBody is what gets gob-encoded into Redis.
type cachedBody struct {
	Status int
	Header map[string][]string
	Body   []byte
}

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// CacheKeyFrom returns the Redis key for a cacheable request and its kind
// ("item" or "list"), or "" when the request must not be cached. Keys carry
// the caller id because every /events read is scoped to the caller. Item keys
// keep the raw event id so writes can purge one event.
func CacheKeyFrom(c *gin.Context) (string, string) {
	path := c.FullPath()
	// unmatched routes have no FullPath
	if c.Request.Method != "GET" || path == "" {
		return "", ""
	}
	uid := strconv.FormatInt(c.GetInt64(UserIDKey), 10)
	raw := uid + "|" + c.Request.URL.Path + "|" + c.Request.URL.RawQuery

	switch {
	// one event and everything under it: purged by writes to that event
	case strings.HasPrefix(path, "/events/:id"):
		return utils.EventsItemPrefix + c.Param("id") + ":" + sha1Hex(raw), "item"
	// listings: purged by any event or membership write
	case strings.HasPrefix(path, "/events"):
		return utils.EventsListPrefix + sha1Hex(raw), "list"
	default:
		return "", ""
	}
}

// ResponseCache replays 2xx GET responses from Redis for ttl.
// X-Cache reports HIT or MISS.
func ResponseCache(rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, _ := CacheKeyFrom(c)
		if key == "" {
			c.Next()
			return
		}
		ctx := c.Request.Context()

		// redis.Nil and outages both fall through to the handler
		if b, err := rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
			var hit cachedBody
			if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&hit); err == nil {
				for k, vals := range hit.Header {
					for _, v := range vals {
						c.Writer.Header().Add(k, v)
					}
				}
				c.Writer.Header().Set("X-Cache", "HIT")
				c.Status(hit.Status)
				_, _ = c.Writer.Write(hit.Body)
				c.Abort()
				return
			}
		}

		// tee the response so it can be stored after the handler runs
		buf := &bytes.Buffer{}
		bw := &bufferedWriter{ResponseWriter: c.Writer, buf: buf}
		c.Writer = bw
		c.Writer.Header().Set("X-Cache", "MISS")

		c.Next()

		// errors are never cached
		if bw.Status() >= 200 && bw.Status() < 300 {
			header := map[string][]string{}
			for k, v := range c.Writer.Header() {
				// per-response headers must not be replayed
				if k != "X-Cache" && k != "X-Request-Id" {
					header[k] = v
				}
			}
			item := cachedBody{Status: bw.Status(), Header: header, Body: buf.Bytes()}

			var o bytes.Buffer
			if err := gob.NewEncoder(&o).Encode(item); err == nil {
				_ = rdb.Set(ctx, key, o.Bytes(), ttl).Err()
			}
		}
	}
}

type bufferedWriter struct {
	gin.ResponseWriter
	buf *bytes.Buffer
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}
