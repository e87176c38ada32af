package middlewares

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type QuotaRule struct {
	Limit  int           // requests allowed per window
	Window time.Duration // counter lifetime, starting at the first request
	// KeyFn picks the counter; "" skips the quota for the request.
	KeyFn func(*gin.Context) string
}

// Quota counts requests per key in Redis over a fixed window. A Redis outage
// lets requests through.
func Quota(rdb *redis.Client, rule QuotaRule) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rule.KeyFn(c)
		if key == "" {
			c.Next()
			return
		}
		ctx := c.Request.Context()

		n, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			// fail open
			c.Next()
			return
		}
		// first hit of the window starts the clock
		if n == 1 {
			_ = rdb.Expire(ctx, key, rule.Window).Err()
		}
		if int(n) > rule.Limit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"erro": "Cota de uso excedida. Tente novamente mais tarde.",
			})
			return
		}
		c.Header("X-Quota-Used", fmt.Sprintf("%d/%d", n, rule.Limit))
		c.Next()
	}
}

// UserQuotaKey keys the daily quota by authenticated user.
func UserQuotaKey(c *gin.Context) string {
	uid := c.GetInt64(UserIDKey)
	if uid == 0 {
		return ""
	}
	return fmt.Sprintf("quota:user:%d:day", uid)
}
