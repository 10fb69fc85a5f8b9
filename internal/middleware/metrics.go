package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Redis keys for request counters surfaced by the /health endpoint.
const (
	KeyReqTotal  = "stratplan:health:req_total"
	KeyReqErrors = "stratplan:health:req_errors"
	KeyResTime   = "stratplan:health:res_time_total"
	KeyResCount  = "stratplan:health:res_count"
	KeyLastReq   = "stratplan:health:last_request"
)

// RequestMetrics records request counters in Redis (health and favicon
// traffic excluded).
func RequestMetrics(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rdb == nil {
			return c.Next()
		}
		path := c.Path()
		if strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/favicon") {
			return c.Next()
		}

		start := time.Now()
		ctx := context.Background()
		lastReq, _ := json.Marshal(map[string]interface{}{
			"time":   time.Now(),
			"path":   c.OriginalURL(),
			"method": c.Method(),
		})
		_ = rdb.Set(ctx, KeyLastReq, lastReq, 0).Err()
		_ = rdb.Incr(ctx, KeyReqTotal).Err()

		err := c.Next()

		_ = rdb.Incr(ctx, KeyResCount).Err()
		_ = rdb.IncrByFloat(ctx, KeyResTime, float64(time.Since(start).Milliseconds())).Err()
		if c.Response().StatusCode() >= 500 {
			_ = rdb.Incr(ctx, KeyReqErrors).Err()
		}
		return err
	}
}
