package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// HealthCheck pings one dependency.
type HealthCheck func(ctx context.Context) error

// PostgresCheck pings the database pool behind db.
func PostgresCheck(db *gorm.DB) HealthCheck {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

func RedisCheck(rdb *redis.Client) HealthCheck {
	return func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
}

// Health returns a JSON health check response.
// Each dependency reports "connected" or "error"; errors themselves are never exposed.
func Health(checks map[string]HealthCheck) gin.HandlerFunc {
	names := make([]string, 0, len(checks))
	for n := range checks {
		names = append(names, n)
	}
	sort.Strings(names)

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		body := gin.H{}
		status := http.StatusOK
		for _, n := range names {
			body[n] = "connected"
			if checks[n](ctx) != nil {
				body[n] = "error"
				status = http.StatusServiceUnavailable
			}
		}
		body["ok"] = status == http.StatusOK
		c.JSON(status, body)
	}
}
