package handler

import (
	"context"
	"net/http"
	"time"

	"novacrm/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health reports DB and Redis connectivity plus the notification queue depth,
// so a stuck worker pool shows up as a growing backlog here before mail stops
// arriving. Never exposes credentials or internals.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		queueDepth := int64(-1)
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		} else if depth, err := rdb.LLen(ctx, worker.QueueNotification).Result(); err == nil {
			queueDepth = depth
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":          status == http.StatusOK,
			"service":     "novacrm-inventory",
			"db":          dbStatus,
			"redis":       redisStatus,
			"queue_depth": queueDepth,
		})
	}
}
