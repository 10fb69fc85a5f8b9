package health

import (
	healthsvc "stratplan-backend/internal/health"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Handlers struct {
	Rdb *redis.Client
	DB  *gorm.DB
}

type gormPinger struct{ db *gorm.DB }

func (g gormPinger) Ping() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// GET /health — dependency status plus request traffic counters.
func (h *Handlers) Health(c *fiber.Ctx) error {
	var pinger healthsvc.DBPinger
	if h.DB != nil {
		pinger = gormPinger{db: h.DB}
	}
	result := healthsvc.Collect(c.Context(), h.Rdb, pinger)
	status := fiber.StatusOK
	if result.Status != "ok" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
