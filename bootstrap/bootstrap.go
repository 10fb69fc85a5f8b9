// Package bootstrap builds the Fiber app for serverless entrypoints that
// cannot import internal packages.
package bootstrap

import (
	"stratplan-backend/internal/config"
	"stratplan-backend/internal/interfaces/router"

	"github.com/gofiber/fiber/v2"
)

// New creates the Fiber app from environment configuration.
func New() (*fiber.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	app, _, _, err := router.CreateApp(cfg)
	return app, err
}
