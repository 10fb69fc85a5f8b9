package costing

import (
	catalogsvc "stratplan-backend/internal/application/catalog"
	"stratplan-backend/internal/costing"
	"stratplan-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Catalog *catalogsvc.Service
}

// POST /api/v1/costing/estimate — validates the request and computes the
// estimate against the cached reference catalog.
func (h *Handlers) Estimate(c *fiber.Ctx) error {
	var req costing.Request
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	if err := req.Validate(); err != nil {
		return response.Error(c, err.Error(), 400, nil)
	}

	cat, err := h.Catalog.Fetch(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}

	total := costing.Estimate(req, cat)
	return response.Success(c, "Estimate computed successfully", fiber.Map{
		"estimated_budget": total,
	}, nil)
}
