package catalog

import (
	"encoding/json"

	catalogsvc "stratplan-backend/internal/application/catalog"
	"stratplan-backend/internal/domain"
	"stratplan-backend/internal/pkg/normalize"
	"stratplan-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *catalogsvc.Service
}

// GET /api/v1/costing/catalog — the full reference catalog, cache-first.
func (h *Handlers) GetCatalog(c *fiber.Ctx) error {
	cat, err := h.Service.Fetch(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Catalog fetched successfully", cat, nil)
}

// POST /api/v1/costing/catalog/import — upserts reference rows. Each field
// accepts either a bare array or a results-wrapped object, since exported
// reference data arrives in both shapes.
func (h *Handlers) Import(c *fiber.Ctx) error {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}

	var in catalogsvc.ImportData
	var err error
	if in.Locations, err = normalize.Collection[domain.Location](body["locations"]); err != nil {
		return response.Error(c, "Invalid locations payload", 400, nil)
	}
	if in.PerDiemRates, err = normalize.Collection[domain.PerDiemRate](body["per_diem_rates"]); err != nil {
		return response.Error(c, "Invalid per_diem_rates payload", 400, nil)
	}
	if in.AccommodationRates, err = normalize.Collection[domain.AccommodationRate](body["accommodation_rates"]); err != nil {
		return response.Error(c, "Invalid accommodation_rates payload", 400, nil)
	}
	if in.ParticipantCosts, err = normalize.Collection[domain.ParticipantCost](body["participant_costs"]); err != nil {
		return response.Error(c, "Invalid participant_costs payload", 400, nil)
	}
	if in.SessionCosts, err = normalize.Collection[domain.SessionCost](body["session_costs"]); err != nil {
		return response.Error(c, "Invalid session_costs payload", 400, nil)
	}
	if in.TransportRoutes, err = normalize.Collection[domain.TransportRoute](body["transport_routes"]); err != nil {
		return response.Error(c, "Invalid transport_routes payload", 400, nil)
	}

	if err := h.Service.Import(c.Context(), in); err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Catalog imported successfully", fiber.Map{
		"locations":           len(in.Locations),
		"per_diem_rates":      len(in.PerDiemRates),
		"accommodation_rates": len(in.AccommodationRates),
		"participant_costs":   len(in.ParticipantCosts),
		"session_costs":       len(in.SessionCosts),
		"transport_routes":    len(in.TransportRoutes),
	}, nil)
}
