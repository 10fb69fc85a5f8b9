package costing

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	catalogsvc "stratplan-backend/internal/application/catalog"
	"stratplan-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCostingTest(t *testing.T) (*fiber.App, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Location{}, &domain.PerDiemRate{}, &domain.AccommodationRate{},
		&domain.ParticipantCost{}, &domain.SessionCost{}, &domain.TransportRoute{},
	))

	h := &Handlers{Catalog: &catalogsvc.Service{DB: db}}
	app := fiber.New()
	app.Post("/api/v1/costing/estimate", h.Estimate)
	return app, db
}

func TestEstimate_PerDiem(t *testing.T) {
	app, db := setupCostingTest(t)

	loc := domain.Location{Name: "Adama", IsHardshipArea: true}
	require.NoError(t, db.Create(&loc).Error)
	require.NoError(t, db.Create(&domain.PerDiemRate{
		LocationID: loc.LocationID, Amount: 300, HardshipAllowance: 50,
	}).Error)

	body, _ := json.Marshal(map[string]interface{}{
		"location_id":        loc.LocationID,
		"days":               3,
		"participants":       10,
		"number_of_sessions": 1,
		"cost_mode":          "perdiem",
	})
	req := httptest.NewRequest("POST", "/api/v1/costing/estimate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result struct {
		Status string `json:"status"`
		Data   struct {
			EstimatedBudget float64 `json:"estimated_budget"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "success", result.Status)
	assert.Equal(t, 10500.0, result.Data.EstimatedBudget)
}

func TestEstimate_RejectsBadQuantities(t *testing.T) {
	app, db := setupCostingTest(t)

	loc := domain.Location{Name: "Hawassa"}
	require.NoError(t, db.Create(&loc).Error)

	cases := []map[string]interface{}{
		{"location_id": loc.LocationID, "days": 0, "participants": 10, "number_of_sessions": 1, "cost_mode": "perdiem"},
		{"location_id": loc.LocationID, "days": 2, "participants": 0, "number_of_sessions": 1, "cost_mode": "perdiem"},
		{"location_id": loc.LocationID, "days": 2, "participants": 10, "number_of_sessions": 1, "cost_mode": "half-board"},
		{"location_id": loc.LocationID, "days": 2, "participants": 10, "number_of_sessions": 1, "cost_mode": "perdiem", "other_costs": -1},
	}
	for _, payload := range cases {
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest("POST", "/api/v1/costing/estimate", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
	}
}

func TestEstimate_InvalidBody(t *testing.T) {
	app, _ := setupCostingTest(t)
	req := httptest.NewRequest("POST", "/api/v1/costing/estimate", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}
