package plans

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	planssvc "stratplan-backend/internal/application/plans"
	"stratplan-backend/internal/application/planview"
	"stratplan-backend/internal/domain"
	"stratplan-backend/internal/middleware"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupPlansTest(t *testing.T) (*fiber.App, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Plan{}, &domain.StrategicObjective{}, &domain.Initiative{},
		&domain.PerformanceMeasure{}, &domain.MainActivity{},
		&domain.SubActivity{}, &domain.ActivityBudget{},
	))

	store := &planssvc.Service{DB: db}
	h := &Handlers{View: &planview.Service{Store: store}, Plans: store}
	app := fiber.New()
	app.Use(middleware.OrgContext())
	app.Get("/api/v1/plans/:id/tree", h.GetPlanTree)
	app.Get("/api/v1/plans/:id/rollup", h.GetRollUp)
	app.Get("/api/v1/objectives/:id/weights", h.GetObjectiveWeights)
	app.Post("/api/v1/plans/:id/sub-activities", h.CreateSubActivity)
	app.Delete("/api/v1/plans/:id/main-activities/:activityID", h.DeleteMainActivity)
	app.Post("/api/v1/plans/:id/submit", h.SubmitPlan)
	app.Post("/api/v1/plans/:id/review", h.ReviewPlan)
	return app, db
}

func seedTree(t *testing.T, db *gorm.DB) (*domain.Plan, *domain.StrategicObjective, *domain.MainActivity) {
	plan := &domain.Plan{PlannerName: "A. Planner", FiscalYear: "2026"}
	require.NoError(t, db.Create(plan).Error)
	obj := &domain.StrategicObjective{PlanID: plan.PlanID, Title: "Coverage", Weight: 40}
	require.NoError(t, db.Create(obj).Error)
	init := &domain.Initiative{
		ObjectiveID: obj.ObjectiveID, Name: "Outreach", Weight: 15,
		Organization: domain.OrgRef("7"),
	}
	require.NoError(t, db.Create(init).Error)
	act := &domain.MainActivity{InitiativeID: init.InitiativeID, Name: "Sessions", Weight: 5}
	require.NoError(t, db.Create(act).Error)
	require.NoError(t, db.Create(&domain.SubActivity{
		ActivityID: act.ActivityID, Name: "Venue",
		BudgetCalculationType:    domain.CalcWithoutTool,
		EstimatedCostWithoutTool: 3000,
		GovernmentTreasury:       1000,
	}).Error)
	return plan, obj, act
}

func TestGetPlanTree_RequiresOrgContext(t *testing.T) {
	app, db := setupPlansTest(t)
	plan, _, _ := seedTree(t, db)

	req := httptest.NewRequest("GET", "/api/v1/plans/"+plan.PlanID.String()+"/tree", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusPreconditionRequired, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "error", result["status"])
}

func TestGetPlanTree_FiltersByHeader(t *testing.T) {
	app, db := setupPlansTest(t)
	plan, _, _ := seedTree(t, db)

	req := httptest.NewRequest("GET", "/api/v1/plans/"+plan.PlanID.String()+"/tree", nil)
	req.Header.Set(middleware.OrgHeader, "7")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result struct {
		Status string `json:"status"`
		Data   struct {
			Plan struct {
				Objectives []struct {
					Initiatives []struct {
						Name string `json:"name"`
					} `json:"initiatives"`
				} `json:"objectives"`
			} `json:"plan"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "success", result.Status)
	require.Len(t, result.Data.Plan.Objectives, 1)
	require.Len(t, result.Data.Plan.Objectives[0].Initiatives, 1)
	assert.Equal(t, "Outreach", result.Data.Plan.Objectives[0].Initiatives[0].Name)
}

func TestGetPlanTree_OrgQueryFallbackHidesForeign(t *testing.T) {
	app, db := setupPlansTest(t)
	plan, _, _ := seedTree(t, db)

	req := httptest.NewRequest("GET", "/api/v1/plans/"+plan.PlanID.String()+"/tree?organization=99", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result struct {
		Data struct {
			Plan struct {
				Objectives []struct {
					Initiatives []interface{} `json:"initiatives"`
				} `json:"objectives"`
			} `json:"plan"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.Len(t, result.Data.Plan.Objectives, 1)
	assert.Empty(t, result.Data.Plan.Objectives[0].Initiatives)
}

func TestGetPlanTree_InvalidID(t *testing.T) {
	app, _ := setupPlansTest(t)
	req := httptest.NewRequest("GET", "/api/v1/plans/not-a-uuid/tree", nil)
	req.Header.Set(middleware.OrgHeader, "7")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestGetPlanTree_NotFound(t *testing.T) {
	app, _ := setupPlansTest(t)
	req := httptest.NewRequest("GET", "/api/v1/plans/"+uuid.NewString()+"/tree", nil)
	req.Header.Set(middleware.OrgHeader, "7")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestGetRollUp(t *testing.T) {
	app, db := setupPlansTest(t)
	plan, _, _ := seedTree(t, db)

	req := httptest.NewRequest("GET", "/api/v1/plans/"+plan.PlanID.String()+"/rollup", nil)
	req.Header.Set(middleware.OrgHeader, "7")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result struct {
		Data struct {
			Required  float64 `json:"required"`
			Available float64 `json:"available"`
			Gap       float64 `json:"gap"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 3000.0, result.Data.Required)
	assert.Equal(t, 1000.0, result.Data.Available)
	assert.Equal(t, 2000.0, result.Data.Gap)
}

func TestGetObjectiveWeights(t *testing.T) {
	app, db := setupPlansTest(t)
	_, obj, _ := seedTree(t, db)

	req := httptest.NewRequest("GET", "/api/v1/objectives/"+obj.ObjectiveID.String()+"/weights", nil)
	req.Header.Set(middleware.OrgHeader, "7")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result struct {
		Data struct {
			Objective struct {
				MaxAllowed float64 `json:"max_allowed"`
				Allocated  float64 `json:"allocated"`
				IsValid    bool    `json:"is_valid"`
			} `json:"objective"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 26.0, result.Data.Objective.MaxAllowed)
	assert.Equal(t, 15.0, result.Data.Objective.Allocated)
	assert.True(t, result.Data.Objective.IsValid)
}

func TestCreateSubActivity_Created(t *testing.T) {
	app, db := setupPlansTest(t)
	plan, _, act := seedTree(t, db)

	body, _ := json.Marshal(map[string]interface{}{
		"activity_id":              act.ActivityID,
		"name":                     "Hall booking",
		"budget_calculation_type":  domain.CalcWithTool,
		"estimated_cost_with_tool": 10500,
		"government_treasury":      4000,
	})
	req := httptest.NewRequest("POST", "/api/v1/plans/"+plan.PlanID.String()+"/sub-activities", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)

	var result struct {
		Status string `json:"status"`
		Data   struct {
			Name string `json:"name"`
		} `json:"data"`
		Metadata struct {
			State string `json:"state"`
		} `json:"metadata"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "success", result.Status)
	assert.Equal(t, "Hall booking", result.Data.Name)
	assert.Equal(t, "committed", result.Metadata.State)

	var count int64
	db.Model(&domain.SubActivity{}).Where("activity_id = ?", act.ActivityID).Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestCreateSubActivity_BadCalcType(t *testing.T) {
	app, db := setupPlansTest(t)
	plan, _, act := seedTree(t, db)

	body, _ := json.Marshal(map[string]interface{}{
		"activity_id":             act.ActivityID,
		"name":                    "Hall booking",
		"budget_calculation_type": "GUESS",
	})
	req := httptest.NewRequest("POST", "/api/v1/plans/"+plan.PlanID.String()+"/sub-activities", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestDeleteMainActivity(t *testing.T) {
	app, db := setupPlansTest(t)
	plan, _, act := seedTree(t, db)

	req := httptest.NewRequest("DELETE", "/api/v1/plans/"+plan.PlanID.String()+"/main-activities/"+act.ActivityID.String(), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var count int64
	db.Model(&domain.MainActivity{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestDeleteMainActivity_Unknown(t *testing.T) {
	app, db := setupPlansTest(t)
	plan, _, _ := seedTree(t, db)

	req := httptest.NewRequest("DELETE", "/api/v1/plans/"+plan.PlanID.String()+"/main-activities/"+uuid.NewString(), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestSubmitAndReviewPlan(t *testing.T) {
	app, db := setupPlansTest(t)
	plan, _, _ := seedTree(t, db)

	req := httptest.NewRequest("POST", "/api/v1/plans/"+plan.PlanID.String()+"/submit", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var stored domain.Plan
	require.NoError(t, db.Where("plan_id = ?", plan.PlanID).First(&stored).Error)
	assert.Equal(t, domain.PlanSubmitted, stored.Status)
	assert.NotNil(t, stored.SubmittedAt)

	// Second submit conflicts: the plan is no longer a draft.
	req = httptest.NewRequest("POST", "/api/v1/plans/"+plan.PlanID.String()+"/submit", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 409, resp.StatusCode)

	body, _ := json.Marshal(map[string]string{"decision": domain.PlanApproved})
	req = httptest.NewRequest("POST", "/api/v1/plans/"+plan.PlanID.String()+"/review", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	require.NoError(t, db.Where("plan_id = ?", plan.PlanID).First(&stored).Error)
	assert.Equal(t, domain.PlanApproved, stored.Status)
}

func TestReviewPlan_BadDecision(t *testing.T) {
	app, db := setupPlansTest(t)
	plan, _, _ := seedTree(t, db)
	require.NoError(t, db.Model(&domain.Plan{}).
		Where("plan_id = ?", plan.PlanID).
		Update("status", domain.PlanSubmitted).Error)

	body, _ := json.Marshal(map[string]string{"decision": "maybe"})
	req := httptest.NewRequest("POST", "/api/v1/plans/"+plan.PlanID.String()+"/review", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}
