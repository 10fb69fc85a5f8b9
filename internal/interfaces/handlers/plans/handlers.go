package plans

import (
	"errors"

	planssvc "stratplan-backend/internal/application/plans"
	"stratplan-backend/internal/application/planview"
	policies "stratplan-backend/internal/application/policies/plans"
	"stratplan-backend/internal/middleware"
	"stratplan-backend/internal/pkg/response"
	"stratplan-backend/internal/visibility"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	View  *planview.Service
	Plans *planssvc.Service
}

// GET /api/v1/plans/:id/tree — organization-filtered plan tree with weight
// allocations and budget totals.
func (h *Handlers) GetPlanTree(c *fiber.Ctx) error {
	planID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid plan id", 400, nil)
	}

	view, err := h.View.VisibleTree(c.Context(), planID, middleware.OrgID(c))
	if err != nil {
		if errors.Is(err, visibility.ErrOrganizationUnresolved) {
			return response.ContextRequired(c, "Organization context is required")
		}
		if errors.Is(err, planssvc.ErrPlanNotFound) {
			return response.Error(c, "Plan not found", 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Plan tree fetched successfully", view, fiber.Map{
		"hidden_nodes":     view.Stats.HiddenNodes,
		"dropped_nodes":    view.Stats.DroppedMalformed,
		"visible_measures": view.Stats.VisibleMeasures,
	})
}

// GET /api/v1/plans/:id/rollup — plan-level budget totals over the filtered
// tree.
func (h *Handlers) GetRollUp(c *fiber.Ctx) error {
	planID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid plan id", 400, nil)
	}

	totals, err := h.View.RollUp(c.Context(), planID, middleware.OrgID(c))
	if err != nil {
		if errors.Is(err, visibility.ErrOrganizationUnresolved) {
			return response.ContextRequired(c, "Organization context is required")
		}
		if errors.Is(err, planssvc.ErrPlanNotFound) {
			return response.Error(c, "Plan not found", 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Budget rollup computed successfully", totals, nil)
}

// GET /api/v1/objectives/:id/weights — weight allocation report for one
// objective and its visible initiatives.
func (h *Handlers) GetObjectiveWeights(c *fiber.Ctx) error {
	objectiveID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid objective id", 400, nil)
	}

	report, err := h.View.ValidateWeights(c.Context(), objectiveID, middleware.OrgID(c))
	if err != nil {
		if errors.Is(err, visibility.ErrOrganizationUnresolved) {
			return response.ContextRequired(c, "Organization context is required")
		}
		if errors.Is(err, planssvc.ErrPlanNotFound) {
			return response.Error(c, "Objective not found", 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Weight report computed successfully", report, nil)
}

// POST /api/v1/plans/:id/sub-activities — optimistic create through the
// reconciler; the response carries the authoritative stored row.
func (h *Handlers) CreateSubActivity(c *fiber.Ctx) error {
	planID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid plan id", 400, nil)
	}

	var in planssvc.CreateSubActivityInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}

	result, err := h.View.CreateSubActivity(c.Context(), planID, in)
	if err != nil {
		switch {
		case errors.Is(err, planssvc.ErrNameRequired),
			errors.Is(err, planssvc.ErrBadCalcType),
			errors.Is(err, planssvc.ErrNegativeFunding):
			return response.Error(c, err.Error(), 400, nil)
		case errors.Is(err, planssvc.ErrActivityNotFound):
			return response.Error(c, "Main activity not found", 404, nil)
		case errors.Is(err, planssvc.ErrPlanNotFound):
			return response.Error(c, "Plan not found", 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.SuccessCreated(c, "Sub-activity created successfully", result.SubActivity, fiber.Map{
		"state": result.State,
	})
}

// DELETE /api/v1/plans/:id/main-activities/:activityID
func (h *Handlers) DeleteMainActivity(c *fiber.Ctx) error {
	planID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid plan id", 400, nil)
	}
	activityID, err := uuid.Parse(c.Params("activityID"))
	if err != nil {
		return response.Error(c, "Invalid activity id", 400, nil)
	}

	result, err := h.View.DeleteMainActivity(c.Context(), planID, activityID)
	if err != nil {
		if errors.Is(err, planssvc.ErrActivityNotFound) {
			return response.Error(c, "Main activity not found", 404, nil)
		}
		if errors.Is(err, planssvc.ErrPlanNotFound) {
			return response.Error(c, "Plan not found", 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Main activity deleted successfully", fiber.Map{
		"state": result.State,
	}, nil)
}

// POST /api/v1/plans/:id/submit — draft -> submitted when the lifecycle
// policy passes.
func (h *Handlers) SubmitPlan(c *fiber.Ctx) error {
	planID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid plan id", 400, nil)
	}

	plan, err := h.Plans.SubmitPlan(c.Context(), planID)
	if err != nil {
		switch {
		case errors.Is(err, planssvc.ErrPlanNotFound):
			return response.Error(c, "Plan not found", 404, nil)
		case errors.Is(err, policies.ErrNotDraft),
			errors.Is(err, policies.ErrEmptyPlan),
			errors.Is(err, policies.ErrDatesInverted),
			errors.Is(err, policies.ErrOverweightObjective):
			return response.Error(c, err.Error(), 409, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Plan submitted successfully", fiber.Map{
		"plan_id":      plan.PlanID,
		"status":       plan.Status,
		"submitted_at": plan.SubmittedAt,
	}, nil)
}

// POST /api/v1/plans/:id/review — submitted -> approved/rejected.
func (h *Handlers) ReviewPlan(c *fiber.Ctx) error {
	planID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid plan id", 400, nil)
	}

	var body struct {
		Decision string `json:"decision"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}

	plan, err := h.Plans.ReviewPlan(c.Context(), planID, body.Decision)
	if err != nil {
		switch {
		case errors.Is(err, planssvc.ErrPlanNotFound):
			return response.Error(c, "Plan not found", 404, nil)
		case errors.Is(err, policies.ErrBadDecision):
			return response.Error(c, err.Error(), 400, nil)
		case errors.Is(err, policies.ErrNotSubmitted):
			return response.Error(c, err.Error(), 409, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Plan reviewed successfully", fiber.Map{
		"plan_id": plan.PlanID,
		"status":  plan.Status,
	}, nil)
}
