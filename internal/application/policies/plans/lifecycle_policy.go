package policies

import (
	"errors"

	"stratplan-backend/internal/domain"
	"stratplan-backend/internal/weights"
)

var (
	ErrNotDraft            = errors.New("Only draft plans can be submitted")
	ErrNotSubmitted        = errors.New("Only submitted plans can be reviewed")
	ErrEmptyPlan           = errors.New("A plan needs at least one objective before submission")
	ErrDatesInverted       = errors.New("Plan start date must be before its end date")
	ErrOverweightObjective = errors.New("An objective's initiative weights exceed the allowed share")
	ErrBadDecision         = errors.New("Review decision must be approved or rejected")
)

// ValidateSubmission gates the draft -> submitted transition. Weight
// violations block submission even though drafts tolerate them.
func ValidateSubmission(plan *domain.Plan) error {
	if plan.Status != domain.PlanDraft && plan.Status != domain.PlanRejected {
		return ErrNotDraft
	}
	if len(plan.Objectives) == 0 {
		return ErrEmptyPlan
	}
	if plan.FromDate != nil && plan.ToDate != nil && !plan.FromDate.Before(*plan.ToDate) {
		return ErrDatesInverted
	}
	for i := range plan.Objectives {
		obj := &plan.Objectives[i]
		if !weights.ForObjective(obj, obj.Initiatives).IsValid {
			return ErrOverweightObjective
		}
	}
	return nil
}

// ValidateReview gates the submitted -> approved/rejected transition.
func ValidateReview(plan *domain.Plan, decision string) error {
	if plan.Status != domain.PlanSubmitted {
		return ErrNotSubmitted
	}
	if decision != domain.PlanApproved && decision != domain.PlanRejected {
		return ErrBadDecision
	}
	return nil
}
