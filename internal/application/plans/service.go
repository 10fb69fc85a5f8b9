// Package plans is the gorm-backed plan store: CRUD plumbing that loads the
// tree the engine computes over and persists the mutations the reconciler
// wraps.
package plans

import (
	"context"
	"errors"
	"time"

	policies "stratplan-backend/internal/application/policies/plans"
	"stratplan-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrPlanNotFound     = errors.New("Plan not found")
	ErrActivityNotFound = errors.New("Main activity not found")
	ErrNameRequired     = errors.New("name is required")
	ErrBadCalcType      = errors.New("budget_calculation_type must be WITH_TOOL or WITHOUT_TOOL")
	ErrNegativeFunding  = errors.New("funding amounts must not be negative")
)

// Service encapsulates plan-store operations.
type Service struct {
	DB *gorm.DB
}

// GetPlanTree loads a plan with its full subtree, unfiltered. Visibility is
// the engine's concern, not the store's.
func (s *Service) GetPlanTree(ctx context.Context, planID uuid.UUID) (*domain.Plan, error) {
	var plan domain.Plan
	err := s.DB.WithContext(ctx).
		Preload("Objectives.Initiatives.PerformanceMeasures").
		Preload("Objectives.Initiatives.MainActivities.SubActivities").
		Preload("Objectives.Initiatives.MainActivities.LegacyBudget").
		Where("plan_id = ?", planID).
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetObjective loads one objective with its subtree.
func (s *Service) GetObjective(ctx context.Context, objectiveID uuid.UUID) (*domain.StrategicObjective, error) {
	var obj domain.StrategicObjective
	err := s.DB.WithContext(ctx).
		Preload("Initiatives.PerformanceMeasures").
		Preload("Initiatives.MainActivities.SubActivities").
		Preload("Initiatives.MainActivities.LegacyBudget").
		Where("objective_id = ?", objectiveID).
		First(&obj).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &obj, nil
}

// FetchInitiatives returns an objective's initiatives.
func (s *Service) FetchInitiatives(ctx context.Context, objectiveID uuid.UUID) ([]domain.Initiative, error) {
	var out []domain.Initiative
	err := s.DB.WithContext(ctx).
		Where("objective_id = ?", objectiveID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

// FetchPerformanceMeasures returns an initiative's measures.
func (s *Service) FetchPerformanceMeasures(ctx context.Context, initiativeID uuid.UUID) ([]domain.PerformanceMeasure, error) {
	var out []domain.PerformanceMeasure
	err := s.DB.WithContext(ctx).
		Where("initiative_id = ?", initiativeID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

// FetchMainActivities returns an initiative's activities with their budgets.
func (s *Service) FetchMainActivities(ctx context.Context, initiativeID uuid.UUID) ([]domain.MainActivity, error) {
	var out []domain.MainActivity
	err := s.DB.WithContext(ctx).
		Preload("SubActivities").
		Preload("LegacyBudget").
		Where("initiative_id = ?", initiativeID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

// GetMainActivity loads one main activity with its sub-activities and legacy
// budget; the reconciler's delayed refresh path uses it to re-fetch a subtree.
func (s *Service) GetMainActivity(ctx context.Context, activityID uuid.UUID) (*domain.MainActivity, error) {
	var activity domain.MainActivity
	err := s.DB.WithContext(ctx).
		Preload("SubActivities").
		Preload("LegacyBudget").
		Where("activity_id = ?", activityID).
		First(&activity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}
	return &activity, nil
}

// FetchSubActivities returns a main activity's sub-activities.
func (s *Service) FetchSubActivities(ctx context.Context, activityID uuid.UUID) ([]domain.SubActivity, error) {
	var out []domain.SubActivity
	err := s.DB.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

// CreateSubActivityInput is the payload for a new costed sub-activity.
type CreateSubActivityInput struct {
	ActivityID               uuid.UUID `json:"activity_id"`
	Name                     string    `json:"name"`
	ActivityType             string    `json:"activity_type"`
	Description              string    `json:"description"`
	BudgetCalculationType    string    `json:"budget_calculation_type"`
	EstimatedCostWithTool    float64   `json:"estimated_cost_with_tool"`
	EstimatedCostWithoutTool float64   `json:"estimated_cost_without_tool"`
	GovernmentTreasury       float64   `json:"government_treasury"`
	SDGFunding               float64   `json:"sdg_funding"`
	PartnersFunding          float64   `json:"partners_funding"`
	OtherFunding             float64   `json:"other_funding"`
}

func (in CreateSubActivityInput) validate() error {
	if in.Name == "" {
		return ErrNameRequired
	}
	if in.BudgetCalculationType != domain.CalcWithTool && in.BudgetCalculationType != domain.CalcWithoutTool {
		return ErrBadCalcType
	}
	if in.GovernmentTreasury < 0 || in.SDGFunding < 0 || in.PartnersFunding < 0 || in.OtherFunding < 0 {
		return ErrNegativeFunding
	}
	return nil
}

// CreateSubActivity persists a new sub-activity under an existing main
// activity and returns the stored row.
func (s *Service) CreateSubActivity(ctx context.Context, in CreateSubActivityInput) (*domain.SubActivity, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var created domain.SubActivity
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var parent domain.MainActivity
		if err := tx.Where("activity_id = ?", in.ActivityID).First(&parent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrActivityNotFound
			}
			return err
		}

		activityType := in.ActivityType
		if activityType == "" {
			activityType = domain.ActivityOther
		}
		created = domain.SubActivity{
			ActivityID:               parent.ActivityID,
			Name:                     in.Name,
			ActivityType:             activityType,
			Description:              in.Description,
			BudgetCalculationType:    in.BudgetCalculationType,
			EstimatedCostWithTool:    in.EstimatedCostWithTool,
			EstimatedCostWithoutTool: in.EstimatedCostWithoutTool,
			GovernmentTreasury:       in.GovernmentTreasury,
			SDGFunding:               in.SDGFunding,
			PartnersFunding:          in.PartnersFunding,
			OtherFunding:             in.OtherFunding,
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteSubActivity removes a sub-activity.
func (s *Service) DeleteSubActivity(ctx context.Context, subActivityID uuid.UUID) error {
	result := s.DB.WithContext(ctx).
		Where("sub_activity_id = ?", subActivityID).
		Delete(&domain.SubActivity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrActivityNotFound
	}
	return nil
}

// DeleteMainActivity removes a main activity with its sub-activities and
// legacy budget.
func (s *Service) DeleteMainActivity(ctx context.Context, activityID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var activity domain.MainActivity
		if err := tx.Where("activity_id = ?", activityID).First(&activity).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrActivityNotFound
			}
			return err
		}
		if err := tx.Where("activity_id = ?", activityID).Delete(&domain.SubActivity{}).Error; err != nil {
			return err
		}
		if err := tx.Where("activity_id = ?", activityID).Delete(&domain.ActivityBudget{}).Error; err != nil {
			return err
		}
		return tx.Delete(&activity).Error
	})
}

// SubmitPlan moves a draft (or rejected) plan to submitted after the
// lifecycle policy passes.
func (s *Service) SubmitPlan(ctx context.Context, planID uuid.UUID) (*domain.Plan, error) {
	plan, err := s.GetPlanTree(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := policies.ValidateSubmission(plan); err != nil {
		return nil, err
	}
	now := time.Now()
	plan.Status = domain.PlanSubmitted
	plan.SubmittedAt = &now
	err = s.DB.WithContext(ctx).Model(&domain.Plan{}).
		Where("plan_id = ?", planID).
		Updates(map[string]interface{}{"status": domain.PlanSubmitted, "submitted_at": now}).Error
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// ReviewPlan records an approve/reject decision on a submitted plan.
func (s *Service) ReviewPlan(ctx context.Context, planID uuid.UUID, decision string) (*domain.Plan, error) {
	plan, err := s.GetPlanTree(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := policies.ValidateReview(plan, decision); err != nil {
		return nil, err
	}
	plan.Status = decision
	err = s.DB.WithContext(ctx).Model(&domain.Plan{}).
		Where("plan_id = ?", planID).
		Update("status", decision).Error
	if err != nil {
		return nil, err
	}
	return plan, nil
}
