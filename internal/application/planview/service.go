// Package planview is the session-facing façade over the computation engine:
// it loads snapshots from the plan store, filters them per organization, runs
// the weight and budget rollups, and drives every mutation through the
// reconciler.
package planview

import (
	"context"
	"sync"
	"time"

	"stratplan-backend/internal/application/plans"
	"stratplan-backend/internal/budget"
	"stratplan-backend/internal/domain"
	"stratplan-backend/internal/reconcile"
	"stratplan-backend/internal/visibility"
	"stratplan-backend/internal/weights"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Store is the external plan store the view depends on.
type Store interface {
	GetPlanTree(ctx context.Context, planID uuid.UUID) (*domain.Plan, error)
	GetObjective(ctx context.Context, objectiveID uuid.UUID) (*domain.StrategicObjective, error)
	GetMainActivity(ctx context.Context, activityID uuid.UUID) (*domain.MainActivity, error)
	CreateSubActivity(ctx context.Context, in plans.CreateSubActivityInput) (*domain.SubActivity, error)
	DeleteMainActivity(ctx context.Context, activityID uuid.UUID) error
}

// Service holds one reconciler per viewed plan. The reconciler is the only
// writer to a plan snapshot; everything else reads copies.
type Service struct {
	Store Store
	// RefreshDelay is how long after a committed mutation the background
	// subtree re-fetch runs. Zero disables it (tests drive Refresh directly).
	RefreshDelay time.Duration

	mu       sync.Mutex
	sessions map[uuid.UUID]*reconcile.Reconciler
}

// TreeView is the filtered tree plus the derived reports presentation needs.
type TreeView struct {
	Plan    *domain.Plan                     `json:"plan"`
	Stats   visibility.Stats                 `json:"stats"`
	Weights map[uuid.UUID]weights.Allocation `json:"weights"`
	Totals  budget.Totals                    `json:"totals"`
}

// WeightReport pairs the objective-level allocation with each initiative's
// own activity allocation.
type WeightReport struct {
	Objective   weights.Allocation               `json:"objective"`
	Initiatives map[uuid.UUID]weights.Allocation `json:"initiatives"`
}

// MutationResult reports where a mutation ended up.
type MutationResult struct {
	State       reconcile.State     `json:"state"`
	SubActivity *domain.SubActivity `json:"sub_activity,omitempty"`
}

func (s *Service) session(ctx context.Context, planID uuid.UUID) (*reconcile.Reconciler, error) {
	s.mu.Lock()
	if s.sessions == nil {
		s.sessions = make(map[uuid.UUID]*reconcile.Reconciler)
	}
	if rec, ok := s.sessions[planID]; ok {
		s.mu.Unlock()
		return rec, nil
	}
	s.mu.Unlock()

	tree, err := s.Store.GetPlanTree(ctx, planID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.sessions[planID]; ok {
		return rec, nil
	}
	rec := reconcile.New(tree)
	s.sessions[planID] = rec
	return rec, nil
}

// VisibleTree returns the organization-filtered tree with weight reports and
// budget totals. Returns visibility.ErrOrganizationUnresolved when orgID is
// empty; callers surface that as a distinct "context required" state.
func (s *Service) VisibleTree(ctx context.Context, planID uuid.UUID, orgID string) (*TreeView, error) {
	rec, err := s.session(ctx, planID)
	if err != nil {
		return nil, err
	}
	filtered, stats, err := visibility.FilterPlan(rec.Snapshot(), orgID)
	if err != nil {
		return nil, err
	}

	view := &TreeView{
		Plan:    filtered,
		Stats:   stats,
		Weights: make(map[uuid.UUID]weights.Allocation, len(filtered.Objectives)),
		Totals:  budget.ForPlan(filtered),
	}
	for i := range filtered.Objectives {
		obj := &filtered.Objectives[i]
		view.Weights[obj.ObjectiveID] = weights.ForObjective(obj, obj.Initiatives)
	}
	return view, nil
}

// ValidateWeights builds the weight report for a single objective, filtered
// to the requesting organization.
func (s *Service) ValidateWeights(ctx context.Context, objectiveID uuid.UUID, orgID string) (*WeightReport, error) {
	obj, err := s.Store.GetObjective(ctx, objectiveID)
	if err != nil {
		return nil, err
	}
	filtered, _, err := visibility.FilterObjective(obj, orgID)
	if err != nil {
		return nil, err
	}

	report := &WeightReport{
		Objective:   weights.ForObjective(filtered, filtered.Initiatives),
		Initiatives: make(map[uuid.UUID]weights.Allocation, len(filtered.Initiatives)),
	}
	for i := range filtered.Initiatives {
		init := &filtered.Initiatives[i]
		report.Initiatives[init.InitiativeID] = weights.ForInitiative(init, init.MainActivities)
	}
	return report, nil
}

// RollUp returns plan-level budget totals over the filtered tree.
func (s *Service) RollUp(ctx context.Context, planID uuid.UUID, orgID string) (budget.Totals, error) {
	rec, err := s.session(ctx, planID)
	if err != nil {
		return budget.Totals{}, err
	}
	filtered, _, err := visibility.FilterPlan(rec.Snapshot(), orgID)
	if err != nil {
		return budget.Totals{}, err
	}
	return budget.ForPlan(filtered), nil
}

// CreateSubActivity applies the optimistic patch, calls the store, then
// commits (replacing the temp row with the stored one) or rolls back.
func (s *Service) CreateSubActivity(ctx context.Context, planID uuid.UUID, in plans.CreateSubActivityInput) (*MutationResult, error) {
	rec, err := s.session(ctx, planID)
	if err != nil {
		return nil, err
	}

	tempID := uuid.New()
	optimistic := domain.SubActivity{
		SubActivityID:            tempID,
		ActivityID:               in.ActivityID,
		Name:                     in.Name,
		ActivityType:             in.ActivityType,
		Description:              in.Description,
		BudgetCalculationType:    in.BudgetCalculationType,
		EstimatedCostWithTool:    in.EstimatedCostWithTool,
		EstimatedCostWithoutTool: in.EstimatedCostWithoutTool,
		GovernmentTreasury:       in.GovernmentTreasury,
		SDGFunding:               in.SDGFunding,
		PartnersFunding:          in.PartnersFunding,
		OtherFunding:             in.OtherFunding,
	}
	mutation := rec.Begin(in.ActivityID.String(), func(p *domain.Plan) {
		withActivity(p, in.ActivityID, func(a *domain.MainActivity) {
			a.SubActivities = append(a.SubActivities, optimistic)
		})
	})

	stored, err := s.Store.CreateSubActivity(ctx, in)
	if err != nil {
		if rbErr := mutation.Rollback(); rbErr != nil {
			log.Warn().Err(rbErr).Str("activity_id", in.ActivityID.String()).Msg("rollback after rejected mutation")
		}
		return &MutationResult{State: reconcile.RolledBack}, err
	}

	commitErr := mutation.Commit(func(p *domain.Plan) {
		withActivity(p, in.ActivityID, func(a *domain.MainActivity) {
			for i := range a.SubActivities {
				if a.SubActivities[i].SubActivityID == tempID {
					a.SubActivities[i] = *stored.Clone()
					return
				}
			}
			a.SubActivities = append(a.SubActivities, *stored.Clone())
		})
	})
	if commitErr == reconcile.ErrSuperseded {
		log.Debug().Str("activity_id", in.ActivityID.String()).Msg("commit superseded by newer mutation")
	}
	s.scheduleRefresh(planID, in.ActivityID, mutation.Revision())
	return &MutationResult{State: reconcile.Committed, SubActivity: stored}, nil
}

// DeleteMainActivity removes an activity through the same optimistic path.
func (s *Service) DeleteMainActivity(ctx context.Context, planID, activityID uuid.UUID) (*MutationResult, error) {
	rec, err := s.session(ctx, planID)
	if err != nil {
		return nil, err
	}

	mutation := rec.Begin(activityID.String(), func(p *domain.Plan) {
		removeActivity(p, activityID)
	})

	if err := s.Store.DeleteMainActivity(ctx, activityID); err != nil {
		if rbErr := mutation.Rollback(); rbErr != nil {
			log.Warn().Err(rbErr).Str("activity_id", activityID.String()).Msg("rollback after rejected delete")
		}
		return &MutationResult{State: reconcile.RolledBack}, err
	}

	// Deletion needs no authoritative replacement: the optimistic patch
	// already matches the store.
	_ = mutation.Commit(nil)
	return &MutationResult{State: reconcile.Committed}, nil
}

// scheduleRefresh re-fetches the mutated subtree after a delay to pick up
// store-side computed fields. The reconciler discards it when a newer
// mutation has taken over.
func (s *Service) scheduleRefresh(planID, activityID uuid.UUID, rev uint64) {
	if s.RefreshDelay <= 0 {
		return
	}
	go func() {
		time.Sleep(s.RefreshDelay)
		if err := s.RefreshActivity(context.Background(), planID, activityID, rev); err != nil {
			log.Debug().Err(err).Str("activity_id", activityID.String()).Msg("subtree refresh skipped")
		}
	}()
}

// RefreshActivity re-fetches one main activity and applies it at the given
// revision. Exposed so tests and callers can drive the delayed re-fetch
// deterministically.
func (s *Service) RefreshActivity(ctx context.Context, planID, activityID uuid.UUID, rev uint64) error {
	s.mu.Lock()
	rec, ok := s.sessions[planID]
	s.mu.Unlock()
	if !ok {
		return plans.ErrPlanNotFound
	}
	fresh, err := s.Store.GetMainActivity(ctx, activityID)
	if err != nil {
		return err
	}
	return rec.Refresh(activityID.String(), rev, func(p *domain.Plan) {
		withActivity(p, activityID, func(a *domain.MainActivity) {
			*a = *fresh.Clone()
		})
	})
}

func withActivity(p *domain.Plan, activityID uuid.UUID, fn func(*domain.MainActivity)) {
	if p == nil {
		return
	}
	for oi := range p.Objectives {
		for ii := range p.Objectives[oi].Initiatives {
			acts := p.Objectives[oi].Initiatives[ii].MainActivities
			for ai := range acts {
				if acts[ai].ActivityID == activityID {
					fn(&acts[ai])
					return
				}
			}
		}
	}
}

func removeActivity(p *domain.Plan, activityID uuid.UUID) {
	if p == nil {
		return
	}
	for oi := range p.Objectives {
		for ii := range p.Objectives[oi].Initiatives {
			init := &p.Objectives[oi].Initiatives[ii]
			for ai := range init.MainActivities {
				if init.MainActivities[ai].ActivityID == activityID {
					init.MainActivities = append(init.MainActivities[:ai], init.MainActivities[ai+1:]...)
					return
				}
			}
		}
	}
}
