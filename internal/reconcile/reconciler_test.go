package reconcile

import (
	"testing"

	"stratplan-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPlan() *domain.Plan {
	initID := uuid.New()
	return &domain.Plan{
		PlanID: uuid.New(),
		Objectives: []domain.StrategicObjective{
			{
				ObjectiveID: uuid.New(),
				Title:       "Expand outreach",
				Initiatives: []domain.Initiative{
					{
						InitiativeID: initID,
						Name:         "Community sessions",
						MainActivities: []domain.MainActivity{
							{ActivityID: uuid.New(), InitiativeID: initID, Name: "Quarterly review"},
							{ActivityID: uuid.New(), InitiativeID: initID, Name: "Field visits"},
						},
					},
				},
			},
		},
	}
}

func activityID(p *domain.Plan, idx int) uuid.UUID {
	return p.Objectives[0].Initiatives[0].MainActivities[idx].ActivityID
}

func appendSubActivity(activityIdx int, sub domain.SubActivity) Patch {
	return func(p *domain.Plan) {
		if p == nil || len(p.Objectives) == 0 {
			return
		}
		acts := p.Objectives[0].Initiatives[0].MainActivities
		acts[activityIdx].SubActivities = append(acts[activityIdx].SubActivities, sub)
	}
}

func TestBegin_AppliesOptimisticPatch(t *testing.T) {
	r := New(seedPlan())
	temp := domain.SubActivity{SubActivityID: uuid.New(), Name: "optimistic"}

	m := r.Begin("activity-1", appendSubActivity(0, temp))
	assert.Equal(t, Pending, m.State())

	snap := r.Snapshot()
	require.Len(t, snap.Objectives[0].Initiatives[0].MainActivities[0].SubActivities, 1)
	assert.Equal(t, "optimistic", snap.Objectives[0].Initiatives[0].MainActivities[0].SubActivities[0].Name)
}

func TestCommit_ReplacesOnlyTargetSubtree(t *testing.T) {
	r := New(seedPlan())
	before := r.Snapshot()
	temp := domain.SubActivity{SubActivityID: uuid.New(), Name: "temp"}

	m := r.Begin("activity-1", appendSubActivity(0, temp))
	stored := domain.SubActivity{SubActivityID: uuid.New(), Name: "authoritative"}
	require.NoError(t, m.Commit(func(p *domain.Plan) {
		acts := p.Objectives[0].Initiatives[0].MainActivities
		acts[0].SubActivities = []domain.SubActivity{stored}
	}))
	assert.Equal(t, Committed, m.State())

	snap := r.Snapshot()
	subs := snap.Objectives[0].Initiatives[0].MainActivities[0].SubActivities
	require.Len(t, subs, 1)
	assert.Equal(t, "authoritative", subs[0].Name)
	// Unrelated branches untouched.
	assert.Equal(t, before.Objectives[0].Title, snap.Objectives[0].Title)
	assert.Equal(t, before.Objectives[0].Initiatives[0].Name, snap.Objectives[0].Initiatives[0].Name)
}

func TestRollback_RestoresExactPreMutationSnapshot(t *testing.T) {
	plan := seedPlan()
	r := New(plan)
	before := r.Snapshot()

	m := r.Begin(activityID(plan, 0).String(), appendSubActivity(0, domain.SubActivity{SubActivityID: uuid.New(), Name: "doomed"}))
	require.NoError(t, m.Rollback())
	assert.Equal(t, RolledBack, m.State())
	assert.Equal(t, before, r.Snapshot())
}

func TestRollback_PreservesOtherPendingSubtrees(t *testing.T) {
	plan := seedPlan()
	r := New(plan)

	a := r.Begin(activityID(plan, 0).String(), appendSubActivity(0, domain.SubActivity{SubActivityID: uuid.New(), Name: "doomed"}))
	b := r.Begin(activityID(plan, 1).String(), appendSubActivity(1, domain.SubActivity{SubActivityID: uuid.New(), Name: "optimistic"}))

	require.NoError(t, a.Rollback())

	acts := r.Snapshot().Objectives[0].Initiatives[0].MainActivities
	assert.Empty(t, acts[0].SubActivities)
	require.Len(t, acts[1].SubActivities, 1)
	assert.Equal(t, "optimistic", acts[1].SubActivities[0].Name)
	assert.Equal(t, Pending, b.State())
}

func TestRollback_ReinsertsOptimisticallyRemovedActivity(t *testing.T) {
	plan := seedPlan()
	r := New(plan)
	removed := activityID(plan, 0)

	m := r.Begin(removed.String(), func(p *domain.Plan) {
		init := &p.Objectives[0].Initiatives[0]
		init.MainActivities = init.MainActivities[1:]
	})
	require.Len(t, r.Snapshot().Objectives[0].Initiatives[0].MainActivities, 1)

	require.NoError(t, m.Rollback())

	acts := r.Snapshot().Objectives[0].Initiatives[0].MainActivities
	require.Len(t, acts, 2)
	found := false
	for _, a := range acts {
		if a.ActivityID == removed {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCommit_StaleRevisionDiscarded(t *testing.T) {
	r := New(seedPlan())
	first := r.Begin("activity-1", appendSubActivity(0, domain.SubActivity{SubActivityID: uuid.New(), Name: "first"}))
	// A newer mutation on the same subtree supersedes the first.
	second := r.Begin("activity-1", appendSubActivity(0, domain.SubActivity{SubActivityID: uuid.New(), Name: "second"}))

	err := first.Commit(func(p *domain.Plan) {
		p.Objectives[0].Initiatives[0].MainActivities[0].SubActivities = nil
	})
	assert.ErrorIs(t, err, ErrSuperseded)

	// Both optimistic entries still present: the stale replacement never ran.
	subs := r.Snapshot().Objectives[0].Initiatives[0].MainActivities[0].SubActivities
	assert.Len(t, subs, 2)

	require.NoError(t, second.Commit(nil))
}

func TestRollback_SkippedWhenSuperseded(t *testing.T) {
	r := New(seedPlan())
	first := r.Begin("activity-1", appendSubActivity(0, domain.SubActivity{SubActivityID: uuid.New(), Name: "first"}))
	second := r.Begin("activity-1", appendSubActivity(0, domain.SubActivity{SubActivityID: uuid.New(), Name: "second"}))

	require.NoError(t, first.Rollback())
	// The second mutation's optimistic state survives.
	subs := r.Snapshot().Objectives[0].Initiatives[0].MainActivities[0].SubActivities
	assert.Len(t, subs, 2)
	assert.Equal(t, Pending, second.State())
}

func TestCommitTwice_NotPending(t *testing.T) {
	r := New(seedPlan())
	m := r.Begin("activity-1", nil)
	require.NoError(t, m.Commit(nil))
	assert.ErrorIs(t, m.Commit(nil), ErrNotPending)
	assert.ErrorIs(t, m.Rollback(), ErrNotPending)
}

func TestRefresh_AppliedOnlyAtCurrentRevision(t *testing.T) {
	r := New(seedPlan())
	m := r.Begin("activity-1", nil)
	require.NoError(t, m.Commit(nil))
	rev := m.Revision()

	// Delayed re-fetch at the current revision is applied.
	require.NoError(t, r.Refresh("activity-1", rev, func(p *domain.Plan) {
		p.Objectives[0].Initiatives[0].MainActivities[0].Name = "refreshed"
	}))
	assert.Equal(t, "refreshed", r.Snapshot().Objectives[0].Initiatives[0].MainActivities[0].Name)

	// A newer mutation starts; the old refresh token is now stale.
	r.Begin("activity-1", nil)
	err := r.Refresh("activity-1", rev, func(p *domain.Plan) {
		p.Objectives[0].Initiatives[0].MainActivities[0].Name = "stale"
	})
	assert.ErrorIs(t, err, ErrSuperseded)
	assert.Equal(t, "refreshed", r.Snapshot().Objectives[0].Initiatives[0].MainActivities[0].Name)
}

func TestRevisionTokensArePerSubtree(t *testing.T) {
	r := New(seedPlan())
	a := r.Begin("activity-a", nil)
	b := r.Begin("activity-b", nil)
	assert.Equal(t, uint64(1), a.Revision())
	assert.Equal(t, uint64(1), b.Revision())
	require.NoError(t, a.Commit(nil))
	require.NoError(t, b.Commit(nil))
}
