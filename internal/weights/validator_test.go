package weights

import (
	"testing"

	"stratplan-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func floatPtr(f float64) *float64 { return &f }

func TestForObjective_CapAndRemaining(t *testing.T) {
	// effectiveWeight 40 => cap 26.0; allocated 27.0 overshoots by 1.0.
	obj := &domain.StrategicObjective{Weight: 40}
	alloc := ForObjective(obj, []domain.Initiative{{Weight: 15}, {Weight: 12}})

	assert.Equal(t, 26.0, alloc.MaxAllowed)
	assert.Equal(t, 27.0, alloc.Allocated)
	assert.Equal(t, -1.0, alloc.Remaining)
	assert.False(t, alloc.IsValid)
}

func TestForObjective_EffectiveWeightOverridesPlannerAndNominal(t *testing.T) {
	obj := &domain.StrategicObjective{
		Weight:          40,
		PlannerWeight:   floatPtr(60),
		EffectiveWeight: floatPtr(100),
	}
	alloc := ForObjective(obj, nil)
	assert.Equal(t, 65.0, alloc.MaxAllowed)

	obj.EffectiveWeight = nil
	alloc = ForObjective(obj, nil)
	assert.Equal(t, 39.0, alloc.MaxAllowed)
}

func TestForObjective_ToleranceAbsorbsFloatNoise(t *testing.T) {
	obj := &domain.StrategicObjective{EffectiveWeight: floatPtr(100)}

	alloc := ForObjective(obj, []domain.Initiative{{Weight: 64.995}})
	assert.True(t, alloc.IsValid)

	alloc = ForObjective(obj, []domain.Initiative{{Weight: 65.011}})
	assert.False(t, alloc.IsValid)
}

func TestForObjective_BinaryRoundingDoesNotFalseNegative(t *testing.T) {
	obj := &domain.StrategicObjective{EffectiveWeight: floatPtr(100)}
	// 64.999999 rounds to 65.00 and must pass against the 65 cap.
	alloc := ForObjective(obj, []domain.Initiative{{Weight: 64.999999}})
	assert.True(t, alloc.IsValid)
	assert.Equal(t, 0.0, alloc.Remaining)
}

func TestForInitiative_ActivityWeightsAgainstOwnShare(t *testing.T) {
	init := &domain.Initiative{Weight: 20}
	alloc := ForInitiative(init, []domain.MainActivity{{Weight: 10}, {Weight: 3}})
	assert.Equal(t, 13.0, alloc.MaxAllowed)
	assert.Equal(t, 13.0, alloc.Allocated)
	assert.True(t, alloc.IsValid)
	assert.False(t, alloc.CanAdd())
}

func TestForObjective_NilObjectiveIsValid(t *testing.T) {
	alloc := ForObjective(nil, nil)
	assert.True(t, alloc.IsValid)
}

func TestCanAdd_GatesOnRemaining(t *testing.T) {
	obj := &domain.StrategicObjective{EffectiveWeight: floatPtr(100)}
	assert.True(t, ForObjective(obj, []domain.Initiative{{Weight: 60}}).CanAdd())
	assert.False(t, ForObjective(obj, []domain.Initiative{{Weight: 64.99}}).CanAdd())
}
