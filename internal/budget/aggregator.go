// Package budget rolls multi-source funding up from sub-activities to
// plan-level totals. All functions are total: nil or malformed nodes
// contribute zero, never an error. The caller must have applied visibility
// filtering first; nothing here re-filters.
package budget

import (
	"math"

	"stratplan-backend/internal/domain"
)

// Totals is the rollup at any aggregation level. Gap is always recomputed
// from the summed required/available, never by summing child gaps, so a
// surplus at one child cannot cancel a sibling's deficit.
type Totals struct {
	Required           float64 `json:"required"`
	GovernmentTreasury float64 `json:"government_treasury"`
	PartnersFunding    float64 `json:"partners_funding"`
	SDGFunding         float64 `json:"sdg_funding"`
	OtherFunding       float64 `json:"other_funding"`
	Available          float64 `json:"available"`
	Gap                float64 `json:"gap"`
}

func (t *Totals) add(o Totals) {
	t.Required += o.Required
	t.GovernmentTreasury += o.GovernmentTreasury
	t.PartnersFunding += o.PartnersFunding
	t.SDGFunding += o.SDGFunding
	t.OtherFunding += o.OtherFunding
}

func (t *Totals) finalize() {
	t.Available = t.GovernmentTreasury + t.PartnersFunding + t.SDGFunding + t.OtherFunding
	t.Gap = math.Max(0, t.Required-t.Available)
}

// ForSubActivity computes a leaf's totals: required cost selected by the
// calculation type, funding passed through unchanged.
func ForSubActivity(s *domain.SubActivity) Totals {
	var t Totals
	if s == nil {
		return t
	}
	t.Required = s.EstimatedCost()
	t.GovernmentTreasury = s.GovernmentTreasury
	t.PartnersFunding = s.PartnersFunding
	t.SDGFunding = s.SDGFunding
	t.OtherFunding = s.OtherFunding
	t.finalize()
	return t
}

// ForLegacyBudget resolves a pre-sub-activity budget record with the same
// selection rule.
func ForLegacyBudget(b *domain.ActivityBudget) Totals {
	var t Totals
	if b == nil {
		return t
	}
	t.Required = b.EstimatedCost()
	t.GovernmentTreasury = b.GovernmentTreasury
	t.PartnersFunding = b.PartnersFunding
	t.SDGFunding = b.SDGFunding
	t.OtherFunding = b.OtherFunding
	t.finalize()
	return t
}

// ForMainActivity sums sub-activities when present; otherwise falls back to
// the legacy budget record; otherwise everything is zero.
func ForMainActivity(a *domain.MainActivity) Totals {
	var t Totals
	if a == nil {
		return t
	}
	if len(a.SubActivities) > 0 {
		for i := range a.SubActivities {
			t.add(ForSubActivity(&a.SubActivities[i]))
		}
		t.finalize()
		return t
	}
	if a.LegacyBudget != nil {
		return ForLegacyBudget(a.LegacyBudget)
	}
	return t
}

// ForInitiative sums the already-filtered main activities of an initiative.
func ForInitiative(init *domain.Initiative) Totals {
	var t Totals
	if init == nil {
		return t
	}
	for i := range init.MainActivities {
		t.add(ForMainActivity(&init.MainActivities[i]))
	}
	t.finalize()
	return t
}

// ForObjective sums across an objective's initiatives.
func ForObjective(obj *domain.StrategicObjective) Totals {
	var t Totals
	if obj == nil {
		return t
	}
	for i := range obj.Initiatives {
		t.add(ForInitiative(&obj.Initiatives[i]))
	}
	t.finalize()
	return t
}

// ForPlan sums across a plan's objectives.
func ForPlan(p *domain.Plan) Totals {
	var t Totals
	if p == nil {
		return t
	}
	for i := range p.Objectives {
		t.add(ForObjective(&p.Objectives[i]))
	}
	t.finalize()
	return t
}
