// Package visibility decides which nodes of a shared plan tree a requesting
// organization may see. Filtering is total: malformed nodes are dropped and
// counted, never raised.
package visibility

import (
	"errors"

	"stratplan-backend/internal/domain"

	"github.com/google/uuid"
)

// ErrOrganizationUnresolved is returned when the caller has not resolved an
// organization id yet. Callers must surface this as a "context required"
// state instead of rendering an empty tree.
var ErrOrganizationUnresolved = errors.New("organization context required")

// Stats counts what the filter did, including malformed nodes it dropped.
type Stats struct {
	VisibleInitiatives int `json:"visible_initiatives"`
	VisibleMeasures    int `json:"visible_measures"`
	VisibleActivities  int `json:"visible_activities"`
	HiddenNodes        int `json:"hidden_nodes"`
	DroppedMalformed   int `json:"dropped_malformed"`
}

// InitiativeVisible applies the per-node rule for initiatives: default
// initiatives are visible to everyone, organization-agnostic rows are visible
// to everyone, otherwise the organization must match.
func InitiativeVisible(i *domain.Initiative, orgID string) bool {
	if i == nil {
		return false
	}
	return i.IsDefault || scopedVisible(i.Organization, orgID)
}

// MeasureVisible applies the rule for performance measures (no default flag).
func MeasureVisible(m *domain.PerformanceMeasure, orgID string) bool {
	if m == nil {
		return false
	}
	return scopedVisible(m.Organization, orgID)
}

// ActivityVisible applies the rule for main activities (no default flag).
// Sub-activities inherit their parent's visibility and are never filtered.
func ActivityVisible(a *domain.MainActivity, orgID string) bool {
	if a == nil {
		return false
	}
	return scopedVisible(a.Organization, orgID)
}

func scopedVisible(ref domain.OrgRef, orgID string) bool {
	return ref.IsUnscoped() || ref.Matches(orgID)
}

// FilterPlan prunes a plan tree to the nodes orgID may see and returns the
// pruned copy. The input is never mutated. The filter runs as three explicit
// stages (initiatives, then measures/activities of surviving initiatives,
// sub-activities untouched) because legacy data lets a measure or activity
// belong to a different organization than its parent initiative.
func FilterPlan(p *domain.Plan, orgID string) (*domain.Plan, Stats, error) {
	var stats Stats
	if orgID == "" {
		return nil, stats, ErrOrganizationUnresolved
	}
	if p == nil {
		return nil, stats, nil
	}

	out := p.Clone()
	for oi := range out.Objectives {
		obj := &out.Objectives[oi]
		obj.Initiatives = filterInitiatives(obj.Initiatives, orgID, &stats)
	}
	return out, stats, nil
}

// FilterObjective prunes a single objective's subtree. Same contract as
// FilterPlan.
func FilterObjective(obj *domain.StrategicObjective, orgID string) (*domain.StrategicObjective, Stats, error) {
	var stats Stats
	if orgID == "" {
		return nil, stats, ErrOrganizationUnresolved
	}
	if obj == nil {
		return nil, stats, nil
	}
	out := obj.Clone()
	out.Initiatives = filterInitiatives(out.Initiatives, orgID, &stats)
	return out, stats, nil
}

func filterInitiatives(initiatives []domain.Initiative, orgID string, stats *Stats) []domain.Initiative {
	kept := make([]domain.Initiative, 0, len(initiatives))
	for i := range initiatives {
		init := &initiatives[i]
		if init.InitiativeID == uuid.Nil {
			stats.DroppedMalformed++
			continue
		}
		if !InitiativeVisible(init, orgID) {
			stats.HiddenNodes++
			continue
		}
		init.PerformanceMeasures = filterMeasures(init.PerformanceMeasures, orgID, stats)
		init.MainActivities = filterActivities(init.MainActivities, orgID, stats)
		stats.VisibleInitiatives++
		kept = append(kept, *init)
	}
	return kept
}

func filterMeasures(measures []domain.PerformanceMeasure, orgID string, stats *Stats) []domain.PerformanceMeasure {
	kept := make([]domain.PerformanceMeasure, 0, len(measures))
	for i := range measures {
		m := &measures[i]
		if m.MeasureID == uuid.Nil {
			stats.DroppedMalformed++
			continue
		}
		if !MeasureVisible(m, orgID) {
			stats.HiddenNodes++
			continue
		}
		stats.VisibleMeasures++
		kept = append(kept, *m)
	}
	return kept
}

func filterActivities(activities []domain.MainActivity, orgID string, stats *Stats) []domain.MainActivity {
	kept := make([]domain.MainActivity, 0, len(activities))
	for i := range activities {
		a := &activities[i]
		if a.ActivityID == uuid.Nil {
			stats.DroppedMalformed++
			continue
		}
		if !ActivityVisible(a, orgID) {
			stats.HiddenNodes++
			continue
		}
		stats.VisibleActivities++
		kept = append(kept, *a)
	}
	return kept
}
