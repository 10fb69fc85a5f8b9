// Package weights checks weight allocation against the fixed 65/35 split
// between activities and performance measures. It never mutates its inputs;
// callers gate "add new" actions on the report.
package weights

import (
	"github.com/shopspring/decimal"

	"stratplan-backend/internal/domain"
)

// ActivityShare is the fixed fraction of a parent weight that activities may
// consume; the remaining 35% is reserved for performance measures.
const ActivityShare = 0.65

// Tolerance absorbs binary floating rounding: differences at or below it are
// treated as equal.
const Tolerance = 0.01

// Allocation is the weight report for one parent node.
type Allocation struct {
	MaxAllowed float64 `json:"max_allowed"`
	Allocated  float64 `json:"allocated"`
	Remaining  float64 `json:"remaining"`
	IsValid    bool    `json:"is_valid"`
}

// ForObjective reports how much of an objective's activity share its visible
// initiatives consume. Weight is attributed at initiative granularity; the
// caller passes initiatives that already survived visibility filtering.
func ForObjective(obj *domain.StrategicObjective, initiatives []domain.Initiative) Allocation {
	if obj == nil {
		return Allocation{IsValid: true}
	}
	allocated := decimal.Zero
	for i := range initiatives {
		allocated = allocated.Add(decimal.NewFromFloat(initiatives[i].Weight))
	}
	return report(obj.CurrentWeight(), allocated)
}

// ForInitiative reports a single initiative's own main-activity weight sum
// against its 65% cap.
func ForInitiative(init *domain.Initiative, activities []domain.MainActivity) Allocation {
	if init == nil {
		return Allocation{IsValid: true}
	}
	allocated := decimal.Zero
	for i := range activities {
		allocated = allocated.Add(decimal.NewFromFloat(activities[i].Weight))
	}
	return report(init.Weight, allocated)
}

// CanAdd reports whether the allocation leaves room for another child.
func (a Allocation) CanAdd() bool {
	return a.Remaining > Tolerance
}

func report(parentWeight float64, allocated decimal.Decimal) Allocation {
	allowed := decimal.NewFromFloat(parentWeight).
		Mul(decimal.NewFromFloat(ActivityShare)).
		Round(2)
	remaining := allowed.Sub(allocated).Round(2)
	tol := decimal.NewFromFloat(Tolerance)
	maxAllowed, _ := allowed.Float64()
	allocatedF, _ := allocated.Round(2).Float64()
	remainingF, _ := remaining.Float64()
	return Allocation{
		MaxAllowed: maxAllowed,
		Allocated:  allocatedF,
		Remaining:  remainingF,
		// Validity compares the unrounded sum; rounding is display-only.
		IsValid: allocated.Sub(allowed).LessThanOrEqual(tol),
	}
}
