package domain

import "time"

// Clone returns a deep copy of the plan tree. The reconciler snapshots through
// this before applying an optimistic patch, so the copy must share no slice or
// pointer state with the original.
func (p *Plan) Clone() *Plan {
	if p == nil {
		return nil
	}
	cp := *p
	cp.FromDate = cloneTime(p.FromDate)
	cp.ToDate = cloneTime(p.ToDate)
	cp.SubmittedAt = cloneTime(p.SubmittedAt)
	cp.Objectives = make([]StrategicObjective, len(p.Objectives))
	for i := range p.Objectives {
		cp.Objectives[i] = *p.Objectives[i].Clone()
	}
	return &cp
}

// Clone deep-copies an objective and its subtree.
func (o *StrategicObjective) Clone() *StrategicObjective {
	if o == nil {
		return nil
	}
	cp := *o
	cp.PlannerWeight = cloneFloat(o.PlannerWeight)
	cp.EffectiveWeight = cloneFloat(o.EffectiveWeight)
	cp.Initiatives = make([]Initiative, len(o.Initiatives))
	for i := range o.Initiatives {
		cp.Initiatives[i] = *o.Initiatives[i].Clone()
	}
	return &cp
}

// Clone deep-copies an initiative and its subtree.
func (i *Initiative) Clone() *Initiative {
	if i == nil {
		return nil
	}
	cp := *i
	cp.PerformanceMeasures = make([]PerformanceMeasure, len(i.PerformanceMeasures))
	copy(cp.PerformanceMeasures, i.PerformanceMeasures)
	cp.MainActivities = make([]MainActivity, len(i.MainActivities))
	for j := range i.MainActivities {
		cp.MainActivities[j] = *i.MainActivities[j].Clone()
	}
	return &cp
}

// Clone deep-copies a main activity, its sub-activities and legacy budget.
func (a *MainActivity) Clone() *MainActivity {
	if a == nil {
		return nil
	}
	cp := *a
	cp.SubActivities = make([]SubActivity, len(a.SubActivities))
	for i := range a.SubActivities {
		cp.SubActivities[i] = *a.SubActivities[i].Clone()
	}
	if a.LegacyBudget != nil {
		b := *a.LegacyBudget
		cp.LegacyBudget = &b
	}
	return &cp
}

// Clone deep-copies a sub-activity including its JSON detail columns.
func (s *SubActivity) Clone() *SubActivity {
	if s == nil {
		return nil
	}
	cp := *s
	cp.TrainingDetails = append([]byte(nil), s.TrainingDetails...)
	cp.MeetingWorkshopDetails = append([]byte(nil), s.MeetingWorkshopDetails...)
	cp.ProcurementDetails = append([]byte(nil), s.ProcurementDetails...)
	cp.PrintingDetails = append([]byte(nil), s.PrintingDetails...)
	cp.SupervisionDetails = append([]byte(nil), s.SupervisionDetails...)
	return &cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
