package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Plan statuses.
const (
	PlanDraft     = "draft"
	PlanSubmitted = "submitted"
	PlanApproved  = "approved"
	PlanRejected  = "rejected"
)

// Target types for measures and activities.
const (
	TargetCumulative    = "cumulative"
	TargetNonCumulative = "non-cumulative"
)

// Plan is the root aggregate: a fiscal-year strategic plan with a nominal
// weight of 100 distributed among its objectives.
type Plan struct {
	PlanID      uuid.UUID            `gorm:"column:plan_id;type:uuid;primaryKey" json:"plan_id"`
	PlannerName string               `gorm:"column:planner_name" json:"planner_name"`
	FiscalYear  string               `gorm:"column:fiscal_year" json:"fiscal_year"`
	FromDate    *time.Time           `gorm:"column:from_date" json:"from_date"`
	ToDate      *time.Time           `gorm:"column:to_date" json:"to_date"`
	Status      string               `gorm:"column:status;default:draft" json:"status"`
	SubmittedAt *time.Time           `gorm:"column:submitted_at" json:"submitted_at"`
	Objectives  []StrategicObjective `gorm:"foreignKey:PlanID" json:"objectives"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt       `gorm:"index" json:"-"`
}

func (Plan) TableName() string { return "Plans" }

func (p *Plan) BeforeCreate(tx *gorm.DB) error {
	if p.PlanID == uuid.Nil {
		p.PlanID = uuid.New()
	}
	return nil
}

// StrategicObjective carries a nominal weight share of the plan plus optional
// planner/effective overrides.
type StrategicObjective struct {
	ObjectiveID     uuid.UUID      `gorm:"column:objective_id;type:uuid;primaryKey" json:"objective_id"`
	PlanID          uuid.UUID      `gorm:"column:plan_id;type:uuid;index" json:"plan_id"`
	Title           string         `gorm:"column:title;not null" json:"title"`
	Description     string         `gorm:"column:description" json:"description"`
	Weight          float64        `gorm:"column:weight;type:decimal(5,2);not null;default:0" json:"weight"`
	PlannerWeight   *float64       `gorm:"column:planner_weight;type:decimal(5,2)" json:"planner_weight"`
	EffectiveWeight *float64       `gorm:"column:effective_weight;type:decimal(5,2)" json:"effective_weight"`
	Initiatives     []Initiative   `gorm:"foreignKey:ObjectiveID" json:"initiatives"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (StrategicObjective) TableName() string { return "StrategicObjectives" }

func (o *StrategicObjective) BeforeCreate(tx *gorm.DB) error {
	if o.ObjectiveID == uuid.Nil {
		o.ObjectiveID = uuid.New()
	}
	return nil
}

// CurrentWeight resolves the weight the engine should use: the first defined
// of effective_weight, planner_weight, weight.
func (o *StrategicObjective) CurrentWeight() float64 {
	if o.EffectiveWeight != nil {
		return *o.EffectiveWeight
	}
	if o.PlannerWeight != nil {
		return *o.PlannerWeight
	}
	return o.Weight
}

// Initiative is an objective's child. It owns performance measures and main
// activities and carries the organization scope used for visibility.
type Initiative struct {
	InitiativeID        uuid.UUID            `gorm:"column:initiative_id;type:uuid;primaryKey" json:"initiative_id"`
	ObjectiveID         uuid.UUID            `gorm:"column:objective_id;type:uuid;index" json:"objective_id"`
	Name                string               `gorm:"column:name;not null" json:"name"`
	Weight              float64              `gorm:"column:weight;type:decimal(5,2);not null;default:0" json:"weight"`
	Organization        OrgRef               `gorm:"column:organization" json:"organization"`
	IsDefault           bool                 `gorm:"column:is_default;default:false" json:"is_default"`
	PerformanceMeasures []PerformanceMeasure `gorm:"foreignKey:InitiativeID" json:"performance_measures"`
	MainActivities      []MainActivity       `gorm:"foreignKey:InitiativeID" json:"main_activities"`
	CreatedAt           time.Time            `json:"createdAt"`
	UpdatedAt           time.Time            `json:"updatedAt"`
	DeletedAt           gorm.DeletedAt       `gorm:"index" json:"-"`
}

func (Initiative) TableName() string { return "StrategicInitiatives" }

func (i *Initiative) BeforeCreate(tx *gorm.DB) error {
	if i.InitiativeID == uuid.Nil {
		i.InitiativeID = uuid.New()
	}
	return nil
}

// PerformanceMeasure is a leaf with baseline and quarterly/annual targets.
type PerformanceMeasure struct {
	MeasureID    uuid.UUID      `gorm:"column:measure_id;type:uuid;primaryKey" json:"measure_id"`
	InitiativeID uuid.UUID      `gorm:"column:initiative_id;type:uuid;index" json:"initiative_id"`
	Name         string         `gorm:"column:name;not null" json:"name"`
	Weight       float64        `gorm:"column:weight;type:decimal(5,2);not null;default:0" json:"weight"`
	Baseline     string         `gorm:"column:baseline" json:"baseline"`
	Q1Target     float64        `gorm:"column:q1_target;default:0" json:"q1_target"`
	Q2Target     float64        `gorm:"column:q2_target;default:0" json:"q2_target"`
	Q3Target     float64        `gorm:"column:q3_target;default:0" json:"q3_target"`
	Q4Target     float64        `gorm:"column:q4_target;default:0" json:"q4_target"`
	AnnualTarget float64        `gorm:"column:annual_target;default:0" json:"annual_target"`
	TargetType   string         `gorm:"column:target_type;default:cumulative" json:"target_type"`
	Organization OrgRef         `gorm:"column:organization" json:"organization"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (PerformanceMeasure) TableName() string { return "PerformanceMeasures" }

func (m *PerformanceMeasure) BeforeCreate(tx *gorm.DB) error {
	if m.MeasureID == uuid.Nil {
		m.MeasureID = uuid.New()
	}
	return nil
}
