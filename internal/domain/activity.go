package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Sub-activity types (fixed catalog).
const (
	ActivityTraining    = "Training"
	ActivityMeeting     = "Meeting"
	ActivityWorkshop    = "Workshop"
	ActivityPrinting    = "Printing"
	ActivityProcurement = "Procurement"
	ActivitySupervision = "Supervision"
	ActivityOther       = "Other"
)

// Budget calculation types: exactly one of the two estimated-cost fields is
// authoritative, selected by this flag. The other is retained so the user can
// toggle without losing data.
const (
	CalcWithTool    = "WITH_TOOL"
	CalcWithoutTool = "WITHOUT_TOOL"
)

// MainActivity owns sub-activities. Rows from the pre-sub-activity data model
// instead carry a single legacy ActivityBudget; both are supported downstream,
// sub-activities taking precedence.
type MainActivity struct {
	ActivityID    uuid.UUID       `gorm:"column:activity_id;type:uuid;primaryKey" json:"activity_id"`
	InitiativeID  uuid.UUID       `gorm:"column:initiative_id;type:uuid;index" json:"initiative_id"`
	Name          string          `gorm:"column:name;not null" json:"name"`
	Weight        float64         `gorm:"column:weight;type:decimal(5,2);not null;default:0" json:"weight"`
	Baseline      string          `gorm:"column:baseline" json:"baseline"`
	Q1Target      float64         `gorm:"column:q1_target;default:0" json:"q1_target"`
	Q2Target      float64         `gorm:"column:q2_target;default:0" json:"q2_target"`
	Q3Target      float64         `gorm:"column:q3_target;default:0" json:"q3_target"`
	Q4Target      float64         `gorm:"column:q4_target;default:0" json:"q4_target"`
	AnnualTarget  float64         `gorm:"column:annual_target;default:0" json:"annual_target"`
	TargetType    string          `gorm:"column:target_type;default:cumulative" json:"target_type"`
	Organization  OrgRef          `gorm:"column:organization" json:"organization"`
	SubActivities []SubActivity   `gorm:"foreignKey:ActivityID" json:"sub_activities"`
	LegacyBudget  *ActivityBudget `gorm:"foreignKey:ActivityID" json:"legacy_budget"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (MainActivity) TableName() string { return "MainActivities" }

func (a *MainActivity) BeforeCreate(tx *gorm.DB) error {
	if a.ActivityID == uuid.Nil {
		a.ActivityID = uuid.New()
	}
	return nil
}

// SubActivity is a leaf carrying the costed budget and its four funding
// sources. Per-type details (training, meeting/workshop, procurement, ...)
// are free-shape JSON kept for the costing tool to re-open.
type SubActivity struct {
	SubActivityID            uuid.UUID      `gorm:"column:sub_activity_id;type:uuid;primaryKey" json:"sub_activity_id"`
	ActivityID               uuid.UUID      `gorm:"column:activity_id;type:uuid;index" json:"activity_id"`
	Name                     string         `gorm:"column:name;not null" json:"name"`
	ActivityType             string         `gorm:"column:activity_type;default:Other" json:"activity_type"`
	Description              string         `gorm:"column:description" json:"description"`
	BudgetCalculationType    string         `gorm:"column:budget_calculation_type;default:WITHOUT_TOOL" json:"budget_calculation_type"`
	EstimatedCostWithTool    float64        `gorm:"column:estimated_cost_with_tool;type:decimal(18,2);default:0" json:"estimated_cost_with_tool"`
	EstimatedCostWithoutTool float64        `gorm:"column:estimated_cost_without_tool;type:decimal(18,2);default:0" json:"estimated_cost_without_tool"`
	GovernmentTreasury       float64        `gorm:"column:government_treasury;type:decimal(18,2);default:0" json:"government_treasury"`
	SDGFunding               float64        `gorm:"column:sdg_funding;type:decimal(18,2);default:0" json:"sdg_funding"`
	PartnersFunding          float64        `gorm:"column:partners_funding;type:decimal(18,2);default:0" json:"partners_funding"`
	OtherFunding             float64        `gorm:"column:other_funding;type:decimal(18,2);default:0" json:"other_funding"`
	TrainingDetails          datatypes.JSON `gorm:"column:training_details" json:"training_details"`
	MeetingWorkshopDetails   datatypes.JSON `gorm:"column:meeting_workshop_details" json:"meeting_workshop_details"`
	ProcurementDetails       datatypes.JSON `gorm:"column:procurement_details" json:"procurement_details"`
	PrintingDetails          datatypes.JSON `gorm:"column:printing_details" json:"printing_details"`
	SupervisionDetails       datatypes.JSON `gorm:"column:supervision_details" json:"supervision_details"`
	CreatedAt                time.Time      `json:"createdAt"`
	UpdatedAt                time.Time      `json:"updatedAt"`
	DeletedAt                gorm.DeletedAt `gorm:"index" json:"-"`
}

func (SubActivity) TableName() string { return "SubActivities" }

func (s *SubActivity) BeforeCreate(tx *gorm.DB) error {
	if s.SubActivityID == uuid.Nil {
		s.SubActivityID = uuid.New()
	}
	return nil
}

// EstimatedCost returns whichever estimate the calculation type selects.
func (s *SubActivity) EstimatedCost() float64 {
	if s.BudgetCalculationType == CalcWithTool {
		return s.EstimatedCostWithTool
	}
	return s.EstimatedCostWithoutTool
}

// ActivityBudget is the legacy single-budget record attached directly to a
// main activity. Same cost/funding semantics as SubActivity.
type ActivityBudget struct {
	BudgetID                 uuid.UUID      `gorm:"column:budget_id;type:uuid;primaryKey" json:"budget_id"`
	ActivityID               uuid.UUID      `gorm:"column:activity_id;type:uuid;uniqueIndex" json:"activity_id"`
	ActivityType             string         `gorm:"column:activity_type;default:Other" json:"activity_type"`
	BudgetCalculationType    string         `gorm:"column:budget_calculation_type;default:WITHOUT_TOOL" json:"budget_calculation_type"`
	EstimatedCostWithTool    float64        `gorm:"column:estimated_cost_with_tool;type:decimal(18,2);default:0" json:"estimated_cost_with_tool"`
	EstimatedCostWithoutTool float64        `gorm:"column:estimated_cost_without_tool;type:decimal(18,2);default:0" json:"estimated_cost_without_tool"`
	GovernmentTreasury       float64        `gorm:"column:government_treasury;type:decimal(18,2);default:0" json:"government_treasury"`
	SDGFunding               float64        `gorm:"column:sdg_funding;type:decimal(18,2);default:0" json:"sdg_funding"`
	PartnersFunding          float64        `gorm:"column:partners_funding;type:decimal(18,2);default:0" json:"partners_funding"`
	OtherFunding             float64        `gorm:"column:other_funding;type:decimal(18,2);default:0" json:"other_funding"`
	CreatedAt                time.Time      `json:"createdAt"`
	UpdatedAt                time.Time      `json:"updatedAt"`
	DeletedAt                gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ActivityBudget) TableName() string { return "ActivityBudgets" }

func (b *ActivityBudget) BeforeCreate(tx *gorm.DB) error {
	if b.BudgetID == uuid.Nil {
		b.BudgetID = uuid.New()
	}
	return nil
}

// EstimatedCost applies the same with-tool/without-tool selection as SubActivity.
func (b *ActivityBudget) EstimatedCost() float64 {
	if b.BudgetCalculationType == CalcWithTool {
		return b.EstimatedCostWithTool
	}
	return b.EstimatedCostWithoutTool
}
