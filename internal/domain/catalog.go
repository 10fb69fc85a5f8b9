package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Accommodation service types.
const (
	ServiceLunch           = "LUNCH"
	ServiceHallRefreshment = "HALL_REFRESHMENT"
	ServiceDinner          = "DINNER"
	ServiceBed             = "BED"
	ServiceFullBoard       = "FULL_BOARD"
)

// Transport modes.
const (
	TransportLand = "land"
	TransportAir  = "air"
)

// Location is costing reference data: a place meetings and workshops happen.
type Location struct {
	LocationID     uuid.UUID      `gorm:"column:location_id;type:uuid;primaryKey" json:"location_id"`
	Name           string         `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Region         string         `gorm:"column:region" json:"region"`
	IsHardshipArea bool           `gorm:"column:is_hardship_area;default:false" json:"is_hardship_area"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Location) TableName() string { return "Locations" }

func (l *Location) BeforeCreate(tx *gorm.DB) error {
	if l.LocationID == uuid.Nil {
		l.LocationID = uuid.New()
	}
	return nil
}

// PerDiemRate is the daily rate for a location, plus its hardship allowance.
type PerDiemRate struct {
	RateID            uuid.UUID      `gorm:"column:rate_id;type:uuid;primaryKey" json:"rate_id"`
	LocationID        uuid.UUID      `gorm:"column:location_id;type:uuid;uniqueIndex" json:"location_id"`
	Amount            float64        `gorm:"column:amount;type:decimal(18,2);default:0" json:"amount"`
	HardshipAllowance float64        `gorm:"column:hardship_allowance_amount;type:decimal(18,2);default:0" json:"hardship_allowance_amount"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

func (PerDiemRate) TableName() string { return "PerDiemRates" }

func (r *PerDiemRate) BeforeCreate(tx *gorm.DB) error {
	if r.RateID == uuid.Nil {
		r.RateID = uuid.New()
	}
	return nil
}

// AccommodationRate prices one service type at one location.
type AccommodationRate struct {
	RateID      uuid.UUID      `gorm:"column:rate_id;type:uuid;primaryKey" json:"rate_id"`
	LocationID  uuid.UUID      `gorm:"column:location_id;type:uuid;index:idx_accommodation_loc_service,unique" json:"location_id"`
	ServiceType string         `gorm:"column:service_type;index:idx_accommodation_loc_service,unique" json:"service_type"`
	Price       float64        `gorm:"column:price;type:decimal(18,2);default:0" json:"price"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (AccommodationRate) TableName() string { return "AccommodationRates" }

func (r *AccommodationRate) BeforeCreate(tx *gorm.DB) error {
	if r.RateID == uuid.Nil {
		r.RateID = uuid.New()
	}
	return nil
}

// ParticipantCost is a flat per-participant add-on (stationery, flash disk, ...).
type ParticipantCost struct {
	CostID    uuid.UUID      `gorm:"column:cost_id;type:uuid;primaryKey" json:"cost_id"`
	CostType  string         `gorm:"column:cost_type;not null;uniqueIndex" json:"cost_type"`
	Price     float64        `gorm:"column:price;type:decimal(18,2);default:0" json:"price"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ParticipantCost) TableName() string { return "ParticipantCosts" }

func (c *ParticipantCost) BeforeCreate(tx *gorm.DB) error {
	if c.CostID == uuid.Nil {
		c.CostID = uuid.New()
	}
	return nil
}

// SessionCost is a flat per-session add-on.
type SessionCost struct {
	CostID    uuid.UUID      `gorm:"column:cost_id;type:uuid;primaryKey" json:"cost_id"`
	CostType  string         `gorm:"column:cost_type;not null;uniqueIndex" json:"cost_type"`
	Price     float64        `gorm:"column:price;type:decimal(18,2);default:0" json:"price"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (SessionCost) TableName() string { return "SessionCosts" }

func (c *SessionCost) BeforeCreate(tx *gorm.DB) error {
	if c.CostID == uuid.Nil {
		c.CostID = uuid.New()
	}
	return nil
}

// TransportRoute prices one origin/destination pair for one mode, per
// participant.
type TransportRoute struct {
	RouteID       uuid.UUID      `gorm:"column:route_id;type:uuid;primaryKey" json:"route_id"`
	OriginID      uuid.UUID      `gorm:"column:origin_id;type:uuid;index" json:"origin_id"`
	DestinationID uuid.UUID      `gorm:"column:destination_id;type:uuid;index" json:"destination_id"`
	Mode          string         `gorm:"column:mode;not null;index" json:"mode"`
	TripType      string         `gorm:"column:trip_type;default:SINGLE_TRIP" json:"trip_type"`
	Price         float64        `gorm:"column:price;type:decimal(18,2);default:0" json:"price"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (TransportRoute) TableName() string { return "TransportRoutes" }

func (r *TransportRoute) BeforeCreate(tx *gorm.DB) error {
	if r.RouteID == uuid.Nil {
		r.RouteID = uuid.New()
	}
	return nil
}
