// Package costing turns a user's quantity inputs for a recurring activity
// (meeting, workshop, training) into a monetary estimate from the catalog
// reference rates. Estimate is pure and deterministic; catalog misses
// contribute zero rather than blocking.
package costing

import (
	"errors"
	"math"

	"github.com/google/uuid"

	"stratplan-backend/internal/domain"
)

// Cost modes for the primary and additional locations.
const (
	ModePerDiem       = "perdiem"
	ModeAccommodation = "accommodation"
)

// Fallback route prices for an empty catalog.
const (
	defaultLandRoutePrice = 1000
	defaultAirRoutePrice  = 5000
)

// Boundary validation errors. The pure Estimate never returns these; callers
// validate before estimating.
var (
	ErrDaysTooLow            = errors.New("days must be at least 1")
	ErrParticipantsTooLow    = errors.New("participants must be at least 1")
	ErrSessionsTooLow        = errors.New("number of sessions must be at least 1")
	ErrTransportExceeds      = errors.New("land and air transport participants exceed total participants")
	ErrNegativeAmount        = errors.New("monetary amounts must not be negative")
	ErrUnknownCostMode       = errors.New("cost mode must be perdiem or accommodation")
	ErrMissingLocation       = errors.New("a primary location is required")
	ErrAdditionalLocationQty = errors.New("additional locations need days and participants of at least 1")
)

// AdditionalLocation is an extra venue with its own day/participant counts.
type AdditionalLocation struct {
	LocationID   uuid.UUID `json:"location_id"`
	Days         int       `json:"days"`
	Participants int       `json:"participants"`
}

// RouteUsage is a chosen transport route with how many participants take it.
type RouteUsage struct {
	RouteID      uuid.UUID `json:"route_id"`
	Participants int       `json:"participants"`
}

// Request is the ephemeral costing input a user builds in the tool. Its
// output seeds a new sub-activity's with-tool estimate.
type Request struct {
	LocationID           uuid.UUID            `json:"location_id"`
	Days                 int                  `json:"days"`
	Participants         int                  `json:"participants"`
	NumberOfSessions     int                  `json:"number_of_sessions"`
	CostMode             string               `json:"cost_mode"`
	ServiceType          string               `json:"service_type"`
	AdditionalLocations  []AdditionalLocation `json:"additional_locations"`
	ParticipantCostTypes []string             `json:"participant_cost_types"`
	SessionCostTypes     []string             `json:"session_cost_types"`
	LandRoutes           []RouteUsage         `json:"land_routes"`
	AirRoutes            []RouteUsage         `json:"air_routes"`
	TransportRequired    bool                 `json:"transport_required"`
	LandParticipants     int                  `json:"land_participants"`
	AirParticipants      int                  `json:"air_participants"`
	OtherCosts           float64              `json:"other_costs"`
}

// Validate enforces the boundary rules. Estimate itself stays total so it can
// be re-invoked on every input mutation without error plumbing.
func (r Request) Validate() error {
	if r.LocationID == uuid.Nil {
		return ErrMissingLocation
	}
	if r.CostMode != ModePerDiem && r.CostMode != ModeAccommodation {
		return ErrUnknownCostMode
	}
	if r.Days < 1 {
		return ErrDaysTooLow
	}
	if r.Participants < 1 {
		return ErrParticipantsTooLow
	}
	if r.NumberOfSessions < 1 {
		return ErrSessionsTooLow
	}
	if r.LandParticipants < 0 || r.AirParticipants < 0 {
		return ErrNegativeAmount
	}
	if r.LandParticipants+r.AirParticipants > r.Participants {
		return ErrTransportExceeds
	}
	if r.OtherCosts < 0 {
		return ErrNegativeAmount
	}
	for _, al := range r.AdditionalLocations {
		if al.Days < 1 || al.Participants < 1 {
			return ErrAdditionalLocationQty
		}
	}
	for _, u := range append(append([]RouteUsage(nil), r.LandRoutes...), r.AirRoutes...) {
		if u.Participants < 0 {
			return ErrNegativeAmount
		}
	}
	return nil
}

// Estimate computes the total cost for one costed activity. Deterministic for
// identical inputs, no side effects, safe to call on every mutation of the
// request or catalog.
func Estimate(r Request, cat *Catalog) float64 {
	if cat == nil {
		cat = &Catalog{}
	}
	total := 0.0

	// Primary location, then each additional location with its own counts.
	total += locationCost(cat, r.CostMode, r.ServiceType, r.LocationID, r.Days, r.Participants)
	for _, al := range r.AdditionalLocations {
		total += locationCost(cat, r.CostMode, r.ServiceType, al.LocationID, al.Days, al.Participants)
	}

	// Per-participant add-ons multiply by the primary participant count even
	// when additional locations carry their own counts (flat per-event
	// add-on, matching the tool's observed behavior).
	for _, costType := range r.ParticipantCostTypes {
		if pc, ok := cat.ParticipantCost(costType); ok {
			total += pc.Price * float64(r.Participants)
		}
	}
	for _, costType := range r.SessionCostTypes {
		if sc, ok := cat.SessionCost(costType); ok {
			total += sc.Price * float64(r.NumberOfSessions)
		}
	}

	// Detailed routes, then the averaged fallback for modes with none.
	landDetailed := false
	for _, u := range r.LandRoutes {
		if route, ok := cat.Route(u.RouteID); ok {
			total += route.Price * float64(u.Participants)
			landDetailed = true
		}
	}
	airDetailed := false
	for _, u := range r.AirRoutes {
		if route, ok := cat.Route(u.RouteID); ok {
			total += route.Price * float64(u.Participants)
			airDetailed = true
		}
	}
	if r.TransportRequired {
		if !landDetailed && r.LandParticipants > 0 {
			total += float64(r.LandParticipants) * cat.AverageRoutePrice(domain.TransportLand)
		}
		if !airDetailed && r.AirParticipants > 0 {
			total += float64(r.AirParticipants) * cat.AverageRoutePrice(domain.TransportAir)
		}
	}

	total += math.Max(0, r.OtherCosts)
	return total
}

func locationCost(cat *Catalog, mode, serviceType string, locationID uuid.UUID, days, participants int) float64 {
	if days <= 0 || participants <= 0 {
		return 0
	}
	switch mode {
	case ModePerDiem:
		rate, ok := cat.PerDiem(locationID)
		if !ok {
			return 0
		}
		return (rate.Amount + rate.HardshipAllowance) * float64(participants) * float64(days)
	case ModeAccommodation:
		rate, ok := cat.Accommodation(locationID, serviceType)
		if !ok {
			return 0
		}
		return rate.Price * float64(participants) * float64(days)
	}
	return 0
}
