package costing

import (
	"github.com/google/uuid"

	"stratplan-backend/internal/domain"
)

// Catalog is the read-only reference-rate snapshot the estimator works from.
// Build an index once per snapshot; lookups during estimation are map hits.
type Catalog struct {
	Locations          []domain.Location          `json:"locations"`
	PerDiemRates       []domain.PerDiemRate       `json:"per_diem_rates"`
	AccommodationRates []domain.AccommodationRate `json:"accommodation_rates"`
	ParticipantCosts   []domain.ParticipantCost   `json:"participant_costs"`
	SessionCosts       []domain.SessionCost       `json:"session_costs"`
	LandRoutes         []domain.TransportRoute    `json:"land_routes"`
	AirRoutes          []domain.TransportRoute    `json:"air_routes"`

	perDiemByLocation     map[uuid.UUID]domain.PerDiemRate
	accommodationByKey    map[accommodationKey]domain.AccommodationRate
	participantCostByType map[string]domain.ParticipantCost
	sessionCostByType     map[string]domain.SessionCost
	routeByID             map[uuid.UUID]domain.TransportRoute
	indexed               bool
}

type accommodationKey struct {
	location uuid.UUID
	service  string
}

// Index builds the lookup maps. Safe to call more than once.
func (c *Catalog) Index() {
	c.perDiemByLocation = make(map[uuid.UUID]domain.PerDiemRate, len(c.PerDiemRates))
	for _, r := range c.PerDiemRates {
		c.perDiemByLocation[r.LocationID] = r
	}
	c.accommodationByKey = make(map[accommodationKey]domain.AccommodationRate, len(c.AccommodationRates))
	for _, r := range c.AccommodationRates {
		c.accommodationByKey[accommodationKey{r.LocationID, r.ServiceType}] = r
	}
	c.participantCostByType = make(map[string]domain.ParticipantCost, len(c.ParticipantCosts))
	for _, r := range c.ParticipantCosts {
		c.participantCostByType[r.CostType] = r
	}
	c.sessionCostByType = make(map[string]domain.SessionCost, len(c.SessionCosts))
	for _, r := range c.SessionCosts {
		c.sessionCostByType[r.CostType] = r
	}
	c.routeByID = make(map[uuid.UUID]domain.TransportRoute, len(c.LandRoutes)+len(c.AirRoutes))
	for _, r := range c.LandRoutes {
		c.routeByID[r.RouteID] = r
	}
	for _, r := range c.AirRoutes {
		c.routeByID[r.RouteID] = r
	}
	c.indexed = true
}

func (c *Catalog) ensureIndex() {
	if !c.indexed {
		c.Index()
	}
}

// PerDiem looks up the per-diem rate for a location. A miss is not an error;
// it contributes zero to the estimate.
func (c *Catalog) PerDiem(locationID uuid.UUID) (domain.PerDiemRate, bool) {
	c.ensureIndex()
	r, ok := c.perDiemByLocation[locationID]
	return r, ok
}

// Accommodation looks up the rate for a (location, service type) pair.
func (c *Catalog) Accommodation(locationID uuid.UUID, serviceType string) (domain.AccommodationRate, bool) {
	c.ensureIndex()
	r, ok := c.accommodationByKey[accommodationKey{locationID, serviceType}]
	return r, ok
}

// ParticipantCost looks up a per-participant add-on by cost type.
func (c *Catalog) ParticipantCost(costType string) (domain.ParticipantCost, bool) {
	c.ensureIndex()
	r, ok := c.participantCostByType[costType]
	return r, ok
}

// SessionCost looks up a per-session add-on by cost type.
func (c *Catalog) SessionCost(costType string) (domain.SessionCost, bool) {
	c.ensureIndex()
	r, ok := c.sessionCostByType[costType]
	return r, ok
}

// Route looks up a transport route by id across both modes.
func (c *Catalog) Route(routeID uuid.UUID) (domain.TransportRoute, bool) {
	c.ensureIndex()
	r, ok := c.routeByID[routeID]
	return r, ok
}

// AverageRoutePrice is the arithmetic mean of all catalog route prices for a
// mode, used by the simple-transport fallback. Falls back to a fixed constant
// when the catalog has no routes for the mode.
func (c *Catalog) AverageRoutePrice(mode string) float64 {
	routes := c.LandRoutes
	fallback := float64(defaultLandRoutePrice)
	if mode == domain.TransportAir {
		routes = c.AirRoutes
		fallback = defaultAirRoutePrice
	}
	if len(routes) == 0 {
		return fallback
	}
	sum := 0.0
	for _, r := range routes {
		sum += r.Price
	}
	return sum / float64(len(routes))
}
