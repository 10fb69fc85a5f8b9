// Package catalog serves the costing reference rates, fronted by a Redis
// JSON cache so plan views do not hammer the store for data that changes
// rarely.
package catalog

import (
	"context"
	"encoding/json"
	"time"

	"stratplan-backend/internal/costing"
	"stratplan-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const cacheKey = "costing:catalog"

// Service loads and caches the costing catalog.
type Service struct {
	DB       *gorm.DB
	Rdb      *redis.Client
	CacheTTL time.Duration
}

// Fetch returns the catalog, from Redis when fresh, otherwise from the store
// (repopulating the cache). Cache failures degrade to a store read.
func (s *Service) Fetch(ctx context.Context) (*costing.Catalog, error) {
	if s.Rdb != nil {
		raw, err := s.Rdb.Get(ctx, cacheKey).Result()
		if err == nil {
			var cat costing.Catalog
			jsonErr := json.Unmarshal([]byte(raw), &cat)
			if jsonErr == nil {
				cat.Index()
				return &cat, nil
			}
			log.Warn().Err(jsonErr).Msg("catalog cache entry unreadable, falling back to store")
		}
	}

	cat, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	if s.Rdb != nil {
		if raw, err := json.Marshal(cat); err == nil {
			ttl := s.CacheTTL
			if ttl <= 0 {
				ttl = 10 * time.Minute
			}
			if err := s.Rdb.Set(ctx, cacheKey, raw, ttl).Err(); err != nil {
				log.Warn().Err(err).Msg("failed to cache costing catalog")
			}
		}
	}
	return cat, nil
}

// Invalidate drops the cached catalog after reference-data writes.
func (s *Service) Invalidate(ctx context.Context) {
	if s.Rdb == nil {
		return
	}
	if err := s.Rdb.Del(ctx, cacheKey).Err(); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate costing catalog cache")
	}
}

func (s *Service) load(ctx context.Context) (*costing.Catalog, error) {
	var cat costing.Catalog
	db := s.DB.WithContext(ctx)
	if err := db.Order("name ASC").Find(&cat.Locations).Error; err != nil {
		return nil, err
	}
	if err := db.Find(&cat.PerDiemRates).Error; err != nil {
		return nil, err
	}
	if err := db.Find(&cat.AccommodationRates).Error; err != nil {
		return nil, err
	}
	if err := db.Find(&cat.ParticipantCosts).Error; err != nil {
		return nil, err
	}
	if err := db.Find(&cat.SessionCosts).Error; err != nil {
		return nil, err
	}
	if err := db.Where("mode = ?", domain.TransportLand).Find(&cat.LandRoutes).Error; err != nil {
		return nil, err
	}
	if err := db.Where("mode = ?", domain.TransportAir).Find(&cat.AirRoutes).Error; err != nil {
		return nil, err
	}
	cat.Index()
	return &cat, nil
}

// ImportData is a batch of reference rows to upsert, already normalized to
// typed slices at the handler boundary.
type ImportData struct {
	Locations          []domain.Location
	PerDiemRates       []domain.PerDiemRate
	AccommodationRates []domain.AccommodationRate
	ParticipantCosts   []domain.ParticipantCost
	SessionCosts       []domain.SessionCost
	TransportRoutes    []domain.TransportRoute
}

// Import upserts reference rows (rows with ids update, rows without ids are
// created) and invalidates the cache.
func (s *Service) Import(ctx context.Context, in ImportData) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range in.Locations {
			if err := upsert(tx, in.Locations[i].LocationID, &in.Locations[i]); err != nil {
				return err
			}
		}
		for i := range in.PerDiemRates {
			if err := upsert(tx, in.PerDiemRates[i].RateID, &in.PerDiemRates[i]); err != nil {
				return err
			}
		}
		for i := range in.AccommodationRates {
			if err := upsert(tx, in.AccommodationRates[i].RateID, &in.AccommodationRates[i]); err != nil {
				return err
			}
		}
		for i := range in.ParticipantCosts {
			if err := upsert(tx, in.ParticipantCosts[i].CostID, &in.ParticipantCosts[i]); err != nil {
				return err
			}
		}
		for i := range in.SessionCosts {
			if err := upsert(tx, in.SessionCosts[i].CostID, &in.SessionCosts[i]); err != nil {
				return err
			}
		}
		for i := range in.TransportRoutes {
			if err := upsert(tx, in.TransportRoutes[i].RouteID, &in.TransportRoutes[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.Invalidate(ctx)
	return nil
}

func upsert(tx *gorm.DB, id uuid.UUID, row interface{}) error {
	if id == uuid.Nil {
		return tx.Create(row).Error
	}
	return tx.Save(row).Error
}
