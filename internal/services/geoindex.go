package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	redisClient "github.com/hasnaanagy/salik/pkg/redis"
)

const geoKeyPrefix = "services:geo:"

// GeoIndex keeps a per-type Redis geospatial index of service locations.
// It is a lookup accelerator; the services table stays the source of truth.
type GeoIndex struct {
	redis *redisClient.Client
}

// NewGeoIndex creates an index backed by the given Redis client
func NewGeoIndex(redis *redisClient.Client) *GeoIndex {
	return &GeoIndex{redis: redis}
}

func geoKey(serviceType string) string {
	return geoKeyPrefix + serviceType
}

// Add inserts or moves a service in the index for its type
func (g *GeoIndex) Add(ctx context.Context, serviceID uuid.UUID, serviceType string, longitude, latitude float64) error {
	return g.redis.GeoAdd(ctx, geoKey(serviceType), serviceID.String(), longitude, latitude)
}

// Remove drops a service from the index for its type
func (g *GeoIndex) Remove(ctx context.Context, serviceID uuid.UUID, serviceType string) error {
	return g.redis.GeoRemove(ctx, geoKey(serviceType), serviceID.String())
}

// Search returns service IDs of the given type within radiusMeters of the
// point, nearest first.
func (g *GeoIndex) Search(ctx context.Context, serviceType string, longitude, latitude, radiusMeters float64, limit int) ([]uuid.UUID, error) {
	members, err := g.redis.GeoSearch(ctx, geoKey(serviceType), longitude, latitude, radiusMeters, limit)
	if err != nil {
		return nil, fmt.Errorf("geo search %s: %w", serviceType, err)
	}

	ids := make([]uuid.UUID, 0, len(members))
	for _, member := range members {
		id, err := uuid.Parse(member)
		if err != nil {
			// Stale or foreign member, skip it
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
