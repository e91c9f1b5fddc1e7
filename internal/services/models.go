package services

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Service types offered by providers
const (
	TypeFuel     = "fuel"
	TypeMechanic = "mechanic"
)

// ValidType reports whether t is a known service type
func ValidType(t string) bool {
	return t == TypeFuel || t == TypeMechanic
}

// Location is a GeoJSON-style point
type Location struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"` // [longitude, latitude]
}

// NewLocation builds a GeoJSON point from longitude and latitude
func NewLocation(longitude, latitude float64) *Location {
	return &Location{Type: "Point", Coordinates: [2]float64{longitude, latitude}}
}

// Longitude returns the point's longitude
func (l *Location) Longitude() float64 { return l.Coordinates[0] }

// Latitude returns the point's latitude
func (l *Location) Latitude() float64 { return l.Coordinates[1] }

// Service is a provider's standing offer to perform fuel or mechanic work.
// A provider owns at most one Service per type.
type Service struct {
	ID          uuid.UUID `json:"id"`
	ProviderID  uuid.UUID `json:"provider_id"`
	ServiceType string    `json:"service_type"`
	Location    *Location `json:"location,omitempty"`
	Address     *string   `json:"address,omitempty"`
	WorkingDays []string  `json:"working_days,omitempty"`
	WorkingFrom *string   `json:"working_from,omitempty"`
	WorkingTo   *string   `json:"working_to,omitempty"`
	RatingSum   float64   `json:"-"`
	RatingCount int       `json:"total_reviews"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AverageRating derives the mean rating rounded to one decimal place
func (s *Service) AverageRating() float64 {
	if s.RatingCount == 0 {
		return 0
	}
	return math.Round(s.RatingSum/float64(s.RatingCount)*10) / 10
}

// serviceResponse is the wire shape, with the derived average included
type serviceResponse struct {
	*Service
	AverageRating float64 `json:"average_rating"`
}

// ToResponse wraps a service with its derived average rating
func ToResponse(s *Service) interface{} {
	if s == nil {
		return nil
	}
	return serviceResponse{Service: s, AverageRating: s.AverageRating()}
}

// ToResponseList wraps a slice of services for the wire
func ToResponseList(list []*Service) []interface{} {
	out := make([]interface{}, 0, len(list))
	for _, s := range list {
		out = append(out, ToResponse(s))
	}
	return out
}

// CreateServiceRequest is the payload for publishing an offering
type CreateServiceRequest struct {
	ServiceType string   `json:"service_type" binding:"required,oneof=fuel mechanic"`
	Longitude   *float64 `json:"longitude" binding:"omitempty,longitude"`
	Latitude    *float64 `json:"latitude" binding:"omitempty,latitude"`
	Address     *string  `json:"address" binding:"omitempty,max=300"`
	WorkingDays []string `json:"working_days" binding:"omitempty,dive,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	WorkingFrom *string  `json:"working_from" binding:"omitempty,max=20"`
	WorkingTo   *string  `json:"working_to" binding:"omitempty,max=20"`
}

// UpdateServiceRequest is the payload for editing an offering
type UpdateServiceRequest struct {
	Longitude   *float64 `json:"longitude" binding:"omitempty,longitude"`
	Latitude    *float64 `json:"latitude" binding:"omitempty,latitude"`
	Address     *string  `json:"address" binding:"omitempty,max=300"`
	WorkingDays []string `json:"working_days" binding:"omitempty,dive,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	WorkingFrom *string  `json:"working_from" binding:"omitempty,max=20"`
	WorkingTo   *string  `json:"working_to" binding:"omitempty,max=20"`
}

// NearbyService is a matching candidate with its owning provider resolved
type NearbyService struct {
	ServiceID  uuid.UUID `json:"service_id"`
	ProviderID uuid.UUID `json:"provider_id"`
}
