package domain

import "time"

// Service represents a bookable service: name, fixed duration and base price.
// Configuration data owned by the admin layer; read-only for the booking engine.
type Service struct {
	ID              int64
	Name            string
	DurationMinutes int
	Price           float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ProviderAdjustment is a provider-specific delta applied to a service's
// effective duration and price (e.g. a senior barber takes longer and costs more)
type ProviderAdjustment struct {
	ProviderID           int64
	ServiceID            int64
	DurationDeltaMinutes int
	PriceDelta           float64
}

// EffectiveDurationMinutes returns the service duration with the provider
// adjustment applied. A nil adjustment means the base duration.
func (s *Service) EffectiveDurationMinutes(adj *ProviderAdjustment) int {
	if adj == nil {
		return s.DurationMinutes
	}
	d := s.DurationMinutes + adj.DurationDeltaMinutes
	if d < MinServiceDurationMinutes {
		return MinServiceDurationMinutes
	}
	return d
}

// EffectivePrice returns the service price with the provider adjustment applied
func (s *Service) EffectivePrice(adj *ProviderAdjustment) float64 {
	if adj == nil {
		return s.Price
	}
	p := s.Price + adj.PriceDelta
	if p < 0 {
		return 0
	}
	return p
}
