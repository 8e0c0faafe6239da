package domain

import "time"

// ParkingSpot is a single bookable spot, public or private.
type ParkingSpot struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Latitude     string    `json:"latitude"`
	Longitude    string    `json:"longitude"`
	SpotType     string    `json:"spot_type"`
	PricePerHour string    `json:"price_per_hour,omitempty"`
	IsAvailable  bool      `json:"is_available"`
	ProviderID   int64     `json:"provider"`
	FacilityID   int64     `json:"facility,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Facility groups spots under a provider-managed location.
type Facility struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	IsActive bool   `json:"is_active"`
}

// Booking ties a user to a spot for a time window.
type Booking struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user"`
	SpotID      int64      `json:"parking_spot"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	TotalPrice  string     `json:"total_price,omitempty"`
	IsActive    bool       `json:"is_active"`
	SpotName    string     `json:"spot_name,omitempty"`
	UserEmail   string     `json:"user_email,omitempty"`
	FacilityRef string     `json:"facility_name,omitempty"`
}

// SpotReview is a 1-5 star rating with an optional comment.
type SpotReview struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user"`
	SpotID    int64     `json:"parking_spot"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NearbySpot is a spot plus its distance from the queried position.
type NearbySpot struct {
	ParkingSpot
	DistanceKM float64 `json:"distance_km"`
}

// AvailabilityLog records an availability flip for a spot.
type AvailabilityLog struct {
	ID          int64     `json:"id"`
	SpotID      int64     `json:"parking_spot"`
	Timestamp   time.Time `json:"timestamp"`
	IsAvailable bool      `json:"is_available"`
}

// PricingLog records a dynamic-pricing adjustment for a spot.
type PricingLog struct {
	ID       int64     `json:"id"`
	SpotID   int64     `json:"parking_spot"`
	OldPrice string    `json:"old_price"`
	NewPrice string    `json:"new_price"`
	Reason   string    `json:"reason,omitempty"`
	LoggedAt time.Time `json:"logged_at"`
}
