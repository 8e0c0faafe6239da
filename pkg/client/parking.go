package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/advancepark/parkterm/pkg/domain"
)

// Bookings lists the caller's bookings. activeOnly narrows to bookings
// still in progress.
func (c *Client) Bookings(ctx context.Context, activeOnly bool) ([]domain.Booking, error) {
	path := "/parking/bookings/"
	if activeOnly {
		path += "?is_active=true"
	}
	var bookings []domain.Booking
	if err := c.get(ctx, path, &bookings); err != nil {
		return nil, fmt.Errorf("client.Bookings: %w", err)
	}
	return bookings, nil
}

// CreateBooking books a spot starting now.
func (c *Client) CreateBooking(ctx context.Context, spotID int64) (*domain.Booking, error) {
	var booking domain.Booking
	body := map[string]int64{"parking_spot": spotID}
	if err := c.post(ctx, "/parking/bookings/", body, &booking); err != nil {
		return nil, fmt.Errorf("client.CreateBooking: %w", err)
	}
	return &booking, nil
}

// EndBooking closes an active booking and settles its price.
func (c *Client) EndBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	var booking domain.Booking
	if err := c.post(ctx, "/parking/bookings/"+strconv.FormatInt(id, 10)+"/end_booking/", nil, &booking); err != nil {
		return nil, fmt.Errorf("client.EndBooking: %w", err)
	}
	return &booking, nil
}

// Facilities lists parking facilities.
func (c *Client) Facilities(ctx context.Context) ([]domain.Facility, error) {
	var facilities []domain.Facility
	if err := c.get(ctx, "/parking/facilities/", &facilities); err != nil {
		return nil, fmt.Errorf("client.Facilities: %w", err)
	}
	return facilities, nil
}

// ArchiveFacilities archives facilities by id, provider/admin only.
func (c *Client) ArchiveFacilities(ctx context.Context, ids []int64) error {
	body := map[string][]int64{"ids": ids}
	if err := c.post(ctx, "/parking/facilities/archive/", body, nil); err != nil {
		return fmt.Errorf("client.ArchiveFacilities: %w", err)
	}
	return nil
}

// RestoreFacilities restores previously archived facilities.
func (c *Client) RestoreFacilities(ctx context.Context, ids []int64) error {
	body := map[string][]int64{"ids": ids}
	if err := c.post(ctx, "/parking/facilities/restore/", body, nil); err != nil {
		return fmt.Errorf("client.RestoreFacilities: %w", err)
	}
	return nil
}

// Spots lists parking spots, optionally only available ones.
func (c *Client) Spots(ctx context.Context, availableOnly bool) ([]domain.ParkingSpot, error) {
	path := "/parking/spots/"
	if availableOnly {
		path += "?is_available=true"
	}
	var spots []domain.ParkingSpot
	if err := c.get(ctx, path, &spots); err != nil {
		return nil, fmt.Errorf("client.Spots: %w", err)
	}
	return spots, nil
}

// SpotParams is the payload for creating or updating a spot.
type SpotParams struct {
	Name         string `json:"name"`
	Latitude     string `json:"latitude"`
	Longitude    string `json:"longitude"`
	SpotType     string `json:"spot_type,omitempty"`
	PricePerHour string `json:"price_per_hour,omitempty"`
	IsAvailable  *bool  `json:"is_available,omitempty"`
}

// CreateSpot registers a new spot, provider only.
func (c *Client) CreateSpot(ctx context.Context, params SpotParams) (*domain.ParkingSpot, error) {
	var spot domain.ParkingSpot
	if err := c.post(ctx, "/parking/spots/", params, &spot); err != nil {
		return nil, fmt.Errorf("client.CreateSpot: %w", err)
	}
	return &spot, nil
}

// UpdateSpot replaces a spot's mutable attributes.
func (c *Client) UpdateSpot(ctx context.Context, id int64, params SpotParams) (*domain.ParkingSpot, error) {
	var spot domain.ParkingSpot
	if err := c.put(ctx, "/parking/spots/"+strconv.FormatInt(id, 10)+"/", params, &spot); err != nil {
		return nil, fmt.Errorf("client.UpdateSpot: %w", err)
	}
	return &spot, nil
}

// DeleteSpot removes a spot.
func (c *Client) DeleteSpot(ctx context.Context, id int64) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/parking/spots/"+strconv.FormatInt(id, 10)+"/", nil, nil); err != nil {
		return fmt.Errorf("client.DeleteSpot: %w", err)
	}
	return nil
}

// NearbySpots returns available spots around a position, nearest first.
func (c *Client) NearbySpots(ctx context.Context, lat, lng float64, radiusKM float64) ([]domain.NearbySpot, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	params.Set("lng", strconv.FormatFloat(lng, 'f', 6, 64))
	if radiusKM > 0 {
		params.Set("radius_km", strconv.FormatFloat(radiusKM, 'f', 1, 64))
	}

	var spots []domain.NearbySpot
	if err := c.get(ctx, "/parking/nearby/?"+params.Encode(), &spots); err != nil {
		return nil, fmt.Errorf("client.NearbySpots: %w", err)
	}
	return spots, nil
}

// AvailabilityLogs returns the availability history for a spot.
func (c *Client) AvailabilityLogs(ctx context.Context, spotID int64) ([]domain.AvailabilityLog, error) {
	params := url.Values{}
	params.Set("parking_spot", strconv.FormatInt(spotID, 10))

	var logs []domain.AvailabilityLog
	if err := c.get(ctx, "/parking/availability/logs/?"+params.Encode(), &logs); err != nil {
		return nil, fmt.Errorf("client.AvailabilityLogs: %w", err)
	}
	return logs, nil
}

// PricingLogs returns the dynamic-pricing history for a spot.
func (c *Client) PricingLogs(ctx context.Context, spotID int64) ([]domain.PricingLog, error) {
	params := url.Values{}
	params.Set("parking_spot", strconv.FormatInt(spotID, 10))

	var logs []domain.PricingLog
	if err := c.get(ctx, "/parking/pricing/logs/?"+params.Encode(), &logs); err != nil {
		return nil, fmt.Errorf("client.PricingLogs: %w", err)
	}
	return logs, nil
}

// UpdatePricing triggers a pricing recalculation for a spot, provider only.
func (c *Client) UpdatePricing(ctx context.Context, spotID int64) error {
	body := map[string]int64{"parking_spot": spotID}
	if err := c.post(ctx, "/parking/pricing/update/", body, nil); err != nil {
		return fmt.Errorf("client.UpdatePricing: %w", err)
	}
	return nil
}

// Reviews lists reviews for a spot.
func (c *Client) Reviews(ctx context.Context, spotID int64) ([]domain.SpotReview, error) {
	params := url.Values{}
	params.Set("parking_spot", strconv.FormatInt(spotID, 10))

	var reviews []domain.SpotReview
	if err := c.get(ctx, "/parking/review/?"+params.Encode(), &reviews); err != nil {
		return nil, fmt.Errorf("client.Reviews: %w", err)
	}
	return reviews, nil
}

// CreateReview posts a 1-5 star review for a spot.
func (c *Client) CreateReview(ctx context.Context, spotID int64, rating int, comment string) (*domain.SpotReview, error) {
	var review domain.SpotReview
	body := map[string]any{"parking_spot": spotID, "rating": rating, "comment": comment}
	if err := c.post(ctx, "/parking/review/", body, &review); err != nil {
		return nil, fmt.Errorf("client.CreateReview: %w", err)
	}
	return &review, nil
}
