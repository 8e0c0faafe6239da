package domain

import "time"

// Dashboard payloads are role-specific aggregates computed server-side.
// Each dashboard endpoint returns exactly one of these shapes.

// RoleCount is a role plus how many accounts hold it.
type RoleCount struct {
	Role  Role `json:"role"`
	Count int  `json:"count"`
}

// FacilityMetric summarizes occupancy and revenue for one facility.
type FacilityMetric struct {
	FacilityName  string  `json:"facility_name"`
	TotalSpots    int     `json:"total_spots"`
	OccupiedSpots int     `json:"occupied_spots"`
	OccupancyRate float64 `json:"occupancy_rate"`
	TotalRevenue  float64 `json:"total_revenue"`
}

// BookingTrend is bookings per day for the trend chart.
type BookingTrend struct {
	Date  string `json:"start_time__date"`
	Count int    `json:"bookings_count"`
}

// ActivityBooking is a recent booking in the admin activity timeline.
type ActivityBooking struct {
	ID           int64     `json:"id"`
	UserEmail    string    `json:"user__email"`
	FacilityName string    `json:"parking_spot__facility__name"`
	StartTime    time.Time `json:"start_time"`
}

// ActivityUser is a recent signup in the admin activity timeline.
type ActivityUser struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	DateJoined time.Time `json:"date_joined"`
}

// AdminDashboard is the platform-wide aggregate for admins.
type AdminDashboard struct {
	TotalUsers      int         `json:"total_users"`
	TotalFacilities int         `json:"total_facilities"`
	TotalSpots      int         `json:"total_spots"`
	TotalBookings   int         `json:"total_bookings"`
	UserBreakdown   []RoleCount `json:"user_breakdown"`
	Revenue         struct {
		Total      float64 `json:"total"`
		ByFacility []struct {
			FacilityName string  `json:"parking_spot__facility__name"`
			Total        float64 `json:"total"`
		} `json:"by_facility"`
	} `json:"revenue"`
	BookingTrends  []BookingTrend `json:"booking_trends"`
	RecentActivity struct {
		Bookings []ActivityBooking `json:"bookings"`
		Users    []ActivityUser    `json:"users"`
	} `json:"recent_activity"`
	AIStats struct {
		PredictionLogs   int `json:"prediction_logs"`
		AvailabilityLogs int `json:"availability_logs"`
	} `json:"ai_stats"`
	FacilityMetrics []FacilityMetric `json:"facility_metrics"`
}

// DriverDashboard is the personal summary for drivers.
type DriverDashboard struct {
	ActiveBookings int       `json:"active_bookings"`
	PastBookings   int       `json:"past_bookings"`
	TotalSpending  float64   `json:"total_spending"`
	RecentBookings []Booking `json:"recent_bookings,omitempty"`
}

// ProviderDashboard is the summary for spot providers.
type ProviderDashboard struct {
	ManagedFacilities int              `json:"managed_facilities_count"`
	ActiveSpots       int              `json:"active_spots"`
	OccupiedSpots     int              `json:"occupied_spots"`
	PastBookings      int              `json:"past_bookings"`
	TotalEarnings     float64          `json:"total_spending"`
	FacilityMetrics   []FacilityMetric `json:"facility_metrics,omitempty"`
}

// AttendantDashboard is the summary for facility attendants.
type AttendantDashboard struct {
	FacilitiesCount int     `json:"facilities_count"`
	SpotsCount      int     `json:"spots_count"`
	TotalBookings   int     `json:"total_bookings"`
	OccupiedSpots   int     `json:"occupied_spots"`
	OccupancyRate   float64 `json:"occupancy_rate"`
}

// SpotEvaluationReport scores one spot's availability-prediction model.
type SpotEvaluationReport struct {
	Spot      string  `json:"spot"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}
