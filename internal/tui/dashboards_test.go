package tui

import (
	"strings"
	"testing"

	"github.com/advancepark/parkterm/pkg/domain"
)

func TestDriverDashboardRenders(t *testing.T) {
	m := newDriverModel(nil)
	m.width = 80
	m, _ = m.Update(driverLoadedMsg{data: &domain.DriverDashboard{
		ActiveBookings: 2,
		PastBookings:   17,
		TotalSpending:  143.50,
		RecentBookings: []domain.Booking{
			{ID: 1, SpotName: "Central Garage A2", IsActive: true},
		},
	}})

	view := m.View()
	for _, want := range []string{"active bookings", "17", "143.50", "Central Garage A2", "active"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in driver view, got:\n%s", want, view)
		}
	}
}

func TestProviderDashboardRendersMetrics(t *testing.T) {
	m := newProviderModel(nil)
	m.width = 80
	m, _ = m.Update(providerLoadedMsg{data: &domain.ProviderDashboard{
		ManagedFacilities: 3,
		ActiveSpots:       40,
		OccupiedSpots:     36,
		TotalEarnings:     9001.25,
		FacilityMetrics: []domain.FacilityMetric{
			{FacilityName: "Harbor Lot", TotalSpots: 20, OccupiedSpots: 19, OccupancyRate: 0.95},
		},
	}})

	view := m.View()
	for _, want := range []string{"facilities", "9001.25", "Harbor Lot", "19/20 spots", "95%"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in provider view, got:\n%s", want, view)
		}
	}
}

func TestAttendantDashboardRenders(t *testing.T) {
	m := newAttendantModel(nil)
	m, _ = m.Update(attendantLoadedMsg{data: &domain.AttendantDashboard{
		FacilitiesCount: 2,
		SpotsCount:      30,
		OccupiedSpots:   12,
		TotalBookings:   88,
		OccupancyRate:   0.40,
	}})

	view := m.View()
	for _, want := range []string{"facilities covered", "88", "40%"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in attendant view, got:\n%s", want, view)
		}
	}
}

func TestAdminDashboardRenders(t *testing.T) {
	d := &domain.AdminDashboard{
		TotalUsers:      120,
		TotalFacilities: 8,
		TotalSpots:      200,
		TotalBookings:   950,
		UserBreakdown: []domain.RoleCount{
			{Role: domain.RoleDriver, Count: 100},
			{Role: domain.RoleProvider, Count: 15},
		},
	}
	d.Revenue.Total = 12345.67
	d.AIStats.PredictionLogs = 42

	m := newAdminModel(nil)
	m.width = 100
	m, _ = m.Update(adminLoadedMsg{data: d})

	view := m.View()
	for _, want := range []string{"120", "users", "12345.67", "driver", "42 prediction logs"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in admin view, got:\n%s", want, view)
		}
	}
}

func TestAdminSpotEvaluationsToggle(t *testing.T) {
	m := newAdminModel(nil)
	m.width = 100
	m, _ = m.Update(adminLoadedMsg{data: &domain.AdminDashboard{TotalUsers: 1}})

	m2, cmd := m.Update(keyMsg("e"))
	if cmd == nil {
		t.Fatal("expected load command on 'e'")
	}
	m2, _ = m2.Update(spotEvalsMsg{reports: []domain.SpotEvaluationReport{
		{Spot: "Harbor Lot #3", Precision: 0.91, Recall: 0.84, F1: 0.87},
	}})
	view := m2.View()
	for _, want := range []string{"model scores per spot", "Harbor Lot #3", "0.87"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in admin view, got:\n%s", want, view)
		}
	}

	// Second press hides the section instead of refetching.
	m3, cmd := m2.Update(keyMsg("e"))
	if cmd != nil {
		t.Error("expected no command when hiding scores")
	}
	if strings.Contains(m3.View(), "model scores") {
		t.Error("scores still rendered after toggle off")
	}
}

func TestDashboardErrorState(t *testing.T) {
	m := newDriverModel(nil)
	m, _ = m.Update(driverLoadedMsg{err: errTest("dashboard unavailable")})
	if !strings.Contains(m.View(), "dashboard unavailable") {
		t.Errorf("expected error in view, got:\n%s", m.View())
	}
}

func TestDashboardRefreshKey(t *testing.T) {
	m := newAttendantModel(nil)
	m.data = &domain.AttendantDashboard{}
	m2, cmd := m.Update(keyMsg("r"))
	if cmd == nil {
		t.Fatal("expected reload command on 'r'")
	}
	if !m2.loading {
		t.Error("loading flag not set on refresh")
	}
}
