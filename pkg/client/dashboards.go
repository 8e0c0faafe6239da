package client

import (
	"context"
	"fmt"

	"github.com/advancepark/parkterm/pkg/domain"
)

// DriverDashboard returns the driver's booking and spending summary.
func (c *Client) DriverDashboard(ctx context.Context) (*domain.DriverDashboard, error) {
	var d domain.DriverDashboard
	if err := c.get(ctx, "/dashboard/driver/", &d); err != nil {
		return nil, fmt.Errorf("client.DriverDashboard: %w", err)
	}
	return &d, nil
}

// ProviderDashboard returns the provider's facility and earnings summary.
func (c *Client) ProviderDashboard(ctx context.Context) (*domain.ProviderDashboard, error) {
	var d domain.ProviderDashboard
	if err := c.get(ctx, "/dashboard/provider/", &d); err != nil {
		return nil, fmt.Errorf("client.ProviderDashboard: %w", err)
	}
	return &d, nil
}

// AttendantDashboard returns the occupancy summary for the facilities the
// attendant covers.
func (c *Client) AttendantDashboard(ctx context.Context) (*domain.AttendantDashboard, error) {
	var d domain.AttendantDashboard
	if err := c.get(ctx, "/dashboard/attendant/", &d); err != nil {
		return nil, fmt.Errorf("client.AttendantDashboard: %w", err)
	}
	return &d, nil
}

// AdminDashboard returns the platform-wide aggregate, admin only.
func (c *Client) AdminDashboard(ctx context.Context) (*domain.AdminDashboard, error) {
	var d domain.AdminDashboard
	if err := c.get(ctx, "/dashboard/admin/", &d); err != nil {
		return nil, fmt.Errorf("client.AdminDashboard: %w", err)
	}
	return &d, nil
}

// SpotEvaluations returns model quality scores per spot, admin only.
func (c *Client) SpotEvaluations(ctx context.Context) ([]domain.SpotEvaluationReport, error) {
	var reports []domain.SpotEvaluationReport
	if err := c.get(ctx, "/dashboard/spot-evaluations/", &reports); err != nil {
		return nil, fmt.Errorf("client.SpotEvaluations: %w", err)
	}
	return reports, nil
}
