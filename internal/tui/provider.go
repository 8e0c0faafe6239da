package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/advancepark/parkterm/pkg/client"
	"github.com/advancepark/parkterm/pkg/domain"
)

type providerLoadedMsg struct {
	data *domain.ProviderDashboard
	err  error
}

type providerModel struct {
	client  *client.Client
	data    *domain.ProviderDashboard
	loading bool
	err     string
	width   int
	height  int
}

func newProviderModel(c *client.Client) providerModel {
	return providerModel{client: c}
}

func (m providerModel) Init() tea.Cmd {
	return m.load()
}

func (m providerModel) load() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		data, err := c.ProviderDashboard(context.Background())
		return providerLoadedMsg{data: data, err: err}
	}
}

func (m providerModel) Update(msg tea.Msg) (providerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case providerLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err.Error()
		} else {
			m.data = msg.data
			m.err = ""
		}

	case tea.KeyMsg:
		if msg.String() == "r" {
			m.loading = true
			return m, m.load()
		}
	}
	return m, nil
}

func (m providerModel) View() string {
	if m.loading && m.data == nil {
		return " " + dimStyle.Render("loading dashboard...")
	}
	if m.err != "" {
		return " " + errorStyle.Render("error: "+m.err)
	}
	if m.data == nil {
		return " " + dimStyle.Render("no dashboard data")
	}

	var b strings.Builder
	d := m.data

	b.WriteString(" " + RoleStyle(domain.RoleProvider).Render("Provider") + "\n\n")
	fmt.Fprintf(&b, " %s %s\n", selectedStyle.Render(fmt.Sprintf("%4d", d.ManagedFacilities)), dimStyle.Render("facilities"))
	fmt.Fprintf(&b, " %s %s", normalStyle.Render(fmt.Sprintf("%4d", d.ActiveSpots)), dimStyle.Render("active spots"))
	fmt.Fprintf(&b, "  %s %s\n", normalStyle.Render(fmt.Sprintf("%d", d.OccupiedSpots)), dimStyle.Render("occupied"))
	fmt.Fprintf(&b, " %s %s\n", normalStyle.Render(fmt.Sprintf("%4d", d.PastBookings)), dimStyle.Render("past bookings"))
	fmt.Fprintf(&b, " %s %s\n", okStyle.Render(fmt.Sprintf("%7.2f", d.TotalEarnings)), dimStyle.Render("total earnings"))

	if len(d.FacilityMetrics) > 0 {
		b.WriteString("\n " + metaStyle.Render("facilities") + "\n")
		for _, fm := range d.FacilityMetrics {
			b.WriteString(facilityMetricRow(fm))
		}
	}
	return b.String()
}

// facilityMetricRow renders one facility occupancy line; shared with the
// admin dashboard.
func facilityMetricRow(fm domain.FacilityMetric) string {
	rate := fm.OccupancyRate
	rateStyle := okStyle
	switch {
	case rate >= 0.9:
		rateStyle = errorStyle
	case rate >= 0.6:
		rateStyle = unreadStyle
	}
	return fmt.Sprintf("  %s  %s  %s\n",
		normalStyle.Render(fmt.Sprintf("%-24s", truncStr(fm.FacilityName, 24))),
		dimStyle.Render(fmt.Sprintf("%d/%d spots", fm.OccupiedSpots, fm.TotalSpots)),
		rateStyle.Render(fmt.Sprintf("%.0f%%", rate*100)))
}

func (m providerModel) helpKeys() string {
	return helpEntry("n", "notifications") + "  " + helpEntry("r", "refresh") + "  " + helpEntry("o", "web") + "  " + helpEntry("h", "help") + "  " + helpEntry("q", "quit")
}
