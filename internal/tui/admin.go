package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/advancepark/parkterm/pkg/client"
	"github.com/advancepark/parkterm/pkg/domain"
)

type adminLoadedMsg struct {
	data *domain.AdminDashboard
	err  error
}

type spotEvalsMsg struct {
	reports []domain.SpotEvaluationReport
	err     error
}

type adminModel struct {
	client  *client.Client
	data    *domain.AdminDashboard
	evals   []domain.SpotEvaluationReport
	loading bool
	err     string
	width   int
	height  int
}

func newAdminModel(c *client.Client) adminModel {
	return adminModel{client: c}
}

func (m adminModel) Init() tea.Cmd {
	return m.load()
}

func (m adminModel) load() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		data, err := c.AdminDashboard(context.Background())
		return adminLoadedMsg{data: data, err: err}
	}
}

func (m adminModel) loadEvals() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		reports, err := c.SpotEvaluations(context.Background())
		return spotEvalsMsg{reports: reports, err: err}
	}
}

func (m adminModel) Update(msg tea.Msg) (adminModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case adminLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err.Error()
		} else {
			m.data = msg.data
			m.err = ""
		}

	case spotEvalsMsg:
		if msg.err == nil {
			m.evals = msg.reports
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.load()
		case "e":
			if m.evals == nil {
				return m, m.loadEvals()
			}
			m.evals = nil
		}
	}
	return m, nil
}

func (m adminModel) View() string {
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

	b.WriteString(" " + RoleStyle(domain.RoleAdmin).Render("Admin") + "\n\n")

	// Platform totals on one line
	fmt.Fprintf(&b, " %s %s  %s %s  %s %s  %s %s\n",
		selectedStyle.Render(fmt.Sprintf("%d", d.TotalUsers)), dimStyle.Render("users"),
		normalStyle.Render(fmt.Sprintf("%d", d.TotalFacilities)), dimStyle.Render("facilities"),
		normalStyle.Render(fmt.Sprintf("%d", d.TotalSpots)), dimStyle.Render("spots"),
		normalStyle.Render(fmt.Sprintf("%d", d.TotalBookings)), dimStyle.Render("bookings"))

	if len(d.UserBreakdown) > 0 {
		parts := make([]string, 0, len(d.UserBreakdown))
		for _, rc := range d.UserBreakdown {
			parts = append(parts, RoleStyle(rc.Role).Render(string(rc.Role))+dimStyle.Render(fmt.Sprintf(" %d", rc.Count)))
		}
		b.WriteString(" " + strings.Join(parts, dimStyle.Render(" · ")) + "\n")
	}

	fmt.Fprintf(&b, "\n %s %s\n", okStyle.Render(fmt.Sprintf("%.2f", d.Revenue.Total)), dimStyle.Render("total revenue"))
	for _, fr := range d.Revenue.ByFacility {
		fmt.Fprintf(&b, "  %s  %s\n",
			normalStyle.Render(fmt.Sprintf("%-24s", truncStr(fr.FacilityName, 24))),
			dimStyle.Render(fmt.Sprintf("%.2f", fr.Total)))
	}

	if len(d.FacilityMetrics) > 0 {
		b.WriteString("\n " + metaStyle.Render("occupancy") + "\n")
		for _, fm := range d.FacilityMetrics {
			b.WriteString(facilityMetricRow(fm))
		}
	}

	if len(d.RecentActivity.Bookings) > 0 || len(d.RecentActivity.Users) > 0 {
		b.WriteString("\n " + metaStyle.Render("recent activity") + "\n")
		for _, bk := range d.RecentActivity.Bookings {
			fmt.Fprintf(&b, "  %s  %s %s %s\n",
				metaStyle.Render(fmt.Sprintf("%8s", formatTime(bk.StartTime))),
				normalStyle.Render(truncStr(bk.UserEmail, 28)),
				dimStyle.Render("booked"),
				normalStyle.Render(truncStr(bk.FacilityName, 24)))
		}
		for _, u := range d.RecentActivity.Users {
			fmt.Fprintf(&b, "  %s  %s %s %s\n",
				metaStyle.Render(fmt.Sprintf("%8s", formatTime(u.DateJoined))),
				normalStyle.Render(truncStr(u.Email, 28)),
				dimStyle.Render("joined as"),
				RoleStyle(u.Role).Render(string(u.Role)))
		}
	}

	if len(m.evals) > 0 {
		b.WriteString("\n " + metaStyle.Render("model scores per spot") + "\n")
		for _, ev := range m.evals {
			fmt.Fprintf(&b, "  %s  %s\n",
				normalStyle.Render(fmt.Sprintf("%-24s", truncStr(ev.Spot, 24))),
				dimStyle.Render(fmt.Sprintf("p %.2f  r %.2f  f1 %.2f", ev.Precision, ev.Recall, ev.F1)))
		}
	}

	if d.AIStats.PredictionLogs > 0 || d.AIStats.AvailabilityLogs > 0 {
		fmt.Fprintf(&b, "\n %s\n", dimStyle.Render(fmt.Sprintf(
			"%d prediction logs · %d availability logs",
			d.AIStats.PredictionLogs, d.AIStats.AvailabilityLogs)))
	}
	return b.String()
}

func (m adminModel) helpKeys() string {
	return helpEntry("n", "notifications") + "  " + helpEntry("e", "model scores") + "  " + helpEntry("r", "refresh") + "  " + helpEntry("o", "web") + "  " + helpEntry("h", "help") + "  " + helpEntry("q", "quit")
}
