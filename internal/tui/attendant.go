package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/advancepark/parkterm/pkg/client"
	"github.com/advancepark/parkterm/pkg/domain"
)

type attendantLoadedMsg struct {
	data *domain.AttendantDashboard
	err  error
}

type attendantModel struct {
	client  *client.Client
	data    *domain.AttendantDashboard
	loading bool
	err     string
	width   int
	height  int
}

func newAttendantModel(c *client.Client) attendantModel {
	return attendantModel{client: c}
}

func (m attendantModel) Init() tea.Cmd {
	return m.load()
}

func (m attendantModel) load() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		data, err := c.AttendantDashboard(context.Background())
		return attendantLoadedMsg{data: data, err: err}
	}
}

func (m attendantModel) Update(msg tea.Msg) (attendantModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case attendantLoadedMsg:
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

func (m attendantModel) View() string {
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

	b.WriteString(" " + RoleStyle(domain.RoleAttendant).Render("Attendant") + "\n\n")
	fmt.Fprintf(&b, " %s %s\n", selectedStyle.Render(fmt.Sprintf("%4d", d.FacilitiesCount)), dimStyle.Render("facilities covered"))
	fmt.Fprintf(&b, " %s %s", normalStyle.Render(fmt.Sprintf("%4d", d.SpotsCount)), dimStyle.Render("spots"))
	fmt.Fprintf(&b, "  %s %s\n", normalStyle.Render(fmt.Sprintf("%d", d.OccupiedSpots)), dimStyle.Render("occupied"))
	fmt.Fprintf(&b, " %s %s\n", normalStyle.Render(fmt.Sprintf("%4d", d.TotalBookings)), dimStyle.Render("total bookings"))

	rateStyle := okStyle
	switch {
	case d.OccupancyRate >= 0.9:
		rateStyle = errorStyle
	case d.OccupancyRate >= 0.6:
		rateStyle = unreadStyle
	}
	fmt.Fprintf(&b, " %s %s\n", rateStyle.Render(fmt.Sprintf("%4.0f%%", d.OccupancyRate*100)), dimStyle.Render("occupancy"))

	return b.String()
}

func (m attendantModel) helpKeys() string {
	return helpEntry("n", "notifications") + "  " + helpEntry("r", "refresh") + "  " + helpEntry("o", "web") + "  " + helpEntry("h", "help") + "  " + helpEntry("q", "quit")
}
