package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/advancepark/parkterm/pkg/client"
	"github.com/advancepark/parkterm/pkg/domain"
)

type driverLoadedMsg struct {
	data *domain.DriverDashboard
	err  error
}

type driverModel struct {
	client  *client.Client
	data    *domain.DriverDashboard
	loading bool
	err     string
	width   int
	height  int
}

func newDriverModel(c *client.Client) driverModel {
	return driverModel{client: c}
}

func (m driverModel) Init() tea.Cmd {
	return m.load()
}

func (m driverModel) load() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		data, err := c.DriverDashboard(context.Background())
		return driverLoadedMsg{data: data, err: err}
	}
}

func (m driverModel) Update(msg tea.Msg) (driverModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case driverLoadedMsg:
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

func (m driverModel) View() string {
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

	b.WriteString(" " + RoleStyle(domain.RoleDriver).Render("Driver") + "\n\n")
	fmt.Fprintf(&b, " %s %s\n", selectedStyle.Render(fmt.Sprintf("%4d", d.ActiveBookings)), dimStyle.Render("active bookings"))
	fmt.Fprintf(&b, " %s %s\n", normalStyle.Render(fmt.Sprintf("%4d", d.PastBookings)), dimStyle.Render("past bookings"))
	fmt.Fprintf(&b, " %s %s\n", normalStyle.Render(fmt.Sprintf("%7.2f", d.TotalSpending)), dimStyle.Render("total spent"))

	if len(d.RecentBookings) > 0 {
		b.WriteString("\n " + metaStyle.Render("recent bookings") + "\n")
		for _, bk := range d.RecentBookings {
			name := bk.SpotName
			if name == "" {
				name = fmt.Sprintf("spot %d", bk.SpotID)
			}
			status := dimStyle.Render("ended")
			if bk.IsActive {
				status = okStyle.Render("active")
			}
			fmt.Fprintf(&b, "  %s  %s  %s\n",
				metaStyle.Render(fmt.Sprintf("%8s", formatTime(bk.StartTime))),
				normalStyle.Render(truncStr(name, 30)), status)
		}
	}
	return b.String()
}

func (m driverModel) helpKeys() string {
	return helpEntry("n", "notifications") + "  " + helpEntry("r", "refresh") + "  " + helpEntry("o", "web") + "  " + helpEntry("h", "help") + "  " + helpEntry("q", "quit")
}
