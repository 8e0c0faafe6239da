package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/advancepark/parkterm/internal/browser"
	"github.com/advancepark/parkterm/internal/feed"
	"github.com/advancepark/parkterm/pkg/domain"
)

// typeCycle is the filter order for the notification list; "" is all types.
var typeCycle = []string{
	"",
	string(domain.NotificationSpotAvailable),
	string(domain.NotificationBookingReminder),
	string(domain.NotificationGeneral),
}

// -- messages --

type notifLoadedMsg struct {
	err error
}

type notifActionMsg struct {
	status string
	err    error
}

type notifCopyMsg struct {
	err error
}

// -- model --

type notifModel struct {
	feed      *feed.Feed
	webURL    string
	cursor    int
	typeIdx   int
	loading   bool
	statusMsg string
	err       string
	width     int
	height    int
}

func newNotifModel(f *feed.Feed, webURL string) notifModel {
	return notifModel{feed: f, webURL: webURL}
}

func (m notifModel) Init() tea.Cmd {
	return m.loadPage(1, true)
}

func (m notifModel) loadPage(page int, replace bool) tea.Cmd {
	f := m.feed
	return func() tea.Msg {
		err := f.LoadPage(context.Background(), page, replace)
		return notifLoadedMsg{err: err}
	}
}

func (m notifModel) Update(msg tea.Msg) (notifModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case notifLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err.Error()
		} else {
			m.err = ""
		}
		m.clampCursor()

	case notifActionMsg:
		if msg.err != nil {
			m.statusMsg = errorStyle.Render(msg.err.Error())
		} else if msg.status != "" {
			m.statusMsg = okStyle.Render(msg.status)
		}

	case notifCopyMsg:
		if msg.err != nil {
			m.statusMsg = errorStyle.Render("copy failed: " + msg.err.Error())
		} else {
			m.statusMsg = okStyle.Render("copied")
		}

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// rowCount is the number of selectable rows: items plus the load-more
// sentinel when another page exists.
func (m notifModel) rowCount() int {
	n := len(m.feed.Items())
	if m.feed.HasMore() {
		n++
	}
	return n
}

func (m *notifModel) clampCursor() {
	if n := m.rowCount(); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m notifModel) handleKey(msg tea.KeyMsg) (notifModel, tea.Cmd) {
	m.statusMsg = ""
	items := m.feed.Items()

	switch msg.String() {
	case "j", "down":
		if m.cursor < m.rowCount()-1 {
			m.cursor++
		}
		// Selecting the sentinel row pulls the next page.
		if m.cursor == len(items) && m.feed.HasMore() && !m.loading {
			m.loading = true
			return m, m.loadPage(m.feed.Page()+1, false)
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter", " ":
		if m.cursor < len(items) {
			return m.toggleRead(items[m.cursor])
		}
		if m.cursor == len(items) && m.feed.HasMore() && !m.loading {
			m.loading = true
			return m, m.loadPage(m.feed.Page()+1, false)
		}
	case "a":
		f := m.feed
		return m, func() tea.Msg {
			if err := f.MarkAllRead(context.Background()); err != nil {
				return notifActionMsg{err: err}
			}
			return notifActionMsg{status: "all read"}
		}
	case "f":
		m.typeIdx = (m.typeIdx + 1) % len(typeCycle)
		m.cursor = 0
		m.loading = true
		f := m.feed
		typ := typeCycle[m.typeIdx]
		return m, func() tea.Msg {
			err := f.SetFilter(context.Background(), typ)
			return notifLoadedMsg{err: err}
		}
	case "c":
		if m.cursor < len(items) {
			n := items[m.cursor]
			text := n.Title
			if n.Body != "" {
				text += "\n" + n.Body
			}
			return m, func() tea.Msg {
				return notifCopyMsg{err: clipboard.WriteAll(text)}
			}
		}
	case "o":
		url := m.webURL
		return m, func() tea.Msg {
			browser.Open(url) //nolint:errcheck // best-effort browser open
			return nil
		}
	case "u":
		f := m.feed
		return m, func() tea.Msg {
			if err := f.RefreshUnread(context.Background()); err != nil {
				return notifActionMsg{err: err}
			}
			return notifActionMsg{}
		}
	case "r":
		m.cursor = 0
		m.loading = true
		f := m.feed
		return m, func() tea.Msg {
			return notifLoadedMsg{err: f.Reload(context.Background())}
		}
	}
	return m, nil
}

func (m notifModel) toggleRead(n domain.Notification) (notifModel, tea.Cmd) {
	f := m.feed
	if n.IsRead {
		return m, func() tea.Msg {
			if err := f.MarkUnread(context.Background(), n.ID); err != nil {
				return notifActionMsg{err: err}
			}
			return notifActionMsg{}
		}
	}
	return m, func() tea.Msg {
		if err := f.MarkRead(context.Background(), n.ID); err != nil {
			return notifActionMsg{err: err}
		}
		return notifActionMsg{}
	}
}

func (m notifModel) View() string {
	var b strings.Builder

	// Header: unread count plus the active filter
	header := fmt.Sprintf("%d unread", m.feed.Unread())
	if total := m.feed.Total(); total > 0 {
		header += dimStyle.Render(fmt.Sprintf(" / %d total", total))
	}
	if typ := typeCycle[m.typeIdx]; typ != "" {
		header += "  " + TypeStyle(domain.NotificationType(typ)).Render(typ)
	}
	b.WriteString(" " + unreadStyle.Render(header) + "\n\n")

	items := m.feed.Items()
	if m.loading && len(items) == 0 {
		b.WriteString(" " + dimStyle.Render("loading notifications...") + "\n")
		return b.String()
	}
	if m.err != "" {
		b.WriteString(" " + errorStyle.Render("error: "+m.err) + "\n")
		return b.String()
	}
	if len(items) == 0 {
		b.WriteString(" " + dimStyle.Render("no notifications") + "\n")
		return b.String()
	}

	for i, n := range items {
		cursor := " "
		if i == m.cursor {
			cursor = accentStyle.Render("▸")
		}

		dot := dimStyle.Render("·")
		titleStyle := dimStyle
		if !n.IsRead {
			dot = unreadStyle.Render("●")
			titleStyle = normalStyle
		}

		timeStr := metaStyle.Render(fmt.Sprintf("%8s", formatTime(n.SentAt)))
		typeStr := TypeStyle(n.Type).Render(string(n.Type))

		fmt.Fprintf(&b, " %s %s %s  %s  %s\n",
			cursor, dot, timeStr, titleStyle.Render(truncStr(n.Title, 60)), typeStr)
		if i == m.cursor && n.Body != "" {
			bodyWidth := m.width - 14
			if bodyWidth < 20 {
				bodyWidth = 20
			}
			fmt.Fprintf(&b, "             %s\n", dimStyle.Render(truncStr(n.Body, bodyWidth)))
		}
	}

	if m.feed.HasMore() {
		cursor := " "
		label := dimStyle.Render("load more...")
		if m.cursor == len(items) {
			cursor = accentStyle.Render("▸")
			label = accentStyle.Render("load more...")
		}
		if m.loading {
			label = dimStyle.Render("loading...")
		}
		fmt.Fprintf(&b, " %s %s\n", cursor, label)
	}

	if m.statusMsg != "" {
		b.WriteString("\n " + m.statusMsg + "\n")
	}
	return b.String()
}

func (m notifModel) helpKeys() string {
	return helpEntry("j/k", "nav") + "  " + helpEntry("enter", "read") + "  " + helpEntry("a", "all read") + "  " + helpEntry("f", "filter") + "  " + helpEntry("c", "copy") + "  " + helpEntry("o", "web") + "  " + helpEntry("d", "dashboard") + "  " + helpEntry("q", "quit")
}
