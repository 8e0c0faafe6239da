// Package tui implements the terminal interface: auth forms, role-specific
// dashboards, and the live notification feed.
package tui

import (
	"context"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/advancepark/parkterm/internal/browser"
	"github.com/advancepark/parkterm/internal/feed"
	"github.com/advancepark/parkterm/internal/session"
	"github.com/advancepark/parkterm/pkg/client"
	"github.com/advancepark/parkterm/pkg/domain"
)

type view int

const (
	viewLoading view = iota
	viewLogin
	viewRegister
	viewDashboard
	viewNotifications
)

// sessionPollInterval is how often the root model checks whether the
// background refresh loop forced a logout.
const sessionPollInterval = 5 * time.Second

type sessionTickMsg time.Time

func sessionTickCmd() tea.Cmd {
	return tea.Tick(sessionPollInterval, func(t time.Time) tea.Msg {
		return sessionTickMsg(t)
	})
}

// bootDoneMsg signals that the stored session was resolved (or not).
type bootDoneMsg struct {
	err error
}

// feedEventMsg carries one push frame from the notification socket.
type feedEventMsg struct {
	ev domain.StreamEvent
}

// streamClosedMsg signals that the push socket shut down for good.
type streamClosedMsg struct{}

// App is the root Bubbletea model.
type App struct {
	session *session.Manager
	feed    *feed.Feed
	client  *client.Client
	events  <-chan domain.StreamEvent
	webURL  string

	view      view
	login     loginModel
	register  registerModel
	notif     notifModel
	driver    driverModel
	provider  providerModel
	attendant attendantModel
	admin     adminModel

	helpOpen   bool
	helpCursor int
	width      int
	height     int
	frame      int // logo shimmer animation frame
}

// NewApp creates the root model. events may be nil when no push socket is
// running (tests, logged-out start).
func NewApp(s *session.Manager, f *feed.Feed, c *client.Client, events <-chan domain.StreamEvent, webURL string) App {
	return App{
		session:   s,
		feed:      f,
		client:    c,
		events:    events,
		webURL:    webURL,
		view:      viewLoading,
		login:     newLoginModel(s),
		register:  newRegisterModel(s),
		notif:     newNotifModel(f, webURL),
		driver:    newDriverModel(c),
		provider:  newProviderModel(c),
		attendant: newAttendantModel(c),
		admin:     newAdminModel(c),
	}
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{shimmerTickCmd(), a.boot()}
	if a.events != nil {
		cmds = append(cmds, a.waitEvent())
	}
	return tea.Batch(cmds...)
}

func (a App) boot() tea.Cmd {
	s := a.session
	return func() tea.Msg {
		return bootDoneMsg{err: s.Bootstrap(context.Background())}
	}
}

// waitEvent blocks on the push channel and converts frames into messages.
func (a App) waitEvent() tea.Cmd {
	ch := a.events
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		return feedEventMsg{ev: ev}
	}
}

// enterDashboard switches to the dashboard for the signed-in role and kicks
// off the initial loads.
func (a App) enterDashboard() (App, tea.Cmd) {
	a.view = viewDashboard
	cmds := []tea.Cmd{a.notif.Init(), sessionTickCmd()}

	user := a.session.User()
	if user == nil {
		return a, tea.Batch(cmds...)
	}
	switch user.Role {
	case domain.RoleDriver:
		cmds = append(cmds, a.driver.Init())
	case domain.RoleProvider:
		cmds = append(cmds, a.provider.Init())
	case domain.RoleAttendant:
		cmds = append(cmds, a.attendant.Init())
	case domain.RoleAdmin:
		cmds = append(cmds, a.admin.Init())
	}
	f := a.feed
	cmds = append(cmds, func() tea.Msg {
		if err := f.RefreshUnread(context.Background()); err != nil {
			return notifActionMsg{err: err}
		}
		return notifActionMsg{}
	})
	return a, tea.Batch(cmds...)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + user line(1) + help(1) = 4 lines
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 4}
		a.login, _ = a.login.Update(bodyMsg)
		a.register, _ = a.register.Update(bodyMsg)
		a.notif, _ = a.notif.Update(bodyMsg)
		a.driver, _ = a.driver.Update(bodyMsg)
		a.provider, _ = a.provider.Update(bodyMsg)
		a.attendant, _ = a.attendant.Update(bodyMsg)
		a.admin, _ = a.admin.Update(bodyMsg)

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case bootDoneMsg:
		if a.session.Authenticated() {
			return a.enterDashboard()
		}
		a.view = viewLogin
		return a, nil

	case authResultMsg:
		if msg.err == nil && a.session.Authenticated() {
			a.login, _ = a.login.Update(msg)
			return a.enterDashboard()
		}
		// Route the failure to whichever form submitted
		var cmd tea.Cmd
		if a.view == viewRegister {
			a.register, cmd = a.register.Update(registerResultMsg{err: msg.err})
		} else {
			a.login, cmd = a.login.Update(msg)
		}
		return a, cmd

	case gotoRegisterMsg:
		a.view = viewRegister
		a.register = newRegisterModel(a.session)
		return a, nil

	case gotoLoginMsg:
		a.view = viewLogin
		return a, nil

	case sessionTickMsg:
		// The background refresh loop logs out on fatal refresh failure.
		if a.view == viewDashboard || a.view == viewNotifications {
			if !a.session.Authenticated() {
				a.view = viewLogin
				a.login = newLoginModel(a.session)
				return a, nil
			}
			return a, sessionTickCmd()
		}
		return a, nil

	case feedEventMsg:
		a.feed.ApplyEvent(msg.ev)
		return a, a.waitEvent()

	case streamClosedMsg:
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a.route(msg)
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	// Help overlay captures all keys when open
	if a.helpOpen {
		switch msg.String() {
		case "h", "esc", "q":
			a.helpOpen = false
		case "j", "down":
			if a.helpCursor < len(helpItems)-1 {
				a.helpCursor++
			}
		case "k", "up":
			if a.helpCursor > 0 {
				a.helpCursor--
			}
		case "enter":
			item := helpItems[a.helpCursor]
			if item.url != "" {
				browser.Open(item.url) //nolint:errcheck // best-effort browser open
			}
		}
		return a, nil
	}

	// Forms own the keyboard while visible
	switch a.view {
	case viewLoading:
		return a, nil
	case viewLogin, viewRegister:
		return a.route(msg)
	}

	// Global keys on dashboard and notifications
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "h":
		a.helpOpen = true
		a.helpCursor = 0
		return a, nil
	case "n":
		if a.view != viewNotifications {
			a.view = viewNotifications
		}
		return a, nil
	case "d":
		if a.view != viewDashboard {
			a.view = viewDashboard
		}
		return a, nil
	case "o":
		url := a.webURL
		return a, func() tea.Msg {
			browser.Open(url) //nolint:errcheck // best-effort browser open
			return nil
		}
	}
	return a.route(msg)
}

// route forwards a message to the model behind the active view.
func (a App) route(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.view {
	case viewLogin:
		a.login, cmd = a.login.Update(msg)
	case viewRegister:
		a.register, cmd = a.register.Update(msg)
	case viewNotifications:
		a.notif, cmd = a.notif.Update(msg)
	case viewDashboard:
		user := a.session.User()
		if user == nil {
			return a, nil
		}
		switch user.Role {
		case domain.RoleDriver:
			a.driver, cmd = a.driver.Update(msg)
		case domain.RoleProvider:
			a.provider, cmd = a.provider.Update(msg)
		case domain.RoleAttendant:
			a.attendant, cmd = a.attendant.Update(msg)
		case domain.RoleAdmin:
			a.admin, cmd = a.admin.Update(msg)
		}
	}
	return a, cmd
}

func (a App) View() string {
	logo := renderShimmerLogo(a.frame)
	logoWidth := lipgloss.Width(logo)
	logoPad := (a.width - logoWidth) / 2
	if logoPad < 0 {
		logoPad = 0
	}
	header := strings.Repeat(" ", logoPad) + logo + "\n"

	// User line under the logo
	userLine := ""
	if user := a.session.User(); user != nil {
		userLine = normalStyle.Render(user.DisplayName()) + " " + RoleStyle(user.Role).Render(string(user.Role))
		if unread := a.feed.Unread(); unread > 0 {
			userLine += "  " + unreadStyle.Render("●") + dimStyle.Render(" "+strconv.Itoa(unread))
		}
		if errMsg := a.session.Err(); errMsg != "" {
			userLine += "  " + errorStyle.Render(errMsg)
		}
	}
	lineWidth := lipgloss.Width(userLine)
	linePad := (a.width - lineWidth) / 2
	if linePad < 0 {
		linePad = 0
	}
	header += strings.Repeat(" ", linePad) + userLine

	var body, help string
	switch a.view {
	case viewLoading:
		body = "\n " + dimStyle.Render("restoring session...")
		help = " " + helpEntry("ctrl+c", "quit")
	case viewLogin:
		body = a.login.View()
		help = " " + a.login.helpKeys()
	case viewRegister:
		body = a.register.View()
		help = " " + a.register.helpKeys()
	case viewNotifications:
		body = a.notif.View()
		help = " " + a.notif.helpKeys()
	case viewDashboard:
		body, help = a.dashboardView()
	}

	if a.helpOpen {
		body = helpView(a.helpCursor)
		help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "open") + "  " + helpEntry("esc", "close")
	}

	// Fixed chrome: header(2) + user line(1) + help(1) = 4 lines around the body
	body = strings.TrimRight(truncateToHeight(body, a.height-4), "\n")
	return header + "\n" + body + "\n" + help
}

// dashboardView dispatches on the signed-in role. Unknown roles get a
// fallback instead of a crash; the API may grow roles this build does not
// know about.
func (a App) dashboardView() (body, help string) {
	user := a.session.User()
	if user == nil {
		return "\n " + dimStyle.Render("loading profile..."), " " + helpEntry("ctrl+c", "quit")
	}
	switch user.Role {
	case domain.RoleDriver:
		return a.driver.View(), " " + a.driver.helpKeys()
	case domain.RoleProvider:
		return a.provider.View(), " " + a.provider.helpKeys()
	case domain.RoleAttendant:
		return a.attendant.View(), " " + a.attendant.helpKeys()
	case domain.RoleAdmin:
		return a.admin.View(), " " + a.admin.helpKeys()
	default:
		body = "\n " + dimStyle.Render("no terminal dashboard for role ") +
			RoleStyle(user.Role).Render(string(user.Role)) +
			"\n " + dimStyle.Render("press o to open the web dashboard")
		return body, " " + helpEntry("n", "notifications") + "  " + helpEntry("o", "web") + "  " + helpEntry("q", "quit")
	}
}
