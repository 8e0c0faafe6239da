package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/advancepark/parkterm/internal/session"
)

type loginField int

const (
	loginFieldUsername loginField = iota
	loginFieldPassword
	loginFieldSubmit
	loginFieldRegister
	numLoginFields
)

// authResultMsg carries the outcome of a login or register attempt. The
// root model watches it to switch views.
type authResultMsg struct {
	err error
}

// gotoRegisterMsg switches the root model to the register form.
type gotoRegisterMsg struct{}

type loginModel struct {
	session    *session.Manager
	username   string
	password   string
	focus      loginField
	submitting bool
	errMsg     string
	width      int
	height     int
}

func newLoginModel(s *session.Manager) loginModel {
	return loginModel{session: s}
}

func (m loginModel) Init() tea.Cmd {
	return nil
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case authResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		} else {
			m.errMsg = ""
			m.password = ""
		}

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m loginModel) handleKey(msg tea.KeyMsg) (loginModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	switch msg.String() {
	case "tab", "down":
		m.focus = (m.focus + 1) % numLoginFields
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + numLoginFields) % numLoginFields
	case "enter":
		switch m.focus {
		case loginFieldUsername:
			m.focus = loginFieldPassword
		case loginFieldPassword, loginFieldSubmit:
			return m.submit()
		case loginFieldRegister:
			return m, func() tea.Msg { return gotoRegisterMsg{} }
		}
	case "backspace":
		switch m.focus {
		case loginFieldUsername:
			m.username = editRune(m.username, "backspace")
		case loginFieldPassword:
			m.password = editRune(m.password, "backspace")
		}
	default:
		key := msg.String()
		switch m.focus {
		case loginFieldUsername:
			m.username = editRune(m.username, key)
		case loginFieldPassword:
			m.password = editRune(m.password, key)
		}
	}
	return m, nil
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	username := strings.TrimSpace(m.username)
	if username == "" || m.password == "" {
		m.errMsg = "username and password are required"
		return m, nil
	}
	m.submitting = true
	m.errMsg = ""
	s := m.session
	password := m.password
	return m, func() tea.Msg {
		err := s.Login(context.Background(), username, password)
		return authResultMsg{err: err}
	}
}

func (m loginModel) View() string {
	var b strings.Builder

	b.WriteString("\n " + selectedStyle.Render("Sign in") + "\n\n")

	rows := []struct {
		field loginField
		label string
		value string
	}{
		{loginFieldUsername, "username", m.username},
		{loginFieldPassword, "password", strings.Repeat("•", len([]rune(m.password)))},
	}
	for _, row := range rows {
		cursor := " "
		style := metaStyle
		if row.field == m.focus {
			cursor = ">"
			style = selectedStyle
		}
		value := row.value
		if row.field == m.focus {
			value += "█"
		}
		fmt.Fprintf(&b, " %s %s: %s\n", cursor, style.Render(fmt.Sprintf("%-8s", row.label)), value)
	}

	b.WriteString("\n")
	submitLabel := "[ sign in ]"
	if m.focus == loginFieldSubmit {
		b.WriteString(" > " + accentStyle.Render(submitLabel) + "\n")
	} else {
		b.WriteString("   " + metaStyle.Render(submitLabel) + "\n")
	}
	registerLabel := "[ create an account ]"
	if m.focus == loginFieldRegister {
		b.WriteString(" > " + accentStyle.Render(registerLabel) + "\n")
	} else {
		b.WriteString("   " + metaStyle.Render(registerLabel) + "\n")
	}

	b.WriteString("\n")
	if m.submitting {
		b.WriteString(" " + dimStyle.Render("signing in..."))
	} else if m.errMsg != "" {
		b.WriteString(" " + errorStyle.Render(m.errMsg))
	}
	return b.String()
}

func (m loginModel) helpKeys() string {
	return helpEntry("tab", "next") + "  " + helpEntry("enter", "submit") + "  " + helpEntry("ctrl+c", "quit")
}
