package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/advancepark/parkterm/internal/session"
	"github.com/advancepark/parkterm/pkg/client"
	"github.com/advancepark/parkterm/pkg/domain"
)

type registerField int

const (
	regFieldUsername registerField = iota
	regFieldEmail
	regFieldPassword
	regFieldRole
	numRegisterFields
)

var registerRoles = []domain.Role{domain.RoleDriver, domain.RoleProvider, domain.RoleAttendant}

// registerResultMsg carries the outcome of a register attempt, with
// field-keyed validation errors when the server rejected the form.
type registerResultMsg struct {
	err       error
	fieldErrs map[string][]string
}

// gotoLoginMsg switches the root model back to the sign-in form.
type gotoLoginMsg struct{}

type registerModel struct {
	session    *session.Manager
	fields     [numRegisterFields]string
	roleCycle  int
	focus      registerField
	fieldErrs  map[string][]string
	errMsg     string
	submitting bool
	width      int
	height     int
}

func newRegisterModel(s *session.Manager) registerModel {
	m := registerModel{session: s}
	m.fields[regFieldRole] = string(registerRoles[0])
	return m
}

func (m registerModel) Init() tea.Cmd {
	return nil
}

func (m registerModel) Update(msg tea.Msg) (registerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case registerResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.fieldErrs = msg.fieldErrs
			if len(msg.fieldErrs) == 0 {
				m.errMsg = msg.err.Error()
			} else {
				m.errMsg = ""
			}
		}

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m registerModel) handleKey(msg tea.KeyMsg) (registerModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		return m, func() tea.Msg { return gotoLoginMsg{} }
	case "ctrl+s":
		return m.submit()
	case "tab", "down":
		m.focus = (m.focus + 1) % numRegisterFields
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + numRegisterFields) % numRegisterFields
	case "enter":
		if m.focus == regFieldRole {
			return m.submit()
		}
		m.focus = (m.focus + 1) % numRegisterFields
	case "backspace":
		if m.focus != regFieldRole {
			m.fields[m.focus] = editRune(m.fields[m.focus], "backspace")
		}
	default:
		key := msg.String()
		if m.focus == regFieldRole {
			// Cycle through roles with h/l
			if key == "h" || key == "l" {
				if key == "l" {
					m.roleCycle = (m.roleCycle + 1) % len(registerRoles)
				} else {
					m.roleCycle = (m.roleCycle - 1 + len(registerRoles)) % len(registerRoles)
				}
				m.fields[regFieldRole] = string(registerRoles[m.roleCycle])
			}
			return m, nil
		}
		m.fields[m.focus] = editRune(m.fields[m.focus], key)
	}
	return m, nil
}

func (m registerModel) submit() (registerModel, tea.Cmd) {
	params := client.RegisterParams{
		Username: strings.TrimSpace(m.fields[regFieldUsername]),
		Email:    strings.TrimSpace(m.fields[regFieldEmail]),
		Password: m.fields[regFieldPassword],
		Role:     m.fields[regFieldRole],
	}
	if params.Username == "" || params.Email == "" || params.Password == "" {
		m.errMsg = "all fields are required"
		return m, nil
	}

	m.submitting = true
	m.errMsg = ""
	m.fieldErrs = nil
	s := m.session
	return m, func() tea.Msg {
		err := s.Register(context.Background(), params)
		if err != nil {
			fields, _ := client.FieldErrors(err)
			return registerResultMsg{err: err, fieldErrs: fields}
		}
		return authResultMsg{}
	}
}

func (m registerModel) View() string {
	var b strings.Builder

	b.WriteString("\n " + selectedStyle.Render("Create an account") + "\n\n")

	labels := [numRegisterFields]string{"username", "email", "password", "role"}
	// fieldErrs is keyed by the wire field names, which match the labels
	for i := registerField(0); i < numRegisterFields; i++ {
		cursor := " "
		style := metaStyle
		if i == m.focus {
			cursor = ">"
			style = selectedStyle
		}

		if i == regFieldRole {
			role := domain.Role(m.fields[i])
			fmt.Fprintf(&b, " %s %s: %s  %s\n",
				cursor, style.Render(fmt.Sprintf("%-8s", labels[i])),
				RoleStyle(role).Render(string(role)),
				dimStyle.Render("(h/l to cycle)"))
		} else {
			value := m.fields[i]
			if i == regFieldPassword {
				value = strings.Repeat("•", len([]rune(value)))
			}
			if i == m.focus {
				value += "█"
			}
			fmt.Fprintf(&b, " %s %s: %s\n", cursor, style.Render(fmt.Sprintf("%-8s", labels[i])), value)
		}

		for _, e := range m.fieldErrs[labels[i]] {
			fmt.Fprintf(&b, "   %s\n", errorStyle.Render(e))
		}
	}

	b.WriteString("\n")
	if m.submitting {
		b.WriteString(" " + dimStyle.Render("creating account..."))
	} else if m.errMsg != "" {
		b.WriteString(" " + errorStyle.Render(m.errMsg))
	}
	return b.String()
}

func (m registerModel) helpKeys() string {
	return helpEntry("tab", "next") + "  " + helpEntry("h/l", "role") + "  " + helpEntry("ctrl+s", "submit") + "  " + helpEntry("esc", "back")
}
