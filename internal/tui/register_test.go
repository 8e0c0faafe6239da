package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/advancepark/parkterm/pkg/domain"
)

func TestRegisterRoleCycles(t *testing.T) {
	m := newRegisterModel(nil)
	m.focus = regFieldRole

	if m.fields[regFieldRole] != string(domain.RoleDriver) {
		t.Fatalf("initial role = %q, want driver", m.fields[regFieldRole])
	}

	m, _ = m.Update(keyMsg("l"))
	if m.fields[regFieldRole] != string(domain.RoleProvider) {
		t.Errorf("role after l = %q, want provider", m.fields[regFieldRole])
	}
	m, _ = m.Update(keyMsg("h"))
	if m.fields[regFieldRole] != string(domain.RoleDriver) {
		t.Errorf("role after h = %q, want driver", m.fields[regFieldRole])
	}
}

func TestRegisterRoleFieldIgnoresText(t *testing.T) {
	m := newRegisterModel(nil)
	m.focus = regFieldRole
	m, _ = m.Update(keyMsg("x"))
	if m.fields[regFieldRole] != string(domain.RoleDriver) {
		t.Errorf("role = %q after stray key, want driver", m.fields[regFieldRole])
	}
}

func TestRegisterEmptySubmitRejectedLocally(t *testing.T) {
	m := newRegisterModel(nil)
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd != nil {
		t.Error("expected no network command for empty submit")
	}
	if m.errMsg == "" {
		t.Error("expected a local validation message")
	}
}

func TestRegisterRendersFieldErrorsInline(t *testing.T) {
	m := newRegisterModel(nil)
	m.submitting = true
	m, _ = m.Update(registerResultMsg{
		err: errTest("validation failed"),
		fieldErrs: map[string][]string{
			"username": {"A user with that username already exists."},
			"password": {"This password is too short."},
		},
	})

	view := m.View()
	if !strings.Contains(view, "A user with that username already exists.") {
		t.Errorf("expected username error inline, got:\n%s", view)
	}
	if !strings.Contains(view, "This password is too short.") {
		t.Errorf("expected password error inline, got:\n%s", view)
	}
	if m.submitting {
		t.Error("submitting flag not cleared")
	}
}

func TestRegisterEscGoesBackToLogin(t *testing.T) {
	m := newRegisterModel(nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected command from esc")
	}
	if _, ok := cmd().(gotoLoginMsg); !ok {
		t.Errorf("cmd produced %T, want gotoLoginMsg", cmd())
	}
}
