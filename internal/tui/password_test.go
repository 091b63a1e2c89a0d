package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

// typeText sends each rune of s as a key press.
func typeText(m passwordModel, s string) passwordModel {
	for _, r := range s {
		m, _ = m.Update(keyMsg(r))
	}
	return m
}

func TestPasswordViewWording(t *testing.T) {
	tests := []struct {
		name     string
		firstRun bool
		want     []string
		absent   []string
	}{
		{
			name:     "first run creates the store",
			firstRun: true,
			want:     []string{"zpersona", "create new store", "history is encrypted with this password", "password", "confirm"},
			absent:   []string{"unlock store"},
		},
		{
			name:   "later runs unlock it",
			want:   []string{"zpersona", "unlock store", "enter your master password", "password"},
			absent: []string{"create new store", "confirm"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := newPasswordModel(tt.firstRun).View()
			for _, w := range tt.want {
				if !strings.Contains(view, w) {
					t.Errorf("view missing %q", w)
				}
			}
			for _, a := range tt.absent {
				if strings.Contains(view, a) {
					t.Errorf("view should not contain %q", a)
				}
			}
		})
	}
}

func TestPasswordSubmit(t *testing.T) {
	tests := []struct {
		name     string
		firstRun bool
		password string
		confirm  string
		wantErr  string
		want     string
	}{
		{name: "unlock", password: "hunter2", want: "hunter2"},
		{name: "unlock empty", wantErr: "password cannot be empty"},
		{name: "create", firstRun: true, password: "s3cret", confirm: "s3cret", want: "s3cret"},
		{name: "create empty", firstRun: true, wantErr: "password cannot be empty"},
		{name: "create mismatch", firstRun: true, password: "s3cret", confirm: "secret", wantErr: "passwords do not match"},
		{name: "create with q", firstRun: true, password: "quiq", confirm: "quiq", want: "quiq"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newPasswordModel(tt.firstRun)
			m = typeText(m, tt.password)

			var cmd tea.Cmd
			m, cmd = m.Update(enterKey())
			if tt.firstRun && tt.password != "" {
				if m.focused != pwFieldConfirm || cmd != nil {
					t.Fatal("enter on the password field should move to confirm")
				}
				m = typeText(m, tt.confirm)
				m, cmd = m.Update(enterKey())
			}

			if tt.wantErr != "" {
				if cmd != nil {
					t.Error("invalid input should not submit")
				}
				if !strings.Contains(m.View(), tt.wantErr) {
					t.Errorf("view missing %q", tt.wantErr)
				}
				return
			}

			if cmd == nil {
				t.Fatal("expected a submit command")
			}
			msg, ok := cmd().(passwordSubmitMsg)
			if !ok || msg.password != tt.want {
				t.Errorf("submitted %+v, want %q", msg, tt.want)
			}
		})
	}
}

func TestPasswordMismatchClearsConfirm(t *testing.T) {
	m := newPasswordModel(true)
	m = typeText(m, "abc")
	m, _ = m.Update(enterKey())
	m = typeText(m, "abd")
	m, _ = m.Update(enterKey())

	if m.confirm.Value() != "" {
		t.Errorf("confirm = %q, want cleared", m.confirm.Value())
	}
	if m.password.Value() != "abc" {
		t.Errorf("password = %q, want kept", m.password.Value())
	}
	if m.focused != pwFieldConfirm {
		t.Error("focus should stay on confirm after a mismatch")
	}
}

func TestPasswordFocusKeys(t *testing.T) {
	tests := []struct {
		name     string
		firstRun bool
		key      tea.KeyType
		want     pwField
	}{
		{"tab on create", true, tea.KeyTab, pwFieldConfirm},
		{"shift+tab on create", true, tea.KeyShiftTab, pwFieldConfirm},
		{"tab on unlock", false, tea.KeyTab, pwFieldPassword},
		{"shift+tab on unlock", false, tea.KeyShiftTab, pwFieldPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newPasswordModel(tt.firstRun)
			m, _ = m.Update(specialKey(tt.key))
			if m.focused != tt.want {
				t.Errorf("focused = %d, want %d", m.focused, tt.want)
			}
		})
	}
}

func TestPasswordTypingFollowsFocus(t *testing.T) {
	m := newPasswordModel(true)
	m = typeText(m, "ab")
	m, _ = m.Update(specialKey(tea.KeyTab))
	m = typeText(m, "cd")
	m, _ = m.Update(specialKey(tea.KeyShiftTab))
	m = typeText(m, "e")

	if m.password.Value() != "abe" || m.confirm.Value() != "cd" {
		t.Errorf("password %q confirm %q", m.password.Value(), m.confirm.Value())
	}
}

func TestPasswordQuitKeys(t *testing.T) {
	m := newPasswordModel(false)

	// q is a password character
	m, _ = m.Update(keyMsg('q'))
	if m.password.Value() != "q" {
		t.Errorf("password = %q, want q", m.password.Value())
	}

	_, cmd := m.Update(specialKey(tea.KeyCtrlC))
	if !isQuit(cmd) {
		t.Error("ctrl+c should quit")
	}
}

func TestPasswordStoreError(t *testing.T) {
	m := newPasswordModel(true)
	m = typeText(m, "secret")
	m, _ = m.Update(enterKey())
	m = typeText(m, "secret")

	m, _ = m.Update(passwordErrMsg{err: errTest("wrong password")})

	if !strings.Contains(m.View(), "wrong password") {
		t.Error("view should show the store error")
	}
	if m.password.Value() != "" || m.confirm.Value() != "" {
		t.Error("both fields should be cleared")
	}
	if m.focused != pwFieldPassword {
		t.Error("focus should return to password")
	}

	// typing again dismisses the error
	m = typeText(m, "x")
	if strings.Contains(m.View(), "wrong password") {
		t.Error("error should clear on input")
	}
}
