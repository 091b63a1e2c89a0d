package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"
)

type pwField int

const (
	pwFieldPassword pwField = iota
	pwFieldConfirm
)

// passwordModel unlocks the history store, or creates it on first run with
// a confirmed password.
type passwordModel struct {
	password textinput.Model
	confirm  textinput.Model
	focused  pwField
	firstRun bool
	errMsg   string
}

// passwordSubmitMsg carries the password to open the store with.
type passwordSubmitMsg struct {
	password string
}

// passwordErrMsg reports a failed unlock.
type passwordErrMsg struct {
	err error
}

func newPasswordInput() textinput.Model {
	ti := textinput.New()
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '*'
	ti.CharLimit = 128
	ti.Width = 40
	return ti
}

func newPasswordModel(firstRun bool) passwordModel {
	m := passwordModel{
		password: newPasswordInput(),
		confirm:  newPasswordInput(),
		firstRun: firstRun,
	}
	m.password.Focus()
	return m
}

func (m passwordModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m passwordModel) Update(msg tea.Msg) (passwordModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// q is a valid password character; only ctrl+c quits here
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		if m.firstRun && (key.Matches(msg, zstyle.KeyTab) || msg.Type == tea.KeyShiftTab) {
			return m.toggleFocus(), nil
		}

		if key.Matches(msg, zstyle.KeyEnter) {
			return m.submit()
		}

		m.errMsg = ""

	case passwordErrMsg:
		m.errMsg = msg.err.Error()
		m.password.SetValue("")
		m.confirm.SetValue("")
		m.focusField(pwFieldPassword)
		return m, nil
	}

	var cmd tea.Cmd
	if m.focused == pwFieldConfirm {
		m.confirm, cmd = m.confirm.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *passwordModel) focusField(f pwField) {
	m.focused = f
	if f == pwFieldConfirm {
		m.password.Blur()
		m.confirm.Focus()
		return
	}
	m.confirm.Blur()
	m.password.Focus()
}

func (m passwordModel) toggleFocus() passwordModel {
	if m.focused == pwFieldPassword {
		m.focusField(pwFieldConfirm)
	} else {
		m.focusField(pwFieldPassword)
	}
	return m
}

func (m passwordModel) submit() (passwordModel, tea.Cmd) {
	pass := m.password.Value()
	if pass == "" {
		m.errMsg = "password cannot be empty"
		m.focusField(pwFieldPassword)
		return m, nil
	}

	if m.firstRun {
		if m.focused == pwFieldPassword {
			m.focusField(pwFieldConfirm)
			return m, nil
		}
		if m.confirm.Value() != pass {
			m.errMsg = "passwords do not match"
			m.confirm.SetValue("")
			return m, nil
		}
	}

	m.errMsg = ""
	return m, func() tea.Msg {
		return passwordSubmitMsg{password: pass}
	}
}

func (m passwordModel) View() string {
	indent := lipgloss.NewStyle().MarginLeft(2)
	logo := indent.Render(zstyle.StyledLogo(lipgloss.NewStyle().Foreground(accent)))
	toolName := indent.Render(zstyle.MutedText.Render("zpersona"))

	s := fmt.Sprintf("\n%s\n%s\n\n", logo, toolName)

	if m.firstRun {
		s += "  " + zstyle.Title.Render("create new store") + "\n"
		s += "  " + zstyle.MutedText.Render("history is encrypted with this password") + "\n\n"
		s += "  " + m.label("password", pwFieldPassword) + m.password.View() + "\n"
		s += "  " + m.label("confirm", pwFieldConfirm) + m.confirm.View() + "\n"
	} else {
		s += "  " + zstyle.Title.Render("unlock store") + "\n"
		s += "  " + zstyle.MutedText.Render("enter your master password") + "\n\n"
		s += "  " + m.label("password", pwFieldPassword) + m.password.View() + "\n"
	}

	if m.errMsg != "" {
		s += "\n  " + zstyle.StatusErr.Render(m.errMsg) + "\n"
	}

	return s + "\n"
}

func (m passwordModel) label(text string, f pwField) string {
	l := fmt.Sprintf("%-10s", text)
	if m.focused == f {
		return zstyle.Highlight.Render(l)
	}
	return zstyle.MutedText.Render(l)
}
