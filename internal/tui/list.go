package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"

	"github.com/zarlcorp/zpersona/internal/identity"
)

// listModel displays the history newest first.
type listModel struct {
	records     []identity.Record
	starredOnly bool
	cursor      int
	flash       string
}

// viewRecordMsg requests the detail view for a record.
type viewRecordMsg struct {
	record identity.Record
}

// toggleStarMsg flips the starred flag of a record.
type toggleStarMsg struct {
	id string
}

// deleteRecordMsg removes a record from the history.
type deleteRecordMsg struct {
	id string
}

// filterListMsg switches between all and starred records.
type filterListMsg struct {
	starredOnly bool
}

func newListModel(records []identity.Record, starredOnly bool) listModel {
	return listModel{records: records, starredOnly: starredOnly}
}

func (m listModel) Init() tea.Cmd {
	return nil
}

func (m listModel) Update(msg tea.Msg) (listModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m, nil
}

func (m listModel) handleKey(msg tea.KeyMsg) (listModel, tea.Cmd) {
	if key.Matches(msg, zstyle.KeyQuit) {
		return m, tea.Quit
	}

	if key.Matches(msg, zstyle.KeyBack) {
		return m, func() tea.Msg { return navigateMsg{view: viewMenu} }
	}

	switch msg.String() {
	case "f":
		starred := !m.starredOnly
		return m, func() tea.Msg { return filterListMsg{starredOnly: starred} }
	case "e":
		return m, func() tea.Msg { return navigateMsg{view: viewExport} }
	}

	if len(m.records) == 0 {
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyUp) {
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyDown) {
		if m.cursor < len(m.records)-1 {
			m.cursor++
		}
		return m, nil
	}

	r := m.records[m.cursor]

	if key.Matches(msg, zstyle.KeyEnter) {
		return m, func() tea.Msg { return viewRecordMsg{record: r} }
	}

	switch msg.String() {
	case "s":
		return m, func() tea.Msg { return toggleStarMsg{id: r.ID} }
	case "d":
		return m, func() tea.Msg { return deleteRecordMsg{id: r.ID} }
	}

	return m, nil
}

func (m listModel) View() string {
	accentStyle := lipgloss.NewStyle().Foreground(accent).Bold(true)

	s := "\n"
	if m.starredOnly {
		s += "  " + zstyle.Subtitle.Render("starred") + "\n\n"
	}

	if len(m.records) == 0 {
		s += "  " + zstyle.MutedText.Render("no saved identities") + "\n"
		s += "\n"
		if m.flash != "" {
			s += "  " + zstyle.StatusOK.Render(m.flash) + "\n"
		} else {
			s += "\n"
		}
		return s
	}

	for i, r := range m.records {
		star := " "
		if r.Starred {
			star = "*"
		}
		line := fmt.Sprintf("%s %-22s %-18s %-14s %s",
			star,
			truncate(r.Identity.FullName(), 22),
			truncate(r.Identity.Phone, 18),
			truncate(r.Address.City, 14),
			zstyle.MutedText.Render(r.Created().Local().Format("2006-01-02 15:04")),
		)

		if i == m.cursor {
			s += "  " + accentStyle.Render("▸") + " " + line + "\n"
		} else {
			s += "    " + line + "\n"
		}
	}

	s += "\n"

	// always reserve a line for flash to prevent layout shift
	if m.flash != "" {
		s += "  " + zstyle.StatusOK.Render(m.flash) + "\n"
	} else {
		s += "\n"
	}

	return s
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
