package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"

	"github.com/zarlcorp/zpersona/internal/identity"
)

// detailModel displays all fields of a saved record.
type detailModel struct {
	record identity.Record
	fields []recordField
	cursor int
	flash  string
}

func newDetailModel(r identity.Record) detailModel {
	fs := append(recordFields(r), recordField{
		label: "created",
		value: r.Created().Local().Format("2006-01-02 15:04:05"),
	})
	return detailModel{record: r, fields: fs}
}

func (m detailModel) Init() tea.Cmd {
	return nil
}

func (m detailModel) Update(msg tea.Msg) (detailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m, nil
}

func (m detailModel) handleKey(msg tea.KeyMsg) (detailModel, tea.Cmd) {
	if key.Matches(msg, zstyle.KeyQuit) {
		return m, tea.Quit
	}

	if key.Matches(msg, zstyle.KeyBack) {
		return m, func() tea.Msg { return navigateMsg{view: viewList} }
	}

	if key.Matches(msg, zstyle.KeyUp) {
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyDown) {
		if m.cursor < len(m.fields)-1 {
			m.cursor++
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyEnter) {
		if err := copyToClipboard(m.fields[m.cursor].value); err != nil {
			m.flash = "copy: " + err.Error()
			return m, clearFlashAfter()
		}
		m.flash = "copied!"
		return m, clearFlashAfter()
	}

	id := m.record.ID
	switch msg.String() {
	case "c":
		if err := copyToClipboard(fieldsText(m.fields)); err != nil {
			m.flash = "copy: " + err.Error()
			return m, clearFlashAfter()
		}
		m.flash = "copied all!"
		return m, clearFlashAfter()

	case "s":
		return m, func() tea.Msg { return toggleStarMsg{id: id} }

	case "d":
		return m, func() tea.Msg { return deleteRecordMsg{id: id} }
	}

	return m, nil
}

func (m detailModel) View() string {
	name := m.record.Identity.FullName()
	if m.record.Starred {
		name += " *"
	}
	s := "\n  " + zstyle.Subtitle.Render(name) + "\n"
	s += "  " + zstyle.MutedText.Render(m.record.ID) + "\n\n"

	s += renderFields(m.fields, m.cursor)
	s += "\n"

	// always reserve a line for flash to prevent layout shift
	if m.flash != "" {
		s += "  " + zstyle.StatusOK.Render(m.flash) + "\n"
	} else {
		s += "\n"
	}

	return s
}
