package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"

	"github.com/zarlcorp/zpersona/internal/export"
)

var formatLabels = map[export.Format]string{
	export.JSON:    "JSON",
	export.CSV:     "CSV",
	export.Excel:   "Excel spreadsheet",
	export.PDF:     "PDF report",
	export.Parquet: "Parquet",
}

// exportModel picks a format for exporting the history shown in the list.
type exportModel struct {
	cursor      int
	count       int
	starredOnly bool
	dir         string
	flash       string
}

// exportMsg asks the root to export the listed records.
type exportMsg struct {
	format export.Format
}

func newExportModel(count int, starredOnly bool, dir string) exportModel {
	return exportModel{count: count, starredOnly: starredOnly, dir: dir}
}

func (m exportModel) Init() tea.Cmd {
	return nil
}

func (m exportModel) Update(msg tea.Msg) (exportModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
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
			if m.cursor < len(export.Formats)-1 {
				m.cursor++
			}
			return m, nil
		}

		if key.Matches(msg, zstyle.KeyEnter) {
			f := export.Formats[m.cursor]
			return m, func() tea.Msg { return exportMsg{format: f} }
		}

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m, nil
}

func (m exportModel) View() string {
	what := fmt.Sprintf("%d records", m.count)
	if m.starredOnly {
		what = fmt.Sprintf("%d starred records", m.count)
	}
	s := "\n  " + zstyle.Subtitle.Render("export "+what) + "\n"
	s += "  " + zstyle.MutedText.Render("to "+m.dir) + "\n\n"

	for i, f := range export.Formats {
		line := fmt.Sprintf("%-18s %s", formatLabels[f], zstyle.MutedText.Render("."+f.Extension()))
		if i == m.cursor {
			s += zstyle.Highlight.Render("  > ") + line + "\n"
		} else {
			s += "    " + line + "\n"
		}
	}

	s += "\n"
	if m.flash != "" {
		s += "  " + zstyle.StatusOK.Render(m.flash) + "\n"
	} else {
		s += "\n"
	}
	return s
}
