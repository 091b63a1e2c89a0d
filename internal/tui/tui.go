// Package tui implements the root Bubble Tea model for zpersona.
package tui

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/core/pkg/zstore"
	"github.com/zarlcorp/core/pkg/zstyle"

	"github.com/zarlcorp/zpersona/internal/batch"
	"github.com/zarlcorp/zpersona/internal/export"
	"github.com/zarlcorp/zpersona/internal/history"
	"github.com/zarlcorp/zpersona/internal/identity"
	"github.com/zarlcorp/zpersona/internal/mail"
)

type viewID int

const (
	viewPassword viewID = iota
	viewMenu
	viewGenerate
	viewBatch
	viewList
	viewDetail
	viewExport
)

var accent = zstyle.ZburnAccent

// Options configures the root model.
type Options struct {
	Version  string
	DataDir  string
	FirstRun bool

	// Engine generates records. Nil uses an offline engine.
	Engine         *batch.Engine
	DefaultCountry string
	Logger         *slog.Logger

	// ExportDir receives exported files. Empty means the working directory.
	ExportDir string
	Now       func() time.Time
}

// Model is the root TUI model.
type Model struct {
	opts    Options
	store   *zstore.Store
	history *history.History
	emails  *mail.Generator

	active   viewID
	password passwordModel
	menu     menuModel
	generate generateModel
	batch    batchModel
	list     listModel
	detail   detailModel
	export   exportModel

	// terminal dimensions
	width  int
	height int
}

// New creates the root TUI model.
func New(opts Options) Model {
	if opts.Engine == nil {
		opts.Engine = batch.New()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DefaultCountry == "" {
		opts.DefaultCountry = "US"
	}

	return Model{
		opts:     opts,
		emails:   mail.NewGenerator(nil),
		active:   viewPassword,
		password: newPasswordModel(opts.FirstRun),
		menu:     newMenuModel(opts.Version),
	}
}

func (m Model) Init() tea.Cmd {
	return m.password.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case passwordSubmitMsg:
		return m.openStore(msg.password)

	case navigateMsg:
		return m.navigate(msg.view)

	case saveRecordsMsg:
		return m.handleSave(msg.records)

	case toggleStarMsg:
		return m.handleStar(msg.id)

	case deleteRecordMsg:
		return m.handleDelete(msg.id)

	case viewRecordMsg:
		m.detail = newDetailModel(msg.record)
		m.active = viewDetail
		return m, nil

	case filterListMsg:
		m.list.starredOnly = msg.starredOnly
		return m.loadList()

	case exportMsg:
		return m.handleExport(msg.format)

	case quickEmailMsg:
		return m.handleQuickEmail()
	}

	return m.updateActive(msg)
}

func (m Model) View() string {
	// password and menu include the logo, render directly
	switch m.active {
	case viewPassword:
		return m.password.View()
	case viewMenu:
		return m.menu.View()
	}

	var content string
	switch m.active {
	case viewGenerate:
		content = m.generate.View()
	case viewBatch:
		content = m.batch.View()
	case viewList:
		content = m.list.View()
	case viewDetail:
		content = m.detail.View()
	case viewExport:
		content = m.export.View()
	}

	header := zstyle.RenderHeader("zpersona", viewTitle(m.active), accent)
	sep := zstyle.RenderSeparator(m.width)
	footer := zstyle.RenderFooter(helpFor(m.active))

	return "\n" + header + "\n" + sep + "\n" + content + "\n" + footer + "\n"
}

func viewTitle(id viewID) string {
	switch id {
	case viewGenerate:
		return "Generate Identity"
	case viewBatch:
		return "Batch Generate"
	case viewList:
		return "History"
	case viewDetail:
		return "Record"
	case viewExport:
		return "Export"
	}
	return ""
}

// helpFor returns keybinding pairs for each view's footer.
func helpFor(id viewID) []zstyle.HelpPair {
	switch id {
	case viewGenerate:
		return []zstyle.HelpPair{
			{Key: "s", Desc: "save"},
			{Key: "c", Desc: "copy all"},
			{Key: "enter", Desc: "copy field"},
			{Key: "n", Desc: "new"},
			{Key: "←/→", Desc: "country"},
			{Key: "a", Desc: "address"},
			{Key: "esc", Desc: "back"},
		}
	case viewBatch:
		return []zstyle.HelpPair{
			{Key: "tab", Desc: "next"},
			{Key: "enter", Desc: "toggle"},
			{Key: "ctrl+s", Desc: "generate"},
			{Key: "esc", Desc: "back/cancel"},
		}
	case viewList:
		return []zstyle.HelpPair{
			{Key: "j/k", Desc: "navigate"},
			{Key: "enter", Desc: "view"},
			{Key: "s", Desc: "star"},
			{Key: "f", Desc: "starred only"},
			{Key: "d", Desc: "delete"},
			{Key: "e", Desc: "export"},
			{Key: "esc", Desc: "back"},
		}
	case viewDetail:
		return []zstyle.HelpPair{
			{Key: "enter", Desc: "copy field"},
			{Key: "c", Desc: "copy all"},
			{Key: "s", Desc: "star"},
			{Key: "d", Desc: "delete"},
			{Key: "esc", Desc: "back"},
		}
	case viewExport:
		return []zstyle.HelpPair{
			{Key: "j/k", Desc: "navigate"},
			{Key: "enter", Desc: "export"},
			{Key: "esc", Desc: "back"},
		}
	}
	return nil
}

func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.active {
	case viewPassword:
		m.password, cmd = m.password.Update(msg)
	case viewMenu:
		m.menu, cmd = m.menu.Update(msg)
	case viewGenerate:
		m.generate, cmd = m.generate.Update(msg)
	case viewBatch:
		m.batch, cmd = m.batch.Update(msg)
	case viewList:
		m.list, cmd = m.list.Update(msg)
	case viewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case viewExport:
		m.export, cmd = m.export.Update(msg)
	}

	return m, cmd
}

func (m Model) openStore(password string) (tea.Model, tea.Cmd) {
	if err := os.MkdirAll(m.opts.DataDir, 0o700); err != nil {
		m.password, _ = m.password.Update(passwordErrMsg{
			err: fmt.Errorf("create data dir: %w", err),
		})
		return m, nil
	}

	s, err := zstore.Open(zfilesystem.NewOSFileSystem(m.opts.DataDir), []byte(password))
	if err != nil {
		m.password, _ = m.password.Update(passwordErrMsg{err: err})
		return m, nil
	}

	h, err := history.Open(s)
	if err != nil {
		s.Close()
		m.password, _ = m.password.Update(passwordErrMsg{err: err})
		return m, nil
	}

	m.store = s
	m.history = h
	return m.navigate(viewMenu)
}

func (m Model) navigate(view viewID) (tea.Model, tea.Cmd) {
	switch view {
	case viewMenu:
		mm := newMenuModel(m.opts.Version)
		mm.cursor = m.menu.cursor
		if m.history != nil {
			if recs, err := m.history.List(); err == nil {
				mm.saved = len(recs)
			}
		}
		m.menu = mm
		m.active = viewMenu
		return m, tea.ClearScreen

	case viewGenerate:
		m.generate = newGenerateModel(m.opts.Engine, m.opts.DefaultCountry)
		m.active = viewGenerate
		return m, tea.Batch(tea.ClearScreen, m.generate.Init())

	case viewBatch:
		m.batch = newBatchModel(m.opts.Engine, m.opts.DefaultCountry)
		m.active = viewBatch
		return m, tea.Batch(tea.ClearScreen, m.batch.Init())

	case viewList:
		m, cmd := m.loadList()
		return m, tea.Batch(cmd, tea.ClearScreen)

	case viewDetail:
		m.active = viewDetail
		return m, tea.ClearScreen

	case viewExport:
		m.export = newExportModel(len(m.list.records), m.list.starredOnly, m.exportDir())
		m.active = viewExport
		return m, tea.ClearScreen
	}

	return m, nil
}

// records returns the history filtered the way the list shows it.
func (m Model) records() ([]identity.Record, error) {
	if m.list.starredOnly {
		return m.history.Starred()
	}
	return m.history.List()
}

func (m Model) loadList() (tea.Model, tea.Cmd) {
	starred := m.list.starredOnly
	cursor := m.list.cursor

	recs, err := m.records()
	if err != nil {
		m.list = newListModel(nil, starred)
		m.active = viewList
		return m.flash("load: " + err.Error())
	}

	m.list = newListModel(recs, starred)
	m.list.cursor = min(cursor, max(len(recs)-1, 0))
	m.active = viewList
	return m, nil
}

// flash shows a transient status line on the active view.
func (m Model) flash(s string) (tea.Model, tea.Cmd) {
	switch m.active {
	case viewMenu:
		m.menu.flash = s
	case viewGenerate:
		m.generate.flash = s
	case viewBatch:
		m.batch.flash = s
	case viewList:
		m.list.flash = s
	case viewDetail:
		m.detail.flash = s
	case viewExport:
		m.export.flash = s
	}
	return m, clearFlashAfter()
}

func (m Model) handleSave(records []identity.Record) (tea.Model, tea.Cmd) {
	if err := m.history.Add(records...); err != nil {
		m.opts.Logger.Error("save records", "err", err)
		return m.flash("save: " + err.Error())
	}
	if len(records) == 1 {
		return m.flash("saved")
	}
	return m.flash(fmt.Sprintf("saved %d records", len(records)))
}

func (m Model) handleStar(id string) (tea.Model, tea.Cmd) {
	r, err := m.history.ToggleStar(id)
	if err != nil {
		return m.flash("star: " + err.Error())
	}

	status := "unstarred"
	if r.Starred {
		status = "starred"
	}

	if m.active == viewDetail {
		m.detail = newDetailModel(r)
		return m.flash(status)
	}

	next, _ := m.loadList()
	return next.(Model).flash(status)
}

func (m Model) handleDelete(id string) (tea.Model, tea.Cmd) {
	if err := m.history.Remove(id); err != nil {
		return m.flash("delete: " + err.Error())
	}

	// deleting from detail goes back to the list
	next, _ := m.loadList()
	return next.(Model).flash("deleted")
}

func (m Model) exportDir() string {
	if m.opts.ExportDir != "" {
		return m.opts.ExportDir
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func (m Model) handleExport(f export.Format) (tea.Model, tea.Cmd) {
	recs, err := m.records()
	if err != nil {
		return m.flash("export: " + err.Error())
	}

	data, err := export.Encoder{Now: m.opts.Now}.Encode(recs, f)
	if err != nil {
		return m.flash("export: " + err.Error())
	}

	path := filepath.Join(m.exportDir(), export.FileName(f, m.opts.Now()))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return m.flash("export: " + err.Error())
	}

	m.opts.Logger.Info("history exported", "format", f, "records", len(recs), "path", path)
	return m.flash(fmt.Sprintf("wrote %d records to %s", len(recs), path))
}

func (m Model) handleQuickEmail() (tea.Model, tea.Cmd) {
	email := m.emails.Email()
	if err := copyToClipboard(email); err != nil {
		return m.flash(email + "  (copy: " + err.Error() + ")")
	}
	return m.flash("copied " + email)
}

// Close cleans up resources. Call after the program exits.
func (m Model) Close() {
	if m.store != nil {
		m.store.Close()
	}
}
