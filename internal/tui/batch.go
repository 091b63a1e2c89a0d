package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"

	"github.com/zarlcorp/zpersona/internal/batch"
	"github.com/zarlcorp/zpersona/internal/identity"
)

// form positions before the country toggles
const (
	bfCount = iota
	bfAddress
	bfEmail
	bfFieldCount
)

// batchModel collects batch options, runs the engine and reports progress.
type batchModel struct {
	engine    *batch.Engine
	count     textinput.Model
	countries []identity.Country
	selected  map[string]bool
	address   bool
	email     bool
	focus     int

	running  bool
	done     int
	total    int
	cancel   context.CancelFunc
	events   <-chan tea.Msg
	problems []string
	result   string
	flash    string
}

// batchProgressMsg reports finished iterations of a running batch.
type batchProgressMsg struct {
	done, total int
}

// batchDoneMsg ends a batch. err is the context error when cancelled.
type batchDoneMsg struct {
	records []identity.Record
	err     error
}

func newBatchModel(engine *batch.Engine, country string) batchModel {
	ti := textinput.New()
	ti.CharLimit = 3
	ti.Width = 5
	ti.SetValue("10")
	ti.Focus()

	return batchModel{
		engine:    engine,
		count:     ti,
		countries: identity.SupportedCountries(),
		selected:  map[string]bool{country: true},
		address:   true,
	}
}

func (m batchModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m batchModel) totalFields() int {
	return bfFieldCount + len(m.countries)
}

func (m batchModel) Update(msg tea.Msg) (batchModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.running {
			return m.handleRunningKey(msg)
		}
		return m.handleKey(msg)

	case batchProgressMsg:
		m.done, m.total = msg.done, msg.total
		return m, waitForBatch(m.events)

	case batchDoneMsg:
		return m.finish(msg)

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	if m.focus == bfCount {
		var cmd tea.Cmd
		m.count, cmd = m.count.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m batchModel) handleRunningKey(msg tea.KeyMsg) (batchModel, tea.Cmd) {
	if key.Matches(msg, zstyle.KeyQuit) {
		m.cancel()
		return m, tea.Quit
	}
	if key.Matches(msg, zstyle.KeyBack) {
		// the engine stops between records and reports what it made
		m.cancel()
	}
	return m, nil
}

func (m batchModel) handleKey(msg tea.KeyMsg) (batchModel, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC || (m.focus != bfCount && key.Matches(msg, zstyle.KeyQuit)) {
		return m, tea.Quit
	}

	if key.Matches(msg, zstyle.KeyBack) {
		return m, func() tea.Msg { return navigateMsg{view: viewMenu} }
	}

	if key.Matches(msg, zstyle.KeyTab) || msg.Type == tea.KeyDown {
		return m.moveFocus(1), nil
	}

	if msg.Type == tea.KeyShiftTab || msg.Type == tea.KeyUp {
		return m.moveFocus(-1), nil
	}

	if msg.String() == "ctrl+s" {
		return m.start()
	}

	if key.Matches(msg, zstyle.KeyEnter) || (msg.Type == tea.KeySpace && m.focus != bfCount) {
		switch {
		case m.focus == bfCount:
			return m.moveFocus(1), nil
		case m.focus == bfAddress:
			m.address = !m.address
		case m.focus == bfEmail:
			m.email = !m.email
		default:
			code := m.countries[m.focus-bfFieldCount].Code
			m.selected[code] = !m.selected[code]
		}
		m.problems = nil
		return m, nil
	}

	if m.focus != bfCount {
		return m, nil
	}

	// count accepts digits only
	if msg.Type == tea.KeyRunes {
		for _, r := range msg.Runes {
			if r < '0' || r > '9' {
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.count, cmd = m.count.Update(msg)
	m.problems = nil
	return m, cmd
}

func (m batchModel) moveFocus(delta int) batchModel {
	n := m.totalFields()
	m.focus = (m.focus + delta + n) % n
	if m.focus == bfCount {
		m.count.Focus()
	} else {
		m.count.Blur()
	}
	return m
}

// selectedCodes returns the chosen countries in table order.
func (m batchModel) selectedCodes() []string {
	var codes []string
	for _, c := range m.countries {
		if m.selected[c.Code] {
			codes = append(codes, c.Code)
		}
	}
	return codes
}

func (m batchModel) options() batch.Options {
	n, err := strconv.Atoi(strings.TrimSpace(m.count.Value()))
	if err != nil {
		n = 0
	}
	return batch.Options{
		Count:          n,
		Countries:      m.selectedCodes(),
		IncludeAddress: m.address,
		IncludeEmail:   m.email,
	}
}

func (m batchModel) start() (batchModel, tea.Cmd) {
	opts := m.options()
	if err := batch.Validate(opts); err != nil {
		var verr *batch.ValidationError
		if errors.As(err, &verr) {
			m.problems = verr.Problems
		} else {
			m.problems = []string{err.Error()}
		}
		return m, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	// room for every progress event and the result, so the engine never
	// blocks on a slow UI
	events := make(chan tea.Msg, opts.Count+1)
	opts.Progress = func(done, total int) {
		events <- batchProgressMsg{done: done, total: total}
	}

	engine := m.engine
	go func() {
		recs, err := engine.Generate(ctx, opts)
		events <- batchDoneMsg{records: recs, err: err}
	}()

	m.running = true
	m.done, m.total = 0, opts.Count
	m.cancel = cancel
	m.events = events
	m.problems = nil
	m.result = ""
	m.count.Blur()
	return m, waitForBatch(events)
}

func waitForBatch(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

func (m batchModel) finish(msg batchDoneMsg) (batchModel, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
	}
	m.running = false
	m.events = nil
	if m.focus == bfCount {
		m.count.Focus()
	}

	n := len(msg.records)
	switch {
	case errors.Is(msg.err, context.Canceled):
		m.result = fmt.Sprintf("cancelled after %d of %d records", n, m.total)
	case msg.err != nil:
		m.result = "batch failed: " + msg.err.Error()
	default:
		m.result = fmt.Sprintf("generated %d of %d records", n, m.total)
	}

	if n == 0 {
		return m, nil
	}
	recs := msg.records
	return m, func() tea.Msg { return saveRecordsMsg{records: recs} }
}

func (m batchModel) View() string {
	s := "\n"

	label := zstyle.MutedText.Render(fmt.Sprintf("%-10s", "count"))
	s += m.line(bfCount, label+" "+m.count.View()+zstyle.MutedText.Render(fmt.Sprintf("  %d-%d", batch.MinCount, batch.MaxCount)))
	s += m.line(bfAddress, checkbox(m.address)+" look up addresses")
	s += m.line(bfEmail, checkbox(m.email)+" attach email addresses")

	s += "\n  " + zstyle.Subtitle.Render("countries") + "\n"
	for i, c := range m.countries {
		s += m.line(bfFieldCount+i, fmt.Sprintf("%s %s  %s", checkbox(m.selected[c.Code]), c.Code, c.Name))
	}

	s += "\n"
	switch {
	case m.running:
		s += "  " + zstyle.StatusWarn.Render(fmt.Sprintf("generating %d/%d...", m.done, m.total)) + "\n"
	case len(m.problems) > 0:
		for _, p := range m.problems {
			s += "  " + zstyle.StatusErr.Render(p) + "\n"
		}
	case m.result != "":
		s += "  " + zstyle.StatusOK.Render(m.result) + "\n"
	default:
		s += "\n"
	}

	// always reserve a line for flash to prevent layout shift
	if m.flash != "" {
		s += "  " + zstyle.StatusOK.Render(m.flash) + "\n"
	} else {
		s += "\n"
	}
	return s
}

func (m batchModel) line(pos int, text string) string {
	if pos == m.focus && !m.running {
		return zstyle.Highlight.Render("  > ") + text + "\n"
	}
	return "    " + text + "\n"
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}
