package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"

	"github.com/zarlcorp/zpersona/internal/batch"
	"github.com/zarlcorp/zpersona/internal/identity"
)

// recordField is a labeled value for display and copying. The note is
// shown beside the value but never copied.
type recordField struct {
	label string
	value string
	note  string
}

func recordFields(r identity.Record) []recordField {
	id := r.Identity
	fs := []recordField{
		{label: "name", value: id.FullName()},
		{label: "phone", value: id.Phone},
		{label: strings.ToLower(id.NationalID.Label), value: id.NationalID.Value},
	}

	if id.Enhanced() {
		var age string
		if n, err := identity.Age(id.Birthday); err == nil {
			age = fmt.Sprintf("age %d", n)
		}
		fs = append(fs,
			recordField{label: "birthday", value: id.Birthday, note: age},
			recordField{label: "blood type", value: id.BloodType},
			recordField{label: "occupation", value: id.Occupation},
			recordField{label: "education", value: id.Education},
			recordField{label: "card", value: id.CreditCard, note: identity.CardBrand(id.CreditCard)},
		)
	}

	if r.Email != "" {
		fs = append(fs, recordField{label: "email", value: r.Email})
	}
	if !r.Address.IsZero() {
		fs = append(fs, recordField{label: "address", value: strings.Join(r.Address.Parts(), ", ")})
	}
	fs = append(fs, recordField{label: "ip", value: r.NetworkIdentifier})
	return fs
}

func fieldsText(fs []recordField) string {
	var b strings.Builder
	for _, f := range fs {
		fmt.Fprintf(&b, "%s: %s\n", f.label, f.value)
	}
	return b.String()
}

func renderFields(fs []recordField, cursor int) string {
	var s string
	for i, f := range fs {
		label := zstyle.MutedText.Render(fmt.Sprintf("%-12s", truncate(f.label, 12)))
		line := label + " " + f.value
		if f.note != "" {
			line += "  " + zstyle.MutedText.Render(f.note)
		}
		if i == cursor {
			s += "  " + zstyle.Highlight.Render(">") + " " + line + "\n"
		} else {
			s += "    " + line + "\n"
		}
	}
	return s
}

// generateModel shows one freshly generated record. Generation runs off the
// update loop since the providers are remote.
type generateModel struct {
	engine    *batch.Engine
	countries []identity.Country
	country   int
	address   bool

	seq     int
	loading bool
	record  identity.Record
	fields  []recordField
	cursor  int
	err     string
	flash   string
}

// generatedMsg carries the result of one generation request.
type generatedMsg struct {
	seq    int
	record identity.Record
	err    error
}

// saveRecordsMsg asks the root to add records to the history.
type saveRecordsMsg struct {
	records []identity.Record
}

// flashMsg clears the flash after a timeout.
type flashMsg struct{}

func newGenerateModel(engine *batch.Engine, country string) generateModel {
	cs := identity.SupportedCountries()
	idx := 0
	for i, c := range cs {
		if c.Code == country {
			idx = i
			break
		}
	}
	return generateModel{
		engine:    engine,
		countries: cs,
		country:   idx,
		address:   true,
		loading:   true,
		seq:       1,
	}
}

func (m generateModel) Init() tea.Cmd {
	return m.request()
}

func (m generateModel) request() tea.Cmd {
	engine, seq := m.engine, m.seq
	req := batch.Request{
		Country:        m.countries[m.country].Code,
		IncludeAddress: m.address,
		IncludeEmail:   true,
	}
	return func() tea.Msg {
		rec, err := engine.Single(context.Background(), req)
		return generatedMsg{seq: seq, record: rec, err: err}
	}
}

// regenerate starts a new request; results of older ones are dropped.
func (m generateModel) regenerate() (generateModel, tea.Cmd) {
	m.seq++
	m.loading = true
	m.err = ""
	return m, m.request()
}

func (m generateModel) Update(msg tea.Msg) (generateModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case generatedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, nil
		}
		m.record = msg.record
		m.fields = recordFields(msg.record)
		m.cursor = 0
		return m, nil

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m, nil
}

func (m generateModel) handleKey(msg tea.KeyMsg) (generateModel, tea.Cmd) {
	if key.Matches(msg, zstyle.KeyQuit) {
		return m, tea.Quit
	}

	if key.Matches(msg, zstyle.KeyBack) {
		return m, func() tea.Msg { return navigateMsg{view: viewMenu} }
	}

	switch msg.Type {
	case tea.KeyLeft:
		m.country = (m.country + len(m.countries) - 1) % len(m.countries)
		return m.regenerate()
	case tea.KeyRight:
		m.country = (m.country + 1) % len(m.countries)
		return m.regenerate()
	}

	switch msg.String() {
	case "n":
		return m.regenerate()
	case "a":
		m.address = !m.address
		return m.regenerate()
	}

	// the rest act on a finished record
	if m.loading || m.record.ID == "" {
		return m, nil
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
			return m.setFlash("copy: " + err.Error()), clearFlashAfter()
		}
		return m.setFlash("copied!"), clearFlashAfter()
	}

	switch msg.String() {
	case "s":
		rec := m.record
		return m, func() tea.Msg { return saveRecordsMsg{records: []identity.Record{rec}} }

	case "c":
		if err := copyToClipboard(fieldsText(m.fields)); err != nil {
			return m.setFlash("copy: " + err.Error()), clearFlashAfter()
		}
		return m.setFlash("copied all!"), clearFlashAfter()
	}

	return m, nil
}

func (m generateModel) setFlash(msg string) generateModel {
	m.flash = msg
	return m
}

func clearFlashAfter() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return flashMsg{}
	})
}

func (m generateModel) View() string {
	c := m.countries[m.country]
	addr := "off"
	if m.address {
		addr = "on"
	}
	s := fmt.Sprintf("\n  %s  %s\n\n",
		zstyle.Title.Render(c.Name),
		zstyle.MutedText.Render("address "+addr),
	)

	switch {
	case m.loading:
		s += "  " + zstyle.MutedText.Render("generating...") + "\n"
	case m.err != "":
		s += "  " + zstyle.StatusErr.Render(m.err) + "\n"
		s += "  " + zstyle.MutedText.Render("n to retry") + "\n"
	default:
		s += renderFields(m.fields, m.cursor)
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
