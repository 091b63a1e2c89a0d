package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/zarlcorp/zpersona/internal/export"
	"github.com/zarlcorp/zpersona/internal/identity"
	"github.com/zarlcorp/zpersona/internal/mail"
)

var (
	labelColor = color.New(color.FgCyan)
	okColor    = color.New(color.FgGreen)
	dimColor   = color.New(color.Faint)
	codeColor  = color.New(color.FgMagenta, color.Bold)
)

type field struct {
	label string
	value string
}

func recordFields(r identity.Record) []field {
	id := r.Identity
	fs := []field{
		{"id", r.ID},
		{"name", id.FullName()},
		{"phone", id.Phone},
		{strings.ToLower(id.NationalID.Label), id.NationalID.Value},
	}
	if id.Enhanced() {
		age := ""
		if n, err := identity.Age(id.Birthday); err == nil {
			age = fmt.Sprintf(" (%d)", n)
		}
		fs = append(fs,
			field{"birthday", id.Birthday + age},
			field{"blood type", id.BloodType},
			field{"occupation", id.Occupation},
			field{"education", id.Education},
			field{"credit card", id.CreditCard + " " + identity.CardBrand(id.CreditCard)},
		)
	}
	if r.Email != "" {
		fs = append(fs, field{"email", r.Email})
	}
	if !r.Address.IsZero() {
		fs = append(fs, field{"address", strings.Join(r.Address.Parts(), ", ")})
	}
	fs = append(fs,
		field{"ip", r.NetworkIdentifier},
		field{"created", r.Created().Local().Format("2006-01-02 15:04:05")},
	)
	return fs
}

func printRecord(w io.Writer, r identity.Record) {
	fs := recordFields(r)
	width := 0
	for _, f := range fs {
		width = max(width, len(f.label)+1)
	}
	for _, f := range fs {
		labelColor.Fprintf(w, "  %-*s ", width, f.label+":")
		fmt.Fprintln(w, f.value)
	}
}

func printRecordTable(w io.Writer, records []identity.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tNAME\tPHONE\tCITY\tCREATED")
	for _, r := range records {
		star := ""
		if r.Starred {
			star = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			star,
			r.ID,
			r.Identity.FullName(),
			r.Identity.Phone,
			r.Address.City,
			r.Created().Local().Format("2006-01-02 15:04"),
		)
	}
	return tw.Flush()
}

func printCountries(w io.Writer, countries []identity.Country) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tCOUNTRY\tNATIONAL ID\tPHONE")
	for _, c := range countries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Code, c.Name, c.IDLabel, c.PhoneTemplate)
	}
	return tw.Flush()
}

func printMessage(w io.Writer, m mail.Message) {
	fmt.Fprintf(w, "%s  %s\n", dimColor.Sprint(m.CreatedAt.Local().Format("15:04:05")), m.From)
	fmt.Fprintf(w, "  %s\n", m.Subject)
	if m.Intro != "" {
		dimColor.Fprintf(w, "  %s\n", m.Intro)
	}
	for _, c := range m.Codes {
		fmt.Fprintf(w, "  code: %s\n", codeColor.Sprint(c))
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// writeOutput writes data to out, or to stdout when out is "-". It returns
// the file written, empty for stdout.
func (a *App) writeOutput(data []byte, out string) (string, error) {
	if out == "-" {
		_, err := a.Stdout.Write(data)
		return "", err
	}
	if err := os.WriteFile(out, data, 0o600); err != nil {
		return "", fmt.Errorf("write %s: %w", out, err)
	}
	return out, nil
}

// outputPath resolves the --out flag. Text formats go to stdout when
// textToStdout is set; everything else gets the dated export file name.
func (a *App) outputPath(f export.Format, out string, textToStdout bool) string {
	if out != "" {
		return out
	}
	if textToStdout && (f == export.JSON || f == export.CSV) {
		return "-"
	}
	return export.FileName(f, a.now())
}
