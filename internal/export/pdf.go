package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/zarlcorp/zpersona/internal/identity"
)

// report layout in millimetres
const (
	reportTitle  = "Address Generation Report"
	marginLeft   = 20.0
	indent       = 25.0
	firstRecordY = 50.0
	topOfPage    = 20.0
	bottomMargin = 60.0
	pageFloor    = 20.0
	lineStep     = 5.0
	blockStep    = 10.0
	dateLayout   = "2006-01-02 15:04:05"
)

func encodePDF(records []identity.Record, now time.Time) ([]byte, error) {
	doc := renderReport(records, now)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("encode pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// reportBlock is one record's position in the report. y is the baseline
// of the "Record N" heading; the lines follow lineStep apart.
type reportBlock struct {
	page  int
	y     float64
	lines []string
}

// lastBaseline returns the baseline of the block's final line.
func (b reportBlock) lastBaseline() float64 {
	return b.y + blockStep + float64(len(b.lines)-1)*lineStep
}

// layoutReport places each record block. A block moves to a new page when
// the cursor is already past pageHeight-bottomMargin, or when its last
// line would fall below pageHeight-pageFloor.
func layoutReport(records []identity.Record, pageHeight float64, loc *time.Location) []reportBlock {
	blocks := make([]reportBlock, 0, len(records))
	page, y := 0, firstRecordY
	for _, r := range records {
		b := reportBlock{lines: recordLines(r, loc)}
		b.y = y
		if y > pageHeight-bottomMargin || b.lastBaseline() > pageHeight-pageFloor {
			page++
			b.y = topOfPage
		}
		b.page = page
		blocks = append(blocks, b)
		y = b.y + blockStep + float64(len(b.lines))*lineStep + blockStep - lineStep
	}
	return blocks
}

// renderReport draws the title block and the laid out records on A4 pages.
// Dates use the zone of now.
func renderReport(records []identity.Record, now time.Time) *fpdf.Fpdf {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(reportTitle, true)
	doc.SetCreationDate(now)
	tr := doc.UnicodeTranslatorFromDescriptor("")
	_, pageHeight := doc.GetPageSize()

	doc.AddPage()
	doc.SetFont("Helvetica", "", 16)
	doc.Text(marginLeft, 20, reportTitle)

	doc.SetFont("Helvetica", "", 10)
	doc.Text(marginLeft, 30, "Generated on: "+now.Format(dateLayout))
	doc.Text(marginLeft, 35, "Total Records: "+strconv.Itoa(len(records)))

	page := 0
	for i, b := range layoutReport(records, pageHeight, now.Location()) {
		for page < b.page {
			doc.AddPage()
			page++
		}

		doc.SetFont("Helvetica", "B", 12)
		doc.Text(marginLeft, b.y, fmt.Sprintf("Record %d", i+1))

		doc.SetFont("Helvetica", "", 9)
		y := b.y + blockStep
		for _, line := range b.lines {
			doc.Text(indent, y, tr(line))
			y += lineStep
		}
	}

	return doc
}

// recordLines returns the text lines for one record block, with the
// creation date shown in loc.
func recordLines(r identity.Record, loc *time.Location) []string {
	id := r.Identity
	lines := []string{
		"Name: " + id.FullName(),
		"Phone: " + id.Phone,
		id.NationalID.Label + ": " + id.NationalID.Value,
	}

	optional := []struct{ label, value string }{
		{"Birthday", id.Birthday},
		{"Blood Type", id.BloodType},
		{"Occupation", id.Occupation},
		{"Education", id.Education},
		{"Credit Card", id.CreditCard},
		{"Email", r.Email},
	}
	for _, o := range optional {
		if o.value != "" {
			lines = append(lines, o.label+": "+o.value)
		}
	}

	if parts := r.Address.Parts(); len(parts) > 0 {
		lines = append(lines, "Address: "+strings.Join(parts, ", "))
	}

	lines = append(lines,
		"IP: "+r.NetworkIdentifier,
		"Date: "+r.Created().In(loc).Format(dateLayout),
	)
	return lines
}
