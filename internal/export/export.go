// Package export serialises identity records for download in JSON, CSV,
// spreadsheet, PDF and Parquet form.
package export

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/zarlcorp/zpersona/internal/identity"
)

// Format is an export format.
type Format string

const (
	JSON    Format = "json"
	CSV     Format = "csv"
	Excel   Format = "excel"
	PDF     Format = "pdf"
	Parquet Format = "parquet"
)

// Formats lists every supported format in menu order.
var Formats = []Format{JSON, CSV, Excel, PDF, Parquet}

// UnsupportedFormatError is returned for a format name or value that has no
// encoder.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported export format: %s", e.Format)
}

// ParseFormat maps a user supplied name to a Format. Matching is
// case-insensitive and accepts xlsx/spreadsheet for Excel and document for
// PDF.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return JSON, nil
	case "csv":
		return CSV, nil
	case "excel", "xlsx", "spreadsheet":
		return Excel, nil
	case "pdf", "document":
		return PDF, nil
	case "parquet":
		return Parquet, nil
	}
	return "", &UnsupportedFormatError{Format: s}
}

// Extension returns the file extension for f, without the dot.
func (f Format) Extension() string {
	if f == Excel {
		return "xlsx"
	}
	return string(f)
}

// ContentType returns the MIME type for f.
func ContentType(f Format) string {
	switch f {
	case JSON:
		return "application/json"
	case CSV:
		return "text/csv;charset=utf-8"
	case Excel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case PDF:
		return "application/pdf"
	case Parquet:
		return "application/vnd.apache.parquet"
	}
	return "application/octet-stream"
}

// FileName returns address-history-<date>.<ext> for the UTC date of now.
func FileName(f Format, now time.Time) string {
	return "address-history-" + now.UTC().Format("2006-01-02") + "." + f.Extension()
}

// Encoder renders records. Now stamps generated reports; nil means
// time.Now.
type Encoder struct {
	Now func() time.Time
}

// Encode renders records in the given format. An empty slice yields a
// valid empty document for every format.
func (e Encoder) Encode(records []identity.Record, f Format) ([]byte, error) {
	switch f {
	case JSON:
		return encodeJSON(records)
	case CSV:
		return encodeCSV(records), nil
	case Excel:
		return encodeXLSX(records)
	case PDF:
		return encodePDF(records, e.now())
	case Parquet:
		return encodeParquet(records)
	}
	return nil, &UnsupportedFormatError{Format: string(f)}
}

func (e Encoder) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func encodeJSON(records []identity.Record) ([]byte, error) {
	if records == nil {
		records = []identity.Record{}
	}
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return b, nil
}

// columns is the tabular layout shared by CSV, spreadsheet and Parquet.
var columns = []string{
	"ID", "First Name", "Last Name", "Phone", "ID Type", "ID Value",
	"Birthday", "Blood Type", "Occupation", "Education", "Credit Card",
	"Road", "City", "State", "Postcode", "Country",
	"Latitude", "Longitude", "IP", "Timestamp", "Starred",
}

// row flattens a record into column order. Missing optional fields are
// empty strings.
func row(r identity.Record) []string {
	id, a := r.Identity, r.Address

	var lat, lon string
	if a.Coordinates != nil {
		lat = formatFloat(a.Coordinates.Latitude)
		lon = formatFloat(a.Coordinates.Longitude)
	}

	return []string{
		r.ID,
		id.Name.First,
		id.Name.Last,
		id.Phone,
		id.NationalID.Label,
		id.NationalID.Value,
		id.Birthday,
		id.BloodType,
		id.Occupation,
		id.Education,
		id.CreditCard,
		a.Road,
		a.City,
		a.State,
		a.Postcode,
		a.Country,
		lat,
		lon,
		r.NetworkIdentifier,
		timestamp(r.CreatedAt),
		yesNo(r.Starred),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// timestamp renders epoch millis as ISO-8601 UTC with milliseconds.
func timestamp(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("2006-01-02T15:04:05.000Z")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
