package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"

	"github.com/zarlcorp/zpersona/internal/identity"
)

var fixedNow = time.Date(2026, 4, 2, 14, 5, 6, 0, time.UTC)

func testEncoder() Encoder {
	return Encoder{Now: func() time.Time { return fixedNow }}
}

func fullRecord() identity.Record {
	return identity.Record{
		ID: "2abc",
		Identity: identity.Identity{
			Name:       identity.Name{First: "Jane", Last: "Doe"},
			Phone:      "+1-555-123-4567",
			NationalID: identity.NationalID{Label: "SSN", Value: "123-45-6789"},
			Birthday:   "1990-04-12",
			BloodType:  "O",
			Occupation: "Engineer",
			Education:  "Master's Degree",
			CreditCard: "4111-1111-1111-1111",
		},
		Address: identity.Address{
			Road:        "123 Main Street",
			City:        "New York",
			State:       "NY",
			Postcode:    "10001",
			Country:     "United States",
			Coordinates: &identity.Coordinates{Latitude: 40.7128, Longitude: -74.006},
		},
		NetworkIdentifier: "203.0.113.9",
		CreatedAt:         1700000000123,
		Starred:           true,
	}
}

func bareRecord() identity.Record {
	return identity.Record{
		ID: "3def",
		Identity: identity.Identity{
			Name:       identity.Name{First: "Sam", Last: "O\"Neil, Jr"},
			Phone:      "+44-1234-567890",
			NationalID: identity.NationalID{Label: "National Insurance Number", Value: "AB123456C"},
		},
		NetworkIdentifier: identity.LoopbackIP,
		CreatedAt:         1700000000124,
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", JSON},
		{"CSV", CSV},
		{"excel", Excel},
		{"xlsx", Excel},
		{"Spreadsheet", Excel},
		{"pdf", PDF},
		{"document", PDF},
		{" parquet ", Parquet},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil {
			t.Errorf("ParseFormat(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"xml", "", "yaml"} {
		_, err := ParseFormat(bad)
		var ue *UnsupportedFormatError
		if !errors.As(err, &ue) {
			t.Errorf("ParseFormat(%q): expected *UnsupportedFormatError, got %v", bad, err)
		}
	}
}

func TestEncodeUnsupportedFormat(t *testing.T) {
	data, err := testEncoder().Encode([]identity.Record{fullRecord()}, Format("xml"))
	var ue *UnsupportedFormatError
	if !errors.As(err, &ue) {
		t.Fatalf("expected *UnsupportedFormatError, got %v", err)
	}
	if ue.Format != "xml" {
		t.Errorf("format = %q", ue.Format)
	}
	if data != nil {
		t.Error("unsupported format must not produce a payload")
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		f    Format
		want string
	}{
		{JSON, "address-history-2026-04-02.json"},
		{CSV, "address-history-2026-04-02.csv"},
		{Excel, "address-history-2026-04-02.xlsx"},
		{PDF, "address-history-2026-04-02.pdf"},
		{Parquet, "address-history-2026-04-02.parquet"},
	}
	for _, tt := range tests {
		if got := FileName(tt.f, fixedNow); got != tt.want {
			t.Errorf("FileName(%s) = %q, want %q", tt.f, got, tt.want)
		}
	}
}

func TestContentType(t *testing.T) {
	for _, f := range Formats {
		if ct := ContentType(f); ct == "" || ct == "application/octet-stream" {
			t.Errorf("ContentType(%s) = %q", f, ct)
		}
	}
}

func TestEncodeJSON(t *testing.T) {
	recs := []identity.Record{fullRecord(), bareRecord()}
	data, err := testEncoder().Encode(recs, JSON)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Contains(data, []byte("\n  {\n    \"id\": \"2abc\"")) {
		t.Errorf("expected 2-space indentation, got:\n%s", data)
	}

	var got []identity.Record
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Identity != recs[0].Identity || *got[0].Address.Coordinates != *recs[0].Address.Coordinates {
		t.Errorf("round trip mismatch: %+v", got)
	}

	// optional fields are omitted
	var raw []map[string]any
	json.Unmarshal(data, &raw)
	ident := raw[1]["identity"].(map[string]any)
	if _, ok := ident["birthday"]; ok {
		t.Error("empty birthday should be omitted")
	}
	if _, ok := raw[1]["address"].(map[string]any)["coordinates"]; ok {
		t.Error("nil coordinates should be omitted")
	}
}

func TestEncodeEmpty(t *testing.T) {
	enc := testEncoder()

	data, err := enc.Encode(nil, JSON)
	if err != nil || string(data) != "[]" {
		t.Errorf("json: got %q, %v", data, err)
	}

	data, err = enc.Encode([]identity.Record{}, CSV)
	if err != nil || string(data) != strings.Join(columns, ",") {
		t.Errorf("csv: got %q, %v", data, err)
	}

	for _, f := range []Format{Excel, PDF, Parquet} {
		data, err := enc.Encode(nil, f)
		if err != nil {
			t.Errorf("%s: %v", f, err)
		}
		if len(data) == 0 {
			t.Errorf("%s: empty payload", f)
		}
	}
}

func TestEncodeCSV(t *testing.T) {
	data, err := testEncoder().Encode([]identity.Record{fullRecord(), bareRecord()}, CSV)
	if err != nil {
		t.Fatal(err)
	}

	if bytes.HasSuffix(data, []byte("\n")) {
		t.Error("csv must not end with a newline")
	}
	if bytes.Contains(data, []byte("\r")) {
		t.Error("csv rows must be joined with \\n only")
	}

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if !slices.Equal(rows[0], columns) {
		t.Errorf("header = %v", rows[0])
	}
	if len(columns) != 21 {
		t.Errorf("got %d columns, want 21", len(columns))
	}

	want := []string{
		"2abc", "Jane", "Doe", "+1-555-123-4567", "SSN", "123-45-6789",
		"1990-04-12", "O", "Engineer", "Master's Degree", "4111-1111-1111-1111",
		"123 Main Street", "New York", "NY", "10001", "United States",
		"40.7128", "-74.006", "203.0.113.9", "2023-11-14T22:13:20.123Z", "Yes",
	}
	if !slices.Equal(rows[1], want) {
		t.Errorf("row 1:\n got %q\nwant %q", rows[1], want)
	}

	bare := rows[2]
	if bare[2] != `O"Neil, Jr` {
		t.Errorf("quoted field = %q", bare[2])
	}
	for _, i := range []int{6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17} {
		if bare[i] != "" {
			t.Errorf("column %s = %q, want empty", columns[i], bare[i])
		}
	}
	if bare[20] != "No" {
		t.Errorf("starred = %q", bare[20])
	}

	if !bytes.Contains(data, []byte(`"O""Neil, Jr"`)) {
		t.Error("inner quotes must be doubled")
	}
}

func TestCSVField(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{" leading space", " leading space"},
		{"a,b", `"a,b"`},
		{`say "hi"`, `"say ""hi"""`},
		{"two\nlines", "\"two\nlines\""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := csvField(tt.in); got != tt.want {
			t.Errorf("csvField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCSVZeroCoordinates(t *testing.T) {
	r := bareRecord()
	r.Address.Coordinates = &identity.Coordinates{}
	got := row(r)
	if got[16] != "0" || got[17] != "0" {
		t.Errorf("present zero coordinates = %q,%q, want 0,0", got[16], got[17])
	}
}

func TestEncodeXLSX(t *testing.T) {
	data, err := testEncoder().Encode([]identity.Record{fullRecord(), bareRecord()}, Excel)
	if err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); !slices.Equal(sheets, []string{SheetName}) {
		t.Errorf("sheets = %v", sheets)
	}

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if !slices.Equal(rows[0], columns) {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "2abc" || rows[1][16] != "40.7128" || rows[1][20] != "Yes" {
		t.Errorf("row 1 = %v", rows[1])
	}
	if rows[2][2] != `O"Neil, Jr` {
		t.Errorf("row 2 last name = %q", rows[2][2])
	}
}

func TestEncodePDF(t *testing.T) {
	data, err := testEncoder().Encode([]identity.Record{fullRecord()}, PDF)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("payload does not start with a pdf header: %q", data[:min(8, len(data))])
	}
}

func TestPDFPagination(t *testing.T) {
	full := fullRecord()
	noAddress := fullRecord()
	noAddress.Address = identity.Address{}
	withEmail := fullRecord()
	withEmail.Email = "hi@139.run"
	bare := bareRecord()

	tests := []struct {
		name      string
		records   []identity.Record
		wantPages int
	}{
		{"single", []identity.Record{full}, 1},
		{"mixed shapes", []identity.Record{full, full, full, noAddress, withEmail, withEmail, withEmail}, 3},
		{"thirty full", slices.Repeat([]identity.Record{full}, 30), 0},
		{"alternating", slices.Repeat([]identity.Record{bare, withEmail, noAddress}, 12), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := renderReport(tt.records, fixedNow)
			if err := doc.Error(); err != nil {
				t.Fatal(err)
			}
			_, pageHeight := doc.GetPageSize()

			blocks := layoutReport(tt.records, pageHeight, time.UTC)
			if len(blocks) != len(tt.records) {
				t.Fatalf("got %d blocks for %d records", len(blocks), len(tt.records))
			}
			for i, b := range blocks {
				if last := b.lastBaseline(); last > pageHeight-pageFloor {
					t.Errorf("record %d ends at y=%.1f on page %d, below %.1f", i+1, last, b.page+1, pageHeight-pageFloor)
				}
				if b.y > pageHeight-bottomMargin {
					t.Errorf("record %d starts at y=%.1f", i+1, b.y)
				}
				if i > 0 && b.page == blocks[i-1].page && b.y <= blocks[i-1].lastBaseline() {
					t.Errorf("record %d overlaps record %d", i+1, i)
				}
			}

			if got := doc.PageCount(); got != blocks[len(blocks)-1].page+1 {
				t.Errorf("document has %d pages, layout has %d", got, blocks[len(blocks)-1].page+1)
			}
			if tt.wantPages > 0 && doc.PageCount() != tt.wantPages {
				t.Errorf("pages = %d, want %d", doc.PageCount(), tt.wantPages)
			}
			if tt.wantPages == 0 && doc.PageCount() < 2 {
				t.Errorf("%d records fit on one page", len(tt.records))
			}
		})
	}
}

func TestRecordLinesZone(t *testing.T) {
	east := time.FixedZone("UTC+2", 2*60*60)
	lines := recordLines(fullRecord(), east)

	// 1700000000123 ms is 22:13:20 UTC
	if got := lines[len(lines)-1]; got != "Date: 2023-11-15 00:13:20" {
		t.Errorf("date line = %q", got)
	}
}

func TestRecordLines(t *testing.T) {
	r := fullRecord()
	r.Email = "hi@139.run"
	lines := recordLines(r, time.UTC)

	want := []string{
		"Name: Jane Doe",
		"Phone: +1-555-123-4567",
		"SSN: 123-45-6789",
		"Birthday: 1990-04-12",
		"Blood Type: O",
		"Occupation: Engineer",
		"Education: Master's Degree",
		"Credit Card: 4111-1111-1111-1111",
		"Email: hi@139.run",
		"Address: 123 Main Street, New York, NY, 10001, United States",
		"IP: 203.0.113.9",
		"Date: 2023-11-14 22:13:20",
	}
	if !slices.Equal(lines, want) {
		t.Errorf("lines:\n got %q\nwant %q", lines, want)
	}

	bare := recordLines(bareRecord(), time.UTC)
	if len(bare) != 5 {
		t.Errorf("bare record lines = %q", bare)
	}
}

func TestEncodeParquet(t *testing.T) {
	data, err := testEncoder().Encode([]identity.Record{fullRecord(), bareRecord()}, Parquet)
	if err != nil {
		t.Fatal(err)
	}

	reader := parquet.NewReader(bytes.NewReader(data))
	defer reader.Close()

	var got []parquetRecord
	for {
		r := new(parquetRecord)
		err := reader.Read(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		got = append(got, *r)
	}

	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	if got[0].ID != "2abc" || got[0].Timestamp != 1700000000123 || !got[0].Starred {
		t.Errorf("row 0 = %+v", got[0])
	}
	if got[0].Latitude == nil || *got[0].Latitude != 40.7128 {
		t.Errorf("latitude = %v", got[0].Latitude)
	}
	if got[1].Latitude != nil || got[1].Longitude != nil {
		t.Error("missing coordinates should be null")
	}
	if got[1].IDType != "National Insurance Number" {
		t.Errorf("id type = %q", got[1].IDType)
	}
}
