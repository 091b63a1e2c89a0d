package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/zarlcorp/zpersona/internal/identity"
)

// SheetName is the single worksheet in spreadsheet exports.
const SheetName = "Address Records"

func encodeXLSX(records []identity.Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("encode xlsx: rename sheet: %w", err)
	}

	if err := setRow(f, 1, columns); err != nil {
		return nil, fmt.Errorf("encode xlsx: header: %w", err)
	}
	for i, r := range records {
		if err := setRow(f, i+2, row(r)); err != nil {
			return nil, fmt.Errorf("encode xlsx: record %s: %w", r.ID, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, n int, fields []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	vals := make([]any, len(fields))
	for i, v := range fields {
		vals[i] = v
	}
	return f.SetSheetRow(SheetName, cell, &vals)
}
