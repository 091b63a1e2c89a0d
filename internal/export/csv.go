package export

import (
	"strings"

	"github.com/zarlcorp/zpersona/internal/identity"
)

// encodeCSV writes the header and one line per record, joined by "\n"
// with no trailing newline. A field is quoted only when it contains a
// comma, a double quote or a newline.
func encodeCSV(records []identity.Record) []byte {
	var b strings.Builder
	writeCSVLine(&b, columns)
	for _, r := range records {
		b.WriteByte('\n')
		writeCSVLine(&b, row(r))
	}
	return []byte(b.String())
}

func writeCSVLine(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(csvField(f))
	}
}

func csvField(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
