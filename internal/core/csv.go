package core

// csv.go writes the export artifact.
//
// The format is comma-delimited with "\n" between rows and no trailing
// newline. A value is quoted only when it contains a comma, a double quote or
// a newline; quotes inside quoted values are doubled.

import "strings"

// ExportFileName is the name of the downloaded artifact.
const ExportFileName = "data-export.csv"

// EncodeCSV writes a header of field labels followed by one row per record,
// in schema column order. Missing and nil values are empty.
func EncodeCSV(schema Schema, records []DataRecord) []byte {
	var b strings.Builder

	for i, def := range schema {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(EscapeCSV(def.Label))
	}

	for _, rec := range records {
		b.WriteByte('\n')
		for i, def := range schema {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(EscapeCSV(FormatValue(rec[def.Name])))
		}
	}

	return []byte(b.String())
}

// EscapeCSV quotes a single value if it needs it.
func EscapeCSV(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
