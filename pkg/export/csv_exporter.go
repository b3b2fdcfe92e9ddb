package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Dataset defines tabular export content. Rows keep the order they were added in.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// CSVExporter renders Dataset records into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the dataset. Every text field is
// wrapped in double quotes with internal quotes doubled; purely numeric
// fields stay unquoted. Headers are emitted bare.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	buf.WriteString(strings.Join(data.Headers, ","))
	buf.WriteByte('\n')
	for _, row := range data.Rows {
		fields := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			fields[i] = csvField(row[header])
		}
		buf.WriteString(strings.Join(fields, ","))
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func csvField(value string) string {
	if value != "" {
		if _, err := strconv.Atoi(value); err == nil {
			return value
		}
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}
