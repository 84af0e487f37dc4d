package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVExporter writes a dataset as plain CSV: one header row, one row per
// student. Title and subtitle are deliberately left out so the file
// re-imports cleanly into the roster importer and into spreadsheets.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	records := append([][]string{data.Headers}, data.Records()...)
	if err := writer.WriteAll(records); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}
