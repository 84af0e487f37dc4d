package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Student", "2026-03-02", "2026-03-03"},
		Rows: []map[string]string{
			{"Student": "Alex Johnson", "2026-03-02": "present", "2026-03-03": "late"},
			{"Student": "Sam Smith", "2026-03-02": "absent", "2026-03-03": "present"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, []string{"Student", "2026-03-02", "2026-03-03"}, records[0])
	require.Equal(t, []string{"Sam Smith", "absent", "present"}, records[2])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	data := sampleDataset()
	data.Title = "Attendance - Class 5A"
	data.Subtitle = "Generated 2 Mar 2026"
	data.Legend = AttendanceLegend

	out, err := NewPDFExporter().Render(data)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestDatasetRecordsFollowHeaderOrder(t *testing.T) {
	records := sampleDataset().Records()
	require.Len(t, records, 2)
	require.Equal(t, []string{"Alex Johnson", "present", "late"}, records[0])
	require.Equal(t, []string{"Sam Smith", "absent", "present"}, records[1])
}

func TestXLSXExporterRoundTrip(t *testing.T) {
	out, err := NewXLSXExporter().Render(sampleDataset(), "Attendance")
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer wb.Close() //nolint:errcheck

	rows, err := wb.GetRows("Attendance")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "Alex Johnson", rows[1][0])
	require.Equal(t, "late", rows[1][2])
}

func TestReadRosterSheet(t *testing.T) {
	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	require.NoError(t, wb.SetSheetRow(sheet, "A1", &[]interface{}{"Name", "Performance"}))
	require.NoError(t, wb.SetSheetRow(sheet, "A2", &[]interface{}{"Mio Tanaka", 91}))
	require.NoError(t, wb.SetSheetRow(sheet, "A4", &[]interface{}{"Ren Suzuki"}))

	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))

	rows, err := ReadRosterSheet(&buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Mio Tanaka", rows[0].Name)
	require.NotNil(t, rows[0].Performance)
	require.Equal(t, 91, *rows[0].Performance)
	require.Equal(t, "Ren Suzuki", rows[1].Name)
	require.Nil(t, rows[1].Performance)
}

func TestReadRosterSheetNoHeader(t *testing.T) {
	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	require.NoError(t, wb.SetSheetRow(sheet, "A1", &[]interface{}{"First Student", 70}))

	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))

	rows, err := ReadRosterSheet(&buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "First Student", rows[0].Name)
}
