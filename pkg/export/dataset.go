package export

// AttendanceLegend explains the status cells on rendered attendance
// reports; late counts half toward the attendance rate.
const AttendanceLegend = "present = attended, late = counted half, absent = missed"

// Dataset is tabular report content plus the heading lines the richer
// formats render above the table.
type Dataset struct {
	Title    string
	Subtitle string
	Legend   string
	Headers  []string
	Rows     []map[string]string
}

// Records flattens the rows into header order, one slice per row.
func (d Dataset) Records() [][]string {
	records := make([][]string, 0, len(d.Rows))
	for _, row := range d.Rows {
		record := make([]string, len(d.Headers))
		for i, header := range d.Headers {
			record[i] = row[header]
		}
		records = append(records, record)
	}
	return records
}
