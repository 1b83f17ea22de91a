package tui

import (
	"fmt"

	table "github.com/charmbracelet/bubbles/table"
)

var recordColumns = []table.Column{
	{Title: "#", Width: 4},
	{Title: "id", Width: 14},
	{Title: "girth", Width: 6},
	{Title: "elev", Width: 6},
	{Title: "crown z", Width: 7},
	{Title: "scale", Width: 6},
	{Title: "yaw", Width: 6},
	{Title: "degraded", Width: 12},
}

// refreshAttrsFromCurrent rebuilds the table from the records the layers
// currently draw.
func (m *Model) refreshAttrsFromCurrent() {
	rows := m.buildRecordRows()
	if len(rows) == 0 {
		m.showAttrs = false
		m.status = "no visible trees"
		return
	}
	// Avoid transient mismatch: clear rows, set columns, then set rows
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(recordColumns)
	m.tbl.SetRows(rows)
}

func (m *Model) buildRecordRows() []table.Row {
	rows := make([]table.Row, 0, len(m.trunk.data))
	for i, r := range m.trunk.data {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", i+1),
			r.ID,
			fmt.Sprintf("%.2f", r.Girth),
			fmt.Sprintf("%.1f", r.Elevation),
			fmt.Sprintf("%.1f", r.Translation[2]),
			fmt.Sprintf("%.2f", r.Scale[0]),
			fmt.Sprintf("%.0f", r.Orientation[1]),
			degradedFlags(r),
		})
	}
	return rows
}
