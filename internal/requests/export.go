package requests

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Requests"

var exportColumns = []string{
	"ID", "Student Name", "College", "Certificate Type", "Request Date",
	"Status", "Approved By", "Approved Date", "Download URL",
}

var exportWidths = []float64{8, 28, 36, 26, 20, 12, 20, 20, 40}

// WriteXLSX writes requests as a spreadsheet with a frozen, filterable header.
func WriteXLSX(w io.Writer, reqs []CertificateRequest) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"1A365D"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 22})
	if err != nil {
		return fmt.Errorf("failed to create date style: %w", err)
	}

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, cell, col)
		name, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(exportSheet, name, name, exportWidths[i])
	}
	last, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
	f.SetCellStyle(exportSheet, "A1", last, headerStyle)

	for i := range reqs {
		r := &reqs[i]
		row := []interface{}{
			r.ID, r.StudentName, r.College, r.CertificateType, r.RequestDate,
			r.Status, deref(r.ApprovedBy), "", deref(r.DownloadURL()),
		}
		if r.ApprovedDate != nil {
			row[7] = *r.ApprovedDate
		}

		start, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, start, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
		for _, col := range []int{5, 8} {
			cell, _ := excelize.CoordinatesToCellName(col, i+2)
			f.SetCellStyle(exportSheet, cell, cell, dateStyle)
		}
	}

	if err := f.SetPanes(exportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}
	if len(reqs) > 0 {
		if err := f.AutoFilter(exportSheet, "A1:"+last, nil); err != nil {
			return fmt.Errorf("failed to add filter: %w", err)
		}
	}

	return f.Write(w)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
