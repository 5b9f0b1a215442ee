// Package export renders service reports as a spreadsheet and PM due dates
// as an iCalendar feed.
package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/ukydev/maintenance-tracker/internal/models"
	"github.com/xuri/excelize/v2"
)

const reportSheet = "Service Reports"

var reportColumns = []struct {
	title string
	width float64
}{
	{"Report ID", 12},
	{"TSWR No", 14},
	{"Request ID", 12},
	{"Asset", 12},
	{"Asset Name", 24},
	{"Location", 18},
	{"Service Date", 14},
	{"Service Type", 12},
	{"Work Description", 40},
	{"Findings", 40},
	{"Man Hours", 10},
	{"Hours Down", 10},
	{"Labor Cost", 12},
	{"Parts Cost", 12},
	{"Total Cost", 12},
	{"Parts Used", 30},
	{"Prepared By", 18},
}

// ServiceReportsXLSX writes one row per report under a styled header row.
func ServiceReportsXLSX(reports []models.ServiceReport) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(reportSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	for i, col := range reportColumns {
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(reportSheet, name, name, col.width); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(reportSheet, cell(i+1, 1), col.title); err != nil {
			return nil, err
		}
	}
	lastHeader := cell(len(reportColumns), 1)
	if err := f.SetCellStyle(reportSheet, "A1", lastHeader, headerStyle); err != nil {
		return nil, err
	}

	for r, report := range reports {
		row := r + 2
		values := []interface{}{
			report.ReportID,
			report.TSWRNo,
			report.RequestID,
			report.AssetCode,
			report.AssetName,
			report.Location,
			report.ServiceDate.Format(time.DateOnly),
			string(report.ServiceType),
			report.WorkDescription,
			report.ReportFindings,
			report.ManHours,
			report.HoursDown,
			report.LaborCost,
			report.TotalPartsCost,
			report.LaborCost + report.TotalPartsCost,
			partsSummary(report.PartsMaterials),
			report.PreparedByName,
		}
		for c, v := range values {
			if err := f.SetCellValue(reportSheet, cell(c+1, row), v); err != nil {
				return nil, err
			}
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func partsSummary(parts []models.PartUsed) string {
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		names = append(names, fmt.Sprintf("%s x%g", p.PartName, p.Quantity))
	}
	return strings.Join(names, ", ")
}
