// Package report renders monthly generation reports for download.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	analytics "solar-telemetry/internal/analytics/domain"
)

// MonthlyReport bundles the month aggregate with its per-day breakdown.
type MonthlyReport struct {
	Month       analytics.MonthlyRecord
	Days        []analytics.DailyRecord
	GeneratedAt time.Time
}

func formatMonth(monthInt int) string {
	return fmt.Sprintf("%04d-%02d", monthInt/100, monthInt%100)
}

func formatDay(dateInt int) string {
	return fmt.Sprintf("%04d-%02d-%02d", dateInt/10000, dateInt/100%100, dateInt%100)
}

// BuildMonthlyReportPDF renders a minimal PDF for a monthly report.
func BuildMonthlyReportPDF(rep MonthlyReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Solar Generation Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Month: %s", formatMonth(rep.Month.MonthInt)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Export (kWh): %.4f", rep.Month.ExportDeltaKWh))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", rep.GeneratedAt.Format(time.RFC3339)))
	pdf.Ln(8)

	// Days table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(40, 6, "Day", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Export (kWh)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Meter End (kWh)", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, day := range rep.Days {
		pdf.CellFormat(40, 6, formatDay(day.DateInt), "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 6, fmt.Sprintf("%.4f", day.ExportDeltaKWh), "1", 0, "R", false, 0, "")
		pdf.CellFormat(50, 6, fmt.Sprintf("%.4f", day.ExportEndKWh), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildMonthlyReportXLSX renders a minimal XLSX for a monthly report.
func BuildMonthlyReportXLSX(rep MonthlyReport) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	daysSheet := "days"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(daysSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Solar Generation Report")
	_ = f.SetCellValue(summarySheet, "A3", "Month")
	_ = f.SetCellValue(summarySheet, "B3", formatMonth(rep.Month.MonthInt))
	_ = f.SetCellValue(summarySheet, "A4", "Total Export (kWh)")
	_ = f.SetCellValue(summarySheet, "B4", rep.Month.ExportDeltaKWh)
	_ = f.SetCellValue(summarySheet, "A5", "Days Reported")
	_ = f.SetCellValue(summarySheet, "B5", len(rep.Days))
	_ = f.SetCellValue(summarySheet, "A6", "Generated")
	_ = f.SetCellValue(summarySheet, "B6", rep.GeneratedAt.Format(time.RFC3339))

	_ = f.SetCellValue(daysSheet, "A1", "Day")
	_ = f.SetCellValue(daysSheet, "B1", "Export (kWh)")
	_ = f.SetCellValue(daysSheet, "C1", "Meter Start (kWh)")
	_ = f.SetCellValue(daysSheet, "D1", "Meter End (kWh)")
	for i, day := range rep.Days {
		row := i + 2
		_ = f.SetCellValue(daysSheet, fmt.Sprintf("A%d", row), formatDay(day.DateInt))
		_ = f.SetCellValue(daysSheet, fmt.Sprintf("B%d", row), day.ExportDeltaKWh)
		_ = f.SetCellValue(daysSheet, fmt.Sprintf("C%d", row), day.ExportStartKWh)
		_ = f.SetCellValue(daysSheet, fmt.Sprintf("D%d", row), day.ExportEndKWh)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
