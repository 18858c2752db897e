/*
pdf.go - PDF renderer for attendance reports

Layout is a simple banded table: title, period line, header row, one row
per worker. Money columns print whole currency units.
*/
package reports

import (
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

func renderPDF(path, title, period string, rows []AttendanceRow) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, period, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	headers := []string{"Worker", "Contact", "Days", "Hours", "Paid", "Due"}
	widths := []float64{45, 40, 20, 25, 30, 30}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, r := range rows {
		cells := []string{
			r.WorkerName,
			r.Contact,
			strconv.Itoa(r.Days),
			r.Hours.String(),
			r.PaidAmount.String(),
			r.DueAmount.String(),
		}
		for i, c := range cells {
			align := "L"
			if i >= 2 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 7, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.OutputFileAndClose(path)
}
