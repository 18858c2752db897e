/*
excel.go - XLSX renderer for attendance reports

One sheet, title and period on top, then a header row and one row per
worker. Numeric columns are written as numbers so spreadsheet formulas
work on the output.
*/
package reports

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Attendance"

func renderExcel(path, title, period string, rows []AttendanceRow) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	f.SetCellValue(sheetName, "A1", title)
	f.SetCellValue(sheetName, "A2", period)

	headers := []string{"Worker", "Contact", "Days", "Hours", "Paid", "Due"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		f.SetCellValue(sheetName, cell, h)
	}

	for i, r := range rows {
		rowIdx := 5 + i
		hours, _ := r.Hours.Float64()
		paid, _ := r.PaidAmount.Float64()
		due, _ := r.DueAmount.Float64()

		f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowIdx), r.WorkerName)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowIdx), r.Contact)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowIdx), r.Days)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowIdx), hours)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", rowIdx), paid)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", rowIdx), due)
	}

	return f.SaveAs(path)
}
