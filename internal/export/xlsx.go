package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ZanzyTHEbar/teamconstructor/internal/database"
	"github.com/ZanzyTHEbar/teamconstructor/internal/journal"
	"github.com/ZanzyTHEbar/teamconstructor/internal/psychology"
)

const (
	// SheetName is the worksheet holding the results
	SheetName   = "Results"
	dateLayout  = "02.01.2006 15:04"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Headers lists the columns of the export
func Headers() []string {
	headers := []string{"ID", "Name", "Email", "Date", "Duration", "Main octant", "Main value", "Passed"}
	for _, code := range psychology.OctantCodes {
		headers = append(headers, code)
	}
	return headers
}

// Row flattens one decoded result. Score columns stay empty when the
// stored payload could not be decoded.
func Row(result database.DecodedResult) []interface{} {
	row := []interface{}{
		result.ID,
		result.FullName,
		result.Email,
		result.CreatedAt.Format(dateLayout),
		journal.FormatDuration(result.CreatedAt, result.CreatedAt.Add(result.Duration())),
	}

	if result.Result == nil {
		return row
	}

	passed := "no"
	if result.Passed {
		passed = "yes"
	}
	row = append(row, result.Result.MainOctant.Code, result.Result.MainOctant.Value, passed)
	for _, octant := range result.Result.Portrait {
		row = append(row, octant.Value)
	}
	return row
}

func build(results []database.DecodedResult) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, err
	}

	for i, h := range Headers() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			f.Close()
			return nil, err
		}
	}

	for r, result := range results {
		for c, v := range Row(result) {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	return f, nil
}

// Write streams the workbook to w
func Write(w io.Writer, results []database.DecodedResult) error {
	f, err := build(results)
	if err != nil {
		return fmt.Errorf("failed to build workbook: %w", err)
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteFile saves the workbook at path
func WriteFile(path string, results []database.DecodedResult) error {
	f, err := build(results)
	if err != nil {
		return fmt.Errorf("failed to build workbook: %w", err)
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
