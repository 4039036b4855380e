package pipeline

import (
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

func reportWorkbook(report Report) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, h := range report.Headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for i, row := range report.Rows {
		r := i + 2
		for c, value := range row {
			if value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

func WriteReportXLSX(report Report, w io.Writer) error {
	f, err := reportWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}

func ExportReportToXLSX(report Report, outputPath string) error {
	f, err := reportWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
