package render

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/fixture-survey/internal/overrides"
	"github.com/ginjaninja78/fixture-survey/internal/report"
)

// XLSX writes the report as a workbook with one worksheet per report page.
// Each sheet starts with the title and section heading, followed by the
// column header row and the unit rows. The last sheet carries the toilet total.
func XLSX(w io.Writer, r *report.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"F0F0F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", WrapText: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}})
	if err != nil {
		return fmt.Errorf("failed to create title style: %w", err)
	}

	pages := r.Pages
	if len(pages) == 0 {
		pages = [][]overrides.Merged{nil}
	}

	columns := r.Columns()
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c.Title
	}
	lastColumn, err := excelize.ColumnNumberToName(len(columns))
	if err != nil {
		return err
	}

	for page, rows := range pages {
		sheet := fmt.Sprintf("Page %d", page+1)
		if page == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("failed to name sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to add sheet %q: %w", sheet, err)
		}

		if err := f.SetCellValue(sheet, "A1", r.Title); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", "A1", titleStyle); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, "A2", pageHeading(r, page)); err != nil {
			return err
		}

		if err := f.SetSheetRow(sheet, "A4", &header); err != nil {
			return fmt.Errorf("failed to write header row: %w", err)
		}
		if err := f.SetCellStyle(sheet, "A4", lastColumn+"4", headerStyle); err != nil {
			return err
		}

		for i, row := range rows {
			cells := r.Cells(row, false)
			values := make([]interface{}, len(cells))
			for j, c := range cells {
				values[j] = c
			}
			cell, err := excelize.CoordinatesToCellName(1, 5+i)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return fmt.Errorf("failed to write unit %q: %w", row.Unit, err)
			}
		}

		if err := f.SetColWidth(sheet, "A", lastColumn, 20); err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, lastColumn, lastColumn, 48); err != nil {
			return err
		}

		if page == len(pages)-1 {
			cell, err := excelize.CoordinatesToCellName(1, 6+len(rows))
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, fmt.Sprintf("Total toilets installed: %d", r.ToiletCount)); err != nil {
				return err
			}
		}
	}

	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
