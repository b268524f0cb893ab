package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ginjaninja78/fixture-survey/internal/report"
)

// jsonDocument is the JSON shape of a report: the model plus its pages,
// each page listing the displayed cells keyed by column.
type jsonDocument struct {
	*report.Report
	Columns []report.Column `json:"columns"`
	Pages   []jsonPage      `json:"pages"`
}

type jsonPage struct {
	Number int                 `json:"number"`
	Units  []map[string]string `json:"units"`
}

// JSON writes the report as an indented JSON document.
func JSON(w io.Writer, r *report.Report) error {
	doc := jsonDocument{
		Report:  r,
		Columns: r.Columns(),
		Pages:   make([]jsonPage, 0, r.PageCount()),
	}

	for i, rows := range r.Pages {
		page := jsonPage{Number: i + 1, Units: make([]map[string]string, 0, len(rows))}
		for _, row := range rows {
			cells := r.Cells(row, false)
			unit := make(map[string]string, len(cells))
			for j, c := range doc.Columns {
				unit[c.Key] = cells[j]
			}
			page.Units = append(page.Units, unit)
		}
		doc.Pages = append(doc.Pages, page)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
