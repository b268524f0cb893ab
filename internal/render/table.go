package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ginjaninja78/fixture-survey/internal/report"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// maxNoteWidth keeps long notes from pushing the table off screen.
const maxNoteWidth = 48

// Table renders the report as terminal tables, one per page.
func Table(r *report.Report) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(r.Title))
	sb.WriteString("\n")
	for _, line := range r.CustomerLines() {
		sb.WriteString(mutedStyle.Render(line))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	if r.PageCount() == 0 {
		sb.WriteString(mutedStyle.Render("No units to report."))
		sb.WriteString("\n")
		return sb.String()
	}

	columns := r.Columns()
	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = c.Title
	}

	for page, rows := range r.Pages {
		cells := make([][]string, len(rows))
		for i, row := range rows {
			cells[i] = r.Cells(row, false)
		}

		sb.WriteString(sectionStyle.Render(pageHeading(r, page)))
		sb.WriteString("\n")
		sb.WriteString(pageTable(headers, cells).Render())
		sb.WriteString("\n\n")
	}

	sb.WriteString(mutedStyle.Render(fmt.Sprintf("Units: %d   Toilets installed: %d", len(r.Rows), r.ToiletCount)))
	sb.WriteString("\n")

	return sb.String()
}

// pageTable lays out one report page. The notes column is the last one and
// wraps at maxNoteWidth.
func pageTable(headers []string, rows [][]string) *table.Table {
	notes := len(headers) - 1
	wrapNotes := false
	for _, row := range rows {
		if notes < len(row) && lipgloss.Width(row[notes]) > maxNoteWidth {
			wrapNotes = true
		}
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := cellStyle
			if row == table.HeaderRow {
				style = headerStyle
			}
			if col == notes && wrapNotes {
				// Width includes the padding.
				style = style.Width(maxNoteWidth + 2)
			}
			return style
		})
}
