package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/ginjaninja78/fixture-survey/internal/overrides"
	"github.com/ginjaninja78/fixture-survey/internal/report"
)

// PDF layout, in points.
const (
	pdfMargin       = 40.0
	pdfTitleSize    = 24.0
	pdfHeaderSize   = 12.0
	pdfCellSize     = 10.0
	pdfLineHeight   = 14.0
	pdfCellPadding  = 5.0
	pdfNotesColumns = 2.0 // the notes column is this many times wider
)

// PDF writes the report as an A4 document. Every report page starts a new
// sheet; rows that do not fit on it continue on the next sheet under the same
// heading. "No Touch." cells print as the placeholder dash.
func PDF(w io.Writer, r *report.Report) error {
	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	doc.SetAutoPageBreak(false, pdfMargin)
	doc.SetTitle(r.Title, true)
	doc.SetCreator("survey", true)

	// Core fonts are cp1252; the dash placeholder has a code point there.
	tr := doc.UnicodeTranslatorFromDescriptor("")

	columns := r.Columns()
	widths := columnWidths(doc, columns)

	pages := r.Pages
	if len(pages) == 0 {
		// An empty report still prints its title page.
		pages = [][]overrides.Merged{nil}
	}

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.Title
	}

	_, pageHeight := doc.GetPageSize()
	bottom := pageHeight - pdfMargin

	// startSheet opens a new sheet with the title block and column header.
	startSheet := func(page int, continued bool) {
		doc.AddPage()
		writePDFTitle(doc, tr, r, page, continued)

		doc.SetFont("Helvetica", "B", pdfHeaderSize)
		doc.SetFillColor(0xf0, 0xf0, 0xf0)
		writePDFRow(doc, tr, widths, header, true)
		doc.SetFont("Helvetica", "", pdfCellSize)
	}

	for page, rows := range pages {
		startSheet(page, false)
		onSheet := 0

		for _, row := range rows {
			cells := r.Cells(row, true)
			// A row that does not fit continues the report page on a new sheet.
			if _, top := doc.GetXY(); onSheet > 0 && top+pdfRowHeight(doc, tr, widths, cells) > bottom {
				startSheet(page, true)
				onSheet = 0
			}
			writePDFRow(doc, tr, widths, cells, false)
			onSheet++
		}

		if page == len(pages)-1 {
			if _, top := doc.GetXY(); top+2*pdfLineHeight > bottom {
				startSheet(page, true)
			}
			doc.Ln(pdfLineHeight)
			doc.SetFont("Helvetica", "B", pdfCellSize)
			doc.CellFormat(0, pdfLineHeight, tr(fmt.Sprintf("Total toilets installed: %d", r.ToiletCount)), "", 1, "L", false, 0, "")
		}
	}

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

// writePDFTitle prints the title block of a sheet. The customer block is only
// printed on the first sheet.
func writePDFTitle(doc *fpdf.Fpdf, tr func(string) string, r *report.Report, page int, continued bool) {
	doc.SetFont("Helvetica", "", pdfTitleSize)
	doc.CellFormat(0, pdfTitleSize+6, tr(r.Title), "", 1, "C", false, 0, "")

	if page == 0 && !continued {
		doc.SetFont("Helvetica", "", pdfCellSize)
		for _, line := range r.CustomerLines() {
			doc.CellFormat(0, pdfLineHeight, tr(line), "", 1, "C", false, 0, "")
		}
	}
	doc.Ln(pdfLineHeight)

	doc.SetFont("Helvetica", "B", pdfHeaderSize)
	heading := pageHeading(r, page)
	if continued {
		heading += " (continued)"
	}
	doc.CellFormat(0, pdfLineHeight+4, tr(heading), "", 1, "L", false, 0, "")
}

// columnWidths spreads the printable width over the columns, giving the
// notes column a larger share.
func columnWidths(doc *fpdf.Fpdf, columns []report.Column) []float64 {
	pageWidth, _ := doc.GetPageSize()
	usable := pageWidth - 2*pdfMargin

	shares := 0.0
	for _, c := range columns {
		shares += columnShare(c)
	}

	widths := make([]float64, len(columns))
	for i, c := range columns {
		widths[i] = usable * columnShare(c) / shares
	}
	return widths
}

func columnShare(c report.Column) float64 {
	if c.Key == "notes" {
		return pdfNotesColumns
	}
	return 1
}

// wrapPDFCells splits every cell into the lines it prints as, with the
// current font.
func wrapPDFCells(doc *fpdf.Fpdf, tr func(string) string, widths []float64, cells []string) ([][]string, int) {
	wrapped := make([][]string, len(cells))
	lines := 1
	for i, cell := range cells {
		for _, line := range doc.SplitLines([]byte(tr(cell)), widths[i]-2*pdfCellPadding) {
			wrapped[i] = append(wrapped[i], string(line))
		}
		lines = max(lines, len(wrapped[i]))
	}
	return wrapped, lines
}

// pdfRowHeight returns the height writePDFRow needs for cells.
func pdfRowHeight(doc *fpdf.Fpdf, tr func(string) string, widths []float64, cells []string) float64 {
	_, lines := wrapPDFCells(doc, tr, widths, cells)
	return float64(lines)*pdfLineHeight + 2*pdfCellPadding
}

// writePDFRow draws one bordered table row. Cells wrap, and the row is as
// tall as its tallest cell.
func writePDFRow(doc *fpdf.Fpdf, tr func(string) string, widths []float64, cells []string, fill bool) {
	wrapped, lines := wrapPDFCells(doc, tr, widths, cells)
	height := float64(lines)*pdfLineHeight + 2*pdfCellPadding

	style := "D"
	if fill {
		style = "FD"
	}

	left, top := doc.GetXY()
	x := left
	for i := range cells {
		doc.Rect(x, top, widths[i], height, style)
		for j, line := range wrapped[i] {
			doc.SetXY(x+pdfCellPadding, top+pdfCellPadding+float64(j)*pdfLineHeight)
			doc.CellFormat(widths[i]-2*pdfCellPadding, pdfLineHeight, strings.TrimSpace(line), "", 0, "C", false, 0, "")
		}
		x += widths[i]
	}
	doc.SetXY(left, top+height)
}
