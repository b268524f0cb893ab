// =============================================================================
// Fixture Survey - Report Renderers
// =============================================================================
//
// Renderers turn a built report.Report into an output document. All of them
// read the same model, so every format shows the same rows, in the same order,
// on the same pages.
//
// FORMATS:
//   table - terminal preview, one lipgloss table per page
//   pdf   - printable A4 document, one sheet per page
//   xlsx  - workbook with one worksheet per page
//   json  - the report model with its pages
//   xml   - <report><page n="1"><unit n="1">...</unit></page></report>
//
// =============================================================================

package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ginjaninja78/fixture-survey/internal/report"
)

// Format names an output format.
type Format string

const (
	FormatTable Format = "table"
	FormatPDF   Format = "pdf"
	FormatXLSX  Format = "xlsx"
	FormatJSON  Format = "json"
	FormatXML   Format = "xml"
)

// ErrUnknownFormat is returned for a format name no renderer handles.
var ErrUnknownFormat = errors.New("unknown report format")

// Formats returns every supported format.
func Formats() []Format {
	return []Format{FormatTable, FormatPDF, FormatXLSX, FormatJSON, FormatXML}
}

// ParseFormat validates a format name (case-insensitive).
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownFormat, s)
}

// Extension returns the file extension of the format, without the dot.
func (f Format) Extension() string {
	if f == FormatTable {
		return "txt"
	}
	return string(f)
}

// Binary reports whether the format should not be written to a terminal.
func (f Format) Binary() bool {
	return f == FormatPDF || f == FormatXLSX
}

// Render writes the report in the given format.
//
// PARAMETERS:
//   - w: The destination.
//   - r: The built report.
//   - f: The output format.
//
// RETURNS:
//   - An error if the format is unknown or writing fails.
func Render(w io.Writer, r *report.Report, f Format) error {
	if r == nil {
		return errors.New("nothing to render: report is nil")
	}

	switch f {
	case FormatTable:
		_, err := io.WriteString(w, Table(r))
		return err
	case FormatPDF:
		return PDF(w, r)
	case FormatXLSX:
		return XLSX(w, r)
	case FormatJSON:
		return JSON(w, r)
	case FormatXML:
		return XML(w, r, DefaultXMLOptions())
	}

	return fmt.Errorf("%w %q", ErrUnknownFormat, f)
}

// pageHeading is the caption printed above each page of a multi-page report.
func pageHeading(r *report.Report, page int) string {
	if r.PageCount() <= 1 {
		return r.SectionTitle
	}
	return fmt.Sprintf("%s (page %d of %d)", r.SectionTitle, page+1, r.PageCount())
}
