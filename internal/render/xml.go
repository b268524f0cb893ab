package render

// =============================================================================
// XML RENDERER
// =============================================================================
//
// XML STRUCTURE:
//
//   <report title="Water Installation Report">   <!-- Root element -->
//     <customer>                                 <!-- Optional customer block -->
//       <name>Acme Housing</name>
//     </customer>
//     <page n="1" title="Detailed Unit Information">
//       <unit n="1">                             <!-- Unit with global index -->
//         <unit>101</unit>                       <!-- One element per column -->
//         <kitchen>1.0 GPM</kitchen>
//         <bathroom>No Touch.</bathroom>
//         <notes/>
//       </unit>
//     </page>
//     <page n="2" ...>
//       <unit n="11">                            <!-- Global numbering continues -->
//     </page>
//     <toiletCount>4</toiletCount>
//   </report>
//
// =============================================================================

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/ginjaninja78/fixture-survey/internal/report"
)

// XMLOptions contains options for XML generation.
type XMLOptions struct {
	// Indent is the string used for indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool

	// UnitNumberingGlobal determines if unit numbering is global.
	// If true: units are numbered 1, 2, 3, 4... across all pages.
	// If false: numbering restarts at 1 on every page.
	// Default: true
	UnitNumberingGlobal bool

	// IndexAttribute is the attribute name for page and unit indices.
	// Default: "n"
	IndexAttribute string
}

// DefaultXMLOptions returns the default generation options.
func DefaultXMLOptions() XMLOptions {
	return XMLOptions{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
		UnitNumberingGlobal:   true,
		IndexAttribute:        "n",
	}
}

// xmlElement is a generic XML element.
type xmlElement struct {
	Name       string
	Attributes [][2]string
	Value      string
	Children   []xmlElement
}

// XML writes the report as an XML document.
func XML(w io.Writer, r *report.Report, options XMLOptions) error {
	var buffer bytes.Buffer

	if options.IncludeXMLDeclaration {
		buffer.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	}

	writeElement(&buffer, buildXMLDocument(r, options), options.Indent, 0)

	if _, err := w.Write(buffer.Bytes()); err != nil {
		return fmt.Errorf("failed to write XML: %w", err)
	}
	return nil
}

// buildXMLDocument constructs the element tree of the report.
func buildXMLDocument(r *report.Report, options XMLOptions) xmlElement {
	doc := xmlElement{
		Name:       "report",
		Attributes: [][2]string{{"title", r.Title}},
	}

	if lines := r.CustomerLines(); len(lines) > 0 {
		c := r.Customer
		customer := xmlElement{Name: "customer"}
		for _, field := range [][2]string{
			{"name", c.CustomerName},
			{"property", c.PropertyName},
			{"address", c.Address},
			{"city", c.City},
			{"state", c.State},
			{"zip", c.Zip},
			{"date", c.Date},
		} {
			if field[1] != "" {
				customer.Children = append(customer.Children, xmlElement{Name: field[0], Value: field[1]})
			}
		}
		doc.Children = append(doc.Children, customer)
	}

	columns := r.Columns()
	globalIndex := 1

	for p, rows := range r.Pages {
		page := xmlElement{
			Name: "page",
			Attributes: [][2]string{
				{options.IndexAttribute, strconv.Itoa(p + 1)},
				{"title", r.SectionTitle},
			},
		}

		for i, row := range rows {
			index := i + 1
			if options.UnitNumberingGlobal {
				index = globalIndex
			}
			globalIndex++

			unit := xmlElement{
				Name:       "unit",
				Attributes: [][2]string{{options.IndexAttribute, strconv.Itoa(index)}},
			}
			if row.Added {
				unit.Attributes = append(unit.Attributes, [2]string{"added", "true"})
			}
			cells := r.Cells(row, false)
			for j, c := range columns {
				unit.Children = append(unit.Children, xmlElement{Name: c.Key, Value: cells[j]})
			}
			page.Children = append(page.Children, unit)
		}

		doc.Children = append(doc.Children, page)
	}

	doc.Children = append(doc.Children, xmlElement{Name: "toiletCount", Value: strconv.Itoa(r.ToiletCount)})

	return doc
}

// writeElement recursively writes an element with indentation.
func writeElement(buffer *bytes.Buffer, element xmlElement, indent string, level int) {
	for i := 0; i < level; i++ {
		buffer.WriteString(indent)
	}

	buffer.WriteString("<")
	buffer.WriteString(element.Name)

	for _, attr := range element.Attributes {
		buffer.WriteString(fmt.Sprintf(" %s=\"%s\"", attr[0], escapeXML(attr[1])))
	}

	// Self-closing tag if no content.
	if len(element.Children) == 0 && element.Value == "" {
		buffer.WriteString("/>\n")
		return
	}

	buffer.WriteString(">")

	if element.Value != "" {
		buffer.WriteString(escapeXML(element.Value))
	} else {
		buffer.WriteString("\n")

		for _, child := range element.Children {
			writeElement(buffer, child, indent, level+1)
		}

		for i := 0; i < level; i++ {
			buffer.WriteString(indent)
		}
	}

	buffer.WriteString("</")
	buffer.WriteString(element.Name)
	buffer.WriteString(">\n")
}

// escapeXML escapes special characters in XML content.
func escapeXML(s string) string {
	var buffer bytes.Buffer

	for _, r := range s {
		switch r {
		case '&':
			buffer.WriteString("&amp;")
		case '<':
			buffer.WriteString("&lt;")
		case '>':
			buffer.WriteString("&gt;")
		case '"':
			buffer.WriteString("&quot;")
		case '\'':
			buffer.WriteString("&apos;")
		default:
			buffer.WriteRune(r)
		}
	}

	return buffer.String()
}
