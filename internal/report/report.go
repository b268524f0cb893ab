// =============================================================================
// Fixture Survey - Report Model
// =============================================================================
//
// The report model is the single source every renderer reads from, so the
// terminal preview and the printed document never disagree.
//
// BUILD PROCESS:
//   1. Merge the consolidated base set with the operator overrides
//   2. Sort the merged rows naturally by their displayed unit
//   3. Split the sorted rows into pages
//   4. Decide which optional columns are shown
//
// =============================================================================

package report

import (
	"errors"
	"strings"
	"time"

	"github.com/ginjaninja78/fixture-survey/internal/consolidate"
	"github.com/ginjaninja78/fixture-survey/internal/ordering"
	"github.com/ginjaninja78/fixture-survey/internal/overrides"
	"github.com/ginjaninja78/fixture-survey/internal/session"
	"github.com/ginjaninja78/fixture-survey/internal/types"
)

// DefaultTitle is printed above the report when no title is configured.
const DefaultTitle = "Water Installation Report"

// Options controls how a report is laid out.
type Options struct {
	// Title is the document title.
	// Default: DefaultTitle
	Title string

	// PageSize is the number of units per page.
	// Default: ordering.DefaultPageSize
	PageSize int

	// Now stamps GeneratedAt. Defaults to time.Now.
	Now func() time.Time
}

// Report is a fully merged, sorted and paginated survey report.
type Report struct {
	Title        string                  `json:"title"`
	SectionTitle string                  `json:"sectionTitle"`
	Headers      overrides.ColumnHeaders `json:"columnHeaders"`
	Customer     session.CustomerInfo    `json:"customer"`
	SourceFile   string                  `json:"sourceFile"`
	GeneratedAt  time.Time               `json:"generatedAt"`
	ToiletCount  int                     `json:"toiletCount"`
	ShowShower   bool                    `json:"showShower"`
	ShowToilet   bool                    `json:"showToilet"`
	Rows         []overrides.Merged      `json:"rows"`
	Pages        [][]overrides.Merged    `json:"-"`
}

// Column is one displayed report column.
type Column struct {
	// Key is "unit", "notes" or a fixture name.
	Key   string `json:"key"`
	Title string `json:"title"`
}

// Build assembles the report for a session and its override state.
//
// PARAMETERS:
//   - sess: The loaded session. Must not be nil.
//   - state: The override state loaded from the same store.
//   - opts: Layout options.
//
// RETURNS:
//   - The report. A session without units yields a report with no pages.
//   - An error if sess is nil.
func Build(sess *session.Session, state overrides.State, opts Options) (*Report, error) {
	if sess == nil {
		return nil, errors.New("cannot build a report without a session")
	}

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = DefaultTitle
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	rows := overrides.Merge(sess.Base, state)
	ordering.Sort(rows, func(m overrides.Merged) string { return m.Unit })

	r := &Report{
		Title:        title,
		SectionTitle: state.SectionTitles.Details(),
		Headers:      state.ColumnHeaders,
		Customer:     sess.Customer,
		SourceFile:   sess.SourceFile,
		GeneratedAt:  now(),
		ToiletCount:  sess.ToiletCount,
		ShowShower:   len(state.AdditionalRows) > 0,
		Rows:         rows,
		Pages:        ordering.Paginate(rows, opts.PageSize),
	}

	for _, row := range rows {
		if row.Source.ShowerHeadCount > 0 {
			r.ShowShower = true
		}
		if strings.TrimSpace(row.Toilet) != "" {
			r.ShowToilet = true
		}
	}

	return r, nil
}

// Columns returns the displayed columns in print order.
func (r *Report) Columns() []Column {
	columns := []Column{
		{Key: "unit", Title: r.Headers.Unit},
		{Key: string(types.Kitchen), Title: r.Headers.Kitchen},
		{Key: string(types.Bathroom), Title: r.Headers.Bathroom},
	}
	if r.ShowShower {
		columns = append(columns, Column{Key: string(types.Shower), Title: r.Headers.Shower})
	}
	if r.ShowToilet {
		columns = append(columns, Column{Key: string(types.Toilet), Title: r.Headers.Toilet})
	}
	return append(columns, Column{Key: "notes", Title: r.Headers.Notes})
}

// Cells returns the values of one row, aligned with Columns. With printed set,
// "No Touch." is replaced by the print placeholder.
func (r *Report) Cells(row overrides.Merged, printed bool) []string {
	columns := r.Columns()
	cells := make([]string, len(columns))

	for i, column := range columns {
		switch column.Key {
		case "unit":
			cells[i] = row.Unit
		case "notes":
			cells[i] = row.Note
		default:
			cells[i] = row.Installation(types.Fixture(column.Key))
			if printed {
				cells[i] = consolidate.PrintDescription(cells[i])
			}
		}
	}

	return cells
}

// PageCount returns the number of pages.
func (r *Report) PageCount() int {
	return len(r.Pages)
}

// CustomerLines returns the non-empty customer block lines, in print order.
func (r *Report) CustomerLines() []string {
	c := r.Customer

	cityLine := strings.TrimSpace(strings.Join(nonEmpty(c.City, strings.TrimSpace(c.State+" "+c.Zip)), ", "))

	return nonEmpty(c.CustomerName, c.PropertyName, c.Address, cityLine, c.Date)
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
