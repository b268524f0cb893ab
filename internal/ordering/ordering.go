// =============================================================================
// Fixture Survey - Unit Ordering
// =============================================================================
//
// Report rows are ordered by their displayed unit:
//   - blank units first, in their existing order
//   - two plain digit strings compare numerically ("9" < "10")
//   - anything else compares naturally and case-insensitively through the
//     Unicode collation algorithm with numeric ordering ("Unit 9" < "Unit 10")
//
// The sorted rows are then cut into fixed-size report pages.
//
// =============================================================================

package ordering

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultPageSize is the number of units per report page.
const DefaultPageSize = 10

// Comparator compares unit identifiers. A Comparator is not safe for
// concurrent use; create one per sort.
type Comparator struct {
	collator *collate.Collator
}

// NewComparator creates a comparator using locale-neutral collation.
func NewComparator() *Comparator {
	return &Comparator{
		collator: collate.New(language.Und, collate.Numeric, collate.IgnoreCase),
	}
}

// Compare returns a negative number when a sorts before b, zero when they
// are equivalent and a positive number otherwise.
func (c *Comparator) Compare(a, b string) int {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)

	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	case b == "":
		return 1
	}

	// Only plain digit strings compare as numbers; "12B" and "+5" never do.
	if isDigits(a) && isDigits(b) {
		if n := compareDigits(a, b); n != 0 {
			return n
		}
	}

	return c.collator.CompareString(a, b)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// compareDigits compares two digit strings by value, without overflow.
func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if n := cmp.Compare(len(a), len(b)); n != 0 {
		return n
	}
	return strings.Compare(a, b)
}

// Compare compares two unit identifiers with a fresh Comparator.
func Compare(a, b string) int {
	return NewComparator().Compare(a, b)
}

// Sort orders items in place by the unit returned from unit. The sort is
// stable, so equivalent units keep their order.
func Sort[T any](items []T, unit func(T) string) {
	c := NewComparator()
	slices.SortStableFunc(items, func(x, y T) int {
		return c.Compare(unit(x), unit(y))
	})
}

// SortUnits returns a sorted copy of units.
func SortUnits(units []string) []string {
	sorted := slices.Clone(units)
	Sort(sorted, func(s string) string { return s })
	return sorted
}

// Paginate cuts items into contiguous pages of at most size items.
// A size of zero or less uses DefaultPageSize.
func Paginate[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = DefaultPageSize
	}

	pages := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		pages = append(pages, items[start:end])
	}
	return pages
}
