package consolidate

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ginjaninja78/fixture-survey/internal/types"
)

const (
	// NotAccessed is the default note of a unit where nothing was installed.
	NotAccessed = "Unit not accessed."

	// NoTouch describes a fixture slot with nothing installed.
	NoTouch = "No Touch."

	// PrintPlaceholder replaces NoTouch in printed tables.
	PrintPlaceholder = "—"
)

// Rated flows printed for a single installation.
const (
	aeratorFlow = "1.0 GPM"
	showerFlow  = "1.75 GPM"
)

// CompileDefaultNote returns NotAccessed for a unit with all counts at zero
// and "" otherwise.
func CompileDefaultNote(u types.ConsolidatedUnit) string {
	if u.Untouched() {
		return NotAccessed
	}
	return ""
}

// FormatNote rewrites free text in sentence case: the text is split on
// periods, every non-empty fragment is trimmed, capitalised and otherwise
// lower-cased, and the fragments are joined with ". ". A trailing period is
// kept only if the input ended with one. FormatNote is idempotent.
func FormatNote(text string) string {
	if text == "" {
		return ""
	}

	var sentences []string
	for _, fragment := range strings.Split(text, ".") {
		fragment = strings.TrimSpace(fragment)
		if fragment == "" {
			continue
		}
		sentences = append(sentences, capitalize(fragment))
	}

	out := strings.Join(sentences, ". ")
	if strings.HasSuffix(text, ".") {
		out += "."
	}
	return out
}

func capitalize(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}

// AeratorDescription renders a fixture count for the report:
// 0 is "No Touch.", 1 is the rated flow, more is the flow with the count.
func AeratorDescription(count int, f types.Fixture) string {
	if count <= 0 {
		return NoTouch
	}

	flow := aeratorFlow
	if f == types.Shower {
		flow = showerFlow
	}

	if count == 1 {
		return flow
	}
	return fmt.Sprintf("%s (%d)", flow, count)
}

// PrintDescription swaps NoTouch for the print placeholder.
func PrintDescription(desc string) string {
	if desc == NoTouch {
		return PrintPlaceholder
	}
	return desc
}
