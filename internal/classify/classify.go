// Package classify decides whether a survey cell denotes an installed fixture.
package classify

import "strings"

// Func classifies a single cell value.
type Func func(value string) bool

var installedValues = map[string]struct{}{
	"male":      {},
	"female":    {},
	"insert":    {},
	"1":         {},
	"2":         {},
	"yes":       {},
	"installed": {},
	"x":         {},
}

var toiletValues = map[string]struct{}{
	"1":         {},
	"yes":       {},
	"installed": {},
	"x":         {},
}

// IsInstalled reports whether an aerator or shower head cell means "installed".
// Any value mentioning a flow rate ("gpm") counts as installed.
func IsInstalled(value string) bool {
	v := normalize(value)
	if v == "" {
		return false
	}
	if _, ok := installedValues[v]; ok {
		return true
	}
	return strings.Contains(v, "gpm")
}

// IsToiletInstalled reports whether a toilet cell means "installed".
func IsToiletInstalled(value string) bool {
	_, ok := toiletValues[normalize(value)]
	return ok
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
