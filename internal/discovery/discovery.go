// =============================================================================
// Fixture Survey - Column Discovery
// =============================================================================
//
// Survey exports have no fixed schema. This module inspects the header row
// (or, for header-less input, the key sets of the first rows) and decides:
//   - which column holds the unit identifier
//   - which columns hold kitchen aerator, bathroom aerator, shower head and
//     toilet installation signals
//
// DETECTION STRATEGIES:
//   - fixed_columns          : fixture columns at configured indices
//   - header_keyword_search  : compound keyword rules on header names
//   - cell_content_scan      : no fixture columns; cells are scanned instead
//   - auto                   : header keyword search, falling back to cell
//                              content scan when no fixture column matches
//
// =============================================================================

package discovery

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/fixture-survey/internal/ordering"
	"github.com/ginjaninja78/fixture-survey/internal/types"
)

// UnitKeywords are the header fragments that identify the unit column.
var UnitKeywords = []string{"unit", "apt", "apartment", "room", "suite"}

// MaxSampleRows bounds how many rows SampleHeaders inspects.
const MaxSampleRows = 10

// =============================================================================
// UNIT COLUMN
// =============================================================================

// DiscoverUnitColumn returns the first header whose lower-cased name contains
// one of the UnitKeywords. When nothing matches and allowFallback is set, the
// first header is returned instead.
func DiscoverUnitColumn(headers []string, allowFallback bool) (string, bool) {
	for _, header := range headers {
		if isUnitHeader(header) {
			return header, true
		}
	}

	if allowFallback {
		for _, header := range headers {
			if strings.TrimSpace(header) != "" {
				return header, true
			}
		}
	}

	return "", false
}

func isUnitHeader(header string) bool {
	lower := strings.ToLower(header)
	for _, keyword := range UnitKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// SampleHeaders collects the column names seen in the first n rows.
// It is used when the input carries no usable header row. Blank names and
// the literal "undefined"/"null" keys left behind by sloppy exporters are
// ignored. The result is in natural order (Column_2 before Column_10).
func SampleHeaders(rows []types.RawRow, n int) []string {
	if n <= 0 || n > MaxSampleRows {
		n = MaxSampleRows
	}
	if n > len(rows) {
		n = len(rows)
	}

	seen := make(map[string]struct{})
	for _, row := range rows[:n] {
		for key := range row {
			key = strings.TrimSpace(key)
			if key == "" || key == "undefined" || key == "null" {
				continue
			}
			seen[key] = struct{}{}
		}
	}

	headers := make([]string, 0, len(seen))
	for key := range seen {
		headers = append(headers, key)
	}
	return ordering.SortUnits(headers)
}

// =============================================================================
// FIXTURE COLUMNS
// =============================================================================

// fixtureRule matches a header name against a fixture role.
type fixtureRule struct {
	fixture types.Fixture
	match   func(lower string) bool
}

// fixtureRules are evaluated in order for every header. A header is claimed
// by the first rule that matches and whose role is still unassigned.
var fixtureRules = []fixtureRule{
	{
		fixture: types.Kitchen,
		match: func(h string) bool {
			return (strings.Contains(h, "kitchen") && strings.Contains(h, "aerator")) ||
				strings.Contains(h, "kitchen aerator") ||
				strings.Contains(h, "kit aerator")
		},
	},
	{
		fixture: types.Bathroom,
		match: func(h string) bool {
			return ((strings.Contains(h, "bathroom") || strings.Contains(h, "bath")) && strings.Contains(h, "aerator")) ||
				strings.Contains(h, "bathroom aerator") ||
				strings.Contains(h, "bath aerator")
		},
	},
	{
		fixture: types.Shower,
		match: func(h string) bool {
			return (strings.Contains(h, "shower") && (strings.Contains(h, "head") || strings.Contains(h, "aerator"))) ||
				strings.Contains(h, "showerhead") ||
				strings.Contains(h, "shower head")
		},
	},
	{
		fixture: types.Toilet,
		match: func(h string) bool {
			return strings.Contains(h, "toilet") || strings.Contains(h, "wc")
		},
	},
}

// DiscoverFixtureColumns assigns fixture roles by header keyword rules.
// Roles with no matching header stay types.NotFound; this never fails.
func DiscoverFixtureColumns(headers []string) types.ColumnRoleMap {
	roles := types.NewColumnRoleMap(headers)

	for idx, header := range headers {
		lower := strings.ToLower(strings.TrimSpace(header))
		if lower == "" {
			continue
		}
		for _, rule := range fixtureRules {
			if roles.Index(rule.fixture) != types.NotFound || !rule.match(lower) {
				continue
			}
			setRole(&roles, rule.fixture, idx)
			break
		}
	}

	return roles
}

func setRole(roles *types.ColumnRoleMap, f types.Fixture, idx int) {
	switch f {
	case types.Kitchen:
		roles.Kitchen = idx
	case types.Bathroom:
		roles.Bathroom = idx
	case types.Shower:
		roles.Shower = idx
	case types.Toilet:
		roles.Toilet = idx
	}
}

// =============================================================================
// STRATEGIES
// =============================================================================

// Strategy selects how fixture columns are detected.
type Strategy string

const (
	StrategyAuto          Strategy = "auto"
	StrategyFixedColumns  Strategy = "fixed_columns"
	StrategyHeaderKeyword Strategy = "header_keyword_search"
	StrategyCellScan      Strategy = "cell_content_scan"
)

// ParseStrategy validates a strategy name. An empty name means auto.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.TrimSpace(s)) {
	case "", StrategyAuto:
		return StrategyAuto, nil
	case StrategyFixedColumns:
		return StrategyFixedColumns, nil
	case StrategyHeaderKeyword:
		return StrategyHeaderKeyword, nil
	case StrategyCellScan:
		return StrategyCellScan, nil
	}
	return "", fmt.Errorf("unknown detection strategy %q", s)
}

// FixedColumns holds 0-based column indices for the fixed_columns strategy.
// A negative index means the fixture is not present in the input.
type FixedColumns struct {
	Kitchen  int `yaml:"kitchen"`
	Bathroom int `yaml:"bathroom"`
	Shower   int `yaml:"shower"`
	Toilet   int `yaml:"toilet"`
}

// Resolve builds the column role map for the given strategy and returns the
// strategy that was effectively applied. Under auto, header keyword search
// wins whenever it finds at least one aerator or shower column.
func Resolve(headers []string, strategy Strategy, fixed FixedColumns) (types.ColumnRoleMap, Strategy) {
	switch strategy {
	case StrategyFixedColumns:
		return fixedRoles(headers, fixed), StrategyFixedColumns

	case StrategyCellScan:
		roles := types.NewColumnRoleMap(headers)
		// Toilets have no cell vocabulary to scan for; keep the header match.
		roles.Toilet = DiscoverFixtureColumns(headers).Toilet
		return roles, StrategyCellScan

	case StrategyHeaderKeyword:
		return DiscoverFixtureColumns(headers), StrategyHeaderKeyword
	}

	roles := DiscoverFixtureColumns(headers)
	if roles.HasFixtures() {
		return roles, StrategyHeaderKeyword
	}
	return roles, StrategyCellScan
}

// ToiletColumns returns every column the report toilet total is counted
// over: all headers mentioning "toilet" or "wc", or only the configured
// toilet column under the fixed_columns strategy.
func ToiletColumns(roles types.ColumnRoleMap, strategy Strategy) []string {
	if strategy == StrategyFixedColumns {
		if column := roles.Column(types.Toilet); column != "" {
			return []string{column}
		}
		return nil
	}

	var columns []string
	for _, header := range roles.Headers {
		lower := strings.ToLower(header)
		if strings.Contains(lower, "toilet") || strings.Contains(lower, "wc") {
			columns = append(columns, header)
		}
	}
	return columns
}

func fixedRoles(headers []string, fixed FixedColumns) types.ColumnRoleMap {
	roles := types.NewColumnRoleMap(headers)
	inRange := func(idx int) int {
		if idx < 0 || idx >= len(headers) {
			return types.NotFound
		}
		return idx
	}
	roles.Kitchen = inRange(fixed.Kitchen)
	roles.Bathroom = inRange(fixed.Bathroom)
	roles.Shower = inRange(fixed.Shower)
	roles.Toilet = inRange(fixed.Toilet)
	return roles
}
