package integration

import (
	"sort"
	"strings"
)

// Pattern describes the integration that is expected to exist between a
// known pair of tools.
type Pattern struct {
	ExpectedType Type
	DataFlow     string
	Criticality  string
	CommonIssues []string
}

// PatternTable holds the known integration patterns for common advisory-firm
// tools, keyed by alphabetically ordered normalized pair. It is built once
// at startup and passed into the checker.
type PatternTable struct {
	patterns map[[2]string]Pattern
}

// NewPatternTable builds the table of known tool-pair patterns.
func NewPatternTable() *PatternTable {
	table := &PatternTable{patterns: map[[2]string]Pattern{}}
	add := func(a, b string, p Pattern) {
		table.patterns[pairKey(a, b)] = p
	}

	add("365", "zoom", Pattern{
		ExpectedType: TypeCalendarSync,
		DataFlow:     "bidirectional",
		Criticality:  "high",
		CommonIssues: []string{"calendar sync failures", "authentication expiry", "timezone conflicts"},
	})
	add("365", "slack", Pattern{
		ExpectedType: TypeEmailSync,
		DataFlow:     "source_to_target",
		Criticality:  "medium",
		CommonIssues: []string{"notification overload", "attachment size limits"},
	})
	add("wealth box", "365", Pattern{
		ExpectedType: TypeEmailSync,
		DataFlow:     "bidirectional",
		Criticality:  "high",
		CommonIssues: []string{"contact sync delays", "duplicate entries", "field mapping errors"},
	})
	add("wealth box", "zoom", Pattern{
		ExpectedType: TypeCalendarSync,
		DataFlow:     "bidirectional",
		Criticality:  "medium",
		CommonIssues: []string{"meeting link generation", "attendee sync issues"},
	})
	add("factset", "365", Pattern{
		ExpectedType: TypeFileSync,
		DataFlow:     "source_to_target",
		Criticality:  "high",
		CommonIssues: []string{"data export formatting", "access permissions", "report delivery timing"},
	})
	add("bloomberg", "365", Pattern{
		ExpectedType: TypeFileSync,
		DataFlow:     "source_to_target",
		Criticality:  "high",
		CommonIssues: []string{"terminal export limits", "file format compatibility", "real-time data delays"},
	})
	add("advent axys", "wealth box", Pattern{
		ExpectedType: TypeDatabase,
		DataFlow:     "source_to_target",
		Criticality:  "high",
		CommonIssues: []string{"portfolio data sync", "client mapping", "performance attribution delays"},
	})
	add("schwab", "advent axys", Pattern{
		ExpectedType: TypeFileSync,
		DataFlow:     "source_to_target",
		Criticality:  "high",
		CommonIssues: []string{"trade settlement timing", "position reconciliation", "corporate action processing"},
	})
	add("schwab", "wealth box", Pattern{
		ExpectedType: TypeDatabase,
		DataFlow:     "source_to_target",
		Criticality:  "medium",
		CommonIssues: []string{"account opening sync", "document management", "client onboarding delays"},
	})
	return table
}

// Lookup returns the expected pattern for a tool pair regardless of order.
func (t *PatternTable) Lookup(tool1, tool2 string) (Pattern, bool) {
	pattern, ok := t.patterns[pairKey(tool1, tool2)]
	return pattern, ok
}

// pairKey normalizes both names and orders them so lookups are symmetric.
func pairKey(tool1, tool2 string) [2]string {
	pair := []string{normalizeToolName(tool1), normalizeToolName(tool2)}
	sort.Strings(pair)
	return [2]string{pair[0], pair[1]}
}

// normalizeToolName folds the vendor-name variations seen in client CSVs
// into the keys the pattern table uses.
func normalizeToolName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	switch {
	case strings.Contains(normalized, "microsoft"), strings.Contains(normalized, "office"), strings.Contains(normalized, "365"):
		return "365"
	case strings.Contains(normalized, "wealthbox"), strings.Contains(normalized, "wealth box"):
		return "wealth box"
	case strings.Contains(normalized, "advent"):
		return "advent axys"
	case strings.Contains(normalized, "bloomberg"):
		return "bloomberg"
	case strings.Contains(normalized, "schwab"):
		return "schwab"
	}
	return normalized
}
