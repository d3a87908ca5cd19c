package agent

import (
	"strings"

	"github.com/dfquinn23/tech-stack-audit-tool/internal/changelog"
)

// ParseBulletList splits agent output into de-duplicated bullet
// items. Lines without a bullet marker are kept as-is.
func ParseBulletList(text string) []string {
	var items []string
	seen := map[string]bool{}
	for _, raw := range strings.Split(strings.TrimSpace(text), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		for _, marker := range []string{"- ", "* ", "• "} {
			if strings.HasPrefix(line, marker) {
				line = strings.TrimSpace(strings.TrimPrefix(line, marker))
				break
			}
		}
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true
		items = append(items, line)
	}
	return items
}

// ParseResearchLines reads "- [YYYY-MM-DD] Title: description" lines
// back into changelog entries, skipping anything malformed.
func ParseResearchLines(text string) []changelog.Entry {
	var entries []changelog.Entry
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		line = strings.TrimPrefix(line, "- ")
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "[") {
			continue
		}
		closing := strings.Index(line, "]")
		if closing < 0 {
			continue
		}
		date := strings.TrimSpace(line[1:closing])
		rest := line[closing+1:]
		title, description, found := strings.Cut(rest, ":")
		if !found {
			continue
		}
		entries = append(entries, changelog.Entry{
			Date:        date,
			Title:       strings.TrimSpace(title),
			Description: strings.TrimSpace(description),
		})
	}
	return entries
}
