package inventory

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// builtinAliases maps common shorthand to the canonical vendor name. Project
// config can layer more aliases on top.
var builtinAliases = map[string]string{
	"o365":       "Microsoft 365",
	"office 365": "Microsoft 365",
	"office365":  "Microsoft 365",
	"ms office":  "Microsoft 365",
	"ms teams":   "Microsoft Teams",
	"teams":      "Microsoft Teams",
	"gsuite":     "Google Workspace",
	"g suite":    "Google Workspace",
	"sfdc":       "Salesforce",
	"jira":       "Atlassian",
	"confluence": "Atlassian",
	"gh":         "GitHub",
	"amazon web services": "AWS",
}

// fuzzyScoreFloor is the minimum match score accepted when falling back to
// fuzzy matching against the known canonical names.
const fuzzyScoreFloor = 40

// Normalizer resolves raw tool names to canonical ones via an alias table,
// falling back to fuzzy matching against the known names.
type Normalizer struct {
	aliases    map[string]string
	canonicals []string
}

// NewNormalizer builds a normalizer from the built-in alias table merged
// with config overrides. Override keys win on collision.
func NewNormalizer(overrides map[string]string) *Normalizer {
	aliases := make(map[string]string, len(builtinAliases)+len(overrides))
	for alias, canonical := range builtinAliases {
		aliases[alias] = canonical
	}
	for alias, canonical := range overrides {
		alias = strings.ToLower(strings.TrimSpace(alias))
		canonical = strings.TrimSpace(canonical)
		if alias == "" || canonical == "" {
			continue
		}
		aliases[alias] = canonical
	}
	seen := map[string]bool{}
	var canonicals []string
	for _, canonical := range aliases {
		if !seen[canonical] {
			seen[canonical] = true
			canonicals = append(canonicals, canonical)
		}
	}
	sort.Strings(canonicals)
	return &Normalizer{aliases: aliases, canonicals: canonicals}
}

// Canonical returns the canonical name for a raw tool name. Unrecognized
// names are returned trimmed but otherwise untouched; normalization never
// invents a tool the caller did not name.
func (n *Normalizer) Canonical(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	key := strings.ToLower(trimmed)
	if canonical, ok := n.aliases[key]; ok {
		return canonical
	}
	for _, canonical := range n.canonicals {
		if strings.EqualFold(canonical, trimmed) {
			return canonical
		}
	}
	matches := fuzzy.Find(trimmed, n.canonicals)
	if len(matches) > 0 && matches[0].Score >= fuzzyScoreFloor {
		return matches[0].Str
	}
	return trimmed
}

// Known reports whether the name resolves to a canonical entry.
func (n *Normalizer) Known(raw string) bool {
	canonical := n.Canonical(raw)
	for _, known := range n.canonicals {
		if known == canonical {
			return true
		}
	}
	return false
}
