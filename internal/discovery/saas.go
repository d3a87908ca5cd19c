// Package discovery probes a client's domain and the public APIs of
// known SaaS vendors to enrich the tool inventory without any manual
// input. Findings are cached on disk so repeated runs during an audit
// do not hammer DNS or vendor endpoints.
package discovery

import "strings"

// Pattern describes the observable footprint of one SaaS product:
// the vendor domains its CNAME records point at and the public API
// root that answers unauthenticated probes.
type Pattern struct {
	Name        string
	Domains     []string
	APIEndpoint string
	Category    string
}

// PatternSet holds the known SaaS patterns keyed by normalized name.
type PatternSet struct {
	byName map[string]Pattern
	order  []Pattern
}

// NewPatternSet returns the built-in catalog of SaaS products the
// engine can recognize from DNS evidence or API probes.
func NewPatternSet() *PatternSet {
	patterns := []Pattern{
		{
			Name:        "zoom",
			Domains:     []string{"zoom.us", "zoomgov.com"},
			APIEndpoint: "https://api.zoom.us/v2/",
			Category:    "Video Conferencing",
		},
		{
			Name:        "microsoft365",
			Domains:     []string{"outlook.office.com", "teams.microsoft.com", "office.com"},
			APIEndpoint: "https://graph.microsoft.com/v1.0/",
			Category:    "Productivity Suite",
		},
		{
			Name:        "slack",
			Domains:     []string{"slack.com"},
			APIEndpoint: "https://slack.com/api/",
			Category:    "Communication",
		},
		{
			Name:        "salesforce",
			Domains:     []string{"salesforce.com", "force.com"},
			APIEndpoint: "https://api.salesforce.com/",
			Category:    "CRM",
		},
		{
			Name:        "google_workspace",
			Domains:     []string{"gmail.com", "googlemail.com"},
			APIEndpoint: "https://www.googleapis.com/",
			Category:    "Productivity Suite",
		},
		{
			Name:        "atlassian",
			Domains:     []string{"atlassian.net", "atlassian.com"},
			APIEndpoint: "https://api.atlassian.com/",
			Category:    "Development Tools",
		},
		{
			Name:        "github",
			Domains:     []string{"github.com", "github.io"},
			APIEndpoint: "https://api.github.com/",
			Category:    "Development Tools",
		},
		{
			Name:        "aws",
			Domains:     []string{"amazonaws.com", "aws.amazon.com"},
			APIEndpoint: "https://aws.amazon.com/api/",
			Category:    "Cloud Services",
		},
	}

	set := &PatternSet{byName: make(map[string]Pattern, len(patterns))}
	for _, p := range patterns {
		set.byName[normalizePatternKey(p.Name)] = p
		set.order = append(set.order, p)
	}
	return set
}

// Lookup returns the pattern registered under the given tool name.
// Names are matched loosely so "Microsoft 365" finds "microsoft365".
func (s *PatternSet) Lookup(name string) (Pattern, bool) {
	key := normalizePatternKey(name)
	if key == "" {
		return Pattern{}, false
	}
	if p, ok := s.byName[key]; ok {
		return p, true
	}
	for candidate, p := range s.byName {
		if strings.Contains(key, candidate) || strings.Contains(candidate, key) {
			return p, true
		}
	}
	return Pattern{}, false
}

// MatchCNAME returns the pattern whose vendor domain appears in the
// given CNAME target, if any.
func (s *PatternSet) MatchCNAME(target string) (Pattern, bool) {
	target = strings.ToLower(strings.TrimSuffix(target, "."))
	for _, p := range s.order {
		for _, domain := range p.Domains {
			if strings.Contains(target, domain) {
				return p, true
			}
		}
	}
	return Pattern{}, false
}

// Names lists every registered pattern in catalog order.
func (s *PatternSet) Names() []string {
	out := make([]string, 0, len(s.order))
	for _, p := range s.order {
		out = append(out, p.Name)
	}
	return out
}

func normalizePatternKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, " ", "")
	key = strings.ReplaceAll(key, "-", "")
	key = strings.ReplaceAll(key, "_", "")
	return key
}
