// Package changelog tracks where vendor release notes live and supplies
// changelog entries to the audit pipeline.
package changelog

import (
	"sort"
	"strings"
)

// Format describes how a changelog source publishes its entries.
type Format string

const (
	FormatJSON   Format = "json"
	FormatHTML   Format = "html_structured"
	FormatManual Format = "manual"
)

// Endpoint describes one vendor's changelog source.
type Endpoint struct {
	URL           string
	AuthRequired  bool
	AuthType      string
	Format        Format
	ToolType      string
	Documentation string
	Notes         string
}

// Registry maps lowercase tool names to changelog endpoints. It is built
// once at startup and passed to whoever needs it; there is no process-wide
// instance.
type Registry struct {
	endpoints map[string]Endpoint
}

// RegistryStats summarizes registry coverage.
type RegistryStats struct {
	TotalTools      int
	WithAPIEndpoint int
	RequiresAuth    int
	ByToolType      map[string]int
}

// NewRegistry builds a registry seeded with the known vendor endpoints for
// the advisory-firm stack.
func NewRegistry() *Registry {
	return &Registry{endpoints: map[string]Endpoint{
		"microsoft 365": {
			URL:           "https://graph.microsoft.com/v1.0/admin/serviceAnnouncement/messages",
			AuthRequired:  true,
			AuthType:      "oauth2",
			Format:        FormatJSON,
			ToolType:      "productivity_suite",
			Documentation: "https://docs.microsoft.com/en-us/graph/api/serviceannouncement-list-messages",
			Notes:         "Requires Microsoft Graph API credentials with ServiceMessage.Read.All permission",
		},
		"zoom": {
			URL:           "https://developers.zoom.us/changelog",
			Format:        FormatHTML,
			ToolType:      "communication",
			Documentation: "https://developers.zoom.us/changelog",
			Notes:         "Public changelog, no API auth needed",
		},
		"slack": {
			URL:           "https://api.slack.com/changelog",
			Format:        FormatHTML,
			ToolType:      "communication",
			Documentation: "https://api.slack.com/changelog",
		},
		"microsoft teams": {
			URL:           "https://graph.microsoft.com/v1.0/admin/serviceAnnouncement/messages",
			AuthRequired:  true,
			AuthType:      "oauth2",
			Format:        FormatJSON,
			ToolType:      "communication",
			Documentation: "https://docs.microsoft.com/en-us/graph/api/serviceannouncement-list-messages",
			Notes:         "Same feed as Microsoft 365, filter for the Teams service",
		},
		"salesforce": {
			URL:           "https://api.salesforce.com/services/data/v58.0/tooling/query",
			AuthRequired:  true,
			AuthType:      "oauth2",
			Format:        FormatJSON,
			ToolType:      "crm",
			Documentation: "https://developer.salesforce.com/docs/atlas.en-us.api_tooling.meta/api_tooling/",
		},
		"redtail crm": {
			URL:           "https://api.redtailtechnology.com/changelog",
			Format:        FormatHTML,
			ToolType:      "crm",
			Documentation: "https://redtailtechnology.com/updates",
		},
		"factset": {
			URL:           "https://developer.factset.com/release-notes",
			Format:        FormatHTML,
			ToolType:      "research_platform",
			Documentation: "https://developer.factset.com",
		},
		"bloomberg terminal": {
			AuthRequired:  true,
			Format:        FormatManual,
			ToolType:      "research_platform",
			Documentation: "https://www.bloomberg.com/professional/support/software-updates/",
			Notes:         "No public API; requires terminal access or support-page scraping",
		},
		"morningstar direct": {
			URL:           "https://www.morningstar.com/products/direct/updates",
			Format:        FormatHTML,
			ToolType:      "research_platform",
			Documentation: "https://www.morningstar.com/products/direct",
		},
		"orion eclipse": {
			URL:           "https://support.orionadvisor.com/support/solutions/folders/9000211932",
			Format:        FormatHTML,
			ToolType:      "portfolio_management",
			Documentation: "https://support.orionadvisor.com",
		},
		"addepar": {
			URL:           "https://support.addepar.com/hc/en-us/sections/115000249826-Release-Notes",
			Format:        FormatHTML,
			ToolType:      "portfolio_management",
			Documentation: "https://support.addepar.com",
		},
		"schwab portfoliocenter": {
			URL:           "https://advisorservices.schwab.com/updates",
			Format:        FormatHTML,
			ToolType:      "portfolio_management",
			Documentation: "https://advisorservices.schwab.com",
			Notes:         "May require login for full details",
		},
		"charles schwab": {
			URL:           "https://advisorservices.schwab.com/updates",
			Format:        FormatHTML,
			ToolType:      "custodial",
			Documentation: "https://advisorservices.schwab.com",
		},
		"fidelity institutional": {
			URL:           "https://institutional.fidelity.com/app/news-and-insights/updates",
			Format:        FormatHTML,
			ToolType:      "custodial",
			Documentation: "https://institutional.fidelity.com",
		},
		"rightcapital": {
			URL:           "https://rightcapital.com/updates",
			Format:        FormatHTML,
			ToolType:      "financial_planning",
			Documentation: "https://rightcapital.com",
		},
		"docusign": {
			URL:           "https://developers.docusign.com/changelog",
			Format:        FormatHTML,
			ToolType:      "operations",
			Documentation: "https://developers.docusign.com",
		},
		"quickbooks": {
			URL:           "https://developer.intuit.com/app/developer/qbo/docs/develop/changelog",
			Format:        FormatHTML,
			ToolType:      "operations",
			Documentation: "https://developer.intuit.com",
		},
		"adp workforce now": {
			URL:           "https://www.adp.com/resources/articles-and-insights/product-updates.aspx",
			Format:        FormatHTML,
			ToolType:      "operations",
			Documentation: "https://www.adp.com",
		},
		"github": {
			URL:           "https://api.github.com/repos/{owner}/{repo}/releases",
			Format:        FormatJSON,
			ToolType:      "development",
			Documentation: "https://docs.github.com/en/rest/releases",
			Notes:         "Requires owner/repo parameters, rate limited without auth",
		},
		"aws": {
			URL:           "https://aws.amazon.com/new/",
			Format:        FormatHTML,
			ToolType:      "cloud_services",
			Documentation: "https://aws.amazon.com/new/",
		},
	}}
}

// Lookup returns endpoint information for a tool, matched case-insensitively.
func (r *Registry) Lookup(toolName string) (Endpoint, bool) {
	ep, ok := r.endpoints[normalizeKey(toolName)]
	return ep, ok
}

// HasAPIEndpoint reports whether the tool has a fetchable changelog URL.
func (r *Registry) HasAPIEndpoint(toolName string) bool {
	ep, ok := r.Lookup(toolName)
	return ok && ep.URL != ""
}

// RequiresAuth reports whether the tool's changelog source needs credentials.
func (r *Registry) RequiresAuth(toolName string) bool {
	ep, ok := r.Lookup(toolName)
	return ok && ep.AuthRequired
}

// Add registers or replaces an endpoint.
func (r *Registry) Add(toolName string, ep Endpoint) {
	r.endpoints[normalizeKey(toolName)] = ep
}

// ToolsByType returns the registered tools of one type, sorted.
func (r *Registry) ToolsByType(toolType string) []string {
	var tools []string
	for name, ep := range r.endpoints {
		if ep.ToolType == toolType {
			tools = append(tools, name)
		}
	}
	sort.Strings(tools)
	return tools
}

// Tools returns all registered tool names, sorted.
func (r *Registry) Tools() []string {
	tools := make([]string, 0, len(r.endpoints))
	for name := range r.endpoints {
		tools = append(tools, name)
	}
	sort.Strings(tools)
	return tools
}

// Stats summarizes registry coverage.
func (r *Registry) Stats() RegistryStats {
	stats := RegistryStats{
		TotalTools: len(r.endpoints),
		ByToolType: map[string]int{},
	}
	for _, ep := range r.endpoints {
		if ep.URL != "" {
			stats.WithAPIEndpoint++
		}
		if ep.AuthRequired {
			stats.RequiresAuth++
		}
		toolType := ep.ToolType
		if toolType == "" {
			toolType = "unknown"
		}
		stats.ByToolType[toolType]++
	}
	return stats
}

func normalizeKey(toolName string) string {
	return strings.ToLower(strings.TrimSpace(toolName))
}
