package discovery

import (
	"context"
	"time"

	"github.com/dfquinn23/tech-stack-audit-tool/internal/audit"
)

// EnhanceResult bundles an enriched inventory with the raw evidence
// behind each addition, so callers can report how a tool was found.
type EnhanceResult struct {
	Tools    map[string]audit.Tool
	Findings map[string]Finding
	Probes   map[string]ProbeResult
	Added    []string
}

// Summary aggregates discovery results for reporting.
type Summary struct {
	TotalTools       int            `json:"total_tools"`
	AutoDiscovered   int            `json:"auto_discovered"`
	APIEnhanced      int            `json:"api_enhanced"`
	DiscoveryMethods map[string]int `json:"discovery_methods"`
	Categories       map[string]int `json:"categories"`
	Timestamp        string         `json:"discovery_timestamp"`
}

// EnhanceInventory merges domain findings into the existing inventory
// and fills in version details from API probes. Tools already present
// keep their manually gathered fields; discovery only adds.
func (e *Engine) EnhanceInventory(ctx context.Context, existing map[string]audit.Tool, domain string) (EnhanceResult, error) {
	result := EnhanceResult{
		Tools:    make(map[string]audit.Tool, len(existing)),
		Findings: map[string]Finding{},
		Probes:   map[string]ProbeResult{},
	}
	for name, tool := range existing {
		result.Tools[name] = tool
	}

	if domain != "" {
		findings, err := e.DomainFootprint(ctx, domain)
		if err != nil {
			return result, err
		}
		result.Findings = findings

		for _, key := range SortedFindingKeys(findings) {
			finding := findings[key]
			if _, present := result.Tools[finding.Tool]; present {
				continue
			}
			result.Tools[finding.Tool] = audit.Tool{
				Name:            finding.Tool,
				Category:        finding.Category,
				Users:           []string{"auto-detected"},
				Criticality:     "Unknown",
				DiscoveryMethod: finding.Method,
				Vendor:          finding.Provider,
			}
			result.Added = append(result.Added, finding.Tool)
			e.book.Info("discovery: auto-discovered %s (%s)", finding.Tool, finding.Provider)
		}
	}

	names := make([]string, 0, len(result.Tools))
	for name := range result.Tools {
		names = append(names, name)
	}
	probes, err := e.ProbeAPIs(ctx, names)
	if err != nil {
		return result, err
	}
	result.Probes = probes

	for name, probe := range probes {
		tool, ok := result.Tools[name]
		if !ok || probe.APIVersion == "" {
			continue
		}
		tool.Version = probe.APIVersion
		result.Tools[name] = tool
	}

	return result, nil
}

// Summarize reduces an enhancement run to counts for the report.
func (e *Engine) Summarize(result EnhanceResult) Summary {
	summary := Summary{
		TotalTools:       len(result.Tools),
		AutoDiscovered:   len(result.Added),
		DiscoveryMethods: map[string]int{},
		Categories:       map[string]int{},
		Timestamp:        e.clock().UTC().Format(time.RFC3339),
	}
	for _, probe := range result.Probes {
		switch probe.Status {
		case ProbeActive, ProbeRequiresAuth, ProbeForbidden:
			summary.APIEnhanced++
		}
	}
	for _, tool := range result.Tools {
		method := tool.DiscoveryMethod
		if method == "" {
			method = "manual"
		}
		summary.DiscoveryMethods[method]++

		category := tool.Category
		if category == "" {
			category = "Unknown"
		}
		summary.Categories[category]++
	}
	return summary
}
