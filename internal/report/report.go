// Package report renders the audit findings into a client-facing
// Markdown document and writes it to the project output directory.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dfquinn23/tech-stack-audit-tool/internal/audit"
	"github.com/dfquinn23/tech-stack-audit-tool/internal/integration"
	"github.com/dfquinn23/tech-stack-audit-tool/internal/opportunity"
)

// FileName is the report file written under the output directory.
const FileName = "audit_report.md"

// Builder accumulates Markdown sections and assembles the report.
type Builder struct {
	clock    func() time.Time
	sections []string
}

// NewBuilder returns an empty report builder.
func NewBuilder() *Builder {
	return &Builder{clock: time.Now}
}

// WithClock substitutes the time source used for the header stamp.
func (b *Builder) WithClock(clock func() time.Time) *Builder {
	b.clock = clock
	return b
}

// AddSection appends a pre-rendered Markdown section.
func (b *Builder) AddSection(md string) {
	md = strings.TrimSpace(md)
	if md != "" {
		b.sections = append(b.sections, md+"\n")
	}
}

// AddToolSection renders the standard per-tool section from pipeline
// outputs and appends it.
func (b *Builder) AddToolSection(tool audit.Tool, summaries []string, auditText, integrationsText string) {
	b.AddSection(ToolSection(tool, summaries, auditText, integrationsText))
}

// ToolSection renders the standard per-tool Markdown section.
func ToolSection(tool audit.Tool, summaries []string, auditText, integrationsText string) string {
	var md []string
	md = append(md, "### "+tool.Name)
	md = append(md, fmt.Sprintf("_Category: %s • Users: %s • Criticality: %s_\n",
		tool.Category, strings.Join(tool.Users, ", "), tool.Criticality))
	md = append(md, "**Summaries**")
	for _, s := range summaries {
		md = append(md, "- "+s)
	}
	md = append(md, "\n**Audit Insights**")
	md = append(md, strings.TrimSpace(auditText))
	md = append(md, "\n**Integration Opportunities**")
	md = append(md, strings.TrimSpace(integrationsText))
	return strings.Join(md, "\n")
}

// AddEmptyToolSection records that a tool had no changelog entries. When a
// vendor source is known, the section points the reader at it.
func (b *Builder) AddEmptyToolSection(tool audit.Tool, sourceHint string) {
	section := fmt.Sprintf("### %s\n_Category: %s • Users: %s • Criticality: %s_\n\n> No changelog entries found for this tool.",
		tool.Name, tool.Category, strings.Join(tool.Users, ", "), tool.Criticality)
	if sourceHint = strings.TrimSpace(sourceHint); sourceHint != "" {
		section += fmt.Sprintf("\n> Vendor release notes: %s", sourceHint)
	}
	b.AddSection(section)
}

// AddIntegrationSummary renders the integration health overview.
func (b *Builder) AddIntegrationSummary(summary integration.MatrixSummary) {
	var md []string
	md = append(md, "## Integration Health")
	md = append(md, fmt.Sprintf("\n%d integrations assessed. Average health score: %.1f.",
		summary.TotalAssessed, summary.AverageHealthScore))
	md = append(md, fmt.Sprintf("Healthy: %d • Missing: %d • Broken: %d",
		summary.Healthy, summary.Missing, summary.Broken))
	if len(summary.NeedsAttention) > 0 {
		md = append(md, "\n**Needs immediate attention**")
		for _, item := range summary.NeedsAttention {
			md = append(md, fmt.Sprintf("- %s (score %d)", item.Integration, item.HealthScore))
		}
	}
	b.AddSection(strings.Join(md, "\n"))
}

// AddOpportunities renders the scored automation opportunities.
func (b *Builder) AddOpportunities(opportunities []opportunity.Opportunity) {
	if len(opportunities) == 0 {
		return
	}
	var md []string
	md = append(md, "## Automation Opportunities")
	for _, o := range opportunities {
		md = append(md, fmt.Sprintf("\n### %s", o.Name))
		md = append(md, fmt.Sprintf("_Priority: %s (score %d/25) • Complexity: %s_\n", o.PriorityTier, o.TotalScore, o.Complexity))
		md = append(md, o.Description)
		md = append(md, fmt.Sprintf("- Estimated annual savings: $%.0f", o.AnnualCostSavings))
		md = append(md, fmt.Sprintf("- Implementation cost: $%.0f (%d weeks)", o.ImplementationCost, o.ImplementationWeeks))
		md = append(md, fmt.Sprintf("- Payback period: %.1f months", o.PaybackPeriodMonths))
	}
	b.AddSection(strings.Join(md, "\n"))
}

// AddRoadmap renders the phased implementation plan.
func (b *Builder) AddRoadmap(roadmap opportunity.Roadmap) {
	var md []string
	md = append(md, "## Implementation Roadmap")
	md = append(md, fmt.Sprintf("\n%d opportunities • $%.0f estimated annual savings • %.0f%% overall ROI",
		roadmap.Summary.TotalOpportunities, roadmap.Summary.TotalAnnualSavings, roadmap.Summary.OverallROI))
	for _, phase := range []struct {
		name  string
		phase opportunity.Phase
	}{
		{"Phase 1: Quick Wins", roadmap.QuickWins},
		{"Phase 2: Strategic", roadmap.Strategic},
		{"Phase 3: Optimization", roadmap.Remaining},
	} {
		if len(phase.phase.Opportunities) == 0 {
			continue
		}
		md = append(md, fmt.Sprintf("\n**%s** (%d weeks): %s", phase.name, phase.phase.DurationWeeks, phase.phase.Description))
		for _, o := range phase.phase.Opportunities {
			md = append(md, fmt.Sprintf("- %s ($%.0f/yr)", o.Name, o.AnnualCostSavings))
		}
	}
	b.AddSection(strings.Join(md, "\n"))
}

// Render assembles the full Markdown document.
func (b *Builder) Render() string {
	header := fmt.Sprintf("# Tech Stack Audit Report\n_Generated: %s_\n\n---\n",
		b.clock().Format("2006-01-02 15:04"))
	return header + strings.Join(b.sections, "\n")
}

// Write renders the report into dir and returns the file path.
func (b *Builder) Write(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("report: create output dir: %w", err)
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(b.Render()), 0o644); err != nil {
		return "", fmt.Errorf("report: write %s: %w", path, err)
	}
	return path, nil
}
