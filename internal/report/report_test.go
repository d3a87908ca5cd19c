package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dfquinn23/tech-stack-audit-tool/internal/audit"
	"github.com/dfquinn23/tech-stack-audit-tool/internal/integration"
	"github.com/dfquinn23/tech-stack-audit-tool/internal/opportunity"
)

func testClock() time.Time {
	return time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
}

func zoomTool() audit.Tool {
	return audit.Tool{
		Name:        "Zoom",
		Category:    "Communication",
		Users:       []string{"All Staff"},
		Criticality: "High",
	}
}

func TestRenderIncludesHeaderAndToolSection(t *testing.T) {
	builder := NewBuilder().WithClock(testClock)
	builder.AddToolSection(zoomTool(),
		[]string{"Zoom added AI meeting summaries"},
		"- AI summaries reduce manual note taking",
		"- **Flow Name**: Meeting notes to CRM")

	md := builder.Render()
	if !strings.HasPrefix(md, "# Tech Stack Audit Report\n_Generated: 2025-06-01 09:30_\n\n---\n") {
		t.Fatalf("unexpected header:\n%s", md)
	}
	for _, want := range []string{
		"### Zoom",
		"_Category: Communication • Users: All Staff • Criticality: High_",
		"**Summaries**",
		"- Zoom added AI meeting summaries",
		"**Audit Insights**",
		"**Integration Opportunities**",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("report missing %q:\n%s", want, md)
		}
	}
}

func TestAddEmptyToolSection(t *testing.T) {
	builder := NewBuilder().WithClock(testClock)
	builder.AddEmptyToolSection(zoomTool(), "")

	if !strings.Contains(builder.Render(), "> No changelog entries found for this tool.") {
		t.Fatalf("missing placeholder:\n%s", builder.Render())
	}
	if strings.Contains(builder.Render(), "Vendor release notes") {
		t.Fatalf("unexpected source hint without one supplied:\n%s", builder.Render())
	}
}

func TestAddEmptyToolSectionWithSourceHint(t *testing.T) {
	builder := NewBuilder().WithClock(testClock)
	builder.AddEmptyToolSection(zoomTool(), "https://developers.zoom.us/changelog")

	if !strings.Contains(builder.Render(), "> Vendor release notes: https://developers.zoom.us/changelog") {
		t.Fatalf("missing source hint:\n%s", builder.Render())
	}
}

func TestAddIntegrationSummaryAndOpportunities(t *testing.T) {
	builder := NewBuilder().WithClock(testClock)
	builder.AddIntegrationSummary(integration.MatrixSummary{
		TotalAssessed:      3,
		AverageHealthScore: 63.3,
		Healthy:            1,
		Missing:            1,
		Broken:             1,
		NeedsAttention: []integration.CriticalIntegration{
			{Integration: "Advent Axys <-> Wealthbox", HealthScore: 20, Status: integration.StatusBroken},
		},
	})
	builder.AddOpportunities([]opportunity.Opportunity{
		{
			Name:                "Meeting Notes to CRM Integration",
			Description:         "Automated capture and filing of meeting summaries in CRM",
			PriorityTier:        "high",
			TotalScore:          20,
			Complexity:          opportunity.ComplexityLow,
			AnnualCostSavings:   22500,
			ImplementationCost:  5000,
			ImplementationWeeks: 2,
			PaybackPeriodMonths: 2.7,
		},
	})

	md := builder.Render()
	for _, want := range []string{
		"## Integration Health",
		"3 integrations assessed. Average health score: 63.3.",
		"- Advent Axys <-> Wealthbox (score 20)",
		"## Automation Opportunities",
		"_Priority: high (score 20/25) • Complexity: low_",
		"- Estimated annual savings: $22500",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("report missing %q:\n%s", want, md)
		}
	}
}

func TestWriteCreatesReportFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")

	builder := NewBuilder().WithClock(testClock)
	builder.AddEmptyToolSection(zoomTool(), "")

	path, err := builder.Write(dir)
	if err != nil {
		t.Fatalf("write report: %v", err)
	}
	if filepath.Base(path) != FileName {
		t.Fatalf("unexpected file name %s", path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(raw), "# Tech Stack Audit Report") {
		t.Fatalf("unexpected contents:\n%s", raw)
	}
}
