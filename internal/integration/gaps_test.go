package integration

import (
	"strings"
	"testing"

	"github.com/dfquinn23/tech-stack-audit-tool/internal/audit"
)

func TestAnalyzeFindsCommunicationGap(t *testing.T) {
	analyzer := NewGapAnalyzer()
	analyses := analyzer.Analyze([]string{"Zoom", "Wealthbox", "Microsoft 365"}, nil)

	var communication *ProcessAnalysis
	for i := range analyses {
		if analyses[i].Process == ProcessClientCommunication {
			communication = &analyses[i]
		}
	}
	if communication == nil {
		t.Fatalf("expected client_communication analysis")
	}
	var zoomCRM *Gap
	for i := range communication.Gaps {
		gap := &communication.Gaps[i]
		if gap.SourceTool == "zoom" && gap.TargetTool == "wealth box" {
			zoomCRM = gap
		}
	}
	if zoomCRM == nil {
		t.Fatalf("expected zoom/wealth box gap, got %+v", communication.Gaps)
	}
	if zoomCRM.AnnualTimeSavingsHours != 2*52 {
		t.Fatalf("expected template hours, got %d", zoomCRM.AnnualTimeSavingsHours)
	}
	if zoomCRM.EstimatedAnnualValue != 2*52*gapHourlyValue {
		t.Fatalf("unexpected annual value %d", zoomCRM.EstimatedAnnualValue)
	}
	if !strings.Contains(zoomCRM.CurrentState, "meeting notes") {
		t.Fatalf("expected template current state, got %q", zoomCRM.CurrentState)
	}
}

func TestAnalyzeSkipsConnectedPairs(t *testing.T) {
	analyzer := NewGapAnalyzer()
	existing := []audit.Integration{{
		SourceTool: "Microsoft 365", TargetTool: "Zoom", Status: "healthy", IntegrationType: "calendar_sync",
	}}
	analyses := analyzer.Analyze([]string{"Zoom", "Microsoft 365"}, existing)
	for _, analysis := range analyses {
		for _, gap := range analysis.Gaps {
			if gap.SourceTool == "zoom" && gap.TargetTool == "365" ||
				gap.SourceTool == "365" && gap.TargetTool == "zoom" {
				t.Fatalf("connected pair reported as gap in %s", analysis.Process)
			}
		}
	}
}

func TestAnalyzeIgnoresProcessesWithoutTools(t *testing.T) {
	analyzer := NewGapAnalyzer()
	analyses := analyzer.Analyze([]string{"Zoom"}, nil)
	for _, analysis := range analyses {
		if len(analysis.Gaps) != 0 {
			t.Fatalf("single tool cannot have pair gaps, got %+v", analysis.Gaps)
		}
	}
}

func TestPrioritizeOrdersByValueThenComplexity(t *testing.T) {
	analyzer := NewGapAnalyzer()
	analyses := analyzer.Analyze(
		[]string{"Zoom", "Wealthbox", "Microsoft 365", "FactSet", "Advent Axys", "Schwab"}, nil)
	gaps := analyzer.Prioritize(analyses)
	if len(gaps) < 2 {
		t.Fatalf("expected several gaps, got %d", len(gaps))
	}
	for i := 1; i < len(gaps); i++ {
		prev, cur := gaps[i-1], gaps[i]
		if cur.BusinessValue > prev.BusinessValue {
			t.Fatalf("gaps out of value order at %d: %+v before %+v", i, prev, cur)
		}
		if cur.BusinessValue == prev.BusinessValue && cur.ImplementationComplexity < prev.ImplementationComplexity {
			t.Fatalf("gaps out of complexity order at %d", i)
		}
	}
}

func TestSummarizeTalliesStatuses(t *testing.T) {
	assessments := []Assessment{
		{SourceTool: "a", TargetTool: "b", Status: StatusHealthy, HealthScore: 95, BusinessCriticality: "medium"},
		{SourceTool: "a", TargetTool: "c", Status: StatusMissing, HealthScore: 0, BusinessCriticality: "high",
			Issues: []string{"expected integration not found"}},
		{SourceTool: "b", TargetTool: "c", Status: StatusBroken, HealthScore: 10, BusinessCriticality: "high",
			Issues: []string{"expected integration not found"}},
	}
	summary := Summarize(assessments)
	if summary.TotalAssessed != 3 || summary.Healthy != 1 || summary.Missing != 1 || summary.Broken != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.AverageHealthScore != 35.0 {
		t.Fatalf("unexpected average health: %f", summary.AverageHealthScore)
	}
	if len(summary.NeedsAttention) != 2 || summary.NeedsAttention[0].HealthScore != 0 {
		t.Fatalf("unexpected attention list: %+v", summary.NeedsAttention)
	}
	if len(summary.TopIssues) != 1 || summary.TopIssues[0].Count != 2 {
		t.Fatalf("unexpected top issues: %+v", summary.TopIssues)
	}
}
