package integration

import (
	"context"
	"strings"
	"testing"
	"time"
)

func fixedClock() func() time.Time {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func newTestChecker() *Checker {
	return NewChecker(NewPatternTable(), WithClock(fixedClock()), WithMaxParallel(2))
}

func TestAssessMissingExpectedIntegration(t *testing.T) {
	checker := newTestChecker()
	a := checker.Assess("Microsoft 365", "Zoom", nil)
	if a.Status != StatusMissing {
		t.Fatalf("expected missing status for known unconnected pair, got %s", a.Status)
	}
	if a.IntegrationType != TypeCalendarSync {
		t.Fatalf("expected calendar_sync from pattern table, got %s", a.IntegrationType)
	}
	if a.BusinessCriticality != "high" {
		t.Fatalf("expected high criticality, got %s", a.BusinessCriticality)
	}
	if a.HealthScore != 0 {
		t.Fatalf("missing integration should score 0 before adjustments, got %d", a.HealthScore)
	}
	joined := strings.Join(a.Recommendations, "\n")
	if !strings.Contains(joined, "implement calendar_sync integration") {
		t.Fatalf("expected implementation recommendation, got %q", joined)
	}
}

func TestAssessUnknownPair(t *testing.T) {
	checker := newTestChecker()
	a := checker.Assess("Redtail", "Orion Eclipse", nil)
	if a.Status != StatusUnknown || a.IntegrationType != TypeUnknown {
		t.Fatalf("unexpected assessment for unknown pair: %+v", a)
	}
	if a.HealthScore != 30 {
		t.Fatalf("unknown status should score 30, got %d", a.HealthScore)
	}
}

func TestAssessObservedIntegration(t *testing.T) {
	checker := newTestChecker()
	lastSync := time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)
	a := checker.Assess("Microsoft 365", "Zoom", &Observation{
		Status:          "degraded",
		IntegrationType: "calendar_sync",
		ErrorRate:       0.2,
		LastSync:        lastSync,
	})
	if a.Status != StatusDegraded {
		t.Fatalf("expected degraded, got %s", a.Status)
	}
	// 60 base - 10 error rate - 20 stale sync - 20 for two issues on a
	// high-criticality pair
	if a.HealthScore != 10 {
		t.Fatalf("unexpected health score %d, issues %+v", a.HealthScore, a.Issues)
	}
	joined := strings.Join(a.Issues, "\n")
	if !strings.Contains(joined, "last sync was 12 days ago") {
		t.Fatalf("expected stale sync issue, got %q", joined)
	}
	if !strings.Contains(joined, "high error rate") {
		t.Fatalf("expected error rate issue, got %q", joined)
	}
}

func TestAssessHealthyIntegrationScoresHigh(t *testing.T) {
	checker := newTestChecker()
	a := checker.Assess("FactSet", "Microsoft 365", &Observation{
		Status:          "healthy",
		IntegrationType: "file_sync",
		LastSync:        time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
	})
	if a.Status != StatusHealthy {
		t.Fatalf("expected healthy, got %s", a.Status)
	}
	if a.HealthScore != 100 {
		t.Fatalf("expected 90 base + 10 recent sync, got %d", a.HealthScore)
	}
}

func TestAssessMatrixCoversAllPairs(t *testing.T) {
	checker := newTestChecker()
	tools := []string{"Microsoft 365", "Zoom", "FactSet", "Wealthbox"}
	assessments, err := checker.AssessMatrix(context.Background(), tools, nil)
	if err != nil {
		t.Fatalf("assess matrix: %v", err)
	}
	if len(assessments) != 6 {
		t.Fatalf("expected 6 pair assessments for 4 tools, got %d", len(assessments))
	}
	for _, a := range assessments {
		if a.SourceTool == "" || a.TargetTool == "" {
			t.Fatalf("incomplete assessment: %+v", a)
		}
	}
}

func TestAssessMatrixUsesObservations(t *testing.T) {
	checker := newTestChecker()
	tools := []string{"Microsoft 365", "Zoom"}
	observations := map[string]Observation{
		PairKey("Zoom", "Microsoft 365"): {Status: "healthy", IntegrationType: "calendar_sync"},
	}
	assessments, err := checker.AssessMatrix(context.Background(), tools, observations)
	if err != nil {
		t.Fatalf("assess matrix: %v", err)
	}
	if len(assessments) != 1 || assessments[0].Status != StatusHealthy {
		t.Fatalf("expected observation applied regardless of pair order, got %+v", assessments)
	}
}

func TestRecordConversion(t *testing.T) {
	checker := newTestChecker()
	a := checker.Assess("Microsoft 365", "Zoom", nil)
	record := Record(a)
	if record.Status != "missing" || record.IntegrationType != "calendar_sync" {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.SourceTool != "Microsoft 365" || record.TargetTool != "Zoom" {
		t.Fatalf("record lost tool names: %+v", record)
	}
}

func TestParseStatusRejectsUnknown(t *testing.T) {
	if _, err := ParseStatus("flaky"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
	status, err := ParseStatus(" Healthy ")
	if err != nil || status != StatusHealthy {
		t.Fatalf("expected healthy, got %v %v", status, err)
	}
	if _, err := ParseType("telepathy"); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}
