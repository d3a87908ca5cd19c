package integration

import (
	"fmt"
	"math"
	"sort"
)

// IssueCount pairs a recurring issue with how often it was seen.
type IssueCount struct {
	Issue string `json:"issue"`
	Count int    `json:"count"`
}

// CriticalIntegration flags a high-criticality pair scoring below the
// attention threshold.
type CriticalIntegration struct {
	Integration string `json:"integration"`
	HealthScore int    `json:"health_score"`
	Status      Status `json:"status"`
}

// MatrixSummary aggregates a full set of pair assessments.
type MatrixSummary struct {
	TotalAssessed           int            `json:"total_integrations_assessed"`
	AverageHealthScore      float64        `json:"average_health_score"`
	StatusDistribution      map[Status]int `json:"status_distribution"`
	CriticalityDistribution map[string]int `json:"criticality_distribution"`
	TopIssues               []IssueCount   `json:"top_issues,omitempty"`
	NeedsAttention          []CriticalIntegration `json:"critical_integrations_needing_attention,omitempty"`
	Healthy                 int            `json:"healthy_integrations"`
	Missing                 int            `json:"missing_integrations"`
	Broken                  int            `json:"broken_integrations"`
}

// Summarize reduces pair assessments to the statistics the report uses.
func Summarize(assessments []Assessment) MatrixSummary {
	summary := MatrixSummary{
		TotalAssessed:           len(assessments),
		StatusDistribution:      map[Status]int{},
		CriticalityDistribution: map[string]int{},
	}
	if len(assessments) == 0 {
		return summary
	}

	issueCounts := map[string]int{}
	totalHealth := 0
	for _, a := range assessments {
		summary.StatusDistribution[a.Status]++
		summary.CriticalityDistribution[a.BusinessCriticality]++
		totalHealth += a.HealthScore
		for _, issue := range a.Issues {
			issueCounts[issue]++
		}
		switch a.Status {
		case StatusHealthy:
			summary.Healthy++
		case StatusMissing:
			summary.Missing++
		case StatusBroken:
			summary.Broken++
		}
		if a.BusinessCriticality == "high" && a.HealthScore < 70 {
			summary.NeedsAttention = append(summary.NeedsAttention, CriticalIntegration{
				Integration: fmt.Sprintf("%s->%s", a.SourceTool, a.TargetTool),
				HealthScore: a.HealthScore,
				Status:      a.Status,
			})
		}
	}
	summary.AverageHealthScore = math.Round(float64(totalHealth)/float64(len(assessments))*10) / 10

	for issue, count := range issueCounts {
		summary.TopIssues = append(summary.TopIssues, IssueCount{Issue: issue, Count: count})
	}
	sort.SliceStable(summary.TopIssues, func(i, j int) bool {
		if summary.TopIssues[i].Count != summary.TopIssues[j].Count {
			return summary.TopIssues[i].Count > summary.TopIssues[j].Count
		}
		return summary.TopIssues[i].Issue < summary.TopIssues[j].Issue
	})
	if len(summary.TopIssues) > 10 {
		summary.TopIssues = summary.TopIssues[:10]
	}

	sort.SliceStable(summary.NeedsAttention, func(i, j int) bool {
		return summary.NeedsAttention[i].HealthScore < summary.NeedsAttention[j].HealthScore
	})
	if len(summary.NeedsAttention) > 5 {
		summary.NeedsAttention = summary.NeedsAttention[:5]
	}
	return summary
}
