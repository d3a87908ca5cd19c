package audit

import (
	"fmt"
	"strings"
	"time"
)

// highPriorityThreshold is the score at or above which an opportunity is
// counted as high priority in summaries.
const highPriorityThreshold = 12.0

// Summary is the read-only aggregation consumed by report renderers and the
// dashboard. Computing it never mutates session state.
type Summary struct {
	AuditInfo          AuditInfo          `json:"audit_info"`
	InventorySummary   InventorySummary   `json:"inventory_summary"`
	IntegrationSummary IntegrationSummary `json:"integration_summary"`
	AutomationSummary  AutomationSummary  `json:"automation_summary"`
}

// AuditInfo identifies the session and its stage progress.
type AuditInfo struct {
	ClientName      string          `json:"client_name"`
	AuditID         string          `json:"audit_id"`
	CurrentStage    string          `json:"current_stage"`
	StageCompletion map[Stage]bool  `json:"stage_completion"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
}

// InventorySummary tallies the tool catalog.
type InventorySummary struct {
	TotalTools    int            `json:"total_tools"`
	ByCategory    map[string]int `json:"by_category"`
	ByCriticality map[string]int `json:"by_criticality"`
}

// IntegrationSummary tallies assessment outcomes by status.
type IntegrationSummary struct {
	TotalAssessed int `json:"total_assessed"`
	Healthy       int `json:"healthy"`
	Degraded      int `json:"degraded"`
	Broken        int `json:"broken"`
	Missing       int `json:"missing"`
}

// AutomationSummary tallies opportunities and their estimated value.
type AutomationSummary struct {
	TotalOpportunities int     `json:"total_opportunities"`
	HighPriority       int     `json:"high_priority"`
	TotalROIEstimate   float64 `json:"total_roi_estimate"`
}

// ExportSummary aggregates counts over the current state.
func (m *Manager) ExportSummary() Summary {
	state := m.state
	summary := Summary{
		AuditInfo: AuditInfo{
			ClientName:      state.ClientName,
			AuditID:         state.AuditID,
			CurrentStage:    state.CurrentStage.String(),
			StageCompletion: m.State().StageCompletion,
			CreatedAt:       state.CreatedAt.Format(time.RFC3339),
			UpdatedAt:       state.UpdatedAt.Format(time.RFC3339),
		},
		InventorySummary: InventorySummary{
			TotalTools:    len(state.ToolInventory),
			ByCategory:    map[string]int{},
			ByCriticality: map[string]int{},
		},
		IntegrationSummary: IntegrationSummary{TotalAssessed: len(state.Integrations)},
		AutomationSummary:  AutomationSummary{TotalOpportunities: len(state.AutomationOpportunities)},
	}
	for _, tool := range state.ToolInventory {
		category := tool.Category
		if category == "" {
			category = "Uncategorized"
		}
		summary.InventorySummary.ByCategory[category]++
		criticality := tool.Criticality
		if criticality == "" {
			criticality = "Unknown"
		}
		summary.InventorySummary.ByCriticality[criticality]++
	}
	for _, integ := range state.Integrations {
		switch strings.ToLower(integ.Status) {
		case "healthy":
			summary.IntegrationSummary.Healthy++
		case "degraded":
			summary.IntegrationSummary.Degraded++
		case "broken":
			summary.IntegrationSummary.Broken++
		case "missing":
			summary.IntegrationSummary.Missing++
		}
	}
	for _, opp := range state.AutomationOpportunities {
		if opp.PriorityScore >= highPriorityThreshold {
			summary.AutomationSummary.HighPriority++
		}
		summary.AutomationSummary.TotalROIEstimate += opp.ROIEstimate
	}
	return summary
}

// StageSummary returns a short progress line for status output.
func (m *Manager) StageSummary() string {
	state := m.state
	var done int
	for _, complete := range state.StageCompletion {
		if complete {
			done++
		}
	}
	return fmt.Sprintf("%s | stage %d/4 (%s) | %d stages complete | %d tools | %d integrations | %d opportunities",
		state.ClientName,
		int(state.CurrentStage),
		state.CurrentStage,
		done,
		len(state.ToolInventory),
		len(state.Integrations),
		len(state.AutomationOpportunities),
	)
}
