package audit

import (
	"fmt"
	"time"
)

// Tool is one inventory entry. Tool names are the natural key per session;
// callers normalize case and aliases before handing tools in.
type Tool struct {
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	Users           []string `json:"users"`
	Criticality     string   `json:"criticality,omitempty"`
	DiscoveryMethod string   `json:"discovery_method"`
	Version         string   `json:"version,omitempty"`
	Vendor          string   `json:"vendor,omitempty"`
}

// Integration records an assessment of how two inventory tools exchange data.
// Status and type values come from the integration package; the state keeps
// them as plain strings so the core stays dependency free.
type Integration struct {
	SourceTool      string   `json:"source_tool"`
	TargetTool      string   `json:"target_tool"`
	Status          string   `json:"status"`
	IntegrationType string   `json:"integration_type"`
	HealthScore     int      `json:"health_score"`
	Issues          []string `json:"issues,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// Opportunity is one proposed workflow automation with its scoring outcome.
type Opportunity struct {
	Name                string   `json:"name"`
	PriorityScore       float64  `json:"priority_score"`
	PriorityTier        string   `json:"priority_tier,omitempty"`
	ROIEstimate         float64  `json:"roi_estimate"`
	AnnualHoursSaved    float64  `json:"annual_hours_saved,omitempty"`
	WorkflowDescription string   `json:"workflow_description"`
	AffectedTools       []string `json:"affected_tools,omitempty"`
}

// State is the full record of one audit session. It is mutated only through
// the owning Manager, which persists after every change.
type State struct {
	ClientName              string          `json:"client_name"`
	AuditID                 string          `json:"audit_id"`
	ClientDomain            string          `json:"client_domain,omitempty"`
	CurrentStage            Stage           `json:"current_stage"`
	StageCompletion         map[Stage]bool  `json:"stage_completion"`
	ToolInventory           map[string]Tool `json:"tool_inventory"`
	Integrations            []Integration   `json:"integrations"`
	AutomationOpportunities []Opportunity   `json:"automation_opportunities"`
	StakeholderContacts     []string        `json:"stakeholder_contacts,omitempty"`
	CreatedAt               time.Time       `json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`
}

// newState builds a fresh session record at the start of discovery.
func newState(clientName, clientDomain, auditID string, now time.Time) State {
	return State{
		ClientName:   clientName,
		AuditID:      auditID,
		ClientDomain: clientDomain,
		CurrentStage: StageDiscovery,
		StageCompletion: map[Stage]bool{
			StageDiscovery:     false,
			StageAssessment:    false,
			StageOpportunities: false,
			StageDelivery:      false,
		},
		ToolInventory: map[string]Tool{},
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}
}

// validate rejects session records that would put the state machine in an
// undefined position. Used on load so malformed files fail loudly.
func (s State) validate() error {
	if s.AuditID == "" {
		return fmt.Errorf("audit id is missing")
	}
	if s.ClientName == "" {
		return fmt.Errorf("client name is missing")
	}
	if !s.CurrentStage.Valid() {
		return fmt.Errorf("unknown stage ordinal %d", int(s.CurrentStage))
	}
	for stage := range s.StageCompletion {
		if !stage.Valid() {
			return fmt.Errorf("unknown stage ordinal %d in completion map", int(stage))
		}
	}
	return nil
}

// clone returns a deep copy so callers cannot reach back into managed state.
func (s State) clone() State {
	out := s
	out.StageCompletion = make(map[Stage]bool, len(s.StageCompletion))
	for stage, done := range s.StageCompletion {
		out.StageCompletion[stage] = done
	}
	out.ToolInventory = make(map[string]Tool, len(s.ToolInventory))
	for name, tool := range s.ToolInventory {
		tool.Users = cloneStrings(tool.Users)
		out.ToolInventory[name] = tool
	}
	out.Integrations = make([]Integration, len(s.Integrations))
	for i, integ := range s.Integrations {
		integ.Issues = cloneStrings(integ.Issues)
		integ.Recommendations = cloneStrings(integ.Recommendations)
		out.Integrations[i] = integ
	}
	out.AutomationOpportunities = make([]Opportunity, len(s.AutomationOpportunities))
	for i, opp := range s.AutomationOpportunities {
		opp.AffectedTools = cloneStrings(opp.AffectedTools)
		out.AutomationOpportunities[i] = opp
	}
	out.StakeholderContacts = cloneStrings(s.StakeholderContacts)
	return out
}

func cloneStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
