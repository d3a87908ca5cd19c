package audit

import (
	"fmt"
	"sort"
)

// GateResult reports whether a stage's entry criteria are met. Gate failures
// are normal control flow, so this is a value, never an error.
type GateResult struct {
	Target     Stage
	Passed     bool
	Conditions []string
}

// CheckGate evaluates the entry criteria for the target stage against the
// current session state. It is a pure function with no side effects.
func CheckGate(state State, target Stage) GateResult {
	result := GateResult{Target: target}
	switch target {
	case StageDiscovery:
		// Discovery is the starting point and is always open.
	case StageAssessment:
		result.Conditions = checkAssessmentGate(state)
	case StageOpportunities:
		result.Conditions = checkOpportunitiesGate(state)
	case StageDelivery:
		result.Conditions = checkDeliveryGate(state)
	default:
		result.Conditions = []string{fmt.Sprintf("unknown stage ordinal %d", int(target))}
	}
	result.Passed = len(result.Conditions) == 0
	return result
}

// Assessment requires a populated inventory where every tool carries the
// fields discovery is expected to have filled in.
func checkAssessmentGate(state State) []string {
	if len(state.ToolInventory) == 0 {
		return []string{"No tools discovered - tool inventory is empty"}
	}
	var conditions []string
	for _, name := range sortedToolNames(state.ToolInventory) {
		tool := state.ToolInventory[name]
		if tool.Category == "" {
			conditions = append(conditions, fmt.Sprintf("tool %q is missing its category", name))
		}
		if len(tool.Users) == 0 {
			conditions = append(conditions, fmt.Sprintf("tool %q has no recorded users", name))
		}
		if tool.DiscoveryMethod == "" {
			conditions = append(conditions, fmt.Sprintf("tool %q is missing its discovery method", name))
		}
	}
	return conditions
}

// Opportunities requires enough tools to form pairs and at least one fully
// described integration assessment.
func checkOpportunitiesGate(state State) []string {
	var conditions []string
	if len(state.ToolInventory) < 2 {
		conditions = append(conditions,
			fmt.Sprintf("need at least 2 tools to assess integrations (have %d)", len(state.ToolInventory)))
	}
	if len(state.Integrations) == 0 {
		conditions = append(conditions, "no integration assessments recorded")
	}
	for i, integ := range state.Integrations {
		if integ.SourceTool == "" || integ.TargetTool == "" {
			conditions = append(conditions, fmt.Sprintf("integration %d is missing its tool pair", i+1))
		}
		if integ.Status == "" {
			conditions = append(conditions, fmt.Sprintf("integration %d is missing its status", i+1))
		}
		if integ.IntegrationType == "" {
			conditions = append(conditions, fmt.Sprintf("integration %d is missing its integration type", i+1))
		}
	}
	return conditions
}

// Delivery requires at least three scored opportunities, each fully described
// and carrying a non-zero priority score.
func checkDeliveryGate(state State) []string {
	var conditions []string
	if len(state.AutomationOpportunities) < 3 {
		conditions = append(conditions,
			fmt.Sprintf("need at least 3 automation opportunities (have %d)", len(state.AutomationOpportunities)))
	}
	for _, opp := range state.AutomationOpportunities {
		if opp.Name == "" {
			conditions = append(conditions, "an opportunity is missing its name")
			continue
		}
		if opp.WorkflowDescription == "" {
			conditions = append(conditions, fmt.Sprintf("opportunity %q is missing its workflow description", opp.Name))
		}
		if opp.ROIEstimate == 0 {
			conditions = append(conditions, fmt.Sprintf("opportunity %q is missing its ROI estimate", opp.Name))
		}
		if opp.PriorityScore == 0 {
			conditions = append(conditions, fmt.Sprintf("opportunity %q is not properly scored", opp.Name))
		}
	}
	return conditions
}

func sortedToolNames(inventory map[string]Tool) []string {
	names := make([]string, 0, len(inventory))
	for name := range inventory {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
