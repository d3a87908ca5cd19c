package integration

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dfquinn23/tech-stack-audit-tool/internal/audit"
)

// BusinessProcess names an advisory-firm workflow that spans several tools.
type BusinessProcess string

const (
	ProcessClientOnboarding     BusinessProcess = "client_onboarding"
	ProcessPortfolioManagement  BusinessProcess = "portfolio_management"
	ProcessResearchWorkflow     BusinessProcess = "research_workflow"
	ProcessClientReporting      BusinessProcess = "client_reporting"
	ProcessClientCommunication  BusinessProcess = "client_communication"
	ProcessComplianceMonitoring BusinessProcess = "compliance_monitoring"
)

// Gap records a missing but valuable integration inside a business process.
type Gap struct {
	SourceTool              string          `json:"source_tool"`
	TargetTool              string          `json:"target_tool"`
	Process                 BusinessProcess `json:"business_process"`
	GapType                 string          `json:"gap_type"`
	CurrentState            string          `json:"current_state"`
	ProposedIntegration     string          `json:"proposed_integration"`
	BusinessValue           int             `json:"business_value"`
	ImplementationComplexity int            `json:"implementation_complexity"`
	AnnualTimeSavingsHours  int             `json:"annual_time_savings_hours"`
	EstimatedAnnualValue    int             `json:"estimated_annual_value"`
	Prerequisites           []string        `json:"prerequisites,omitempty"`
	Risks                   []string        `json:"risks,omitempty"`
}

// ProcessAnalysis summarizes one business process against the inventory.
type ProcessAnalysis struct {
	Process             BusinessProcess `json:"process"`
	ToolsInvolved       []string        `json:"tools_involved"`
	EfficiencyScore     int             `json:"efficiency_score"`
	PainPoints          []string        `json:"pain_points,omitempty"`
	Gaps                []Gap           `json:"gaps,omitempty"`
	AutomationPotential int             `json:"automation_potential"`
}

// processWorkflow lists the tools a process typically spans and the
// integrations it expects between them.
type processWorkflow struct {
	typicalTools         []string
	expectedIntegrations [][2]string
}

// gapTemplate pre-fills the analysis for a known tool pair and process.
type gapTemplate struct {
	gapType             string
	currentState        string
	proposedIntegration string
	weeklyHoursSaved    int
	prerequisites       []string
	risks               []string
}

// gapHourlyValue converts saved hours to dollars in gap estimates.
const gapHourlyValue = 50

// GapAnalyzer finds missing integrations by walking business process
// workflows against the available inventory.
type GapAnalyzer struct {
	workflows map[BusinessProcess]processWorkflow
	templates map[[2]string]map[BusinessProcess]gapTemplate
}

// NewGapAnalyzer builds the analyzer with its built-in workflow knowledge.
func NewGapAnalyzer() *GapAnalyzer {
	return &GapAnalyzer{
		workflows: map[BusinessProcess]processWorkflow{
			ProcessClientOnboarding: {
				typicalTools: []string{"wealth box", "schwab", "right capital", "365"},
				expectedIntegrations: [][2]string{
					{"wealth box", "schwab"},
					{"wealth box", "right capital"},
					{"wealth box", "365"},
					{"right capital", "365"},
				},
			},
			ProcessPortfolioManagement: {
				typicalTools: []string{"advent axys", "factset", "bloomberg", "schwab"},
				expectedIntegrations: [][2]string{
					{"schwab", "advent axys"},
					{"factset", "advent axys"},
					{"bloomberg", "advent axys"},
				},
			},
			ProcessResearchWorkflow: {
				typicalTools: []string{"factset", "bloomberg", "365", "wealth box"},
				expectedIntegrations: [][2]string{
					{"factset", "365"},
					{"bloomberg", "365"},
					{"factset", "wealth box"},
					{"bloomberg", "wealth box"},
				},
			},
			ProcessClientReporting: {
				typicalTools: []string{"advent axys", "wealth box", "365", "right capital"},
				expectedIntegrations: [][2]string{
					{"advent axys", "365"},
					{"advent axys", "wealth box"},
					{"right capital", "365"},
					{"right capital", "wealth box"},
				},
			},
			ProcessClientCommunication: {
				typicalTools: []string{"wealth box", "365", "zoom", "right capital"},
				expectedIntegrations: [][2]string{
					{"zoom", "365"},
					{"zoom", "wealth box"},
					{"365", "wealth box"},
					{"right capital", "wealth box"},
				},
			},
			ProcessComplianceMonitoring: {
				typicalTools: []string{"advent axys", "schwab", "wealth box", "365"},
				expectedIntegrations: [][2]string{
					{"schwab", "advent axys"},
					{"advent axys", "365"},
					{"wealth box", "365"},
				},
			},
		},
		templates: map[[2]string]map[BusinessProcess]gapTemplate{
			{"advent axys", "wealth box"}: {
				ProcessClientReporting: {
					gapType:             "missing_integration",
					currentState:        "Manual export of portfolio data, manual entry into CRM client records",
					proposedIntegration: "Automated sync of portfolio performance to client records in CRM",
					weeklyHoursSaved:    4,
					prerequisites:       []string{"API access to both systems", "Client data mapping"},
					risks:               []string{"Data privacy considerations", "Client consent for automated data sharing"},
				},
			},
			{"factset", "365"}: {
				ProcessResearchWorkflow: {
					gapType:             "manual_workflow",
					currentState:        "Manual download and email of research reports",
					proposedIntegration: "Automated delivery of research to SharePoint with email notifications",
					weeklyHoursSaved:    3,
					prerequisites:       []string{"FactSet API access", "SharePoint integration"},
					risks:               []string{"Information overload", "Entitlements management"},
				},
			},
			{"zoom", "wealth box"}: {
				ProcessClientCommunication: {
					gapType:             "missing_integration",
					currentState:        "Manual logging of meeting notes and follow-ups in CRM",
					proposedIntegration: "Automated capture of meeting summaries and task creation in CRM",
					weeklyHoursSaved:    2,
					prerequisites:       []string{"Zoom API access", "AI transcription setup"},
					risks:               []string{"Client privacy concerns", "Transcription accuracy"},
				},
			},
			{"right capital", "365"}: {
				ProcessClientReporting: {
					gapType:             "manual_workflow",
					currentState:        "Manual creation and email of financial plans",
					proposedIntegration: "Automated plan generation and delivery via email/SharePoint",
					weeklyHoursSaved:    2,
					prerequisites:       []string{"Right Capital API", "Email template setup"},
					risks:               []string{"Plan customization limitations", "Client communication standardization"},
				},
			},
		},
	}
}

// Analyze walks every business process, reporting gaps where both tools
// exist in the inventory but no integration between them was recorded.
func (a *GapAnalyzer) Analyze(toolNames []string, existing []audit.Integration) []ProcessAnalysis {
	available := map[string]bool{}
	for _, name := range toolNames {
		available[normalizeGapName(name)] = true
	}
	connected := map[[2]string]bool{}
	for _, integ := range existing {
		source := normalizeGapName(integ.SourceTool)
		target := normalizeGapName(integ.TargetTool)
		if source == "" || target == "" {
			continue
		}
		connected[[2]string{source, target}] = true
		connected[[2]string{target, source}] = true
	}

	var analyses []ProcessAnalysis
	for _, process := range orderedProcesses() {
		workflow := a.workflows[process]
		var involved []string
		missingTools := map[string]bool{}
		for _, tool := range workflow.typicalTools {
			if available[tool] {
				involved = append(involved, tool)
			} else {
				missingTools[tool] = true
			}
		}
		sort.Strings(involved)

		var gaps []Gap
		for _, pair := range workflow.expectedIntegrations {
			source, target := pair[0], pair[1]
			if !available[source] || !available[target] {
				continue
			}
			if connected[[2]string{source, target}] {
				continue
			}
			gaps = append(gaps, a.describeGap(source, target, process))
		}

		expected := len(workflow.expectedIntegrations)
		efficiency := 10
		if expected > 0 {
			efficiency = 10 - (len(gaps)*10)/expected
			if efficiency < 1 {
				efficiency = 1
			}
		}

		var painPoints []string
		if len(missingTools) > 0 {
			var names []string
			for name := range missingTools {
				names = append(names, name)
			}
			sort.Strings(names)
			painPoints = append(painPoints, "missing key tools: "+strings.Join(names, ", "))
		}
		if len(gaps) > 0 {
			painPoints = append(painPoints, fmt.Sprintf("%d integration gaps identified", len(gaps)))
		}
		if expected > 0 && len(gaps)*2 > expected {
			painPoints = append(painPoints, "highly manual process with limited automation")
		}

		potential := len(gaps) * 2
		if potential > 10 {
			potential = 10
		}

		analyses = append(analyses, ProcessAnalysis{
			Process:             process,
			ToolsInvolved:       involved,
			EfficiencyScore:     efficiency,
			PainPoints:          painPoints,
			Gaps:                gaps,
			AutomationPotential: potential,
		})
	}
	return analyses
}

// Prioritize flattens and orders gaps by business value, breaking ties with
// lower implementation complexity.
func (a *GapAnalyzer) Prioritize(analyses []ProcessAnalysis) []Gap {
	var gaps []Gap
	for _, analysis := range analyses {
		gaps = append(gaps, analysis.Gaps...)
	}
	sort.SliceStable(gaps, func(i, j int) bool {
		if gaps[i].BusinessValue != gaps[j].BusinessValue {
			return gaps[i].BusinessValue > gaps[j].BusinessValue
		}
		return gaps[i].ImplementationComplexity < gaps[j].ImplementationComplexity
	})
	return gaps
}

func (a *GapAnalyzer) describeGap(source, target string, process BusinessProcess) Gap {
	template := gapTemplate{
		gapType:             "missing_integration",
		currentState:        fmt.Sprintf("Manual data transfer between %s and %s", source, target),
		proposedIntegration: fmt.Sprintf("API integration to sync data between %s and %s", source, target),
		weeklyHoursSaved:    1,
		prerequisites:       []string{"API access", "Data mapping"},
		risks:               []string{"Integration maintenance", "Data synchronization issues"},
	}
	if byProcess, ok := a.templates[[2]string{source, target}]; ok {
		if specific, ok := byProcess[process]; ok {
			template = specific
		}
	}
	return Gap{
		SourceTool:               source,
		TargetTool:               target,
		Process:                  process,
		GapType:                  template.gapType,
		CurrentState:             template.currentState,
		ProposedIntegration:      template.proposedIntegration,
		BusinessValue:            businessValue(template),
		ImplementationComplexity: complexity(source, target),
		AnnualTimeSavingsHours:   template.weeklyHoursSaved * 52,
		EstimatedAnnualValue:     template.weeklyHoursSaved * gapHourlyValue * 52,
		Prerequisites:            template.prerequisites,
		Risks:                    template.risks,
	}
}

// businessValue scores a gap 1-10 from time savings, error-proneness, and
// client impact.
func businessValue(template gapTemplate) int {
	score := 0
	switch {
	case template.weeklyHoursSaved >= 4:
		score += 4
	case template.weeklyHoursSaved >= 2:
		score += 3
	default:
		score += 2
	}
	if template.gapType == "manual_workflow" {
		score += 2
	} else {
		score += 1
	}
	state := strings.ToLower(template.currentState)
	if strings.Contains(state, "client") {
		score += 2
	} else {
		score += 1
	}
	for _, word := range []string{"compliance", "audit", "reporting"} {
		if strings.Contains(state, word) {
			score++
			break
		}
	}
	if score > 10 {
		score = 10
	}
	return score
}

// complexity scores implementation effort 1-10, with enterprise and
// data-sensitive systems rated harder and cloud-native pairs easier.
func complexity(source, target string) int {
	complexTools := map[string]bool{"advent axys": true, "factset": true, "bloomberg": true}
	simpleTools := map[string]bool{"zoom": true, "365": true, "slack": true}
	sensitiveTools := map[string]bool{"advent axys": true, "schwab": true, "factset": true, "bloomberg": true}

	score := 3
	if complexTools[source] || complexTools[target] {
		score += 3
	}
	if simpleTools[source] && simpleTools[target] {
		score--
	}
	if sensitiveTools[source] || sensitiveTools[target] {
		score += 2
	}
	if score > 10 {
		score = 10
	}
	if score < 1 {
		score = 1
	}
	return score
}

func normalizeGapName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	switch {
	case strings.Contains(normalized, "microsoft"), strings.Contains(normalized, "office"), strings.Contains(normalized, "365"):
		return "365"
	case strings.Contains(normalized, "wealthbox"), strings.Contains(normalized, "wealth box"):
		return "wealth box"
	case strings.Contains(normalized, "advent"):
		return "advent axys"
	case strings.Contains(normalized, "right") && strings.Contains(normalized, "capital"):
		return "right capital"
	case strings.Contains(normalized, "bloomberg"):
		return "bloomberg"
	case strings.Contains(normalized, "schwab"):
		return "schwab"
	}
	return normalized
}

func orderedProcesses() []BusinessProcess {
	return []BusinessProcess{
		ProcessClientOnboarding,
		ProcessPortfolioManagement,
		ProcessResearchWorkflow,
		ProcessClientReporting,
		ProcessClientCommunication,
		ProcessComplianceMonitoring,
	}
}
