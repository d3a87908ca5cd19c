package opportunity

// Template pre-fills an opportunity for a business process that is
// common across advisory firms. A template applies when every tool it
// names appears in the client's inventory.
type Template struct {
	ID                  string
	Name                string
	Description         string
	TypicalTools        []string
	BusinessProcess     string
	FrequencyScore      int
	TimeSavingsScore    int
	ErrorReductionScore int
	StrategicValueScore int
	FeasibilityScore    int
	MinutesPerExecution int
	ExecutionsPerMonth  int
	Complexity          Complexity
	BusinessImpact      Impact
}

func builtinTemplates() []Template {
	return []Template{
		{
			ID:                  "research_to_client_reports",
			Name:                "Research Data to Client Reports",
			Description:         "Automated generation of client research summaries from FactSet/Bloomberg data",
			TypicalTools:        []string{"factset", "bloomberg", "365", "wealth box"},
			BusinessProcess:     "client_reporting",
			FrequencyScore:      4,
			TimeSavingsScore:    5,
			ErrorReductionScore: 4,
			StrategicValueScore: 4,
			FeasibilityScore:    3,
			MinutesPerExecution: 120,
			ExecutionsPerMonth:  20,
			Complexity:          ComplexityMedium,
			BusinessImpact:      ImpactSignificant,
		},
		{
			ID:                  "meeting_notes_to_crm",
			Name:                "Meeting Notes to CRM Integration",
			Description:         "Automated capture and filing of meeting summaries in CRM",
			TypicalTools:        []string{"zoom", "365", "wealth box"},
			BusinessProcess:     "client_communication",
			FrequencyScore:      5,
			TimeSavingsScore:    3,
			ErrorReductionScore: 5,
			StrategicValueScore: 3,
			FeasibilityScore:    4,
			MinutesPerExecution: 15,
			ExecutionsPerMonth:  100,
			Complexity:          ComplexityLow,
			BusinessImpact:      ImpactModerate,
		},
		{
			ID:                  "portfolio_performance_reporting",
			Name:                "Automated Portfolio Performance Reports",
			Description:         "Generate and distribute monthly portfolio performance reports",
			TypicalTools:        []string{"advent axys", "365", "wealth box"},
			BusinessProcess:     "client_reporting",
			FrequencyScore:      3,
			TimeSavingsScore:    5,
			ErrorReductionScore: 5,
			StrategicValueScore: 5,
			FeasibilityScore:    2,
			MinutesPerExecution: 300,
			ExecutionsPerMonth:  50,
			Complexity:          ComplexityHigh,
			BusinessImpact:      ImpactTransformational,
		},
		{
			ID:                  "compliance_monitoring",
			Name:                "Automated Compliance Monitoring",
			Description:         "Monitor trading activity against client restrictions and regulations",
			TypicalTools:        []string{"schwab", "advent axys", "365"},
			BusinessProcess:     "compliance_monitoring",
			FrequencyScore:      5,
			TimeSavingsScore:    4,
			ErrorReductionScore: 5,
			StrategicValueScore: 5,
			FeasibilityScore:    3,
			MinutesPerExecution: 60,
			ExecutionsPerMonth:  22,
			Complexity:          ComplexityMedium,
			BusinessImpact:      ImpactSignificant,
		},
		{
			ID:                  "client_onboarding_workflow",
			Name:                "Client Onboarding Automation",
			Description:         "Streamline new client setup across all systems",
			TypicalTools:        []string{"wealth box", "schwab", "right capital", "365"},
			BusinessProcess:     "client_onboarding",
			FrequencyScore:      2,
			TimeSavingsScore:    5,
			ErrorReductionScore: 4,
			StrategicValueScore: 4,
			FeasibilityScore:    3,
			MinutesPerExecution: 240,
			ExecutionsPerMonth:  5,
			Complexity:          ComplexityMedium,
			BusinessImpact:      ImpactSignificant,
		},
		{
			ID:                  "document_management_workflow",
			Name:                "Document Management Automation",
			Description:         "Automated filing and organization of client documents",
			TypicalTools:        []string{"365", "wealth box", "right capital"},
			BusinessProcess:     "document_management",
			FrequencyScore:      5,
			TimeSavingsScore:    3,
			ErrorReductionScore: 4,
			StrategicValueScore: 2,
			FeasibilityScore:    4,
			MinutesPerExecution: 10,
			ExecutionsPerMonth:  200,
			Complexity:          ComplexityLow,
			BusinessImpact:      ImpactModerate,
		},
	}
}
