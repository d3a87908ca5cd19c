// Package opportunity identifies automation opportunities from a
// client's tool inventory and integration gaps, scores them, and
// assembles a phased implementation roadmap with workflow
// specifications ready for an automation platform like n8n.
package opportunity

import "time"

// Complexity buckets implementation effort.
type Complexity string

const (
	ComplexityLow    Complexity = "low"    // 1-3 weeks
	ComplexityMedium Complexity = "medium" // 1-2 months
	ComplexityHigh   Complexity = "high"   // 3+ months
)

// Impact buckets the business effect of an automation.
type Impact string

const (
	ImpactTransformational Impact = "transformational"
	ImpactSignificant      Impact = "significant"
	ImpactModerate         Impact = "moderate"
	ImpactMinimal          Impact = "minimal"
)

// WorkflowNode is one step in a generated workflow specification.
type WorkflowNode struct {
	Name       string            `json:"name"`
	Type       string            `json:"type"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

// WorkflowSpec describes an executable automation workflow in enough
// detail to hand off to an implementation team.
type WorkflowSpec struct {
	Name                string            `json:"name"`
	Description         string            `json:"description"`
	TriggerType         string            `json:"trigger_type"`
	TriggerConfig       map[string]string `json:"trigger_config"`
	Nodes               []WorkflowNode    `json:"nodes"`
	MonthlyExecutions   int               `json:"estimated_executions_per_month"`
	DataTransformations []string          `json:"data_transformations"`
	RetryAttempts       int               `json:"retry_attempts"`
	TimeoutSeconds      int               `json:"timeout_seconds"`
	Monitoring          []string          `json:"monitoring_requirements"`
}

// Opportunity is a fully scored automation opportunity.
type Opportunity struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Description         string   `json:"description"`
	SourceTools         []string `json:"source_tools"`
	TargetTools         []string `json:"target_tools"`
	BusinessProcess     string   `json:"business_process"`
	CurrentWorkflow     string   `json:"current_workflow_description"`
	ProposedAutomation  string   `json:"proposed_automation"`

	FrequencyScore      int `json:"frequency_score"`
	TimeSavingsScore    int `json:"time_savings_score"`
	ErrorReductionScore int `json:"error_reduction_score"`
	StrategicValueScore int `json:"strategic_value_score"`
	FeasibilityScore    int `json:"feasibility_score"`

	TotalScore   int    `json:"total_score"`
	PriorityTier string `json:"priority_tier"`

	MinutesPerExecution   int     `json:"current_time_per_execution_minutes"`
	ExecutionsPerMonth    int     `json:"executions_per_month"`
	MonthlyTimeSavings    float64 `json:"monthly_time_savings_hours"`
	AnnualCostSavings     float64 `json:"annual_cost_savings"`
	ImplementationCost    float64 `json:"implementation_cost_estimate"`
	ROIPercentage         float64 `json:"roi_percentage"`
	PaybackPeriodMonths   float64 `json:"payback_period_months"`

	Complexity     Complexity   `json:"complexity"`
	BusinessImpact Impact       `json:"business_impact"`
	Workflow       WorkflowSpec `json:"workflow"`
	Prerequisites  []string     `json:"prerequisites"`
	Risks          []string     `json:"risks"`
	SuccessMetrics []string     `json:"success_metrics"`

	ImplementationWeeks int      `json:"estimated_implementation_weeks"`
	GoLiveDependencies  []string `json:"go_live_dependencies"`

	CreatedAt time.Time `json:"created_at"`
}
