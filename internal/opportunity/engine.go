package opportunity

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dfquinn23/tech-stack-audit-tool/internal/audit"
	"github.com/dfquinn23/tech-stack-audit-tool/internal/integration"
	"github.com/dfquinn23/tech-stack-audit-tool/internal/logbook"
)

// Scoring weights. Each component score is 1-5 and the weighted sum
// is scaled so a perfect opportunity totals 25.
const (
	weightFrequency      = 0.25
	weightTimeSavings    = 0.30
	weightErrorReduction = 0.20
	weightStrategicValue = 0.15
	weightFeasibility    = 0.10

	defaultHourlyRate = 75.0

	// Gaps below this business value do not justify a custom build.
	gapValueFloor = 7
)

// Engine matches a tool inventory against opportunity templates and
// integration gaps, producing scored automation opportunities.
type Engine struct {
	templates  []Template
	hourlyRate float64
	clock      func() time.Time
	book       *logbook.Logbook
}

// Option configures an Engine.
type Option func(*Engine)

// WithHourlyRate overrides the staff hourly rate used for savings.
func WithHourlyRate(rate float64) Option {
	return func(e *Engine) {
		if rate > 0 {
			e.hourlyRate = rate
		}
	}
}

// WithClock substitutes the time source.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithLogbook routes progress lines to the session logbook.
func WithLogbook(book *logbook.Logbook) Option {
	return func(e *Engine) { e.book = book }
}

// NewEngine returns an engine loaded with the built-in templates.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		templates:  builtinTemplates(),
		hourlyRate: defaultHourlyRate,
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Identify produces every opportunity supported by the inventory:
// template matches first, then custom opportunities derived from
// high-value integration gaps. Results are scored and sorted by total
// score descending.
func (e *Engine) Identify(inventory map[string]audit.Tool, gaps []integration.Gap) []Opportunity {
	available := make(map[string]bool, len(inventory))
	for name := range inventory {
		available[normalizeToolName(name)] = true
	}

	var opportunities []Opportunity
	for _, tmpl := range e.templates {
		if !hasAllTools(tmpl.TypicalTools, available) {
			continue
		}
		e.book.Info("opportunity: matched template %s", tmpl.Name)
		opportunities = append(opportunities, e.fromTemplate(tmpl))
	}

	for _, gap := range gaps {
		if gap.BusinessValue < gapValueFloor {
			continue
		}
		opportunities = append(opportunities, e.fromGap(gap))
	}

	for i := range opportunities {
		e.score(&opportunities[i])
	}
	sort.SliceStable(opportunities, func(i, j int) bool {
		return opportunities[i].TotalScore > opportunities[j].TotalScore
	})

	e.book.Info("opportunity: identified %d opportunities", len(opportunities))
	return opportunities
}

func (e *Engine) fromTemplate(tmpl Template) Opportunity {
	sourceTools, targetTools := splitTools(tmpl.TypicalTools)

	monthlySavings := float64(tmpl.MinutesPerExecution*tmpl.ExecutionsPerMonth) / 60
	annualSavings := monthlySavings * 12 * e.hourlyRate
	cost := implementationCost(tmpl.Complexity)

	var roi float64
	if cost > 0 {
		roi = (annualSavings - cost) / cost * 100
	}
	payback := 999.0
	if monthlySavings > 0 {
		payback = cost / (monthlySavings * e.hourlyRate)
	}

	now := e.clock().UTC()
	return Opportunity{
		ID:                 fmt.Sprintf("%s_%s", tmpl.ID, now.Format("20060102_150405")),
		Name:               tmpl.Name,
		Description:        tmpl.Description,
		SourceTools:        sourceTools,
		TargetTools:        targetTools,
		BusinessProcess:    tmpl.BusinessProcess,
		CurrentWorkflow:    fmt.Sprintf("Currently manual process taking %d minutes per execution", tmpl.MinutesPerExecution),
		ProposedAutomation: "Automated workflow reducing time to under 5 minutes per execution",

		FrequencyScore:      tmpl.FrequencyScore,
		TimeSavingsScore:    tmpl.TimeSavingsScore,
		ErrorReductionScore: tmpl.ErrorReductionScore,
		StrategicValueScore: tmpl.StrategicValueScore,
		FeasibilityScore:    tmpl.FeasibilityScore,

		MinutesPerExecution: tmpl.MinutesPerExecution,
		ExecutionsPerMonth:  tmpl.ExecutionsPerMonth,
		MonthlyTimeSavings:  monthlySavings,
		AnnualCostSavings:   annualSavings,
		ImplementationCost:  cost,
		ROIPercentage:       roi,
		PaybackPeriodMonths: payback,

		Complexity:     tmpl.Complexity,
		BusinessImpact: tmpl.BusinessImpact,
		Workflow:       buildWorkflow(tmpl, sourceTools, targetTools),
		Prerequisites:  prerequisites(sourceTools, targetTools),
		Risks:          risks(tmpl),
		SuccessMetrics: successMetrics(tmpl),

		ImplementationWeeks: implementationWeeks(tmpl.Complexity),
		GoLiveDependencies:  dependencies(tmpl, sourceTools, targetTools),
		CreatedAt:           now,
	}
}

func (e *Engine) fromGap(gap integration.Gap) Opportunity {
	now := e.clock().UTC()

	annualValue := float64(gap.EstimatedAnnualValue)
	cost := annualValue * 0.3
	feasibility := 5 - gap.ImplementationComplexity
	if feasibility < 1 {
		feasibility = 1
	}

	workflowName := fmt.Sprintf("gap_automation_%s_%s",
		strings.ReplaceAll(gap.SourceTool, " ", "_"),
		strings.ReplaceAll(gap.TargetTool, " ", "_"))

	return Opportunity{
		ID:                 "gap_based_" + now.Format("20060102_150405"),
		Name:               fmt.Sprintf("Integration Gap: %s to %s", gap.SourceTool, gap.TargetTool),
		Description:        gap.ProposedIntegration,
		SourceTools:        []string{gap.SourceTool},
		TargetTools:        []string{gap.TargetTool},
		BusinessProcess:    string(gap.Process),
		CurrentWorkflow:    gap.CurrentState,
		ProposedAutomation: gap.ProposedIntegration,

		FrequencyScore:      3,
		TimeSavingsScore:    gap.BusinessValue / 2,
		ErrorReductionScore: 4,
		StrategicValueScore: gap.BusinessValue / 2,
		FeasibilityScore:    feasibility,

		MinutesPerExecution: gap.AnnualTimeSavingsHours * 60 / 52,
		ExecutionsPerMonth:  20,
		MonthlyTimeSavings:  float64(gap.AnnualTimeSavingsHours) / 12,
		AnnualCostSavings:   annualValue,
		ImplementationCost:  cost,
		ROIPercentage:       200,
		PaybackPeriodMonths: 4,

		Complexity:     ComplexityMedium,
		BusinessImpact: ImpactModerate,
		Workflow: WorkflowSpec{
			Name:          workflowName,
			Description:   "Automation addressing integration gap: " + gap.ProposedIntegration,
			TriggerType:   "schedule",
			TriggerConfig: map[string]string{"cron": "0 9 * * 1-5", "timezone": "America/New_York"},
			Nodes: []WorkflowNode{
				{Name: "Data Extract", Type: "httpRequest"},
				{Name: "Transform", Type: "function"},
				{Name: "Load Data", Type: "httpRequest"},
			},
			MonthlyExecutions:   20,
			DataTransformations: []string{"field_mapping", "data_validation", "format_conversion"},
			RetryAttempts:       3,
			TimeoutSeconds:      300,
			Monitoring:          []string{"success_rate", "data_quality"},
		},
		Prerequisites:  gap.Prerequisites,
		Risks:          append([]string{}, firstNonEmpty(gap.Risks, []string{"Integration complexity"})...),
		SuccessMetrics: []string{"Reduced manual processing time", "Improved data accuracy"},

		ImplementationWeeks: 8,
		GoLiveDependencies:  []string{"API access", "Testing environment"},
		CreatedAt:           now,
	}
}

func (e *Engine) score(o *Opportunity) {
	total := float64(o.FrequencyScore)*weightFrequency*5 +
		float64(o.TimeSavingsScore)*weightTimeSavings*5 +
		float64(o.ErrorReductionScore)*weightErrorReduction*5 +
		float64(o.StrategicValueScore)*weightStrategicValue*5 +
		float64(o.FeasibilityScore)*weightFeasibility*5
	o.TotalScore = int(total)

	switch {
	case o.TotalScore >= 20:
		o.PriorityTier = "high"
	case o.TotalScore >= 15:
		o.PriorityTier = "medium"
	default:
		o.PriorityTier = "low"
	}
}

// Record converts an opportunity into the session state form.
func Record(o Opportunity) audit.Opportunity {
	return audit.Opportunity{
		Name:                o.Name,
		PriorityScore:       float64(o.TotalScore),
		PriorityTier:        o.PriorityTier,
		ROIEstimate:         o.AnnualCostSavings,
		AnnualHoursSaved:    o.MonthlyTimeSavings * 12,
		WorkflowDescription: o.Description,
		AffectedTools:       append(append([]string{}, o.SourceTools...), o.TargetTools...),
	}
}

func implementationCost(c Complexity) float64 {
	switch c {
	case ComplexityLow:
		return 5000
	case ComplexityHigh:
		return 40000
	default:
		return 15000
	}
}

func implementationWeeks(c Complexity) int {
	switch c {
	case ComplexityLow:
		return 2
	case ComplexityHigh:
		return 12
	default:
		return 6
	}
}

func prerequisites(sourceTools, targetTools []string) []string {
	out := []string{"Automation platform configured", "API credentials secured"}
	for _, tool := range append(append([]string{}, sourceTools...), targetTools...) {
		lower := strings.ToLower(tool)
		switch {
		case strings.Contains(lower, "factset"):
			out = append(out, "FactSet API access and entitlements")
		case strings.Contains(lower, "bloomberg"):
			out = append(out, "Bloomberg API license")
		case strings.Contains(lower, "365"):
			out = append(out, "Microsoft Graph API permissions")
		case strings.Contains(lower, "zoom"):
			out = append(out, "Zoom API key and permissions")
		}
	}
	return out
}

func risks(tmpl Template) []string {
	out := []string{"API rate limiting", "Authentication token expiry", "Data format changes"}
	if tmpl.Complexity == ComplexityHigh {
		out = append(out, "Complex data transformations", "Multiple system dependencies")
	}
	if strings.Contains(tmpl.BusinessProcess, "compliance") {
		out = append(out, "Regulatory compliance requirements", "Audit trail maintenance")
	}
	return out
}

func successMetrics(tmpl Template) []string {
	out := []string{
		"Execution success rate > 95%",
		"Average execution time < 5 minutes",
		"Zero data loss incidents",
	}
	if tmpl.TimeSavingsScore >= 4 {
		out = append(out, fmt.Sprintf("Time savings of %d minutes per execution", tmpl.MinutesPerExecution))
	}
	if tmpl.ErrorReductionScore >= 4 {
		out = append(out, "Manual error rate reduced by 90%+")
	}
	return out
}

func dependencies(tmpl Template, sourceTools, targetTools []string) []string {
	out := []string{"User acceptance testing completed", "Production environment setup"}
	if len(sourceTools)+len(targetTools) > 2 {
		out = append(out, "Multi-system integration testing")
	}
	if strings.Contains(tmpl.BusinessProcess, "compliance") {
		out = append(out, "Compliance review and approval")
	}
	return out
}

func hasAllTools(required []string, available map[string]bool) bool {
	for _, tool := range required {
		if !available[tool] {
			return false
		}
	}
	return true
}

// splitTools treats the first template tool as the data source and
// the rest as targets.
func splitTools(tools []string) (sources, targets []string) {
	for i, tool := range tools {
		if i == 0 {
			sources = append(sources, tool)
		} else {
			targets = append(targets, tool)
		}
	}
	return sources, targets
}

func normalizeToolName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if strings.Contains(normalized, "microsoft") || strings.Contains(normalized, "office") {
		return "365"
	}
	if strings.Contains(normalized, "wealthbox") {
		return "wealth box"
	}
	if strings.Contains(normalized, "advent") {
		return "advent axys"
	}
	if strings.Contains(normalized, "schwab") {
		return "schwab"
	}
	if strings.Contains(normalized, "right capital") || strings.Contains(normalized, "rightcapital") {
		return "right capital"
	}
	if strings.Contains(normalized, "bloomberg") {
		return "bloomberg"
	}
	if strings.Contains(normalized, "factset") {
		return "factset"
	}
	return normalized
}

func firstNonEmpty(preferred, fallback []string) []string {
	if len(preferred) > 0 {
		return preferred
	}
	return fallback
}
