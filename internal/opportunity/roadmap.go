package opportunity

import "sort"

// Phase groups opportunities scheduled for one implementation wave.
type Phase struct {
	Description   string        `json:"description"`
	DurationWeeks int           `json:"duration_weeks"`
	Opportunities []Opportunity `json:"opportunities"`
	Cost          float64       `json:"phase_cost"`
	AnnualSavings float64       `json:"phase_annual_savings"`
}

// RoadmapSummary carries the aggregate economics of the roadmap.
type RoadmapSummary struct {
	TotalOpportunities  int     `json:"total_opportunities"`
	HighPriorityCount   int     `json:"high_priority_count"`
	MediumPriorityCount int     `json:"medium_priority_count"`
	LowPriorityCount    int     `json:"low_priority_count"`
	TotalAnnualSavings  float64 `json:"total_estimated_annual_savings"`
	TotalCost           float64 `json:"total_implementation_cost"`
	OverallROI          float64 `json:"overall_roi_percentage"`
	PaybackMonths       float64 `json:"estimated_payback_months"`
}

// Resources estimates the effort behind the roadmap.
type Resources struct {
	DevelopmentHours int `json:"development_hours"`
	APIIntegrations  int `json:"api_integrations_needed"`
	Environments     int `json:"testing_environments"`
	TrainingSessions int `json:"training_sessions"`
}

// Roadmap is a phased implementation plan for a set of opportunities.
type Roadmap struct {
	Summary    RoadmapSummary `json:"roadmap_summary"`
	QuickWins  Phase          `json:"phase_1_quick_wins"`
	Strategic  Phase          `json:"phase_2_strategic"`
	Remaining  Phase          `json:"phase_3_optimization"`
	HighestROI []Opportunity  `json:"highest_roi_opportunities"`
	Resources  Resources      `json:"resource_requirements"`
}

// BuildRoadmap arranges scored opportunities into three phases:
// quick wins, strategic builds, then everything else.
func BuildRoadmap(opportunities []Opportunity) Roadmap {
	var high, medium, low []Opportunity
	for _, o := range opportunities {
		switch o.PriorityTier {
		case "high":
			high = append(high, o)
		case "medium":
			medium = append(medium, o)
		default:
			low = append(low, o)
		}
	}

	var totalSavings, totalCost float64
	tools := map[string]bool{}
	devHours := 0
	for _, o := range opportunities {
		totalSavings += o.AnnualCostSavings
		totalCost += o.ImplementationCost
		devHours += o.ImplementationWeeks * 20
		for _, tool := range o.SourceTools {
			tools[tool] = true
		}
		for _, tool := range o.TargetTools {
			tools[tool] = true
		}
	}

	summary := RoadmapSummary{
		TotalOpportunities:  len(opportunities),
		HighPriorityCount:   len(high),
		MediumPriorityCount: len(medium),
		LowPriorityCount:    len(low),
		TotalAnnualSavings:  totalSavings,
		TotalCost:           totalCost,
		PaybackMonths:       999,
	}
	if totalCost > 0 {
		summary.OverallROI = (totalSavings - totalCost) / totalCost * 100
	}
	if totalSavings > 0 {
		summary.PaybackMonths = totalCost / (totalSavings / 12)
	}

	phase1 := take(high, 0, 3)
	phase2 := append(drop(high, 3), take(medium, 0, 2)...)
	phase3 := append(drop(medium, 2), take(low, 0, 3)...)

	byROI := make([]Opportunity, len(opportunities))
	copy(byROI, opportunities)
	sort.SliceStable(byROI, func(i, j int) bool {
		return byROI[i].ROIPercentage > byROI[j].ROIPercentage
	})

	return Roadmap{
		Summary:    summary,
		QuickWins:  buildPhase("High-impact, lower-complexity automations for immediate ROI", 8, phase1),
		Strategic:  buildPhase("Strategic automations requiring more integration work", 16, phase2),
		Remaining:  buildPhase("Advanced optimizations and remaining opportunities", 24, phase3),
		HighestROI: take(byROI, 0, 5),
		Resources: Resources{
			DevelopmentHours: devHours,
			APIIntegrations:  len(tools),
			Environments:     3,
			TrainingSessions: len(opportunities) / 3,
		},
	}
}

func buildPhase(description string, weeks int, opportunities []Opportunity) Phase {
	phase := Phase{
		Description:   description,
		DurationWeeks: weeks,
		Opportunities: opportunities,
	}
	for _, o := range opportunities {
		phase.Cost += o.ImplementationCost
		phase.AnnualSavings += o.AnnualCostSavings
	}
	return phase
}

func take(list []Opportunity, from, n int) []Opportunity {
	if from >= len(list) {
		return nil
	}
	end := from + n
	if end > len(list) {
		end = len(list)
	}
	out := make([]Opportunity, end-from)
	copy(out, list[from:end])
	return out
}

func drop(list []Opportunity, n int) []Opportunity {
	if n >= len(list) {
		return nil
	}
	out := make([]Opportunity, len(list)-n)
	copy(out, list[n:])
	return out
}
