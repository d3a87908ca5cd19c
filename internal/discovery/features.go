package discovery

import "strings"

// Feature describes an automation capability a vendor shipped
// recently that clients often have not adopted yet.
type Feature struct {
	Name           string `json:"name"`
	Added          string `json:"added"`
	Description    string `json:"description"`
	AutomationUse  string `json:"automation_value"`
	BusinessImpact string `json:"business_impact"`
	Implementation string `json:"implementation"`
}

type featureCatalogEntry struct {
	features   []Feature
	source     string
	confidence string
}

// FeatureReport lists the recent automation features found for one tool.
type FeatureReport struct {
	ToolName   string    `json:"tool_name"`
	Features   []Feature `json:"recent_features"`
	Source     string    `json:"data_source,omitempty"`
	Confidence string    `json:"confidence"`
	Summary    string    `json:"summary"`
}

var featureCatalog = map[string]featureCatalogEntry{
	"factset": {
		features: []Feature{
			{
				Name:           "FactSet API 2.0 Real-time Data Feeds",
				Added:          "2024-Q2",
				Description:    "New RESTful APIs for real-time portfolio data integration",
				AutomationUse:  "Automate portfolio reporting and eliminate manual data exports",
				BusinessImpact: "Save 5-10 hours/week on data gathering and reporting",
				Implementation: "Connect directly to Excel, PowerBI, or custom dashboards",
			},
			{
				Name:           "Automated Alert System",
				Added:          "2024-Q1",
				Description:    "Customizable alerts for portfolio thresholds and market events",
				AutomationUse:  "Replace manual monitoring with intelligent notifications",
				BusinessImpact: "Faster response to market changes, reduced oversight risk",
				Implementation: "Configure alerts in FactSet Workstation > Alert Manager",
			},
		},
		source:     "FactSet Release Notes 2024",
		confidence: "high",
	},
	"365": {
		features: []Feature{
			{
				Name:           "Power Automate Premium Connectors",
				Added:          "2024-Q3",
				Description:    "New connectors for financial data sources and CRM integration",
				AutomationUse:  "Automate data flow between Office apps and business systems",
				BusinessImpact: "Eliminate manual copy/paste, reduce data entry errors by 90%",
				Implementation: "Access through Power Automate portal, no coding required",
			},
			{
				Name:           "Excel Office Scripts",
				Added:          "2024-Q2",
				Description:    "Record and automate repetitive Excel tasks with simple scripts",
				AutomationUse:  "Turn manual Excel processes into one-click automation",
				BusinessImpact: "Save 2-3 hours/week on routine spreadsheet tasks",
				Implementation: "Automate tab in Excel, record actions, schedule to run automatically",
			},
		},
		source:     "Microsoft 365 Roadmap 2024",
		confidence: "high",
	},
	"zoom": {
		features: []Feature{
			{
				Name:           "Zoom Apps Integration Platform",
				Added:          "2024-Q1",
				Description:    "Embed business apps directly in Zoom meetings",
				AutomationUse:  "Access CRM, project tools, calendars without leaving meetings",
				BusinessImpact: "Reduce meeting prep time, improve client data access during calls",
				Implementation: "Install from Zoom App Marketplace, configure in admin portal",
			},
		},
		source:     "Zoom Product Updates 2024",
		confidence: "medium",
	},
}

// RecentAutomationFeatures reports vendor automation features shipped
// in roughly the last two years for a tool, or an empty report when
// none are tracked.
func RecentAutomationFeatures(toolName string) FeatureReport {
	lower := strings.ToLower(strings.TrimSpace(toolName))
	for pattern, entry := range featureCatalog {
		if strings.Contains(lower, pattern) || strings.Contains(pattern, lower) {
			return FeatureReport{
				ToolName:   toolName,
				Features:   entry.features,
				Source:     entry.source,
				Confidence: entry.confidence,
				Summary:    "Recent automation features that could provide immediate business value",
			}
		}
	}
	return FeatureReport{
		ToolName:   toolName,
		Confidence: "unknown",
		Summary:    "No recent automation features currently tracked",
	}
}
