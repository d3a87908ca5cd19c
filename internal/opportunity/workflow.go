package opportunity

import "strings"

// buildWorkflow assembles a workflow specification for a template
// match: a trigger suited to the business process, source nodes, a
// transform step, target nodes, and a completion notification.
func buildWorkflow(tmpl Template, sourceTools, targetTools []string) WorkflowSpec {
	name := "wf_" + tmpl.BusinessProcess + "_" + strings.ReplaceAll(strings.ToLower(tmpl.Name), " ", "_")

	triggerType, triggerConfig := workflowTrigger(tmpl.BusinessProcess, name)

	nodes := []WorkflowNode{triggerNode(triggerType, tmpl)}
	for _, tool := range sourceTools {
		if node, ok := sourceNode(tool); ok {
			nodes = append(nodes, node)
		}
	}
	nodes = append(nodes, WorkflowNode{
		Name: "Transform Data",
		Type: "function",
		Parameters: map[string]string{
			"language": "javascript",
			"purpose":  "map source records to target schema",
		},
	})
	for _, tool := range targetTools {
		if node, ok := targetNode(tool); ok {
			nodes = append(nodes, node)
		}
	}
	nodes = append(nodes, WorkflowNode{
		Name: "Success Notification",
		Type: "email",
		Parameters: map[string]string{
			"to":      "operations@firm.com",
			"subject": "Workflow completed: " + tmpl.Name,
		},
	})

	return WorkflowSpec{
		Name:                name,
		Description:         "Automated workflow for " + tmpl.Name,
		TriggerType:         triggerType,
		TriggerConfig:       triggerConfig,
		Nodes:               nodes,
		MonthlyExecutions:   tmpl.ExecutionsPerMonth,
		DataTransformations: transformations(tmpl.BusinessProcess),
		RetryAttempts:       3,
		TimeoutSeconds:      300,
		Monitoring: []string{
			"execution_success_rate",
			"average_execution_time",
			"error_notifications",
			"data_quality_checks",
		},
	}
}

func workflowTrigger(process, name string) (string, map[string]string) {
	switch process {
	case "client_reporting":
		return "schedule", map[string]string{"cron": "0 9 * * 1", "timezone": "America/New_York"}
	case "client_communication":
		return "webhook", map[string]string{"path": "/" + name, "method": "POST"}
	case "compliance_monitoring":
		return "schedule", map[string]string{"cron": "0 8 * * 1-5", "timezone": "America/New_York"}
	default:
		return "schedule", map[string]string{"cron": "0 10 * * *", "timezone": "America/New_York"}
	}
}

func triggerNode(triggerType string, tmpl Template) WorkflowNode {
	if triggerType == "webhook" {
		return WorkflowNode{
			Name:       "Webhook",
			Type:       "webhook",
			Parameters: map[string]string{"path": strings.ReplaceAll(strings.ToLower(tmpl.Name), " ", "-")},
		}
	}
	return WorkflowNode{Name: "Schedule Trigger", Type: "cron"}
}

func sourceNode(tool string) (WorkflowNode, bool) {
	lower := strings.ToLower(tool)
	switch {
	case strings.Contains(lower, "factset"):
		return WorkflowNode{
			Name:       "FactSet Data",
			Type:       "httpRequest",
			Parameters: map[string]string{"url": "{{FACTSET_API_URL}}", "auth": "factsetApi"},
		}, true
	case strings.Contains(lower, "bloomberg"):
		return WorkflowNode{
			Name:       "Bloomberg Data",
			Type:       "httpRequest",
			Parameters: map[string]string{"url": "{{BLOOMBERG_API_URL}}"},
		}, true
	case strings.Contains(lower, "365"), strings.Contains(lower, "microsoft"):
		return WorkflowNode{
			Name:       "Microsoft Graph",
			Type:       "microsoftGraph",
			Parameters: map[string]string{"resource": "mail"},
		}, true
	case strings.Contains(lower, "zoom"):
		return WorkflowNode{
			Name:       "Zoom API",
			Type:       "httpRequest",
			Parameters: map[string]string{"url": "https://api.zoom.us/v2/meetings/{{meeting_id}}/recordings"},
		}, true
	}
	return WorkflowNode{}, false
}

func targetNode(tool string) (WorkflowNode, bool) {
	lower := strings.ToLower(tool)
	switch {
	case strings.Contains(lower, "wealth box"), strings.Contains(lower, "crm"):
		return WorkflowNode{
			Name:       "Update CRM",
			Type:       "httpRequest",
			Parameters: map[string]string{"url": "{{WEALTHBOX_API_URL}}/contacts", "method": "POST"},
		}, true
	case strings.Contains(lower, "365"):
		return WorkflowNode{
			Name:       "Send Email/Store File",
			Type:       "microsoftGraph",
			Parameters: map[string]string{"resource": "mail", "operation": "send"},
		}, true
	}
	return WorkflowNode{}, false
}

func transformations(process string) []string {
	out := []string{"Input validation", "Data type conversion"}
	switch process {
	case "client_reporting":
		out = append(out, "Performance calculations", "Report formatting", "Client data merge")
	case "compliance_monitoring":
		out = append(out, "Risk calculations", "Threshold checks", "Alert generation")
	}
	return out
}
