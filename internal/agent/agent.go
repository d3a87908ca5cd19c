// Package agent defines the LLM personas used by the audit pipeline
// and the chat client that runs their tasks against an
// OpenAI-compatible API.
package agent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dfquinn23/tech-stack-audit-tool/internal/changelog"
)

// Agent is an LLM persona: who it is and what it optimizes for.
type Agent struct {
	Role      string
	Goal      string
	Backstory string
}

// Task is one unit of work handed to an agent.
type Task struct {
	Description    string
	ExpectedOutput string
}

// Summarizer converts raw changelog entries into business language.
func Summarizer() Agent {
	return Agent{
		Role: "Changelog Summarizer",
		Goal: "Convert raw software changelog entries into short, business-friendly summaries for client audit reports.",
		Backstory: "You are a tech-savvy business analyst at an AI consulting firm. " +
			"Your job is to summarize software update logs into clear, concise language that non-technical operations and compliance staff can understand.",
	}
}

// AuditAnalyst judges why an update matters to the client.
func AuditAnalyst() Agent {
	return Agent{
		Role: "Audit Analyst",
		Goal: "Assess the business impact of recent software developments in an asset management firm's tech stack",
		Backstory: "You are a technology audit consultant specializing in financial services. " +
			"Your job is to analyze software updates and explain their relevance, risks, and potential benefits to the asset management client.",
	}
}

// IntegrationArchitect proposes automations between stack tools.
func IntegrationArchitect() Agent {
	return Agent{
		Role: "Integration & Automation Architect",
		Goal: "Recommend concrete, high-ROI automations between the firm's tools. " +
			"Each suggestion should include a trigger, the key nodes/steps, and the business value.",
		Backstory: "You design pragmatic automations for wealth and asset management workflows. " +
			"You know common vendor ecosystems (Microsoft 365, Zoom, custodians, CRMs like Wealthbox) " +
			"and how to connect them via workflow platforms (HTTP nodes, Webhooks, IMAP/Email, Microsoft Graph, SharePoint). " +
			"You avoid speculative tools not present in the firm's stack.",
	}
}

// Researcher compiles recent release notes for a tool.
func Researcher() Agent {
	return Agent{
		Role: "Changelog Researcher",
		Goal: "Identify and compile recent, relevant changelogs or release notes for a given software tool.",
		Backstory: "You are a meticulous research specialist. You find authoritative sources for software release notes " +
			"and collect concise entries with dates, titles, and descriptions suitable for downstream summarization.",
	}
}

// ReportWriter composes client-ready Markdown.
func ReportWriter() Agent {
	return Agent{
		Role: "Report Writer",
		Goal: "Compose a clear, client-ready Markdown report from audit pipeline outputs.",
		Backstory: "You are a concise technical writer who prepares executive-friendly summaries for RIAs and asset managers. " +
			"You format content cleanly in Markdown with headings, bullets, and short paragraphs.",
	}
}

// SummarizerTask asks for one-sentence summaries of each entry.
func SummarizerTask(toolName string, entries []changelog.Entry) Task {
	var updates strings.Builder
	for _, entry := range entries {
		fmt.Fprintf(&updates, "\n- [%s] %s: %s", entry.Date, entry.Title, entry.Description)
	}

	return Task{
		Description: fmt.Sprintf(`You are given raw change log entries for the software tool: %s.
Your task is to produce short summaries for each update using clear, non-technical language.

The summaries will be included in a client audit report.
Summarize each update in one sentence, and ensure the tone is neutral and business-friendly.

Changelog Entries:%s`, toolName, updates.String()),
		ExpectedOutput: "A bullet-point list of one-sentence summaries of each changelog entry.",
	}
}

// AuditTask asks why each summarized update matters to the firm.
func AuditTask(toolName, category, usedBy string, summaries []string) Task {
	return Task{
		Description: fmt.Sprintf(`You are reviewing updates for the tool: %s.
Category: %s
Primary Users: %s

Summarized Updates:
%s

For each update, explain:
1. Why it matters for the firm's operations or clients
2. Any possible risks or challenges
3. Whether it requires immediate adoption or can be monitored for later

Output your analysis as bullet points under each update.`, toolName, category, usedBy, bulleted(summaries)),
		ExpectedOutput: "Bullet-point business impact analysis for each update.",
	}
}

// IntegrationTask asks for workflow automations connecting the focal
// tool to the rest of the stack.
func IntegrationTask(firmTools []string, focalTool string, summaries []string, auditText string) Task {
	unique := map[string]bool{}
	var tools []string
	for _, tool := range firmTools {
		tool = strings.TrimSpace(tool)
		if tool == "" || unique[tool] {
			continue
		}
		unique[tool] = true
		tools = append(tools, tool)
	}
	sort.Strings(tools)

	excerpt := strings.TrimSpace(auditText)
	if len(excerpt) > 2200 {
		excerpt = excerpt[:2200]
	}
	summariesBlock := bulleted(summaries)
	if summariesBlock == "" {
		summariesBlock = "- (no summaries)"
	}

	return Task{
		Description: fmt.Sprintf(`The firm's tool stack includes: %s.
You're focusing on: %s.

Summarized Updates for %s:
%s

Audit Insights (context):
%s

Produce 3-6 **specific** automation opportunities that connect %s with other tools in the firm's stack.
Prioritize measurable business value for an RIA/wealth manager (client comms, compliance logging, research ops).
Each suggestion MUST follow this compact schema:

- **Flow Name**: <short name>
  **Trigger**: <event in focal tool or another tool>
  **Key Nodes**: <nodes or APIs to use, e.g., Webhook, HTTP Request, Microsoft Graph, IMAP Email, SharePoint, CSV, Code>
  **Steps**: <2-5 short steps describing the flow>
  **Value**: <why it matters / KPI impact>

Rules:
- ONLY reference tools that appear in the firm's stack list.
- Prefer Microsoft 365 integrations where relevant.
- If the update mentions AI summarization/transcripts (e.g., Zoom), suggest auto-filing + notifying relevant teams.
- If custodial data (e.g., Schwab) is involved, include compliance logging or CRM enrichment.
- Keep each suggestion to 4-6 lines. No fluff.`,
			strings.Join(tools, ", "), focalTool, focalTool, summariesBlock, excerpt, focalTool),
		ExpectedOutput: "A concise list of 3-6 automation opportunities in the schema above, " +
			"each connecting the focal tool with other tools from the firm's stack.",
	}
}

// ResearchTask asks for dated changelog lines, optionally refining
// seed entries from the registry.
func ResearchTask(toolName string, seeds []changelog.Entry, lookbackDays int) Task {
	var seedBlock strings.Builder
	for _, entry := range seeds {
		fmt.Fprintf(&seedBlock, "- [%s] %s: %s\n", entry.Date, entry.Title, entry.Description)
	}
	seedText := seedBlock.String()
	if seedText == "" {
		seedText = "(none provided)"
	}

	return Task{
		Description: fmt.Sprintf(`Tool: %s
Objective: Compile a concise list of recent changelog entries (roughly last %d days) for this tool.

If you have seed entries (below), verify and refine them; if not, or if incomplete, identify likely sources
(official changelog pages, release notes, support docs) and reconstruct a short list with:
  - date (YYYY-MM-DD if possible)
  - title
  - one-sentence description

Seed entries (may be partial or empty):
%s

Output format:
- [YYYY-MM-DD] Title: one-sentence description
- [YYYY-MM-DD] Title: one-sentence description`, toolName, lookbackDays, seedText),
		ExpectedOutput: "A bullet list of dated changelog lines as specified above.",
	}
}

// ReportSectionTask asks for one polished per-tool Markdown section.
func ReportSectionTask(toolName, category, usedBy, criticality string, summaries []string, auditText, integrationsText string) Task {
	summariesBlock := bulleted(summaries)
	if summariesBlock == "" {
		summariesBlock = "- (no summaries)"
	}

	return Task{
		Description: fmt.Sprintf(`Create a polished Markdown section for the tool below. Keep it concise and business-friendly.

Tool: %s
Category: %s
Users: %s
Criticality: %s

Summaries:
%s

Audit Insights:
%s

Integration Opportunities:
%s

Requirements:
- Start with '### %s'
- Next line: _Category: <category> • Users: <users> • Criticality: <criticality>_
- Then '**Summaries**' as a subheader with bullets
- Then '**Audit Insights**' as a short, readable block (bullets or brief paragraphs)
- Then '**Integration Opportunities**' as bullets
- Be succinct. No fluff. No repeated headings. No extra introductions.`,
			toolName, category, usedBy, criticality, summariesBlock,
			strings.TrimSpace(auditText), strings.TrimSpace(integrationsText), toolName),
		ExpectedOutput: "A single Markdown section for this tool as specified.",
	}
}

func bulleted(items []string) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- " + item)
	}
	return b.String()
}
