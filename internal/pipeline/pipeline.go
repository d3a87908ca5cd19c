// Package pipeline drives a full audit through its four stages:
// discovery builds the tool inventory, assessment maps integration
// health, opportunities scores automation candidates, and delivery
// writes the client report. Each stage records its results in the
// session and advances the stage gate when its exit conditions hold.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dfquinn23/tech-stack-audit-tool/internal/agent"
	"github.com/dfquinn23/tech-stack-audit-tool/internal/audit"
	"github.com/dfquinn23/tech-stack-audit-tool/internal/changelog"
	"github.com/dfquinn23/tech-stack-audit-tool/internal/config"
	"github.com/dfquinn23/tech-stack-audit-tool/internal/discovery"
	"github.com/dfquinn23/tech-stack-audit-tool/internal/integration"
	"github.com/dfquinn23/tech-stack-audit-tool/internal/inventory"
	"github.com/dfquinn23/tech-stack-audit-tool/internal/logbook"
	"github.com/dfquinn23/tech-stack-audit-tool/internal/opportunity"
	"github.com/dfquinn23/tech-stack-audit-tool/internal/report"
)

// Pipeline orchestrates the audit stages for one session.
type Pipeline struct {
	cfg      *config.Config
	manager  *audit.Manager
	runner   agent.Runner
	fetcher  changelog.Fetcher
	sources  *changelog.Registry
	disco    *discovery.Engine
	checker  *integration.Checker
	gaps     *integration.GapAnalyzer
	opps     *opportunity.Engine
	book     *logbook.Logbook
	clock    func() time.Time
	useAgent bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRunner attaches an LLM runner. Without one the delivery stage
// falls back to deterministic report sections.
func WithRunner(runner agent.Runner) Option {
	return func(p *Pipeline) {
		p.runner = runner
		p.useAgent = runner != nil
	}
}

// WithFetcher substitutes the changelog source.
func WithFetcher(fetcher changelog.Fetcher) Option {
	return func(p *Pipeline) { p.fetcher = fetcher }
}

// WithDiscoveryEngine substitutes the discovery engine.
func WithDiscoveryEngine(engine *discovery.Engine) Option {
	return func(p *Pipeline) { p.disco = engine }
}

// WithLogbook routes stage logging to the session logbook.
func WithLogbook(book *logbook.Logbook) Option {
	return func(p *Pipeline) { p.book = book }
}

// WithClock substitutes the time source.
func WithClock(clock func() time.Time) Option {
	return func(p *Pipeline) { p.clock = clock }
}

// New assembles a pipeline around an existing session.
func New(cfg *config.Config, manager *audit.Manager, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:     cfg,
		manager: manager,
		fetcher: changelog.NewSeedFetcher(),
		sources: changelog.NewRegistry(),
		checker: integration.NewChecker(integration.NewPatternTable()),
		gaps:    integration.NewGapAnalyzer(),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.disco == nil {
		ttl := time.Duration(cfg.Project.Discovery.CacheTTLHours) * time.Hour
		p.disco = discovery.NewEngine(
			discovery.WithCache(discovery.NewCache(cfg.CacheDir(), ttl)),
			discovery.WithMaxParallel(cfg.Project.Discovery.MaxConcurrentProbes),
			discovery.WithLogbook(p.book),
		)
	}
	p.opps = opportunity.NewEngine(
		opportunity.WithHourlyRate(cfg.Project.Report.HourlyRate),
		opportunity.WithLogbook(p.book),
	)
	return p
}

// RunDiscovery loads the client CSV, enriches it with automated
// domain discovery, and advances to the assessment stage.
func (p *Pipeline) RunDiscovery(ctx context.Context, csvPath string) (discovery.Summary, error) {
	normalizer := inventory.NewNormalizer(p.cfg.Project.Aliases)

	if csvPath != "" {
		loaded, err := inventory.LoadCSV(csvPath, normalizer)
		if err != nil {
			return discovery.Summary{}, fmt.Errorf("pipeline: load inventory: %w", err)
		}
		for _, tool := range loaded.Tools {
			if err := p.manager.AddTool(tool); err != nil {
				return discovery.Summary{}, err
			}
		}
		p.book.Info("pipeline: loaded %d tools from %s (%d rows skipped)",
			len(loaded.Tools), csvPath, len(loaded.Skipped))
	}

	enhanced, err := p.disco.EnhanceInventory(ctx, p.manager.Tools(), p.manager.ClientDomain())
	if err != nil {
		return discovery.Summary{}, fmt.Errorf("pipeline: discovery: %w", err)
	}
	for _, name := range enhanced.Added {
		if err := p.manager.AddTool(enhanced.Tools[name]); err != nil {
			return discovery.Summary{}, err
		}
	}

	// Version analysis fills in deployed versions discovery could not
	// read off an API header.
	reports := p.disco.AnalyzeVersions(ctx, p.manager.Tools())
	for name, vr := range reports {
		if vr.Current.Version == "" || vr.Current.Version == "unknown" {
			continue
		}
		tool, ok := p.manager.Tools()[name]
		if !ok || tool.Version != "" {
			continue
		}
		tool.Version = vr.Current.Version
		if err := p.manager.AddTool(tool); err != nil {
			return discovery.Summary{}, err
		}
	}

	summary := p.disco.Summarize(enhanced)
	gate, err := p.manager.Advance(audit.StageAssessment, false)
	if err != nil {
		return summary, err
	}
	if !gate.Passed {
		p.book.Warn("pipeline: assessment gate blocked: %v", gate.Conditions)
	}
	return summary, nil
}

// AssessmentResult carries the stage two outputs.
type AssessmentResult struct {
	Assessments []integration.Assessment
	Summary     integration.MatrixSummary
}

// RunAssessment assesses every tool pair, records the integrations in
// the session, and advances to the opportunities stage.
func (p *Pipeline) RunAssessment(ctx context.Context, observations map[string]integration.Observation) (AssessmentResult, error) {
	tools := p.manager.Tools()
	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}

	assessments, err := p.checker.AssessMatrix(ctx, names, observations)
	if err != nil {
		return AssessmentResult{}, fmt.Errorf("pipeline: assess matrix: %w", err)
	}
	for _, assessment := range assessments {
		if err := p.manager.AddIntegration(integration.Record(assessment)); err != nil {
			return AssessmentResult{}, err
		}
	}

	result := AssessmentResult{
		Assessments: assessments,
		Summary:     integration.Summarize(assessments),
	}
	gate, err := p.manager.Advance(audit.StageOpportunities, false)
	if err != nil {
		return result, err
	}
	if !gate.Passed {
		p.book.Warn("pipeline: opportunities gate blocked: %v", gate.Conditions)
	}
	return result, nil
}

// OpportunityResult carries the stage three outputs.
type OpportunityResult struct {
	Opportunities []opportunity.Opportunity
	Roadmap       opportunity.Roadmap
}

// RunOpportunities analyzes integration gaps, scores automation
// opportunities, records them, and advances to the delivery stage.
func (p *Pipeline) RunOpportunities(_ context.Context) (OpportunityResult, error) {
	state := p.manager.State()

	names := make([]string, 0, len(state.ToolInventory))
	for name := range state.ToolInventory {
		names = append(names, name)
	}

	// Pairs assessed as missing or unknown are not working
	// integrations; they must still surface as gaps.
	var working []audit.Integration
	for _, integ := range state.Integrations {
		switch integ.Status {
		case string(integration.StatusMissing), string(integration.StatusUnknown):
			continue
		}
		working = append(working, integ)
	}
	analyses := p.gaps.Analyze(names, working)
	gaps := p.gaps.Prioritize(analyses)

	opportunities := p.opps.Identify(state.ToolInventory, gaps)
	for _, o := range opportunities {
		if err := p.manager.AddAutomationOpportunity(opportunity.Record(o)); err != nil {
			return OpportunityResult{}, err
		}
	}

	result := OpportunityResult{
		Opportunities: opportunities,
		Roadmap:       opportunity.BuildRoadmap(opportunities),
	}
	gate, err := p.manager.Advance(audit.StageDelivery, false)
	if err != nil {
		return result, err
	}
	if !gate.Passed {
		p.book.Warn("pipeline: delivery gate blocked: %v", gate.Conditions)
	}
	return result, nil
}

// RunDelivery assembles the client report and writes it to the
// output directory. LLM agents enrich each tool section when a runner
// is attached; any agent failure degrades to a deterministic section.
func (p *Pipeline) RunDelivery(ctx context.Context, assessment AssessmentResult, opps OpportunityResult) (string, error) {
	builder := report.NewBuilder().WithClock(p.clock)

	tools := p.manager.Tools()
	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		tool := tools[name]
		entries, err := p.fetcher.Fetch(ctx, name)
		if err != nil || len(entries) == 0 {
			builder.AddEmptyToolSection(tool, p.sourceHint(name))
			continue
		}
		builder.AddSection(p.toolSection(ctx, tool, names, entries))
	}

	builder.AddIntegrationSummary(assessment.Summary)
	builder.AddOpportunities(opps.Opportunities)
	builder.AddRoadmap(opps.Roadmap)

	path, err := builder.Write(p.cfg.OutputDir())
	if err != nil {
		return "", err
	}
	p.book.Info("pipeline: report written to %s", path)
	return path, nil
}

// Run executes all four stages in order.
func (p *Pipeline) Run(ctx context.Context, csvPath string, observations map[string]integration.Observation) (string, error) {
	if _, err := p.RunDiscovery(ctx, csvPath); err != nil {
		return "", err
	}
	assessment, err := p.RunAssessment(ctx, observations)
	if err != nil {
		return "", err
	}
	opps, err := p.RunOpportunities(ctx)
	if err != nil {
		return "", err
	}
	return p.RunDelivery(ctx, assessment, opps)
}

func (p *Pipeline) toolSection(ctx context.Context, tool audit.Tool, firmTools []string, entries []changelog.Entry) string {
	summaries := fallbackSummaries(entries)
	auditText := "Review these updates with the operations team."
	integrationsText := featureNotes(tool.Name)

	if p.useAgent {
		if refined := p.researchEntries(ctx, tool.Name, entries); len(refined) > 0 {
			entries = refined
			summaries = fallbackSummaries(entries)
		}

		if text, err := p.runner.Run(ctx, agent.Summarizer(), agent.SummarizerTask(tool.Name, entries)); err == nil {
			if parsed := agent.ParseBulletList(text); len(parsed) > 0 {
				summaries = parsed
			}
		} else {
			p.book.Warn("pipeline: summarizer failed for %s: %v", tool.Name, err)
		}

		if text, err := p.runner.Run(ctx, agent.AuditAnalyst(),
			agent.AuditTask(tool.Name, tool.Category, joinUsers(tool.Users), summaries)); err == nil {
			auditText = text
		} else {
			p.book.Warn("pipeline: audit analysis failed for %s: %v", tool.Name, err)
		}

		if text, err := p.runner.Run(ctx, agent.IntegrationArchitect(),
			agent.IntegrationTask(firmTools, tool.Name, summaries, auditText)); err == nil {
			integrationsText = text
		} else {
			p.book.Warn("pipeline: integration suggestions failed for %s: %v", tool.Name, err)
		}

		if p.cfg.Project.Agents.EnableReportWriter {
			text, err := p.runner.Run(ctx, agent.ReportWriter(),
				agent.ReportSectionTask(tool.Name, tool.Category, joinUsers(tool.Users), tool.Criticality,
					summaries, auditText, integrationsText))
			switch {
			case err != nil:
				p.book.Warn("pipeline: report writer failed for %s, using fallback section: %v", tool.Name, err)
			case !strings.Contains(text, "### "+tool.Name):
				// The report format requires a per-tool heading. Drop agent
				// output that lost it rather than break the document.
				p.book.Warn("pipeline: report writer output for %s lacks its section heading, using fallback section", tool.Name)
			default:
				return text
			}
		}
	}

	return report.ToolSection(tool, summaries, auditText, integrationsText)
}

func (p *Pipeline) researchEntries(ctx context.Context, toolName string, seeds []changelog.Entry) []changelog.Entry {
	if !p.cfg.Project.Agents.EnableResearch {
		return nil
	}
	text, err := p.runner.Run(ctx, agent.Researcher(), agent.ResearchTask(toolName, seeds, 365))
	if err != nil {
		p.book.Warn("pipeline: research failed for %s: %v", toolName, err)
		return nil
	}
	return agent.ParseResearchLines(text)
}

// sourceHint points the report reader at a registered vendor changelog
// source for tools we had no entries for.
func (p *Pipeline) sourceHint(toolName string) string {
	ep, ok := p.sources.Lookup(toolName)
	if !ok {
		return ""
	}
	hint := ep.URL
	if hint == "" {
		hint = ep.Documentation
	}
	if hint != "" && ep.AuthRequired {
		hint += " (credentials required)"
	}
	return hint
}

// featureNotes builds the default integration text from the vendor
// feature catalog so the report still surfaces adoptable automation
// capabilities when no agent is attached.
func featureNotes(toolName string) string {
	feats := discovery.RecentAutomationFeatures(toolName)
	if len(feats.Features) == 0 {
		return "See the opportunities section below."
	}
	lines := []string{"Recent vendor automation capabilities worth adopting:"}
	for _, f := range feats.Features {
		lines = append(lines, fmt.Sprintf("- %s (%s): %s", f.Name, f.Added, f.AutomationUse))
	}
	lines = append(lines, "See the opportunities section below.")
	return strings.Join(lines, "\n")
}

func fallbackSummaries(entries []changelog.Entry) []string {
	summaries := make([]string, 0, len(entries))
	for _, entry := range entries {
		summaries = append(summaries, fmt.Sprintf("[%s] %s: %s", entry.Date, entry.Title, entry.Description))
	}
	return summaries
}

func joinUsers(users []string) string {
	return strings.Join(users, ", ")
}
