package integration

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dfquinn23/tech-stack-audit-tool/internal/audit"
)

// Checker evaluates integration health for tool pairs against the known
// pattern table.
type Checker struct {
	patterns    *PatternTable
	clock       func() time.Time
	maxParallel int
}

// Option customizes the checker instance.
type Option func(*Checker)

// WithClock injects a deterministic clock (primarily for tests).
func WithClock(clock func() time.Time) Option {
	return func(c *Checker) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithMaxParallel bounds how many pair assessments run concurrently when
// walking the full matrix.
func WithMaxParallel(n int) Option {
	return func(c *Checker) {
		if n > 0 {
			c.maxParallel = n
		}
	}
}

// NewChecker wires a checker to its pattern table.
func NewChecker(patterns *PatternTable, opts ...Option) *Checker {
	checker := &Checker{
		patterns:    patterns,
		clock:       time.Now,
		maxParallel: 5,
	}
	for _, opt := range opts {
		opt(checker)
	}
	return checker
}

// Assess evaluates one tool pair. obs carries whatever the client already
// knows about the integration; nil means nothing is known, which for an
// expected pair reads as a missing integration.
func (c *Checker) Assess(source, target string, obs *Observation) Assessment {
	now := c.clock()
	assessment := Assessment{
		SourceTool:          source,
		TargetTool:          target,
		IntegrationType:     TypeUnknown,
		Status:              StatusUnknown,
		DataFlowDirection:   "unknown",
		BusinessCriticality: "unknown",
		AssessedAt:          now,
	}

	pattern, expected := c.patterns.Lookup(source, target)
	if expected {
		assessment.IntegrationType = pattern.ExpectedType
		assessment.DataFlowDirection = pattern.DataFlow
		assessment.BusinessCriticality = pattern.Criticality
	}

	if obs != nil {
		c.applyObservation(&assessment, *obs, now)
	} else if expected {
		assessment.Status = StatusMissing
		assessment.Issues = append(assessment.Issues, "expected integration not found")
	} else {
		assessment.Issues = append(assessment.Issues, "no integration pattern defined")
	}

	assessment.HealthScore = c.healthScore(assessment, now)
	assessment.Recommendations = append(assessment.Recommendations, c.recommendations(assessment, pattern, expected)...)
	return assessment
}

// AssessMatrix evaluates every unordered tool pair in the inventory,
// bounding concurrency to the configured limit. Observations are keyed the
// way Record keys pairs; missing keys assess as unobserved.
func (c *Checker) AssessMatrix(ctx context.Context, tools []string, observations map[string]Observation) ([]Assessment, error) {
	type pair struct{ source, target string }
	var pairs []pair
	sorted := append([]string(nil), tools...)
	sort.Strings(sorted)
	for i, source := range sorted {
		for _, target := range sorted[i+1:] {
			pairs = append(pairs, pair{source, target})
		}
	}

	assessments := make([]Assessment, len(pairs))
	var mu sync.Mutex
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(c.maxParallel)
	for i, p := range pairs {
		i, p := i, p
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var obs *Observation
			if observed, ok := observations[PairKey(p.source, p.target)]; ok {
				obs = &observed
			}
			result := c.Assess(p.source, p.target, obs)
			mu.Lock()
			assessments[i] = result
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("integration: assess matrix: %w", err)
	}
	return assessments, nil
}

// PairKey identifies an unordered tool pair for observation lookups.
func PairKey(tool1, tool2 string) string {
	key := pairKey(tool1, tool2)
	return key[0] + "|" + key[1]
}

// Record converts an assessment into the state-machine integration record.
func Record(a Assessment) audit.Integration {
	return audit.Integration{
		SourceTool:      a.SourceTool,
		TargetTool:      a.TargetTool,
		Status:          string(a.Status),
		IntegrationType: string(a.IntegrationType),
		HealthScore:     a.HealthScore,
		Issues:          a.Issues,
		Recommendations: a.Recommendations,
	}
}

func (c *Checker) applyObservation(assessment *Assessment, obs Observation, now time.Time) {
	if obs.Status != "" {
		if status, err := ParseStatus(obs.Status); err == nil {
			assessment.Status = status
		}
	}
	if obs.IntegrationType != "" {
		if typ, err := ParseType(obs.IntegrationType); err == nil {
			assessment.IntegrationType = typ
		}
	}
	if obs.ErrorRate > 0 {
		assessment.ErrorRate = clampFloat(obs.ErrorRate, 0, 1)
	}
	if !obs.LastSync.IsZero() {
		assessment.LastSync = obs.LastSync
		days := int(now.Sub(obs.LastSync).Hours() / 24)
		if days > 7 {
			assessment.Issues = append(assessment.Issues, fmt.Sprintf("last sync was %d days ago", days))
		} else if days > 1 {
			assessment.Issues = append(assessment.Issues, fmt.Sprintf("sync may be delayed (%d days)", days))
		}
	}
	if assessment.ErrorRate > 0.1 {
		assessment.Issues = append(assessment.Issues, fmt.Sprintf("high error rate: %.1f%%", assessment.ErrorRate*100))
	} else if assessment.ErrorRate > 0.05 {
		assessment.Issues = append(assessment.Issues, fmt.Sprintf("elevated error rate: %.1f%%", assessment.ErrorRate*100))
	}
}

// healthScore folds status, error rate, sync recency, and criticality into
// a 0-100 score.
func (c *Checker) healthScore(assessment Assessment, now time.Time) int {
	statusScores := map[Status]float64{
		StatusHealthy:  90,
		StatusDegraded: 60,
		StatusBroken:   20,
		StatusMissing:  0,
		StatusUnknown:  30,
	}
	score, ok := statusScores[assessment.Status]
	if !ok {
		score = 30
	}
	score -= assessment.ErrorRate * 50
	if !assessment.LastSync.IsZero() {
		days := int(now.Sub(assessment.LastSync).Hours() / 24)
		if days <= 1 {
			score += 10
		} else if days > 7 {
			score -= 20
		}
	}
	if assessment.BusinessCriticality == "high" && len(assessment.Issues) > 0 {
		score -= float64(len(assessment.Issues)) * 10
	}
	return int(clampFloat(score, 0, 100))
}

func (c *Checker) recommendations(assessment Assessment, pattern Pattern, expected bool) []string {
	var recs []string
	switch assessment.Status {
	case StatusMissing:
		if expected {
			recs = append(recs,
				fmt.Sprintf("implement %s integration between %s and %s",
					pattern.ExpectedType, assessment.SourceTool, assessment.TargetTool),
				fmt.Sprintf("expected business value: improved %s data flow", pattern.DataFlow),
			)
			if len(pattern.CommonIssues) > 0 {
				recs = append(recs, "watch for common issues: "+strings.Join(pattern.CommonIssues, ", "))
			}
		}
	case StatusBroken:
		recs = append(recs,
			"investigate and repair broken integration",
			"review error logs and authentication status",
		)
		if assessment.ErrorRate > 0.2 {
			recs = append(recs, fmt.Sprintf("address high error rate (%.1f%%)", assessment.ErrorRate*100))
		}
	case StatusDegraded:
		recs = append(recs, "optimize integration performance")
		if assessment.ErrorRate > 0.05 {
			recs = append(recs, fmt.Sprintf("reduce error rate from %.1f%%", assessment.ErrorRate*100))
		}
	case StatusHealthy:
		recs = append(recs, "monitor integration health regularly")
		if assessment.HealthScore < 80 {
			recs = append(recs, "consider optimization opportunities to improve health score")
		}
	}
	if assessment.BusinessCriticality == "high" && assessment.HealthScore < 70 {
		recs = append(recs, "HIGH PRIORITY: critical business integration needs immediate attention")
	}
	return recs
}

func clampFloat(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
