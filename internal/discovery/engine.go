package discovery

import (
	"context"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dfquinn23/tech-stack-audit-tool/internal/logbook"
)

// subdomainProbes lists the host labels checked for CNAME records
// that betray a SaaS subscription.
var subdomainProbes = []string{
	"mail", "email", "mx", "smtp",
	"zoom", "meet", "video",
	"slack", "teams", "chat",
	"jira", "confluence", "wiki",
	"github", "gitlab", "git",
	"aws", "azure", "cloud",
	"crm", "sales", "support",
}

// Resolver is the subset of net.Resolver the engine needs. Tests
// substitute a canned implementation.
type Resolver interface {
	LookupCNAME(ctx context.Context, host string) (string, error)
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
}

// Finding records one piece of evidence that a client uses a tool.
type Finding struct {
	Tool     string `json:"tool"`
	Provider string `json:"provider"`
	Category string `json:"category"`
	Method   string `json:"discovery_method"`
	Evidence string `json:"evidence"`
}

// Engine discovers SaaS tools from DNS evidence and API probes.
type Engine struct {
	patterns    *PatternSet
	cache       *Cache
	resolver    Resolver
	client      *http.Client
	clock       func() time.Time
	book        *logbook.Logbook
	maxParallel int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithCache stores results in the given cache between runs.
func WithCache(cache *Cache) EngineOption {
	return func(e *Engine) { e.cache = cache }
}

// WithResolver substitutes the DNS resolver.
func WithResolver(r Resolver) EngineOption {
	return func(e *Engine) { e.resolver = r }
}

// WithHTTPClient substitutes the HTTP client used for API probes.
func WithHTTPClient(client *http.Client) EngineOption {
	return func(e *Engine) { e.client = client }
}

// WithClock substitutes the time source.
func WithClock(clock func() time.Time) EngineOption {
	return func(e *Engine) { e.clock = clock }
}

// WithLogbook routes progress lines to the session logbook.
func WithLogbook(book *logbook.Logbook) EngineOption {
	return func(e *Engine) { e.book = book }
}

// WithMaxParallel caps concurrent DNS and HTTP probes.
func WithMaxParallel(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxParallel = n
		}
	}
}

// NewEngine returns an engine with the built-in pattern catalog.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		patterns:    NewPatternSet(),
		resolver:    net.DefaultResolver,
		client:      &http.Client{Timeout: 15 * time.Second},
		clock:       time.Now,
		maxParallel: 5,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Patterns exposes the engine's SaaS catalog.
func (e *Engine) Patterns() *PatternSet { return e.patterns }

// DomainFootprint scans well-known subdomains of the client's domain
// for CNAME records pointing at SaaS vendors, and the domain's MX
// records for hosted email providers. Findings are keyed by
// "<subdomain>_<tool>" so multiple subdomains can cite the same tool.
func (e *Engine) DomainFootprint(ctx context.Context, domain string) (map[string]Finding, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return map[string]Finding{}, nil
	}

	cacheKey := DomainKey(domain)
	cached := map[string]Finding{}
	if e.cache.Get(cacheKey, &cached) {
		e.book.Info("discovery: using cached footprint for %s", domain)
		return cached, nil
	}

	findings := make(map[string]Finding)
	var mu sync.Mutex

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(e.maxParallel)
	for _, sub := range subdomainProbes {
		sub := sub
		grp.Go(func() error {
			host := sub + "." + domain
			target, err := e.resolver.LookupCNAME(grpCtx, host)
			if err != nil {
				// NXDOMAIN and timeouts are expected for most probes.
				return nil
			}
			pattern, ok := e.patterns.MatchCNAME(target)
			if !ok {
				return nil
			}
			provider := matchedDomain(pattern, target)
			mu.Lock()
			findings[sub+"_"+pattern.Name] = Finding{
				Tool:     titleCase(pattern.Name),
				Provider: provider,
				Category: pattern.Category,
				Method:   "dns_cname:" + host,
				Evidence: strings.ToLower(strings.TrimSuffix(target, ".")),
			}
			mu.Unlock()
			e.book.Info("discovery: found %s via %s", pattern.Name, host)
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	e.addMailFindings(ctx, domain, findings)

	if err := e.cache.Put(cacheKey, findings); err != nil {
		e.book.Warn("discovery: %v", err)
	}
	e.book.Info("discovery: footprint for %s yielded %d findings", domain, len(findings))
	return findings, nil
}

func (e *Engine) addMailFindings(ctx context.Context, domain string, findings map[string]Finding) {
	records, err := e.resolver.LookupMX(ctx, domain)
	if err != nil {
		return
	}
	for _, mx := range records {
		host := strings.ToLower(strings.TrimSuffix(mx.Host, "."))
		switch {
		case strings.Contains(host, "google"):
			findings["email_google"] = Finding{
				Tool:     "Google Workspace",
				Provider: "Google",
				Category: "Email Services",
				Method:   "mx_record:" + domain,
				Evidence: host,
			}
		case strings.Contains(host, "microsoft"), strings.Contains(host, "outlook"):
			findings["email_microsoft"] = Finding{
				Tool:     "Microsoft 365",
				Provider: "Microsoft",
				Category: "Email Services",
				Method:   "mx_record:" + domain,
				Evidence: host,
			}
		}
	}
}

// SortedFindingKeys returns the finding keys in stable order.
func SortedFindingKeys(findings map[string]Finding) []string {
	keys := make([]string, 0, len(findings))
	for k := range findings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func matchedDomain(p Pattern, target string) string {
	target = strings.ToLower(target)
	for _, domain := range p.Domains {
		if strings.Contains(target, domain) {
			return domain
		}
	}
	if len(p.Domains) > 0 {
		return p.Domains[0]
	}
	return "Unknown"
}

func titleCase(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool { return r == '_' || r == ' ' })
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}
