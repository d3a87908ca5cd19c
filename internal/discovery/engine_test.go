package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dfquinn23/tech-stack-audit-tool/internal/audit"
)

type stubResolver struct {
	cnames map[string]string
	mx     map[string][]*net.MX
}

func (r *stubResolver) LookupCNAME(_ context.Context, host string) (string, error) {
	if target, ok := r.cnames[host]; ok {
		return target, nil
	}
	return "", &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
}

func (r *stubResolver) LookupMX(_ context.Context, name string) ([]*net.MX, error) {
	if records, ok := r.mx[name]; ok {
		return records, nil
	}
	return nil, &net.DNSError{Err: "no such host", Name: name, IsNotFound: true}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func offlineClient() *http.Client {
	return &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("offline")
	})}
}

func TestDomainFootprintFindsCNAMEAndMXEvidence(t *testing.T) {
	resolver := &stubResolver{
		cnames: map[string]string{
			"zoom.acmewealth.com": "acmewealth.zoom.us.",
		},
		mx: map[string][]*net.MX{
			"acmewealth.com": {{Host: "acmewealth-com.mail.protection.outlook.com.", Pref: 10}},
		},
	}
	engine := NewEngine(WithResolver(resolver), WithHTTPClient(offlineClient()))

	findings, err := engine.DomainFootprint(context.Background(), "acmewealth.com")
	if err != nil {
		t.Fatalf("domain footprint: %v", err)
	}
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %d: %v", len(findings), findings)
	}

	zoom, ok := findings["zoom_zoom"]
	if !ok {
		t.Fatalf("missing zoom finding: %v", findings)
	}
	if zoom.Tool != "Zoom" || zoom.Category != "Video Conferencing" {
		t.Fatalf("unexpected zoom finding: %+v", zoom)
	}
	if zoom.Method != "dns_cname:zoom.acmewealth.com" {
		t.Fatalf("unexpected discovery method %q", zoom.Method)
	}
	if zoom.Evidence != "acmewealth.zoom.us" {
		t.Fatalf("unexpected evidence %q", zoom.Evidence)
	}

	mail, ok := findings["email_microsoft"]
	if !ok {
		t.Fatalf("missing mx finding: %v", findings)
	}
	if mail.Tool != "Microsoft 365" || mail.Method != "mx_record:acmewealth.com" {
		t.Fatalf("unexpected mx finding: %+v", mail)
	}
}

func TestDomainFootprintUsesCacheUntilExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	cache := NewCache(t.TempDir(), 24*time.Hour).WithClock(clock)

	resolver := &stubResolver{
		cnames: map[string]string{"slack.acmewealth.com": "acmewealth.slack.com."},
	}
	engine := NewEngine(
		WithResolver(resolver),
		WithHTTPClient(offlineClient()),
		WithCache(cache),
		WithClock(clock),
	)

	first, err := engine.DomainFootprint(context.Background(), "acmewealth.com")
	if err != nil {
		t.Fatalf("first footprint: %v", err)
	}
	if _, ok := first["slack_slack"]; !ok {
		t.Fatalf("missing slack finding: %v", first)
	}

	// Remove the DNS record. The cached result should still be served.
	resolver.cnames = nil
	second, err := engine.DomainFootprint(context.Background(), "acmewealth.com")
	if err != nil {
		t.Fatalf("cached footprint: %v", err)
	}
	if _, ok := second["slack_slack"]; !ok {
		t.Fatalf("expected cached slack finding, got %v", second)
	}

	// Age the cache past the TTL and the stale entry is ignored.
	now = now.Add(25 * time.Hour)
	third, err := engine.DomainFootprint(context.Background(), "acmewealth.com")
	if err != nil {
		t.Fatalf("expired footprint: %v", err)
	}
	if len(third) != 0 {
		t.Fatalf("expected no findings after expiry, got %v", third)
	}
}

func TestProbeEndpointClassifiesResponses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/active":
			w.Header().Set("api-version", "2.0")
			w.WriteHeader(http.StatusOK)
		case "/auth":
			w.WriteHeader(http.StatusUnauthorized)
		case "/forbidden":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer server.Close()

	engine := NewEngine(WithHTTPClient(server.Client()))
	ctx := context.Background()

	active := engine.probeEndpoint(ctx, server.URL+"/active")
	if active.Status != ProbeActive || active.APIVersion != "2.0" {
		t.Fatalf("unexpected active result: %+v", active)
	}
	if auth := engine.probeEndpoint(ctx, server.URL+"/auth"); auth.Status != ProbeRequiresAuth {
		t.Fatalf("unexpected auth result: %+v", auth)
	}
	if forbidden := engine.probeEndpoint(ctx, server.URL+"/forbidden"); forbidden.Status != ProbeForbidden {
		t.Fatalf("unexpected forbidden result: %+v", forbidden)
	}
	if down := engine.probeEndpoint(ctx, server.URL+"/down"); down.Status != ProbeUnreachable {
		t.Fatalf("unexpected unreachable result: %+v", down)
	}
}

func TestProbeAPIsSkipsUnknownTools(t *testing.T) {
	engine := NewEngine(WithHTTPClient(&http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		resp := httptest.NewRecorder()
		resp.WriteHeader(http.StatusUnauthorized)
		return resp.Result(), nil
	})}))

	results, err := engine.ProbeAPIs(context.Background(), []string{"Zoom", "Advent Axys"})
	if err != nil {
		t.Fatalf("probe apis: %v", err)
	}
	if results["Zoom"].Status != ProbeRequiresAuth {
		t.Fatalf("unexpected zoom probe: %+v", results["Zoom"])
	}
	if results["Advent Axys"].Status != ProbeSkipped {
		t.Fatalf("unexpected advent probe: %+v", results["Advent Axys"])
	}
}

func TestProbeAPIsMixedInventoryConcurrently(t *testing.T) {
	// Slow transport keeps probe goroutines in flight while the tool
	// loop is still classifying the rest of the inventory.
	engine := NewEngine(
		WithMaxParallel(2),
		WithHTTPClient(&http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			time.Sleep(5 * time.Millisecond)
			resp := httptest.NewRecorder()
			resp.WriteHeader(http.StatusOK)
			return resp.Result(), nil
		})}),
	)

	tools := []string{"Zoom", "Slack", "GitHub", "Salesforce", "Microsoft 365"}
	for i := 0; i < 40; i++ {
		tools = append(tools, fmt.Sprintf("Custom Tool %02d", i))
	}

	results, err := engine.ProbeAPIs(context.Background(), tools)
	if err != nil {
		t.Fatalf("probe apis: %v", err)
	}
	if len(results) != len(tools) {
		t.Fatalf("expected %d results, got %d", len(tools), len(results))
	}
	if results["Zoom"].Status != ProbeActive {
		t.Fatalf("unexpected zoom probe: %+v", results["Zoom"])
	}
	if results["Custom Tool 00"].Status != ProbeSkipped {
		t.Fatalf("unexpected custom tool probe: %+v", results["Custom Tool 00"])
	}
}

func TestEnhanceInventoryAddsDiscoveredTools(t *testing.T) {
	resolver := &stubResolver{
		mx: map[string][]*net.MX{
			"acmewealth.com": {{Host: "aspmx.l.google.com.", Pref: 1}},
		},
	}
	engine := NewEngine(WithResolver(resolver), WithHTTPClient(offlineClient()))

	existing := map[string]audit.Tool{
		"Wealthbox": {Name: "Wealthbox", Category: "CRM", Users: []string{"Advisors"}, Criticality: "High", DiscoveryMethod: "csv_upload"},
	}
	result, err := engine.EnhanceInventory(context.Background(), existing, "acmewealth.com")
	if err != nil {
		t.Fatalf("enhance inventory: %v", err)
	}

	added, ok := result.Tools["Google Workspace"]
	if !ok {
		t.Fatalf("expected auto-discovered tool, got %v", result.Added)
	}
	if len(added.Users) != 1 || added.Users[0] != "auto-detected" {
		t.Fatalf("unexpected users: %v", added.Users)
	}
	if added.Criticality != "Unknown" || added.Vendor != "Google" {
		t.Fatalf("unexpected tool record: %+v", added)
	}

	// Manually gathered fields survive enhancement.
	if result.Tools["Wealthbox"].Criticality != "High" {
		t.Fatalf("existing tool was modified: %+v", result.Tools["Wealthbox"])
	}

	summary := engine.Summarize(result)
	if summary.TotalTools != 2 || summary.AutoDiscovered != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.DiscoveryMethods["csv_upload"] != 1 || summary.DiscoveryMethods["mx_record:acmewealth.com"] != 1 {
		t.Fatalf("unexpected method counts: %v", summary.DiscoveryMethods)
	}
}

func TestCompareVersions(t *testing.T) {
	if c := CompareVersions("Zoom", "unknown", "5.17.1"); c.Status != "cannot_compare" {
		t.Fatalf("unexpected status %q", c.Status)
	}
	if c := CompareVersions("Zoom", "5.17.1", "5.17.1"); c.Status != "current" {
		t.Fatalf("unexpected status %q", c.Status)
	}
	c := CompareVersions("Zoom", "5.14.2", "5.17.1")
	if c.Status != "outdated" || c.Current != "5.14.2" || c.Latest != "5.17.1" {
		t.Fatalf("unexpected comparison: %+v", c)
	}
}

func TestDetectVersionFallsBackToKnownVersions(t *testing.T) {
	engine := NewEngine(WithHTTPClient(offlineClient()))

	info := engine.DetectVersion(context.Background(), "Bloomberg Terminal")
	if info.Version != "5.12" || info.Method != "pattern_matching" {
		t.Fatalf("unexpected version info: %+v", info)
	}

	unknown := engine.DetectVersion(context.Background(), "Advent Axys")
	if unknown.Version != "unknown" || unknown.Method != "none" {
		t.Fatalf("unexpected fallback: %+v", unknown)
	}
}

func TestRecentAutomationFeatures(t *testing.T) {
	report := RecentAutomationFeatures("Microsoft 365")
	if len(report.Features) != 2 || report.Confidence != "high" {
		t.Fatalf("unexpected feature report: %+v", report)
	}

	empty := RecentAutomationFeatures("Advent Axys")
	if len(empty.Features) != 0 || empty.Confidence != "unknown" {
		t.Fatalf("unexpected empty report: %+v", empty)
	}
}
