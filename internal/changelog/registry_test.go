package changelog

import (
	"context"
	"testing"
)

func TestRegistryLookupIsCaseInsensitive(t *testing.T) {
	reg := NewRegistry()
	ep, ok := reg.Lookup("Microsoft 365")
	if !ok {
		t.Fatalf("expected Microsoft 365 in registry")
	}
	if !ep.AuthRequired || ep.AuthType != "oauth2" || ep.Format != FormatJSON {
		t.Fatalf("unexpected endpoint: %+v", ep)
	}
	if !reg.RequiresAuth("MICROSOFT 365") {
		t.Fatalf("expected auth required for Microsoft 365")
	}
}

func TestRegistryManualSourcesHaveNoEndpoint(t *testing.T) {
	reg := NewRegistry()
	if reg.HasAPIEndpoint("Bloomberg Terminal") {
		t.Fatalf("Bloomberg Terminal has no public endpoint")
	}
	if !reg.HasAPIEndpoint("FactSet") {
		t.Fatalf("expected FactSet endpoint")
	}
}

func TestRegistryStats(t *testing.T) {
	reg := NewRegistry()
	stats := reg.Stats()
	if stats.TotalTools != len(reg.Tools()) {
		t.Fatalf("stats total %d != tools %d", stats.TotalTools, len(reg.Tools()))
	}
	if stats.WithAPIEndpoint >= stats.TotalTools {
		t.Fatalf("expected at least one manual source")
	}
	if stats.ByToolType["crm"] != 2 {
		t.Fatalf("expected 2 crm tools, got %d", stats.ByToolType["crm"])
	}
	if crm := reg.ToolsByType("crm"); len(crm) != stats.ByToolType["crm"] {
		t.Fatalf("ToolsByType disagrees with stats: %v", crm)
	}
}

func TestRegistryAdd(t *testing.T) {
	reg := NewRegistry()
	reg.Add("Wealthbox", Endpoint{URL: "https://wealthbox.com/updates", Format: FormatHTML, ToolType: "crm"})
	if !reg.HasAPIEndpoint("wealthbox") {
		t.Fatalf("expected added endpoint to resolve")
	}
}

func TestSeedFetcherServesKnownTools(t *testing.T) {
	fetcher := NewSeedFetcher()
	entries, err := fetcher.Fetch(context.Background(), "Zoom")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(entries) != 2 || entries[0].Title != "AI Companion Enhancements" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	none, err := fetcher.Fetch(context.Background(), "Redtail CRM")
	if err != nil {
		t.Fatalf("fetch unknown: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no entries for unknown tool, got %+v", none)
	}
}
