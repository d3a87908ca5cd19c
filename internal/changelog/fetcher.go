package changelog

import "context"

// Entry is a single vendor release note.
type Entry struct {
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Fetcher retrieves recent changelog entries for a tool. Implementations
// may hit the network; callers pass a context for cancellation.
type Fetcher interface {
	Fetch(ctx context.Context, toolName string) ([]Entry, error)
}

// SeedFetcher serves a small curated set of entries for well-known tools.
// It stands in for live endpoint scraping and keeps the pipeline runnable
// offline; tools without seed data get an empty slice.
type SeedFetcher struct {
	entries map[string][]Entry
}

// NewSeedFetcher builds the curated fetcher.
func NewSeedFetcher() *SeedFetcher {
	return &SeedFetcher{entries: map[string][]Entry{
		"zoom": {
			{Date: "2024-12-25", Title: "AI Companion Enhancements",
				Description: "Added post-meeting summaries and smart meeting highlights."},
			{Date: "2025-03-01", Title: "Outlook Calendar Sync",
				Description: "Improved integration with Outlook for cross-platform invites."},
		},
		"microsoft 365": {
			{Date: "2025-01-22", Title: "Copilot Integration",
				Description: "Copilot is now fully embedded in Word and Excel for summarization and automation."},
		},
		"bloomberg terminal": {
			{Date: "2024-11-05", Title: "Terminal Chat Upgrade",
				Description: "Improved NLP-based query suggestions and portfolio tagging."},
		},
		"factset": {
			{Date: "2025-02-12", Title: "New ESG Scoring Model",
				Description: "Added detailed ESG metrics sourced from new global dataset."},
		},
	}}
}

// Fetch returns the curated entries for a tool, if any.
func (f *SeedFetcher) Fetch(_ context.Context, toolName string) ([]Entry, error) {
	entries := f.entries[normalizeKey(toolName)]
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out, nil
}
