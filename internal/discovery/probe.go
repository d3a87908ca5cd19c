package discovery

import (
	"context"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ProbeStatus classifies the outcome of an unauthenticated API probe.
type ProbeStatus string

const (
	ProbeActive       ProbeStatus = "active"
	ProbeRequiresAuth ProbeStatus = "requires_auth"
	ProbeForbidden    ProbeStatus = "forbidden"
	ProbeUnreachable  ProbeStatus = "unreachable"
	ProbeError        ProbeStatus = "error"
	ProbeSkipped      ProbeStatus = "no_api_check"
)

// ProbeResult records what an API root reported for one tool.
type ProbeResult struct {
	Status     ProbeStatus `json:"status"`
	StatusCode int         `json:"status_code,omitempty"`
	Endpoint   string      `json:"api_endpoint,omitempty"`
	APIVersion string      `json:"api_version,omitempty"`
	Err        string      `json:"error,omitempty"`
}

// ProbeAPIs issues a GET against the API root of every tool with a
// known pattern. Tools without a pattern get a skipped result. Probes
// run concurrently, bounded by the engine's parallelism limit.
func (e *Engine) ProbeAPIs(ctx context.Context, tools []string) (map[string]ProbeResult, error) {
	cacheKey := ProbeKey(tools)
	cached := map[string]ProbeResult{}
	if e.cache.Get(cacheKey, &cached) {
		e.book.Info("discovery: using cached api probes for %d tools", len(tools))
		return cached, nil
	}

	results := make(map[string]ProbeResult, len(tools))
	var mu sync.Mutex

	// Record skipped tools before any probe goroutine starts so the map
	// is only written under mu once probes are in flight.
	probed := make(map[string]Pattern, len(tools))
	for _, tool := range tools {
		pattern, ok := e.patterns.Lookup(tool)
		if !ok {
			results[tool] = ProbeResult{Status: ProbeSkipped}
			continue
		}
		probed[tool] = pattern
	}

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(e.maxParallel)
	for tool, pattern := range probed {
		tool, pattern := tool, pattern
		grp.Go(func() error {
			result := e.probeEndpoint(grpCtx, pattern.APIEndpoint)
			mu.Lock()
			results[tool] = result
			mu.Unlock()
			e.book.Info("discovery: probed %s (%s)", tool, result.Status)
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	if err := e.cache.Put(cacheKey, results); err != nil {
		e.book.Warn("discovery: %v", err)
	}
	return results, nil
}

func (e *Engine) probeEndpoint(ctx context.Context, endpoint string) ProbeResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ProbeResult{Status: ProbeError, Endpoint: endpoint, Err: err.Error()}
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return ProbeResult{Status: ProbeError, Endpoint: endpoint, Err: err.Error()}
	}
	defer resp.Body.Close()

	result := ProbeResult{StatusCode: resp.StatusCode, Endpoint: endpoint}
	switch resp.StatusCode {
	case http.StatusOK:
		result.Status = ProbeActive
		if v := resp.Header.Get("api-version"); v != "" {
			result.APIVersion = v
		}
		if v := resp.Header.Get("x-api-version"); v != "" {
			result.APIVersion = v
		}
	case http.StatusUnauthorized:
		result.Status = ProbeRequiresAuth
	case http.StatusForbidden:
		result.Status = ProbeForbidden
	default:
		result.Status = ProbeUnreachable
	}
	return result
}
