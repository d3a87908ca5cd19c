package audit

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestRepositoryRoundTrip(t *testing.T) {
	repo := NewRepository(t.TempDir())
	state := newState("Acme Wealth", "acmewealth.com", "audit_0a1b2c3d", time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	state.ToolInventory["Zoom"] = Tool{
		Name: "Zoom", Category: "Communication", Users: []string{"All"},
		Criticality: "High", DiscoveryMethod: "manual",
	}
	state.Integrations = append(state.Integrations, Integration{
		SourceTool: "Zoom", TargetTool: "Redtail", Status: "missing",
		IntegrationType: "none", HealthScore: 0,
		Issues:          []string{"no integration in place"},
		Recommendations: []string{"connect via calendar sync"},
	})
	state.AutomationOpportunities = append(state.AutomationOpportunities, Opportunity{
		Name: "Meeting notes sync", PriorityScore: 16.5, PriorityTier: "medium",
		ROIEstimate: 9000, AnnualHoursSaved: 120,
		WorkflowDescription: "push call summaries into the CRM",
	})
	state.StageCompletion[StageDiscovery] = true
	state.CurrentStage = StageAssessment

	if err := repo.Save(state); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := repo.Load("audit_0a1b2c3d")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(state, loaded) {
		t.Fatalf("round trip mismatch:\nsaved  %+v\nloaded %+v", state, loaded)
	}
}

func TestRepositoryLoadMissingSession(t *testing.T) {
	repo := NewRepository(t.TempDir())
	if _, err := repo.Load("audit_deadbeef"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRepositoryLoadRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	repo := NewRepository(dir)
	path := filepath.Join(dir, "audit_deadbeef.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	_, err := repo.Load("audit_deadbeef")
	if !errors.Is(err, ErrMalformedSession) {
		t.Fatalf("expected ErrMalformedSession, got %v", err)
	}
	if errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("corrupt session must not look like a missing one")
	}
}

func TestRepositoryLoadRejectsUnknownStageOrdinal(t *testing.T) {
	dir := t.TempDir()
	repo := NewRepository(dir)
	payload := `{"client_name":"Acme Wealth","audit_id":"audit_deadbeef","current_stage":7,` +
		`"stage_completion":{"1":false},"tool_inventory":{},` +
		`"created_at":"2025-06-01T09:00:00Z","updated_at":"2025-06-01T09:00:00Z"}`
	path := filepath.Join(dir, "audit_deadbeef.json")
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write session file: %v", err)
	}
	if _, err := repo.Load("audit_deadbeef"); !errors.Is(err, ErrMalformedSession) {
		t.Fatalf("expected ErrMalformedSession for stage ordinal 7, got %v", err)
	}
}

func TestLoadSessionDoesNotRecreateCorruptSessions(t *testing.T) {
	dir := t.TempDir()
	repo := NewRepository(dir)
	path := filepath.Join(dir, "audit_deadbeef.json")
	if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	if _, err := LoadSession(repo, "audit_deadbeef"); !errors.Is(err, ErrMalformedSession) {
		t.Fatalf("expected load to fail loudly, got %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read session file: %v", err)
	}
	if string(data) != "garbage" {
		t.Fatalf("corrupt session file was rewritten")
	}
}

func TestRepositoryListOrdersByUpdateAndSkipsCorrupt(t *testing.T) {
	dir := t.TempDir()
	repo := NewRepository(dir)
	older := newState("Acme Wealth", "", "audit_00000001", time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	newer := newState("Summit Capital", "", "audit_00000002", time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC))
	if err := repo.Save(older); err != nil {
		t.Fatalf("save older: %v", err)
	}
	if err := repo.Save(newer); err != nil {
		t.Fatalf("save newer: %v", err)
	}
	corrupt := filepath.Join(dir, "audit_deadbeef.json")
	if err := os.WriteFile(corrupt, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	states, err := repo.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(states) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(states))
	}
	if states[0].AuditID != "audit_00000002" || states[1].AuditID != "audit_00000001" {
		t.Fatalf("expected newest first, got %s then %s", states[0].AuditID, states[1].AuditID)
	}
}

func TestRepositoryListEmptyDir(t *testing.T) {
	repo := NewRepository(filepath.Join(t.TempDir(), "missing"))
	states, err := repo.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(states) != 0 {
		t.Fatalf("expected no sessions, got %d", len(states))
	}
}

func TestRepositoryStageCompletionUsesStringKeys(t *testing.T) {
	repo := NewRepository(t.TempDir())
	state := newState("Acme Wealth", "", "audit_0a1b2c3d", time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	if err := repo.Save(state); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(repo.Path("audit_0a1b2c3d"))
	if err != nil {
		t.Fatalf("read session file: %v", err)
	}
	for _, key := range []string{`"1":`, `"2":`, `"3":`, `"4":`} {
		if !containsCompact(data, key) {
			t.Fatalf("expected stage completion key %s in %s", key, data)
		}
	}
	if !containsCompact(data, `"current_stage":1`) {
		t.Fatalf("expected stage ordinal on the wire, got %s", data)
	}
}

// containsCompact checks for a JSON fragment ignoring the indentation the
// repository writes with.
func containsCompact(data []byte, fragment string) bool {
	compact := make([]byte, 0, len(data))
	for _, b := range data {
		switch b {
		case ' ', '\n', '\t':
			continue
		}
		compact = append(compact, b)
	}
	return strings.Contains(string(compact), fragment)
}
