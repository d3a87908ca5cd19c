package audit

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dfquinn23/tech-stack-audit-tool/internal/logbook"
)

// Manager owns one audit session: it holds the state, persists it after
// every mutation, and enforces the stage-transition protocol. It is not safe
// for concurrent use; each session is driven synchronously.
type Manager struct {
	state State
	store SessionStore
	clock func() time.Time
	book  *logbook.Logbook
}

// Option customizes the manager instance.
type Option func(*Manager)

// WithClock injects a deterministic clock (primarily for tests).
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// WithLogbook attaches a session journal. The manager works without one.
func WithLogbook(book *logbook.Logbook) Option {
	return func(m *Manager) {
		m.book = book
	}
}

// NewSession creates a fresh session in discovery and persists it.
func NewSession(store SessionStore, clientName, clientDomain string, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("audit: session store is required")
	}
	clientName = strings.TrimSpace(clientName)
	if clientName == "" {
		return nil, fmt.Errorf("audit: client name is required")
	}
	mgr := &Manager{store: store, clock: time.Now}
	for _, opt := range opts {
		opt(mgr)
	}
	mgr.state = newState(clientName, strings.TrimSpace(clientDomain), generateAuditID(), mgr.clock())
	if err := store.Save(mgr.state); err != nil {
		return nil, err
	}
	mgr.book.Info("created audit session %s for %s", mgr.state.AuditID, clientName)
	return mgr, nil
}

// LoadSession reconstructs a manager from a persisted session. Missing and
// malformed sessions surface as distinct errors; there is no silent
// re-create on a corrupt file.
func LoadSession(store SessionStore, auditID string, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("audit: session store is required")
	}
	state, err := store.Load(auditID)
	if err != nil {
		return nil, err
	}
	mgr := &Manager{state: state, store: store, clock: time.Now}
	for _, opt := range opts {
		opt(mgr)
	}
	mgr.book.Info("resumed audit session %s at stage %s", state.AuditID, state.CurrentStage)
	return mgr, nil
}

// AuditID returns the stable session identifier.
func (m *Manager) AuditID() string {
	return m.state.AuditID
}

// ClientName returns the audited organization's name.
func (m *Manager) ClientName() string {
	return m.state.ClientName
}

// ClientDomain returns the optional domain used by discovery probes.
func (m *Manager) ClientDomain() string {
	return m.state.ClientDomain
}

// CurrentStage returns the stage the session is in.
func (m *Manager) CurrentStage() Stage {
	return m.state.CurrentStage
}

// State returns a deep copy of the session record.
func (m *Manager) State() State {
	return m.state.clone()
}

// Tools returns a copy of the inventory keyed by tool name.
func (m *Manager) Tools() map[string]Tool {
	return m.state.clone().ToolInventory
}

// Advance attempts to move the session to the target stage. When the gate
// fails and force is false, the state is left untouched and the returned
// GateResult lists the unmet conditions. A non-nil error means persistence
// failed, never a gate failure.
func (m *Manager) Advance(target Stage, force bool) (GateResult, error) {
	if !target.Valid() {
		return GateResult{Target: target, Conditions: []string{
			fmt.Sprintf("unknown stage ordinal %d", int(target)),
		}}, nil
	}
	if !force && target < m.state.CurrentStage {
		return GateResult{Target: target, Conditions: []string{
			fmt.Sprintf("cannot move backward from %s to %s without force", m.state.CurrentStage, target),
		}}, nil
	}
	gate := CheckGate(m.state, target)
	if !gate.Passed && !force {
		m.book.Warn("gate for %s not satisfied: %s", target, strings.Join(gate.Conditions, "; "))
		return gate, nil
	}
	m.state.CurrentStage = target
	if prev := target - 1; prev.Valid() {
		m.state.StageCompletion[prev] = true
	}
	if err := m.persist(); err != nil {
		return gate, err
	}
	if force && !gate.Passed {
		m.book.Warn("forced advance to %s past unmet gate", target)
	} else {
		m.book.Info("advanced to stage %s", target)
	}
	gate.Passed = true
	return gate, nil
}

// AddTool inserts or replaces an inventory entry keyed by the tool's name
// and persists immediately.
func (m *Manager) AddTool(tool Tool) error {
	tool.Name = strings.TrimSpace(tool.Name)
	if tool.Name == "" {
		return fmt.Errorf("audit: tool name is required")
	}
	m.state.ToolInventory[tool.Name] = tool
	if err := m.persist(); err != nil {
		return err
	}
	m.book.Info("added tool %s (%s)", tool.Name, tool.Category)
	return nil
}

// AddIntegration appends an integration assessment and persists immediately.
// Duplicate tool pairs are allowed; consumers take the latest or aggregate.
func (m *Manager) AddIntegration(integ Integration) error {
	if integ.SourceTool == "" || integ.TargetTool == "" {
		return fmt.Errorf("audit: integration requires both source and target tools")
	}
	m.state.Integrations = append(m.state.Integrations, integ)
	if err := m.persist(); err != nil {
		return err
	}
	m.book.Info("assessed integration %s -> %s: %s", integ.SourceTool, integ.TargetTool, integ.Status)
	return nil
}

// AddAutomationOpportunity appends an opportunity record and persists
// immediately.
func (m *Manager) AddAutomationOpportunity(opp Opportunity) error {
	if strings.TrimSpace(opp.Name) == "" {
		return fmt.Errorf("audit: opportunity name is required")
	}
	m.state.AutomationOpportunities = append(m.state.AutomationOpportunities, opp)
	if err := m.persist(); err != nil {
		return err
	}
	m.book.Info("recorded opportunity %q (priority %.1f)", opp.Name, opp.PriorityScore)
	return nil
}

// AddStakeholderContact records a stakeholder for interview follow-ups.
func (m *Manager) AddStakeholderContact(contact string) error {
	contact = strings.TrimSpace(contact)
	if contact == "" {
		return fmt.Errorf("audit: stakeholder contact is required")
	}
	m.state.StakeholderContacts = append(m.state.StakeholderContacts, contact)
	return m.persist()
}

func (m *Manager) persist() error {
	m.state.UpdatedAt = m.clock().UTC()
	return m.store.Save(m.state)
}

func generateAuditID() string {
	id := uuid.New()
	return fmt.Sprintf("audit_%x", id[:4])
}
