package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dfquinn23/tech-stack-audit-tool/internal/audit"
)

var (
	labelStyleDone    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	labelStyleBlocked = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	labelStyleCurrent = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	labelStyleGate    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	labelStylePending = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
	detailTextStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
)

var stageOrder = []audit.Stage{
	audit.StageDiscovery,
	audit.StageAssessment,
	audit.StageOpportunities,
	audit.StageDelivery,
}

// stageBoard shows one session's position in the stage-gate sequence and
// lets the operator advance it, forcing past an unmet gate if asked to.
type stageBoard struct {
	app     *App
	manager *audit.Manager

	lastGate    *audit.GateResult
	lastForced  bool
	lastBlocked bool
}

func newStageBoard(app *App, auditID string) (*stageBoard, error) {
	manager, err := audit.LoadSession(app.store, auditID, audit.WithLogbook(app.logbook))
	if err != nil {
		return nil, err
	}
	return &stageBoard{app: app, manager: manager}, nil
}

func (b *stageBoard) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch key.String() {
	case "a":
		return b.advance(false)
	case "f":
		return b.advance(true)
	}
	return nil
}

// advance moves the session to the next stage. A blocked gate is normal
// control flow: the unmet conditions are kept for rendering and the state
// stays where it was unless force is set.
func (b *stageBoard) advance(force bool) tea.Cmd {
	current := b.manager.CurrentStage()
	if current == audit.StageDelivery {
		b.app.statusMsg = "Delivery is the final stage"
		return nil
	}
	target := current + 1
	gate := audit.CheckGate(b.manager.State(), target)
	result, err := b.manager.Advance(target, force)
	if err != nil {
		b.app.statusMsg = fmt.Sprintf("Advance failed: %v", err)
		b.app.logError("Advance to %s failed: %v", target, err)
		return nil
	}
	b.lastGate = &result
	b.lastForced = force && !gate.Passed
	b.lastBlocked = !result.Passed
	switch {
	case b.lastBlocked:
		b.app.statusMsg = fmt.Sprintf("Gate for %s not satisfied (%d condition(s))", target, len(result.Conditions))
	case b.lastForced:
		b.app.statusMsg = fmt.Sprintf("Forced into %s past an unmet gate", target)
		b.app.logWarn("Board · forced advance to %s", target)
	default:
		b.app.statusMsg = fmt.Sprintf("Advanced to %s", target)
	}
	return b.app.fetchStatusSnapshot()
}

func (b *stageBoard) View() string {
	state := b.manager.State()
	lines := []string{
		fmt.Sprintf("Client: %s · %s", state.ClientName, state.AuditID),
		fmt.Sprintf("Inventory: %d tool(s) · %d integration(s) · %d opportunit(ies)",
			len(state.ToolInventory), len(state.Integrations), len(state.AutomationOpportunities)),
		"",
	}
	for _, stage := range stageOrder {
		lines = append(lines, b.renderStageLine(state, stage))
	}
	lines = append(lines, "", b.renderGatePanel(state))
	lines = append(lines,
		"",
		"a=advance to next stage  f=force advance",
		"esc=back to menu",
	)
	return strings.Join(lines, "\n")
}

func (b *stageBoard) renderStageLine(state audit.State, stage audit.Stage) string {
	indicator := " "
	label := labelStylePending.Render("Pending")
	switch {
	case state.StageCompletion[stage]:
		label = labelStyleDone.Render("Complete")
	case stage == state.CurrentStage:
		indicator = ">"
		label = labelStyleCurrent.Render("Current")
	}
	return fmt.Sprintf("%s Stage %d · %s · [%s]", indicator, int(stage), stage, label)
}

func (b *stageBoard) renderGatePanel(state audit.State) string {
	current := state.CurrentStage
	if current == audit.StageDelivery {
		return labelStyleDone.Render("All gates behind you. Generate the report from the CLI.")
	}
	target := current + 1
	gate := audit.CheckGate(state, target)
	if gate.Passed {
		return labelStyleDone.Render(fmt.Sprintf("Gate to %s is open", target))
	}
	head := labelStyleGate.Render(fmt.Sprintf("Gate to %s · %d unmet condition(s)", target, len(gate.Conditions)))
	body := detailTextStyle.Render("  " + strings.Join(gate.Conditions, "\n  "))
	panel := head + "\n" + body
	if b.lastGate != nil && b.lastBlocked {
		panel += "\n" + labelStyleBlocked.Render("Last advance was blocked")
	}
	return panel
}
