package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dfquinn23/tech-stack-audit-tool/internal/audit"
)

const intakeFieldCount = 2

// intakeForm collects the client name and optional domain before a new
// session is opened. The domain feeds DNS discovery later, so it is
// validated loosely here and left empty when the client has none.
type intakeForm struct {
	app    *App
	name   textinput.Model
	domain textinput.Model
	focus  int
	errMsg string
}

func newIntakeForm(app *App) *intakeForm {
	name := textinput.New()
	name.Placeholder = "Client name (required)"
	name.CharLimit = 120
	name.Focus()
	domain := textinput.New()
	domain.Placeholder = "Client domain, e.g. acmewealth.com (optional)"
	domain.CharLimit = 253
	return &intakeForm{app: app, name: name, domain: domain}
}

func (f *intakeForm) Init() tea.Cmd {
	return textinput.Blink
}

func (f *intakeForm) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "down":
			f.setFocus((f.focus + 1) % intakeFieldCount)
			return nil
		case "shift+tab", "up":
			f.setFocus((f.focus + intakeFieldCount - 1) % intakeFieldCount)
			return nil
		case "enter":
			if f.focus == 0 {
				f.setFocus(1)
				return nil
			}
			return f.submit()
		}
	}
	var cmd tea.Cmd
	if f.focus == 0 {
		f.name, cmd = f.name.Update(msg)
	} else {
		f.domain, cmd = f.domain.Update(msg)
	}
	return cmd
}

func (f *intakeForm) setFocus(idx int) {
	f.focus = idx
	if idx == 0 {
		f.name.Focus()
		f.domain.Blur()
	} else {
		f.name.Blur()
		f.domain.Focus()
	}
}

func (f *intakeForm) submit() tea.Cmd {
	clientName := strings.TrimSpace(f.name.Value())
	if clientName == "" {
		f.errMsg = "Client name is required"
		f.setFocus(0)
		return nil
	}
	clientDomain := strings.TrimSpace(f.domain.Value())
	manager, err := audit.NewSession(f.app.store, clientName, clientDomain, audit.WithLogbook(f.app.logbook))
	if err != nil {
		f.errMsg = fmt.Sprintf("Create session failed: %v", err)
		f.app.logError("Create session for %s failed: %v", clientName, err)
		return nil
	}
	f.errMsg = ""
	f.app.logInfo("Session · %s created for %s", manager.AuditID(), clientName)
	f.app.state = stateStageBoard
	f.app.stageBoard = &stageBoard{app: f.app, manager: manager}
	f.app.intake = nil
	f.app.statusMsg = manager.StageSummary()
	return f.app.fetchStatusSnapshot()
}

func (f *intakeForm) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render("New Audit Session")
	lines := []string{
		title,
		"",
		"Client  " + f.name.View(),
		"Domain  " + f.domain.View(),
		"",
		"enter=create session  tab=next field  esc=cancel",
	}
	if f.errMsg != "" {
		lines = append(lines, "", labelStyleBlocked.Render(f.errMsg))
	}
	return strings.Join(lines, "\n")
}
