// internal/tui/app.go
//
// This is the terminal dashboard for audit sessions.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen

package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dfquinn23/tech-stack-audit-tool/internal/audit"
	"github.com/dfquinn23/tech-stack-audit-tool/internal/config"
	"github.com/dfquinn23/tech-stack-audit-tool/internal/logbook"
)

// appState represents which "screen" we're on
type appState int

const (
	stateMainMenu   appState = iota // Main menu with "New Audit", etc.
	stateNewAudit                   // Client intake form before discovery starts
	stateStageBoard                 // Stage-gate board for one session
)

const boardRefreshInterval = 3 * time.Second

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithClock overrides the time source used by the dashboard.
func WithClock(clock func() time.Time) AppOption {
	return func(a *App) {
		if clock != nil {
			a.clock = clock
		}
	}
}

type boardFocus int

const (
	focusMenu boardFocus = iota
	focusSessions
)

type statusRefreshMsg struct {
	sessions []sessionItem
	err      error
}

type sessionItem struct {
	ClientName    string
	AuditID       string
	Stage         audit.Stage
	StagesDone    int
	Tools         int
	Integrations  int
	Opportunities int
	UpdatedAt     time.Time
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	state   appState
	config  *config.Config
	store   *audit.Repository
	logbook *logbook.Logbook
	clock   func() time.Time

	stageBoard *stageBoard
	intake     *intakeForm

	// UI components
	mainMenu  list.Model // The main menu list
	statusMsg string     // Status message to display

	// Window size (we get this from bubbletea)
	width  int
	height int

	// Status board data
	boardFocus       boardFocus
	sessionItems     []sessionItem
	sessionSelection int
	boardErr         string
}

// menuItem implements list.Item interface for our menu items
type menuItem struct {
	title string
	desc  string
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

// NewApp creates a new App instance
func NewApp(projectDir string, opts ...AppOption) (*App, error) {
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		return nil, err
	}
	store := audit.NewRepository(cfg.SessionsDir())
	logPath := filepath.Join(cfg.LogsDir(), "dashboard.log")
	lb, err := logbook.New(logPath)
	if err == nil {
		lb.Info("Dashboard opened · project %s", cfg.ProjectDir)
	}

	mainMenu := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	mainMenu.Title = "⬡ AUDIT DASHBOARD"
	mainMenu.SetShowStatusBar(false)
	mainMenu.SetFilteringEnabled(false)

	app := &App{
		state:      stateMainMenu,
		config:     cfg,
		store:      store,
		logbook:    lb,
		clock:      time.Now,
		mainMenu:   mainMenu,
		boardFocus: focusMenu,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	app.mainMenu.SetItems(buildMainMenu(app.sessionItems))
	return app, nil
}

// buildMainMenu creates the main menu items based on known sessions
func buildMainMenu(sessions []sessionItem) []list.Item {
	items := []list.Item{}

	// Show "Resume Audit" if any session exists
	if len(sessions) > 0 {
		latest := sessions[0]
		items = append(items, menuItem{
			title: fmt.Sprintf("Resume Audit (%s · %s)", latest.ClientName, latest.Stage),
			desc:  "Continue the most recently updated session",
		})
	}

	items = append(items,
		menuItem{title: "New Audit", desc: "Start a discovery session for a new client"},
		menuItem{title: "Exit", desc: "Quit the dashboard"},
	)

	return items
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Warn(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Error(format, args...)
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return a.fetchStatusSnapshot()
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.mainMenu.SetSize(max(0, msg.Width-6), max(0, msg.Height-10))
		return a, nil

	case statusRefreshMsg:
		if msg.err != nil {
			a.boardErr = msg.err.Error()
		} else {
			a.boardErr = ""
			a.sessionItems = msg.sessions
			if len(a.sessionItems) == 0 {
				a.sessionSelection = 0
			} else if a.sessionSelection >= len(a.sessionItems) {
				a.sessionSelection = len(a.sessionItems) - 1
			}
			if a.state == stateMainMenu {
				a.mainMenu.SetItems(buildMainMenu(a.sessionItems))
			}
		}
		return a, a.scheduleStatusRefresh()

	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "ctrl+c":
			return a, tea.Quit
		case "q":
			if a.state == stateMainMenu {
				return a, tea.Quit
			}
		case "esc":
			if a.state != stateMainMenu {
				return a.returnToMainMenu()
			}
		case "r":
			if a.state == stateMainMenu {
				a.statusMsg = "Refreshing session board..."
				return a, a.fetchStatusSnapshot()
			}
		case "tab":
			if a.state == stateMainMenu {
				if a.boardFocus == focusMenu && len(a.sessionItems) > 0 {
					a.boardFocus = focusSessions
				} else {
					a.boardFocus = focusMenu
				}
			}
		case "right", "l":
			if a.state == stateMainMenu && len(a.sessionItems) > 0 {
				a.boardFocus = focusSessions
			}
		case "left", "h":
			if a.state == stateMainMenu {
				a.boardFocus = focusMenu
			}
		case "up", "k":
			if a.state == stateMainMenu && a.boardFocus == focusSessions && len(a.sessionItems) > 0 {
				if a.sessionSelection > 0 {
					a.sessionSelection--
				}
				return a, nil
			}
		case "down", "j":
			if a.state == stateMainMenu && a.boardFocus == focusSessions && len(a.sessionItems) > 0 {
				if a.sessionSelection < len(a.sessionItems)-1 {
					a.sessionSelection++
				}
				return a, nil
			}
		case "enter":
			switch a.state {
			case stateMainMenu:
				if a.boardFocus == focusSessions {
					return a.openSelectedSession()
				}
				return a.handleMainMenuSelection()
			}
		}
	}

	var cmds []tea.Cmd
	switch a.state {
	case stateMainMenu:
		if a.boardFocus == focusMenu {
			var menuCmd tea.Cmd
			a.mainMenu, menuCmd = a.mainMenu.Update(msg)
			if menuCmd != nil {
				cmds = append(cmds, menuCmd)
			}
		}
	case stateNewAudit:
		if a.intake != nil {
			if cmd := a.intake.Update(msg); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
	case stateStageBoard:
		if a.stageBoard != nil {
			if cmd := a.stageBoard.Update(msg); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
	}

	return a, tea.Batch(cmds...)
}

// handleMainMenuSelection processes menu item selection
func (a *App) handleMainMenuSelection() (tea.Model, tea.Cmd) {
	item, ok := a.mainMenu.SelectedItem().(menuItem)
	if !ok {
		return a, nil
	}

	switch {
	case strings.HasPrefix(item.title, "Resume Audit"):
		a.logInfo("Menu · Resume Audit selected")
		if len(a.sessionItems) == 0 {
			a.statusMsg = "No sessions to resume"
			return a, nil
		}
		return a.openStageBoard(a.sessionItems[0].AuditID)

	case item.title == "New Audit":
		a.logInfo("Menu · New Audit selected")
		return a.beginIntake()

	case item.title == "Exit":
		a.logInfo("Menu · Exit selected")
		return a, tea.Quit
	}

	return a, nil
}

func (a *App) beginIntake() (tea.Model, tea.Cmd) {
	a.state = stateNewAudit
	a.intake = newIntakeForm(a)
	a.statusMsg = "Enter client details to open a session"
	return a, a.intake.Init()
}

func (a *App) openSelectedSession() (tea.Model, tea.Cmd) {
	if len(a.sessionItems) == 0 {
		return a, nil
	}
	item := a.sessionItems[a.sessionSelection]
	return a.openStageBoard(item.AuditID)
}

// openStageBoard loads a persisted session and shows its stage-gate board.
func (a *App) openStageBoard(auditID string) (tea.Model, tea.Cmd) {
	board, err := newStageBoard(a, auditID)
	if err != nil {
		a.statusMsg = fmt.Sprintf("Open session failed: %v", err)
		a.logError("Open session %s failed: %v", auditID, err)
		return a, nil
	}
	a.state = stateStageBoard
	a.stageBoard = board
	a.logInfo("Session · %s opened (%s)", auditID, board.manager.CurrentStage())
	a.statusMsg = board.manager.StageSummary()
	return a, nil
}

// returnToMainMenu transitions back to the main menu
func (a *App) returnToMainMenu() (tea.Model, tea.Cmd) {
	a.state = stateMainMenu
	a.stageBoard = nil
	a.intake = nil
	a.boardFocus = focusMenu
	a.logInfo("Returned to main menu")

	// Refresh menu items (session state may have changed)
	a.mainMenu.SetItems(buildMainMenu(a.sessionItems))

	return a, a.fetchStatusSnapshot()
}

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	rightWidth := max(32, width/3)
	leftWidth := width - rightWidth - 4
	if leftWidth < 40 {
		leftWidth = width - 4
	}
	if leftWidth < 20 {
		leftWidth = width
		rightWidth = 0
	}
	if a.state == stateMainMenu && a.boardFocus == focusMenu {
		a.mainMenu.SetSize(max(20, leftWidth-4), max(10, a.height-10))
	}
	var content string
	switch a.state {
	case stateMainMenu:
		content = a.mainMenu.View()
	case stateNewAudit:
		if a.intake != nil {
			content = a.intake.View()
		}
	case stateStageBoard:
		if a.stageBoard != nil {
			content = a.stageBoard.View()
		} else {
			content = "Loading session..."
		}
	}
	return a.renderStatusBoard(content, leftWidth, rightWidth)
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines, _ := a.logbook.Tail(8)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · %s", fileName))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
	return box
}

func (a *App) renderStatusBoard(mainContent string, leftWidth, rightWidth int) string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		MarginBottom(1).
		Render("⬡ TECH STACK AUDIT")
	left := lipgloss.JoinVertical(lipgloss.Left,
		a.renderProjectPanel(leftWidth-4),
		"",
		a.renderMainArea(mainContent, leftWidth-4),
	)
	leftBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(max(20, leftWidth)).
		Render(left)
	var body string
	if rightWidth > 0 {
		right := a.renderSessionsPanel(rightWidth - 4)
		rightBox := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1).
			Width(max(20, rightWidth)).
			Render(right)
		body = lipgloss.JoinHorizontal(lipgloss.Top, leftBox, rightBox)
	} else {
		body = leftBox
	}
	sections := []string{header, body}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render(a.statusMsg)
	sections = append(sections, footer)
	return strings.Join(sections, "\n")
}

func (a *App) renderProjectPanel(width int) string {
	lines := []string{
		fmt.Sprintf("Project: %s", filepath.Base(a.config.ProjectDir)),
		fmt.Sprintf("Sessions: %d", len(a.sessionItems)),
	}
	if a.boardErr != "" {
		lines = append(lines, fmt.Sprintf("⚠ %s", a.boardErr))
	}
	return lipgloss.NewStyle().Width(max(20, width)).Render(strings.Join(lines, "\n"))
}

func (a *App) renderMainArea(content string, width int) string {
	if strings.TrimSpace(content) == "" {
		content = "Ready to start an audit."
	}
	return lipgloss.NewStyle().Width(max(20, width)).Render(content)
}

func (a *App) renderSessionsPanel(width int) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("Sessions (%d)", len(a.sessionItems)))
	if len(a.sessionItems) == 0 {
		note := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render("No audit sessions yet. Start a new audit to begin discovery.")
		return lipgloss.JoinVertical(lipgloss.Left, title, note, a.renderSessionInstructions())
	}
	var rows []string
	for i, item := range a.sessionItems {
		selected := a.boardFocus == focusSessions && i == a.sessionSelection
		rows = append(rows, a.renderSessionItem(item, selected, width))
	}
	body := strings.Join(rows, "\n")
	return lipgloss.JoinVertical(lipgloss.Left, title, body, a.renderSessionInstructions())
}

func (a *App) renderSessionInstructions() string {
	instructions := "Enter → open session    Tab → switch focus"
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		MarginTop(1).
		Render(instructions)
}

func (a *App) renderSessionItem(item sessionItem, selected bool, width int) string {
	line1 := fmt.Sprintf("%s · %s", item.ClientName, item.AuditID)
	line2 := fmt.Sprintf("Stage %d/4 · %s · %d gate(s) passed", int(item.Stage), item.Stage, item.StagesDone)
	line3 := fmt.Sprintf("%d tool(s) · %d integration(s) · %d opportunit(ies)",
		item.Tools, item.Integrations, item.Opportunities)
	if !item.UpdatedAt.IsZero() {
		line3 += fmt.Sprintf(" · updated %s ago", humanizeDuration(a.clock().Sub(item.UpdatedAt)))
	}
	content := strings.Join([]string{line1, line2, line3}, "\n")
	style := lipgloss.NewStyle().Width(max(20, width)).Padding(0, 0, 1, 0)
	if selected {
		style = style.Bold(true).Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("#5B8DEF")).Padding(0, 1)
	}
	return style.Render(content)
}

func (a *App) fetchStatusSnapshot() tea.Cmd {
	return func() tea.Msg {
		return a.buildStatusSnapshot()
	}
}

func (a *App) scheduleStatusRefresh() tea.Cmd {
	return tea.Tick(boardRefreshInterval, func(time.Time) tea.Msg {
		return a.buildStatusSnapshot()
	})
}

func (a *App) buildStatusSnapshot() statusRefreshMsg {
	states, err := a.store.List()
	if err != nil {
		return statusRefreshMsg{err: err}
	}
	items := make([]sessionItem, 0, len(states))
	for _, state := range states {
		var done int
		for _, complete := range state.StageCompletion {
			if complete {
				done++
			}
		}
		items = append(items, sessionItem{
			ClientName:    state.ClientName,
			AuditID:       state.AuditID,
			Stage:         state.CurrentStage,
			StagesDone:    done,
			Tools:         len(state.ToolInventory),
			Integrations:  len(state.Integrations),
			Opportunities: len(state.AutomationOpportunities),
			UpdatedAt:     state.UpdatedAt,
		})
	}
	return statusRefreshMsg{sessions: items}
}

func humanizeDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
